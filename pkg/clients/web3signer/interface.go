package web3signer

import (
	"context"
	"net/http"
)

// IWeb3Signer defines the interface for interacting with Web3Signer services.
type IWeb3Signer interface {
	// SetHttpClient replaces the HTTP client, e.g. for tests or custom transports.
	SetHttpClient(client *http.Client)

	// EthAccounts returns the accounts available for signing (eth_accounts).
	EthAccounts(ctx context.Context) ([]string, error)

	// ListPublicKeys returns the secp256k1 public keys loaded into Web3Signer.
	ListPublicKeys(ctx context.Context) ([]string, error)

	// SignRaw signs data through the REST endpoint. Web3Signer hashes data with
	// Keccak-256 and signs the digest, without any message prefix.
	// The identifier is the key's public key or address.
	SignRaw(ctx context.Context, identifier string, data []byte) (string, error)

	// Upcheck returns nil when the service reports itself healthy.
	Upcheck(ctx context.Context) error
}

// Compile-time check to ensure Client implements IWeb3Signer
var _ IWeb3Signer = (*Client)(nil)
