package hashSigner

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// IHashSigner produces recoverable secp256k1 signatures over 32-byte digests.
type IHashSigner interface {
	// SignHash signs hash and returns a 65 byte [R || S || V] signature. V is a
	// recovery id, either 0/1 or 27/28.
	SignHash(ctx context.Context, hash common.Hash) ([]byte, error)

	// GetAddress returns the address of the signing key
	GetAddress() common.Address
}

// IPreimageSigner is implemented by signers that apply Keccak-256 themselves and
// so must be handed the preimage instead of its digest.
type IPreimageSigner interface {
	IHashSigner

	// SignPreimage signs Keccak-256(preimage) and returns a 65 byte [R || S || V]
	// signature.
	SignPreimage(ctx context.Context, preimage []byte) ([]byte, error)
}
