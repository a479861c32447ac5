package web3Signer

import (
	"context"
	"fmt"

	"github.com/Layr-Labs/eigenx-ccr-go/pkg/clients/web3signer"
	"github.com/Layr-Labs/eigenx-ccr-go/pkg/hashSigner"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

// ErrDigestSigningUnsupported is returned by SignHash: Web3Signer hashes every
// payload with Keccak-256 before signing, so it cannot sign a bare digest.
var ErrDigestSigningUnsupported = fmt.Errorf("web3signer cannot sign a precomputed digest, use SignPreimage")

// Web3Signer signs through a remote Web3Signer instance.
type Web3Signer struct {
	client     web3signer.IWeb3Signer
	identifier string
	address    common.Address
	logger     *zap.Logger
}

var _ hashSigner.IPreimageSigner = (*Web3Signer)(nil)

// NewWeb3Signer signs with the key identified by identifier (its public key)
// and expects signatures to recover to fromAddress.
func NewWeb3Signer(client web3signer.IWeb3Signer, identifier string, fromAddress common.Address, logger *zap.Logger) (*Web3Signer, error) {
	if identifier == "" {
		return nil, fmt.Errorf("web3signer key identifier cannot be empty")
	}
	return &Web3Signer{
		client:     client,
		identifier: identifier,
		address:    fromAddress,
		logger:     logger,
	}, nil
}

func (w *Web3Signer) GetAddress() common.Address {
	return w.address
}

func (w *Web3Signer) SignHash(ctx context.Context, hash common.Hash) ([]byte, error) {
	return nil, ErrDigestSigningUnsupported
}

// SignPreimage returns [R || S || V] with V in {0, 1}, after checking the
// signature recovers to the configured address.
func (w *Web3Signer) SignPreimage(ctx context.Context, preimage []byte) ([]byte, error) {
	sigHex, err := w.client.SignRaw(ctx, w.identifier, preimage)
	if err != nil {
		return nil, fmt.Errorf("failed to sign with web3signer: %w", err)
	}

	sig, err := hexutil.Decode(sigHex)
	if err != nil {
		return nil, fmt.Errorf("failed to decode web3signer signature: %w", err)
	}
	if len(sig) != crypto.SignatureLength {
		return nil, fmt.Errorf("web3signer signature has %d bytes, expected %d", len(sig), crypto.SignatureLength)
	}
	if sig[64] >= 27 {
		sig[64] -= 27
	}

	hash := crypto.Keccak256(preimage)
	pub, err := crypto.SigToPub(hash, sig)
	if err != nil {
		return nil, fmt.Errorf("failed to recover web3signer signature: %w", err)
	}
	if recovered := crypto.PubkeyToAddress(*pub); recovered != w.address {
		w.logger.Sugar().Errorw("web3signer signed with an unexpected key",
			"expected", w.address.Hex(),
			"recovered", recovered.Hex(),
		)
		return nil, fmt.Errorf("web3signer signature recovers to %s, expected %s", recovered.Hex(), w.address.Hex())
	}

	return sig, nil
}
