package privateKeySigner

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/Layr-Labs/eigenx-ccr-go/pkg/hashSigner"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

// PrivateKeySigner signs with an in-process secp256k1 key.
type PrivateKeySigner struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address
	logger     *zap.Logger
}

var _ hashSigner.IHashSigner = (*PrivateKeySigner)(nil)

// NewPrivateKeySigner parses a hex private key, with or without 0x.
func NewPrivateKeySigner(privateKeyHex string, logger *zap.Logger) (*PrivateKeySigner, error) {
	if privateKeyHex == "" {
		return nil, fmt.Errorf("private key cannot be empty")
	}

	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	return NewPrivateKeySignerFromKey(privateKey, logger), nil
}

func NewPrivateKeySignerFromKey(privateKey *ecdsa.PrivateKey, logger *zap.Logger) *PrivateKeySigner {
	address := crypto.PubkeyToAddress(privateKey.PublicKey)
	logger.Sugar().Debugw("Created private key signer", "address", address.Hex())

	return &PrivateKeySigner{
		privateKey: privateKey,
		address:    address,
		logger:     logger,
	}
}

// SignHash returns [R || S || V] with V in {0, 1}.
func (pks *PrivateKeySigner) SignHash(ctx context.Context, hash common.Hash) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return crypto.Sign(hash[:], pks.privateKey)
}

func (pks *PrivateKeySigner) GetAddress() common.Address {
	return pks.address
}
