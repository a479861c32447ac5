// Package requestSigner attaches signatures to confidential compute requests
// using an injected hash signer.
package requestSigner

import (
	"context"

	"github.com/Layr-Labs/eigenx-ccr-go/pkg/ccr"
	"github.com/Layr-Labs/eigenx-ccr-go/pkg/hashSigner"
	"go.uber.org/zap"
)

type RequestSigner struct {
	signer hashSigner.IHashSigner
	logger *zap.Logger
}

func NewRequestSigner(signer hashSigner.IHashSigner, logger *zap.Logger) *RequestSigner {
	return &RequestSigner{
		signer: signer,
		logger: logger,
	}
}

// Sign returns a signed copy of req; req itself is left untouched. The signer
// is called exactly once, with the signing preimage when it implements
// IPreimageSigner and with the signing hash otherwise. Failures of the signer,
// including unusable signatures, are returned as *ccr.SigningError.
func (rs *RequestSigner) Sign(ctx context.Context, req *ccr.Request) (*ccr.Request, error) {
	if req == nil || req.Record == nil || req.Record.ConfidentialInputsHash == nil {
		return nil, ccr.ErrIncompleteRecord
	}

	signed := req.Copy()
	hash := signed.SigningHash()

	var (
		raw []byte
		err error
	)
	if preimageSigner, ok := rs.signer.(hashSigner.IPreimageSigner); ok {
		raw, err = preimageSigner.SignPreimage(ctx, signed.EncodeForSigning())
	} else {
		raw, err = rs.signer.SignHash(ctx, hash)
	}
	if err != nil {
		rs.logger.Sugar().Warnw("Signer rejected request",
			"hash", hash.Hex(),
			"error", err,
		)
		return nil, &ccr.SigningError{Err: err}
	}

	sig, err := ccr.NewSignatureFromBytes(raw)
	if err != nil {
		return nil, &ccr.SigningError{Err: err}
	}
	signed.Record.SetSignature(*sig)

	rs.logger.Sugar().Debugw("Signed request",
		"hash", hash.Hex(),
		"signer", rs.signer.GetAddress().Hex(),
		"executionNode", signed.Record.KettleAddress.Hex(),
	)
	return signed, nil
}
