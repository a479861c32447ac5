package ccr

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// SignatureLength is the length of a [R || S || V] secp256k1 signature.
const SignatureLength = crypto.SignatureLength

// Signature is a recoverable secp256k1 signature. V is the recovery id (0 or 1).
type Signature struct {
	V uint8
	R uint256.Int
	S uint256.Int
}

// NewSignature builds a signature from its components, rejecting combinations that
// are not a valid secp256k1 signature.
func NewSignature(v uint8, r, s *uint256.Int) (*Signature, error) {
	if r == nil || s == nil {
		return nil, &InvalidSignatureError{Reason: "missing r or s"}
	}
	if v > 1 {
		return nil, &InvalidSignatureError{Reason: fmt.Sprintf("recovery id %d is not 0 or 1", v)}
	}
	if !crypto.ValidateSignatureValues(v, r.ToBig(), s.ToBig(), false) {
		return nil, &InvalidSignatureError{Reason: "r or s out of range"}
	}
	return &Signature{V: v, R: *r, S: *s}, nil
}

// NewSignatureFromBytes parses a 65 byte [R || S || V] signature. V may be given as
// a recovery id (0, 1) or in the Ethereum 27/28 form.
func NewSignatureFromBytes(sig []byte) (*Signature, error) {
	if len(sig) != SignatureLength {
		return nil, &InvalidSignatureError{Reason: fmt.Sprintf("expected %d bytes, got %d", SignatureLength, len(sig))}
	}
	v := sig[64]
	if v >= 27 {
		v -= 27
	}
	r := new(uint256.Int).SetBytes(sig[0:32])
	s := new(uint256.Int).SetBytes(sig[32:64])
	return NewSignature(v, r, s)
}

// Bytes returns the signature as [R || S || V] with V in {0, 1}.
func (s *Signature) Bytes() []byte {
	out := make([]byte, SignatureLength)
	r := s.R.Bytes32()
	sv := s.S.Bytes32()
	copy(out[0:32], r[:])
	copy(out[32:64], sv[:])
	out[64] = s.V
	return out
}

// RecoverAddress returns the address whose key produced this signature over hash.
func (s *Signature) RecoverAddress(hash common.Hash) (common.Address, error) {
	pub, err := crypto.SigToPub(hash[:], s.Bytes())
	if err != nil {
		return common.Address{}, &InvalidSignatureError{Reason: err.Error()}
	}
	return crypto.PubkeyToAddress(*pub), nil
}

func (s *Signature) Copy() *Signature {
	if s == nil {
		return nil
	}
	cpy := *s
	return &cpy
}
