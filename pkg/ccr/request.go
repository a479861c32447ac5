package ccr

import (
	"bytes"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Request pairs a record with the raw confidential inputs it commits to.
type Request struct {
	Record             *Record
	ConfidentialInputs []byte
}

// NewRequest stamps record with keccak256(confidentialInputs) and wraps both. The
// record is owned by the returned request; the inputs are copied.
func NewRequest(record *Record, confidentialInputs []byte) *Request {
	confidentialInputs = common.CopyBytes(confidentialInputs)
	if confidentialInputs == nil {
		confidentialInputs = []byte{}
	}
	record.SetConfidentialInputsHash(crypto.Keccak256Hash(confidentialInputs))

	return &Request{
		Record:             record,
		ConfidentialInputs: confidentialInputs,
	}
}

// SigningHash returns keccak256(0x42 || rlp(signing fields)). It panics when the
// record has no confidential inputs hash; requests built with NewRequest always
// have one.
func (r *Request) SigningHash() common.Hash {
	return crypto.Keccak256Hash(r.EncodeForSigning())
}

// Hash is the transaction identity. It equals the signing hash; attaching a
// signature does not change it.
func (r *Request) Hash() common.Hash {
	return r.SigningHash()
}

// Sender recovers the address that signed the request.
func (r *Request) Sender() (common.Address, error) {
	if r.Record.Signature == nil {
		return common.Address{}, &InvalidSignatureError{Reason: "request is not signed"}
	}
	if r.Record.ConfidentialInputsHash == nil {
		return common.Address{}, ErrIncompleteRecord
	}
	return r.Record.Signature.RecoverAddress(r.SigningHash())
}

// Copy returns a deep copy of the request.
func (r *Request) Copy() *Request {
	inputs := common.CopyBytes(r.ConfidentialInputs)
	if inputs == nil {
		inputs = []byte{}
	}
	return &Request{
		Record:             r.Record.Copy(),
		ConfidentialInputs: inputs,
	}
}

func (r *Request) Equal(other *Request) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.Record.Equal(other.Record) && bytes.Equal(r.ConfidentialInputs, other.ConfidentialInputs)
}
