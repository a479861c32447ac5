// Package ccr implements the confidential compute request transaction type: the
// record of transaction parameters, the request that carries the confidential
// inputs next to it, the signing hash, and the typed wire envelope.
package ccr

import (
	"bytes"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Record holds the parameters of a confidential compute request. KettleAddress is
// the execution node that receives the confidential inputs.
type Record struct {
	Nonce         uint64
	To            common.Address
	Gas           uint64
	GasPrice      uint256.Int
	Value         uint256.Int
	Input         []byte
	KettleAddress common.Address
	ChainID       uint64

	// set through SetConfidentialInputsHash and SetSignature only
	ConfidentialInputsHash *common.Hash
	Signature              *Signature
}

// FromTransactionRequest builds a record routed to executionNode. Gas and chain id are
// mandatory; everything else defaults to its zero value. The confidential inputs
// hash and the signature are left unset.
func FromTransactionRequest(txReq *TransactionRequest, executionNode common.Address) (*Record, error) {
	if txReq == nil {
		txReq = &TransactionRequest{}
	}

	if txReq.Gas == nil {
		return nil, &MissingFieldError{Field: "gas"}
	}
	gas := (*big.Int)(txReq.Gas)
	if !gas.IsUint64() {
		return nil, &OverflowError{Field: "gas"}
	}
	if txReq.ChainID == nil {
		return nil, &MissingFieldError{Field: "chain_id"}
	}

	record := &Record{
		Gas:           gas.Uint64(),
		KettleAddress: executionNode,
		ChainID:       uint64(*txReq.ChainID),
		Input:         []byte{},
	}
	if txReq.Nonce != nil {
		record.Nonce = uint64(*txReq.Nonce)
	}
	if txReq.To != nil {
		record.To = *txReq.To
	}
	if txReq.GasPrice != nil {
		v, err := toUint256("gas_price", (*big.Int)(txReq.GasPrice))
		if err != nil {
			return nil, err
		}
		record.GasPrice = *v
	}
	if txReq.Value != nil {
		v, err := toUint256("value", (*big.Int)(txReq.Value))
		if err != nil {
			return nil, err
		}
		record.Value = *v
	}
	if txReq.Input != nil {
		record.Input = common.CopyBytes(*txReq.Input)
	}
	return record, nil
}

func toUint256(field string, b *big.Int) (*uint256.Int, error) {
	if b.Sign() < 0 {
		return nil, &OverflowError{Field: field}
	}
	v, overflow := uint256.FromBig(b)
	if overflow {
		return nil, &OverflowError{Field: field}
	}
	return v, nil
}

func (r *Record) SetConfidentialInputsHash(hash common.Hash) {
	r.ConfidentialInputsHash = &hash
}

func (r *Record) SetSignature(sig Signature) {
	r.Signature = &sig
}

// HasMissingFields reports whether the confidential inputs hash or the signature is
// still unset. A record with missing fields cannot be wire encoded.
func (r *Record) HasMissingFields() bool {
	return r.ConfidentialInputsHash == nil || r.Signature == nil
}

// Copy returns a deep copy of the record.
func (r *Record) Copy() *Record {
	cpy := *r
	cpy.Input = common.CopyBytes(r.Input)
	if cpy.Input == nil {
		cpy.Input = []byte{}
	}
	if r.ConfidentialInputsHash != nil {
		h := *r.ConfidentialInputsHash
		cpy.ConfidentialInputsHash = &h
	}
	cpy.Signature = r.Signature.Copy()
	return &cpy
}

// Equal compares two records field by field. Nil and empty input compare equal.
func (r *Record) Equal(other *Record) bool {
	if r == nil || other == nil {
		return r == other
	}
	if r.Nonce != other.Nonce || r.To != other.To || r.Gas != other.Gas ||
		!r.GasPrice.Eq(&other.GasPrice) || !r.Value.Eq(&other.Value) ||
		!bytes.Equal(r.Input, other.Input) || r.KettleAddress != other.KettleAddress ||
		r.ChainID != other.ChainID {
		return false
	}
	if (r.ConfidentialInputsHash == nil) != (other.ConfidentialInputsHash == nil) {
		return false
	}
	if r.ConfidentialInputsHash != nil && *r.ConfidentialInputsHash != *other.ConfidentialInputsHash {
		return false
	}
	if (r.Signature == nil) != (other.Signature == nil) {
		return false
	}
	return r.Signature == nil || *r.Signature == *other.Signature
}
