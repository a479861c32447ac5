package ccr

import (
	"io"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
)

const (
	// RecordType prefixes the signing preimage.
	RecordType byte = 0x42
	// RequestType prefixes the wire envelope.
	RequestType byte = 0x43
)

// recordWire is the rlp layout of a complete record inside the envelope.
type recordWire struct {
	Nonce                  uint64
	GasPrice               *uint256.Int
	Gas                    uint64
	To                     common.Address
	Value                  *uint256.Int
	Input                  []byte
	KettleAddress          common.Address
	ConfidentialInputsHash common.Hash
	ChainID                uint64
	V                      uint8
	R                      *uint256.Int
	S                      *uint256.Int
}

type requestWire struct {
	Record             recordWire
	ConfidentialInputs []byte
}

// signingHashFields is the rlp layout hashed for signing. Chain id and signature are
// not part of it, and the confidential inputs appear only through their hash.
type signingHashFields struct {
	KettleAddress          common.Address
	ConfidentialInputsHash common.Hash
	Nonce                  uint64
	GasPrice               *uint256.Int
	Gas                    uint64
	To                     common.Address
	Value                  *uint256.Int
	Input                  []byte
}

func newRecordWire(r *Record) recordWire {
	return recordWire{
		Nonce:                  r.Nonce,
		GasPrice:               new(uint256.Int).Set(&r.GasPrice),
		Gas:                    r.Gas,
		To:                     r.To,
		Value:                  new(uint256.Int).Set(&r.Value),
		Input:                  r.Input,
		KettleAddress:          r.KettleAddress,
		ConfidentialInputsHash: *r.ConfidentialInputsHash,
		ChainID:                r.ChainID,
		V:                      r.Signature.V,
		R:                      new(uint256.Int).Set(&r.Signature.R),
		S:                      new(uint256.Int).Set(&r.Signature.S),
	}
}

func (w *recordWire) toRecord() (*Record, error) {
	sig, err := NewSignature(w.V, w.R, w.S)
	if err != nil {
		return nil, err
	}
	hash := w.ConfidentialInputsHash
	input := w.Input
	if input == nil {
		input = []byte{}
	}
	return &Record{
		Nonce:                  w.Nonce,
		To:                     w.To,
		Gas:                    w.Gas,
		GasPrice:               *w.GasPrice,
		Value:                  *w.Value,
		Input:                  input,
		KettleAddress:          w.KettleAddress,
		ChainID:                w.ChainID,
		ConfidentialInputsHash: &hash,
		Signature:              sig,
	}, nil
}

func newSigningHashFields(r *Request) signingHashFields {
	record := r.Record
	if record.ConfidentialInputsHash == nil {
		panic("ccr: signing hash requested for a record without a confidential inputs hash")
	}
	return signingHashFields{
		KettleAddress:          record.KettleAddress,
		ConfidentialInputsHash: *record.ConfidentialInputsHash,
		Nonce:                  record.Nonce,
		GasPrice:               new(uint256.Int).Set(&record.GasPrice),
		Gas:                    record.Gas,
		To:                     record.To,
		Value:                  new(uint256.Int).Set(&record.Value),
		Input:                  record.Input,
	}
}

func encodeWithPrefix(prefix byte, val interface{}) ([]byte, error) {
	payload, err := rlp.EncodeToBytes(val)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(payload)+1)
	out = append(out, prefix)
	return append(out, payload...), nil
}

// EncodeForSigning returns 0x42 || rlp(signing fields), the preimage of the signing
// hash.
func (r *Request) EncodeForSigning() []byte {
	out, err := encodeWithPrefix(RecordType, newSigningHashFields(r))
	if err != nil {
		// only fixed-size fields, integers and byte strings; rlp cannot fail on them
		panic(err)
	}
	return out
}

// EncodeRequest returns the wire envelope 0x43 || rlp([record, confidentialInputs]).
// Both the confidential inputs hash and the signature must be set.
func EncodeRequest(r *Request) ([]byte, error) {
	if r == nil || r.Record == nil || r.Record.HasMissingFields() {
		return nil, ErrIncompleteRecord
	}
	inputs := r.ConfidentialInputs
	if inputs == nil {
		inputs = []byte{}
	}
	return encodeWithPrefix(RequestType, &requestWire{
		Record:             newRecordWire(r.Record),
		ConfidentialInputs: inputs,
	})
}

// DecodeRequest parses a wire envelope. Every field must be present; nothing is
// defaulted.
func DecodeRequest(b []byte) (*Request, error) {
	if len(b) == 0 {
		return nil, &MalformedEncodingError{Err: io.ErrUnexpectedEOF}
	}
	if b[0] != RequestType {
		return nil, &UnsupportedTypeError{Got: b[0], Want: RequestType}
	}

	var wire requestWire
	if err := rlp.DecodeBytes(b[1:], &wire); err != nil {
		return nil, &MalformedEncodingError{Err: err}
	}
	record, err := wire.Record.toRecord()
	if err != nil {
		return nil, err
	}
	inputs := wire.ConfidentialInputs
	if inputs == nil {
		inputs = []byte{}
	}
	return &Request{
		Record:             record,
		ConfidentialInputs: inputs,
	}, nil
}

func (r *Request) MarshalBinary() ([]byte, error) {
	return EncodeRequest(r)
}

func (r *Request) UnmarshalBinary(b []byte) error {
	decoded, err := DecodeRequest(b)
	if err != nil {
		return err
	}
	*r = *decoded
	return nil
}
