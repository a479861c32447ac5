package ccr

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

const eip712PrimaryType = "ConfidentialRecord"

// ErrNoConfidentialInputsHash is returned when typed data is requested for a
// record that has no confidential inputs hash.
var ErrNoConfidentialInputsHash = &stateError{msg: "record has no confidential inputs hash"}

// BuildEIP712Envelope describes the record as EIP-712 typed data, for signers that
// only sign typed data. It covers the same fields as the signing hash.
func BuildEIP712Envelope(r *Record) (apitypes.TypedData, error) {
	if r.ConfidentialInputsHash == nil {
		return apitypes.TypedData{}, ErrNoConfidentialInputsHash
	}

	return apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": []apitypes.Type{
				{Name: "name", Type: "string"},
			},
			eip712PrimaryType: []apitypes.Type{
				{Name: "nonce", Type: "uint64"},
				{Name: "gasPrice", Type: "uint256"},
				{Name: "gas", Type: "uint64"},
				{Name: "to", Type: "address"},
				{Name: "value", Type: "uint256"},
				{Name: "data", Type: "bytes"},
				{Name: "kettleAddress", Type: "address"},
				{Name: "confidentialInputsHash", Type: "bytes32"},
			},
		},
		Domain: apitypes.TypedDataDomain{
			Name: eip712PrimaryType,
		},
		PrimaryType: eip712PrimaryType,
		Message: apitypes.TypedDataMessage{
			"nonce":                  new(big.Int).SetUint64(r.Nonce),
			"gasPrice":               r.GasPrice.ToBig(),
			"gas":                    new(big.Int).SetUint64(r.Gas),
			"to":                     r.To.Hex(),
			"value":                  r.Value.ToBig(),
			"data":                   hexutil.Encode(r.Input),
			"kettleAddress":          r.KettleAddress.Hex(),
			"confidentialInputsHash": r.ConfidentialInputsHash.Hex(),
		},
	}, nil
}

// EIP712Hash returns the EIP-712 digest of the record.
func (r *Record) EIP712Hash() (common.Hash, error) {
	typed, err := BuildEIP712Envelope(r)
	if err != nil {
		return common.Hash{}, err
	}
	hash, _, err := apitypes.TypedDataAndHash(typed)
	if err != nil {
		return common.Hash{}, err
	}
	return common.BytesToHash(hash), nil
}
