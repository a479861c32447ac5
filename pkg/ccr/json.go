package ccr

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
)

type recordJSON struct {
	Nonce                  *hexutil.Uint64 `json:"nonce"`
	To                     *common.Address `json:"to"`
	Gas                    *hexutil.Uint64 `json:"gas"`
	GasPrice               *hexutil.U256   `json:"gasPrice"`
	Value                  *hexutil.U256   `json:"value"`
	Input                  *hexutil.Bytes  `json:"input"`
	KettleAddress          *common.Address `json:"kettleAddress"`
	ChainID                *hexutil.Uint64 `json:"chainId"`
	ConfidentialInputsHash *common.Hash    `json:"confidentialInputsHash,omitempty"`

	// signature, flattened
	R *hexutil.U256   `json:"r,omitempty"`
	S *hexutil.U256   `json:"s,omitempty"`
	V *hexutil.Uint64 `json:"v,omitempty"`
}

func (r Record) MarshalJSON() ([]byte, error) {
	nonce := hexutil.Uint64(r.Nonce)
	gas := hexutil.Uint64(r.Gas)
	chainID := hexutil.Uint64(r.ChainID)
	gasPrice := hexutil.U256(r.GasPrice)
	value := hexutil.U256(r.Value)
	input := hexutil.Bytes(r.Input)
	if input == nil {
		input = hexutil.Bytes{}
	}

	enc := recordJSON{
		Nonce:                  &nonce,
		To:                     &r.To,
		Gas:                    &gas,
		GasPrice:               &gasPrice,
		Value:                  &value,
		Input:                  &input,
		KettleAddress:          &r.KettleAddress,
		ChainID:                &chainID,
		ConfidentialInputsHash: r.ConfidentialInputsHash,
	}
	if r.Signature != nil {
		sr := hexutil.U256(r.Signature.R)
		ss := hexutil.U256(r.Signature.S)
		sv := hexutil.Uint64(r.Signature.V)
		enc.R, enc.S, enc.V = &sr, &ss, &sv
	}
	return json.Marshal(&enc)
}

func (r *Record) UnmarshalJSON(input []byte) error {
	var dec recordJSON
	if err := json.Unmarshal(input, &dec); err != nil {
		return err
	}

	switch {
	case dec.Nonce == nil:
		return errors.New("missing required field 'nonce' for Record")
	case dec.To == nil:
		return errors.New("missing required field 'to' for Record")
	case dec.Gas == nil:
		return errors.New("missing required field 'gas' for Record")
	case dec.GasPrice == nil:
		return errors.New("missing required field 'gasPrice' for Record")
	case dec.Value == nil:
		return errors.New("missing required field 'value' for Record")
	case dec.Input == nil:
		return errors.New("missing required field 'input' for Record")
	case dec.KettleAddress == nil:
		return errors.New("missing required field 'kettleAddress' for Record")
	case dec.ChainID == nil:
		return errors.New("missing required field 'chainId' for Record")
	}

	out := Record{
		Nonce:                  uint64(*dec.Nonce),
		To:                     *dec.To,
		Gas:                    uint64(*dec.Gas),
		GasPrice:               uint256.Int(*dec.GasPrice),
		Value:                  uint256.Int(*dec.Value),
		Input:                  []byte(*dec.Input),
		KettleAddress:          *dec.KettleAddress,
		ChainID:                uint64(*dec.ChainID),
		ConfidentialInputsHash: dec.ConfidentialInputsHash,
	}

	hasR, hasS, hasV := dec.R != nil, dec.S != nil, dec.V != nil
	if hasR || hasS || hasV {
		if !(hasR && hasS && hasV) {
			return errors.New("signature fields 'r', 's' and 'v' must be set together")
		}
		if *dec.V > 1 {
			return &InvalidSignatureError{Reason: fmt.Sprintf("recovery id %d is not 0 or 1", *dec.V)}
		}
		sig, err := NewSignature(uint8(*dec.V), (*uint256.Int)(dec.R), (*uint256.Int)(dec.S))
		if err != nil {
			return err
		}
		out.Signature = sig
	}

	*r = out
	return nil
}

type requestJSON struct {
	Record             *Record        `json:"confidentialComputeRecord"`
	ConfidentialInputs *hexutil.Bytes `json:"confidentialInputs"`
}

func (r Request) MarshalJSON() ([]byte, error) {
	inputs := hexutil.Bytes(r.ConfidentialInputs)
	if inputs == nil {
		inputs = hexutil.Bytes{}
	}
	return json.Marshal(&requestJSON{
		Record:             r.Record,
		ConfidentialInputs: &inputs,
	})
}

func (r *Request) UnmarshalJSON(input []byte) error {
	var dec requestJSON
	if err := json.Unmarshal(input, &dec); err != nil {
		return err
	}
	if dec.Record == nil {
		return errors.New("missing required field 'confidentialComputeRecord' for Request")
	}
	inputs := []byte{}
	if dec.ConfidentialInputs != nil {
		inputs = []byte(*dec.ConfidentialInputs)
	}
	r.Record = dec.Record
	r.ConfidentialInputs = inputs
	return nil
}
