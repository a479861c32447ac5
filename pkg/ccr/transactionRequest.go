package ccr

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// TransactionRequest is a partially populated transaction description, shaped like
// the eth_sendTransaction argument object. Every field is optional here;
// FromTransactionRequest decides which ones are mandatory.
type TransactionRequest struct {
	Nonce    *hexutil.Uint64 `json:"nonce,omitempty"`
	To       *common.Address `json:"to,omitempty"`
	Gas      *hexutil.Big    `json:"gas,omitempty"`
	GasPrice *hexutil.Big    `json:"gasPrice,omitempty"`
	Value    *hexutil.Big    `json:"value,omitempty"`
	Input    *hexutil.Bytes  `json:"input,omitempty"`
	ChainID  *hexutil.Uint64 `json:"chainId,omitempty"`
}

// UnmarshalJSON accepts "data" as an alias of "input", preferring "input" when both
// are present.
func (t *TransactionRequest) UnmarshalJSON(b []byte) error {
	type txRequest TransactionRequest
	var dec struct {
		txRequest
		Data *hexutil.Bytes `json:"data,omitempty"`
	}
	if err := json.Unmarshal(b, &dec); err != nil {
		return err
	}
	*t = TransactionRequest(dec.txRequest)
	if t.Input == nil && dec.Data != nil {
		t.Input = dec.Data
	}
	return nil
}
