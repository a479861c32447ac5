package ccr

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func hexBig(v uint64) *hexutil.Big {
	return (*hexutil.Big)(new(big.Int).SetUint64(v))
}

func hexU64(v uint64) *hexutil.Uint64 {
	h := hexutil.Uint64(v)
	return &h
}

func addressPtr(s string) *common.Address {
	a := common.HexToAddress(s)
	return &a
}

func bytesPtr(t *testing.T, s string) *hexutil.Bytes {
	b, err := hexutil.Decode(s)
	require.NoError(t, err)
	h := hexutil.Bytes(b)
	return &h
}

func newFixtureTxRequest(t *testing.T, to string, nonce uint64, input string) *TransactionRequest {
	return &TransactionRequest{
		Nonce:    hexU64(nonce),
		To:       addressPtr(to),
		Gas:      hexBig(fixtureGas),
		GasPrice: hexBig(fixtureGasPrice),
		Input:    bytesPtr(t, input),
		ChainID:  hexU64(fixtureChainID),
	}
}

func fixtureSignature(t *testing.T) Signature {
	sig, err := NewSignature(0, uint256.MustFromHex(fixtureSigR), uint256.MustFromHex(fixtureSigS))
	require.NoError(t, err)
	return *sig
}

// newEnvelopeRequest builds the signed request behind fixtureEnvelope.
func newEnvelopeRequest(t *testing.T) *Request {
	txReq := newFixtureTxRequest(t, fixtureEnvelopeTo, fixtureEnvelopeNonce, fixtureEnvelopeInput)
	record, err := FromTransactionRequest(txReq, common.HexToAddress(fixtureKettleAddress))
	require.NoError(t, err)
	record.SetSignature(fixtureSignature(t))

	return NewRequest(record, hexutil.MustDecode(fixtureEnvelopeConfidentialInputs))
}
