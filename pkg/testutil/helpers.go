package testutil

import (
	"crypto/ecdsa"
	"math/big"
	"testing"

	"github.com/Layr-Labs/eigenx-ccr-go/pkg/ccr"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

const (
	// TestPrivateKey is the well known 0x11..11 development key.
	TestPrivateKey = "1111111111111111111111111111111111111111111111111111111111111111"

	TestKettleAddress = "0x7d83e42b214b75bf1f3e57adc3415da573d97bff"
	TestChainID       = 0x067932
	TestGas           = 0x0f4240
	TestGasPrice      = 0x3b9aca00
)

// TestKey returns the key behind TestPrivateKey.
func TestKey(t *testing.T) *ecdsa.PrivateKey {
	key, err := crypto.HexToECDSA(TestPrivateKey)
	require.NoError(t, err)
	return key
}

// NewTestRecord returns an unsigned record addressed to the test kettle.
func NewTestRecord(t *testing.T, nonce uint64) *ccr.Record {
	gas := (*hexutil.Big)(new(big.Int).SetUint64(TestGas))
	gasPrice := (*hexutil.Big)(new(big.Int).SetUint64(TestGasPrice))
	n := hexutil.Uint64(nonce)
	chainID := hexutil.Uint64(TestChainID)
	to := common.HexToAddress("0x780675d71ebe3d3ef05fae379063071147dd3aee")
	input := hexutil.Bytes{0xde, 0xad, 0xbe, 0xef}

	record, err := ccr.FromTransactionRequest(&ccr.TransactionRequest{
		Nonce:    &n,
		To:       &to,
		Gas:      gas,
		GasPrice: gasPrice,
		Input:    &input,
		ChainID:  &chainID,
	}, common.HexToAddress(TestKettleAddress))
	require.NoError(t, err)
	return record
}

// NewSignedTestRequest returns a request signed by key.
func NewSignedTestRequest(t *testing.T, key *ecdsa.PrivateKey, nonce uint64, confidentialInputs []byte) *ccr.Request {
	req := ccr.NewRequest(NewTestRecord(t, nonce), confidentialInputs)
	hash := req.SigningHash()

	sigBytes, err := crypto.Sign(hash[:], key)
	require.NoError(t, err)
	sig, err := ccr.NewSignatureFromBytes(sigBytes)
	require.NoError(t, err)

	req.Record.SetSignature(*sig)
	return req
}
