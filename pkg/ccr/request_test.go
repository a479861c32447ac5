package ccr

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHashFixtureRequest(t *testing.T) *Request {
	txReq := newFixtureTxRequest(t, fixtureHashTo, fixtureHashNonce, fixtureHashInput)
	txReq.ChainID = hexU64(1)
	record, err := FromTransactionRequest(txReq, common.HexToAddress(fixtureKettleAddress))
	require.NoError(t, err)
	return NewRequest(record, hexutil.MustDecode(fixtureHashConfidentialInputs))
}

func Test_NewRequest(t *testing.T) {
	kettle := common.HexToAddress(fixtureKettleAddress)
	newRecord := func() *Record {
		record, err := FromTransactionRequest(&TransactionRequest{
			Gas:     hexBig(fixtureGas),
			ChainID: hexU64(fixtureChainID),
		}, kettle)
		require.NoError(t, err)
		return record
	}

	t.Run("Should stamp the keccak digest of the confidential inputs", func(t *testing.T) {
		inputs := hexutil.MustDecode(fixtureEnvelopeConfidentialInputs)
		req := NewRequest(newRecord(), inputs)

		require.NotNil(t, req.Record.ConfidentialInputsHash)
		assert.Equal(t, crypto.Keccak256Hash(inputs), *req.Record.ConfidentialInputsHash)
		assert.Equal(t, inputs, req.ConfidentialInputs)
	})

	t.Run("Should produce identical digests for identical inputs", func(t *testing.T) {
		a := NewRequest(newRecord(), []byte("same"))
		b := NewRequest(newRecord(), []byte("same"))
		assert.Equal(t, *a.Record.ConfidentialInputsHash, *b.Record.ConfidentialInputsHash)
	})

	t.Run("Should produce different digests for different inputs", func(t *testing.T) {
		a := NewRequest(newRecord(), []byte("one"))
		b := NewRequest(newRecord(), []byte("two"))
		assert.NotEqual(t, *a.Record.ConfidentialInputsHash, *b.Record.ConfidentialInputsHash)
	})

	t.Run("Should not alias the caller's confidential inputs", func(t *testing.T) {
		inputs := []byte("secret")
		req := NewRequest(newRecord(), inputs)

		inputs[0] = 'X'
		assert.Equal(t, []byte("secret"), req.ConfidentialInputs)
		assert.Equal(t, crypto.Keccak256Hash(req.ConfidentialInputs), *req.Record.ConfidentialInputsHash)
	})

	t.Run("Should accept empty confidential inputs", func(t *testing.T) {
		req := NewRequest(newRecord(), nil)
		assert.Equal(t, []byte{}, req.ConfidentialInputs)
		assert.Equal(t, crypto.Keccak256Hash(nil), *req.Record.ConfidentialInputsHash)
	})

	t.Run("Should overwrite a digest set earlier", func(t *testing.T) {
		record := newRecord()
		record.SetConfidentialInputsHash(common.HexToHash("0x01"))
		req := NewRequest(record, []byte("inputs"))
		assert.Equal(t, crypto.Keccak256Hash([]byte("inputs")), *req.Record.ConfidentialInputsHash)
	})
}

func Test_SigningHash(t *testing.T) {
	t.Run("Should match the reference vector", func(t *testing.T) {
		req := newHashFixtureRequest(t)
		assert.Equal(t, common.HexToHash(fixtureHash), req.SigningHash())
		assert.Equal(t, req.SigningHash(), req.Hash())
	})

	t.Run("Should prefix the preimage with the record type", func(t *testing.T) {
		req := newHashFixtureRequest(t)
		preimage := req.EncodeForSigning()
		assert.Equal(t, RecordType, preimage[0])
		assert.Equal(t, crypto.Keccak256Hash(preimage), req.SigningHash())
	})

	t.Run("Should ignore chain id and signature", func(t *testing.T) {
		req := newHashFixtureRequest(t)
		expected := req.SigningHash()

		req.Record.ChainID = fixtureChainID
		req.Record.SetSignature(fixtureSignature(t))
		assert.Equal(t, expected, req.SigningHash())
	})

	t.Run("Should depend on the confidential inputs only through their digest", func(t *testing.T) {
		a := newHashFixtureRequest(t)
		b := a.Copy()
		b.ConfidentialInputs = []byte("entirely different bytes")

		assert.Equal(t, a.SigningHash(), b.SigningHash())
	})

	t.Run("Should change when a committed field changes", func(t *testing.T) {
		req := newHashFixtureRequest(t)
		expected := req.SigningHash()

		mutations := map[string]func(r *Record){
			"nonce":    func(r *Record) { r.Nonce++ },
			"gas":      func(r *Record) { r.Gas++ },
			"gasPrice": func(r *Record) { r.GasPrice = *uint256.NewInt(1) },
			"value":    func(r *Record) { r.Value = *uint256.NewInt(1) },
			"to":       func(r *Record) { r.To = common.Address{} },
			"kettle":   func(r *Record) { r.KettleAddress = common.Address{} },
			"input":    func(r *Record) { r.Input = []byte{0x01} },
			"digest":   func(r *Record) { r.SetConfidentialInputsHash(common.Hash{}) },
		}
		for name, mutate := range mutations {
			cpy := req.Copy()
			mutate(cpy.Record)
			assert.NotEqual(t, expected, cpy.SigningHash(), name)
		}
	})

	t.Run("Should panic without a confidential inputs hash", func(t *testing.T) {
		record, err := FromTransactionRequest(&TransactionRequest{
			Gas:     hexBig(fixtureGas),
			ChainID: hexU64(fixtureChainID),
		}, common.HexToAddress(fixtureKettleAddress))
		require.NoError(t, err)

		req := &Request{Record: record}
		assert.Panics(t, func() { req.SigningHash() })
	})
}

func Test_SignAndRecover(t *testing.T) {
	key, err := crypto.HexToECDSA(fixturePrivateKey)
	require.NoError(t, err)

	t.Run("Should reproduce the reference signature", func(t *testing.T) {
		req := newEnvelopeRequest(t)
		hash := req.SigningHash()

		sigBytes, err := crypto.Sign(hash[:], key)
		require.NoError(t, err)

		sig, err := NewSignatureFromBytes(sigBytes)
		require.NoError(t, err)
		assert.Equal(t, uint8(0), sig.V)
		assert.Equal(t, uint256.MustFromHex(fixtureSigR), &sig.R)
		assert.Equal(t, uint256.MustFromHex(fixtureSigS), &sig.S)
	})

	t.Run("Should recover the signer address", func(t *testing.T) {
		req := newEnvelopeRequest(t)
		sender, err := req.Sender()
		require.NoError(t, err)
		assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey), sender)
	})

	t.Run("Should fail to recover an unsigned request", func(t *testing.T) {
		req := newHashFixtureRequest(t)
		_, err := req.Sender()
		assert.ErrorIs(t, err, ErrSignature)
	})

	t.Run("Should fail without panicking when the digest is missing", func(t *testing.T) {
		req := newEnvelopeRequest(t)
		req.Record.ConfidentialInputsHash = nil

		assert.NotPanics(t, func() {
			_, err := req.Sender()
			assert.ErrorIs(t, err, ErrIncompleteRecord)
		})
	})
}
