package ccr

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_EIP712Hash(t *testing.T) {
	t.Run("Should be deterministic", func(t *testing.T) {
		a, err := newEnvelopeRequest(t).Record.EIP712Hash()
		require.NoError(t, err)
		b, err := newEnvelopeRequest(t).Record.EIP712Hash()
		require.NoError(t, err)

		assert.Equal(t, a, b)
		assert.NotEqual(t, common.Hash{}, a)
	})

	t.Run("Should differ from the raw signing hash", func(t *testing.T) {
		req := newEnvelopeRequest(t)
		hash, err := req.Record.EIP712Hash()
		require.NoError(t, err)
		assert.NotEqual(t, req.SigningHash(), hash)
	})

	t.Run("Should ignore the signature and chain id", func(t *testing.T) {
		req := newEnvelopeRequest(t)
		expected, err := req.Record.EIP712Hash()
		require.NoError(t, err)

		req.Record.Signature = nil
		req.Record.ChainID = 1
		actual, err := req.Record.EIP712Hash()
		require.NoError(t, err)
		assert.Equal(t, expected, actual)
	})

	t.Run("Should change with committed fields", func(t *testing.T) {
		req := newEnvelopeRequest(t)
		expected, err := req.Record.EIP712Hash()
		require.NoError(t, err)

		mutations := map[string]func(r *Record){
			"nonce":  func(r *Record) { r.Nonce++ },
			"value":  func(r *Record) { r.Value = *uint256.NewInt(1) },
			"input":  func(r *Record) { r.Input = []byte{0x01} },
			"digest": func(r *Record) { r.SetConfidentialInputsHash(common.Hash{0x01}) },
		}
		for name, mutate := range mutations {
			cpy := req.Record.Copy()
			mutate(cpy)
			actual, err := cpy.EIP712Hash()
			require.NoError(t, err, name)
			assert.NotEqual(t, expected, actual, name)
		}
	})

	t.Run("Should fail without a confidential inputs hash", func(t *testing.T) {
		req := newEnvelopeRequest(t)
		req.Record.ConfidentialInputsHash = nil
		_, err := req.Record.EIP712Hash()
		assert.ErrorIs(t, err, ErrNoConfidentialInputsHash)

		_, err = BuildEIP712Envelope(req.Record)
		assert.ErrorIs(t, err, ErrState)
	})

	t.Run("Should describe every committed field", func(t *testing.T) {
		typed, err := BuildEIP712Envelope(newEnvelopeRequest(t).Record)
		require.NoError(t, err)
		assert.Equal(t, eip712PrimaryType, typed.PrimaryType)
		assert.Len(t, typed.Types[eip712PrimaryType], 8)
		for _, field := range typed.Types[eip712PrimaryType] {
			assert.Contains(t, typed.Message, field.Name)
		}
	})
}
