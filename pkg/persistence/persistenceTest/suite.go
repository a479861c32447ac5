// Package persistenceTest holds the behaviour every IEnvelopePersistence
// backend must share, run by each backend's own tests.
package persistenceTest

import (
	"sync"
	"testing"

	"github.com/Layr-Labs/eigenx-ccr-go/pkg/persistence"
	"github.com/Layr-Labs/eigenx-ccr-go/pkg/testutil"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns a fresh, empty backend. The suite closes it.
type Factory func(t *testing.T) persistence.IEnvelopePersistence

// NewTestEnvelope returns a journal entry for a request signed with the test key.
func NewTestEnvelope(t *testing.T, nonce uint64, createdAt int64) *persistence.StoredEnvelope {
	req := testutil.NewSignedTestRequest(t, testutil.TestKey(t), nonce, []byte("confidential"))
	se, err := persistence.NewStoredEnvelope(req)
	require.NoError(t, err)
	se.CreatedAt = createdAt
	return se
}

// RunSuite exercises a backend against the IEnvelopePersistence contract.
func RunSuite(t *testing.T, newPersistence Factory) {
	t.Run("Should save and load an envelope", func(t *testing.T) {
		p := newPersistence(t)
		defer func() { _ = p.Close() }()

		se := NewTestEnvelope(t, 1, 1000)
		require.NoError(t, p.SaveEnvelope(se))

		loaded, err := p.LoadEnvelope(se.Hash)
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Equal(t, se, loaded)

		req, err := loaded.Request()
		require.NoError(t, err)
		assert.Equal(t, se.Hash, req.Hash())
		assert.Equal(t, crypto.PubkeyToAddress(testutil.TestKey(t).PublicKey), loaded.Sender)
	})

	t.Run("Should return nil for an unknown hash", func(t *testing.T) {
		p := newPersistence(t)
		defer func() { _ = p.Close() }()

		loaded, err := p.LoadEnvelope(common.HexToHash("0x1234"))
		require.NoError(t, err)
		assert.Nil(t, loaded)
	})

	t.Run("Should reject a nil envelope", func(t *testing.T) {
		p := newPersistence(t)
		defer func() { _ = p.Close() }()

		err := p.SaveEnvelope(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "nil StoredEnvelope")
	})

	t.Run("Should overwrite an envelope saved twice", func(t *testing.T) {
		p := newPersistence(t)
		defer func() { _ = p.Close() }()

		se := NewTestEnvelope(t, 2, 1000)
		require.NoError(t, p.SaveEnvelope(se))
		se.CreatedAt = 2000
		require.NoError(t, p.SaveEnvelope(se))

		listed, err := p.ListEnvelopes()
		require.NoError(t, err)
		require.Len(t, listed, 1)
		assert.Equal(t, int64(2000), listed[0].CreatedAt)
	})

	t.Run("Should list envelopes in creation order", func(t *testing.T) {
		p := newPersistence(t)
		defer func() { _ = p.Close() }()

		listed, err := p.ListEnvelopes()
		require.NoError(t, err)
		assert.Empty(t, listed)

		createdAt := []int64{5000, 1000, 3000, 3000, 2000}
		for i, ts := range createdAt {
			require.NoError(t, p.SaveEnvelope(NewTestEnvelope(t, uint64(i), ts)))
		}

		listed, err = p.ListEnvelopes()
		require.NoError(t, err)
		require.Len(t, listed, len(createdAt))
		for i := 0; i < len(listed)-1; i++ {
			assert.LessOrEqual(t, listed[i].CreatedAt, listed[i+1].CreatedAt)
		}
		assert.Equal(t, int64(3000), listed[2].CreatedAt)
		assert.Equal(t, int64(3000), listed[3].CreatedAt)
		assert.Negative(t, listed[2].Hash.Cmp(listed[3].Hash))
	})

	t.Run("Should delete idempotently", func(t *testing.T) {
		p := newPersistence(t)
		defer func() { _ = p.Close() }()

		se := NewTestEnvelope(t, 3, 1000)
		require.NoError(t, p.SaveEnvelope(se))

		require.NoError(t, p.DeleteEnvelope(se.Hash))
		loaded, err := p.LoadEnvelope(se.Hash)
		require.NoError(t, err)
		assert.Nil(t, loaded)

		listed, err := p.ListEnvelopes()
		require.NoError(t, err)
		assert.Empty(t, listed)

		require.NoError(t, p.DeleteEnvelope(se.Hash))
	})

	t.Run("Should not share state with callers", func(t *testing.T) {
		p := newPersistence(t)
		defer func() { _ = p.Close() }()

		se := NewTestEnvelope(t, 4, 1000)
		original := se.Copy()
		require.NoError(t, p.SaveEnvelope(se))

		se.Envelope[1] ^= 0xff
		se.Nonce = 99

		loaded, err := p.LoadEnvelope(original.Hash)
		require.NoError(t, err)
		assert.Equal(t, original, loaded)

		loaded.Envelope[1] ^= 0xff
		again, err := p.LoadEnvelope(original.Hash)
		require.NoError(t, err)
		assert.Equal(t, original, again)
	})

	t.Run("Should fail every operation after close", func(t *testing.T) {
		p := newPersistence(t)
		require.NoError(t, p.HealthCheck())

		require.NoError(t, p.Close())
		require.NoError(t, p.Close())

		se := NewTestEnvelope(t, 5, 1000)
		assert.Error(t, p.SaveEnvelope(se))
		_, err := p.LoadEnvelope(se.Hash)
		assert.Error(t, err)
		_, err = p.ListEnvelopes()
		assert.Error(t, err)
		assert.Error(t, p.DeleteEnvelope(se.Hash))
		assert.Error(t, p.HealthCheck())
	})

	t.Run("Should tolerate concurrent writers", func(t *testing.T) {
		p := newPersistence(t)
		defer func() { _ = p.Close() }()

		const writers = 8
		envelopes := make([]*persistence.StoredEnvelope, writers)
		for i := range envelopes {
			envelopes[i] = NewTestEnvelope(t, uint64(100+i), int64(i))
		}

		var wg sync.WaitGroup
		for _, se := range envelopes {
			wg.Add(1)
			go func(se *persistence.StoredEnvelope) {
				defer wg.Done()
				assert.NoError(t, p.SaveEnvelope(se))
				_, err := p.LoadEnvelope(se.Hash)
				assert.NoError(t, err)
			}(se)
		}
		wg.Wait()

		listed, err := p.ListEnvelopes()
		require.NoError(t, err)
		assert.Len(t, listed, writers)
	})
}
