package badger

import (
	"testing"

	"github.com/Layr-Labs/eigenx-ccr-go/pkg/logger"
	"github.com/Layr-Labs/eigenx-ccr-go/pkg/persistence"
	"github.com/Layr-Labs/eigenx-ccr-go/pkg/persistence/persistenceTest"
	badgerdb "github.com/dgraph-io/badger/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBadgerPersistence(t *testing.T) {
	persistenceTest.RunSuite(t, func(t *testing.T) persistence.IEnvelopePersistence {
		testLogger, _ := logger.NewLogger(&logger.LoggerConfig{Debug: false})

		bp, err := NewBadgerPersistence(t.TempDir(), testLogger)
		require.NoError(t, err)
		return bp
	})
}

func TestBadgerPersistence_Persistence_AcrossRestarts(t *testing.T) {
	tmpDir := t.TempDir()
	testLogger, _ := logger.NewLogger(&logger.LoggerConfig{Debug: false})

	bp1, err := NewBadgerPersistence(tmpDir, testLogger)
	require.NoError(t, err)

	first := persistenceTest.NewTestEnvelope(t, 1, 1000)
	second := persistenceTest.NewTestEnvelope(t, 2, 2000)
	require.NoError(t, bp1.SaveEnvelope(first))
	require.NoError(t, bp1.SaveEnvelope(second))
	require.NoError(t, bp1.DeleteEnvelope(first.Hash))
	require.NoError(t, bp1.Close())

	bp2, err := NewBadgerPersistence(tmpDir, testLogger)
	require.NoError(t, err)
	defer func() { _ = bp2.Close() }()

	listed, err := bp2.ListEnvelopes()
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, second, listed[0])
}

func TestBadgerPersistence_SchemaVersionMismatch(t *testing.T) {
	tmpDir := t.TempDir()
	testLogger, _ := logger.NewLogger(&logger.LoggerConfig{Debug: false})

	bp, err := NewBadgerPersistence(tmpDir, testLogger)
	require.NoError(t, err)
	require.NoError(t, bp.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set([]byte(keySchemaVersion), []byte("v0"))
	}))
	require.NoError(t, bp.Close())

	_, err = NewBadgerPersistence(tmpDir, testLogger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported schema version")
}

func TestBadgerPersistence_ListSkipsCorruptEntries(t *testing.T) {
	testLogger, _ := logger.NewLogger(&logger.LoggerConfig{Debug: false})

	bp, err := NewBadgerPersistence(t.TempDir(), testLogger)
	require.NoError(t, err)
	defer func() { _ = bp.Close() }()

	se := persistenceTest.NewTestEnvelope(t, 1, 1000)
	require.NoError(t, bp.SaveEnvelope(se))
	require.NoError(t, bp.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set([]byte(keyPrefixEnvelope+"garbage"), []byte("not json"))
	}))

	listed, err := bp.ListEnvelopes()
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, se.Hash, listed[0].Hash)
}
