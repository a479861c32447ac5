package memory

import (
	"fmt"
	"sync"

	"github.com/Layr-Labs/eigenx-ccr-go/pkg/persistence"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// MemoryPersistence is an in-memory implementation of IEnvelopePersistence.
//
// All data is lost when the process exits. Stored values are deep copied in both
// directions so callers can't mutate the journal.
type MemoryPersistence struct {
	mu        sync.RWMutex
	envelopes map[common.Hash]*persistence.StoredEnvelope
	closed    bool
}

// NewMemoryPersistence creates a new in-memory persistence layer.
func NewMemoryPersistence(logger *zap.Logger) *MemoryPersistence {
	logger.Sugar().Warnw("Using in-memory envelope journal, envelopes will be lost on exit",
		"hint", "set CCR_PERSISTENCE_TYPE=badger or redis to keep them",
	)

	return &MemoryPersistence{
		envelopes: make(map[common.Hash]*persistence.StoredEnvelope),
	}
}

func (m *MemoryPersistence) SaveEnvelope(envelope *persistence.StoredEnvelope) error {
	if envelope == nil {
		return fmt.Errorf("cannot save nil StoredEnvelope")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("persistence layer is closed")
	}

	m.envelopes[envelope.Hash] = envelope.Copy()
	return nil
}

func (m *MemoryPersistence) LoadEnvelope(hash common.Hash) (*persistence.StoredEnvelope, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, fmt.Errorf("persistence layer is closed")
	}

	envelope, exists := m.envelopes[hash]
	if !exists {
		return nil, nil
	}
	return envelope.Copy(), nil
}

func (m *MemoryPersistence) ListEnvelopes() ([]*persistence.StoredEnvelope, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, fmt.Errorf("persistence layer is closed")
	}

	envelopes := make([]*persistence.StoredEnvelope, 0, len(m.envelopes))
	for _, envelope := range m.envelopes {
		envelopes = append(envelopes, envelope.Copy())
	}
	persistence.SortEnvelopes(envelopes)

	return envelopes, nil
}

func (m *MemoryPersistence) DeleteEnvelope(hash common.Hash) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("persistence layer is closed")
	}

	delete(m.envelopes, hash)
	return nil
}

// Close marks the persistence layer closed and drops its contents.
func (m *MemoryPersistence) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.envelopes = nil
	return nil
}

func (m *MemoryPersistence) HealthCheck() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return fmt.Errorf("persistence layer is closed")
	}
	return nil
}
