package persistence

import "github.com/ethereum/go-ethereum/common"

// IEnvelopePersistence journals signed envelopes so they can be inspected or
// resubmitted after the process that signed them has exited.
// All implementations must be thread-safe.
type IEnvelopePersistence interface {
	// SaveEnvelope persists an envelope keyed by its hash.
	// Saving the same hash twice overwrites the previous entry.
	SaveEnvelope(envelope *StoredEnvelope) error

	// LoadEnvelope retrieves an envelope by hash.
	// Returns nil if it doesn't exist, error only on storage failure.
	LoadEnvelope(hash common.Hash) (*StoredEnvelope, error)

	// ListEnvelopes returns every journaled envelope sorted by CreatedAt, then hash.
	// Returns an empty slice if none exist.
	ListEnvelopes() ([]*StoredEnvelope, error)

	// DeleteEnvelope removes an envelope by hash.
	// Idempotent - returns nil if it doesn't exist.
	DeleteEnvelope(hash common.Hash) error

	// Close cleanly shuts down the persistence layer.
	// Idempotent - safe to call multiple times.
	// After Close(), all other operations return errors.
	Close() error

	// HealthCheck verifies the persistence layer is operational.
	HealthCheck() error
}
