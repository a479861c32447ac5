package persistence

import (
	"encoding/json"
	"fmt"
)

// MarshalStoredEnvelope serializes a StoredEnvelope to JSON bytes.
func MarshalStoredEnvelope(se *StoredEnvelope) ([]byte, error) {
	if se == nil {
		return nil, fmt.Errorf("cannot marshal nil StoredEnvelope")
	}

	data, err := json.Marshal(se)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal StoredEnvelope to JSON: %w", err)
	}

	return data, nil
}

// UnmarshalStoredEnvelope deserializes a StoredEnvelope from JSON bytes.
func UnmarshalStoredEnvelope(data []byte) (*StoredEnvelope, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("cannot unmarshal empty data")
	}

	var se StoredEnvelope
	if err := json.Unmarshal(data, &se); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON to StoredEnvelope: %w", err)
	}

	return &se, nil
}
