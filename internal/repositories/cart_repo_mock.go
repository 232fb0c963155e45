package repositories

import (
	"encoding/json"
	"fmt"
	"sync"

	"footballshop/internal/models"
)

// MockCartRepository is an in-memory implementation of CartRepository.
// It stores serialized snapshots so Load exercises the same
// encode/decode round trip as the database-backed implementation.
type MockCartRepository struct {
	snapshots map[string][]byte
	mu        sync.RWMutex
}

// NewMockCartRepository creates a new instance of MockCartRepository.
func NewMockCartRepository() *MockCartRepository {
	return &MockCartRepository{
		snapshots: make(map[string][]byte),
	}
}

// Load returns the snapshot stored under key, or an empty cart state if
// none has been saved yet.
func (r *MockCartRepository) Load(key string) (*models.CartState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data, ok := r.snapshots[key]
	if !ok {
		return &models.CartState{}, nil
	}
	var state models.CartState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to decode cart snapshot %s: %w", key, err)
	}
	return &state, nil
}

// Save stores the serialized snapshot under key.
func (r *MockCartRepository) Save(key string, state *models.CartState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode cart snapshot %s: %w", key, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots[key] = data
	return nil
}
