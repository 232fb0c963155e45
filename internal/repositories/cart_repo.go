package repositories

import (
	"footballshop/internal/models"
)

// CartRepository defines the interface for cart snapshot persistence.
// Snapshots are keyed by a fixed logical store name so that a restart
// of the storefront restores the identical cart state.
type CartRepository interface {
	// Load returns the snapshot stored under key. A missing snapshot is
	// not an error: it yields an empty cart.
	Load(key string) (*models.CartState, error)
	// Save replaces the snapshot stored under key.
	Save(key string, state *models.CartState) error
}
