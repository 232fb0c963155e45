package repositories

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"footballshop/internal/models"
)

// CartSnapshot is the persisted row backing a cart store. The cart state
// is stored as a JSON document so reloads reconstruct lines, quantities
// and coupon exactly as serialized.
type CartSnapshot struct {
	Key       string `gorm:"primaryKey;type:varchar(64)"`
	Data      string `gorm:"type:text"`
	UpdatedAt time.Time
}

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{
		db: db,
	}
}

// Load retrieves the cart snapshot stored under key. When no snapshot
// exists yet, an empty cart state is returned.
func (r *GORMCartRepository) Load(key string) (*models.CartState, error) {
	var row CartSnapshot
	if err := r.db.First(&row, "key = ?", key).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return &models.CartState{}, nil
		}
		return nil, fmt.Errorf("failed to load cart snapshot %s: %w", key, err)
	}

	var state models.CartState
	if err := json.Unmarshal([]byte(row.Data), &state); err != nil {
		return nil, fmt.Errorf("failed to decode cart snapshot %s: %w", key, err)
	}
	return &state, nil
}

// Save upserts the cart snapshot stored under key.
func (r *GORMCartRepository) Save(key string, state *models.CartState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode cart snapshot %s: %w", key, err)
	}

	row := CartSnapshot{Key: key, Data: string(data), UpdatedAt: time.Now()}
	if err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to save cart snapshot %s: %w", key, err)
	}
	return nil
}
