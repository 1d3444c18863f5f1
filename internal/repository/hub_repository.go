// Package repository provides data access interfaces and implementations
package repository

import (
	"context"

	"crosschain-hub/internal/db"
	"crosschain-hub/internal/models"
	"crosschain-hub/internal/types"

	"gorm.io/gorm"
)

// HubRepository defines the interface for HubConfig data access
type HubRepository interface {
	WithTx(tx *gorm.DB) HubRepository

	// Insert creates the hub row; false when it already exists
	Insert(ctx context.Context, hub *models.HubConfig) (bool, error)
	Get(ctx context.Context, address types.Address) (*models.HubConfig, error)
	// GetForUpdate locks the row until the surrounding transaction ends
	GetForUpdate(ctx context.Context, address types.Address) (*models.HubConfig, error)
	Save(ctx context.Context, hub *models.HubConfig) error
}

// hubRepository implements HubRepository
type hubRepository struct {
	db *gorm.DB
}

// NewHubRepository creates a new HubRepository instance
func NewHubRepository(db *gorm.DB) HubRepository {
	return &hubRepository{db: db}
}

func (r *hubRepository) WithTx(tx *gorm.DB) HubRepository {
	return &hubRepository{db: tx}
}

func (r *hubRepository) Insert(ctx context.Context, hub *models.HubConfig) (bool, error) {
	return db.InsertIfAbsent(r.db.WithContext(ctx), hub)
}

func (r *hubRepository) Get(ctx context.Context, address types.Address) (*models.HubConfig, error) {
	var hub models.HubConfig
	if err := r.db.WithContext(ctx).Where("address = ?", address).First(&hub).Error; err != nil {
		return nil, err
	}
	return &hub, nil
}

func (r *hubRepository) GetForUpdate(ctx context.Context, address types.Address) (*models.HubConfig, error) {
	var hub models.HubConfig
	if err := db.ForUpdate(r.db.WithContext(ctx)).Where("address = ?", address).First(&hub).Error; err != nil {
		return nil, err
	}
	return &hub, nil
}

func (r *hubRepository) Save(ctx context.Context, hub *models.HubConfig) error {
	return r.db.WithContext(ctx).Save(hub).Error
}
