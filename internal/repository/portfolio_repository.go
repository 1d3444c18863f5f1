package repository

import (
	"context"

	"crosschain-hub/internal/db"
	"crosschain-hub/internal/models"
	"crosschain-hub/internal/types"

	"gorm.io/gorm"
)

// PortfolioRepository defines the interface for Portfolio data access
type PortfolioRepository interface {
	WithTx(tx *gorm.DB) PortfolioRepository

	Insert(ctx context.Context, portfolio *models.Portfolio) (bool, error)
	GetByOwner(ctx context.Context, owner types.Address) (*models.Portfolio, error)
	GetByOwnerForUpdate(ctx context.Context, owner types.Address) (*models.Portfolio, error)
	Save(ctx context.Context, portfolio *models.Portfolio) error
}

// portfolioRepository implements PortfolioRepository
type portfolioRepository struct {
	db *gorm.DB
}

// NewPortfolioRepository creates a new PortfolioRepository instance
func NewPortfolioRepository(db *gorm.DB) PortfolioRepository {
	return &portfolioRepository{db: db}
}

func (r *portfolioRepository) WithTx(tx *gorm.DB) PortfolioRepository {
	return &portfolioRepository{db: tx}
}

func (r *portfolioRepository) Insert(ctx context.Context, portfolio *models.Portfolio) (bool, error) {
	return db.InsertIfAbsent(r.db.WithContext(ctx), portfolio)
}

func (r *portfolioRepository) GetByOwner(ctx context.Context, owner types.Address) (*models.Portfolio, error) {
	var portfolio models.Portfolio
	if err := r.db.WithContext(ctx).Where("owner = ?", owner).First(&portfolio).Error; err != nil {
		return nil, err
	}
	return &portfolio, nil
}

func (r *portfolioRepository) GetByOwnerForUpdate(ctx context.Context, owner types.Address) (*models.Portfolio, error) {
	var portfolio models.Portfolio
	if err := db.ForUpdate(r.db.WithContext(ctx)).Where("owner = ?", owner).First(&portfolio).Error; err != nil {
		return nil, err
	}
	return &portfolio, nil
}

func (r *portfolioRepository) Save(ctx context.Context, portfolio *models.Portfolio) error {
	return r.db.WithContext(ctx).Save(portfolio).Error
}
