package repository

import (
	"context"

	"crosschain-hub/internal/db"
	"crosschain-hub/internal/models"
	"crosschain-hub/internal/types"

	"gorm.io/gorm"
)

// PactRepository defines the interface for Pact and contribution data access
type PactRepository interface {
	WithTx(tx *gorm.DB) PactRepository

	Insert(ctx context.Context, pact *models.Pact) (bool, error)
	Get(ctx context.Context, address types.Address) (*models.Pact, error)
	GetForUpdate(ctx context.Context, address types.Address) (*models.Pact, error)
	Save(ctx context.Context, pact *models.Pact) error

	// Query methods
	ListByCreator(ctx context.Context, creator types.Address, page, pageSize int) ([]*models.Pact, int64, error)
	ListByContributor(ctx context.Context, contributor types.Address, page, pageSize int) ([]*models.Pact, int64, error)
	// ListOpenPastDeadline returns open pacts whose deadline is <= now, ordered
	// by (deadline, address) and starting after the cursor when one is given
	ListOpenPastDeadline(ctx context.Context, now int64, after *PactCursor, limit int) ([]*models.Pact, error)

	// Contributions
	InsertContribution(ctx context.Context, contribution *models.PactContribution) error
	ListContributions(ctx context.Context, pact types.Address) ([]*models.PactContribution, error)
}

// PactCursor is the (deadline, address) key of the last pact a scan returned
type PactCursor struct {
	Deadline int64
	Address  types.Address
}

// CursorOf returns the scan position just past pact
func CursorOf(pact *models.Pact) *PactCursor {
	return &PactCursor{Deadline: pact.Deadline, Address: pact.Address}
}

// pactRepository implements PactRepository
type pactRepository struct {
	db *gorm.DB
}

// NewPactRepository creates a new PactRepository instance
func NewPactRepository(db *gorm.DB) PactRepository {
	return &pactRepository{db: db}
}

func (r *pactRepository) WithTx(tx *gorm.DB) PactRepository {
	return &pactRepository{db: tx}
}

func (r *pactRepository) Insert(ctx context.Context, pact *models.Pact) (bool, error) {
	return db.InsertIfAbsent(r.db.WithContext(ctx), pact)
}

func (r *pactRepository) Get(ctx context.Context, address types.Address) (*models.Pact, error) {
	var pact models.Pact
	if err := r.db.WithContext(ctx).Where("address = ?", address).First(&pact).Error; err != nil {
		return nil, err
	}
	return &pact, nil
}

func (r *pactRepository) GetForUpdate(ctx context.Context, address types.Address) (*models.Pact, error) {
	var pact models.Pact
	if err := db.ForUpdate(r.db.WithContext(ctx)).Where("address = ?", address).First(&pact).Error; err != nil {
		return nil, err
	}
	return &pact, nil
}

func (r *pactRepository) Save(ctx context.Context, pact *models.Pact) error {
	return r.db.WithContext(ctx).Save(pact).Error
}

func (r *pactRepository) ListByCreator(ctx context.Context, creator types.Address, page, pageSize int) ([]*models.Pact, int64, error) {
	page, pageSize = normalizePage(page, pageSize)

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Pact{}).Where("creator = ?", creator).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var pacts []*models.Pact
	err := r.db.WithContext(ctx).
		Where("creator = ?", creator).
		Order("created_at DESC, address ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&pacts).Error
	if err != nil {
		return nil, 0, err
	}
	return pacts, total, nil
}

// ListByContributor returns pacts the address has contributed to at least once
func (r *pactRepository) ListByContributor(ctx context.Context, contributor types.Address, page, pageSize int) ([]*models.Pact, int64, error) {
	page, pageSize = normalizePage(page, pageSize)

	sub := r.db.Model(&models.PactContribution{}).
		Select("DISTINCT pact_address").
		Where("contributor = ?", contributor)

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Pact{}).Where("address IN (?)", sub).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var pacts []*models.Pact
	err := r.db.WithContext(ctx).
		Where("address IN (?)", sub).
		Order("created_at DESC, address ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&pacts).Error
	if err != nil {
		return nil, 0, err
	}
	return pacts, total, nil
}

func (r *pactRepository) ListOpenPastDeadline(ctx context.Context, now int64, after *PactCursor, limit int) ([]*models.Pact, error) {
	if limit <= 0 {
		limit = 50
	}
	query := r.db.WithContext(ctx).
		Where("status = ? AND deadline <= ?", models.PactStatusOpen, now)
	if after != nil {
		query = query.Where("deadline > ? OR (deadline = ? AND address > ?)", after.Deadline, after.Deadline, after.Address)
	}
	var pacts []*models.Pact
	err := query.
		Order("deadline ASC, address ASC").
		Limit(limit).
		Find(&pacts).Error
	return pacts, err
}

func (r *pactRepository) InsertContribution(ctx context.Context, contribution *models.PactContribution) error {
	return r.db.WithContext(ctx).Create(contribution).Error
}

func (r *pactRepository) ListContributions(ctx context.Context, pact types.Address) ([]*models.PactContribution, error) {
	var contributions []*models.PactContribution
	err := r.db.WithContext(ctx).
		Where("pact_address = ?", pact).
		Order("created_at ASC, id ASC").
		Find(&contributions).Error
	return contributions, err
}
