package repository

import (
	"context"

	"crosschain-hub/internal/db"
	"crosschain-hub/internal/models"
	"crosschain-hub/internal/types"

	"gorm.io/gorm"
)

// BridgeRepository defines the interface for bridge request/completion data access
type BridgeRepository interface {
	WithTx(tx *gorm.DB) BridgeRepository

	// Requests
	InsertRequest(ctx context.Context, req *models.BridgeRequest) (bool, error)
	GetRequest(ctx context.Context, address types.Address) (*models.BridgeRequest, error)
	GetRequestForUpdate(ctx context.Context, address types.Address) (*models.BridgeRequest, error)
	UpdateRequestStatus(ctx context.Context, address types.Address, status models.BridgeStatus) error
	ListRequestsByUser(ctx context.Context, user types.Address, page, pageSize int) ([]*models.BridgeRequest, int64, error)

	// Completions
	InsertCompletion(ctx context.Context, completion *models.BridgeCompletion) (bool, error)
	GetCompletionByHash(ctx context.Context, bridgeHash types.Address) (*models.BridgeCompletion, error)
	CountCompletionsByHash(ctx context.Context, bridgeHash types.Address) (int64, error)
	ListCompletionsByRecipient(ctx context.Context, recipient types.Address, page, pageSize int) ([]*models.BridgeCompletion, int64, error)
}

// bridgeRepository implements BridgeRepository
type bridgeRepository struct {
	db *gorm.DB
}

// NewBridgeRepository creates a new BridgeRepository instance
func NewBridgeRepository(db *gorm.DB) BridgeRepository {
	return &bridgeRepository{db: db}
}

func (r *bridgeRepository) WithTx(tx *gorm.DB) BridgeRepository {
	return &bridgeRepository{db: tx}
}

// InsertRequest creates the request unless its derived address is occupied
func (r *bridgeRepository) InsertRequest(ctx context.Context, req *models.BridgeRequest) (bool, error) {
	return db.InsertIfAbsent(r.db.WithContext(ctx), req)
}

// GetRequest retrieves a request by derived address
func (r *bridgeRepository) GetRequest(ctx context.Context, address types.Address) (*models.BridgeRequest, error) {
	var req models.BridgeRequest
	if err := r.db.WithContext(ctx).Where("address = ?", address).First(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *bridgeRepository) GetRequestForUpdate(ctx context.Context, address types.Address) (*models.BridgeRequest, error) {
	var req models.BridgeRequest
	if err := db.ForUpdate(r.db.WithContext(ctx)).Where("address = ?", address).First(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *bridgeRepository) UpdateRequestStatus(ctx context.Context, address types.Address, status models.BridgeStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.BridgeRequest{}).
		Where("address = ?", address).
		Update("status", status).Error
}

// ListRequestsByUser returns a page of requests, newest first
func (r *bridgeRepository) ListRequestsByUser(ctx context.Context, user types.Address, page, pageSize int) ([]*models.BridgeRequest, int64, error) {
	page, pageSize = normalizePage(page, pageSize)

	var total int64
	query := r.db.WithContext(ctx).Model(&models.BridgeRequest{}).Where("user_address = ?", user)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var requests []*models.BridgeRequest
	err := r.db.WithContext(ctx).
		Where("user_address = ?", user).
		Order("requested_at DESC, address ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&requests).Error
	if err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

// InsertCompletion creates the completion unless the bridge hash was already recorded
func (r *bridgeRepository) InsertCompletion(ctx context.Context, completion *models.BridgeCompletion) (bool, error) {
	return db.InsertIfAbsent(r.db.WithContext(ctx), completion)
}

func (r *bridgeRepository) GetCompletionByHash(ctx context.Context, bridgeHash types.Address) (*models.BridgeCompletion, error) {
	var completion models.BridgeCompletion
	if err := r.db.WithContext(ctx).Where("bridge_hash = ?", bridgeHash).First(&completion).Error; err != nil {
		return nil, err
	}
	return &completion, nil
}

func (r *bridgeRepository) CountCompletionsByHash(ctx context.Context, bridgeHash types.Address) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.BridgeCompletion{}).
		Where("bridge_hash = ?", bridgeHash).
		Count(&count).Error
	return count, err
}

func (r *bridgeRepository) ListCompletionsByRecipient(ctx context.Context, recipient types.Address, page, pageSize int) ([]*models.BridgeCompletion, int64, error) {
	page, pageSize = normalizePage(page, pageSize)

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.BridgeCompletion{}).Where("recipient = ?", recipient).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var completions []*models.BridgeCompletion
	err := r.db.WithContext(ctx).
		Where("recipient = ?", recipient).
		Order("completed_at DESC, address ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&completions).Error
	if err != nil {
		return nil, 0, err
	}
	return completions, total, nil
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}
