package repository

import (
	"context"
	"time"

	"crosschain-hub/internal/models"

	"gorm.io/gorm"
)

// NotificationRepository defines the interface for the notification outbox
type NotificationRepository interface {
	WithTx(tx *gorm.DB) NotificationRepository

	Create(ctx context.Context, n *models.Notification) error
	ListPending(ctx context.Context, limit int) ([]*models.Notification, error)
	MarkPublished(ctx context.Context, ids []string, at time.Time) error
	// ListAfter replays notifications with occurred_at > after, oldest first
	ListAfter(ctx context.Context, after int64, eventType string, limit int) ([]*models.Notification, error)
	CountPending(ctx context.Context) (int64, error)
}

// notificationRepository implements NotificationRepository
type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new NotificationRepository instance
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) WithTx(tx *gorm.DB) NotificationRepository {
	return &notificationRepository{db: tx}
}

func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *notificationRepository) ListPending(ctx context.Context, limit int) ([]*models.Notification, error) {
	if limit <= 0 {
		limit = 100
	}
	var pending []*models.Notification
	err := r.db.WithContext(ctx).
		Where("published_at IS NULL").
		Order("created_at ASC, id ASC").
		Limit(limit).
		Find(&pending).Error
	return pending, err
}

func (r *notificationRepository) MarkPublished(ctx context.Context, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id IN ?", ids).
		Update("published_at", at).Error
}

func (r *notificationRepository) ListAfter(ctx context.Context, after int64, eventType string, limit int) ([]*models.Notification, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query := r.db.WithContext(ctx).Where("occurred_at > ?", after)
	if eventType != "" {
		query = query.Where("event_type = ?", eventType)
	}
	var out []*models.Notification
	err := query.Order("occurred_at ASC, created_at ASC, id ASC").Limit(limit).Find(&out).Error
	return out, err
}

func (r *notificationRepository) CountPending(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).Where("published_at IS NULL").Count(&count).Error
	return count, err
}
