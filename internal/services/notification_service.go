package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"crosschain-hub/internal/metrics"
	"crosschain-hub/internal/models"
	"crosschain-hub/internal/repository"

	"gorm.io/gorm"
)

// EventSubjectPrefix NATS subject prefix for published notifications
const EventSubjectPrefix = "hub.events."

// EventPublisher delivers a notification body to the message bus.
// msgID lets the bus drop duplicates of a redelivered notification.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data []byte, msgID string) error
}

// NotificationService drains the notification outbox to NATS and websocket clients
type NotificationService struct {
	repo      repository.NotificationRepository
	publisher EventPublisher
	push      *WebSocketPushService
	interval  time.Duration
	batchSize int

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewNotificationService creates a new NotificationService. publisher and push may be nil.
func NewNotificationService(db *gorm.DB, publisher EventPublisher, push *WebSocketPushService, interval time.Duration, batchSize int) *NotificationService {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &NotificationService{
		repo:      repository.NewNotificationRepository(db),
		publisher: publisher,
		push:      push,
		interval:  interval,
		batchSize: batchSize,
	}
}

// Start begins the dispatch loop
func (s *NotificationService) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})

	log.Printf("🚀 Starting NotificationService (interval: %v, batch: %d)", s.interval, s.batchSize)
	go s.dispatchLoop()
}

// Stop stops the dispatch loop and waits for the current batch
func (s *NotificationService) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	done := s.doneCh
	s.mu.Unlock()

	<-done
	log.Printf("🛑 NotificationService stopped")
}

func (s *NotificationService) dispatchLoop() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-s.stopCh
		cancel()
	}()

	for {
		select {
		case <-ticker.C:
			if _, err := s.DispatchPending(ctx); err != nil && ctx.Err() == nil {
				log.Printf("❌ [Notify] Dispatch failed: %v", err)
			}
		case <-s.stopCh:
			return
		}
	}
}

// DispatchPending publishes one batch of unpublished notifications in order.
// It stops at the first bus failure so ordering is preserved on retry.
func (s *NotificationService) DispatchPending(ctx context.Context) (int, error) {
	pending, err := s.repo.ListPending(ctx, s.batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list pending notifications: %w", err)
	}

	published := make([]string, 0, len(pending))
	var publishErr error
	for _, n := range pending {
		if s.publisher != nil {
			if err := s.publisher.Publish(ctx, EventSubjectPrefix+n.EventType, []byte(n.Payload), n.ID); err != nil {
				publishErr = fmt.Errorf("failed to publish notification %s: %w", n.ID, err)
				break
			}
			metrics.NotificationsPublished.WithLabelValues("nats").Inc()
		}
		if s.push != nil {
			if delivered := s.push.Broadcast(n); delivered > 0 {
				metrics.NotificationsPublished.WithLabelValues("websocket").Add(float64(delivered))
			}
		}
		published = append(published, n.ID)
	}

	if err := s.repo.MarkPublished(ctx, published, time.Now()); err != nil {
		return 0, fmt.Errorf("failed to mark notifications published: %w", err)
	}
	if count, err := s.repo.CountPending(ctx); err == nil {
		metrics.NotificationsPending.Set(float64(count))
	}
	return len(published), publishErr
}

// Replay returns notifications that occurred after the given unix time
func (s *NotificationService) Replay(ctx context.Context, after int64, eventType string, limit int) ([]*models.Notification, error) {
	return s.repo.ListAfter(ctx, after, eventType, limit)
}
