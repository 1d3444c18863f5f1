package services

import (
	"context"
	"log"
	"sync"
	"time"

	"crosschain-hub/internal/metrics"
	"crosschain-hub/internal/repository"

	"gorm.io/gorm"
)

// MonitoringService periodically refreshes gauges that no request path updates:
// database pool state, the hub pause flag and the notification backlog.
type MonitoringService struct {
	db               *gorm.DB
	hubService       *HubService
	notificationRepo repository.NotificationRepository
	mu               sync.Mutex
	running          bool
	stopCh           chan struct{}
	wg               sync.WaitGroup
	interval         time.Duration
}

// NewMonitoringService creates a MonitoringService
func NewMonitoringService(db *gorm.DB, hubService *HubService, interval time.Duration) *MonitoringService {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &MonitoringService{
		db:               db,
		hubService:       hubService,
		notificationRepo: repository.NewNotificationRepository(db),
		interval:         interval,
	}
}

// Start launches the refresh loop
func (m *MonitoringService) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return
	}
	m.running = true
	m.stopCh = make(chan struct{})

	log.Println("🚀 Starting monitoring service...")
	m.wg.Add(1)
	go m.loop()
}

// Stop ends the refresh loop
func (m *MonitoringService) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	close(m.stopCh)
	m.mu.Unlock()

	m.wg.Wait()
	log.Println("✅ Monitoring service stopped")
}

func (m *MonitoringService) loop() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Refresh(context.Background())
	for {
		select {
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.Refresh(context.Background())
		}
	}
}

// Refresh updates every gauge once
func (m *MonitoringService) Refresh(ctx context.Context) {
	m.updateDatabaseMetrics(ctx)

	if hub, err := m.hubService.GetHub(ctx); err == nil {
		if hub.Paused {
			metrics.HubPaused.Set(1)
		} else {
			metrics.HubPaused.Set(0)
		}
	}
	if count, err := m.notificationRepo.CountPending(ctx); err == nil {
		metrics.NotificationsPending.Set(float64(count))
	}
}

func (m *MonitoringService) updateDatabaseMetrics(ctx context.Context) {
	sqlDB, err := m.db.DB()
	if err != nil {
		metrics.DBConnectionStatus.Set(0)
		return
	}

	stats := sqlDB.Stats()
	metrics.DBConnectionActive.Set(float64(stats.InUse))
	metrics.DBConnectionIdle.Set(float64(stats.Idle))

	if err := sqlDB.PingContext(ctx); err != nil {
		metrics.DBConnectionStatus.Set(0)
	} else {
		metrics.DBConnectionStatus.Set(1)
	}
}
