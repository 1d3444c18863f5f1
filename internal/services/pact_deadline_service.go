package services

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"crosschain-hub/internal/apperrors"
	"crosschain-hub/internal/metrics"
	"crosschain-hub/internal/models"
	"crosschain-hub/internal/repository"
	"crosschain-hub/internal/types"

	"gorm.io/gorm"
)

// PactDeadlineService refunds open pacts whose deadline passed with the target missed
type PactDeadlineService struct {
	pactRepo      repository.PactRepository
	pactService   *PactService
	mu            sync.Mutex
	running       bool
	stopCh        chan struct{}
	doneCh        chan struct{}
	checkInterval time.Duration
	batchSize     int
}

// NewPactDeadlineService creates a new PactDeadlineService
func NewPactDeadlineService(db *gorm.DB, pactService *PactService, checkInterval time.Duration, batchSize int) *PactDeadlineService {
	if checkInterval <= 0 {
		checkInterval = time.Minute
	}
	if batchSize <= 0 {
		batchSize = 50
	}
	return &PactDeadlineService{
		pactRepo:      repository.NewPactRepository(db),
		pactService:   pactService,
		checkInterval: checkInterval,
		batchSize:     batchSize,
	}
}

// Start begins the sweep loop
func (s *PactDeadlineService) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})

	log.Printf("🚀 Starting PactDeadlineService (check interval: %v, batch: %d)", s.checkInterval, s.batchSize)
	go s.sweepLoop()
}

// Stop gracefully stops the sweep loop and waits for the current sweep
func (s *PactDeadlineService) Stop() {
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
	log.Printf("🛑 PactDeadlineService stopped")
}

func (s *PactDeadlineService) sweepLoop() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-s.stopCh
		cancel()
	}()

	s.Sweep(ctx)
	for {
		select {
		case <-ticker.C:
			s.Sweep(ctx)
		case <-s.stopCh:
			return
		}
	}
}

// Sweep walks every expired open pact in batches and returns how many were
// refunded. Pacts that met their target are left for the payout recipient
// to settle and do not hold back the pacts behind them.
func (s *PactDeadlineService) Sweep(ctx context.Context) int {
	now := s.pactService.nowFn().Unix()

	refunded := 0
	var cursor *repository.PactCursor
	for ctx.Err() == nil {
		pacts, err := s.pactRepo.ListOpenPastDeadline(ctx, now, cursor, s.batchSize)
		if err != nil {
			log.Printf("❌ [PactDeadline] Failed to query expired pacts: %v", err)
			break
		}
		for _, pact := range pacts {
			if ctx.Err() != nil {
				break
			}
			if s.refund(ctx, pact, now) {
				refunded++
			}
		}
		if len(pacts) < s.batchSize {
			break
		}
		cursor = repository.CursorOf(pacts[len(pacts)-1])
	}

	if refunded > 0 {
		log.Printf("✅ [PactDeadline] Refunded %d expired pacts", refunded)
	}
	return refunded
}

func (s *PactDeadlineService) refund(ctx context.Context, pact *models.Pact, now int64) bool {
	if !pact.IsRefundable(now) {
		metrics.SweeperRefunds.WithLabelValues("skipped").Inc()
		return false
	}
	_, err := s.pactService.Refund(ctx, types.ZeroAddress, pact.Address)
	switch {
	case err == nil:
		metrics.SweeperRefunds.WithLabelValues("refunded").Inc()
		return true
	case errors.Is(err, apperrors.ErrPactClosed), errors.Is(err, apperrors.ErrPactNotReady):
		// closed or topped up concurrently
		metrics.SweeperRefunds.WithLabelValues("skipped").Inc()
	default:
		metrics.SweeperRefunds.WithLabelValues("failed").Inc()
		log.Printf("❌ [PactDeadline] Refund failed for pact %s: %v", pact.Address.Hex(), err)
	}
	return false
}
