package services

import (
	"context"
	"time"

	"crosschain-hub/internal/apperrors"
	"crosschain-hub/internal/metrics"
	"crosschain-hub/internal/models"
	"crosschain-hub/internal/repository"
	"crosschain-hub/internal/types"
	"crosschain-hub/internal/utils"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// FeesCollectedEvent notification payload for CollectFees
type FeesCollectedEvent struct {
	Admin              types.Address `json:"admin"`
	Amount             types.Amount  `json:"amount"`
	TotalFeesAccrued   types.Amount  `json:"total_fees_accrued"`
	TotalFeesCollected types.Amount  `json:"total_fees_collected"`
	Timestamp          int64         `json:"timestamp"`
}

// PauseStateChangedEvent notification payload for SetPauseState
type PauseStateChangedEvent struct {
	Admin     types.Address `json:"admin"`
	Paused    bool          `json:"paused"`
	Timestamp int64         `json:"timestamp"`
}

// HubService owns the hub singleton: initialization, pause gating and fee collection
type HubService struct {
	db      *gorm.DB
	hubRepo repository.HubRepository
	outbox  outbox
	params  HubParams
	nowFn   func() time.Time
}

// NewHubService creates a new HubService
func NewHubService(db *gorm.DB, params HubParams) *HubService {
	return &HubService{
		db:      db,
		hubRepo: repository.NewHubRepository(db),
		outbox:  outbox{repo: repository.NewNotificationRepository(db)},
		params:  params,
		nowFn:   time.Now,
	}
}

// SetClock overrides the time source
func (s *HubService) SetClock(fn func() time.Time) {
	s.nowFn = fn
}

// InitializeHub creates the hub singleton; caller becomes the authority.
func (s *HubService) InitializeHub(ctx context.Context, caller types.Address, feeBps uint16, admin types.Address) (hub *models.HubConfig, err error) {
	defer func(start time.Time) { observe("initialize_hub", start, err) }(time.Now())

	if feeBps > models.MaxBridgeFeeBps {
		return nil, apperrors.ErrInvalidFee
	}
	if admin.IsZero() {
		return nil, apperrors.Newf(apperrors.CodeInvalidAddress, "admin identity is required")
	}

	address, bump, err := s.params.HubAddress()
	if err != nil {
		return nil, err
	}
	now := s.nowFn()

	hub = &models.HubConfig{
		Address:      address,
		Bump:         bump,
		Authority:    caller,
		Admin:        admin,
		BridgeFeeBps: feeBps,
		Paused:       false,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inserted, err := s.hubRepo.WithTx(tx).Insert(ctx, hub)
		if err != nil {
			return err
		}
		if !inserted {
			return apperrors.ErrHubAlreadyInitialized
		}
		return s.outbox.record(ctx, tx, models.EventHubInitialized, address, now.Unix(), hub)
	})
	if err != nil {
		return nil, err
	}

	metrics.HubPaused.Set(0)
	logrus.WithFields(logrus.Fields{
		"hub":       address.Hex(),
		"authority": caller.Hex(),
		"admin":     admin.Hex(),
		"fee_bps":   feeBps,
	}).Info("Hub initialized")
	return hub, nil
}

// SetPauseState toggles the pause flag. Setting the current value again is allowed.
func (s *HubService) SetPauseState(ctx context.Context, caller types.Address, paused bool) (hub *models.HubConfig, err error) {
	defer func(start time.Time) { observe("set_pause_state", start, err) }(time.Now())

	address, _, err := s.params.HubAddress()
	if err != nil {
		return nil, err
	}
	now := s.nowFn()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		hubs := s.hubRepo.WithTx(tx)
		current, err := hubs.GetForUpdate(ctx, address)
		if err != nil {
			return notFound(err, apperrors.ErrHubNotInitialized, "hub")
		}
		if caller != current.Admin {
			return apperrors.ErrUnauthorizedAdmin
		}

		current.Paused = paused
		if err := hubs.Save(ctx, current); err != nil {
			return err
		}
		hub = current
		return s.outbox.record(ctx, tx, models.EventPauseStateChanged, address, now.Unix(), PauseStateChangedEvent{
			Admin:     caller,
			Paused:    paused,
			Timestamp: now.Unix(),
		})
	})
	if err != nil {
		return nil, err
	}

	if paused {
		metrics.HubPaused.Set(1)
	} else {
		metrics.HubPaused.Set(0)
	}
	logrus.WithFields(logrus.Fields{"admin": caller.Hex(), "paused": paused}).Info("Hub pause state set")
	return hub, nil
}

// CollectFees books the admin's claim against accrued fees. No value moves.
func (s *HubService) CollectFees(ctx context.Context, caller types.Address, amount types.Amount) (hub *models.HubConfig, err error) {
	defer func(start time.Time) { observe("collect_fees", start, err) }(time.Now())

	if amount.IsZero() {
		return nil, apperrors.ErrInvalidAmount
	}

	address, _, err := s.params.HubAddress()
	if err != nil {
		return nil, err
	}
	now := s.nowFn()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		hubs := s.hubRepo.WithTx(tx)
		current, err := hubs.GetForUpdate(ctx, address)
		if err != nil {
			return notFound(err, apperrors.ErrHubNotInitialized, "hub")
		}
		if caller != current.Admin {
			return apperrors.ErrUnauthorizedAdmin
		}
		if amount > current.CollectableFees() {
			return apperrors.ErrInsufficientHubBalance
		}

		collected, err := utils.CheckedAdd(current.TotalFeesCollected, amount)
		if err != nil {
			return invariantViolation("collect_fees", "total_fees_collected", err)
		}
		current.TotalFeesCollected = collected
		if err := hubs.Save(ctx, current); err != nil {
			return err
		}
		hub = current
		return s.outbox.record(ctx, tx, models.EventFeesCollected, address, now.Unix(), FeesCollectedEvent{
			Admin:              caller,
			Amount:             amount,
			TotalFeesAccrued:   current.TotalFeesAccrued,
			TotalFeesCollected: collected,
			Timestamp:          now.Unix(),
		})
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"admin":  caller.Hex(),
		"amount": amount.String(),
	}).Info("Fees collected")
	return hub, nil
}

// GetHub returns the hub singleton
func (s *HubService) GetHub(ctx context.Context) (*models.HubConfig, error) {
	address, _, err := s.params.HubAddress()
	if err != nil {
		return nil, err
	}
	hub, err := s.hubRepo.Get(ctx, address)
	if err != nil {
		return nil, notFound(err, apperrors.ErrHubNotInitialized, "hub")
	}
	return hub, nil
}

// IsAdmin reports whether identity is the hub admin
func (s *HubService) IsAdmin(ctx context.Context, identity types.Address) (bool, error) {
	hub, err := s.GetHub(ctx)
	if err != nil {
		return false, err
	}
	return hub.Admin == identity, nil
}
