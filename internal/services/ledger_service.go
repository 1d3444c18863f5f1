package services

import (
	"context"
	"time"

	"crosschain-hub/internal/ledger"
	"crosschain-hub/internal/models"
	"crosschain-hub/internal/repository"
	"crosschain-hub/internal/types"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// LedgerCreditedEvent notification payload for Credit
type LedgerCreditedEvent struct {
	Reference string        `json:"reference"`
	Address   types.Address `json:"address"`
	Amount    types.Amount  `json:"amount"`
	Balance   types.Amount  `json:"balance"`
	Source    string        `json:"source"`
	Timestamp int64         `json:"timestamp"`
}

// LedgerService books deposits from the token-transfer subsystem
type LedgerService struct {
	db     *gorm.DB
	ledger ledger.Ledger
	outbox outbox
	nowFn  func() time.Time
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(db *gorm.DB, accounts ledger.Ledger) *LedgerService {
	return &LedgerService{
		db:     db,
		ledger: accounts,
		outbox: outbox{repo: repository.NewNotificationRepository(db)},
		nowFn:  time.Now,
	}
}

// SetClock overrides the time source
func (s *LedgerService) SetClock(fn func() time.Time) {
	s.nowFn = fn
}

// Credit applies an external deposit once per reference.
func (s *LedgerService) Credit(ctx context.Context, reference string, address types.Address, amount types.Amount, source string) (balance types.Amount, err error) {
	defer func(start time.Time) { observe("ledger_credit", start, err) }(time.Now())

	now := s.nowFn().Unix()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		accounts := s.ledger.WithTx(tx)
		if err := accounts.Credit(ctx, reference, address, amount, source); err != nil {
			return err
		}
		current, err := accounts.Balance(ctx, address)
		if err != nil {
			return err
		}
		balance = current
		return s.outbox.record(ctx, tx, models.EventLedgerCredited, address, now, LedgerCreditedEvent{
			Reference: reference,
			Address:   address,
			Amount:    amount,
			Balance:   current,
			Source:    source,
			Timestamp: now,
		})
	})
	if err != nil {
		return 0, err
	}

	logrus.WithFields(logrus.Fields{
		"reference": reference,
		"address":   address.Hex(),
		"amount":    amount.String(),
		"source":    source,
	}).Info("Ledger credited")
	return balance, nil
}

// Balance returns an account balance
func (s *LedgerService) Balance(ctx context.Context, address types.Address) (types.Amount, error) {
	return s.ledger.Balance(ctx, address)
}

// GetAccount returns the ledger account
func (s *LedgerService) GetAccount(ctx context.Context, address types.Address) (*models.LedgerAccount, error) {
	return s.ledger.GetAccount(ctx, address)
}
