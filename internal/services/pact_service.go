package services

import (
	"context"
	"time"

	"crosschain-hub/internal/apperrors"
	"crosschain-hub/internal/ledger"
	"crosschain-hub/internal/metrics"
	"crosschain-hub/internal/models"
	"crosschain-hub/internal/repository"
	"crosschain-hub/internal/types"
	"crosschain-hub/internal/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// InitializePactInput campaign parameters
type InitializePactInput struct {
	CampaignSeed    uint64
	TargetAmount    types.Amount
	Deadline        int64
	PayoutRecipient types.Address
}

// PactClosedEvent notification payload for settlement and refund
type PactClosedEvent struct {
	Pact      types.Address     `json:"pact"`
	Status    models.PactStatus `json:"status"`
	Recipient types.Address     `json:"recipient"`
	Amount    types.Amount      `json:"amount"` // vault balance moved out
	ClosedBy  types.Address     `json:"closed_by"`
	Timestamp int64             `json:"timestamp"`
}

// PactService runs the escrow pact state machine: Open -> Settled | Refunded
type PactService struct {
	db       *gorm.DB
	pactRepo repository.PactRepository
	ledger   ledger.Ledger
	outbox   outbox
	params   HubParams
	nowFn    func() time.Time
}

// NewPactService creates a new PactService
func NewPactService(db *gorm.DB, params HubParams, accounts ledger.Ledger) *PactService {
	return &PactService{
		db:       db,
		pactRepo: repository.NewPactRepository(db),
		ledger:   accounts,
		outbox:   outbox{repo: repository.NewNotificationRepository(db)},
		params:   params,
		nowFn:    time.Now,
	}
}

// SetClock overrides the time source
func (s *PactService) SetClock(fn func() time.Time) {
	s.nowFn = fn
}

// InitializePact creates an Open pact and its empty vault.
func (s *PactService) InitializePact(ctx context.Context, creator types.Address, in InitializePactInput) (pact *models.Pact, err error) {
	defer func(start time.Time) { observe("initialize_pact", start, err) }(time.Now())

	now := s.nowFn().Unix()
	if in.TargetAmount.IsZero() {
		return nil, apperrors.ErrInvalidAmount
	}
	if in.Deadline <= now {
		return nil, apperrors.ErrInvalidDeadline
	}
	if in.PayoutRecipient.IsZero() {
		return nil, apperrors.Newf(apperrors.CodeInvalidAddress, "payout recipient is required")
	}
	if !utils.IsWalletKey(in.PayoutRecipient) {
		return nil, apperrors.Newf(apperrors.CodeInvalidAddress, "payout recipient %s is a derived address", in.PayoutRecipient)
	}

	address, bump, err := utils.FindDerivedAddress(utils.PactSeeds(creator, in.CampaignSeed), s.params.ProgramID)
	if err != nil {
		return nil, err
	}
	vault, err := ledger.FindVault(s.params.ProgramID, address)
	if err != nil {
		return nil, err
	}

	record := &models.Pact{
		Address:         address,
		Bump:            bump,
		Creator:         creator,
		CampaignSeed:    in.CampaignSeed,
		PayoutRecipient: in.PayoutRecipient,
		TargetAmount:    in.TargetAmount,
		Deadline:        in.Deadline,
		TotalRaised:     0,
		Status:          models.PactStatusOpen,
		VaultAddress:    vault.Address(),
		VaultBump:       vault.Bump(),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inserted, err := s.pactRepo.WithTx(tx).Insert(ctx, record)
		if err != nil {
			return err
		}
		if !inserted {
			return apperrors.ErrPactExists
		}
		if err := s.ledger.WithTx(tx).OpenVault(ctx, vault); err != nil {
			return err
		}
		return s.outbox.record(ctx, tx, models.EventPactInitialized, address, now, record)
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"pact":     address.Hex(),
		"creator":  creator.Hex(),
		"target":   in.TargetAmount.String(),
		"deadline": in.Deadline,
	}).Info("Pact initialized")
	return record, nil
}

// JoinAndContribute moves amount from the contributor into the pact's vault.
// total_raised saturates at the numeric ceiling instead of failing.
func (s *PactService) JoinAndContribute(ctx context.Context, contributor, pactAddress types.Address, amount types.Amount) (pact *models.Pact, err error) {
	defer func(start time.Time) { observe("join_and_contribute", start, err) }(time.Now())

	now := s.nowFn().Unix()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pacts := s.pactRepo.WithTx(tx)
		current, err := pacts.GetForUpdate(ctx, pactAddress)
		if err != nil {
			return notFound(err, apperrors.ErrPactNotFound, "pact")
		}
		if current.Status != models.PactStatusOpen || now > current.Deadline {
			return apperrors.ErrPactClosed
		}
		if amount.IsZero() {
			return apperrors.ErrInvalidContribution
		}

		vault, err := s.vaultFor(current)
		if err != nil {
			return err
		}
		if err := s.ledger.WithTx(tx).Transfer(ctx, contributor, vault.Address(), amount); err != nil {
			return err
		}

		current.TotalRaised = utils.SaturatingAdd(current.TotalRaised, amount)
		if err := pacts.Save(ctx, current); err != nil {
			return err
		}

		contribution := &models.PactContribution{
			ID:          uuid.New().String(),
			PactAddress: pactAddress,
			Contributor: contributor,
			Amount:      amount,
			Timestamp:   now,
		}
		if err := pacts.InsertContribution(ctx, contribution); err != nil {
			return err
		}

		pact = current
		return s.outbox.record(ctx, tx, models.EventPactContributed, pactAddress, now, contribution)
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"pact":         pactAddress.Hex(),
		"contributor":  contributor.Hex(),
		"amount":       amount.String(),
		"total_raised": pact.TotalRaised.String(),
	}).Info("Pact contribution received")
	return pact, nil
}

// WithdrawOrSettle pays the vault's entire balance to the payout recipient
// once the target is met or the deadline has passed.
func (s *PactService) WithdrawOrSettle(ctx context.Context, caller, pactAddress, payout types.Address) (pact *models.Pact, err error) {
	defer func(start time.Time) { observe("withdraw_or_settle", start, err) }(time.Now())

	now := s.nowFn().Unix()
	var paid types.Amount

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pacts := s.pactRepo.WithTx(tx)
		current, err := pacts.GetForUpdate(ctx, pactAddress)
		if err != nil {
			return notFound(err, apperrors.ErrPactNotFound, "pact")
		}
		if current.Status != models.PactStatusOpen {
			return apperrors.ErrPactClosed
		}
		if !current.IsReadyToSettle(now) {
			return apperrors.ErrPactNotReady
		}
		if payout != current.PayoutRecipient {
			return apperrors.ErrPayoutRecipientMismatch
		}

		vault, err := s.vaultFor(current)
		if err != nil {
			return err
		}
		paid, err = s.ledger.WithTx(tx).DrainVault(ctx, vault, current.PayoutRecipient)
		if err != nil {
			return err
		}

		current.Status = models.PactStatusSettled
		current.SettledAmount = paid
		current.ClosedAt = &now
		if err := pacts.Save(ctx, current); err != nil {
			return err
		}

		pact = current
		return s.outbox.record(ctx, tx, models.EventPactSettled, pactAddress, now, PactClosedEvent{
			Pact:      pactAddress,
			Status:    models.PactStatusSettled,
			Recipient: current.PayoutRecipient,
			Amount:    paid,
			ClosedBy:  caller,
			Timestamp: now,
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.PactsClosed.WithLabelValues(string(models.PactStatusSettled)).Inc()
	logrus.WithFields(logrus.Fields{
		"pact":      pactAddress.Hex(),
		"recipient": payout.Hex(),
		"amount":    paid.String(),
	}).Info("Pact settled")
	return pact, nil
}

// Refund returns the vault's entire balance to the creator once the deadline
// has passed with the target missed. Contributors are not refunded individually.
func (s *PactService) Refund(ctx context.Context, caller, pactAddress types.Address) (pact *models.Pact, err error) {
	defer func(start time.Time) { observe("refund", start, err) }(time.Now())

	now := s.nowFn().Unix()
	var returned types.Amount

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pacts := s.pactRepo.WithTx(tx)
		current, err := pacts.GetForUpdate(ctx, pactAddress)
		if err != nil {
			return notFound(err, apperrors.ErrPactNotFound, "pact")
		}
		if current.Status != models.PactStatusOpen {
			return apperrors.ErrPactClosed
		}
		if !current.IsRefundable(now) {
			return apperrors.ErrPactNotReady
		}

		vault, err := s.vaultFor(current)
		if err != nil {
			return err
		}
		returned, err = s.ledger.WithTx(tx).DrainVault(ctx, vault, current.Creator)
		if err != nil {
			return err
		}

		current.Status = models.PactStatusRefunded
		current.TotalRaised = 0
		current.RefundedAmount = returned
		current.ClosedAt = &now
		if err := pacts.Save(ctx, current); err != nil {
			return err
		}

		pact = current
		return s.outbox.record(ctx, tx, models.EventPactRefunded, pactAddress, now, PactClosedEvent{
			Pact:      pactAddress,
			Status:    models.PactStatusRefunded,
			Recipient: current.Creator,
			Amount:    returned,
			ClosedBy:  caller,
			Timestamp: now,
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.PactsClosed.WithLabelValues(string(models.PactStatusRefunded)).Inc()
	logrus.WithFields(logrus.Fields{
		"pact":    pactAddress.Hex(),
		"creator": pact.Creator.Hex(),
		"amount":  returned.String(),
	}).Info("Pact refunded")
	return pact, nil
}

// vaultFor rebuilds the vault capability from the pact's stored bump.
func (s *PactService) vaultFor(pact *models.Pact) (ledger.VaultHandle, error) {
	vault, err := ledger.DeriveVault(s.params.ProgramID, pact.Address, pact.VaultBump)
	if err != nil {
		return ledger.VaultHandle{}, err
	}
	if vault.Address() != pact.VaultAddress {
		return ledger.VaultHandle{}, apperrors.ErrVaultMismatch
	}
	return vault, nil
}

// GetPact returns a pact by address
func (s *PactService) GetPact(ctx context.Context, address types.Address) (*models.Pact, error) {
	pact, err := s.pactRepo.Get(ctx, address)
	if err != nil {
		return nil, notFound(err, apperrors.ErrPactNotFound, "pact")
	}
	return pact, nil
}

// ListByCreator returns a page of pacts created by creator
func (s *PactService) ListByCreator(ctx context.Context, creator types.Address, page, pageSize int) ([]*models.Pact, int64, error) {
	return s.pactRepo.ListByCreator(ctx, creator, page, pageSize)
}

// ListByContributor returns a page of pacts the address contributed to
func (s *PactService) ListByContributor(ctx context.Context, contributor types.Address, page, pageSize int) ([]*models.Pact, int64, error) {
	return s.pactRepo.ListByContributor(ctx, contributor, page, pageSize)
}

// ListContributions returns every contribution to a pact, oldest first
func (s *PactService) ListContributions(ctx context.Context, pactAddress types.Address) ([]*models.PactContribution, error) {
	if _, err := s.GetPact(ctx, pactAddress); err != nil {
		return nil, err
	}
	return s.pactRepo.ListContributions(ctx, pactAddress)
}

// VaultBalance returns the current balance held by the pact's vault
func (s *PactService) VaultBalance(ctx context.Context, pactAddress types.Address) (types.Amount, error) {
	pact, err := s.GetPact(ctx, pactAddress)
	if err != nil {
		return 0, err
	}
	return s.ledger.Balance(ctx, pact.VaultAddress)
}
