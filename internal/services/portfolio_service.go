package services

import (
	"context"
	"time"

	"crosschain-hub/internal/apperrors"
	"crosschain-hub/internal/models"
	"crosschain-hub/internal/repository"
	"crosschain-hub/internal/types"
	"crosschain-hub/internal/utils"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// PortfolioBalances per-chain balances reported by the owner
type PortfolioBalances struct {
	Native   types.Amount `json:"native_balance"`
	Ethereum types.Amount `json:"ethereum_balance"`
	Polygon  types.Amount `json:"polygon_balance"`
}

// PortfolioService maintains owner-reported balance snapshots
type PortfolioService struct {
	db            *gorm.DB
	portfolioRepo repository.PortfolioRepository
	outbox        outbox
	params        HubParams
	nowFn         func() time.Time
}

// NewPortfolioService creates a new PortfolioService
func NewPortfolioService(db *gorm.DB, params HubParams) *PortfolioService {
	return &PortfolioService{
		db:            db,
		portfolioRepo: repository.NewPortfolioRepository(db),
		outbox:        outbox{repo: repository.NewNotificationRepository(db)},
		params:        params,
		nowFn:         time.Now,
	}
}

// SetClock overrides the time source
func (s *PortfolioService) SetClock(fn func() time.Time) {
	s.nowFn = fn
}

// CreatePortfolio creates a zeroed snapshot for owner, once.
func (s *PortfolioService) CreatePortfolio(ctx context.Context, owner types.Address) (portfolio *models.Portfolio, err error) {
	defer func(start time.Time) { observe("create_portfolio", start, err) }(time.Now())

	address, bump, err := utils.FindDerivedAddress(utils.PortfolioSeeds(owner), s.params.ProgramID)
	if err != nil {
		return nil, err
	}
	now := s.nowFn().Unix()

	record := &models.Portfolio{
		Address:    address,
		Bump:       bump,
		Owner:      owner,
		LastUpdate: now,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inserted, err := s.portfolioRepo.WithTx(tx).Insert(ctx, record)
		if err != nil {
			return err
		}
		if !inserted {
			return apperrors.ErrPortfolioExists
		}
		return s.outbox.record(ctx, tx, models.EventPortfolioCreated, address, now, record)
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"owner": owner.Hex(), "portfolio": address.Hex()}).Info("Portfolio created")
	return record, nil
}

// UpdatePortfolio overwrites the owner's balances and recomputes the total.
func (s *PortfolioService) UpdatePortfolio(ctx context.Context, caller, owner types.Address, balances PortfolioBalances) (portfolio *models.Portfolio, err error) {
	defer func(start time.Time) { observe("update_portfolio", start, err) }(time.Now())

	if caller != owner {
		return nil, apperrors.ErrUnauthorizedPortfolioAccess
	}

	total, err := utils.CheckedSum(balances.Native, balances.Ethereum, balances.Polygon)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInvalidAmount, "portfolio balances overflow total_value", err)
	}
	now := s.nowFn().Unix()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		portfolios := s.portfolioRepo.WithTx(tx)
		current, err := portfolios.GetByOwnerForUpdate(ctx, owner)
		if err != nil {
			return notFound(err, apperrors.ErrPortfolioNotFound, "portfolio")
		}
		if current.Owner != caller {
			return apperrors.ErrUnauthorizedPortfolioAccess
		}

		current.NativeBalance = balances.Native
		current.EthereumBalance = balances.Ethereum
		current.PolygonBalance = balances.Polygon
		current.TotalValue = total
		current.LastUpdate = now
		if err := portfolios.Save(ctx, current); err != nil {
			return err
		}
		portfolio = current
		return s.outbox.record(ctx, tx, models.EventPortfolioUpdated, current.Address, now, current)
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"owner": owner.Hex(), "total_value": total.String()}).Info("Portfolio updated")
	return portfolio, nil
}

// GetPortfolio returns the owner's snapshot
func (s *PortfolioService) GetPortfolio(ctx context.Context, owner types.Address) (*models.Portfolio, error) {
	portfolio, err := s.portfolioRepo.GetByOwner(ctx, owner)
	if err != nil {
		return nil, notFound(err, apperrors.ErrPortfolioNotFound, "portfolio")
	}
	return portfolio, nil
}
