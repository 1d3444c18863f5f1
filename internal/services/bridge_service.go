package services

import (
	"context"
	"errors"
	"strconv"
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

// BridgeAssetsInput outbound bridge parameters
type BridgeAssetsInput struct {
	TargetChain types.ChainID
	Amount      types.Amount // gross, fee included
	Recipient   types.Address
	Asset       types.Address
}

// CompleteBridgeInput inbound bridge parameters
type CompleteBridgeInput struct {
	SourceChain types.ChainID
	Amount      types.Amount
	BridgeHash  types.Address
	Recipient   types.Address
	Asset       types.Address
	Proof       []byte
}

// BridgeOutcomeEvent notification payload for RecordBridgeOutcome
type BridgeOutcomeEvent struct {
	Request    types.Address       `json:"request"`
	From       models.BridgeStatus `json:"from"`
	To         models.BridgeStatus `json:"to"`
	RecordedBy types.Address       `json:"recorded_by"`
	Timestamp  int64               `json:"timestamp"`
}

// BridgeService books outbound intents and inbound completions against the hub
type BridgeService struct {
	db         *gorm.DB
	hubRepo    repository.HubRepository
	bridgeRepo repository.BridgeRepository
	outbox     outbox
	verifier   AttestationVerifier
	params     HubParams
	nowFn      func() time.Time
}

// NewBridgeService creates a new BridgeService
func NewBridgeService(db *gorm.DB, params HubParams, verifier AttestationVerifier) *BridgeService {
	if verifier == nil {
		verifier = UnverifiedAttestations{}
	}
	return &BridgeService{
		db:         db,
		hubRepo:    repository.NewHubRepository(db),
		bridgeRepo: repository.NewBridgeRepository(db),
		outbox:     outbox{repo: repository.NewNotificationRepository(db)},
		verifier:   verifier,
		params:     params,
		nowFn:      time.Now,
	}
}

// SetClock overrides the time source
func (s *BridgeService) SetClock(fn func() time.Time) {
	s.nowFn = fn
}

// BridgeAssets books an outbound transfer intent and updates hub totals.
// Moving the asset and relaying the message belong to external collaborators.
func (s *BridgeService) BridgeAssets(ctx context.Context, caller types.Address, in BridgeAssetsInput) (req *models.BridgeRequest, err error) {
	defer func(start time.Time) { observe("bridge_assets", start, err) }(time.Now())

	hubAddress, _, err := s.params.HubAddress()
	if err != nil {
		return nil, err
	}
	now := s.nowFn().Unix()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		hubs := s.hubRepo.WithTx(tx)
		hub, err := hubs.GetForUpdate(ctx, hubAddress)
		if err != nil {
			return notFound(err, apperrors.ErrHubNotInitialized, "hub")
		}
		if hub.Paused {
			return apperrors.ErrHubPaused
		}
		if in.Amount.IsZero() {
			return apperrors.ErrInvalidAmount
		}
		if !s.params.isForeignChain(in.TargetChain) {
			return apperrors.ErrInvalidChain
		}
		if s.params.MinBridgeAmount != 0 && in.Amount < s.params.MinBridgeAmount {
			return apperrors.ErrBridgeAmountTooSmall
		}
		if s.params.MaxBridgeAmount != 0 && in.Amount > s.params.MaxBridgeAmount {
			return apperrors.ErrBridgeAmountTooLarge
		}

		fee, net, err := utils.SplitFee(in.Amount, hub.BridgeFeeBps)
		if err != nil {
			return invariantViolation("bridge_assets", "fee", err)
		}

		address, bump, err := utils.FindDerivedAddress(utils.BridgeRequestSeeds(caller, in.TargetChain, in.Amount), s.params.ProgramID)
		if err != nil {
			return err
		}

		totalBridges, err := utils.CheckedAdd(hub.TotalBridges, 1)
		if err != nil {
			return invariantViolation("bridge_assets", "total_bridges", err)
		}
		totalVolume, err := utils.CheckedAdd(hub.TotalVolume, in.Amount)
		if err != nil {
			return invariantViolation("bridge_assets", "total_volume", err)
		}
		totalFees, err := utils.CheckedAdd(hub.TotalFeesAccrued, fee)
		if err != nil {
			return invariantViolation("bridge_assets", "total_fees_accrued", err)
		}

		request := &models.BridgeRequest{
			Address:     address,
			Bump:        bump,
			User:        caller,
			Asset:       in.Asset,
			Amount:      net,
			FeeAmount:   fee,
			TargetChain: in.TargetChain,
			Recipient:   in.Recipient,
			Timestamp:   now,
			Status:      models.BridgeStatusInitiated,
		}
		inserted, err := s.bridgeRepo.WithTx(tx).InsertRequest(ctx, request)
		if err != nil {
			return err
		}
		if !inserted {
			return apperrors.ErrBridgeRequestExists
		}

		hub.TotalBridges = totalBridges
		hub.TotalVolume = totalVolume
		hub.TotalFeesAccrued = totalFees
		if err := hubs.Save(ctx, hub); err != nil {
			return err
		}

		req = request
		return s.outbox.record(ctx, tx, models.EventBridgeInitiated, address, now, request)
	})
	if err != nil {
		return nil, err
	}

	metrics.BridgeVolume.WithLabelValues(chainLabel(in.TargetChain)).Add(float64(in.Amount))
	metrics.BridgeFeesAccrued.Add(float64(req.FeeAmount))
	logrus.WithFields(logrus.Fields{
		"request":      req.Address.Hex(),
		"user":         caller.Hex(),
		"target_chain": utils.GlobalChainRegistry.Name(in.TargetChain),
		"amount":       req.Amount.String(),
		"fee":          req.FeeAmount.String(),
	}).Info("Bridge initiated")
	return req, nil
}

// CompleteBridge records an inbound transfer once per bridge hash.
func (s *BridgeService) CompleteBridge(ctx context.Context, payer types.Address, in CompleteBridgeInput) (completion *models.BridgeCompletion, err error) {
	defer func(start time.Time) { observe("complete_bridge", start, err) }(time.Now())

	hubAddress, _, err := s.params.HubAddress()
	if err != nil {
		return nil, err
	}
	now := s.nowFn().Unix()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		hub, err := s.hubRepo.WithTx(tx).Get(ctx, hubAddress)
		if err != nil {
			return notFound(err, apperrors.ErrHubNotInitialized, "hub")
		}
		if hub.Paused {
			return apperrors.ErrHubPaused
		}
		if in.Amount.IsZero() {
			return apperrors.ErrInvalidAmount
		}
		if in.SourceChain == s.params.NativeChainID {
			return apperrors.ErrInvalidChain
		}

		if err := s.verifier.Verify(ctx, Attestation{
			SourceChain: in.SourceChain,
			BridgeHash:  in.BridgeHash,
			Recipient:   in.Recipient,
			Asset:       in.Asset,
			Amount:      in.Amount,
			Proof:       in.Proof,
		}); err != nil {
			var coded *apperrors.Error
			if errors.As(err, &coded) {
				return err
			}
			return apperrors.Wrap(apperrors.CodeInvalidAttestation, "attestation rejected", err)
		}

		address, bump, err := utils.FindDerivedAddress(utils.BridgeCompletionSeeds(in.BridgeHash), s.params.ProgramID)
		if err != nil {
			return err
		}

		record := &models.BridgeCompletion{
			Address:     address,
			Bump:        bump,
			SourceChain: in.SourceChain,
			BridgeHash:  in.BridgeHash,
			Recipient:   in.Recipient,
			Asset:       in.Asset,
			Amount:      in.Amount,
			Payer:       payer,
			Timestamp:   now,
			Status:      models.BridgeStatusCompleted,
		}
		inserted, err := s.bridgeRepo.WithTx(tx).InsertCompletion(ctx, record)
		if err != nil {
			return err
		}
		if !inserted {
			return apperrors.ErrBridgeAlreadyCompleted
		}

		completion = record
		return s.outbox.record(ctx, tx, models.EventBridgeCompleted, address, now, record)
	})
	if err != nil {
		return nil, err
	}

	metrics.BridgeCompletions.WithLabelValues(chainLabel(in.SourceChain)).Inc()
	logrus.WithFields(logrus.Fields{
		"completion":   completion.Address.Hex(),
		"bridge_hash":  in.BridgeHash.Hex(),
		"source_chain": utils.GlobalChainRegistry.Name(in.SourceChain),
		"recipient":    in.Recipient.Hex(),
		"amount":       in.Amount.String(),
	}).Info("Bridge completed")
	return completion, nil
}

// RecordBridgeOutcome moves an Initiated request to Completed or Failed.
// Only the hub admin or the configured relayer identity may call it.
func (s *BridgeService) RecordBridgeOutcome(ctx context.Context, caller, requestAddress types.Address, status models.BridgeStatus) (req *models.BridgeRequest, err error) {
	defer func(start time.Time) { observe("record_bridge_outcome", start, err) }(time.Now())

	if status != models.BridgeStatusCompleted && status != models.BridgeStatusFailed {
		return nil, apperrors.Newf(apperrors.CodeInvalidStatusTransition, "outcome must be %s or %s", models.BridgeStatusCompleted, models.BridgeStatusFailed)
	}

	hubAddress, _, err := s.params.HubAddress()
	if err != nil {
		return nil, err
	}
	now := s.nowFn().Unix()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		hub, err := s.hubRepo.WithTx(tx).Get(ctx, hubAddress)
		if err != nil {
			return notFound(err, apperrors.ErrHubNotInitialized, "hub")
		}
		relayer := !s.params.RelayerIdentity.IsZero() && caller == s.params.RelayerIdentity
		if caller != hub.Admin && !relayer {
			return apperrors.ErrUnauthorizedAdmin
		}

		requests := s.bridgeRepo.WithTx(tx)
		current, err := requests.GetRequestForUpdate(ctx, requestAddress)
		if err != nil {
			return notFound(err, apperrors.ErrBridgeRequestNotFound, "bridge request")
		}
		if !current.Status.CanTransitionTo(status) {
			return apperrors.Newf(apperrors.CodeInvalidStatusTransition, "cannot move request from %s to %s", current.Status, status)
		}

		previous := current.Status
		if err := requests.UpdateRequestStatus(ctx, requestAddress, status); err != nil {
			return err
		}
		current.Status = status
		req = current
		return s.outbox.record(ctx, tx, models.EventBridgeOutcomeRecorded, requestAddress, now, BridgeOutcomeEvent{
			Request:    requestAddress,
			From:       previous,
			To:         status,
			RecordedBy: caller,
			Timestamp:  now,
		})
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"request": requestAddress.Hex(),
		"status":  status,
		"caller":  caller.Hex(),
	}).Info("Bridge outcome recorded")
	return req, nil
}

// GetRequest returns a request by address
func (s *BridgeService) GetRequest(ctx context.Context, address types.Address) (*models.BridgeRequest, error) {
	req, err := s.bridgeRepo.GetRequest(ctx, address)
	if err != nil {
		return nil, notFound(err, apperrors.ErrBridgeRequestNotFound, "bridge request")
	}
	return req, nil
}

// ListRequestsByUser returns a page of a user's requests
func (s *BridgeService) ListRequestsByUser(ctx context.Context, user types.Address, page, pageSize int) ([]*models.BridgeRequest, int64, error) {
	return s.bridgeRepo.ListRequestsByUser(ctx, user, page, pageSize)
}

// GetCompletionByHash returns the completion recorded for a bridge hash
func (s *BridgeService) GetCompletionByHash(ctx context.Context, bridgeHash types.Address) (*models.BridgeCompletion, error) {
	completion, err := s.bridgeRepo.GetCompletionByHash(ctx, bridgeHash)
	if err != nil {
		return nil, notFound(err, apperrors.ErrBridgeCompletionNotFound, "bridge completion")
	}
	return completion, nil
}

// CountCompletions returns how many completions exist for a bridge hash
func (s *BridgeService) CountCompletions(ctx context.Context, bridgeHash types.Address) (int64, error) {
	return s.bridgeRepo.CountCompletionsByHash(ctx, bridgeHash)
}

// ListCompletionsByRecipient returns a page of completions for a recipient
func (s *BridgeService) ListCompletionsByRecipient(ctx context.Context, recipient types.Address, page, pageSize int) ([]*models.BridgeCompletion, int64, error) {
	return s.bridgeRepo.ListCompletionsByRecipient(ctx, recipient, page, pageSize)
}

func chainLabel(chain types.ChainID) string {
	return strconv.FormatUint(uint64(chain), 10)
}
