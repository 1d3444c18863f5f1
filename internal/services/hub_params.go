package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"crosschain-hub/internal/apperrors"
	"crosschain-hub/internal/config"
	"crosschain-hub/internal/metrics"
	"crosschain-hub/internal/models"
	"crosschain-hub/internal/repository"
	"crosschain-hub/internal/types"
	"crosschain-hub/internal/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// HubParams static ledger parameters shared by every hub service
type HubParams struct {
	ProgramID       types.Address
	NativeChainID   types.ChainID
	SupportedChains []types.ChainID // empty = any foreign chain
	MinBridgeAmount types.Amount    // 0 = disabled
	MaxBridgeAmount types.Amount    // 0 = disabled
	RelayerIdentity types.Address   // may record bridge outcomes alongside the admin
}

// HubParamsFromConfig builds HubParams from the loaded configuration
func HubParamsFromConfig(cfg *config.Config) HubParams {
	params := HubParams{
		ProgramID:       cfg.ProgramAddress(),
		NativeChainID:   types.ChainID(cfg.Hub.NativeChainID),
		MinBridgeAmount: types.Amount(cfg.Hub.MinBridgeAmount),
		MaxBridgeAmount: types.Amount(cfg.Hub.MaxBridgeAmount),
		RelayerIdentity: cfg.RelayerAddress(),
	}
	for _, chain := range cfg.Hub.SupportedChains {
		params.SupportedChains = append(params.SupportedChains, types.ChainID(chain))
	}
	return params
}

// isForeignChain rejects the native chain and, when a list is configured, unlisted chains.
func (p HubParams) isForeignChain(chain types.ChainID) bool {
	if chain == p.NativeChainID {
		return false
	}
	if len(p.SupportedChains) == 0 {
		return true
	}
	for _, supported := range p.SupportedChains {
		if supported == chain {
			return true
		}
	}
	return false
}

// AcceptsTargetChain reports whether chain is a valid bridge destination
func (p HubParams) AcceptsTargetChain(chain types.ChainID) bool {
	return p.isForeignChain(chain)
}

// HubAddress derives the singleton hub-state address.
func (p HubParams) HubAddress() (types.Address, uint8, error) {
	return utils.FindDerivedAddress(utils.HubStateSeeds(), p.ProgramID)
}

// outbox writes notifications inside the caller's transaction
type outbox struct {
	repo repository.NotificationRepository
}

func (o outbox) record(ctx context.Context, tx *gorm.DB, eventType string, record types.Address, timestamp int64, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s notification: %w", eventType, err)
	}
	n := &models.Notification{
		ID:            uuid.New().String(),
		EventType:     eventType,
		RecordAddress: record,
		Payload:       string(body),
		Timestamp:     timestamp,
	}
	if err := o.repo.WithTx(tx).Create(ctx, n); err != nil {
		return fmt.Errorf("failed to record %s notification: %w", eventType, err)
	}
	return nil
}

// invariantViolation converts an overflow in a never-overflowing counter into a fatal error.
func invariantViolation(operation, counter string, err error) error {
	metrics.InvariantViolations.WithLabelValues(operation).Inc()
	logrus.WithFields(logrus.Fields{
		"operation": operation,
		"counter":   counter,
	}).WithError(err).Error("invariant violation: counter overflow")
	return apperrors.Wrap(apperrors.CodeArithmeticOverflow, counter+" overflow", err)
}

// observe records operation latency and result code.
func observe(operation string, start time.Time, err error) {
	metrics.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	code := "OK"
	if err != nil {
		code = string(apperrors.CodeOf(err))
	}
	metrics.OperationsTotal.WithLabelValues(operation, code).Inc()
}

// notFound maps gorm's missing-row error to the given coded error.
func notFound(err error, missing *apperrors.Error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return missing
	}
	return fmt.Errorf("failed to load %s: %w", what, err)
}
