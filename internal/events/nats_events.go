// Package events consumes relayer and token-transfer messages from NATS and
// applies them to the hub through the services layer.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"crosschain-hub/internal/apperrors"
	"crosschain-hub/internal/clients"
	"crosschain-hub/internal/config"
	"crosschain-hub/internal/models"
	"crosschain-hub/internal/services"
	"crosschain-hub/internal/types"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// QueueGroup shared by hub replicas
const QueueGroup = "crosschain-hub"

// Default subjects used when the config lists none
const (
	SubjectAttestations = "relayer.attestations"
	SubjectOutbound     = "relayer.outbound"
	SubjectCredits      = "ledger.credits"
)

// Subscriber is the part of the NATS client the consumers need
type Subscriber interface {
	Subscribe(subject, queue string, handler clients.MessageHandler) error
}

// AttestationMessage relayer claim of an inbound transfer
type AttestationMessage struct {
	SourceChain types.ChainID `json:"source_chain"`
	Amount      types.Amount  `json:"amount"`
	BridgeHash  types.Address `json:"bridge_hash"`
	Recipient   types.Address `json:"recipient"`
	Asset       types.Address `json:"asset"`
	Proof       hexutil.Bytes `json:"proof,omitempty"`
}

// OutboundReport relayer delivery result for an outbound request
type OutboundReport struct {
	Request types.Address       `json:"request"`
	Status  models.BridgeStatus `json:"status"`
	TxHash  string              `json:"tx_hash,omitempty"`
}

// CreditMessage deposit booked by the token-transfer subsystem
type CreditMessage struct {
	Reference string        `json:"reference"`
	Address   types.Address `json:"address"`
	Amount    types.Amount  `json:"amount"`
}

// Consumer routes NATS messages to the hub services
type Consumer struct {
	bridge  *services.BridgeService
	ledger  *services.LedgerService
	relayer types.Address
}

// NewConsumer creates a Consumer acting as relayer
func NewConsumer(bridge *services.BridgeService, ledger *services.LedgerService, relayer types.Address) *Consumer {
	return &Consumer{bridge: bridge, ledger: ledger, relayer: relayer}
}

// Register subscribes every enabled subject from cfg
func (c *Consumer) Register(sub Subscriber, cfg config.NATSSubscriptionsConfig) error {
	groups := []struct {
		subjects []config.NATSSubjectConfig
		fallback string
		handler  clients.MessageHandler
	}{
		{cfg.Attestations, SubjectAttestations, c.HandleAttestation},
		{cfg.Outbound, SubjectOutbound, c.HandleOutboundReport},
		{cfg.Credits, SubjectCredits, c.HandleCredit},
	}

	for _, group := range groups {
		subjects := enabledSubjects(group.subjects, group.fallback)
		for _, subject := range subjects {
			if err := sub.Subscribe(subject, QueueGroup, group.handler); err != nil {
				return err
			}
		}
	}
	log.Printf("✅ NATS hub consumers registered")
	return nil
}

func enabledSubjects(configured []config.NATSSubjectConfig, fallback string) []string {
	if len(configured) == 0 {
		return []string{fallback}
	}
	var subjects []string
	for _, s := range configured {
		if s.Enabled && s.Subject != "" {
			subjects = append(subjects, s.Subject)
		}
	}
	return subjects
}

// HandleAttestation completes an inbound bridge. Redelivery of an already
// completed transfer is acknowledged without error.
func (c *Consumer) HandleAttestation(ctx context.Context, subject string, data []byte) error {
	var msg AttestationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return apperrors.Wrap(apperrors.CodeInvalidAttestation, "malformed attestation", err)
	}

	completion, err := c.bridge.CompleteBridge(ctx, c.relayer, services.CompleteBridgeInput{
		SourceChain: msg.SourceChain,
		Amount:      msg.Amount,
		BridgeHash:  msg.BridgeHash,
		Recipient:   msg.Recipient,
		Asset:       msg.Asset,
		Proof:       msg.Proof,
	})
	if errors.Is(err, apperrors.ErrBridgeAlreadyCompleted) {
		log.Printf("ℹ️ [NATS] Bridge %s already completed, skipping", msg.BridgeHash.Hex())
		return nil
	}
	if err != nil {
		return fmt.Errorf("complete bridge %s: %w", msg.BridgeHash.Hex(), err)
	}

	log.Printf("✅ [NATS] Bridge completed from %s: completion=%s", subject, completion.Address.Hex())
	return nil
}

// HandleOutboundReport records the relayer's delivery result for a request.
func (c *Consumer) HandleOutboundReport(ctx context.Context, subject string, data []byte) error {
	var msg OutboundReport
	if err := json.Unmarshal(data, &msg); err != nil {
		return apperrors.Wrap(apperrors.CodeInvalidStatusTransition, "malformed outbound report", err)
	}

	_, err := c.bridge.RecordBridgeOutcome(ctx, c.relayer, msg.Request, msg.Status)
	if errors.Is(err, apperrors.ErrInvalidStatusTransition) {
		// a repeated report for the same outcome is not an error
		current, getErr := c.bridge.GetRequest(ctx, msg.Request)
		if getErr == nil && current.Status == msg.Status {
			return nil
		}
	}
	if err != nil {
		return fmt.Errorf("record outcome for %s: %w", msg.Request.Hex(), err)
	}

	log.Printf("✅ [NATS] Bridge request %s marked %s (tx: %s)", msg.Request.Hex(), msg.Status, msg.TxHash)
	return nil
}

// HandleCredit books an external deposit once per reference.
func (c *Consumer) HandleCredit(ctx context.Context, subject string, data []byte) error {
	var msg CreditMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return apperrors.Wrap(apperrors.CodeInvalidAmount, "malformed credit", err)
	}

	balance, err := c.ledger.Credit(ctx, msg.Reference, msg.Address, msg.Amount, "nats")
	if errors.Is(err, apperrors.ErrCreditExists) {
		log.Printf("ℹ️ [NATS] Credit %s already applied, skipping", msg.Reference)
		return nil
	}
	if err != nil {
		return fmt.Errorf("credit %s: %w", msg.Reference, err)
	}

	log.Printf("✅ [NATS] Credited %s to %s (balance: %s)", msg.Amount, msg.Address.Hex(), balance)
	return nil
}
