package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"crosschain-hub/internal/apperrors"
	"crosschain-hub/internal/ledger"
	"crosschain-hub/internal/models"
	"crosschain-hub/internal/types"
	"crosschain-hub/internal/utils"
)

func (h *harness) openPact(t *testing.T, seed uint64, target types.Amount, lifetime time.Duration) *models.Pact {
	t.Helper()
	pact, err := h.pact.InitializePact(context.Background(), alice, InitializePactInput{
		CampaignSeed:    seed,
		TargetAmount:    target,
		Deadline:        h.now.Add(lifetime).Unix(),
		PayoutRecipient: carol,
	})
	if err != nil {
		t.Fatalf("initialize pact: %v", err)
	}
	return pact
}

func TestInitializePact(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	pact := h.openPact(t, 1, 1_000, time.Hour)
	if pact.Status != models.PactStatusOpen || pact.TotalRaised != 0 {
		t.Fatalf("expected open empty pact, got %+v", pact)
	}
	if pact.Creator != alice || pact.PayoutRecipient != carol {
		t.Fatal("expected creator and payout recipient recorded")
	}

	vault, err := h.accounts.GetAccount(ctx, pact.VaultAddress)
	if err != nil {
		t.Fatalf("vault account: %v", err)
	}
	if vault.Kind != models.AccountKindVault || vault.Owner != pact.Address || vault.Balance != 0 {
		t.Fatalf("unexpected vault account: %+v", vault)
	}

	_, err = h.pact.InitializePact(ctx, alice, InitializePactInput{CampaignSeed: 1, TargetAmount: 5, Deadline: h.now.Add(time.Hour).Unix(), PayoutRecipient: carol})
	if !errors.Is(err, apperrors.ErrPactExists) {
		t.Fatalf("expected pact exists for reused seed, got %v", err)
	}
	if _, err := h.pact.InitializePact(ctx, bob, InitializePactInput{CampaignSeed: 1, TargetAmount: 5, Deadline: h.now.Add(time.Hour).Unix(), PayoutRecipient: carol}); err != nil {
		t.Fatalf("expected same seed for another creator to work, got %v", err)
	}
}

func TestInitializePactValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   InitializePactInput
		code apperrors.Code
	}{
		{
			name: "zero target",
			in:   InitializePactInput{TargetAmount: 0, Deadline: h.now.Add(time.Hour).Unix(), PayoutRecipient: carol},
			code: apperrors.CodeInvalidAmount,
		},
		{
			name: "deadline now",
			in:   InitializePactInput{TargetAmount: 10, Deadline: h.now.Unix(), PayoutRecipient: carol},
			code: apperrors.CodeInvalidDeadline,
		},
		{
			name: "missing payout recipient",
			in:   InitializePactInput{TargetAmount: 10, Deadline: h.now.Add(time.Hour).Unix()},
			code: apperrors.CodeInvalidAddress,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.pact.InitializePact(ctx, alice, tt.in)
			if got := apperrors.CodeOf(err); got != tt.code {
				t.Fatalf("expected %s, got %s (%v)", tt.code, got, err)
			}
		})
	}
}

func TestInitializePactRefusesDerivedPayoutRecipient(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.fund(t, bob, 1_000)

	settled := h.openPact(t, 1, 100, time.Hour)
	if _, err := h.pact.JoinAndContribute(ctx, bob, settled.Address, 100); err != nil {
		t.Fatalf("contribute: %v", err)
	}
	if _, err := h.pact.WithdrawOrSettle(ctx, carol, settled.Address, carol); err != nil {
		t.Fatalf("settle: %v", err)
	}

	futurePact, _, err := utils.FindDerivedAddress(utils.PactSeeds(bob, 9), h.params.ProgramID)
	if err != nil {
		t.Fatalf("derive pact: %v", err)
	}
	futureVault, err := ledger.FindVault(h.params.ProgramID, futurePact)
	if err != nil {
		t.Fatalf("derive vault: %v", err)
	}

	tests := []struct {
		name      string
		recipient types.Address
	}{
		{"closed vault of a settled pact", settled.VaultAddress},
		{"settled pact", settled.Address},
		{"vault of a pact not yet created", futureVault.Address()},
	}
	for i, tt := range tests {
		_, err := h.pact.InitializePact(ctx, alice, InitializePactInput{
			CampaignSeed:    uint64(100 + i),
			TargetAmount:    100,
			Deadline:        h.now.Add(time.Hour).Unix(),
			PayoutRecipient: tt.recipient,
		})
		if apperrors.CodeOf(err) != apperrors.CodeInvalidAddress {
			t.Fatalf("%s: expected invalid address, got %v", tt.name, err)
		}
	}

	if _, err := h.pact.InitializePact(ctx, bob, InitializePactInput{
		CampaignSeed:    9,
		TargetAmount:    100,
		Deadline:        h.now.Add(time.Hour).Unix(),
		PayoutRecipient: carol,
	}); err != nil {
		t.Fatalf("expected the derived pact to open, got %v", err)
	}
	if h.balance(t, settled.VaultAddress) != 0 {
		t.Fatalf("expected settled vault to stay empty, got %d", h.balance(t, settled.VaultAddress))
	}
}

func TestPactSettlesWhenTargetMet(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	pact := h.openPact(t, 7, 1_000, time.Hour)
	h.fund(t, bob, 2_000)

	if _, err := h.pact.JoinAndContribute(ctx, bob, pact.Address, 400); err != nil {
		t.Fatalf("contribute: %v", err)
	}
	if _, err := h.pact.WithdrawOrSettle(ctx, carol, pact.Address, carol); !errors.Is(err, apperrors.ErrPactNotReady) {
		t.Fatalf("expected not ready before target, got %v", err)
	}

	updated, err := h.pact.JoinAndContribute(ctx, bob, pact.Address, 700)
	if err != nil {
		t.Fatalf("contribute: %v", err)
	}
	if updated.TotalRaised != 1_100 {
		t.Fatalf("expected 1100 raised, got %d", updated.TotalRaised)
	}
	if h.balance(t, bob) != 900 {
		t.Fatalf("expected bob to keep 900, got %d", h.balance(t, bob))
	}

	if _, err := h.pact.WithdrawOrSettle(ctx, bob, pact.Address, bob); !errors.Is(err, apperrors.ErrPayoutRecipientMismatch) {
		t.Fatalf("expected recipient mismatch, got %v", err)
	}

	settled, err := h.pact.WithdrawOrSettle(ctx, carol, pact.Address, carol)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if settled.Status != models.PactStatusSettled || settled.SettledAmount != 1_100 {
		t.Fatalf("expected settled with 1100 paid, got %s/%d", settled.Status, settled.SettledAmount)
	}
	if h.balance(t, carol) != 1_100 {
		t.Fatalf("expected carol to receive 1100, got %d", h.balance(t, carol))
	}
	if h.balance(t, pact.VaultAddress) != 0 {
		t.Fatal("expected vault emptied")
	}

	if _, err := h.pact.WithdrawOrSettle(ctx, carol, pact.Address, carol); !errors.Is(err, apperrors.ErrPactClosed) {
		t.Fatalf("expected settled pact closed, got %v", err)
	}
	if _, err := h.pact.Refund(ctx, alice, pact.Address); !errors.Is(err, apperrors.ErrPactClosed) {
		t.Fatalf("expected settled pact closed to refunds, got %v", err)
	}
	if _, err := h.pact.JoinAndContribute(ctx, bob, pact.Address, 1); !errors.Is(err, apperrors.ErrPactClosed) {
		t.Fatalf("expected settled pact closed to contributions, got %v", err)
	}
}

func TestPactRefundAfterMissedDeadline(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	pact := h.openPact(t, 8, 1_000, time.Hour)
	h.fund(t, bob, 300)

	if _, err := h.pact.JoinAndContribute(ctx, bob, pact.Address, 300); err != nil {
		t.Fatalf("contribute: %v", err)
	}
	if _, err := h.pact.Refund(ctx, alice, pact.Address); !errors.Is(err, apperrors.ErrPactNotReady) {
		t.Fatalf("expected refund before deadline refused, got %v", err)
	}

	h.advance(2 * time.Hour)
	refunded, err := h.pact.Refund(ctx, alice, pact.Address)
	if err != nil {
		t.Fatalf("refund: %v", err)
	}
	if refunded.Status != models.PactStatusRefunded || refunded.TotalRaised != 0 || refunded.RefundedAmount != 300 {
		t.Fatalf("unexpected refunded pact: %+v", refunded)
	}
	if h.balance(t, alice) != 300 {
		t.Fatalf("expected creator to receive the vault, got %d", h.balance(t, alice))
	}
	if h.balance(t, bob) != 0 {
		t.Fatalf("expected contributor not refunded individually, got %d", h.balance(t, bob))
	}

	if _, err := h.pact.Refund(ctx, alice, pact.Address); !errors.Is(err, apperrors.ErrPactClosed) {
		t.Fatalf("expected second refund refused, got %v", err)
	}
	if got := len(h.notifications(t, models.EventPactRefunded)); got != 1 {
		t.Fatalf("expected 1 refund notification, got %d", got)
	}
}

func TestPactRefundRefusedWhenTargetMet(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	pact := h.openPact(t, 9, 100, time.Hour)
	h.fund(t, bob, 100)

	if _, err := h.pact.JoinAndContribute(ctx, bob, pact.Address, 100); err != nil {
		t.Fatalf("contribute: %v", err)
	}
	h.advance(2 * time.Hour)
	if _, err := h.pact.Refund(ctx, alice, pact.Address); !errors.Is(err, apperrors.ErrPactNotReady) {
		t.Fatalf("expected refund refused once target met, got %v", err)
	}
	if _, err := h.pact.WithdrawOrSettle(ctx, carol, pact.Address, carol); err != nil {
		t.Fatalf("settle: %v", err)
	}
}

func TestJoinAndContributeRules(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	pact := h.openPact(t, 10, 1_000, time.Hour)
	h.fund(t, bob, 50)

	if _, err := h.pact.JoinAndContribute(ctx, bob, pact.Address, 0); !errors.Is(err, apperrors.ErrInvalidContribution) {
		t.Fatalf("expected invalid contribution, got %v", err)
	}
	if _, err := h.pact.JoinAndContribute(ctx, bob, pact.Address, 51); !errors.Is(err, apperrors.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	if _, err := h.pact.JoinAndContribute(ctx, bob, addr(0x99), 10); !errors.Is(err, apperrors.ErrPactNotFound) {
		t.Fatalf("expected pact not found, got %v", err)
	}

	stored, err := h.pact.GetPact(ctx, pact.Address)
	if err != nil {
		t.Fatalf("get pact: %v", err)
	}
	if stored.TotalRaised != 0 {
		t.Fatalf("expected failed contributions to leave total at 0, got %d", stored.TotalRaised)
	}

	// contributions are accepted up to and including the deadline second
	h.now = time.Unix(pact.Deadline, 0)
	if _, err := h.pact.JoinAndContribute(ctx, bob, pact.Address, 10); err != nil {
		t.Fatalf("contribute at deadline: %v", err)
	}
	h.advance(time.Second)
	if _, err := h.pact.JoinAndContribute(ctx, bob, pact.Address, 0); !errors.Is(err, apperrors.ErrPactClosed) {
		t.Fatalf("expected pact closed after deadline, got %v", err)
	}

	contributions, err := h.pact.ListContributions(ctx, pact.Address)
	if err != nil {
		t.Fatalf("list contributions: %v", err)
	}
	if len(contributions) != 1 || contributions[0].Contributor != bob || contributions[0].Amount != 10 {
		t.Fatalf("unexpected contributions: %+v", contributions)
	}

	balance, err := h.pact.VaultBalance(ctx, pact.Address)
	if err != nil {
		t.Fatalf("vault balance: %v", err)
	}
	if balance != 10 {
		t.Fatalf("expected vault balance 10, got %d", balance)
	}

	pacts, total, err := h.pact.ListByContributor(ctx, bob, 1, 10)
	if err != nil {
		t.Fatalf("list by contributor: %v", err)
	}
	if total != 1 || len(pacts) != 1 || pacts[0].Address != pact.Address {
		t.Fatalf("expected bob's pact listed, got %d/%d", len(pacts), total)
	}
}

func TestPactSettlesAfterDeadlineWithTargetMissed(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	pact := h.openPact(t, 11, 1_000, time.Hour)
	h.fund(t, bob, 200)

	if _, err := h.pact.JoinAndContribute(ctx, bob, pact.Address, 200); err != nil {
		t.Fatalf("contribute: %v", err)
	}
	h.advance(time.Hour)
	settled, err := h.pact.WithdrawOrSettle(ctx, carol, pact.Address, carol)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if settled.SettledAmount != 200 || h.balance(t, carol) != 200 {
		t.Fatalf("expected carol paid 200, got %d", h.balance(t, carol))
	}
}
