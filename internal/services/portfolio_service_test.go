package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"crosschain-hub/internal/apperrors"
	"crosschain-hub/internal/metrics"
	"crosschain-hub/internal/models"
	"crosschain-hub/internal/types"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPortfolioLifecycle(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	created, err := h.portfolio.CreatePortfolio(ctx, alice)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Owner != alice || created.TotalValue != 0 {
		t.Fatalf("expected empty portfolio for alice, got %+v", created)
	}
	if _, err := h.portfolio.CreatePortfolio(ctx, alice); !errors.Is(err, apperrors.ErrPortfolioExists) {
		t.Fatalf("expected portfolio exists, got %v", err)
	}

	h.advance(time.Minute)
	updated, err := h.portfolio.UpdatePortfolio(ctx, alice, alice, PortfolioBalances{Native: 10, Ethereum: 20, Polygon: 30})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.TotalValue != 60 {
		t.Fatalf("expected total 60, got %d", updated.TotalValue)
	}
	if updated.LastUpdate != h.now.Unix() {
		t.Fatalf("expected last update %d, got %d", h.now.Unix(), updated.LastUpdate)
	}

	stored, err := h.portfolio.GetPortfolio(ctx, alice)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.NativeBalance != 10 || stored.EthereumBalance != 20 || stored.PolygonBalance != 30 || stored.TotalValue != 60 {
		t.Fatalf("unexpected stored balances: %+v", stored)
	}
	if got := len(h.notifications(t, models.EventPortfolioUpdated)); got != 1 {
		t.Fatalf("expected 1 update notification, got %d", got)
	}
}

func TestUpdatePortfolioRejectsOtherCallers(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if _, err := h.portfolio.CreatePortfolio(ctx, alice); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := h.portfolio.UpdatePortfolio(ctx, bob, alice, PortfolioBalances{Native: 1}); !errors.Is(err, apperrors.ErrUnauthorizedPortfolioAccess) {
		t.Fatalf("expected unauthorized access, got %v", err)
	}

	stored, err := h.portfolio.GetPortfolio(ctx, alice)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.NativeBalance != 0 || stored.TotalValue != 0 {
		t.Fatalf("expected portfolio unchanged, got %+v", stored)
	}

	if _, err := h.portfolio.UpdatePortfolio(ctx, bob, bob, PortfolioBalances{Native: 1}); !errors.Is(err, apperrors.ErrPortfolioNotFound) {
		t.Fatalf("expected portfolio not found, got %v", err)
	}
}

func TestUpdatePortfolioOverflow(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if _, err := h.portfolio.CreatePortfolio(ctx, alice); err != nil {
		t.Fatalf("create: %v", err)
	}
	violations := testutil.ToFloat64(metrics.InvariantViolations.WithLabelValues("update_portfolio"))
	_, err := h.portfolio.UpdatePortfolio(ctx, alice, alice, PortfolioBalances{Native: types.MaxAmount, Ethereum: 1})
	if !errors.Is(err, apperrors.ErrInvalidAmount) || apperrors.KindOf(err) != apperrors.KindValidation {
		t.Fatalf("expected invalid amount validation error, got %v", err)
	}
	if got := testutil.ToFloat64(metrics.InvariantViolations.WithLabelValues("update_portfolio")); got != violations {
		t.Fatalf("expected no invariant violation recorded, got %v -> %v", violations, got)
	}

	stored, err := h.portfolio.GetPortfolio(ctx, alice)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.NativeBalance != 0 {
		t.Fatalf("expected portfolio unchanged after overflow, got %+v", stored)
	}
}
