package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"crosschain-hub/internal/db"
	"crosschain-hub/internal/ledger"
	"crosschain-hub/internal/models"
	"crosschain-hub/internal/types"

	"gorm.io/gorm"
)

var (
	testProgram = addr(0x42)
	authority   = addr(0x01)
	admin       = addr(0x02)
	relayer     = addr(0x03)
	alice       = addr(0xa1)
	bob         = addr(0xb0)
	carol       = addr(0xc1)
	foreignDest = addr(0xfe)
	usdc        = addr(0x55)
)

func addr(b byte) types.Address {
	return types.BytesToAddress(bytes.Repeat([]byte{b}, types.AddressLength))
}

type harness struct {
	db        *gorm.DB
	params    HubParams
	now       time.Time
	accounts  ledger.Ledger
	hub       *HubService
	bridge    *BridgeService
	portfolio *PortfolioService
	pact      *PactService
	ledger    *LedgerService
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := db.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.Migrate(database); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	return database
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWithParams(t, HubParams{
		ProgramID:       testProgram,
		NativeChainID:   types.ChainSolana,
		RelayerIdentity: relayer,
	})
}

func newHarnessWithParams(t *testing.T, params HubParams) *harness {
	t.Helper()
	h := &harness{
		db:     newTestDB(t),
		params: params,
		now:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return h.now }

	h.accounts = ledger.NewAccountLedger(h.db)
	h.hub = NewHubService(h.db, params)
	h.hub.SetClock(clock)
	h.bridge = NewBridgeService(h.db, params, nil)
	h.bridge.SetClock(clock)
	h.portfolio = NewPortfolioService(h.db, params)
	h.portfolio.SetClock(clock)
	h.pact = NewPactService(h.db, params, h.accounts)
	h.pact.SetClock(clock)
	h.ledger = NewLedgerService(h.db, h.accounts)
	h.ledger.SetClock(clock)
	return h
}

func (h *harness) advance(d time.Duration) {
	h.now = h.now.Add(d)
}

func (h *harness) initHub(t *testing.T, feeBps uint16) *models.HubConfig {
	t.Helper()
	hub, err := h.hub.InitializeHub(context.Background(), authority, feeBps, admin)
	if err != nil {
		t.Fatalf("initialize hub: %v", err)
	}
	return hub
}

func (h *harness) fund(t *testing.T, address types.Address, amount types.Amount) {
	t.Helper()
	reference := "fund-" + address.Hex() + "-" + amount.String()
	if _, err := h.ledger.Credit(context.Background(), reference, address, amount, "admin"); err != nil {
		t.Fatalf("fund %s: %v", address, err)
	}
}

func (h *harness) balance(t *testing.T, address types.Address) types.Amount {
	t.Helper()
	balance, err := h.accounts.Balance(context.Background(), address)
	if err != nil {
		t.Fatalf("balance %s: %v", address, err)
	}
	return balance
}

func (h *harness) notifications(t *testing.T, eventType string) []*models.Notification {
	t.Helper()
	var out []*models.Notification
	if err := h.db.Where("event_type = ?", eventType).Order("created_at ASC").Find(&out).Error; err != nil {
		t.Fatalf("load notifications: %v", err)
	}
	return out
}
