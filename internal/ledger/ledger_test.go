package ledger

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"crosschain-hub/internal/apperrors"
	"crosschain-hub/internal/db"
	"crosschain-hub/internal/types"

	"gorm.io/gorm"
)

var (
	testProgram = types.BytesToAddress(bytes.Repeat([]byte{0x42}, 32))
	alice       = types.BytesToAddress(bytes.Repeat([]byte{0xa1}, 32))
	bob         = types.BytesToAddress(bytes.Repeat([]byte{0xb0}, 32))
	pactAddr    = types.BytesToAddress(bytes.Repeat([]byte{0xcc}, 32))
)

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

func assertBalance(t *testing.T, l Ledger, address types.Address, want types.Amount) {
	t.Helper()
	got, err := l.Balance(context.Background(), address)
	if err != nil {
		t.Fatalf("balance %s: %v", address, err)
	}
	if got != want {
		t.Fatalf("expected balance %d for %s, got %d", want, address, got)
	}
}

func TestCreditIsAppliedOncePerReference(t *testing.T) {
	ctx := context.Background()
	l := NewAccountLedger(newTestDB(t))

	if err := l.Credit(ctx, "dep-1", alice, 100, "nats"); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if err := l.Credit(ctx, "dep-1", alice, 100, "nats"); !errors.Is(err, apperrors.ErrCreditExists) {
		t.Fatalf("expected credit exists, got %v", err)
	}
	if err := l.Credit(ctx, "dep-2", alice, 50, "admin"); err != nil {
		t.Fatalf("second credit: %v", err)
	}
	assertBalance(t, l, alice, 150)
}

func TestCreditValidation(t *testing.T) {
	ctx := context.Background()
	l := NewAccountLedger(newTestDB(t))

	if err := l.Credit(ctx, "dep-0", alice, 0, "nats"); !errors.Is(err, apperrors.ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}
	if err := l.Credit(ctx, "", alice, 10, "nats"); apperrors.CodeOf(err) != apperrors.CodeInvalidAmount {
		t.Fatalf("expected missing reference rejection, got %v", err)
	}
	if err := l.Credit(ctx, "dep-max", alice, types.MaxAmount, "nats"); err != nil {
		t.Fatalf("credit max: %v", err)
	}
	if err := l.Credit(ctx, "dep-over", alice, 1, "nats"); !errors.Is(err, apperrors.ErrArithmeticOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
	assertBalance(t, l, alice, types.MaxAmount)
}

func TestTransfer(t *testing.T) {
	ctx := context.Background()
	l := NewAccountLedger(newTestDB(t))

	if err := l.Transfer(ctx, alice, bob, 10); !errors.Is(err, apperrors.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds from unknown account, got %v", err)
	}
	if err := l.Credit(ctx, "dep-1", alice, 100, "nats"); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if err := l.Transfer(ctx, alice, bob, 101); !errors.Is(err, apperrors.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	if err := l.Transfer(ctx, alice, bob, 40); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	assertBalance(t, l, alice, 60)
	assertBalance(t, l, bob, 40)

	if err := l.Transfer(ctx, alice, alice, 10); apperrors.CodeOf(err) != apperrors.CodeInvalidAddress {
		t.Fatalf("expected self transfer rejected, got %v", err)
	}
	assertBalance(t, l, alice, 60)
}

func TestVaultLifecycle(t *testing.T) {
	ctx := context.Background()
	l := NewAccountLedger(newTestDB(t))

	vault, err := FindVault(testProgram, pactAddr)
	if err != nil {
		t.Fatalf("find vault: %v", err)
	}
	if err := l.OpenVault(ctx, vault); err != nil {
		t.Fatalf("open vault: %v", err)
	}
	if err := l.OpenVault(ctx, vault); err == nil {
		t.Fatal("expected second open to fail")
	}

	if err := l.Credit(ctx, "dep-1", alice, 100, "nats"); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if err := l.Transfer(ctx, alice, vault.Address(), 70); err != nil {
		t.Fatalf("fund vault: %v", err)
	}
	if err := l.Transfer(ctx, vault.Address(), alice, 10); apperrors.CodeOf(err) != apperrors.CodeVaultMismatch {
		t.Fatalf("expected plain transfer out of vault to be refused, got %v", err)
	}

	drained, err := l.DrainVault(ctx, vault, bob)
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	if drained != 70 {
		t.Fatalf("expected 70 drained, got %d", drained)
	}
	assertBalance(t, l, bob, 70)
	assertBalance(t, l, vault.Address(), 0)

	if _, err := l.DrainVault(ctx, vault, bob); !errors.Is(err, apperrors.ErrVaultClosed) {
		t.Fatalf("expected vault closed on second drain, got %v", err)
	}
	if err := l.Transfer(ctx, alice, vault.Address(), 1); !errors.Is(err, apperrors.ErrVaultClosed) {
		t.Fatalf("expected closed vault to refuse deposits, got %v", err)
	}
}

func TestDrainVaultRefusesVaultDestination(t *testing.T) {
	ctx := context.Background()
	l := NewAccountLedger(newTestDB(t))

	first, err := FindVault(testProgram, pactAddr)
	if err != nil {
		t.Fatalf("find vault: %v", err)
	}
	second, err := FindVault(testProgram, bob)
	if err != nil {
		t.Fatalf("find vault: %v", err)
	}
	for _, v := range []VaultHandle{first, second} {
		if err := l.OpenVault(ctx, v); err != nil {
			t.Fatalf("open vault: %v", err)
		}
	}
	if err := l.Credit(ctx, "dep-1", alice, 100, "nats"); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if err := l.Transfer(ctx, alice, second.Address(), 100); err != nil {
		t.Fatalf("fund vault: %v", err)
	}
	if _, err := l.DrainVault(ctx, first, alice); err != nil {
		t.Fatalf("drain empty vault: %v", err)
	}

	tests := []struct {
		name string
		to   types.Address
	}{
		{"closed vault", first.Address()},
		{"itself", second.Address()},
	}
	for _, tt := range tests {
		if _, err := l.DrainVault(ctx, second, tt.to); apperrors.CodeOf(err) != apperrors.CodeVaultMismatch {
			t.Fatalf("%s: expected vault mismatch, got %v", tt.name, err)
		}
		assertBalance(t, l, second.Address(), 100)
		assertBalance(t, l, first.Address(), 0)
	}

	if drained, err := l.DrainVault(ctx, second, bob); err != nil || drained != 100 {
		t.Fatalf("expected refused drains to leave the vault open, got %d %v", drained, err)
	}
	assertBalance(t, l, bob, 100)
}

func TestDeriveVaultRebuildsHandle(t *testing.T) {
	found, err := FindVault(testProgram, pactAddr)
	if err != nil {
		t.Fatalf("find vault: %v", err)
	}
	rebuilt, err := DeriveVault(testProgram, pactAddr, found.Bump())
	if err != nil {
		t.Fatalf("derive vault: %v", err)
	}
	if rebuilt != found {
		t.Fatalf("expected %s, got %s", found.Address(), rebuilt.Address())
	}

	ctx := context.Background()
	l := NewAccountLedger(newTestDB(t))
	if err := l.OpenVault(ctx, found); err != nil {
		t.Fatalf("open vault: %v", err)
	}
	forged := VaultHandle{pact: alice, address: found.Address(), bump: found.Bump()}
	if _, err := l.DrainVault(ctx, forged, bob); !errors.Is(err, apperrors.ErrVaultMismatch) {
		t.Fatalf("expected vault mismatch for a handle of another pact, got %v", err)
	}
}

func TestWithTxRollsBack(t *testing.T) {
	ctx := context.Background()
	database := newTestDB(t)
	l := NewAccountLedger(database)

	boom := errors.New("boom")
	err := database.Transaction(func(tx *gorm.DB) error {
		if err := l.WithTx(tx).Credit(ctx, "dep-1", alice, 100, "nats"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected rollback error, got %v", err)
	}
	assertBalance(t, l, alice, 0)

	if err := l.Credit(ctx, "dep-1", alice, 100, "nats"); err != nil {
		t.Fatalf("expected reference to be reusable after rollback, got %v", err)
	}
}
