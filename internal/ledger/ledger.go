// Package ledger moves native value between wallet and vault accounts.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"crosschain-hub/internal/apperrors"
	"crosschain-hub/internal/db"
	"crosschain-hub/internal/models"
	"crosschain-hub/internal/types"
	"crosschain-hub/internal/utils"

	"gorm.io/gorm"
)

// Ledger is the token-transfer surface used by the pact engine.
type Ledger interface {
	WithTx(tx *gorm.DB) Ledger
	Credit(ctx context.Context, reference string, address types.Address, amount types.Amount, source string) error
	Transfer(ctx context.Context, from, to types.Address, amount types.Amount) error
	OpenVault(ctx context.Context, handle VaultHandle) error
	DrainVault(ctx context.Context, handle VaultHandle, to types.Address) (types.Amount, error)
	Balance(ctx context.Context, address types.Address) (types.Amount, error)
	GetAccount(ctx context.Context, address types.Address) (*models.LedgerAccount, error)
}

// AccountLedger implements Ledger over gorm
type AccountLedger struct {
	db *gorm.DB
}

// NewAccountLedger creates a new AccountLedger instance
func NewAccountLedger(db *gorm.DB) *AccountLedger {
	return &AccountLedger{db: db}
}

// WithTx binds the ledger to an open transaction.
func (l *AccountLedger) WithTx(tx *gorm.DB) Ledger {
	return &AccountLedger{db: tx}
}

// Credit books an external deposit exactly once per reference.
func (l *AccountLedger) Credit(ctx context.Context, reference string, address types.Address, amount types.Amount, source string) error {
	if amount.IsZero() {
		return apperrors.ErrInvalidAmount
	}
	if reference == "" {
		return apperrors.New(apperrors.CodeInvalidAmount, "credit reference is required")
	}
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inserted, err := db.InsertIfAbsent(tx, &models.LedgerCredit{
			Reference: reference,
			Address:   address,
			Amount:    amount,
			Source:    source,
		})
		if err != nil {
			return fmt.Errorf("failed to record credit: %w", err)
		}
		if !inserted {
			return apperrors.ErrCreditExists
		}

		account, err := lockOrCreateWallet(tx, address)
		if err != nil {
			return err
		}
		if account.Closed {
			return apperrors.ErrVaultClosed
		}
		balance, err := utils.CheckedAdd(account.Balance, amount)
		if err != nil {
			return apperrors.Wrap(apperrors.CodeArithmeticOverflow, "credit overflows balance", err)
		}
		return setBalance(tx, address, balance)
	})
}

// Transfer moves amount between two open accounts. Vaults can receive but
// only DrainVault can debit them.
func (l *AccountLedger) Transfer(ctx context.Context, from, to types.Address, amount types.Amount) error {
	if amount.IsZero() {
		return apperrors.ErrInvalidAmount
	}
	if from == to {
		return apperrors.Newf(apperrors.CodeInvalidAddress, "transfer source and destination are both %s", from)
	}
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		source, err := lockAccount(tx, from)
		if err != nil {
			if errors.Is(err, apperrors.ErrAccountNotFound) {
				return apperrors.ErrInsufficientFunds
			}
			return err
		}
		if source.Kind == models.AccountKindVault {
			return apperrors.New(apperrors.CodeVaultMismatch, "vault debits require a vault handle")
		}
		if source.Balance < amount {
			return apperrors.ErrInsufficientFunds
		}

		dest, err := lockOrCreateWallet(tx, to)
		if err != nil {
			return err
		}
		if dest.Closed {
			return apperrors.ErrVaultClosed
		}
		credited, err := utils.CheckedAdd(dest.Balance, amount)
		if err != nil {
			return apperrors.Wrap(apperrors.CodeArithmeticOverflow, "transfer overflows destination balance", err)
		}

		if err := setBalance(tx, from, source.Balance-amount); err != nil {
			return err
		}
		return setBalance(tx, to, credited)
	})
}

// OpenVault creates the empty vault account for handle.
func (l *AccountLedger) OpenVault(ctx context.Context, handle VaultHandle) error {
	if handle.IsZero() {
		return apperrors.ErrVaultMismatch
	}
	inserted, err := db.InsertIfAbsent(l.db.WithContext(ctx), &models.LedgerAccount{
		Address: handle.Address(),
		Kind:    models.AccountKindVault,
		Owner:   handle.Pact(),
		Balance: 0,
	})
	if err != nil {
		return fmt.Errorf("failed to open vault: %w", err)
	}
	if !inserted {
		return apperrors.Newf(apperrors.CodePactExists, "vault %s already exists", handle.Address())
	}
	return nil
}

// DrainVault moves the vault's entire balance to `to` and closes it.
// A vault can be drained once, and never into another vault.
func (l *AccountLedger) DrainVault(ctx context.Context, handle VaultHandle, to types.Address) (types.Amount, error) {
	var drained types.Amount
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		vault, err := lockAccount(tx, handle.Address())
		if err != nil {
			return err
		}
		if vault.Kind != models.AccountKindVault || vault.Owner != handle.Pact() {
			return apperrors.ErrVaultMismatch
		}
		if vault.Closed {
			return apperrors.ErrVaultClosed
		}
		if err := checkPayoutDestination(tx, to); err != nil {
			return err
		}

		drained = vault.Balance
		if !drained.IsZero() {
			dest, err := lockOrCreateWallet(tx, to)
			if err != nil {
				return err
			}
			credited, err := utils.CheckedAdd(dest.Balance, drained)
			if err != nil {
				return apperrors.Wrap(apperrors.CodeArithmeticOverflow, "payout overflows destination balance", err)
			}
			if err := setBalance(tx, to, credited); err != nil {
				return err
			}
		}

		return tx.Model(&models.LedgerAccount{}).
			Where("address = ?", handle.Address()).
			Updates(map[string]interface{}{"balance": types.Amount(0), "closed": true}).Error
	})
	if err != nil {
		return 0, err
	}
	return drained, nil
}

// Balance returns the account balance; unknown accounts hold zero.
func (l *AccountLedger) Balance(ctx context.Context, address types.Address) (types.Amount, error) {
	account, err := l.GetAccount(ctx, address)
	if err != nil {
		if errors.Is(err, apperrors.ErrAccountNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return account.Balance, nil
}

// GetAccount loads an account by address.
func (l *AccountLedger) GetAccount(ctx context.Context, address types.Address) (*models.LedgerAccount, error) {
	var account models.LedgerAccount
	err := l.db.WithContext(ctx).Where("address = ?", address).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	return &account, nil
}

func lockAccount(tx *gorm.DB, address types.Address) (*models.LedgerAccount, error) {
	var account models.LedgerAccount
	err := db.ForUpdate(tx).Where("address = ?", address).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	return &account, nil
}

func lockOrCreateWallet(tx *gorm.DB, address types.Address) (*models.LedgerAccount, error) {
	if _, err := db.InsertIfAbsent(tx, &models.LedgerAccount{
		Address: address,
		Kind:    models.AccountKindWallet,
		Balance: 0,
	}); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return lockAccount(tx, address)
}

func checkPayoutDestination(tx *gorm.DB, address types.Address) error {
	dest, err := lockAccount(tx, address)
	if errors.Is(err, apperrors.ErrAccountNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if dest.Kind == models.AccountKindVault {
		return apperrors.Newf(apperrors.CodeVaultMismatch, "payout destination %s is a vault", address)
	}
	if dest.Closed {
		return apperrors.ErrVaultClosed
	}
	return nil
}

func setBalance(tx *gorm.DB, address types.Address, balance types.Amount) error {
	err := tx.Model(&models.LedgerAccount{}).
		Where("address = ?", address).
		Update("balance", balance).Error
	if err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}
	return nil
}
