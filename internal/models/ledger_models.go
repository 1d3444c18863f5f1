package models

import (
	"time"

	"crosschain-hub/internal/types"
)

type AccountKind string

const (
	AccountKindWallet AccountKind = "wallet"
	AccountKindVault  AccountKind = "vault"
)

// LedgerAccount native value balance. Vaults are closed exactly once.
type LedgerAccount struct {
	Address   types.Address `json:"address" gorm:"primaryKey;type:varchar(66)"`
	Kind      AccountKind   `json:"kind" gorm:"type:varchar(16);not null"`
	Owner     types.Address `json:"owner" gorm:"type:varchar(66)"` // pact address for vaults
	Balance   types.Amount  `json:"balance" gorm:"type:varchar(20);not null"`
	Closed    bool          `json:"closed" gorm:"not null;default:false"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// TableName specifies the table name for LedgerAccount
func (LedgerAccount) TableName() string {
	return "ledger_accounts"
}

// LedgerCredit externally sourced deposit, one per reference
type LedgerCredit struct {
	Reference string        `json:"reference" gorm:"primaryKey;type:varchar(128)"`
	Address   types.Address `json:"address" gorm:"type:varchar(66);not null;index"`
	Amount    types.Amount  `json:"amount" gorm:"type:varchar(20);not null"`
	Source    string        `json:"source" gorm:"type:varchar(32)"` // nats | admin
	CreatedAt time.Time     `json:"created_at"`
}

// TableName specifies the table name for LedgerCredit
func (LedgerCredit) TableName() string {
	return "ledger_credits"
}
