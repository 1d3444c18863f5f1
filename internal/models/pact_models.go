package models

import (
	"time"

	"crosschain-hub/internal/types"
)

// pact status
type PactStatus string

const (
	PactStatusOpen     PactStatus = "open"
	PactStatusSettled  PactStatus = "settled"  // terminal
	PactStatusRefunded PactStatus = "refunded" // terminal
)

// IsTerminal reports whether no further transition is allowed.
func (s PactStatus) IsTerminal() bool {
	return s == PactStatusSettled || s == PactStatusRefunded
}

// Pact pooled-contribution campaign. Its vault lives in ledger_accounts.
type Pact struct {
	Address         types.Address `json:"address" gorm:"primaryKey;type:varchar(66)"`
	Bump            uint8         `json:"bump" gorm:"not null"`
	Creator         types.Address `json:"creator" gorm:"type:varchar(66);not null;index:idx_pacts_creator"`
	CampaignSeed    uint64        `json:"campaign_seed" gorm:"not null"`
	PayoutRecipient types.Address `json:"payout_recipient" gorm:"type:varchar(66);not null"`
	TargetAmount    types.Amount  `json:"target_amount" gorm:"type:varchar(20);not null"`
	Deadline        int64         `json:"deadline" gorm:"not null;index:idx_pacts_status_deadline,priority:2"`
	TotalRaised     types.Amount  `json:"total_raised" gorm:"type:varchar(20);not null"`
	Status          PactStatus    `json:"status" gorm:"type:varchar(16);not null;index:idx_pacts_status_deadline,priority:1"`
	VaultAddress    types.Address `json:"vault_address" gorm:"type:varchar(66);not null;uniqueIndex"`
	VaultBump       uint8         `json:"vault_bump" gorm:"not null"`
	SettledAmount   types.Amount  `json:"settled_amount" gorm:"type:varchar(20);not null"`
	RefundedAmount  types.Amount  `json:"refunded_amount" gorm:"type:varchar(20);not null"`
	ClosedAt        *int64        `json:"closed_at,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// TableName specifies the table name for Pact
func (Pact) TableName() string {
	return "pacts"
}

// IsReadyToSettle target reached or deadline passed.
func (p *Pact) IsReadyToSettle(now int64) bool {
	return p.TotalRaised >= p.TargetAmount || now >= p.Deadline
}

// IsRefundable deadline passed with the target missed.
func (p *Pact) IsRefundable(now int64) bool {
	return now >= p.Deadline && p.TotalRaised < p.TargetAmount
}

// PactContribution audit row per successful contribution
type PactContribution struct {
	ID          string        `json:"id" gorm:"primaryKey;type:varchar(36)"` // UUID
	PactAddress types.Address `json:"pact_address" gorm:"type:varchar(66);not null;index"`
	Contributor types.Address `json:"contributor" gorm:"type:varchar(66);not null;index"`
	Amount      types.Amount  `json:"amount" gorm:"type:varchar(20);not null"`
	Timestamp   int64         `json:"timestamp" gorm:"column:contributed_at;not null"`
	CreatedAt   time.Time     `json:"created_at"`
}

// TableName specifies the table name for PactContribution
func (PactContribution) TableName() string {
	return "pact_contributions"
}
