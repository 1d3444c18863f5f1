// Package models defines the persisted hub ledger and escrow records.
package models

import (
	"time"

	"crosschain-hub/internal/types"
)

// MaxBridgeFeeBps 10% fee ceiling
const MaxBridgeFeeBps = 1000

// bridge request status
type BridgeStatus string

const (
	BridgeStatusInitiated BridgeStatus = "initiated"
	BridgeStatusCompleted BridgeStatus = "completed"
	BridgeStatusFailed    BridgeStatus = "failed"
)

// CanTransitionTo reports whether a request may move from s to next.
// Initiated is the only non-terminal state.
func (s BridgeStatus) CanTransitionTo(next BridgeStatus) bool {
	return s == BridgeStatusInitiated && (next == BridgeStatusCompleted || next == BridgeStatusFailed)
}

// IsValid reports whether s is a known status.
func (s BridgeStatus) IsValid() bool {
	switch s {
	case BridgeStatusInitiated, BridgeStatusCompleted, BridgeStatusFailed:
		return true
	}
	return false
}

// HubConfig singleton hub state, addressed by the hub-state seed
type HubConfig struct {
	Address            types.Address `json:"address" gorm:"primaryKey;type:varchar(66)"`
	Bump               uint8         `json:"bump" gorm:"not null"`
	Authority          types.Address `json:"authority" gorm:"type:varchar(66);not null"`
	Admin              types.Address `json:"admin" gorm:"type:varchar(66);not null"`
	BridgeFeeBps       uint16        `json:"bridge_fee_bps" gorm:"not null"`
	Paused             bool          `json:"paused" gorm:"not null;default:false"`
	TotalBridges       types.Amount  `json:"total_bridges" gorm:"type:varchar(20);not null"`
	TotalVolume        types.Amount  `json:"total_volume" gorm:"type:varchar(20);not null"`
	TotalFeesAccrued   types.Amount  `json:"total_fees_accrued" gorm:"type:varchar(20);not null"`
	TotalFeesCollected types.Amount  `json:"total_fees_collected" gorm:"type:varchar(20);not null"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

// TableName specifies the table name for HubConfig
func (HubConfig) TableName() string {
	return "hub_configs"
}

// CollectableFees accrued fees not yet claimed.
func (h *HubConfig) CollectableFees() types.Amount {
	if h.TotalFeesCollected > h.TotalFeesAccrued {
		return 0
	}
	return h.TotalFeesAccrued - h.TotalFeesCollected
}

// BridgeRequest outbound bridge intent
type BridgeRequest struct {
	Address     types.Address `json:"address" gorm:"primaryKey;type:varchar(66)"`
	Bump        uint8         `json:"bump" gorm:"not null"`
	User        types.Address `json:"user" gorm:"column:user_address;type:varchar(66);not null;index:idx_bridge_requests_user"`
	Asset       types.Address `json:"asset" gorm:"type:varchar(66);not null"`
	Amount      types.Amount  `json:"amount" gorm:"type:varchar(20);not null"` // net of fee
	FeeAmount   types.Amount  `json:"fee_amount" gorm:"type:varchar(20);not null"`
	TargetChain types.ChainID `json:"target_chain" gorm:"not null"`
	Recipient   types.Address `json:"recipient" gorm:"type:varchar(66);not null"` // foreign-chain address
	Timestamp   int64         `json:"timestamp" gorm:"column:requested_at;not null"`
	Status      BridgeStatus  `json:"status" gorm:"type:varchar(16);not null;index"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// TableName specifies the table name for BridgeRequest
func (BridgeRequest) TableName() string {
	return "bridge_requests"
}

// GrossAmount amount + fee as requested by the user.
func (r *BridgeRequest) GrossAmount() types.Amount {
	return r.Amount + r.FeeAmount
}

// BridgeCompletion inbound bridge, one per attested bridge hash
type BridgeCompletion struct {
	Address     types.Address `json:"address" gorm:"primaryKey;type:varchar(66)"`
	Bump        uint8         `json:"bump" gorm:"not null"`
	SourceChain types.ChainID `json:"source_chain" gorm:"not null"`
	BridgeHash  types.Address `json:"bridge_hash" gorm:"type:varchar(66);not null;uniqueIndex"`
	Recipient   types.Address `json:"recipient" gorm:"type:varchar(66);not null;index"`
	Asset       types.Address `json:"asset" gorm:"type:varchar(66);not null"`
	Amount      types.Amount  `json:"amount" gorm:"type:varchar(20);not null"`
	Payer       types.Address `json:"payer" gorm:"type:varchar(66);not null"`
	Timestamp   int64         `json:"timestamp" gorm:"column:completed_at;not null"`
	Status      BridgeStatus  `json:"status" gorm:"type:varchar(16);not null"`
	CreatedAt   time.Time     `json:"created_at"`
}

// TableName specifies the table name for BridgeCompletion
func (BridgeCompletion) TableName() string {
	return "bridge_completions"
}
