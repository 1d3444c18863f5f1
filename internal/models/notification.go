package models

import (
	"time"

	"crosschain-hub/internal/types"
)

// notification event types
const (
	EventHubInitialized        = "HubInitialized"
	EventPauseStateChanged     = "PauseStateChanged"
	EventBridgeInitiated       = "BridgeInitiated"
	EventBridgeCompleted       = "BridgeCompleted"
	EventBridgeOutcomeRecorded = "BridgeOutcomeRecorded"
	EventFeesCollected         = "FeesCollected"
	EventPortfolioCreated      = "PortfolioCreated"
	EventPortfolioUpdated      = "PortfolioUpdated"
	EventPactInitialized       = "PactInitialized"
	EventPactContributed       = "PactContributed"
	EventPactSettled           = "PactSettled"
	EventPactRefunded          = "PactRefunded"
	EventLedgerCredited        = "LedgerCredited"
)

// Notification append-only audit record, delivered at least once
type Notification struct {
	ID            string        `json:"id" gorm:"primaryKey;type:varchar(36)"` // UUID
	EventType     string        `json:"event_type" gorm:"type:varchar(64);not null;index"`
	RecordAddress types.Address `json:"record_address" gorm:"type:varchar(66);not null;index"`
	Payload       string        `json:"payload" gorm:"type:text;not null"` // JSON
	Timestamp     int64         `json:"timestamp" gorm:"column:occurred_at;not null;index"`
	PublishedAt   *time.Time    `json:"published_at,omitempty" gorm:"index"`
	CreatedAt     time.Time     `json:"created_at"`
}

// TableName specifies the table name for Notification
func (Notification) TableName() string {
	return "hub_notifications"
}
