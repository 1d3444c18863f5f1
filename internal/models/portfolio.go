package models

import (
	"time"

	"crosschain-hub/internal/types"
)

// Portfolio per-owner balance snapshot. Reporting cache only; never moves value.
type Portfolio struct {
	Address         types.Address `json:"address" gorm:"primaryKey;type:varchar(66)"`
	Bump            uint8         `json:"bump" gorm:"not null"`
	Owner           types.Address `json:"owner" gorm:"type:varchar(66);not null;uniqueIndex"`
	NativeBalance   types.Amount  `json:"native_balance" gorm:"type:varchar(20);not null"`
	EthereumBalance types.Amount  `json:"ethereum_balance" gorm:"type:varchar(20);not null"`
	PolygonBalance  types.Amount  `json:"polygon_balance" gorm:"type:varchar(20);not null"`
	TotalValue      types.Amount  `json:"total_value" gorm:"type:varchar(20);not null"` // sum of balances, placeholder valuation
	LastUpdate      int64         `json:"last_update" gorm:"not null"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// TableName specifies the table name for Portfolio
func (Portfolio) TableName() string {
	return "portfolios"
}
