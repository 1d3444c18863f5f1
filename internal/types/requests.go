// Package types provides common type definitions used across the backend
package types

import "github.com/ethereum/go-ethereum/common/hexutil"

// InitializeHubRequest creates the hub configuration
type InitializeHubRequest struct {
	BridgeFeeBps uint16  `json:"bridge_fee_bps"`
	Admin        Address `json:"admin"`
}

// SetPauseStateRequest toggles the pause flag
type SetPauseStateRequest struct {
	Paused *bool `json:"paused" binding:"required"`
}

// CollectFeesRequest books a fee withdrawal
type CollectFeesRequest struct {
	Amount Amount `json:"amount"`
}

// BridgeAssetsRequest outbound transfer; amount is gross, fee included
type BridgeAssetsRequest struct {
	TargetChain ChainID `json:"target_chain"`
	Amount      Amount  `json:"amount"`
	Recipient   string  `json:"recipient" binding:"required"` // 20-byte hex on EVM chains, 32-byte hex or base58 elsewhere
	Asset       Address `json:"asset"`
}

// CompleteBridgeRequest inbound transfer attested by the relayer
type CompleteBridgeRequest struct {
	SourceChain ChainID       `json:"source_chain"`
	Amount      Amount        `json:"amount"`
	BridgeHash  Address       `json:"bridge_hash"`
	Recipient   Address       `json:"recipient"`
	Asset       Address       `json:"asset"`
	Proof       hexutil.Bytes `json:"proof,omitempty"`
}

// RecordOutcomeRequest relayer delivery result
type RecordOutcomeRequest struct {
	Status string `json:"status" binding:"required"` // completed | failed
}

// UpdatePortfolioRequest overwrites the per-chain balances
type UpdatePortfolioRequest struct {
	NativeBalance   Amount `json:"native_balance"`
	EthereumBalance Amount `json:"ethereum_balance"`
	PolygonBalance  Amount `json:"polygon_balance"`
}

// InitializePactRequest creates a crowdfunding pact
type InitializePactRequest struct {
	CampaignSeed    uint64  `json:"campaign_seed"`
	TargetAmount    Amount  `json:"target_amount"`
	Deadline        int64   `json:"deadline"` // unix seconds
	PayoutRecipient Address `json:"payout_recipient"`
}

// ContributeRequest moves value into a pact vault
type ContributeRequest struct {
	Amount Amount `json:"amount"`
}

// SettleRequest names the expected payout recipient
type SettleRequest struct {
	Payout Address `json:"payout"`
}

// CreditRequest admin deposit booking
type CreditRequest struct {
	Reference string  `json:"reference" binding:"required"`
	Address   Address `json:"address"`
	Amount    Amount  `json:"amount"`
}

// DeriveAddressRequest preview of a derived address
type DeriveAddressRequest struct {
	Family       string  `json:"family" binding:"required"` // hub-state | bridge-request | bridge-completion | portfolio | pact | vault
	Owner        Address `json:"owner"`                     // user, creator or pact depending on family
	TargetChain  ChainID `json:"target_chain"`
	Amount       Amount  `json:"amount"`
	BridgeHash   Address `json:"bridge_hash"`
	CampaignSeed uint64  `json:"campaign_seed"`
}

// SubscribeMessage websocket filter update sent by clients
type SubscribeMessage struct {
	Action     string    `json:"action"` // subscribe | ping
	EventTypes []string  `json:"event_types"`
	Records    []Address `json:"records"`
}
