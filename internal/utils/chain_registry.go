package utils

import (
	"fmt"
	"sort"

	"crosschain-hub/internal/types"
)

// ChainInfo 链信息
type ChainInfo struct {
	ChainID  types.ChainID `json:"chain_id"` // messaging-layer chain id
	Name     string        `json:"name"`
	Symbol   string        `json:"symbol"` // native token symbol
	IsEVM    bool          `json:"is_evm"`
	Explorer string        `json:"explorer,omitempty"`
}

// ChainRegistry 链注册表
type ChainRegistry struct {
	byID map[types.ChainID]*ChainInfo
}

// GlobalChainRegistry 全局链注册表
var GlobalChainRegistry *ChainRegistry

func init() {
	GlobalChainRegistry = &ChainRegistry{
		byID: make(map[types.ChainID]*ChainInfo),
	}

	chains := []*ChainInfo{
		{ChainID: types.ChainSolana, Name: "Solana", Symbol: "SOL"},
		{ChainID: types.ChainEthereum, Name: "Ethereum", Symbol: "ETH", IsEVM: true},
		{ChainID: types.ChainBSC, Name: "BNB Smart Chain", Symbol: "BNB", IsEVM: true},
		{ChainID: types.ChainPolygon, Name: "Polygon", Symbol: "POL", IsEVM: true},
		{ChainID: types.ChainAvalanche, Name: "Avalanche", Symbol: "AVAX", IsEVM: true},
		{ChainID: types.ChainArbitrum, Name: "Arbitrum", Symbol: "ETH", IsEVM: true},
		{ChainID: types.ChainOptimism, Name: "Optimism", Symbol: "ETH", IsEVM: true},
		{ChainID: types.ChainBase, Name: "Base", Symbol: "ETH", IsEVM: true},
	}
	for _, chain := range chains {
		GlobalChainRegistry.Register(chain)
	}
}

// Register adds or replaces a chain.
func (r *ChainRegistry) Register(info *ChainInfo) {
	r.byID[info.ChainID] = info
}

// Get returns the chain with the given id.
func (r *ChainRegistry) Get(id types.ChainID) (*ChainInfo, error) {
	info, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("unknown chain id: %d", id)
	}
	return info, nil
}

func (r *ChainRegistry) IsKnown(id types.ChainID) bool {
	_, ok := r.byID[id]
	return ok
}

// Name returns the chain name, or "chain-<id>" for unregistered ids.
func (r *ChainRegistry) Name(id types.ChainID) string {
	if info, ok := r.byID[id]; ok {
		return info.Name
	}
	return fmt.Sprintf("chain-%d", id)
}

// All returns every registered chain ordered by id.
func (r *ChainRegistry) All() []ChainInfo {
	out := make([]ChainInfo, 0, len(r.byID))
	for _, info := range r.byID {
		out = append(out, *info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChainID < out[j].ChainID })
	return out
}
