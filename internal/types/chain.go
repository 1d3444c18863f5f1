package types

import "strconv"

// ChainID identifies a chain using the cross-chain messaging numbering.
type ChainID uint16

const (
	ChainSolana    ChainID = 1
	ChainEthereum  ChainID = 2
	ChainBSC       ChainID = 4
	ChainPolygon   ChainID = 5
	ChainAvalanche ChainID = 6
	ChainArbitrum  ChainID = 23
	ChainOptimism  ChainID = 24
	ChainBase      ChainID = 30
)

func (c ChainID) String() string { return strconv.FormatUint(uint64(c), 10) }
