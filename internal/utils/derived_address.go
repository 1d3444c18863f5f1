package utils

import (
	"encoding/binary"
	"errors"
	"fmt"

	"crosschain-hub/internal/types"

	"filippo.io/edwards25519"
	"github.com/ethereum/go-ethereum/crypto"
)

// Seed tags reserved per record family.
const (
	SeedHubState         = "hub-state"
	SeedBridgeRequest    = "bridge-request"
	SeedBridgeCompletion = "bridge-completion"
	SeedPortfolio        = "portfolio"
	SeedPact             = "pact"
	SeedVault            = "vault"
)

const (
	MaxSeeds      = 16
	MaxSeedLength = 32

	derivedAddressMarker = "DerivedAddress"
)

var (
	ErrMaxSeedLengthExceeded = errors.New("max seed length exceeded")
	ErrTooManySeeds          = errors.New("too many seeds")
	ErrInvalidSeeds          = errors.New("derived address lands on curve")
	ErrNoViableBump          = errors.New("unable to find a viable bump")
)

// SeedU16 encodes v little-endian.
func SeedU16(v uint16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return b
}

// SeedU64 encodes v little-endian.
func SeedU64(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

// CreateDerivedAddress hashes seeds with the program id. The result is
// rejected when it is a valid ed25519 point, since a key could sign for it.
func CreateDerivedAddress(seeds [][]byte, programID types.Address) (types.Address, error) {
	if len(seeds) > MaxSeeds {
		return types.Address{}, ErrTooManySeeds
	}
	parts := make([][]byte, 0, len(seeds)+2)
	for _, seed := range seeds {
		if len(seed) > MaxSeedLength {
			return types.Address{}, ErrMaxSeedLengthExceeded
		}
		parts = append(parts, seed)
	}
	parts = append(parts, programID.Bytes(), []byte(derivedAddressMarker))

	hash := crypto.Keccak256(parts...)
	if isOnCurve(hash) {
		return types.Address{}, ErrInvalidSeeds
	}
	return types.BytesToAddress(hash), nil
}

// FindDerivedAddress searches bumps from 255 down and returns the first
// off-curve address together with its bump.
func FindDerivedAddress(seeds [][]byte, programID types.Address) (types.Address, uint8, error) {
	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)
	for bump := 255; bump >= 0; bump-- {
		withBump[len(seeds)] = []byte{uint8(bump)}
		addr, err := CreateDerivedAddress(withBump, programID)
		if err == nil {
			return addr, uint8(bump), nil
		}
		if !errors.Is(err, ErrInvalidSeeds) {
			return types.Address{}, 0, err
		}
	}
	return types.Address{}, 0, ErrNoViableBump
}

// VerifyDerivedAddress re-derives from seeds+bump and compares with want.
func VerifyDerivedAddress(seeds [][]byte, bump uint8, programID, want types.Address) error {
	withBump := append(append([][]byte{}, seeds...), []byte{bump})
	got, err := CreateDerivedAddress(withBump, programID)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("derived address mismatch: expected %s, got %s", want, got)
	}
	return nil
}

// IsWalletKey reports whether addr is an ed25519 point a keypair can own.
// Derived addresses never are.
func IsWalletKey(addr types.Address) bool {
	return isOnCurve(addr[:])
}

func isOnCurve(b []byte) bool {
	_, err := new(edwards25519.Point).SetBytes(b)
	return err == nil
}

// HubStateSeeds addresses the hub singleton.
func HubStateSeeds() [][]byte {
	return [][]byte{[]byte(SeedHubState)}
}

// BridgeRequestSeeds binds a request to (user, target chain, gross amount).
func BridgeRequestSeeds(user types.Address, targetChain types.ChainID, amount types.Amount) [][]byte {
	return [][]byte{[]byte(SeedBridgeRequest), user.Bytes(), SeedU16(uint16(targetChain)), SeedU64(amount.Uint64())}
}

// BridgeCompletionSeeds binds a completion to its attested bridge hash.
func BridgeCompletionSeeds(bridgeHash types.Address) [][]byte {
	return [][]byte{[]byte(SeedBridgeCompletion), bridgeHash.Bytes()}
}

func PortfolioSeeds(owner types.Address) [][]byte {
	return [][]byte{[]byte(SeedPortfolio), owner.Bytes()}
}

// PactSeeds binds a pact to its creator and a creator-chosen campaign seed.
func PactSeeds(creator types.Address, campaignSeed uint64) [][]byte {
	return [][]byte{[]byte(SeedPact), creator.Bytes(), SeedU64(campaignSeed)}
}

// VaultSeeds binds a vault to the address of the pact that owns it.
func VaultSeeds(pact types.Address) [][]byte {
	return [][]byte{[]byte(SeedVault), pact.Bytes()}
}

// SeedParams inputs for SeedsForFamily; which fields are read depends on the family.
type SeedParams struct {
	Owner        types.Address
	TargetChain  types.ChainID
	Amount       types.Amount
	BridgeHash   types.Address
	CampaignSeed uint64
}

// SeedsForFamily builds the seed list for a named record family.
func SeedsForFamily(family string, p SeedParams) ([][]byte, error) {
	switch family {
	case SeedHubState:
		return HubStateSeeds(), nil
	case SeedBridgeRequest:
		return BridgeRequestSeeds(p.Owner, p.TargetChain, p.Amount), nil
	case SeedBridgeCompletion:
		return BridgeCompletionSeeds(p.BridgeHash), nil
	case SeedPortfolio:
		return PortfolioSeeds(p.Owner), nil
	case SeedPact:
		return PactSeeds(p.Owner, p.CampaignSeed), nil
	case SeedVault:
		return VaultSeeds(p.Owner), nil
	default:
		return nil, fmt.Errorf("unknown seed family %q", family)
	}
}
