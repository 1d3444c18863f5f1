package ledger

import (
	"fmt"

	"crosschain-hub/internal/types"
	"crosschain-hub/internal/utils"
)

// VaultHandle is the capability to move value out of a pact's vault.
// It can only be built by re-deriving the vault address from the pact.
type VaultHandle struct {
	pact    types.Address
	address types.Address
	bump    uint8
}

// FindVault derives a fresh vault for pact, picking the canonical bump.
func FindVault(programID, pact types.Address) (VaultHandle, error) {
	addr, bump, err := utils.FindDerivedAddress(utils.VaultSeeds(pact), programID)
	if err != nil {
		return VaultHandle{}, fmt.Errorf("failed to derive vault for pact %s: %w", pact, err)
	}
	return VaultHandle{pact: pact, address: addr, bump: bump}, nil
}

// DeriveVault rebuilds the handle from the bump persisted on the pact.
func DeriveVault(programID, pact types.Address, bump uint8) (VaultHandle, error) {
	seeds := append(utils.VaultSeeds(pact), []byte{bump})
	addr, err := utils.CreateDerivedAddress(seeds, programID)
	if err != nil {
		return VaultHandle{}, fmt.Errorf("failed to derive vault for pact %s: %w", pact, err)
	}
	return VaultHandle{pact: pact, address: addr, bump: bump}, nil
}

func (h VaultHandle) Address() types.Address { return h.address }
func (h VaultHandle) Bump() uint8            { return h.bump }
func (h VaultHandle) Pact() types.Address    { return h.pact }

// IsZero reports whether h was never derived.
func (h VaultHandle) IsZero() bool { return h.address.IsZero() }
