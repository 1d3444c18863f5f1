package services

import (
	"context"

	"crosschain-hub/internal/types"

	"github.com/sirupsen/logrus"
)

// Attestation is the relayer's claim that a foreign-chain transfer happened.
type Attestation struct {
	SourceChain types.ChainID
	BridgeHash  types.Address
	Recipient   types.Address
	Asset       types.Address
	Amount      types.Amount
	Proof       []byte // opaque relayer signature/VAA bytes
}

// AttestationVerifier checks an attestation against the messaging relayer
// before a completion is trusted.
type AttestationVerifier interface {
	Verify(ctx context.Context, attestation Attestation) error
}

// UnverifiedAttestations accepts every attestation.
// TODO: replace with a guardian-set signature check once the relayer publishes its key set.
type UnverifiedAttestations struct{}

func (UnverifiedAttestations) Verify(ctx context.Context, attestation Attestation) error {
	logrus.WithFields(logrus.Fields{
		"source_chain": attestation.SourceChain,
		"bridge_hash":  attestation.BridgeHash.Hex(),
	}).Warn("Accepting bridge completion without attestation verification")
	return nil
}
