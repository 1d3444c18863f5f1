package utils

import (
	"strings"
	"testing"

	"crosschain-hub/internal/types"
)

func TestNormalizeRecipient(t *testing.T) {
	evm := "0x" + strings.Repeat("ab", 20)
	padded := "0x" + strings.Repeat("00", 12) + strings.Repeat("ab", 20)
	full := "0x" + strings.Repeat("cd", 32)

	tests := []struct {
		name    string
		chain   types.ChainID
		raw     string
		want    string
		wantErr bool
	}{
		{"evm 20-byte", types.ChainEthereum, evm, padded, false},
		{"evm without prefix", types.ChainPolygon, strings.Repeat("ab", 20), padded, false},
		{"evm padded", types.ChainBSC, padded, padded, false},
		{"evm rejects full 32 bytes", types.ChainEthereum, full, "", true},
		{"native 32-byte hex", types.ChainSolana, full, full, false},
		{"native rejects 20 bytes", types.ChainSolana, evm, "", true},
		{"native base58", types.ChainSolana, strings.Repeat("1", 32), "0x" + strings.Repeat("00", 32), false},
		{"unknown chain 32-byte", types.ChainID(999), full, full, false},
		{"empty", types.ChainEthereum, "  ", "", true},
	}
	for _, tt := range tests {
		got, err := NormalizeRecipient(tt.chain, tt.raw)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("%s: expected error, got %s", tt.name, got.Hex())
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: unexpected error %v", tt.name, err)
		}
		if got.Hex() != tt.want {
			t.Fatalf("%s: expected %s, got %s", tt.name, tt.want, got.Hex())
		}
	}
}

func TestBase58RoundTrip(t *testing.T) {
	var zero types.Address
	if got := Base58(zero); got != strings.Repeat("1", 32) {
		t.Fatalf("expected 32 ones for the zero address, got %s", got)
	}

	addr := types.MustParseAddress("0x00" + strings.Repeat("7f", 31))
	decoded, err := ParseBase58Address(Base58(addr))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded != addr {
		t.Fatalf("expected %s, got %s", addr.Hex(), decoded.Hex())
	}

	if _, err := ParseBase58Address("0OIl"); err == nil {
		t.Fatal("expected invalid characters rejected")
	}
	if _, err := ParseBase58Address("2"); err == nil {
		t.Fatal("expected short key rejected")
	}
}

func TestExtractEvmAddress(t *testing.T) {
	addr := types.MustParseAddress("0x" + strings.Repeat("00", 12) + strings.Repeat("11", 20))
	evm, ok := ExtractEvmAddress(addr)
	if !ok || strings.ToLower(evm.Hex()) != "0x"+strings.Repeat("11", 20) {
		t.Fatalf("unexpected extraction %s %v", evm.Hex(), ok)
	}
	if _, ok := ExtractEvmAddress(types.MustParseAddress("0x" + strings.Repeat("11", 32))); ok {
		t.Fatal("expected non-padded address refused")
	}
}
