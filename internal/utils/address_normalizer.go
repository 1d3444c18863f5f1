package utils

import (
	"fmt"
	"math/big"
	"strings"

	"crosschain-hub/internal/types"

	"github.com/ethereum/go-ethereum/common"
)

const base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

// IsEvmAddress checks for a 20-byte hex address, with or without 0x
func IsEvmAddress(address string) bool {
	return common.IsHexAddress(address)
}

// IsUniversalAddress checks for a 32-byte hex address, with or without 0x
func IsUniversalAddress(address string) bool {
	_, err := types.ParseAddress(address)
	return err == nil
}

// NormalizeRecipient turns a recipient as users write it for chain into the
// 32-byte form stored on bridge requests.
//
// EVM chains accept a 20-byte address (left-padded with zeros) or a 32-byte
// address whose first 12 bytes are zero. Every other chain takes 32-byte hex
// or, for base58 keys, the decoded 32 bytes.
func NormalizeRecipient(chain types.ChainID, raw string) (types.Address, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return types.Address{}, fmt.Errorf("recipient is required")
	}

	info, err := GlobalChainRegistry.Get(chain)
	if err == nil && info.IsEVM {
		if IsEvmAddress(raw) {
			return EvmToUniversalAddress(common.HexToAddress(raw)), nil
		}
		addr, err := types.ParseAddress(raw)
		if err != nil {
			return types.Address{}, fmt.Errorf("invalid %s recipient %q", info.Name, raw)
		}
		if _, ok := ExtractEvmAddress(addr); !ok {
			return types.Address{}, fmt.Errorf("recipient %s is not a padded %s address", addr.Hex(), info.Name)
		}
		return addr, nil
	}

	if addr, err := types.ParseAddress(raw); err == nil {
		return addr, nil
	}
	return ParseBase58Address(raw)
}

// EvmToUniversalAddress left-pads a 20-byte EVM address to 32 bytes
func EvmToUniversalAddress(evm common.Address) types.Address {
	return types.BytesToAddress(evm.Bytes())
}

// ExtractEvmAddress returns the low 20 bytes when the high 12 are zero
func ExtractEvmAddress(addr types.Address) (common.Address, bool) {
	for _, b := range addr[:types.AddressLength-common.AddressLength] {
		if b != 0 {
			return common.Address{}, false
		}
	}
	return common.BytesToAddress(addr[types.AddressLength-common.AddressLength:]), true
}

// ParseBase58Address decodes a base58 key that must be exactly 32 bytes
func ParseBase58Address(s string) (types.Address, error) {
	decoded, err := base58Decode(s)
	if err != nil {
		return types.Address{}, err
	}
	if len(decoded) != types.AddressLength {
		return types.Address{}, fmt.Errorf("invalid base58 address length: expected %d bytes, got %d", types.AddressLength, len(decoded))
	}
	return types.BytesToAddress(decoded), nil
}

// Base58 encodes addr the way native wallets display keys
func Base58(addr types.Address) string {
	num := new(big.Int).SetBytes(addr[:])
	base := big.NewInt(58)
	mod := new(big.Int)

	var out []byte
	for num.Sign() > 0 {
		num.DivMod(num, base, mod)
		out = append(out, base58Alphabet[mod.Int64()])
	}
	for _, b := range addr {
		if b != 0 {
			break
		}
		out = append(out, base58Alphabet[0])
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return string(out)
}

func base58Decode(input string) ([]byte, error) {
	if input == "" {
		return nil, fmt.Errorf("empty base58 string")
	}

	zeroCount := 0
	for zeroCount < len(input) && input[zeroCount] == base58Alphabet[0] {
		zeroCount++
	}

	num := big.NewInt(0)
	base := big.NewInt(58)
	for i := 0; i < len(input); i++ {
		val := strings.IndexByte(base58Alphabet, input[i])
		if val < 0 {
			return nil, fmt.Errorf("invalid base58 character: %c", input[i])
		}
		num.Mul(num, base)
		num.Add(num, big.NewInt(int64(val)))
	}

	decoded := num.Bytes()
	return append(make([]byte, zeroCount, zeroCount+len(decoded)), decoded...), nil
}
