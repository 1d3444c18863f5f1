// Package types provides common type definitions used across the backend
package types

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// AddressLength is the size of every identity and derived record address.
const AddressLength = 32

// Address is a 32-byte identity: a native account key, a derived record address
// or a raw foreign-chain recipient.
type Address [AddressLength]byte

// ZeroAddress is the all-zero address; it never identifies a live record.
var ZeroAddress Address

// ParseAddress decodes a 32-byte hex address, with or without the 0x prefix.
func ParseAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}
	b, err := hexutil.Decode(strings.ToLower(s))
	if err != nil {
		return Address{}, fmt.Errorf("invalid address %q: %w", s, err)
	}
	if len(b) != AddressLength {
		return Address{}, fmt.Errorf("invalid address length: expected %d bytes, got %d", AddressLength, len(b))
	}
	var a Address
	copy(a[:], b)
	return a, nil
}

// MustParseAddress is ParseAddress for constants and tests.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// BytesToAddress left-pads or truncates b into an Address.
func BytesToAddress(b []byte) Address {
	var a Address
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
	return a
}

func (a Address) Bytes() []byte { return a[:] }

func (a Address) Hex() string { return hexutil.Encode(a[:]) }

func (a Address) String() string { return a.Hex() }

func (a Address) IsZero() bool { return a == ZeroAddress }

// MarshalText implements encoding.TextMarshaler so JSON carries 0x-hex.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Value stores the address as 0x-hex (VARCHAR(66)).
func (a Address) Value() (driver.Value, error) {
	return a.Hex(), nil
}

// Scan implements sql.Scanner.
func (a *Address) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*a = Address{}
		return nil
	case string:
		return a.UnmarshalText([]byte(v))
	case []byte:
		return a.UnmarshalText(v)
	default:
		return fmt.Errorf("cannot scan %T into Address", src)
	}
}
