package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Amount is an unsigned 64-bit quantity of value or volume.
// It is persisted and serialized as a decimal string so the whole uint64
// range survives SQL dialects with signed BIGINT and JSON clients with float64.
type Amount uint64

// MaxAmount is the numeric ceiling used by saturating arithmetic.
const MaxAmount = Amount(^uint64(0))

// ParseAmount parses a base-10 unsigned amount.
func ParseAmount(s string) (Amount, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return Amount(v), nil
}

func (a Amount) Uint64() uint64 { return uint64(a) }

func (a Amount) String() string { return strconv.FormatUint(uint64(a), 10) }

func (a Amount) IsZero() bool { return a == 0 }

// MarshalJSON encodes as a quoted decimal.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts either a quoted decimal or a bare JSON number.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	}
	parsed, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Value implements driver.Valuer.
func (a Amount) Value() (driver.Value, error) {
	return a.String(), nil
}

// Scan implements sql.Scanner.
func (a *Amount) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*a = 0
		return nil
	case string:
		parsed, err := ParseAmount(v)
		if err != nil {
			return err
		}
		*a = parsed
		return nil
	case []byte:
		parsed, err := ParseAmount(string(v))
		if err != nil {
			return err
		}
		*a = parsed
		return nil
	case int64:
		if v < 0 {
			return fmt.Errorf("negative amount %d", v)
		}
		*a = Amount(v)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Amount", src)
	}
}
