package domain

import (
	"database/sql/driver"
	"fmt"
	"strconv"
)

// MaxExactNumber is the largest integer a JSON (float64) number carries
// without loss. Larger receipt numbers and amounts must be sent as strings.
const MaxExactNumber = 1 << 53

// Money is an unsigned amount in the smallest currency unit.
// It is persisted as a decimal string so the full uint64 range fits a NUMERIC column.
//
// The cap is math.MaxUint64 (18446744073709551615). For amounts kept in wei
// (1e18 per whole unit) that is about 18.44 whole units per field.
type Money uint64

func (m Money) String() string {
	return strconv.FormatUint(uint64(m), 10)
}

// ParseMoney parses a base-10 unsigned amount.
func ParseMoney(s string) (Money, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid amount %q", ErrInvalidInput, s)
	}
	return Money(v), nil
}

// Value implements driver.Valuer.
func (m Money) Value() (driver.Value, error) {
	return m.String(), nil
}

// Scan implements sql.Scanner.
func (m *Money) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*m = 0
		return nil
	case int64:
		if v < 0 {
			return fmt.Errorf("negative amount %d", v)
		}
		*m = Money(v)
		return nil
	case []byte:
		return m.scanString(string(v))
	case string:
		return m.scanString(v)
	default:
		return fmt.Errorf("cannot scan %T into Money", src)
	}
}

func (m *Money) scanString(s string) error {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("cannot scan %q into Money: %w", s, err)
	}
	*m = Money(v)
	return nil
}
