package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an amount in cents. Arithmetic never leaves the integer domain;
// decimal strings exist only at the API boundary.
type Money int64

// Zero is the zero amount.
const Zero Money = 0

const centsExp = 2

var maxMoney = decimal.New(1<<62, 0)

// Cents builds a Money value from an integer number of cents.
func Cents(c int64) Money {
	return Money(c)
}

// Units builds a Money value from whole currency units.
func Units(u int64) Money {
	return Money(u * 100)
}

// ParseMoney parses a decimal string such as "12.50" or "-50".
// More than two fractional digits are rejected.
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Zero, fmt.Errorf("%w: %q is not a number", ErrInvalidAmount, s)
	}

	return FromDecimal(d)
}

// FromDecimal converts a decimal to Money.
func FromDecimal(d decimal.Decimal) (Money, error) {
	cents := d.Shift(centsExp)
	if !cents.Equal(cents.Truncate(0)) {
		return Zero, fmt.Errorf("%w: %s has more than two decimal places", ErrInvalidAmount, d.String())
	}

	if cents.Abs().GreaterThan(maxMoney) {
		return Zero, fmt.Errorf("%w: %s is out of range", ErrAmountTooLarge, d.String())
	}

	return Money(cents.IntPart()), nil
}

// MustParseMoney is ParseMoney for constants and tests.
func MustParseMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}

	return m
}

func (m Money) Add(o Money) Money { return m + o }
func (m Money) Sub(o Money) Money { return m - o }
func (m Money) Neg() Money        { return -m }

// Cmp returns -1, 0 or +1.
func (m Money) Cmp(o Money) int {
	switch {
	case m < o:
		return -1
	case m > o:
		return 1
	default:
		return 0
	}
}

func (m Money) LessThan(o Money) bool { return m < o }
func (m Money) IsPositive() bool      { return m > 0 }
func (m Money) IsNegative() bool      { return m < 0 }
func (m Money) IsZero() bool          { return m == 0 }

// CentsValue returns the raw integer amount.
func (m Money) CentsValue() int64 {
	return int64(m)
}

// Decimal returns the amount as a decimal in currency units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -centsExp)
}

// String formats the amount with exactly two decimal places.
func (m Money) String() string {
	return m.Decimal().StringFixed(centsExp)
}

// MarshalJSON encodes the amount as a quoted decimal string.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON accepts a quoted decimal string or a bare number.
func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}

	v, err := FromDecimal(d)
	if err != nil {
		return err
	}

	*m = v

	return nil
}
