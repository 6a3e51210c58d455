// Package money implements fixed-point amounts in integer minor units.
//
// Every multiplication by a percentage is rounded once, half-up (away from
// zero), to the minor unit. Amounts are never held in binary floating point.
package money

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency is the ISO 4217 tag carried by every amount.
type Currency string

const BRL Currency = "BRL"

var (
	ErrNegativeResult   = errors.New("money: result would be negative")
	ErrCurrencyMismatch = errors.New("money: currency mismatch")
	ErrInvalidAmount    = errors.New("money: invalid amount")
)

var hundred = decimal.NewFromInt(100)

// Money is an amount in cents.
type Money struct {
	Cents    int64
	Currency Currency
}

// New returns a BRL amount of the given cents.
func New(cents int64) Money {
	return Money{Cents: cents, Currency: BRL}
}

func Zero() Money { return New(0) }

// Parse reads a plain decimal string such as "1021.68" or "500".
// More than two fractional digits is rejected rather than rounded.
func Parse(s string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	cents := d.Mul(hundred)
	if !cents.IsInteger() {
		return Money{}, fmt.Errorf("%w: %q has more than two decimal places", ErrInvalidAmount, s)
	}

	return New(cents.IntPart()), nil
}

// MustParse is Parse for constants and tests.
func MustParse(s string) Money {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}

	return m
}

func (m Money) currency() Currency {
	if m.Currency == "" {
		return BRL
	}

	return m.Currency
}

func (m Money) sameCurrency(o Money) error {
	if m.currency() != o.currency() {
		return fmt.Errorf("%w: %s and %s", ErrCurrencyMismatch, m.currency(), o.currency())
	}

	return nil
}

// Add panics on currency mismatch; only one currency is ever in play.
func (m Money) Add(o Money) Money {
	if err := m.sameCurrency(o); err != nil {
		panic(err)
	}

	return Money{Cents: m.Cents + o.Cents, Currency: m.currency()}
}

// Sub is the signed difference. Report folds use it; invoice math uses
// SubtractNonNegative.
func (m Money) Sub(o Money) Money {
	if err := m.sameCurrency(o); err != nil {
		panic(err)
	}

	return Money{Cents: m.Cents - o.Cents, Currency: m.currency()}
}

// SubtractNonNegative returns m-o, or ErrNegativeResult when o > m.
func (m Money) SubtractNonNegative(o Money) (Money, error) {
	if err := m.sameCurrency(o); err != nil {
		return Money{}, err
	}

	if o.Cents > m.Cents {
		return Money{}, fmt.Errorf("%w: %s - %s", ErrNegativeResult, m, o)
	}

	return Money{Cents: m.Cents - o.Cents, Currency: m.currency()}, nil
}

// PercentageOf returns p percent of m rounded half-up to the cent.
func (m Money) PercentageOf(p Percent) Money {
	v := decimal.NewFromInt(m.Cents).Mul(p.value).Div(hundred).Round(0)
	return Money{Cents: v.IntPart(), Currency: m.currency()}
}

func (m Money) IsZero() bool     { return m.Cents == 0 }
func (m Money) IsNegative() bool { return m.Cents < 0 }

// Compare returns -1, 0 or +1.
func (m Money) Compare(o Money) int {
	switch {
	case m.Cents < o.Cents:
		return -1
	case m.Cents > o.Cents:
		return 1
	default:
		return 0
	}
}

func (m Money) Equal(o Money) bool {
	return m.currency() == o.currency() && m.Cents == o.Cents
}

// String renders "1021.68".
func (m Money) String() string {
	return decimal.New(m.Cents, -2).StringFixed(2)
}

// Format renders the amount the way the portal shows it: "R$ 1.021,68".
func (m Money) Format() string {
	cents := m.Cents
	sign := ""

	if cents < 0 {
		sign = "-"
		cents = -cents
	}

	units := strconv.FormatInt(cents/100, 10)

	var sb strings.Builder

	for i, r := range units {
		if i > 0 && (len(units)-i)%3 == 0 {
			sb.WriteByte('.')
		}

		sb.WriteRune(r)
	}

	return fmt.Sprintf("%sR$ %s,%02d", sign, sb.String(), cents%100)
}

// MarshalJSON encodes the amount as a decimal string so clients never see a float.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *Money) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: amount must be a decimal string", ErrInvalidAmount)
	}

	parsed, err := Parse(s)
	if err != nil {
		return err
	}

	*m = parsed

	return nil
}
