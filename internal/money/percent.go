package money

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// percentScale bounds the precision of a stored percentage.
const percentScale = 6

// Percent is a percentage rate: "2" is 2%, "0.033" is 0.033%.
type Percent struct {
	value decimal.Decimal
}

func ParsePercent(s string) (Percent, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Percent{}, nil
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return Percent{}, fmt.Errorf("invalid percent %q: %w", s, err)
	}

	if d.Exponent() < -percentScale {
		return Percent{}, fmt.Errorf("invalid percent %q: more than %d decimal places", s, percentScale)
	}

	return Percent{value: d}, nil
}

func MustPercent(s string) Percent {
	p, err := ParsePercent(s)
	if err != nil {
		panic(err)
	}

	return p
}

// Mul scales the rate, e.g. a daily rate by the number of days late.
func (p Percent) Mul(n int64) Percent {
	return Percent{value: p.value.Mul(decimal.NewFromInt(n))}
}

func (p Percent) IsZero() bool     { return p.value.IsZero() }
func (p Percent) IsNegative() bool { return p.value.IsNegative() }

func (p Percent) Equal(o Percent) bool { return p.value.Equal(o.value) }

// Compare returns -1, 0 or +1.
func (p Percent) Compare(o Percent) int { return p.value.Cmp(o.value) }

func (p Percent) String() string {
	return p.value.String()
}

func (p Percent) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *Percent) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("percent must be a decimal string: %w", err)
	}

	parsed, err := ParsePercent(s)
	if err != nil {
		return err
	}

	*p = parsed

	return nil
}
