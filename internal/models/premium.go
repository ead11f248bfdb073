// internal/models/premium.go
package models

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
)

// Premium is a stored premium amount. It keeps the exact decimal value from
// the plan file and serializes back as a bare JSON number.
type Premium struct {
	decimal.Decimal
}

func NewPremium(d decimal.Decimal) Premium {
	return Premium{Decimal: d}
}

// MustPremium parses s or panics. Intended for fixtures.
func MustPremium(s string) Premium {
	return Premium{Decimal: decimal.RequireFromString(s)}
}

func (p Premium) MarshalJSON() ([]byte, error) {
	return []byte(p.Decimal.String()), nil
}

// UnmarshalJSON accepts JSON numbers only; strings and null are rejected.
func (p *Premium) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	if len(raw) == 0 || raw[0] == '"' || bytes.Equal(raw, []byte("null")) {
		return fmt.Errorf("premium must be a JSON number, got %s", raw)
	}
	d, err := decimal.NewFromString(string(raw))
	if err != nil {
		return fmt.Errorf("premium %s: %w", raw, err)
	}
	p.Decimal = d
	return nil
}

// AgePremiums maps an age, written as a decimal string ("40"), to its premium.
type AgePremiums map[string]Premium

// PriceTable maps a plan option name ("Gold") to its per-age premiums.
type PriceTable map[string]AgePremiums
