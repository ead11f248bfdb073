// internal/models/projection.go
package models

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// CalculationRequest asks for a premium projection from Age through age 100.
// NumberOfYears is accepted for compatibility and does not bound the result.
type CalculationRequest struct {
	Company       string     `json:"company"`
	PlanFileName  string     `json:"planFileName"`
	Age           CoercedInt `json:"age"`
	PlanOption    string     `json:"planOption"`
	NumberOfYears CoercedInt `json:"numberOfYears"`
}

// ProjectionRecord is one projected year.
type ProjectionRecord struct {
	YearNumber     int     `json:"yearNumber"`
	Age            int     `json:"age"`
	MedicalPremium Premium `json:"medicalPremium"`
}

// CoercedInt decodes from a JSON integer, a whole-valued number such as
// 40.0, or a numeric string such as "40".
type CoercedInt int

func (c CoercedInt) Int() int { return int(c) }

func (c CoercedInt) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Itoa(int(c))), nil
}

func (c *CoercedInt) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	if bytes.Equal(raw, []byte("null")) {
		return fmt.Errorf("expected integer, got null")
	}
	if len(raw) > 0 && raw[0] == '"' {
		unquoted, err := strconv.Unquote(string(raw))
		if err != nil {
			return fmt.Errorf("invalid integer string %s: %w", raw, err)
		}
		raw = bytes.TrimSpace([]byte(unquoted))
	}

	d, err := decimal.NewFromString(string(raw))
	if err != nil {
		return fmt.Errorf("invalid integer %q: %w", raw, err)
	}
	if !d.IsInteger() {
		return fmt.Errorf("invalid integer %q: has a fractional part", raw)
	}
	if d.GreaterThan(decimal.NewFromInt(math.MaxInt32)) || d.LessThan(decimal.NewFromInt(math.MinInt32)) {
		return fmt.Errorf("integer %q out of range", raw)
	}

	*c = CoercedInt(d.IntPart())
	return nil
}
