package validation

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

// Amount parses a currency value, rejecting malformed or negative input and
// rounding to 2 decimals. Empty input counts as zero so forms can omit
// fields that default.
func Amount(field, raw string, v Violations) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		v[field] = "not_a_number"
		return 0
	}
	if d.IsNegative() {
		v[field] = "must_not_be_negative"
		return 0
	}
	f, _ := d.Round(2).Float64()
	return f
}

// Date parses a YYYY-MM-DD value. Empty input yields nil without a violation.
func Date(field, raw string, v Violations) *time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		v[field] = "invalid_date"
		return nil
	}
	return &t
}
