// Package money provides fixed-precision decimal arithmetic for fee and rate math.
//
// Every operation takes its precision and rounding mode from an explicit Context so
// concurrent simulations never share mutable arithmetic settings.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrDivisionByZero is returned when a division is asked to divide by an exact zero.
var ErrDivisionByZero = errors.New("division by zero")

// Rounding selects how results are rounded to the context precision.
type Rounding int

const (
	RoundHalfUp Rounding = iota
	RoundHalfEven
	RoundDown
)

// DefaultPrecision is the number of significant digits kept by DefaultContext.
const DefaultPrecision int32 = 19

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

// ParseRounding maps a configuration value to a Rounding mode.
func ParseRounding(s string) (Rounding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "half_up", "halfup":
		return RoundHalfUp, nil
	case "half_even", "halfeven", "bank":
		return RoundHalfEven, nil
	case "down", "truncate":
		return RoundDown, nil
	default:
		return RoundHalfUp, fmt.Errorf("unknown rounding mode %q", s)
	}
}

// Context carries the precision (significant digits) and rounding mode for a computation.
type Context struct {
	Precision int32
	Rounding  Rounding
}

// DefaultContext returns 19 significant digits with round-half-up.
func DefaultContext() Context {
	return Context{Precision: DefaultPrecision, Rounding: RoundHalfUp}
}

// Round reduces d to the context's number of significant digits.
func (c Context) Round(d decimal.Decimal) decimal.Decimal {
	if d.IsZero() || c.Precision <= 0 {
		return d
	}
	digits := int32(d.NumDigits())
	if digits <= c.Precision {
		return d
	}
	places := c.Precision - (digits + d.Exponent())
	return c.roundPlaces(d, places)
}

func (c Context) roundPlaces(d decimal.Decimal, places int32) decimal.Decimal {
	switch c.Rounding {
	case RoundHalfEven:
		return d.RoundBank(places)
	case RoundDown:
		return d.Truncate(places)
	default:
		return d.Round(places)
	}
}

// Add returns a + b.
func (c Context) Add(a, b decimal.Decimal) decimal.Decimal {
	return c.Round(a.Add(b))
}

// Sub returns a - b.
func (c Context) Sub(a, b decimal.Decimal) decimal.Decimal {
	return c.Round(a.Sub(b))
}

// Mul returns a * b.
func (c Context) Mul(a, b decimal.Decimal) decimal.Decimal {
	return c.Round(a.Mul(b))
}

// Div returns a / b, failing with ErrDivisionByZero when b is exactly zero.
func (c Context) Div(a, b decimal.Decimal) (decimal.Decimal, error) {
	if b.IsZero() {
		return decimal.Zero, ErrDivisionByZero
	}
	// Twice the precision in fractional places before the significant-digit rounding.
	q := a.DivRound(b, 2*c.precision())
	return c.Round(q), nil
}

// Pow returns base^exp by repeated multiplication, rounding at every step.
func (c Context) Pow(base decimal.Decimal, exp int) (decimal.Decimal, error) {
	if exp < 0 {
		p, err := c.Pow(base, -exp)
		if err != nil {
			return decimal.Zero, err
		}
		return c.Div(one, p)
	}
	result := one
	for i := 0; i < exp; i++ {
		result = c.Mul(result, base)
	}
	return result, nil
}

// Sum adds all values.
func (c Context) Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = c.Add(total, v)
	}
	return total
}

func (c Context) precision() int32 {
	if c.Precision <= 0 {
		return DefaultPrecision
	}
	return c.Precision
}

// ToMajor converts an amount in minor currency units (cents) to major units.
func ToMajor(minor decimal.Decimal) decimal.Decimal {
	return minor.Shift(-2)
}

// ToMinor converts an amount in major currency units to minor units.
func ToMinor(major decimal.Decimal) decimal.Decimal {
	return major.Shift(2)
}

// Display rounds a value to two decimal places for presentation.
func Display(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// Percent returns part/whole*100, or zero when whole is zero.
func (c Context) Percent(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	ratio, _ := c.Div(part, whole)
	return c.Mul(ratio, hundred)
}
