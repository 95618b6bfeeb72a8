package valueobject

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Unit is a value object representing a unit of measurement.
// It is immutable - all operations return new Unit instances.
// A Unit has a code (identifier), name (display), and a rounding step that
// quantities expressed in this unit are rounded to.
type Unit struct {
	code     string
	name     string
	rounding decimal.Decimal
}

// Common unit codes for convenience
const (
	UnitCodeUnit  = "UNIT"  // Generic unit (base for service products)
	UnitCodeHour  = "HOUR"  // Hours
	UnitCodeDay   = "DAY"   // Days
	UnitCodeMonth = "MONTH" // Months
)

// DefaultRounding is the rounding step applied when none is configured
var DefaultRounding = decimal.New(1, -2) // 0.01

// NewUnit creates a new Unit with the specified code, name, and rounding step.
// Returns error if:
//   - code is empty or too long (max 20 chars)
//   - name is empty or too long (max 50 chars)
//   - rounding is zero or negative
func NewUnit(code, name string, rounding decimal.Decimal) (Unit, error) {
	code = strings.TrimSpace(strings.ToUpper(code))
	name = strings.TrimSpace(name)

	if code == "" {
		return Unit{}, fmt.Errorf("unit code cannot be empty")
	}
	if len(code) > 20 {
		return Unit{}, fmt.Errorf("unit code cannot exceed 20 characters")
	}
	if name == "" {
		return Unit{}, fmt.Errorf("unit name cannot be empty")
	}
	if len(name) > 50 {
		return Unit{}, fmt.Errorf("unit name cannot exceed 50 characters")
	}
	if rounding.LessThanOrEqual(decimal.Zero) {
		return Unit{}, fmt.Errorf("unit rounding must be positive")
	}

	return Unit{
		code:     code,
		name:     name,
		rounding: rounding,
	}, nil
}

// MustNewUnit creates a Unit and panics on error.
// Use only when you're certain the inputs are valid.
func MustNewUnit(code, name string, rounding decimal.Decimal) Unit {
	u, err := NewUnit(code, name, rounding)
	if err != nil {
		panic(err)
	}
	return u
}

// Code returns the unit code (normalized to uppercase).
func (u Unit) Code() string {
	return u.code
}

// Name returns the unit name.
func (u Unit) Name() string {
	return u.name
}

// Rounding returns the rounding step for quantities in this unit.
func (u Unit) Rounding() decimal.Decimal {
	return u.rounding
}

// IsZero returns true if the unit is the zero value (no unit configured).
func (u Unit) IsZero() bool {
	return u.code == ""
}

// Round rounds a quantity to the nearest multiple of the unit's rounding step.
// A zero unit rounds to whole numbers.
func (u Unit) Round(quantity decimal.Decimal) decimal.Decimal {
	step := u.rounding
	if u.IsZero() || step.LessThanOrEqual(decimal.Zero) {
		step = decimal.NewFromInt(1)
	}
	return quantity.Div(step).Round(0).Mul(step)
}
