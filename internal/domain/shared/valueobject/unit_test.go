package valueobject

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUnit(t *testing.T) {
	u, err := NewUnit("hour", "Hours", decimal.New(1, -2))
	require.NoError(t, err)
	assert.Equal(t, "HOUR", u.Code())
	assert.Equal(t, "Hours", u.Name())

	_, err = NewUnit("", "Hours", decimal.New(1, -2))
	assert.Error(t, err)

	_, err = NewUnit("HOUR", "", decimal.New(1, -2))
	assert.Error(t, err)

	_, err = NewUnit("HOUR", "Hours", decimal.Zero)
	assert.Error(t, err)
}

func TestUnit_Round(t *testing.T) {
	tests := []struct {
		name     string
		rounding decimal.Decimal
		quantity string
		expected string
	}{
		{"two decimals", decimal.New(1, -2), "0.98765", "0.99"},
		{"whole numbers", decimal.NewFromInt(1), "2.4", "2"},
		{"half steps", decimal.NewFromFloat(0.5), "1.74", "1.5"},
		{"exact value unchanged", decimal.New(1, -2), "1", "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := MustNewUnit("UNIT", "Units", tt.rounding)
			q := decimal.RequireFromString(tt.quantity)
			assert.Equal(t, tt.expected, u.Round(q).String())
		})
	}
}

func TestUnit_Round_ZeroUnit(t *testing.T) {
	var u Unit
	assert.True(t, u.IsZero())
	assert.Equal(t, "3", u.Round(decimal.NewFromFloat(2.6)).String())
}
