package partner

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestParty(t *testing.T) *Party {
	p, err := NewParty(uuid.New(), "Acme Corp", "ACME", "4100", 30)
	require.NoError(t, err)
	return p
}

func TestNewParty(t *testing.T) {
	p := createTestParty(t)
	assert.True(t, p.Active)
	assert.Equal(t, 30, p.PaymentTermDays)
	assert.Len(t, p.GetDomainEvents(), 1)
}

func TestNewParty_Invalid(t *testing.T) {
	tests := []struct {
		name              string
		partyName         string
		code              string
		receivableAccount string
		paymentTermDays   int
	}{
		{"empty name", "", "ACME", "4100", 30},
		{"empty code", "Acme", "", "4100", 30},
		{"missing receivable account", "Acme", "ACME", "", 30},
		{"negative payment term", "Acme", "ACME", "4100", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParty(uuid.New(), tt.partyName, tt.code, tt.receivableAccount, tt.paymentTermDays)
			assert.Error(t, err)
		})
	}
}

func TestParty_Update(t *testing.T) {
	p := createTestParty(t)
	require.NoError(t, p.Update("Acme Inc", "billing@acme.test", "4101", 45))
	assert.Equal(t, "Acme Inc", p.Name)
	assert.Equal(t, 45, p.PaymentTermDays)

	assert.Error(t, p.Update("", "", "4101", 45))
}

func TestParty_TaxSubstitutions(t *testing.T) {
	p := createTestParty(t)
	reduced := "VAT6"
	require.NoError(t, p.AddTaxSubstitution("VAT21", &reduced))
	require.NoError(t, p.AddTaxSubstitution("ECO", nil))

	// Duplicate source code
	assert.Error(t, p.AddTaxSubstitution("VAT21", nil))

	require.NoError(t, p.RemoveTaxSubstitution("ECO"))
	assert.Error(t, p.RemoveTaxSubstitution("ECO"))
	assert.Len(t, p.TaxRule, 1)
}

func TestParty_ApplyTaxRule(t *testing.T) {
	p := createTestParty(t)
	reduced := "VAT6"
	require.NoError(t, p.AddTaxSubstitution("VAT21", &reduced))
	require.NoError(t, p.AddTaxSubstitution("ECO", nil))

	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{"substituted", []string{"VAT21"}, []string{"VAT6"}},
		{"dropped", []string{"ECO"}, []string{}},
		{"pass through", []string{"VAT12"}, []string{"VAT12"}},
		{"mixed", []string{"VAT21", "ECO", "VAT12"}, []string{"VAT6", "VAT12"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, p.ApplyTaxRule(tt.input))
		})
	}
}

func TestParty_ApplyTaxRule_NoRule(t *testing.T) {
	p := createTestParty(t)
	codes := []string{"VAT21"}
	assert.Equal(t, codes, p.ApplyTaxRule(codes))
}

func TestParty_ActivateDeactivate(t *testing.T) {
	p := createTestParty(t)
	p.Deactivate()
	assert.False(t, p.Active)
	p.Activate()
	assert.True(t, p.Active)
}
