package invoicing

import (
	"testing"
	"time"

	"github.com/erp/contracts/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGroupKey() GroupKey {
	return GroupKey{
		TenantID:    uuid.New(),
		PartyID:     uuid.New(),
		Currency:    valueobject.EUR,
		Type:        InvoiceTypeOut,
		InvoiceDate: time.Date(2020, time.January, 31, 0, 0, 0, 0, time.UTC),
	}
}

func createTestInvoice(t *testing.T) *Invoice {
	inv, err := NewInvoice(testGroupKey(), "Acme Corp", "Main St 1, 1000 Brussels, BE", "REV", "4100", 30)
	require.NoError(t, err)
	return inv
}

func testLine(quantity, price string) InvoiceLine {
	return InvoiceLine{
		Description:    "Hosting (2020-01-01 - 2020-01-31)",
		Quantity:       decimal.RequireFromString(quantity),
		UnitCode:       "UNIT",
		UnitPrice:      decimal.RequireFromString(price),
		RevenueAccount: "7000",
		TaxCodes:       TaxCodes{"VAT21"},
	}
}

func TestNewInvoice(t *testing.T) {
	inv := createTestInvoice(t)
	assert.Equal(t, InvoiceStatusDraft, inv.Status)
	assert.Empty(t, inv.Number)
	assert.Len(t, inv.GetDomainEvents(), 1)
}

func TestNewInvoice_Invalid(t *testing.T) {
	key := testGroupKey()
	key.PartyID = uuid.Nil
	_, err := NewInvoice(key, "Acme", "", "REV", "4100", 30)
	assert.Error(t, err)

	key = testGroupKey()
	key.Currency = "XXX"
	_, err = NewInvoice(key, "Acme", "", "REV", "4100", 30)
	assert.Error(t, err)

	key = testGroupKey()
	_, err = NewInvoice(key, "Acme", "", "REV", "", 30)
	assert.Error(t, err)
}

func TestInvoice_Key(t *testing.T) {
	key := testGroupKey()
	inv, err := NewInvoice(key, "Acme", "", "REV", "4100", 30)
	require.NoError(t, err)

	got := inv.Key()
	// Tenant ID is assigned by the aggregate root constructor
	assert.Equal(t, key.TenantID, got.TenantID)
	assert.Equal(t, key.PartyID, got.PartyID)
	assert.Equal(t, key.Currency, got.Currency)
	assert.Equal(t, key.Type, got.Type)
	assert.Equal(t, key.InvoiceDate, got.InvoiceDate)
}

func TestInvoice_AddLine(t *testing.T) {
	inv := createTestInvoice(t)
	line, err := inv.AddLine(testLine("1", "30"))
	require.NoError(t, err)
	assert.Equal(t, inv.ID, line.InvoiceID)
	assert.NotEqual(t, uuid.Nil, line.ID)
	assert.Equal(t, 1, inv.LineCount())
}

func TestInvoice_AddLine_Invalid(t *testing.T) {
	inv := createTestInvoice(t)

	bad := testLine("1", "30")
	bad.Description = ""
	_, err := inv.AddLine(bad)
	assert.Error(t, err)

	bad = testLine("1", "30")
	bad.RevenueAccount = ""
	_, err = inv.AddLine(bad)
	assert.Error(t, err)
}

func TestInvoice_UntaxedAmount(t *testing.T) {
	inv := createTestInvoice(t)
	_, err := inv.AddLine(testLine("1", "30"))
	require.NoError(t, err)
	_, err = inv.AddLine(testLine("0.5", "100"))
	require.NoError(t, err)

	assert.True(t, inv.UntaxedAmount().Equal(decimal.NewFromInt(80)))
	assert.Equal(t, valueobject.EUR, inv.UntaxedAmountMoney().Currency())
}

func TestInvoice_Post(t *testing.T) {
	inv := createTestInvoice(t)

	// No lines yet
	assert.Error(t, inv.Post("INV-2020-00001"))

	_, err := inv.AddLine(testLine("1", "30"))
	require.NoError(t, err)

	assert.Error(t, inv.Post(""))
	require.NoError(t, inv.Post("INV-2020-00001"))
	assert.Equal(t, InvoiceStatusPosted, inv.Status)

	// Posted invoices are frozen
	assert.Error(t, inv.Post("INV-2020-00002"))
	_, err = inv.AddLine(testLine("1", "30"))
	assert.Error(t, err)
}

func TestTaxCodes_RoundTrip(t *testing.T) {
	codes := TaxCodes{"VAT21", "ECO"}
	value, err := codes.Value()
	require.NoError(t, err)
	assert.Equal(t, "VAT21,ECO", value)

	var scanned TaxCodes
	require.NoError(t, scanned.Scan("VAT21,ECO"))
	assert.Equal(t, codes, scanned)

	require.NoError(t, scanned.Scan(""))
	assert.Nil(t, scanned)
}

func TestPeriodDescription(t *testing.T) {
	start := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2020, time.January, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "Hosting (2020-01-01 - 2020-01-31)", PeriodDescription("Hosting", start, end))
}
