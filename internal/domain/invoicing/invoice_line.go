package invoicing

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceLine bills one contract consumption. Origin tracks the contract line
// the quantity was derived from.
type InvoiceLine struct {
	ID             uuid.UUID
	InvoiceID      uuid.UUID
	ContractLineID *uuid.UUID
	ProductID      *uuid.UUID
	Description    string
	Quantity       decimal.Decimal
	UnitCode       string
	UnitPrice      decimal.Decimal
	RevenueAccount string
	TaxCodes       TaxCodes
	CreatedAt      time.Time
}

// Amount returns quantity times unit price
func (l InvoiceLine) Amount() decimal.Decimal {
	return l.Quantity.Mul(l.UnitPrice)
}

// TableName returns the database table name
func (InvoiceLine) TableName() string {
	return "invoice_lines"
}

// TaxCodes is a comma separated list of tax codes stored in a single column
type TaxCodes []string

// String joins the tax codes with commas
func (t TaxCodes) String() string {
	return strings.Join(t, ",")
}

// Value implements driver.Valuer
func (t TaxCodes) Value() (driver.Value, error) {
	return t.String(), nil
}

// Scan implements sql.Scanner
func (t *TaxCodes) Scan(value interface{}) error {
	if value == nil {
		*t = nil
		return nil
	}
	var raw string
	switch v := value.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan %T into TaxCodes", value)
	}
	if raw == "" {
		*t = nil
		return nil
	}
	*t = strings.Split(raw, ",")
	return nil
}

// PeriodDescription formats a billed line description as
// "name (start - end)", matching how the billed range is shown to the
// customer.
func PeriodDescription(name string, start, end time.Time) string {
	return fmt.Sprintf("%s (%s - %s)", name, start.Format("2006-01-02"), end.Format("2006-01-02"))
}
