package contract

import (
	"time"

	"github.com/erp/contracts/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Consumption represents one billable period instance of a contract line.
// StartDate/EndDate span the billed range, PeriodStartDate/PeriodEndDate span
// the full recurrence period it belongs to; the two differ when a contract
// starts or ends mid-period. Once linked to an invoice line a consumption is
// immutable.
type Consumption struct {
	shared.BaseEntity
	ContractLineID  uuid.UUID
	ContractID      uuid.UUID
	StartDate       time.Time
	EndDate         time.Time
	PeriodStartDate time.Time
	PeriodEndDate   time.Time
	InvoiceDate     time.Time
	InvoiceLineID   *uuid.UUID
}

// IsInvoiced returns true once the consumption is linked to an invoice line
func (c *Consumption) IsInvoiced() bool {
	return c.InvoiceLineID != nil
}

// LinkInvoiceLine links the consumption to the invoice line billed for it.
// A consumption can be invoiced at most once.
func (c *Consumption) LinkInvoiceLine(invoiceLineID uuid.UUID) error {
	if c.InvoiceLineID != nil {
		return shared.NewDomainError("ALREADY_INVOICED", "Consumption is already linked to an invoice line")
	}
	if invoiceLineID == uuid.Nil {
		return shared.NewDomainError("INVALID_INVOICE_LINE", "Invoice line ID cannot be empty")
	}
	c.InvoiceLineID = &invoiceLineID
	c.UpdatedAt = time.Now()
	return nil
}

// QuantityRatio returns the billed fraction of the full period: the span
// between start and end dates divided by the span of the full period. A full
// period yields 1; a one-day period (daily recurrence) also yields 1.
func (c *Consumption) QuantityRatio() decimal.Decimal {
	num := decimal.NewFromInt(daysBetween(c.StartDate, c.EndDate))
	den := decimal.NewFromInt(daysBetween(c.PeriodStartDate, c.PeriodEndDate))
	if den.IsZero() {
		return decimal.NewFromInt(1)
	}
	return num.Div(den)
}

// daysBetween returns the number of whole days between two UTC dates
func daysBetween(from, to time.Time) int64 {
	return int64(DateOf(to).Sub(DateOf(from)).Hours() / 24)
}

// TableName returns the database table name
func (Consumption) TableName() string {
	return "contract_consumptions"
}
