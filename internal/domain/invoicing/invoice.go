package invoicing

import (
	"fmt"
	"time"

	"github.com/erp/contracts/internal/domain/shared"
	"github.com/erp/contracts/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceType distinguishes customer from supplier invoices
type InvoiceType string

const (
	InvoiceTypeOut InvoiceType = "OUT" // customer invoice
	InvoiceTypeIn  InvoiceType = "IN"  // supplier invoice
)

// IsValid checks if the type is a valid InvoiceType
func (t InvoiceType) IsValid() bool {
	return t == InvoiceTypeOut || t == InvoiceTypeIn
}

// String returns the string representation of InvoiceType
func (t InvoiceType) String() string {
	return string(t)
}

// InvoiceStatus represents the lifecycle state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft  InvoiceStatus = "DRAFT"
	InvoiceStatusPosted InvoiceStatus = "POSTED"
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	return s == InvoiceStatusDraft || s == InvoiceStatusPosted
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// GroupKey identifies the invoice a billable item belongs to. Items sharing
// the same key are billed together on a single invoice.
type GroupKey struct {
	TenantID    uuid.UUID
	PartyID     uuid.UUID
	Currency    valueobject.Currency
	Type        InvoiceType
	InvoiceDate time.Time
}

// Invoice is a draft customer invoice assembled from contract consumptions
type Invoice struct {
	shared.TenantAggregateRoot
	Number            string
	Type              InvoiceType
	PartyID           uuid.UUID
	PartyName         string
	InvoiceAddress    string
	Currency          valueobject.Currency
	InvoiceDate       time.Time
	Journal           string
	ReceivableAccount string
	PaymentTermDays   int
	Lines             []InvoiceLine
	Status            InvoiceStatus
}

// NewInvoice creates a new draft invoice for a group key
func NewInvoice(key GroupKey, partyName, invoiceAddress, journal, receivableAccount string, paymentTermDays int) (*Invoice, error) {
	if key.PartyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PARTY", "Party ID cannot be empty")
	}
	if partyName == "" {
		return nil, shared.NewDomainError("INVALID_PARTY_NAME", "Party name cannot be empty")
	}
	if !key.Currency.IsValid() {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Currency is not supported")
	}
	if !key.Type.IsValid() {
		return nil, shared.NewDomainError("INVALID_TYPE", "Invoice type is not supported")
	}
	if receivableAccount == "" {
		return nil, shared.NewDomainError("MISSING_RECEIVABLE_ACCOUNT", "Invoice requires a receivable account")
	}

	inv := &Invoice{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(key.TenantID),
		Type:                key.Type,
		PartyID:             key.PartyID,
		PartyName:           partyName,
		InvoiceAddress:      invoiceAddress,
		Currency:            key.Currency,
		InvoiceDate:         key.InvoiceDate,
		Journal:             journal,
		ReceivableAccount:   receivableAccount,
		PaymentTermDays:     paymentTermDays,
		Lines:               make([]InvoiceLine, 0),
		Status:              InvoiceStatusDraft,
	}

	inv.AddDomainEvent(NewInvoiceCreatedEvent(inv))

	return inv, nil
}

// Key returns the group key of the invoice
func (i *Invoice) Key() GroupKey {
	return GroupKey{
		TenantID:    i.TenantID,
		PartyID:     i.PartyID,
		Currency:    i.Currency,
		Type:        i.Type,
		InvoiceDate: i.InvoiceDate,
	}
}

// AddLine appends a billable line to the invoice. Draft only.
func (i *Invoice) AddLine(line InvoiceLine) (*InvoiceLine, error) {
	if i.Status != InvoiceStatusDraft {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add lines to a posted invoice")
	}
	if line.Description == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Invoice line description cannot be empty")
	}
	if line.RevenueAccount == "" {
		return nil, shared.NewDomainError("MISSING_REVENUE_ACCOUNT", "Invoice line requires a revenue account")
	}

	line.ID = uuid.New()
	line.InvoiceID = i.ID
	line.CreatedAt = time.Now()

	i.Lines = append(i.Lines, line)
	i.UpdatedAt = time.Now()

	return &i.Lines[len(i.Lines)-1], nil
}

// Post numbers the invoice and freezes it
func (i *Invoice) Post(number string) error {
	if i.Status != InvoiceStatusDraft {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot post invoice in %s status", i.Status))
	}
	if number == "" {
		return shared.NewDomainError("INVALID_NUMBER", "Invoice number cannot be empty")
	}
	if len(i.Lines) == 0 {
		return shared.NewDomainError("EMPTY_INVOICE", "Cannot post an invoice without lines")
	}

	i.Number = number
	i.Status = InvoiceStatusPosted
	i.UpdatedAt = time.Now()

	i.AddDomainEvent(NewInvoicePostedEvent(i))

	return nil
}

// UntaxedAmount returns the sum of the line amounts before taxes
func (i *Invoice) UntaxedAmount() decimal.Decimal {
	total := decimal.Zero
	for _, line := range i.Lines {
		total = total.Add(line.Amount())
	}
	return total
}

// UntaxedAmountMoney returns the untaxed amount as Money
func (i *Invoice) UntaxedAmountMoney() valueobject.Money {
	return valueobject.MustNewMoney(i.UntaxedAmount(), i.Currency)
}

// LineCount returns the number of lines on the invoice
func (i *Invoice) LineCount() int {
	return len(i.Lines)
}

// IsDraft returns true if the invoice is in draft status
func (i *Invoice) IsDraft() bool {
	return i.Status == InvoiceStatusDraft
}

// TableName returns the database table name
func (Invoice) TableName() string {
	return "invoices"
}
