package invoicing

import (
	"time"

	"github.com/erp/contracts/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeInvoice = "Invoice"

// Event type constants
const (
	EventTypeInvoiceCreated = "InvoiceCreated"
	EventTypeInvoicePosted  = "InvoicePosted"
)

// InvoiceCreatedEvent is raised when a draft invoice is assembled
type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	InvoiceID   uuid.UUID `json:"invoice_id"`
	PartyID     uuid.UUID `json:"party_id"`
	InvoiceDate time.Time `json:"invoice_date"`
	Currency    string    `json:"currency"`
}

// NewInvoiceCreatedEvent creates a new InvoiceCreatedEvent
func NewInvoiceCreatedEvent(i *Invoice) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceCreated, AggregateTypeInvoice, i.ID, i.TenantID),
		InvoiceID:       i.ID,
		PartyID:         i.PartyID,
		InvoiceDate:     i.InvoiceDate,
		Currency:        string(i.Currency),
	}
}

// InvoicePostedEvent is raised when an invoice is numbered and posted
type InvoicePostedEvent struct {
	shared.BaseDomainEvent
	InvoiceID uuid.UUID `json:"invoice_id"`
	Number    string    `json:"number"`
	LineCount int       `json:"line_count"`
}

// NewInvoicePostedEvent creates a new InvoicePostedEvent
func NewInvoicePostedEvent(i *Invoice) *InvoicePostedEvent {
	return &InvoicePostedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoicePosted, AggregateTypeInvoice, i.ID, i.TenantID),
		InvoiceID:       i.ID,
		Number:          i.Number,
		LineCount:       len(i.Lines),
	}
}
