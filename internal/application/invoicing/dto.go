package invoicing

import (
	"time"

	"github.com/erp/contracts/internal/domain/invoicing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DateLayout is the wire format for date-only fields
const DateLayout = "2006-01-02"

// =============================================================================
// Invoice DTOs
// =============================================================================

// InvoiceConsumptionsRequest selects the consumptions to bill. Without
// explicit IDs every uninvoiced consumption due up to the given date (default
// today) is billed.
type InvoiceConsumptionsRequest struct {
	ConsumptionIDs []uuid.UUID `json:"consumption_ids"`
	Date           string      `json:"date" binding:"omitempty,datetime=2006-01-02"`
}

// InvoiceConsumptionsResult reports the outcome of an invoicing run
type InvoiceConsumptionsResult struct {
	InvoicesCreated      int         `json:"invoices_created"`
	ConsumptionsInvoiced int         `json:"consumptions_invoiced"`
	InvoiceIDs           []uuid.UUID `json:"invoice_ids"`
}

// InvoiceLineResponse represents an invoice line in API responses
type InvoiceLineResponse struct {
	ID             uuid.UUID       `json:"id"`
	ContractLineID *uuid.UUID      `json:"contract_line_id"`
	ProductID      *uuid.UUID      `json:"product_id"`
	Description    string          `json:"description"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitCode       string          `json:"unit_code"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Amount         decimal.Decimal `json:"amount"`
	RevenueAccount string          `json:"revenue_account"`
	TaxCodes       []string        `json:"tax_codes"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID                uuid.UUID             `json:"id"`
	TenantID          uuid.UUID             `json:"tenant_id"`
	Number            string                `json:"number"`
	Type              string                `json:"type"`
	PartyID           uuid.UUID             `json:"party_id"`
	PartyName         string                `json:"party_name"`
	InvoiceAddress    string                `json:"invoice_address"`
	Currency          string                `json:"currency"`
	InvoiceDate       string                `json:"invoice_date"`
	Journal           string                `json:"journal"`
	ReceivableAccount string                `json:"receivable_account"`
	PaymentTermDays   int                   `json:"payment_term_days"`
	Status            string                `json:"status"`
	UntaxedAmount     decimal.Decimal       `json:"untaxed_amount"`
	Lines             []InvoiceLineResponse `json:"lines"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
}

// InvoiceListResponse represents a list item for invoices
type InvoiceListResponse struct {
	ID            uuid.UUID       `json:"id"`
	Number        string          `json:"number"`
	PartyID       uuid.UUID       `json:"party_id"`
	PartyName     string          `json:"party_name"`
	Currency      string          `json:"currency"`
	InvoiceDate   string          `json:"invoice_date"`
	Status        string          `json:"status"`
	UntaxedAmount decimal.Decimal `json:"untaxed_amount"`
	LineCount     int             `json:"line_count"`
	CreatedAt     time.Time       `json:"created_at"`
}

// InvoiceListFilter represents filter options for invoice lists
type InvoiceListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=DRAFT POSTED"`
	PartyID  string `form:"party_id" binding:"omitempty,uuid"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToInvoiceResponse converts a domain invoice to its response DTO
func ToInvoiceResponse(i *invoicing.Invoice) InvoiceResponse {
	lines := make([]InvoiceLineResponse, 0, len(i.Lines))
	for _, line := range i.Lines {
		lines = append(lines, InvoiceLineResponse{
			ID:             line.ID,
			ContractLineID: line.ContractLineID,
			ProductID:      line.ProductID,
			Description:    line.Description,
			Quantity:       line.Quantity,
			UnitCode:       line.UnitCode,
			UnitPrice:      line.UnitPrice,
			Amount:         line.Amount(),
			RevenueAccount: line.RevenueAccount,
			TaxCodes:       line.TaxCodes,
		})
	}

	return InvoiceResponse{
		ID:                i.ID,
		TenantID:          i.TenantID,
		Number:            i.Number,
		Type:              string(i.Type),
		PartyID:           i.PartyID,
		PartyName:         i.PartyName,
		InvoiceAddress:    i.InvoiceAddress,
		Currency:          string(i.Currency),
		InvoiceDate:       i.InvoiceDate.Format(DateLayout),
		Journal:           i.Journal,
		ReceivableAccount: i.ReceivableAccount,
		PaymentTermDays:   i.PaymentTermDays,
		Status:            string(i.Status),
		UntaxedAmount:     i.UntaxedAmount(),
		Lines:             lines,
		CreatedAt:         i.CreatedAt,
		UpdatedAt:         i.UpdatedAt,
	}
}

// ToInvoiceListResponse converts a domain invoice to its list DTO
func ToInvoiceListResponse(i *invoicing.Invoice) InvoiceListResponse {
	return InvoiceListResponse{
		ID:            i.ID,
		Number:        i.Number,
		PartyID:       i.PartyID,
		PartyName:     i.PartyName,
		Currency:      string(i.Currency),
		InvoiceDate:   i.InvoiceDate.Format(DateLayout),
		Status:        string(i.Status),
		UntaxedAmount: i.UntaxedAmount(),
		LineCount:     i.LineCount(),
		CreatedAt:     i.CreatedAt,
	}
}
