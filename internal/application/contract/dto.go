package contract

import (
	"time"

	"github.com/erp/contracts/internal/domain/contract"
	"github.com/erp/contracts/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DateLayout is the wire format for date-only fields
const DateLayout = "2006-01-02"

// ParseDate parses a date-only field in the wire format
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, shared.NewDomainError("INVALID_DATE", "Date must use the YYYY-MM-DD format")
	}
	return d, nil
}

// ParseOptionalDate parses an optional date-only field
func ParseOptionalDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	d, err := ParseDate(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// FormatDate formats a date-only field for responses
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatOptionalDate formats an optional date-only field
func FormatOptionalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(DateLayout)
	return &s
}

// =============================================================================
// Contract DTOs
// =============================================================================

// ContractLineRequest represents one service line on a contract request
type ContractLineRequest struct {
	ProductID   *uuid.UUID      `json:"product_id"`
	Name        string          `json:"name" binding:"max=200"`
	Description string          `json:"description" binding:"required,min=1,max=500"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// CreateContractRequest represents a request to create a new contract
type CreateContractRequest struct {
	PartyID          uuid.UUID             `json:"party_id" binding:"required"`
	Currency         string                `json:"currency" binding:"required,len=3"`
	Frequency        string                `json:"frequency" binding:"required,oneof=daily weekly monthly yearly"`
	Interval         int                   `json:"interval" binding:"required,min=1"`
	StartDate        string                `json:"start_date" binding:"required,datetime=2006-01-02"`
	StartPeriodDate  string                `json:"start_period_date" binding:"required,datetime=2006-01-02"`
	EndDate          *string               `json:"end_date" binding:"omitempty,datetime=2006-01-02"`
	FirstInvoiceDate *string               `json:"first_invoice_date" binding:"omitempty,datetime=2006-01-02"`
	Lines            []ContractLineRequest `json:"lines" binding:"dive"`
}

// UpdateContractRequest represents a request to update a draft contract
type UpdateContractRequest struct {
	Frequency        *string `json:"frequency" binding:"omitempty,oneof=daily weekly monthly yearly"`
	Interval         *int    `json:"interval" binding:"omitempty,min=1"`
	StartDate        *string `json:"start_date" binding:"omitempty,datetime=2006-01-02"`
	StartPeriodDate  *string `json:"start_period_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate          *string `json:"end_date" binding:"omitempty,datetime=2006-01-02"`
	FirstInvoiceDate *string `json:"first_invoice_date" binding:"omitempty,datetime=2006-01-02"`
}

// ContractLineResponse represents a contract line in API responses
type ContractLineResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   *uuid.UUID      `json:"product_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// ContractResponse represents a contract in API responses
type ContractResponse struct {
	ID               uuid.UUID              `json:"id"`
	TenantID         uuid.UUID              `json:"tenant_id"`
	Reference        string                 `json:"reference"`
	PartyID          uuid.UUID              `json:"party_id"`
	PartyName        string                 `json:"party_name"`
	Currency         string                 `json:"currency"`
	Frequency        string                 `json:"frequency"`
	Interval         int                    `json:"interval"`
	StartDate        string                 `json:"start_date"`
	StartPeriodDate  string                 `json:"start_period_date"`
	EndDate          *string                `json:"end_date"`
	FirstInvoiceDate *string                `json:"first_invoice_date"`
	Status           string                 `json:"status"`
	Lines            []ContractLineResponse `json:"lines"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
	Version          int                    `json:"version"`
}

// ContractListResponse represents a list item for contracts
type ContractListResponse struct {
	ID        uuid.UUID `json:"id"`
	Reference string    `json:"reference"`
	PartyID   uuid.UUID `json:"party_id"`
	PartyName string    `json:"party_name"`
	Currency  string    `json:"currency"`
	StartDate string    `json:"start_date"`
	Status    string    `json:"status"`
	LineCount int       `json:"line_count"`
	CreatedAt time.Time `json:"created_at"`
}

// ContractListFilter represents filter options for contract lists
type ContractListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=DRAFT VALIDATED CANCELLED"`
	PartyID  string `form:"party_id" binding:"omitempty,uuid"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToContractResponse converts a domain contract to its response DTO
func ToContractResponse(c *contract.Contract) ContractResponse {
	lines := make([]ContractLineResponse, 0, len(c.Lines))
	for _, line := range c.Lines {
		lines = append(lines, ContractLineResponse{
			ID:          line.ID,
			ProductID:   line.ProductID,
			Name:        line.Name,
			Description: line.Description,
			UnitPrice:   line.UnitPrice,
		})
	}

	return ContractResponse{
		ID:               c.ID,
		TenantID:         c.TenantID,
		Reference:        c.Reference,
		PartyID:          c.PartyID,
		PartyName:        c.PartyName,
		Currency:         string(c.Currency),
		Frequency:        string(c.Recurrence.Freq),
		Interval:         c.Recurrence.Interval,
		StartDate:        FormatDate(c.StartDate),
		StartPeriodDate:  FormatDate(c.StartPeriodDate),
		EndDate:          FormatOptionalDate(c.EndDate),
		FirstInvoiceDate: FormatOptionalDate(c.FirstInvoiceDate),
		Status:           string(c.Status),
		Lines:            lines,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
		Version:          c.Version,
	}
}

// ToContractListResponse converts a domain contract to its list DTO
func ToContractListResponse(c *contract.Contract) ContractListResponse {
	return ContractListResponse{
		ID:        c.ID,
		Reference: c.Reference,
		PartyID:   c.PartyID,
		PartyName: c.PartyName,
		Currency:  string(c.Currency),
		StartDate: FormatDate(c.StartDate),
		Status:    string(c.Status),
		LineCount: c.LineCount(),
		CreatedAt: c.CreatedAt,
	}
}

// =============================================================================
// Consumption DTOs
// =============================================================================

// ConsumeRequest asks for consumption generation up to a target date
type ConsumeRequest struct {
	Date string `json:"date" binding:"omitempty,datetime=2006-01-02"`
}

// ConsumeResult reports the outcome of a consumption run
type ConsumeResult struct {
	Date                string `json:"date"`
	ContractsProcessed  int    `json:"contracts_processed"`
	ConsumptionsCreated int    `json:"consumptions_created"`
}

// ConsumptionResponse represents a consumption in API responses
type ConsumptionResponse struct {
	ID              uuid.UUID  `json:"id"`
	ContractID      uuid.UUID  `json:"contract_id"`
	ContractLineID  uuid.UUID  `json:"contract_line_id"`
	StartDate       string     `json:"start_date"`
	EndDate         string     `json:"end_date"`
	PeriodStartDate string     `json:"period_start_date"`
	PeriodEndDate   string     `json:"period_end_date"`
	InvoiceDate     string     `json:"invoice_date"`
	InvoiceLineID   *uuid.UUID `json:"invoice_line_id"`
}

// ToConsumptionResponse converts a domain consumption to its response DTO
func ToConsumptionResponse(c *contract.Consumption) ConsumptionResponse {
	return ConsumptionResponse{
		ID:              c.ID,
		ContractID:      c.ContractID,
		ContractLineID:  c.ContractLineID,
		StartDate:       FormatDate(c.StartDate),
		EndDate:         FormatDate(c.EndDate),
		PeriodStartDate: FormatDate(c.PeriodStartDate),
		PeriodEndDate:   FormatDate(c.PeriodEndDate),
		InvoiceDate:     FormatDate(c.InvoiceDate),
		InvoiceLineID:   c.InvoiceLineID,
	}
}
