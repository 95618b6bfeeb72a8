package partner

import (
	"time"

	"github.com/erp/contracts/internal/domain/partner"
	"github.com/google/uuid"
)

// =============================================================================
// Party DTOs
// =============================================================================

// AddressRequest represents a postal address in requests
type AddressRequest struct {
	Street     string `json:"street" binding:"max=200"`
	City       string `json:"city" binding:"max=100"`
	PostalCode string `json:"postal_code" binding:"max=20"`
	Country    string `json:"country" binding:"max=100"`
}

// CreatePartyRequest represents a request to create a new party
type CreatePartyRequest struct {
	Code              string          `json:"code" binding:"required,min=1,max=50"`
	Name              string          `json:"name" binding:"required,min=1,max=200"`
	Email             string          `json:"email" binding:"omitempty,email,max=200"`
	ReceivableAccount string          `json:"receivable_account" binding:"required,max=20"`
	PaymentTermDays   int             `json:"payment_term_days" binding:"min=0,max=365"`
	InvoiceAddress    *AddressRequest `json:"invoice_address"`
}

// UpdatePartyRequest represents a request to update a party
type UpdatePartyRequest struct {
	Name              *string         `json:"name" binding:"omitempty,min=1,max=200"`
	Email             *string         `json:"email" binding:"omitempty,email,max=200"`
	ReceivableAccount *string         `json:"receivable_account" binding:"omitempty,max=20"`
	PaymentTermDays   *int            `json:"payment_term_days" binding:"omitempty,min=0,max=365"`
	InvoiceAddress    *AddressRequest `json:"invoice_address"`
	Active            *bool           `json:"active"`
}

// TaxSubstitutionRequest adds a tax substitution to a party. A nil target
// drops the source tax.
type TaxSubstitutionRequest struct {
	SourceTaxCode string  `json:"source_tax_code" binding:"required,max=20"`
	TargetTaxCode *string `json:"target_tax_code" binding:"omitempty,max=20"`
}

// TaxSubstitutionResponse represents a tax substitution in API responses
type TaxSubstitutionResponse struct {
	SourceTaxCode string  `json:"source_tax_code"`
	TargetTaxCode *string `json:"target_tax_code"`
}

// PartyResponse represents a party in API responses
type PartyResponse struct {
	ID                uuid.UUID                 `json:"id"`
	TenantID          uuid.UUID                 `json:"tenant_id"`
	Code              string                    `json:"code"`
	Name              string                    `json:"name"`
	Email             string                    `json:"email"`
	ReceivableAccount string                    `json:"receivable_account"`
	PaymentTermDays   int                       `json:"payment_term_days"`
	InvoiceAddress    AddressRequest            `json:"invoice_address"`
	TaxRule           []TaxSubstitutionResponse `json:"tax_rule"`
	Active            bool                      `json:"active"`
	CreatedAt         time.Time                 `json:"created_at"`
	UpdatedAt         time.Time                 `json:"updated_at"`
}

// PartyListFilter represents filter options for party lists
type PartyListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToPartyResponse converts a domain party to its response DTO
func ToPartyResponse(p *partner.Party) PartyResponse {
	taxRule := make([]TaxSubstitutionResponse, 0, len(p.TaxRule))
	for _, sub := range p.TaxRule {
		taxRule = append(taxRule, TaxSubstitutionResponse{
			SourceTaxCode: sub.SourceTaxCode,
			TargetTaxCode: sub.TargetTaxCode,
		})
	}

	return PartyResponse{
		ID:                p.ID,
		TenantID:          p.TenantID,
		Code:              p.Code,
		Name:              p.Name,
		Email:             p.Email,
		ReceivableAccount: p.ReceivableAccount,
		PaymentTermDays:   p.PaymentTermDays,
		InvoiceAddress: AddressRequest{
			Street:     p.InvoiceAddress.Street,
			City:       p.InvoiceAddress.City,
			PostalCode: p.InvoiceAddress.PostalCode,
			Country:    p.InvoiceAddress.Country,
		},
		TaxRule:   taxRule,
		Active:    p.Active,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
