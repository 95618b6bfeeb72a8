package catalog

import (
	"time"

	"github.com/erp/contracts/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Product DTOs
// =============================================================================

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	Code           string           `json:"code" binding:"required,min=1,max=50"`
	Name           string           `json:"name" binding:"required,min=1,max=200"`
	ListPrice      decimal.Decimal  `json:"list_price"`
	UnitCode       string           `json:"unit_code" binding:"required,min=1,max=20"`
	UnitName       string           `json:"unit_name" binding:"required,min=1,max=50"`
	UnitRounding   *decimal.Decimal `json:"unit_rounding"`
	RevenueAccount *string          `json:"revenue_account" binding:"omitempty,max=20"`
	TaxCodes       []string         `json:"tax_codes" binding:"dive,min=1,max=20"`
}

// UpdateProductRequest represents a request to update a product
type UpdateProductRequest struct {
	Name           *string          `json:"name" binding:"omitempty,min=1,max=200"`
	ListPrice      *decimal.Decimal `json:"list_price"`
	UnitCode       *string          `json:"unit_code" binding:"omitempty,min=1,max=20"`
	UnitName       *string          `json:"unit_name" binding:"omitempty,min=1,max=50"`
	UnitRounding   *decimal.Decimal `json:"unit_rounding"`
	RevenueAccount *string          `json:"revenue_account" binding:"omitempty,max=20"`
	Active         *bool            `json:"active"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID             uuid.UUID       `json:"id"`
	TenantID       uuid.UUID       `json:"tenant_id"`
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	ListPrice      decimal.Decimal `json:"list_price"`
	UnitCode       string          `json:"unit_code"`
	UnitName       string          `json:"unit_name"`
	UnitRounding   decimal.Decimal `json:"unit_rounding"`
	RevenueAccount *string         `json:"revenue_account"`
	TaxCodes       []string        `json:"tax_codes"`
	Active         bool            `json:"active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ProductListFilter represents filter options for product lists
type ProductListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// AccountDefaultsRequest sets the tenant accounting defaults
type AccountDefaultsRequest struct {
	DefaultRevenueAccount string `json:"default_revenue_account" binding:"required,max=20"`
}

// AccountDefaultsResponse represents the tenant accounting defaults
type AccountDefaultsResponse struct {
	TenantID              uuid.UUID `json:"tenant_id"`
	DefaultRevenueAccount string    `json:"default_revenue_account"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// ToProductResponse converts a domain product to its response DTO
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:             p.ID,
		TenantID:       p.TenantID,
		Code:           p.Code,
		Name:           p.Name,
		ListPrice:      p.ListPrice,
		UnitCode:       p.Unit.Code(),
		UnitName:       p.Unit.Name(),
		UnitRounding:   p.Unit.Rounding(),
		RevenueAccount: p.RevenueAccount,
		TaxCodes:       p.TaxCodes(),
		Active:         p.Active,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

// ToAccountDefaultsResponse converts domain defaults to the response DTO
func ToAccountDefaultsResponse(d *catalog.AccountDefaults) AccountDefaultsResponse {
	return AccountDefaultsResponse{
		TenantID:              d.TenantID,
		DefaultRevenueAccount: d.DefaultRevenueAccount,
		UpdatedAt:             d.UpdatedAt,
	}
}
