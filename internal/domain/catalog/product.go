package catalog

import (
	"time"

	"github.com/erp/contracts/internal/domain/shared"
	"github.com/erp/contracts/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductTax attaches a customer tax code to a product
type ProductTax struct {
	ID        uuid.UUID
	ProductID uuid.UUID
	TaxCode   string
	CreatedAt time.Time
}

// Product represents a billable service product. Its unit carries the
// rounding step applied to invoiced quantities.
type Product struct {
	shared.TenantAggregateRoot
	Name           string
	Code           string
	ListPrice      decimal.Decimal
	Unit           valueobject.Unit
	RevenueAccount *string
	CustomerTaxes  []ProductTax
	Active         bool
}

// NewProduct creates a new active product
func NewProduct(tenantID uuid.UUID, name, code string, listPrice decimal.Decimal, unit valueobject.Unit) (*Product, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Product code cannot be empty")
	}
	if listPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "List price cannot be negative")
	}
	if unit.IsZero() {
		return nil, shared.NewDomainError("INVALID_UNIT", "Product requires a unit")
	}

	p := &Product{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Code:                code,
		ListPrice:           listPrice,
		Unit:                unit,
		Active:              true,
	}

	p.AddDomainEvent(NewProductCreatedEvent(p))

	return p, nil
}

// Update updates the product master data
func (p *Product) Update(name string, listPrice decimal.Decimal, unit valueobject.Unit) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if listPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "List price cannot be negative")
	}
	if unit.IsZero() {
		return shared.NewDomainError("INVALID_UNIT", "Product requires a unit")
	}

	p.Name = name
	p.ListPrice = listPrice
	p.Unit = unit
	p.UpdatedAt = time.Now()

	return nil
}

// SetRevenueAccount sets the account revenue is booked on, overriding the
// tenant default
func (p *Product) SetRevenueAccount(account *string) {
	p.RevenueAccount = account
	p.UpdatedAt = time.Now()
}

// AddCustomerTax attaches a customer tax code to the product
func (p *Product) AddCustomerTax(taxCode string) error {
	if taxCode == "" {
		return shared.NewDomainError("INVALID_TAX_CODE", "Tax code cannot be empty")
	}
	for _, tax := range p.CustomerTaxes {
		if tax.TaxCode == taxCode {
			return shared.NewDomainError("DUPLICATE_TAX_CODE", "Tax code is already attached to the product")
		}
	}
	p.CustomerTaxes = append(p.CustomerTaxes, ProductTax{
		ID:        uuid.New(),
		ProductID: p.ID,
		TaxCode:   taxCode,
		CreatedAt: time.Now(),
	})
	p.UpdatedAt = time.Now()
	return nil
}

// RemoveCustomerTax detaches a customer tax code from the product
func (p *Product) RemoveCustomerTax(taxCode string) error {
	for idx, tax := range p.CustomerTaxes {
		if tax.TaxCode == taxCode {
			p.CustomerTaxes = append(p.CustomerTaxes[:idx], p.CustomerTaxes[idx+1:]...)
			p.UpdatedAt = time.Now()
			return nil
		}
	}
	return shared.NewDomainError("TAX_CODE_NOT_FOUND", "Tax code is not attached to the product")
}

// TaxCodes returns the customer tax codes of the product
func (p *Product) TaxCodes() []string {
	codes := make([]string, 0, len(p.CustomerTaxes))
	for _, tax := range p.CustomerTaxes {
		codes = append(codes, tax.TaxCode)
	}
	return codes
}

// RoundQuantity rounds a quantity to the product unit's rounding step
func (p *Product) RoundQuantity(quantity decimal.Decimal) decimal.Decimal {
	return p.Unit.Round(quantity)
}

// Activate marks the product as active
func (p *Product) Activate() {
	p.Active = true
	p.UpdatedAt = time.Now()
}

// Deactivate marks the product as inactive
func (p *Product) Deactivate() {
	p.Active = false
	p.UpdatedAt = time.Now()
}
