package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erp/contracts/internal/domain/catalog"
	"github.com/erp/contracts/internal/domain/shared/valueobject"
)

// ProductModel is the persistence model for the Product domain entity.
// The unit value object is flattened into unit_code, unit_name and
// unit_rounding columns.
type ProductModel struct {
	TenantAggregateModel
	Name           string            `gorm:"type:varchar(200);not null"`
	Code           string            `gorm:"type:varchar(50);not null;uniqueIndex:idx_product_tenant_code,priority:2"`
	ListPrice      decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	UnitCode       string            `gorm:"type:varchar(20);not null"`
	UnitName       string            `gorm:"type:varchar(50);not null"`
	UnitRounding   decimal.Decimal   `gorm:"type:decimal(18,6);not null"`
	RevenueAccount *string           `gorm:"type:varchar(50)"`
	Active         bool              `gorm:"not null;default:true"`
	CustomerTaxes  []ProductTaxModel `gorm:"foreignKey:ProductID"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	unit, err := valueobject.NewUnit(m.UnitCode, m.UnitName, m.UnitRounding)
	if err != nil {
		unit = valueobject.Unit{}
	}

	p := &catalog.Product{
		Name:           m.Name,
		Code:           m.Code,
		ListPrice:      m.ListPrice,
		Unit:           unit,
		RevenueAccount: m.RevenueAccount,
		Active:         m.Active,
		CustomerTaxes:  make([]catalog.ProductTax, 0, len(m.CustomerTaxes)),
	}
	m.PopulateTenantAggregateRoot(&p.TenantAggregateRoot)

	for _, tax := range m.CustomerTaxes {
		p.CustomerTaxes = append(p.CustomerTaxes, tax.ToDomain())
	}
	return p
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	m.Name = p.Name
	m.Code = p.Code
	m.ListPrice = p.ListPrice
	m.UnitCode = p.Unit.Code()
	m.UnitName = p.Unit.Name()
	m.UnitRounding = p.Unit.Rounding()
	m.RevenueAccount = p.RevenueAccount
	m.Active = p.Active

	m.CustomerTaxes = make([]ProductTaxModel, 0, len(p.CustomerTaxes))
	for _, tax := range p.CustomerTaxes {
		m.CustomerTaxes = append(m.CustomerTaxes, ProductTaxModelFromDomain(tax))
	}
}

// ProductModelFromDomain creates a new persistence model from a domain Product entity.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}

// ProductTaxModel is the persistence model for a product's customer tax code.
type ProductTaxModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	TaxCode   string    `gorm:"type:varchar(50);not null"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductTaxModel) TableName() string {
	return "product_taxes"
}

// ToDomain converts the persistence model to a domain ProductTax.
func (m ProductTaxModel) ToDomain() catalog.ProductTax {
	return catalog.ProductTax{
		ID:        m.ID,
		ProductID: m.ProductID,
		TaxCode:   m.TaxCode,
		CreatedAt: m.CreatedAt,
	}
}

// ProductTaxModelFromDomain creates a persistence model from a domain ProductTax.
func ProductTaxModelFromDomain(t catalog.ProductTax) ProductTaxModel {
	return ProductTaxModel{
		ID:        t.ID,
		ProductID: t.ProductID,
		TaxCode:   t.TaxCode,
		CreatedAt: t.CreatedAt,
	}
}

// AccountDefaultsModel is the persistence model for per-tenant accounting defaults.
type AccountDefaultsModel struct {
	TenantID              uuid.UUID `gorm:"type:uuid;primary_key"`
	DefaultRevenueAccount string    `gorm:"type:varchar(50);not null;default:''"`
	UpdatedAt             time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (AccountDefaultsModel) TableName() string {
	return "account_defaults"
}

// ToDomain converts the persistence model to domain AccountDefaults.
func (m *AccountDefaultsModel) ToDomain() *catalog.AccountDefaults {
	return &catalog.AccountDefaults{
		TenantID:              m.TenantID,
		DefaultRevenueAccount: m.DefaultRevenueAccount,
		UpdatedAt:             m.UpdatedAt,
	}
}

// AccountDefaultsModelFromDomain creates a persistence model from domain AccountDefaults.
func AccountDefaultsModelFromDomain(d *catalog.AccountDefaults) *AccountDefaultsModel {
	return &AccountDefaultsModel{
		TenantID:              d.TenantID,
		DefaultRevenueAccount: d.DefaultRevenueAccount,
		UpdatedAt:             d.UpdatedAt,
	}
}
