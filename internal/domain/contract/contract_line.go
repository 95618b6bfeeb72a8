package contract

import (
	"time"

	"github.com/erp/contracts/internal/domain/shared"
	"github.com/erp/contracts/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ContractLine represents a billable service line of a contract
type ContractLine struct {
	ID          uuid.UUID
	ContractID  uuid.UUID
	ProductID   *uuid.UUID // optional service product
	Name        string
	Description string
	UnitPrice   decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewContractLine creates a new contract line
func NewContractLine(contractID uuid.UUID, productID *uuid.UUID, name, description string, unitPrice valueobject.Money) (*ContractLine, error) {
	if description == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Contract line description cannot be empty")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if productID != nil && *productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}

	now := time.Now()
	return &ContractLine{
		ID:          uuid.New(),
		ContractID:  contractID,
		ProductID:   productID,
		Name:        name,
		Description: description,
		UnitPrice:   unitPrice.Amount(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Update updates the line description and unit price
func (l *ContractLine) Update(description string, unitPrice valueobject.Money) error {
	if description == "" {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Contract line description cannot be empty")
	}
	if unitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	l.Description = description
	l.UnitPrice = unitPrice.Amount()
	l.UpdatedAt = time.Now()

	return nil
}

// UnitPriceMoney returns the unit price as Money in the given currency
func (l *ContractLine) UnitPriceMoney(currency valueobject.Currency) valueobject.Money {
	return valueobject.MustNewMoney(l.UnitPrice, currency)
}

// NewConsumption creates the consumption record for one billed period of the line
func (l *ContractLine) NewConsumption(startDate, endDate, invoiceDate, periodStart, periodEnd time.Time) *Consumption {
	return &Consumption{
		BaseEntity:      shared.NewBaseEntity(),
		ContractLineID:  l.ID,
		ContractID:      l.ContractID,
		StartDate:       DateOf(startDate),
		EndDate:         DateOf(endDate),
		PeriodStartDate: DateOf(periodStart),
		PeriodEndDate:   DateOf(periodEnd),
		InvoiceDate:     DateOf(invoiceDate),
	}
}

// TableName returns the database table name
func (ContractLine) TableName() string {
	return "contract_lines"
}
