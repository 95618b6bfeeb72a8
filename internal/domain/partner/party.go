package partner

import (
	"fmt"
	"time"

	"github.com/erp/contracts/internal/domain/shared"
	"github.com/google/uuid"
)

// Address is the postal address invoices are sent to
type Address struct {
	Street     string `gorm:"column:street"`
	City       string `gorm:"column:city"`
	PostalCode string `gorm:"column:postal_code"`
	Country    string `gorm:"column:country"`
}

// IsZero returns true when no address field is set
func (a Address) IsZero() bool {
	return a == Address{}
}

// String formats the address on a single line
func (a Address) String() string {
	return fmt.Sprintf("%s, %s %s, %s", a.Street, a.PostalCode, a.City, a.Country)
}

// TaxSubstitution replaces one tax code by another for a party. A nil target
// removes the source tax entirely (e.g. an exempt party).
type TaxSubstitution struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	PartyID       uuid.UUID `gorm:"type:uuid;not null;index"`
	SourceTaxCode string    `gorm:"not null"`
	TargetTaxCode *string
	CreatedAt     time.Time
}

// TableName returns the database table name
func (TaxSubstitution) TableName() string {
	return "party_tax_substitutions"
}

// Party represents a customer that contracts are billed to
type Party struct {
	shared.TenantAggregateRoot
	Name              string `gorm:"not null"`
	Code              string `gorm:"not null;index"`
	Email             string
	PaymentTermDays   int    `gorm:"not null;default:0"`
	ReceivableAccount string `gorm:"not null"`
	InvoiceAddress    Address `gorm:"embedded;embeddedPrefix:invoice_"`
	TaxRule           []TaxSubstitution `gorm:"foreignKey:PartyID"`
	Active            bool `gorm:"not null;default:true"`
}

// NewParty creates a new active party
func NewParty(tenantID uuid.UUID, name, code, receivableAccount string, paymentTermDays int) (*Party, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Party name cannot be empty")
	}
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Party code cannot be empty")
	}
	if receivableAccount == "" {
		return nil, shared.NewDomainError("MISSING_RECEIVABLE_ACCOUNT", "Party requires a receivable account")
	}
	if paymentTermDays < 0 {
		return nil, shared.NewDomainError("INVALID_PAYMENT_TERM", "Payment term cannot be negative")
	}

	p := &Party{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Code:                code,
		ReceivableAccount:   receivableAccount,
		PaymentTermDays:     paymentTermDays,
		Active:              true,
	}

	p.AddDomainEvent(NewPartyCreatedEvent(p))

	return p, nil
}

// Update updates the party master data
func (p *Party) Update(name, email, receivableAccount string, paymentTermDays int) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Party name cannot be empty")
	}
	if receivableAccount == "" {
		return shared.NewDomainError("MISSING_RECEIVABLE_ACCOUNT", "Party requires a receivable account")
	}
	if paymentTermDays < 0 {
		return shared.NewDomainError("INVALID_PAYMENT_TERM", "Payment term cannot be negative")
	}

	p.Name = name
	p.Email = email
	p.ReceivableAccount = receivableAccount
	p.PaymentTermDays = paymentTermDays
	p.UpdatedAt = time.Now()

	return nil
}

// SetInvoiceAddress sets the address invoices are sent to
func (p *Party) SetInvoiceAddress(addr Address) {
	p.InvoiceAddress = addr
	p.UpdatedAt = time.Now()
}

// AddTaxSubstitution registers a tax substitution for the party
func (p *Party) AddTaxSubstitution(sourceTaxCode string, targetTaxCode *string) error {
	if sourceTaxCode == "" {
		return shared.NewDomainError("INVALID_TAX_CODE", "Source tax code cannot be empty")
	}
	for _, sub := range p.TaxRule {
		if sub.SourceTaxCode == sourceTaxCode {
			return shared.NewDomainError("DUPLICATE_TAX_CODE", "A substitution for this tax code already exists")
		}
	}
	p.TaxRule = append(p.TaxRule, TaxSubstitution{
		ID:            uuid.New(),
		PartyID:       p.ID,
		SourceTaxCode: sourceTaxCode,
		TargetTaxCode: targetTaxCode,
		CreatedAt:     time.Now(),
	})
	p.UpdatedAt = time.Now()
	return nil
}

// RemoveTaxSubstitution removes the substitution for a source tax code
func (p *Party) RemoveTaxSubstitution(sourceTaxCode string) error {
	for idx, sub := range p.TaxRule {
		if sub.SourceTaxCode == sourceTaxCode {
			p.TaxRule = append(p.TaxRule[:idx], p.TaxRule[idx+1:]...)
			p.UpdatedAt = time.Now()
			return nil
		}
	}
	return shared.NewDomainError("TAX_CODE_NOT_FOUND", "No substitution exists for this tax code")
}

// ApplyTaxRule maps a product's tax codes through the party's substitutions.
// Codes without a substitution pass through unchanged; a substitution with a
// nil target drops the code.
func (p *Party) ApplyTaxRule(taxCodes []string) []string {
	if len(p.TaxRule) == 0 {
		return taxCodes
	}
	result := make([]string, 0, len(taxCodes))
	for _, code := range taxCodes {
		substituted := false
		for _, sub := range p.TaxRule {
			if sub.SourceTaxCode == code {
				if sub.TargetTaxCode != nil {
					result = append(result, *sub.TargetTaxCode)
				}
				substituted = true
				break
			}
		}
		if !substituted {
			result = append(result, code)
		}
	}
	return result
}

// Activate marks the party as active
func (p *Party) Activate() {
	p.Active = true
	p.UpdatedAt = time.Now()
}

// Deactivate marks the party as inactive
func (p *Party) Deactivate() {
	p.Active = false
	p.UpdatedAt = time.Now()
}

// TableName returns the database table name
func (Party) TableName() string {
	return "parties"
}
