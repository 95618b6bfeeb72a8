package catalog

import (
	"time"

	"github.com/erp/contracts/internal/domain/shared"
	"github.com/google/uuid"
)

// AccountDefaults holds per-tenant accounting defaults. Products without an
// explicit revenue account fall back to the tenant default.
type AccountDefaults struct {
	TenantID              uuid.UUID
	DefaultRevenueAccount string
	UpdatedAt             time.Time
}

// NewAccountDefaults creates the accounting defaults for a tenant
func NewAccountDefaults(tenantID uuid.UUID, defaultRevenueAccount string) (*AccountDefaults, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	return &AccountDefaults{
		TenantID:              tenantID,
		DefaultRevenueAccount: defaultRevenueAccount,
		UpdatedAt:             time.Now(),
	}, nil
}

// RevenueAccountFor resolves the revenue account for a product. The product's
// own account wins over the tenant default. An empty result means revenue
// cannot be booked and invoicing must fail for that product.
func (d *AccountDefaults) RevenueAccountFor(p *Product) string {
	if p != nil && p.RevenueAccount != nil && *p.RevenueAccount != "" {
		return *p.RevenueAccount
	}
	if d == nil {
		return ""
	}
	return d.DefaultRevenueAccount
}
