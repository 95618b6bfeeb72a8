package invoicing

import (
	"context"

	"github.com/erp/contracts/internal/domain/shared"
	"github.com/google/uuid"
)

// InvoiceRepository defines the interface for invoice persistence
type InvoiceRepository interface {
	// FindByID finds an invoice by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// FindByIDForTenant finds an invoice by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error)

	// FindAllForTenant finds all invoices for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Invoice, error)

	// FindByParty finds invoices of a party for a tenant
	FindByParty(ctx context.Context, tenantID, partyID uuid.UUID, filter shared.Filter) ([]Invoice, error)

	// Save creates or updates an invoice and its lines
	Save(ctx context.Context, i *Invoice) error

	// CountForTenant counts invoices for a tenant
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// GenerateNumber issues the next invoice number for a tenant
	GenerateNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
}
