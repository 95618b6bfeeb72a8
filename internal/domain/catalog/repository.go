package catalog

import (
	"context"

	"github.com/erp/contracts/internal/domain/shared"
	"github.com/google/uuid"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByIDForTenant finds a product by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Product, error)

	// FindByIDs finds products by their IDs, keyed by ID
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Product, error)

	// FindByCode finds a product by its code for a tenant
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*Product, error)

	// FindAllForTenant finds all products for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Product, error)

	// Save creates or updates a product and its taxes
	Save(ctx context.Context, p *Product) error

	// Delete deletes a product
	Delete(ctx context.Context, id uuid.UUID) error

	// CountForTenant counts products for a tenant
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
}

// AccountDefaultsRepository persists per-tenant accounting defaults
type AccountDefaultsRepository interface {
	// FindForTenant returns the tenant defaults, or shared.ErrNotFound
	FindForTenant(ctx context.Context, tenantID uuid.UUID) (*AccountDefaults, error)

	// Save creates or updates the tenant defaults
	Save(ctx context.Context, defaults *AccountDefaults) error
}
