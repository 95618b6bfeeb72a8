package partner

import (
	"context"

	"github.com/erp/contracts/internal/domain/shared"
	"github.com/google/uuid"
)

// PartyRepository defines the interface for party persistence
type PartyRepository interface {
	// FindByID finds a party by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Party, error)

	// FindByIDForTenant finds a party by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Party, error)

	// FindByIDs finds parties by their IDs, keyed by ID
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Party, error)

	// FindByCode finds a party by its code for a tenant
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*Party, error)

	// FindAllForTenant finds all parties for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Party, error)

	// Save creates or updates a party and its tax substitutions
	Save(ctx context.Context, p *Party) error

	// Delete deletes a party
	Delete(ctx context.Context, id uuid.UUID) error

	// CountForTenant counts parties for a tenant
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
}
