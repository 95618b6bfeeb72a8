package contract

import (
	"context"
	"time"

	"github.com/erp/contracts/internal/domain/shared"
	"github.com/google/uuid"
)

// ContractRepository defines the interface for contract persistence
type ContractRepository interface {
	// FindByID finds a contract by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Contract, error)

	// FindByIDForTenant finds a contract by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Contract, error)

	// FindByIDs finds contracts by their IDs, keyed by ID
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Contract, error)

	// FindByReference finds a contract by its reference for a tenant
	FindByReference(ctx context.Context, tenantID uuid.UUID, reference string) (*Contract, error)

	// FindAllForTenant finds all contracts for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Contract, error)

	// FindByStatus finds contracts by status for a tenant
	FindByStatus(ctx context.Context, tenantID uuid.UUID, status ContractStatus, filter shared.Filter) ([]Contract, error)

	// Save creates or updates a contract and its lines
	Save(ctx context.Context, c *Contract) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, c *Contract) error

	// Delete deletes a contract
	Delete(ctx context.Context, id uuid.UUID) error

	// CountForTenant counts contracts for a tenant with optional filters
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// GenerateReference issues the next contract reference for a tenant
	GenerateReference(ctx context.Context, tenantID uuid.UUID) (string, error)
}

// ConsumptionRepository defines the interface for consumption persistence
type ConsumptionRepository interface {
	// FindByID finds a consumption by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Consumption, error)

	// FindByIDs finds consumptions by their IDs
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Consumption, error)

	// FindByContract finds the consumptions of a contract
	FindByContract(ctx context.Context, contractID uuid.UUID, filter shared.Filter) ([]Consumption, error)

	// FindUninvoiced finds consumptions without a linked invoice line
	FindUninvoiced(ctx context.Context, contractID uuid.UUID) ([]Consumption, error)

	// FindUninvoicedForTenant finds uninvoiced consumptions across all
	// contracts of a tenant with an invoice date up to the given bound
	FindUninvoicedForTenant(ctx context.Context, tenantID uuid.UUID, until time.Time) ([]Consumption, error)

	// LineHistories derives per-line consumption history (max end period date
	// and max invoice date) for the given contract lines
	LineHistories(ctx context.Context, lineIDs []uuid.UUID) (map[uuid.UUID]LineHistory, error)

	// CreateBatch persists a batch of generated consumptions
	CreateBatch(ctx context.Context, consumptions []*Consumption) error

	// Save updates a consumption (e.g. linking its invoice line)
	Save(ctx context.Context, consumption *Consumption) error

	// SaveAll updates a set of consumptions atomically
	SaveAll(ctx context.Context, consumptions []*Consumption) error

	// CountByContract counts consumptions for a contract
	CountByContract(ctx context.Context, contractID uuid.UUID) (int64, error)
}

// Clock abstracts "today" so consumption runs are testable
type Clock interface {
	Today() time.Time
}

// SystemClock returns the current UTC date
type SystemClock struct{}

// Today returns the current date in UTC
func (SystemClock) Today() time.Time {
	return DateOf(time.Now())
}
