package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/erp/contracts/internal/domain/contract"
)

// GormTenantSource enumerates tenants with validated contracts. The scheduler
// uses it to decide which tenants need a daily consumption run.
type GormTenantSource struct {
	db *gorm.DB
}

// NewGormTenantSource creates a new GormTenantSource
func NewGormTenantSource(db *gorm.DB) *GormTenantSource {
	return &GormTenantSource{db: db}
}

// ActiveTenantIDs returns the distinct tenant IDs that own at least one
// validated contract
func (s *GormTenantSource) ActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error) {
	var tenantIDs []uuid.UUID
	if err := s.db.WithContext(ctx).
		Model(&contract.Contract{}).
		Where("status = ?", contract.ContractStatusValidated).
		Distinct("tenant_id").
		Pluck("tenant_id", &tenantIDs).Error; err != nil {
		return nil, err
	}
	return tenantIDs, nil
}
