package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/erp/contracts/internal/domain/catalog"
	"github.com/erp/contracts/internal/domain/shared"
	"github.com/erp/contracts/internal/infrastructure/persistence/models"
)

// GormAccountDefaultsRepository implements AccountDefaultsRepository using GORM
type GormAccountDefaultsRepository struct {
	db *gorm.DB
}

// NewGormAccountDefaultsRepository creates a new GormAccountDefaultsRepository
func NewGormAccountDefaultsRepository(db *gorm.DB) *GormAccountDefaultsRepository {
	return &GormAccountDefaultsRepository{db: db}
}

// FindForTenant returns the accounting defaults for a tenant
func (r *GormAccountDefaultsRepository) FindForTenant(ctx context.Context, tenantID uuid.UUID) (*catalog.AccountDefaults, error) {
	var model models.AccountDefaultsModel
	if err := r.db.WithContext(ctx).First(&model, "tenant_id = ?", tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates the accounting defaults for a tenant
func (r *GormAccountDefaultsRepository) Save(ctx context.Context, defaults *catalog.AccountDefaults) error {
	model := models.AccountDefaultsModelFromDomain(defaults)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"default_revenue_account", "updated_at"}),
		}).
		Create(model).Error
}

// Ensure GormAccountDefaultsRepository implements AccountDefaultsRepository
var _ catalog.AccountDefaultsRepository = (*GormAccountDefaultsRepository)(nil)
