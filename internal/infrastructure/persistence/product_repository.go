package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/erp/contracts/internal/domain/catalog"
	"github.com/erp/contracts/internal/domain/shared"
	"github.com/erp/contracts/internal/infrastructure/persistence/models"
)

// GormProductRepository implements ProductRepository using GORM. Products go
// through a persistence model because the unit value object does not map to
// columns directly.
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).Preload("CustomerTaxes").First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForTenant finds a product by ID within a tenant
func (r *GormProductRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).Preload("CustomerTaxes").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs finds multiple products by their IDs, keyed by ID
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*catalog.Product, error) {
	result := make(map[uuid.UUID]*catalog.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var productModels []models.ProductModel
	if err := r.db.WithContext(ctx).Preload("CustomerTaxes").
		Where("id IN ?", ids).
		Find(&productModels).Error; err != nil {
		return nil, err
	}
	for idx := range productModels {
		p := productModels[idx].ToDomain()
		result[p.ID] = p
	}
	return result, nil
}

// FindByCode finds a product by its code within a tenant
func (r *GormProductRepository) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).Preload("CustomerTaxes").
		Where("tenant_id = ? AND code = ?", tenantID, code).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant finds all products for a tenant
func (r *GormProductRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]catalog.Product, error) {
	var productModels []models.ProductModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.ProductModel{}).Preload("CustomerTaxes").
			Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Find(&productModels).Error; err != nil {
		return nil, err
	}

	products := make([]catalog.Product, 0, len(productModels))
	for idx := range productModels {
		products = append(products, *productModels[idx].ToDomain())
	}
	return products, nil
}

// Save creates or updates a product and its taxes
func (r *GormProductRepository) Save(ctx context.Context, p *catalog.Product) error {
	model := models.ProductModelFromDomain(p)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("CustomerTaxes").Save(model).Error; err != nil {
			return err
		}

		currentTaxIDs := make([]uuid.UUID, len(model.CustomerTaxes))
		for i, tax := range model.CustomerTaxes {
			currentTaxIDs[i] = tax.ID
		}

		if len(currentTaxIDs) > 0 {
			if err := tx.Where("product_id = ? AND id NOT IN ?", model.ID, currentTaxIDs).
				Delete(&models.ProductTaxModel{}).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Where("product_id = ?", model.ID).
				Delete(&models.ProductTaxModel{}).Error; err != nil {
				return err
			}
		}

		for i := range model.CustomerTaxes {
			model.CustomerTaxes[i].ProductID = model.ID
			if err := tx.Save(&model.CustomerTaxes[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete deletes a product and its taxes
func (r *GormProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductTaxModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.ProductModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// CountForTenant counts products for a tenant
func (r *GormProductRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.ProductModel{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormProductRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.Limit())
	}

	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		query = query.Order("name ASC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormProductRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR code ILIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "active":
			query = query.Where("active = ?", value)
		case "unit_code":
			query = query.Where("unit_code = ?", value)
		}
	}

	return query
}

// Ensure GormProductRepository implements ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
