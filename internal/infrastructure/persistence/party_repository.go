package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/erp/contracts/internal/domain/partner"
	"github.com/erp/contracts/internal/domain/shared"
)

// GormPartyRepository implements PartyRepository using GORM
type GormPartyRepository struct {
	db *gorm.DB
}

// NewGormPartyRepository creates a new GormPartyRepository
func NewGormPartyRepository(db *gorm.DB) *GormPartyRepository {
	return &GormPartyRepository{db: db}
}

// FindByID finds a party by its ID
func (r *GormPartyRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Party, error) {
	var p partner.Party
	if err := r.db.WithContext(ctx).Preload("TaxRule").First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindByIDForTenant finds a party by ID within a tenant
func (r *GormPartyRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*partner.Party, error) {
	var p partner.Party
	if err := r.db.WithContext(ctx).Preload("TaxRule").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindByIDs finds multiple parties by their IDs, keyed by ID
func (r *GormPartyRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*partner.Party, error) {
	result := make(map[uuid.UUID]*partner.Party, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var parties []partner.Party
	if err := r.db.WithContext(ctx).Preload("TaxRule").
		Where("id IN ?", ids).
		Find(&parties).Error; err != nil {
		return nil, err
	}
	for idx := range parties {
		result[parties[idx].ID] = &parties[idx]
	}
	return result, nil
}

// FindByCode finds a party by its code within a tenant
func (r *GormPartyRepository) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*partner.Party, error) {
	var p partner.Party
	if err := r.db.WithContext(ctx).Preload("TaxRule").
		Where("tenant_id = ? AND code = ?", tenantID, code).
		First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindAllForTenant finds all parties for a tenant
func (r *GormPartyRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]partner.Party, error) {
	var parties []partner.Party
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&partner.Party{}).Preload("TaxRule").
			Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Find(&parties).Error; err != nil {
		return nil, err
	}
	return parties, nil
}

// Save creates or updates a party and its tax substitutions
func (r *GormPartyRepository) Save(ctx context.Context, p *partner.Party) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("TaxRule").Save(p).Error; err != nil {
			return err
		}

		currentSubIDs := make([]uuid.UUID, len(p.TaxRule))
		for i, sub := range p.TaxRule {
			currentSubIDs[i] = sub.ID
		}

		if len(currentSubIDs) > 0 {
			if err := tx.Where("party_id = ? AND id NOT IN ?", p.ID, currentSubIDs).
				Delete(&partner.TaxSubstitution{}).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Where("party_id = ?", p.ID).
				Delete(&partner.TaxSubstitution{}).Error; err != nil {
				return err
			}
		}

		for i := range p.TaxRule {
			p.TaxRule[i].PartyID = p.ID
			if err := tx.Save(&p.TaxRule[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete deletes a party and its tax substitutions
func (r *GormPartyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("party_id = ?", id).Delete(&partner.TaxSubstitution{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&partner.Party{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// CountForTenant counts parties for a tenant
func (r *GormPartyRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&partner.Party{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormPartyRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
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
func (r *GormPartyRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR code ILIKE ? OR email ILIKE ?", searchPattern, searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "active":
			query = query.Where("active = ?", value)
		case "code":
			query = query.Where("code = ?", value)
		}
	}

	return query
}

// Ensure GormPartyRepository implements PartyRepository
var _ partner.PartyRepository = (*GormPartyRepository)(nil)
