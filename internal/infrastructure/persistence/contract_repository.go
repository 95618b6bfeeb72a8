package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/erp/contracts/internal/domain/contract"
	"github.com/erp/contracts/internal/domain/shared"
)

// GormContractRepository implements ContractRepository using GORM
type GormContractRepository struct {
	db *gorm.DB
}

// NewGormContractRepository creates a new GormContractRepository
func NewGormContractRepository(db *gorm.DB) *GormContractRepository {
	return &GormContractRepository{db: db}
}

// FindByID finds a contract by its ID
func (r *GormContractRepository) FindByID(ctx context.Context, id uuid.UUID) (*contract.Contract, error) {
	var c contract.Contract
	if err := r.db.WithContext(ctx).Preload("Lines").First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// FindByIDForTenant finds a contract by ID within a tenant
func (r *GormContractRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*contract.Contract, error) {
	var c contract.Contract
	if err := r.db.WithContext(ctx).Preload("Lines").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// FindByIDs finds multiple contracts by their IDs, keyed by ID
func (r *GormContractRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*contract.Contract, error) {
	result := make(map[uuid.UUID]*contract.Contract, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var contracts []contract.Contract
	if err := r.db.WithContext(ctx).Preload("Lines").
		Where("id IN ?", ids).
		Find(&contracts).Error; err != nil {
		return nil, err
	}
	for idx := range contracts {
		result[contracts[idx].ID] = &contracts[idx]
	}
	return result, nil
}

// FindByReference finds a contract by its reference within a tenant
func (r *GormContractRepository) FindByReference(ctx context.Context, tenantID uuid.UUID, reference string) (*contract.Contract, error) {
	var c contract.Contract
	if err := r.db.WithContext(ctx).Preload("Lines").
		Where("tenant_id = ? AND reference = ?", tenantID, reference).
		First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// FindAllForTenant finds all contracts for a tenant
func (r *GormContractRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]contract.Contract, error) {
	var contracts []contract.Contract
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&contract.Contract{}).Preload("Lines").
			Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Find(&contracts).Error; err != nil {
		return nil, err
	}
	return contracts, nil
}

// FindByStatus finds contracts by status for a tenant
func (r *GormContractRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status contract.ContractStatus, filter shared.Filter) ([]contract.Contract, error) {
	var contracts []contract.Contract
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&contract.Contract{}).Preload("Lines").
			Where("tenant_id = ? AND status = ?", tenantID, status),
		filter,
	)

	if err := query.Find(&contracts).Error; err != nil {
		return nil, err
	}
	return contracts, nil
}

// Save creates or updates a contract and its lines
func (r *GormContractRepository) Save(ctx context.Context, c *contract.Contract) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Lines").Save(c).Error; err != nil {
			return err
		}
		return r.saveLines(tx, c)
	})
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormContractRepository) SaveWithLock(ctx context.Context, c *contract.Contract) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var currentVersion int
		if err := tx.Model(&contract.Contract{}).
			Where("id = ?", c.ID).
			Select("version").
			Scan(&currentVersion).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		if currentVersion != c.Version {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The contract has been modified by another user")
		}

		c.Version++
		c.UpdatedAt = time.Now()

		result := tx.Model(&contract.Contract{}).
			Where("id = ? AND version = ?", c.ID, currentVersion).
			Updates(map[string]interface{}{
				"reference":          c.Reference,
				"party_id":           c.PartyID,
				"party_name":         c.PartyName,
				"currency":           c.Currency,
				"freq":               c.Recurrence.Freq,
				"freq_interval":      c.Recurrence.Interval,
				"start_date":         c.StartDate,
				"start_period_date":  c.StartPeriodDate,
				"end_date":           c.EndDate,
				"first_invoice_date": c.FirstInvoiceDate,
				"status":             c.Status,
				"version":            c.Version,
				"updated_at":         c.UpdatedAt,
			})
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
				return shared.NewDomainError("DUPLICATE_REFERENCE", "The contract reference is already taken")
			}
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The contract has been modified by another user")
		}

		return r.saveLines(tx, c)
	})
}

// saveLines replaces the contract's lines: removed lines are deleted,
// remaining ones are upserted.
func (r *GormContractRepository) saveLines(tx *gorm.DB, c *contract.Contract) error {
	currentLineIDs := make([]uuid.UUID, len(c.Lines))
	for i, line := range c.Lines {
		currentLineIDs[i] = line.ID
	}

	if len(currentLineIDs) > 0 {
		if err := tx.Where("contract_id = ? AND id NOT IN ?", c.ID, currentLineIDs).
			Delete(&contract.ContractLine{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("contract_id = ?", c.ID).
			Delete(&contract.ContractLine{}).Error; err != nil {
			return err
		}
	}

	for i := range c.Lines {
		c.Lines[i].ContractID = c.ID
		if err := tx.Save(&c.Lines[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// Delete deletes a contract and its lines
func (r *GormContractRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("contract_id = ?", id).Delete(&contract.ContractLine{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&contract.Contract{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// CountForTenant counts contracts for a tenant
func (r *GormContractRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&contract.Contract{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GenerateReference generates a unique contract reference for a tenant.
// Format: CON-YYYY-NNNNN (e.g., CON-2026-00001)
func (r *GormContractRepository) GenerateReference(ctx context.Context, tenantID uuid.UUID) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("CON-%d-", year)

	var last contract.Contract
	err := r.db.WithContext(ctx).
		Model(&contract.Contract{}).
		Where("tenant_id = ? AND reference LIKE ?", tenantID, prefix+"%").
		Order("reference DESC").
		First(&last).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if err == nil && last.Reference != "" {
		parts := strings.Split(last.Reference, "-")
		if len(parts) == 3 {
			var num int64
			if _, parseErr := fmt.Sscanf(parts[2], "%d", &num); parseErr == nil {
				nextNum = num + 1
			}
		}
	}

	return fmt.Sprintf("%s%05d", prefix, nextNum), nil
}

// applyFilter applies filter options to the query
func (r *GormContractRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
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
		query = query.Order("created_at DESC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormContractRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("reference ILIKE ? OR party_name ILIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "party_id":
			query = query.Where("party_id = ?", value)
		case "currency":
			query = query.Where("currency = ?", value)
		case "starts_before":
			query = query.Where("start_date <= ?", value)
		case "starts_after":
			query = query.Where("start_date >= ?", value)
		}
	}

	return query
}

// Ensure GormContractRepository implements ContractRepository
var _ contract.ContractRepository = (*GormContractRepository)(nil)
