package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/erp/contracts/internal/domain/contract"
	"github.com/erp/contracts/internal/domain/shared"
)

// GormConsumptionRepository implements ConsumptionRepository using GORM
type GormConsumptionRepository struct {
	db *gorm.DB
}

// NewGormConsumptionRepository creates a new GormConsumptionRepository
func NewGormConsumptionRepository(db *gorm.DB) *GormConsumptionRepository {
	return &GormConsumptionRepository{db: db}
}

// FindByID finds a consumption by its ID
func (r *GormConsumptionRepository) FindByID(ctx context.Context, id uuid.UUID) (*contract.Consumption, error) {
	var c contract.Consumption
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// FindByIDs finds multiple consumptions by their IDs
func (r *GormConsumptionRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]contract.Consumption, error) {
	if len(ids) == 0 {
		return []contract.Consumption{}, nil
	}

	var consumptions []contract.Consumption
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&consumptions).Error; err != nil {
		return nil, err
	}
	return consumptions, nil
}

// FindByContract finds the consumptions of a contract
func (r *GormConsumptionRepository) FindByContract(ctx context.Context, contractID uuid.UUID, filter shared.Filter) ([]contract.Consumption, error) {
	var consumptions []contract.Consumption
	query := r.db.WithContext(ctx).
		Model(&contract.Consumption{}).
		Where("contract_id = ?", contractID)

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
		query = query.Order("start_date ASC")
	}

	if err := query.Find(&consumptions).Error; err != nil {
		return nil, err
	}
	return consumptions, nil
}

// FindUninvoiced finds consumptions of a contract without a linked invoice line
func (r *GormConsumptionRepository) FindUninvoiced(ctx context.Context, contractID uuid.UUID) ([]contract.Consumption, error) {
	var consumptions []contract.Consumption
	if err := r.db.WithContext(ctx).
		Where("contract_id = ? AND invoice_line_id IS NULL", contractID).
		Order("start_date ASC").
		Find(&consumptions).Error; err != nil {
		return nil, err
	}
	return consumptions, nil
}

// FindUninvoicedForTenant finds uninvoiced consumptions across all contracts of
// a tenant with an invoice date up to the given bound
func (r *GormConsumptionRepository) FindUninvoicedForTenant(ctx context.Context, tenantID uuid.UUID, until time.Time) ([]contract.Consumption, error) {
	var consumptions []contract.Consumption
	if err := r.db.WithContext(ctx).
		Joins("JOIN contracts ON contracts.id = contract_consumptions.contract_id").
		Where("contracts.tenant_id = ? AND contract_consumptions.invoice_line_id IS NULL AND contract_consumptions.invoice_date <= ?", tenantID, until).
		Order("contract_consumptions.invoice_date ASC, contract_consumptions.start_date ASC").
		Find(&consumptions).Error; err != nil {
		return nil, err
	}
	return consumptions, nil
}

// lineHistoryRow carries the per-line max aggregates
type lineHistoryRow struct {
	ContractLineID    uuid.UUID
	LastEndPeriodDate *time.Time
	LastInvoiceDate   *time.Time
}

// LineHistories derives per-line consumption history from max aggregates over
// the recorded consumptions of the given contract lines
func (r *GormConsumptionRepository) LineHistories(ctx context.Context, lineIDs []uuid.UUID) (map[uuid.UUID]contract.LineHistory, error) {
	result := make(map[uuid.UUID]contract.LineHistory, len(lineIDs))
	if len(lineIDs) == 0 {
		return result, nil
	}

	var rows []lineHistoryRow
	if err := r.db.WithContext(ctx).
		Model(&contract.Consumption{}).
		Select("contract_line_id, MAX(period_end_date) AS last_end_period_date, MAX(invoice_date) AS last_invoice_date").
		Where("contract_line_id IN ?", lineIDs).
		Group("contract_line_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		result[row.ContractLineID] = contract.LineHistory{
			LastEndPeriodDate: row.LastEndPeriodDate,
			LastInvoiceDate:   row.LastInvoiceDate,
		}
	}
	return result, nil
}

// CreateBatch persists a batch of generated consumptions
func (r *GormConsumptionRepository) CreateBatch(ctx context.Context, consumptions []*contract.Consumption) error {
	if len(consumptions) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(consumptions, 200).Error
}

// Save updates a consumption
func (r *GormConsumptionRepository) Save(ctx context.Context, consumption *contract.Consumption) error {
	return r.db.WithContext(ctx).Save(consumption).Error
}

// SaveAll updates a set of consumptions atomically
func (r *GormConsumptionRepository) SaveAll(ctx context.Context, consumptions []*contract.Consumption) error {
	if len(consumptions) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, c := range consumptions {
			if err := tx.Save(c).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// CountByContract counts consumptions for a contract
func (r *GormConsumptionRepository) CountByContract(ctx context.Context, contractID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&contract.Consumption{}).
		Where("contract_id = ?", contractID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormConsumptionRepository implements ConsumptionRepository
var _ contract.ConsumptionRepository = (*GormConsumptionRepository)(nil)
