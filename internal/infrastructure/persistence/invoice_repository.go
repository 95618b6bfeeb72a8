package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/erp/contracts/internal/domain/invoicing"
	"github.com/erp/contracts/internal/domain/shared"
)

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds an invoice by its ID
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*invoicing.Invoice, error) {
	var inv invoicing.Invoice
	if err := r.db.WithContext(ctx).Preload("Lines").First(&inv, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

// FindByIDForTenant finds an invoice by ID within a tenant
func (r *GormInvoiceRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*invoicing.Invoice, error) {
	var inv invoicing.Invoice
	if err := r.db.WithContext(ctx).Preload("Lines").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

// FindAllForTenant finds all invoices for a tenant
func (r *GormInvoiceRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]invoicing.Invoice, error) {
	var invoices []invoicing.Invoice
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&invoicing.Invoice{}).Preload("Lines").
			Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// FindByParty finds invoices of a party for a tenant
func (r *GormInvoiceRepository) FindByParty(ctx context.Context, tenantID, partyID uuid.UUID, filter shared.Filter) ([]invoicing.Invoice, error) {
	var invoices []invoicing.Invoice
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&invoicing.Invoice{}).Preload("Lines").
			Where("tenant_id = ? AND party_id = ?", tenantID, partyID),
		filter,
	)

	if err := query.Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// Save creates or updates an invoice and its lines
func (r *GormInvoiceRepository) Save(ctx context.Context, i *invoicing.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Lines").Save(i).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return shared.NewDomainError("DUPLICATE_NUMBER", "The invoice number is already taken")
			}
			return err
		}

		currentLineIDs := make([]uuid.UUID, len(i.Lines))
		for idx, line := range i.Lines {
			currentLineIDs[idx] = line.ID
		}

		if len(currentLineIDs) > 0 {
			if err := tx.Where("invoice_id = ? AND id NOT IN ?", i.ID, currentLineIDs).
				Delete(&invoicing.InvoiceLine{}).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Where("invoice_id = ?", i.ID).
				Delete(&invoicing.InvoiceLine{}).Error; err != nil {
				return err
			}
		}

		for idx := range i.Lines {
			i.Lines[idx].InvoiceID = i.ID
			if err := tx.Save(&i.Lines[idx]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// CountForTenant counts invoices for a tenant
func (r *GormInvoiceRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&invoicing.Invoice{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GenerateNumber generates a unique invoice number for a tenant.
// Format: INV-YYYY-NNNNN (e.g., INV-2026-00001)
func (r *GormInvoiceRepository) GenerateNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("INV-%d-", year)

	var last invoicing.Invoice
	err := r.db.WithContext(ctx).
		Model(&invoicing.Invoice{}).
		Where("tenant_id = ? AND number LIKE ?", tenantID, prefix+"%").
		Order("number DESC").
		First(&last).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if err == nil && last.Number != "" {
		parts := strings.Split(last.Number, "-")
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
func (r *GormInvoiceRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
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
		query = query.Order("invoice_date DESC, created_at DESC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormInvoiceRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("number ILIKE ? OR party_name ILIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "party_id":
			query = query.Where("party_id = ?", value)
		case "currency":
			query = query.Where("currency = ?", value)
		case "date_from":
			query = query.Where("invoice_date >= ?", value)
		case "date_to":
			query = query.Where("invoice_date <= ?", value)
		}
	}

	return query
}

// Ensure GormInvoiceRepository implements InvoiceRepository
var _ invoicing.InvoiceRepository = (*GormInvoiceRepository)(nil)
