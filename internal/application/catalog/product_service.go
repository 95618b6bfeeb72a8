package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/erp/contracts/internal/domain/catalog"
	"github.com/erp/contracts/internal/domain/shared"
	"github.com/erp/contracts/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// ProductService handles product master data operations
type ProductService struct {
	productRepo  catalog.ProductRepository
	defaultsRepo catalog.AccountDefaultsRepository
	publisher    shared.EventPublisher
}

// NewProductService creates a new ProductService
func NewProductService(productRepo catalog.ProductRepository, defaultsRepo catalog.AccountDefaultsRepository, publisher shared.EventPublisher) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		defaultsRepo: defaultsRepo,
		publisher:    publisher,
	}
}

// publishEvents drains the product's pending events after a successful save.
// Delivery is best effort; the state change is already persisted.
func (s *ProductService) publishEvents(ctx context.Context, product *catalog.Product) {
	if s.publisher != nil {
		if events := product.GetDomainEvents(); len(events) > 0 {
			_ = s.publisher.Publish(ctx, events...)
		}
	}
	product.ClearDomainEvents()
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, tenantID uuid.UUID, req CreateProductRequest) (*ProductResponse, error) {
	existing, err := s.productRepo.FindByCode(ctx, tenantID, req.Code)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Product with this code already exists")
	}

	rounding := valueobject.DefaultRounding
	if req.UnitRounding != nil {
		rounding = *req.UnitRounding
	}
	unit, err := valueobject.NewUnit(req.UnitCode, req.UnitName, rounding)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_UNIT", err.Error())
	}

	product, err := catalog.NewProduct(tenantID, req.Name, req.Code, req.ListPrice, unit)
	if err != nil {
		return nil, err
	}
	product.SetRevenueAccount(req.RevenueAccount)
	for _, taxCode := range req.TaxCodes {
		if err := product.AddCustomerTax(taxCode); err != nil {
			return nil, err
		}
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, product)

	response := ToProductResponse(product)
	return &response, nil
}

// Update updates a product
func (s *ProductService) Update(ctx context.Context, tenantID, productID uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}

	name := product.Name
	listPrice := product.ListPrice
	unit := product.Unit
	if req.Name != nil {
		name = *req.Name
	}
	if req.ListPrice != nil {
		listPrice = *req.ListPrice
	}
	if req.UnitCode != nil || req.UnitName != nil || req.UnitRounding != nil {
		code := unit.Code()
		unitName := unit.Name()
		rounding := unit.Rounding()
		if req.UnitCode != nil {
			code = *req.UnitCode
		}
		if req.UnitName != nil {
			unitName = *req.UnitName
		}
		if req.UnitRounding != nil {
			rounding = *req.UnitRounding
		}
		unit, err = valueobject.NewUnit(code, unitName, rounding)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_UNIT", err.Error())
		}
	}
	if err := product.Update(name, listPrice, unit); err != nil {
		return nil, err
	}

	if req.RevenueAccount != nil {
		product.SetRevenueAccount(req.RevenueAccount)
	}
	if req.Active != nil {
		if *req.Active {
			product.Activate()
		} else {
			product.Deactivate()
		}
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// AddTax attaches a customer tax code to a product
func (s *ProductService) AddTax(ctx context.Context, tenantID, productID uuid.UUID, taxCode string) (*ProductResponse, error) {
	product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}

	if err := product.AddCustomerTax(taxCode); err != nil {
		return nil, err
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// RemoveTax detaches a customer tax code from a product
func (s *ProductService) RemoveTax(ctx context.Context, tenantID, productID uuid.UUID, taxCode string) (*ProductResponse, error) {
	product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}

	if err := product.RemoveCustomerTax(taxCode); err != nil {
		return nil, err
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, tenantID, productID uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// List retrieves products with filtering and pagination
func (s *ProductService) List(ctx context.Context, tenantID uuid.UUID, filter ProductListFilter) ([]ProductResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "code"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "asc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
	}

	products, err := s.productRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.productRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ProductResponse, 0, len(products))
	for idx := range products {
		responses = append(responses, ToProductResponse(&products[idx]))
	}
	return responses, total, nil
}

// Delete deletes a product
func (s *ProductService) Delete(ctx context.Context, tenantID, productID uuid.UUID) error {
	product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return err
	}
	return s.productRepo.Delete(ctx, product.ID)
}

// GetAccountDefaults retrieves the tenant accounting defaults
func (s *ProductService) GetAccountDefaults(ctx context.Context, tenantID uuid.UUID) (*AccountDefaultsResponse, error) {
	defaults, err := s.defaultsRepo.FindForTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	response := ToAccountDefaultsResponse(defaults)
	return &response, nil
}

// SetAccountDefaults creates or updates the tenant accounting defaults
func (s *ProductService) SetAccountDefaults(ctx context.Context, tenantID uuid.UUID, req AccountDefaultsRequest) (*AccountDefaultsResponse, error) {
	defaults, err := s.defaultsRepo.FindForTenant(ctx, tenantID)
	if errors.Is(err, shared.ErrNotFound) {
		defaults, err = catalog.NewAccountDefaults(tenantID, req.DefaultRevenueAccount)
	}
	if err != nil {
		return nil, err
	}
	defaults.DefaultRevenueAccount = req.DefaultRevenueAccount
	defaults.UpdatedAt = time.Now()

	if err := s.defaultsRepo.Save(ctx, defaults); err != nil {
		return nil, err
	}

	response := ToAccountDefaultsResponse(defaults)
	return &response, nil
}
