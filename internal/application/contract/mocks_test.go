package contract

import (
	"context"
	"time"

	"github.com/erp/contracts/internal/domain/contract"
	"github.com/erp/contracts/internal/domain/partner"
	"github.com/erp/contracts/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// =============================================================================
// Mock Repositories
// =============================================================================

// MockContractRepository is a mock implementation of ContractRepository
type MockContractRepository struct {
	mock.Mock
}

func (m *MockContractRepository) FindByID(ctx context.Context, id uuid.UUID) (*contract.Contract, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contract.Contract), args.Error(1)
}

func (m *MockContractRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*contract.Contract, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contract.Contract), args.Error(1)
}

func (m *MockContractRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*contract.Contract, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]*contract.Contract), args.Error(1)
}

func (m *MockContractRepository) FindByReference(ctx context.Context, tenantID uuid.UUID, reference string) (*contract.Contract, error) {
	args := m.Called(ctx, tenantID, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contract.Contract), args.Error(1)
}

func (m *MockContractRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]contract.Contract, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]contract.Contract), args.Error(1)
}

func (m *MockContractRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status contract.ContractStatus, filter shared.Filter) ([]contract.Contract, error) {
	args := m.Called(ctx, tenantID, status, filter)
	return args.Get(0).([]contract.Contract), args.Error(1)
}

func (m *MockContractRepository) Save(ctx context.Context, c *contract.Contract) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockContractRepository) SaveWithLock(ctx context.Context, c *contract.Contract) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockContractRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockContractRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockContractRepository) GenerateReference(ctx context.Context, tenantID uuid.UUID) (string, error) {
	args := m.Called(ctx, tenantID)
	return args.String(0), args.Error(1)
}

// MockConsumptionRepository is a mock implementation of ConsumptionRepository
type MockConsumptionRepository struct {
	mock.Mock
}

func (m *MockConsumptionRepository) FindByID(ctx context.Context, id uuid.UUID) (*contract.Consumption, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contract.Consumption), args.Error(1)
}

func (m *MockConsumptionRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]contract.Consumption, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]contract.Consumption), args.Error(1)
}

func (m *MockConsumptionRepository) FindByContract(ctx context.Context, contractID uuid.UUID, filter shared.Filter) ([]contract.Consumption, error) {
	args := m.Called(ctx, contractID, filter)
	return args.Get(0).([]contract.Consumption), args.Error(1)
}

func (m *MockConsumptionRepository) FindUninvoiced(ctx context.Context, contractID uuid.UUID) ([]contract.Consumption, error) {
	args := m.Called(ctx, contractID)
	return args.Get(0).([]contract.Consumption), args.Error(1)
}

func (m *MockConsumptionRepository) FindUninvoicedForTenant(ctx context.Context, tenantID uuid.UUID, until time.Time) ([]contract.Consumption, error) {
	args := m.Called(ctx, tenantID, until)
	return args.Get(0).([]contract.Consumption), args.Error(1)
}

func (m *MockConsumptionRepository) LineHistories(ctx context.Context, lineIDs []uuid.UUID) (map[uuid.UUID]contract.LineHistory, error) {
	args := m.Called(ctx, lineIDs)
	return args.Get(0).(map[uuid.UUID]contract.LineHistory), args.Error(1)
}

func (m *MockConsumptionRepository) CreateBatch(ctx context.Context, consumptions []*contract.Consumption) error {
	args := m.Called(ctx, consumptions)
	return args.Error(0)
}

func (m *MockConsumptionRepository) Save(ctx context.Context, consumption *contract.Consumption) error {
	args := m.Called(ctx, consumption)
	return args.Error(0)
}

func (m *MockConsumptionRepository) SaveAll(ctx context.Context, consumptions []*contract.Consumption) error {
	args := m.Called(ctx, consumptions)
	return args.Error(0)
}

func (m *MockConsumptionRepository) CountByContract(ctx context.Context, contractID uuid.UUID) (int64, error) {
	args := m.Called(ctx, contractID)
	return args.Get(0).(int64), args.Error(1)
}

// MockPartyRepository is a mock implementation of PartyRepository
type MockPartyRepository struct {
	mock.Mock
}

func (m *MockPartyRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Party, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Party), args.Error(1)
}

func (m *MockPartyRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*partner.Party, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Party), args.Error(1)
}

func (m *MockPartyRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*partner.Party, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(map[uuid.UUID]*partner.Party), args.Error(1)
}

func (m *MockPartyRepository) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*partner.Party, error) {
	args := m.Called(ctx, tenantID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Party), args.Error(1)
}

func (m *MockPartyRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]partner.Party, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]partner.Party), args.Error(1)
}

func (m *MockPartyRepository) Save(ctx context.Context, p *partner.Party) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPartyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPartyRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockRunGuard is a mock implementation of RunGuard
type MockRunGuard struct {
	mock.Mock
}

func (m *MockRunGuard) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockRunGuard) Release(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// fixedClock pins "today" for deterministic runs
type fixedClock struct {
	today time.Time
}

func (c fixedClock) Today() time.Time {
	return c.today
}
