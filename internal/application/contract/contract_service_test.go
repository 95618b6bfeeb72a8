package contract

import (
	"context"
	"testing"
	"time"

	"github.com/erp/contracts/internal/domain/contract"
	"github.com/erp/contracts/internal/domain/partner"
	"github.com/erp/contracts/internal/domain/shared"
	"github.com/erp/contracts/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestParty(t *testing.T, tenantID uuid.UUID) *partner.Party {
	party, err := partner.NewParty(tenantID, "Acme Corp", "ACME", "4100", 30)
	require.NoError(t, err)
	return party
}

func newTestContract(t *testing.T, tenantID uuid.UUID) *contract.Contract {
	rule, err := contract.NewRecurrence(contract.FrequencyMonthly, 1)
	require.NoError(t, err)
	c, err := contract.NewContract(tenantID, uuid.New(), "Acme Corp", valueobject.EUR, rule,
		contract.Date(2020, time.January, 1), contract.Date(2020, time.January, 1))
	require.NoError(t, err)
	price := valueobject.MustNewMoney(decimal.NewFromInt(30), valueobject.EUR)
	_, err = c.AddLine(nil, "Hosting", "Monthly hosting", price)
	require.NoError(t, err)
	return c
}

func TestContractService_Create(t *testing.T) {
	contractRepo := new(MockContractRepository)
	partyRepo := new(MockPartyRepository)
	service := NewContractService(contractRepo, partyRepo, nil)

	tenantID := uuid.New()
	party := newTestParty(t, tenantID)

	partyRepo.On("FindByIDForTenant", mock.Anything, tenantID, party.ID).Return(party, nil)
	contractRepo.On("Save", mock.Anything, mock.AnythingOfType("*contract.Contract")).Return(nil)

	resp, err := service.Create(context.Background(), tenantID, CreateContractRequest{
		PartyID:         party.ID,
		Currency:        "EUR",
		Frequency:       "monthly",
		Interval:        1,
		StartDate:       "2020-01-01",
		StartPeriodDate: "2020-01-01",
		Lines: []ContractLineRequest{
			{Name: "Hosting", Description: "Monthly hosting", UnitPrice: decimal.NewFromInt(30)},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "DRAFT", resp.Status)
	assert.Equal(t, party.ID, resp.PartyID)
	assert.Equal(t, "Acme Corp", resp.PartyName)
	assert.Len(t, resp.Lines, 1)
	contractRepo.AssertExpectations(t)
	partyRepo.AssertExpectations(t)
}

func TestContractService_Create_InactiveParty(t *testing.T) {
	contractRepo := new(MockContractRepository)
	partyRepo := new(MockPartyRepository)
	service := NewContractService(contractRepo, partyRepo, nil)

	tenantID := uuid.New()
	party := newTestParty(t, tenantID)
	party.Deactivate()

	partyRepo.On("FindByIDForTenant", mock.Anything, tenantID, party.ID).Return(party, nil)

	_, err := service.Create(context.Background(), tenantID, CreateContractRequest{
		PartyID:         party.ID,
		Currency:        "EUR",
		Frequency:       "monthly",
		Interval:        1,
		StartDate:       "2020-01-01",
		StartPeriodDate: "2020-01-01",
	})

	assert.Error(t, err)
	contractRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestContractService_Create_StartDateOutsideFirstPeriod(t *testing.T) {
	contractRepo := new(MockContractRepository)
	partyRepo := new(MockPartyRepository)
	service := NewContractService(contractRepo, partyRepo, nil)

	tenantID := uuid.New()
	party := newTestParty(t, tenantID)
	partyRepo.On("FindByIDForTenant", mock.Anything, tenantID, party.ID).Return(party, nil)

	_, err := service.Create(context.Background(), tenantID, CreateContractRequest{
		PartyID:         party.ID,
		Currency:        "EUR",
		Frequency:       "monthly",
		Interval:        1,
		StartDate:       "2020-03-15",
		StartPeriodDate: "2020-01-01",
	})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_START_DATE", domainErr.Code)
}

func TestContractService_Validate(t *testing.T) {
	contractRepo := new(MockContractRepository)
	partyRepo := new(MockPartyRepository)
	service := NewContractService(contractRepo, partyRepo, nil)

	tenantID := uuid.New()
	c := newTestContract(t, tenantID)

	contractRepo.On("FindByIDForTenant", mock.Anything, tenantID, c.ID).Return(c, nil)
	contractRepo.On("GenerateReference", mock.Anything, tenantID).Return("CON-2020-00001", nil)
	contractRepo.On("SaveWithLock", mock.Anything, c).Return(nil)

	resp, err := service.Validate(context.Background(), tenantID, c.ID)

	require.NoError(t, err)
	assert.Equal(t, "VALIDATED", resp.Status)
	assert.Equal(t, "CON-2020-00001", resp.Reference)
	contractRepo.AssertExpectations(t)
}

// recordingPublisher captures published domain events
type recordingPublisher struct {
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

func TestContractService_Validate_PublishesEvent(t *testing.T) {
	contractRepo := new(MockContractRepository)
	partyRepo := new(MockPartyRepository)
	pub := &recordingPublisher{}
	service := NewContractService(contractRepo, partyRepo, pub)

	tenantID := uuid.New()
	c := newTestContract(t, tenantID)
	c.ClearDomainEvents()

	contractRepo.On("FindByIDForTenant", mock.Anything, tenantID, c.ID).Return(c, nil)
	contractRepo.On("GenerateReference", mock.Anything, tenantID).Return("CON-2020-00001", nil)
	contractRepo.On("SaveWithLock", mock.Anything, c).Return(nil)

	_, err := service.Validate(context.Background(), tenantID, c.ID)

	require.NoError(t, err)
	require.Len(t, pub.events, 1)
	assert.Equal(t, contract.EventTypeContractValidated, pub.events[0].EventType())
	assert.Equal(t, c.ID, pub.events[0].AggregateID())
	// Published events are drained from the aggregate
	assert.Empty(t, c.GetDomainEvents())
}

func TestContractService_Validate_RetriesOnReferenceCollision(t *testing.T) {
	contractRepo := new(MockContractRepository)
	partyRepo := new(MockPartyRepository)
	service := NewContractService(contractRepo, partyRepo, nil)

	tenantID := uuid.New()
	c := newTestContract(t, tenantID)

	contractRepo.On("FindByIDForTenant", mock.Anything, tenantID, c.ID).Return(c, nil)
	contractRepo.On("GenerateReference", mock.Anything, tenantID).Return("CON-2020-00001", nil).Once()
	// A concurrent validation took the first reference
	contractRepo.On("SaveWithLock", mock.Anything, c).
		Return(shared.NewDomainError("DUPLICATE_REFERENCE", "The contract reference is already taken")).Once()
	contractRepo.On("GenerateReference", mock.Anything, tenantID).Return("CON-2020-00002", nil).Once()
	contractRepo.On("SaveWithLock", mock.Anything, c).Return(nil).Once()

	resp, err := service.Validate(context.Background(), tenantID, c.ID)

	require.NoError(t, err)
	assert.Equal(t, "VALIDATED", resp.Status)
	assert.Equal(t, "CON-2020-00002", resp.Reference)
	contractRepo.AssertExpectations(t)
}

func TestContractService_Validate_GivesUpAfterRepeatedCollisions(t *testing.T) {
	contractRepo := new(MockContractRepository)
	partyRepo := new(MockPartyRepository)
	service := NewContractService(contractRepo, partyRepo, nil)

	tenantID := uuid.New()
	c := newTestContract(t, tenantID)

	contractRepo.On("FindByIDForTenant", mock.Anything, tenantID, c.ID).Return(c, nil)
	contractRepo.On("GenerateReference", mock.Anything, tenantID).Return("CON-2020-00001", nil)
	contractRepo.On("SaveWithLock", mock.Anything, c).
		Return(shared.NewDomainError("DUPLICATE_REFERENCE", "The contract reference is already taken"))

	_, err := service.Validate(context.Background(), tenantID, c.ID)

	require.Error(t, err)
	assert.True(t, shared.IsCode(err, "DUPLICATE_REFERENCE"))
	contractRepo.AssertNumberOfCalls(t, "SaveWithLock", sequenceAttempts)
}

func TestContractService_Validate_KeepsReferenceOnRevalidation(t *testing.T) {
	contractRepo := new(MockContractRepository)
	partyRepo := new(MockPartyRepository)
	service := NewContractService(contractRepo, partyRepo, nil)

	tenantID := uuid.New()
	c := newTestContract(t, tenantID)
	require.NoError(t, c.Validate("CON-2020-00007"))
	require.NoError(t, c.Cancel())
	require.NoError(t, c.Draft())

	contractRepo.On("FindByIDForTenant", mock.Anything, tenantID, c.ID).Return(c, nil)
	contractRepo.On("SaveWithLock", mock.Anything, c).Return(nil)

	resp, err := service.Validate(context.Background(), tenantID, c.ID)

	require.NoError(t, err)
	assert.Equal(t, "CON-2020-00007", resp.Reference)
	// The sequence is not consumed again
	contractRepo.AssertNotCalled(t, "GenerateReference", mock.Anything, mock.Anything)
}

func TestContractService_CancelAndDraft(t *testing.T) {
	contractRepo := new(MockContractRepository)
	partyRepo := new(MockPartyRepository)
	service := NewContractService(contractRepo, partyRepo, nil)

	tenantID := uuid.New()
	c := newTestContract(t, tenantID)
	require.NoError(t, c.Validate("CON-2020-00001"))

	contractRepo.On("FindByIDForTenant", mock.Anything, tenantID, c.ID).Return(c, nil)
	contractRepo.On("SaveWithLock", mock.Anything, c).Return(nil)

	resp, err := service.Cancel(context.Background(), tenantID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "CANCELLED", resp.Status)

	resp, err = service.Draft(context.Background(), tenantID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "DRAFT", resp.Status)
}

func TestContractService_Copy(t *testing.T) {
	contractRepo := new(MockContractRepository)
	partyRepo := new(MockPartyRepository)
	service := NewContractService(contractRepo, partyRepo, nil)

	tenantID := uuid.New()
	c := newTestContract(t, tenantID)
	require.NoError(t, c.Validate("CON-2020-00001"))

	contractRepo.On("FindByIDForTenant", mock.Anything, tenantID, c.ID).Return(c, nil)
	contractRepo.On("Save", mock.Anything, mock.AnythingOfType("*contract.Contract")).Return(nil)

	resp, err := service.Copy(context.Background(), tenantID, c.ID)

	require.NoError(t, err)
	assert.Equal(t, "DRAFT", resp.Status)
	assert.Empty(t, resp.Reference)
	assert.NotEqual(t, c.ID, resp.ID)
	assert.Len(t, resp.Lines, 1)
}

func TestContractService_Update_NonDraft(t *testing.T) {
	contractRepo := new(MockContractRepository)
	partyRepo := new(MockPartyRepository)
	service := NewContractService(contractRepo, partyRepo, nil)

	tenantID := uuid.New()
	c := newTestContract(t, tenantID)
	require.NoError(t, c.Validate("CON-2020-00001"))

	contractRepo.On("FindByIDForTenant", mock.Anything, tenantID, c.ID).Return(c, nil)

	interval := 3
	_, err := service.Update(context.Background(), tenantID, c.ID, UpdateContractRequest{Interval: &interval})
	assert.Error(t, err)
}

func TestContractService_Delete_OnlyDraft(t *testing.T) {
	contractRepo := new(MockContractRepository)
	partyRepo := new(MockPartyRepository)
	service := NewContractService(contractRepo, partyRepo, nil)

	tenantID := uuid.New()
	c := newTestContract(t, tenantID)
	contractRepo.On("FindByIDForTenant", mock.Anything, tenantID, c.ID).Return(c, nil)
	contractRepo.On("Delete", mock.Anything, c.ID).Return(nil)

	require.NoError(t, service.Delete(context.Background(), tenantID, c.ID))

	require.NoError(t, c.Validate("CON-2020-00001"))
	err := service.Delete(context.Background(), tenantID, c.ID)
	assert.Error(t, err)
}

func TestContractService_List(t *testing.T) {
	contractRepo := new(MockContractRepository)
	partyRepo := new(MockPartyRepository)
	service := NewContractService(contractRepo, partyRepo, nil)

	tenantID := uuid.New()
	c := newTestContract(t, tenantID)

	contractRepo.On("FindAllForTenant", mock.Anything, tenantID, mock.AnythingOfType("shared.Filter")).
		Return([]contract.Contract{*c}, nil)
	contractRepo.On("CountForTenant", mock.Anything, tenantID, mock.AnythingOfType("shared.Filter")).
		Return(int64(1), nil)

	responses, total, err := service.List(context.Background(), tenantID, ContractListFilter{})

	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, responses, 1)
	assert.Equal(t, c.ID, responses[0].ID)
}
