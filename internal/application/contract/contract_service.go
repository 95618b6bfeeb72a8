package contract

import (
	"context"

	"github.com/erp/contracts/internal/domain/contract"
	"github.com/erp/contracts/internal/domain/partner"
	"github.com/erp/contracts/internal/domain/shared"
	"github.com/erp/contracts/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// ContractService handles contract lifecycle operations
type ContractService struct {
	contractRepo contract.ContractRepository
	partyRepo    partner.PartyRepository
	publisher    shared.EventPublisher
}

// NewContractService creates a new ContractService
func NewContractService(contractRepo contract.ContractRepository, partyRepo partner.PartyRepository, publisher shared.EventPublisher) *ContractService {
	return &ContractService{
		contractRepo: contractRepo,
		partyRepo:    partyRepo,
		publisher:    publisher,
	}
}

// publishEvents drains the aggregate's pending events to the bus after a
// successful save. Delivery is best effort; the state change is already
// persisted.
func (s *ContractService) publishEvents(ctx context.Context, c *contract.Contract) {
	if s.publisher != nil {
		if events := c.GetDomainEvents(); len(events) > 0 {
			_ = s.publisher.Publish(ctx, events...)
		}
	}
	c.ClearDomainEvents()
}

// Create creates a new draft contract
func (s *ContractService) Create(ctx context.Context, tenantID uuid.UUID, req CreateContractRequest) (*ContractResponse, error) {
	party, err := s.partyRepo.FindByIDForTenant(ctx, tenantID, req.PartyID)
	if err != nil {
		return nil, err
	}
	if !party.Active {
		return nil, shared.NewDomainError("INACTIVE_PARTY", "Cannot create a contract for an inactive party")
	}

	recurrence, err := contract.NewRecurrence(contract.Frequency(req.Frequency), req.Interval)
	if err != nil {
		return nil, err
	}

	startDate, err := ParseDate(req.StartDate)
	if err != nil {
		return nil, err
	}
	startPeriodDate, err := ParseDate(req.StartPeriodDate)
	if err != nil {
		return nil, err
	}

	c, err := contract.NewContract(tenantID, party.ID, party.Name, valueobject.Currency(req.Currency), recurrence, startDate, startPeriodDate)
	if err != nil {
		return nil, err
	}

	endDate, err := ParseOptionalDate(req.EndDate)
	if err != nil {
		return nil, err
	}
	if endDate != nil {
		if err := c.SetEndDate(endDate); err != nil {
			return nil, err
		}
	}

	firstInvoiceDate, err := ParseOptionalDate(req.FirstInvoiceDate)
	if err != nil {
		return nil, err
	}
	if firstInvoiceDate != nil {
		if err := c.SetFirstInvoiceDate(firstInvoiceDate); err != nil {
			return nil, err
		}
	}

	for _, lineReq := range req.Lines {
		unitPrice, err := valueobject.NewMoney(lineReq.UnitPrice, c.Currency)
		if err != nil {
			return nil, err
		}
		if _, err := c.AddLine(lineReq.ProductID, lineReq.Name, lineReq.Description, unitPrice); err != nil {
			return nil, err
		}
	}

	if err := c.CheckStartDate(); err != nil {
		return nil, err
	}

	if err := s.contractRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, c)

	response := ToContractResponse(c)
	return &response, nil
}

// Update updates the header of a draft contract
func (s *ContractService) Update(ctx context.Context, tenantID, contractID uuid.UUID, req UpdateContractRequest) (*ContractResponse, error) {
	c, err := s.contractRepo.FindByIDForTenant(ctx, tenantID, contractID)
	if err != nil {
		return nil, err
	}
	if !c.CanModify() {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot modify a non-draft contract")
	}

	if req.Frequency != nil || req.Interval != nil {
		freq := c.Recurrence.Freq
		interval := c.Recurrence.Interval
		if req.Frequency != nil {
			freq = contract.Frequency(*req.Frequency)
		}
		if req.Interval != nil {
			interval = *req.Interval
		}
		recurrence, err := contract.NewRecurrence(freq, interval)
		if err != nil {
			return nil, err
		}
		c.Recurrence = recurrence
	}

	if req.StartDate != nil {
		d, err := ParseDate(*req.StartDate)
		if err != nil {
			return nil, err
		}
		c.StartDate = contract.DateOf(d)
	}
	if req.StartPeriodDate != nil {
		d, err := ParseDate(*req.StartPeriodDate)
		if err != nil {
			return nil, err
		}
		c.StartPeriodDate = contract.DateOf(d)
	}
	if req.EndDate != nil {
		endDate, err := ParseOptionalDate(req.EndDate)
		if err != nil {
			return nil, err
		}
		if err := c.SetEndDate(endDate); err != nil {
			return nil, err
		}
	}
	if req.FirstInvoiceDate != nil {
		firstInvoiceDate, err := ParseOptionalDate(req.FirstInvoiceDate)
		if err != nil {
			return nil, err
		}
		if err := c.SetFirstInvoiceDate(firstInvoiceDate); err != nil {
			return nil, err
		}
	}

	if err := c.CheckStartDate(); err != nil {
		return nil, err
	}

	if err := s.contractRepo.SaveWithLock(ctx, c); err != nil {
		return nil, err
	}

	response := ToContractResponse(c)
	return &response, nil
}

// AddLine adds a line to a draft contract
func (s *ContractService) AddLine(ctx context.Context, tenantID, contractID uuid.UUID, req ContractLineRequest) (*ContractResponse, error) {
	c, err := s.contractRepo.FindByIDForTenant(ctx, tenantID, contractID)
	if err != nil {
		return nil, err
	}

	unitPrice, err := valueobject.NewMoney(req.UnitPrice, c.Currency)
	if err != nil {
		return nil, err
	}
	if _, err := c.AddLine(req.ProductID, req.Name, req.Description, unitPrice); err != nil {
		return nil, err
	}

	if err := s.contractRepo.SaveWithLock(ctx, c); err != nil {
		return nil, err
	}

	response := ToContractResponse(c)
	return &response, nil
}

// UpdateLine updates a line of a draft contract
func (s *ContractService) UpdateLine(ctx context.Context, tenantID, contractID, lineID uuid.UUID, req ContractLineRequest) (*ContractResponse, error) {
	c, err := s.contractRepo.FindByIDForTenant(ctx, tenantID, contractID)
	if err != nil {
		return nil, err
	}

	unitPrice, err := valueobject.NewMoney(req.UnitPrice, c.Currency)
	if err != nil {
		return nil, err
	}
	if err := c.UpdateLine(lineID, req.Description, unitPrice); err != nil {
		return nil, err
	}

	if err := s.contractRepo.SaveWithLock(ctx, c); err != nil {
		return nil, err
	}

	response := ToContractResponse(c)
	return &response, nil
}

// RemoveLine removes a line from a draft contract
func (s *ContractService) RemoveLine(ctx context.Context, tenantID, contractID, lineID uuid.UUID) (*ContractResponse, error) {
	c, err := s.contractRepo.FindByIDForTenant(ctx, tenantID, contractID)
	if err != nil {
		return nil, err
	}

	if err := c.RemoveLine(lineID); err != nil {
		return nil, err
	}

	if err := s.contractRepo.SaveWithLock(ctx, c); err != nil {
		return nil, err
	}

	response := ToContractResponse(c)
	return &response, nil
}

// sequenceAttempts bounds retries on a sequence collision during validation
const sequenceAttempts = 3

// Validate transitions a contract to VALIDATED, assigning its reference from
// the tenant's contract sequence on first validation
func (s *ContractService) Validate(ctx context.Context, tenantID, contractID uuid.UUID) (*ContractResponse, error) {
	c, err := s.contractRepo.FindByIDForTenant(ctx, tenantID, contractID)
	if err != nil {
		return nil, err
	}

	reference := c.Reference
	if reference == "" {
		reference, err = s.contractRepo.GenerateReference(ctx, tenantID)
		if err != nil {
			return nil, err
		}
	}

	if err := c.Validate(reference); err != nil {
		return nil, err
	}

	// A concurrent validation can mint the same reference; the unique index
	// rejects the loser, which retries with a fresh one.
	for attempt := 1; ; attempt++ {
		err = s.contractRepo.SaveWithLock(ctx, c)
		if err == nil {
			break
		}
		if !shared.IsCode(err, "DUPLICATE_REFERENCE") || attempt >= sequenceAttempts {
			return nil, err
		}
		next, genErr := s.contractRepo.GenerateReference(ctx, tenantID)
		if genErr != nil {
			return nil, genErr
		}
		c.Reference = next
	}
	s.publishEvents(ctx, c)

	response := ToContractResponse(c)
	return &response, nil
}

// Cancel cancels a contract
func (s *ContractService) Cancel(ctx context.Context, tenantID, contractID uuid.UUID) (*ContractResponse, error) {
	c, err := s.contractRepo.FindByIDForTenant(ctx, tenantID, contractID)
	if err != nil {
		return nil, err
	}

	if err := c.Cancel(); err != nil {
		return nil, err
	}

	if err := s.contractRepo.SaveWithLock(ctx, c); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, c)

	response := ToContractResponse(c)
	return &response, nil
}

// Draft resets a cancelled contract back to draft
func (s *ContractService) Draft(ctx context.Context, tenantID, contractID uuid.UUID) (*ContractResponse, error) {
	c, err := s.contractRepo.FindByIDForTenant(ctx, tenantID, contractID)
	if err != nil {
		return nil, err
	}

	if err := c.Draft(); err != nil {
		return nil, err
	}

	if err := s.contractRepo.SaveWithLock(ctx, c); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, c)

	response := ToContractResponse(c)
	return &response, nil
}

// Copy duplicates a contract as a fresh draft
func (s *ContractService) Copy(ctx context.Context, tenantID, contractID uuid.UUID) (*ContractResponse, error) {
	c, err := s.contractRepo.FindByIDForTenant(ctx, tenantID, contractID)
	if err != nil {
		return nil, err
	}

	dup, err := c.Copy()
	if err != nil {
		return nil, err
	}
	if err := s.contractRepo.Save(ctx, dup); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, dup)

	response := ToContractResponse(dup)
	return &response, nil
}

// GetByID retrieves a contract by ID
func (s *ContractService) GetByID(ctx context.Context, tenantID, contractID uuid.UUID) (*ContractResponse, error) {
	c, err := s.contractRepo.FindByIDForTenant(ctx, tenantID, contractID)
	if err != nil {
		return nil, err
	}

	response := ToContractResponse(c)
	return &response, nil
}

// List retrieves contracts with filtering and pagination
func (s *ContractService) List(ctx context.Context, tenantID uuid.UUID, filter ContractListFilter) ([]ContractListResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
		if filter.OrderDir == "" {
			filter.OrderDir = "desc"
		}
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  map[string]interface{}{},
	}
	if filter.PartyID != "" {
		domainFilter.Filters["party_id"] = filter.PartyID
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}

	var (
		contracts []contract.Contract
		err       error
	)
	if filter.Status != "" {
		contracts, err = s.contractRepo.FindByStatus(ctx, tenantID, contract.ContractStatus(filter.Status), domainFilter)
	} else {
		contracts, err = s.contractRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	}
	if err != nil {
		return nil, 0, err
	}

	total, err := s.contractRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ContractListResponse, 0, len(contracts))
	for idx := range contracts {
		responses = append(responses, ToContractListResponse(&contracts[idx]))
	}
	return responses, total, nil
}

// Delete deletes a draft contract
func (s *ContractService) Delete(ctx context.Context, tenantID, contractID uuid.UUID) error {
	c, err := s.contractRepo.FindByIDForTenant(ctx, tenantID, contractID)
	if err != nil {
		return err
	}
	if !c.IsDraft() {
		return shared.NewDomainError("INVALID_STATE", "Only draft contracts can be deleted")
	}
	return s.contractRepo.Delete(ctx, c.ID)
}
