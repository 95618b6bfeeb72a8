package partner

import (
	"context"
	"errors"

	"github.com/erp/contracts/internal/domain/partner"
	"github.com/erp/contracts/internal/domain/shared"
	"github.com/google/uuid"
)

// PartyService handles party master data operations
type PartyService struct {
	partyRepo partner.PartyRepository
	publisher shared.EventPublisher
}

// NewPartyService creates a new PartyService
func NewPartyService(partyRepo partner.PartyRepository, publisher shared.EventPublisher) *PartyService {
	return &PartyService{partyRepo: partyRepo, publisher: publisher}
}

// publishEvents drains the party's pending events after a successful save.
// Delivery is best effort; the state change is already persisted.
func (s *PartyService) publishEvents(ctx context.Context, party *partner.Party) {
	if s.publisher != nil {
		if events := party.GetDomainEvents(); len(events) > 0 {
			_ = s.publisher.Publish(ctx, events...)
		}
	}
	party.ClearDomainEvents()
}

// Create creates a new party
func (s *PartyService) Create(ctx context.Context, tenantID uuid.UUID, req CreatePartyRequest) (*PartyResponse, error) {
	existing, err := s.partyRepo.FindByCode(ctx, tenantID, req.Code)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Party with this code already exists")
	}

	party, err := partner.NewParty(tenantID, req.Name, req.Code, req.ReceivableAccount, req.PaymentTermDays)
	if err != nil {
		return nil, err
	}
	party.Email = req.Email

	if req.InvoiceAddress != nil {
		party.SetInvoiceAddress(partner.Address{
			Street:     req.InvoiceAddress.Street,
			City:       req.InvoiceAddress.City,
			PostalCode: req.InvoiceAddress.PostalCode,
			Country:    req.InvoiceAddress.Country,
		})
	}

	if err := s.partyRepo.Save(ctx, party); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, party)

	response := ToPartyResponse(party)
	return &response, nil
}

// Update updates a party
func (s *PartyService) Update(ctx context.Context, tenantID, partyID uuid.UUID, req UpdatePartyRequest) (*PartyResponse, error) {
	party, err := s.partyRepo.FindByIDForTenant(ctx, tenantID, partyID)
	if err != nil {
		return nil, err
	}

	name := party.Name
	email := party.Email
	receivableAccount := party.ReceivableAccount
	paymentTermDays := party.PaymentTermDays
	if req.Name != nil {
		name = *req.Name
	}
	if req.Email != nil {
		email = *req.Email
	}
	if req.ReceivableAccount != nil {
		receivableAccount = *req.ReceivableAccount
	}
	if req.PaymentTermDays != nil {
		paymentTermDays = *req.PaymentTermDays
	}
	if err := party.Update(name, email, receivableAccount, paymentTermDays); err != nil {
		return nil, err
	}

	if req.InvoiceAddress != nil {
		party.SetInvoiceAddress(partner.Address{
			Street:     req.InvoiceAddress.Street,
			City:       req.InvoiceAddress.City,
			PostalCode: req.InvoiceAddress.PostalCode,
			Country:    req.InvoiceAddress.Country,
		})
	}

	if req.Active != nil {
		if *req.Active {
			party.Activate()
		} else {
			party.Deactivate()
		}
	}

	if err := s.partyRepo.Save(ctx, party); err != nil {
		return nil, err
	}

	response := ToPartyResponse(party)
	return &response, nil
}

// AddTaxSubstitution adds a tax substitution to a party
func (s *PartyService) AddTaxSubstitution(ctx context.Context, tenantID, partyID uuid.UUID, req TaxSubstitutionRequest) (*PartyResponse, error) {
	party, err := s.partyRepo.FindByIDForTenant(ctx, tenantID, partyID)
	if err != nil {
		return nil, err
	}

	if err := party.AddTaxSubstitution(req.SourceTaxCode, req.TargetTaxCode); err != nil {
		return nil, err
	}

	if err := s.partyRepo.Save(ctx, party); err != nil {
		return nil, err
	}

	response := ToPartyResponse(party)
	return &response, nil
}

// RemoveTaxSubstitution removes a tax substitution from a party
func (s *PartyService) RemoveTaxSubstitution(ctx context.Context, tenantID, partyID uuid.UUID, sourceTaxCode string) (*PartyResponse, error) {
	party, err := s.partyRepo.FindByIDForTenant(ctx, tenantID, partyID)
	if err != nil {
		return nil, err
	}

	if err := party.RemoveTaxSubstitution(sourceTaxCode); err != nil {
		return nil, err
	}

	if err := s.partyRepo.Save(ctx, party); err != nil {
		return nil, err
	}

	response := ToPartyResponse(party)
	return &response, nil
}

// GetByID retrieves a party by ID
func (s *PartyService) GetByID(ctx context.Context, tenantID, partyID uuid.UUID) (*PartyResponse, error) {
	party, err := s.partyRepo.FindByIDForTenant(ctx, tenantID, partyID)
	if err != nil {
		return nil, err
	}

	response := ToPartyResponse(party)
	return &response, nil
}

// List retrieves parties with filtering and pagination
func (s *PartyService) List(ctx context.Context, tenantID uuid.UUID, filter PartyListFilter) ([]PartyResponse, int64, error) {
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

	parties, err := s.partyRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.partyRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]PartyResponse, 0, len(parties))
	for idx := range parties {
		responses = append(responses, ToPartyResponse(&parties[idx]))
	}
	return responses, total, nil
}

// Delete deletes a party
func (s *PartyService) Delete(ctx context.Context, tenantID, partyID uuid.UUID) error {
	party, err := s.partyRepo.FindByIDForTenant(ctx, tenantID, partyID)
	if err != nil {
		return err
	}
	return s.partyRepo.Delete(ctx, party.ID)
}
