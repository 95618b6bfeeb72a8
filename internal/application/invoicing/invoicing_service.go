package invoicing

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/erp/contracts/internal/domain/catalog"
	contractdomain "github.com/erp/contracts/internal/domain/contract"
	"github.com/erp/contracts/internal/domain/invoicing"
	"github.com/erp/contracts/internal/domain/partner"
	"github.com/erp/contracts/internal/domain/shared"
	"github.com/erp/contracts/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// revenueJournal is the journal contract revenue is booked on
const revenueJournal = "REV"

// numberAttempts bounds retries on a sequence collision during posting
const numberAttempts = 3

// InvoicingService assembles draft invoices from contract consumptions
type InvoicingService struct {
	contractRepo    contractdomain.ContractRepository
	consumptionRepo contractdomain.ConsumptionRepository
	invoiceRepo     invoicing.InvoiceRepository
	partyRepo       partner.PartyRepository
	productRepo     catalog.ProductRepository
	defaultsRepo    catalog.AccountDefaultsRepository
	publisher       shared.EventPublisher
	clock           contractdomain.Clock
	logger          *zap.Logger
}

// NewInvoicingService creates a new InvoicingService
func NewInvoicingService(
	contractRepo contractdomain.ContractRepository,
	consumptionRepo contractdomain.ConsumptionRepository,
	invoiceRepo invoicing.InvoiceRepository,
	partyRepo partner.PartyRepository,
	productRepo catalog.ProductRepository,
	defaultsRepo catalog.AccountDefaultsRepository,
	publisher shared.EventPublisher,
	clock contractdomain.Clock,
	logger *zap.Logger,
) *InvoicingService {
	return &InvoicingService{
		contractRepo:    contractRepo,
		consumptionRepo: consumptionRepo,
		invoiceRepo:     invoiceRepo,
		partyRepo:       partyRepo,
		productRepo:     productRepo,
		defaultsRepo:    defaultsRepo,
		publisher:       publisher,
		clock:           clock,
		logger:          logger,
	}
}

// publishEvents drains the invoice's pending events after a successful save.
// Delivery is best effort; the state change is already persisted.
func (s *InvoicingService) publishEvents(ctx context.Context, invoice *invoicing.Invoice) {
	if s.publisher != nil {
		if events := invoice.GetDomainEvents(); len(events) > 0 {
			if err := s.publisher.Publish(ctx, events...); err != nil {
				s.logger.Warn("failed to publish invoice events",
					zap.String("invoice_id", invoice.ID.String()), zap.Error(err))
			}
		}
	}
	invoice.ClearDomainEvents()
}

// billableItem pairs a consumption with everything needed to bill it
type billableItem struct {
	consumption *contractdomain.Consumption
	contract    *contractdomain.Contract
	line        *contractdomain.ContractLine
	product     *catalog.Product
	party       *partner.Party
}

// InvoiceConsumptions bills the selected consumptions, one invoice per
// (party, currency, type, invoice date) group. Already invoiced consumptions
// are skipped; each billed consumption is linked to the invoice line created
// for it so it can never be billed twice.
func (s *InvoicingService) InvoiceConsumptions(ctx context.Context, tenantID uuid.UUID, req InvoiceConsumptionsRequest) (*InvoiceConsumptionsResult, error) {
	consumptions, err := s.selectConsumptions(ctx, tenantID, req)
	if err != nil {
		return nil, err
	}

	result := &InvoiceConsumptionsResult{InvoiceIDs: []uuid.UUID{}}
	if len(consumptions) == 0 {
		return result, nil
	}

	items, err := s.resolveItems(ctx, tenantID, consumptions)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return result, nil
	}

	defaults, err := s.defaultsRepo.FindForTenant(ctx, tenantID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	groups := groupItems(items)

	for _, group := range groups {
		invoice, err := s.buildInvoice(group, defaults)
		if err != nil {
			return nil, err
		}

		if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
			return nil, err
		}
		s.publishEvents(ctx, invoice)

		linked := make([]*contractdomain.Consumption, 0, len(group))
		for idx, item := range group {
			if err := item.consumption.LinkInvoiceLine(invoice.Lines[idx].ID); err != nil {
				return nil, err
			}
			linked = append(linked, item.consumption)
		}
		if err := s.consumptionRepo.SaveAll(ctx, linked); err != nil {
			return nil, err
		}

		result.InvoicesCreated++
		result.ConsumptionsInvoiced += len(group)
		result.InvoiceIDs = append(result.InvoiceIDs, invoice.ID)
	}

	s.logger.Info("invoicing run completed",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("invoices", result.InvoicesCreated),
		zap.Int("consumptions", result.ConsumptionsInvoiced))

	return result, nil
}

// selectConsumptions loads the consumptions to bill, skipping any that are
// already invoiced
func (s *InvoicingService) selectConsumptions(ctx context.Context, tenantID uuid.UUID, req InvoiceConsumptionsRequest) ([]contractdomain.Consumption, error) {
	if len(req.ConsumptionIDs) > 0 {
		found, err := s.consumptionRepo.FindByIDs(ctx, req.ConsumptionIDs)
		if err != nil {
			return nil, err
		}
		consumptions := make([]contractdomain.Consumption, 0, len(found))
		for _, c := range found {
			if !c.IsInvoiced() {
				consumptions = append(consumptions, c)
			}
		}
		return consumptions, nil
	}

	until := s.clock.Today()
	if req.Date != "" {
		d, err := time.Parse(DateLayout, req.Date)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_DATE", "Date must use the YYYY-MM-DD format")
		}
		until = d
	}
	return s.consumptionRepo.FindUninvoicedForTenant(ctx, tenantID, until)
}

// resolveItems joins consumptions with their contracts, lines, parties and
// products. Consumptions whose contract line vanished are skipped.
func (s *InvoicingService) resolveItems(ctx context.Context, tenantID uuid.UUID, consumptions []contractdomain.Consumption) ([]billableItem, error) {
	contractIDs := make([]uuid.UUID, 0, len(consumptions))
	seen := make(map[uuid.UUID]bool)
	for _, c := range consumptions {
		if !seen[c.ContractID] {
			seen[c.ContractID] = true
			contractIDs = append(contractIDs, c.ContractID)
		}
	}

	contracts, err := s.contractRepo.FindByIDs(ctx, contractIDs)
	if err != nil {
		return nil, err
	}

	partyIDs := make([]uuid.UUID, 0, len(contracts))
	productIDs := make([]uuid.UUID, 0)
	seenParty := make(map[uuid.UUID]bool)
	seenProduct := make(map[uuid.UUID]bool)
	for _, c := range contracts {
		if !seenParty[c.PartyID] {
			seenParty[c.PartyID] = true
			partyIDs = append(partyIDs, c.PartyID)
		}
		for _, line := range c.Lines {
			if line.ProductID != nil && !seenProduct[*line.ProductID] {
				seenProduct[*line.ProductID] = true
				productIDs = append(productIDs, *line.ProductID)
			}
		}
	}

	parties, err := s.partyRepo.FindByIDs(ctx, partyIDs)
	if err != nil {
		return nil, err
	}
	products := map[uuid.UUID]*catalog.Product{}
	if len(productIDs) > 0 {
		products, err = s.productRepo.FindByIDs(ctx, productIDs)
		if err != nil {
			return nil, err
		}
	}

	items := make([]billableItem, 0, len(consumptions))
	for idx := range consumptions {
		consumption := &consumptions[idx]
		c, ok := contracts[consumption.ContractID]
		if !ok || c.TenantID != tenantID {
			continue
		}
		line := c.GetLine(consumption.ContractLineID)
		if line == nil {
			s.logger.Warn("skipping consumption with missing contract line",
				zap.String("consumption_id", consumption.ID.String()),
				zap.String("contract_line_id", consumption.ContractLineID.String()))
			continue
		}
		party, ok := parties[c.PartyID]
		if !ok {
			return nil, shared.NewDomainError("PARTY_NOT_FOUND", "Contract party no longer exists")
		}
		var product *catalog.Product
		if line.ProductID != nil {
			product = products[*line.ProductID]
		}
		items = append(items, billableItem{
			consumption: consumption,
			contract:    c,
			line:        line,
			product:     product,
			party:       party,
		})
	}
	return items, nil
}

// groupItems buckets billable items by invoice group key and orders groups
// and their items deterministically
func groupItems(items []billableItem) [][]billableItem {
	buckets := make(map[invoicing.GroupKey][]billableItem)
	keys := make([]invoicing.GroupKey, 0)
	for _, item := range items {
		key := invoicing.GroupKey{
			TenantID:    item.contract.TenantID,
			PartyID:     item.contract.PartyID,
			Currency:    item.contract.Currency,
			Type:        invoicing.InvoiceTypeOut,
			InvoiceDate: contractdomain.DateOf(item.consumption.InvoiceDate),
		}
		if _, ok := buckets[key]; !ok {
			keys = append(keys, key)
		}
		buckets[key] = append(buckets[key], item)
	}

	sort.Slice(keys, func(i, j int) bool {
		if !keys[i].InvoiceDate.Equal(keys[j].InvoiceDate) {
			return keys[i].InvoiceDate.Before(keys[j].InvoiceDate)
		}
		if keys[i].PartyID != keys[j].PartyID {
			return keys[i].PartyID.String() < keys[j].PartyID.String()
		}
		return keys[i].Currency < keys[j].Currency
	})

	groups := make([][]billableItem, 0, len(keys))
	for _, key := range keys {
		group := buckets[key]
		sort.Slice(group, func(i, j int) bool {
			if !group[i].consumption.StartDate.Equal(group[j].consumption.StartDate) {
				return group[i].consumption.StartDate.Before(group[j].consumption.StartDate)
			}
			return group[i].consumption.ID.String() < group[j].consumption.ID.String()
		})
		groups = append(groups, group)
	}
	return groups
}

// buildInvoice assembles one draft invoice for a group of billable items
func (s *InvoicingService) buildInvoice(group []billableItem, defaults *catalog.AccountDefaults) (*invoicing.Invoice, error) {
	first := group[0]
	key := invoicing.GroupKey{
		TenantID:    first.contract.TenantID,
		PartyID:     first.contract.PartyID,
		Currency:    first.contract.Currency,
		Type:        invoicing.InvoiceTypeOut,
		InvoiceDate: contractdomain.DateOf(first.consumption.InvoiceDate),
	}

	address := ""
	if !first.party.InvoiceAddress.IsZero() {
		address = first.party.InvoiceAddress.String()
	}

	invoice, err := invoicing.NewInvoice(key, first.party.Name, address, revenueJournal,
		first.party.ReceivableAccount, first.party.PaymentTermDays)
	if err != nil {
		return nil, err
	}

	for _, item := range group {
		line, err := s.buildLine(item, defaults)
		if err != nil {
			return nil, err
		}
		if _, err := invoice.AddLine(line); err != nil {
			return nil, err
		}
	}

	return invoice, nil
}

// buildLine derives the invoice line for one consumption. The billed quantity
// is the fraction of the period covered, rounded to the product unit's
// rounding step. A line without a resolvable revenue account is a hard error.
func (s *InvoicingService) buildLine(item billableItem, defaults *catalog.AccountDefaults) (invoicing.InvoiceLine, error) {
	ratio := item.consumption.QuantityRatio()

	unitCode := valueobject.UnitCodeUnit
	if item.product != nil {
		ratio = item.product.RoundQuantity(ratio)
		unitCode = item.product.Unit.Code()
	} else {
		// No unit configured: quantities are whole units
		ratio = valueobject.Unit{}.Round(ratio)
	}

	revenueAccount := defaults.RevenueAccountFor(item.product)
	if revenueAccount == "" {
		return invoicing.InvoiceLine{}, shared.NewDomainError("MISSING_REVENUE_ACCOUNT",
			"No revenue account is configured for the billed service")
	}

	var taxCodes invoicing.TaxCodes
	if item.product != nil {
		taxCodes = item.party.ApplyTaxRule(item.product.TaxCodes())
	}

	name := item.line.Name
	if name == "" {
		name = item.line.Description
	}

	return invoicing.InvoiceLine{
		ContractLineID: &item.line.ID,
		ProductID:      item.line.ProductID,
		Description:    invoicing.PeriodDescription(name, item.consumption.StartDate, item.consumption.EndDate),
		Quantity:       ratio,
		UnitCode:       unitCode,
		UnitPrice:      item.line.UnitPrice,
		RevenueAccount: revenueAccount,
		TaxCodes:       taxCodes,
	}, nil
}

// Post numbers a draft invoice and freezes it
func (s *InvoicingService) Post(ctx context.Context, tenantID, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}

	number, err := s.invoiceRepo.GenerateNumber(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if err := invoice.Post(number); err != nil {
		return nil, err
	}

	// A concurrent posting can mint the same number; the unique index rejects
	// the loser, which retries with a fresh one.
	for attempt := 1; ; attempt++ {
		err = s.invoiceRepo.Save(ctx, invoice)
		if err == nil {
			break
		}
		if !shared.IsCode(err, "DUPLICATE_NUMBER") || attempt >= numberAttempts {
			return nil, err
		}
		next, genErr := s.invoiceRepo.GenerateNumber(ctx, tenantID)
		if genErr != nil {
			return nil, genErr
		}
		invoice.Number = next
	}
	s.publishEvents(ctx, invoice)

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// GetByID retrieves an invoice by ID
func (s *InvoicingService) GetByID(ctx context.Context, tenantID, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// List retrieves invoices with filtering and pagination
func (s *InvoicingService) List(ctx context.Context, tenantID uuid.UUID, filter InvoiceListFilter) ([]InvoiceListResponse, int64, error) {
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
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}

	var (
		invoices []invoicing.Invoice
		err      error
	)
	if filter.PartyID != "" {
		partyID, parseErr := uuid.Parse(filter.PartyID)
		if parseErr != nil {
			return nil, 0, shared.NewDomainError("INVALID_PARTY", "Party ID must be a valid UUID")
		}
		invoices, err = s.invoiceRepo.FindByParty(ctx, tenantID, partyID, domainFilter)
	} else {
		invoices, err = s.invoiceRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	}
	if err != nil {
		return nil, 0, err
	}

	total, err := s.invoiceRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]InvoiceListResponse, 0, len(invoices))
	for idx := range invoices {
		responses = append(responses, ToInvoiceListResponse(&invoices[idx]))
	}
	return responses, total, nil
}
