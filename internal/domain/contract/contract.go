package contract

import (
	"fmt"
	"time"

	"github.com/erp/contracts/internal/domain/shared"
	"github.com/erp/contracts/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// ContractStatus represents the lifecycle state of a contract
type ContractStatus string

const (
	ContractStatusDraft     ContractStatus = "DRAFT"
	ContractStatusValidated ContractStatus = "VALIDATED"
	ContractStatusCancelled ContractStatus = "CANCELLED"
)

// IsValid checks if the status is a valid ContractStatus
func (s ContractStatus) IsValid() bool {
	switch s {
	case ContractStatusDraft, ContractStatusValidated, ContractStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of ContractStatus
func (s ContractStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s ContractStatus) CanTransitionTo(target ContractStatus) bool {
	switch s {
	case ContractStatusDraft:
		return target == ContractStatusValidated || target == ContractStatusCancelled
	case ContractStatusValidated:
		return target == ContractStatusCancelled
	case ContractStatusCancelled:
		return target == ContractStatusDraft
	}
	return false
}

// Contract represents a recurring billing contract aggregate root.
// It owns its lines and the recurrence rule that drives consumption
// generation. Only VALIDATED contracts produce consumptions.
type Contract struct {
	shared.TenantAggregateRoot
	Reference        string // assigned from the contract sequence on validation
	PartyID          uuid.UUID
	PartyName        string
	Currency         valueobject.Currency
	Recurrence       Recurrence `gorm:"embedded"`
	StartDate        time.Time
	StartPeriodDate  time.Time
	EndDate          *time.Time
	FirstInvoiceDate *time.Time
	Lines            []ContractLine `gorm:"foreignKey:ContractID"`
	Status           ContractStatus
}

// NewContract creates a new contract in DRAFT status
func NewContract(tenantID, partyID uuid.UUID, partyName string, currency valueobject.Currency, recurrence Recurrence, startDate, startPeriodDate time.Time) (*Contract, error) {
	if partyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PARTY", "Party ID cannot be empty")
	}
	if partyName == "" {
		return nil, shared.NewDomainError("INVALID_PARTY_NAME", "Party name cannot be empty")
	}
	if !currency.IsValid() {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Currency is not supported")
	}
	if recurrence.IsZero() {
		return nil, shared.NewDomainError("INVALID_RECURRENCE", "Contract requires a recurrence rule")
	}
	if startDate.IsZero() || startPeriodDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Start date and start period date are required")
	}

	c := &Contract{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		PartyID:             partyID,
		PartyName:           partyName,
		Currency:            currency,
		Recurrence:          recurrence,
		StartDate:           DateOf(startDate),
		StartPeriodDate:     DateOf(startPeriodDate),
		Lines:               make([]ContractLine, 0),
		Status:              ContractStatusDraft,
	}

	c.AddDomainEvent(NewContractCreatedEvent(c))

	return c, nil
}

// SetEndDate sets the contract end date. Draft only.
func (c *Contract) SetEndDate(endDate *time.Time) error {
	if !c.CanModify() {
		return shared.NewDomainError("INVALID_STATE", "Cannot modify a non-draft contract")
	}
	if endDate != nil {
		d := DateOf(*endDate)
		if d.Before(c.StartDate) {
			return shared.NewDomainError("INVALID_DATE", "End date cannot precede the start date")
		}
		c.EndDate = &d
	} else {
		c.EndDate = nil
	}
	c.UpdatedAt = time.Now()
	return nil
}

// SetFirstInvoiceDate sets the date the first invoice falls on. Draft only.
func (c *Contract) SetFirstInvoiceDate(date *time.Time) error {
	if !c.CanModify() {
		return shared.NewDomainError("INVALID_STATE", "Cannot modify a non-draft contract")
	}
	if date != nil {
		d := DateOf(*date)
		c.FirstInvoiceDate = &d
	} else {
		c.FirstInvoiceDate = nil
	}
	c.UpdatedAt = time.Now()
	return nil
}

// AddLine adds a new line to the contract. Draft only.
func (c *Contract) AddLine(productID *uuid.UUID, name, description string, unitPrice valueobject.Money) (*ContractLine, error) {
	if !c.CanModify() {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add lines to a non-draft contract")
	}

	line, err := NewContractLine(c.ID, productID, name, description, unitPrice)
	if err != nil {
		return nil, err
	}

	c.Lines = append(c.Lines, *line)
	c.UpdatedAt = time.Now()

	return line, nil
}

// UpdateLine updates the price and description of an existing line. Draft only.
func (c *Contract) UpdateLine(lineID uuid.UUID, description string, unitPrice valueobject.Money) error {
	if !c.CanModify() {
		return shared.NewDomainError("INVALID_STATE", "Cannot update lines of a non-draft contract")
	}

	for idx := range c.Lines {
		if c.Lines[idx].ID == lineID {
			return c.Lines[idx].Update(description, unitPrice)
		}
	}

	return shared.NewDomainError("LINE_NOT_FOUND", "Contract line not found")
}

// RemoveLine removes a line from the contract. Draft only.
func (c *Contract) RemoveLine(lineID uuid.UUID) error {
	if !c.CanModify() {
		return shared.NewDomainError("INVALID_STATE", "Cannot remove lines from a non-draft contract")
	}

	for idx, line := range c.Lines {
		if line.ID == lineID {
			c.Lines = append(c.Lines[:idx], c.Lines[idx+1:]...)
			c.UpdatedAt = time.Now()
			return nil
		}
	}

	return shared.NewDomainError("LINE_NOT_FOUND", "Contract line not found")
}

// CheckStartDate verifies that the start date falls within the first
// recurrence period after the start period date.
func (c *Contract) CheckStartDate() error {
	if c.Recurrence.IsZero() {
		return nil
	}
	firstBoundary := c.Recurrence.NextAfter(c.StartPeriodDate, c.StartPeriodDate)
	if !c.StartDate.Before(c.StartPeriodDate) && c.StartDate.Before(firstBoundary) {
		return nil
	}
	return shared.NewDomainError("INVALID_START_DATE",
		fmt.Sprintf("Contract start date %s must fall within the first period starting %s",
			c.StartDate.Format("2006-01-02"), c.StartPeriodDate.Format("2006-01-02")))
}

// Validate transitions the contract from DRAFT to VALIDATED.
// The reference must have been assigned from the contract sequence.
func (c *Contract) Validate(reference string) error {
	if !c.Status.CanTransitionTo(ContractStatusValidated) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot validate contract in %s status", c.Status))
	}
	if err := c.CheckStartDate(); err != nil {
		return err
	}
	if c.Reference == "" {
		if reference == "" {
			return shared.NewDomainError("INVALID_REFERENCE", "Contract reference cannot be empty")
		}
		c.Reference = reference
	}

	c.Status = ContractStatusValidated
	c.UpdatedAt = time.Now()

	c.AddDomainEvent(NewContractValidatedEvent(c))

	return nil
}

// Cancel cancels the contract
func (c *Contract) Cancel() error {
	if !c.Status.CanTransitionTo(ContractStatusCancelled) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel contract in %s status", c.Status))
	}

	c.Status = ContractStatusCancelled
	c.UpdatedAt = time.Now()

	c.AddDomainEvent(NewContractCancelledEvent(c))

	return nil
}

// Draft resets a cancelled contract back to DRAFT
func (c *Contract) Draft() error {
	if !c.Status.CanTransitionTo(ContractStatusDraft) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reset contract in %s status", c.Status))
	}

	c.Status = ContractStatusDraft
	c.UpdatedAt = time.Now()

	c.AddDomainEvent(NewContractDraftedEvent(c))

	return nil
}

// Copy duplicates the contract as a fresh draft without reference or end date
func (c *Contract) Copy() (*Contract, error) {
	dup := &Contract{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(c.TenantID),
		PartyID:             c.PartyID,
		PartyName:           c.PartyName,
		Currency:            c.Currency,
		Recurrence:          c.Recurrence,
		StartDate:           c.StartDate,
		StartPeriodDate:     c.StartPeriodDate,
		FirstInvoiceDate:    c.FirstInvoiceDate,
		Lines:               make([]ContractLine, 0, len(c.Lines)),
		Status:              ContractStatusDraft,
	}
	for _, line := range c.Lines {
		dupLine, err := NewContractLine(dup.ID, line.ProductID, line.Name, line.Description, line.UnitPriceMoney(c.Currency))
		if err != nil {
			return nil, err
		}
		dup.Lines = append(dup.Lines, *dupLine)
	}
	dup.AddDomainEvent(NewContractCreatedEvent(dup))
	return dup, nil
}

// LineHistory summarises a line's consumption history, derived from
// max-aggregates over the consumptions recorded for the line.
type LineHistory struct {
	LastEndPeriodDate *time.Time
	LastInvoiceDate   *time.Time
}

// BuildConsumptions walks the recurrence rule of every contract line from its
// resume point up to (and including) the until bound, producing one
// consumption per elapsed period. The resume point of a line is the day after
// its last recorded end period date, or the contract's start period date when
// the line has no history yet.
//
// The very first consumption of a line starts at the contract's actual start
// date while its period span stays aligned to the start period date, so a
// contract starting mid-period yields a prorated first quantity.
//
// Lines without a usable recurrence rule are skipped. A non-validated
// contract produces nothing.
func (c *Contract) BuildConsumptions(until time.Time, history map[uuid.UUID]LineHistory) []*Consumption {
	if c.Status != ContractStatusValidated || c.Recurrence.IsZero() {
		return nil
	}

	until = DateOf(until)
	var consumptions []*Consumption

	for i := range c.Lines {
		line := &c.Lines[i]
		h := history[line.ID]

		start := c.StartPeriodDate
		var lastConsumed *time.Time
		if h.LastEndPeriodDate != nil {
			resume := DateOf(*h.LastEndPeriodDate).AddDate(0, 0, 1)
			start = resume
			lastConsumed = &resume
		}
		lastInvoiceDate := h.LastInvoiceDate

		for _, occ := range c.Recurrence.Between(c.StartPeriodDate, start, until) {
			end := occ.AddDate(0, 0, -1)

			var invoiceDate time.Time
			switch {
			case lastInvoiceDate != nil:
				invoiceDate = c.Recurrence.Next(*lastInvoiceDate)
			case c.FirstInvoiceDate != nil:
				invoiceDate = *c.FirstInvoiceDate
			default:
				invoiceDate = end
			}

			periodEnd := end
			if c.EndDate != nil && end.After(*c.EndDate) {
				end = *c.EndDate
			}

			periodStart := start
			consumptionStart := start
			if lastConsumed == nil {
				// First consumption starts at the contract's actual start
				// date; the period stays anchored to the start period date.
				periodStart = c.StartPeriodDate
				consumptionStart = c.StartDate
			}

			consumptions = append(consumptions, line.NewConsumption(consumptionStart, end, invoiceDate, periodStart, periodEnd))

			next := occ
			start = next
			lastConsumed = &next
			lastInvoiceDate = &invoiceDate

			if c.EndDate != nil && !occ.Before(*c.EndDate) {
				break
			}
		}
	}

	return consumptions
}

// IsDraft returns true if the contract is in draft status
func (c *Contract) IsDraft() bool {
	return c.Status == ContractStatusDraft
}

// IsValidated returns true if the contract is validated
func (c *Contract) IsValidated() bool {
	return c.Status == ContractStatusValidated
}

// IsCancelled returns true if the contract is cancelled
func (c *Contract) IsCancelled() bool {
	return c.Status == ContractStatusCancelled
}

// CanModify returns true if the contract header and lines can be modified
func (c *Contract) CanModify() bool {
	return c.IsDraft()
}

// GetLine returns a line by its ID
func (c *Contract) GetLine(lineID uuid.UUID) *ContractLine {
	for idx := range c.Lines {
		if c.Lines[idx].ID == lineID {
			return &c.Lines[idx]
		}
	}
	return nil
}

// LineCount returns the number of lines on the contract
func (c *Contract) LineCount() int {
	return len(c.Lines)
}

// TableName returns the database table name
func (Contract) TableName() string {
	return "contracts"
}
