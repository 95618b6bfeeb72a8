package contract

import (
	"time"

	"github.com/erp/contracts/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeContract = "Contract"

// Event type constants
const (
	EventTypeContractCreated       = "ContractCreated"
	EventTypeContractValidated     = "ContractValidated"
	EventTypeContractCancelled     = "ContractCancelled"
	EventTypeContractDrafted       = "ContractDrafted"
	EventTypeConsumptionsGenerated = "ContractConsumptionsGenerated"
)

// ContractCreatedEvent is raised when a new contract is created
type ContractCreatedEvent struct {
	shared.BaseDomainEvent
	ContractID uuid.UUID `json:"contract_id"`
	PartyID    uuid.UUID `json:"party_id"`
	PartyName  string    `json:"party_name"`
	StartDate  time.Time `json:"start_date"`
}

// NewContractCreatedEvent creates a new ContractCreatedEvent
func NewContractCreatedEvent(c *Contract) *ContractCreatedEvent {
	return &ContractCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeContractCreated, AggregateTypeContract, c.ID, c.TenantID),
		ContractID:      c.ID,
		PartyID:         c.PartyID,
		PartyName:       c.PartyName,
		StartDate:       c.StartDate,
	}
}

// ContractValidatedEvent is raised when a contract is validated and becomes
// eligible for consumption generation
type ContractValidatedEvent struct {
	shared.BaseDomainEvent
	ContractID uuid.UUID `json:"contract_id"`
	Reference  string    `json:"reference"`
	PartyID    uuid.UUID `json:"party_id"`
	LineCount  int       `json:"line_count"`
}

// NewContractValidatedEvent creates a new ContractValidatedEvent
func NewContractValidatedEvent(c *Contract) *ContractValidatedEvent {
	return &ContractValidatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeContractValidated, AggregateTypeContract, c.ID, c.TenantID),
		ContractID:      c.ID,
		Reference:       c.Reference,
		PartyID:         c.PartyID,
		LineCount:       len(c.Lines),
	}
}

// ContractCancelledEvent is raised when a contract is cancelled
type ContractCancelledEvent struct {
	shared.BaseDomainEvent
	ContractID uuid.UUID `json:"contract_id"`
	Reference  string    `json:"reference"`
}

// NewContractCancelledEvent creates a new ContractCancelledEvent
func NewContractCancelledEvent(c *Contract) *ContractCancelledEvent {
	return &ContractCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeContractCancelled, AggregateTypeContract, c.ID, c.TenantID),
		ContractID:      c.ID,
		Reference:       c.Reference,
	}
}

// ContractDraftedEvent is raised when a cancelled contract is reset to draft
type ContractDraftedEvent struct {
	shared.BaseDomainEvent
	ContractID uuid.UUID `json:"contract_id"`
	Reference  string    `json:"reference"`
}

// NewContractDraftedEvent creates a new ContractDraftedEvent
func NewContractDraftedEvent(c *Contract) *ContractDraftedEvent {
	return &ContractDraftedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeContractDrafted, AggregateTypeContract, c.ID, c.TenantID),
		ContractID:      c.ID,
		Reference:       c.Reference,
	}
}

// ConsumptionsGeneratedEvent is raised after a consumption run creates new
// consumptions for a contract
type ConsumptionsGeneratedEvent struct {
	shared.BaseDomainEvent
	ContractID uuid.UUID `json:"contract_id"`
	Reference  string    `json:"reference"`
	Count      int       `json:"count"`
	Until      time.Time `json:"until"`
}

// NewConsumptionsGeneratedEvent creates a new ConsumptionsGeneratedEvent
func NewConsumptionsGeneratedEvent(c *Contract, count int, until time.Time) *ConsumptionsGeneratedEvent {
	return &ConsumptionsGeneratedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeConsumptionsGenerated, AggregateTypeContract, c.ID, c.TenantID),
		ContractID:      c.ID,
		Reference:       c.Reference,
		Count:           count,
		Until:           until,
	}
}
