package partner

import (
	"github.com/erp/contracts/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeParty = "Party"

// Event type constants
const (
	EventTypePartyCreated = "PartyCreated"
)

// PartyCreatedEvent is raised when a new party is created
type PartyCreatedEvent struct {
	shared.BaseDomainEvent
	PartyID uuid.UUID `json:"party_id"`
	Name    string    `json:"name"`
	Code    string    `json:"code"`
}

// NewPartyCreatedEvent creates a new PartyCreatedEvent
func NewPartyCreatedEvent(p *Party) *PartyCreatedEvent {
	return &PartyCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePartyCreated, AggregateTypeParty, p.ID, p.TenantID),
		PartyID:         p.ID,
		Name:            p.Name,
		Code:            p.Code,
	}
}
