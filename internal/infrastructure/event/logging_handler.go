package event

import (
	"context"

	"github.com/erp/contracts/internal/domain/shared"
	"go.uber.org/zap"
)

// LoggingEventHandler writes an audit log line for every published domain
// event. It subscribes as a catch-all handler.
type LoggingEventHandler struct {
	logger *zap.Logger
}

// NewLoggingEventHandler creates a new LoggingEventHandler
func NewLoggingEventHandler(logger *zap.Logger) *LoggingEventHandler {
	return &LoggingEventHandler{
		logger: logger.Named("events"),
	}
}

// Handle logs the event
func (h *LoggingEventHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.logger.Info("Domain event",
		zap.String("event_type", event.EventType()),
		zap.String("aggregate_type", event.AggregateType()),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.String("tenant_id", event.TenantID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
	)
	return nil
}

// EventTypes returns an empty slice so the handler receives all events
func (h *LoggingEventHandler) EventTypes() []string {
	return nil
}

var _ shared.EventHandler = (*LoggingEventHandler)(nil)
