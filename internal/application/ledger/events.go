package ledger

import (
	"context"

	"go.uber.org/zap"

	"github.com/ledgerbooks/backend/internal/domain/shared"
)

// LoggingEventPublisher writes domain events to the structured log. It is
// the default publisher wired into the ledger services; a message broker
// can be substituted without touching the services.
type LoggingEventPublisher struct {
	logger *zap.Logger
}

// NewLoggingEventPublisher creates a publisher backed by the given logger
func NewLoggingEventPublisher(logger *zap.Logger) *LoggingEventPublisher {
	return &LoggingEventPublisher{logger: logger}
}

// Publish logs each event with its identifying fields
func (p *LoggingEventPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	for _, event := range events {
		p.logger.Info("Domain event",
			zap.String("event_type", event.EventType()),
			zap.String("event_id", event.EventID().String()),
			zap.String("aggregate_type", event.AggregateType()),
			zap.String("aggregate_id", event.AggregateID().String()),
			zap.String("entity_id", event.EntityID().String()),
			zap.Time("occurred_at", event.OccurredAt()))
	}
	return nil
}

// publishEvents drains the pending events from each aggregate and hands
// them to the publisher. Called after a successful commit; a nil publisher
// is a no-op so tests can opt out.
func publishEvents(ctx context.Context, publisher shared.EventPublisher, aggregates ...shared.AggregateRoot) {
	if publisher == nil {
		return
	}
	for _, agg := range aggregates {
		events := agg.GetDomainEvents()
		if len(events) == 0 {
			continue
		}
		_ = publisher.Publish(ctx, events...)
		agg.ClearDomainEvents()
	}
}
