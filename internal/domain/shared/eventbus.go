package shared

import "context"

// EventPublisher hands domain events to subscribers. Services call it only
// after their database transaction has committed.
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventHandler reacts to published events. EventTypes lists the types it
// wants; an empty list means every event.
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	EventTypes() []string
}

// EventBus is the process-wide dispatcher owned by cmd/server. Start runs
// before the first request is served; Stop drains in-flight publishes
// during shutdown.
type EventBus interface {
	EventPublisher
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
