package testutil

import (
	"context"
	"sync"

	"github.com/jneralrex/stratos-backend/internal/domain/shared"
)

// RecordingPublisher is a shared.EventPublisher that keeps every published
// event in order.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
	err    error
}

// NewRecordingPublisher creates an empty publisher.
func NewRecordingPublisher() *RecordingPublisher {
	return &RecordingPublisher{}
}

var _ shared.EventPublisher = (*RecordingPublisher)(nil)

// Publish records events and returns the configured error.
func (p *RecordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return p.err
}

// SetError makes later Publish calls fail.
func (p *RecordingPublisher) SetError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

// Events returns a copy of the published events.
func (p *RecordingPublisher) Events() []shared.DomainEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]shared.DomainEvent, len(p.events))
	copy(out, p.events)
	return out
}

// Types returns the event types in publish order.
func (p *RecordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, len(p.events))
	for i, e := range p.events {
		types[i] = e.EventType()
	}
	return types
}

// Count returns how many events of eventType were published.
func (p *RecordingPublisher) Count(eventType string) int {
	n := 0
	for _, t := range p.Types() {
		if t == eventType {
			n++
		}
	}
	return n
}
