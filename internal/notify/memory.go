package notify

import (
	"context"
	"sync"
)

// InMemoryPublisher records events for tests. FailWith, when set, is
// returned by every Publish.
type InMemoryPublisher struct {
	mu       sync.Mutex
	events   []Event
	FailWith error
}

func NewInMemory() *InMemoryPublisher {
	return &InMemoryPublisher{}
}

func (p *InMemoryPublisher) Publish(_ context.Context, event Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.FailWith != nil {
		return p.FailWith
	}
	p.events = append(p.events, event)
	return nil
}

// Events returns a copy of everything published so far.
func (p *InMemoryPublisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Event{}, p.events...)
}
