package eventsvc

import (
	"context"
	"sync"

	"github.com/pragya-git-bug/aibackend/core"
)

type noopPublisher struct{}

var _ core.EventPublisher = noopPublisher{}

// NewNoopPublisher returns a publisher that drops every event. Used when RabbitMQ is not configured.
func NewNoopPublisher() core.EventPublisher { return noopPublisher{} }

func (noopPublisher) Publish(context.Context, core.Event) error { return nil }

// PublisherMock records published events.
type PublisherMock struct {
	mu     sync.Mutex
	events []core.Event
	Err    error // returned by Publish when set
}

var _ core.EventPublisher = (*PublisherMock)(nil)

func NewPublisherMock() *PublisherMock { return new(PublisherMock) }

func (p *PublisherMock) Publish(_ context.Context, evt core.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.events = append(p.events, evt)
	return nil
}

func (p *PublisherMock) Events() []core.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]core.Event(nil), p.events...)
}

// Types returns the types of the recorded events, in order.
func (p *PublisherMock) Types() []core.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]core.EventType, 0, len(p.events))
	for _, evt := range p.events {
		types = append(types, evt.Type)
	}
	return types
}
