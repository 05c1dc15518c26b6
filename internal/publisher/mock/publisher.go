package mock

import (
	"context"
	"sync"

	"github.com/arenadeck/deckscout/internal/domain"
	"github.com/arenadeck/deckscout/internal/publisher"
)

// Ensure Publisher implements publisher.Publisher.
var _ publisher.Publisher = (*Publisher)(nil)

// Publisher records published events in memory for test assertions.
type Publisher struct {
	mu        sync.Mutex
	published []*domain.RecommendationEvent

	PublishEventFunc func(ctx context.Context, event *domain.RecommendationEvent) error
}

// NewPublisher creates an empty mock publisher.
func NewPublisher() *Publisher {
	return &Publisher{}
}

func (m *Publisher) PublishEvent(ctx context.Context, event *domain.RecommendationEvent) error {
	if m.PublishEventFunc != nil {
		return m.PublishEventFunc(ctx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, event)
	return nil
}

func (m *Publisher) Close() error { return nil }

// Published returns a snapshot of all recorded events.
func (m *Publisher) Published() []*domain.RecommendationEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.RecommendationEvent, len(m.published))
	copy(out, m.published)
	return out
}
