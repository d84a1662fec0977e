package memory

import (
	"context"
	"sort"
	"sync"

	"ico-sale-engine/internal/domain"
	"ico-sale-engine/internal/storage"
)

// EventStore is an in-memory implementation of storage.EventStore.
// Events are kept in append order per sale.
type EventStore struct {
	mu   sync.RWMutex
	data map[string][]*domain.SaleEvent // keyed by sale address
}

// NewEventStore creates a new in-memory event store.
func NewEventStore() *EventStore {
	return &EventStore{
		data: make(map[string][]*domain.SaleEvent),
	}
}

// Append adds an event to the log.
func (s *EventStore) Append(_ context.Context, e *domain.SaleEvent) error {
	if e == nil || e.Sale == "" || e.Kind == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Store a copy to prevent external mutation
	eventCopy := *e
	s.data[e.Sale] = append(s.data[e.Sale], &eventCopy)
	return nil
}

// ListBySale retrieves all events for a sale, ordered by occurred_at ASC.
// Events with equal timestamps keep their append order.
func (s *EventStore) ListBySale(_ context.Context, sale string) ([]*domain.SaleEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := s.data[sale]
	result := make([]*domain.SaleEvent, 0, len(events))
	for _, e := range events {
		eventCopy := *e
		result = append(result, &eventCopy)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].OccurredAt < result[j].OccurredAt
	})

	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.EventStore = (*EventStore)(nil)
