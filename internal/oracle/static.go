package oracle

import (
	"context"
	"sync"
)

// StaticSource is an in-memory Source fed by explicit Set calls.
// Used by tests, the offline simulator, and deployments that pin a quote.
type StaticSource struct {
	mu     sync.RWMutex
	quotes map[string]*Quote
}

// NewStaticSource creates an empty static source.
func NewStaticSource() *StaticSource {
	return &StaticSource{quotes: make(map[string]*Quote)}
}

// Set stores q as the latest quote for its feed.
func (s *StaticSource) Set(q *Quote) {
	if q == nil || q.Feed == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	quoteCopy := *q
	s.quotes[q.Feed] = &quoteCopy
}

// Latest returns the stored quote for the feed.
func (s *StaticSource) Latest(_ context.Context, feed string) (*Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, exists := s.quotes[feed]
	if !exists {
		return nil, ErrNoQuote
	}

	quoteCopy := *q
	return &quoteCopy, nil
}

// Compile-time interface check.
var _ Source = (*StaticSource)(nil)
