package memory

import (
	"context"
	"sort"
	"sync"

	"ico-sale-engine/internal/domain"
	"ico-sale-engine/internal/storage"
)

// ContributionStore is an in-memory implementation of storage.ContributionStore.
type ContributionStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Contribution // keyed by address
}

// NewContributionStore creates a new in-memory contribution store.
func NewContributionStore() *ContributionStore {
	return &ContributionStore{
		data: make(map[string]*domain.Contribution),
	}
}

// Insert adds a new contribution record. Returns ErrDuplicateKey if the address exists.
func (s *ContributionStore) Insert(_ context.Context, c *domain.Contribution) error {
	if c == nil || c.Address == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[c.Address]; exists {
		return storage.ErrDuplicateKey
	}

	// Store a copy to prevent external mutation
	contribCopy := *c
	s.data[c.Address] = &contribCopy
	return nil
}

// Get retrieves a contribution record by its address. Returns ErrNotFound if not exists.
func (s *ContributionStore) Get(_ context.Context, address string) (*domain.Contribution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, exists := s.data[address]
	if !exists {
		return nil, storage.ErrNotFound
	}

	// Return a copy
	contribCopy := *c
	return &contribCopy, nil
}

// Update overwrites an existing contribution record. Returns ErrNotFound if not exists.
func (s *ContributionStore) Update(_ context.Context, c *domain.Contribution) error {
	if c == nil || c.Address == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[c.Address]; !exists {
		return storage.ErrNotFound
	}

	contribCopy := *c
	s.data[c.Address] = &contribCopy
	return nil
}

// ListBySale retrieves all contributions for a sale, ordered by user ASC.
func (s *ContributionStore) ListBySale(_ context.Context, sale string) ([]*domain.Contribution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Contribution
	for _, c := range s.data {
		if c.Sale == sale {
			contribCopy := *c
			result = append(result, &contribCopy)
		}
	}

	// Sort by user ASC
	sort.Slice(result, func(i, j int) bool {
		return result[i].User < result[j].User
	})

	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.ContributionStore = (*ContributionStore)(nil)
