package memory

import (
	"context"
	"sort"
	"sync"

	"ico-sale-engine/internal/domain"
	"ico-sale-engine/internal/storage"
)

// SaleStore is an in-memory implementation of storage.SaleStore.
type SaleStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Sale // keyed by address
}

// NewSaleStore creates a new in-memory sale store.
func NewSaleStore() *SaleStore {
	return &SaleStore{
		data: make(map[string]*domain.Sale),
	}
}

// Insert adds a new sale record. Returns ErrDuplicateKey if the address exists.
func (s *SaleStore) Insert(_ context.Context, sale *domain.Sale) error {
	if sale == nil || sale.Address == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[sale.Address]; exists {
		return storage.ErrDuplicateKey
	}

	// Store a copy to prevent external mutation
	saleCopy := *sale
	s.data[sale.Address] = &saleCopy
	return nil
}

// Get retrieves a sale record by its address. Returns ErrNotFound if not exists.
func (s *SaleStore) Get(_ context.Context, address string) (*domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sale, exists := s.data[address]
	if !exists {
		return nil, storage.ErrNotFound
	}

	// Return a copy
	saleCopy := *sale
	return &saleCopy, nil
}

// GetForUpdate retrieves a sale record for mutation. The memory backend has
// no row locks; the instruction-level mutex in Tx provides the exclusion.
func (s *SaleStore) GetForUpdate(ctx context.Context, address string) (*domain.Sale, error) {
	return s.Get(ctx, address)
}

// Update overwrites an existing sale record. Returns ErrNotFound if not exists.
func (s *SaleStore) Update(_ context.Context, sale *domain.Sale) error {
	if sale == nil || sale.Address == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[sale.Address]; !exists {
		return storage.ErrNotFound
	}

	saleCopy := *sale
	s.data[sale.Address] = &saleCopy
	return nil
}

// List retrieves all sale records, ordered by start_time ASC.
func (s *SaleStore) List(_ context.Context) ([]*domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Sale, 0, len(s.data))
	for _, sale := range s.data {
		saleCopy := *sale
		result = append(result, &saleCopy)
	}

	// Sort by start_time ASC, address as tie-breaker for determinism
	sort.Slice(result, func(i, j int) bool {
		if result[i].StartTime != result[j].StartTime {
			return result[i].StartTime < result[j].StartTime
		}
		return result[i].Address < result[j].Address
	})

	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.SaleStore = (*SaleStore)(nil)
