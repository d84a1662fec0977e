package memory

import (
	"context"
	"sync"

	"ico-sale-engine/internal/storage"
)

// Tx is the in-memory storage.TxManager: a single instruction mutex.
// Serializing whole instructions matches the per-record write exclusivity
// the record stores assume, and since the engine validates fully before
// mutating, a serialized instruction either commits all of its writes or
// performs none.
type Tx struct {
	mu sync.Mutex
}

// NewTx creates a new instruction serializer.
func NewTx() *Tx {
	return &Tx{}
}

// WithinTx runs fn while holding the instruction mutex.
func (t *Tx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(ctx)
}

// Verify interface compliance at compile time.
var _ storage.TxManager = (*Tx)(nil)
