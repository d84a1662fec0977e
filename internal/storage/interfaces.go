package storage

import (
	"context"

	"ico-sale-engine/internal/domain"
)

// SaleStore provides access to sale record storage.
type SaleStore interface {
	// Insert adds a new sale record. Returns ErrDuplicateKey if the address exists.
	Insert(ctx context.Context, s *domain.Sale) error

	// Get retrieves a sale record by its address. Returns ErrNotFound if not exists.
	Get(ctx context.Context, address string) (*domain.Sale, error)

	// GetForUpdate retrieves a sale record with exclusive write intent for the
	// remainder of the enclosing instruction. Backends without row locking fall
	// back to Get; the TxManager provides the exclusion there.
	GetForUpdate(ctx context.Context, address string) (*domain.Sale, error)

	// Update overwrites an existing sale record. Returns ErrNotFound if not exists.
	Update(ctx context.Context, s *domain.Sale) error

	// List retrieves all sale records, ordered by start_time ASC.
	List(ctx context.Context) ([]*domain.Sale, error)
}

// ContributionStore provides access to per-buyer contribution storage.
type ContributionStore interface {
	// Insert adds a new contribution record. Returns ErrDuplicateKey if the address exists.
	Insert(ctx context.Context, c *domain.Contribution) error

	// Get retrieves a contribution record by its address. Returns ErrNotFound if not exists.
	Get(ctx context.Context, address string) (*domain.Contribution, error)

	// Update overwrites an existing contribution record. Returns ErrNotFound if not exists.
	Update(ctx context.Context, c *domain.Contribution) error

	// ListBySale retrieves all contributions for a sale, ordered by user ASC.
	ListBySale(ctx context.Context, sale string) ([]*domain.Contribution, error)
}

// EventStore provides access to the append-only sale event log.
type EventStore interface {
	// Append adds an event to the log.
	Append(ctx context.Context, e *domain.SaleEvent) error

	// ListBySale retrieves all events for a sale, ordered by occurred_at ASC.
	ListBySale(ctx context.Context, sale string) ([]*domain.SaleEvent, error)
}

// TxManager scopes a function to a single atomic instruction. Every record
// and ledger mutation inside fn commits or aborts as one unit; fn returning
// an error aborts. Implementations serialize instructions that touch the
// same sale record.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
