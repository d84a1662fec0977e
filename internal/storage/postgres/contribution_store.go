package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"ico-sale-engine/internal/domain"
	"ico-sale-engine/internal/storage"
)

// ContributionStore implements storage.ContributionStore using PostgreSQL.
type ContributionStore struct {
	pool *Pool
}

// NewContributionStore creates a new ContributionStore.
func NewContributionStore(pool *Pool) *ContributionStore {
	return &ContributionStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ContributionStore = (*ContributionStore)(nil)

const contributionColumns = `
	address, user_address, sale, tokens_purchased, sol_contributed, bump,
	created_at, updated_at
`

// Insert adds a new contribution record. Returns ErrDuplicateKey if the address exists.
func (s *ContributionStore) Insert(ctx context.Context, c *domain.Contribution) error {
	if c == nil || c.Address == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO contributions (` + contributionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.pool.db(ctx).Exec(ctx, query,
		c.Address,
		c.User,
		c.Sale,
		int64(c.TokensPurchased),
		int64(c.SolContributed),
		int16(c.Bump),
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert contribution: %w", err)
	}
	return nil
}

// Get retrieves a contribution record by its address. Returns ErrNotFound if not exists.
func (s *ContributionStore) Get(ctx context.Context, address string) (*domain.Contribution, error) {
	query := `SELECT ` + contributionColumns + ` FROM contributions WHERE address = $1`

	row := s.pool.db(ctx).QueryRow(ctx, query, address)
	c, err := scanContribution(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get contribution: %w", err)
	}
	return c, nil
}

// Update overwrites an existing contribution record. Returns ErrNotFound if not exists.
func (s *ContributionStore) Update(ctx context.Context, c *domain.Contribution) error {
	if c == nil || c.Address == "" {
		return storage.ErrInvalidInput
	}

	query := `
		UPDATE contributions SET
			tokens_purchased = $2, sol_contributed = $3, updated_at = $4
		WHERE address = $1
	`

	tag, err := s.pool.db(ctx).Exec(ctx, query,
		c.Address,
		int64(c.TokensPurchased),
		int64(c.SolContributed),
		c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update contribution: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListBySale retrieves all contributions for a sale, ordered by user ASC.
func (s *ContributionStore) ListBySale(ctx context.Context, sale string) ([]*domain.Contribution, error) {
	query := `
		SELECT ` + contributionColumns + `
		FROM contributions
		WHERE sale = $1
		ORDER BY user_address ASC
	`

	rows, err := s.pool.db(ctx).Query(ctx, query, sale)
	if err != nil {
		return nil, fmt.Errorf("list contributions by sale: %w", err)
	}
	defer rows.Close()

	var contributions []*domain.Contribution
	for rows.Next() {
		c, err := scanContribution(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contribution row: %w", err)
		}
		contributions = append(contributions, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contribution rows: %w", err)
	}

	return contributions, nil
}

// scanContribution scans a single row into a Contribution.
func scanContribution(row pgx.Row) (*domain.Contribution, error) {
	var (
		c               domain.Contribution
		tokensPurchased int64
		solContributed  int64
		bump            int16
	)

	err := row.Scan(
		&c.Address,
		&c.User,
		&c.Sale,
		&tokensPurchased,
		&solContributed,
		&bump,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.TokensPurchased = uint64(tokensPurchased)
	c.SolContributed = uint64(solContributed)
	c.Bump = uint8(bump)
	return &c, nil
}
