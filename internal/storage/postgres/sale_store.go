package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"ico-sale-engine/internal/domain"
	"ico-sale-engine/internal/storage"
)

// SaleStore implements storage.SaleStore using PostgreSQL. Amounts are
// stored as BIGINT; the engine keeps them below 2^63 so the int64 round
// trip is lossless.
type SaleStore struct {
	pool *Pool
}

// NewSaleStore creates a new SaleStore.
func NewSaleStore(pool *Pool) *SaleStore {
	return &SaleStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SaleStore = (*SaleStore)(nil)

const saleColumns = `
	address, authority, token_mint, treasury, vault, price_oracle, pricing,
	token_price, token_price_usd, max_price_age, max_tokens, min_purchase,
	max_purchase, tokens_sold, total_raised, start_time, end_time,
	is_active, is_paused, bump, created_at, updated_at
`

// Insert adds a new sale record. Returns ErrDuplicateKey if the address exists.
func (s *SaleStore) Insert(ctx context.Context, sale *domain.Sale) error {
	if sale == nil || sale.Address == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO sales (` + saleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
	`

	_, err := s.pool.db(ctx).Exec(ctx, query,
		sale.Address,
		sale.Authority,
		sale.TokenMint,
		sale.Treasury,
		sale.Vault,
		sale.PriceOracle,
		string(sale.Pricing),
		int64(sale.TokenPrice),
		int64(sale.TokenPriceUSD),
		sale.MaxPriceAge,
		int64(sale.MaxTokens),
		int64(sale.MinPurchase),
		int64(sale.MaxPurchase),
		int64(sale.TokensSold),
		int64(sale.TotalRaised),
		sale.StartTime,
		sale.EndTime,
		sale.IsActive,
		sale.IsPaused,
		int16(sale.Bump),
		sale.CreatedAt,
		sale.UpdatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

// Get retrieves a sale record by its address. Returns ErrNotFound if not exists.
func (s *SaleStore) Get(ctx context.Context, address string) (*domain.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE address = $1`

	row := s.pool.db(ctx).QueryRow(ctx, query, address)
	sale, err := scanSale(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	return sale, nil
}

// GetForUpdate retrieves a sale record and locks its row for the enclosing
// instruction transaction, serializing concurrent instructions on the sale.
func (s *SaleStore) GetForUpdate(ctx context.Context, address string) (*domain.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE address = $1 FOR UPDATE`

	row := s.pool.db(ctx).QueryRow(ctx, query, address)
	sale, err := scanSale(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get sale for update: %w", err)
	}
	return sale, nil
}

// Update overwrites an existing sale record. Returns ErrNotFound if not exists.
func (s *SaleStore) Update(ctx context.Context, sale *domain.Sale) error {
	if sale == nil || sale.Address == "" {
		return storage.ErrInvalidInput
	}

	query := `
		UPDATE sales SET
			token_price = $2, token_price_usd = $3, max_price_age = $4,
			max_tokens = $5, min_purchase = $6, max_purchase = $7,
			tokens_sold = $8, total_raised = $9, end_time = $10,
			is_active = $11, is_paused = $12, updated_at = $13
		WHERE address = $1
	`

	tag, err := s.pool.db(ctx).Exec(ctx, query,
		sale.Address,
		int64(sale.TokenPrice),
		int64(sale.TokenPriceUSD),
		sale.MaxPriceAge,
		int64(sale.MaxTokens),
		int64(sale.MinPurchase),
		int64(sale.MaxPurchase),
		int64(sale.TokensSold),
		int64(sale.TotalRaised),
		sale.EndTime,
		sale.IsActive,
		sale.IsPaused,
		sale.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update sale: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// List retrieves all sale records, ordered by start_time ASC.
func (s *SaleStore) List(ctx context.Context) ([]*domain.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales ORDER BY start_time ASC, address ASC`

	rows, err := s.pool.db(ctx).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()

	return scanSales(rows)
}

// scanSale scans a single row into a Sale.
func scanSale(row pgx.Row) (*domain.Sale, error) {
	var (
		sale          domain.Sale
		pricing       string
		tokenPrice    int64
		tokenPriceUSD int64
		maxTokens     int64
		minPurchase   int64
		maxPurchase   int64
		tokensSold    int64
		totalRaised   int64
		bump          int16
	)

	err := row.Scan(
		&sale.Address,
		&sale.Authority,
		&sale.TokenMint,
		&sale.Treasury,
		&sale.Vault,
		&sale.PriceOracle,
		&pricing,
		&tokenPrice,
		&tokenPriceUSD,
		&sale.MaxPriceAge,
		&maxTokens,
		&minPurchase,
		&maxPurchase,
		&tokensSold,
		&totalRaised,
		&sale.StartTime,
		&sale.EndTime,
		&sale.IsActive,
		&sale.IsPaused,
		&bump,
		&sale.CreatedAt,
		&sale.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	sale.Pricing = domain.PricingKind(pricing)
	sale.TokenPrice = uint64(tokenPrice)
	sale.TokenPriceUSD = uint64(tokenPriceUSD)
	sale.MaxTokens = uint64(maxTokens)
	sale.MinPurchase = uint64(minPurchase)
	sale.MaxPurchase = uint64(maxPurchase)
	sale.TokensSold = uint64(tokensSold)
	sale.TotalRaised = uint64(totalRaised)
	sale.Bump = uint8(bump)
	return &sale, nil
}

// scanSales scans multiple rows into a slice of Sale.
func scanSales(rows pgx.Rows) ([]*domain.Sale, error) {
	var sales []*domain.Sale

	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sale row: %w", err)
		}
		sales = append(sales, sale)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sale rows: %w", err)
	}

	return sales, nil
}
