package postgres

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/jackc/pgx/v5"

	"ico-sale-engine/internal/ledger"
)

// LedgerStore implements ledger.Ledger using PostgreSQL. When an
// instruction transaction is open in the context the transfers join it;
// standalone calls open their own transaction.
type LedgerStore struct {
	pool *Pool
}

// NewLedgerStore creates a new LedgerStore.
func NewLedgerStore(pool *Pool) *LedgerStore {
	return &LedgerStore{pool: pool}
}

// Compile-time interface check.
var _ ledger.Ledger = (*LedgerStore)(nil)

// CreateAccount registers an account with a zero balance. Re-registering
// the same (asset, owner) is a no-op; a conflicting registration returns
// ErrAccountExists.
func (s *LedgerStore) CreateAccount(ctx context.Context, address, asset, owner string) error {
	if address == "" || asset == "" || owner == "" {
		return ledger.ErrInvalidAccount
	}

	db := s.pool.db(ctx)

	_, err := db.Exec(ctx, `
		INSERT INTO ledger_accounts (address, asset, owner_address, balance)
		VALUES ($1, $2, $3, 0)
		ON CONFLICT (address) DO NOTHING
	`, address, asset, owner)
	if err != nil {
		return fmt.Errorf("insert ledger account: %w", err)
	}

	var existingAsset, existingOwner string
	err = db.QueryRow(ctx,
		`SELECT asset, owner_address FROM ledger_accounts WHERE address = $1`,
		address,
	).Scan(&existingAsset, &existingOwner)
	if err != nil {
		return fmt.Errorf("select ledger account: %w", err)
	}

	if existingAsset != asset || existingOwner != owner {
		return ledger.ErrAccountExists
	}
	return nil
}

// Mint credits newly issued units to an account.
func (s *LedgerStore) Mint(ctx context.Context, address string, amount uint64) error {
	if amount > math.MaxInt64 {
		return ledger.ErrBalanceOverflow
	}

	tag, err := s.pool.db(ctx).Exec(ctx, `
		UPDATE ledger_accounts SET balance = balance + $2 WHERE address = $1
	`, address, int64(amount))
	if err != nil {
		return fmt.Errorf("mint to ledger account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ledger.ErrAccountNotFound
	}
	return nil
}

// Get returns the account record.
func (s *LedgerStore) Get(ctx context.Context, address string) (*ledger.Account, error) {
	row := s.pool.db(ctx).QueryRow(ctx, `
		SELECT address, asset, owner_address, balance
		FROM ledger_accounts
		WHERE address = $1
	`, address)

	acc, err := scanAccount(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, ledger.ErrAccountNotFound
		}
		return nil, fmt.Errorf("get ledger account: %w", err)
	}
	return acc, nil
}

// Balance returns the account's balance.
func (s *LedgerStore) Balance(ctx context.Context, address string) (uint64, error) {
	acc, err := s.Get(ctx, address)
	if err != nil {
		return 0, err
	}
	return acc.Balance, nil
}

// Apply executes the transfers as one unit. All touched rows are locked in
// address order, every transfer is validated against staged balances, and
// only then are the new balances written.
func (s *LedgerStore) Apply(ctx context.Context, transfers []ledger.Transfer) error {
	if len(transfers) == 0 {
		return nil
	}

	// Join the open instruction transaction if there is one.
	if _, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return s.applyIn(ctx, s.pool.db(ctx), transfers)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.applyIn(ctx, tx, transfers); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *LedgerStore) applyIn(ctx context.Context, db querier, transfers []ledger.Transfer) error {
	// Lock every touched account in address order so concurrent batches
	// cannot deadlock.
	addrSet := make(map[string]struct{}, len(transfers)*2)
	for _, t := range transfers {
		addrSet[t.From] = struct{}{}
		addrSet[t.To] = struct{}{}
	}
	addrs := make([]string, 0, len(addrSet))
	for addr := range addrSet {
		addrs = append(addrs, addr)
	}
	sort.Strings(addrs)

	rows, err := db.Query(ctx, `
		SELECT address, asset, owner_address, balance
		FROM ledger_accounts
		WHERE address = ANY($1)
		ORDER BY address
		FOR UPDATE
	`, addrs)
	if err != nil {
		return fmt.Errorf("lock ledger accounts: %w", err)
	}
	defer rows.Close()

	accounts := make(map[string]*ledger.Account, len(addrs))
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return fmt.Errorf("scan ledger account row: %w", err)
		}
		accounts[acc.Address] = acc
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate ledger account rows: %w", err)
	}

	staged := make(map[string]uint64)
	balance := func(addr string) uint64 {
		if b, ok := staged[addr]; ok {
			return b
		}
		return accounts[addr].Balance
	}

	for _, t := range transfers {
		// Balances are BIGINT; amounts past 2^63-1 cannot be represented.
		if t.Amount > math.MaxInt64 {
			return ledger.ErrBalanceOverflow
		}
		from, ok := accounts[t.From]
		if !ok {
			return ledger.ErrAccountNotFound
		}
		to, ok := accounts[t.To]
		if !ok {
			return ledger.ErrAccountNotFound
		}
		if from.Asset != t.Asset || to.Asset != t.Asset {
			return ledger.ErrAssetMismatch
		}
		if t.Authority != from.Owner {
			return ledger.ErrUnauthorized
		}

		fromBal := balance(t.From)
		if fromBal < t.Amount {
			return ledger.ErrInsufficientFunds
		}
		staged[t.From] = fromBal - t.Amount

		toBal := balance(t.To)
		if toBal > math.MaxInt64-t.Amount {
			return ledger.ErrBalanceOverflow
		}
		staged[t.To] = toBal + t.Amount
	}

	for addr, bal := range staged {
		if _, err := db.Exec(ctx,
			`UPDATE ledger_accounts SET balance = $2 WHERE address = $1`,
			addr, int64(bal),
		); err != nil {
			return fmt.Errorf("update ledger balance: %w", err)
		}
	}
	return nil
}

// scanAccount scans a single row into a ledger Account.
func scanAccount(row pgx.Row) (*ledger.Account, error) {
	var (
		acc     ledger.Account
		balance int64
	)

	err := row.Scan(&acc.Address, &acc.Asset, &acc.Owner, &balance)
	if err != nil {
		return nil, err
	}

	acc.Balance = uint64(balance)
	return &acc, nil
}
