package ledger

import (
	"context"
	"math"
	"sync"
)

// MemoryLedger is an in-memory Ledger implementation.
type MemoryLedger struct {
	mu       sync.RWMutex
	accounts map[string]*Account // keyed by address
}

// NewMemoryLedger creates an empty in-memory ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		accounts: make(map[string]*Account),
	}
}

// CreateAccount registers an account with a zero balance.
func (l *MemoryLedger) CreateAccount(_ context.Context, address, asset, owner string) error {
	if address == "" || asset == "" || owner == "" {
		return ErrInvalidAccount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if existing, ok := l.accounts[address]; ok {
		if existing.Asset != asset || existing.Owner != owner {
			return ErrAccountExists
		}
		return nil
	}

	l.accounts[address] = &Account{Address: address, Asset: asset, Owner: owner}
	return nil
}

// Mint credits newly issued units to an account.
func (l *MemoryLedger) Mint(_ context.Context, address string, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	acc, ok := l.accounts[address]
	if !ok {
		return ErrAccountNotFound
	}
	if acc.Balance > math.MaxUint64-amount {
		return ErrBalanceOverflow
	}
	acc.Balance += amount
	return nil
}

// Get returns a copy of the account record.
func (l *MemoryLedger) Get(_ context.Context, address string) (*Account, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	acc, ok := l.accounts[address]
	if !ok {
		return nil, ErrAccountNotFound
	}

	accountCopy := *acc
	return &accountCopy, nil
}

// Balance returns the account's balance.
func (l *MemoryLedger) Balance(_ context.Context, address string) (uint64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	acc, ok := l.accounts[address]
	if !ok {
		return 0, ErrAccountNotFound
	}
	return acc.Balance, nil
}

// Apply executes the transfers as one unit. Balances are staged against a
// scratch copy first, so a failure on the last transfer leaves the ledger
// exactly as it was.
func (l *MemoryLedger) Apply(_ context.Context, transfers []Transfer) error {
	if len(transfers) == 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	staged := make(map[string]uint64)
	balance := func(addr string) uint64 {
		if b, ok := staged[addr]; ok {
			return b
		}
		return l.accounts[addr].Balance
	}

	for _, t := range transfers {
		from, ok := l.accounts[t.From]
		if !ok {
			return ErrAccountNotFound
		}
		to, ok := l.accounts[t.To]
		if !ok {
			return ErrAccountNotFound
		}
		if from.Asset != t.Asset || to.Asset != t.Asset {
			return ErrAssetMismatch
		}
		if t.Authority != from.Owner {
			return ErrUnauthorized
		}

		fromBal := balance(t.From)
		if fromBal < t.Amount {
			return ErrInsufficientFunds
		}
		staged[t.From] = fromBal - t.Amount

		toBal := balance(t.To)
		if toBal > math.MaxUint64-t.Amount {
			return ErrBalanceOverflow
		}
		staged[t.To] = toBal + t.Amount
	}

	for addr, bal := range staged {
		l.accounts[addr].Balance = bal
	}
	return nil
}

// Compile-time interface check.
var _ Ledger = (*MemoryLedger)(nil)
