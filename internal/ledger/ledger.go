// Package ledger is the custody collaborator: fungible balances held in
// accounts, moved by all-or-nothing transfer batches. A debit is authorized
// by presenting the owner identity of the source account; sale vaults are
// owned by the sale's derived address, so only a caller that can rebuild
// that derivation can move vault funds. The ledger itself never inspects
// sale state.
package ledger

import (
	"context"
	"errors"
)

// NativeAsset is the asset tag for the base-layer currency. Native
// accounts are addressed by their owner identity directly.
const NativeAsset = "native"

// Account is one custody account.
type Account struct {
	Address string // primary key
	Asset   string // NativeAsset or a token mint address
	Owner   string // identity whose authority debits the account
	Balance uint64
}

// Transfer moves Amount units of Asset between two accounts of that asset.
// Authority must equal the source account's owner.
type Transfer struct {
	Asset     string
	From      string
	To        string
	Amount    uint64
	Authority string
}

// Ledger provides custody accounts and atomic transfer batches.
type Ledger interface {
	// CreateAccount registers an account with a zero balance. Creating an
	// account that already exists with the same asset and owner is a no-op;
	// a conflicting registration returns ErrAccountExists.
	CreateAccount(ctx context.Context, address, asset, owner string) error

	// Mint credits newly issued units to an account. This is a boundary
	// operation for provisioning sale inventory and test fixtures; the
	// purchase path never mints.
	Mint(ctx context.Context, address string, amount uint64) error

	// Get returns the account record. Returns ErrAccountNotFound.
	Get(ctx context.Context, address string) (*Account, error)

	// Balance returns the account's balance. Returns ErrAccountNotFound.
	Balance(ctx context.Context, address string) (uint64, error)

	// Apply executes the transfers as one unit. Every authorization,
	// asset match, source balance, and credit overflow is checked before
	// any balance changes; on any failure nothing is applied.
	Apply(ctx context.Context, transfers []Transfer) error
}

// Ledger errors.
var (
	// ErrInvalidAccount is returned when a registration has an empty
	// address, asset, or owner.
	ErrInvalidAccount = errors.New("invalid account parameters")

	// ErrAccountNotFound is returned when a referenced account does not exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrAccountExists is returned when a registration conflicts with an
	// existing account's asset or owner.
	ErrAccountExists = errors.New("account already exists with different asset or owner")

	// ErrInsufficientFunds is returned when a debit exceeds the source balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrUnauthorized is returned when a transfer's authority is not the
	// source account's owner.
	ErrUnauthorized = errors.New("authority does not own the source account")

	// ErrAssetMismatch is returned when a transfer names an account of a
	// different asset.
	ErrAssetMismatch = errors.New("transfer asset does not match account asset")

	// ErrBalanceOverflow is returned when a credit would overflow the
	// destination balance.
	ErrBalanceOverflow = errors.New("credit would overflow destination balance")
)
