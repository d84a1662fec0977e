package engine

import (
	"context"

	"ico-sale-engine/internal/domain"
	"ico-sale-engine/internal/ledger"
	"ico-sale-engine/internal/pda"
)

// GetSale returns the sale record at address.
func (e *Engine) GetSale(ctx context.Context, address string) (*domain.Sale, error) {
	return e.sales.Get(ctx, address)
}

// ListSales returns all sale records ordered by start time.
func (e *Engine) ListSales(ctx context.Context) ([]*domain.Sale, error) {
	return e.sales.List(ctx)
}

// GetContribution returns the buyer's contribution record for the sale,
// located through the same derivation the purchase path uses.
func (e *Engine) GetContribution(ctx context.Context, saleAddr, user string) (*domain.Contribution, error) {
	address, _, err := pda.DeriveContribution(saleAddr, user)
	if err != nil {
		return nil, err
	}
	return e.contributions.Get(ctx, address)
}

// ListContributions returns every contribution recorded for the sale.
func (e *Engine) ListContributions(ctx context.Context, saleAddr string) ([]*domain.Contribution, error) {
	return e.contributions.ListBySale(ctx, saleAddr)
}

// ListEvents returns the sale's audit events in occurrence order.
func (e *Engine) ListEvents(ctx context.Context, saleAddr string) ([]*domain.SaleEvent, error) {
	return e.events.ListBySale(ctx, saleAddr)
}

// GetLedgerAccount returns the custody account at address.
func (e *Engine) GetLedgerAccount(ctx context.Context, address string) (*ledger.Account, error) {
	return e.ledger.Get(ctx, address)
}

// CreateLedgerAccount registers a custody account. Boundary operation for
// provisioning buyers and treasuries; idempotent per the ledger contract.
func (e *Engine) CreateLedgerAccount(ctx context.Context, address, asset, owner string) error {
	return e.ledger.CreateAccount(ctx, address, asset, owner)
}

// MintTokens credits newly issued units to an account. Boundary operation
// for funding sale vaults and buyer balances.
func (e *Engine) MintTokens(ctx context.Context, address string, amount uint64) error {
	return e.ledger.Mint(ctx, address, amount)
}
