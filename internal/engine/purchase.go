package engine

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"ico-sale-engine/internal/checked"
	"ico-sale-engine/internal/domain"
	"ico-sale-engine/internal/ledger"
	"ico-sale-engine/internal/observability"
	"ico-sale-engine/internal/oracle"
	"ico-sale-engine/internal/pda"
	"ico-sale-engine/internal/pricing"
	"ico-sale-engine/internal/storage"
)

// PurchaseResult reports the committed effects of one purchase.
type PurchaseResult struct {
	Sale         *domain.Sale
	Contribution *domain.Contribution
	Cost         uint64
}

// PurchaseTokens sells amount tokens to the buyer at the sale's current
// price. The full validation sequence runs before any transfer: sale
// state, window, per-call bounds, supply cap, per-buyer cap, and for
// oracle-priced sales the quote checks. On success the vault pays out the
// tokens under the sale's derived authority, the buyer pays the treasury,
// and both records and the event log reflect the purchase, all in one
// committed unit.
func (e *Engine) PurchaseTokens(ctx context.Context, saleAddr, buyer string, amount uint64) (res *PurchaseResult, err error) {
	start := time.Now()
	defer func() { e.record(opPurchase, start, err) }()

	if buyer == "" {
		return nil, ErrMissingReference
	}

	var usedQuote *oracle.Quote
	var quotedAt int64

	err = e.tx.WithinTx(ctx, func(ctx context.Context) error {
		s, err := e.sales.GetForUpdate(ctx, saleAddr)
		if err != nil {
			return err
		}
		now := e.clock.Now()

		if err := validatePurchase(s, amount, now); err != nil {
			return err
		}

		newSold, err := checked.Add(s.TokensSold, amount)
		if err != nil {
			return domain.ErrMathOverflow
		}
		if newSold > s.MaxTokens {
			return domain.ErrExceedsMaxTokens
		}

		contribAddr, contribBump, err := pda.DeriveContribution(s.Address, buyer)
		if err != nil {
			return err
		}
		contrib, err := e.contributions.Get(ctx, contribAddr)
		created := false
		if errors.Is(err, storage.ErrNotFound) {
			contrib = &domain.Contribution{
				Address:   contribAddr,
				User:      buyer,
				Sale:      s.Address,
				Bump:      contribBump,
				CreatedAt: now,
			}
			created = true
		} else if err != nil {
			return err
		}

		newPurchased, err := checked.Add(contrib.TokensPurchased, amount)
		if err != nil {
			return domain.ErrMathOverflow
		}
		if newPurchased > s.MaxPurchase {
			return domain.ErrExceedsUserLimit
		}

		strategy, err := pricing.FromSale(s)
		if err != nil {
			return err
		}
		var quote *oracle.Quote
		if s.Pricing == domain.PricingOracleUSD {
			if e.quotes == nil {
				return domain.ErrInvalidPriceData
			}
			quote, err = e.quotes.Latest(ctx, s.PriceOracle)
			if err != nil {
				if errors.Is(err, oracle.ErrNoQuote) {
					return domain.ErrInvalidPriceData
				}
				return err
			}
		}
		cost, err := strategy.Cost(amount, s, quote, now)
		if err != nil {
			return err
		}

		newRaised, err := checked.Add(s.TotalRaised, cost)
		if err != nil {
			return domain.ErrMathOverflow
		}
		newContributed, err := checked.Add(contrib.SolContributed, cost)
		if err != nil {
			return domain.ErrMathOverflow
		}

		// Both balances are re-checked atomically inside Apply; reading
		// them first keeps a doomed purchase from provisioning accounts.
		vaultBalance, err := e.ledger.Balance(ctx, s.Vault)
		if err != nil {
			return err
		}
		if vaultBalance < amount {
			return ledger.ErrInsufficientFunds
		}
		buyerBalance, err := e.ledger.Balance(ctx, buyer)
		if err != nil {
			return err
		}
		if buyerBalance < cost {
			return ledger.ErrInsufficientFunds
		}

		buyerToken, _, err := pda.DeriveTokenAccount(buyer, s.TokenMint)
		if err != nil {
			return err
		}
		if err := e.ledger.CreateAccount(ctx, buyerToken, s.TokenMint, buyer); err != nil {
			return err
		}

		// The vault debit is authorized by rebuilding the sale's derived
		// address from its stored seeds and bump; the ledger checks it
		// against the vault owner.
		signer, err := pda.SaleAddressWithBump(s.Authority, s.TokenMint, s.Bump)
		if err != nil {
			return err
		}
		transfers := []ledger.Transfer{
			{Asset: s.TokenMint, From: s.Vault, To: buyerToken, Amount: amount, Authority: signer},
			{Asset: ledger.NativeAsset, From: buyer, To: s.Treasury, Amount: cost, Authority: buyer},
		}
		if err := e.ledger.Apply(ctx, transfers); err != nil {
			return err
		}

		s.TokensSold = newSold
		s.TotalRaised = newRaised
		s.UpdatedAt = now
		if err := e.sales.Update(ctx, s); err != nil {
			return err
		}

		contrib.TokensPurchased = newPurchased
		contrib.SolContributed = newContributed
		contrib.UpdatedAt = now
		if created {
			err = e.contributions.Insert(ctx, contrib)
		} else {
			err = e.contributions.Update(ctx, contrib)
		}
		if err != nil {
			return err
		}

		usedQuote = quote
		quotedAt = now
		res = &PurchaseResult{Sale: s, Contribution: contrib, Cost: cost}
		return e.events.Append(ctx, &domain.SaleEvent{
			Sale:         s.Address,
			Kind:         domain.EventTokensPurchased,
			Actor:        buyer,
			TokenAmount:  amount,
			NativeAmount: cost,
			TokensSold:   newSold,
			TotalRaised:  newRaised,
			OccurredAt:   now,
		})
	})
	if err != nil {
		if errors.Is(err, domain.ErrStalePriceData) || errors.Is(err, domain.ErrPriceFeedMismatch) || errors.Is(err, domain.ErrInvalidPriceData) {
			observability.RecordOracleError(domain.ErrorCode(err))
		}
		return nil, err
	}

	observability.RecordPurchase(amount, res.Cost)
	if usedQuote != nil {
		observability.RecordOracleQuote(usedQuote.Feed, float64(quotedAt-usedQuote.PublishTime))
	}
	e.logger.Info("tokens purchased",
		zap.String("sale", saleAddr),
		zap.String("buyer", buyer),
		zap.Uint64("amount", amount),
		zap.Uint64("cost", res.Cost),
		zap.Uint64("tokens_sold", res.Sale.TokensSold))
	return res, nil
}

// validatePurchase runs the state, window, and per-call amount checks in
// their required order, returning the first violation.
func validatePurchase(s *domain.Sale, amount uint64, now int64) error {
	if !s.IsActive {
		return domain.ErrSaleNotActive
	}
	if s.IsPaused {
		return domain.ErrSalePaused
	}
	if now < s.StartTime {
		return domain.ErrSaleNotStarted
	}
	if now > s.EndTime {
		return domain.ErrSaleEnded
	}
	if amount < s.MinPurchase {
		return domain.ErrBelowMinimumPurchase
	}
	if amount > s.MaxPurchase {
		return domain.ErrExceedsMaximumPurchase
	}
	return nil
}
