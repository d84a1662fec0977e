package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"ico-sale-engine/internal/domain"
	"ico-sale-engine/internal/ledger"
	"ico-sale-engine/internal/observability"
	"ico-sale-engine/internal/pda"
)

// WithdrawResult reports a completed vault withdrawal.
type WithdrawResult struct {
	Sale        *domain.Sale
	Amount      uint64
	Destination string
}

// WithdrawRemainingTokens drains the sale vault into the authority's token
// account. Allowed once the sale has concluded: ended by the authority or
// past its natural end time. The sale record itself is untouched, so the
// reported totals remain the final sale figures.
func (e *Engine) WithdrawRemainingTokens(ctx context.Context, saleAddr, authority string) (res *WithdrawResult, err error) {
	start := time.Now()
	defer func() { e.record(opWithdraw, start, err) }()

	err = e.tx.WithinTx(ctx, func(ctx context.Context) error {
		s, err := e.authorizedSale(ctx, saleAddr, authority)
		if err != nil {
			return err
		}
		now := e.clock.Now()
		if !s.Concluded(now) {
			return domain.ErrSaleStillActive
		}

		remaining, err := e.ledger.Balance(ctx, s.Vault)
		if err != nil {
			return err
		}
		destination, _, err := pda.DeriveTokenAccount(s.Authority, s.TokenMint)
		if err != nil {
			return err
		}

		if remaining > 0 {
			if err := e.ledger.CreateAccount(ctx, destination, s.TokenMint, s.Authority); err != nil {
				return err
			}
			signer, err := pda.SaleAddressWithBump(s.Authority, s.TokenMint, s.Bump)
			if err != nil {
				return err
			}
			transfers := []ledger.Transfer{
				{Asset: s.TokenMint, From: s.Vault, To: destination, Amount: remaining, Authority: signer},
			}
			if err := e.ledger.Apply(ctx, transfers); err != nil {
				return err
			}
		}

		res = &WithdrawResult{Sale: s, Amount: remaining, Destination: destination}
		return e.events.Append(ctx, &domain.SaleEvent{
			Sale:        s.Address,
			Kind:        domain.EventTokensWithdrawn,
			Actor:       authority,
			TokenAmount: remaining,
			OccurredAt:  now,
		})
	})
	if err != nil {
		return nil, err
	}

	observability.RecordWithdrawal()
	e.logger.Info("remaining tokens withdrawn",
		zap.String("sale", saleAddr),
		zap.Uint64("amount", res.Amount),
		zap.String("destination", res.Destination))
	return res, nil
}
