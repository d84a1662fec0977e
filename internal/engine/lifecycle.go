package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"ico-sale-engine/internal/domain"
	"ico-sale-engine/internal/observability"
)

// UpdateSaleParams overwrites the sale's mutable pricing and cap fields.
// Authority-only, and only strictly before the sale window opens; the
// window itself never changes. Absent fields are left untouched and the
// min/max purchase relation is re-validated over the result.
func (e *Engine) UpdateSaleParams(ctx context.Context, saleAddr, authority string, update domain.SaleParamsUpdate) (sale *domain.Sale, err error) {
	start := time.Now()
	defer func() { e.record(opUpdateParams, start, err) }()

	err = e.tx.WithinTx(ctx, func(ctx context.Context) error {
		s, err := e.authorizedSale(ctx, saleAddr, authority)
		if err != nil {
			return err
		}
		if !s.IsActive {
			return domain.ErrSaleNotActive
		}
		now := e.clock.Now()
		if now >= s.StartTime {
			return domain.ErrSaleAlreadyStarted
		}
		if err := update.Apply(s); err != nil {
			return err
		}
		s.UpdatedAt = now
		if err := e.sales.Update(ctx, s); err != nil {
			return err
		}
		sale = s
		return e.events.Append(ctx, &domain.SaleEvent{
			Sale:        s.Address,
			Kind:        domain.EventSaleParamsUpdated,
			Actor:       authority,
			Price:       activePrice(s),
			MaxTokens:   s.MaxTokens,
			MinPurchase: s.MinPurchase,
			MaxPurchase: s.MaxPurchase,
			OccurredAt:  now,
		})
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("sale params updated",
		zap.String("sale", saleAddr),
		zap.Uint64("price", activePrice(sale)),
		zap.Uint64("max_tokens", sale.MaxTokens))
	return sale, nil
}

// TogglePause flips the sale's paused flag. Authority-only; rejected once
// the sale is ended, since ended sales are immutable.
func (e *Engine) TogglePause(ctx context.Context, saleAddr, authority string) (sale *domain.Sale, err error) {
	start := time.Now()
	defer func() { e.record(opTogglePause, start, err) }()

	err = e.tx.WithinTx(ctx, func(ctx context.Context) error {
		s, err := e.authorizedSale(ctx, saleAddr, authority)
		if err != nil {
			return err
		}
		if !s.IsActive {
			return domain.ErrSaleNotActive
		}
		now := e.clock.Now()
		s.IsPaused = !s.IsPaused
		s.UpdatedAt = now
		if err := e.sales.Update(ctx, s); err != nil {
			return err
		}
		sale = s
		return e.events.Append(ctx, &domain.SaleEvent{
			Sale:       s.Address,
			Kind:       domain.EventPauseToggled,
			Actor:      authority,
			Paused:     s.IsPaused,
			OccurredAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("sale pause toggled",
		zap.String("sale", saleAddr),
		zap.Bool("paused", sale.IsPaused))
	return sale, nil
}

// EndSale closes the sale. The active flag drops permanently and end_time
// is truncated to now when the sale ends before its natural close. Ending
// an already-ended sale succeeds without mutating anything or emitting a
// second event.
func (e *Engine) EndSale(ctx context.Context, saleAddr, authority string) (sale *domain.Sale, err error) {
	start := time.Now()
	var ended bool
	defer func() { e.record(opEndSale, start, err) }()

	err = e.tx.WithinTx(ctx, func(ctx context.Context) error {
		s, err := e.authorizedSale(ctx, saleAddr, authority)
		if err != nil {
			return err
		}
		if !s.IsActive {
			sale = s
			return nil
		}
		now := e.clock.Now()
		s.IsActive = false
		if now < s.EndTime {
			s.EndTime = now
		}
		s.UpdatedAt = now
		if err := e.sales.Update(ctx, s); err != nil {
			return err
		}
		ended = true
		sale = s
		return e.events.Append(ctx, &domain.SaleEvent{
			Sale:        s.Address,
			Kind:        domain.EventSaleEnded,
			Actor:       authority,
			TokensSold:  s.TokensSold,
			TotalRaised: s.TotalRaised,
			EndTime:     s.EndTime,
			OccurredAt:  now,
		})
	})
	if err != nil {
		return nil, err
	}

	if ended {
		observability.RecordSaleEnded()
		e.logger.Info("sale ended",
			zap.String("sale", saleAddr),
			zap.Uint64("tokens_sold", sale.TokensSold),
			zap.Uint64("total_raised", sale.TotalRaised),
			zap.Int64("end_time", sale.EndTime))
	}
	return sale, nil
}
