// Package engine executes sale instructions: the admin lifecycle
// (initialize, update params, pause, end, withdraw) and the purchase
// protocol. Every instruction validates against current record state,
// then commits its record updates, custody transfers, and audit event
// as one unit through the transaction manager.
package engine

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"ico-sale-engine/internal/domain"
	"ico-sale-engine/internal/ledger"
	"ico-sale-engine/internal/observability"
	"ico-sale-engine/internal/oracle"
	"ico-sale-engine/internal/pda"
	"ico-sale-engine/internal/pricing"
	"ico-sale-engine/internal/storage"
)

// Engine errors
var (
	// ErrMissingReference is returned when a required identity or account
	// reference is empty.
	ErrMissingReference = errors.New("missing required account reference")
)

// Operation labels used for metrics and logging.
const (
	opInitializeSale = "initialize_sale"
	opUpdateParams   = "update_sale_params"
	opTogglePause    = "toggle_pause"
	opEndSale        = "end_sale"
	opPurchase       = "purchase_tokens"
	opWithdraw       = "withdraw_remaining_tokens"
)

// Engine binds the record stores, custody ledger, price source, and clock
// into the instruction set.
type Engine struct {
	sales         storage.SaleStore
	contributions storage.ContributionStore
	events        storage.EventStore
	ledger        ledger.Ledger
	quotes        oracle.Source
	tx            storage.TxManager
	clock         Clock
	logger        *zap.Logger
}

// Options contains the collaborators for creating an Engine.
type Options struct {
	Sales         storage.SaleStore
	Contributions storage.ContributionStore
	Events        storage.EventStore
	Ledger        ledger.Ledger
	Quotes        oracle.Source // required only when oracle-priced sales exist
	Tx            storage.TxManager
	Clock         Clock       // defaults to SystemClock
	Logger        *zap.Logger // defaults to a no-op logger
}

// New creates an Engine.
func New(opts Options) *Engine {
	clock := opts.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		sales:         opts.Sales,
		contributions: opts.Contributions,
		events:        opts.Events,
		ledger:        opts.Ledger,
		quotes:        opts.Quotes,
		tx:            opts.Tx,
		clock:         clock,
		logger:        logger,
	}
}

// InitializeSaleRequest carries the account references and parameters for
// a new sale.
type InitializeSaleRequest struct {
	Authority   string
	TokenMint   string
	Treasury    string
	PriceOracle string // required for ORACLE_USD pricing
	Params      domain.SaleParams
}

// InitializeSale creates the sale record and provisions its custody vault.
// The sale window opens immediately: start_time is the current time and
// end_time is start_time plus the configured duration.
func (e *Engine) InitializeSale(ctx context.Context, req InitializeSaleRequest) (sale *domain.Sale, err error) {
	start := time.Now()
	defer func() { e.record(opInitializeSale, start, err) }()

	if req.Authority == "" || req.TokenMint == "" || req.Treasury == "" {
		return nil, ErrMissingReference
	}
	if err := req.Params.Validate(); err != nil {
		return nil, err
	}
	if req.Params.Pricing == domain.PricingOracleUSD && req.PriceOracle == "" {
		return nil, pricing.ErrMissingOracle
	}

	address, bump, err := pda.DeriveSale(req.Authority, req.TokenMint)
	if err != nil {
		return nil, err
	}
	vault, _, err := pda.DeriveTokenAccount(address, req.TokenMint)
	if err != nil {
		return nil, err
	}

	now := e.clock.Now()
	sale = &domain.Sale{
		Address:       address,
		Authority:     req.Authority,
		TokenMint:     req.TokenMint,
		Treasury:      req.Treasury,
		Vault:         vault,
		PriceOracle:   req.PriceOracle,
		Pricing:       req.Params.Pricing,
		TokenPrice:    req.Params.TokenPrice,
		TokenPriceUSD: req.Params.TokenPriceUSD,
		MaxPriceAge:   req.Params.MaxPriceAge,
		MaxTokens:     req.Params.MaxTokens,
		MinPurchase:   req.Params.MinPurchase,
		MaxPurchase:   req.Params.MaxPurchase,
		StartTime:     now,
		EndTime:       now + req.Params.Duration,
		IsActive:      true,
		IsPaused:      false,
		Bump:          bump,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = e.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := e.sales.Get(ctx, address); err == nil {
			return storage.ErrDuplicateKey
		} else if !errors.Is(err, storage.ErrNotFound) {
			return err
		}
		if err := e.ledger.CreateAccount(ctx, vault, req.TokenMint, address); err != nil {
			return err
		}
		if err := e.ledger.CreateAccount(ctx, req.Treasury, ledger.NativeAsset, req.Treasury); err != nil {
			return err
		}
		if err := e.sales.Insert(ctx, sale); err != nil {
			return err
		}
		return e.events.Append(ctx, &domain.SaleEvent{
			Sale:        address,
			Kind:        domain.EventSaleInitialized,
			Actor:       req.Authority,
			Price:       activePrice(sale),
			MaxTokens:   sale.MaxTokens,
			MinPurchase: sale.MinPurchase,
			MaxPurchase: sale.MaxPurchase,
			StartTime:   sale.StartTime,
			EndTime:     sale.EndTime,
			OccurredAt:  now,
		})
	})
	if err != nil {
		return nil, err
	}

	observability.RecordSaleInitialized()
	e.logger.Info("sale initialized",
		zap.String("sale", address),
		zap.String("authority", req.Authority),
		zap.String("mint", req.TokenMint),
		zap.String("pricing", string(sale.Pricing)),
		zap.Uint64("max_tokens", sale.MaxTokens),
		zap.Int64("end_time", sale.EndTime))
	return sale, nil
}

// authorizedSale loads the sale under the instruction lock and checks the
// caller against its authority.
func (e *Engine) authorizedSale(ctx context.Context, saleAddr, authority string) (*domain.Sale, error) {
	sale, err := e.sales.GetForUpdate(ctx, saleAddr)
	if err != nil {
		return nil, err
	}
	if authority == "" || authority != sale.Authority {
		return nil, domain.ErrUnauthorized
	}
	return sale, nil
}

// activePrice returns the price parameter relevant to the sale's pricing
// kind, for event payloads.
func activePrice(s *domain.Sale) uint64 {
	if s.Pricing == domain.PricingOracleUSD {
		return s.TokenPriceUSD
	}
	return s.TokenPrice
}

// record updates the instruction metrics for one completed operation.
func (e *Engine) record(op string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	observability.RecordInstruction(op, outcome, time.Since(start).Seconds())
	if err == nil {
		observability.RecordSuccess(e.clock.Now())
	}
}
