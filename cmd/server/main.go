// Package main runs the token sale HTTP service.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ico-sale-engine/internal/api"
	"ico-sale-engine/internal/config"
	"ico-sale-engine/internal/engine"
	"ico-sale-engine/internal/ledger"
	"ico-sale-engine/internal/oracle"
	"ico-sale-engine/internal/storage"
	chstore "ico-sale-engine/internal/storage/clickhouse"
	"ico-sale-engine/internal/storage/memory"
	"ico-sale-engine/internal/storage/migrations"
	pgstore "ico-sale-engine/internal/storage/postgres"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stores, closeStores, err := createStores(ctx, cfg)
	if err != nil {
		sugar.Fatalw("storage initialization error", "error", err.Error())
	}
	defer closeStores()

	quotes, closeQuotes, err := createOracleSource(ctx, cfg)
	if err != nil {
		sugar.Fatalw("oracle initialization error", "error", err.Error())
	}
	defer closeQuotes()

	eng := engine.New(engine.Options{
		Sales:         stores.sales,
		Contributions: stores.contributions,
		Events:        stores.events,
		Ledger:        stores.ledger,
		Quotes:        quotes,
		Tx:            stores.tx,
		Logger:        logger,
	})

	h := api.NewHandler(eng, logger)

	server := &http.Server{
		Addr:    cfg.RunAddress,
		Handler: h.SetupRouter(),
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sugar.Infow("starting sale server",
			"addr", cfg.RunAddress,
			"storage", storageMode(cfg),
			"oracle", cfg.OracleSource)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}

type saleStores struct {
	sales         storage.SaleStore
	contributions storage.ContributionStore
	events        storage.EventStore
	ledger        ledger.Ledger
	tx            storage.TxManager
}

// createStores selects the storage backend. An empty database URI runs
// everything in memory; otherwise records and the ledger live in Postgres
// and the event log goes to ClickHouse when a DSN is configured.
func createStores(ctx context.Context, cfg *config.Config) (*saleStores, func(), error) {
	if cfg.DatabaseURI == "" {
		stores := &saleStores{
			sales:         memory.NewSaleStore(),
			contributions: memory.NewContributionStore(),
			events:        memory.NewEventStore(),
			ledger:        ledger.NewMemoryLedger(),
			tx:            memory.NewTx(),
		}
		return stores, func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, cfg.DatabaseURI)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("postgres migrations: %w", err)
	}

	stores := &saleStores{
		sales:         pgstore.NewSaleStore(pool),
		contributions: pgstore.NewContributionStore(pool),
		events:        memory.NewEventStore(),
		ledger:        pgstore.NewLedgerStore(pool),
		tx:            pgstore.NewTx(pool),
	}
	cleanup := func() { pool.Close() }

	if cfg.ClickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
		}
		stores.events = chstore.NewEventStore(conn)
		cleanup = func() {
			conn.Close()
			pool.Close()
		}
	}

	return stores, cleanup, nil
}

// createOracleSource builds the price source for oracle-priced sales. The
// static source pins the configured price and refreshes its publish time
// so the quote never goes stale.
func createOracleSource(ctx context.Context, cfg *config.Config) (oracle.Source, func(), error) {
	switch cfg.OracleSource {
	case config.OracleStatic:
		src := oracle.NewStaticSource()
		pin := func() {
			src.Set(&oracle.Quote{
				Feed:        cfg.OracleFeed,
				Price:       cfg.OracleStaticPrice,
				PublishTime: time.Now().Unix(),
			})
		}
		pin()
		go func() {
			ticker := time.NewTicker(time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					pin()
				}
			}
		}()
		return src, func() {}, nil

	case config.OracleStream:
		src, err := oracle.NewStreamSource(ctx, cfg.OracleEndpoint, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("connect price stream: %w", err)
		}
		if err := src.Subscribe(cfg.OracleFeed); err != nil {
			src.Close()
			return nil, nil, fmt.Errorf("subscribe feed %s: %w", cfg.OracleFeed, err)
		}
		return src, func() { src.Close() }, nil

	case config.OracleHTTP:
		return oracle.NewHTTPSource(cfg.OracleEndpoint), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown oracle source %q", cfg.OracleSource)
	}
}

func storageMode(cfg *config.Config) string {
	switch {
	case cfg.DatabaseURI == "":
		return "memory"
	case cfg.ClickhouseDSN != "":
		return "postgres+clickhouse"
	default:
		return "postgres"
	}
}
