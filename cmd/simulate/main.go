// Package main runs a deterministic sale scenario on the in-memory
// backend and prints the resulting report. Useful as a smoke run of the
// full instruction set without any external services.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"

	"ico-sale-engine/internal/domain"
	"ico-sale-engine/internal/engine"
	"ico-sale-engine/internal/ledger"
	"ico-sale-engine/internal/report"
	"ico-sale-engine/internal/storage/memory"
)

const genesis = int64(1_700_000_000)

func main() {
	seed := flag.Int64("seed", 42, "Random seed for the purchase script")
	buyers := flag.Int("buyers", 6, "Number of funded buyers")
	purchases := flag.Int("purchases", 40, "Number of purchase attempts")
	out := flag.String("out", "", "Write the Markdown report to this file instead of stdout")
	flag.Parse()

	logger := log.New(os.Stderr, "[simulate] ", log.LstdFlags)
	ctx := context.Background()

	clock := engine.NewManualClock(genesis)
	eng := engine.New(engine.Options{
		Sales:         memory.NewSaleStore(),
		Contributions: memory.NewContributionStore(),
		Events:        memory.NewEventStore(),
		Ledger:        ledger.NewMemoryLedger(),
		Tx:            memory.NewTx(),
		Clock:         clock,
	})

	sale, err := eng.InitializeSale(ctx, engine.InitializeSaleRequest{
		Authority: "authority-sim",
		TokenMint: "mint-sim",
		Treasury:  "treasury-sim",
		Params: domain.SaleParams{
			Pricing:     domain.PricingFixed,
			TokenPrice:  1_000_000,
			MaxTokens:   50_000,
			MinPurchase: 100,
			MaxPurchase: 10_000,
			Duration:    3600,
		},
	})
	if err != nil {
		fatalf("initialize sale: %v", err)
	}
	logger.Printf("sale %s initialized: supply=%d window=[%d, %d]",
		sale.Address, sale.MaxTokens, sale.StartTime, sale.EndTime)

	if err := eng.MintTokens(ctx, sale.Vault, sale.MaxTokens); err != nil {
		fatalf("mint vault supply: %v", err)
	}

	names := make([]string, 0, *buyers)
	for i := 0; i < *buyers; i++ {
		name := fmt.Sprintf("buyer-%02d", i+1)
		if err := eng.CreateLedgerAccount(ctx, name, ledger.NativeAsset, name); err != nil {
			fatalf("create account %s: %v", name, err)
		}
		if err := eng.MintTokens(ctx, name, 15_000_000_000); err != nil {
			fatalf("fund %s: %v", name, err)
		}
		names = append(names, name)
	}

	rng := rand.New(rand.NewSource(*seed))
	pauseAt := *purchases / 3
	resumeAt := pauseAt + 3

	settled, rejected := 0, 0
	for i := 0; i < *purchases; i++ {
		if i == pauseAt || i == resumeAt {
			if _, err := eng.TogglePause(ctx, sale.Address, sale.Authority); err != nil {
				fatalf("toggle pause: %v", err)
			}
		}

		clock.Advance(1 + rng.Int63n(30))
		buyer := names[rng.Intn(len(names))]
		amount := uint64(100 + rng.Int63n(100)*100)

		res, err := eng.PurchaseTokens(ctx, sale.Address, buyer, amount)
		if err != nil {
			rejected++
			logger.Printf("purchase rejected: buyer=%s amount=%d reason=%s", buyer, amount, reason(err))
			continue
		}
		settled++
		logger.Printf("purchase settled: buyer=%s amount=%d cost=%d sold=%d",
			buyer, amount, res.Cost, res.Sale.TokensSold)
	}

	clock.Advance(10)
	ended, err := eng.EndSale(ctx, sale.Address, sale.Authority)
	if err != nil {
		fatalf("end sale: %v", err)
	}
	wd, err := eng.WithdrawRemainingTokens(ctx, sale.Address, sale.Authority)
	if err != nil {
		fatalf("withdraw: %v", err)
	}
	logger.Printf("sale ended: sold=%d raised=%d withdrawn=%d",
		ended.TokensSold, ended.TotalRaised, wd.Amount)
	logger.Printf("script done: settled=%d rejected=%d", settled, rejected)

	events, err := eng.ListEvents(ctx, sale.Address)
	if err != nil {
		fatalf("list events: %v", err)
	}
	summary, err := report.BuildSummary(events)
	if err != nil {
		fatalf("build summary: %v", err)
	}

	md := report.RenderMarkdown(summary)
	if *out == "" {
		fmt.Print(md)
		return
	}
	if err := os.WriteFile(*out, []byte(md), 0o644); err != nil {
		fatalf("write report: %v", err)
	}
	logger.Printf("report written to %s", *out)
}

// reason prefers the stable error code for the script log.
func reason(err error) string {
	if code := domain.ErrorCode(err); code != "" {
		return code
	}
	return err.Error()
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
