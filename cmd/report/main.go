// Package main renders the Markdown report for a sale from the event log
// in ClickHouse. Without -sale it lists the sale records found in
// Postgres so the address can be picked out first.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"ico-sale-engine/internal/report"
	chstore "ico-sale-engine/internal/storage/clickhouse"
	pgstore "ico-sale-engine/internal/storage/postgres"
)

func main() {
	saleAddr := flag.String("sale", "", "Sale address to report on")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string (for listing sales)")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string (event log)")
	out := flag.String("out", "", "Write the report to this file instead of stdout")
	flag.Parse()

	ctx := context.Background()

	if *saleAddr == "" {
		if *postgresDSN == "" {
			fmt.Fprintln(os.Stderr, "Error: --sale is required, or --postgres-dsn to list sales")
			os.Exit(1)
		}
		listSales(ctx, *postgresDSN)
		return
	}

	if *clickhouseDSN == "" {
		fmt.Fprintln(os.Stderr, "Error: --clickhouse-dsn is required to read the event log")
		os.Exit(1)
	}

	conn, err := chstore.NewConn(ctx, *clickhouseDSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to clickhouse: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	events, err := chstore.NewEventStore(conn).ListBySale(ctx, *saleAddr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading events: %v\n", err)
		os.Exit(1)
	}

	summary, err := report.BuildSummary(events)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building summary for %s: %v\n", *saleAddr, err)
		os.Exit(1)
	}

	md := report.RenderMarkdown(summary)
	if *out == "" {
		fmt.Print(md)
		return
	}
	if err := os.WriteFile(*out, []byte(md), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing report: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Report written to %s\n", *out)
}

func listSales(ctx context.Context, dsn string) {
	pool, err := pgstore.NewPool(ctx, dsn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to postgres: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	sales, err := pgstore.NewSaleStore(pool).List(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing sales: %v\n", err)
		os.Exit(1)
	}
	if len(sales) == 0 {
		fmt.Println("No sales recorded.")
		return
	}

	fmt.Printf("%-44s %-10s %-12s %-12s %s\n", "ADDRESS", "PRICING", "SOLD", "SUPPLY", "ACTIVE")
	for _, s := range sales {
		fmt.Printf("%-44s %-10s %-12d %-12d %v\n", s.Address, s.Pricing, s.TokensSold, s.MaxTokens, s.IsActive)
	}
}
