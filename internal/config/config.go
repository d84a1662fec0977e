// Package config reads server settings from command-line flags and the
// environment. Flags take precedence over environment variables, which
// take precedence over the built-in defaults.
package config

import (
	"flag"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Oracle source kinds accepted by the server.
const (
	OracleStatic = "static"
	OracleStream = "stream"
	OracleHTTP   = "http"
)

// Config holds the sale server settings. An empty DatabaseURI selects the
// in-memory backend; otherwise records live in postgres and events in
// ClickHouse when ClickhouseDSN is set.
type Config struct {
	RunAddress        string `env:"RUN_ADDRESS"`
	DatabaseURI       string `env:"DATABASE_URI"`
	ClickhouseDSN     string `env:"CLICKHOUSE_DSN"`
	OracleSource      string `env:"ORACLE_SOURCE"`
	OracleEndpoint    string `env:"ORACLE_ENDPOINT"`
	OracleFeed        string `env:"ORACLE_FEED"`
	OracleStaticPrice uint64 `env:"ORACLE_STATIC_PRICE"`
}

// Parse reads the configuration from flags and environment variables.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = "localhost:8080"
	}
	if cfg.OracleSource == "" {
		cfg.OracleSource = OracleStatic
	}
	if cfg.OracleFeed == "" {
		cfg.OracleFeed = "sol-usd"
	}
	if cfg.OracleStaticPrice == 0 {
		// $150.00 per native coin at 1e8 fixed decimals.
		cfg.OracleStaticPrice = 15_000_000_000
	}

	flag.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "address and port for HTTP server")
	flag.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "postgres URI; empty runs the in-memory backend")
	flag.StringVar(&cfg.ClickhouseDSN, "c", cfg.ClickhouseDSN, "ClickHouse DSN for the event sink")
	flag.StringVar(&cfg.OracleSource, "o", cfg.OracleSource, "price source kind: static, stream, or http")
	flag.StringVar(&cfg.OracleEndpoint, "e", cfg.OracleEndpoint, "price source endpoint for stream and http kinds")
	flag.StringVar(&cfg.OracleFeed, "f", cfg.OracleFeed, "price feed identity")
	flag.Uint64Var(&cfg.OracleStaticPrice, "p", cfg.OracleStaticPrice, "pinned quote price for the static source")

	flag.Parse()

	switch cfg.OracleSource {
	case OracleStatic, OracleStream, OracleHTTP:
	default:
		return nil, fmt.Errorf("unknown oracle source %q", cfg.OracleSource)
	}
	if cfg.OracleSource != OracleStatic && cfg.OracleEndpoint == "" {
		return nil, fmt.Errorf("oracle source %q requires an endpoint", cfg.OracleSource)
	}

	return cfg, nil
}
