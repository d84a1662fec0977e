package pricing

import (
	"errors"
	"math"
	"testing"

	"ico-sale-engine/internal/domain"
	"ico-sale-engine/internal/oracle"
)

func fixedSale() *domain.Sale {
	return &domain.Sale{
		Pricing:    domain.PricingFixed,
		TokenPrice: 1_000_000,
	}
}

func oracleSale() *domain.Sale {
	return &domain.Sale{
		Pricing:       domain.PricingOracleUSD,
		PriceOracle:   "SOL/USD",
		TokenPriceUSD: 10_000_000, // $0.10 per token
		MaxPriceAge:   60,
	}
}

func solQuote(price uint64, publishTime int64) *oracle.Quote {
	return &oracle.Quote{Feed: "SOL/USD", Price: price, PublishTime: publishTime}
}

func TestFixed_Cost(t *testing.T) {
	cost, err := Fixed{}.Cost(1000, fixedSale(), nil, 0)
	if err != nil {
		t.Fatalf("Cost failed: %v", err)
	}
	if cost != 1_000_000_000 {
		t.Errorf("cost = %d, want 1_000_000_000", cost)
	}

	// No rounding ever: single token costs exactly the price.
	cost, err = Fixed{}.Cost(1, fixedSale(), nil, 0)
	if err != nil {
		t.Fatalf("Cost failed: %v", err)
	}
	if cost != 1_000_000 {
		t.Errorf("cost = %d, want 1_000_000", cost)
	}
}

func TestFixed_Cost_Overflow(t *testing.T) {
	sale := fixedSale()
	sale.TokenPrice = math.MaxUint64

	_, err := Fixed{}.Cost(2, sale, nil, 0)
	if !errors.Is(err, domain.ErrMathOverflow) {
		t.Errorf("Expected ErrMathOverflow, got %v", err)
	}
}

func TestOracleUSD_Cost(t *testing.T) {
	// $150 per SOL, fresh quote.
	now := int64(1700000000)
	quote := solQuote(15_000_000_000, now-30)

	cost, err := OracleUSD{}.Cost(1000, oracleSale(), quote, now)
	if err != nil {
		t.Fatalf("Cost failed: %v", err)
	}

	// 1000 tokens * $0.10 = $100 = 0.666... SOL at $150, rounded down.
	if cost != 666_666_666 {
		t.Errorf("cost = %d, want 666_666_666", cost)
	}
}

func TestOracleUSD_RoundingBound(t *testing.T) {
	// native*price <= usd*scale < (native+1)*price for assorted divisors.
	now := int64(1700000000)
	sale := oracleSale()

	// Amounts stay small enough that usd*scale fits in uint64 at the $0.10
	// token price: 1500 * 1e7 * 1e9 = 1.5e19 < 2^64.
	prices := []uint64{15_000_000_000, 9_999_999_999, 1, 3, 123_456_789, 20_000_000_000}
	amounts := []uint64{1, 7, 100, 999, 1500}

	for _, p := range prices {
		for _, amount := range amounts {
			quote := solQuote(p, now)
			native, err := OracleUSD{}.Cost(amount, sale, quote, now)
			if err != nil {
				t.Fatalf("Cost(amount=%d, price=%d) failed: %v", amount, p, err)
			}

			usdCost := amount * sale.TokenPriceUSD
			scaled := usdCost * domain.NativeUnitScale

			// Guard the test arithmetic itself against overflow.
			if usdCost/sale.TokenPriceUSD != amount || scaled/domain.NativeUnitScale != usdCost {
				t.Fatalf("test inputs overflow: amount=%d price=%d", amount, p)
			}

			if native*p > scaled {
				t.Errorf("amount=%d price=%d: native*price=%d exceeds scaled=%d", amount, p, native*p, scaled)
			}
			if (native+1)*p <= scaled {
				t.Errorf("amount=%d price=%d: cost not maximal, (native+1)*price=%d <= scaled=%d", amount, p, (native+1)*p, scaled)
			}
		}
	}
}

func TestOracleUSD_StaleQuote(t *testing.T) {
	now := int64(1700000000)
	sale := oracleSale() // max age 60s

	// Exactly at the bound is still fresh.
	quote := solQuote(15_000_000_000, now-60)
	if _, err := (OracleUSD{}).Cost(100, sale, quote, now); err != nil {
		t.Errorf("quote at max age rejected: %v", err)
	}

	// One second past the bound is stale.
	quote = solQuote(15_000_000_000, now-61)
	_, err := OracleUSD{}.Cost(100, sale, quote, now)
	if !errors.Is(err, domain.ErrStalePriceData) {
		t.Errorf("Expected ErrStalePriceData, got %v", err)
	}
}

func TestOracleUSD_FeedMismatch(t *testing.T) {
	now := int64(1700000000)
	quote := &oracle.Quote{Feed: "BTC/USD", Price: 1, PublishTime: now}

	_, err := OracleUSD{}.Cost(100, oracleSale(), quote, now)
	if !errors.Is(err, domain.ErrPriceFeedMismatch) {
		t.Errorf("Expected ErrPriceFeedMismatch, got %v", err)
	}
}

func TestOracleUSD_InvalidPrice(t *testing.T) {
	now := int64(1700000000)

	_, err := OracleUSD{}.Cost(100, oracleSale(), solQuote(0, now), now)
	if !errors.Is(err, domain.ErrInvalidPriceData) {
		t.Errorf("zero price: expected ErrInvalidPriceData, got %v", err)
	}

	_, err = OracleUSD{}.Cost(100, oracleSale(), nil, now)
	if !errors.Is(err, domain.ErrInvalidPriceData) {
		t.Errorf("nil quote: expected ErrInvalidPriceData, got %v", err)
	}
}

func TestOracleUSD_Overflow(t *testing.T) {
	now := int64(1700000000)
	sale := oracleSale()
	sale.TokenPriceUSD = math.MaxUint64

	_, err := OracleUSD{}.Cost(2, sale, solQuote(1, now), now)
	if !errors.Is(err, domain.ErrMathOverflow) {
		t.Errorf("usd multiply: expected ErrMathOverflow, got %v", err)
	}

	// The scale multiply can overflow even when the usd multiply fits.
	sale.TokenPriceUSD = math.MaxUint64 / 2
	_, err = OracleUSD{}.Cost(1, sale, solQuote(1, now), now)
	if !errors.Is(err, domain.ErrMathOverflow) {
		t.Errorf("scale multiply: expected ErrMathOverflow, got %v", err)
	}
}

func TestFromSale(t *testing.T) {
	s, err := FromSale(fixedSale())
	if err != nil {
		t.Fatalf("FromSale(fixed) failed: %v", err)
	}
	if s.Kind() != domain.PricingFixed {
		t.Errorf("Kind = %s, want FIXED", s.Kind())
	}

	s, err = FromSale(oracleSale())
	if err != nil {
		t.Fatalf("FromSale(oracle) failed: %v", err)
	}
	if s.Kind() != domain.PricingOracleUSD {
		t.Errorf("Kind = %s, want ORACLE_USD", s.Kind())
	}
}

func TestFromSale_Errors(t *testing.T) {
	sale := oracleSale()
	sale.PriceOracle = ""
	_, err := FromSale(sale)
	if !errors.Is(err, ErrMissingOracle) {
		t.Errorf("Expected ErrMissingOracle, got %v", err)
	}

	sale = &domain.Sale{Pricing: "DUTCH_AUCTION"}
	_, err = FromSale(sale)
	if !errors.Is(err, ErrUnknownPricingKind) {
		t.Errorf("Expected ErrUnknownPricingKind, got %v", err)
	}
}
