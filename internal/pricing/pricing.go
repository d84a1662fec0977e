// Package pricing converts requested token amounts into native payments.
// The two sale generations (flat native price, USD price through an oracle)
// are strategies behind one interface, selected by the sale's pricing kind.
package pricing

import (
	"errors"

	"ico-sale-engine/internal/domain"
	"ico-sale-engine/internal/oracle"
)

// Strategy computes the native cost of a purchase.
type Strategy interface {
	// Cost returns the payment in native base units for amount tokens.
	// Oracle strategies validate the quote (feed identity, freshness,
	// positive price) against the sale before converting; fixed strategies
	// ignore the quote entirely.
	Cost(amount uint64, sale *domain.Sale, quote *oracle.Quote, now int64) (uint64, error)

	// Kind returns the pricing kind this strategy implements.
	Kind() domain.PricingKind
}

// Factory errors
var (
	ErrUnknownPricingKind = errors.New("unknown pricing kind")
	ErrMissingOracle      = errors.New("ORACLE_USD pricing requires a price oracle reference")
)

// FromSale creates the Strategy matching the sale's pricing kind.
func FromSale(s *domain.Sale) (Strategy, error) {
	switch s.Pricing {
	case domain.PricingFixed:
		return Fixed{}, nil
	case domain.PricingOracleUSD:
		if s.PriceOracle == "" {
			return nil, ErrMissingOracle
		}
		return OracleUSD{}, nil
	default:
		return nil, ErrUnknownPricingKind
	}
}
