package pricing

import (
	"errors"

	"ico-sale-engine/internal/checked"
	"ico-sale-engine/internal/domain"
	"ico-sale-engine/internal/oracle"
)

// Fixed charges the sale's flat native-unit price per token.
type Fixed struct{}

// Cost returns amount * token_price, exactly, with no rounding.
func (Fixed) Cost(amount uint64, sale *domain.Sale, _ *oracle.Quote, _ int64) (uint64, error) {
	cost, err := checked.Mul(amount, sale.TokenPrice)
	if err != nil {
		if errors.Is(err, checked.ErrOverflow) {
			return 0, domain.ErrMathOverflow
		}
		return 0, err
	}
	return cost, nil
}

// Kind returns domain.PricingFixed.
func (Fixed) Kind() domain.PricingKind { return domain.PricingFixed }

// Compile-time interface check.
var _ Strategy = Fixed{}
