package pricing

import (
	"errors"

	"ico-sale-engine/internal/checked"
	"ico-sale-engine/internal/domain"
	"ico-sale-engine/internal/oracle"
)

// OracleUSD charges the sale's USD price per token, converted to native
// units through the sale's price feed. USD values are at the 1e8 base on
// both sides of the conversion.
type OracleUSD struct{}

// Cost validates the quote and computes
//
//	usd_cost    = amount * token_price_usd
//	native_cost = usd_cost * NativeUnitScale / quote.Price
//
// with overflow-checked multiplies. The division truncates toward zero,
// so the buyer's cost is rounded down by at most one native unit.
func (OracleUSD) Cost(amount uint64, sale *domain.Sale, quote *oracle.Quote, now int64) (uint64, error) {
	if quote == nil {
		return 0, domain.ErrInvalidPriceData
	}
	if quote.Feed != sale.PriceOracle {
		return 0, domain.ErrPriceFeedMismatch
	}
	if now-quote.PublishTime > sale.MaxPriceAge {
		return 0, domain.ErrStalePriceData
	}
	if quote.Price == 0 {
		return 0, domain.ErrInvalidPriceData
	}

	usdCost, err := checked.Mul(amount, sale.TokenPriceUSD)
	if err != nil {
		return 0, overflowErr(err)
	}
	scaled, err := checked.Mul(usdCost, domain.NativeUnitScale)
	if err != nil {
		return 0, overflowErr(err)
	}
	return scaled / quote.Price, nil
}

// Kind returns domain.PricingOracleUSD.
func (OracleUSD) Kind() domain.PricingKind { return domain.PricingOracleUSD }

func overflowErr(err error) error {
	if errors.Is(err, checked.ErrOverflow) {
		return domain.ErrMathOverflow
	}
	return err
}

// Compile-time interface check.
var _ Strategy = OracleUSD{}
