package domain

// PricingKind selects how a sale converts tokens into a native payment.
type PricingKind string

// Supported pricing kinds.
const (
	// PricingFixed charges a flat native-unit price per token.
	PricingFixed PricingKind = "FIXED"
	// PricingOracleUSD charges a USD price per token converted to native
	// units through an external price feed.
	PricingOracleUSD PricingKind = "ORACLE_USD"
)

// Unit scales shared by the pricing arithmetic.
const (
	// NativeUnitScale is the number of native base units per whole coin.
	NativeUnitScale uint64 = 1_000_000_000
	// USDUnitScale is the fixed-decimal base for USD prices (1e8).
	USDUnitScale uint64 = 100_000_000
	// MaxOracleAge is the upper bound for a sale's max price age, in seconds.
	MaxOracleAge int64 = 3600
)

// Sale holds one token sale's configuration and running totals.
// One record exists per (authority, token_mint) pair; its address is
// derived deterministically from that pair and never reused.
type Sale struct {
	Address       string      // derived address, primary key
	Authority     string      // admin identity, immutable
	TokenMint     string      // mint of the token being sold, immutable
	Treasury      string      // native-currency destination, immutable
	Vault         string      // custody token account owned by Address
	PriceOracle   string      // feed identity, ORACLE_USD only
	Pricing       PricingKind // FIXED | ORACLE_USD, fixed at creation
	TokenPrice    uint64      // native units per token (FIXED)
	TokenPriceUSD uint64      // USD per token at USDUnitScale (ORACLE_USD)
	MaxPriceAge   int64       // max quote age in seconds (ORACLE_USD)
	MaxTokens     uint64      // total supply offered
	MinPurchase   uint64      // per-call lower bound
	MaxPurchase   uint64      // per-call and per-user upper bound
	TokensSold    uint64      // running total, never decreases
	TotalRaised   uint64      // running total in native units, never decreases
	StartTime     int64       // unix seconds
	EndTime       int64       // unix seconds
	IsActive      bool        // one-way true -> false via EndSale
	IsPaused      bool        // toggled by authority
	Bump          uint8       // derivation nonce for Address
	CreatedAt     int64       // unix seconds
	UpdatedAt     int64       // unix seconds
}

// Started reports whether the sale window has opened at the given time.
func (s *Sale) Started(now int64) bool {
	return now >= s.StartTime
}

// Concluded reports whether the sale can no longer sell: ended by the
// authority or past its natural end time.
func (s *Sale) Concluded(now int64) bool {
	return !s.IsActive || now > s.EndTime
}

// SaleParams carries the caller-supplied configuration for InitializeSale.
type SaleParams struct {
	Pricing       PricingKind
	TokenPrice    uint64 // FIXED only
	TokenPriceUSD uint64 // ORACLE_USD only
	MaxPriceAge   int64  // ORACLE_USD only
	MaxTokens     uint64
	MinPurchase   uint64
	MaxPurchase   uint64
	Duration      int64 // sale length in seconds from initialization
}

// Validate checks field-level validity, returning the first violated rule.
func (p *SaleParams) Validate() error {
	switch p.Pricing {
	case PricingFixed:
		if p.TokenPrice == 0 {
			return ErrInvalidPrice
		}
	case PricingOracleUSD:
		if p.TokenPriceUSD == 0 {
			return ErrInvalidPrice
		}
		if p.MaxPriceAge <= 0 || p.MaxPriceAge > MaxOracleAge {
			return ErrInvalidMaxAge
		}
	default:
		return ErrInvalidPricingKind
	}
	if p.MaxTokens == 0 {
		return ErrInvalidMaxTokens
	}
	if p.MinPurchase == 0 || p.MinPurchase > p.MaxPurchase {
		return ErrInvalidPurchaseLimits
	}
	if p.Duration <= 0 {
		return ErrInvalidDuration
	}
	return nil
}

// SaleParamsUpdate is a partial parameter update. Nil fields are left
// untouched. Only valid strictly before the sale's start time.
type SaleParamsUpdate struct {
	TokenPrice    *uint64
	TokenPriceUSD *uint64
	MaxPriceAge   *int64
	MaxTokens     *uint64
	MinPurchase   *uint64
	MaxPurchase   *uint64
}

// Apply validates the update against the sale's pricing kind and writes
// the provided fields. The min/max relation is re-checked over the result.
func (u *SaleParamsUpdate) Apply(s *Sale) error {
	if u.TokenPrice != nil {
		if s.Pricing != PricingFixed {
			return ErrInvalidPricingKind
		}
		if *u.TokenPrice == 0 {
			return ErrInvalidPrice
		}
		s.TokenPrice = *u.TokenPrice
	}
	if u.TokenPriceUSD != nil {
		if s.Pricing != PricingOracleUSD {
			return ErrInvalidPricingKind
		}
		if *u.TokenPriceUSD == 0 {
			return ErrInvalidPrice
		}
		s.TokenPriceUSD = *u.TokenPriceUSD
	}
	if u.MaxPriceAge != nil {
		if s.Pricing != PricingOracleUSD {
			return ErrInvalidPricingKind
		}
		if *u.MaxPriceAge <= 0 || *u.MaxPriceAge > MaxOracleAge {
			return ErrInvalidMaxAge
		}
		s.MaxPriceAge = *u.MaxPriceAge
	}
	if u.MaxTokens != nil {
		if *u.MaxTokens == 0 {
			return ErrInvalidMaxTokens
		}
		s.MaxTokens = *u.MaxTokens
	}
	if u.MinPurchase != nil {
		if *u.MinPurchase == 0 {
			return ErrInvalidPurchaseLimits
		}
		s.MinPurchase = *u.MinPurchase
	}
	if u.MaxPurchase != nil {
		s.MaxPurchase = *u.MaxPurchase
	}
	if s.MinPurchase == 0 || s.MinPurchase > s.MaxPurchase {
		return ErrInvalidPurchaseLimits
	}
	return nil
}
