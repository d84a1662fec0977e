// Package report computes an offline sale summary from the append-only
// event log. The log alone is sufficient: every mutating instruction
// appends one event carrying the totals after it.
package report

import (
	"errors"
	"sort"

	"ico-sale-engine/internal/domain"
)

// ErrNoEvents is returned when the event log is empty.
var ErrNoEvents = errors.New("no events for sale")

// ErrNotInitialized is returned when the log does not start with the
// sale-initialized event.
var ErrNotInitialized = errors.New("event log does not start with sale initialization")

// BuyerPosition is one buyer's cumulative line in the distribution.
type BuyerPosition struct {
	Buyer     string
	Tokens    uint64
	Native    uint64
	Purchases int
}

// Summary is the aggregate view of one sale's full history.
type Summary struct {
	Sale        string
	Price       uint64 // last configured price parameter
	MaxTokens   uint64 // last configured supply cap
	StartTime   int64
	EndTime     int64 // effective end: truncated if the sale was ended early

	TokensSold  uint64
	TotalRaised uint64
	Purchases   int
	Buyers      []BuyerPosition // sorted by tokens descending, then buyer

	ParamsUpdates int
	PauseToggles  int
	Ended         bool
	Withdrawn     uint64
}

// SellThroughPct is the sold share of the offered supply, in percent.
func (s *Summary) SellThroughPct() float64 {
	if s.MaxTokens == 0 {
		return 0
	}
	return float64(s.TokensSold) / float64(s.MaxTokens) * 100
}

// AveragePrice is the realized native cost per token across all purchases.
func (s *Summary) AveragePrice() float64 {
	if s.TokensSold == 0 {
		return 0
	}
	return float64(s.TotalRaised) / float64(s.TokensSold)
}

// BuildSummary folds an ordered event log into a Summary.
func BuildSummary(events []*domain.SaleEvent) (*Summary, error) {
	if len(events) == 0 {
		return nil, ErrNoEvents
	}
	if events[0].Kind != domain.EventSaleInitialized {
		return nil, ErrNotInitialized
	}

	first := events[0]
	s := &Summary{
		Sale:      first.Sale,
		Price:     first.Price,
		MaxTokens: first.MaxTokens,
		StartTime: first.StartTime,
		EndTime:   first.EndTime,
	}

	positions := make(map[string]*BuyerPosition)
	for _, ev := range events {
		switch ev.Kind {
		case domain.EventTokensPurchased:
			s.Purchases++
			s.TokensSold = ev.TokensSold
			s.TotalRaised = ev.TotalRaised

			p, ok := positions[ev.Actor]
			if !ok {
				p = &BuyerPosition{Buyer: ev.Actor}
				positions[ev.Actor] = p
			}
			p.Tokens += ev.TokenAmount
			p.Native += ev.NativeAmount
			p.Purchases++
		case domain.EventSaleParamsUpdated:
			s.ParamsUpdates++
			s.Price = ev.Price
			s.MaxTokens = ev.MaxTokens
		case domain.EventPauseToggled:
			s.PauseToggles++
		case domain.EventSaleEnded:
			s.Ended = true
			s.EndTime = ev.EndTime
			s.TokensSold = ev.TokensSold
			s.TotalRaised = ev.TotalRaised
		case domain.EventTokensWithdrawn:
			s.Withdrawn += ev.TokenAmount
		}
	}

	s.Buyers = make([]BuyerPosition, 0, len(positions))
	for _, p := range positions {
		s.Buyers = append(s.Buyers, *p)
	}
	sort.Slice(s.Buyers, func(i, j int) bool {
		if s.Buyers[i].Tokens != s.Buyers[j].Tokens {
			return s.Buyers[i].Tokens > s.Buyers[j].Tokens
		}
		return s.Buyers[i].Buyer < s.Buyers[j].Buyer
	})

	return s, nil
}
