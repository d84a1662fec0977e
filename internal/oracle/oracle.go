// Package oracle provides the price-feed collaborator: read-only sources
// of native-coin/USD quotes consumed by oracle-priced sales. The engine
// only ever reads the latest quote; freshness and feed-identity checks
// happen in the pricing layer.
package oracle

import (
	"context"
	"errors"
)

// Quote is one observation from a price feed.
type Quote struct {
	Feed        string // feed identity the quote belongs to
	Price       uint64 // USD per whole native coin, at 1e8 fixed decimals
	PublishTime int64  // unix seconds
}

// Source supplies the most recent quote per feed.
type Source interface {
	// Latest returns the newest known quote for the feed.
	// Returns ErrNoQuote if the source has never seen the feed.
	Latest(ctx context.Context, feed string) (*Quote, error)
}

// ErrNoQuote is returned when a source has no quote for the requested feed.
var ErrNoQuote = errors.New("no quote available for feed")
