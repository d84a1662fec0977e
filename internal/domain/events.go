package domain

// EventKind identifies the mutating operation an event records.
type EventKind string

// Event kinds, one per successful mutating instruction.
const (
	EventSaleInitialized   EventKind = "SALE_INITIALIZED"
	EventTokensPurchased   EventKind = "TOKENS_PURCHASED"
	EventPauseToggled      EventKind = "PAUSE_TOGGLED"
	EventSaleEnded         EventKind = "SALE_ENDED"
	EventTokensWithdrawn   EventKind = "TOKENS_WITHDRAWN"
	EventSaleParamsUpdated EventKind = "SALE_PARAMS_UPDATED"
)

// SaleEvent is an append-only audit record of one successful instruction.
// Events are informational: no consumer feeds them back into sale state.
// Fields not relevant to a kind are zero.
type SaleEvent struct {
	Sale         string    // sale address
	Kind         EventKind
	Actor        string // authority for admin ops, buyer for purchases
	TokenAmount  uint64 // tokens purchased or withdrawn
	NativeAmount uint64 // native units paid
	TokensSold   uint64 // sale total after the operation
	TotalRaised  uint64 // sale total after the operation
	Price        uint64 // active price parameter (init/update)
	MaxTokens    uint64 // init/update
	MinPurchase  uint64 // init/update
	MaxPurchase  uint64 // init/update
	StartTime    int64  // init
	EndTime      int64  // init, end
	Paused       bool   // pause-toggled new state
	OccurredAt   int64  // unix seconds
}
