package domain

// Contribution tracks one buyer's cumulative purchases in one sale.
// Created lazily on the buyer's first purchase; its address is derived
// from the (sale, user) pair. Never deleted.
type Contribution struct {
	Address         string // derived address, primary key
	User            string // buyer identity, immutable
	Sale            string // back-reference to the sale address, immutable
	TokensPurchased uint64 // cumulative tokens, never decreases
	SolContributed  uint64 // cumulative native units paid, never decreases
	Bump            uint8  // derivation nonce for Address
	CreatedAt       int64  // unix seconds
	UpdatedAt       int64  // unix seconds
}
