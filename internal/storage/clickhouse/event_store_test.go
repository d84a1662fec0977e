package clickhouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ico-sale-engine/internal/domain"
	"ico-sale-engine/internal/storage"
)

func TestEventStore_AppendAndList(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewEventStore(conn)
	ctx := context.Background()

	events := []*domain.SaleEvent{
		{
			Sale:        "sale-1",
			Kind:        domain.EventSaleInitialized,
			Actor:       "authority-1",
			Price:       1_000_000,
			MaxTokens:   1_000_000,
			MinPurchase: 100,
			MaxPurchase: 10_000,
			StartTime:   1700000000,
			EndTime:     1700086400,
			OccurredAt:  1700000000,
		},
		{
			Sale:         "sale-1",
			Kind:         domain.EventTokensPurchased,
			Actor:        "buyer-1",
			TokenAmount:  1000,
			NativeAmount: 1_000_000_000,
			TokensSold:   1000,
			TotalRaised:  1_000_000_000,
			OccurredAt:   1700000100,
		},
		{
			Sale:       "sale-2",
			Kind:       domain.EventSaleInitialized,
			Actor:      "authority-2",
			OccurredAt: 1700000050,
		},
	}
	for _, e := range events {
		require.NoError(t, store.Append(ctx, e))
	}

	got, err := store.ListBySale(ctx, "sale-1")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, domain.EventSaleInitialized, got[0].Kind)
	assert.Equal(t, "authority-1", got[0].Actor)
	assert.Equal(t, uint64(1_000_000), got[0].Price)
	assert.Equal(t, int64(1700086400), got[0].EndTime)

	assert.Equal(t, domain.EventTokensPurchased, got[1].Kind)
	assert.Equal(t, "buyer-1", got[1].Actor)
	assert.Equal(t, uint64(1000), got[1].TokenAmount)
	assert.Equal(t, uint64(1_000_000_000), got[1].NativeAmount)
	assert.Equal(t, uint64(1000), got[1].TokensSold)
}

func TestEventStore_SameSecondKeepsAppendOrder(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewEventStore(conn)
	ctx := context.Background()

	// Two toggles in the same second; ingested_at must keep them ordered.
	first := &domain.SaleEvent{Sale: "sale-1", Kind: domain.EventPauseToggled, Paused: true, OccurredAt: 1700000000}
	second := &domain.SaleEvent{Sale: "sale-1", Kind: domain.EventPauseToggled, Paused: false, OccurredAt: 1700000000}
	require.NoError(t, store.Append(ctx, first))
	require.NoError(t, store.Append(ctx, second))

	got, err := store.ListBySale(ctx, "sale-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].Paused)
	assert.False(t, got[1].Paused)
}

func TestEventStore_ListEmpty(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewEventStore(conn)
	ctx := context.Background()

	got, err := store.ListBySale(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEventStore_InvalidInput(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewEventStore(conn)
	ctx := context.Background()

	err := store.Append(ctx, nil)
	assert.ErrorIs(t, err, storage.ErrInvalidInput)

	err = store.Append(ctx, &domain.SaleEvent{Kind: domain.EventSaleEnded})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)

	err = store.Append(ctx, &domain.SaleEvent{Sale: "sale-1"})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}
