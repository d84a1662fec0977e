package memory

import (
	"context"
	"errors"
	"testing"

	"ico-sale-engine/internal/domain"
	"ico-sale-engine/internal/storage"
)

func TestEventStore_AppendAndList(t *testing.T) {
	store := NewEventStore()
	ctx := context.Background()

	events := []*domain.SaleEvent{
		{Sale: "sale1", Kind: domain.EventSaleInitialized, Actor: "auth1", OccurredAt: 1000},
		{Sale: "sale1", Kind: domain.EventTokensPurchased, Actor: "buyer1", TokenAmount: 500, NativeAmount: 500_000_000, OccurredAt: 2000},
		{Sale: "sale2", Kind: domain.EventSaleInitialized, Actor: "auth2", OccurredAt: 1500},
		{Sale: "sale1", Kind: domain.EventSaleEnded, Actor: "auth1", OccurredAt: 3000},
	}
	for _, e := range events {
		if err := store.Append(ctx, e); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	result, err := store.ListBySale(ctx, "sale1")
	if err != nil {
		t.Fatalf("ListBySale failed: %v", err)
	}
	if len(result) != 3 {
		t.Fatalf("Expected 3 events, got %d", len(result))
	}
	if result[0].Kind != domain.EventSaleInitialized {
		t.Errorf("First event should be SALE_INITIALIZED, got %s", result[0].Kind)
	}
	if result[1].Kind != domain.EventTokensPurchased {
		t.Errorf("Second event should be TOKENS_PURCHASED, got %s", result[1].Kind)
	}
	if result[1].TokenAmount != 500 {
		t.Errorf("TokenAmount = %d, want 500", result[1].TokenAmount)
	}
	if result[2].Kind != domain.EventSaleEnded {
		t.Errorf("Third event should be SALE_ENDED, got %s", result[2].Kind)
	}
}

func TestEventStore_SameTimestampKeepsAppendOrder(t *testing.T) {
	store := NewEventStore()
	ctx := context.Background()

	events := []*domain.SaleEvent{
		{Sale: "sale1", Kind: domain.EventPauseToggled, Paused: true, OccurredAt: 1000},
		{Sale: "sale1", Kind: domain.EventPauseToggled, Paused: false, OccurredAt: 1000},
	}
	for _, e := range events {
		if err := store.Append(ctx, e); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	result, err := store.ListBySale(ctx, "sale1")
	if err != nil {
		t.Fatalf("ListBySale failed: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(result))
	}
	if !result[0].Paused || result[1].Paused {
		t.Error("Equal-timestamp events lost their append order")
	}
}

func TestEventStore_EmptySale(t *testing.T) {
	store := NewEventStore()
	ctx := context.Background()

	result, err := store.ListBySale(ctx, "nothing")
	if err != nil {
		t.Fatalf("ListBySale failed: %v", err)
	}
	if len(result) != 0 {
		t.Errorf("Expected empty result, got %d", len(result))
	}
}

func TestEventStore_InvalidInput(t *testing.T) {
	store := NewEventStore()
	ctx := context.Background()

	if err := store.Append(ctx, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for nil, got %v", err)
	}
	if err := store.Append(ctx, &domain.SaleEvent{Kind: domain.EventSaleEnded}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for empty sale, got %v", err)
	}
	if err := store.Append(ctx, &domain.SaleEvent{Sale: "sale1"}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for empty kind, got %v", err)
	}
}
