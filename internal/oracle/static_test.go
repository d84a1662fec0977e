package oracle

import (
	"context"
	"errors"
	"testing"
)

func TestStaticSource_SetAndLatest(t *testing.T) {
	src := NewStaticSource()
	ctx := context.Background()

	src.Set(&Quote{Feed: "SOL/USD", Price: 15_000_000_000, PublishTime: 1700000000})

	q, err := src.Latest(ctx, "SOL/USD")
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if q.Price != 15_000_000_000 {
		t.Errorf("Price = %d, want 15_000_000_000", q.Price)
	}
	if q.PublishTime != 1700000000 {
		t.Errorf("PublishTime = %d, want 1700000000", q.PublishTime)
	}
}

func TestStaticSource_UnknownFeed(t *testing.T) {
	src := NewStaticSource()

	_, err := src.Latest(context.Background(), "BTC/USD")
	if !errors.Is(err, ErrNoQuote) {
		t.Errorf("Expected ErrNoQuote, got %v", err)
	}
}

func TestStaticSource_Overwrite(t *testing.T) {
	src := NewStaticSource()
	ctx := context.Background()

	src.Set(&Quote{Feed: "SOL/USD", Price: 100, PublishTime: 1})
	src.Set(&Quote{Feed: "SOL/USD", Price: 200, PublishTime: 2})

	q, err := src.Latest(ctx, "SOL/USD")
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if q.Price != 200 || q.PublishTime != 2 {
		t.Errorf("got price=%d publish=%d, want 200/2", q.Price, q.PublishTime)
	}
}

func TestStaticSource_ReturnsCopy(t *testing.T) {
	src := NewStaticSource()
	ctx := context.Background()

	src.Set(&Quote{Feed: "SOL/USD", Price: 100, PublishTime: 1})

	q, err := src.Latest(ctx, "SOL/USD")
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	q.Price = 999

	again, err := src.Latest(ctx, "SOL/USD")
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if again.Price != 100 {
		t.Errorf("stored quote mutated through returned copy: %d", again.Price)
	}
}
