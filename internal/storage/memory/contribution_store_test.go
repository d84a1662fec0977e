package memory

import (
	"context"
	"errors"
	"testing"

	"ico-sale-engine/internal/domain"
	"ico-sale-engine/internal/storage"
)

func TestContributionStore_InsertAndGet(t *testing.T) {
	store := NewContributionStore()
	ctx := context.Background()

	c := &domain.Contribution{
		Address:         "contrib1",
		User:            "buyer1",
		Sale:            "sale1",
		TokensPurchased: 1000,
		SolContributed:  1_000_000_000,
		Bump:            253,
		CreatedAt:       1700000000,
		UpdatedAt:       1700000000,
	}
	if err := store.Insert(ctx, c); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.Get(ctx, "contrib1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.User != "buyer1" {
		t.Errorf("User mismatch: got %s", got.User)
	}
	if got.TokensPurchased != 1000 {
		t.Errorf("TokensPurchased = %d, want 1000", got.TokensPurchased)
	}
}

func TestContributionStore_DuplicateKey(t *testing.T) {
	store := NewContributionStore()
	ctx := context.Background()

	c := &domain.Contribution{Address: "contrib1", User: "buyer1", Sale: "sale1"}
	if err := store.Insert(ctx, c); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	err := store.Insert(ctx, c)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestContributionStore_Update(t *testing.T) {
	store := NewContributionStore()
	ctx := context.Background()

	c := &domain.Contribution{
		Address:         "contrib1",
		User:            "buyer1",
		Sale:            "sale1",
		TokensPurchased: 1000,
		SolContributed:  1_000_000_000,
	}
	if err := store.Insert(ctx, c); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	c.TokensPurchased = 2500
	c.SolContributed = 2_500_000_000
	if err := store.Update(ctx, c); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := store.Get(ctx, "contrib1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.TokensPurchased != 2500 {
		t.Errorf("TokensPurchased = %d, want 2500", got.TokensPurchased)
	}

	err = store.Update(ctx, &domain.Contribution{Address: "missing"})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestContributionStore_ListBySale(t *testing.T) {
	store := NewContributionStore()
	ctx := context.Background()

	contribs := []*domain.Contribution{
		{Address: "c1", User: "buyerB", Sale: "sale1", TokensPurchased: 10},
		{Address: "c2", User: "buyerA", Sale: "sale1", TokensPurchased: 20},
		{Address: "c3", User: "buyerC", Sale: "sale2", TokensPurchased: 30},
	}
	for _, c := range contribs {
		if err := store.Insert(ctx, c); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	result, err := store.ListBySale(ctx, "sale1")
	if err != nil {
		t.Fatalf("ListBySale failed: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(result))
	}
	if result[0].User != "buyerA" || result[1].User != "buyerB" {
		t.Errorf("Wrong order: %s, %s", result[0].User, result[1].User)
	}
}

func TestContributionStore_InvalidInput(t *testing.T) {
	store := NewContributionStore()
	ctx := context.Background()

	if err := store.Insert(ctx, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for nil, got %v", err)
	}
	if err := store.Insert(ctx, &domain.Contribution{}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for empty address, got %v", err)
	}
}
