package memory

import (
	"context"
	"errors"
	"testing"

	"ico-sale-engine/internal/domain"
	"ico-sale-engine/internal/storage"
)

func testSale(address string, startTime int64) *domain.Sale {
	return &domain.Sale{
		Address:     address,
		Authority:   "auth1",
		TokenMint:   "mint1",
		Treasury:    "treasury1",
		Vault:       "vault1",
		Pricing:     domain.PricingFixed,
		TokenPrice:  1_000_000,
		MaxTokens:   1_000_000,
		MinPurchase: 100,
		MaxPurchase: 10_000,
		StartTime:   startTime,
		EndTime:     startTime + 86_400,
		IsActive:    true,
		Bump:        254,
		CreatedAt:   startTime,
		UpdatedAt:   startTime,
	}
}

func TestSaleStore_InsertAndGet(t *testing.T) {
	store := NewSaleStore()
	ctx := context.Background()

	sale := testSale("sale1", 1700000000)
	if err := store.Insert(ctx, sale); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.Get(ctx, "sale1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Address != sale.Address {
		t.Errorf("Address mismatch: got %s, want %s", got.Address, sale.Address)
	}
	if got.TokenPrice != sale.TokenPrice {
		t.Errorf("TokenPrice mismatch: got %d, want %d", got.TokenPrice, sale.TokenPrice)
	}
	if !got.IsActive {
		t.Error("Expected IsActive true")
	}
}

func TestSaleStore_DuplicateKey(t *testing.T) {
	store := NewSaleStore()
	ctx := context.Background()

	sale := testSale("sale1", 1700000000)
	if err := store.Insert(ctx, sale); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	err := store.Insert(ctx, sale)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestSaleStore_NotFound(t *testing.T) {
	store := NewSaleStore()
	ctx := context.Background()

	_, err := store.Get(ctx, "nonexistent")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	err = store.Update(ctx, testSale("nonexistent", 1700000000))
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound on update, got %v", err)
	}
}

func TestSaleStore_Update(t *testing.T) {
	store := NewSaleStore()
	ctx := context.Background()

	sale := testSale("sale1", 1700000000)
	if err := store.Insert(ctx, sale); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	sale.TokensSold = 5000
	sale.TotalRaised = 5_000_000_000
	sale.IsPaused = true
	if err := store.Update(ctx, sale); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := store.Get(ctx, "sale1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.TokensSold != 5000 {
		t.Errorf("TokensSold = %d, want 5000", got.TokensSold)
	}
	if !got.IsPaused {
		t.Error("Expected IsPaused true after update")
	}
}

func TestSaleStore_GetForUpdate(t *testing.T) {
	store := NewSaleStore()
	ctx := context.Background()

	sale := testSale("sale1", 1700000000)
	if err := store.Insert(ctx, sale); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.GetForUpdate(ctx, "sale1")
	if err != nil {
		t.Fatalf("GetForUpdate failed: %v", err)
	}
	if got.Address != "sale1" {
		t.Errorf("Address mismatch: got %s", got.Address)
	}
}

func TestSaleStore_List(t *testing.T) {
	store := NewSaleStore()
	ctx := context.Background()

	sales := []*domain.Sale{
		testSale("saleC", 3000),
		testSale("saleA", 1000),
		testSale("saleB", 2000),
	}
	for _, s := range sales {
		if err := store.Insert(ctx, s); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	result, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(result) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(result))
	}
	if result[0].Address != "saleA" || result[1].Address != "saleB" || result[2].Address != "saleC" {
		t.Errorf("Wrong order: %s, %s, %s", result[0].Address, result[1].Address, result[2].Address)
	}
}

func TestSaleStore_CopyIsolation(t *testing.T) {
	store := NewSaleStore()
	ctx := context.Background()

	sale := testSale("sale1", 1700000000)
	if err := store.Insert(ctx, sale); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	// Mutating the caller's struct must not leak into the store.
	sale.TokensSold = 999

	got, err := store.Get(ctx, "sale1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.TokensSold != 0 {
		t.Errorf("Stored record mutated externally: TokensSold = %d", got.TokensSold)
	}

	// Mutating a returned struct must not leak either.
	got.TokensSold = 777
	again, err := store.Get(ctx, "sale1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if again.TokensSold != 0 {
		t.Errorf("Returned record aliased store state: TokensSold = %d", again.TokensSold)
	}
}

func TestSaleStore_InvalidInput(t *testing.T) {
	store := NewSaleStore()
	ctx := context.Background()

	if err := store.Insert(ctx, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for nil, got %v", err)
	}
	if err := store.Insert(ctx, &domain.Sale{}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for empty address, got %v", err)
	}
	if err := store.Update(ctx, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for nil update, got %v", err)
	}
}
