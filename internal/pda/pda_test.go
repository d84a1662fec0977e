package pda

import (
	"testing"

	"github.com/mr-tron/base58"
)

func TestDeriveSale_Deterministic(t *testing.T) {
	addr1, bump1, err := DeriveSale("authority1", "mint1")
	if err != nil {
		t.Fatalf("DeriveSale failed: %v", err)
	}
	addr2, bump2, err := DeriveSale("authority1", "mint1")
	if err != nil {
		t.Fatalf("DeriveSale failed: %v", err)
	}

	if addr1 != addr2 {
		t.Errorf("same seeds produced different addresses: %s vs %s", addr1, addr2)
	}
	if bump1 != bump2 {
		t.Errorf("same seeds produced different bumps: %d vs %d", bump1, bump2)
	}
}

func TestDeriveSale_DistinctPairs(t *testing.T) {
	a, _, err := DeriveSale("authority1", "mint1")
	if err != nil {
		t.Fatalf("DeriveSale failed: %v", err)
	}
	b, _, err := DeriveSale("authority1", "mint2")
	if err != nil {
		t.Fatalf("DeriveSale failed: %v", err)
	}
	c, _, err := DeriveSale("authority2", "mint1")
	if err != nil {
		t.Fatalf("DeriveSale failed: %v", err)
	}
	if a == b || a == c || b == c {
		t.Errorf("distinct pairs collided: %s %s %s", a, b, c)
	}

	// Seed order matters: swapping authority and mint changes the address.
	swapped, _, err := DeriveSale("mint1", "authority1")
	if err != nil {
		t.Fatalf("DeriveSale failed: %v", err)
	}
	if swapped == a {
		t.Error("swapped seeds produced the same address")
	}
}

func TestDerive_AddressShape(t *testing.T) {
	addr, bump, err := DeriveContribution("saleAddr", "buyerAddr")
	if err != nil {
		t.Fatalf("DeriveContribution failed: %v", err)
	}
	if bump == 0 {
		t.Error("bump must be in [1, 255]")
	}

	raw, err := base58.Decode(addr)
	if err != nil {
		t.Fatalf("address is not base58: %v", err)
	}
	if len(raw) != 32 {
		t.Errorf("decoded address length = %d, want 32", len(raw))
	}
}

func TestAddressWithBump_Rebuild(t *testing.T) {
	addr, bump, err := DeriveSale("auth", "mint")
	if err != nil {
		t.Fatalf("DeriveSale failed: %v", err)
	}

	rebuilt, err := SaleAddressWithBump("auth", "mint", bump)
	if err != nil {
		t.Fatalf("SaleAddressWithBump failed: %v", err)
	}
	if rebuilt != addr {
		t.Errorf("rebuilt address %s differs from derived %s", rebuilt, addr)
	}
}

func TestDeriveTokenAccount_PerOwner(t *testing.T) {
	vault, _, err := DeriveTokenAccount("saleAddr", "mint1")
	if err != nil {
		t.Fatalf("DeriveTokenAccount failed: %v", err)
	}
	buyer, _, err := DeriveTokenAccount("buyerAddr", "mint1")
	if err != nil {
		t.Fatalf("DeriveTokenAccount failed: %v", err)
	}
	if vault == buyer {
		t.Error("token accounts for different owners collided")
	}

	// Record kinds are domain-separated even with identical seed strings.
	sale, _, err := Derive([]byte(saleSeed), []byte("saleAddr"), []byte("mint1"))
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}
	if sale == vault {
		t.Error("sale and token-account namespaces collided")
	}
}
