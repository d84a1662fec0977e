package checked

import (
	"errors"
	"math"
	"testing"
)

func TestAdd(t *testing.T) {
	got, err := Add(2, 3)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if got != 5 {
		t.Errorf("Add(2, 3) = %d, want 5", got)
	}

	got, err = Add(math.MaxUint64, 0)
	if err != nil {
		t.Fatalf("Add at boundary failed: %v", err)
	}
	if got != math.MaxUint64 {
		t.Errorf("Add(MaxUint64, 0) = %d, want MaxUint64", got)
	}
}

func TestAdd_Overflow(t *testing.T) {
	_, err := Add(math.MaxUint64, 1)
	if !errors.Is(err, ErrOverflow) {
		t.Errorf("Expected ErrOverflow, got %v", err)
	}

	_, err = Add(math.MaxUint64/2+1, math.MaxUint64/2+1)
	if !errors.Is(err, ErrOverflow) {
		t.Errorf("Expected ErrOverflow, got %v", err)
	}
}

func TestSub(t *testing.T) {
	got, err := Sub(10, 4)
	if err != nil {
		t.Fatalf("Sub failed: %v", err)
	}
	if got != 6 {
		t.Errorf("Sub(10, 4) = %d, want 6", got)
	}

	got, err = Sub(7, 7)
	if err != nil {
		t.Fatalf("Sub(7, 7) failed: %v", err)
	}
	if got != 0 {
		t.Errorf("Sub(7, 7) = %d, want 0", got)
	}
}

func TestSub_Underflow(t *testing.T) {
	_, err := Sub(4, 10)
	if !errors.Is(err, ErrOverflow) {
		t.Errorf("Expected ErrOverflow, got %v", err)
	}
}

func TestMul(t *testing.T) {
	got, err := Mul(1000, 1_000_000)
	if err != nil {
		t.Fatalf("Mul failed: %v", err)
	}
	if got != 1_000_000_000 {
		t.Errorf("Mul(1000, 1_000_000) = %d, want 1_000_000_000", got)
	}

	// Largest products that still fit.
	got, err = Mul(math.MaxUint64, 1)
	if err != nil {
		t.Fatalf("Mul at boundary failed: %v", err)
	}
	if got != math.MaxUint64 {
		t.Errorf("Mul(MaxUint64, 1) = %d, want MaxUint64", got)
	}

	got, err = Mul(1<<32, (1<<32)-1)
	if err != nil {
		t.Fatalf("Mul near boundary failed: %v", err)
	}
	if got != (1<<64)-(1<<32) {
		t.Errorf("Mul(2^32, 2^32-1) = %d, want %d", got, uint64((1<<64)-(1<<32)))
	}
}

func TestMul_Overflow(t *testing.T) {
	_, err := Mul(1<<32, 1<<32)
	if !errors.Is(err, ErrOverflow) {
		t.Errorf("Expected ErrOverflow, got %v", err)
	}

	_, err = Mul(math.MaxUint64, 2)
	if !errors.Is(err, ErrOverflow) {
		t.Errorf("Expected ErrOverflow, got %v", err)
	}
}

func TestMul_Zero(t *testing.T) {
	got, err := Mul(0, math.MaxUint64)
	if err != nil {
		t.Fatalf("Mul(0, MaxUint64) failed: %v", err)
	}
	if got != 0 {
		t.Errorf("Mul(0, MaxUint64) = %d, want 0", got)
	}
}
