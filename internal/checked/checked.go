// Package checked provides overflow-checked uint64 arithmetic.
// Every operation reports overflow instead of wrapping, matching the
// all-or-nothing commit model of the sale instructions: an overflowing
// computation aborts the call rather than corrupting a balance.
package checked

import (
	"errors"
	"math/bits"
)

// ErrOverflow is returned when a result does not fit in uint64.
var ErrOverflow = errors.New("arithmetic overflow")

// Add returns a + b, or ErrOverflow if the sum wraps.
func Add(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrOverflow
	}
	return sum, nil
}

// Sub returns a - b, or ErrOverflow if b > a.
func Sub(a, b uint64) (uint64, error) {
	diff, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0, ErrOverflow
	}
	return diff, nil
}

// Mul returns a * b, or ErrOverflow if the product exceeds uint64.
func Mul(a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, ErrOverflow
	}
	return lo, nil
}
