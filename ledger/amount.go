package ledger

import (
	"errors"
	"fmt"
	"math/bits"
)

var (
	// ErrOverflow is returned when a sum does not fit in 64 bits.
	ErrOverflow = errors.New("amount overflow")
	// ErrUnderflow is returned when a subtraction would go below zero.
	ErrUnderflow = errors.New("amount underflow")
)

// CheckedAdd returns a+b, or ErrOverflow when a+b >= 2^64. It is the native
// counterpart of circuits/arithmetic.CheckedAdd.
func CheckedAdd(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, fmt.Errorf("%w: %d + %d", ErrOverflow, a, b)
	}
	return sum, nil
}

// CheckedSub returns a-b, or ErrUnderflow when a < b. It is the native
// counterpart of circuits/arithmetic.CheckedSub.
func CheckedSub(a, b uint64) (uint64, error) {
	diff, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0, fmt.Errorf("%w: %d - %d", ErrUnderflow, a, b)
	}
	return diff, nil
}
