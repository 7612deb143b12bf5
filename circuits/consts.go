package circuits

import "github.com/vocdoni/zkledger/types"

// used across different circuits
const (
	// AmountBits is the width of every in-circuit amount.
	AmountBits = types.AmountBits
	// AccumulatorDepth is the depth of the ledger accumulator every validity
	// circuit is compiled for.
	AccumulatorDepth = types.AccumulatorDepth
	// ByteBits is the width of a byte wire.
	ByteBits = 8
)
