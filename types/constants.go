package types

const (
	// FieldSize is the size in bytes of a serialized BN254 scalar field
	// element. Digests, scalars and point coordinates use it.
	FieldSize = 32
	// ChunkSize is the number of bytes packed into a single field element
	// when bytes are absorbed by a hash. It keeps every chunk below the
	// field modulus.
	ChunkSize = FieldSize - 1
	// PublicKeySize is the size of an affine X || Y public key encoding.
	PublicKeySize = 2 * FieldSize
	// SignatureSize is the size of an S || E signature encoding.
	SignatureSize = 2 * FieldSize
	// AmountSize is the size of a big-endian encoded amount or nonce.
	AmountSize = 8
	// AmountBits is the width of an amount in bits.
	AmountBits = 8 * AmountSize
	// AccountSize is the size of an account record, the accumulator leaf of
	// the ledger: pk.X || pk.Y || balance || nonce.
	AccountSize = PublicKeySize + 2*AmountSize
	// TransactionSize is the size of the signed transaction message:
	// recipient pk || amount || fee || nonce.
	TransactionSize = PublicKeySize + 3*AmountSize
	// AccumulatorDepth is the depth of the ledger snapshot tree, so a
	// snapshot holds up to 2^AccumulatorDepth accounts.
	AccumulatorDepth = 20
)
