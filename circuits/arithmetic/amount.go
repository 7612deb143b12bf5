// Package arithmetic implements 64-bit amounts over the BN254 scalar field
// with overflow and underflow checked addition and subtraction.
package arithmetic

import (
	"github.com/consensys/gnark/frontend"
	"github.com/vocdoni/zkledger/circuits"
)

// Amount is an unsigned 64-bit integer held as its little-endian bits.
type Amount struct {
	Bits [circuits.AmountBits]frontend.Variable
}

// NewAmount decomposes v into 64 bits, which constrains v to [0, 2^64).
func NewAmount(api frontend.API, v frontend.Variable) Amount {
	var a Amount
	copy(a.Bits[:], api.ToBinary(v, circuits.AmountBits))
	return a
}

// Value recomposes the amount into a single field element.
func (a Amount) Value(api frontend.API) frontend.Variable {
	return api.FromBinary(a.Bits[:]...)
}

// BytesBE returns the 8 big-endian byte wires of the amount, the layout
// amounts have in a serialized message.
func (a Amount) BytesBE(api frontend.API) []frontend.Variable {
	n := circuits.AmountBits / circuits.ByteBits
	out := make([]frontend.Variable, n)
	for i := range n {
		// byte i (big-endian) holds bits [8(n-1-i), 8(n-i))
		lo := circuits.ByteBits * (n - 1 - i)
		out[i] = api.FromBinary(a.Bits[lo : lo+circuits.ByteBits]...)
	}
	return out
}

// CheckedAdd returns a+b, failing the circuit when the sum does not fit in
// 64 bits. The sum is decomposed with the full field width and bit 64 must
// be zero.
func CheckedAdd(api frontend.API, a, b Amount) Amount {
	sum := api.Add(a.Value(api), b.Value(api))
	bits := api.ToBinary(sum, api.Compiler().FieldBitLen())
	api.AssertIsEqual(bits[circuits.AmountBits], 0)
	var res Amount
	copy(res.Bits[:], bits[:circuits.AmountBits])
	return res
}

// CheckedSub returns a-b, failing the circuit when b > a. The difference
// is decomposed with the full field width: an underflow wraps around the
// modulus and sets the top bit, which must be zero.
func CheckedSub(api frontend.API, a, b Amount) Amount {
	diff := api.Sub(a.Value(api), b.Value(api))
	n := api.Compiler().FieldBitLen()
	bits := api.ToBinary(diff, n)
	api.AssertIsEqual(bits[n-1], 0)
	var res Amount
	copy(res.Bits[:], bits[:circuits.AmountBits])
	return res
}
