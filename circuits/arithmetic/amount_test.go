package arithmetic

import (
	"math"
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/test"
	qt "github.com/frankban/quicktest"
)

type opCircuit struct {
	A        frontend.Variable
	B        frontend.Variable
	Expected frontend.Variable `gnark:",public"`

	sub bool
}

func (c *opCircuit) Define(api frontend.API) error {
	a, b := NewAmount(api, c.A), NewAmount(api, c.B)
	var res Amount
	if c.sub {
		res = CheckedSub(api, a, b)
	} else {
		res = CheckedAdd(api, a, b)
	}
	api.AssertIsEqual(res.Value(api), c.Expected)
	return nil
}

func solve(sub bool, a, b, expected any) error {
	return test.IsSolved(&opCircuit{sub: sub}, &opCircuit{A: a, B: b, Expected: expected}, ecc.BN254.ScalarField())
}

func TestCheckedAdd(t *testing.T) {
	c := qt.New(t)
	c.Assert(solve(false, 5, 7, 12), qt.IsNil)
	c.Assert(solve(false, 5, 7, 13), qt.IsNotNil)
	c.Assert(solve(false, uint64(math.MaxUint64-1), 1, uint64(math.MaxUint64)), qt.IsNil)
	c.Assert(solve(false, 0, 0, 0), qt.IsNil)

	// 2^64-1 + 1 overflows, whatever the claimed result
	c.Assert(solve(false, uint64(math.MaxUint64), 1, 0), qt.IsNotNil)
	twoTo64 := new(big.Int).Lsh(big.NewInt(1), 64)
	c.Assert(solve(false, uint64(math.MaxUint64), 1, twoTo64), qt.IsNotNil)

	// inputs must be 64-bit values
	c.Assert(solve(false, twoTo64, 0, twoTo64), qt.IsNotNil)
}

func TestCheckedSub(t *testing.T) {
	c := qt.New(t)
	c.Assert(solve(true, 10, 3, 7), qt.IsNil)
	c.Assert(solve(true, 10, 10, 0), qt.IsNil)
	c.Assert(solve(true, uint64(math.MaxUint64), uint64(math.MaxUint64), 0), qt.IsNil)
	c.Assert(solve(true, uint64(math.MaxUint64), 0, uint64(math.MaxUint64)), qt.IsNil)

	// 3 - 10 underflows, whatever the claimed result
	c.Assert(solve(true, 3, 10, 0), qt.IsNotNil)
	wrapped := new(big.Int).Sub(ecc.BN254.ScalarField(), big.NewInt(7))
	c.Assert(solve(true, 3, 10, wrapped), qt.IsNotNil)
	c.Assert(solve(true, 0, uint64(math.MaxUint64), 1), qt.IsNotNil)
}

type bytesCircuit struct {
	A     frontend.Variable
	Bytes [8]frontend.Variable `gnark:",public"`
}

func (c *bytesCircuit) Define(api frontend.API) error {
	bs := NewAmount(api, c.A).BytesBE(api)
	for i := range bs {
		api.AssertIsEqual(bs[i], c.Bytes[i])
	}
	return nil
}

func TestBytesBE(t *testing.T) {
	c := qt.New(t)
	assignment := &bytesCircuit{
		A:     uint64(0x0102030405060708),
		Bytes: [8]frontend.Variable{1, 2, 3, 4, 5, 6, 7, 8},
	}
	c.Assert(test.IsSolved(&bytesCircuit{}, assignment, ecc.BN254.ScalarField()), qt.IsNil)

	assignment.Bytes = [8]frontend.Variable{8, 7, 6, 5, 4, 3, 2, 1}
	c.Assert(test.IsSolved(&bytesCircuit{}, assignment, ecc.BN254.ScalarField()), qt.IsNotNil)
}
