// Package bjj wraps the gnark-crypto BabyJubJub implementation (the twisted
// Edwards curve defined over the BN254 scalar field) with the fixed-width
// affine encoding used by keys, signatures and parameters.
package bjj

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	babyjubjub "github.com/consensys/gnark-crypto/ecc/bn254/twistededwards"
	"github.com/vocdoni/zkledger/types"
)

// Size is the size of an encoded point: X || Y, each coordinate a 32 byte
// big-endian canonical field element.
const Size = types.PublicKeySize

var curveParams = babyjubjub.GetEdwardsCurve()

// Point is an affine BabyJubJub point. The zero value is not a valid point,
// use New.
type Point struct {
	inner babyjubjub.PointAffine
}

// New returns the identity element (0, 1).
func New() *Point {
	p := &Point{}
	p.inner.X.SetZero()
	p.inner.Y.SetOne()
	return p
}

// Base returns the curve base point, the generator of the prime order
// subgroup.
func Base() *Point {
	p := &Point{}
	p.inner.Set(&curveParams.Base)
	return p
}

// Order returns the order of the prime subgroup.
func Order() *big.Int {
	return new(big.Int).Set(&curveParams.Order)
}

// RandomScalar returns a uniformly random scalar in [1, Order()).
func RandomScalar(rng io.Reader) (*big.Int, error) {
	if rng == nil {
		rng = rand.Reader
	}
	max := new(big.Int).Sub(&curveParams.Order, big.NewInt(1))
	k, err := rand.Int(rng, max)
	if err != nil {
		return nil, err
	}
	return k.Add(k, big.NewInt(1)), nil
}

// Set sets p to a and returns p.
func (p *Point) Set(a *Point) *Point {
	p.inner.Set(&a.inner)
	return p
}

// Add sets p = a + b and returns p.
func (p *Point) Add(a, b *Point) *Point {
	p.inner.Add(&a.inner, &b.inner)
	return p
}

// ScalarMult sets p = s·a and returns p.
func (p *Point) ScalarMult(a *Point, s *big.Int) *Point {
	p.inner.ScalarMultiplication(&a.inner, s)
	return p
}

// Equal reports whether both points are the same.
func (p *Point) Equal(a *Point) bool {
	return p.inner.Equal(&a.inner)
}

// IsZero reports whether p is the identity element.
func (p *Point) IsZero() bool {
	return p.inner.X.IsZero() && p.inner.Y.IsOne()
}

// IsOnCurve reports whether p satisfies the curve equation.
func (p *Point) IsOnCurve() bool {
	return p.inner.IsOnCurve()
}

// InSubgroup reports whether p lies in the prime order subgroup.
func (p *Point) InSubgroup() bool {
	return new(Point).ScalarMult(p, &curveParams.Order).IsZero()
}

// Coordinates returns the affine coordinates of p.
func (p *Point) Coordinates() (*big.Int, *big.Int) {
	x, y := new(big.Int), new(big.Int)
	p.inner.X.BigInt(x)
	p.inner.Y.BigInt(y)
	return x, y
}

// Marshal encodes p as X || Y.
func (p *Point) Marshal() []byte {
	buf := make([]byte, 0, Size)
	x, y := p.inner.X.Bytes(), p.inner.Y.Bytes()
	buf = append(buf, x[:]...)
	return append(buf, y[:]...)
}

// Unmarshal decodes an X || Y encoding. It rejects non-canonical
// coordinates, points off the curve and points outside the prime subgroup.
func (p *Point) Unmarshal(buf []byte) error {
	if len(buf) != Size {
		return fmt.Errorf("%w: point must be %d bytes, got %d", types.ErrSerialization, Size, len(buf))
	}
	var q Point
	for i, coord := range []*fr.Element{&q.inner.X, &q.inner.Y} {
		v := new(big.Int).SetBytes(buf[i*types.FieldSize : (i+1)*types.FieldSize])
		if v.Cmp(fr.Modulus()) >= 0 {
			return fmt.Errorf("%w: non-canonical point coordinate", types.ErrSerialization)
		}
		coord.SetBigInt(v)
	}
	if !q.IsOnCurve() {
		return fmt.Errorf("%w: point is not on the curve", types.ErrSerialization)
	}
	if !q.InSubgroup() {
		return fmt.Errorf("%w: point is not in the prime subgroup", types.ErrSerialization)
	}
	p.inner.Set(&q.inner)
	return nil
}

// String returns a string representation of the point coordinates.
func (p *Point) String() string {
	x, y := p.Coordinates()
	return fmt.Sprintf("%s,%s", x.String(), y.String())
}
