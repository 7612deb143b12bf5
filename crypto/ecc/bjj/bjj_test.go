package bjj

import (
	"crypto/rand"
	"math/big"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/iden3/go-iden3-crypto/babyjub"
	"github.com/vocdoni/zkledger/types"
)

func TestOrder(t *testing.T) {
	c := qt.New(t)
	// both implementations describe the same prime subgroup
	c.Assert(Order().Cmp(babyjub.SubOrder), qt.Equals, 0)
	c.Assert(Base().IsOnCurve(), qt.IsTrue)
	c.Assert(Base().InSubgroup(), qt.IsTrue)
	c.Assert(new(Point).ScalarMult(Base(), Order()).IsZero(), qt.IsTrue)
}

func TestGroupLaw(t *testing.T) {
	c := qt.New(t)
	g := Base()
	double := new(Point).Add(g, g)
	c.Assert(new(Point).ScalarMult(g, big.NewInt(2)).Equal(double), qt.IsTrue)

	a, err := RandomScalar(rand.Reader)
	c.Assert(err, qt.IsNil)
	b, err := RandomScalar(rand.Reader)
	c.Assert(err, qt.IsNil)
	sum := new(big.Int).Add(a, b)
	lhs := new(Point).ScalarMult(g, sum)
	rhs := new(Point).Add(new(Point).ScalarMult(g, a), new(Point).ScalarMult(g, b))
	c.Assert(lhs.Equal(rhs), qt.IsTrue)
	c.Assert(New().IsZero(), qt.IsTrue)
	c.Assert(new(Point).Add(g, New()).Equal(g), qt.IsTrue)
}

func TestMarshalUnmarshal(t *testing.T) {
	c := qt.New(t)
	k, err := RandomScalar(nil)
	c.Assert(err, qt.IsNil)
	p := new(Point).ScalarMult(Base(), k)
	buf := p.Marshal()
	c.Assert(buf, qt.HasLen, Size)

	q := New()
	c.Assert(q.Unmarshal(buf), qt.IsNil)
	c.Assert(q.Equal(p), qt.IsTrue)
	x, y := q.Coordinates()
	px, py := p.Coordinates()
	c.Assert(x.Cmp(px), qt.Equals, 0)
	c.Assert(y.Cmp(py), qt.Equals, 0)
}

func TestUnmarshalRejects(t *testing.T) {
	c := qt.New(t)
	p := New()
	c.Assert(p.Unmarshal(make([]byte, Size-1)), qt.ErrorIs, types.ErrSerialization)

	// (1, 1) is not on the curve
	buf := make([]byte, Size)
	buf[types.FieldSize-1] = 1
	buf[Size-1] = 1
	c.Assert(p.Unmarshal(buf), qt.ErrorIs, types.ErrSerialization)

	// coordinates equal to the modulus are not canonical
	buf = Base().Marshal()
	for i := range types.FieldSize {
		buf[i] = 0xff
	}
	c.Assert(p.Unmarshal(buf), qt.ErrorIs, types.ErrSerialization)
	c.Assert(p.IsZero(), qt.IsTrue)
}
