// Package schnorr verifies crypto/schnorr signatures inside a BN254
// circuit, using the native BabyJubJub arithmetic of gnark.
package schnorr

import (
	"math/big"

	tedwards "github.com/consensys/gnark-crypto/ecc/twistededwards"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/algebra/native/twistededwards"
	"github.com/vocdoni/zkledger/circuits/transcript"
	"github.com/vocdoni/zkledger/crypto/ecc/bjj"
	native "github.com/vocdoni/zkledger/crypto/schnorr"
)

// Signature is the in-circuit (S, E) pair.
type Signature struct {
	S frontend.Variable
	E frontend.Variable
}

// SignatureFromNative returns the assignment of a native signature.
func SignatureFromNative(sig *native.Signature) Signature {
	return Signature{S: new(big.Int).Set(sig.S), E: new(big.Int).Set(sig.E)}
}

// PointFromNative returns the circuit representation of a native point,
// usable both as an assignment and as a constant.
func PointFromNative(p *bjj.Point) twistededwards.Point {
	x, y := p.Coordinates()
	return twistededwards.Point{X: x, Y: y}
}

// Verify returns 1 if sig is a valid signature of msg under pk with
// generator g, 0 otherwise. The message is given as byte wires, which are
// range checked. The result must be asserted by the caller.
func Verify(api frontend.API, g, pk twistededwards.Point, msg []frontend.Variable, sig Signature) (frontend.Variable, error) {
	curve, err := twistededwards.NewEdCurve(api, tedwards.BN254)
	if err != nil {
		return nil, err
	}
	cp := curve.Params()

	// R' = S·G + E·pk
	r := curve.DoubleBaseScalarMul(g, pk, sig.S, sig.E)

	tr := transcript.New(api, native.ChallengeTag)
	tr.AppendPoint(pk)
	tr.AppendPoint(r)
	tr.AppendBytes(msg)
	e, err := tr.Challenge()
	if err != nil {
		return nil, err
	}

	valid := api.IsZero(api.Sub(e, sig.E))
	valid = api.And(valid, isLess(api, sig.S, cp.Order))
	valid = api.And(valid, isLess(api, sig.E, cp.Order))
	valid = api.And(valid, isOnCurve(api, cp, pk))
	return valid, nil
}

// isLess returns 1 if v < bound.
func isLess(api frontend.API, v frontend.Variable, bound *big.Int) frontend.Variable {
	return api.IsZero(api.Add(api.Cmp(v, bound), 1))
}

// isOnCurve returns 1 if a·x² + y² = 1 + d·x²·y².
func isOnCurve(api frontend.API, cp *twistededwards.CurveParams, p twistededwards.Point) frontend.Variable {
	xx := api.Mul(p.X, p.X)
	yy := api.Mul(p.Y, p.Y)
	lhs := api.Add(api.Mul(cp.A, xx), yy)
	rhs := api.Add(1, api.Mul(cp.D, xx, yy))
	return api.IsZero(api.Sub(lhs, rhs))
}
