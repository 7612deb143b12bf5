package schnorr

import (
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/algebra/native/twistededwards"
	"github.com/consensys/gnark/test"
	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/zkledger/circuits"
	"github.com/vocdoni/zkledger/crypto/ecc/bjj"
	native "github.com/vocdoni/zkledger/crypto/schnorr"
	"github.com/vocdoni/zkledger/params"
)

// verifyCircuit exposes the gadget verdict as a public input so that both
// accepted and rejected signatures can be checked against the native one.
type verifyCircuit struct {
	PublicKey twistededwards.Point
	Message   []frontend.Variable
	Signature Signature
	Valid     frontend.Variable `gnark:",public"`

	generator twistededwards.Point `gnark:"-"`
}

func (c *verifyCircuit) Define(api frontend.API) error {
	valid, err := Verify(api, c.generator, c.PublicKey, c.Message, c.Signature)
	if err != nil {
		return err
	}
	api.AssertIsEqual(valid, c.Valid)
	return nil
}

type fixture struct {
	p   *params.Parameters
	pk  *native.PublicKey
	sk  *native.SecretKey
	msg []byte
	sig *native.Signature
}

func newFixture(c *qt.C) *fixture {
	p, err := params.Setup(rand.Reader)
	c.Assert(err, qt.IsNil)
	pk, sk, err := native.KeyGen(p, rand.Reader)
	c.Assert(err, qt.IsNil)
	msg := []byte("transfer 10 tokens to the recipient with a fee of 1")
	sig, err := native.Sign(p, sk, pk, msg, rand.Reader)
	c.Assert(err, qt.IsNil)
	return &fixture{p: p, pk: pk, sk: sk, msg: msg, sig: sig}
}

// agree checks that the gadget returns the same verdict as the native
// verifier.
func agree(c *qt.C, p *params.Parameters, pk *native.PublicKey, msg []byte, sig *native.Signature) bool {
	want := native.Verify(p, pk, msg, sig)
	placeholder := &verifyCircuit{
		Message:   make([]frontend.Variable, len(msg)),
		generator: PointFromNative(p.Generator),
	}
	assignment := &verifyCircuit{
		PublicKey: PointFromNative(pk.Point),
		Message:   circuits.BytesToVariables(msg),
		Signature: SignatureFromNative(sig),
		Valid:     circuits.BoolToBigInt(want),
	}
	c.Assert(test.IsSolved(placeholder, assignment, ecc.BN254.ScalarField()), qt.IsNil)
	// the opposite verdict must not be provable
	assignment.Valid = circuits.BoolToBigInt(!want)
	c.Assert(test.IsSolved(placeholder, assignment, ecc.BN254.ScalarField()), qt.IsNotNil)
	return want
}

func TestVerifyValid(t *testing.T) {
	c := qt.New(t)
	f := newFixture(c)
	c.Assert(agree(c, f.p, f.pk, f.msg, f.sig), qt.IsTrue)
}

func TestVerifyWrongMessage(t *testing.T) {
	c := qt.New(t)
	f := newFixture(c)
	msg := append([]byte(nil), f.msg...)
	msg[0] ^= 1
	c.Assert(agree(c, f.p, f.pk, msg, f.sig), qt.IsFalse)
}

func TestVerifyWrongKey(t *testing.T) {
	c := qt.New(t)
	f := newFixture(c)
	other, _, err := native.KeyGen(f.p, rand.Reader)
	c.Assert(err, qt.IsNil)
	c.Assert(agree(c, f.p, other, f.msg, f.sig), qt.IsFalse)
}

func TestVerifyTamperedSignature(t *testing.T) {
	c := qt.New(t)
	f := newFixture(c)
	tampered := &native.Signature{S: new(big.Int).Add(f.sig.S, big.NewInt(1)), E: f.sig.E}
	tampered.S.Mod(tampered.S, bjj.Order())
	c.Assert(agree(c, f.p, f.pk, f.msg, tampered), qt.IsFalse)
}

func TestVerifyNonCanonicalResponse(t *testing.T) {
	c := qt.New(t)
	f := newFixture(c)
	// S + l yields the same R', only the range check rejects it
	shifted := &native.Signature{S: new(big.Int).Add(f.sig.S, bjj.Order()), E: f.sig.E}
	c.Assert(agree(c, f.p, f.pk, f.msg, shifted), qt.IsFalse)
}
