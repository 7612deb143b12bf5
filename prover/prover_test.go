package prover

import (
	"bytes"
	"context"
	"crypto/rand"
	"os"
	"testing"

	"github.com/consensys/gnark/frontend"
	qt "github.com/frankban/quicktest"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/vocdoni/zkledger/accumulator"
	"github.com/vocdoni/zkledger/circuits"
	circuitacc "github.com/vocdoni/zkledger/circuits/accumulator"
	"github.com/vocdoni/zkledger/circuits/validity"
	"github.com/vocdoni/zkledger/crypto/schnorr"
	"github.com/vocdoni/zkledger/ledger"
	"github.com/vocdoni/zkledger/params"
)

const testLeafSize = 30

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "zkledger-prover-test")
	if err != nil {
		panic(err)
	}
	circuits.BaseDir = dir
	code := m.Run()
	if err := os.RemoveAll(dir); err != nil {
		panic(err)
	}
	os.Exit(code)
}

type membershipFixture struct {
	params *params.Parameters
	tree   *accumulator.Tree
	leaves [][]byte
	keys   *Keys
}

func newMembershipFixture(c *qt.C) *membershipFixture {
	p, err := params.Setup(rand.Reader)
	c.Assert(err, qt.IsNil)
	values := []byte{1, 2, 3, 10, 9, 17, 70, 45}
	leaves := make([][]byte, len(values))
	for i, v := range values {
		leaves[i] = bytes.Repeat([]byte{v}, testLeafSize)
	}
	tree, err := accumulator.NewTree(p.Hasher(), 3, leaves)
	c.Assert(err, qt.IsNil)
	keys, err := Setup(circuitacc.NewMembershipCircuit(p, testLeafSize, tree.Depth()))
	c.Assert(err, qt.IsNil)
	return &membershipFixture{params: p, tree: tree, leaves: leaves, keys: keys}
}

func (f *membershipFixture) assignment(c *qt.C, i int) *circuitacc.MembershipCircuit {
	path, err := f.tree.Path(i)
	c.Assert(err, qt.IsNil)
	return circuitacc.MembershipAssignment(f.tree.Root(), f.leaves[i], path)
}

func TestProveVerify(t *testing.T) {
	c := qt.New(t)
	f := newMembershipFixture(c)

	okBefore := testutil.ToFloat64(proofsTotal.WithLabelValues(resultOK))
	proof, err := Prove(f.keys, f.assignment(c, 4))
	c.Assert(err, qt.IsNil)
	c.Assert(testutil.ToFloat64(proofsTotal.WithLabelValues(resultOK)), qt.Equals, okBefore+1)

	valid, err := Verify(f.keys.VerifyingKey, proof, &circuitacc.MembershipCircuit{Root: f.tree.Root().BigInt()})
	c.Assert(err, qt.IsNil)
	c.Assert(valid, qt.IsTrue)

	// same proof against a different root
	other, err := accumulator.NewTree(f.params.Hasher(), 3, f.leaves[:7])
	c.Assert(err, qt.IsNil)
	valid, err = Verify(f.keys.VerifyingKey, proof, &circuitacc.MembershipCircuit{Root: other.Root().BigInt()})
	c.Assert(err, qt.IsNil)
	c.Assert(valid, qt.IsFalse)

	_, err = Verify(f.keys.VerifyingKey, []byte{1, 2, 3}, &circuitacc.MembershipCircuit{Root: f.tree.Root().BigInt()})
	c.Assert(err, qt.IsNotNil)
}

func TestConstraintViolation(t *testing.T) {
	c := qt.New(t)
	f := newMembershipFixture(c)

	assignment := f.assignment(c, 4)
	c.Assert(CheckSatisfied(f.keys.CS, assignment), qt.IsNil)

	assignment.Leaf = f.assignment(c, 5).Leaf
	c.Assert(CheckSatisfied(f.keys.CS, assignment), qt.ErrorIs, ErrConstraintViolation)
	_, err := Prove(f.keys, assignment)
	c.Assert(err, qt.ErrorIs, ErrConstraintViolation)
}

func TestKeysStoreLoad(t *testing.T) {
	c := qt.New(t)
	f := newMembershipFixture(c)

	hashes, err := f.keys.Store()
	c.Assert(err, qt.IsNil)
	c.Assert(hashes.ProvingKey, qt.HasLen, 32)

	keys, err := LoadKeys(hashes)
	c.Assert(err, qt.IsNil)
	proof, err := Prove(keys, f.assignment(c, 2))
	c.Assert(err, qt.IsNil)

	vk, err := LoadVerifyingKey(hashes.VerifyingKey)
	c.Assert(err, qt.IsNil)
	valid, err := Verify(vk, proof, &circuitacc.MembershipCircuit{Root: f.tree.Root().BigInt()})
	c.Assert(err, qt.IsNil)
	c.Assert(valid, qt.IsTrue)

	_, err = LoadVerifyingKey(hashes.ConstraintSystem[:4])
	c.Assert(err, qt.ErrorIs, circuits.ErrArtifactNotFound)
}

func TestProveBatch(t *testing.T) {
	c := qt.New(t)
	f := newMembershipFixture(c)

	assignments := make([]frontend.Circuit, len(f.leaves))
	for i := range f.leaves {
		assignments[i] = f.assignment(c, i)
	}
	proofs, err := ProveBatch(context.Background(), f.keys, assignments, 3)
	c.Assert(err, qt.IsNil)
	c.Assert(proofs, qt.HasLen, len(f.leaves))
	for i, proof := range proofs {
		valid, err := Verify(f.keys.VerifyingKey, proof, &circuitacc.MembershipCircuit{Root: f.tree.Root().BigInt()})
		c.Assert(err, qt.IsNil)
		c.Assert(valid, qt.IsTrue, qt.Commentf("proof %d", i))
	}

	// one bad assignment fails the whole batch
	bad := f.assignment(c, 0)
	bad.Leaf = f.assignment(c, 1).Leaf
	_, err = ProveBatch(context.Background(), f.keys, append(assignments, bad), 0)
	c.Assert(err, qt.ErrorIs, ErrConstraintViolation)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = ProveBatch(ctx, f.keys, assignments, 2)
	c.Assert(err, qt.ErrorIs, context.Canceled)
}

func TestRegisterMetrics(t *testing.T) {
	c := qt.New(t)
	reg := prometheus.NewRegistry()
	c.Assert(RegisterMetrics(reg), qt.IsNil)
	c.Assert(RegisterMetrics(reg), qt.IsNotNil)
}

func TestValidityProof(t *testing.T) {
	if os.Getenv("RUN_CIRCUIT_TESTS") == "" || os.Getenv("RUN_CIRCUIT_TESTS") == "false" {
		t.Skip("skipping circuit tests...")
	}
	c := qt.New(t)
	p, err := params.Setup(rand.Reader)
	c.Assert(err, qt.IsNil)

	accounts := make([]*ledger.Account, 4)
	secrets := make([]*schnorr.SecretKey, 4)
	for i := range accounts {
		pk, sk, err := schnorr.KeyGen(p, rand.Reader)
		c.Assert(err, qt.IsNil)
		accounts[i], secrets[i] = &ledger.Account{PublicKey: pk, Balance: 1000}, sk
	}
	const depth = 8
	snap, err := ledger.NewSnapshot(p, depth, accounts)
	c.Assert(err, qt.IsNil)

	tx := &ledger.Transaction{Recipient: accounts[3].PublicKey, Amount: 500, Fee: 5}
	sig, err := tx.Sign(p, secrets[1], accounts[1].PublicKey, rand.Reader)
	c.Assert(err, qt.IsNil)
	w, err := validity.WitnessFromSnapshot(snap, accounts[1].PublicKey, tx, sig)
	c.Assert(err, qt.IsNil)
	c.Assert(w.Check(p), qt.IsNil)
	assignment, err := validity.NewAssignment(w)
	c.Assert(err, qt.IsNil)

	keys, err := Setup(validity.Placeholder(p, depth))
	c.Assert(err, qt.IsNil)
	proof, err := Prove(keys, assignment)
	c.Assert(err, qt.IsNil)

	valid, err := Verify(keys.VerifyingKey, proof, validity.PublicAssignment(snap.Root()))
	c.Assert(err, qt.IsNil)
	c.Assert(valid, qt.IsTrue)

	accounts[0].Balance++
	changed, err := ledger.NewSnapshot(p, depth, accounts)
	c.Assert(err, qt.IsNil)
	valid, err = Verify(keys.VerifyingKey, proof, validity.PublicAssignment(changed.Root()))
	c.Assert(err, qt.IsNil)
	c.Assert(valid, qt.IsFalse)
}
