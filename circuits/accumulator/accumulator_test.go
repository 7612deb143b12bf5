package accumulator

import (
	"bytes"
	"crypto/rand"
	"math/big"
	"os"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/test"
	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/zkledger/accumulator"
	"github.com/vocdoni/zkledger/circuits"
	"github.com/vocdoni/zkledger/crypto/hash"
	"github.com/vocdoni/zkledger/params"
	"github.com/vocdoni/zkledger/types"
)

const testLeafSize = 30

func testTree(c *qt.C) (*params.Parameters, *accumulator.Tree, [][]byte) {
	p, err := params.Setup(rand.Reader)
	c.Assert(err, qt.IsNil)
	values := []byte{1, 2, 3, 10, 9, 17, 70, 45}
	leaves := make([][]byte, len(values))
	for i, v := range values {
		leaves[i] = bytes.Repeat([]byte{v}, testLeafSize)
	}
	tree, err := accumulator.NewTree(p.Hasher(), 3, leaves)
	c.Assert(err, qt.IsNil)
	return p, tree, leaves
}

// hasherCircuit exposes the gadget hashes to compare them with the native
// ones.
type hasherCircuit struct {
	Leaf       []frontend.Variable
	Left       frontend.Variable
	Right      frontend.Variable
	LeafDigest frontend.Variable `gnark:",public"`
	NodeDigest frontend.Variable `gnark:",public"`

	hasher MiMCHasher
}

func (c *hasherCircuit) Define(api frontend.API) error {
	leaf, err := c.hasher.Hash(api, c.Leaf)
	if err != nil {
		return err
	}
	api.AssertIsEqual(leaf, c.LeafDigest)
	node, err := c.hasher.Compress(api, c.Left, c.Right)
	if err != nil {
		return err
	}
	api.AssertIsEqual(node, c.NodeDigest)
	return nil
}

func TestMiMCHasherMatchesNative(t *testing.T) {
	c := qt.New(t)
	p, err := params.Setup(rand.Reader)
	c.Assert(err, qt.IsNil)
	h := p.Hasher()

	// 80 bytes span three chunks, the last one shorter
	leaf := make([]byte, types.AccountSize)
	_, err = rand.Read(leaf)
	c.Assert(err, qt.IsNil)
	leafDigest, err := h.Hash(leaf)
	c.Assert(err, qt.IsNil)
	nodeDigest, err := h.Compress(leafDigest, leafDigest)
	c.Assert(err, qt.IsNil)

	placeholder := &hasherCircuit{
		Leaf:   make([]frontend.Variable, len(leaf)),
		hasher: NewMiMCHasher(p),
	}
	assignment := &hasherCircuit{
		Leaf:       circuits.BytesToVariables(leaf),
		Left:       leafDigest.BigInt(),
		Right:      leafDigest.BigInt(),
		LeafDigest: leafDigest.BigInt(),
		NodeDigest: nodeDigest.BigInt(),
	}
	c.Assert(test.IsSolved(placeholder, assignment, ecc.BN254.ScalarField()), qt.IsNil)

	// a wire out of the byte range must be rejected even if the packed
	// chunk is the same
	assignment.Leaf[1] = int(leaf[1]) + 256
	assignment.Leaf[0] = int(leaf[0]) - 1
	c.Assert(test.IsSolved(placeholder, assignment, ecc.BN254.ScalarField()), qt.IsNotNil)
}

func TestMembershipCircuit(t *testing.T) {
	c := qt.New(t)
	p, tree, leaves := testTree(c)
	root := tree.Root()
	placeholder := NewMembershipCircuit(p, testLeafSize, tree.Depth())

	for i, leaf := range leaves {
		path, err := tree.Path(i)
		c.Assert(err, qt.IsNil)
		c.Assert(accumulator.Verify(p.Hasher(), root, leaf, path), qt.IsTrue)
		err = test.IsSolved(placeholder, MembershipAssignment(root, leaf, path), ecc.BN254.ScalarField())
		c.Assert(err, qt.IsNil, qt.Commentf("leaf %d", i))
	}

	path, err := tree.Path(4)
	c.Assert(err, qt.IsNil)

	// corrupted sibling
	corrupted := append(accumulator.Path(nil), path...)
	corrupted[1].Sibling[types.FieldSize-1] ^= 1
	c.Assert(accumulator.Verify(p.Hasher(), root, leaves[4], corrupted), qt.IsFalse)
	err = test.IsSolved(placeholder, MembershipAssignment(root, leaves[4], corrupted), ecc.BN254.ScalarField())
	c.Assert(err, qt.IsNotNil)

	// wrong leaf
	err = test.IsSolved(placeholder, MembershipAssignment(root, leaves[5], path), ecc.BN254.ScalarField())
	c.Assert(err, qt.IsNotNil)

	// wrong root
	other, err := hash.DigestFromBigInt(new(big.Int).Add(root.BigInt(), big.NewInt(1)))
	c.Assert(err, qt.IsNil)
	err = test.IsSolved(placeholder, MembershipAssignment(other, leaves[4], path), ecc.BN254.ScalarField())
	c.Assert(err, qt.IsNotNil)

	// a direction that is not a bit
	assignment := MembershipAssignment(root, leaves[4], path)
	assignment.Path[0].IsLeft = 2
	c.Assert(test.IsSolved(placeholder, assignment, ecc.BN254.ScalarField()), qt.IsNotNil)
}

func TestMembershipProver(t *testing.T) {
	if os.Getenv("RUN_CIRCUIT_TESTS") == "" || os.Getenv("RUN_CIRCUIT_TESTS") == "false" {
		t.Skip("skipping circuit tests...")
	}
	c := qt.New(t)
	p, tree, leaves := testTree(c)
	path, err := tree.Path(4)
	c.Assert(err, qt.IsNil)

	assert := test.NewAssert(t)
	assert.ProverSucceeded(
		NewMembershipCircuit(p, testLeafSize, tree.Depth()),
		MembershipAssignment(tree.Root(), leaves[4], path),
		test.WithCurves(ecc.BN254),
		test.WithBackends(backend.GROTH16))
}
