package accumulator

import (
	"fmt"

	"github.com/consensys/gnark/frontend"
	"github.com/vocdoni/zkledger/accumulator"
	"github.com/vocdoni/zkledger/circuits"
	"github.com/vocdoni/zkledger/crypto/hash"
	"github.com/vocdoni/zkledger/params"
)

// MembershipCircuit proves that a secret fixed-size record is a member of
// the tree with the public root.
type MembershipCircuit struct {
	Root frontend.Variable `gnark:",public"`
	Leaf []frontend.Variable
	Path Path

	hasher MiMCHasher
}

// Define implements frontend.Circuit.
func (c *MembershipCircuit) Define(api frontend.API) error {
	if err := AssertMember(api, c.hasher, c.Root, c.Leaf, c.Path); err != nil {
		return fmt.Errorf("membership: %w", err)
	}
	return nil
}

// NewMembershipCircuit returns the circuit shape for leaves of leafSize
// bytes in a tree of the given depth, keyed by the parameters.
func NewMembershipCircuit(p *params.Parameters, leafSize, depth int) *MembershipCircuit {
	return &MembershipCircuit{
		Leaf:   make([]frontend.Variable, leafSize),
		Path:   Placeholder(depth),
		hasher: NewMiMCHasher(p),
	}
}

// MembershipAssignment returns the assignment proving that leaf is a member
// of root through path.
func MembershipAssignment(root hash.Digest, leaf []byte, path accumulator.Path) *MembershipCircuit {
	return &MembershipCircuit{
		Root: root.BigInt(),
		Leaf: circuits.BytesToVariables(leaf),
		Path: PathFromNative(path),
	}
}
