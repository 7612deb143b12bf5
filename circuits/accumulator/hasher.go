// Package accumulator implements the in-circuit membership check of a byte
// record in a fixed-depth positional tree built by the accumulator package.
package accumulator

import (
	"math/big"

	"github.com/consensys/gnark/frontend"
	"github.com/vocdoni/gnark-crypto-primitives/utils"
	"github.com/vocdoni/zkledger/circuits"
	"github.com/vocdoni/zkledger/params"
)

// Hasher is the in-circuit capability a tree hash family must provide. The
// leaf bytes are expected to be range checked by the implementation.
type Hasher interface {
	Hash(api frontend.API, leaf []frontend.Variable) (frontend.Variable, error)
	Compress(api frontend.API, left, right frontend.Variable) (frontend.Variable, error)
}

// MiMCHasher is the in-circuit counterpart of hash.MiMC. The tags are
// circuit constants.
type MiMCHasher struct {
	leafTag *big.Int
	nodeTag *big.Int
}

var _ Hasher = MiMCHasher{}

// NewMiMCHasher returns the hasher keyed by the parameters tags.
func NewMiMCHasher(p *params.Parameters) MiMCHasher {
	return MiMCHasher{
		leafTag: new(big.Int).Set(p.LeafHash),
		nodeTag: new(big.Int).Set(p.TwoToOneHash),
	}
}

// Hash range checks every leaf byte and absorbs the leaf tag, the leaf
// length and the packed leaf bytes.
func (h MiMCHasher) Hash(api frontend.API, leaf []frontend.Variable) (frontend.Variable, error) {
	circuits.AssertBytes(api, leaf)
	inputs := []frontend.Variable{h.leafTag, len(leaf)}
	inputs = append(inputs, circuits.PackBytes(api, leaf)...)
	return utils.MiMCHasher(api, inputs...)
}

// Compress absorbs the node tag and both children.
func (h MiMCHasher) Compress(api frontend.API, left, right frontend.Variable) (frontend.Variable, error) {
	return utils.MiMCHasher(api, h.nodeTag, left, right)
}
