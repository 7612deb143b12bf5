// Package transcript implements a Fiat-Shamir transcript over MiMC: the
// prover's messages are absorbed as BN254 scalar field elements and the
// challenge is the MiMC digest of the domain tag followed by all of them.
// circuits/transcript absorbs exactly the same elements in-circuit.
package transcript

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/vocdoni/zkledger/crypto/ecc/bjj"
	"github.com/vocdoni/zkledger/crypto/hash"
)

// Transcript accumulates field elements. It is not safe for concurrent use.
type Transcript struct {
	tag      *big.Int
	elements []*big.Int
}

// New returns an empty transcript bound to the domain tag.
func New(tag *big.Int) *Transcript {
	return &Transcript{tag: tag}
}

// AppendElement absorbs a single field element.
func (t *Transcript) AppendElement(x *big.Int) error {
	if x.Sign() < 0 || x.Cmp(fr.Modulus()) >= 0 {
		return fmt.Errorf("transcript element out of field")
	}
	t.elements = append(t.elements, new(big.Int).Set(x))
	return nil
}

// AppendPoint absorbs the affine coordinates of p, X first.
func (t *Transcript) AppendPoint(p *bjj.Point) {
	x, y := p.Coordinates()
	t.elements = append(t.elements, x, y)
}

// AppendBytes absorbs the length of b followed by its packed chunks.
func (t *Transcript) AppendBytes(b []byte) {
	t.elements = append(t.elements, big.NewInt(int64(len(b))))
	t.elements = append(t.elements, hash.PackBytes(b)...)
}

// Elements returns the absorbed elements, tag excluded.
func (t *Transcript) Elements() []*big.Int {
	return t.elements
}

// Challenge returns MiMC(tag, elements...). It does not reset the
// transcript.
func (t *Transcript) Challenge() (*big.Int, error) {
	return hash.MiMCElements(append([]*big.Int{t.tag}, t.elements...)...)
}
