// Package transcript is the in-circuit counterpart of crypto/transcript:
// it absorbs the same field elements and derives the same MiMC challenge.
package transcript

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/algebra/native/twistededwards"
	"github.com/vocdoni/gnark-crypto-primitives/utils"
	"github.com/vocdoni/zkledger/circuits"
)

// Transcript accumulates the in-circuit elements of a Fiat-Shamir
// transcript.
type Transcript struct {
	api      frontend.API
	tag      frontend.Variable
	elements []frontend.Variable
}

// New returns an empty transcript bound to the domain tag.
func New(api frontend.API, tag frontend.Variable) *Transcript {
	return &Transcript{api: api, tag: tag}
}

// AppendElement absorbs a field element.
func (t *Transcript) AppendElement(x frontend.Variable) {
	t.elements = append(t.elements, x)
}

// AppendPoint absorbs the affine coordinates of p, X first.
func (t *Transcript) AppendPoint(p twistededwards.Point) {
	t.elements = append(t.elements, p.X, p.Y)
}

// AppendBytes range checks every byte wire and absorbs the byte length
// followed by the packed chunks.
func (t *Transcript) AppendBytes(bs []frontend.Variable) {
	circuits.AssertBytes(t.api, bs)
	t.elements = append(t.elements, len(bs))
	t.elements = append(t.elements, circuits.PackBytes(t.api, bs)...)
}

// Challenge returns MiMC(tag, elements...).
func (t *Transcript) Challenge() (frontend.Variable, error) {
	inputs := make([]frontend.Variable, 0, len(t.elements)+1)
	inputs = append(inputs, t.tag)
	return utils.MiMCHasher(t.api, append(inputs, t.elements...)...)
}
