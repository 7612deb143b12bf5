package hash

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
)

// MiMC is the default hash family. It is the only one with an in-circuit
// counterpart (circuits/accumulator.MiMCHasher), which absorbs exactly the
// same field elements.
type MiMC struct {
	leafTag *big.Int
	nodeTag *big.Int
}

var _ Hasher = (*MiMC)(nil)

// NewMiMC returns a MiMC family domain-separated by the leaf and node tags.
func NewMiMC(leafTag, nodeTag *big.Int) *MiMC {
	return &MiMC{leafTag: leafTag, nodeTag: nodeTag}
}

// Hash digests a record as MiMC(leafTag, len(data), chunks(data)...).
func (m *MiMC) Hash(data []byte) (Digest, error) {
	res, err := MiMCElements(absorbBytes(m.leafTag, data)...)
	if err != nil {
		return Digest{}, err
	}
	return DigestFromBigInt(res)
}

// Compress combines two digests as MiMC(nodeTag, left, right).
func (m *MiMC) Compress(left, right Digest) (Digest, error) {
	res, err := MiMCElements(m.nodeTag, left.BigInt(), right.BigInt())
	if err != nil {
		return Digest{}, err
	}
	return DigestFromBigInt(res)
}

// MiMCElements hashes the inputs with the BN254 MiMC construction, writing
// each input as a full field element block. It matches the in-circuit
// std/hash/mimc gadget fed with the same values.
func MiMCElements(inputs ...*big.Int) (*big.Int, error) {
	h := mimc.NewMiMC()
	for i, in := range inputs {
		if in.Sign() < 0 || in.Cmp(fr.Modulus()) >= 0 {
			return nil, fmt.Errorf("mimc input %d out of field", i)
		}
		var e fr.Element
		e.SetBigInt(in)
		block := e.Bytes()
		if _, err := h.Write(block[:]); err != nil {
			return nil, fmt.Errorf("mimc write: %w", err)
		}
	}
	return new(big.Int).SetBytes(h.Sum(nil)), nil
}
