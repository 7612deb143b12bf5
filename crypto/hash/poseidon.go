package hash

import (
	"fmt"
	"math/big"

	"github.com/iden3/go-iden3-crypto/poseidon"
)

// Poseidon is an alternative native hash family backed by the iden3
// implementation. It has no in-circuit counterpart, so trees built with it
// can be checked natively only.
type Poseidon struct {
	leafTag *big.Int
	nodeTag *big.Int
}

var _ Hasher = (*Poseidon)(nil)

// NewPoseidon returns a Poseidon family domain-separated by the leaf and node
// tags.
func NewPoseidon(leafTag, nodeTag *big.Int) *Poseidon {
	return &Poseidon{leafTag: leafTag, nodeTag: nodeTag}
}

func (p *Poseidon) Hash(data []byte) (Digest, error) {
	res, err := MultiPoseidon(absorbBytes(p.leafTag, data)...)
	if err != nil {
		return Digest{}, err
	}
	return DigestFromBigInt(res)
}

func (p *Poseidon) Compress(left, right Digest) (Digest, error) {
	res, err := poseidon.Hash([]*big.Int{p.nodeTag, left.BigInt(), right.BigInt()})
	if err != nil {
		return Digest{}, err
	}
	return DigestFromBigInt(res)
}

// MultiPoseidon hashes more inputs than a single Poseidon permutation
// accepts: inputs are hashed in chunks of 16 and the chunk hashes are hashed
// together.
func MultiPoseidon(inputs ...*big.Int) (*big.Int, error) {
	if len(inputs) > 256 {
		return nil, fmt.Errorf("too many inputs")
	} else if len(inputs) == 0 {
		return nil, fmt.Errorf("no inputs provided")
	}
	// calculate chunk hashes
	hashes := []*big.Int{}
	chunk := []*big.Int{}
	for _, input := range inputs {
		if len(chunk) == 16 {
			hash, err := poseidon.Hash(chunk)
			if err != nil {
				return nil, err
			}
			hashes = append(hashes, hash)
			chunk = []*big.Int{}
		}
		chunk = append(chunk, input)
	}
	// if the final chunk is not empty, hash it to get the last chunk hash
	if len(chunk) > 0 {
		hash, err := poseidon.Hash(chunk)
		if err != nil {
			return nil, err
		}
		hashes = append(hashes, hash)
	}
	if len(hashes) == 1 {
		return hashes[0], nil
	}
	return poseidon.Hash(hashes)
}
