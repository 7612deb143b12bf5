// Package params holds the immutable cryptographic setup shared by every
// native and in-circuit component: the domain tags of the leaf and
// two-to-one hashes and the signature generator.
package params

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/fxamacker/cbor/v2"
	"github.com/vocdoni/zkledger/crypto/ecc/bjj"
	"github.com/vocdoni/zkledger/crypto/hash"
	"github.com/vocdoni/zkledger/log"
	"github.com/vocdoni/zkledger/types"
	"github.com/vocdoni/zkledger/util"
)

// ErrSetupFailure is returned when the setup cannot produce valid
// parameters. It is fatal for the setup that triggered it.
var ErrSetupFailure = errors.New("parameter setup failed")

// Parameters are generated once and never mutated afterwards. Every
// component receives them by pointer.
type Parameters struct {
	// LeafHash is the domain tag of the leaf hash.
	LeafHash *big.Int
	// TwoToOneHash is the domain tag of the two-to-one compression.
	TwoToOneHash *big.Int
	// Generator is the signature generator, a point of the prime order
	// subgroup different from the identity.
	Generator *bjj.Point
}

// Setup generates fresh parameters reading randomness from rng. A nil rng
// uses crypto/rand.
func Setup(rng io.Reader) (*Parameters, error) {
	if rng == nil {
		rng = rand.Reader
	}
	leafTag, err := util.RandomFieldElement(rng)
	if err != nil {
		return nil, fmt.Errorf("%w: leaf hash tag: %v", ErrSetupFailure, err)
	}
	nodeTag, err := util.RandomFieldElement(rng)
	if err != nil {
		return nil, fmt.Errorf("%w: two-to-one hash tag: %v", ErrSetupFailure, err)
	}
	k, err := bjj.RandomScalar(rng)
	if err != nil {
		return nil, fmt.Errorf("%w: generator: %v", ErrSetupFailure, err)
	}
	p := &Parameters{
		LeafHash:     leafTag,
		TwoToOneHash: nodeTag,
		Generator:    new(bjj.Point).ScalarMult(bjj.Base(), k),
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSetupFailure, err)
	}
	log.Debugw("parameters generated", "leafTag", util.PrettyHex(leafTag), "nodeTag", util.PrettyHex(nodeTag))
	return p, nil
}

// FromSeed derives parameters deterministically from a public seed, so that
// anyone can recompute them and check that no trapdoor was chosen.
func FromSeed(seed []byte) (*Parameters, error) {
	if len(seed) == 0 {
		return nil, fmt.Errorf("%w: empty seed", ErrSetupFailure)
	}
	derive := func(label string) *big.Int {
		return new(big.Int).SetBytes(ethcrypto.Keccak256([]byte("zkledger/"+label), seed))
	}
	k := new(big.Int).Mod(derive("generator"), bjj.Order())
	p := &Parameters{
		LeafHash:     util.BigToFF(derive("leaf")),
		TwoToOneHash: util.BigToFF(derive("two-to-one")),
		Generator:    new(bjj.Point).ScalarMult(bjj.Base(), k),
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSetupFailure, err)
	}
	return p, nil
}

// Validate checks the invariants every parameter set holds.
func (p *Parameters) Validate() error {
	if p.LeafHash == nil || p.TwoToOneHash == nil || p.Generator == nil {
		return fmt.Errorf("incomplete parameters")
	}
	for _, tag := range []*big.Int{p.LeafHash, p.TwoToOneHash} {
		if tag.Sign() < 0 || tag.Cmp(fr.Modulus()) >= 0 {
			return fmt.Errorf("hash tag out of field")
		}
	}
	if p.LeafHash.Cmp(p.TwoToOneHash) == 0 {
		return fmt.Errorf("leaf and two-to-one hash tags must differ")
	}
	if p.Generator.IsZero() || !p.Generator.IsOnCurve() || !p.Generator.InSubgroup() {
		return fmt.Errorf("generator is not a prime order point")
	}
	return nil
}

// Hasher returns the MiMC hash family keyed by the parameters, the one with
// an in-circuit counterpart.
func (p *Parameters) Hasher() hash.Hasher {
	return hash.NewMiMC(p.LeafHash, p.TwoToOneHash)
}

// encodedParameters is the persisted form of Parameters.
type encodedParameters struct {
	LeafHash     types.HexBytes `cbor:"1,keyasint"`
	TwoToOneHash types.HexBytes `cbor:"2,keyasint"`
	Generator    types.HexBytes `cbor:"3,keyasint"`
}

// Marshal encodes the parameters with deterministic CBOR.
func (p *Parameters) Marshal() ([]byte, error) {
	leaf, err := hash.DigestFromBigInt(p.LeafHash)
	if err != nil {
		return nil, err
	}
	node, err := hash.DigestFromBigInt(p.TwoToOneHash)
	if err != nil {
		return nil, err
	}
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return nil, fmt.Errorf("encode parameters: %w", err)
	}
	return em.Marshal(encodedParameters{
		LeafHash:     leaf.Bytes(),
		TwoToOneHash: node.Bytes(),
		Generator:    p.Generator.Marshal(),
	})
}

// Unmarshal decodes and validates parameters produced by Marshal.
func Unmarshal(data []byte) (*Parameters, error) {
	var enc encodedParameters
	if err := cbor.Unmarshal(data, &enc); err != nil {
		return nil, fmt.Errorf("%w: parameters: %v", types.ErrSerialization, err)
	}
	leaf, err := hash.UnmarshalDigest(enc.LeafHash)
	if err != nil {
		return nil, err
	}
	node, err := hash.UnmarshalDigest(enc.TwoToOneHash)
	if err != nil {
		return nil, err
	}
	gen := bjj.New()
	if err := gen.Unmarshal(enc.Generator); err != nil {
		return nil, err
	}
	p := &Parameters{
		LeafHash:     leaf.BigInt(),
		TwoToOneHash: node.BigInt(),
		Generator:    gen,
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrSerialization, err)
	}
	return p, nil
}
