// Package schnorr implements Schnorr signatures over the BabyJubJub prime
// order subgroup, with the challenge derived from a MiMC transcript so that
// signatures can be verified cheaply inside a BN254 circuit.
//
// A signature is the pair (S, E) where, for a nonce k and R = k·G,
//
//	E = MiMC(tag, pk.X, pk.Y, R.X, R.Y, len(msg), chunks(msg)...)
//	S = k - E·sk mod l
//
// and it is accepted iff E equals the challenge recomputed with
// R' = S·G + E·pk.
package schnorr

import (
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/vocdoni/zkledger/crypto/ecc/bjj"
	"github.com/vocdoni/zkledger/crypto/transcript"
	"github.com/vocdoni/zkledger/log"
	"github.com/vocdoni/zkledger/params"
	"github.com/vocdoni/zkledger/types"
)

// MaxSignAttempts bounds the signing loop. The challenge digest is uniform
// in the BN254 scalar field (~2^254) and lands below the subgroup order
// (~2^251) with probability ~1/8, so all the attempts fail with probability
// (7/8)^512 < 2^-98.
const MaxSignAttempts = 512

// ChallengeTag is the transcript domain tag of signature challenges.
var ChallengeTag = new(big.Int).SetBytes([]byte("zkledger/schnorr/v1"))

// ErrSignAttemptsExhausted is returned when every signing attempt produced
// a challenge outside the scalar field.
var ErrSignAttemptsExhausted = errors.New("signature challenge rejected too many times")

// SecretKey is a scalar in [1, l). It never leaves its owner.
type SecretKey struct {
	scalar *big.Int
}

// PublicKey is sk·G.
type PublicKey struct {
	Point *bjj.Point
}

// Signature is the (response, challenge) pair, both scalars lower than l.
type Signature struct {
	S *big.Int
	E *big.Int
}

// KeyGen samples a new key pair.
func KeyGen(p *params.Parameters, rng io.Reader) (*PublicKey, *SecretKey, error) {
	sk, err := bjj.RandomScalar(rng)
	if err != nil {
		return nil, nil, fmt.Errorf("sample secret key: %w", err)
	}
	secret := &SecretKey{scalar: sk}
	return secret.PublicKey(p), secret, nil
}

// PublicKey derives the public key of sk.
func (sk *SecretKey) PublicKey(p *params.Parameters) *PublicKey {
	return &PublicKey{Point: new(bjj.Point).ScalarMult(p.Generator, sk.scalar)}
}

// Challenge computes the transcript challenge of a signature before it is
// mapped to the scalar field.
func Challenge(pk, r *bjj.Point, msg []byte) (*big.Int, error) {
	tr := transcript.New(ChallengeTag)
	tr.AppendPoint(pk)
	tr.AppendPoint(r)
	tr.AppendBytes(msg)
	return tr.Challenge()
}

// Sign signs msg. Nonces whose challenge does not map into the scalar
// field are discarded and a fresh one is sampled, up to MaxSignAttempts
// times.
func Sign(p *params.Parameters, sk *SecretKey, pk *PublicKey, msg []byte, rng io.Reader) (*Signature, error) {
	order := bjj.Order()
	for attempt := range MaxSignAttempts {
		k, err := bjj.RandomScalar(rng)
		if err != nil {
			return nil, fmt.Errorf("sample nonce: %w", err)
		}
		r := new(bjj.Point).ScalarMult(p.Generator, k)
		e, err := Challenge(pk.Point, r, msg)
		if err != nil {
			return nil, fmt.Errorf("derive challenge: %w", err)
		}
		if e.Cmp(order) >= 0 {
			log.Debugw("signature challenge rejected, retrying", "attempt", attempt)
			continue
		}
		s := new(big.Int).Mul(e, sk.scalar)
		s.Sub(k, s)
		s.Mod(s, order)
		return &Signature{S: s, E: e}, nil
	}
	return nil, ErrSignAttemptsExhausted
}

// Verify reports whether sig is a valid signature of msg under pk.
func Verify(p *params.Parameters, pk *PublicKey, msg []byte, sig *Signature) bool {
	if pk == nil || pk.Point == nil || sig == nil || sig.S == nil || sig.E == nil {
		return false
	}
	order := bjj.Order()
	if sig.S.Sign() < 0 || sig.S.Cmp(order) >= 0 || sig.E.Sign() < 0 || sig.E.Cmp(order) >= 0 {
		return false
	}
	if !pk.Point.IsOnCurve() {
		return false
	}
	r := new(bjj.Point).ScalarMult(p.Generator, sig.S)
	r.Add(r, new(bjj.Point).ScalarMult(pk.Point, sig.E))
	e, err := Challenge(pk.Point, r, msg)
	if err != nil {
		return false
	}
	return e.Cmp(sig.E) == 0
}

// Marshal encodes the public key as X || Y.
func (pk *PublicKey) Marshal() []byte {
	return pk.Point.Marshal()
}

// Equal reports whether both keys hold the same point.
func (pk *PublicKey) Equal(other *PublicKey) bool {
	return pk.Point.Equal(other.Point)
}

// UnmarshalPublicKey decodes an X || Y public key.
func UnmarshalPublicKey(buf []byte) (*PublicKey, error) {
	p := bjj.New()
	if err := p.Unmarshal(buf); err != nil {
		return nil, err
	}
	if p.IsZero() {
		return nil, fmt.Errorf("%w: public key is the identity", types.ErrSerialization)
	}
	return &PublicKey{Point: p}, nil
}

// Marshal encodes the secret scalar as 32 big-endian bytes.
func (sk *SecretKey) Marshal() []byte {
	return sk.scalar.FillBytes(make([]byte, types.FieldSize))
}

// UnmarshalSecretKey decodes a secret key, which must lie in [1, l).
func UnmarshalSecretKey(buf []byte) (*SecretKey, error) {
	s, err := unmarshalScalar(buf)
	if err != nil {
		return nil, err
	}
	if s.Sign() == 0 {
		return nil, fmt.Errorf("%w: zero secret key", types.ErrSerialization)
	}
	return &SecretKey{scalar: s}, nil
}

// Marshal encodes the signature as S || E.
func (sig *Signature) Marshal() []byte {
	buf := make([]byte, types.SignatureSize)
	sig.S.FillBytes(buf[:types.FieldSize])
	sig.E.FillBytes(buf[types.FieldSize:])
	return buf
}

// UnmarshalSignature decodes an S || E signature, rejecting scalars that are
// not canonical.
func UnmarshalSignature(buf []byte) (*Signature, error) {
	if len(buf) != types.SignatureSize {
		return nil, fmt.Errorf("%w: signature must be %d bytes, got %d",
			types.ErrSerialization, types.SignatureSize, len(buf))
	}
	s, err := unmarshalScalar(buf[:types.FieldSize])
	if err != nil {
		return nil, err
	}
	e, err := unmarshalScalar(buf[types.FieldSize:])
	if err != nil {
		return nil, err
	}
	return &Signature{S: s, E: e}, nil
}

func unmarshalScalar(buf []byte) (*big.Int, error) {
	if len(buf) != types.FieldSize {
		return nil, fmt.Errorf("%w: scalar must be %d bytes, got %d",
			types.ErrSerialization, types.FieldSize, len(buf))
	}
	s := new(big.Int).SetBytes(buf)
	if s.Cmp(bjj.Order()) >= 0 {
		return nil, fmt.Errorf("%w: scalar is not lower than the group order", types.ErrSerialization)
	}
	return s, nil
}
