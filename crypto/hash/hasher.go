// Package hash defines the hash family used by the accumulator and the
// signature transcript, and provides its MiMC and Poseidon implementations
// over the BN254 scalar field.
package hash

import (
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/vocdoni/zkledger/types"
)

// Digest is the output of a leaf hash or a two-to-one compression: the
// canonical big-endian encoding of a BN254 scalar field element.
type Digest [types.FieldSize]byte

// Hasher is the capability every hash family exposes to the accumulator.
// Hash digests a raw record and Compress combines two digests in order, so
// Compress(a, b) and Compress(b, a) differ.
type Hasher interface {
	Hash(data []byte) (Digest, error)
	Compress(left, right Digest) (Digest, error)
}

// DigestFromBigInt encodes x, which must be lower than the field modulus.
func DigestFromBigInt(x *big.Int) (Digest, error) {
	if x.Sign() < 0 || x.Cmp(fr.Modulus()) >= 0 {
		return Digest{}, fmt.Errorf("%w: digest out of field", types.ErrSerialization)
	}
	var d Digest
	x.FillBytes(d[:])
	return d, nil
}

// UnmarshalDigest decodes a digest, rejecting wrong lengths and non-canonical
// field elements.
func UnmarshalDigest(b []byte) (Digest, error) {
	if len(b) != types.FieldSize {
		return Digest{}, fmt.Errorf("%w: digest must be %d bytes, got %d",
			types.ErrSerialization, types.FieldSize, len(b))
	}
	return DigestFromBigInt(new(big.Int).SetBytes(b))
}

// BigInt returns the field element held by the digest.
func (d Digest) BigInt() *big.Int {
	return new(big.Int).SetBytes(d[:])
}

// Bytes returns a copy of the digest encoding.
func (d Digest) Bytes() []byte {
	return append([]byte(nil), d[:]...)
}

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// PackBytes splits data into types.ChunkSize byte big-endian chunks, each
// one read as a field element. The last chunk may be shorter. Since every
// chunk is lower than 2^248 it is always a canonical field element.
func PackBytes(data []byte) []*big.Int {
	chunks := make([]*big.Int, 0, (len(data)+types.ChunkSize-1)/types.ChunkSize)
	for start := 0; start < len(data); start += types.ChunkSize {
		end := min(start+types.ChunkSize, len(data))
		chunks = append(chunks, new(big.Int).SetBytes(data[start:end]))
	}
	return chunks
}

// absorbBytes returns the field elements a hash absorbs for data: the data
// length followed by its packed chunks. Prefixing the length keeps records
// of different sizes apart.
func absorbBytes(tag *big.Int, data []byte) []*big.Int {
	inputs := []*big.Int{tag, big.NewInt(int64(len(data)))}
	return append(inputs, PackBytes(data)...)
}
