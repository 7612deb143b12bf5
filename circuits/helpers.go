package circuits

import (
	"bytes"
	"io"
	"math/big"

	"github.com/consensys/gnark/frontend"
	"github.com/vocdoni/zkledger/types"
)

// BytesToVariables converts a native byte slice into one variable per byte,
// the form byte-oriented circuit inputs are assigned with.
func BytesToVariables(b []byte) []frontend.Variable {
	vars := make([]frontend.Variable, len(b))
	for i := range b {
		vars[i] = b[i]
	}
	return vars
}

// AssertBytes constrains every variable to the range [0, 256).
func AssertBytes(api frontend.API, bs []frontend.Variable) {
	for _, b := range bs {
		api.ToBinary(b, ByteBits)
	}
}

// PackBytes is the in-circuit counterpart of crypto/hash.PackBytes: it
// groups the bytes in types.ChunkSize big-endian chunks, the last one
// possibly shorter. The bytes are not range checked here.
func PackBytes(api frontend.API, bs []frontend.Variable) []frontend.Variable {
	chunks := make([]frontend.Variable, 0, (len(bs)+types.ChunkSize-1)/types.ChunkSize)
	for start := 0; start < len(bs); start += types.ChunkSize {
		end := min(start+types.ChunkSize, len(bs))
		var acc frontend.Variable = 0
		for _, b := range bs[start:end] {
			acc = api.Add(api.Mul(acc, 256), b)
		}
		chunks = append(chunks, acc)
	}
	return chunks
}

// FieldFromBytesBE recomposes a big-endian byte string into a single field
// element. The caller must ensure that the value fits in the field, e.g.
// by comparing against the modulus.
func FieldFromBytesBE(api frontend.API, bs []frontend.Variable) frontend.Variable {
	var acc frontend.Variable = 0
	for _, b := range bs {
		acc = api.Add(api.Mul(acc, 256), b)
	}
	return acc
}

// BoolToBigInt returns 1 when b is true or 0 otherwise.
func BoolToBigInt(b bool) *big.Int {
	if b {
		return big.NewInt(1)
	}
	return big.NewInt(0)
}

// SerializeArtifact writes a gnark object (constraint system, key or proof)
// into a byte slice.
func SerializeArtifact(w io.WriterTo) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DeserializeArtifact reads a gnark object from its serialized form.
func DeserializeArtifact(data []byte, r io.ReaderFrom) error {
	_, err := r.ReadFrom(bytes.NewReader(data))
	return err
}
