package accumulator

import (
	"encoding/binary"
	"fmt"

	"github.com/vocdoni/zkledger/crypto/hash"
	"github.com/vocdoni/zkledger/types"
)

// Side tells which input of the compression the sibling digest is.
type Side uint8

const (
	// Left means the sibling is the left input: Compress(sibling, current).
	Left Side = iota
	// Right means the sibling is the right input: Compress(current, sibling).
	Right
)

func (s Side) String() string {
	switch s {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("side(%d)", uint8(s))
	}
}

// Node is one level of an authentication path.
type Node struct {
	Side    Side
	Sibling hash.Digest
}

// LeftSibling returns a level whose sibling is the left input.
func LeftSibling(d hash.Digest) Node {
	return Node{Side: Left, Sibling: d}
}

// RightSibling returns a level whose sibling is the right input.
func RightSibling(d hash.Digest) Node {
	return Node{Side: Right, Sibling: d}
}

// Path is an authentication path, ordered from the leaf to the root.
type Path []Node

// nodeSize is the encoded size of a path level: side byte and digest.
const nodeSize = 1 + types.FieldSize

// Marshal encodes the path as a 2 byte big-endian level count followed, for
// every level, by the side byte (0 left, 1 right) and the sibling digest.
func (p Path) Marshal() []byte {
	buf := make([]byte, 2, 2+len(p)*nodeSize)
	binary.BigEndian.PutUint16(buf, uint16(len(p)))
	for _, n := range p {
		buf = append(buf, byte(n.Side))
		buf = append(buf, n.Sibling[:]...)
	}
	return buf
}

// UnmarshalPath decodes a path produced by Path.Marshal.
func UnmarshalPath(buf []byte) (Path, error) {
	if len(buf) < 2 {
		return nil, fmt.Errorf("%w: path too short", types.ErrSerialization)
	}
	levels := int(binary.BigEndian.Uint16(buf))
	if levels > MaxDepth {
		return nil, fmt.Errorf("%w: path of %d levels exceeds %d", types.ErrSerialization, levels, MaxDepth)
	}
	if len(buf) != 2+levels*nodeSize {
		return nil, fmt.Errorf("%w: path of %d levels must be %d bytes, got %d",
			types.ErrSerialization, levels, 2+levels*nodeSize, len(buf))
	}
	path := make(Path, levels)
	for i := range path {
		raw := buf[2+i*nodeSize : 2+(i+1)*nodeSize]
		side := Side(raw[0])
		if side != Left && side != Right {
			return nil, fmt.Errorf("%w: invalid side %d at level %d", types.ErrSerialization, raw[0], i)
		}
		sibling, err := hash.UnmarshalDigest(raw[1:])
		if err != nil {
			return nil, err
		}
		path[i] = Node{Side: side, Sibling: sibling}
	}
	return path, nil
}

// Verify recomputes the root from leaf and path and compares it with root.
// It returns false when any hash fails.
func Verify(h hash.Hasher, root hash.Digest, leaf []byte, path Path) bool {
	cur, err := h.Hash(leaf)
	if err != nil {
		return false
	}
	for _, n := range path {
		switch n.Side {
		case Left:
			cur, err = h.Compress(n.Sibling, cur)
		case Right:
			cur, err = h.Compress(cur, n.Sibling)
		default:
			return false
		}
		if err != nil {
			return false
		}
	}
	return cur == root
}

// VerifyDepth is Verify for a deployment of the given depth: paths of any
// other length are rejected.
func VerifyDepth(h hash.Hasher, depth int, root hash.Digest, leaf []byte, path Path) bool {
	return len(path) == depth && Verify(h, root, leaf, path)
}
