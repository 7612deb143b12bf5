// Package accumulator implements the native authenticated accumulator: a
// dense positional binary Merkle tree of fixed depth whose leaves are fixed
// size byte records. Paths record on which side every sibling sits because
// the two-to-one compression is not commutative. The in-circuit counterpart
// lives in circuits/accumulator.
package accumulator

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/vocdoni/zkledger/crypto/hash"
	"github.com/vocdoni/zkledger/log"
	"golang.org/x/sync/errgroup"
)

// MaxDepth bounds the depth of a tree. Proving cost grows linearly with the
// depth, so it is fixed per deployment instead of being checked mid-proof.
const MaxDepth = 32

var (
	// ErrIndexOutOfRange is returned when asking for a leaf that was not
	// inserted.
	ErrIndexOutOfRange = errors.New("leaf index out of range")
	// ErrInvalidLeaves is returned when the leaf set cannot form a tree.
	ErrInvalidLeaves = errors.New("invalid leaf set")
)

// Tree is an immutable accumulator over a set of leaves. Positions after the
// last leaf hold the all-zero record, so any leaf count up to 2^depth is
// accepted.
type Tree struct {
	hasher   hash.Hasher
	depth    int
	leafSize int
	leaves   [][]byte
	// levels[0] holds the leaf digests and levels[depth] the root. Only the
	// populated prefix of every level is stored.
	levels [][]hash.Digest
	// zeros[i] is the root of an empty subtree of height i.
	zeros []hash.Digest
}

// NewTree builds the tree of the given depth over leaves. All the leaves
// must have the same size. Leaf digests are computed in parallel, and every
// level is then reduced in parallel.
func NewTree(h hash.Hasher, depth int, leaves [][]byte) (*Tree, error) {
	if depth < 1 || depth > MaxDepth {
		return nil, fmt.Errorf("%w: depth %d not in [1, %d]", ErrInvalidLeaves, depth, MaxDepth)
	}
	if len(leaves) == 0 {
		return nil, fmt.Errorf("%w: no leaves", ErrInvalidLeaves)
	}
	if uint64(len(leaves)) > uint64(1)<<depth {
		return nil, fmt.Errorf("%w: %d leaves do not fit in depth %d", ErrInvalidLeaves, len(leaves), depth)
	}
	leafSize := len(leaves[0])
	stored := make([][]byte, len(leaves))
	for i, leaf := range leaves {
		if len(leaf) != leafSize {
			return nil, fmt.Errorf("%w: leaf %d has %d bytes, expected %d", ErrInvalidLeaves, i, len(leaf), leafSize)
		}
		stored[i] = append([]byte(nil), leaf...)
	}
	start := time.Now()
	t := &Tree{
		hasher:   h,
		depth:    depth,
		leafSize: leafSize,
		leaves:   stored,
		levels:   make([][]hash.Digest, depth+1),
		zeros:    make([]hash.Digest, depth+1),
	}
	if err := t.computeZeros(); err != nil {
		return nil, err
	}

	t.levels[0] = make([]hash.Digest, len(stored))
	if err := parallelFor(len(stored), func(i int) error {
		d, err := h.Hash(stored[i])
		if err != nil {
			return fmt.Errorf("hash leaf %d: %w", i, err)
		}
		t.levels[0][i] = d
		return nil
	}); err != nil {
		return nil, err
	}

	for level := 1; level <= depth; level++ {
		prev := t.levels[level-1]
		cur := make([]hash.Digest, (len(prev)+1)/2)
		if err := parallelFor(len(cur), func(i int) error {
			right := t.zeros[level-1]
			if 2*i+1 < len(prev) {
				right = prev[2*i+1]
			}
			d, err := h.Compress(prev[2*i], right)
			if err != nil {
				return fmt.Errorf("compress level %d node %d: %w", level, i, err)
			}
			cur[i] = d
			return nil
		}); err != nil {
			return nil, err
		}
		t.levels[level] = cur
	}
	log.Debugw("accumulator built",
		"leaves", len(stored),
		"depth", depth,
		"root", t.Root().String(),
		"took", time.Since(start).String(),
	)
	return t, nil
}

func (t *Tree) computeZeros() error {
	zero, err := t.hasher.Hash(make([]byte, t.leafSize))
	if err != nil {
		return fmt.Errorf("hash empty leaf: %w", err)
	}
	t.zeros[0] = zero
	for i := 1; i <= t.depth; i++ {
		if t.zeros[i], err = t.hasher.Compress(t.zeros[i-1], t.zeros[i-1]); err != nil {
			return fmt.Errorf("compress empty subtree: %w", err)
		}
	}
	return nil
}

// parallelFor runs fn for every index in [0, n) across NumCPU workers,
// returning the first error.
func parallelFor(n int, fn func(i int) error) error {
	if n == 0 {
		return nil
	}
	workers := runtime.NumCPU()
	chunk := (n + workers - 1) / workers
	var g errgroup.Group
	g.SetLimit(workers)
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := fn(i); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// Root returns the root digest.
func (t *Tree) Root() hash.Digest {
	return t.levels[t.depth][0]
}

// Depth returns the depth of the tree, which is also the length of every
// path.
func (t *Tree) Depth() int {
	return t.depth
}

// Len returns the number of inserted leaves.
func (t *Tree) Len() int {
	return len(t.leaves)
}

// LeafSize returns the size in bytes of every leaf.
func (t *Tree) LeafSize() int {
	return t.leafSize
}

// Leaf returns a copy of the leaf at index i.
func (t *Tree) Leaf(i int) ([]byte, error) {
	if i < 0 || i >= len(t.leaves) {
		return nil, fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
	}
	return append([]byte(nil), t.leaves[i]...), nil
}

// Path returns the authentication path of the leaf at index i, ordered from
// the leaf to the root.
func (t *Tree) Path(i int) (Path, error) {
	if i < 0 || i >= len(t.leaves) {
		return nil, fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
	}
	path := make(Path, t.depth)
	idx := i
	for level := range t.depth {
		sibling := t.zeros[level]
		if s := idx ^ 1; s < len(t.levels[level]) {
			sibling = t.levels[level][s]
		}
		if idx%2 == 0 {
			path[level] = RightSibling(sibling)
		} else {
			path[level] = LeftSibling(sibling)
		}
		idx /= 2
	}
	return path, nil
}
