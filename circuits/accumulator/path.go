package accumulator

import (
	"github.com/consensys/gnark/frontend"
	"github.com/vocdoni/zkledger/accumulator"
)

// Node is one level of an in-circuit authentication path. IsLeft is 1 when
// the sibling is the left input of the compression.
type Node struct {
	IsLeft  frontend.Variable
	Sibling frontend.Variable
}

// Path is an in-circuit authentication path, ordered from leaf to root.
type Path []Node

// Placeholder returns an empty path of the given depth, to be used in
// circuit definitions.
func Placeholder(depth int) Path {
	return make(Path, depth)
}

// PathFromNative returns the assignment of a native path.
func PathFromNative(p accumulator.Path) Path {
	path := make(Path, len(p))
	for i, n := range p {
		isLeft := 0
		if n.Side == accumulator.Left {
			isLeft = 1
		}
		path[i] = Node{IsLeft: isLeft, Sibling: n.Sibling.BigInt()}
	}
	return path
}

// Verify recomputes the root from the leaf and the path and returns 1 if it
// matches root, 0 otherwise. It does not assert the result.
func Verify(api frontend.API, h Hasher, root frontend.Variable, leaf []frontend.Variable, path Path) (frontend.Variable, error) {
	current, err := h.Hash(api, leaf)
	if err != nil {
		return nil, err
	}
	for _, n := range path {
		api.AssertIsBoolean(n.IsLeft)
		left := api.Select(n.IsLeft, n.Sibling, current)
		right := api.Select(n.IsLeft, current, n.Sibling)
		if current, err = h.Compress(api, left, right); err != nil {
			return nil, err
		}
	}
	return api.IsZero(api.Sub(current, root)), nil
}

// AssertMember constrains the leaf to be a member of the tree with the given
// root.
func AssertMember(api frontend.API, h Hasher, root frontend.Variable, leaf []frontend.Variable, path Path) error {
	valid, err := Verify(api, h, root, leaf, path)
	if err != nil {
		return err
	}
	api.AssertIsEqual(valid, 1)
	return nil
}
