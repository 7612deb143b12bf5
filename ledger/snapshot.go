package ledger

import (
	"errors"
	"fmt"

	"github.com/vocdoni/zkledger/accumulator"
	"github.com/vocdoni/zkledger/crypto/hash"
	"github.com/vocdoni/zkledger/crypto/schnorr"
	"github.com/vocdoni/zkledger/params"
)

// ErrUnknownAccount is returned when a public key has no account in a
// snapshot.
var ErrUnknownAccount = errors.New("unknown account")

// Snapshot is an authenticated, immutable view of a set of accounts. Its
// root is the public input every validity proof is checked against.
type Snapshot struct {
	params   *params.Parameters
	tree     *accumulator.Tree
	accounts []*Account
	index    map[hash.Digest]int
}

// NewSnapshot builds the accumulator of depth over the accounts, in the
// given order.
func NewSnapshot(p *params.Parameters, depth int, accounts []*Account) (*Snapshot, error) {
	leaves := make([][]byte, len(accounts))
	index := make(map[hash.Digest]int, len(accounts))
	for i, a := range accounts {
		if a == nil || a.PublicKey == nil {
			return nil, fmt.Errorf("account %d has no public key", i)
		}
		id, err := AccountID(a.PublicKey)
		if err != nil {
			return nil, err
		}
		if _, ok := index[id]; ok {
			return nil, fmt.Errorf("duplicated account at position %d", i)
		}
		index[id] = i
		leaves[i] = a.Marshal()
	}
	tree, err := accumulator.NewTree(p.Hasher(), depth, leaves)
	if err != nil {
		return nil, fmt.Errorf("build snapshot: %w", err)
	}
	return &Snapshot{
		params:   p,
		tree:     tree,
		accounts: append([]*Account(nil), accounts...),
		index:    index,
	}, nil
}

// Root returns the snapshot root.
func (s *Snapshot) Root() hash.Digest {
	return s.tree.Root()
}

// Depth returns the accumulator depth.
func (s *Snapshot) Depth() int {
	return s.tree.Depth()
}

// Len returns the number of accounts.
func (s *Snapshot) Len() int {
	return len(s.accounts)
}

// Accounts returns the accounts in leaf order.
func (s *Snapshot) Accounts() []*Account {
	return append([]*Account(nil), s.accounts...)
}

// Account returns the account at leaf index i.
func (s *Snapshot) Account(i int) (*Account, error) {
	if i < 0 || i >= len(s.accounts) {
		return nil, fmt.Errorf("%w: %d", accumulator.ErrIndexOutOfRange, i)
	}
	return s.accounts[i], nil
}

// IndexOf returns the leaf index of the account owned by pk.
func (s *Snapshot) IndexOf(pk *schnorr.PublicKey) (int, error) {
	id, err := AccountID(pk)
	if err != nil {
		return 0, err
	}
	i, ok := s.index[id]
	if !ok {
		return 0, ErrUnknownAccount
	}
	return i, nil
}

// Path returns the authentication path of the account at leaf index i.
func (s *Snapshot) Path(i int) (accumulator.Path, error) {
	return s.tree.Path(i)
}

// Contains verifies natively that account is a member of the snapshot
// through path.
func (s *Snapshot) Contains(account *Account, path accumulator.Path) bool {
	return accumulator.VerifyDepth(s.params.Hasher(), s.tree.Depth(), s.Root(), account.Marshal(), path)
}
