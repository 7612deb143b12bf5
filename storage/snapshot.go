package storage

import (
	"fmt"

	"github.com/vocdoni/zkledger/crypto/hash"
	"github.com/vocdoni/zkledger/ledger"
	"github.com/vocdoni/zkledger/params"
	"github.com/vocdoni/zkledger/types"
)

type snapshotRecord struct {
	Depth    int              `cbor:"1,keyasint"`
	Accounts []types.HexBytes `cbor:"2,keyasint"`
}

// SetSnapshot stores the accounts of a snapshot under its root.
func (s *Storage) SetSnapshot(snap *ledger.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("nil snapshot")
	}
	rec := snapshotRecord{Depth: snap.Depth()}
	for _, a := range snap.Accounts() {
		rec.Accounts = append(rec.Accounts, a.Marshal())
	}
	root := snap.Root()
	return s.setArtifact(snapshotPrefix, root.Bytes(), rec)
}

// Snapshot rebuilds the snapshot stored under root. The accumulator is
// recomputed and must match root, otherwise the record is considered
// corrupted.
func (s *Storage) Snapshot(p *params.Parameters, root hash.Digest) (*ledger.Snapshot, error) {
	var rec snapshotRecord
	if err := s.getArtifact(snapshotPrefix, root.Bytes(), &rec); err != nil {
		return nil, err
	}
	accounts := make([]*ledger.Account, len(rec.Accounts))
	for i, buf := range rec.Accounts {
		a, err := ledger.UnmarshalAccount(buf)
		if err != nil {
			return nil, fmt.Errorf("account %d: %w", i, err)
		}
		accounts[i] = a
	}
	snap, err := ledger.NewSnapshot(p, rec.Depth, accounts)
	if err != nil {
		return nil, err
	}
	if snap.Root() != root {
		return nil, fmt.Errorf("stored snapshot root mismatch: expected %s, got %s", root, snap.Root())
	}
	return snap, nil
}

// ListSnapshots returns the roots of every stored snapshot.
func (s *Storage) ListSnapshots() ([]hash.Digest, error) {
	keys, err := s.listArtifacts(snapshotPrefix)
	if err != nil {
		return nil, err
	}
	roots := make([]hash.Digest, 0, len(keys))
	for _, k := range keys {
		root, err := hash.UnmarshalDigest(k)
		if err != nil {
			return nil, err
		}
		roots = append(roots, root)
	}
	return roots, nil
}
