// Package storage persists the artifacts of a ledger deployment in a
// prefixed key-value store. The following prefixes are used:
//   - 'pa/' for the public parameters
//   - 'k/' for the artifact hashes of the circuit keys
//   - 's/' for account snapshots, keyed by root
//   - 'pr/' for validity proofs, keyed by a random UUID
package storage

import (
	"errors"
	"fmt"
	"sync"

	"github.com/vocdoni/zkledger/log"
	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/prefixeddb"
)

var (
	// Prefixes for the keys in the database.
	paramsPrefix   = []byte("pa/")
	keysPrefix     = []byte("k/")
	snapshotPrefix = []byte("s/")
	proofPrefix    = []byte("pr/")

	// ErrNotFound is returned when the requested record is not stored.
	ErrNotFound = errors.New("not found")
)

// Storage wraps a key-value database with typed accessors for every record
// kind.
type Storage struct {
	db db.Database
	// globalLock orders writes against reads and prefix iterations
	globalLock sync.RWMutex
}

// New creates a new Storage instance.
func New(database db.Database) *Storage {
	return &Storage{db: database}
}

// Close closes the storage.
func (s *Storage) Close() {
	if err := s.db.Close(); err != nil {
		log.Warnw("close storage", "error", err.Error())
	}
}

// getArtifact decodes the value stored under prefix+key into out. It returns
// ErrNotFound if there is no such key.
func (s *Storage) getArtifact(prefix, key []byte, out any) error {
	s.globalLock.RLock()
	defer s.globalLock.RUnlock()
	r := prefixeddb.NewPrefixedReader(s.db, prefix)
	data, err := r.Get(key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return ErrNotFound
		}
		return err
	}
	if err := decodeArtifact(data, out); err != nil {
		return fmt.Errorf("decode artifact: %w", err)
	}
	return nil
}

// setArtifact encodes a and stores it under prefix+key, overwriting any
// previous value.
func (s *Storage) setArtifact(prefix, key []byte, a any) error {
	data, err := encodeArtifact(a)
	if err != nil {
		return err
	}
	s.globalLock.Lock()
	defer s.globalLock.Unlock()
	wTx := prefixeddb.NewPrefixedWriteTx(s.db.WriteTx(), prefix)
	if err := wTx.Set(key, data); err != nil {
		wTx.Discard()
		return err
	}
	return wTx.Commit()
}

func (s *Storage) deleteArtifact(prefix, key []byte) error {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()
	r := prefixeddb.NewPrefixedReader(s.db, prefix)
	if _, err := r.Get(key); err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return ErrNotFound
		}
		return err
	}
	wTx := prefixeddb.NewPrefixedWriteTx(s.db.WriteTx(), prefix)
	if err := wTx.Delete(key); err != nil {
		wTx.Discard()
		return err
	}
	return wTx.Commit()
}

// listArtifacts returns a copy of every key stored under prefix.
func (s *Storage) listArtifacts(prefix []byte) ([][]byte, error) {
	s.globalLock.RLock()
	defer s.globalLock.RUnlock()
	r := prefixeddb.NewPrefixedReader(s.db, prefix)
	var keys [][]byte
	if err := r.Iterate(nil, func(k, _ []byte) bool {
		keyCopy := make([]byte, len(k))
		copy(keyCopy, k)
		keys = append(keys, keyCopy)
		return true
	}); err != nil {
		return nil, fmt.Errorf("iterate artifacts: %w", err)
	}
	return keys, nil
}
