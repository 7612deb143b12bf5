package storage

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vocdoni/zkledger/crypto/hash"
	"github.com/vocdoni/zkledger/log"
	"github.com/vocdoni/zkledger/types"
	"go.vocdoni.io/dvote/db/prefixeddb"
)

// ProofRecord is a serialized validity proof together with the root it
// was produced against.
type ProofRecord struct {
	ID        uuid.UUID      `cbor:"1,keyasint"`
	Root      types.HexBytes `cbor:"2,keyasint"`
	Proof     types.HexBytes `cbor:"3,keyasint"`
	CreatedAt int64          `cbor:"4,keyasint"`
}

// PushProof stores a proof for root and returns its identifier.
func (s *Storage) PushProof(root hash.Digest, proof []byte) (uuid.UUID, error) {
	if len(proof) == 0 {
		return uuid.Nil, fmt.Errorf("empty proof")
	}
	rec := &ProofRecord{
		ID:        uuid.New(),
		Root:      root.Bytes(),
		Proof:     proof,
		CreatedAt: time.Now().Unix(),
	}
	if err := s.setArtifact(proofPrefix, rec.ID[:], rec); err != nil {
		return uuid.Nil, fmt.Errorf("store proof: %w", err)
	}
	return rec.ID, nil
}

// Proof returns the proof record identified by id.
func (s *Storage) Proof(id uuid.UUID) (*ProofRecord, error) {
	rec := &ProofRecord{}
	if err := s.getArtifact(proofPrefix, id[:], rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// DeleteProof removes a proof record.
func (s *Storage) DeleteProof(id uuid.UUID) error {
	return s.deleteArtifact(proofPrefix, id[:])
}

// ProofsByRoot returns every stored proof produced against root. It returns
// ErrNotFound if there is none.
func (s *Storage) ProofsByRoot(root hash.Digest) ([]*ProofRecord, error) {
	s.globalLock.RLock()
	defer s.globalLock.RUnlock()

	rd := prefixeddb.NewPrefixedReader(s.db, proofPrefix)
	var res []*ProofRecord
	if err := rd.Iterate(nil, func(k, v []byte) bool {
		var rec ProofRecord
		if err := decodeArtifact(v, &rec); err != nil {
			log.Warnw("failed to decode proof record", "key", types.HexBytes(k).String(), "error", err.Error())
			return true
		}
		if d, err := hash.UnmarshalDigest(rec.Root); err == nil && d == root {
			res = append(res, &rec)
		}
		return true
	}); err != nil {
		return nil, fmt.Errorf("iterate proofs: %w", err)
	}
	if len(res) == 0 {
		return nil, ErrNotFound
	}
	return res, nil
}

// IsNotFound reports whether err means a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
