package storage

import "github.com/vocdoni/zkledger/types"

var currentKeysKey = []byte("current")

// KeysRecord points to the proving system artifacts of the validity circuit
// compiled for Depth. The hashes name the files in the artifact cache.
type KeysRecord struct {
	Depth            int            `cbor:"1,keyasint"`
	ConstraintSystem types.HexBytes `cbor:"2,keyasint"`
	ProvingKey       types.HexBytes `cbor:"3,keyasint"`
	VerifyingKey     types.HexBytes `cbor:"4,keyasint"`
}

// SetKeys stores the artifact hashes of the current circuit keys.
func (s *Storage) SetKeys(rec *KeysRecord) error {
	return s.setArtifact(keysPrefix, currentKeysKey, rec)
}

// Keys returns the artifact hashes of the current circuit keys, or
// ErrNotFound if the setup has not been run.
func (s *Storage) Keys() (*KeysRecord, error) {
	rec := &KeysRecord{}
	if err := s.getArtifact(keysPrefix, currentKeysKey, rec); err != nil {
		return nil, err
	}
	return rec, nil
}
