package storage

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Records are encoded in deterministic CBOR and decoded strictly: duplicated
// map keys and unknown fields make the record invalid, so that every stored
// value has a single encoding.
var (
	recordEncMode cbor.EncMode
	recordDecMode cbor.DecMode
)

func init() {
	var err error
	if recordEncMode, err = cbor.CoreDetEncOptions().EncMode(); err != nil {
		panic(fmt.Sprintf("storage: cbor encoding mode: %v", err))
	}
	if recordDecMode, err = (cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyEnforcedAPF,
		ExtraReturnErrors: cbor.ExtraDecErrorUnknownField,
	}).DecMode(); err != nil {
		panic(fmt.Sprintf("storage: cbor decoding mode: %v", err))
	}
}

func encodeArtifact(a any) ([]byte, error) {
	data, err := recordEncMode.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("encode artifact: %w", err)
	}
	return data, nil
}

func decodeArtifact(data []byte, out any) error {
	return recordDecMode.Unmarshal(data, out)
}
