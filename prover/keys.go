package prover

import (
	"fmt"

	"github.com/consensys/gnark/backend/groth16"
	"github.com/vocdoni/zkledger/circuits"
	"github.com/vocdoni/zkledger/types"
)

// Hashes are the sha256 hashes of the serialized keys, the names they have
// in the artifact cache.
type Hashes struct {
	ConstraintSystem types.HexBytes `json:"constraintSystem"`
	ProvingKey       types.HexBytes `json:"provingKey"`
	VerifyingKey     types.HexBytes `json:"verifyingKey"`
}

// Artifacts serializes the keys into a circuit artifact set.
func (k *Keys) Artifacts() (*circuits.CircuitArtifacts, error) {
	cs, err := circuits.SerializeArtifact(k.CS)
	if err != nil {
		return nil, fmt.Errorf("serialize constraint system: %w", err)
	}
	pk, err := circuits.SerializeArtifact(k.ProvingKey)
	if err != nil {
		return nil, fmt.Errorf("serialize proving key: %w", err)
	}
	vk, err := circuits.SerializeArtifact(k.VerifyingKey)
	if err != nil {
		return nil, fmt.Errorf("serialize verifying key: %w", err)
	}
	return circuits.NewCircuitArtifacts(
		circuits.NewArtifact(cs),
		circuits.NewArtifact(pk),
		circuits.NewArtifact(vk),
	), nil
}

// Store writes the keys into the artifact cache and returns their hashes.
func (k *Keys) Store() (*Hashes, error) {
	artifacts, err := k.Artifacts()
	if err != nil {
		return nil, err
	}
	if err := artifacts.StoreAll(); err != nil {
		return nil, err
	}
	return hashesOf(artifacts), nil
}

func hashesOf(ca *circuits.CircuitArtifacts) *Hashes {
	cs, pk, vk := ca.Hashes()
	return &Hashes{ConstraintSystem: cs, ProvingKey: pk, VerifyingKey: vk}
}

// LoadKeys reads the keys identified by h from the artifact cache.
func LoadKeys(h *Hashes) (*Keys, error) {
	ca := circuits.NewCircuitArtifacts(
		&circuits.Artifact{Hash: h.ConstraintSystem},
		&circuits.Artifact{Hash: h.ProvingKey},
		&circuits.Artifact{Hash: h.VerifyingKey},
	)
	if err := ca.LoadAll(); err != nil {
		return nil, err
	}
	keys := &Keys{
		CS:           groth16.NewCS(Curve),
		ProvingKey:   groth16.NewProvingKey(Curve),
		VerifyingKey: groth16.NewVerifyingKey(Curve),
	}
	if err := circuits.DeserializeArtifact(ca.ConstraintSystem(), keys.CS); err != nil {
		return nil, fmt.Errorf("failed to read constraint system: %w", err)
	}
	if err := circuits.DeserializeArtifact(ca.ProvingKey(), keys.ProvingKey); err != nil {
		return nil, fmt.Errorf("failed to read proving key: %w", err)
	}
	if err := circuits.DeserializeArtifact(ca.VerifyingKey(), keys.VerifyingKey); err != nil {
		return nil, fmt.Errorf("failed to read verifying key: %w", err)
	}
	return keys, nil
}

// LoadVerifyingKey reads only the verifying key from the artifact cache,
// which is all a verifier needs.
func LoadVerifyingKey(hash types.HexBytes) (groth16.VerifyingKey, error) {
	a := &circuits.Artifact{Hash: hash}
	if err := a.Load(); err != nil {
		return nil, err
	}
	vk := groth16.NewVerifyingKey(Curve)
	if err := circuits.DeserializeArtifact(a.Content, vk); err != nil {
		return nil, fmt.Errorf("failed to read verifying key: %w", err)
	}
	return vk, nil
}
