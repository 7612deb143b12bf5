// Package config holds the deployment settings shared by the commands.
package config

import (
	"encoding/hex"
	"fmt"
	"net/url"
	"os"

	"github.com/vocdoni/zkledger/circuits"
	"github.com/vocdoni/zkledger/types"
)

// ArtifactsURLEnv is the environment variable holding the base URL where
// the circuit artifacts of a deployment are published.
const ArtifactsURLEnv = "ZKLEDGER_ARTIFACTS_URL"

// ArtifactsURL returns the base URL of the published artifacts, empty if
// it is not configured.
func ArtifactsURL() string {
	return os.Getenv(ArtifactsURLEnv)
}

// ArtifactURL returns the remote location of the artifact named hash. The
// published layout mirrors the local cache: one file per hex encoded hash.
func ArtifactURL(base string, hash types.HexBytes) (string, error) {
	if base == "" {
		return "", fmt.Errorf("artifacts base url not configured")
	}
	if len(hash) == 0 {
		return "", fmt.Errorf("empty artifact hash")
	}
	return url.JoinPath(base, hex.EncodeToString(hash))
}

// RemoteArtifacts returns the artifact set of a circuit published under
// base. Empty hashes leave the corresponding artifact out of the set.
func RemoteArtifacts(base string, cs, pk, vk types.HexBytes) (*circuits.CircuitArtifacts, error) {
	remote := func(hash types.HexBytes) (*circuits.Artifact, error) {
		if len(hash) == 0 {
			return nil, nil
		}
		u, err := ArtifactURL(base, hash)
		if err != nil {
			return nil, err
		}
		return &circuits.Artifact{RemoteURL: u, Hash: hash}, nil
	}
	csArtifact, err := remote(cs)
	if err != nil {
		return nil, fmt.Errorf("constraint system: %w", err)
	}
	pkArtifact, err := remote(pk)
	if err != nil {
		return nil, fmt.Errorf("proving key: %w", err)
	}
	vkArtifact, err := remote(vk)
	if err != nil {
		return nil, fmt.Errorf("verifying key: %w", err)
	}
	return circuits.NewCircuitArtifacts(csArtifact, pkArtifact, vkArtifact), nil
}
