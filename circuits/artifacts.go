package circuits

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/vocdoni/zkledger/log"
	"github.com/vocdoni/zkledger/types"
)

// CheckHashes determines if the content of the artifacts is checked against
// their hash when loaded or downloaded. Setting ZKLEDGER_CHECK_HASHES to
// false or 0 disables it.
var CheckHashes = true

// BaseDir is the directory of the content-addressed artifact cache. It
// defaults to $ZKLEDGER_ARTIFACTS_DIR or to ~/.zkledger/artifacts.
var BaseDir string

// ErrArtifactNotFound is returned by Load when the cache has no file for the
// artifact hash.
var ErrArtifactNotFound = errors.New("artifact not found in cache")

func init() {
	if checkHashes := os.Getenv("ZKLEDGER_CHECK_HASHES"); checkHashes != "" {
		if strings.ToLower(checkHashes) == "false" || checkHashes == "0" {
			CheckHashes = false
		}
	}
	if dir := os.Getenv("ZKLEDGER_ARTIFACTS_DIR"); dir != "" {
		BaseDir = dir
		return
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		log.Warnf("unable to access user home directory, using temporary directory: %v", err)
		BaseDir = filepath.Join(os.TempDir(), "zkledger-artifacts")
		return
	}
	BaseDir = filepath.Join(home, ".zkledger", "artifacts")
}

// Artifact is a blob of the proving system (constraint system, proving key
// or verifying key) addressed by the sha256 hash of its content. RemoteURL
// is optional and only used by Download.
type Artifact struct {
	RemoteURL string
	Hash      types.HexBytes
	Content   []byte
}

// NewArtifact returns an artifact holding content, with its hash computed.
func NewArtifact(content []byte) *Artifact {
	h := sha256.Sum256(content)
	return &Artifact{Hash: h[:], Content: content}
}

// Load reads the artifact content from the cache, unless it is already in
// memory. The hash must be set.
func (a *Artifact) Load() error {
	if len(a.Content) != 0 {
		return nil
	}
	if len(a.Hash) == 0 {
		return fmt.Errorf("artifact hash not provided")
	}
	content, err := load(a.Hash)
	if err != nil {
		return err
	}
	a.Content = content
	return nil
}

// Store writes the artifact content into the cache under its hash. If the
// hash is empty it is computed from the content.
func (a *Artifact) Store() error {
	if len(a.Content) == 0 {
		return fmt.Errorf("artifact has no content")
	}
	h := sha256.Sum256(a.Content)
	if len(a.Hash) == 0 {
		a.Hash = h[:]
	} else if !bytes.Equal(a.Hash, h[:]) {
		return fmt.Errorf("hash mismatch: expected %x, got %x", []byte(a.Hash), h[:])
	}
	if err := os.MkdirAll(BaseDir, 0o755); err != nil {
		return fmt.Errorf("error creating the base directory: %w", err)
	}
	path := filepath.Join(BaseDir, hex.EncodeToString(a.Hash))
	tmp := path + ".partial"
	if err := os.WriteFile(tmp, a.Content, 0o644); err != nil {
		return fmt.Errorf("error writing artifact: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("error renaming artifact: %w", err)
	}
	log.Debugw("artifact stored", "hash", a.Hash.String(), "size", len(a.Content))
	return nil
}

// Download fetches the artifact from RemoteURL, checks its hash and stores
// it in the cache. The content is loaded into memory afterwards.
func (a *Artifact) Download(ctx context.Context) error {
	if a.RemoteURL == "" {
		return fmt.Errorf("artifact not loaded and remote url not provided")
	}
	if _, err := url.Parse(a.RemoteURL); err != nil {
		return fmt.Errorf("error parsing the artifact URL: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.RemoteURL, nil)
	if err != nil {
		return fmt.Errorf("error creating the artifact request: %w", err)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("error performing the request: %w", err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			log.Warnw("close artifact response", "error", err.Error())
		}
	}()
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("error downloading %s: http status %d", a.RemoteURL, res.StatusCode)
	}
	content, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("error reading artifact: %w", err)
	}
	if CheckHashes && len(a.Hash) != 0 {
		h := sha256.Sum256(content)
		if !bytes.Equal(h[:], a.Hash) {
			return fmt.Errorf("hash mismatch: expected %x, got %x", []byte(a.Hash), h[:])
		}
	}
	a.Content = content
	return a.Store()
}

// CircuitArtifacts groups the artifacts of one circuit.
type CircuitArtifacts struct {
	constraintSystem *Artifact
	provingKey       *Artifact
	verifyingKey     *Artifact
}

// NewCircuitArtifacts returns the artifact set of a circuit. Any of them may
// be nil, e.g. a verifier only needs the verifying key.
func NewCircuitArtifacts(cs, provingKey, verifyingKey *Artifact) *CircuitArtifacts {
	return &CircuitArtifacts{
		constraintSystem: cs,
		provingKey:       provingKey,
		verifyingKey:     verifyingKey,
	}
}

func (ca *CircuitArtifacts) each(fn func(name string, a *Artifact) error) error {
	for _, item := range []struct {
		name string
		a    *Artifact
	}{
		{"constraint system", ca.constraintSystem},
		{"proving key", ca.provingKey},
		{"verifying key", ca.verifyingKey},
	} {
		if item.a == nil {
			continue
		}
		if err := fn(item.name, item.a); err != nil {
			return fmt.Errorf("%s: %w", item.name, err)
		}
	}
	return nil
}

// LoadAll loads every artifact of the set from the cache.
func (ca *CircuitArtifacts) LoadAll() error {
	return ca.each(func(_ string, a *Artifact) error { return a.Load() })
}

// StoreAll writes every artifact of the set into the cache.
func (ca *CircuitArtifacts) StoreAll() error {
	return ca.each(func(_ string, a *Artifact) error { return a.Store() })
}

// DownloadAll downloads every artifact that is not already cached.
func (ca *CircuitArtifacts) DownloadAll(ctx context.Context) error {
	return ca.each(func(name string, a *Artifact) error {
		if err := a.Load(); err == nil {
			return nil
		} else if !errors.Is(err, ErrArtifactNotFound) {
			return err
		}
		log.Infow("downloading artifact", "name", name, "url", a.RemoteURL)
		return a.Download(ctx)
	})
}

// Hashes returns the hashes of the constraint system, proving key and
// verifying key artifacts, nil for the missing ones.
func (ca *CircuitArtifacts) Hashes() (cs, pk, vk types.HexBytes) {
	hashOf := func(a *Artifact) types.HexBytes {
		if a == nil {
			return nil
		}
		return a.Hash
	}
	return hashOf(ca.constraintSystem), hashOf(ca.provingKey), hashOf(ca.verifyingKey)
}

// ConstraintSystem returns the content of the constraint system artifact.
func (ca *CircuitArtifacts) ConstraintSystem() types.HexBytes {
	if ca.constraintSystem == nil {
		return nil
	}
	return ca.constraintSystem.Content
}

// ProvingKey returns the content of the proving key artifact.
func (ca *CircuitArtifacts) ProvingKey() types.HexBytes {
	if ca.provingKey == nil {
		return nil
	}
	return ca.provingKey.Content
}

// VerifyingKey returns the content of the verifying key artifact.
func (ca *CircuitArtifacts) VerifyingKey() types.HexBytes {
	if ca.verifyingKey == nil {
		return nil
	}
	return ca.verifyingKey.Content
}

func load(hash []byte) ([]byte, error) {
	path := filepath.Join(BaseDir, hex.EncodeToString(hash))
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %x", ErrArtifactNotFound, hash)
		}
		return nil, fmt.Errorf("error reading file %s: %w", path, err)
	}
	if CheckHashes {
		fileHash := sha256.Sum256(content)
		if !bytes.Equal(fileHash[:], hash) {
			return nil, fmt.Errorf("hash mismatch for file %s: expected %x, got %x", path, hash, fileHash[:])
		}
	}
	return content, nil
}
