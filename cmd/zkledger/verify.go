package main

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/vocdoni/zkledger/circuits/validity"
	"github.com/vocdoni/zkledger/crypto/hash"
	"github.com/vocdoni/zkledger/log"
	"github.com/vocdoni/zkledger/prover"
	"github.com/vocdoni/zkledger/types"
	"github.com/vocdoni/zkledger/util"
)

// errInvalidProof makes the verify command exit with a non zero status.
var errInvalidProof = errors.New("proof rejected")

var verifyFlags struct {
	ID        string
	ProofFile string
	Root      string
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify a validity proof against a snapshot root",
	Long: `Verifies a stored proof (--id) or a raw proof file (--proof-file) with the
verifying key registered by setup. The root defaults to the one stored with
the proof and is mandatory for proof files.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if (verifyFlags.ID == "") == (verifyFlags.ProofFile == "") {
			return fmt.Errorf("exactly one of --id or --proof-file is required")
		}
		stg, err := openStorage()
		if err != nil {
			return err
		}
		defer stg.Close()

		var proof []byte
		var root hash.Digest
		var haveRoot bool
		if verifyFlags.ID != "" {
			id, err := uuid.Parse(verifyFlags.ID)
			if err != nil {
				return fmt.Errorf("invalid proof id: %w", err)
			}
			rec, err := stg.Proof(id)
			if err != nil {
				return fmt.Errorf("proof %s: %w", id, err)
			}
			if root, err = hash.UnmarshalDigest(rec.Root); err != nil {
				return err
			}
			proof, haveRoot = rec.Proof, true
		} else {
			if proof, err = os.ReadFile(verifyFlags.ProofFile); err != nil {
				return err
			}
		}
		if verifyFlags.Root != "" {
			if root, err = parseRoot(verifyFlags.Root); err != nil {
				return err
			}
			haveRoot = true
		}
		if !haveRoot {
			return fmt.Errorf("--root is required to verify a proof file")
		}

		keys, err := stg.Keys()
		if err != nil {
			return fmt.Errorf("circuit keys: %w", err)
		}
		vk, err := prover.LoadVerifyingKey(keys.VerifyingKey)
		if err != nil {
			return err
		}
		ok, err := prover.Verify(vk, proof, validity.PublicAssignment(root))
		if err != nil {
			return err
		}
		log.Infow("proof checked", "root", root.String(), "valid", ok)
		if !ok {
			return errInvalidProof
		}
		fmt.Println("valid")
		return nil
	},
}

var proofsFlags struct {
	Root string
}

var proofsCmd = &cobra.Command{
	Use:   "proofs",
	Short: "List the stored proofs of a snapshot root",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := parseRoot(proofsFlags.Root)
		if err != nil {
			return err
		}
		stg, err := openStorage()
		if err != nil {
			return err
		}
		defer stg.Close()
		recs, err := stg.ProofsByRoot(root)
		if err != nil {
			return err
		}
		type proofInfo struct {
			ID        uuid.UUID      `json:"id"`
			Root      types.HexBytes `json:"root"`
			CreatedAt int64          `json:"createdAt"`
			Size      int            `json:"size"`
		}
		out := make([]proofInfo, len(recs))
		for i, rec := range recs {
			out[i] = proofInfo{ID: rec.ID, Root: rec.Root, CreatedAt: rec.CreatedAt, Size: len(rec.Proof)}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

// parseRoot decodes a hex encoded root, with or without 0x prefix.
func parseRoot(s string) (hash.Digest, error) {
	b, err := hex.DecodeString(util.TrimHex(s))
	if err != nil {
		return hash.Digest{}, fmt.Errorf("invalid root: %w", err)
	}
	return hash.UnmarshalDigest(b)
}

func init() {
	verifyCmd.Flags().StringVar(&verifyFlags.ID, "id", "", "identifier of a stored proof")
	verifyCmd.Flags().StringVar(&verifyFlags.ProofFile, "proof-file", "", "file holding a serialized proof")
	verifyCmd.Flags().StringVar(&verifyFlags.Root, "root", "", "snapshot root, hex encoded")
	proofsCmd.Flags().StringVar(&proofsFlags.Root, "root", "", "snapshot root, hex encoded")
	if err := proofsCmd.MarkFlagRequired("root"); err != nil {
		panic(err)
	}
}
