package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/vocdoni/zkledger/accumulator"
	"github.com/vocdoni/zkledger/circuits"
	"github.com/vocdoni/zkledger/circuits/validity"
	"github.com/vocdoni/zkledger/log"
	"github.com/vocdoni/zkledger/params"
	"github.com/vocdoni/zkledger/prover"
	"github.com/vocdoni/zkledger/storage"
	"github.com/vocdoni/zkledger/types"
)

var setupFlags struct {
	Seed  string
	Depth int
	Force bool
}

// setupOutput is what the setup command prints, the artifact hashes a
// verifier needs to fetch.
type setupOutput struct {
	Depth        int            `json:"depth"`
	Parameters   types.HexBytes `json:"parameters"`
	LeafHash     *types.BigInt  `json:"leafHash"`
	TwoToOneHash *types.BigInt  `json:"twoToOneHash"`
	Keys         *prover.Hashes `json:"keys"`
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Generate the public parameters and the circuit keys",
	Long: `Generates the public parameters (randomly, or derived from --seed) and
runs the Groth16 setup of the validity circuit. The parameters and keys are
written to the artifact cache and registered in the database.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if setupFlags.Depth < 1 || setupFlags.Depth > accumulator.MaxDepth {
			return fmt.Errorf("depth must be in [1, %d]", accumulator.MaxDepth)
		}
		stg, err := openStorage()
		if err != nil {
			return err
		}
		defer stg.Close()

		if !setupFlags.Force {
			if _, err := stg.Keys(); err == nil {
				return fmt.Errorf("setup already done, use --force to replace it")
			} else if !storage.IsNotFound(err) {
				return err
			}
		}

		var p *params.Parameters
		if setupFlags.Seed != "" {
			p, err = params.FromSeed([]byte(setupFlags.Seed))
		} else {
			p, err = params.Setup(nil)
		}
		if err != nil {
			return err
		}
		encoded, err := p.Marshal()
		if err != nil {
			return err
		}
		paramsArtifact := circuits.NewArtifact(encoded)
		if err := paramsArtifact.Store(); err != nil {
			return fmt.Errorf("store parameters: %w", err)
		}

		start := time.Now()
		keys, err := prover.Setup(validity.Placeholder(p, setupFlags.Depth))
		if err != nil {
			return err
		}
		log.Infow("circuit setup done", "depth", setupFlags.Depth, "took", time.Since(start).String())
		hashes, err := keys.Store()
		if err != nil {
			return err
		}

		if err := stg.SetParameters(p); err != nil {
			return err
		}
		if err := stg.SetKeys(&storage.KeysRecord{
			Depth:            setupFlags.Depth,
			ConstraintSystem: hashes.ConstraintSystem,
			ProvingKey:       hashes.ProvingKey,
			VerifyingKey:     hashes.VerifyingKey,
		}); err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(&setupOutput{
			Depth:        setupFlags.Depth,
			Parameters:   paramsArtifact.Hash,
			LeafHash:     new(types.BigInt).SetBigInt(p.LeafHash),
			TwoToOneHash: new(types.BigInt).SetBigInt(p.TwoToOneHash),
			Keys:         hashes,
		})
	},
}

func init() {
	setupCmd.Flags().StringVar(&setupFlags.Seed, "seed", "", "derive the parameters from this public seed")
	setupCmd.Flags().IntVar(&setupFlags.Depth, "depth", circuits.AccumulatorDepth, "accumulator depth")
	setupCmd.Flags().BoolVar(&setupFlags.Force, "force", false, "replace an existing setup")
}
