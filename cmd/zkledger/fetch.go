package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/vocdoni/zkledger/circuits"
	"github.com/vocdoni/zkledger/config"
	"github.com/vocdoni/zkledger/storage"
	"github.com/vocdoni/zkledger/types"
	"github.com/vocdoni/zkledger/util"
)

var fetchFlags struct {
	BaseURL          string
	Depth            int
	ConstraintSystem string
	ProvingKey       string
	VerifyingKey     string
	Timeout          time.Duration
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download published circuit keys into the artifact cache",
	Long: `Downloads the artifacts printed by a setup run on another host and registers
them in the database. Only the verifying key is required to verify proofs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if fetchFlags.VerifyingKey == "" {
			return fmt.Errorf("--vk is required")
		}
		decode := func(s string) (types.HexBytes, error) {
			if s == "" {
				return nil, nil
			}
			return hex.DecodeString(util.TrimHex(s))
		}
		cs, err := decode(fetchFlags.ConstraintSystem)
		if err != nil {
			return fmt.Errorf("invalid constraint system hash: %w", err)
		}
		pk, err := decode(fetchFlags.ProvingKey)
		if err != nil {
			return fmt.Errorf("invalid proving key hash: %w", err)
		}
		vk, err := decode(fetchFlags.VerifyingKey)
		if err != nil {
			return fmt.Errorf("invalid verifying key hash: %w", err)
		}
		artifacts, err := config.RemoteArtifacts(fetchFlags.BaseURL, cs, pk, vk)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), fetchFlags.Timeout)
		defer cancel()
		if err := artifacts.DownloadAll(ctx); err != nil {
			return err
		}

		stg, err := openStorage()
		if err != nil {
			return err
		}
		defer stg.Close()
		return stg.SetKeys(&storage.KeysRecord{
			Depth:            fetchFlags.Depth,
			ConstraintSystem: cs,
			ProvingKey:       pk,
			VerifyingKey:     vk,
		})
	},
}

func init() {
	fetchCmd.Flags().StringVar(&fetchFlags.BaseURL, "base-url", config.ArtifactsURL(), "base URL of the published artifacts (default $"+config.ArtifactsURLEnv+")")
	fetchCmd.Flags().IntVar(&fetchFlags.Depth, "depth", circuits.AccumulatorDepth, "accumulator depth the keys were generated for")
	fetchCmd.Flags().StringVar(&fetchFlags.ConstraintSystem, "cs", "", "constraint system hash")
	fetchCmd.Flags().StringVar(&fetchFlags.ProvingKey, "pk", "", "proving key hash")
	fetchCmd.Flags().StringVar(&fetchFlags.VerifyingKey, "vk", "", "verifying key hash")
	fetchCmd.Flags().DurationVar(&fetchFlags.Timeout, "timeout", 10*time.Minute, "download timeout")
}
