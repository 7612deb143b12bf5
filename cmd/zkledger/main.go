// Command zkledger runs the trusted setup of the validity circuit, fetches
// published keys and verifies stored validity proofs.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/consensys/gnark/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/vocdoni/zkledger/circuits"
	"github.com/vocdoni/zkledger/log"
	"github.com/vocdoni/zkledger/prover"
	"github.com/vocdoni/zkledger/storage"
	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/metadb"
)

type globalFlags struct {
	LogLevel     string
	DataDir      string
	ArtifactsDir string
	MetricsFile  string
}

var flags globalFlags

// metricsRegistry collects the prover metrics of a command run.
var metricsRegistry = prometheus.NewRegistry()

var rootCmd = &cobra.Command{
	Use:           "zkledger",
	Short:         "Validity proofs for private ledger transactions",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		switch flags.LogLevel {
		case log.LogLevelDebug, log.LogLevelInfo, log.LogLevelWarn, log.LogLevelError:
		default:
			return fmt.Errorf("invalid log level %q", flags.LogLevel)
		}
		log.Init(flags.LogLevel, "stderr", nil)
		gnarkLevel := zerolog.WarnLevel
		if flags.LogLevel == log.LogLevelDebug {
			gnarkLevel = zerolog.DebugLevel
		}
		logger.Set(zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
			Level(gnarkLevel).With().Timestamp().Logger())
		if flags.ArtifactsDir != "" {
			circuits.BaseDir = flags.ArtifactsDir
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if flags.MetricsFile == "" {
			return nil
		}
		return writeMetrics(flags.MetricsFile)
	},
}

func init() {
	defaultLevel := log.LogLevelInfo
	if s := os.Getenv("LOG_LEVEL"); s != "" {
		defaultLevel = s
	}
	defaultDataDir := filepath.Join(os.TempDir(), "zkledger")
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		defaultDataDir = filepath.Join(home, ".zkledger", "db")
	}
	rootCmd.PersistentFlags().StringVar(&flags.LogLevel, "log-level", defaultLevel, "log level: debug|info|warn|error")
	rootCmd.PersistentFlags().StringVar(&flags.DataDir, "datadir", defaultDataDir, "database directory")
	rootCmd.PersistentFlags().StringVar(&flags.MetricsFile, "metrics-file", "", "write the prover metrics to this file in the prometheus text format")
	rootCmd.PersistentFlags().StringVar(&flags.ArtifactsDir, "artifacts", "", "artifact cache directory (default $ZKLEDGER_ARTIFACTS_DIR or ~/.zkledger/artifacts)")

	if err := prover.RegisterMetrics(metricsRegistry); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(proofsCmd)
	rootCmd.AddCommand(fetchCmd)
}

// openStorage opens the pebble database under the data directory.
func openStorage() (*storage.Storage, error) {
	database, err := metadb.New(db.TypePebble, flags.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", flags.DataDir, err)
	}
	return storage.New(database), nil
}

// writeMetrics dumps the collected metrics, e.g. for the node exporter
// textfile collector.
func writeMetrics(path string) error {
	if err := prometheus.WriteToTextfile(path, metricsRegistry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
