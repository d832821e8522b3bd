package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/arnavshah/duty-roster-go/pkg/auth"
)

var (
	verbose bool
	logger  = zap.NewNop()
	genOpts generateOptions
)

var rootCmd = &cobra.Command{
	Use:   "roster",
	Short: "Plan a month of duty shifts for a team",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		l, err := config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	SilenceUsage: true,
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the planning of the configured month",
	Long: `Reads the team configuration, replays the tail of the previous month's
planning when planning_<year>_<month>.json of that month is found, and writes
planning_<year>_<month>.json for the configured month.

Example:
  roster generate --config config.yaml --format table`,
	RunE: func(cmd *cobra.Command, args []string) error {
		genOpts.seedSet = cmd.Flags().Changed("seed")
		_, err := generate(genOpts, logger, cmd.OutOrStdout())
		return err
	},
}

var keygenCmd = &cobra.Command{
	Use:   "keygen [team]",
	Short: "Print a signed API key for a team",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load(".env")
		_ = godotenv.Load("../.env")
		if os.Getenv("API_MASTER_SECRET") == "" {
			return errors.New("API_MASTER_SECRET not set")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Generated key for %s:\n%s\n", args[0], auth.SignerFromEnv().TeamKey(args[0]))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	f := generateCmd.Flags()
	f.StringVarP(&genOpts.configPath, "config", "c", "config.yaml", "team configuration file")
	f.StringVarP(&genOpts.outDir, "out-dir", "o", ".", "directory plannings are read from and written to")
	f.StringVar(&genOpts.previousPath, "previous", "", "previous month's planning (default: derived from out-dir)")
	f.StringVarP(&genOpts.format, "format", "f", "json", "stdout rendering: json, csv, table or none")
	f.Int64Var(&genOpts.seed, "seed", 0, "random seed, overrides the configuration")
	f.IntVar(&genOpts.capacity, "capacity", 0, "persons per day, overrides the configuration")
	f.IntVar(&genOpts.maxSteps, "max-steps", 0, "cap on day visits (default 10000)")

	rootCmd.AddCommand(generateCmd, keygenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
