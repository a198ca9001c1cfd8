package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vsinha/jvalloc/pkg/infrastructure/config"
	"github.com/vsinha/jvalloc/pkg/infrastructure/logging"
	"github.com/vsinha/jvalloc/pkg/interfaces/cli/commands"
)

var (
	configPath string
	verbose    bool

	settings *config.Config
	logger   *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "jvalloc",
	Short: "Joint-venture terminal allocation engine",
	Long: `jvalloc splits a measured terminal receipt among the joint-venture partners
that produced into it. Each partner's gross volume is corrected for water cut,
temperature and API gravity, and the terminal volume is then shared pro rata to
net volume so the allocations sum exactly to the terminal measurement.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		settings = cfg

		logger, err = logging.New(cfg.Logging, verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var allocateConfig commands.AllocateConfig

var allocateCmd = &cobra.Command{
	Use:   "allocate",
	Short: "Allocate terminal receipts from CSV inputs",
	Example: `  jvalloc allocate --scenario ./scenario
  jvalloc allocate --receipts receipts.csv --production production.csv --receipt R-001 --format json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		allocateConfig.Settings = settings
		allocateConfig.Verbose = verbose
		return commands.NewAllocateCommand(allocateConfig, cmd.OutOrStdout(), logger).Execute(cmd.Context())
	},
}

var generateConfig commands.GenerateConfig

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a synthetic receipts/production scenario",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		generateConfig.Verbose = verbose
		return commands.NewGenerateCommand(generateConfig, cmd.OutOrStdout()).Execute(cmd.Context())
	},
}

var validateConfigCmd = &cobra.Command{
	Use:   "validate-config",
	Short: "Validate a configuration file and environment overrides",
	Args:  cobra.NoArgs,
	// Skips the root pre-run so load and validation errors are reported here
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := commands.ValidateConfig(configPath, cmd.OutOrStdout())
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "jvalloc.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output and debug logging")

	allocateCmd.Flags().StringVar(&allocateConfig.ScenarioDir, "scenario", "", "Scenario directory containing receipts.csv and production.csv")
	allocateCmd.Flags().StringVar(&allocateConfig.ReceiptsFile, "receipts", "", "Path to receipts CSV file")
	allocateCmd.Flags().StringVar(&allocateConfig.ProductionFile, "production", "", "Path to production CSV file")
	allocateCmd.Flags().StringVar(&allocateConfig.ReceiptID, "receipt", "", "Allocate only this receipt id")
	allocateCmd.Flags().StringVarP(&allocateConfig.Format, "format", "f", "text", "Output format: text, json, csv")
	allocateCmd.Flags().StringVarP(&allocateConfig.OutputDir, "output", "o", "", "Output directory for results (required for csv)")
	allocateCmd.MarkFlagsMutuallyExclusive("scenario", "receipts")
	allocateCmd.MarkFlagsMutuallyExclusive("scenario", "production")

	generateCmd.Flags().IntVar(&generateConfig.Receipts, "receipts", 5, "Number of terminal receipts")
	generateCmd.Flags().IntVar(&generateConfig.Partners, "partners", 4, "Number of partners per receipt")
	generateCmd.Flags().IntVar(&generateConfig.EntriesPerPartner, "entries", 3, "Production tickets per partner per receipt")
	generateCmd.Flags().Float64Var(&generateConfig.MaxShrinkage, "max-shrinkage", 4, "Upper bound of simulated shrinkage, percent")
	generateCmd.Flags().Float64Var(&generateConfig.BlankAPIRate, "blank-api-rate", 0.1, "Fraction of tickets without an API reading")
	generateCmd.Flags().StringVarP(&generateConfig.OutputDir, "output", "o", "scenario", "Output directory")
	generateCmd.Flags().Int64Var(&generateConfig.Seed, "seed", 0, "Random seed (0 = time based)")

	rootCmd.AddCommand(allocateCmd, generateCmd, validateConfigCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
