package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/vsinha/jvalloc/pkg/application/dto"
	"github.com/vsinha/jvalloc/pkg/application/services/allocation"
	"github.com/vsinha/jvalloc/pkg/application/services/orchestration"
	"github.com/vsinha/jvalloc/pkg/infrastructure/config"
	"github.com/vsinha/jvalloc/pkg/infrastructure/events"
	"github.com/vsinha/jvalloc/pkg/infrastructure/notify"
	"github.com/vsinha/jvalloc/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/jvalloc/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/jvalloc/pkg/interfaces/cli/output"
)

// AllocateConfig holds configuration for the allocate command
type AllocateConfig struct {
	ScenarioDir    string
	ReceiptsFile   string
	ProductionFile string
	ReceiptID      string
	OutputDir      string
	Format         string
	Verbose        bool
	Settings       *config.Config
}

// AllocateCommand loads receipts and production entries from CSV, allocates
// each receipt and reports the runs
type AllocateCommand struct {
	config AllocateConfig
	out    io.Writer
	logger *zap.Logger
}

// NewAllocateCommand creates a new allocate command
func NewAllocateCommand(cfg AllocateConfig, out io.Writer, logger *zap.Logger) *AllocateCommand {
	if cfg.Settings == nil {
		cfg.Settings = config.DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AllocateCommand{config: cfg, out: out, logger: logger}
}

// Execute runs the allocate command. Runs that were produced are always
// reported, even when other receipts failed.
func (c *AllocateCommand) Execute(ctx context.Context) error {
	if err := c.validateInputs(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	files, err := c.resolveInputFiles()
	if err != nil {
		return fmt.Errorf("failed to resolve input files: %w", err)
	}

	if c.config.Verbose {
		c.printHeader(files)
	}

	settings := c.config.Settings
	engineConfig, err := settings.AllocationEngineConfig()
	if err != nil {
		return fmt.Errorf("invalid engine configuration: %w", err)
	}
	timeout, err := settings.GetTimeout()
	if err != nil {
		return err
	}

	loader := csv.NewLoader(settings.InputDefaults())
	receipts, err := loader.LoadReceipts(files.receipts)
	if err != nil {
		return fmt.Errorf("error loading receipts: %w", err)
	}
	rows, err := loader.LoadProductionEntries(files.production)
	if err != nil {
		return fmt.Errorf("error loading production entries: %w", err)
	}
	grouped, err := csv.ResolveAPIDefaults(rows, receipts)
	if err != nil {
		return fmt.Errorf("error resolving production entries: %w", err)
	}

	receiptRepo := memory.NewReceiptRepository(len(receipts))
	if err := receiptRepo.LoadReceipts(receipts); err != nil {
		return fmt.Errorf("error loading receipts into repository: %w", err)
	}
	productionRepo := memory.NewProductionRepository()
	for receiptID, entries := range grouped {
		if err := productionRepo.AddEntries(receiptID, entries); err != nil {
			return fmt.Errorf("error loading production entries into repository: %w", err)
		}
	}
	allocationRepo := memory.NewAllocationRepository()

	if c.config.Verbose {
		fmt.Fprintf(c.out, "📂 Loaded %d receipts and %d production entries\n", len(receipts), len(rows))
	}

	eventStore := events.NewInMemoryEventStore(c.logger)
	notifiers := notify.Multi{events.NewNotifier(eventStore)}
	if settings.Notifications.Kafka.Enabled {
		kafkaNotifier, err := notify.NewKafkaNotifier(notify.KafkaConfig{
			Brokers: settings.Notifications.Kafka.Brokers,
			Topic:   settings.Notifications.Kafka.Topic,
		}, c.logger)
		if err != nil {
			return fmt.Errorf("failed to create kafka notifier: %w", err)
		}
		defer func() {
			if err := kafkaNotifier.Close(); err != nil {
				c.logger.Warn("Failed to close kafka notifier", zap.Error(err))
			}
		}()
		notifiers = append(notifiers, kafkaNotifier)
	}

	engine := allocation.NewEngineWithConfig(c.logger, engineConfig)
	orchestrator := orchestration.NewReconciliationOrchestrator(
		engine, receiptRepo, productionRepo, allocationRepo, notifiers, timeout, c.logger)

	var runs []*dto.AllocationRun
	var runErr error
	if c.config.ReceiptID != "" {
		run, err := orchestrator.Reconcile(ctx, c.config.ReceiptID)
		if run != nil {
			runs = append(runs, run)
		}
		runErr = err
	} else {
		runs, runErr = orchestrator.ReconcileAll(ctx)
	}
	eventStore.Wait()

	outputConfig := output.Config{
		Format:    c.config.Format,
		OutputDir: c.config.OutputDir,
		Verbose:   c.config.Verbose,
		Engine:    engineConfig,
	}
	if err := output.Generate(c.out, runs, outputConfig); err != nil {
		return fmt.Errorf("error generating output: %w", err)
	}

	if runErr != nil {
		return fmt.Errorf("allocation failed: %w", runErr)
	}

	if c.config.Verbose {
		fmt.Fprintln(c.out, "🏁 Allocation complete!")
	}

	return nil
}

type inputFiles struct {
	receipts   string
	production string
}

// validateInputs validates the command configuration
func (c *AllocateCommand) validateInputs() error {
	if c.config.ScenarioDir == "" && (c.config.ReceiptsFile == "" || c.config.ProductionFile == "") {
		return fmt.Errorf("must specify either --scenario directory or both --receipts and --production files")
	}
	return nil
}

// resolveInputFiles determines the actual file paths to use
func (c *AllocateCommand) resolveInputFiles() (inputFiles, error) {
	files := inputFiles{receipts: c.config.ReceiptsFile, production: c.config.ProductionFile}
	if c.config.ScenarioDir != "" {
		files = inputFiles{
			receipts:   filepath.Join(c.config.ScenarioDir, csv.ReceiptsFile),
			production: filepath.Join(c.config.ScenarioDir, csv.ProductionFile),
		}
	}

	for name, path := range map[string]string{"Receipts": files.receipts, "Production": files.production} {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return inputFiles{}, fmt.Errorf("%s file not found: %s", name, path)
		}
	}

	return files, nil
}

// printHeader prints the command header information
func (c *AllocateCommand) printHeader(files inputFiles) {
	fmt.Fprintf(c.out, "🚀 JV Terminal Allocation\n")
	fmt.Fprintf(c.out, "Input files:\n")
	fmt.Fprintf(c.out, "  Receipts: %s\n", files.receipts)
	fmt.Fprintf(c.out, "  Production: %s\n", files.production)
	fmt.Fprintf(c.out, "Capping policy: %s\n", c.config.Settings.Engine.CappingPolicy)
	fmt.Fprintf(c.out, "Output format: %s\n", c.config.Format)
	if c.config.OutputDir != "" {
		fmt.Fprintf(c.out, "Output directory: %s\n", c.config.OutputDir)
	}
	fmt.Fprintln(c.out)
}
