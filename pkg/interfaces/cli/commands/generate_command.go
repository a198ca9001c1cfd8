package commands

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/vsinha/jvalloc/pkg/domain/entities"
	"github.com/vsinha/jvalloc/pkg/domain/services"
	"github.com/vsinha/jvalloc/pkg/infrastructure/repositories/csv"
)

// GenerateConfig holds configuration for scenario generation
type GenerateConfig struct {
	Receipts          int     // Number of terminal receipts
	Partners          int     // Number of JV partners delivering into each receipt
	EntriesPerPartner int     // Production tickets per partner per receipt
	MaxShrinkage      float64 // Upper bound of simulated transit shrinkage, percent
	BlankAPIRate      float64 // Fraction of tickets left without an API reading
	OutputDir         string  // Output directory for generated files
	Seed              int64   // Random seed for reproducible generation
	Verbose           bool    // Verbose output
}

// GenerateCommand handles scenario generation
type GenerateCommand struct {
	config GenerateConfig
	rand   *rand.Rand
	out    io.Writer
}

// NewGenerateCommand creates a new generate command
func NewGenerateCommand(config GenerateConfig, out io.Writer) *GenerateCommand {
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &GenerateCommand{
		config: config,
		rand:   rand.New(rand.NewSource(seed)),
		out:    out,
	}
}

// Execute runs the generate command
func (cmd *GenerateCommand) Execute(ctx context.Context) error {
	if err := cmd.validate(); err != nil {
		return err
	}

	if cmd.config.Verbose {
		fmt.Fprintf(cmd.out,
			"🔧 Generating %d receipts, %d partners, %d tickets per partner\n",
			cmd.config.Receipts,
			cmd.config.Partners,
			cmd.config.EntriesPerPartner,
		)
		fmt.Fprintf(cmd.out, "📁 Output directory: %s\n", cmd.config.OutputDir)
		fmt.Fprintf(cmd.out, "🎲 Random seed: %d\n", cmd.config.Seed)
	}

	if err := os.MkdirAll(cmd.config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	calculator := services.NewNetVolumeCalculator(nil)
	baseDate := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	var receipts []*entities.TerminalReceipt
	var rows []csv.ProductionRow

	for r := 0; r < cmd.config.Receipts; r++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		receiptID := fmt.Sprintf("R-%04d", r+1)
		terminalAPI := cmd.between(25, 40)
		totalNet := 0.0

		for p := 0; p < cmd.config.Partners; p++ {
			partner := entities.PartnerID(fmt.Sprintf("PARTNER_%02d", p+1))
			for e := 0; e < cmd.config.EntriesPerPartner; e++ {
				entry := entities.ProductionEntry{
					Partner:         partner,
					GrossVolumeBBL:  cmd.round(cmd.between(100, 5000), 2),
					BSWPercent:      cmd.round(cmd.between(0, 8), 2),
					TemperatureDegF: cmd.round(cmd.between(40, 110), 1),
					APIGravity:      cmd.round(cmd.between(20, 42), 1),
				}
				apiMissing := cmd.rand.Float64() < cmd.config.BlankAPIRate
				observedAPI := entry.APIGravity
				if apiMissing {
					observedAPI = terminalAPI
					entry.APIGravity = 0
				}

				net := calculator.Calculate(partner, entry.GrossVolumeBBL, entry.BSWPercent, entry.TemperatureDegF, observedAPI, terminalAPI)
				totalNet += net.NetVolume.InexactFloat64()

				rows = append(rows, csv.ProductionRow{ReceiptID: receiptID, Entry: entry, APIMissing: apiMissing})
			}
		}

		shrinkage := cmd.between(0, cmd.config.MaxShrinkage) / 100
		receipts = append(receipts, &entities.TerminalReceipt{
			ID:           receiptID,
			TerminalName: terminalNames[r%len(terminalNames)],
			VolumeBBL:    cmd.round(totalNet*(1-shrinkage), 2),
			APIGravity:   cmd.round(terminalAPI, 1),
			ReceiptDate:  baseDate.AddDate(0, 0, r),
		})
	}

	receiptsPath := filepath.Join(cmd.config.OutputDir, csv.ReceiptsFile)
	if err := csv.WriteReceipts(receiptsPath, receipts); err != nil {
		return fmt.Errorf("failed to generate receipts: %w", err)
	}
	productionPath := filepath.Join(cmd.config.OutputDir, csv.ProductionFile)
	if err := csv.WriteProduction(productionPath, rows); err != nil {
		return fmt.Errorf("failed to generate production: %w", err)
	}

	if cmd.config.Verbose {
		fmt.Fprintf(cmd.out, "✅ Scenario generated successfully in %s\n", cmd.config.OutputDir)
	}

	return nil
}

var terminalNames = []string{"Cushing", "Midland", "St. James", "Patoka", "Corpus Christi"}

func (cmd *GenerateCommand) validate() error {
	switch {
	case cmd.config.Receipts < 1:
		return fmt.Errorf("receipts must be at least 1, got %d", cmd.config.Receipts)
	case cmd.config.Partners < 1:
		return fmt.Errorf("partners must be at least 1, got %d", cmd.config.Partners)
	case cmd.config.EntriesPerPartner < 1:
		return fmt.Errorf("entries per partner must be at least 1, got %d", cmd.config.EntriesPerPartner)
	case cmd.config.MaxShrinkage < 0 || cmd.config.MaxShrinkage >= 100:
		return fmt.Errorf("max shrinkage must be in [0, 100), got %g", cmd.config.MaxShrinkage)
	case cmd.config.BlankAPIRate < 0 || cmd.config.BlankAPIRate > 1:
		return fmt.Errorf("blank API rate must be in [0, 1], got %g", cmd.config.BlankAPIRate)
	case cmd.config.OutputDir == "":
		return fmt.Errorf("output directory is required")
	}
	return nil
}

func (cmd *GenerateCommand) between(lo, hi float64) float64 {
	return lo + cmd.rand.Float64()*(hi-lo)
}

func (cmd *GenerateCommand) round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
