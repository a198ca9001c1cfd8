package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/vsinha/jvalloc/pkg/application/dto"
	"github.com/vsinha/jvalloc/pkg/application/services/allocation"
)

// Config holds configuration for output generation
type Config struct {
	Format    string
	OutputDir string
	Verbose   bool
	Engine    allocation.EngineConfig
}

// Generate renders runs in the configured format. Text and JSON go to w
// unless an output directory is set; CSV always needs a directory.
func Generate(w io.Writer, runs []*dto.AllocationRun, config Config) error {
	switch config.Format {
	case "", "text":
		return generateTextOutput(w, runs, config)
	case "json":
		return generateJSONOutput(w, runs, config)
	case "csv":
		return generateCSVOutput(w, runs, config)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// generateJSONOutput creates JSON output
func generateJSONOutput(w io.Writer, runs []*dto.AllocationRun, config Config) error {
	jsonData, err := json.MarshalIndent(runs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if config.OutputDir == "" {
		_, err = fmt.Fprintln(w, string(jsonData))
		return err
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := filepath.Join(config.OutputDir, "allocation_runs.json")
	if err := os.WriteFile(filename, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}

	if config.Verbose {
		fmt.Fprintf(w, "💾 JSON results saved to: %s\n", filename)
	}
	return nil
}

// generateCSVOutput writes allocations.csv and shrinkage.csv
func generateCSVOutput(w io.Writer, runs []*dto.AllocationRun, config Config) error {
	if config.OutputDir == "" {
		return fmt.Errorf("output directory required for CSV format")
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	allocFile := filepath.Join(config.OutputDir, "allocations.csv")
	if err := writeAllocationsCSV(runs, allocFile, config.Engine); err != nil {
		return fmt.Errorf("failed to write allocations CSV: %w", err)
	}

	shrinkageFile := filepath.Join(config.OutputDir, "shrinkage.csv")
	if err := writeShrinkageCSV(runs, shrinkageFile); err != nil {
		return fmt.Errorf("failed to write shrinkage CSV: %w", err)
	}

	if config.Verbose {
		fmt.Fprintf(w, "💾 CSV results saved to:\n")
		fmt.Fprintf(w, "  Allocations: %s\n", allocFile)
		fmt.Fprintf(w, "  Shrinkage: %s\n", shrinkageFile)
	}

	return nil
}

func writeAllocationsCSV(runs []*dto.AllocationRun, filename string, engine allocation.EngineConfig) error {
	header := []string{
		"run_id", "receipt_id", "status", "partner",
		"gross_volume_bbl", "net_volume_bbl", "allocated_volume_bbl", "percentage", "volume_loss_bbl",
		"water_cut_factor", "temp_correction", "api_correction",
		"bsw_deduction_bbl", "temperature_adjustment_bbl", "api_adjustment_bbl", "capped",
	}

	volumePlaces := engine.VolumePlaces
	percentagePlaces := engine.PercentagePlaces

	var rows [][]string
	for _, run := range runs {
		if run.Result == nil {
			continue
		}
		for _, record := range run.Result.Records {
			rows = append(rows, []string{
				run.RunID,
				run.ReceiptID,
				string(run.Status),
				string(record.Partner),
				record.GrossVolume.StringFixed(volumePlaces),
				record.NetVolume.StringFixed(volumePlaces),
				record.AllocatedVolume.StringFixed(volumePlaces),
				record.Percentage.StringFixed(percentagePlaces),
				record.VolumeLoss.StringFixed(volumePlaces),
				strconv.FormatFloat(record.WaterCutFactor, 'f', 6, 64),
				strconv.FormatFloat(record.TempCorrection, 'f', 6, 64),
				strconv.FormatFloat(record.APICorrection, 'f', 6, 64),
				record.BSWDeduction.StringFixed(volumePlaces),
				record.TemperatureAdjustment.StringFixed(volumePlaces),
				record.APIAdjustment.StringFixed(volumePlaces),
				strconv.FormatBool(record.Capped),
			})
		}
	}

	return writeCSV(filename, header, rows)
}

func writeShrinkageCSV(runs []*dto.AllocationRun, filename string) error {
	header := []string{
		"run_id", "receipt_id", "status",
		"total_gross_volume_bbl", "total_net_volume_bbl", "terminal_volume_bbl", "total_allocated_bbl",
		"shrinkage_factor", "volume_loss_bbl", "total_corrections_bbl", "efficiency_rate", "allocation_variance_bbl",
	}

	var rows [][]string
	for _, run := range runs {
		if run.Result == nil {
			continue
		}
		r := run.Result
		rows = append(rows, []string{
			run.RunID,
			run.ReceiptID,
			string(run.Status),
			r.TotalGrossVolume.StringFixed(2),
			r.TotalNetVolume.StringFixed(2),
			r.TerminalVolume.StringFixed(2),
			r.TotalAllocated.StringFixed(2),
			r.Shrinkage.ShrinkageFactor.StringFixed(2),
			r.Shrinkage.VolumeLoss.StringFixed(2),
			r.Shrinkage.TotalCorrections.StringFixed(2),
			r.Shrinkage.EfficiencyRate.StringFixed(2),
			r.AllocationVariance.StringFixed(2),
		})
	}

	return writeCSV(filename, header, rows)
}

func writeCSV(filename string, header []string, rows [][]string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		return err
	}
	if err := writer.WriteAll(rows); err != nil {
		return err
	}
	return file.Close()
}
