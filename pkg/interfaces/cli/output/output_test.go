package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/jvalloc/pkg/application/dto"
	"github.com/vsinha/jvalloc/pkg/application/services/allocation"
	"github.com/vsinha/jvalloc/pkg/domain/entities"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sampleRuns() []*dto.AllocationRun {
	return []*dto.AllocationRun{{
		RunID:        "run-1",
		ReceiptID:    "R-001",
		TerminalName: "Cushing",
		Status:       dto.RunCompleted,
		Validation:   entities.AllocationValidation{IsValid: true, TotalPercentage: d("100")},
		Result: &dto.AllocationResult{
			ReceiptID: "R-001",
			Records: []entities.AllocationRecord{
				{Partner: "A", GrossVolume: d("1000"), NetVolume: d("991.91"), AllocatedVolume: d("946.58"), Percentage: d("67.612857"), VolumeLoss: d("53.42"), WaterCutFactor: 0.98, TempCorrection: 1, APICorrection: 1.012158},
				{Partner: "B", GrossVolume: d("500"), NetVolume: d("475.14"), AllocatedVolume: d("453.42"), Percentage: d("32.387143"), VolumeLoss: d("46.58"), WaterCutFactor: 0.97, TempCorrection: 0.997868, APICorrection: 0.981763},
			},
			TotalGrossVolume: d("1500"),
			TotalNetVolume:   d("1467.05"),
			TerminalVolume:   d("1400"),
			TotalAllocated:   d("1400"),
			ShrinkageFactor:  d("4.57"),
			Shrinkage: entities.ShrinkageAnalysis{
				ShrinkageFactor:  d("4.57"),
				VolumeLoss:       d("67.05"),
				TotalCorrections: d("32.95"),
				EfficiencyRate:   d("93.33"),
			},
			CappingPolicy: allocation.PolicyCapAndNormalize,
			Issues: []entities.DataQualityIssue{
				{Partner: "B", Kind: entities.IssueVCFClamped, Message: "VCF constrained"},
			},
		},
	}}
}

func config(format, dir string) Config {
	return Config{Format: format, OutputDir: dir, Engine: allocation.DefaultEngineConfig()}
}

func TestGenerate_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Generate(&buf, sampleRuns(), config("text", "")))

	out := buf.String()
	assert.Contains(t, out, "R-001")
	assert.Contains(t, out, "COMPLETED")
	assert.Contains(t, out, "946.58")
	assert.Contains(t, out, "67.612857")
	assert.Contains(t, out, "4.57%")
	assert.Contains(t, out, "[vcf_clamped] B: VCF constrained")
	assert.NotContains(t, out, "Validation:")
}

func TestGenerate_JSONToWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Generate(&buf, sampleRuns(), config("json", "")))

	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "completed", decoded[0]["status"])

	result := decoded[0]["result"].(map[string]interface{})
	assert.Equal(t, "1400", result["total_allocated"])
	allocations := result["allocations"].([]interface{})
	assert.Len(t, allocations, 2)
}

func TestGenerate_JSONToDirectory(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	require.NoError(t, Generate(&buf, sampleRuns(), config("json", dir)))

	data, err := os.ReadFile(filepath.Join(dir, "allocation_runs.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "run-1")
	assert.Empty(t, buf.String())
}

func TestGenerate_CSV(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Generate(&bytes.Buffer{}, sampleRuns(), config("csv", dir)))

	allocations := readCSV(t, filepath.Join(dir, "allocations.csv"))
	require.Len(t, allocations, 3)
	assert.Equal(t, "partner", allocations[0][3])
	assert.Equal(t, []string{"run-1", "R-001", "completed", "A", "1000.00", "991.91", "946.58", "67.612857", "53.42"}, allocations[1][:9])
	assert.Equal(t, "0.997868", allocations[2][10])

	shrinkage := readCSV(t, filepath.Join(dir, "shrinkage.csv"))
	require.Len(t, shrinkage, 2)
	assert.Equal(t, "4.57", shrinkage[1][7])
	assert.Equal(t, "93.33", shrinkage[1][10])
}

func TestGenerate_Errors(t *testing.T) {
	err := Generate(&bytes.Buffer{}, sampleRuns(), config("csv", ""))
	assert.ErrorContains(t, err, "output directory required")

	err = Generate(&bytes.Buffer{}, sampleRuns(), config("yaml", ""))
	assert.ErrorContains(t, err, "unsupported output format")
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()
	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	return records
}
