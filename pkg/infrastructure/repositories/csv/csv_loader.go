package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/vsinha/jvalloc/pkg/domain/entities"
)

const (
	// ReceiptsFile and ProductionFile are the file names of a scenario directory
	ReceiptsFile   = "receipts.csv"
	ProductionFile = "production.csv"

	dateLayout = "2006-01-02"
)

var (
	receiptHeader    = []string{"receipt_id", "terminal_name", "terminal_volume_bbl", "api_gravity", "receipt_date"}
	productionHeader = []string{"receipt_id", "partner", "gross_volume_bbl", "bsw_percent", "temperature_degf", "api_gravity"}
)

// InputDefaults are applied to blank optional cells of production rows
type InputDefaults struct {
	BSWPercent      float64
	TemperatureDegF float64
}

// DefaultInputDefaults returns the field-standard defaults (no water, 60°F)
func DefaultInputDefaults() InputDefaults {
	return InputDefaults{BSWPercent: 0, TemperatureDegF: 60}
}

// ProductionRow is one parsed production line. APIMissing marks rows whose
// API gravity was blank and must be taken from the receipt.
type ProductionRow struct {
	ReceiptID  string
	Entry      entities.ProductionEntry
	APIMissing bool
}

// Loader handles loading allocation inputs from CSV files
type Loader struct {
	defaults InputDefaults
}

// NewLoader creates a new CSV loader
func NewLoader(defaults InputDefaults) *Loader {
	return &Loader{defaults: defaults}
}

// LoadReceipts loads terminal receipts from a CSV file
func (l *Loader) LoadReceipts(filename string) ([]*entities.TerminalReceipt, error) {
	records, err := readAll(filename, "receipts", receiptHeader)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(records))
	receipts := make([]*entities.TerminalReceipt, 0, len(records))
	for i, record := range records {
		receipt, err := parseReceipt(record)
		if err != nil {
			return nil, fmt.Errorf("receipts CSV row %d: %w", i+2, err)
		}
		if seen[receipt.ID] {
			return nil, fmt.Errorf("receipts CSV row %d: duplicate receipt id %s", i+2, receipt.ID)
		}
		seen[receipt.ID] = true
		receipts = append(receipts, receipt)
	}

	return receipts, nil
}

// LoadProductionEntries loads partner production rows from a CSV file
func (l *Loader) LoadProductionEntries(filename string) ([]ProductionRow, error) {
	records, err := readAll(filename, "production", productionHeader)
	if err != nil {
		return nil, err
	}

	rows := make([]ProductionRow, 0, len(records))
	for i, record := range records {
		row, err := l.parseProductionRow(record)
		if err != nil {
			return nil, fmt.Errorf("production CSV row %d: %w", i+2, err)
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// ResolveAPIDefaults fills blank API gravities from each row's receipt and
// groups the entries by receipt id, preserving file order.
func ResolveAPIDefaults(rows []ProductionRow, receipts []*entities.TerminalReceipt) (map[string][]entities.ProductionEntry, error) {
	byID := make(map[string]*entities.TerminalReceipt, len(receipts))
	for _, receipt := range receipts {
		byID[receipt.ID] = receipt
	}

	grouped := make(map[string][]entities.ProductionEntry)
	for _, row := range rows {
		receipt, ok := byID[row.ReceiptID]
		if !ok {
			return nil, fmt.Errorf("production entry for partner %s references unknown receipt %s", row.Entry.Partner, row.ReceiptID)
		}
		entry := row.Entry
		if row.APIMissing {
			entry.APIGravity = receipt.APIGravity
		}
		grouped[row.ReceiptID] = append(grouped[row.ReceiptID], entry)
	}

	return grouped, nil
}

func readAll(filename, kind string, expectedHeader []string) ([][]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file %s: %w", kind, filename, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s CSV: %w", kind, err)
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("%s CSV must have header and at least one data row", kind)
	}

	header := records[0]
	if !validateHeader(header, expectedHeader) {
		return nil, fmt.Errorf("%s CSV header mismatch. Expected: %v, Got: %v", kind, expectedHeader, header)
	}

	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("%s CSV row %d: expected %d columns, got %d", kind, i+2, len(expectedHeader), len(record))
		}
	}

	return records[1:], nil
}

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}

	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(actual[i])) != col {
			return false
		}
	}

	return true
}

func parseReceipt(record []string) (*entities.TerminalReceipt, error) {
	volume, err := parseFloat(record[2], "terminal_volume_bbl")
	if err != nil {
		return nil, err
	}
	api, err := parseFloat(record[3], "api_gravity")
	if err != nil {
		return nil, err
	}

	var receiptDate time.Time
	if dateStr := strings.TrimSpace(record[4]); dateStr != "" {
		receiptDate, err = time.Parse(dateLayout, dateStr)
		if err != nil {
			return nil, fmt.Errorf("invalid receipt_date %q: %w", dateStr, err)
		}
	}

	return entities.NewTerminalReceipt(strings.TrimSpace(record[0]), strings.TrimSpace(record[1]), volume, api, receiptDate)
}

func (l *Loader) parseProductionRow(record []string) (ProductionRow, error) {
	receiptID := strings.TrimSpace(record[0])
	if receiptID == "" {
		return ProductionRow{}, fmt.Errorf("receipt_id cannot be empty")
	}

	gross, err := parseFloat(record[2], "gross_volume_bbl")
	if err != nil {
		return ProductionRow{}, err
	}
	bsw, err := parseOptionalFloat(record[3], "bsw_percent", l.defaults.BSWPercent)
	if err != nil {
		return ProductionRow{}, err
	}
	temperature, err := parseOptionalFloat(record[4], "temperature_degF", l.defaults.TemperatureDegF)
	if err != nil {
		return ProductionRow{}, err
	}

	apiMissing := strings.TrimSpace(record[5]) == ""
	api, err := parseOptionalFloat(record[5], "api_gravity", 0)
	if err != nil {
		return ProductionRow{}, err
	}

	entry, err := entities.NewProductionEntry(entities.PartnerID(strings.TrimSpace(record[1])), gross, bsw, temperature, api)
	if err != nil {
		return ProductionRow{}, err
	}

	return ProductionRow{ReceiptID: receiptID, Entry: *entry, APIMissing: apiMissing}, nil
}

func parseFloat(s, field string) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", field, s, err)
	}
	return value, nil
}

func parseOptionalFloat(s, field string, fallback float64) (float64, error) {
	if strings.TrimSpace(s) == "" {
		return fallback, nil
	}
	return parseFloat(s, field)
}
