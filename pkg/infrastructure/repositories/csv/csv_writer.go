package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/vsinha/jvalloc/pkg/domain/entities"
)

// WriteReceipts writes receipts in the format LoadReceipts reads
func WriteReceipts(filename string, receipts []*entities.TerminalReceipt) error {
	rows := make([][]string, 0, len(receipts))
	for _, receipt := range receipts {
		date := ""
		if !receipt.ReceiptDate.IsZero() {
			date = receipt.ReceiptDate.Format(dateLayout)
		}
		rows = append(rows, []string{
			receipt.ID,
			receipt.TerminalName,
			formatFloat(receipt.VolumeBBL),
			formatFloat(receipt.APIGravity),
			date,
		})
	}
	return writeAll(filename, receiptHeader, rows)
}

// WriteProduction writes production rows in the format LoadProductionEntries reads
func WriteProduction(filename string, rows []ProductionRow) error {
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		api := formatFloat(row.Entry.APIGravity)
		if row.APIMissing {
			api = ""
		}
		records = append(records, []string{
			row.ReceiptID,
			string(row.Entry.Partner),
			formatFloat(row.Entry.GrossVolumeBBL),
			formatFloat(row.Entry.BSWPercent),
			formatFloat(row.Entry.TemperatureDegF),
			api,
		})
	}
	header := append([]string(nil), productionHeader...)
	header[4] = "temperature_degF"
	return writeAll(filename, header, records)
}

func writeAll(filename string, header []string, rows [][]string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filename, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		return err
	}
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return file.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
