package testing

import (
	"time"

	"github.com/vsinha/jvalloc/pkg/domain/entities"
	"github.com/vsinha/jvalloc/pkg/infrastructure/repositories/memory"
)

// Receipt ids of the terminal test scenario
const (
	ExampleReceiptID    = "R-CUSH-001"
	DuplicateReceiptID  = "R-MIDL-002"
	SinglePartnerID     = "R-PATK-003"
	VolumeGainReceiptID = "R-STJA-004"
)

// mustCreateReceipt is a helper for fixtures - panics on validation error
func mustCreateReceipt(id, terminal string, volume, api float64, date time.Time) *entities.TerminalReceipt {
	receipt, err := entities.NewTerminalReceipt(id, terminal, volume, api, date)
	if err != nil {
		panic(err)
	}
	return receipt
}

// mustCreateEntry is a helper for fixtures - panics on validation error
func mustCreateEntry(partner string, gross, bsw, temperature, api float64) entities.ProductionEntry {
	entry, err := entities.NewProductionEntry(entities.PartnerID(partner), gross, bsw, temperature, api)
	if err != nil {
		panic(err)
	}
	return *entry
}

// BuildTerminalTestData builds four receipts covering the common shapes of a
// JV allocation: the two-partner reference case, duplicate tickets for one
// partner, a sole producer, and a terminal that measures more than it was sent.
func BuildTerminalTestData() (*memory.ReceiptRepository, *memory.ProductionRepository) {
	receiptRepo := memory.NewReceiptRepository(4)
	productionRepo := memory.NewProductionRepository()

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	receipts := []*entities.TerminalReceipt{
		mustCreateReceipt(ExampleReceiptID, "Cushing", 1400, 33, day),
		mustCreateReceipt(DuplicateReceiptID, "Midland", 650, 33, day.AddDate(0, 0, 1)),
		mustCreateReceipt(SinglePartnerID, "Patoka", 980, 31, day.AddDate(0, 0, 2)),
		mustCreateReceipt(VolumeGainReceiptID, "St. James", 1500, 33, day.AddDate(0, 0, 3)),
	}
	if err := receiptRepo.LoadReceipts(receipts); err != nil {
		panic(err)
	}

	entries := map[string][]entities.ProductionEntry{
		ExampleReceiptID: {
			mustCreateEntry("A", 1000, 2, 60, 35),
			mustCreateEntry("B", 500, 3, 65, 30),
		},
		DuplicateReceiptID: {
			mustCreateEntry("A", 100, 5, 60, 33),
			mustCreateEntry("B", 400, 1, 60, 33),
			mustCreateEntry("A", 200, 10, 60, 33),
		},
		SinglePartnerID: {
			mustCreateEntry("SOLO", 1000, 1.5, 72, 31),
		},
		VolumeGainReceiptID: {
			mustCreateEntry("A", 1000, 2, 60, 35),
			mustCreateEntry("B", 500, 3, 65, 30),
		},
	}
	for _, receipt := range receipts {
		if err := productionRepo.AddEntries(receipt.ID, entries[receipt.ID]); err != nil {
			panic(err)
		}
	}

	return receiptRepo, productionRepo
}
