package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/vsinha/jvalloc/pkg/application/services/allocation"
	"github.com/vsinha/jvalloc/pkg/domain/entities"
)

func main() {
	ctx := context.Background()

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	engine := allocation.NewEngine(logger)

	receipt := &entities.TerminalReceipt{
		ID:           "R-001",
		TerminalName: "Cushing",
		VolumeBBL:    1400,
		APIGravity:   33,
		ReceiptDate:  time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	entries := []entities.ProductionEntry{
		{Partner: "A", GrossVolumeBBL: 1000, BSWPercent: 2, TemperatureDegF: 60, APIGravity: 35},
		{Partner: "B", GrossVolumeBBL: 500, BSWPercent: 3, TemperatureDegF: 65, APIGravity: 30},
	}

	fmt.Println("🛢️  Allocating terminal receipt...")
	fmt.Printf("Terminal: %s, %.2f bbl at %.1f° API\n\n", receipt.TerminalName, receipt.VolumeBBL, receipt.APIGravity)

	result, err := engine.Calculate(ctx, entries, receipt)
	if err != nil {
		fmt.Printf("❌ Allocation failed: %v\n", err)
		return
	}

	fmt.Println("📊 Allocation Results:")
	fmt.Printf("  Total gross: %s bbl\n", result.TotalGrossVolume.StringFixed(2))
	fmt.Printf("  Total net:   %s bbl\n", result.TotalNetVolume.StringFixed(2))
	fmt.Printf("  Shrinkage:   %s%%\n", result.ShrinkageFactor.StringFixed(2))
	fmt.Println()

	fmt.Printf("%-8s %10s %10s %12s %12s\n", "Partner", "Gross", "Net", "Allocated", "Share %")
	for _, record := range result.Records {
		fmt.Printf("%-8s %10s %10s %12s %12s\n",
			record.Partner,
			record.GrossVolume.StringFixed(2),
			record.NetVolume.StringFixed(2),
			record.AllocatedVolume.StringFixed(2),
			record.Percentage.StringFixed(6))
	}
	fmt.Printf("%-8s %10s %10s %12s\n", "Total", "", "", result.TotalAllocated.StringFixed(2))

	validation := engine.ValidateAllocations(result.Records)
	fmt.Println()
	if validation.IsValid {
		fmt.Println("✅ Allocation valid")
	} else {
		fmt.Printf("⚠️  Allocation failed validation: %s\n", validation.Error)
	}
}
