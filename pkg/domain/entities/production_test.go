package entities

import (
	"testing"
	"time"
)

func TestProductionEntry_Validation(t *testing.T) {
	entry, err := NewProductionEntry("ALPHA", 1000, 2, 60, 35)
	if err != nil {
		t.Fatalf("Expected valid entry creation to succeed: %v", err)
	}
	if entry.GrossVolumeBBL != 1000 {
		t.Errorf("Expected gross volume 1000, got %g", entry.GrossVolumeBBL)
	}

	testCases := []struct {
		name        string
		partner     PartnerID
		gross       float64
		expectError string
	}{
		{"empty partner", "", 1000, "partner cannot be empty"},
		{"blank partner", "   ", 1000, "partner cannot be empty"},
		{"zero gross", "ALPHA", 0, "gross volume must be positive, got 0"},
		{"negative gross", "ALPHA", -5, "gross volume must be positive, got -5"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewProductionEntry(tc.partner, tc.gross, 2, 60, 35)
			if err == nil {
				t.Fatalf("Expected error for %s, but got none", tc.name)
			}
			if err.Error() != tc.expectError {
				t.Errorf("Expected error '%s', got '%s'", tc.expectError, err.Error())
			}
		})
	}
}

func TestTerminalReceipt_Validation(t *testing.T) {
	date := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	receipt, err := NewTerminalReceipt("R-001", "Forcados", 1400, 33, date)
	if err != nil {
		t.Fatalf("Expected valid receipt creation to succeed: %v", err)
	}
	if receipt.VolumeBBL != 1400 {
		t.Errorf("Expected volume 1400, got %g", receipt.VolumeBBL)
	}

	testCases := []struct {
		name        string
		id          string
		volume      float64
		api         float64
		expectError string
	}{
		{"empty id", "", 1400, 33, "receipt id cannot be empty"},
		{"zero volume", "R-001", 0, 33, "terminal volume must be positive, got 0"},
		{"zero api", "R-001", 1400, 0, "terminal API gravity must be positive, got 0"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewTerminalReceipt(tc.id, "Forcados", tc.volume, tc.api, date)
			if err == nil {
				t.Fatalf("Expected error for %s, but got none", tc.name)
			}
			if err.Error() != tc.expectError {
				t.Errorf("Expected error '%s', got '%s'", tc.expectError, err.Error())
			}
		})
	}
}
