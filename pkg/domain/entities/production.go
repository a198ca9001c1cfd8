package entities

import (
	"fmt"
	"strings"
	"time"
)

// PartnerID identifies a joint-venture partner
type PartnerID string

// ProductionEntry is a partner's gross production submission for a period
type ProductionEntry struct {
	Partner         PartnerID `json:"partner"`
	GrossVolumeBBL  float64   `json:"gross_volume_bbl"`
	BSWPercent      float64   `json:"bsw_percent"`
	TemperatureDegF float64   `json:"temperature_degF"`
	APIGravity      float64   `json:"api_gravity"`
}

// NewProductionEntry creates a validated ProductionEntry.
// Field-range checks (BS&W, temperature, API) belong to the net volume
// calculator so that a whole batch can be rejected with every violation listed.
func NewProductionEntry(partner PartnerID, grossVolume, bswPercent, temperature, apiGravity float64) (*ProductionEntry, error) {
	if strings.TrimSpace(string(partner)) == "" {
		return nil, fmt.Errorf("partner cannot be empty")
	}
	if grossVolume <= 0 {
		return nil, fmt.Errorf("gross volume must be positive, got %g", grossVolume)
	}

	return &ProductionEntry{
		Partner:         partner,
		GrossVolumeBBL:  grossVolume,
		BSWPercent:      bswPercent,
		TemperatureDegF: temperature,
		APIGravity:      apiGravity,
	}, nil
}

// TerminalReceipt is the single measured volume at the shared terminal for a period
type TerminalReceipt struct {
	ID           string    `json:"id"`
	TerminalName string    `json:"terminal_name,omitempty"`
	VolumeBBL    float64   `json:"terminal_volume_bbl"`
	APIGravity   float64   `json:"api_gravity"`
	ReceiptDate  time.Time `json:"receipt_date"`
}

// NewTerminalReceipt creates a validated TerminalReceipt
func NewTerminalReceipt(id, terminalName string, volume, apiGravity float64, receiptDate time.Time) (*TerminalReceipt, error) {
	if id == "" {
		return nil, fmt.Errorf("receipt id cannot be empty")
	}
	if volume <= 0 {
		return nil, fmt.Errorf("terminal volume must be positive, got %g", volume)
	}
	if apiGravity <= 0 {
		return nil, fmt.Errorf("terminal API gravity must be positive, got %g", apiGravity)
	}

	return &TerminalReceipt{
		ID:           id,
		TerminalName: terminalName,
		VolumeBBL:    volume,
		APIGravity:   apiGravity,
		ReceiptDate:  receiptDate,
	}, nil
}
