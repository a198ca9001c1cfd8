package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/jvalloc/pkg/domain/entities"
)

// AllocationResult contains the complete output of one allocation calculation
type AllocationResult struct {
	ReceiptID          string                      `json:"receipt_id"`
	Records            []entities.AllocationRecord `json:"allocations"`
	TotalGrossVolume   decimal.Decimal             `json:"total_gross_volume"`
	TotalNetVolume     decimal.Decimal             `json:"total_net_volume"`
	TerminalVolume     decimal.Decimal             `json:"terminal_volume"`
	TotalAllocated     decimal.Decimal             `json:"total_allocated"`
	ShrinkageFactor    decimal.Decimal             `json:"shrinkage_factor"`
	Shrinkage          entities.ShrinkageAnalysis  `json:"shrinkage_analysis"`
	AllocationVariance decimal.Decimal             `json:"allocation_variance"`
	CappingPolicy      string                      `json:"capping_policy"`
	CappedPartners     []entities.PartnerID        `json:"capped_partners,omitempty"`
	Issues             []entities.DataQualityIssue `json:"data_quality_issues,omitempty"`
}

// Record returns the allocation record for a partner
func (r *AllocationResult) Record(partner entities.PartnerID) (entities.AllocationRecord, bool) {
	for _, record := range r.Records {
		if record.Partner == partner {
			return record, true
		}
	}
	return entities.AllocationRecord{}, false
}

// RunStatus is the persisted outcome of an allocation run
type RunStatus string

const (
	RunCompleted        RunStatus = "completed"
	RunFailedValidation RunStatus = "failed_validation"
)

// AllocationRun is the audit envelope stored for every calculated allocation.
// A run that fails validation still carries its numbers.
type AllocationRun struct {
	RunID         string                        `json:"run_id"`
	ReceiptID     string                        `json:"receipt_id"`
	TerminalName  string                        `json:"terminal_name"`
	Status        RunStatus                     `json:"status"`
	Result        *AllocationResult             `json:"result"`
	Validation    entities.AllocationValidation `json:"validation"`
	StartedAt     time.Time                     `json:"started_at"`
	CompletedAt   time.Time                     `json:"completed_at"`
	ExecutionTime time.Duration                 `json:"execution_time_ns"`
}
