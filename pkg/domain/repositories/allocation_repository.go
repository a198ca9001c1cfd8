package repositories

import "github.com/vsinha/jvalloc/pkg/application/dto"

// AllocationRepository persists allocation runs for audit
type AllocationRepository interface {
	SaveRun(run *dto.AllocationRun) error
	GetRun(runID string) (*dto.AllocationRun, error)
	ListRunsForReceipt(receiptID string) ([]*dto.AllocationRun, error)
}
