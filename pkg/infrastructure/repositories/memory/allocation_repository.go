package memory

import (
	"fmt"
	"sync"

	"github.com/vsinha/jvalloc/pkg/application/dto"
	"github.com/vsinha/jvalloc/pkg/domain/repositories"
)

// AllocationRepository provides in-memory storage for allocation runs
type AllocationRepository struct {
	mu        sync.RWMutex
	runs      map[string]*dto.AllocationRun
	byReceipt map[string][]string
}

// NewAllocationRepository creates a new in-memory allocation repository
func NewAllocationRepository() *AllocationRepository {
	return &AllocationRepository{
		runs:      make(map[string]*dto.AllocationRun),
		byReceipt: make(map[string][]string),
	}
}

// Verify interface compliance
var _ repositories.AllocationRepository = (*AllocationRepository)(nil)

// SaveRun stores a run. Runs are immutable once saved.
func (r *AllocationRepository) SaveRun(run *dto.AllocationRun) error {
	if run == nil || run.RunID == "" {
		return fmt.Errorf("run must have an id")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.runs[run.RunID]; exists {
		return fmt.Errorf("run %s already saved", run.RunID)
	}
	stored := *run
	r.runs[run.RunID] = &stored
	r.byReceipt[run.ReceiptID] = append(r.byReceipt[run.ReceiptID], run.RunID)
	return nil
}

// GetRun returns a run by id
func (r *AllocationRepository) GetRun(runID string) (*dto.AllocationRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	run, exists := r.runs[runID]
	if !exists {
		return nil, fmt.Errorf("allocation run %s: %w", runID, repositories.ErrNotFound)
	}
	copied := *run
	return &copied, nil
}

// ListRunsForReceipt returns every run for a receipt, oldest first
func (r *AllocationRepository) ListRunsForReceipt(receiptID string) ([]*dto.AllocationRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.byReceipt[receiptID]
	runs := make([]*dto.AllocationRun, 0, len(ids))
	for _, id := range ids {
		copied := *r.runs[id]
		runs = append(runs, &copied)
	}
	return runs, nil
}
