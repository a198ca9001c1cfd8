package memory

import (
	"fmt"
	"sync"

	"github.com/vsinha/jvalloc/pkg/domain/entities"
	"github.com/vsinha/jvalloc/pkg/domain/repositories"
)

// ProductionRepository provides in-memory production entry storage keyed by receipt
type ProductionRepository struct {
	mu      sync.RWMutex
	entries map[string][]entities.ProductionEntry
}

// NewProductionRepository creates a new in-memory production repository
func NewProductionRepository() *ProductionRepository {
	return &ProductionRepository{
		entries: make(map[string][]entities.ProductionEntry),
	}
}

// Verify interface compliance
var _ repositories.ProductionRepository = (*ProductionRepository)(nil)

// AddEntries appends entries submitted against a receipt
func (r *ProductionRepository) AddEntries(receiptID string, entries []entities.ProductionEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[receiptID] = append(r.entries[receiptID], entries...)
	return nil
}

// GetEntries returns a copy of the entries submitted against a receipt
func (r *ProductionRepository) GetEntries(receiptID string) ([]entities.ProductionEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, exists := r.entries[receiptID]
	if !exists {
		return nil, fmt.Errorf("production entries for receipt %s: %w", receiptID, repositories.ErrNotFound)
	}
	entries := make([]entities.ProductionEntry, len(stored))
	copy(entries, stored)
	return entries, nil
}
