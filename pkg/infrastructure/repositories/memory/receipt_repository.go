package memory

import (
	"fmt"
	"sync"

	"github.com/vsinha/jvalloc/pkg/domain/entities"
	"github.com/vsinha/jvalloc/pkg/domain/repositories"
)

// ReceiptRepository provides in-memory terminal receipt storage
type ReceiptRepository struct {
	mu          sync.RWMutex
	receipts    []entities.TerminalReceipt
	receiptsMap map[string]int
}

// NewReceiptRepository creates a new in-memory receipt repository
func NewReceiptRepository(expectedReceipts int) *ReceiptRepository {
	return &ReceiptRepository{
		receipts:    make([]entities.TerminalReceipt, 0, expectedReceipts),
		receiptsMap: make(map[string]int, expectedReceipts),
	}
}

// Verify interface compliance
var _ repositories.ReceiptRepository = (*ReceiptRepository)(nil)

// LoadReceipts loads receipts into the repository
func (r *ReceiptRepository) LoadReceipts(receipts []*entities.TerminalReceipt) error {
	for _, receipt := range receipts {
		if err := r.SaveReceipt(receipt); err != nil {
			return err
		}
	}
	return nil
}

// SaveReceipt stores a receipt, replacing any receipt with the same id
func (r *ReceiptRepository) SaveReceipt(receipt *entities.TerminalReceipt) error {
	if receipt == nil {
		return fmt.Errorf("cannot save nil receipt")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if index, exists := r.receiptsMap[receipt.ID]; exists {
		r.receipts[index] = *receipt
		return nil
	}
	r.receiptsMap[receipt.ID] = len(r.receipts)
	r.receipts = append(r.receipts, *receipt)
	return nil
}

// GetReceipt returns a copy of the receipt with the given id
func (r *ReceiptRepository) GetReceipt(id string) (*entities.TerminalReceipt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	index, exists := r.receiptsMap[id]
	if !exists {
		return nil, fmt.Errorf("receipt %s: %w", id, repositories.ErrNotFound)
	}
	receipt := r.receipts[index]
	return &receipt, nil
}

// ListReceipts returns all receipts in insertion order
func (r *ReceiptRepository) ListReceipts() ([]*entities.TerminalReceipt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	receipts := make([]*entities.TerminalReceipt, 0, len(r.receipts))
	for i := range r.receipts {
		receipt := r.receipts[i]
		receipts = append(receipts, &receipt)
	}
	return receipts, nil
}
