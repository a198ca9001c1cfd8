package repositories

import "github.com/vsinha/jvalloc/pkg/domain/entities"

// ProductionRepository stores the partner production entries submitted
// against each terminal receipt
type ProductionRepository interface {
	AddEntries(receiptID string, entries []entities.ProductionEntry) error
	GetEntries(receiptID string) ([]entities.ProductionEntry, error)
}
