package repositories

import "github.com/vsinha/jvalloc/pkg/domain/entities"

// ReceiptRepository provides access to terminal receipts
type ReceiptRepository interface {
	SaveReceipt(receipt *entities.TerminalReceipt) error
	GetReceipt(id string) (*entities.TerminalReceipt, error)
	ListReceipts() ([]*entities.TerminalReceipt, error)
}
