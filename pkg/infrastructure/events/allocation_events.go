package events

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/jvalloc/pkg/application/dto"
	"github.com/vsinha/jvalloc/pkg/domain/entities"
)

const (
	AllocationCompletedEvent        = "allocation.completed"
	AllocationFailedValidationEvent = "allocation.failed_validation"
)

// AllocationRecorded is the payload of both allocation events
type AllocationRecorded struct {
	RunID           string               `json:"run_id"`
	ReceiptID       string               `json:"receipt_id"`
	Status          dto.RunStatus        `json:"status"`
	TerminalVolume  decimal.Decimal      `json:"terminal_volume"`
	TotalAllocated  decimal.Decimal      `json:"total_allocated"`
	ShrinkageFactor decimal.Decimal      `json:"shrinkage_factor"`
	CappedPartners  []entities.PartnerID `json:"capped_partners,omitempty"`
	ValidationError string               `json:"validation_error,omitempty"`
	CompletedAt     time.Time            `json:"completed_at"`
}

// NewAllocationRecorded summarises a run for publication
func NewAllocationRecorded(run *dto.AllocationRun) AllocationRecorded {
	payload := AllocationRecorded{
		RunID:           run.RunID,
		ReceiptID:       run.ReceiptID,
		Status:          run.Status,
		ValidationError: run.Validation.Error,
		CompletedAt:     run.CompletedAt,
	}
	if run.Result != nil {
		payload.TerminalVolume = run.Result.TerminalVolume
		payload.TotalAllocated = run.Result.TotalAllocated
		payload.ShrinkageFactor = run.Result.ShrinkageFactor
		payload.CappedPartners = run.Result.CappedPartners
	}
	return payload
}

// EventTypeFor maps a run status to the event announcing it
func EventTypeFor(status dto.RunStatus) string {
	if status == dto.RunCompleted {
		return AllocationCompletedEvent
	}
	return AllocationFailedValidationEvent
}

// Notifier appends finished runs to an event store, one stream per receipt
type Notifier struct {
	store EventStore
}

func NewNotifier(store EventStore) *Notifier {
	return &Notifier{store: store}
}

func (n *Notifier) Notify(ctx context.Context, run *dto.AllocationRun) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	event := NewEvent(EventTypeFor(run.Status), "receipt-"+run.ReceiptID, NewAllocationRecorded(run))
	return n.store.AppendEvent(event.StreamID(), event)
}
