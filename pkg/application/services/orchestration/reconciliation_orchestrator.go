package orchestration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vsinha/jvalloc/pkg/application/dto"
	"github.com/vsinha/jvalloc/pkg/application/services/allocation"
	"github.com/vsinha/jvalloc/pkg/domain/repositories"
)

// Notifier delivers a finished allocation run to interested parties
type Notifier interface {
	Notify(ctx context.Context, run *dto.AllocationRun) error
}

// ReconciliationOrchestrator loads a receipt and its production entries,
// allocates it, and records the outcome
type ReconciliationOrchestrator struct {
	engine         *allocation.Engine
	receiptRepo    repositories.ReceiptRepository
	productionRepo repositories.ProductionRepository
	allocationRepo repositories.AllocationRepository
	notifier       Notifier
	timeout        time.Duration
	logger         *zap.Logger
}

// NewReconciliationOrchestrator creates a new orchestrator. notifier may be
// nil; a zero timeout means the caller's context alone bounds a run.
func NewReconciliationOrchestrator(
	engine *allocation.Engine,
	receiptRepo repositories.ReceiptRepository,
	productionRepo repositories.ProductionRepository,
	allocationRepo repositories.AllocationRepository,
	notifier Notifier,
	timeout time.Duration,
	logger *zap.Logger,
) *ReconciliationOrchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReconciliationOrchestrator{
		engine:         engine,
		receiptRepo:    receiptRepo,
		productionRepo: productionRepo,
		allocationRepo: allocationRepo,
		notifier:       notifier,
		timeout:        timeout,
		logger:         logger,
	}
}

// Reconcile allocates one receipt. A run that fails validation is still
// persisted and returned without error; only input, timeout and persistence
// failures are errors.
func (o *ReconciliationOrchestrator) Reconcile(ctx context.Context, receiptID string) (*dto.AllocationRun, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	startedAt := time.Now().UTC()
	logger := o.logger.With(zap.String("receipt_id", receiptID))

	receipt, err := o.receiptRepo.GetReceipt(receiptID)
	if err != nil {
		return nil, fmt.Errorf("failed to load receipt: %w", err)
	}
	entries, err := o.productionRepo.GetEntries(receiptID)
	if err != nil {
		return nil, fmt.Errorf("failed to load production entries: %w", err)
	}

	result, err := o.engine.Calculate(ctx, entries, receipt)
	if err != nil {
		logger.Error("Allocation failed", zap.Error(err))
		return nil, fmt.Errorf("allocation failed for receipt %s: %w", receiptID, err)
	}

	validation := o.engine.ValidateAllocations(result.Records)
	status := dto.RunCompleted
	if !validation.IsValid {
		status = dto.RunFailedValidation
		logger.Warn("Allocation failed validation", zap.String("error", validation.Error))
	}

	completedAt := time.Now().UTC()
	run := &dto.AllocationRun{
		RunID:         uuid.NewString(),
		ReceiptID:     receipt.ID,
		TerminalName:  receipt.TerminalName,
		Status:        status,
		Result:        result,
		Validation:    validation,
		StartedAt:     startedAt,
		CompletedAt:   completedAt,
		ExecutionTime: completedAt.Sub(startedAt),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := o.allocationRepo.SaveRun(run); err != nil {
			return fmt.Errorf("failed to persist allocation run %s: %w", run.RunID, err)
		}
		return nil
	})
	g.Go(func() error {
		if o.notifier == nil {
			return nil
		}
		if err := o.notifier.Notify(gctx, run); err != nil {
			logger.Warn("Allocation notification failed", zap.String("run_id", run.RunID), zap.Error(err))
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return run, err
	}

	logger.Info("Allocation run recorded",
		zap.String("run_id", run.RunID),
		zap.String("status", string(run.Status)),
		zap.Duration("execution_time", run.ExecutionTime))

	return run, nil
}

// ReconcileAll allocates every stored receipt. Failures for one receipt do
// not stop the others; they are joined into the returned error.
func (o *ReconciliationOrchestrator) ReconcileAll(ctx context.Context) ([]*dto.AllocationRun, error) {
	receipts, err := o.receiptRepo.ListReceipts()
	if err != nil {
		return nil, fmt.Errorf("failed to list receipts: %w", err)
	}

	var runs []*dto.AllocationRun
	var errs []error
	for _, receipt := range receipts {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		run, err := o.Reconcile(ctx, receipt.ID)
		if err != nil {
			errs = append(errs, err)
		}
		if run != nil {
			runs = append(runs, run)
		}
	}

	return runs, errors.Join(errs...)
}
