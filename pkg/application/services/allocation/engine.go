package allocation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vsinha/jvalloc/pkg/application/dto"
	"github.com/vsinha/jvalloc/pkg/domain/entities"
	"github.com/vsinha/jvalloc/pkg/domain/services"
)

var (
	ErrNoProductionEntries   = errors.New("no production entries provided")
	ErrInvalidTerminalVolume = errors.New("terminal volume must be positive")
	ErrInvalidTerminalAPI    = errors.New("terminal API gravity must be positive")
	// ErrInvalidEntry matches every *services.InputValidationError
	ErrInvalidEntry = services.ErrInvalidInput
)

// EngineConfig holds the allocation policy knobs
type EngineConfig struct {
	// MaxPercentage is the ceiling on any single partner's share
	MaxPercentage decimal.Decimal
	// VolumePlaces is the rounding precision of the terminal volume and the
	// allocated volumes. Net and gross volumes are always carried at
	// services.VolumePlaces, so values below that are rejected by config.
	VolumePlaces int32
	// PercentagePlaces is the rounding precision of reported percentages
	PercentagePlaces int32
	// VarianceTolerance is the |allocated - terminal| above which a run is flagged
	VarianceTolerance decimal.Decimal
	// Capping decides how raw shares become allocation shares (nil = CapAndNormalize)
	Capping CappingPolicy
}

// DefaultEngineConfig returns the standard allocation policy
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		MaxPercentage:     decimal.RequireFromString("99.99999"),
		VolumePlaces:      services.VolumePlaces,
		PercentagePlaces:  6,
		VarianceTolerance: decimal.NewFromInt(1),
		Capping:           CapAndNormalize{},
	}
}

// Engine allocates a terminal receipt across the partners that produced into
// it. It holds no state between calls and is safe for concurrent use.
type Engine struct {
	config    EngineConfig
	logger    *zap.Logger
	netVolume *services.NetVolumeCalculator
	shrinkage *services.ShrinkageCalculator
	validator *services.AllocationValidator
}

// NewEngine creates an engine with the default configuration
func NewEngine(logger *zap.Logger) *Engine {
	return NewEngineWithConfig(logger, DefaultEngineConfig())
}

// NewEngineWithConfig creates an engine with a custom configuration
func NewEngineWithConfig(logger *zap.Logger, config EngineConfig) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Capping == nil {
		config.Capping = CapAndNormalize{}
	}
	return &Engine{
		config:    config,
		logger:    logger,
		netVolume: services.NewNetVolumeCalculator(logger),
		shrinkage: services.NewShrinkageCalculator(logger),
		validator: services.NewAllocationValidator(),
	}
}

// Config returns the engine's configuration
func (e *Engine) Config() EngineConfig {
	return e.config
}

// Calculate runs the full allocation for one receipt. Tickets are checked
// structurally, merged per partner, and the merged entries are range-checked.
// Any input error aborts the whole batch before a single record is produced.
func (e *Engine) Calculate(
	ctx context.Context,
	entries []entities.ProductionEntry,
	receipt *entities.TerminalReceipt,
) (*dto.AllocationResult, error) {
	start := time.Now()

	if err := e.validateRequest(entries, receipt); err != nil {
		return nil, err
	}
	if err := e.validateTickets(entries); err != nil {
		return nil, err
	}

	aggregated := AggregateEntries(entries)
	if err := e.validateEntries(aggregated); err != nil {
		return nil, err
	}
	if len(aggregated) < len(entries) {
		e.logger.Info("Aggregated duplicate partner entries",
			zap.Int("entries", len(entries)),
			zap.Int("partners", len(aggregated)))
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("allocation cancelled: %w", err)
	}

	var issues []entities.DataQualityIssue
	netResults := make([]entities.NetVolumeResult, 0, len(aggregated))
	totalGross := decimal.Zero
	totalNet := decimal.Zero

	for _, entry := range aggregated {
		result := e.netVolume.Calculate(
			entry.Partner,
			entry.GrossVolumeBBL,
			entry.BSWPercent,
			entry.TemperatureDegF,
			entry.APIGravity,
			receipt.APIGravity,
		)
		netResults = append(netResults, result)
		issues = append(issues, result.Issues...)
		totalGross = totalGross.Add(result.GrossVolume)
		totalNet = totalNet.Add(result.NetVolume)
	}

	terminal := decimal.NewFromFloat(receipt.VolumeBBL).Round(e.config.VolumePlaces)
	analysis := e.shrinkage.Analyze(totalGross, totalNet, terminal)
	issues = append(issues, e.shrinkageIssues(analysis, totalNet, terminal)...)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("allocation cancelled: %w", err)
	}

	records, cappedPartners := e.allocate(netResults, totalNet, terminal)

	totalAllocated := decimal.Zero
	for _, record := range records {
		totalAllocated = totalAllocated.Add(record.AllocatedVolume)
	}

	variance := totalAllocated.Sub(terminal).Abs()
	if variance.GreaterThan(e.config.VarianceTolerance) {
		e.logger.Warn("Allocation variance exceeds tolerance",
			zap.String("receipt_id", receipt.ID),
			zap.String("variance", variance.String()),
			zap.String("tolerance", e.config.VarianceTolerance.String()))
		issues = append(issues, entities.DataQualityIssue{
			Kind:    entities.IssueAllocationVariance,
			Message: fmt.Sprintf("allocated %s bbl against terminal %s bbl", totalAllocated.StringFixed(e.config.VolumePlaces), terminal.StringFixed(e.config.VolumePlaces)),
		})
	}

	result := &dto.AllocationResult{
		ReceiptID:          receipt.ID,
		Records:            records,
		TotalGrossVolume:   totalGross,
		TotalNetVolume:     totalNet,
		TerminalVolume:     terminal,
		TotalAllocated:     totalAllocated,
		ShrinkageFactor:    analysis.ShrinkageFactor,
		Shrinkage:          analysis,
		AllocationVariance: variance,
		CappingPolicy:      e.config.Capping.Name(),
		CappedPartners:     cappedPartners,
		Issues:             issues,
	}

	e.logger.Info("Allocation calculated",
		zap.String("receipt_id", receipt.ID),
		zap.Int("partners", len(records)),
		zap.String("total_net_volume", totalNet.String()),
		zap.String("terminal_volume", terminal.String()),
		zap.String("total_allocated", totalAllocated.String()),
		zap.String("shrinkage_factor", analysis.ShrinkageFactor.String()),
		zap.Duration("elapsed", time.Since(start)))

	return result, nil
}

// ValidateAllocations checks a finished set of records without modifying them
func (e *Engine) ValidateAllocations(records []entities.AllocationRecord) entities.AllocationValidation {
	return e.validator.Validate(records)
}

func (e *Engine) validateRequest(entries []entities.ProductionEntry, receipt *entities.TerminalReceipt) error {
	if len(entries) == 0 {
		return ErrNoProductionEntries
	}
	if receipt == nil {
		return fmt.Errorf("%w: no terminal receipt", ErrInvalidTerminalVolume)
	}
	if !(receipt.VolumeBBL > 0) || math.IsInf(receipt.VolumeBBL, 1) ||
		!decimal.NewFromFloat(receipt.VolumeBBL).Round(e.config.VolumePlaces).IsPositive() {
		return fmt.Errorf("%w, got %g", ErrInvalidTerminalVolume, receipt.VolumeBBL)
	}
	if !(receipt.APIGravity > 0) {
		return fmt.Errorf("%w, got %g", ErrInvalidTerminalAPI, receipt.APIGravity)
	}
	return nil
}

func (e *Engine) validateTickets(entries []entities.ProductionEntry) error {
	for _, entry := range entries {
		if err := e.netVolume.ValidateTicket(entry.Partner, entry.GrossVolumeBBL); err != nil {
			e.logger.Error("Production ticket rejected",
				zap.String("partner", string(entry.Partner)),
				zap.Error(err))
			return err
		}
	}
	return nil
}

// validateEntries range-checks the per-partner aggregates
func (e *Engine) validateEntries(entries []entities.ProductionEntry) error {
	for _, entry := range entries {
		err := e.netVolume.ValidateInputs(entry.GrossVolumeBBL, entry.BSWPercent, entry.TemperatureDegF, entry.APIGravity)
		if err == nil {
			continue
		}
		var validationErr *services.InputValidationError
		if errors.As(err, &validationErr) {
			validationErr.Partner = entry.Partner
		}
		e.logger.Error("Production entry rejected",
			zap.String("partner", string(entry.Partner)),
			zap.Error(err))
		return err
	}
	return nil
}

func (e *Engine) shrinkageIssues(analysis entities.ShrinkageAnalysis, totalNet, terminal decimal.Decimal) []entities.DataQualityIssue {
	var issues []entities.DataQualityIssue

	if analysis.ShrinkageFactor.Abs().GreaterThan(services.HighShrinkagePercent) {
		issues = append(issues, entities.DataQualityIssue{
			Kind:    entities.IssueHighShrinkage,
			Message: fmt.Sprintf("shrinkage factor %s%% exceeds %s%%", analysis.ShrinkageFactor.String(), services.HighShrinkagePercent.String()),
		})
	}
	if analysis.ShrinkageFactor.IsNegative() {
		issues = append(issues, entities.DataQualityIssue{
			Kind:    entities.IssueVolumeGain,
			Message: fmt.Sprintf("terminal volume exceeds total net volume by %s bbl", analysis.VolumeLoss.Neg().String()),
		})
	}

	check := e.shrinkage.ValidateVolumes(totalNet, terminal)
	for _, warning := range check.Warnings {
		issues = append(issues, entities.DataQualityIssue{Kind: entities.IssueVolumeCheck, Message: warning})
	}

	return issues
}

// allocate splits the terminal volume by net share, then pushes any rounding
// remainder onto the largest allocation so the records sum to terminal exactly.
func (e *Engine) allocate(
	netResults []entities.NetVolumeResult,
	totalNet decimal.Decimal,
	terminal decimal.Decimal,
) ([]entities.AllocationRecord, []entities.PartnerID) {
	raw := make([]decimal.Decimal, len(netResults))
	if totalNet.IsPositive() {
		for i, result := range netResults {
			raw[i] = result.NetVolume.Div(totalNet).Mul(hundred)
		}
	} else {
		for i := range raw {
			raw[i] = decimal.Zero
		}
	}

	shares, capped := e.config.Capping.Apply(raw, e.config.MaxPercentage)

	allocated := make([]decimal.Decimal, len(shares))
	sum := decimal.Zero
	for i, share := range shares {
		allocated[i] = terminal.Mul(share).Div(hundred).Round(e.config.VolumePlaces)
		sum = sum.Add(allocated[i])
	}

	if totalNet.IsPositive() {
		if difference := terminal.Sub(sum); !difference.IsZero() {
			largest := 0
			for i := range allocated {
				if allocated[i].GreaterThan(allocated[largest]) {
					largest = i
				}
			}
			allocated[largest] = allocated[largest].Add(difference).Round(e.config.VolumePlaces)
			e.logger.Debug("Reconciled rounding difference",
				zap.String("partner", string(netResults[largest].Partner)),
				zap.String("difference", difference.String()))
		}
	}

	records := make([]entities.AllocationRecord, len(netResults))
	var cappedPartners []entities.PartnerID

	for i, result := range netResults {
		percentage := allocated[i].Div(terminal).Mul(hundred).Round(e.config.PercentagePlaces)
		if percentage.GreaterThan(e.config.MaxPercentage) {
			percentage = e.config.MaxPercentage
			capped[i] = true
		}
		if capped[i] {
			cappedPartners = append(cappedPartners, result.Partner)
		}

		records[i] = entities.AllocationRecord{
			Partner:               result.Partner,
			GrossVolume:           result.GrossVolume,
			NetVolume:             result.NetVolume,
			AllocatedVolume:       allocated[i],
			Percentage:            percentage,
			VolumeLoss:            result.GrossVolume.Sub(allocated[i]),
			WaterCutFactor:        result.WaterCutFactor,
			TempCorrection:        result.TempCorrection,
			APICorrection:         result.APICorrection,
			BSWDeduction:          result.BSWDeduction,
			TemperatureAdjustment: result.TemperatureAdjustment,
			APIAdjustment:         result.APIAdjustment,
			Capped:                capped[i],
		}
	}

	if len(cappedPartners) > 0 {
		e.logger.Warn("Partner shares capped",
			zap.String("policy", e.config.Capping.Name()),
			zap.String("max_percentage", e.config.MaxPercentage.String()),
			zap.Int("capped", len(cappedPartners)))
	}

	return records, cappedPartners
}
