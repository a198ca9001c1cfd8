package services

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/vsinha/jvalloc/pkg/domain/entities"
)

// ErrInvalidInput is the class of every field-range validation failure
var ErrInvalidInput = errors.New("invalid production entry")

// MaxGrossVolumeBBL is the largest gross volume whose corrected net volume
// still fits in a float64 at the upper VCF and API correction clamps, with a
// factor of two to absorb rounding in the intermediate products.
const MaxGrossVolumeBBL = math.MaxFloat64 / (2 * MaxVCF * MaxAPICorrection)

// InputValidationError lists every constraint a production entry violated
type InputValidationError struct {
	Partner    entities.PartnerID
	Violations []string
}

func (e *InputValidationError) Error() string {
	if e.Partner == "" {
		return strings.Join(e.Violations, ", ")
	}
	return fmt.Sprintf("invalid inputs for partner %s: %s", e.Partner, strings.Join(e.Violations, ", "))
}

func (e *InputValidationError) Unwrap() error {
	return ErrInvalidInput
}

// NetVolumeCalculator combines the water-cut, temperature and API corrections
//
//	Net = Gross × WaterCut × VCF × APICorrection
type NetVolumeCalculator struct {
	logger      *zap.Logger
	waterCut    *WaterCutCorrector
	temperature *TemperatureCorrector
	api         *APICorrector
}

// NewNetVolumeCalculator creates a calculator with its three correctors
func NewNetVolumeCalculator(logger *zap.Logger) *NetVolumeCalculator {
	logger = nopIfNil(logger)
	return &NetVolumeCalculator{
		logger:      logger,
		waterCut:    NewWaterCutCorrector(logger),
		temperature: NewTemperatureCorrector(logger),
		api:         NewAPICorrector(logger),
	}
}

// Calculate converts one partner's gross volume to net volume and returns the
// full waterfall. Clamped factors are reported as data-quality issues, never
// as errors.
func (c *NetVolumeCalculator) Calculate(
	partner entities.PartnerID,
	grossVolume float64,
	bswPercent float64,
	temperature float64,
	observedAPI float64,
	terminalAPI float64,
) entities.NetVolumeResult {
	var issues []entities.DataQualityIssue

	waterCut, bswClamped := c.waterCut.Factor(bswPercent)
	if bswClamped {
		issues = append(issues, entities.DataQualityIssue{
			Partner: partner,
			Kind:    entities.IssueBSWClamped,
			Message: fmt.Sprintf("BS&W %.4g%% outside [0, 100), constrained to [%g, %g]", bswPercent, MinBSWPercent, MaxBSWPercent),
		})
	}

	tempCorrection, vcfClamped := c.temperature.Correction(temperature, observedAPI)
	if vcfClamped {
		issues = append(issues, entities.DataQualityIssue{
			Partner: partner,
			Kind:    entities.IssueVCFClamped,
			Message: fmt.Sprintf("VCF for %.2f°F at %.2f API constrained to %g", temperature, observedAPI, tempCorrection),
		})
	}

	apiCorrection, apiClamped := c.api.Correction(observedAPI, terminalAPI)
	if apiClamped {
		issues = append(issues, entities.DataQualityIssue{
			Partner: partner,
			Kind:    entities.IssueAPICorrectionClamped,
			Message: fmt.Sprintf("API correction %.2f vs terminal %.2f constrained to %g", observedAPI, terminalAPI, apiCorrection),
		})
	}

	afterWaterCut := grossVolume * waterCut
	afterTemperature := afterWaterCut * tempCorrection
	net := roundVolume(afterTemperature * apiCorrection)
	gross := roundVolume(grossVolume)

	if net.GreaterThan(gross) {
		issues = append(issues, entities.DataQualityIssue{
			Partner: partner,
			Kind:    entities.IssueNetExceedsGross,
			Message: fmt.Sprintf("net volume %s exceeds gross volume %s", net.StringFixed(VolumePlaces), gross.StringFixed(VolumePlaces)),
		})
	}

	result := entities.NetVolumeResult{
		Partner:               partner,
		GrossVolume:           gross,
		NetVolume:             net,
		WaterCutFactor:        roundFloat(waterCut, FactorPlaces),
		TempCorrection:        tempCorrection,
		APICorrection:         apiCorrection,
		BSWDeduction:          roundVolume(grossVolume - afterWaterCut),
		TemperatureAdjustment: roundVolume(afterWaterCut * (1 - tempCorrection)),
		APIAdjustment:         roundVolume(afterTemperature * (1 - apiCorrection)),
		Issues:                issues,
	}

	c.logger.Info("Net volume calculated",
		zap.String("partner", string(partner)),
		zap.Float64("gross_volume", grossVolume),
		zap.Float64("bsw_percent", bswPercent),
		zap.Float64("temperature", temperature),
		zap.Float64("observed_api", observedAPI),
		zap.Float64("terminal_api", terminalAPI),
		zap.Float64("water_cut_factor", result.WaterCutFactor),
		zap.Float64("temp_correction", tempCorrection),
		zap.Float64("api_correction", apiCorrection),
		zap.String("net_volume", net.StringFixed(VolumePlaces)))

	return result
}

// ValidateTicket checks the structural fields of a single production ticket:
// a named partner and a finite, positive gross volume. Range checks on
// BS&W, temperature and API run on the per-partner aggregate instead.
func (c *NetVolumeCalculator) ValidateTicket(partner entities.PartnerID, grossVolume float64) error {
	var violations []string

	if strings.TrimSpace(string(partner)) == "" {
		violations = append(violations, "Partner cannot be empty")
	}
	if !(grossVolume > 0) {
		violations = append(violations, "Gross volume must be greater than 0")
	} else if math.IsInf(grossVolume, 1) {
		violations = append(violations, "Gross volume must be finite")
	}

	if len(violations) > 0 {
		return &InputValidationError{Partner: partner, Violations: violations}
	}
	return nil
}

// ValidateInputs checks every field of a production entry and returns an
// *InputValidationError listing all violations, or nil.
func (c *NetVolumeCalculator) ValidateInputs(grossVolume, bswPercent, temperature, apiGravity float64) error {
	var violations []string

	if !(grossVolume > 0) {
		violations = append(violations, "Gross volume must be greater than 0")
	} else if math.IsInf(grossVolume, 1) {
		violations = append(violations, "Gross volume must be finite")
	} else if grossVolume > MaxGrossVolumeBBL {
		violations = append(violations, fmt.Sprintf("Gross volume must not exceed %.3g barrels", MaxGrossVolumeBBL))
	}

	if !(bswPercent >= 0 && bswPercent < 100) {
		violations = append(violations, "BS&W percentage must be between 0 and 99.99")
	}

	if !c.temperature.ValidateTemperature(temperature) {
		violations = append(violations, "Temperature must be between -50°F and 200°F")
	}

	if !c.api.ValidateAPIGravity(apiGravity) {
		violations = append(violations, "API Gravity must be between 10 and 45 degrees")
	}

	if len(violations) > 0 {
		return &InputValidationError{Violations: violations}
	}
	return nil
}
