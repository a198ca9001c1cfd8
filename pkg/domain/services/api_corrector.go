package services

import (
	"math"

	"go.uber.org/zap"
)

const (
	MinAPICorrection = 0.9
	MaxAPICorrection = 1.15

	MinAPIGravity = 10.0
	MaxAPIGravity = 45.0
)

// APICorrector reconciles a partner's observed API gravity against the
// terminal's reference gravity through the specific-gravity ratio.
type APICorrector struct {
	logger *zap.Logger
}

// NewAPICorrector creates a new API gravity corrector
func NewAPICorrector(logger *zap.Logger) *APICorrector {
	return &APICorrector{logger: nopIfNil(logger)}
}

// SpecificGravity converts API gravity to specific gravity: 141.5 / (API + 131.5)
func (c *APICorrector) SpecificGravity(apiGravity float64) float64 {
	return 141.5 / (apiGravity + 131.5)
}

// Correction returns SG(terminal) / SG(observed), constrained to
// [0.9, 1.15] and rounded to 6 places.
func (c *APICorrector) Correction(observedAPI, terminalAPI float64) (correction float64, clamped bool) {
	observedSG := c.SpecificGravity(observedAPI)
	standardSG := c.SpecificGravity(terminalAPI)

	raw := standardSG / observedSG
	constrained := math.Max(MinAPICorrection, math.Min(MaxAPICorrection, raw))

	if raw != constrained {
		clamped = true
		c.logger.Warn("API correction constrained to valid range",
			zap.Float64("original_correction", roundFloat(raw, FactorPlaces)),
			zap.Float64("constrained_correction", constrained),
			zap.Float64("observed_api", observedAPI),
			zap.Float64("terminal_api", terminalAPI))
	}

	correction = roundFloat(constrained, FactorPlaces)

	c.logger.Debug("API gravity correction calculated",
		zap.Float64("observed_api", observedAPI),
		zap.Float64("terminal_api", terminalAPI),
		zap.Float64("observed_sg", roundFloat(observedSG, FactorPlaces)),
		zap.Float64("standard_sg", roundFloat(standardSG, FactorPlaces)),
		zap.Float64("correction", correction))

	return correction, clamped
}

// ValidateAPIGravity reports whether a is within [10, 45] degrees API
func (c *APICorrector) ValidateAPIGravity(a float64) bool {
	return MinAPIGravity <= a && a <= MaxAPIGravity
}
