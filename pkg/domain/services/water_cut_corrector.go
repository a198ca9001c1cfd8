package services

import (
	"math"

	"go.uber.org/zap"
)

const (
	MinBSWPercent = 0.0
	MaxBSWPercent = 99.99
)

// WaterCutCorrector converts a BS&W percentage into the fraction of gross
// volume that is oil.
type WaterCutCorrector struct {
	logger *zap.Logger
}

// NewWaterCutCorrector creates a new water-cut corrector
func NewWaterCutCorrector(logger *zap.Logger) *WaterCutCorrector {
	return &WaterCutCorrector{logger: nopIfNil(logger)}
}

// Factor returns 1 - bsw/100. Values outside [0, 100) are clamped to
// [0, 99.99] first so the factor is always positive; clamped reports whether
// that happened.
func (c *WaterCutCorrector) Factor(bswPercent float64) (factor float64, clamped bool) {
	if bswPercent < 0 || bswPercent >= 100 {
		constrained := math.Max(MinBSWPercent, math.Min(MaxBSWPercent, bswPercent))
		c.logger.Warn("BS&W percentage out of range",
			zap.Float64("bsw_percent", bswPercent),
			zap.Float64("constrained_bsw_percent", constrained))
		bswPercent = constrained
		clamped = true
	}

	return 1 - bswPercent/100, clamped
}
