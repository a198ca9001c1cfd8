package services

import (
	"math"

	"go.uber.org/zap"
)

const (
	// StandardTemperatureDegF is the reference temperature volumes are corrected to
	StandardTemperatureDegF = 60.0

	MinVCF = 0.95
	MaxVCF = 1.05

	MinTemperatureDegF = -50.0
	MaxTemperatureDegF = 200.0
)

// Coefficient anchors for the API gravity bands
const (
	heavyAlpha      = 0.0003
	heavyBeta       = 0.0000001
	mediumAlpha     = 0.0004
	mediumBeta      = 0.0000002
	condensateAlpha = 0.0005
	condensateBeta  = 0.0000005
)

// TemperatureCorrector computes the Volume Correction Factor
//
//	VCF = 1 - α(T - Ts) - β(T - Ts)²
//
// with α, β chosen by API gravity band.
type TemperatureCorrector struct {
	logger *zap.Logger
}

// NewTemperatureCorrector creates a new temperature corrector
func NewTemperatureCorrector(logger *zap.Logger) *TemperatureCorrector {
	return &TemperatureCorrector{logger: nopIfNil(logger)}
}

// Coefficients returns (α, β) for the given API gravity:
// heavy (≤10) and condensate (>45) are constant, medium (10-25] and light
// (25-45] interpolate linearly between the band anchors.
func (c *TemperatureCorrector) Coefficients(apiGravity float64) (alpha, beta float64) {
	switch {
	case apiGravity <= 10:
		return heavyAlpha, heavyBeta
	case apiGravity <= 25:
		factor := (apiGravity - 10) / 15
		return heavyAlpha + factor*0.0001, heavyBeta + factor*0.0000001
	case apiGravity <= 45:
		factor := (apiGravity - 25) / 20
		return mediumAlpha + factor*0.0001, mediumBeta + factor*0.0000003
	default:
		return condensateAlpha, condensateBeta
	}
}

// Correction computes the VCF against the 60°F standard
func (c *TemperatureCorrector) Correction(observedTemp, apiGravity float64) (vcf float64, clamped bool) {
	return c.CorrectionAt(observedTemp, apiGravity, StandardTemperatureDegF)
}

// CorrectionAt computes the VCF against an explicit standard temperature.
// The result is constrained to [0.95, 1.05] and rounded to 6 places.
func (c *TemperatureCorrector) CorrectionAt(observedTemp, apiGravity, standardTemp float64) (vcf float64, clamped bool) {
	tempDiff := observedTemp - standardTemp
	alpha, beta := c.Coefficients(apiGravity)

	raw := 1 - alpha*tempDiff - beta*tempDiff*tempDiff
	constrained := math.Max(MinVCF, math.Min(MaxVCF, raw))

	if raw != constrained {
		clamped = true
		c.logger.Warn("VCF constrained to valid range",
			zap.Float64("original_vcf", roundFloat(raw, FactorPlaces)),
			zap.Float64("constrained_vcf", constrained),
			zap.Float64("temp_diff", roundFloat(tempDiff, 2)),
			zap.Float64("api_gravity", apiGravity))
	}

	vcf = roundFloat(constrained, FactorPlaces)

	c.logger.Debug("Temperature correction calculated",
		zap.Float64("observed_temp", observedTemp),
		zap.Float64("standard_temp", standardTemp),
		zap.Float64("api_gravity", apiGravity),
		zap.Float64("alpha", alpha),
		zap.Float64("beta", beta),
		zap.Float64("vcf", vcf))

	return vcf, clamped
}

// ValidateTemperature reports whether t is within [-50, 200] °F
func (c *TemperatureCorrector) ValidateTemperature(t float64) bool {
	return MinTemperatureDegF <= t && t <= MaxTemperatureDegF
}
