package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func TestWaterCutCorrector_Factor(t *testing.T) {
	corrector := NewWaterCutCorrector(nil)

	testCases := []struct {
		name        string
		bsw         float64
		wantFactor  float64
		wantClamped bool
	}{
		{"no water", 0, 1, false},
		{"two percent", 2, 0.98, false},
		{"three percent", 3, 0.97, false},
		{"just under 100", 99.5, 0.005, false},
		{"negative clamps to zero", -4, 1, true},
		{"exactly 100 clamps", 100, 1 - 99.99/100, true},
		{"above 100 clamps", 150, 1 - 99.99/100, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			factor, clamped := corrector.Factor(tc.bsw)
			assert.InDelta(t, tc.wantFactor, factor, 1e-12)
			assert.Equal(t, tc.wantClamped, clamped)
			assert.Greater(t, factor, 0.0)
		})
	}
}

func TestWaterCutCorrector_LogsClamp(t *testing.T) {
	logger, logs := newObservedLogger()
	corrector := NewWaterCutCorrector(logger)

	corrector.Factor(120)

	warnings := logs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(t, warnings, 1)
	assert.Equal(t, "BS&W percentage out of range", warnings[0].Message)
}

func TestTemperatureCorrector_Coefficients(t *testing.T) {
	corrector := NewTemperatureCorrector(nil)

	testCases := []struct {
		name      string
		api       float64
		wantAlpha float64
		wantBeta  float64
	}{
		{"heavy", 8, 0.0003, 0.0000001},
		{"heavy boundary", 10, 0.0003, 0.0000001},
		{"medium midpoint", 17.5, 0.00035, 0.00000015},
		{"medium boundary", 25, 0.0004, 0.0000002},
		{"light quarter", 30, 0.000425, 0.000000275},
		{"light boundary", 45, 0.0005, 0.0000005},
		{"condensate", 55, 0.0005, 0.0000005},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			alpha, beta := corrector.Coefficients(tc.api)
			assert.InDelta(t, tc.wantAlpha, alpha, 1e-12)
			assert.InDelta(t, tc.wantBeta, beta, 1e-15)
		})
	}
}

func TestTemperatureCorrector_Correction(t *testing.T) {
	corrector := NewTemperatureCorrector(nil)

	vcf, clamped := corrector.Correction(60, 35)
	assert.Equal(t, 1.0, vcf)
	assert.False(t, clamped)

	// α=0.000425, β=0.000000275 at 30 API; ΔT=5
	vcf, clamped = corrector.Correction(65, 30)
	assert.Equal(t, 0.997868, vcf)
	assert.False(t, clamped)

	// Colder than standard expands the factor above 1
	vcf, _ = corrector.Correction(40, 30)
	assert.Greater(t, vcf, 1.0)

	vcf, _ = corrector.CorrectionAt(65, 30, 65)
	assert.Equal(t, 1.0, vcf)
}

func TestTemperatureCorrector_ClampsAndWarns(t *testing.T) {
	logger, logs := newObservedLogger()
	corrector := NewTemperatureCorrector(logger)

	vcf, clamped := corrector.Correction(200, 45)
	assert.Equal(t, MinVCF, vcf)
	assert.True(t, clamped)

	vcf, clamped = corrector.Correction(-50, 45)
	assert.LessOrEqual(t, vcf, MaxVCF)
	assert.False(t, clamped, "-50°F at 45 API stays inside the band")

	assert.Equal(t, 1, logs.FilterMessage("VCF constrained to valid range").Len())
}

func TestTemperatureCorrector_ValidateTemperature(t *testing.T) {
	corrector := NewTemperatureCorrector(nil)

	assert.True(t, corrector.ValidateTemperature(-50))
	assert.True(t, corrector.ValidateTemperature(60))
	assert.True(t, corrector.ValidateTemperature(200))
	assert.False(t, corrector.ValidateTemperature(-50.01))
	assert.False(t, corrector.ValidateTemperature(200.5))
}

func TestAPICorrector_Correction(t *testing.T) {
	corrector := NewAPICorrector(nil)

	assert.InDelta(t, 141.5/166.5, corrector.SpecificGravity(35), 1e-15)

	correction, clamped := corrector.Correction(33, 33)
	assert.Equal(t, 1.0, correction)
	assert.False(t, clamped)

	correction, _ = corrector.Correction(35, 33)
	assert.Equal(t, 1.012158, correction)

	correction, _ = corrector.Correction(30, 33)
	assert.Equal(t, 0.981763, correction)
}

func TestAPICorrector_Clamps(t *testing.T) {
	logger, logs := newObservedLogger()
	corrector := NewAPICorrector(logger)

	low, clamped := corrector.Correction(10, 45)
	assert.Equal(t, MinAPICorrection, low)
	assert.True(t, clamped)

	high, clamped := corrector.Correction(45, 0)
	assert.Equal(t, MaxAPICorrection, high)
	assert.True(t, clamped)

	assert.Equal(t, 2, logs.FilterMessage("API correction constrained to valid range").Len())
}

func TestAPICorrector_ValidateAPIGravity(t *testing.T) {
	corrector := NewAPICorrector(nil)

	assert.True(t, corrector.ValidateAPIGravity(10))
	assert.True(t, corrector.ValidateAPIGravity(45))
	assert.False(t, corrector.ValidateAPIGravity(9.99))
	assert.False(t, corrector.ValidateAPIGravity(45.01))
}
