package services

import (
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/jvalloc/pkg/domain/entities"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestNetVolumeCalculator_Calculate(t *testing.T) {
	calc := NewNetVolumeCalculator(nil)

	t.Run("standard conditions only apply water cut and API", func(t *testing.T) {
		result := calc.Calculate("ALPHA", 1000, 2, 60, 35, 33)

		assert.Equal(t, 0.98, result.WaterCutFactor)
		assert.Equal(t, 1.0, result.TempCorrection)
		assert.Equal(t, 1.012158, result.APICorrection)
		assert.True(t, dec("991.91").Equal(result.NetVolume), "net volume %s", result.NetVolume)
		assert.True(t, dec("1000").Equal(result.GrossVolume))
		assert.True(t, dec("20").Equal(result.BSWDeduction))
		assert.True(t, result.TemperatureAdjustment.IsZero())
		assert.Empty(t, result.Issues)
	})

	t.Run("warm lighter crude", func(t *testing.T) {
		result := calc.Calculate("BRAVO", 500, 3, 65, 30, 33)

		assert.Equal(t, 0.97, result.WaterCutFactor)
		assert.Equal(t, 0.997868, result.TempCorrection)
		assert.Equal(t, 0.981763, result.APICorrection)
		assert.True(t, dec("475.14").Equal(result.NetVolume), "net volume %s", result.NetVolume)
	})

	t.Run("waterfall adds up to gross minus net", func(t *testing.T) {
		result := calc.Calculate("CHARLIE", 12345.67, 7.5, 110, 22, 31)

		deductions := result.BSWDeduction.Add(result.TemperatureAdjustment).Add(result.APIAdjustment)
		gap := result.GrossVolume.Sub(result.NetVolume)
		assert.True(t, deductions.Sub(gap).Abs().LessThanOrEqual(dec("0.02")),
			"deductions %s vs gross-net %s", deductions, gap)
	})

	t.Run("API gain above gross is flagged", func(t *testing.T) {
		result := calc.Calculate("DELTA", 1000, 0, 60, 35, 33)

		assert.True(t, result.NetVolume.GreaterThan(result.GrossVolume))
		require.Len(t, result.Issues, 1)
		assert.Equal(t, entities.IssueNetExceedsGross, result.Issues[0].Kind)
		assert.Equal(t, entities.PartnerID("DELTA"), result.Issues[0].Partner)
	})

	t.Run("clamped factors become issues", func(t *testing.T) {
		result := calc.Calculate("ECHO", 1000, 100, 200, 45, 10)

		kinds := make([]entities.IssueKind, 0, len(result.Issues))
		for _, issue := range result.Issues {
			kinds = append(kinds, issue.Kind)
		}
		assert.Contains(t, kinds, entities.IssueBSWClamped)
		assert.Contains(t, kinds, entities.IssueVCFClamped)
		assert.True(t, result.NetVolume.IsPositive())
	})
}

func TestNetVolumeCalculator_ValidateInputs(t *testing.T) {
	calc := NewNetVolumeCalculator(nil)

	require.NoError(t, calc.ValidateInputs(1000, 2, 60, 35))
	require.NoError(t, calc.ValidateInputs(0.01, 0, -50, 10))
	require.NoError(t, calc.ValidateInputs(1, 99.99, 200, 45))

	testCases := []struct {
		name       string
		gross      float64
		bsw        float64
		temp       float64
		api        float64
		violations []string
	}{
		{"zero gross", 0, 2, 60, 35, []string{"Gross volume must be greater than 0"}},
		{"bsw exactly 100", 1000, 100, 60, 35, []string{"BS&W percentage must be between 0 and 99.99"}},
		{"negative bsw", 1000, -1, 60, 35, []string{"BS&W percentage must be between 0 and 99.99"}},
		{"too hot", 1000, 2, 201, 35, []string{"Temperature must be between -50°F and 200°F"}},
		{"too heavy", 1000, 2, 60, 9, []string{"API Gravity must be between 10 and 45 degrees"}},
		{"gross too large to correct", 1.7e308, 0, -50, 35, []string{"Gross volume must not exceed 7.44e+307 barrels"}},
		{"everything wrong", -1, 120, -60, 50, []string{
			"Gross volume must be greater than 0",
			"BS&W percentage must be between 0 and 99.99",
			"Temperature must be between -50°F and 200°F",
			"API Gravity must be between 10 and 45 degrees",
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := calc.ValidateInputs(tc.gross, tc.bsw, tc.temp, tc.api)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidInput))

			var validationErr *InputValidationError
			require.True(t, errors.As(err, &validationErr))
			assert.Equal(t, tc.violations, validationErr.Violations)
			assert.Contains(t, err.Error(), tc.violations[0])
		})
	}
}

func TestNetVolumeCalculator_ValidateTicket(t *testing.T) {
	calc := NewNetVolumeCalculator(nil)

	// Range checks belong to the aggregate, so an out-of-range ticket passes
	require.NoError(t, calc.ValidateTicket("A", 1))

	testCases := []struct {
		name       string
		partner    entities.PartnerID
		gross      float64
		violations []string
	}{
		{"blank partner", " ", 10, []string{"Partner cannot be empty"}},
		{"zero gross", "A", 0, []string{"Gross volume must be greater than 0"}},
		{"infinite gross", "A", math.Inf(1), []string{"Gross volume must be finite"}},
		{"NaN gross", "A", math.NaN(), []string{"Gross volume must be greater than 0"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := calc.ValidateTicket(tc.partner, tc.gross)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)

			var validationErr *InputValidationError
			require.True(t, errors.As(err, &validationErr))
			assert.Equal(t, tc.violations, validationErr.Violations)
		})
	}
}

func TestNetVolumeCalculator_LargestAcceptedGrossStaysFinite(t *testing.T) {
	calc := NewNetVolumeCalculator(nil)
	require.NoError(t, calc.ValidateInputs(MaxGrossVolumeBBL, 0, -50, 45))

	assert.NotPanics(t, func() {
		result := calc.Calculate("A", MaxGrossVolumeBBL, 0, -50, 45, 10)
		assert.True(t, result.NetVolume.IsPositive())
	})
}

func TestInputValidationError_NamesPartner(t *testing.T) {
	err := &InputValidationError{
		Partner:    "ALPHA",
		Violations: []string{"Gross volume must be greater than 0", "Temperature must be between -50°F and 200°F"},
	}

	assert.Equal(t,
		"invalid inputs for partner ALPHA: Gross volume must be greater than 0, Temperature must be between -50°F and 200°F",
		err.Error())
}
