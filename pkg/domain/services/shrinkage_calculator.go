package services

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vsinha/jvalloc/pkg/domain/entities"
)

var (
	hundred = decimal.NewFromInt(100)

	// HighShrinkagePercent is the |shrinkage| above which a run is flagged
	HighShrinkagePercent = decimal.NewFromInt(10)
	// SuspectShrinkagePercent is the |shrinkage| above which volumes are suspect
	SuspectShrinkagePercent = decimal.NewFromInt(15)
	// TerminalExcessRatio flags a terminal volume this much above total net
	TerminalExcessRatio = decimal.RequireFromString("1.1")
)

// ShrinkageCalculator measures the loss (or gain) between the summed partner
// net volumes and the terminal measurement.
type ShrinkageCalculator struct {
	logger *zap.Logger
}

// NewShrinkageCalculator creates a new shrinkage calculator
func NewShrinkageCalculator(logger *zap.Logger) *ShrinkageCalculator {
	return &ShrinkageCalculator{logger: nopIfNil(logger)}
}

// VolumeCheck holds sanity warnings about the run's aggregate volumes
type VolumeCheck struct {
	IsValid  bool
	Warnings []string
}

func shrinkagePercent(totalNet, terminal decimal.Decimal) decimal.Decimal {
	if totalNet.IsZero() {
		return decimal.Zero
	}
	return totalNet.Sub(terminal).Div(totalNet).Mul(hundred).Round(2)
}

// ShrinkageFactor returns ((net - terminal) / net) × 100 rounded to 2 places.
// It is 0 when total net is 0.
func (c *ShrinkageCalculator) ShrinkageFactor(totalNet, terminal decimal.Decimal) decimal.Decimal {
	if totalNet.IsZero() {
		c.logger.Warn("Total net volume is zero, cannot calculate shrinkage")
		return decimal.Zero
	}

	factor := shrinkagePercent(totalNet, terminal)

	if factor.Abs().GreaterThan(HighShrinkagePercent) {
		c.logger.Warn("High shrinkage factor detected",
			zap.String("shrinkage_factor", factor.String()),
			zap.String("total_net_volume", totalNet.String()),
			zap.String("terminal_volume", terminal.String()))
	}

	if factor.IsNegative() {
		c.logger.Info("Volume gain detected (negative shrinkage)",
			zap.String("shrinkage_factor", factor.String()),
			zap.String("gain_volume", terminal.Sub(totalNet).Round(VolumePlaces).String()))
	}

	return factor
}

// VolumeLoss returns net - terminal in barrels (negative is a gain)
func (c *ShrinkageCalculator) VolumeLoss(totalNet, terminal decimal.Decimal) decimal.Decimal {
	return totalNet.Sub(terminal).Round(VolumePlaces)
}

// Analyze builds the full shrinkage analysis for a run
func (c *ShrinkageCalculator) Analyze(totalGross, totalNet, terminal decimal.Decimal) entities.ShrinkageAnalysis {
	efficiency := decimal.Zero
	if totalGross.IsPositive() {
		efficiency = terminal.Div(totalGross).Mul(hundred).Round(2)
	}

	analysis := entities.ShrinkageAnalysis{
		ShrinkageFactor:  c.ShrinkageFactor(totalNet, terminal),
		VolumeLoss:       c.VolumeLoss(totalNet, terminal),
		TotalGrossVolume: totalGross.Round(VolumePlaces),
		TotalNetVolume:   totalNet.Round(VolumePlaces),
		TerminalVolume:   terminal.Round(VolumePlaces),
		TotalCorrections: totalGross.Sub(totalNet).Round(VolumePlaces),
		TerminalVariance: totalNet.Sub(terminal).Round(VolumePlaces),
		EfficiencyRate:   efficiency,
	}

	c.logger.Info("Shrinkage analysis complete",
		zap.String("shrinkage_factor", analysis.ShrinkageFactor.String()),
		zap.String("volume_loss", analysis.VolumeLoss.String()),
		zap.String("total_corrections", analysis.TotalCorrections.String()),
		zap.String("efficiency_rate", analysis.EfficiencyRate.String()))

	return analysis
}

// ValidateVolumes reports measurement warnings for the aggregate volumes
func (c *ShrinkageCalculator) ValidateVolumes(totalNet, terminal decimal.Decimal) VolumeCheck {
	var warnings []string

	if !totalNet.IsPositive() {
		warnings = append(warnings, "Total net volume must be greater than 0")
	}
	if !terminal.IsPositive() {
		warnings = append(warnings, "Terminal volume must be greater than 0")
	}
	if terminal.GreaterThan(totalNet.Mul(TerminalExcessRatio)) {
		warnings = append(warnings, "Terminal volume exceeds net volume by >10% - possible measurement error")
	}

	if totalNet.IsPositive() {
		shrinkage := shrinkagePercent(totalNet, terminal).Abs()
		if shrinkage.GreaterThan(SuspectShrinkagePercent) {
			warnings = append(warnings, fmt.Sprintf("Shrinkage factor is very high (%s%%) - verify measurements", shrinkage.String()))
		}
	}

	return VolumeCheck{IsValid: len(warnings) == 0, Warnings: warnings}
}
