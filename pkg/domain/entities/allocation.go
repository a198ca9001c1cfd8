package entities

import (
	"github.com/shopspring/decimal"
)

// IssueKind classifies a non-fatal data-quality signal
type IssueKind string

const (
	IssueBSWClamped           IssueKind = "bsw_clamped"
	IssueVCFClamped           IssueKind = "vcf_clamped"
	IssueAPICorrectionClamped IssueKind = "api_correction_clamped"
	IssueNetExceedsGross      IssueKind = "net_exceeds_gross"
	IssueHighShrinkage        IssueKind = "high_shrinkage"
	IssueVolumeGain           IssueKind = "volume_gain"
	IssueVolumeCheck          IssueKind = "volume_check"
	IssueAllocationVariance   IssueKind = "allocation_variance"
)

// DataQualityIssue is recorded when a value had to be clamped or looks
// suspicious. Partner is empty for run-level issues.
type DataQualityIssue struct {
	Partner PartnerID `json:"partner,omitempty"`
	Kind    IssueKind `json:"kind"`
	Message string    `json:"message"`
}

// NetVolumeResult is the gross-to-net waterfall for one partner.
// BSWDeduction + TemperatureAdjustment + APIAdjustment == GrossVolume - NetVolume
// up to rounding.
type NetVolumeResult struct {
	Partner               PartnerID          `json:"partner"`
	GrossVolume           decimal.Decimal    `json:"gross_volume"`
	NetVolume             decimal.Decimal    `json:"net_volume"`
	WaterCutFactor        float64            `json:"water_cut_factor"`
	TempCorrection        float64            `json:"temp_correction"`
	APICorrection         float64            `json:"api_correction"`
	BSWDeduction          decimal.Decimal    `json:"bsw_deduction"`
	TemperatureAdjustment decimal.Decimal    `json:"temperature_adjustment"`
	APIAdjustment         decimal.Decimal    `json:"api_adjustment"`
	Issues                []DataQualityIssue `json:"issues,omitempty"`
}

// ShrinkageAnalysis compares aggregate net volume with the terminal volume.
// A negative ShrinkageFactor is a volume gain.
type ShrinkageAnalysis struct {
	ShrinkageFactor  decimal.Decimal `json:"shrinkage_factor"`
	VolumeLoss       decimal.Decimal `json:"volume_loss"`
	TotalGrossVolume decimal.Decimal `json:"total_gross_volume"`
	TotalNetVolume   decimal.Decimal `json:"total_net_volume"`
	TerminalVolume   decimal.Decimal `json:"terminal_volume"`
	TotalCorrections decimal.Decimal `json:"total_corrections"`
	TerminalVariance decimal.Decimal `json:"terminal_variance"`
	EfficiencyRate   decimal.Decimal `json:"efficiency_rate"`
}

// AllocationRecord is one partner's share of the terminal volume
type AllocationRecord struct {
	Partner               PartnerID       `json:"partner"`
	GrossVolume           decimal.Decimal `json:"gross_volume"`
	NetVolume             decimal.Decimal `json:"net_volume"`
	AllocatedVolume       decimal.Decimal `json:"allocated_volume"`
	Percentage            decimal.Decimal `json:"percentage"`
	VolumeLoss            decimal.Decimal `json:"volume_loss"`
	WaterCutFactor        float64         `json:"water_cut_factor"`
	TempCorrection        float64         `json:"temp_correction"`
	APICorrection         float64         `json:"api_correction"`
	BSWDeduction          decimal.Decimal `json:"bsw_deduction"`
	TemperatureAdjustment decimal.Decimal `json:"temperature_adjustment"`
	APIAdjustment         decimal.Decimal `json:"api_adjustment"`
	// Capped is set when the capping policy limited the share or the reported
	// percentage was clamped to the maximum
	Capped bool `json:"capped,omitempty"`
}

// AllocationValidation is the outcome of checking a final set of records
type AllocationValidation struct {
	IsValid          bool            `json:"is_valid"`
	TotalPercentage  decimal.Decimal `json:"total_percentage"`
	PercentageValid  bool            `json:"percentage_valid"`
	AllNonNegative   bool            `json:"all_non_negative"`
	NetLessThanGross bool            `json:"net_less_than_gross"`
	Errors           []string        `json:"errors,omitempty"`
	Error            string          `json:"error,omitempty"`
}
