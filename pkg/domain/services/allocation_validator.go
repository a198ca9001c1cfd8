package services

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vsinha/jvalloc/pkg/domain/entities"
)

// AllocationValidator checks a final set of allocation records. It never
// mutates the records; callers decide what a failed validation means.
type AllocationValidator struct {
	MinTotalPercentage decimal.Decimal
	MaxTotalPercentage decimal.Decimal
}

// NewAllocationValidator creates a validator accepting percentage totals in [99, 101]
func NewAllocationValidator() *AllocationValidator {
	return &AllocationValidator{
		MinTotalPercentage: decimal.NewFromInt(99),
		MaxTotalPercentage: decimal.NewFromInt(101),
	}
}

// Validate checks non-negativity, percentage closure and net ≤ gross
func (v *AllocationValidator) Validate(records []entities.AllocationRecord) entities.AllocationValidation {
	if len(records) == 0 {
		return entities.AllocationValidation{
			IsValid:         false,
			TotalPercentage: decimal.Zero,
			Errors:          []string{"No allocations provided"},
			Error:           "No allocations provided",
		}
	}

	totalPercentage := decimal.Zero
	allNonNegative := true
	netLessThanGross := true

	for _, record := range records {
		totalPercentage = totalPercentage.Add(record.Percentage)

		if record.AllocatedVolume.IsNegative() || record.GrossVolume.IsNegative() || record.NetVolume.IsNegative() {
			allNonNegative = false
		}
		if record.NetVolume.GreaterThan(record.GrossVolume) {
			netLessThanGross = false
		}
	}

	percentageValid := totalPercentage.GreaterThanOrEqual(v.MinTotalPercentage) &&
		totalPercentage.LessThanOrEqual(v.MaxTotalPercentage)

	result := entities.AllocationValidation{
		IsValid:          percentageValid && allNonNegative && netLessThanGross,
		TotalPercentage:  totalPercentage.Round(2),
		PercentageValid:  percentageValid,
		AllNonNegative:   allNonNegative,
		NetLessThanGross: netLessThanGross,
	}

	if !percentageValid {
		result.Errors = append(result.Errors, fmt.Sprintf(
			"Percentages sum to %s%%, outside valid range (%s%%-%s%%)",
			totalPercentage.StringFixed(2), v.MinTotalPercentage.String(), v.MaxTotalPercentage.String()))
	}
	if !allNonNegative {
		result.Errors = append(result.Errors, "Some volumes are negative")
	}
	if !netLessThanGross {
		result.Errors = append(result.Errors, "Net volume exceeds gross volume for some entries")
	}
	result.Error = strings.Join(result.Errors, "; ")

	return result
}
