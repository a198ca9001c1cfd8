package allocation

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

const (
	PolicyCapAndNormalize    = "cap_normalize"
	PolicyProportional       = "proportional"
	PolicyCapAndRedistribute = "cap_redistribute"
)

var hundred = decimal.NewFromInt(100)

// CappingPolicy turns raw partner percentages (summing to 100, or all zero)
// into the percentages that drive volume allocation. Capped reports, per
// partner, whether the ceiling was applied.
type CappingPolicy interface {
	Name() string
	Apply(raw []decimal.Decimal, max decimal.Decimal) (final []decimal.Decimal, capped []bool)
}

// CapAndNormalize caps, rescales the capped set to 100, then caps again
type CapAndNormalize struct{}

func (CapAndNormalize) Name() string { return PolicyCapAndNormalize }

func (CapAndNormalize) Apply(raw []decimal.Decimal, max decimal.Decimal) ([]decimal.Decimal, []bool) {
	final := make([]decimal.Decimal, len(raw))
	capped := make([]bool, len(raw))

	sum := decimal.Zero
	for i, pct := range raw {
		final[i] = pct
		if pct.GreaterThan(max) {
			final[i] = max
			capped[i] = true
		}
		sum = sum.Add(final[i])
	}
	if !sum.IsPositive() {
		return final, capped
	}

	for i := range final {
		final[i] = final[i].Div(sum).Mul(hundred)
		if final[i].GreaterThan(max) {
			final[i] = max
			capped[i] = true
		}
	}
	return final, capped
}

// Proportional applies no ceiling to the shares used for allocation. The
// engine still clamps the reported percentage at MaxPercentage after
// reconciliation and marks such partners Capped.
type Proportional struct{}

func (Proportional) Name() string { return PolicyProportional }

func (Proportional) Apply(raw []decimal.Decimal, _ decimal.Decimal) ([]decimal.Decimal, []bool) {
	final := make([]decimal.Decimal, len(raw))
	copy(final, raw)
	return final, make([]bool, len(raw))
}

// CapAndRedistribute caps partners above the ceiling and hands the excess to
// the uncapped partners in proportion to their shares, repeating until no
// further partner crosses the ceiling.
type CapAndRedistribute struct{}

func (CapAndRedistribute) Name() string { return PolicyCapAndRedistribute }

func (CapAndRedistribute) Apply(raw []decimal.Decimal, max decimal.Decimal) ([]decimal.Decimal, []bool) {
	final := make([]decimal.Decimal, len(raw))
	capped := make([]bool, len(raw))
	copy(final, raw)

	for {
		excess := decimal.Zero
		newlyCapped := false
		for i, pct := range final {
			if !capped[i] && pct.GreaterThan(max) {
				excess = excess.Add(pct.Sub(max))
				final[i] = max
				capped[i] = true
				newlyCapped = true
			}
		}
		if !newlyCapped {
			return final, capped
		}

		uncappedTotal := decimal.Zero
		for i, pct := range final {
			if !capped[i] {
				uncappedTotal = uncappedTotal.Add(pct)
			}
		}
		if !uncappedTotal.IsPositive() {
			return final, capped
		}
		for i, pct := range final {
			if !capped[i] {
				final[i] = pct.Add(excess.Mul(pct).Div(uncappedTotal))
			}
		}
	}
}

var policies = map[string]CappingPolicy{
	PolicyCapAndNormalize:    CapAndNormalize{},
	PolicyProportional:       Proportional{},
	PolicyCapAndRedistribute: CapAndRedistribute{},
}

// PolicyByName resolves a configured capping policy name
func PolicyByName(name string) (CappingPolicy, error) {
	policy, ok := policies[name]
	if !ok {
		return nil, fmt.Errorf("unknown capping policy %q (valid: %v)", name, PolicyNames())
	}
	return policy, nil
}

// PolicyNames lists the registered capping policies in sorted order
func PolicyNames() []string {
	names := make([]string, 0, len(policies))
	for name := range policies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
