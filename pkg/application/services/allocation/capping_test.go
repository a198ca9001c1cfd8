package allocation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decimals(values ...string) []decimal.Decimal {
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		out[i] = dec(v)
	}
	return out
}

func TestCappingPolicies(t *testing.T) {
	max := dec("99.99999")

	testCases := []struct {
		name     string
		policy   CappingPolicy
		raw      []decimal.Decimal
		expected []decimal.Decimal
		capped   []bool
	}{
		{"normalize leaves ordinary shares", CapAndNormalize{}, decimals("60", "40"), decimals("60", "40"), []bool{false, false}},
		{"normalize caps a lone partner", CapAndNormalize{}, decimals("100"), decimals("99.99999"), []bool{true}},
		{"normalize keeps zeros", CapAndNormalize{}, decimals("0", "0"), decimals("0", "0"), []bool{false, false}},
		{"proportional never caps", Proportional{}, decimals("100"), decimals("100"), []bool{false}},
		{"redistribute passes excess on", CapAndRedistribute{}, decimals("99.999995", "0.000005"), decimals("99.99999", "0.00001"), []bool{true, false}},
		{"redistribute with nobody to take excess", CapAndRedistribute{}, decimals("100", "0"), decimals("99.99999", "0"), []bool{true, false}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			final, capped := tc.policy.Apply(tc.raw, max)
			require.Len(t, final, len(tc.expected))
			for i := range final {
				assert.True(t, tc.expected[i].Equal(final[i]), "share %d: expected %s, got %s", i, tc.expected[i], final[i])
			}
			assert.Equal(t, tc.capped, capped)
		})
	}
}

func TestCapAndNormalize_SumsToHundred(t *testing.T) {
	final, _ := CapAndNormalize{}.Apply(decimals("30", "30", "40"), dec("99.99999"))

	total := decimal.Zero
	for _, share := range final {
		total = total.Add(share)
	}
	assert.True(t, dec("100").Equal(total), "got %s", total)
}

func TestPolicyByName(t *testing.T) {
	for _, name := range PolicyNames() {
		policy, err := PolicyByName(name)
		require.NoError(t, err)
		assert.Equal(t, name, policy.Name())
	}

	_, err := PolicyByName("largest_remainder")
	assert.ErrorContains(t, err, "unknown capping policy")
	assert.Equal(t, []string{PolicyCapAndNormalize, PolicyCapAndRedistribute, PolicyProportional}, PolicyNames())
}
