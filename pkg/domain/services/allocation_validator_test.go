package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vsinha/jvalloc/pkg/domain/entities"
)

func record(partner string, gross, net, allocated, pct string) entities.AllocationRecord {
	return entities.AllocationRecord{
		Partner:         entities.PartnerID(partner),
		GrossVolume:     dec(gross),
		NetVolume:       dec(net),
		AllocatedVolume: dec(allocated),
		Percentage:      dec(pct),
	}
}

func TestAllocationValidator_Validate(t *testing.T) {
	validator := NewAllocationValidator()

	t.Run("valid set", func(t *testing.T) {
		result := validator.Validate([]entities.AllocationRecord{
			record("A", "1000", "991.91", "946.58", "67.612857"),
			record("B", "500", "475.14", "453.42", "32.387143"),
		})

		assert.True(t, result.IsValid)
		assert.True(t, dec("100").Equal(result.TotalPercentage))
		assert.Empty(t, result.Error)
	})

	t.Run("empty set", func(t *testing.T) {
		result := validator.Validate(nil)

		assert.False(t, result.IsValid)
		assert.Equal(t, "No allocations provided", result.Error)
	})

	t.Run("percentages out of range", func(t *testing.T) {
		result := validator.Validate([]entities.AllocationRecord{
			record("A", "1000", "900", "900", "60"),
			record("B", "500", "400", "400", "30"),
		})

		assert.False(t, result.IsValid)
		assert.False(t, result.PercentageValid)
		assert.Equal(t, "Percentages sum to 90.00%, outside valid range (99%-101%)", result.Error)
	})

	t.Run("negative and net above gross", func(t *testing.T) {
		result := validator.Validate([]entities.AllocationRecord{
			record("A", "1000", "1100", "1000", "100"),
			record("B", "500", "0", "-1", "0"),
		})

		assert.False(t, result.IsValid)
		assert.False(t, result.AllNonNegative)
		assert.False(t, result.NetLessThanGross)
		assert.Equal(t, "Some volumes are negative; Net volume exceeds gross volume for some entries", result.Error)
	})

	t.Run("boundaries are inclusive", func(t *testing.T) {
		result := validator.Validate([]entities.AllocationRecord{record("A", "10", "9", "9", "99")})
		assert.True(t, result.PercentageValid)

		result = validator.Validate([]entities.AllocationRecord{record("A", "10", "9", "9", "101")})
		assert.True(t, result.PercentageValid)
	})
}
