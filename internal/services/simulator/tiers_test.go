package simulator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"card-fee-simulator/internal/models"
)

func TestSelectTier_ContainingTier(t *testing.T) {
	tiers := revenueTiers()

	tests := []struct {
		revenue string
		index   int
	}{
		{"0", 0},
		{"4999.99", 0},
		{"5000", 0},
		{"5000.01", 1},
		{"10000", 1},
		{"15000", 2},
		{"20000", 2},
	}

	for _, tt := range tests {
		t.Run(tt.revenue, func(t *testing.T) {
			match, err := selectTier(tiers, dec(tt.revenue))
			require.NoError(t, err)
			assert.Equal(t, tt.index, match.Index)
			assert.False(t, match.Overflow)
			assert.True(t, match.Excess.IsZero())
		})
	}
}

func TestSelectTier_PositionIndependent(t *testing.T) {
	ordered := revenueTiers()
	shuffled := []models.RevenueTier{ordered[2], ordered[0], ordered[1]}

	match, err := selectTier(shuffled, dec("3000"))
	require.NoError(t, err)
	assert.Equal(t, 1, match.Index)
	assert.True(t, match.Tier.Max.Equal(dec("5000")))

	match, err = selectTier(shuffled, dec("12000"))
	require.NoError(t, err)
	assert.Equal(t, 0, match.Index)
}

func TestSelectTier_Overflow(t *testing.T) {
	match, err := selectTier(revenueTiers(), dec("25000"))
	require.NoError(t, err)
	assert.True(t, match.Overflow)
	assert.Equal(t, 2, match.Index)
	assert.True(t, match.Excess.Equal(dec("5000")))
}

func TestSelectTier_OpenEndedLastTier(t *testing.T) {
	tiers := revenueTiers()
	tiers[2].Max = nil

	match, err := selectTier(tiers, dec("1000000"))
	require.NoError(t, err)
	assert.False(t, match.Overflow, "an open band contains any revenue above its minimum")
	assert.Equal(t, 2, match.Index)
}

func TestSelectTier_NotViable(t *testing.T) {
	gapped := []models.RevenueTier{
		{Min: decPtr("0"), Max: decPtr("1000")},
		{Min: decPtr("2000"), Max: decPtr("3000")},
	}

	_, err := selectTier(gapped, dec("1500"))
	assert.ErrorIs(t, err, ErrPlanNotViable)
	assert.NotErrorIs(t, err, ErrDataInconsistency)
}

func TestSelectTier_Empty(t *testing.T) {
	_, err := selectTier(nil, dec("10"))
	assert.ErrorIs(t, err, ErrDataInconsistency)
}
