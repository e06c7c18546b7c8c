package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"effectbin/domain/effectsize"
)

func binnedFixture(t *testing.T, groups map[string][]float64, order []string) map[string][]effectsize.QuantileBin {
	t.Helper()
	split := effectsize.GroupSplit{Groups: order, Values: groups}
	return BinGroups(split, effectsize.DefaultQuantileSpec())
}

func TestMeanDiffs_GridSizeAndOrientations(t *testing.T) {
	order := []string{"a", "b", "c"}
	binned := binnedFixture(t, map[string][]float64{
		"a": tenFrom(1),
		"b": tenFrom(3),
		"c": tenFrom(5),
	}, order)

	diffs := MeanDiffs(binned, order, 4)

	// C(3,2) pairs x 2 orientations x 3 bins.
	require.Len(t, diffs, 18)

	orientations := make(map[[2]string]int)
	for _, d := range diffs {
		orientations[[2]string{d.Reference, d.Focal}]++
	}
	require.Len(t, orientations, 6)
	for key, n := range orientations {
		assert.Equal(t, 3, n, "orientation %v should appear once per bin", key)
	}
}

func TestMeanDiffs_UniformShiftIsExact(t *testing.T) {
	// b is a exactly shifted by +2, so every matched bin differs by 2.
	order := []string{"a", "b"}
	binned := binnedFixture(t, map[string][]float64{
		"a": tenFrom(1),
		"b": tenFrom(3),
	}, order)

	diffs := MeanDiffs(binned, order, 1)
	require.Len(t, diffs, 6)
	for _, d := range diffs {
		if d.Reference == "a" {
			assert.InDelta(t, 2.0, d.Estimate, 1e-12)
		} else {
			assert.InDelta(t, -2.0, d.Estimate, 1e-12)
		}
	}
}

func TestMeanDiffs_RoleSwapNegatesEstimate(t *testing.T) {
	order := []string{"a", "b"}
	binned := binnedFixture(t, map[string][]float64{
		"a": {1, 4, 9, 16, 25, 36},
		"b": {2, 3, 5, 7, 11, 13},
	}, order)

	diffs := MeanDiffs(binned, order, 2)

	forward := make(map[float64]float64)
	for _, d := range diffs {
		if d.Reference == "a" {
			forward[d.LowFrac] = d.Estimate
		}
	}
	for _, d := range diffs {
		if d.Reference == "b" {
			assert.InDelta(t, -forward[d.LowFrac], d.Estimate, 1e-12)
		}
	}
}

func TestMeanDiffs_EmptyBinYieldsNaNNotError(t *testing.T) {
	// A constant group fills only its first bin; the others must surface as
	// NaN estimates while staying in the table.
	order := []string{"a", "c"}
	binned := binnedFixture(t, map[string][]float64{
		"a": tenFrom(1),
		"c": {5, 5, 5, 5},
	}, order)

	diffs := MeanDiffs(binned, order, 1)
	require.Len(t, diffs, 6)

	nanRows := 0
	for _, d := range diffs {
		if math.IsNaN(d.Estimate) {
			nanRows++
		}
	}
	// Bins 1 and 2 are empty for c, in both orientations.
	assert.Equal(t, 4, nanRows)
}

func TestMeanDiffs_DeterministicUnderParallelism(t *testing.T) {
	order := []string{"a", "b", "c", "d"}
	groups := map[string][]float64{
		"a": tenFrom(1),
		"b": tenFrom(2),
		"c": tenFrom(3),
		"d": tenFrom(4),
	}
	binned := binnedFixture(t, groups, order)

	sequential := MeanDiffs(binned, order, 1)
	for i := 0; i < 20; i++ {
		parallel := MeanDiffs(binned, order, 8)
		require.Equal(t, sequential, parallel)
	}
}
