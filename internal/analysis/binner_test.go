package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"effectbin/domain/effectsize"
)

func tenFrom(start float64) []float64 {
	out := make([]float64, 10)
	for i := range out {
		out[i] = start + float64(i)
	}
	return out
}

func TestQuantile_LinearInterpolation(t *testing.T) {
	sorted := tenFrom(1) // 1..10

	assert.InDelta(t, 1.0, Quantile(sorted, 0), 1e-12)
	assert.InDelta(t, 10.0, Quantile(sorted, 1), 1e-12)
	assert.InDelta(t, 5.5, Quantile(sorted, 0.5), 1e-12)
	// h = 9 * 1/3 = 3 exactly, so the fourth order statistic.
	assert.InDelta(t, 4.0, Quantile(sorted, 1.0/3.0), 1e-12)
	assert.InDelta(t, 7.0, Quantile(sorted, 2.0/3.0), 1e-12)
	// Interpolated between order statistics.
	assert.InDelta(t, 3.25, Quantile(sorted, 0.25), 1e-12)
}

func TestQuantile_SingleValue(t *testing.T) {
	assert.Equal(t, 42.0, Quantile([]float64{42}, 0.5))
}

func TestBinGroups_ThirdsOfOneToTen(t *testing.T) {
	split := effectsize.GroupSplit{
		Groups: []string{"a"},
		Values: map[string][]float64{"a": tenFrom(1)},
	}
	binned := BinGroups(split, effectsize.DefaultQuantileSpec())

	bins := binned["a"]
	require.Len(t, bins, 3)

	// Cuts at 1, 4, 7, 10; first bin closed on both sides, rest (low, high].
	assert.ElementsMatch(t, []float64{1, 2, 3, 4}, bins[0].Values)
	assert.ElementsMatch(t, []float64{5, 6, 7}, bins[1].Values)
	assert.ElementsMatch(t, []float64{8, 9, 10}, bins[2].Values)

	assert.Equal(t, 0.0, bins[0].LowFrac)
	assert.InDelta(t, 1.0/3.0, bins[0].HighFrac, 1e-12)
	assert.Equal(t, 1.0, bins[2].HighFrac)
}

func TestBinGroups_ExcludesMissingValues(t *testing.T) {
	split := effectsize.GroupSplit{
		Groups: []string{"a"},
		Values: map[string][]float64{"a": {1, math.NaN(), 2, 3, math.NaN(), 4}},
	}
	binned := BinGroups(split, effectsize.QuantileSpec{0, 1})

	require.Len(t, binned["a"], 1)
	assert.Equal(t, 4, binned["a"][0].Count())
}

func TestBinGroups_ConstantGroupLeavesUpperBinsEmpty(t *testing.T) {
	split := effectsize.GroupSplit{
		Groups: []string{"c"},
		Values: map[string][]float64{"c": {5, 5, 5, 5}},
	}
	binned := BinGroups(split, effectsize.DefaultQuantileSpec())

	bins := binned["c"]
	require.Len(t, bins, 3)
	// All cuts collapse to 5; everything lands in the first bin and the
	// remaining bins must stay present with zero counts.
	assert.Equal(t, 4, bins[0].Count())
	assert.Equal(t, 0, bins[1].Count())
	assert.Equal(t, 0, bins[2].Count())
}

func TestCountBins_FullGridIncludingZeros(t *testing.T) {
	split := effectsize.GroupSplit{
		Groups: []string{"a", "c"},
		Values: map[string][]float64{
			"a": tenFrom(1),
			"c": {5, 5, 5, 5},
		},
	}
	spec := effectsize.DefaultQuantileSpec()
	counts := CountBins(BinGroups(split, spec), split.Groups)

	require.Len(t, counts, 2*spec.Bins())
	assert.Equal(t, effectsize.BinCount{Group: "a", LowFrac: 0, HighFrac: spec[1], N: 4}, counts[0])

	zeroRows := 0
	for _, c := range counts {
		if c.N == 0 {
			zeroRows++
		}
	}
	assert.Equal(t, 2, zeroRows)
}

func TestBinGroups_EmptyGroupYieldsAllZeroBins(t *testing.T) {
	split := effectsize.GroupSplit{
		Groups: []string{"a"},
		Values: map[string][]float64{"a": {math.NaN()}},
	}
	binned := BinGroups(split, effectsize.DefaultQuantileSpec())

	require.Len(t, binned["a"], 3)
	for _, bin := range binned["a"] {
		assert.Zero(t, bin.Count())
	}
}
