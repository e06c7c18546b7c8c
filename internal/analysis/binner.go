package analysis

import (
	"math"
	"sort"

	"effectbin/domain/effectsize"
)

// BinGroups partitions each group's non-missing values into the rank-matched
// bins the quantile spec defines. Quantile boundaries are computed
// independently per group, so bin i of one group and bin i of another cover
// the same fraction of their respective distributions, not the same value
// range. Bins are right-closed, (low, high]; the first bin also includes its
// lower boundary so the group minimum is never dropped. Empty bins are kept
// with a zero count.
func BinGroups(split effectsize.GroupSplit, spec effectsize.QuantileSpec) map[string][]effectsize.QuantileBin {
	binned := make(map[string][]effectsize.QuantileBin, len(split.Groups))
	for _, group := range split.Groups {
		binned[group] = binGroup(group, split.NonMissing(group), spec)
	}
	return binned
}

// CountBins exposes every (group, bin) count as its own row, in group then
// bin order. Downstream standard-error assembly needs counts for both sides
// of a pair, so counts are retrievable independently of any mean-difference
// computation.
func CountBins(binned map[string][]effectsize.QuantileBin, order []string) []effectsize.BinCount {
	counts := make([]effectsize.BinCount, 0, len(order)*4)
	for _, group := range order {
		for _, bin := range binned[group] {
			counts = append(counts, effectsize.BinCount{
				Group:    bin.Group,
				LowFrac:  bin.LowFrac,
				HighFrac: bin.HighFrac,
				N:        bin.Count(),
			})
		}
	}
	return counts
}

func binGroup(group string, values []float64, spec effectsize.QuantileSpec) []effectsize.QuantileBin {
	bins := make([]effectsize.QuantileBin, spec.Bins())
	for i := range bins {
		bins[i] = effectsize.QuantileBin{
			Group:    group,
			LowFrac:  spec[i],
			HighFrac: spec[i+1],
		}
	}
	if len(values) == 0 {
		return bins
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	cuts := make([]float64, len(spec))
	for i, frac := range spec {
		cuts[i] = Quantile(sorted, frac)
	}

	for _, v := range values {
		if i, ok := binIndex(v, cuts); ok {
			bins[i].Values = append(bins[i].Values, v)
		}
	}
	return bins
}

// binIndex locates the right-closed interval containing v. Values below the
// first cut or above the last are unbinned, which can only happen when the
// spec does not span the full [0,1] range.
func binIndex(v float64, cuts []float64) (int, bool) {
	if v == cuts[0] {
		return 0, true
	}
	for i := 0; i < len(cuts)-1; i++ {
		if v > cuts[i] && v <= cuts[i+1] {
			return i, true
		}
	}
	return 0, false
}

// Quantile computes the empirical quantile at fraction p using linear
// interpolation between order statistics (h = (n-1)p), the conventional
// default estimator. Input must be sorted and non-empty.
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	h := float64(n-1) * p
	lo := int(math.Floor(h))
	if lo >= n-1 {
		return sorted[n-1]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}
