package analysis

import (
	"context"
	"math"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/semaphore"

	"effectbin/domain/effectsize"
)

// MeanDiffs computes, for every unordered group pair and every rank-matched
// bin, the within-bin mean difference (focal - reference). Both role
// orientations are emitted per pair because the sign and baseline choice
// matter to consumers. An empty bin on either side yields a NaN estimate,
// never an error: the row stays in the table so the full pair x bin grid is
// preserved.
//
// Pairs are computed concurrently under the maxParallel cap. Each pair writes
// into its own pre-allocated slot, so the merged output order is a pure
// function of group enumeration order regardless of scheduling.
func MeanDiffs(binned map[string][]effectsize.QuantileBin, order []string, maxParallel int) []effectsize.MeanDiff {
	type pair struct{ a, b string }
	pairs := make([]pair, 0, len(order)*(len(order)-1)/2)
	for i := 0; i < len(order); i++ {
		for j := i + 1; j < len(order); j++ {
			pairs = append(pairs, pair{a: order[i], b: order[j]})
		}
	}

	if maxParallel < 1 {
		maxParallel = 1
	}
	sem := semaphore.NewWeighted(int64(maxParallel))
	ctx := context.Background()

	slots := make([][]effectsize.MeanDiff, len(pairs))
	for idx, p := range pairs {
		// Acquire cannot fail on a background context.
		_ = sem.Acquire(ctx, 1)
		go func(idx int, p pair) {
			defer sem.Release(1)
			slots[idx] = pairMeanDiffs(binned[p.a], binned[p.b], p.a, p.b)
		}(idx, p)
	}
	// Draining the full weight waits for every in-flight pair.
	_ = sem.Acquire(ctx, int64(maxParallel))
	sem.Release(int64(maxParallel))

	out := make([]effectsize.MeanDiff, 0, len(pairs)*2)
	for _, rows := range slots {
		out = append(out, rows...)
	}
	return out
}

// pairMeanDiffs emits both orientations for one unordered pair: first a as
// reference with b focal, then the reverse, each over all bins in spec order.
func pairMeanDiffs(binsA, binsB []effectsize.QuantileBin, a, b string) []effectsize.MeanDiff {
	out := make([]effectsize.MeanDiff, 0, len(binsA)*2)
	for i := range binsA {
		out = append(out, effectsize.MeanDiff{
			Reference: a,
			Focal:     b,
			LowFrac:   binsA[i].LowFrac,
			HighFrac:  binsA[i].HighFrac,
			Estimate:  binMean(binsB[i]) - binMean(binsA[i]),
		})
	}
	for i := range binsA {
		out = append(out, effectsize.MeanDiff{
			Reference: b,
			Focal:     a,
			LowFrac:   binsA[i].LowFrac,
			HighFrac:  binsA[i].HighFrac,
			Estimate:  binMean(binsA[i]) - binMean(binsB[i]),
		})
	}
	return out
}

func binMean(bin effectsize.QuantileBin) float64 {
	if bin.Count() == 0 {
		return math.NaN()
	}
	m, err := stats.Mean(bin.Values)
	if err != nil {
		return math.NaN()
	}
	return m
}
