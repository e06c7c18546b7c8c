package analysis

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"effectbin/domain/effectsize"
	"effectbin/internal/errors"
)

type countKey struct {
	group    string
	lowFrac  float64
	highFrac float64
}

// AssembleRecords joins the mean-difference table against pooled SDs and
// per-bin counts to build the effect-size table for one reference group.
// Joins are keyed lookups with defined failure behavior: a missing key means
// the binning and mean-diff stages disagree about the grid, which is a
// pipeline bug and therefore fatal (KEY_MISMATCH).
//
// Output rows are sorted ascending by bin midpoint. The sort is stable, so
// ties keep the original pair/bin generation order.
func AssembleRecords(
	diffs []effectsize.MeanDiff,
	pooled []effectsize.PooledSD,
	counts []effectsize.BinCount,
	reference string,
	order []string,
) ([]effectsize.Record, error) {
	sdByPair := make(map[effectsize.PairKey]float64, len(pooled))
	for _, p := range pooled {
		sdByPair[p.Pair] = p.SD
	}
	nByBin := make(map[countKey]int, len(counts))
	for _, c := range counts {
		nByBin[countKey{group: c.Group, lowFrac: c.LowFrac, highFrac: c.HighFrac}] = c.N
	}

	records := make([]effectsize.Record, 0, len(diffs)/2)
	for _, d := range diffs {
		if d.Reference != reference {
			continue
		}

		sd, ok := sdByPair[effectsize.CanonicalPair(d.Reference, d.Focal, order)]
		if !ok {
			return nil, errors.Newf(errors.CodeKeyMismatch,
				"no pooled SD for pair (%s, %s)", d.Reference, d.Focal)
		}
		refN, ok := nByBin[countKey{group: d.Reference, lowFrac: d.LowFrac, highFrac: d.HighFrac}]
		if !ok {
			return nil, errors.Newf(errors.CodeKeyMismatch,
				"no bin count for group %s in [%g, %g]", d.Reference, d.LowFrac, d.HighFrac)
		}
		focN, ok := nByBin[countKey{group: d.Focal, lowFrac: d.LowFrac, highFrac: d.HighFrac}]
		if !ok {
			return nil, errors.Newf(errors.CodeKeyMismatch,
				"no bin count for group %s in [%g, %g]", d.Focal, d.LowFrac, d.HighFrac)
		}

		es := d.Estimate / sd
		records = append(records, effectsize.Record{
			Focal:         d.Focal,
			Reference:     d.Reference,
			LowFrac:       d.LowFrac,
			HighFrac:      d.HighFrac,
			Midpoint:      (d.LowFrac + d.HighFrac) / 2,
			MeanDiff:      d.Estimate,
			PooledSD:      sd,
			EffectSize:    es,
			ReferenceN:    refN,
			FocalN:        focN,
			StandardError: standardError(es, refN, focN),
		})
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Midpoint < records[j].Midpoint
	})
	return records, nil
}

// standardError implements sqrt((nr+nf)/(nr*nf) + es^2/(2(nr+nf))). A NaN
// effect size (empty bin) propagates to a NaN standard error.
func standardError(es float64, refN, focN int) float64 {
	nr, nf := float64(refN), float64(focN)
	return math.Sqrt((nr+nf)/(nr*nf) + es*es/(2*(nr+nf)))
}

// ResolveReference returns the explicit reference group when given, after
// checking it exists, and otherwise defaults to the group with the highest
// overall mean outcome (missing excluded; ties keep enumeration order).
func ResolveReference(split effectsize.GroupSplit, explicit string) (string, error) {
	if explicit != "" {
		if _, ok := split.Values[explicit]; !ok {
			return "", errors.Newf(errors.CodeInvalidInput,
				"reference group %q not present in table", explicit)
		}
		return explicit, nil
	}

	best := ""
	bestMean := math.Inf(-1)
	for _, group := range split.Groups {
		values := split.NonMissing(group)
		if len(values) == 0 {
			continue
		}
		m, err := stats.Mean(values)
		if err != nil {
			continue
		}
		if m > bestMean {
			best, bestMean = group, m
		}
	}
	if best == "" {
		return "", errors.New(errors.CodeDegenerateSample,
			"no group has non-missing observations to select a reference from")
	}
	return best, nil
}
