package analysis

import (
	"math"

	"github.com/montanaflynn/stats"

	"effectbin/domain/effectsize"
	"effectbin/internal/errors"
)

// PooledSDs computes the pooled standard deviation over the full (unbinned)
// distributions of every unordered group pair, in pair enumeration order.
// The value is symmetric in the pair, so exactly one row is produced per
// unordered pair.
func PooledSDs(split effectsize.GroupSplit) ([]effectsize.PooledSD, error) {
	out := make([]effectsize.PooledSD, 0, len(split.Groups)*(len(split.Groups)-1)/2)
	for i := 0; i < len(split.Groups); i++ {
		for j := i + 1; j < len(split.Groups); j++ {
			a, b := split.Groups[i], split.Groups[j]
			sd, err := pooledSD(split.NonMissing(a), split.NonMissing(b), a, b)
			if err != nil {
				return nil, err
			}
			out = append(out, effectsize.PooledSD{
				Pair: effectsize.PairKey{First: a, Second: b},
				SD:   sd,
			})
		}
	}
	return out, nil
}

// pooledSD implements sqrt(((n_a-1)v_a + (n_b-1)v_b) / (n_a+n_b-2)) with
// sample variances. A single-observation group contributes zero degrees of
// freedom, so its (undefined) variance carries zero weight.
func pooledSD(a, b []float64, labelA, labelB string) (float64, error) {
	na, nb := len(a), len(b)
	if na == 0 {
		return 0, errors.Newf(errors.CodeDegenerateSample,
			"group %q has no non-missing observations", labelA)
	}
	if nb == 0 {
		return 0, errors.Newf(errors.CodeDegenerateSample,
			"group %q has no non-missing observations", labelB)
	}
	if na+nb <= 2 {
		return 0, errors.Newf(errors.CodeDegenerateSample,
			"groups %q and %q have combined n=%d, need more than 2 for variance pooling",
			labelA, labelB, na+nb)
	}

	va := sampleVariance(a)
	vb := sampleVariance(b)
	pooled := (float64(na-1)*va + float64(nb-1)*vb) / float64(na+nb-2)
	return math.Sqrt(pooled), nil
}

func sampleVariance(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	v, err := stats.SampleVariance(data)
	if err != nil {
		return 0
	}
	return v
}
