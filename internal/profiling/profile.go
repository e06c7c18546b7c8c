// Package profiling computes per-group distribution profiles. The downstream
// chart consumer displays these next to the effect-size table; nothing here
// feeds back into the statistical results of the core pipeline.
package profiling

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"effectbin/domain/effectsize"
	"effectbin/internal/analysis"
	"effectbin/internal/errors"
)

// GroupProfile summarizes one group's outcome distribution.
type GroupProfile struct {
	Group        string  `json:"group"`
	N            int     `json:"n"`
	MissingRatio float64 `json:"missing_ratio"`
	Mean         float64 `json:"mean"`
	StdDev       float64 `json:"std_dev"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Median       float64 `json:"median"`
	Q25          float64 `json:"q25"`
	Q75          float64 `json:"q75"`
	Skewness     float64 `json:"skewness"`
	Kurtosis     float64 `json:"kurtosis"`
	IsNormal     bool    `json:"is_normal"`
	NormalityP   float64 `json:"normality_p"`
}

// ProfileGroups builds one profile per group, in group enumeration order.
func ProfileGroups(table effectsize.Table) ([]GroupProfile, error) {
	split, err := analysis.SplitGroups(table)
	if err != nil {
		return nil, err
	}

	profiles := make([]GroupProfile, 0, len(split.Groups))
	for _, group := range split.Groups {
		raw := split.Values[group]
		data := split.NonMissing(group)
		if len(data) == 0 {
			return nil, errors.Newf(errors.CodeDegenerateSample,
				"group %q has no non-missing observations", group)
		}
		p, err := profile(group, data)
		if err != nil {
			return nil, errors.Wrapf(err, "profiling group %q", group)
		}
		p.MissingRatio = float64(len(raw)-len(data)) / float64(len(raw))
		profiles = append(profiles, p)
	}
	return profiles, nil
}

func profile(group string, data []float64) (GroupProfile, error) {
	mean, err := stats.Mean(data)
	if err != nil {
		return GroupProfile{}, err
	}
	stdDev, err := stats.StandardDeviationSample(data)
	if err != nil {
		// A single observation has no sample spread.
		stdDev = 0
	}
	min, err := stats.Min(data)
	if err != nil {
		return GroupProfile{}, err
	}
	max, err := stats.Max(data)
	if err != nil {
		return GroupProfile{}, err
	}
	median, err := stats.Median(data)
	if err != nil {
		return GroupProfile{}, err
	}
	q25, _ := stats.Percentile(data, 25)
	q75, _ := stats.Percentile(data, 75)

	skewness := calculateSkewness(data, mean, stdDev)
	kurtosis := calculateKurtosis(data, mean, stdDev)
	isNormal, normalityP := testNormality(skewness, kurtosis)

	return GroupProfile{
		Group:      group,
		N:          len(data),
		Mean:       mean,
		StdDev:     stdDev,
		Min:        min,
		Max:        max,
		Median:     median,
		Q25:        q25,
		Q75:        q75,
		Skewness:   skewness,
		Kurtosis:   kurtosis,
		IsNormal:   isNormal,
		NormalityP: normalityP,
	}, nil
}

// calculateSkewness computes sample skewness using the adjusted
// Fisher-Pearson coefficient.
func calculateSkewness(data []float64, mean, stdDev float64) float64 {
	if len(data) < 3 || stdDev == 0 {
		return 0
	}

	n := float64(len(data))
	sumCubed := 0.0
	for _, x := range data {
		d := (x - mean) / stdDev
		sumCubed += d * d * d
	}

	correction := math.Sqrt(n*(n-1)) / (n - 2)
	return sumCubed / n * correction
}

// calculateKurtosis computes total (not excess) sample kurtosis.
func calculateKurtosis(data []float64, mean, stdDev float64) float64 {
	if len(data) < 4 || stdDev == 0 {
		return 3.0 // Normal kurtosis
	}

	n := float64(len(data))
	sumFourth := 0.0
	for _, x := range data {
		d := (x - mean) / stdDev
		sumFourth += d * d * d * d
	}

	kurtosis := sumFourth / n
	correction := (n - 1) / ((n - 2) * (n - 3))
	kurtosis = kurtosis*correction + 6/(n+1)
	return kurtosis + 3
}

// testNormality approximates a Jarque-Bera-style check: a combined
// skewness/excess-kurtosis statistic against a chi-squared(2) distribution.
func testNormality(skewness, kurtosis float64) (isNormal bool, pValue float64) {
	excess := kurtosis - 3
	testStat := math.Abs(skewness) + math.Abs(excess)/2

	chiDist := distuv.ChiSquared{K: 2}
	pValue = 1 - chiDist.CDF(testStat*testStat)
	isNormal = pValue > 0.05
	return isNormal, pValue
}
