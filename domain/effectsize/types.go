package effectsize

import (
	"fmt"
	"math"

	"effectbin/domain/core"
)

// ============================================================================
// STABLE PRIMITIVES (Canonical, never change)
// ============================================================================

// Observation is one row of the input table: a numeric outcome paired with a
// group label. A NaN outcome marks a missing value; an empty label marks a
// missing group.
type Observation struct {
	Outcome float64 `json:"outcome"`
	Group   string  `json:"group"`
}

// Missing reports whether the outcome value is absent (NaN or infinite).
func (o Observation) Missing() bool {
	return math.IsNaN(o.Outcome) || math.IsInf(o.Outcome, 0)
}

// Table is the ordered sequence of input observations. Row order is irrelevant
// to every computed statistic; it only pins down group enumeration order and
// therefore the ordering of output rows.
type Table []Observation

// GroupSplit maps each group label to that group's outcome values, with
// missing values retained. Groups preserves first-appearance order and is the
// canonical enumeration order for pairs and output rows.
// INVARIANTS:
//   - the summed lengths of Values equal len(source table) minus rows with a
//     missing group label
//   - every label in Groups is a key of Values and vice versa
type GroupSplit struct {
	Groups []string             `json:"groups"`
	Values map[string][]float64 `json:"values"`
}

// NonMissing returns the group's values with missing entries excluded.
func (s GroupSplit) NonMissing(group string) []float64 {
	src := s.Values[group]
	out := make([]float64, 0, len(src))
	for _, v := range src {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

// QuantileSpec is an ordered sequence of cut fractions defining
// len(spec)-1 rank-matched bins.
type QuantileSpec []float64

// DefaultQuantileSpec cuts each group into three equal-width thirds.
func DefaultQuantileSpec() QuantileSpec {
	return QuantileSpec{0, 1.0 / 3.0, 2.0 / 3.0, 1}
}

// Validate checks that the fractions are strictly increasing within [0,1]
// and define at least one bin.
func (q QuantileSpec) Validate() error {
	if len(q) < 2 {
		return fmt.Errorf("quantile spec needs at least 2 fractions, got %d", len(q))
	}
	for i, f := range q {
		if f < 0 || f > 1 {
			return fmt.Errorf("quantile fraction %g out of [0,1]", f)
		}
		if i > 0 && f <= q[i-1] {
			return fmt.Errorf("quantile fractions must be strictly increasing: %g after %g", f, q[i-1])
		}
	}
	return nil
}

// Bins returns the number of bins the spec defines.
func (q QuantileSpec) Bins() int { return len(q) - 1 }

// ============================================================================
// PIPELINE ROWS
// ============================================================================

// QuantileBin holds one group's values falling inside one rank-fraction
// interval. Values is the non-missing subsequence; a zero count is valid and
// must be preserved, never dropped.
type QuantileBin struct {
	Group    string    `json:"group"`
	LowFrac  float64   `json:"low_frac"`
	HighFrac float64   `json:"high_frac"`
	Values   []float64 `json:"values"`
}

// Count returns the number of values in the bin.
func (b QuantileBin) Count() int { return len(b.Values) }

// BinCount is the counts-only projection of a QuantileBin, keyed on
// (group, low fraction, high fraction).
type BinCount struct {
	Group    string  `json:"group"`
	LowFrac  float64 `json:"low_frac"`
	HighFrac float64 `json:"high_frac"`
	N        int     `json:"n"`
}

// PairKey identifies an unordered pair of distinct groups. First/Second follow
// group enumeration order, so the key is canonical: Key(a,b) == Key(b,a) after
// construction through CanonicalPair.
type PairKey struct {
	First  string `json:"first"`
	Second string `json:"second"`
}

// CanonicalPair builds the canonical unordered key for two groups given the
// enumeration order of all groups.
func CanonicalPair(a, b string, order []string) PairKey {
	for _, g := range order {
		if g == a {
			return PairKey{First: a, Second: b}
		}
		if g == b {
			return PairKey{First: b, Second: a}
		}
	}
	return PairKey{First: a, Second: b}
}

// PooledSD is the pooled standard deviation for one unordered group pair.
type PooledSD struct {
	Pair PairKey `json:"pair"`
	SD   float64 `json:"sd"`
}

// MeanDiff is the within-bin mean difference (focal - reference) for one
// pair orientation. Estimate is NaN when either side's bin is empty; the row
// is kept so consumers always see the full pair x bin grid.
type MeanDiff struct {
	Reference string  `json:"reference"`
	Focal     string  `json:"focal"`
	LowFrac   float64 `json:"low_frac"`
	HighFrac  float64 `json:"high_frac"`
	Estimate  float64 `json:"estimate"`
}

// Record is one row of the final effect-size table: a standardized mean
// difference with its standard error for one (pair, bin). Immutable once
// assembled.
type Record struct {
	Focal         string  `json:"focal"`
	Reference     string  `json:"reference"`
	LowFrac       float64 `json:"low_frac"`
	HighFrac      float64 `json:"high_frac"`
	Midpoint      float64 `json:"midpoint"`
	MeanDiff      float64 `json:"mean_diff"`
	PooledSD      float64 `json:"pooled_sd"`
	EffectSize    float64 `json:"effect_size"`
	ReferenceN    int     `json:"reference_n"`
	FocalN        int     `json:"focal_n"`
	StandardError float64 `json:"standard_error"`
}

// ============================================================================
// RUN METADATA (audit trail)
// ============================================================================

// Manifest captures audit metadata for one effect-size run.
type Manifest struct {
	RunID          core.RunID     `json:"run_id"`
	GroupCount     int            `json:"group_count"`
	PairCount      int            `json:"pair_count"`
	BinCount       int            `json:"bin_count"`
	RowCount       int            `json:"row_count"`
	ReferenceGroup string         `json:"reference_group"`
	RuntimeMs      int64          `json:"runtime_ms"`
	CreatedAt      core.Timestamp `json:"created_at"`
}

// NewManifest stamps a fresh manifest for a run.
func NewManifest(reference string, groups, pairs, bins, rows int, runtimeMs int64) Manifest {
	return Manifest{
		RunID:          core.RunID(core.NewID()),
		GroupCount:     groups,
		PairCount:      pairs,
		BinCount:       bins,
		RowCount:       rows,
		ReferenceGroup: reference,
		RuntimeMs:      runtimeMs,
		CreatedAt:      core.Now(),
	}
}
