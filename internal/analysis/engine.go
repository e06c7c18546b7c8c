// Package analysis implements the quantile-binned effect-size pipeline:
// group splitting, per-group quantile binning, pooled-variance estimation,
// pairwise within-bin mean differences, and effect-size assembly.
//
// Every operation is a stateless, pure function of the input table and the
// engine's options. Repeated calls on the same table yield identical output.
package analysis

import (
	"runtime"
	"time"

	"effectbin/domain/effectsize"
)

// Options configures an Engine once at construction.
type Options struct {
	// Quantiles are the bin cut fractions. Defaults to thirds.
	Quantiles effectsize.QuantileSpec
	// Reference selects the baseline group for effect sizes. Empty selects
	// the group with the highest overall mean outcome.
	Reference string
	// MaxParallel caps concurrent pair computations. Defaults to GOMAXPROCS.
	MaxParallel int
}

// DefaultOptions returns the conventional configuration: three equal-width
// quantile bins and a highest-mean reference group.
func DefaultOptions() Options {
	return Options{
		Quantiles:   effectsize.DefaultQuantileSpec(),
		MaxParallel: runtime.GOMAXPROCS(0),
	}
}

// Engine runs the effect-size pipeline. It holds only validated options and
// shares no mutable state across invocations.
type Engine struct {
	opts Options
}

// New validates the options once and returns a ready engine.
func New(opts Options) (*Engine, error) {
	if opts.Quantiles == nil {
		opts.Quantiles = effectsize.DefaultQuantileSpec()
	}
	if err := opts.Quantiles.Validate(); err != nil {
		return nil, err
	}
	if opts.MaxParallel < 1 {
		opts.MaxParallel = runtime.GOMAXPROCS(0)
	}
	return &Engine{opts: opts}, nil
}

// PooledSDs returns one row per unordered group pair with the pooled
// standard deviation of the two groups' full distributions.
func (e *Engine) PooledSDs(table effectsize.Table) ([]effectsize.PooledSD, error) {
	split, err := SplitGroups(table)
	if err != nil {
		return nil, err
	}
	return PooledSDs(split)
}

// QuantileCounts returns the per-group, per-bin observation counts, one row
// per (group, bin) including zero counts.
func (e *Engine) QuantileCounts(table effectsize.Table) ([]effectsize.BinCount, error) {
	split, err := SplitGroups(table)
	if err != nil {
		return nil, err
	}
	binned := BinGroups(split, e.opts.Quantiles)
	return CountBins(binned, split.Groups), nil
}

// QuantileMeanDiffs returns the complete mean-difference table: every
// unordered pair in both role orientations, every bin, empty bins as NaN.
func (e *Engine) QuantileMeanDiffs(table effectsize.Table) ([]effectsize.MeanDiff, error) {
	split, err := SplitGroups(table)
	if err != nil {
		return nil, err
	}
	binned := BinGroups(split, e.opts.Quantiles)
	return MeanDiffs(binned, split.Groups, e.opts.MaxParallel), nil
}

// QuantileEffectSizes runs the full pipeline and returns the effect-size
// table for the resolved reference group, sorted ascending by bin midpoint,
// along with an audit manifest for the run.
func (e *Engine) QuantileEffectSizes(table effectsize.Table) ([]effectsize.Record, effectsize.Manifest, error) {
	start := time.Now()

	split, err := SplitGroups(table)
	if err != nil {
		return nil, effectsize.Manifest{}, err
	}
	pooled, err := PooledSDs(split)
	if err != nil {
		return nil, effectsize.Manifest{}, err
	}
	reference, err := ResolveReference(split, e.opts.Reference)
	if err != nil {
		return nil, effectsize.Manifest{}, err
	}

	binned := BinGroups(split, e.opts.Quantiles)
	counts := CountBins(binned, split.Groups)
	diffs := MeanDiffs(binned, split.Groups, e.opts.MaxParallel)

	records, err := AssembleRecords(diffs, pooled, counts, reference, split.Groups)
	if err != nil {
		return nil, effectsize.Manifest{}, err
	}

	manifest := effectsize.NewManifest(
		reference,
		len(split.Groups),
		len(pooled),
		e.opts.Quantiles.Bins(),
		len(records),
		time.Since(start).Milliseconds(),
	)
	return records, manifest, nil
}
