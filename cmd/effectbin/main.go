package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"effectbin/adapters/tabular"
	"effectbin/domain/effectsize"
	"effectbin/internal"
	"effectbin/internal/analysis"
	"effectbin/internal/config"
)

// effectbin reads an observation table, runs the quantile-binned effect-size
// pipeline, and writes the resulting table as CSV to stdout.
func main() {
	if err := godotenv.Load(); err != nil {
		internal.DefaultLogger.Debug("no .env file found, using environment as-is")
	}
	logger := internal.NewDefaultLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration error: %v", err)
		os.Exit(1)
	}

	dataFile := cfg.Data.File
	if len(os.Args) > 1 {
		dataFile = os.Args[1]
	}
	if dataFile == "" {
		logger.Error("no input file: pass a path or set EFFECTBIN_DATA_FILE")
		os.Exit(1)
	}

	reader := tabular.NewReader(dataFile, cfg.Data.OutcomeColumn, cfg.Data.GroupColumn)
	table, err := reader.Read()
	if err != nil {
		logger.Error("failed to read %s: %v", dataFile, err)
		os.Exit(1)
	}

	engine, err := analysis.New(analysis.Options{
		Quantiles:   cfg.Analysis.QuantileCuts,
		Reference:   cfg.Analysis.ReferenceGroup,
		MaxParallel: cfg.Analysis.MaxParallel,
	})
	if err != nil {
		logger.Error("invalid analysis options: %v", err)
		os.Exit(1)
	}

	records, manifest, err := engine.QuantileEffectSizes(table)
	if err != nil {
		logger.Error("effect-size computation failed: %v", err)
		os.Exit(1)
	}
	logger.Info("run %s: %d groups, %d pairs, %d bins, %d rows, reference=%s (%dms)",
		manifest.RunID, manifest.GroupCount, manifest.PairCount, manifest.BinCount,
		manifest.RowCount, manifest.ReferenceGroup, manifest.RuntimeMs)

	if err := writeCSV(os.Stdout, records); err != nil {
		logger.Error("failed to write output: %v", err)
		os.Exit(1)
	}
}

func writeCSV(out *os.File, records []effectsize.Record) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{
		"focal_group", "reference_group", "low_frac", "high_frac", "midpoint",
		"mean_diff", "pooled_sd", "effect_size", "reference_n", "focal_n", "standard_error",
	}); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.Focal,
			r.Reference,
			formatFloat(r.LowFrac),
			formatFloat(r.HighFrac),
			formatFloat(r.Midpoint),
			formatFloat(r.MeanDiff),
			formatFloat(r.PooledSD),
			formatFloat(r.EffectSize),
			strconv.Itoa(r.ReferenceN),
			strconv.Itoa(r.FocalN),
			formatFloat(r.StandardError),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return fmt.Sprintf("%g", v)
}
