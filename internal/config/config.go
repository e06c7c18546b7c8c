package config

import (
	"os"
	"runtime"
	"strconv"
	"strings"

	"effectbin/domain/effectsize"
	"effectbin/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Data     DataConfig
	Analysis AnalysisConfig
}

// DataConfig holds input table settings
type DataConfig struct {
	File          string // .xlsx or .csv input table
	OutcomeColumn string // header of the numeric outcome column
	GroupColumn   string // header of the group label column
}

// AnalysisConfig holds pipeline settings
type AnalysisConfig struct {
	QuantileCuts   effectsize.QuantileSpec
	ReferenceGroup string // empty selects the highest-mean group
	MaxParallel    int    // concurrent pair computations
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cuts, err := parseCuts(os.Getenv("EFFECTBIN_QUANTILES"))
	if err != nil {
		return nil, errors.Wrap(err, "failed to load quantile configuration")
	}

	cfg := &Config{
		Data: DataConfig{
			File:          os.Getenv("EFFECTBIN_DATA_FILE"),
			OutcomeColumn: getEnvOrDefault("EFFECTBIN_OUTCOME_COLUMN", "outcome"),
			GroupColumn:   getEnvOrDefault("EFFECTBIN_GROUP_COLUMN", "group"),
		},
		Analysis: AnalysisConfig{
			QuantileCuts:   cuts,
			ReferenceGroup: os.Getenv("EFFECTBIN_REFERENCE_GROUP"),
			MaxParallel:    getEnvIntOrDefault("EFFECTBIN_MAX_PARALLEL", runtime.GOMAXPROCS(0)),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks configuration invariants once at entry
func (c *Config) Validate() error {
	if c.Data.OutcomeColumn == "" {
		return errors.ConfigInvalid("outcome column name must not be empty")
	}
	if c.Data.GroupColumn == "" {
		return errors.ConfigInvalid("group column name must not be empty")
	}
	if c.Data.OutcomeColumn == c.Data.GroupColumn {
		return errors.ConfigInvalid("outcome and group columns must differ")
	}
	if err := c.Analysis.QuantileCuts.Validate(); err != nil {
		return errors.Wrap(errors.ConfigInvalid(err.Error()), "invalid quantile cuts")
	}
	if c.Analysis.MaxParallel < 1 {
		return errors.ConfigInvalid("max parallel must be at least 1")
	}
	return nil
}

// parseCuts parses a comma-separated fraction list, e.g. "0,0.25,0.5,0.75,1".
// An empty value selects the default thirds.
func parseCuts(raw string) (effectsize.QuantileSpec, error) {
	if strings.TrimSpace(raw) == "" {
		return effectsize.DefaultQuantileSpec(), nil
	}
	parts := strings.Split(raw, ",")
	cuts := make(effectsize.QuantileSpec, 0, len(parts))
	for _, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, errors.ConfigInvalid("quantile cut is not numeric: " + p)
		}
		cuts = append(cuts, f)
	}
	return cuts, nil
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvIntOrDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
