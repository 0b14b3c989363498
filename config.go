package celltree

import (
	"fmt"
	"log/slog"
	"math"
	"runtime"

	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// SplitMethod selects how a range of points is divided in two.
type SplitMethod string

const (
	// SplitMiddle cuts the widest axis at the midpoint of the range's extent.
	SplitMiddle SplitMethod = "middle"
	// SplitMedian cuts the widest axis so both halves hold the same number of points.
	SplitMedian SplitMethod = "median"
	// SplitMean cuts the widest axis at the weighted centroid.
	SplitMean SplitMethod = "mean"
)

// ParseSplitMethod converts a name into a SplitMethod.
func ParseSplitMethod(s string) (SplitMethod, error) {
	switch m := SplitMethod(s); m {
	case SplitMiddle, SplitMedian, SplitMean:
		return m, nil
	default:
		return "", fmt.Errorf("%w: SplitMethod must be \"middle\", \"median\" or \"mean\", got %q", ErrInvalidConfig, s)
	}
}

func (m SplitMethod) String() string { return string(m) }

// Config controls tree construction.
// Start with [DefaultConfig] and override the fields you need.
type Config struct {
	// MinSep is the smallest separation the consumer will bin. Cells smaller
	// than b*MinSep/(2+3b) are never split. Must be >= 0.
	MinSep float64 `yaml:"min_sep" json:"min_sep"`

	// MaxSep is the largest separation the consumer will bin. Top-level cells
	// are no larger than b*MaxSep. 0 builds one leaf per point.
	// Must be >= MinSep.
	MaxSep float64 `yaml:"max_sep" json:"max_sep"`

	// BinSlop is the dimensionless slack b relating cell size to separation.
	// Must be > 0. Default: 1.0.
	BinSlop float64 `yaml:"bin_slop" json:"bin_slop"`

	// SplitMethod chooses how ranges are partitioned. Default: "mean".
	SplitMethod SplitMethod `yaml:"split_method" json:"split_method"`

	// MaxTop caps the recursion depth of the top-level pass. A range reached
	// at this depth becomes a top-level cell even if it is too large.
	// 0 means no cap. Must be >= 0. Default: 0.
	MaxTop int `yaml:"max_top" json:"max_top"`

	// Workers bounds the goroutines used to build subtrees. 0 means
	// runtime.NumCPU(). Default: 0 (auto).
	Workers int `yaml:"workers" json:"workers"`

	// Logger receives debug records about the build. Default: discarded.
	Logger *slog.Logger `yaml:"-" json:"-"`

	// TracerProvider supplies the tracer for build spans. Default: no-op.
	TracerProvider trace.TracerProvider `yaml:"-" json:"-"`

	// MeterProvider supplies the meter for build metrics. Default: no-op.
	MeterProvider metric.MeterProvider `yaml:"-" json:"-"`

	// Ledger observes the allocation and release of every point summary.
	// Default: none.
	Ledger Ledger `yaml:"-" json:"-"`
}

// DefaultConfig returns a Config with reasonable defaults. Separations are
// left at zero and must be set by the caller.
func DefaultConfig() Config {
	return Config{
		BinSlop:     1.0,
		SplitMethod: SplitMean,
	}
}

// validateConfig checks that cfg fields are valid and returns a descriptive error if not.
func validateConfig(cfg *Config) error {
	if math.IsNaN(cfg.MinSep) || cfg.MinSep < 0 {
		return fmt.Errorf("%w: MinSep must be >= 0, got %g", ErrInvalidConfig, cfg.MinSep)
	}
	if math.IsNaN(cfg.MaxSep) || math.IsInf(cfg.MaxSep, 0) || cfg.MaxSep < 0 {
		return fmt.Errorf("%w: MaxSep must be finite and >= 0, got %g", ErrInvalidConfig, cfg.MaxSep)
	}
	if cfg.MaxSep > 0 && cfg.MinSep > cfg.MaxSep {
		return fmt.Errorf("%w: MinSep (%g) must not exceed MaxSep (%g)", ErrInvalidConfig, cfg.MinSep, cfg.MaxSep)
	}
	if math.IsNaN(cfg.BinSlop) || math.IsInf(cfg.BinSlop, 0) || cfg.BinSlop <= 0 {
		return fmt.Errorf("%w: BinSlop must be > 0, got %g", ErrInvalidConfig, cfg.BinSlop)
	}
	if _, err := ParseSplitMethod(string(cfg.SplitMethod)); err != nil {
		return err
	}
	if cfg.MaxTop < 0 {
		return fmt.Errorf("%w: MaxTop must be >= 0, got %d", ErrInvalidConfig, cfg.MaxTop)
	}
	if cfg.Workers < 0 {
		return fmt.Errorf("%w: Workers must be >= 0 (0 means NumCPU), got %d", ErrInvalidConfig, cfg.Workers)
	}
	return nil
}

// applyDefaults fills in zero-valued config fields with their defaults.
func applyDefaults(cfg *Config) {
	if cfg.SplitMethod == "" {
		cfg.SplitMethod = SplitMean
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.TracerProvider == nil {
		cfg.TracerProvider = tracenoop.NewTracerProvider()
	}
	if cfg.MeterProvider == nil {
		cfg.MeterProvider = metricnoop.NewMeterProvider()
	}
	if cfg.Ledger == nil {
		cfg.Ledger = nopLedger{}
	}
}

// Thresholds are the squared cell sizes that steer construction.
type Thresholds struct {
	// MinSizeSq is the square of b*MinSep/(2+3b). Cells at or below it are leaves.
	MinSizeSq float64 `json:"min_size_sq" yaml:"min_size_sq"`
	// MaxSizeSq is the square of b*MaxSep. Top-level cells are at or below it.
	MaxSizeSq float64 `json:"max_size_sq" yaml:"max_size_sq"`
}

// ComputeThresholds derives the size thresholds from the separations and
// bin slop of cfg.
//
// The smallest useful cell is one where two cells that just fail to split,
// with the second up to twice the size of the first, touch at MinSep:
// s = b*MinSep/(2+3b). The largest useful cell is one that would be split at
// MaxSep even against a zero-size partner: s = b*MaxSep.
func ComputeThresholds(cfg Config) Thresholds {
	b := cfg.BinSlop
	minSize := b * cfg.MinSep / (2 + 3*b)
	maxSize := b * cfg.MaxSep
	return Thresholds{MinSizeSq: minSize * minSize, MaxSizeSq: maxSize * maxSize}
}
