package celltree

import (
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
)

const instrumentationName = "github.com/TrevorS/celltree"

// buildMetrics holds the instruments recorded by Build.
type buildMetrics struct {
	duration metric.Float64Histogram
	builds   metric.Int64Counter
	nodes    metric.Int64Histogram
	topLevel metric.Int64Histogram
}

func newBuildMetrics(mp metric.MeterProvider) (*buildMetrics, error) {
	meter := mp.Meter(instrumentationName)
	var (
		m   buildMetrics
		err error
	)

	m.duration, err = meter.Float64Histogram(
		"celltree_build_duration_seconds",
		metric.WithDescription("Duration of tree builds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	m.builds, err = meter.Int64Counter(
		"celltree_builds_total",
		metric.WithDescription("Total number of tree builds"),
	)
	if err != nil {
		return nil, err
	}

	m.nodes, err = meter.Int64Histogram(
		"celltree_nodes_created",
		metric.WithDescription("Number of nodes created per build"),
	)
	if err != nil {
		return nil, err
	}

	m.topLevel, err = meter.Int64Histogram(
		"celltree_top_level_ranges",
		metric.WithDescription("Number of top-level cells per build"),
	)
	if err != nil {
		return nil, err
	}

	return &m, nil
}

// noopBuildMetrics is used when the configured provider rejects an instrument.
func noopBuildMetrics() *buildMetrics {
	m, _ := newBuildMetrics(metricnoop.NewMeterProvider())
	return m
}
