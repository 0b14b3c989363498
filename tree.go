package celltree

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Tree is a built set of root cells. It is immutable and safe for
// concurrent readers until Close is called.
type Tree[P Position[P], V Payload[V]] struct {
	roots      []*Node[P, V]
	thresholds Thresholds
	workers    int
	logger     *slog.Logger
	tracer     trace.Tracer
	ledger     Ledger
	closed     bool
}

// Build constructs a tree from parallel arrays of positions, payloads and
// weights. weights may be nil, in which case every point has weight 1.
// Points with zero weight are dropped before construction; if none remain
// the tree has no roots.
//
// Construction runs in two phases. A sequential pass splits the point buffer
// into top-level ranges no larger than b*MaxSep; the subtrees of those
// ranges are then built concurrently on up to cfg.Workers goroutines. When
// MaxSep is 0 every point becomes its own root.
//
// Returns ErrInvalidConfig, ErrInvalidInput or ErrEmptyInput (wrapped) if
// the arguments cannot produce a tree.
func Build[P Position[P], V Payload[V]](ctx context.Context, pos []P, values []V, weights []float64, cfg Config) (*Tree[P, V], error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	if err := validateInput(len(pos), len(values), weights); err != nil {
		return nil, err
	}

	tracer := cfg.TracerProvider.Tracer(instrumentationName)
	ctx, span := tracer.Start(ctx, "celltree.Build", trace.WithAttributes(
		attribute.Int("points", len(pos)),
		attribute.String("split_method", cfg.SplitMethod.String()),
		attribute.Int("workers", cfg.Workers),
	))
	defer span.End()

	metrics, err := newBuildMetrics(cfg.MeterProvider)
	if err != nil {
		cfg.Logger.Warn("celltree: metrics disabled", slog.String("error", err.Error()))
		metrics = noopBuildMetrics()
	}
	start := time.Now()

	th := ComputeThresholds(cfg)
	b := newBuilder[P, V](cfg, th)
	cfg.Logger.Debug("celltree: starting build",
		slog.Int("points", len(pos)),
		slog.Float64("min_size_sq", th.MinSizeSq),
		slog.Float64("max_size_sq", th.MaxSizeSq),
		slog.String("split_method", cfg.SplitMethod.String()),
	)

	buf := make([]slot[Summary[P, V]], 0, len(pos))
	for i := range pos {
		w := 1.0
		if weights != nil {
			w = weights[i]
		}
		if w == 0 {
			continue
		}
		buf = append(buf, newSlot(b.track(NewSummary(pos[i], values[i], w))))
	}
	cfg.Logger.Debug("celltree: built point summaries",
		slog.Int("kept", len(buf)),
		slog.Int("dropped", len(pos)-len(buf)),
	)

	var roots []*Node[P, V]
	switch {
	case len(buf) == 0:
		// Nothing survived the weight filter.
	case th.MaxSizeSq == 0:
		roots = buildLeaves(b, buf, cfg.Workers)
		cfg.Logger.Debug("celltree: brute force, every point is a root", slog.Int("roots", len(roots)))
	default:
		roots = buildTwoPhase(ctx, tracer, b, buf, cfg)
	}

	freed := b.releaseLive(buf)
	cfg.Logger.Debug("celltree: build complete",
		slog.Int("roots", len(roots)),
		slog.Int64("nodes", b.nodes.Load()),
		slog.Int("released_point_summaries", freed),
		slog.Duration("duration", time.Since(start)),
	)

	span.SetAttributes(
		attribute.Int("roots", len(roots)),
		attribute.Int64("nodes", b.nodes.Load()),
	)
	attrs := metric.WithAttributes(attribute.String("split_method", cfg.SplitMethod.String()))
	metrics.duration.Record(ctx, time.Since(start).Seconds(), attrs)
	metrics.builds.Add(ctx, 1, attrs)
	metrics.nodes.Record(ctx, b.nodes.Load(), attrs)
	metrics.topLevel.Record(ctx, int64(len(roots)), attrs)

	return &Tree[P, V]{
		roots:      roots,
		thresholds: th,
		workers:    cfg.Workers,
		logger:     cfg.Logger,
		tracer:     tracer,
		ledger:     cfg.Ledger,
	}, nil
}

// buildLeaves makes one leaf per point. Each worker only touches the slots in
// its own chunk.
func buildLeaves[P Position[P], V Payload[V]](b *builder[P, V], buf []slot[Summary[P, V]], workers int) []*Node[P, V] {
	roots := make([]*Node[P, V], len(buf))
	forEachChunk(len(buf), workers, func(start, end int) {
		for i := start; i < end; i++ {
			roots[i] = b.leaf(buf[i].Take(), 0)
		}
	})
	return roots
}

// buildTwoPhase runs the sequential top-level pass and then builds each
// top-level range on its own goroutine.
func buildTwoPhase[P Position[P], V Payload[V]](ctx context.Context, tracer trace.Tracer, b *builder[P, V], buf []slot[Summary[P, V]], cfg Config) []*Node[P, V] {
	_, topSpan := tracer.Start(ctx, "celltree.partitionTopLevel")
	tops := b.partitionTopLevel(buf, 0, nil)
	topSpan.SetAttributes(attribute.Int("top_level", len(tops)))
	topSpan.End()
	cfg.Logger.Debug("celltree: top-level pass complete", slog.Int("top_level", len(tops)))

	_, subSpan := tracer.Start(ctx, "celltree.buildSubtrees")
	defer subSpan.End()
	roots := make([]*Node[P, V], len(tops))
	forEach(len(tops), cfg.Workers, func(i int) {
		t := tops[i]
		roots[i] = b.buildNode(t.ave, t.sizeSq, t.slots)
	})
	return roots
}

func validateInput(npos, nvalues int, weights []float64) error {
	if npos == 0 {
		return ErrEmptyInput
	}
	if nvalues != npos {
		return fmt.Errorf("%w: %d positions but %d payload values", ErrInvalidInput, npos, nvalues)
	}
	if weights == nil {
		return nil
	}
	if len(weights) != npos {
		return fmt.Errorf("%w: %d positions but %d weights", ErrInvalidInput, npos, len(weights))
	}
	for i, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			return fmt.Errorf("%w: weight[%d] = %g must be finite and >= 0", ErrInvalidInput, i, w)
		}
	}
	return nil
}

// Roots returns the top-level cells. The slice must not be modified.
func (t *Tree[P, V]) Roots() []*Node[P, V] { return t.roots }

// NumRoots returns the number of top-level cells.
func (t *Tree[P, V]) NumRoots() int { return len(t.roots) }

// Thresholds returns the squared size thresholds the tree was built with.
func (t *Tree[P, V]) Thresholds() Thresholds { return t.thresholds }

// Close releases every node of the tree. Subtrees are released concurrently
// and Close returns once all of them are done. The tree must not be used
// afterwards; a second Close returns ErrClosed.
func (t *Tree[P, V]) Close() error {
	if t.closed {
		return ErrClosed
	}
	_, span := t.tracer.Start(context.Background(), "celltree.Close",
		trace.WithAttributes(attribute.Int("roots", len(t.roots))))
	defer span.End()

	forEach(len(t.roots), t.workers, func(i int) {
		releaseSubtree(t.roots[i], t.ledger)
	})
	t.logger.Debug("celltree: tree closed", slog.Int("roots", len(t.roots)))

	t.roots = nil
	t.closed = true
	return nil
}

func releaseSubtree[P Position[P], V Payload[V]](n *Node[P, V], ledger Ledger) {
	if n.left != nil {
		releaseSubtree(n.left, ledger)
		releaseSubtree(n.right, ledger)
	}
	ledger.Released(n.summary.id)
	n.left, n.right = nil, nil
}
