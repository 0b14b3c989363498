package celltree

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

// --- Ownership ---

func TestTree_LedgerReleasesEverySummaryOnce(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"two-phase", testConfig(0.5, 20, 0.3)},
		{"coarse leaves", testConfig(5, 20, 1)},
		{"brute force", testConfig(0, 0, 0.3)},
		{"max top", func() Config { c := testConfig(0.5, 2, 0.3); c.MaxTop = 3; return c }()},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pos, vals, w := uniformFlat(1200, 100, 21)
			w[0], w[5] = 0, 0
			ledger := newCountingLedger()
			tc.cfg.Ledger = ledger
			tc.cfg.Workers = 4

			tree, err := Build(context.Background(), pos, vals, w, tc.cfg)
			require.NoError(t, err)

			// Every summary still alive belongs to exactly one node.
			assert.Equal(t, tree.Stats().Nodes, ledger.live())

			require.NoError(t, tree.Close())
			assert.Zero(t, ledger.live())
			ledger.checkExactlyOnce(t)
		})
	}
}

func TestTree_CloseTwice(t *testing.T) {
	pos, vals, w := uniformFlat(10, 1, 1)
	tree, err := Build(context.Background(), pos, vals, w, testConfig(0.1, 1, 0.5))
	require.NoError(t, err)

	require.NoError(t, tree.Close())
	assert.ErrorIs(t, tree.Close(), ErrClosed)
	assert.Empty(t, tree.Roots())
}

// --- Degenerate input ---

func TestTree_AllZeroWeights(t *testing.T) {
	pos := []Flat{NewFlat(0, 0), NewFlat(1, 1)}
	tree, err := BuildCounts(context.Background(), pos, []float64{0, 0}, testConfig(1, 10, 0.1))
	require.NoError(t, err)

	assert.Zero(t, tree.NumRoots())
	visited := 0
	tree.Walk(func(*Node[Flat, Count], int) bool { visited++; return true })
	assert.Zero(t, visited)
	assert.Equal(t, Stats{}, tree.Stats())
	assert.NoError(t, tree.Close())
}

func TestTree_SinglePoint(t *testing.T) {
	tree, err := BuildCounts(context.Background(), []Flat{NewFlat(3, 4)}, []float64{2}, testConfig(1, 10, 0.1))
	require.NoError(t, err)
	defer tree.Close()

	require.Equal(t, 1, tree.NumRoots())
	root := tree.Roots()[0]
	assert.True(t, root.IsLeaf())
	assert.Zero(t, root.SizeSq())
	assert.Equal(t, NewFlat(3, 4), root.Pos())
	assert.Equal(t, 2.0, root.Weight())
}

func TestTree_AllCoincident(t *testing.T) {
	pos := make([]Flat, 50)
	for i := range pos {
		pos[i] = NewFlat(1, 1)
	}
	for _, m := range allSplitMethods {
		cfg := testConfig(0, 10, 0.1)
		cfg.SplitMethod = m
		tree, err := BuildCounts(context.Background(), pos, nil, cfg)
		require.NoError(t, err)

		// Zero size is at or below every minimum size: one leaf holds them all.
		require.Equal(t, 1, tree.NumRoots())
		assert.True(t, tree.Roots()[0].IsLeaf())
		assert.Equal(t, 50.0, tree.Roots()[0].Weight())
		require.NoError(t, tree.Close())
	}
}

// --- Validation ---

func TestBuild_InvalidArguments(t *testing.T) {
	pos := []Flat{NewFlat(0, 0), NewFlat(1, 1)}
	vals := Counts(2)
	good := testConfig(1, 10, 0.1)

	tests := []struct {
		name    string
		pos     []Flat
		vals    []Count
		w       []float64
		mutate  func(*Config)
		wantErr error
	}{
		{"empty", nil, nil, nil, nil, ErrEmptyInput},
		{"payload length", pos, Counts(1), nil, nil, ErrInvalidInput},
		{"weight length", pos, vals, []float64{1}, nil, ErrInvalidInput},
		{"negative weight", pos, vals, []float64{1, -1}, nil, ErrInvalidInput},
		{"negative min sep", pos, vals, nil, func(c *Config) { c.MinSep = -1 }, ErrInvalidConfig},
		{"negative max sep", pos, vals, nil, func(c *Config) { c.MaxSep = -1 }, ErrInvalidConfig},
		{"min above max", pos, vals, nil, func(c *Config) { c.MinSep = 20 }, ErrInvalidConfig},
		{"zero bin slop", pos, vals, nil, func(c *Config) { c.BinSlop = 0 }, ErrInvalidConfig},
		{"bad split", pos, vals, nil, func(c *Config) { c.SplitMethod = "random" }, ErrInvalidConfig},
		{"negative max top", pos, vals, nil, func(c *Config) { c.MaxTop = -1 }, ErrInvalidConfig},
		{"negative workers", pos, vals, nil, func(c *Config) { c.Workers = -2 }, ErrInvalidConfig},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := good
			if tc.mutate != nil {
				tc.mutate(&cfg)
			}
			tree, err := Build(context.Background(), tc.pos, tc.vals, tc.w, cfg)
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Nil(t, tree)
		})
	}
}

// --- Query surface ---

func TestTree_WalkSkipsChildren(t *testing.T) {
	pos, vals, w := uniformFlat(200, 10, 13)
	tree, err := Build(context.Background(), pos, vals, w, testConfig(0.01, 100, 0.1))
	require.NoError(t, err)
	defer tree.Close()

	visited := 0
	tree.Walk(func(n *Node[Flat, Scalar], depth int) bool {
		visited++
		assert.Zero(t, depth)
		return false
	})
	assert.Equal(t, tree.NumRoots(), visited)
}

func TestTree_Stats(t *testing.T) {
	pos, vals, w := uniformFlat(300, 10, 19)
	tree, err := Build(context.Background(), pos, vals, w, testConfig(0.001, 3, 0.5))
	require.NoError(t, err)
	defer tree.Close()

	s := tree.Stats()
	assert.Equal(t, tree.NumRoots(), s.Roots)
	// Every internal node has two children.
	assert.Equal(t, 2*s.Leaves-s.Roots, s.Nodes)
	assert.Equal(t, 300, s.Leaves)
	assert.LessOrEqual(t, s.MaxRootSize, 1.5)
	assert.True(t, almostEqual(floats.Sum(w), s.TotalWeight, 1e-9))
}

func TestTree_LoggerReceivesBuildRecords(t *testing.T) {
	var sb strings.Builder
	cfg := testConfig(0.1, 5, 0.2)
	cfg.Logger = slog.New(slog.NewTextHandler(&sb, &slog.HandlerOptions{Level: slog.LevelDebug}))

	pos, vals, w := uniformFlat(50, 10, 23)
	tree, err := Build(context.Background(), pos, vals, w, cfg)
	require.NoError(t, err)
	require.NoError(t, tree.Close())

	out := sb.String()
	assert.Contains(t, out, "celltree: starting build")
	assert.Contains(t, out, "celltree: top-level pass complete")
	assert.Contains(t, out, "celltree: build complete")
	assert.Contains(t, out, "celltree: tree closed")
}
