package celltree

import "context"

// BuildCounts builds a count-only tree: each cell carries just its position
// and total weight.
func BuildCounts[P Position[P]](ctx context.Context, pos []P, weights []float64, cfg Config) (*Tree[P, Count], error) {
	return Build(ctx, pos, Counts(len(pos)), weights, cfg)
}

// BuildScalars builds a tree whose cells carry the weighted mean of k.
func BuildScalars[P Position[P]](ctx context.Context, pos []P, k, weights []float64, cfg Config) (*Tree[P, Scalar], error) {
	values, err := Scalars(k)
	if err != nil {
		return nil, err
	}
	return Build(ctx, pos, values, weights, cfg)
}

// BuildVectors builds a tree whose cells carry the weighted mean of the
// two-component statistic (g1, g2).
func BuildVectors[P Position[P]](ctx context.Context, pos []P, g1, g2, weights []float64, cfg Config) (*Tree[P, Vector], error) {
	values, err := Vectors(g1, g2)
	if err != nil {
		return nil, err
	}
	return Build(ctx, pos, values, weights, cfg)
}
