// Package celltree builds the hierarchical cell trees used to compute
// binned two-point correlation functions of weighted points.
//
// Each input point has a position (on the plane or on the celestial sphere),
// a weight, and an optional payload: nothing (counts), a scalar, or a
// two-component vector. The tree groups points into cells; every cell
// stores the weighted mean position and payload of its members, their total
// weight, and its squared bounding radius. A pair-counting engine walks two
// trees and treats a pair of cells as single points whenever their sizes
// are small compared to their separation.
//
// Basic usage:
//
//	pos, err := celltree.FlatPositions(x, y)
//	cfg := celltree.DefaultConfig()
//	cfg.MinSep, cfg.MaxSep, cfg.BinSlop = 1, 100, 0.1
//	tree, err := celltree.BuildScalars(ctx, pos, k, w, cfg)
//	defer tree.Close()
//	for _, root := range tree.Roots() {
//		// root.Pos(), root.Weight(), root.SizeSq(), root.Left(), root.Right()
//	}
//
// # Cell sizes
//
// The separations of interest bound the useful cell sizes. Cells larger
// than b*MaxSep are always split, so every root is at most that size.
// Cells no larger than b*MinSep/(2+3b) are never split, since refining them
// cannot move any pair into a different bin. Setting MaxSep to 0 disables
// the tree entirely and makes every point its own root.
//
// # Split methods
//
// A cell is split along the axis of greatest spread:
//
//	cfg.SplitMethod = celltree.SplitMean   // at the weighted centroid
//	cfg.SplitMethod = celltree.SplitMedian // into two equal halves
//	cfg.SplitMethod = celltree.SplitMiddle // at the middle of the extent
package celltree
