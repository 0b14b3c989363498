package celltree

import (
	"math"
	"sort"
)

// split reorders slots in place into two non-empty runs, slots[:mid] and
// slots[mid:], separated along the axis of greatest spread, and returns mid.
// ref is the centroid of the run and is the pivot for SplitMean.
//
// For any run of two or more points 0 < mid < len(slots), including runs of
// coincident points: a pivot that leaves one side empty falls back to the
// median cut. Order within each side is unspecified.
func split[P Position[P], V Payload[V]](slots []slot[Summary[P, V]], method SplitMethod, ref P) int {
	n := len(slots)
	axis, lo, hi := widestAxis(slots)

	var mid int
	switch method {
	case SplitMiddle:
		mid = partitionBelow(slots, axis, lo+(hi-lo)/2)
	case SplitMean:
		mid = partitionBelow(slots, axis, ref.Axis(axis))
	}
	if mid <= 0 || mid >= n {
		mid = splitMedian(slots, axis)
	}
	return mid
}

// widestAxis returns the axis with the greatest spread among slots, along
// with the minimum and maximum coordinate on that axis.
func widestAxis[P Position[P], V Payload[V]](slots []slot[Summary[P, V]]) (axis int, lo, hi float64) {
	bestSpread := -1.0
	naxes := slots[0].Peek().Pos.NumAxes()
	for d := 0; d < naxes; d++ {
		minVal := math.Inf(1)
		maxVal := math.Inf(-1)
		for i := range slots {
			v := slots[i].Peek().Pos.Axis(d)
			if v < minVal {
				minVal = v
			}
			if v > maxVal {
				maxVal = v
			}
		}
		if spread := maxVal - minVal; spread > bestSpread {
			bestSpread = spread
			axis, lo, hi = d, minVal, maxVal
		}
	}
	return axis, lo, hi
}

// partitionBelow moves every slot whose coordinate on axis is below pivot to
// the front and returns how many there are.
func partitionBelow[P Position[P], V Payload[V]](slots []slot[Summary[P, V]], axis int, pivot float64) int {
	i, j := 0, len(slots)-1
	for i <= j {
		if slots[i].Peek().Pos.Axis(axis) < pivot {
			i++
			continue
		}
		if slots[j].Peek().Pos.Axis(axis) >= pivot {
			j--
			continue
		}
		slots[i], slots[j] = slots[j], slots[i]
		i++
		j--
	}
	return i
}

// splitMedian sorts slots along axis and cuts them in half.
func splitMedian[P Position[P], V Payload[V]](slots []slot[Summary[P, V]], axis int) int {
	sort.Slice(slots, func(i, j int) bool {
		return slots[i].Peek().Pos.Axis(axis) < slots[j].Peek().Pos.Axis(axis)
	})
	return len(slots) / 2
}
