package celltree

import "sync/atomic"

// builder carries the state shared by one tree construction. Each recursive
// call receives the sub-slice of the point buffer it is allowed to touch, so
// calls on sibling ranges can never reach each other's slots.
type builder[P Position[P], V Payload[V]] struct {
	method    SplitMethod
	minSizeSq float64
	maxSizeSq float64
	maxTop    int
	ledger    Ledger

	nextID atomic.Uint64
	nodes  atomic.Int64
}

// topRange is a run of the buffer accepted by the top-level pass, together
// with the aggregate and size computed for it there.
type topRange[P Position[P], V Payload[V]] struct {
	ave    Summary[P, V]
	sizeSq float64
	slots  []slot[Summary[P, V]]
}

func newBuilder[P Position[P], V Payload[V]](cfg Config, th Thresholds) *builder[P, V] {
	return &builder[P, V]{
		method:    cfg.SplitMethod,
		minSizeSq: th.MinSizeSq,
		maxSizeSq: th.MaxSizeSq,
		maxTop:    cfg.MaxTop,
		ledger:    cfg.Ledger,
	}
}

// track registers a newly created summary with the ledger.
func (b *builder[P, V]) track(s Summary[P, V]) Summary[P, V] {
	s.id = b.nextID.Add(1)
	b.ledger.Allocated(s.id)
	return s
}

func (b *builder[P, V]) release(s Summary[P, V]) {
	b.ledger.Released(s.id)
}

// aggregate returns the summary and squared size of a non-empty run. A single
// point is moved out of its slot as is; larger runs get a fresh aggregate
// and leave their slots live.
func (b *builder[P, V]) aggregate(slots []slot[Summary[P, V]]) (Summary[P, V], float64) {
	if len(slots) == 1 {
		return slots[0].Take(), 0
	}
	ave := b.track(summarize(slots))
	return ave, boundingSizeSq(ave.Pos, slots)
}

// partitionTopLevel splits slots until every run is no larger than the
// maximum size (or MaxTop is reached) and appends those runs to out. The
// minimum size is not considered here. It mutates the shared buffer and must
// run on a single goroutine, left half before right half.
func (b *builder[P, V]) partitionTopLevel(slots []slot[Summary[P, V]], depth int, out []topRange[P, V]) []topRange[P, V] {
	ave, sizeSq := b.aggregate(slots)
	if sizeSq <= b.maxSizeSq || (b.maxTop > 0 && depth >= b.maxTop) {
		return append(out, topRange[P, V]{ave: ave, sizeSq: sizeSq, slots: slots})
	}

	mid := split(slots, b.method, ave.Pos)
	b.release(ave)
	out = b.partitionTopLevel(slots[:mid], depth+1, out)
	return b.partitionTopLevel(slots[mid:], depth+1, out)
}

// buildNode builds the subtree for slots, whose aggregate and squared size
// are ave and sizeSq. A run becomes a leaf when it holds one point or is no
// larger than the minimum size; otherwise it is split. Either way the node
// keeps ave, the centroid sizeSq was measured from, which equals the
// combination of its children's summaries.
func (b *builder[P, V]) buildNode(ave Summary[P, V], sizeSq float64, slots []slot[Summary[P, V]]) *Node[P, V] {
	if len(slots) == 1 || sizeSq <= b.minSizeSq {
		return b.leaf(ave, sizeSq)
	}

	mid := split(slots, b.method, ave.Pos)

	lo, hi := slots[:mid], slots[mid:]
	leftAve, leftSizeSq := b.aggregate(lo)
	left := b.buildNode(leftAve, leftSizeSq, lo)
	rightAve, rightSizeSq := b.aggregate(hi)
	right := b.buildNode(rightAve, rightSizeSq, hi)

	b.nodes.Add(1)
	return &Node[P, V]{
		summary: ave,
		sizeSq:  sizeSq,
		left:    left,
		right:   right,
	}
}

func (b *builder[P, V]) leaf(s Summary[P, V], sizeSq float64) *Node[P, V] {
	b.nodes.Add(1)
	return &Node[P, V]{summary: s, sizeSq: sizeSq}
}

// releaseLive releases every summary still owned by the buffer: per-point
// summaries that were folded into a multi-point leaf.
func (b *builder[P, V]) releaseLive(slots []slot[Summary[P, V]]) int {
	var n int
	for i := range slots {
		if slots[i].Occupied() {
			b.release(slots[i].Take())
			n++
		}
	}
	return n
}
