package celltree

// Summary is the weighted aggregate of one or more points: the weighted
// mean position and payload, and the total weight.
type Summary[P Position[P], V Payload[V]] struct {
	Pos    P
	Value  V
	Weight float64

	sum P      // weighted position sum before normalization
	id  uint64 // ledger identity, assigned by the builder
}

// NewSummary returns the summary of a single point.
func NewSummary[P Position[P], V Payload[V]](pos P, value V, weight float64) Summary[P, V] {
	return Summary[P, V]{Pos: pos, Value: value, Weight: weight, sum: pos.Scale(weight)}
}

// Combine returns the weighted aggregate of two summaries. Positions are
// combined from their unnormalized sums, so the result matches summarize over
// the union of both members even when Normalize is not a plain division.
func Combine[P Position[P], V Payload[V]](a, b Summary[P, V]) Summary[P, V] {
	w := a.Weight + b.Weight
	sum := a.sum.Add(b.sum)
	return Summary[P, V]{
		Pos:    sum.Normalize(w),
		Value:  a.Value.Scale(a.Weight).Add(b.Value.Scale(b.Weight)).Scale(1 / w),
		Weight: w,
		sum:    sum,
	}
}

// summarize computes the aggregate of a non-empty run of live slots. Sums are
// accumulated first and normalized once at the end.
func summarize[P Position[P], V Payload[V]](slots []slot[Summary[P, V]]) Summary[P, V] {
	first := slots[0].Peek()
	sum := first.sum
	val := first.Value.Scale(first.Weight)
	w := first.Weight
	for i := 1; i < len(slots); i++ {
		s := slots[i].Peek()
		sum = sum.Add(s.sum)
		val = val.Add(s.Value.Scale(s.Weight))
		w += s.Weight
	}
	return Summary[P, V]{
		Pos:    sum.Normalize(w),
		Value:  val.Scale(1 / w),
		Weight: w,
		sum:    sum,
	}
}

// boundingSizeSq returns the largest squared distance from centre to any
// point in slots. The result is a squared radius, not a diameter.
func boundingSizeSq[P Position[P], V Payload[V]](centre P, slots []slot[Summary[P, V]]) float64 {
	var sizeSq float64
	for i := range slots {
		if d := centre.DistSq(slots[i].Peek().Pos); d > sizeSq {
			sizeSq = d
		}
	}
	return sizeSq
}
