package celltree

import (
	"math"
	"math/rand"
	"sync"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

const floatTol = 1e-10

func almostEqual(a, b, tol float64) bool {
	return scalar.EqualWithinAbsOrRel(a, b, tol, tol)
}

// countingLedger records how often each summary id is allocated and released.
type countingLedger struct {
	mu        sync.Mutex
	allocated map[uint64]int
	released  map[uint64]int
}

func newCountingLedger() *countingLedger {
	return &countingLedger{allocated: map[uint64]int{}, released: map[uint64]int{}}
}

func (l *countingLedger) Allocated(id uint64) {
	l.mu.Lock()
	l.allocated[id]++
	l.mu.Unlock()
}

func (l *countingLedger) Released(id uint64) {
	l.mu.Lock()
	l.released[id]++
	l.mu.Unlock()
}

// live returns the number of allocated ids that have not been released.
func (l *countingLedger) live() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for id := range l.allocated {
		if l.released[id] == 0 {
			n++
		}
	}
	return n
}

// checkExactlyOnce fails the test unless every id was allocated once and
// released once.
func (l *countingLedger) checkExactlyOnce(t *testing.T) {
	t.Helper()
	l.mu.Lock()
	defer l.mu.Unlock()
	for id, n := range l.allocated {
		if n != 1 {
			t.Errorf("summary %d allocated %d times", id, n)
		}
		if r := l.released[id]; r != 1 {
			t.Errorf("summary %d released %d times, want 1", id, r)
		}
	}
	for id := range l.released {
		if l.allocated[id] == 0 {
			t.Errorf("summary %d released but never allocated", id)
		}
	}
}

// uniformFlat scatters n points uniformly over a side x side square, with
// weights in [0.5, 1.5) and scalar payloads in [-1, 1).
func uniformFlat(n int, side float64, seed int64) ([]Flat, []Scalar, []float64) {
	rng := rand.New(rand.NewSource(seed))
	pos := make([]Flat, n)
	vals := make([]Scalar, n)
	w := make([]float64, n)
	for i := range pos {
		pos[i] = NewFlat(rng.Float64()*side, rng.Float64()*side)
		vals[i] = Scalar(2*rng.Float64() - 1)
		w[i] = 0.5 + rng.Float64()
	}
	return pos, vals, w
}

// uniformSphere scatters n points uniformly over a cap of the sphere around
// (ra, dec) = (1, 0.3) with the given half-width in radians, carrying random
// vector payloads.
func uniformSphere(n int, halfWidth float64, seed int64) ([]Sphere, []Vector, []float64) {
	rng := rand.New(rand.NewSource(seed))
	pos := make([]Sphere, n)
	vals := make([]Vector, n)
	w := make([]float64, n)
	for i := range pos {
		ra := 1 + (2*rng.Float64()-1)*halfWidth
		dec := 0.3 + (2*rng.Float64()-1)*halfWidth
		pos[i] = NewSphere(ra, dec)
		vals[i] = NewVector(rng.NormFloat64()*0.2, rng.NormFloat64()*0.2)
		w[i] = 1
	}
	return pos, vals, w
}

// payloadDist is the magnitude of a - b.
func payloadDist[V Payload[V]](a, b V) float64 {
	switch d := any(a.Add(b.Scale(-1))).(type) {
	case Scalar:
		return math.Abs(float64(d))
	case Vector:
		return d.Abs()
	default:
		return 0
	}
}

// leafPositions returns the positions of every leaf below n.
func leafPositions[P Position[P], V Payload[V]](n *Node[P, V]) []P {
	if n.IsLeaf() {
		return []P{n.Pos()}
	}
	return append(leafPositions(n.Left()), leafPositions(n.Right())...)
}

// checkTree verifies the structural invariants every built tree must hold:
// children come in pairs, weights are positive, and internal summaries are
// the combination of their children's, position, weight and payload.
func checkTree[P Position[P], V Payload[V]](t *testing.T, tree *Tree[P, V], tol float64) {
	t.Helper()
	for _, root := range tree.Roots() {
		checkNode(t, root, tol)
	}
}

func checkNode[P Position[P], V Payload[V]](t *testing.T, n *Node[P, V], tol float64) {
	t.Helper()
	if (n.left == nil) != (n.right == nil) {
		t.Fatalf("node has exactly one child")
	}
	if n.Weight() <= 0 {
		t.Errorf("node weight %v, want > 0", n.Weight())
	}
	if n.IsLeaf() {
		return
	}

	want := Combine(n.left.summary, n.right.summary)
	if d := want.Pos.DistSq(n.Pos()); d > tol*tol {
		t.Errorf("internal node position off from combined children by %g", math.Sqrt(d))
	}
	if !almostEqual(want.Weight, n.Weight(), tol) {
		t.Errorf("internal node weight %v, combined children %v", n.Weight(), want.Weight)
	}
	if d := payloadDist(n.summary.Value, want.Value); d > tol {
		t.Errorf("internal node payload off from combined children by %g", d)
	}
	checkNode(t, n.left, tol)
	checkNode(t, n.right, tol)
}
