package celltree

import (
	"fmt"
	"math/cmplx"
)

// Payload is the aggregation capability for the per-point statistic carried
// by a tree. Aggregates are weighted means, so only addition and scaling are
// needed.
type Payload[V any] interface {
	Add(v V) V
	Scale(f float64) V
}

// Count is the empty payload of a tree that only counts (weighted) points.
type Count struct{}

func (Count) Add(Count) Count     { return Count{} }
func (Count) Scale(float64) Count { return Count{} }
func (Count) String() string      { return "count" }

// Scalar is a real-valued payload, such as a convergence field.
type Scalar float64

func (s Scalar) Add(o Scalar) Scalar    { return s + o }
func (s Scalar) Scale(f float64) Scalar { return Scalar(f) * s }

// Vector is a two-component payload stored as g1 + i·g2, such as a shear.
type Vector complex128

// NewVector returns the payload with components g1 and g2.
func NewVector(g1, g2 float64) Vector { return Vector(complex(g1, g2)) }

func (v Vector) Add(o Vector) Vector    { return v + o }
func (v Vector) Scale(f float64) Vector { return Vector(complex(f, 0)) * v }
func (v Vector) G1() float64            { return real(complex128(v)) }
func (v Vector) G2() float64            { return imag(complex128(v)) }
func (v Vector) Abs() float64           { return cmplx.Abs(complex128(v)) }

// Counts returns n empty payloads, one per point.
func Counts(n int) []Count { return make([]Count, n) }

// Scalars converts raw values into scalar payloads.
func Scalars(k []float64) ([]Scalar, error) {
	out := make([]Scalar, len(k))
	for i, v := range k {
		if !isFinite(v) {
			return nil, fmt.Errorf("%w: non-finite scalar at index %d", ErrInvalidInput, i)
		}
		out[i] = Scalar(v)
	}
	return out, nil
}

// Vectors converts parallel component arrays into vector payloads.
func Vectors(g1, g2 []float64) ([]Vector, error) {
	if len(g1) != len(g2) {
		return nil, fmt.Errorf("%w: len(g1) = %d, len(g2) = %d", ErrInvalidInput, len(g1), len(g2))
	}
	out := make([]Vector, len(g1))
	for i := range g1 {
		if !isFinite(g1[i]) || !isFinite(g2[i]) {
			return nil, fmt.Errorf("%w: non-finite vector at index %d", ErrInvalidInput, i)
		}
		out[i] = NewVector(g1[i], g2[i])
	}
	return out, nil
}
