package celltree

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Position is the coordinate-system capability a tree is parameterized over.
// Implementations are small value types; all methods return new values.
type Position[P any] interface {
	// Add returns the component-wise sum of the receiver and q.
	Add(q P) P
	// Scale returns the receiver multiplied by f.
	Scale(f float64) P
	// Normalize turns a weighted sum of positions into the weighted centroid
	// for the given total weight.
	Normalize(totalWeight float64) P
	// DistSq returns the squared metric distance to q.
	DistSq(q P) float64
	// Axis returns the coordinate along axis i, 0 <= i < NumAxes().
	Axis(i int) float64
	// NumAxes is the number of axes a split may choose from.
	NumAxes() int
}

// Flat is a position on the Euclidean plane.
type Flat r2.Vec

// NewFlat returns the planar position (x, y).
func NewFlat(x, y float64) Flat { return Flat{X: x, Y: y} }

func (p Flat) Add(q Flat) Flat          { return Flat(r2.Add(r2.Vec(p), r2.Vec(q))) }
func (p Flat) Scale(f float64) Flat     { return Flat(r2.Scale(f, r2.Vec(p))) }
func (p Flat) DistSq(q Flat) float64    { return r2.Norm2(r2.Sub(r2.Vec(p), r2.Vec(q))) }
func (Flat) NumAxes() int               { return 2 }
func (p Flat) String() string           { return fmt.Sprintf("(%g, %g)", p.X, p.Y) }
func (p Flat) Normalize(w float64) Flat { return p.Scale(1 / w) }

func (p Flat) Axis(i int) float64 {
	if i == 0 {
		return p.X
	}
	return p.Y
}

// Sphere is a position on the unit celestial sphere, stored as a Cartesian
// unit vector. Distances are chord lengths.
type Sphere r3.Vec

// NewSphere returns the position at right ascension ra and declination dec,
// both in radians.
func NewSphere(ra, dec float64) Sphere {
	cosdec := math.Cos(dec)
	return Sphere{
		X: cosdec * math.Cos(ra),
		Y: cosdec * math.Sin(ra),
		Z: math.Sin(dec),
	}
}

// RaDec returns the right ascension in [0, 2π) and declination of p in radians.
func (p Sphere) RaDec() (ra, dec float64) {
	ra = math.Atan2(p.Y, p.X)
	if ra < 0 {
		ra += 2 * math.Pi
	}
	dec = math.Atan2(p.Z, math.Hypot(p.X, p.Y))
	return ra, dec
}

func (p Sphere) Add(q Sphere) Sphere      { return Sphere(r3.Add(r3.Vec(p), r3.Vec(q))) }
func (p Sphere) Scale(f float64) Sphere   { return Sphere(r3.Scale(f, r3.Vec(p))) }
func (p Sphere) DistSq(q Sphere) float64  { return r3.Norm2(r3.Sub(r3.Vec(p), r3.Vec(q))) }
func (Sphere) NumAxes() int               { return 3 }
func (p Sphere) String() string           { return fmt.Sprintf("(%g, %g, %g)", p.X, p.Y, p.Z) }

// Normalize projects the weighted sum back onto the unit sphere. A sum that
// cancels out (points spread evenly around the sphere) keeps the plain mean.
func (p Sphere) Normalize(w float64) Sphere {
	norm := r3.Norm(r3.Vec(p))
	if norm == 0 || math.IsNaN(norm) {
		return p.Scale(1 / w)
	}
	return Sphere(r3.Unit(r3.Vec(p)))
}

func (p Sphere) Axis(i int) float64 {
	switch i {
	case 0:
		return p.X
	case 1:
		return p.Y
	default:
		return p.Z
	}
}

// FlatPositions converts parallel x and y arrays into planar positions.
func FlatPositions(x, y []float64) ([]Flat, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("%w: len(x) = %d, len(y) = %d", ErrInvalidInput, len(x), len(y))
	}
	out := make([]Flat, len(x))
	for i := range x {
		if !isFinite(x[i]) || !isFinite(y[i]) {
			return nil, fmt.Errorf("%w: non-finite position at index %d", ErrInvalidInput, i)
		}
		out[i] = NewFlat(x[i], y[i])
	}
	return out, nil
}

// SpherePositions converts parallel ra and dec arrays (radians) into
// positions on the unit sphere.
func SpherePositions(ra, dec []float64) ([]Sphere, error) {
	if len(ra) != len(dec) {
		return nil, fmt.Errorf("%w: len(ra) = %d, len(dec) = %d", ErrInvalidInput, len(ra), len(dec))
	}
	out := make([]Sphere, len(ra))
	for i := range ra {
		if !isFinite(ra[i]) || !isFinite(dec[i]) {
			return nil, fmt.Errorf("%w: non-finite position at index %d", ErrInvalidInput, i)
		}
		if math.Abs(dec[i]) > math.Pi/2 {
			return nil, fmt.Errorf("%w: dec[%d] = %g outside [-π/2, π/2]", ErrInvalidInput, i, dec[i])
		}
		out[i] = NewSphere(ra[i], dec[i])
	}
	return out, nil
}

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
