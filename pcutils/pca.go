package pcutils

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Axes are the principal directions of a cloud, strongest first.
type Axes struct {
	Centroid  r3.Vector
	Vectors   [3]r3.Vector
	Variances [3]float64
}

// Matrix returns a 3x3 matrix with one axis per row.
func (a Axes) Matrix() *mat.Dense {
	m := mat.NewDense(3, 3, nil)
	for i, v := range a.Vectors {
		m.SetRow(i, []float64{v.X, v.Y, v.Z})
	}
	return m
}

// AxisPolicy picks a canonical sign for the axes. The tertiary axis is made to
// agree with Down and the primary axis with Forward. A zero vector skips that rule.
type AxisPolicy struct {
	Down    r3.Vector `json:"down"`
	Forward r3.Vector `json:"forward"`
}

// GripperPolicy points the tertiary axis down and keeps the primary axis toward +X
// so the end effector does not have to turn around.
var GripperPolicy = AxisPolicy{
	Down:    r3.Vector{Z: -1},
	Forward: r3.Vector{X: 1},
}

// PrincipalAxes fits the 3 principal components of pts and re-orients them with policy.
func PrincipalAxes(pts []r3.Vector, policy AxisPolicy) (Axes, error) {
	if len(pts) < 3 {
		return Axes{}, errors.Wrapf(ErrDegenerateGeometry, "need at least 3 points, got %d", len(pts))
	}

	data := mat.NewDense(len(pts), 3, nil)
	for i, p := range pts {
		data.SetRow(i, []float64{p.X, p.Y, p.Z})
	}

	cov := mat.NewSymDense(3, nil)
	stat.CovarianceMatrix(cov, data, nil)

	var eig mat.EigenSym
	if !eig.Factorize(cov, true) {
		return Axes{}, errors.Wrap(ErrDegenerateGeometry, "eigen decomposition failed")
	}

	// ascending
	values := eig.Values(nil)
	vectors := mat.NewDense(3, 3, nil)
	eig.VectorsTo(vectors)

	if !(values[2] > 0) || values[0] <= 1e-12*values[2] {
		return Axes{}, errors.Wrapf(ErrDegenerateGeometry, "covariance is rank deficient, variances %v", values)
	}

	a := Axes{Centroid: centroidOf(pts)}
	for i := 0; i < 3; i++ {
		col := 2 - i
		a.Vectors[i] = r3.Vector{X: vectors.At(0, col), Y: vectors.At(1, col), Z: vectors.At(2, col)}.Normalize()
		a.Variances[i] = values[col]
	}

	return policy.apply(a), nil
}

func (p AxisPolicy) apply(a Axes) Axes {
	if p.Down != (r3.Vector{}) && a.Vectors[2].Dot(p.Down) < 0 {
		a.Vectors[2] = a.Vectors[2].Mul(-1)
	}

	// keep the frame right handed
	expected := a.Vectors[1].Cross(a.Vectors[2])
	if !allClose(a.Vectors[0], expected) {
		a.Vectors[0] = expected
	}

	if p.Forward != (r3.Vector{}) && a.Vectors[0].Dot(p.Forward) < 0 {
		// 180 degrees about the tertiary axis
		a.Vectors[0] = a.Vectors[0].Mul(-1)
		a.Vectors[1] = a.Vectors[1].Mul(-1)
	}
	return a
}

func allClose(a, b r3.Vector) bool {
	const rtol, atol = 1e-5, 1e-8
	near := func(x, y float64) bool {
		return math.Abs(x-y) <= atol+rtol*math.Abs(y)
	}
	return near(a.X, b.X) && near(a.Y, b.Y) && near(a.Z, b.Z)
}
