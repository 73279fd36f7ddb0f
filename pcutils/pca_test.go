package pcutils

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"
)

func boxPoints() []r3.Vector {
	pts := []r3.Vector{}
	for x := -2.0; x <= 2; x += .5 {
		for y := -1.0; y <= 1; y += .5 {
			for z := -.25; z <= .25; z += .25 {
				pts = append(pts, r3.Vector{X: x, Y: y, Z: z})
			}
		}
	}
	return pts
}

func vectorAlmostEqual(t *testing.T, a, b r3.Vector) {
	t.Helper()
	test.That(t, a.X, test.ShouldAlmostEqual, b.X, 1e-6)
	test.That(t, a.Y, test.ShouldAlmostEqual, b.Y, 1e-6)
	test.That(t, a.Z, test.ShouldAlmostEqual, b.Z, 1e-6)
}

func TestPrincipalAxesBox(t *testing.T) {
	pts := boxPoints()

	a, err := PrincipalAxes(pts, GripperPolicy)
	test.That(t, err, test.ShouldBeNil)

	vectorAlmostEqual(t, a.Centroid, r3.Vector{})
	vectorAlmostEqual(t, a.Vectors[0], r3.Vector{X: 1})
	vectorAlmostEqual(t, a.Vectors[1], r3.Vector{Y: -1})
	vectorAlmostEqual(t, a.Vectors[2], r3.Vector{Z: -1})

	test.That(t, a.Variances[0], test.ShouldAlmostEqual, 15.0*15/float64(len(pts)-1), 1e-9)
	test.That(t, a.Variances[0], test.ShouldBeGreaterThan, a.Variances[1])
	test.That(t, a.Variances[1], test.ShouldBeGreaterThan, a.Variances[2])
}

func TestPrincipalAxesRotated(t *testing.T) {
	angle := math.Pi / 6
	c := RotateZ(FromXYZ(boxPoints()), angle)
	// shift away from the origin, axes do not care
	for i := range c {
		c[i].Vector = c[i].Add(r3.Vector{X: 3, Y: -2, Z: 1})
	}

	a, err := PrincipalAxes(c.XYZ(), GripperPolicy)
	test.That(t, err, test.ShouldBeNil)

	vectorAlmostEqual(t, a.Centroid, r3.Vector{X: 3, Y: -2, Z: 1})
	vectorAlmostEqual(t, a.Vectors[0], r3.Vector{X: math.Cos(angle), Y: math.Sin(angle)})
	vectorAlmostEqual(t, a.Vectors[2], r3.Vector{Z: -1})
	vectorAlmostEqual(t, a.Vectors[1].Cross(a.Vectors[2]), a.Vectors[0])

	// pointing the other way flips primary and secondary around the tertiary axis
	c = RotateZ(c, math.Pi)
	b, err := PrincipalAxes(c.XYZ(), GripperPolicy)
	test.That(t, err, test.ShouldBeNil)
	vectorAlmostEqual(t, b.Vectors[0], a.Vectors[0])
	vectorAlmostEqual(t, b.Vectors[1], a.Vectors[1])
}

func TestPrincipalAxesDeterministic(t *testing.T) {
	c := RotateZ(FromXYZ(boxPoints()), 1.1)
	pts := c.XYZ()

	a, err := PrincipalAxes(pts, GripperPolicy)
	test.That(t, err, test.ShouldBeNil)
	b, err := PrincipalAxes(pts, GripperPolicy)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, b, test.ShouldResemble, a)

	for _, v := range a.Vectors {
		test.That(t, v.Norm(), test.ShouldAlmostEqual, 1, 1e-9)
	}
	test.That(t, a.Vectors[0].Dot(a.Vectors[1]), test.ShouldAlmostEqual, 0, 1e-9)
	test.That(t, a.Vectors[1].Dot(a.Vectors[2]), test.ShouldAlmostEqual, 0, 1e-9)
	test.That(t, mathDet(a), test.ShouldAlmostEqual, 1, 1e-9)
}

func TestPrincipalAxesPolicy(t *testing.T) {
	up := AxisPolicy{Down: r3.Vector{Z: 1}, Forward: r3.Vector{Y: 1}}
	a, err := PrincipalAxes(boxPoints(), up)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, a.Vectors[2].Z, test.ShouldAlmostEqual, 1, 1e-6)
	// X can not agree with +Y, it stays where the right handed rule puts it
	test.That(t, math.Abs(a.Vectors[0].X), test.ShouldAlmostEqual, 1, 1e-6)
	vectorAlmostEqual(t, a.Vectors[1].Cross(a.Vectors[2]), a.Vectors[0])
}

func TestPrincipalAxesDegenerate(t *testing.T) {
	_, err := PrincipalAxes([]r3.Vector{{X: 1}, {Y: 1}}, GripperPolicy)
	test.That(t, errors.Is(err, ErrDegenerateGeometry), test.ShouldBeTrue)

	line := []r3.Vector{}
	for i := 0; i < 10; i++ {
		line = append(line, r3.Vector{X: float64(i), Y: 2 * float64(i), Z: 1})
	}
	_, err = PrincipalAxes(line, GripperPolicy)
	test.That(t, errors.Is(err, ErrDegenerateGeometry), test.ShouldBeTrue)

	plane := []r3.Vector{}
	for x := 0; x < 5; x++ {
		for y := 0; y < 5; y++ {
			plane = append(plane, r3.Vector{X: float64(x), Y: float64(y)})
		}
	}
	_, err = PrincipalAxes(plane, GripperPolicy)
	test.That(t, errors.Is(err, ErrDegenerateGeometry), test.ShouldBeTrue)
}

func TestPlotAxes(t *testing.T) {
	c := RotateZ(FromXYZ(boxPoints()), .4)
	a, err := PrincipalAxes(c.XYZ(), GripperPolicy)
	test.That(t, err, test.ShouldBeNil)

	fn := filepath.Join(t.TempDir(), "axes.png")
	test.That(t, PlotAxes(c, a, fn), test.ShouldBeNil)
}

func mathDet(a Axes) float64 {
	return a.Vectors[0].Dot(a.Vectors[1].Cross(a.Vectors[2]))
}
