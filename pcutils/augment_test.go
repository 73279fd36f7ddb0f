package pcutils

import (
	"math"
	"math/rand"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestNormalizeToUnitSphere(t *testing.T) {
	c := Cloud{
		NewPoint(1, 1, 1, 1, 2, 3),
		NewPoint(3, 1, 1, 0, 0, 0),
		NewPoint(2, 5, 1, 0, 0, 0),
		NewPoint(2, -3, 1, 0, 0, 0),
	}
	test.That(t, Centroid(c), test.ShouldResemble, r3.Vector{X: 2, Y: 1, Z: 1})

	n := NormalizeToUnitSphere(c)
	test.That(t, len(n), test.ShouldEqual, 4)
	test.That(t, n[0].Color, test.ShouldResemble, c[0].Color)

	furthest := 0.0
	for _, p := range n {
		furthest = math.Max(furthest, p.Norm())
	}
	test.That(t, furthest, test.ShouldAlmostEqual, 1)
	test.That(t, n[2].Y, test.ShouldAlmostEqual, 1)
	test.That(t, n[1].X, test.ShouldAlmostEqual, .25)

	test.That(t, len(NormalizeToUnitSphere(Cloud{})), test.ShouldEqual, 0)
}

func TestRotateZ(t *testing.T) {
	c := Cloud{NewPoint(1, 0, 2, 0, 0, 0)}
	r := RotateZ(c, math.Pi/2)
	test.That(t, r[0].X, test.ShouldAlmostEqual, 0)
	test.That(t, r[0].Y, test.ShouldAlmostEqual, 1)
	test.That(t, r[0].Z, test.ShouldEqual, 2)

	rr := RandomRotateZ(c, rand.New(rand.NewSource(3)))
	test.That(t, rr[0].Z, test.ShouldEqual, 2)
	test.That(t, math.Hypot(rr[0].X, rr[0].Y), test.ShouldAlmostEqual, 1)
}

func TestJitter(t *testing.T) {
	c := FromXYZ(boxPoints())
	j := Jitter(c, .01, .05, rand.New(rand.NewSource(9)))
	test.That(t, len(j), test.ShouldEqual, len(c))

	moved := false
	for i := range c {
		d := j[i].Sub(c[i].Vector)
		test.That(t, math.Abs(d.X), test.ShouldBeLessThanOrEqualTo, .05)
		test.That(t, math.Abs(d.Y), test.ShouldBeLessThanOrEqualTo, .05)
		test.That(t, math.Abs(d.Z), test.ShouldBeLessThanOrEqualTo, .05)
		if d.Norm() > 0 {
			moved = true
		}
	}
	test.That(t, moved, test.ShouldBeTrue)
}
