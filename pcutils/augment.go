package pcutils

import (
	"math"
	"math/rand"

	"github.com/golang/geo/r3"
)

func centroidOf(pts []r3.Vector) r3.Vector {
	var sum r3.Vector
	for _, p := range pts {
		sum = sum.Add(p)
	}
	return sum.Mul(1 / float64(len(pts)))
}

// Centroid is the mean position. It is the zero vector for an empty cloud.
func Centroid(c Cloud) r3.Vector {
	if len(c) == 0 {
		return r3.Vector{}
	}
	return centroidOf(c.XYZ())
}

// NormalizeToUnitSphere centers the cloud on its centroid and scales it so the
// furthest point is at distance 1.
func NormalizeToUnitSphere(c Cloud) Cloud {
	if len(c) == 0 {
		return Cloud{}
	}
	center := Centroid(c)

	furthest := 0.0
	for _, p := range c {
		furthest = math.Max(furthest, p.Sub(center).Norm())
	}
	scale := 1.0
	if furthest > 0 {
		scale = 1 / furthest
	}

	out := make(Cloud, len(c))
	for i, p := range c {
		out[i] = Point{Vector: p.Sub(center).Mul(scale), Color: p.Color}
	}
	return out
}

// RotateZ rotates every point by angle radians about the Z axis.
func RotateZ(c Cloud, angle float64) Cloud {
	sin, cos := math.Sincos(angle)
	out := make(Cloud, len(c))
	for i, p := range c {
		out[i] = Point{
			Vector: r3.Vector{
				X: cos*p.X - sin*p.Y,
				Y: sin*p.X + cos*p.Y,
				Z: p.Z,
			},
			Color: p.Color,
		}
	}
	return out
}

// RandomRotateZ is RotateZ with a uniformly random angle, for augmentation.
func RandomRotateZ(c Cloud, rng *rand.Rand) Cloud {
	return RotateZ(c, rng.Float64()*2*math.Pi)
}

// Jitter adds gaussian noise with the given sigma to every coordinate, clipped to [-clip, clip].
func Jitter(c Cloud, sigma, clip float64, rng *rand.Rand) Cloud {
	noise := func() float64 {
		return math.Max(-clip, math.Min(clip, sigma*rng.NormFloat64()))
	}
	out := make(Cloud, len(c))
	for i, p := range c {
		out[i] = Point{
			Vector: p.Add(r3.Vector{X: noise(), Y: noise(), Z: noise()}),
			Color:  p.Color,
		}
	}
	return out
}
