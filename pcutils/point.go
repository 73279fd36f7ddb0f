// Package pcutils holds the point cloud value type and the algorithms that run on it:
// reduction, outlier rejection, principal axes and furthest point sampling.
// Positions are in meters.
package pcutils

import (
	"image/color"

	"github.com/golang/geo/r3"
)

type Point struct {
	r3.Vector
	Color color.NRGBA
}

func NewPoint(x, y, z float64, r, g, b uint8) Point {
	return Point{
		Vector: r3.Vector{X: x, Y: y, Z: z},
		Color:  color.NRGBA{R: r, G: g, B: b, A: 255},
	}
}

// Cloud is an ordered list of points. Duplicates are allowed.
type Cloud []Point

func (c Cloud) XYZ() []r3.Vector {
	out := make([]r3.Vector, len(c))
	for i, p := range c {
		out[i] = p.Vector
	}
	return out
}

// FromXYZ builds an uncolored cloud.
func FromXYZ(pts []r3.Vector) Cloud {
	out := make(Cloud, len(pts))
	for i, p := range pts {
		out[i] = Point{Vector: p}
	}
	return out
}

func (c Cloud) Select(indices []int) Cloud {
	out := make(Cloud, 0, len(indices))
	for _, i := range indices {
		out = append(out, c[i])
	}
	return out
}

// Bounds returns the axis aligned min and max corners. Empty clouds return zero vectors.
func (c Cloud) Bounds() (r3.Vector, r3.Vector) {
	if len(c) == 0 {
		return r3.Vector{}, r3.Vector{}
	}
	lo := c[0].Vector
	hi := c[0].Vector
	for _, p := range c[1:] {
		lo = r3.Vector{X: min(lo.X, p.X), Y: min(lo.Y, p.Y), Z: min(lo.Z, p.Z)}
		hi = r3.Vector{X: max(hi.X, p.X), Y: max(hi.Y, p.Y), Z: max(hi.Z, p.Z)}
	}
	return lo, hi
}
