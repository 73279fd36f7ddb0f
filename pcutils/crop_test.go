package pcutils

import (
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestCrop(t *testing.T) {
	c := Cloud{
		NewPoint(0, 0, 0, 1, 0, 0),
		NewPoint(1, 1, 1, 2, 0, 0),
		NewPoint(2, 0, 0, 3, 0, 0),
		NewPoint(.5, .5, -.1, 4, 0, 0),
	}

	b := Box{Min: r3.Vector{}, Max: r3.Vector{X: 1, Y: 1, Z: 1}}
	test.That(t, b.Validate("crop"), test.ShouldBeNil)

	out := Crop(c, b)
	test.That(t, len(out), test.ShouldEqual, 2)
	test.That(t, out[0].Color.R, test.ShouldEqual, 1)
	test.That(t, out[1].Color.R, test.ShouldEqual, 2)

	test.That(t, Box{Min: r3.Vector{X: 2}, Max: r3.Vector{X: 1}}.Validate("crop"), test.ShouldNotBeNil)
	test.That(t, len(Crop(Cloud{}, b)), test.ShouldEqual, 0)
}
