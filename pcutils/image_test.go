package pcutils

import (
	"image"
	"image/color"
	"testing"

	"go.viam.com/test"
)

func TestToImage(t *testing.T) {
	c := Cloud{
		NewPoint(0, 0, 0, 255, 0, 0),
		NewPoint(0, 0, 1, 0, 255, 0),
		NewPoint(.025, .015, 0, 0, 0, 255),
	}

	img := ToImage(c, .01)
	test.That(t, img.Bounds(), test.ShouldResemble, image.Rect(0, 0, 3, 2))

	nrgba := img.(*image.NRGBA)
	test.That(t, nrgba.NRGBAAt(0, 1), test.ShouldResemble, color.NRGBA{G: 255, A: 255})
	test.That(t, nrgba.NRGBAAt(2, 0), test.ShouldResemble, color.NRGBA{B: 255, A: 255})
	test.That(t, nrgba.NRGBAAt(1, 0), test.ShouldResemble, color.NRGBA{})

	test.That(t, ToImage(Cloud{}, .01).Bounds().Dx(), test.ShouldEqual, 1)
}
