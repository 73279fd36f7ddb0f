package pcutils

import (
	"image"
	"image/color"
	"math"
)

// ToImage renders a top down view, one pixel per metersPerPixel square, keeping
// the highest point in each pixel. Image y grows with -Y so +Y is up.
func ToImage(c Cloud, metersPerPixel float64) image.Image {
	if len(c) == 0 || metersPerPixel <= 0 {
		return image.NewNRGBA(image.Rect(0, 0, 1, 1))
	}

	lo, hi := c.Bounds()
	w := int(math.Floor((hi.X-lo.X)/metersPerPixel)) + 1
	h := int(math.Floor((hi.Y-lo.Y)/metersPerPixel)) + 1

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	bestZ := make([]float64, w*h)
	for i := range bestZ {
		bestZ[i] = math.Inf(-1)
	}

	for _, p := range c {
		x := int(math.Floor((p.X - lo.X) / metersPerPixel))
		y := h - 1 - int(math.Floor((p.Y-lo.Y)/metersPerPixel))

		key := y*w + x
		if p.Z < bestZ[key] {
			continue
		}
		bestZ[key] = p.Z

		clr := p.Color
		if clr == (color.NRGBA{}) {
			clr = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
		}
		img.SetNRGBA(x, y, clr)
	}

	return img
}
