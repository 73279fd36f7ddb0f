// Package imgutils normalizes images coming from cameras and disk into the
// concrete pixel layouts the back projector reads.
package imgutils

import (
	"image"
	"image/color"
	"image/draw"
)

// ToNRGBA returns img unchanged when it is already 8 bit rgb, otherwise a converted copy.
func ToNRGBA(img image.Image) image.Image {
	switch img.(type) {
	case *image.RGBA, *image.NRGBA, *image.YCbCr:
		return img
	}
	out := image.NewNRGBA(img.Bounds())
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Src)
	return out
}

// ToGray16 returns a 16 bit single channel copy of a depth image. *image.Gray16 and
// *image.Gray are passed through, raw values are kept as is.
func ToGray16(img image.Image) image.Image {
	switch img.(type) {
	case *image.Gray16, *image.Gray:
		return img
	}
	bounds := img.Bounds()
	out := image.NewGray16(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			out.SetGray16(x, y, color.Gray16Model.Convert(img.At(x, y)).(color.Gray16))
		}
	}
	return out
}

// ToGray turns a mask into *image.Gray. Any non black pixel stays non zero.
func ToGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	bounds := img.Bounds()
	out := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			if r|g|b == 0 {
				continue
			}
			out.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	return out
}

// MaskCoverage is the fraction of pixels in the mask that are kept.
func MaskCoverage(img image.Image) float64 {
	bounds := img.Bounds()

	kept := 0.0
	numPixels := 0.0

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			grayColor := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
			if grayColor.Y != 0 {
				kept++
			}
			numPixels++
		}
	}

	if numPixels == 0 {
		return 0
	}
	return kept / numPixels
}
