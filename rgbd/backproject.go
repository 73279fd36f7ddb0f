package rgbd

import (
	"image"
	"image/color"

	"github.com/pkg/errors"

	"github.com/erh/rgbdgrasp/pcutils"
)

// Frame is one RGB-D capture. Color must be 8 bit rgb (*image.RGBA, *image.NRGBA or
// *image.YCbCr), Depth single channel integer (*image.Gray16 or *image.Gray) in raw
// sensor units with 0 meaning no return. Mask is optional (*image.Gray), 0 excludes
// the pixel.
type Frame struct {
	Color image.Image
	Depth image.Image
	Mask  image.Image
}

type pixelReaders struct {
	width, height int
	rgb           func(u, v int) (uint8, uint8, uint8)
	depth         func(u, v int) uint32
	keep          func(u, v int) bool
}

func (f Frame) readers() (pixelReaders, error) {
	pr := pixelReaders{}

	if f.Color == nil {
		return pr, errors.Wrap(ErrInvalidColorFormat, "no color image")
	}
	if f.Depth == nil {
		return pr, errors.Wrap(ErrInvalidDepthFormat, "no depth image")
	}

	cb := f.Color.Bounds()
	db := f.Depth.Bounds()
	if cb.Size() != db.Size() {
		return pr, errors.Wrapf(ErrDimensionMismatch, "color %v depth %v", cb.Size(), db.Size())
	}
	if f.Mask != nil && f.Mask.Bounds().Size() != cb.Size() {
		return pr, errors.Wrapf(ErrDimensionMismatch, "color %v mask %v", cb.Size(), f.Mask.Bounds().Size())
	}
	pr.width = cb.Dx()
	pr.height = cb.Dy()

	switch img := f.Color.(type) {
	case *image.RGBA:
		// premultiplied, so translucent pixels need converting
		pr.rgb = func(u, v int) (uint8, uint8, uint8) {
			c := img.RGBAAt(cb.Min.X+u, cb.Min.Y+v)
			if c.A == 255 {
				return c.R, c.G, c.B
			}
			n := color.NRGBAModel.Convert(c).(color.NRGBA)
			return n.R, n.G, n.B
		}
	case *image.NRGBA:
		pr.rgb = func(u, v int) (uint8, uint8, uint8) {
			i := img.PixOffset(cb.Min.X+u, cb.Min.Y+v)
			return img.Pix[i], img.Pix[i+1], img.Pix[i+2]
		}
	case *image.YCbCr:
		pr.rgb = func(u, v int) (uint8, uint8, uint8) {
			c := img.YCbCrAt(cb.Min.X+u, cb.Min.Y+v)
			return color.YCbCrToRGB(c.Y, c.Cb, c.Cr)
		}
	default:
		return pr, errors.Wrapf(ErrInvalidColorFormat, "got %T", f.Color)
	}

	switch img := f.Depth.(type) {
	case *image.Gray16:
		pr.depth = func(u, v int) uint32 {
			return uint32(img.Gray16At(db.Min.X+u, db.Min.Y+v).Y)
		}
	case *image.Gray:
		pr.depth = func(u, v int) uint32 {
			return uint32(img.GrayAt(db.Min.X+u, db.Min.Y+v).Y)
		}
	default:
		return pr, errors.Wrapf(ErrInvalidDepthFormat, "got %T", f.Depth)
	}

	if f.Mask == nil {
		pr.keep = func(u, v int) bool { return true }
	} else {
		img, ok := f.Mask.(*image.Gray)
		if !ok {
			return pr, errors.Wrapf(ErrInvalidMaskFormat, "got %T", f.Mask)
		}
		mb := img.Bounds()
		pr.keep = func(u, v int) bool {
			return img.GrayAt(mb.Min.X+u, mb.Min.Y+v).Y != 0
		}
	}

	return pr, nil
}

// backProject calls fn for every valid pixel, rows first.
func backProject(f Frame, in Intrinsics, fn func(p pcutils.Point)) error {
	if err := in.Validate("intrinsics"); err != nil {
		return err
	}
	pr, err := f.readers()
	if err != nil {
		return err
	}

	for v := 0; v < pr.height; v++ {
		for u := 0; u < pr.width; u++ {
			raw := pr.depth(u, v)
			if raw == 0 || !pr.keep(u, v) {
				continue
			}
			r, g, b := pr.rgb(u, v)
			fn(pcutils.Point{
				Vector: in.PixelToPoint(float64(u), float64(v), float64(raw)),
				Color:  color.NRGBA{R: r, G: g, B: b, A: 255},
			})
		}
	}
	return nil
}

// BackProject turns one frame into camera frame points, one per pixel with depth
// (and a non zero mask when there is one).
func BackProject(f Frame, in Intrinsics) (pcutils.Cloud, error) {
	out := pcutils.Cloud{}
	err := backProject(f, in, func(p pcutils.Point) {
		out = append(out, p)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
