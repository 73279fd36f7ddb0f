package rgbd

import (
	"context"
	"image"
	"image/color"

	"github.com/pkg/errors"

	"go.viam.com/rdk/components/camera"

	"github.com/erh/rgbdgrasp/imgutils"
)

const (
	DefaultColorSource = "color"
	DefaultDepthSource = "depth"
)

// CameraFrameSource reads color and depth from a single rdk camera that returns both
// from Images, like a realsense.
type CameraFrameSource struct {
	cam         camera.Camera
	colorSource string
	depthSource string
}

// NewCameraFrameSource uses the default source names when colorSource or depthSource are empty.
func NewCameraFrameSource(cam camera.Camera, colorSource, depthSource string) *CameraFrameSource {
	if colorSource == "" {
		colorSource = DefaultColorSource
	}
	if depthSource == "" {
		depthSource = DefaultDepthSource
	}
	return &CameraFrameSource{cam: cam, colorSource: colorSource, depthSource: depthSource}
}

func (cfs *CameraFrameSource) Start(ctx context.Context) error {
	_, err := cfs.cam.Properties(ctx)
	return err
}

func (cfs *CameraFrameSource) Stop(ctx context.Context) error {
	return nil
}

func (cfs *CameraFrameSource) NextFrame(ctx context.Context) (Frame, error) {
	imgs, _, err := cfs.cam.Images(ctx, nil, nil)
	if err != nil {
		return Frame{}, err
	}

	decoded := map[string]image.Image{}
	order := []string{}
	for _, ni := range imgs {
		img, err := ni.Image(ctx)
		if err != nil {
			return Frame{}, errors.Wrapf(err, "cannot decode image from %s", ni.SourceName)
		}
		decoded[ni.SourceName] = img
		order = append(order, ni.SourceName)
	}

	colorImg, depthImg := decoded[cfs.colorSource], decoded[cfs.depthSource]

	// unnamed sources, tell them apart by color model
	for _, n := range order {
		img := decoded[n]
		isDepth := img.ColorModel() == color.Gray16Model
		if depthImg == nil && isDepth {
			depthImg = img
		}
		if colorImg == nil && !isDepth {
			colorImg = img
		}
	}

	if colorImg == nil {
		return Frame{}, errors.Wrapf(ErrInvalidColorFormat, "no color image in %v", order)
	}
	if depthImg == nil {
		return Frame{}, errors.Wrapf(ErrInvalidDepthFormat, "no depth image in %v", order)
	}

	return Frame{
		Color: imgutils.ToNRGBA(colorImg),
		Depth: imgutils.ToGray16(depthImg),
	}, nil
}
