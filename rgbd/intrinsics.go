package rgbd

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/rdk/rimage/transform"
)

// Intrinsics are pinhole parameters plus the factor that turns raw depth units
// into meters, e.g. 0.001 for a sensor reporting millimeters.
type Intrinsics struct {
	Fx            float64 `json:"fx"`
	Fy            float64 `json:"fy"`
	Cx            float64 `json:"cx"`
	Cy            float64 `json:"cy"`
	ScalingFactor float64 `json:"scalingfactor"`
}

func NewIntrinsics(fx, fy, cx, cy, scalingFactor float64) (Intrinsics, error) {
	in := Intrinsics{Fx: fx, Fy: fy, Cx: cx, Cy: cy, ScalingFactor: scalingFactor}
	return in, in.Validate("")
}

// IntrinsicsFromPinhole adapts rdk camera properties.
func IntrinsicsFromPinhole(p *transform.PinholeCameraIntrinsics, scalingFactor float64) (Intrinsics, error) {
	if p == nil {
		return Intrinsics{}, errors.Wrap(ErrInvalidIntrinsics, "intrinsics cannot be null")
	}
	return NewIntrinsics(p.Fx, p.Fy, p.Ppx, p.Ppy, scalingFactor)
}

func (in Intrinsics) Validate(path string) error {
	for _, v := range []float64{in.Fx, in.Fy, in.Cx, in.Cy, in.ScalingFactor} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.Wrapf(ErrInvalidIntrinsics, "%s: non finite value in %+v", path, in)
		}
	}
	if !(in.Fx > 0) || !(in.Fy > 0) {
		return errors.Wrapf(ErrInvalidIntrinsics, "%s: focal lengths must be > 0, got fx=%v fy=%v", path, in.Fx, in.Fy)
	}
	if !(in.ScalingFactor > 0) {
		return errors.Wrapf(ErrInvalidIntrinsics, "%s: scalingfactor must be > 0, got %v", path, in.ScalingFactor)
	}
	return nil
}

// PixelToPoint back projects pixel (u, v) with a raw depth reading into the camera frame.
func (in Intrinsics) PixelToPoint(u, v float64, rawDepth float64) r3.Vector {
	z := rawDepth * in.ScalingFactor
	return r3.Vector{
		X: (u - in.Cx) * z / in.Fx,
		Y: (v - in.Cy) * z / in.Fy,
		Z: z,
	}
}
