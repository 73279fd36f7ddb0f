package pcutils

import (
	"image/color"
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// Downsampler reduces a cloud. Implementations reject their own bad parameters
// before touching the cloud.
type Downsampler interface {
	Downsample(c Cloud) (Cloud, error)
}

// VoxelDownsample keeps the centroid of every occupied cell of a regular grid.
type VoxelDownsample struct {
	Size float64
}

type voxelKey struct {
	x, y, z int64
}

type voxelAccum struct {
	sum     r3.Vector
	r, g, b uint64
	n       int
}

func (vd VoxelDownsample) Validate() error {
	if !(vd.Size > 0) || math.IsInf(vd.Size, 1) {
		return errors.Wrapf(ErrInvalidDownsampleConfig, "voxel_size must be > 0 and finite, got %v", vd.Size)
	}
	return nil
}

func (vd VoxelDownsample) Downsample(c Cloud) (Cloud, error) {
	if err := vd.Validate(); err != nil {
		return nil, err
	}
	if len(c) == 0 {
		return Cloud{}, nil
	}

	lo, _ := c.Bounds()

	cells := map[voxelKey]*voxelAccum{}
	order := []voxelKey{}

	for _, p := range c {
		k := voxelKey{
			int64(math.Floor((p.X - lo.X) / vd.Size)),
			int64(math.Floor((p.Y - lo.Y) / vd.Size)),
			int64(math.Floor((p.Z - lo.Z) / vd.Size)),
		}
		a, ok := cells[k]
		if !ok {
			a = &voxelAccum{}
			cells[k] = a
			order = append(order, k)
		}
		a.sum = a.sum.Add(p.Vector)
		a.r += uint64(p.Color.R)
		a.g += uint64(p.Color.G)
		a.b += uint64(p.Color.B)
		a.n++
	}

	out := make(Cloud, 0, len(order))
	for _, k := range order {
		a := cells[k]
		n := float64(a.n)
		out = append(out, Point{
			Vector: a.sum.Mul(1 / n),
			Color: color.NRGBA{
				R: uint8(math.Round(float64(a.r) / n)),
				G: uint8(math.Round(float64(a.g) / n)),
				B: uint8(math.Round(float64(a.b) / n)),
				A: 255,
			},
		})
	}
	return out, nil
}

// UniformDownsample keeps every k-th point in input order, starting with the first.
type UniformDownsample struct {
	EveryK int
}

func (ud UniformDownsample) Validate() error {
	if ud.EveryK < 1 {
		return errors.Wrapf(ErrInvalidDownsampleConfig, "every_k_points must be >= 1, got %d", ud.EveryK)
	}
	return nil
}

func (ud UniformDownsample) Downsample(c Cloud) (Cloud, error) {
	if err := ud.Validate(); err != nil {
		return nil, err
	}
	out := make(Cloud, 0, len(c)/ud.EveryK+1)
	for i := 0; i < len(c); i += ud.EveryK {
		out = append(out, c[i])
	}
	return out, nil
}

const (
	DownsampleVoxel   = "voxel"
	DownsampleUniform = "uniform"
)

// DownsampleConfig is the json form, for example {"method": "voxel", "voxel_size": 0.02}.
type DownsampleConfig struct {
	Method       string  `json:"method"`
	VoxelSize    float64 `json:"voxel_size,omitempty"`
	EveryKPoints int     `json:"every_k_points,omitempty"`
}

func (c *DownsampleConfig) Build() (Downsampler, error) {
	switch c.Method {
	case DownsampleVoxel:
		vd := VoxelDownsample{Size: c.VoxelSize}
		if err := vd.Validate(); err != nil {
			return nil, err
		}
		return vd, nil
	case DownsampleUniform:
		ud := UniformDownsample{EveryK: c.EveryKPoints}
		if err := ud.Validate(); err != nil {
			return nil, err
		}
		return ud, nil
	case "":
		return nil, errors.Wrap(ErrInvalidDownsampleConfig, "no method")
	default:
		return nil, errors.Wrapf(ErrInvalidDownsampleConfig, "unknown method %q", c.Method)
	}
}

func (c *DownsampleConfig) Validate(path string) error {
	_, err := c.Build()
	if err != nil {
		return errors.Wrap(err, path)
	}
	return nil
}
