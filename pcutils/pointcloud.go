package pcutils

import (
	"image/color"

	"github.com/golang/geo/r3"

	"go.viam.com/rdk/pointcloud"
)

// rdk point clouds are in millimeters, Cloud is in meters.
const MillimetersPerMeter = 1000.0

// ToPointCloud converts to an rdk point cloud. rdk clouds are keyed by position,
// so coincident points collapse into one.
func ToPointCloud(c Cloud) (pointcloud.PointCloud, error) {
	pc := pointcloud.NewBasicPointCloud(len(c))
	for _, p := range c {
		err := pc.Set(p.Mul(MillimetersPerMeter), pointcloud.NewColoredData(p.Color))
		if err != nil {
			return nil, err
		}
	}
	return pc, nil
}

func FromPointCloud(pc pointcloud.PointCloud) Cloud {
	out := make(Cloud, 0, pc.Size())
	pc.Iterate(0, 0, func(p r3.Vector, d pointcloud.Data) bool {
		pt := Point{Vector: p.Mul(1 / MillimetersPerMeter)}
		if d != nil && d.HasColor() {
			r, g, b := d.RGB255()
			pt.Color = color.NRGBA{R: r, G: g, B: b, A: 255}
		}
		out = append(out, pt)
		return true
	})
	return out
}
