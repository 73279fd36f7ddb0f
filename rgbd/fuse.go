package rgbd

import (
	"fmt"
	"image"
	"sync"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/rdk/pointcloud"
	"go.viam.com/rdk/spatialmath"
	goutils "go.viam.com/utils"

	"github.com/erh/rgbdgrasp/pcutils"
)

// View is a frame together with the camera pose it was captured from.
type View struct {
	Pose  Transform
	Frame Frame
}

// Fuse back projects every frame and moves the points into the world frame.
// The result keeps frame order, then pixel order within a frame.
func Fuse(poses []Transform, colors, depths []image.Image, in Intrinsics) (pcutils.Cloud, []r3.Vector, error) {
	if len(poses) != len(colors) || len(poses) != len(depths) {
		return nil, nil, errors.Wrapf(ErrSequenceLengthMismatch,
			"poses %d colors %d depths %d", len(poses), len(colors), len(depths))
	}
	return fuseViews(poses, colors, depths, nil, in)
}

// FuseMasked is Fuse with a per frame mask, zero mask pixels are dropped.
func FuseMasked(poses []Transform, colors, depths, masks []image.Image, in Intrinsics) (pcutils.Cloud, []r3.Vector, error) {
	if len(poses) != len(colors) || len(poses) != len(depths) || len(poses) != len(masks) {
		return nil, nil, errors.Wrapf(ErrSequenceLengthMismatch,
			"poses %d colors %d depths %d masks %d", len(poses), len(colors), len(depths), len(masks))
	}
	return fuseViews(poses, colors, depths, masks, in)
}

func fuseViews(poses []Transform, colors, depths, masks []image.Image, in Intrinsics) (pcutils.Cloud, []r3.Vector, error) {
	views := make([]View, len(poses))
	for i := range poses {
		views[i] = View{
			Pose:  poses[i],
			Frame: Frame{Color: colors[i], Depth: depths[i]},
		}
		if masks != nil {
			views[i].Frame.Mask = masks[i]
		}
	}
	c, err := FuseViews(views, in)
	if err != nil {
		return nil, nil, err
	}
	return c, c.XYZ(), nil
}

// FuseViews fuses views concurrently. Any failing view fails the whole call.
func FuseViews(views []View, in Intrinsics) (pcutils.Cloud, error) {
	if err := in.Validate("intrinsics"); err != nil {
		return nil, err
	}

	parts := make([]pcutils.Cloud, len(views))
	errs := make([]error, len(views))

	var wg sync.WaitGroup
	for i, v := range views {
		wg.Add(1)
		// Done runs only once errs[i] or parts[i] is set, panics included.
		goutils.PanicCapturingGoWithCallback(func() {
			part := pcutils.Cloud{}
			err := backProject(v.Frame, in, func(p pcutils.Point) {
				p.Vector = v.Pose.Apply(p.Vector)
				part = append(part, p)
			})
			if err != nil {
				errs[i] = errors.Wrapf(err, "frame %d", i)
			} else {
				parts[i] = part
			}
			wg.Done()
		}, func(r interface{}) {
			errs[i] = fmt.Errorf("frame %d panicked: %v", i, r)
			wg.Done()
		})
	}
	wg.Wait()

	if err := multierr.Combine(errs...); err != nil {
		return nil, err
	}

	total := 0
	for _, p := range parts {
		total += len(p)
	}
	out := make(pcutils.Cloud, 0, total)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out, nil
}

// FusePointClouds merges rdk clouds, each given in its own camera frame, into the
// world frame. Poses are in millimeters like the clouds.
func FusePointClouds(pcs []pointcloud.PointCloud, poses []spatialmath.Pose) (pointcloud.PointCloud, error) {
	if len(pcs) != len(poses) {
		return nil, errors.Wrapf(ErrSequenceLengthMismatch, "clouds %d poses %d", len(pcs), len(poses))
	}

	totalSize := 0
	for _, pc := range pcs {
		totalSize += pc.Size()
	}

	big := pointcloud.NewBasicPointCloud(totalSize)
	for i, pc := range pcs {
		err := pointcloud.ApplyOffset(pc, poses[i], big)
		if err != nil {
			return nil, errors.Wrapf(err, "cloud %d", i)
		}
	}
	return big, nil
}
