package rgbd

import (
	"testing"
	"time"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/erh/rgbdgrasp/pcutils"
)

func TestFuseCameraConfig(t *testing.T) {
	cfg := &FuseCameraConfig{}
	_, _, err := cfg.Validate("")
	test.That(t, err, test.ShouldNotBeNil)

	cfg = &FuseCameraConfig{Src: "cam", Positions: []string{"a", "b"}}
	deps, _, err := cfg.Validate("")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, deps, test.ShouldResemble, []string{"a", "b", "cam"})
	test.That(t, cfg.Positions, test.ShouldResemble, []string{"a", "b"})

	test.That(t, cfg.sleepTime(), test.ShouldEqual, time.Second)
	test.That(t, cfg.depthScale(), test.ShouldEqual, .001)
	test.That(t, cfg.axisPolicy(), test.ShouldResemble, pcutils.GripperPolicy)

	cfg.SleepSeconds = .5
	test.That(t, cfg.sleepTime(), test.ShouldEqual, 500*time.Millisecond)

	cfg.Intrinsics = &Intrinsics{Fx: 0, Fy: 1, ScalingFactor: 1}
	_, _, err = cfg.Validate("")
	test.That(t, err, test.ShouldNotBeNil)

	cfg.Intrinsics = nil
	cfg.Crop = &pcutils.Box{Min: r3.Vector{Z: 1}}
	_, _, err = cfg.Validate("")
	test.That(t, err, test.ShouldNotBeNil)

	cfg.Crop = &pcutils.Box{Max: r3.Vector{X: 1, Y: 1, Z: 1}}
	cfg.Downsample = &pcutils.DownsampleConfig{Method: "bogus"}
	_, _, err = cfg.Validate("")
	test.That(t, err, test.ShouldNotBeNil)

	cfg.Downsample = &pcutils.DownsampleConfig{Method: pcutils.DownsampleVoxel, VoxelSize: .01}
	cfg.Outliers = &pcutils.OutlierConfig{Method: pcutils.OutlierRadius}
	_, _, err = cfg.Validate("")
	test.That(t, err, test.ShouldNotBeNil)

	cfg.Outliers = &pcutils.OutlierConfig{Method: pcutils.OutlierRadius, NbPoints: 3, Radius: .02}
	_, _, err = cfg.Validate("")
	test.That(t, err, test.ShouldBeNil)
}
