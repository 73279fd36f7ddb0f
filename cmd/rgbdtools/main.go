package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/multierr"

	"go.viam.com/rdk/components/camera"
	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/pointcloud"
	"go.viam.com/rdk/rimage"
	"go.viam.com/rdk/robot/framesystem"

	"github.com/erh/rgbdgrasp"
	"github.com/erh/rgbdgrasp/pcutils"
	"github.com/erh/rgbdgrasp/rgbd"
)

func main() {
	err := realMain()
	if err != nil {
		panic(err)
	}
}

func realMain() error {
	logger := logging.NewLogger("rgbdtools")
	ctx := context.Background()

	host := flag.String("host", "", "hostname, uses env vars when empty")
	cmd := flag.String("cmd", "", "fuse|downsample|outliers|pca|fps|normalize|size|image|capture")
	cameraName := flag.String("camera", "", "camera to use")
	out := flag.String("out", "", "output file (.ply or .pcd)")
	in := flag.String("in", "", "input file (.ply, .pcd or capture manifest .json)")

	voxelSize := flag.Float64("voxel-size", 0, "voxel size in meters")
	everyK := flag.Int("every-k", 0, "keep every k-th point")

	outlierMethod := flag.String("outlier-method", pcutils.OutlierStatistical, "statistical|radius")
	neighbors := flag.Int("nb-neighbors", 20, "")
	stdRatio := flag.Float64("std-ratio", 2, "")
	minPoints := flag.Int("nb-points", 16, "")
	radius := flag.Float64("radius", .05, "meters")
	outliersOut := flag.String("outliers-out", "", "also write removed points here")

	plotOut := flag.String("plot", "", "png to draw principal axes into")
	k := flag.Int("k", 1024, "number of points to sample")
	seed := flag.Int64("seed", 0, "random seed, 0 uses the clock")
	metersPerPixel := flag.Float64("meters-per-pixel", .002, "")

	frames := flag.Int("frames", 1, "frames to capture")
	scale := flag.Float64("depth-scale", .001, "raw depth to meters")

	flag.Parse()

	if *cmd == "" {
		return fmt.Errorf("need a cmd")
	}

	if *cmd == "fuse" {
		m, err := rgbd.ReadManifest(*in)
		if err != nil {
			return err
		}
		views, err := m.Views()
		if err != nil {
			return err
		}

		start := time.Now()
		c, err := rgbd.FuseViews(views, m.Intrinsics)
		if err != nil {
			return err
		}
		logger.Infof("fused %d frames into %d points in %v", len(views), len(c), time.Since(start))

		return writeCloud(*out, c)
	}

	if *cmd == "capture" {
		return capture(ctx, logger, *host, *cameraName, *frames, *scale, *out)
	}

	c, err := readCloud(*in)
	if err != nil {
		return err
	}

	if *cmd == "size" {
		lo, hi := c.Bounds()
		logger.Infof("size: %d min: %v max: %v centroid: %v", len(c), lo, hi, pcutils.Centroid(c))
		return nil
	}

	if *cmd == "downsample" {
		cfg := &pcutils.DownsampleConfig{Method: pcutils.DownsampleVoxel, VoxelSize: *voxelSize}
		if *everyK > 0 {
			cfg = &pcutils.DownsampleConfig{Method: pcutils.DownsampleUniform, EveryKPoints: *everyK}
		}
		ds, err := cfg.Build()
		if err != nil {
			return err
		}
		small, err := ds.Downsample(c)
		if err != nil {
			return err
		}
		logger.Infof("downsampled %d -> %d", len(c), len(small))
		return writeCloud(*out, small)
	}

	if *cmd == "outliers" {
		cfg := &pcutils.OutlierConfig{
			Method:      *outlierMethod,
			NbNeighbors: *neighbors,
			StdRatio:    *stdRatio,
			NbPoints:    *minPoints,
			Radius:      *radius,
		}
		f, err := cfg.Build()
		if err != nil {
			return err
		}
		inliers, outliers, err := pcutils.SplitOutliers(c, f)
		if err != nil {
			return err
		}
		logger.Infof("kept %d removed %d", len(inliers), len(outliers))
		if *outliersOut != "" {
			if err := writeCloud(*outliersOut, outliers); err != nil {
				return err
			}
		}
		return writeCloud(*out, inliers)
	}

	if *cmd == "pca" {
		axes, err := pcutils.PrincipalAxes(c.XYZ(), pcutils.GripperPolicy)
		if err != nil {
			return err
		}
		logger.Infof("centroid: %v", axes.Centroid)
		for i, v := range axes.Vectors {
			logger.Infof("axis %d: %v variance: %0.6f", i, v, axes.Variances[i])
		}
		if *plotOut != "" {
			return pcutils.PlotAxes(c, axes, *plotOut)
		}
		return nil
	}

	if *cmd == "fps" {
		s := *seed
		if s == 0 {
			s = time.Now().UnixNano()
		}
		sample, err := pcutils.FurthestPointSample(c, *k, rand.New(rand.NewSource(s)))
		if err != nil {
			return err
		}
		return writeCloud(*out, sample)
	}

	if *cmd == "normalize" {
		return writeCloud(*out, pcutils.NormalizeToUnitSphere(c))
	}

	if *cmd == "image" {
		if *out == "" {
			return fmt.Errorf("need an out")
		}
		return rimage.WriteImageToFile(*out, pcutils.ToImage(c, *metersPerPixel))
	}

	return fmt.Errorf("invalid command [%s]", *cmd)
}

// capture grabs frames from a live camera, fuses them in the world frame and writes
// the colour and depth of every frame next to the output.
func capture(ctx context.Context, logger logging.Logger, host, cameraName string, frames int, scale float64, out string) error {
	if out == "" {
		return fmt.Errorf("need an out")
	}

	machine, err := rgbdgrasp.Connect(ctx, host, logger)
	if err != nil {
		return err
	}
	defer machine.Close(ctx)

	myCamera, err := camera.FromRobot(machine, cameraName)
	if err != nil {
		return err
	}

	props, err := myCamera.Properties(ctx)
	if err != nil {
		return err
	}
	intrinsics, err := rgbd.IntrinsicsFromPinhole(props.IntrinsicParams, scale)
	if err != nil {
		return err
	}

	deps, err := rgbdgrasp.MachineToDependencies(machine)
	if err != nil {
		return err
	}
	fsSvc, err := framesystem.FromDependencies(deps)
	if err != nil {
		return err
	}

	s, err := rgbd.NewSession(rgbd.NewCameraFrameSource(myCamera, "", ""), intrinsics, logger)
	if err != nil {
		return err
	}
	if err := s.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := s.Stop(ctx); err != nil {
			logger.Warnf("cannot stop session: %v", err)
		}
	}()

	for i := 0; i < frames; i++ {
		pif, err := fsSvc.GetPose(ctx, cameraName, "", nil, nil)
		if err != nil {
			return err
		}
		idx, err := s.Capture(ctx, rgbd.TransformFromPose(pif.Pose()), nil)
		if err != nil {
			return err
		}
		logger.Infof("captured frame %d at %v", idx, pif.Pose().Point())
	}

	base := strings.TrimSuffix(out, filepath.Ext(out))
	for i, v := range s.Views() {
		if err := writePNG(fmt.Sprintf("%s-color-%d.png", base, i), v.Frame.Color); err != nil {
			return err
		}
		if err := writePNG(fmt.Sprintf("%s-depth-%d.png", base, i), v.Frame.Depth); err != nil {
			return err
		}
	}

	c, err := s.Fuse()
	if err != nil {
		return err
	}
	return writeCloud(out, c)
}

func readCloud(fn string) (pcutils.Cloud, error) {
	if fn == "" {
		return nil, fmt.Errorf("need an in")
	}
	if strings.EqualFold(filepath.Ext(fn), ".ply") {
		return pcutils.ReadPLYFile(fn)
	}
	pc, err := pointcloud.NewFromFile(fn, "")
	if err != nil {
		return nil, err
	}
	return pcutils.FromPointCloud(pc), nil
}

func writeCloud(fn string, c pcutils.Cloud) (err error) {
	if fn == "" {
		return fmt.Errorf("need an out")
	}
	if !strings.EqualFold(filepath.Ext(fn), ".pcd") {
		return pcutils.WritePLYFile(fn, c)
	}

	pc, err := pcutils.ToPointCloud(c)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(fn, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()

	return pointcloud.ToPCD(pc, f, pointcloud.PCDBinary)
}

func writePNG(fn string, img image.Image) (err error) {
	f, err := os.OpenFile(fn, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()

	err = png.Encode(f, img)
	if err != nil {
		return fmt.Errorf("cannot write (%s): %w", fn, err)
	}
	return nil
}
