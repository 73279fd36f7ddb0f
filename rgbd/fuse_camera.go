package rgbd

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/rdk/components/camera"
	toggleswitch "go.viam.com/rdk/components/switch"
	"go.viam.com/rdk/data"
	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/pointcloud"
	"go.viam.com/rdk/resource"
	"go.viam.com/rdk/rimage"
	"go.viam.com/rdk/robot/framesystem"
	"go.viam.com/rdk/spatialmath"

	"github.com/erh/rgbdgrasp"
	"github.com/erh/rgbdgrasp/pcutils"
)

var FuseModel = rgbdgrasp.NamespaceFamily.WithModel("rgbd-fuse")

func init() {
	resource.RegisterComponent(
		camera.API,
		FuseModel,
		resource.Registration[camera.Camera, *FuseCameraConfig]{
			Constructor: newFuseCamera,
		})
}

type FuseCameraConfig struct {
	Src         string
	ColorSource string `json:"color_source,omitempty"`
	DepthSource string `json:"depth_source,omitempty"`

	// Intrinsics override the src camera properties.
	Intrinsics *Intrinsics `json:"intrinsics,omitempty"`
	// DepthScale turns raw depth into meters when intrinsics come from the camera.
	DepthScale float64 `json:"depth_scale,omitempty"`

	SleepSeconds float64 `json:"sleep_seconds,omitempty"`
	Positions    []string

	Crop       *pcutils.Box              `json:"crop,omitempty"`
	Downsample *pcutils.DownsampleConfig `json:"downsample,omitempty"`
	Outliers   *pcutils.OutlierConfig    `json:"outliers,omitempty"`
	AxisPolicy *pcutils.AxisPolicy       `json:"axis_policy,omitempty"`

	MetersPerPixel float64 `json:"meters_per_pixel,omitempty"`
}

func (c *FuseCameraConfig) sleepTime() time.Duration {
	if c.SleepSeconds <= 0 {
		return time.Second
	}
	return time.Duration(c.SleepSeconds * float64(time.Second))
}

func (c *FuseCameraConfig) depthScale() float64 {
	if c.DepthScale <= 0 {
		return .001
	}
	return c.DepthScale
}

func (c *FuseCameraConfig) metersPerPixel() float64 {
	if c.MetersPerPixel <= 0 {
		return .002
	}
	return c.MetersPerPixel
}

func (c *FuseCameraConfig) axisPolicy() pcutils.AxisPolicy {
	if c.AxisPolicy == nil {
		return pcutils.GripperPolicy
	}
	return *c.AxisPolicy
}

func (c *FuseCameraConfig) Validate(path string) ([]string, []string, error) {
	if c.Src == "" {
		return nil, nil, fmt.Errorf("need a src camera")
	}

	if c.Intrinsics != nil {
		if err := c.Intrinsics.Validate(path + ".intrinsics"); err != nil {
			return nil, nil, err
		}
	}
	if c.Crop != nil {
		if err := c.Crop.Validate(path + ".crop"); err != nil {
			return nil, nil, err
		}
	}
	if c.Downsample != nil {
		if err := c.Downsample.Validate(path + ".downsample"); err != nil {
			return nil, nil, err
		}
	}
	if c.Outliers != nil {
		if err := c.Outliers.Validate(path + ".outliers"); err != nil {
			return nil, nil, err
		}
	}

	return append(append([]string{}, c.Positions...), c.Src), nil, nil
}

func newFuseCamera(ctx context.Context, deps resource.Dependencies, config resource.Config, logger logging.Logger) (camera.Camera, error) {
	newConf, err := resource.NativeConfig[*FuseCameraConfig](config)
	if err != nil {
		return nil, err
	}

	fc := &FuseCamera{
		name:      config.ResourceName(),
		cfg:       newConf,
		logger:    logger,
		positions: []toggleswitch.Switch{},
	}

	fc.src, err = camera.FromProvider(deps, newConf.Src)
	if err != nil {
		return nil, err
	}

	for _, p := range newConf.Positions {
		s, err := toggleswitch.FromProvider(deps, p)
		if err != nil {
			return nil, err
		}
		fc.positions = append(fc.positions, s)
	}

	fc.fsSvc, err = framesystem.FromDependencies(deps)
	if err != nil {
		return nil, err
	}

	if newConf.Downsample != nil {
		fc.downsampler, err = newConf.Downsample.Build()
		if err != nil {
			return nil, err
		}
	}
	if newConf.Outliers != nil {
		fc.outliers, err = newConf.Outliers.Build()
		if err != nil {
			return nil, err
		}
	}

	return fc, nil
}

// FuseCamera moves the arm through the configured positions, captures an RGB-D frame
// at each one and serves the fused, reduced cloud in the world frame.
type FuseCamera struct {
	resource.AlwaysRebuild
	resource.TriviallyCloseable

	name   resource.Name
	cfg    *FuseCameraConfig
	logger logging.Logger

	fsSvc framesystem.Service

	src       camera.Camera
	positions []toggleswitch.Switch

	downsampler pcutils.Downsampler
	outliers    pcutils.OutlierFilter

	mu   sync.Mutex
	last pcutils.Cloud
}

func (fc *FuseCamera) Name() resource.Name {
	return fc.name
}

func (fc *FuseCamera) intrinsics(ctx context.Context) (Intrinsics, error) {
	if fc.cfg.Intrinsics != nil {
		return *fc.cfg.Intrinsics, nil
	}
	props, err := fc.src.Properties(ctx)
	if err != nil {
		return Intrinsics{}, err
	}
	return IntrinsicsFromPinhole(props.IntrinsicParams, fc.cfg.depthScale())
}

func (fc *FuseCamera) capture(ctx context.Context, s *Session) error {
	pif, err := fc.fsSvc.GetPose(ctx, fc.src.Name().Name, "", nil, nil)
	if err != nil {
		return err
	}
	_, err = s.Capture(ctx, TransformFromPose(pif.Pose()), nil)
	return err
}

// Fuse runs one full capture and returns the reduced cloud in meters.
func (fc *FuseCamera) Fuse(ctx context.Context) (pcutils.Cloud, error) {
	in, err := fc.intrinsics(ctx)
	if err != nil {
		return nil, err
	}

	s, err := NewSession(NewCameraFrameSource(fc.src, fc.cfg.ColorSource, fc.cfg.DepthSource), in, fc.logger)
	if err != nil {
		return nil, err
	}
	if err := s.Start(ctx); err != nil {
		return nil, err
	}
	defer func() {
		if err := s.Stop(ctx); err != nil {
			fc.logger.Warnf("cannot stop session %s: %v", s.ID(), err)
		}
	}()

	if len(fc.positions) == 0 {
		if err := fc.capture(ctx, s); err != nil {
			return nil, err
		}
	}

	for _, p := range fc.positions {
		err := p.SetPosition(ctx, 2, nil)
		if err != nil {
			return nil, err
		}

		// Sleep between movements to allow for any vibrations to settle
		time.Sleep(fc.cfg.sleepTime())

		if err := fc.capture(ctx, s); err != nil {
			return nil, err
		}
	}

	c, err := s.Fuse()
	if err != nil {
		return nil, err
	}

	before := len(c)
	if fc.cfg.Crop != nil {
		c = pcutils.Crop(c, *fc.cfg.Crop)
	}
	if fc.downsampler != nil {
		c, err = fc.downsampler.Downsample(c)
		if err != nil {
			return nil, err
		}
	}
	if fc.outliers != nil {
		c, err = pcutils.RemoveOutliers(c, fc.outliers)
		if err != nil {
			return nil, err
		}
	}
	fc.logger.Debugf("reduced %d points to %d", before, len(c))

	fc.mu.Lock()
	fc.last = c
	fc.mu.Unlock()

	return c, nil
}

func (fc *FuseCamera) lastOrFuse(ctx context.Context) (pcutils.Cloud, error) {
	fc.mu.Lock()
	c := fc.last
	fc.mu.Unlock()
	if c != nil {
		return c, nil
	}
	return fc.Fuse(ctx)
}

func (fc *FuseCamera) Image(ctx context.Context, mimeType string, extra map[string]interface{}) ([]byte, camera.ImageMetadata, error) {
	c, err := fc.lastOrFuse(ctx)
	if err != nil {
		return nil, camera.ImageMetadata{}, err
	}
	img := pcutils.ToImage(c, fc.cfg.metersPerPixel())

	data, err := rimage.EncodeImage(ctx, img, mimeType)
	if err != nil {
		return nil, camera.ImageMetadata{}, err
	}

	return data, camera.ImageMetadata{MimeType: mimeType}, nil
}

func (fc *FuseCamera) Images(ctx context.Context, filterSourceNames []string, extra map[string]interface{}) ([]camera.NamedImage, resource.ResponseMetadata, error) {
	c, err := fc.lastOrFuse(ctx)
	if err != nil {
		return nil, resource.ResponseMetadata{}, err
	}
	img := pcutils.ToImage(c, fc.cfg.metersPerPixel())

	ni, err := camera.NamedImageFromImage(img, "fused", "image/png", data.Annotations{})
	if err != nil {
		return nil, resource.ResponseMetadata{}, err
	}
	return []camera.NamedImage{ni}, resource.ResponseMetadata{CapturedAt: time.Now()}, nil
}

func vectorToList(v r3.Vector) []interface{} {
	return []interface{}{v.X, v.Y, v.Z}
}

func (fc *FuseCamera) DoCommand(ctx context.Context, cmd map[string]interface{}) (map[string]interface{}, error) {
	res := map[string]interface{}{}

	if v, ok := cmd["principal_axes"].(bool); ok && v {
		c, err := fc.lastOrFuse(ctx)
		if err != nil {
			return nil, err
		}
		axes, err := pcutils.PrincipalAxes(c.XYZ(), fc.cfg.axisPolicy())
		if err != nil {
			return nil, err
		}
		res["centroid"] = vectorToList(axes.Centroid)
		res["axes"] = []interface{}{
			vectorToList(axes.Vectors[0]),
			vectorToList(axes.Vectors[1]),
			vectorToList(axes.Vectors[2]),
		}
		res["variances"] = []interface{}{axes.Variances[0], axes.Variances[1], axes.Variances[2]}
	}

	if k, ok := cmd["furthest_points"]; ok {
		kf, ok := k.(float64)
		if !ok {
			return nil, errors.Wrapf(pcutils.ErrInvalidSampleCount, "furthest_points has to be a number, got %T", k)
		}
		c, err := fc.lastOrFuse(ctx)
		if err != nil {
			return nil, err
		}
		sample, err := pcutils.FurthestPointSample(c, int(kf), nil)
		if err != nil {
			return nil, err
		}
		pts := []interface{}{}
		for _, p := range sample {
			pts = append(pts, vectorToList(p.Vector))
		}
		res["points"] = pts
	}

	if len(res) == 0 {
		return nil, fmt.Errorf("unknown command %v", cmd)
	}
	return res, nil
}

func (fc *FuseCamera) NextPointCloud(ctx context.Context, extra map[string]interface{}) (pointcloud.PointCloud, error) {
	c, err := fc.Fuse(ctx)
	if err != nil {
		return nil, err
	}
	return pcutils.ToPointCloud(c)
}

func (fc *FuseCamera) Properties(ctx context.Context) (camera.Properties, error) {
	return camera.Properties{
		SupportsPCD: true,
	}, nil
}

func (fc *FuseCamera) Geometries(ctx context.Context, _ map[string]interface{}) ([]spatialmath.Geometry, error) {
	return nil, nil
}
