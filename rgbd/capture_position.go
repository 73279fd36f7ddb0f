package rgbd

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/golang/geo/r3"

	"go.viam.com/rdk/components/arm"
	toggleswitch "go.viam.com/rdk/components/switch"
	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/referenceframe"
	"go.viam.com/rdk/resource"
	"go.viam.com/rdk/services/motion"
	"go.viam.com/rdk/spatialmath"

	"github.com/erh/rgbdgrasp"
)

var CapturePositionModel = rgbdgrasp.NamespaceFamily.WithModel("capture-position")

func init() {
	resource.RegisterComponent(
		toggleswitch.API,
		CapturePositionModel,
		resource.Registration[toggleswitch.Switch, *CapturePositionConfig]{
			Constructor: newCapturePosition,
		})
}

// CapturePositionConfig is one viewpoint of a capture, either joints or a world pose
// reached through the motion service.
type CapturePositionConfig struct {
	Arm         string                               `json:"arm,omitempty"`
	Joints      []float64                            `json:"joints,omitempty"`
	Motion      string                               `json:"motion,omitempty"`
	Point       r3.Vector                            `json:"point,omitzero"`
	Orientation spatialmath.OrientationVectorDegrees `json:"orientation,omitzero"`
	Extra       map[string]interface{}               `json:"extra,omitempty"`
}

func (c *CapturePositionConfig) Validate(path string) ([]string, []string, error) {
	if c.Arm == "" {
		return nil, nil, fmt.Errorf("no arm specified")
	}

	deps := []string{c.Arm}

	if c.Motion != "" {
		if c.Motion == "builtin" {
			deps = append(deps, motion.Named("builtin").String())
		} else {
			deps = append(deps, c.Motion)
		}
	}

	return deps, nil, nil
}

func newCapturePosition(ctx context.Context, deps resource.Dependencies, config resource.Config, logger logging.Logger) (toggleswitch.Switch, error) {
	newConf, err := resource.NativeConfig[*CapturePositionConfig](config)
	if err != nil {
		return nil, err
	}

	a, err := arm.FromProvider(deps, newConf.Arm)
	if err != nil {
		return nil, err
	}

	cp := &CapturePosition{
		name:   config.ResourceName(),
		cfg:    newConf,
		logger: logger,
		arm:    a,
		joints: newConf.Joints,
	}

	if newConf.Motion != "" {
		cp.motion, err = motion.FromProvider(deps, newConf.Motion)
		if err != nil {
			return nil, err
		}
	}

	return cp, nil
}

// CapturePosition is a switch: 1 remembers where the arm is now, 2 goes there.
// Remembered joints live until the resource is rebuilt.
type CapturePosition struct {
	resource.AlwaysRebuild
	resource.TriviallyCloseable

	name   resource.Name
	cfg    *CapturePositionConfig
	logger logging.Logger

	arm    arm.Arm
	motion motion.Service

	mu     sync.Mutex
	joints []float64
}

func (cp *CapturePosition) Name() resource.Name {
	return cp.name
}

func (cp *CapturePosition) DoCommand(ctx context.Context, cmd map[string]interface{}) (map[string]interface{}, error) {
	if cmd["cfg"] == true {
		cp.mu.Lock()
		cfg := *cp.cfg
		cfg.Joints = cp.joints
		cp.mu.Unlock()

		jsonData, err := json.Marshal(cfg)
		if err != nil {
			return nil, err
		}

		return map[string]interface{}{
			"joints":      cfg.Joints,
			"point":       cfg.Point,
			"orientation": cfg.Orientation,
			"as_json":     string(jsonData),
		}, nil
	}
	return nil, fmt.Errorf("unknown command %v", cmd)
}

func (cp *CapturePosition) SetPosition(ctx context.Context, position uint32, extra map[string]interface{}) error {
	switch position {
	case 0:
		return nil
	case 1:
		return cp.remember(ctx)
	case 2:
		return cp.goTo(ctx)
	}
	return fmt.Errorf("bad position: %d", position)
}

func (cp *CapturePosition) GetPosition(ctx context.Context, extra map[string]interface{}) (uint32, error) {
	return 0, nil
}

func (cp *CapturePosition) GetNumberOfPositions(ctx context.Context, extra map[string]interface{}) (uint32, []string, error) {
	return 3, []string{"idle", "remember", "go to"}, nil
}

func (cp *CapturePosition) remember(ctx context.Context) error {
	inputs, err := cp.arm.JointPositions(ctx, nil)
	if err != nil {
		return err
	}

	cp.mu.Lock()
	cp.joints = append([]float64{}, inputs...)
	cp.mu.Unlock()

	cp.logger.Infof("%s remembered joints %v", cp.name.ShortName(), inputs)
	return nil
}

func (cp *CapturePosition) goTo(ctx context.Context) error {
	cp.mu.Lock()
	joints := cp.joints
	cp.mu.Unlock()

	if len(joints) > 0 {
		cp.logger.Debugf("using MoveToJointPositions")
		return cp.arm.MoveToJointPositions(ctx, joints, cp.cfg.Extra)
	}

	if cp.motion == nil {
		return fmt.Errorf("need to configure where to go")
	}

	current, err := cp.motion.GetPose(ctx, cp.cfg.Arm, referenceframe.World, nil, nil)
	if err != nil {
		return err
	}

	linearDelta := current.Pose().Point().Distance(cp.cfg.Point)
	orientationDelta := spatialmath.QuatToR3AA(spatialmath.OrientationBetween(current.Pose().Orientation(), &cp.cfg.Orientation).Quaternion()).Norm2()
	if linearDelta < .1 && orientationDelta < .01 {
		cp.logger.Debugf("close enough, not moving - linearDelta: %v orientationDelta: %v", linearDelta, orientationDelta)
		return nil
	}

	pif := referenceframe.NewPoseInFrame(
		referenceframe.World,
		spatialmath.NewPose(cp.cfg.Point, &cp.cfg.Orientation),
	)

	done, err := cp.motion.Move(ctx, motion.MoveReq{
		ComponentName: cp.cfg.Arm,
		Destination:   pif,
		Extra:         cp.cfg.Extra,
	})
	if err != nil {
		return err
	}
	if !done {
		return fmt.Errorf("move didn't finish")
	}
	return nil
}
