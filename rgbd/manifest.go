package rgbd

import (
	"encoding/json"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/erh/rgbdgrasp/imgutils"
)

// ManifestFrame names the files of one capture. Paths are relative to the manifest.
type ManifestFrame struct {
	Pose  []float64 `json:"pose"`
	Color string    `json:"color"`
	Depth string    `json:"depth"`
	Mask  string    `json:"mask,omitempty"`
}

// Manifest describes a capture on disk, for example
//
//	{"intrinsics": {"fx": 600, "fy": 600, "cx": 320, "cy": 240, "scalingfactor": 0.001},
//	 "frames": [{"pose": [0, 0, 0, 0, 0, 0, 1], "color": "c0.png", "depth": "d0.png"}]}
type Manifest struct {
	Intrinsics Intrinsics      `json:"intrinsics"`
	Frames     []ManifestFrame `json:"frames"`

	dir string
}

func ReadManifest(fn string) (*Manifest, error) {
	data, err := os.ReadFile(fn)
	if err != nil {
		return nil, err
	}

	m := &Manifest{dir: filepath.Dir(fn)}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, errors.Wrapf(err, "cannot parse manifest %s", fn)
	}
	return m, m.Validate(fn)
}

func (m *Manifest) Validate(path string) error {
	var err error
	err = multierr.Append(err, m.Intrinsics.Validate(path+".intrinsics"))
	if len(m.Frames) == 0 {
		err = multierr.Append(err, errors.Errorf("%s: no frames", path))
	}
	for i, f := range m.Frames {
		if f.Color == "" || f.Depth == "" {
			err = multierr.Append(err, errors.Errorf("%s.frames.%d: need color and depth", path, i))
		}
	}
	return err
}

func (m *Manifest) path(fn string) string {
	if filepath.IsAbs(fn) {
		return fn
	}
	return filepath.Join(m.dir, fn)
}

func readImage(fn string) (image.Image, error) {
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot decode %s", fn)
	}
	return img, nil
}

// Views decodes every pose and image. Color is converted to 8 bit rgb and masks to
// gray, depth has to be stored as a single channel image already.
func (m *Manifest) Views() ([]View, error) {
	views := make([]View, 0, len(m.Frames))
	for i, mf := range m.Frames {
		pose, err := PoseToTransform(mf.Pose)
		if err != nil {
			return nil, errors.Wrapf(err, "frame %d", i)
		}

		v := View{Pose: pose}

		clr, err := readImage(m.path(mf.Color))
		if err != nil {
			return nil, err
		}
		v.Frame.Color = imgutils.ToNRGBA(clr)

		v.Frame.Depth, err = readImage(m.path(mf.Depth))
		if err != nil {
			return nil, err
		}

		if mf.Mask != "" {
			mask, err := readImage(m.path(mf.Mask))
			if err != nil {
				return nil, err
			}
			v.Frame.Mask = imgutils.ToGray(mask)
		}

		views = append(views, v)
	}
	return views, nil
}
