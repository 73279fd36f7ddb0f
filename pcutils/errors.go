package pcutils

import "github.com/pkg/errors"

var (
	ErrDegenerateGeometry      = errors.New("degenerate geometry")
	ErrInvalidDownsampleConfig = errors.New("invalid downsample config")
	ErrInvalidOutlierConfig    = errors.New("invalid outlier config")
	ErrInvalidSampleCount      = errors.New("invalid sample count")
)
