package rgbd

import "github.com/pkg/errors"

var (
	ErrInvalidPoseFormat      = errors.New("invalid pose format")
	ErrInvalidIntrinsics      = errors.New("invalid camera intrinsics")
	ErrDimensionMismatch      = errors.New("color, depth and mask dimensions differ")
	ErrInvalidColorFormat     = errors.New("color image is not 8 bit rgb")
	ErrInvalidDepthFormat     = errors.New("depth image is not single channel integer")
	ErrInvalidMaskFormat      = errors.New("mask image is not 8 bit gray")
	ErrSequenceLengthMismatch = errors.New("pose, color, depth and mask sequences differ in length")
	ErrSessionNotStarted      = errors.New("capture session not started")
)
