package rgbd

import (
	"context"
	"image"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"go.viam.com/rdk/logging"

	"github.com/erh/rgbdgrasp/imgutils"
	"github.com/erh/rgbdgrasp/pcutils"
)

// FrameSource produces RGB-D frames, e.g. a depth camera.
type FrameSource interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	NextFrame(ctx context.Context) (Frame, error)
}

// Session collects posed frames from one source and fuses them on demand.
type Session struct {
	id     uuid.UUID
	src    FrameSource
	in     Intrinsics
	logger logging.Logger

	mu      sync.Mutex
	started bool
	views   []View
}

func NewSession(src FrameSource, in Intrinsics, logger logging.Logger) (*Session, error) {
	if src == nil {
		return nil, errors.New("need a frame source")
	}
	if err := in.Validate("intrinsics"); err != nil {
		return nil, err
	}
	return &Session{
		id:     uuid.New(),
		src:    src,
		in:     in,
		logger: logger,
	}, nil
}

func (s *Session) ID() uuid.UUID {
	return s.id
}

func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if err := s.src.Start(ctx); err != nil {
		return errors.Wrapf(err, "session %s", s.id)
	}
	s.started = true
	s.logger.Debugf("session %s started", s.id)
	return nil
}

// Stop stops the source. Captured views are kept so Fuse still works.
func (s *Session) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.started = false
	if err := s.src.Stop(ctx); err != nil {
		return errors.Wrapf(err, "session %s", s.id)
	}
	s.logger.Debugf("session %s stopped with %d views", s.id, len(s.views))
	return nil
}

// Capture grabs the next frame, tags it with the camera pose and an optional
// mask (nil for none), and returns its index.
func (s *Session) Capture(ctx context.Context, pose Transform, mask image.Image) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return -1, ErrSessionNotStarted
	}

	f, err := s.src.NextFrame(ctx)
	if err != nil {
		return -1, errors.Wrapf(err, "session %s frame %d", s.id, len(s.views))
	}
	if mask != nil {
		f.Mask = mask
		coverage := imgutils.MaskCoverage(mask)
		if coverage == 0 {
			s.logger.Warnf("session %s frame %d mask is empty, view adds no points", s.id, len(s.views))
		} else {
			s.logger.Debugf("session %s frame %d mask covers %.1f%%", s.id, len(s.views), 100*coverage)
		}
	}

	s.views = append(s.views, View{Pose: pose, Frame: f})
	return len(s.views) - 1, nil
}

func (s *Session) Views() []View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]View{}, s.views...)
}

func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.views = nil
}

// Fuse fuses everything captured so far into the world frame.
func (s *Session) Fuse() (pcutils.Cloud, error) {
	views := s.Views()

	start := time.Now()
	c, err := FuseViews(views, s.in)
	if err != nil {
		return nil, err
	}
	s.logger.Infof("session %s fused %d views into %d points in %v", s.id, len(views), len(c), time.Since(start))
	return c, nil
}
