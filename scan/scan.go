package scan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/pkg/errors"

	"github.com/waggle-sensor/mobotixscan/capture"
	"github.com/waggle-sensor/mobotixscan/mobotix"
)

const (
	// DefaultSettleTime gives the head time to come to rest after a move.
	DefaultSettleTime = 3 * time.Second
	// DefaultCaptureTimeout bounds one capture attempt end to end.
	DefaultCaptureTimeout = 30 * time.Second
	// DefaultLoopSleep separates full scan loops.
	DefaultLoopSleep = 300 * time.Second
)

// Mover is the slice of the PTZ controller a scan needs.
type Mover interface {
	MoveToPreset(ctx context.Context, id int) (string, error)
	Move(ctx context.Context, direction mobotix.Direction, speed int, duration time.Duration) error
}

// Imager runs one supervised capture session into a working directory.
type Imager interface {
	Capture(ctx context.Context, workDir string) error
}

// Finalizer drains a working directory of raw artifacts.
type Finalizer interface {
	Finalize(ctx context.Context, workDir string) (string, error)
}

// Config describes a scan routine.
type Config struct {
	// WorkDir is the directory captures land in; the scanner assumes
	// exclusive ownership of it for the routine's lifetime.
	WorkDir string
	// Presets is the route. A route of just [0] captures without moving.
	Presets []int
	// Loops is how many times to run the route; negative means forever.
	Loops int
	// LoopSleep separates loops; DefaultLoopSleep when zero.
	LoopSleep time.Duration
	// SettleTime overrides DefaultSettleTime.
	SettleTime time.Duration
	// CaptureTimeout overrides DefaultCaptureTimeout.
	CaptureTimeout time.Duration

	// Custom-sequence parameters, one entry per route preset.
	Direction mobotix.Direction
	Speeds    []int
	Durations []time.Duration
	Shots     []int
}

// Scanner runs scan routines against one camera.
type Scanner struct {
	cfg       Config
	mover     Mover
	imager    Imager
	finalizer Finalizer
	uploader  Uploader
	clock     clock.Clock
	logger    golog.Logger
}

// NewScanner validates config and returns a Scanner.
func NewScanner(
	cfg Config,
	mover Mover,
	imager Imager,
	finalizer Finalizer,
	uploader Uploader,
	logger golog.Logger,
) (*Scanner, error) {
	if cfg.WorkDir == "" {
		return nil, errors.New("working directory is required")
	}
	if len(cfg.Presets) == 0 {
		return nil, errors.New("preset route is required")
	}
	if cfg.LoopSleep == 0 {
		cfg.LoopSleep = DefaultLoopSleep
	}
	if cfg.SettleTime == 0 {
		cfg.SettleTime = DefaultSettleTime
	}
	if cfg.CaptureTimeout == 0 {
		cfg.CaptureTimeout = DefaultCaptureTimeout
	}
	return &Scanner{
		cfg:       cfg,
		mover:     mover,
		imager:    imager,
		finalizer: finalizer,
		uploader:  uploader,
		clock:     clock.New(),
		logger:    logger,
	}, nil
}

// ScanPresets runs the preset route for the configured loop count: per stop
// it moves to the preset, lets the head settle, captures and finalizes a
// session, then renames the artifacts with a _position<N> suffix and hands
// them to the uploader.
func (s *Scanner) ScanPresets(ctx context.Context) error {
	// a route beginning with 0 means capture in place, no movement
	noMove := s.cfg.Presets[0] == 0

	loops := 0
	for loopContinue(loops, s.cfg.Loops) {
		loops++
		s.logger.Infof("loop %d of %s", loops, loopTotal(s.cfg.Loops))
		frames := 0

		for _, preset := range s.cfg.Presets {
			if err := ctx.Err(); err != nil {
				return err
			}
			meta := map[string]string{
				"position": fmt.Sprintf("%d", preset),
				"loop_num": fmt.Sprintf("%d", loops),
			}
			if !noMove {
				status, err := s.mover.MoveToPreset(ctx, preset)
				if err != nil {
					return errors.Wrapf(err, "moving to preset %d", preset)
				}
				s.logger.Debugw("moved to preset", "preset", preset, "status", status)
				if !s.sleep(ctx, s.cfg.SettleTime) {
					return ctx.Err()
				}
			}

			if err := s.captureOne(ctx); err != nil {
				return errors.Wrapf(err, "capturing at preset %d", preset)
			}

			uploaded, err := s.uploadAll(ctx, meta, func(int64) string {
				return fmt.Sprintf("_position%d", preset)
			})
			if err != nil {
				return errors.Wrapf(err, "uploading artifacts for preset %d", preset)
			}
			frames += uploaded
		}

		s.logger.Infof("processed %d frames in loop %d", frames, loops)
		if loopContinue(loops, s.cfg.Loops) {
			s.logger.Infof("sleeping %s between loops", s.cfg.LoopSleep)
			if !s.sleep(ctx, s.cfg.LoopSleep) {
				return ctx.Err()
			}
		}
	}
	return nil
}

// ScanCustom runs a move-and-shoot sequence: per route preset it captures
// the configured number of shots, performing a timed directional move
// between shots, and names the artifacts after the sequence parameters.
func (s *Scanner) ScanCustom(ctx context.Context) error {
	n := len(s.cfg.Presets)
	if len(s.cfg.Speeds) != n || len(s.cfg.Durations) != n || len(s.cfg.Shots) != n {
		return errors.Errorf(
			"custom scan needs speeds, durations, and shots per preset: %d presets, %d speeds, %d durations, %d shots",
			n, len(s.cfg.Speeds), len(s.cfg.Durations), len(s.cfg.Shots))
	}

	for i, preset := range s.cfg.Presets {
		if preset != 0 {
			s.logger.Infof("moving to preset %d", preset)
			if _, err := s.mover.MoveToPreset(ctx, preset); err != nil {
				return errors.Wrapf(err, "moving to preset %d", preset)
			}
			if !s.sleep(ctx, s.cfg.SettleTime) {
				return ctx.Err()
			}
		}

		for shot := 0; shot < s.cfg.Shots[i]; shot++ {
			if err := s.captureOne(ctx); err != nil {
				return errors.Wrapf(err, "capturing shot %d at preset %d", shot, preset)
			}
			if err := s.mover.Move(ctx, s.cfg.Direction, s.cfg.Speeds[i], s.cfg.Durations[i]); err != nil {
				return errors.Wrapf(err, "moving after shot %d at preset %d", shot, preset)
			}

			sequence := fmt.Sprintf("_Pt%d-%s-S%dxD%dms_Img%d",
				preset, s.cfg.Direction, s.cfg.Speeds[i], s.cfg.Durations[i].Milliseconds(), shot)
			if _, err := s.uploadAll(ctx, nil, func(timestamp int64) string {
				return time.Unix(0, timestamp).UTC().Format("_2006-01-02T150405") + sequence
			}); err != nil {
				return errors.Wrapf(err, "uploading artifacts for shot %d at preset %d", shot, preset)
			}
			s.logger.Infof("completed shot %d at preset %d", shot, preset)
		}
	}
	return nil
}

// captureOne runs a deadline-bounded capture session followed by the
// finalizer pass over the working directory.
func (s *Scanner) captureOne(ctx context.Context) error {
	captureCtx, cancel := context.WithTimeout(ctx, s.cfg.CaptureTimeout)
	defer cancel()
	if err := s.imager.Capture(captureCtx, s.cfg.WorkDir); err != nil {
		return err
	}
	if _, err := s.finalizer.Finalize(ctx, s.cfg.WorkDir); err != nil {
		return err
	}
	return nil
}

// uploadAll drains the working directory: every file is renamed with its
// timestamp prefix stripped and suffixFor's value appended to the stem,
// handed to the uploader, and removed once shipped. Returns how many files
// were shipped.
func (s *Scanner) uploadAll(ctx context.Context, meta map[string]string, suffixFor func(timestamp int64) string) (int, error) {
	entries, err := os.ReadDir(s.cfg.WorkDir)
	if err != nil {
		return 0, errors.Wrapf(err, "reading working directory %q", s.cfg.WorkDir)
	}

	uploaded := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		src := filepath.Join(s.cfg.WorkDir, entry.Name())
		timestamp, rest, err := capture.SplitTimestamp(src)
		if err != nil {
			s.logger.Warnw("skipping artifact without timestamp prefix", "path", src, "error", err)
			continue
		}
		dst := filepath.Join(s.cfg.WorkDir, capture.AppendToStem(rest, suffixFor(timestamp)))
		if err := os.Rename(src, dst); err != nil {
			return uploaded, errors.Wrapf(err, "renaming artifact %q", src)
		}
		if err := s.uploader.UploadFile(ctx, dst, timestamp, meta); err != nil {
			return uploaded, errors.Wrapf(err, "uploading artifact %q", dst)
		}
		// shipped artifacts leave the working directory so the next
		// session starts clean
		if err := os.Remove(dst); err != nil {
			return uploaded, errors.Wrapf(err, "removing shipped artifact %q", dst)
		}
		uploaded++
	}
	return uploaded, nil
}

// sleep waits d, returning false if ctx ended first.
func (s *Scanner) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-ctx.Done():
		return false
	case <-s.clock.After(d):
		return true
	}
}

func loopContinue(done, max int) bool {
	return max < 0 || done < max
}

func loopTotal(max int) string {
	if max < 0 {
		return "infinite"
	}
	return fmt.Sprintf("%d", max)
}
