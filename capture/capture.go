// Package capture supervises the external Mobotix frame grabber and turns
// the raw frame dumps it leaves behind into standard images.
package capture

import (
	"bufio"
	"context"
	"io"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	goutils "go.viam.com/utils"
	"go.viam.com/utils/pexec"
)

const (
	// DefaultReadTimeout bounds each wait for a line of grabber output. A
	// stall past this bound is logged and waited out, never treated as a
	// failure: the grabber being slow is not the grabber being dead.
	DefaultReadTimeout = 5 * time.Second

	// DefaultBinary is where the frame grabber lives on the node image.
	DefaultBinary = "/thermal-raw"
)

// frameLineRegex matches the grabber's per-frame progress lines.
var frameLineRegex = regexp.MustCompile(`frame\s#(\d+)`)

// Config describes one camera's capture setup.
type Config struct {
	// Host is the camera IP or URL handed to the grabber.
	Host     string
	User     string
	Password string
	// Frames is the target frame count per session.
	Frames int
	// Binary overrides DefaultBinary.
	Binary string
	// ReadTimeout overrides DefaultReadTimeout.
	ReadTimeout time.Duration
}

// Imager launches and supervises capture sessions against a single camera.
// Sessions are self-contained; an Imager holds no state across calls, but
// only one session should own a given working directory at a time.
type Imager struct {
	host        string
	user        string
	password    string
	frames      int
	binary      string
	readTimeout time.Duration
	clock       clock.Clock
	logger      golog.Logger
}

// NewImager validates config and returns an Imager.
func NewImager(config Config, logger golog.Logger) (*Imager, error) {
	if config.Host == "" {
		return nil, errors.New("camera host is required")
	}
	if config.Frames <= 0 {
		return nil, errors.Errorf("frame target must be positive, got %d", config.Frames)
	}
	binary := config.Binary
	if binary == "" {
		binary = DefaultBinary
	}
	readTimeout := config.ReadTimeout
	if readTimeout == 0 {
		readTimeout = DefaultReadTimeout
	}
	return &Imager{
		host:        config.Host,
		user:        config.User,
		password:    config.Password,
		frames:      config.Frames,
		binary:      binary,
		readTimeout: readTimeout,
		clock:       clock.New(),
		logger:      logger,
	}, nil
}

// Capture runs one capture session: it launches the frame grabber pointed at
// workDir (created if absent) and consumes its progress output until the
// observed frame index exceeds the session's frame target. On success the
// grabber is left to wind down on its own; on every error path it is
// stopped before returning.
func (im *Imager) Capture(ctx context.Context, workDir string) error {
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return errors.Wrapf(err, "creating capture directory %q", workDir)
	}

	// a session-scoped context so the output reader winds down with us
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	logReader, logWriter := io.Pipe()
	procExited := make(chan int, 1)
	pcfg := pexec.ProcessConfig{
		ID:   "mobotix-capture",
		Name: im.binary,
		Args: []string{
			"--url", im.host,
			"--user", im.user,
			"--password", im.password,
			"--dir", workDir,
		},
		Log:       true,
		LogWriter: logWriter,
		OnUnexpectedExit: func(exitCode int) bool {
			select {
			case procExited <- exitCode:
			default:
			}
			return false
		},
	}

	im.logger.Infow("calling camera capture interface", "binary", im.binary, "dir", workDir)
	proc := pexec.NewManagedProcess(pcfg, im.logger)
	if err := proc.Start(ctx); err != nil {
		err = errors.Wrapf(err, "starting capture interface %q", im.binary)
		im.logger.Errorw("capture session failed", "error", err)
		return err
	}

	var reachedTarget bool
	defer func() {
		goutils.UncheckedErrorFunc(logWriter.Close)
		goutils.UncheckedErrorFunc(logReader.Close)
		if !reachedTarget {
			goutils.UncheckedError(proc.Stop())
		}
	}()

	if err := im.waitForFrames(ctx, logReader, procExited); err != nil {
		im.logger.Errorw("capture session failed", "binary", im.binary, "dir", workDir, "error", err)
		return err
	}
	reachedTarget = true
	return nil
}

// waitForFrames consumes grabber progress lines from output until the frame
// index exceeds the target. A nil procExited channel never fires.
func (im *Imager) waitForFrames(ctx context.Context, output io.Reader, procExited <-chan int) error {
	lines := make(chan string, 8)
	goutils.PanicCapturingGo(func() {
		defer close(lines)
		scanner := bufio.NewScanner(output)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	})

	lastFrame := 0
	for {
		select {
		case <-ctx.Done():
			return errors.Wrapf(ctx.Err(), "waiting for capture interface output after frame %d of %d", lastFrame, im.frames)
		case exitCode := <-procExited:
			return errors.Errorf("capture interface exited with code %d after frame %d of %d", exitCode, lastFrame, im.frames)
		case line, ok := <-lines:
			if !ok {
				return errors.Errorf("capture interface output ended after frame %d of %d", lastFrame, im.frames)
			}
			if line == "" {
				im.logger.Warn("no data from capture interface output")
				continue
			}
			im.logger.Debug(line)
			m := frameLineRegex.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			n, err := strconv.Atoi(m[1])
			if err != nil {
				// regex guarantees digits; odd enough to note
				im.logger.Warnw("unparseable frame index", "line", line, "error", err)
				continue
			}
			if n > lastFrame {
				lastFrame = n
			}
			if lastFrame > im.frames {
				im.logger.Infof("frame target reached at frame #%d, closing capture session", lastFrame)
				return nil
			}
		case <-im.clock.After(im.readTimeout):
			im.logger.Info("timeout waiting for capture interface output")
		}
	}
}
