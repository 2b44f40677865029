package capture

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

const (
	// RawExtension marks raw frame dumps produced by the grabber.
	RawExtension = ".rgb"
	// ImageExtension is the converted artifact's extension.
	ImageExtension = ".jpg"
	// rawPixelFormat is the grabber's fixed pixel layout.
	rawPixelFormat = "bgra"
)

// resolutionRegex extracts the WIDTHxHEIGHT token the grabber embeds in
// every raw frame filename.
var resolutionRegex = regexp.MustCompile(`\d+x\d+`)

// MalformedFilenameError means a frame artifact's name does not encode the
// metadata the grabber contract promises.
type MalformedFilenameError struct {
	Path string
}

func (e *MalformedFilenameError) Error() string {
	return fmt.Sprintf("frame artifact %q does not encode expected metadata", e.Path)
}

// Converter turns one raw frame dump into a standard image file. videoSize
// is the WIDTHxHEIGHT dimension token parsed from the artifact name.
type Converter interface {
	Convert(ctx context.Context, src, dst, videoSize string) error
}

// Finalizer drains a capture working directory, converting raw frame
// artifacts in place. It owns each raw artifact it processes: the source is
// deleted on successful conversion and left on disk for inspection when
// conversion fails.
type Finalizer struct {
	converter Converter
	logger    golog.Logger
}

// NewFinalizer returns a Finalizer converting through converter.
func NewFinalizer(converter Converter, logger golog.Logger) *Finalizer {
	return &Finalizer{converter: converter, logger: logger}
}

// Finalize converts every raw frame artifact directly under workDir,
// returning the path of the last artifact converted, or "" when the
// directory holds none. A conversion failure is confined to its artifact:
// the rest of the batch is still processed and the failures come back
// combined in the returned error.
func (f *Finalizer) Finalize(ctx context.Context, workDir string) (string, error) {
	entries, err := os.ReadDir(workDir)
	if err != nil {
		return "", errors.Wrapf(err, "reading capture directory %q", workDir)
	}

	var lastConverted string
	var batchErr error
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != RawExtension {
			continue
		}
		if err := ctx.Err(); err != nil {
			return lastConverted, multierr.Append(batchErr, err)
		}
		src := filepath.Join(workDir, entry.Name())
		converted, err := f.convertOne(ctx, src)
		if err != nil {
			f.logger.Errorw("conversion failed, leaving raw artifact in place", "path", src, "error", err)
			batchErr = multierr.Append(batchErr, err)
			continue
		}
		lastConverted = converted
	}
	return lastConverted, batchErr
}

func (f *Finalizer) convertOne(ctx context.Context, src string) (string, error) {
	videoSize := resolutionRegex.FindString(filepath.Base(src))
	if videoSize == "" {
		return "", &MalformedFilenameError{Path: src}
	}
	dst := strings.TrimSuffix(src, RawExtension) + ImageExtension
	if err := f.converter.Convert(ctx, src, dst, videoSize); err != nil {
		return "", errors.Wrapf(err, "converting %q", src)
	}
	f.logger.Infow("removing raw artifact", "path", src)
	if err := os.Remove(src); err != nil {
		return "", errors.Wrapf(err, "removing raw artifact %q", src)
	}
	return dst, nil
}
