package scan

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"
)

// Uploader ships one finalized artifact to the publishing framework that
// schedules this code. timestamp is the artifact's capture time in
// nanoseconds since the epoch.
type Uploader interface {
	UploadFile(ctx context.Context, path string, timestamp int64, meta map[string]string) error
}

// NopUploader logs artifacts instead of shipping them, for bench use.
type NopUploader struct {
	Logger golog.Logger
}

// UploadFile logs the artifact and does nothing else.
func (u NopUploader) UploadFile(ctx context.Context, path string, timestamp int64, meta map[string]string) error {
	u.Logger.Debugw("skipping upload", "path", path, "timestamp", timestamp, "meta", meta)
	return nil
}

// ArchiveUploader copies finalized artifacts into a local archive
// directory, the fallback when the node has no collector reachable.
type ArchiveUploader struct {
	Dir string
}

// UploadFile copies the artifact into the archive directory.
func (u ArchiveUploader) UploadFile(ctx context.Context, path string, timestamp int64, meta map[string]string) error {
	if err := os.MkdirAll(u.Dir, 0o755); err != nil {
		return errors.Wrapf(err, "creating archive directory %q", u.Dir)
	}
	src, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "opening artifact %q", path)
	}
	defer goutils.UncheckedErrorFunc(src.Close)

	dstPath := filepath.Join(u.Dir, filepath.Base(path))
	dst, err := os.Create(dstPath)
	if err != nil {
		return errors.Wrapf(err, "creating archive copy %q", dstPath)
	}
	_, err = io.Copy(dst, src)
	return multierr.Combine(errors.Wrapf(err, "archiving %q", path), dst.Close())
}
