package scan

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/edaniels/golog"
	"go.viam.com/test"
)

func TestArchiveUploader(t *testing.T) {
	srcDir := t.TempDir()
	src := filepath.Join(srcDir, "cam_320x240_position3.jpg")
	test.That(t, os.WriteFile(src, []byte("jpg"), 0o644), test.ShouldBeNil)

	archive := filepath.Join(t.TempDir(), "archive")
	uploader := ArchiveUploader{Dir: archive}
	test.That(t, uploader.UploadFile(context.Background(), src, 1000, nil), test.ShouldBeNil)

	copied, err := os.ReadFile(filepath.Join(archive, "cam_320x240_position3.jpg"))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(copied), test.ShouldEqual, "jpg")
}

func TestArchiveUploaderMissingSource(t *testing.T) {
	uploader := ArchiveUploader{Dir: t.TempDir()}
	err := uploader.UploadFile(context.Background(), "/nonexistent/cam.jpg", 1000, nil)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestNopUploader(t *testing.T) {
	uploader := NopUploader{Logger: golog.NewTestLogger(t)}
	test.That(t, uploader.UploadFile(context.Background(), "anything.jpg", 1000, nil), test.ShouldBeNil)
}
