package capture

import (
	"context"
	"os/exec"

	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// FFmpegConverter shells out to ffmpeg to decode raw BGRA frame dumps into
// JPEG images. A non-zero ffmpeg exit is a conversion failure.
type FFmpegConverter struct{}

// NewFFmpegConverter errors early if ffmpeg is not on the path.
func NewFFmpegConverter() (*FFmpegConverter, error) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return nil, errors.Wrap(err, "ffmpeg is required for frame conversion")
	}
	return &FFmpegConverter{}, nil
}

// Convert decodes the raw dump at src into dst.
func (*FFmpegConverter) Convert(ctx context.Context, src, dst, videoSize string) error {
	stream := ffmpeg.Input(src, ffmpeg.KwArgs{
		"f":            "rawvideo",
		"pixel_format": rawPixelFormat,
		"video_size":   videoSize,
	}).Output(dst).OverWriteOutput()
	stream.Context = ctx
	if err := stream.Run(); err != nil {
		return errors.Wrapf(err, "ffmpeg conversion of %q", src)
	}
	return nil
}
