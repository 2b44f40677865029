package capture

import (
	"path/filepath"
	"strconv"
	"strings"
)

// SplitTimestamp splits a frame artifact name of the form
// <timestamp>_<rest>, returning the embedded nanosecond timestamp and the
// remainder of the name.
func SplitTimestamp(path string) (int64, string, error) {
	base := filepath.Base(path)
	stamp, rest, found := strings.Cut(base, "_")
	if !found || rest == "" {
		return 0, "", &MalformedFilenameError{Path: path}
	}
	timestamp, err := strconv.ParseInt(stamp, 10, 64)
	if err != nil {
		return 0, "", &MalformedFilenameError{Path: path}
	}
	return timestamp, rest, nil
}

// AppendToStem inserts suffix between a filename's stem and extension.
func AppendToStem(path, suffix string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + suffix + ext
}
