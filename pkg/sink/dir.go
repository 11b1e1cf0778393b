package sink

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/osumercury/badgemaker/pkg/errors"
)

// Format is an image file format.
type Format string

const (
	PNG  Format = "png"
	JPEG Format = "jpg"
)

// ParseFormat accepts "png", "jpg" or "jpeg".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "png":
		return PNG, nil
	case "jpg", "jpeg":
		return JPEG, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported image format %q", s)
}

func (f Format) imaging() imaging.Format {
	if f == JPEG {
		return imaging.JPEG
	}
	return imaging.PNG
}

// DefaultJPEGQuality matches the quality used for PDF embedding.
const DefaultJPEGQuality = 92

// DirOption configures a DirSink.
type DirOption func(*DirSink)

// WithFormat selects the file format (default PNG).
func WithFormat(f Format) DirOption {
	return func(s *DirSink) { s.format = f }
}

// WithJPEGQuality sets the JPEG quality, 1-100.
func WithJPEGQuality(q int) DirOption {
	return func(s *DirSink) { s.quality = q }
}

// DirSink writes one file per badge into a directory.
type DirSink struct {
	dir     string
	format  Format
	quality int
}

// NewDirSink creates dir if needed.
func NewDirSink(dir string, opts ...DirOption) (*DirSink, error) {
	s := &DirSink{dir: dir, format: PNG, quality: DefaultJPEGQuality}
	for _, opt := range opts {
		opt(s)
	}
	if s.quality < 1 || s.quality > 100 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "JPEG quality %d out of range 1-100", s.quality)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "create output directory %s", dir)
	}
	return s, nil
}

// Dir returns the output directory.
func (s *DirSink) Dir() string { return s.dir }

// Format returns the output format.
func (s *DirSink) Format() Format { return s.format }

// WriteImage writes img to <dir>/<sanitized name>.<ext>. Existing files are
// overwritten.
func (s *DirSink) WriteImage(name string, img image.Image) (string, error) {
	path := filepath.Join(s.dir, fmt.Sprintf("%s.%s", errors.SafeFilename(name), s.format))
	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeIO, err, "create %s", path)
	}
	if err := imaging.Encode(f, img, s.format.imaging(), imaging.JPEGQuality(s.quality)); err != nil {
		f.Close()
		return "", errors.Wrap(errors.ErrCodeIO, err, "encode %s", path)
	}
	if err := f.Close(); err != nil {
		return "", errors.Wrap(errors.ErrCodeIO, err, "write %s", path)
	}
	return path, nil
}

// Ensure DirSink implements ImageSink.
var _ ImageSink = (*DirSink)(nil)
