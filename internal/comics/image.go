package comics

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
)

var (
	// ErrTooLarge marks an image over the upload size limit.
	ErrTooLarge = errors.New("image too large")
	// ErrNotImage marks a file whose content is not an image.
	ErrNotImage = errors.New("not an image")
)

// Image is a cover photo ready to upload.
type Image struct {
	Name        string
	ContentType string
	Data        []byte
}

// Size returns the image size in bytes.
func (i Image) Size() int64 {
	return int64(len(i.Data))
}

// Summary renders "name · size · type" for status lines.
func (i Image) Summary() string {
	return fmt.Sprintf("%s · %s · %s", i.Name, humanize.IBytes(uint64(i.Size())), i.ContentType)
}

// OpenImage reads the file at path and checks it against the same limits
// the backend enforces: at most maxBytes, and content sniffed as image/*.
// maxBytes <= 0 disables the size check.
func OpenImage(path string, maxBytes int64) (Image, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return Image{}, fmt.Errorf("image path is empty")
	}
	info, err := os.Stat(trimmed)
	if err != nil {
		return Image{}, fmt.Errorf("stat image: %w", err)
	}
	if info.IsDir() {
		return Image{}, fmt.Errorf("%s is a directory", trimmed)
	}
	if maxBytes > 0 && info.Size() > maxBytes {
		return Image{}, fmt.Errorf("%w: %s is over the %s limit",
			ErrTooLarge, humanize.IBytes(uint64(info.Size())), humanize.IBytes(uint64(maxBytes)))
	}

	data, err := os.ReadFile(trimmed)
	if err != nil {
		return Image{}, fmt.Errorf("read image: %w", err)
	}
	if len(data) == 0 {
		return Image{}, fmt.Errorf("%w: %s is empty", ErrNotImage, filepath.Base(trimmed))
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return Image{}, fmt.Errorf("%w: %s looks like %s", ErrNotImage, filepath.Base(trimmed), contentType)
	}

	return Image{
		Name:        filepath.Base(trimmed),
		ContentType: contentType,
		Data:        data,
	}, nil
}
