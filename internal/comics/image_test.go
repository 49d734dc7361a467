package comics

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestOpenImage_SniffsContentType(t *testing.T) {
	path := writeFile(t, "cover.png", pngHeader)
	img, err := OpenImage(path, 1024)
	if err != nil {
		t.Fatalf("OpenImage returned error: %v", err)
	}
	if img.ContentType != "image/png" || img.Name != "cover.png" {
		t.Fatalf("image = %q %q", img.Name, img.ContentType)
	}
	if !strings.Contains(img.Summary(), "cover.png") {
		t.Fatalf("summary = %q", img.Summary())
	}
}

func TestOpenImage_RejectsTooLarge(t *testing.T) {
	data := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, 64)...)
	path := writeFile(t, "big.png", data)
	_, err := OpenImage(path, 16)
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("err = %v, want ErrTooLarge", err)
	}
	if _, err := OpenImage(path, 0); err != nil {
		t.Fatalf("size check should be disabled with limit 0: %v", err)
	}
}

func TestOpenImage_RejectsNonImage(t *testing.T) {
	path := writeFile(t, "notes.txt", []byte("just some text"))
	if _, err := OpenImage(path, 1024); !errors.Is(err, ErrNotImage) {
		t.Fatalf("err = %v, want ErrNotImage", err)
	}
	empty := writeFile(t, "empty.png", nil)
	if _, err := OpenImage(empty, 1024); !errors.Is(err, ErrNotImage) {
		t.Fatalf("empty err = %v, want ErrNotImage", err)
	}
}

func TestOpenImage_PathErrors(t *testing.T) {
	if _, err := OpenImage("  ", 0); err == nil {
		t.Fatal("expected error for blank path")
	}
	if _, err := OpenImage(t.TempDir(), 0); err == nil {
		t.Fatal("expected error for directory")
	}
	if _, err := OpenImage(filepath.Join(t.TempDir(), "missing.png"), 0); err == nil {
		t.Fatal("expected error for missing file")
	}
}
