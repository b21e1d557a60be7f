package main

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/xopoww/go-volcloud/glutils"
)

// saveScreenshot flips img to top-down row order and writes it as PNG into dir.
func saveScreenshot(img image.Image, dir string, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	filename := filepath.Join(dir, fmt.Sprintf(
		"clouds_%s.png",
		now.Format("02-01-2006_15-04-05"),
	))

	file, err := os.Create(filename)
	if err != nil {
		return "", err
	}
	err = png.Encode(file, glutils.FlipImage(img))
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		// do not leave a truncated PNG behind
		_ = os.Remove(filename)
		return "", fmt.Errorf("write %s: %w", filename, err)
	}
	return filename, nil
}
