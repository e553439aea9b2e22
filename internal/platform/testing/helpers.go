package testing

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"app-icon-server-go/internal/platform/config"
	"app-icon-server-go/internal/platform/logging"
)

// SetupTestConfig returns the default configuration with test-friendly overrides.
func SetupTestConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Server.IP = "127.0.0.1"
	cfg.Server.Port = 8080
	cfg.Log.Level = "DEBUG"
	cfg.Log.Dir = t.TempDir()
	cfg.Log.File = "test.log"
	cfg.Web.StaticDir = ""
	return cfg
}

func SetupTestLogger(t *testing.T) *logging.Logger {
	t.Helper()

	cfg := SetupTestConfig(t)
	logger, err := logging.New(logging.Config{
		Level:    cfg.Log.Level,
		Dir:      cfg.Log.Dir,
		Filename: cfg.Log.File,
	})
	if err != nil {
		t.Fatalf("failed to create test logger: %v", err)
	}
	t.Cleanup(func() { _ = logger.Close() })

	return logger
}

// IconImage draws a size x size RGBA image: transparent background with an opaque
// disc whose radius is 3/8 of the edge, so the corners stay fully transparent.
func IconImage(size int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	c := float64(size) / 2
	r := float64(size) * 3 / 8
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := float64(x) + 0.5 - c
			dy := float64(y) + 0.5 - c
			if dx*dx+dy*dy <= r*r {
				img.SetRGBA(x, y, color.RGBA{R: uint8(x % 256), G: 96, B: uint8(y % 256), A: 255})
			}
		}
	}
	return img
}

// IconPNG returns IconImage(size) encoded as PNG.
func IconPNG(t *testing.T, size int) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := png.Encode(&buf, IconImage(size)); err != nil {
		t.Fatalf("failed to encode png fixture: %v", err)
	}
	return buf.Bytes()
}

// SolidJPEG returns a width x height opaque JPEG.
func SolidJPEG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 200, 40, 40, 255
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("failed to encode jpeg fixture: %v", err)
	}
	return buf.Bytes()
}
