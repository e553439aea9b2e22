package icon

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
	"golang.org/x/image/draw"
)

// Resampler names accepted by NewResampler.
const (
	ResamplerLanczos = "lanczos"
	ResamplerNfnt    = "nfnt"
)

// Resampler scales src into a size x size canvas using contain fit.
// Pixels outside the fitted rectangle are fully transparent.
type Resampler interface {
	Resize(src image.Image, size int) (*image.RGBA, error)
}

// NewResampler returns the resampler registered under name.
func NewResampler(name string) (Resampler, error) {
	switch name {
	case "", ResamplerLanczos:
		return lanczosResampler{}, nil
	case ResamplerNfnt:
		return nfntResampler{}, nil
	default:
		return nil, fmt.Errorf("unknown resampler %q", name)
	}
}

// Lanczos3 drives x/image/draw with imaging's 3-lobe Lanczos filter.
var Lanczos3 = &draw.Kernel{Support: imaging.Lanczos.Support, At: imaging.Lanczos.Kernel}

// containRect returns the centred rectangle that fits a srcW x srcH image into a
// size x size box while preserving aspect ratio.
func containRect(srcW, srcH, size int) image.Rectangle {
	scale := math.Min(float64(size)/float64(srcW), float64(size)/float64(srcH))
	w := max(1, int(math.Round(float64(srcW)*scale)))
	h := max(1, int(math.Round(float64(srcH)*scale)))
	offX := (size - w) / 2
	offY := (size - h) / 2
	return image.Rect(offX, offY, offX+w, offY+h)
}

func checkResizeArgs(src image.Image, size int) error {
	if size <= 0 {
		return fmt.Errorf("target size must be positive, got %d", size)
	}
	if b := src.Bounds(); b.Empty() {
		return fmt.Errorf("source image is empty")
	}
	return nil
}

type lanczosResampler struct{}

func (lanczosResampler) Resize(src image.Image, size int) (*image.RGBA, error) {
	if err := checkResizeArgs(src, size); err != nil {
		return nil, err
	}
	sb := src.Bounds()
	canvas := image.NewRGBA(image.Rect(0, 0, size, size))
	Lanczos3.Scale(canvas, containRect(sb.Dx(), sb.Dy(), size), src, sb, draw.Src, nil)
	return canvas, nil
}

type nfntResampler struct{}

func (nfntResampler) Resize(src image.Image, size int) (*image.RGBA, error) {
	if err := checkResizeArgs(src, size); err != nil {
		return nil, err
	}
	sb := src.Bounds()
	dr := containRect(sb.Dx(), sb.Dy(), size)
	scaled := resize.Resize(uint(dr.Dx()), uint(dr.Dy()), src, resize.Lanczos3)

	canvas := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(canvas, dr, scaled, scaled.Bounds().Min, draw.Src)
	return canvas, nil
}
