package icon

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// sharpenPivot is the size at and above which the base sigma applies.
const sharpenPivot = 64

// SharpenSigma returns the unsharp-mask sigma for a target size: 1.0 at 64 and above,
// rising linearly by 1/64 per pixel below 64 (32 -> 1.5, 16 -> 1.75).
func SharpenSigma(size int) float64 {
	if size >= sharpenPivot {
		return 1.0
	}
	return 1.0 + float64(sharpenPivot-size)/float64(sharpenPivot)
}

// Sharpen applies an unsharp mask to the colour channels of img. The blur is weighted by
// alpha so transparent pixels never bleed into the colour of anti-aliased edges. The alpha
// channel is copied unchanged and colour is zeroed wherever alpha is zero.
func Sharpen(img image.Image, sigma float64) *image.NRGBA {
	base := imaging.Clone(img)
	premul := image.NewNRGBA(base.Bounds())
	coverage := image.NewNRGBA(base.Bounds())
	for i := 0; i < len(base.Pix); i += 4 {
		a := uint32(base.Pix[i+3])
		premul.Pix[i] = uint8((uint32(base.Pix[i])*a + 127) / 255)
		premul.Pix[i+1] = uint8((uint32(base.Pix[i+1])*a + 127) / 255)
		premul.Pix[i+2] = uint8((uint32(base.Pix[i+2])*a + 127) / 255)
		premul.Pix[i+3] = 255
		coverage.Pix[i], coverage.Pix[i+1], coverage.Pix[i+2], coverage.Pix[i+3] = uint8(a), uint8(a), uint8(a), 255
	}

	blurred := imaging.Blur(premul, sigma)
	blurredAlpha := imaging.Blur(coverage, sigma)

	out := image.NewNRGBA(base.Bounds())
	for i := 0; i < len(base.Pix); i += 4 {
		a := base.Pix[i+3]
		out.Pix[i+3] = a
		if a == 0 {
			continue
		}
		weight := float64(blurredAlpha.Pix[i])
		for c := 0; c < 3; c++ {
			src := float64(base.Pix[i+c])
			soft := src
			if weight > 0 {
				soft = float64(blurred.Pix[i+c]) * 255 / weight
			}
			out.Pix[i+c] = clampByte(2*src - soft)
		}
	}
	return out
}

func clampByte(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(math.Round(v))
	}
}
