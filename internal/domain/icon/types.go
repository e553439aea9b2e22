package icon

import (
	"encoding/base64"
	"image"
)

// RequiredDimension is the only accepted source edge length.
const RequiredDimension = 1024

var defaultSizes = [...]int{16, 32, 64, 128, 256, 512, 1024}

// DefaultSizes returns a fresh copy of the fixed target size list in output order.
func DefaultSizes() []int {
	sizes := make([]int, len(defaultSizes))
	copy(sizes, defaultSizes[:])
	return sizes
}

// SourceImage is a decoded upload. It is never mutated after Decode returns.
type SourceImage struct {
	img    image.Image
	format string
}

// NewSourceImage wraps an already decoded image.
func NewSourceImage(img image.Image, format string) *SourceImage {
	return &SourceImage{img: img, format: format}
}

func (s *SourceImage) Image() image.Image { return s.img }
func (s *SourceImage) Format() string     { return s.format }
func (s *SourceImage) Width() int         { return s.img.Bounds().Dx() }
func (s *SourceImage) Height() int        { return s.img.Bounds().Dy() }

// Variant is one generated icon: a PNG whose decoded dimensions are Size x Size.
type Variant struct {
	Size int
	PNG  []byte
}

// Base64 returns the standard base64 encoding of the PNG bytes.
func (v Variant) Base64() string {
	return base64.StdEncoding.EncodeToString(v.PNG)
}

// ResultBundle holds one Variant per requested size, in request order.
type ResultBundle struct {
	Variants []Variant
}

// Sizes lists the variant sizes in bundle order.
func (b *ResultBundle) Sizes() []int {
	sizes := make([]int, len(b.Variants))
	for i, v := range b.Variants {
		sizes[i] = v.Size
	}
	return sizes
}

// TotalBytes sums the encoded PNG sizes.
func (b *ResultBundle) TotalBytes() int {
	total := 0
	for _, v := range b.Variants {
		total += len(v.PNG)
	}
	return total
}

// Lookup returns the variant with the given size.
func (b *ResultBundle) Lookup(size int) (Variant, bool) {
	for _, v := range b.Variants {
		if v.Size == size {
			return v, true
		}
	}
	return Variant{}, false
}

// IconPayload is the JSON form of a Variant.
type IconPayload struct {
	Size   int    `json:"size"`
	Buffer string `json:"buffer"`
}

// BundlePayload is the JSON form of a ResultBundle: {"icons":[{"size":16,"buffer":"..."}]}.
type BundlePayload struct {
	Icons []IconPayload `json:"icons"`
}

// Payload converts the bundle into its JSON wire form.
func (b *ResultBundle) Payload() BundlePayload {
	icons := make([]IconPayload, len(b.Variants))
	for i, v := range b.Variants {
		icons[i] = IconPayload{Size: v.Size, Buffer: v.Base64()}
	}
	return BundlePayload{Icons: icons}
}
