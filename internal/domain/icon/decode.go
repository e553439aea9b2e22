package icon

import (
	"bytes"
	"errors"
	"image"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var errEmptyPayload = errors.New("empty image payload")

// DecodeConfig reads only the header of raw and reports its dimensions and format.
func DecodeConfig(raw []byte) (image.Config, string, error) {
	if len(raw) == 0 {
		return image.Config{}, "", &DecodeError{Cause: errEmptyPayload}
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return image.Config{}, "", &DecodeError{Cause: err}
	}
	return cfg, format, nil
}

// Decode fully decodes raw into a SourceImage.
func Decode(raw []byte) (*SourceImage, error) {
	if len(raw) == 0 {
		return nil, &DecodeError{Cause: errEmptyPayload}
	}
	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, &DecodeError{Cause: err}
	}
	return NewSourceImage(img, format), nil
}
