package icon

import (
	"bytes"
	"image"
	"image/png"
)

// EncodePNG losslessly encodes img with maximum compression effort.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
