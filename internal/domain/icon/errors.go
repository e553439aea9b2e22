package icon

import (
	"fmt"

	platformerrors "app-icon-server-go/internal/platform/errors"
)

// ErrPayloadTooLarge is returned by ProcessReader when the stream exceeds the byte ceiling.
var ErrPayloadTooLarge = platformerrors.New(platformerrors.KindInput, "icon.read", "image payload too large")

// DecodeError means the bytes could not be interpreted as an image.
type DecodeError struct {
	Cause error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode image: %v", e.Cause)
}

func (e *DecodeError) Unwrap() error { return e.Cause }

func (e *DecodeError) ErrorKind() platformerrors.Kind { return platformerrors.KindDecode }

// ValidationError means the decoded image has the wrong dimensions.
type ValidationError struct {
	Width    int
	Height   int
	Expected int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("wrong dimensions: got %dx%d, expected %dx%d",
		e.Width, e.Height, e.Expected, e.Expected)
}

func (e *ValidationError) ErrorKind() platformerrors.Kind { return platformerrors.KindValidation }

// GenerationError means producing the variant for Size failed during Stage.
type GenerationError struct {
	Size  int
	Stage string
	Cause error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate %dpx icon (%s): %v", e.Size, e.Stage, e.Cause)
}

func (e *GenerationError) Unwrap() error { return e.Cause }

func (e *GenerationError) ErrorKind() platformerrors.Kind { return platformerrors.KindGeneration }

// Generation stages reported in GenerationError.
const (
	StageValidate = "validate"
	StageResize   = "resize"
	StageSharpen  = "sharpen"
	StageEncode   = "encode"
)
