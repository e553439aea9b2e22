package icon

// Validator enforces the exact square source resolution.
type Validator struct {
	Dimension int
}

// NewValidator returns a validator for dimension, falling back to RequiredDimension.
func NewValidator(dimension int) Validator {
	if dimension <= 0 {
		dimension = RequiredDimension
	}
	return Validator{Dimension: dimension}
}

// Validate accepts only width == height == v.Dimension.
func (v Validator) Validate(width, height int) error {
	if width != v.Dimension || height != v.Dimension {
		return &ValidationError{Width: width, Height: height, Expected: v.Dimension}
	}
	return nil
}

// ValidateImage validates a decoded source image.
func (v Validator) ValidateImage(src *SourceImage) error {
	return v.Validate(src.Width(), src.Height())
}
