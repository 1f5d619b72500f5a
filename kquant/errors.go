package kquant

import "errors"

var (
	// ErrInvalidPaletteSize is returned when the requested
	// number of colors is not positive.
	ErrInvalidPaletteSize = errors.New("palette size must be positive")

	// ErrEmptyInput is returned when an image has no pixels.
	ErrEmptyInput = errors.New("image has no pixels")

	// ErrUnknownMethod is returned for an unrecognized
	// palette method name.
	ErrUnknownMethod = errors.New("unknown palette method")

	// ErrUnknownSeed is returned for an unrecognized seed
	// name.
	ErrUnknownSeed = errors.New("unknown seed")
)
