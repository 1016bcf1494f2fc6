package imaging

import "errors"

var (
	// ErrUnsupportedFormat is returned when the bytes are not a supported
	// container, cannot be decoded, or describe an image too large to decode.
	ErrUnsupportedFormat = errors.New("unsupported image format")

	// ErrDecodePanic is returned when a codec panicked while decoding.
	ErrDecodePanic = errors.New("image decoder crashed")

	// ErrInvalidBuffer is returned when a PixelBuffer's data length does not
	// match its dimensions.
	ErrInvalidBuffer = errors.New("invalid pixel buffer")
)
