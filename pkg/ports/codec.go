package ports

import (
	"image"
)

// ImageFormat specifies image encoding format for exported frames.
type ImageFormat int

const (
	FormatPNG ImageFormat = iota
	FormatJPEG
)

// String returns the file extension (without dot) for the format.
func (f ImageFormat) String() string {
	switch f {
	case FormatJPEG:
		return "jpg"
	default:
		return "png"
	}
}

// ParseImageFormat parses a format name ("png", "jpg", "jpeg").
// Unknown names fall back to PNG.
func ParseImageFormat(s string) ImageFormat {
	switch s {
	case "jpg", "jpeg":
		return FormatJPEG
	default:
		return FormatPNG
	}
}

// ImageCodec abstracts decoding of keyframe files and encoding of
// synthesized frames for export.
type ImageCodec interface {
	// Decode decodes image data, auto-detecting the format.
	Decode(data []byte) (image.Image, error)

	// Encode encodes an image to the specified format.
	// Quality applies to lossy formats only (JPEG, 1-100).
	Encode(img image.Image, format ImageFormat, quality int) ([]byte, error)
}
