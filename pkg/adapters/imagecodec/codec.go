// Package imagecodec provides an image codec built on the standard
// image package, with BMP and TIFF support from golang.org/x/image.
package imagecodec

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	// Register GIF decoding for image.Decode.
	_ "image/gif"

	"github.com/user/optiflow/pkg/ports"
)

func init() {
	image.RegisterFormat("bmp", "BM", bmp.Decode, bmp.DecodeConfig)
	image.RegisterFormat("tiff", "II\x2A\x00", tiff.Decode, tiff.DecodeConfig)
	image.RegisterFormat("tiff", "MM\x00\x2A", tiff.Decode, tiff.DecodeConfig)
}

// Codec implements ports.ImageCodec.
type Codec struct{}

// New creates a new Codec.
func New() *Codec {
	return &Codec{}
}

// Decode decodes image data, auto-detecting the format from its
// magic bytes.
func (c *Codec) Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// Encode encodes an image to the specified format.
func (c *Codec) Encode(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case ports.FormatJPEG:
		if quality <= 0 || quality > 100 {
			quality = 90
		}
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("encode JPEG: %w", err)
		}
	case ports.FormatPNG:
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode PNG: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format: %d", format)
	}

	return buf.Bytes(), nil
}

// Ensure Codec implements ports.ImageCodec
var _ ports.ImageCodec = (*Codec)(nil)
