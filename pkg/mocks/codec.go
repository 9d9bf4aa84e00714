package mocks

import (
	"image"

	"github.com/user/optiflow/pkg/ports"
)

// Codec is a mock implementation of ports.ImageCodec.
type Codec struct {
	DecodeFunc func(data []byte) (image.Image, error)
	EncodeFunc func(img image.Image, format ports.ImageFormat, quality int) ([]byte, error)
}

func (m *Codec) Decode(data []byte) (image.Image, error) {
	if m.DecodeFunc != nil {
		return m.DecodeFunc(data)
	}
	return image.NewNRGBA(image.Rect(0, 0, 32, 32)), nil
}

func (m *Codec) Encode(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
	if m.EncodeFunc != nil {
		return m.EncodeFunc(img, format, quality)
	}
	return []byte{}, nil
}

var _ ports.ImageCodec = (*Codec)(nil)
