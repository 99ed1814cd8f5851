package bmp

import (
	"fmt"
	"image"
	"image/color"
	"io"
)

// Image is a decoded BMP: the parsed header and Width*Height*4 bytes of
// top-down RGBA pixels, alpha always opaque.
type Image struct {
	Header Header
	Pix    []byte
	Stride int
}

func (i *Image) Width() int  { return int(i.Header.Width) }
func (i *Image) Height() int { return int(i.Header.Height) }

func (i *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, i.Width(), i.Height())
}

// RGBA wraps the pixels, without copying, as an image.RGBA.
func (i *Image) RGBA() *image.RGBA {
	return &image.RGBA{Pix: i.Pix, Stride: i.Stride, Rect: i.Bounds()}
}

// DecodeImage reads a whole BMP from r and decodes it.
func DecodeImage(r io.Reader) (image.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("could not read input: %w", err)
	}
	img, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return img.RGBA(), nil
}

// DecodeConfig returns the dimensions of a BMP without decoding pixels.
func DecodeConfig(r io.Reader) (image.Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return image.Config{}, fmt.Errorf("could not read input: %w", err)
	}
	h, err := DecodeHeader(data)
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: color.RGBAModel,
		Width:      int(h.Width),
		Height:     int(h.Height),
	}, nil
}
