package bmp

import (
	"fmt"
	"math"
	"math/bits"
	"slices"
)

// Variant identifies a pixel layout by the fields that select a decoder.
type Variant struct {
	HeaderSize   uint32
	BitsPerPixel uint16
	Compression  Compression
}

func (v Variant) String() string {
	return fmt.Sprintf("hdr%d/%dbpp/%s", v.HeaderSize, v.BitsPerPixel, v.Compression)
}

func (h *Header) Variant() Variant {
	return Variant{HeaderSize: h.HeaderSize, BitsPerPixel: h.BitsPerPixel, Compression: h.Compression}
}

type pixelDecoder struct {
	// minData is the number of pixel data bytes decode reads at least.
	minData func(h *Header) (uint64, error)
	decode  func(s *decodeState) error
}

var decoder1 = pixelDecoder{minData: minData1, decode: decode1}

// pixelDecoders lists the implemented layouts. New bit depths plug in here.
var pixelDecoders = map[Variant]pixelDecoder{
	{coreHeaderSize, 1, CompressionNone}: decoder1,
	{infoHeaderSize, 1, CompressionNone}: decoder1,
}

// Supported reports whether pixel data of this layout can be decoded.
func (v Variant) Supported() bool {
	_, ok := pixelDecoders[v]
	return ok
}

// Variants enumerates every layout the header parser accepts, supported or
// not, in a stable order.
func Variants() []Variant {
	var res []Variant
	for _, bpp := range []uint16{1, 2, 4, 8, 24} {
		res = append(res, Variant{coreHeaderSize, bpp, CompressionNone})
	}
	for _, bpp := range []uint16{1, 4, 8, 16, 24, 32} {
		for c := CompressionNone; c <= CompressionBitFields; c++ {
			res = append(res, Variant{infoHeaderSize, bpp, c})
		}
	}
	return res
}

// SupportedVariants lists the layouts with a pixel decoder.
func SupportedVariants() []Variant {
	return slices.DeleteFunc(Variants(), func(v Variant) bool { return !v.Supported() })
}

func lookupDecoder(h *Header) (pixelDecoder, error) {
	switch h.BitsPerPixel {
	case 1, 2, 4, 8, 16, 24, 32:
	default:
		return pixelDecoder{}, fmt.Errorf("%d bpp: %w", h.BitsPerPixel, ErrFileNotSupported)
	}

	dec, ok := pixelDecoders[h.Variant()]
	if !ok {
		return pixelDecoder{}, fmt.Errorf("%s: %w", h.Variant(), ErrFileNotSupported)
	}
	return dec, nil
}

// scanLinePadding is the number of bits following the pixels of each row,
// derived from the data size. Compressed rows have none.
func scanLinePadding(h *Header) int {
	if h.Compression != CompressionNone {
		return 0
	}
	rowBytes := (int64(h.FileSize) - int64(h.DataOffset)) / int64(h.Height)
	return int(rowBytes*8 - int64(h.Width))
}

// paddingSkip is the number of bytes skipped after a row.
func paddingSkip(padding int) int {
	if padding%2 == 0 {
		return padding / 8
	}
	return (padding - 1) / 8
}

// minData1 is the size of height rows of packed bits, each followed by the
// padding skip except the last. Sizes past uint64 saturate.
func minData1(h *Header) (uint64, error) {
	padding := scanLinePadding(h)
	if padding < 0 {
		return 0, fmt.Errorf("rows of %d bits hold %d pixels: %w", padding+int(h.Width), h.Width, ErrFileInvalid)
	}

	row := (uint64(h.Width) + 7) / 8
	hi, lo := bits.Mul64(uint64(h.Height)-1, row+uint64(paddingSkip(padding)))
	if hi != 0 {
		return math.MaxUint64, nil
	}
	n, carry := bits.Add64(lo, row, 0)
	if carry != 0 {
		return math.MaxUint64, nil
	}
	return n, nil
}

// decode1 unpacks 1 bit per pixel, most significant bit first, in storage
// row order.
func decode1(s *decodeState) error {
	h := &s.header
	width, height := int(h.Width), int(h.Height)

	skip := paddingSkip(scanLinePadding(h))

	var lut [2][4]byte
	if s.palette.Present() {
		if s.palette.Len() < 2 {
			return fmt.Errorf("%d color table entries for 1 bpp: %w", s.palette.Len(), ErrFileInvalid)
		}
		for i := range lut {
			r, g, b := s.palette.Entry(i)
			lut[i] = [4]byte{r, g, b, 0xFF}
		}
	} else {
		lut[0] = [4]byte{0x00, 0x00, 0x00, 0xFF}
		lut[1] = [4]byte{0xFF, 0xFF, 0xFF, 0xFF}
	}

	out := s.pix
	var src byte
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			k := x & 7
			if k == 0 {
				var err error
				if src, err = s.cur.ReadU8(); err != nil {
					return fmt.Errorf("row %d: %w", y, err)
				}
			}
			bit := (src >> (7 - k)) & 1
			copy(out, lut[bit][:])
			out = out[4:]
		}

		// The last row may end the data without its padding.
		if y < height-1 {
			if err := s.cur.Skip(skip); err != nil {
				return fmt.Errorf("row %d padding: %w", y, err)
			}
		}
	}
	return nil
}
