package bmp

import (
	"encoding/binary"
	"testing"
)

// testBMP describes a synthetic file. Rows are given in storage order and
// padded to 4 bytes by build.
type testBMP struct {
	magic       uint16
	headerSize  uint32
	width       int32
	height      int32
	planes      uint16
	bpp         uint16
	compression uint32
	imageSize   uint32
	palette     []byte
	masks       []uint32
	rows        [][]byte

	fileSize   uint32 // 0 computes it
	dataOffset uint32 // 0 computes it
}

func (b testBMP) build(t *testing.T) []byte {
	t.Helper()

	if b.magic == 0 {
		b.magic = MagicBM
	}
	if b.headerSize == 0 {
		b.headerSize = infoHeaderSize
	}
	if b.planes == 0 {
		b.planes = 1
	}

	var dib []byte
	dib = binary.LittleEndian.AppendUint32(dib, b.headerSize)
	switch b.headerSize {
	case coreHeaderSize:
		w := uint16(b.width) & 0x7FFF
		h := uint16(b.height) & 0x7FFF
		if b.height < 0 {
			h = uint16(-b.height)&0x7FFF | 0x8000
		}
		dib = binary.LittleEndian.AppendUint16(dib, w)
		dib = binary.LittleEndian.AppendUint16(dib, h)
		dib = binary.LittleEndian.AppendUint16(dib, b.planes)
		dib = binary.LittleEndian.AppendUint16(dib, b.bpp)
	default:
		dib = binary.LittleEndian.AppendUint32(dib, uint32(b.width))
		dib = binary.LittleEndian.AppendUint32(dib, uint32(b.height))
		dib = binary.LittleEndian.AppendUint16(dib, b.planes)
		dib = binary.LittleEndian.AppendUint16(dib, b.bpp)
		dib = binary.LittleEndian.AppendUint32(dib, b.compression)
		dib = binary.LittleEndian.AppendUint32(dib, b.imageSize)
		dib = binary.LittleEndian.AppendUint32(dib, 2835)
		dib = binary.LittleEndian.AppendUint32(dib, 2835)
		dib = binary.LittleEndian.AppendUint32(dib, 0)
		dib = binary.LittleEndian.AppendUint32(dib, 0)
	}
	for _, m := range b.masks {
		dib = binary.LittleEndian.AppendUint32(dib, m)
	}

	var pixels []byte
	for _, row := range b.rows {
		pixels = append(pixels, row...)
		for len(pixels)%4 != 0 {
			pixels = append(pixels, 0)
		}
	}

	dataOffset := b.dataOffset
	if dataOffset == 0 {
		dataOffset = uint32(fileHeaderSize + len(dib) + len(b.palette))
	}
	fileSize := b.fileSize
	if fileSize == 0 {
		fileSize = dataOffset + uint32(len(pixels))
	}

	var out []byte
	out = binary.LittleEndian.AppendUint16(out, b.magic)
	out = binary.LittleEndian.AppendUint32(out, fileSize)
	out = binary.LittleEndian.AppendUint16(out, 0)
	out = binary.LittleEndian.AppendUint16(out, 0)
	out = binary.LittleEndian.AppendUint32(out, dataOffset)
	out = append(out, dib...)
	out = append(out, b.palette...)
	for len(out) < int(dataOffset) {
		out = append(out, 0)
	}
	return append(out, pixels...)
}

// blackWhite is a 1 bpp color table: index 0 black, index 1 white.
func blackWhite(elemSize int) []byte {
	pal := make([]byte, 2*elemSize)
	for i := elemSize; i < elemSize+3; i++ {
		pal[i] = 0xFF
	}
	return pal
}

func rgba(px ...[4]byte) []byte {
	var out []byte
	for _, p := range px {
		out = append(out, p[:]...)
	}
	return out
}

var (
	black = [4]byte{0, 0, 0, 255}
	white = [4]byte{255, 255, 255, 255}
)
