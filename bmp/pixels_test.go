package bmp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCore1bppPalette(t *testing.T) {
	// Top-down pixels 1,0 / 0,1 stored bottom-up.
	data := testBMP{
		headerSize: coreHeaderSize,
		width:      2,
		height:     2,
		bpp:        1,
		palette:    []byte{0, 0, 0, 255, 255, 255},
		rows:       [][]byte{{0x40}, {0x80}},
	}.build(t)

	img, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, 2, img.Width())
	assert.Equal(t, 2, img.Height())
	assert.Equal(t, 8, img.Stride)
	assert.Equal(t, []byte{
		255, 255, 255, 255, 0, 0, 0, 255,
		0, 0, 0, 255, 255, 255, 255, 255,
	}, img.Pix)
}

func TestDecodeInfo1bppPaletteColors(t *testing.T) {
	// Entry 0 is pure blue, entry 1 pure red, stored B,G,R,reserved.
	pal := []byte{255, 0, 0, 0, 0, 0, 255, 0}
	data := testBMP{
		width:   3,
		height:  -1,
		bpp:     1,
		palette: pal,
		rows:    [][]byte{{0xA0}},
	}.build(t)

	img, err := Decode(data)
	require.NoError(t, err)

	red := [4]byte{255, 0, 0, 255}
	blue := [4]byte{0, 0, 255, 255}
	assert.Equal(t, rgba(red, blue, red), img.Pix)
}

func TestDecode1bppWideRows(t *testing.T) {
	// 10 pixels span two source bytes per row; rows padded to 4 bytes.
	data := testBMP{
		width:   10,
		height:  -2,
		bpp:     1,
		palette: blackWhite(4),
		rows: [][]byte{
			{0xFF, 0x40},
			{0x01, 0x80},
		},
	}.build(t)

	img, err := Decode(data)
	require.NoError(t, err)
	require.Len(t, img.Pix, 10*2*4)

	want := rgba(
		white, white, white, white, white, white, white, white, black, white,
		black, black, black, black, black, black, black, white, white, black,
	)
	assert.Equal(t, want, img.Pix)
}

func TestDecode1bppNoPalette(t *testing.T) {
	// The 12-byte header never loads its color table, so bits map straight
	// to black and white even with an inverted table on disk.
	data := testBMP{
		headerSize: coreHeaderSize,
		width:      4,
		height:     -1,
		bpp:        1,
		palette:    []byte{255, 255, 255, 0, 0, 0},
		rows:       [][]byte{{0x90}},
	}.build(t)

	img, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, rgba(white, black, black, white), img.Pix)

	info := testBMP{width: 2, height: -1, bpp: 1, rows: [][]byte{{0x40}}}.build(t)
	img, err = Decode(info)
	require.NoError(t, err)
	assert.Equal(t, rgba(black, white), img.Pix)
}

func TestDecode1bppTruncatedPixels(t *testing.T) {
	data := testBMP{width: 8, height: 4, bpp: 1, palette: blackWhite(4), rows: [][]byte{{1}, {2}, {3}, {4}}}.build(t)

	// Declared file size still covers the rows, the buffer does not.
	_, err := Decode(data[:len(data)-6])
	assert.ErrorIs(t, err, ErrIO)
}

func TestDecode1bppSingleEntryPalette(t *testing.T) {
	data := testBMP{width: 1, height: 1, bpp: 1, palette: []byte{0, 0, 0, 0}, rows: [][]byte{{0}}}.build(t)

	_, err := Decode(data)
	assert.ErrorIs(t, err, ErrFileInvalid)
}

func TestDecode1bppDataTooShortForWidth(t *testing.T) {
	// 40 pixels per row need 5 bytes, the file only has 4 per row.
	data := testBMP{width: 40, height: 1, bpp: 1, palette: blackWhite(4), rows: [][]byte{{0}}}.build(t)

	_, err := Decode(data)
	assert.ErrorIs(t, err, ErrFileInvalid)
}

func TestScanLinePadding(t *testing.T) {
	tests := []struct {
		name     string
		header   Header
		padding  int
		skip     int
		rowBytes int
	}{
		{"2px in 4 bytes", Header{Width: 2, Height: 2, FileSize: 40, DataOffset: 32}, 30, 3, 4},
		{"9px in 4 bytes", Header{Width: 9, Height: 1, FileSize: 66, DataOffset: 62}, 23, 2, 4},
		{"32px exact", Header{Width: 32, Height: 3, FileSize: 74, DataOffset: 62}, 0, 0, 4},
		{"33px in 8 bytes", Header{Width: 33, Height: 1, FileSize: 70, DataOffset: 62}, 31, 3, 8},
		{"compressed", Header{Width: 2, Height: 2, FileSize: 40, DataOffset: 32, Compression: CompressionRLE8}, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := scanLinePadding(&tt.header)
			assert.Equal(t, tt.padding, p)
			assert.Equal(t, tt.skip, paddingSkip(p))
			if tt.rowBytes > 0 {
				read := (int(tt.header.Width) + 7) / 8
				assert.Equal(t, tt.rowBytes, read+paddingSkip(p), "bytes consumed per row")
			}
		})
	}
}

func TestVariantDispatch(t *testing.T) {
	supported := SupportedVariants()
	assert.ElementsMatch(t, []Variant{
		{coreHeaderSize, 1, CompressionNone},
		{infoHeaderSize, 1, CompressionNone},
	}, supported)

	all := Variants()
	assert.Len(t, all, 5+6*4)
	for _, v := range all {
		if v.BitsPerPixel == 1 && v.Compression == CompressionNone {
			assert.True(t, v.Supported(), v.String())
		} else {
			assert.False(t, v.Supported(), v.String())
		}
	}

	assert.Equal(t, "hdr40/8bpp/rle8", Variant{40, 8, CompressionRLE8}.String())
}

func TestDecodeNotSupported(t *testing.T) {
	tests := []struct {
		name string
		bmp  testBMP
	}{
		{"8bpp", testBMP{bpp: 8, palette: make([]byte, 1024), rows: [][]byte{{0}}}},
		{"4bpp", testBMP{bpp: 4, palette: make([]byte, 64), rows: [][]byte{{0}}}},
		{"24bpp", testBMP{bpp: 24, rows: [][]byte{{0, 0, 0}}}},
		{"32bpp", testBMP{bpp: 32, rows: [][]byte{{0, 0, 0, 0}}}},
		{"16bpp bitfields", testBMP{bpp: 16, compression: 3, imageSize: 4, masks: []uint32{0xF800, 0x7E0, 0x1F}, rows: [][]byte{{0, 0}}}},
		{"1bpp rle", testBMP{bpp: 1, compression: 1, imageSize: 4, palette: blackWhite(4), rows: [][]byte{{0}}}},
		{"core 8bpp", testBMP{headerSize: coreHeaderSize, bpp: 8, palette: make([]byte, 768), rows: [][]byte{{0}}}},
		{"core 3bpp", testBMP{headerSize: coreHeaderSize, bpp: 3, palette: make([]byte, 24), rows: [][]byte{{0}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.bmp.width, tt.bmp.height = 1, 1
			img, err := Decode(tt.bmp.build(t))
			assert.ErrorIs(t, err, ErrFileNotSupported)
			assert.Nil(t, img)
		})
	}
}
