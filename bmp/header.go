package bmp

import (
	"fmt"
	"math/bits"
)

const (
	fileHeaderSize = 14
	coreHeaderSize = 12 // BITMAPCOREHEADER (OS/2 1.x, Windows 2.x)
	infoHeaderSize = 40 // BITMAPINFOHEADER (Windows 3.x)
)

// Recognized file magics, read little-endian.
const (
	MagicBM uint16 = 0x4D42 // "BM"
	MagicBA uint16 = 0x4D41 // "BA"
	MagicCI uint16 = 0x4943 // "CI"
	MagicCP uint16 = 0x5043 // "CP"
	MagicPT uint16 = 0x5450 // "PT"
)

type Compression uint32

const (
	CompressionNone      Compression = 0
	CompressionRLE8      Compression = 1
	CompressionRLE4      Compression = 2
	CompressionBitFields Compression = 3
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionRLE8:
		return "rle8"
	case CompressionRLE4:
		return "rle4"
	case CompressionBitFields:
		return "bitfields"
	default:
		return fmt.Sprintf("Compression(%d)", uint32(c))
	}
}

// Orientation tells whether the first stored row is the bottom or the top
// of the image.
type Orientation uint8

const (
	BottomUp Orientation = iota
	TopDown
)

func (o Orientation) String() string {
	if o == TopDown {
		return "top-down"
	}
	return "bottom-up"
}

// Header holds the file header and the DIB header fields, plus the values
// derived from them while parsing. It is read-only once parsed.
type Header struct {
	Magic      uint16
	FileSize   uint32
	Reserved1  uint16
	Reserved2  uint16
	DataOffset uint32 // absolute offset of the pixel data
	HeaderSize uint32 // DIB header size, 12 or 40

	Width       uint32
	Height      uint32 // magnitude; the sign lives in Orientation
	Orientation Orientation

	Planes          uint16
	BitsPerPixel    uint16
	Compression     Compression
	ImageDataSize   uint32
	HPixelsPerMeter uint32
	VPixelsPerMeter uint32
	ColorsUsed      uint32
	ColorsRequired  uint32

	PaletteElementSize int // 3 for the 12-byte header, 4 for the 40-byte one
	PaletteSize        int // color table length in bytes

	BitMask   bool // channel masks are used instead of a palette
	RedMask   ChannelMask
	GreenMask ChannelMask
	BlueMask  ChannelMask
}

// Stride is the row length of the decoded RGBA buffer.
func (h *Header) Stride() int {
	return int(h.Width) * 4
}

func validMagic(m uint16) bool {
	switch m {
	case MagicBM, MagicBA, MagicCI, MagicCP, MagicPT:
		return true
	}
	return false
}

// readHeader parses both headers from the start of the input and, for
// indexed 40-byte images, the color table that follows them.
func (s *decodeState) readHeader() error {
	c := s.cur
	h := &s.header
	*h = Header{
		RedMask:   NewChannelMask(0),
		GreenMask: NewChannelMask(0),
		BlueMask:  NewChannelMask(0),
	}

	if c.Len() < fileHeaderSize {
		return fmt.Errorf("%d bytes, shorter than the file header: %w", c.Len(), ErrIO)
	}

	var err error
	if h.Magic, err = c.ReadU16LE(); err != nil {
		return fmt.Errorf("magic: %w", err)
	}
	if !validMagic(h.Magic) {
		return fmt.Errorf("unknown magic %#04x: %w", h.Magic, ErrFileInvalid)
	}

	if h.FileSize, err = c.ReadU32LE(); err != nil {
		return fmt.Errorf("file size: %w", err)
	}
	if h.Reserved1, err = c.ReadU16LE(); err != nil {
		return fmt.Errorf("reserved: %w", err)
	}
	if h.Reserved2, err = c.ReadU16LE(); err != nil {
		return fmt.Errorf("reserved: %w", err)
	}
	if h.DataOffset, err = c.ReadU32LE(); err != nil {
		return fmt.Errorf("data offset: %w", err)
	}

	if h.HeaderSize, err = c.ReadU32LE(); err != nil {
		return fmt.Errorf("header size: %w", err)
	}

	switch h.HeaderSize {
	case coreHeaderSize:
		return s.readCoreHeader()
	case infoHeaderSize:
		return s.readInfoHeader()
	default:
		return fmt.Errorf("DIB header size %d: %w", h.HeaderSize, ErrFileInvalid)
	}
}

func (s *decodeState) readCoreHeader() error {
	c := s.cur
	h := &s.header

	w, err := c.ReadU16LE()
	if err != nil {
		return fmt.Errorf("width: %w", err)
	}
	h.Width = uint32(w & 0x7FFF)

	ht, err := c.ReadU16LE()
	if err != nil {
		return fmt.Errorf("height: %w", err)
	}
	if ht&0x8000 != 0 {
		h.Orientation = TopDown
	}
	h.Height = uint32(ht & 0x7FFF)

	if h.Planes, err = c.ReadU16LE(); err != nil {
		return fmt.Errorf("planes: %w", err)
	}
	if h.BitsPerPixel, err = c.ReadU16LE(); err != nil {
		return fmt.Errorf("bits per pixel: %w", err)
	}
	if h.Planes != 1 {
		return fmt.Errorf("%d planes: %w", h.Planes, ErrFileInvalid)
	}
	if h.BitsPerPixel == 16 || h.BitsPerPixel == 32 {
		return fmt.Errorf("%d bpp in a 12-byte header: %w", h.BitsPerPixel, ErrFileInvalid)
	}

	h.PaletteElementSize = 3
	h.PaletteSize = int(h.DataOffset) - (fileHeaderSize + coreHeaderSize)
	if !coreTableFits(h.PaletteSize, h.BitsPerPixel) {
		return fmt.Errorf("color table of %d bytes for %d bpp: %w", h.PaletteSize, h.BitsPerPixel, ErrFileInvalid)
	}

	// Not stored by this header.
	h.ImageDataSize = h.FileSize - h.DataOffset

	// The 3-byte color table is left unread; decoding treats the image as
	// having no palette.
	return nil
}

// coreTableFits reports whether size is exactly three bytes per entry for
// all 2^bpp entries.
func coreTableFits(size int, bpp uint16) bool {
	if size < 0 || bpp >= bits.UintSize-3 {
		return false
	}
	return size == 3<<bpp
}

func (s *decodeState) readInfoHeader() error {
	c := s.cur
	h := &s.header

	var err error
	if h.Width, err = c.ReadU32LE(); err != nil {
		return fmt.Errorf("width: %w", err)
	}
	if h.Height, err = c.ReadU32LE(); err != nil {
		return fmt.Errorf("height: %w", err)
	}
	if h.Planes, err = c.ReadU16LE(); err != nil {
		return fmt.Errorf("planes: %w", err)
	}
	if h.BitsPerPixel, err = c.ReadU16LE(); err != nil {
		return fmt.Errorf("bits per pixel: %w", err)
	}

	if signed := int32(h.Height); signed < 0 {
		h.Orientation = TopDown
		h.Height = uint32(-int64(signed))
	}

	var compression uint32
	if compression, err = c.ReadU32LE(); err != nil {
		return fmt.Errorf("compression: %w", err)
	}
	h.Compression = Compression(compression)
	if h.ImageDataSize, err = c.ReadU32LE(); err != nil {
		return fmt.Errorf("image size: %w", err)
	}
	if h.HPixelsPerMeter, err = c.ReadU32LE(); err != nil {
		return fmt.Errorf("horizontal resolution: %w", err)
	}
	if h.VPixelsPerMeter, err = c.ReadU32LE(); err != nil {
		return fmt.Errorf("vertical resolution: %w", err)
	}
	if h.ColorsUsed, err = c.ReadU32LE(); err != nil {
		return fmt.Errorf("colors used: %w", err)
	}
	if h.ColorsRequired, err = c.ReadU32LE(); err != nil {
		return fmt.Errorf("colors required: %w", err)
	}

	if h.Compression > CompressionBitFields {
		return fmt.Errorf("compression %d: %w", compression, ErrFileInvalid)
	}
	switch h.BitsPerPixel {
	case 1, 4, 8, 16, 24, 32:
	default:
		return fmt.Errorf("%d bpp in a 40-byte header: %w", h.BitsPerPixel, ErrFileInvalid)
	}

	if h.Compression == CompressionBitFields && (h.BitsPerPixel == 16 || h.BitsPerPixel == 32) {
		return s.readMasks()
	}

	h.PaletteElementSize = 4
	h.PaletteSize = int(h.DataOffset) - (fileHeaderSize + infoHeaderSize)
	if h.PaletteSize < 0 {
		return fmt.Errorf("data offset %d inside the headers: %w", h.DataOffset, ErrFileInvalid)
	}

	// Uncompressed images may leave the image size at 0.
	if h.Compression != CompressionNone && h.ImageDataSize != h.FileSize-h.DataOffset {
		return fmt.Errorf("image size %d, file has %d bytes of data: %w",
			h.ImageDataSize, int64(h.FileSize)-int64(h.DataOffset), ErrFileInvalid)
	}

	if h.BitsPerPixel <= 8 && h.PaletteSize > 0 && !h.BitMask {
		return s.readPalette()
	}
	return nil
}

func (s *decodeState) readMasks() error {
	h := &s.header
	h.BitMask = true

	for _, m := range []*ChannelMask{&h.RedMask, &h.GreenMask, &h.BlueMask} {
		v, err := s.cur.ReadU32LE()
		if err != nil {
			return fmt.Errorf("channel mask: %w", err)
		}
		*m = NewChannelMask(v)
	}
	return nil
}

func (s *decodeState) readPalette() error {
	h := &s.header
	if h.PaletteSize > s.cur.Remaining() {
		return fmt.Errorf("color table of %d bytes, %d left: %w", h.PaletteSize, s.cur.Remaining(), ErrFileInvalid)
	}

	buf, err := s.allocPalette(h.PaletteSize)
	if err != nil {
		return err
	}
	s.palette = Palette{data: buf, elemSize: h.PaletteElementSize}

	src, err := s.cur.ReadBytes(h.PaletteSize)
	if err != nil {
		return fmt.Errorf("color table: %w", err)
	}
	copy(buf, src)
	return nil
}
