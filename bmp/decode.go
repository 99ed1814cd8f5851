// Package bmp decodes BMP images with a 12-byte (OS/2 1.x) or 40-byte
// (Windows 3.x) DIB header into top-down RGBA8888 pixels.
//
// Headers of every bit depth are parsed and validated, but only 1 bit per
// pixel images have a pixel decoder; other layouts fail with
// ErrFileNotSupported.
package bmp

import "fmt"

// Options bounds the allocations of a single decode.
type Options struct {
	// MaxPixels caps Width*Height. Zero means DefaultOptions.MaxPixels.
	MaxPixels int
	// MaxPaletteSize caps the color table, in bytes.
	MaxPaletteSize int
}

var DefaultOptions = Options{
	MaxPixels:      1 << 28,
	MaxPaletteSize: 1 << 20,
}

func (o Options) withDefaults() (Options, error) {
	if o.MaxPixels < 0 || o.MaxPaletteSize < 0 {
		return o, fmt.Errorf("negative limit: %w", ErrInvalidArgument)
	}
	if o.MaxPixels == 0 {
		o.MaxPixels = DefaultOptions.MaxPixels
	}
	if o.MaxPaletteSize == 0 {
		o.MaxPaletteSize = DefaultOptions.MaxPaletteSize
	}
	return o, nil
}

// decodeState carries everything a single decode touches. Buffers are
// acquired through it and given up in release, whatever the outcome.
type decodeState struct {
	opts    Options
	cur     *Cursor
	header  Header
	palette Palette
	pix     []byte
	scratch *[]byte
	live    int // owned buffers not yet released
}

func newDecodeState(data []byte, opts Options) (*decodeState, error) {
	if data == nil {
		return nil, fmt.Errorf("nil input: %w", ErrInvalidArgument)
	}
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	return &decodeState{opts: opts, cur: NewCursor(data)}, nil
}

func (s *decodeState) allocPalette(n int) ([]byte, error) {
	if n > s.opts.MaxPaletteSize {
		return nil, fmt.Errorf("color table of %d bytes: %w", n, ErrOutOfMemory)
	}
	s.live++
	return make([]byte, n), nil
}

func (s *decodeState) allocPixels() error {
	h := &s.header
	n := uint64(h.Width) * uint64(h.Height)
	if n > uint64(s.opts.MaxPixels) {
		return fmt.Errorf("%dx%d pixels: %w", h.Width, h.Height, ErrOutOfMemory)
	}
	s.pix = make([]byte, n*4)
	s.live++
	return nil
}

func (s *decodeState) acquireScratch(n int) {
	s.scratch = getScratch(n)
	s.live++
}

func (s *decodeState) releaseScratch() {
	if s.scratch != nil {
		putScratch(s.scratch)
		s.scratch = nil
		s.live--
	}
}

// release drops the palette and scratch space. The pixel buffer is handed
// over to the caller when keep is set and dropped otherwise.
func (s *decodeState) release(keep bool) {
	if s.palette.Present() {
		s.palette = Palette{}
		s.live--
	}
	s.releaseScratch()
	if s.pix != nil {
		if !keep {
			s.pix = nil
		}
		s.live--
	}
}

func (s *decodeState) decode() (img *Image, err error) {
	defer func() {
		s.release(err == nil)
	}()

	if err = s.readHeader(); err != nil {
		return nil, err
	}

	h := &s.header
	dec, err := lookupDecoder(h)
	if err != nil {
		return nil, err
	}

	if h.Width == 0 || h.Height == 0 {
		return nil, fmt.Errorf("empty %dx%d image: %w", h.Width, h.Height, ErrFileInvalid)
	}
	if int64(h.DataOffset)+int64(h.ImageDataSize) > int64(s.cur.Len()) {
		return nil, fmt.Errorf("%d bytes of data at %d, input has %d: %w",
			h.ImageDataSize, h.DataOffset, s.cur.Len(), ErrFileInvalid)
	}

	need, err := dec.minData(h)
	if err != nil {
		return nil, err
	}
	if avail := int64(s.cur.Len()) - int64(h.DataOffset); avail < 0 || uint64(avail) < need {
		return nil, fmt.Errorf("%d bytes of pixel data at %d, input has %d: %w",
			need, h.DataOffset, s.cur.Len(), ErrIO)
	}

	if err = s.allocPixels(); err != nil {
		return nil, err
	}
	if err = s.cur.Seek(int(h.DataOffset)); err != nil {
		return nil, fmt.Errorf("pixel data: %w", ErrFileInvalid)
	}

	if err = dec.decode(s); err != nil {
		return nil, err
	}
	s.orient()

	return &Image{Header: *h, Pix: s.pix, Stride: h.Stride()}, nil
}

// Decode decodes a complete BMP file held in data.
func Decode(data []byte) (*Image, error) {
	return DecodeWithOptions(data, Options{})
}

func DecodeWithOptions(data []byte, opts Options) (*Image, error) {
	s, err := newDecodeState(data, opts)
	if err != nil {
		return nil, err
	}
	return s.decode()
}

// DecodeHeader parses and validates the headers without decoding pixels.
// The color table of indexed 40-byte images is read and checked, then
// dropped.
func DecodeHeader(data []byte) (*Header, error) {
	h, _, err := DecodeHeaderPalette(data)
	return h, err
}

// DecodeHeaderPalette is DecodeHeader returning the color table as well.
func DecodeHeaderPalette(data []byte) (*Header, Palette, error) {
	s, err := newDecodeState(data, Options{})
	if err != nil {
		return nil, Palette{}, err
	}
	if err = s.readHeader(); err != nil {
		return nil, Palette{}, err
	}
	h, pal := s.header, s.palette
	return &h, pal, nil
}
