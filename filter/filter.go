// Package filter exposes the BMP decoder as a media pipeline stage: file
// packets holding a whole .bmp in, raw RGBA frames out.
package filter

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"bmpaccess/bmp"
)

const Name = "BMP1BPP"

var (
	ErrNotSupported  = errors.New("filter: input stream not supported")
	ErrNotConfigured = errors.New("filter: no input configured")
)

type Filter struct {
	logger *slog.Logger
	opts   bmp.Options

	mu  sync.RWMutex
	out Properties
}

func New(logger *slog.Logger, opts bmp.Options) *Filter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Filter{
		logger: logger.With("filter", Name),
		opts:   opts,
	}
}

// Accepts reports whether a stream with these properties carries BMP files.
func Accepts(in Properties) bool {
	if in.String(StreamType) != StreamFile {
		return false
	}
	return strings.EqualFold(in.String(FileExt), "bmp") || strings.EqualFold(in.String(MIME), "image/bmp")
}

// Configure sets up the output stream for an input stream. Passing nil
// disconnects the input.
func (f *Filter) Configure(in Properties) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if in == nil {
		f.out = nil
		f.logger.Debug("input removed")
		return nil
	}

	if !Accepts(in) {
		return fmt.Errorf("stream %q ext %q mime %q: %w",
			in.String(StreamType), in.String(FileExt), in.String(MIME), ErrNotSupported)
	}

	out := in.Clone()
	out[StreamType] = StreamVisual
	out[CodecID] = CodecRaw
	out[PixelFormat] = PixelRGBA
	f.out = out

	f.logger.Debug("output configured", "props", len(out))
	return nil
}

// OutputProperties returns a copy of the configured output stream
// properties.
func (f *Filter) OutputProperties() Properties {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.out.Clone()
}

// Process decodes one packet. The output packet carries the frame size and
// the properties of the input packet.
func (f *Filter) Process(pck Packet) (Packet, error) {
	f.mu.RLock()
	configured := f.out != nil
	f.mu.RUnlock()
	if !configured {
		return Packet{}, ErrNotConfigured
	}

	img, err := bmp.DecodeWithOptions(pck.Data, f.opts)
	if err != nil {
		return Packet{}, fmt.Errorf("could not decode packet of %d bytes: %w", len(pck.Data), err)
	}

	props := Properties{
		Width:  img.Header.Width,
		Height: img.Header.Height,
		Stride: uint32(img.Stride),
	}
	props.Merge(pck.Props)

	f.logger.Debug("decoded frame", "width", img.Width(), "height", img.Height(),
		"orientation", img.Header.Orientation.String())
	return Packet{Data: img.Pix, Props: props}, nil
}
