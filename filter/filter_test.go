package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bmpaccess/bmp"
)

// 2x2, 1 bpp, 40-byte header, black/white table, bottom-up.
var checker = []byte{
	'B', 'M', 70, 0, 0, 0, 0, 0, 0, 0, 62, 0, 0, 0,
	40, 0, 0, 0, 2, 0, 0, 0, 2, 0, 0, 0, 1, 0, 1, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0x13, 0x0B, 0, 0, 0x13, 0x0B, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0xFF, 0xFF, 0xFF, 0,
	0x40, 0, 0, 0, 0x80, 0, 0, 0,
}

func bmpInput() Properties {
	return Properties{StreamType: StreamFile, FileExt: "bmp", "url": "in.bmp"}
}

func TestConfigure(t *testing.T) {
	f := New(nil, bmp.Options{})

	require.NoError(t, f.Configure(bmpInput()))
	out := f.OutputProperties()
	assert.Equal(t, StreamVisual, out.String(StreamType))
	assert.Equal(t, CodecRaw, out.String(CodecID))
	assert.Equal(t, PixelRGBA, out.String(PixelFormat))
	assert.Equal(t, "in.bmp", out["url"])

	require.NoError(t, f.Configure(nil))
	assert.Empty(t, f.OutputProperties())
}

func TestConfigureCaps(t *testing.T) {
	tests := []struct {
		name  string
		props Properties
		ok    bool
	}{
		{"ext", Properties{StreamType: StreamFile, FileExt: "BMP"}, true},
		{"mime", Properties{StreamType: StreamFile, MIME: "image/bmp"}, true},
		{"png", Properties{StreamType: StreamFile, FileExt: "png"}, false},
		{"visual", Properties{StreamType: StreamVisual, FileExt: "bmp"}, false},
		{"empty", Properties{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(nil, bmp.Options{}).Configure(tt.props)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrNotSupported)
			}
		})
	}
}

func TestProcess(t *testing.T) {
	f := New(nil, bmp.Options{})

	_, err := f.Process(Packet{Data: checker})
	assert.ErrorIs(t, err, ErrNotConfigured)

	require.NoError(t, f.Configure(bmpInput()))
	out, err := f.Process(Packet{Data: checker, Props: Properties{"pts": 42, Width: uint32(99)}})
	require.NoError(t, err)

	assert.Equal(t, []byte{
		255, 255, 255, 255, 0, 0, 0, 255,
		0, 0, 0, 255, 255, 255, 255, 255,
	}, out.Data)

	w, ok := out.Props.Uint(Width)
	require.True(t, ok)
	assert.Equal(t, uint32(2), w, "decoded size wins over packet properties")
	h, _ := out.Props.Uint(Height)
	assert.Equal(t, uint32(2), h)
	s, _ := out.Props.Uint(Stride)
	assert.Equal(t, uint32(8), s)
	assert.Equal(t, 42, out.Props["pts"])
}

func TestProcessErrors(t *testing.T) {
	f := New(nil, bmp.Options{})
	require.NoError(t, f.Configure(bmpInput()))

	_, err := f.Process(Packet{Data: checker[:10]})
	assert.ErrorIs(t, err, bmp.ErrIO)

	bad := append([]byte(nil), checker...)
	bad[28] = 8 // bits per pixel
	_, err = f.Process(Packet{Data: bad})
	assert.ErrorIs(t, err, bmp.ErrFileNotSupported)

	small := New(nil, bmp.Options{MaxPixels: 2})
	require.NoError(t, small.Configure(bmpInput()))
	_, err = small.Process(Packet{Data: checker})
	assert.ErrorIs(t, err, bmp.ErrOutOfMemory)
}
