package info

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bmpaccess/bmp"
	"bmpaccess/parallel"
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

func TestAttrs(t *testing.T) {
	h, pal, err := bmp.DecodeHeaderPalette(checker)
	require.NoError(t, err)

	attrs := Attrs(h, pal)
	require.Zero(t, len(attrs)%2)

	kv := map[any]any{}
	for i := 0; i < len(attrs); i += 2 {
		kv[attrs[i]] = attrs[i+1]
	}
	assert.Equal(t, "BM", kv["magic"])
	assert.Equal(t, "bottom-up", kv["orientation"])
	assert.Equal(t, true, kv["supported"])
	assert.Equal(t, 2, kv["palette_entries"])
	assert.Equal(t, uint32(2835), kv["ppm_x"])
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.bmp")
	bad := filepath.Join(dir, "bad.bmp")
	require.NoError(t, os.WriteFile(good, checker, 0o644))
	require.NoError(t, os.WriteFile(bad, checker[:20], 0o644))

	pool := parallel.Start(2)
	cmd := CLICmd{Files: []string{good}, Decode: true}
	assert.NoError(t, cmd.Run(bmp.Options{}, pool.Do, pool.Wait))

	pool = parallel.Start(2)
	cmd = CLICmd{Files: []string{good, bad}}
	assert.EqualError(t, cmd.Run(bmp.Options{}, pool.Do, pool.Wait), "error processing 1 files")
}
