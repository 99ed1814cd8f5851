package palette

import (
	"fmt"
	"image/color"
	"maps"
	"os"
	"slices"
	"strings"

	"bmpaccess/bmp"
)

var builtin = map[string]color.Palette{
	"bw": {
		color.RGBA{0x00, 0x00, 0x00, 0xFF},
		color.RGBA{0xFF, 0xFF, 0xFF, 0xFF},
	},
	"gray4": {
		color.RGBA{0x00, 0x00, 0x00, 0xFF},
		color.RGBA{0x55, 0x55, 0x55, 0xFF},
		color.RGBA{0xAA, 0xAA, 0xAA, 0xFF},
		color.RGBA{0xFF, 0xFF, 0xFF, 0xFF},
	},
}

// Names lists the built-in palettes.
func Names() []string {
	return slices.Sorted(maps.Keys(builtin))
}

// Load returns a built-in palette by name, or the first palette of a RIFF
// PAL file.
func Load(name string) (color.Palette, error) {
	if pal, ok := builtin[strings.ToLower(name)]; ok {
		return pal, nil
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("unknown palette %q, not one of %s nor a file: %w",
			name, strings.Join(Names(), ", "), err)
	}
	defer f.Close()

	pals, err := ReadFrom(f)
	if err != nil {
		return nil, fmt.Errorf("could not load palette file %q: %w", name, err)
	} else if len(pals) == 0 || len(pals[0]) == 0 {
		return nil, fmt.Errorf("palette file %q holds no colors", name)
	}
	return pals[0], nil
}

// FromBMP returns the color table of a BMP file. 12-byte header files and
// files without a table yield the implicit black and white pair used when
// decoding them.
func FromBMP(data []byte) (color.Palette, error) {
	h, pal, err := bmp.DecodeHeaderPalette(data)
	if err != nil {
		return nil, err
	}
	if pal.Present() {
		return pal.Colors(), nil
	}
	if h.BitsPerPixel == 1 {
		return builtin["bw"], nil
	}
	return nil, fmt.Errorf("%d bpp image has no color table", h.BitsPerPixel)
}
