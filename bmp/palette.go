package bmp

import "image/color"

// Palette is a color table as stored in the file: groups of 3 or 4 bytes
// ordered blue, green, red and an optional reserved byte.
type Palette struct {
	data     []byte
	elemSize int
}

// Len is the number of complete entries.
func (p Palette) Len() int {
	if p.elemSize == 0 {
		return 0
	}
	return len(p.data) / p.elemSize
}

func (p Palette) Present() bool {
	return len(p.data) > 0
}

func (p Palette) ElementSize() int {
	return p.elemSize
}

// Entry returns the red, green and blue components of entry i.
func (p Palette) Entry(i int) (r, g, b uint8) {
	e := p.data[i*p.elemSize:]
	return e[2], e[1], e[0]
}

// Colors converts the table to a color.Palette of opaque colors.
func (p Palette) Colors() color.Palette {
	n := p.Len()
	pal := make(color.Palette, n)
	for i := range n {
		r, g, b := p.Entry(i)
		pal[i] = color.RGBA{R: r, G: g, B: b, A: 0xFF}
	}
	return pal
}
