package bmp

import "sync"

// Scratch buffers larger than this are left to the garbage collector.
const maxPooledScratch = 16 << 20

var flipPool = sync.Pool{
	New: func() any {
		return new([]byte)
	},
}

// FlipRows reverses the row order of a row-major buffer in place, going
// through a full temporary copy. Applying it twice restores the input.
func FlipRows(pix []byte, stride, height int) {
	tmp := getScratch(len(pix))
	flipInto(*tmp, pix, stride, height)
	copy(pix, *tmp)
	putScratch(tmp)
}

func flipInto(dst, src []byte, stride, height int) {
	for i := 0; i < height; i++ {
		j := height - i - 1
		copy(dst[stride*j:stride*(j+1)], src[stride*i:stride*(i+1)])
	}
}

func getScratch(n int) *[]byte {
	buf := flipPool.Get().(*[]byte)
	if cap(*buf) < n {
		*buf = make([]byte, n)
	}
	*buf = (*buf)[:n]
	return buf
}

func putScratch(buf *[]byte) {
	if cap(*buf) > maxPooledScratch {
		return
	}
	clear(*buf)
	flipPool.Put(buf)
}

// orient puts the decoded rows in top-down order.
func (s *decodeState) orient() {
	h := &s.header
	if h.Orientation == TopDown {
		return
	}

	s.acquireScratch(len(s.pix))
	flipInto(*s.scratch, s.pix, h.Stride(), int(h.Height))
	copy(s.pix, *s.scratch)
	s.releaseScratch()
}
