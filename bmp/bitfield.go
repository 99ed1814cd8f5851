package bmp

// ChannelMask describes one color channel packed into a 16 or 32 bit pixel.
type ChannelMask struct {
	Mask   uint32
	LowBit uint32 // position of the lowest set bit
	Range  uint32 // largest value the channel can hold once shifted down
}

// NewChannelMask analyzes mask. The zero mask yields LowBit 0 and Range 255,
// which is a placeholder and not a real channel.
func NewChannelMask(mask uint32) ChannelMask {
	low, rng := AnalyzeMask(mask)
	return ChannelMask{Mask: mask, LowBit: low, Range: rng}
}

// AnalyzeMask returns the lowest set bit of mask and the value range
// 2^(high-low+1)-1 spanned between its lowest and highest set bits.
func AnalyzeMask(mask uint32) (lowBit, rng uint32) {
	if mask == 0 {
		return 0, 255
	}

	for i := uint32(0); i < 32; i++ {
		if mask&(1<<i) != 0 {
			lowBit = i
			break
		}
	}

	for i := 31; i >= 0; i-- {
		if mask&(1<<uint32(i)) != 0 {
			width := uint32(i) - lowBit + 1
			rng = uint32((uint64(1) << width) - 1)
			break
		}
	}
	return lowBit, rng
}

// Present reports whether the mask selects any bits.
func (m ChannelMask) Present() bool {
	return m.Mask != 0
}

// Extract isolates the channel in pixel and scales it to 0..255. It is meant
// for 16 and 32 bpp decoders; no registered decoder calls it yet.
func (m ChannelMask) Extract(pixel uint32) uint8 {
	if !m.Present() || m.Range == 0 {
		return 0
	}
	v := (pixel & m.Mask) >> m.LowBit
	if m.Range == 255 {
		return uint8(v)
	}
	return uint8((uint64(v)*255 + uint64(m.Range)/2) / uint64(m.Range))
}
