package bmp

import "fmt"

// Cursor reads little-endian fields from an immutable buffer. A failed
// read leaves the position where it was.
type Cursor struct {
	data []byte
	pos  int
}

func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data}
}

func (c *Cursor) Pos() int       { return c.pos }
func (c *Cursor) Len() int       { return len(c.data) }
func (c *Cursor) Remaining() int { return len(c.data) - c.pos }

// Seek moves to an absolute offset. Offsets past the end are rejected.
func (c *Cursor) Seek(off int) error {
	if off < 0 || off > len(c.data) {
		return fmt.Errorf("seek to %d in %d bytes: %w", off, len(c.data), ErrIO)
	}
	c.pos = off
	return nil
}

func (c *Cursor) need(n int) error {
	if n < 0 || c.pos+n > len(c.data) {
		return fmt.Errorf("read %d bytes at %d of %d: %w", n, c.pos, len(c.data), ErrIO)
	}
	return nil
}

func (c *Cursor) ReadU8() (uint8, error) {
	if err := c.need(1); err != nil {
		return 0, err
	}
	v := c.data[c.pos]
	c.pos++
	return v, nil
}

func (c *Cursor) ReadU16LE() (uint16, error) {
	if err := c.need(2); err != nil {
		return 0, err
	}
	b := c.data[c.pos:]
	v := uint16(b[0]) | uint16(b[1])<<8
	c.pos += 2
	return v, nil
}

func (c *Cursor) ReadU32LE() (uint32, error) {
	if err := c.need(4); err != nil {
		return 0, err
	}
	b := c.data[c.pos:]
	v := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
	c.pos += 4
	return v, nil
}

// ReadBytes returns the next n bytes without copying them.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	if err := c.need(n); err != nil {
		return nil, err
	}
	b := c.data[c.pos : c.pos+n : c.pos+n]
	c.pos += n
	return b, nil
}

// Skip advances by n bytes.
func (c *Cursor) Skip(n int) error {
	if err := c.need(n); err != nil {
		return err
	}
	c.pos += n
	return nil
}
