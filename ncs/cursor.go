package ncs

import (
	"github.com/monokrome/bl4-sub003/encoding"
)

// Cursor walks a document body byte-by-byte, tracking position the way the
// rest of this module's readers do: an explicit position field advanced by
// each read rather than an io.Reader wrapper, so callers can freely peek,
// rewind, and report the exact byte offset of a malformed field.
type Cursor struct {
	Bytes []byte
	Pos   int
}

func NewCursor(b []byte) *Cursor {
	return &Cursor{Bytes: b}
}

func (c *Cursor) Remaining() int {
	return len(c.Bytes) - c.Pos
}

func (c *Cursor) ReadByte() (byte, error) {
	if c.Remaining() < 1 {
		return 0, ErrTruncated
	}
	b := c.Bytes[c.Pos]
	c.Pos++
	return b, nil
}

func (c *Cursor) ReadUint16() (uint16, error) {
	if c.Remaining() < 2 {
		return 0, ErrTruncated
	}
	v := encoding.Read16(c.Bytes, c.Pos)
	c.Pos += 2
	return v, nil
}

func (c *Cursor) ReadUint32() (uint32, error) {
	if c.Remaining() < 4 {
		return 0, ErrTruncated
	}
	v := encoding.Read32(c.Bytes, c.Pos)
	c.Pos += 4
	return v, nil
}

func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	if n < 0 || c.Remaining() < n {
		return nil, ErrTruncated
	}
	b := c.Bytes[c.Pos : c.Pos+n]
	c.Pos += n
	return b, nil
}

// ReadVarInt reads the 7-bit-continuation variable-length integer shared
// with the item-serial codec's bit stream, here operating byte-aligned.
func (c *Cursor) ReadVarInt() (uint64, error) {
	var out uint64
	var shift uint
	for {
		b, err := c.ReadByte()
		if err != nil {
			return 0, err
		}
		out |= uint64(b&0x7F) << shift
		if b&0x80 == 0 {
			return out, nil
		}
		shift += 7
		if shift > 63 {
			return 0, ErrTruncated
		}
	}
}

// Seek repositions the cursor to an absolute byte offset.
func (c *Cursor) Seek(pos int) error {
	if pos < 0 || pos > len(c.Bytes) {
		return ErrTruncated
	}
	c.Pos = pos
	return nil
}
