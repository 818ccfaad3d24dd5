// Package bufpool provides sync.Pool-backed reusable buffers for the two
// hot allocation paths in this module: decompressing NCS document bodies
// and reading memory-scan chunks. Both paths allocate a short-lived buffer
// per call and would otherwise churn the garbage collector under a long
// scan or a large archive.
package bufpool

import "io"

// Buffer wraps a byte slice that grows geometrically instead of doubling
// on every append past its initial capacity, matching the growth strategy
// of the pools this package is modeled on: small buffers grow in fixed
// increments to avoid repeated reallocation, large buffers grow by a
// fraction of their current size to bound wasted memory.
type Buffer struct {
	B []byte
}

// NewBuffer creates a Buffer with defaultSize bytes of spare capacity.
func NewBuffer(defaultSize int) *Buffer {
	return &Buffer{B: make([]byte, 0, defaultSize)}
}

// Bytes returns the buffer's current contents.
func (b *Buffer) Bytes() []byte { return b.B }

// Reset empties the buffer while retaining its backing array.
func (b *Buffer) Reset() { b.B = b.B[:0] }

// Len returns the number of bytes currently held.
func (b *Buffer) Len() int { return len(b.B) }

// Cap returns the buffer's backing capacity.
func (b *Buffer) Cap() int { return cap(b.B) }

// Write appends data, growing the buffer as needed.
func (b *Buffer) Write(data []byte) (int, error) {
	b.Grow(len(data))
	b.B = append(b.B, data...)
	return len(data), nil
}

// WriteTo writes the buffer's contents to w.
func (b *Buffer) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(b.B)
	return int64(n), err
}

// SetLength sets the buffer's visible length to n, which must not exceed
// its capacity. Used by callers that fill the backing array directly
// (e.g. io.ReaderAt.ReadAt into b.B[:cap(b.B)]) before trimming to the
// number of bytes actually read.
func (b *Buffer) SetLength(n int) {
	if n < 0 || n > cap(b.B) {
		panic("bufpool: SetLength out of range")
	}
	b.B = b.B[:n]
}

// Grow ensures the buffer can accept at least requiredBytes more bytes
// without reallocating.
func (b *Buffer) Grow(requiredBytes int) {
	if cap(b.B)-len(b.B) >= requiredBytes {
		return
	}

	growBy := defaultGrowth
	if cap(b.B) > 4*defaultGrowth {
		growBy = cap(b.B) / 4
	}
	if growBy < requiredBytes {
		growBy = requiredBytes
	}

	newBuf := make([]byte, len(b.B), len(b.B)+growBy)
	copy(newBuf, b.B)
	b.B = newBuf
}

const defaultGrowth = 64 * 1024 // 64KiB
