package encoding

import (
	"encoding/binary"
)

// Read16 reads a little-endian uint16 from bytes at the given offset
func Read16(bytes []byte, offset int) uint16 {
	return binary.LittleEndian.Uint16(bytes[offset:])
}

// Read32 reads a little-endian uint32 from bytes at the given offset
func Read32(bytes []byte, offset int) uint32 {
	return binary.LittleEndian.Uint32(bytes[offset:])
}

// Read64 reads a little-endian uint64 from bytes at the given offset, the
// width memory-introspection pointers and record descriptors are packed
// at.
func Read64(bytes []byte, offset int) uint64 {
	return binary.LittleEndian.Uint64(bytes[offset:])
}
