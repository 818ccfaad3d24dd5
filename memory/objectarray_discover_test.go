package memory

import (
	"context"
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildObjectArrayDescriptorImage lays out a plausible global object-array
// descriptor, the chunk-pointer array it references (one chunk), and five
// synthetic UObjects in that chunk, each with a vtable pointer landing
// inside codeStart/codeEnd.
func buildObjectArrayDescriptorImage(base uintptr, codeStart, codeEnd uintptr) []byte {
	img := make([]byte, 0x400)

	const descOff = 0
	const chunkPtrArrayOff = 0x100
	const chunkZeroOff = 0x200
	const objStride = 16

	chunkPtrArrayAddr := base + chunkPtrArrayOff
	chunkZeroAddr := base + chunkZeroOff

	binary.LittleEndian.PutUint64(img[descOff:descOff+8], uint64(chunkPtrArrayAddr))
	binary.LittleEndian.PutUint64(img[descOff+8:descOff+16], 0) // preallocatedPtr, unused
	binary.LittleEndian.PutUint32(img[descOff+16:descOff+20], 100_000)
	binary.LittleEndian.PutUint32(img[descOff+20:descOff+24], 10_000)
	binary.LittleEndian.PutUint32(img[descOff+28:descOff+32], 1) // numChunks == ceil(10_000/65536)

	binary.LittleEndian.PutUint64(img[chunkPtrArrayOff:chunkPtrArrayOff+8], uint64(chunkZeroAddr))

	for i := 0; i < 5; i++ {
		objAddr := base + 0x300 + uintptr(i*objStride)
		slot := chunkZeroOff + i*8
		binary.LittleEndian.PutUint64(img[slot:slot+8], uint64(objAddr))

		objOff := int(objAddr - base)
		binary.LittleEndian.PutUint64(img[objOff:objOff+8], uint64(codeStart+0x10)) // vtable
		binary.LittleEndian.PutUint64(img[objOff+8:objOff+16], 0xdeadbeef)          // class ptr
	}

	return img
}

func TestDiscoverObjectArrayByDataScan(t *testing.T) {
	base := uintptr(0x500000)
	codeStart := uintptr(0x401000)
	codeEnd := uintptr(0x403000)
	layout := &Layout{
		ImageBase: 0x400000,
		Sections:  []Section{{Name: ".text", VirtualAddr: 0x1000, VirtualSize: 0x2000, Executable: true}},
	}
	require.Equal(t, codeStart, layout.ImageBase+uintptr(layout.Sections[0].VirtualAddr))
	require.Equal(t, codeEnd, codeStart+uintptr(layout.Sections[0].VirtualSize))

	img := buildObjectArrayDescriptorImage(base, codeStart, codeEnd)
	mapsText := fmt.Sprintf("%x-%x rw- 0\n", base, base+uintptr(len(img)))
	src, err := LoadMappedDump(img, mapsText)
	require.NoError(t, err)

	arr, err := DiscoverObjectArray(context.Background(), src, layout, ObjectArrayOptions{})
	require.NoError(t, err)
	assert.Equal(t, MethodDataScan, arr.Method)
	assert.Equal(t, 10_000, arr.Count)
	require.Len(t, arr.ChunkPointers, 1)

	addr, err := arr.ObjectAddr(src, 0)
	require.NoError(t, err)
	assert.Equal(t, base+0x300, addr)
}

func TestDiscoverObjectArraySkipsExecutableRegions(t *testing.T) {
	base := uintptr(0x500000)
	codeStart := uintptr(0x401000)
	codeEnd := uintptr(0x403000)
	layout := &Layout{
		ImageBase: 0x400000,
		Sections:  []Section{{Name: ".text", VirtualAddr: 0x1000, VirtualSize: 0x2000, Executable: true}},
	}

	img := buildObjectArrayDescriptorImage(base, codeStart, codeEnd)
	// Marked executable: the descriptor is a data structure and must not
	// be searched for inside a code section.
	mapsText := fmt.Sprintf("%x-%x r-x 0\n", base, base+uintptr(len(img)))
	src, err := LoadMappedDump(img, mapsText)
	require.NoError(t, err)

	_, err = discoverByDataScan(context.Background(), src, layout, ObjectArrayOptions{}.withDefaults())
	assert.Error(t, err)
}

func TestPlausibleObjectArrayDescriptorBounds(t *testing.T) {
	base := objectArrayDescriptor{chunksPtr: 1, max: 100_000, num: 10_000, numChunks: 1}
	assert.True(t, plausibleObjectArrayDescriptor(base))

	tooSmallMax := base
	tooSmallMax.max = objectArrayMinMax - 1
	assert.False(t, plausibleObjectArrayDescriptor(tooSmallMax))

	tooBigMax := base
	tooBigMax.max = objectArrayMaxMax + 1
	assert.False(t, plausibleObjectArrayDescriptor(tooBigMax))

	numAboveMax := base
	numAboveMax.num = base.max + 1
	assert.False(t, plausibleObjectArrayDescriptor(numAboveMax))

	badChunks := base
	badChunks.numChunks = 10
	assert.False(t, plausibleObjectArrayDescriptor(badChunks))

	noChunksPtr := base
	noChunksPtr.chunksPtr = 0
	assert.False(t, plausibleObjectArrayDescriptor(noChunksPtr))
}

// buildStrideProbeImage lays out 16 candidate item slots starting at
// imageBase, each objStride bytes apart, with the object pointer at
// objOffset within the slot; each resolved object's first 8 bytes are a
// vtable value landing inside codeStart/codeEnd.
func buildStrideProbeImage(imageBase uintptr, objStride, objOffset int, codeStart, codeEnd uintptr) []byte {
	const sampleCount = 16
	const objAreaOff = 0x1000

	img := make([]byte, objAreaOff+sampleCount*16+16)

	for i := 0; i < sampleCount; i++ {
		itemOff := i * objStride
		objAddr := imageBase + objAreaOff + uintptr(i*16)

		binary.LittleEndian.PutUint64(img[itemOff+objOffset:itemOff+objOffset+8], uint64(objAddr))

		objOff := objAreaOff + i*16
		binary.LittleEndian.PutUint64(img[objOff:objOff+8], uint64(codeStart+0x10))
	}

	return img
}

func TestDiscoverByStrideProbePicksBestCandidate(t *testing.T) {
	imageBase := uintptr(0x600000)
	codeStart := imageBase + 0x1000
	codeEnd := imageBase + 0x3000
	layout := &Layout{
		ImageBase: imageBase,
		Sections:  []Section{{Name: ".text", VirtualAddr: 0x1000, VirtualSize: 0x2000, Executable: true}},
	}

	img := buildStrideProbeImage(imageBase, 24, 8, codeStart, codeEnd)
	mapsText := fmt.Sprintf("%x-%x rw- 0\n", imageBase, imageBase+uintptr(len(img)))
	src, err := LoadMappedDump(img, mapsText)
	require.NoError(t, err)

	opts := ObjectArrayOptions{}.withDefaults()
	arr, err := discoverByStrideProbe(src, layout, opts)
	require.NoError(t, err)
	assert.Equal(t, 24, arr.ItemStride)
	assert.Equal(t, 8, arr.ItemOffset)
	assert.Equal(t, MethodStrideProbe, arr.Method)
}

func TestDiscoverByStrideProbeNoPlausibleLayout(t *testing.T) {
	imageBase := uintptr(0x700000)
	layout := &Layout{
		ImageBase: imageBase,
		Sections:  []Section{{Name: ".text", VirtualAddr: 0x1000, VirtualSize: 0x2000, Executable: true}},
	}

	img := make([]byte, 0x400)
	mapsText := fmt.Sprintf("%x-%x rw- 0\n", imageBase, imageBase+uintptr(len(img)))
	src, err := LoadMappedDump(img, mapsText)
	require.NoError(t, err)

	opts := ObjectArrayOptions{}.withDefaults()
	_, err = discoverByStrideProbe(src, layout, opts)
	assert.Error(t, err)
}
