package memory

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/monokrome/bl4-sub003/internal/bufpool"
	"github.com/monokrome/bl4-sub003/internal/errkind"
)

// ObjectArray is the discovered location of the engine's global object
// table: a chunked array of object pointers, addressed as
// chunks[index/ChunkSize][index%ChunkSize]. ItemStride and ItemOffset
// generalize that addressing for the stride-probed layout, where each
// chunk holds fixed-size items rather than bare 8-byte pointers; both
// default to the classic pointer-table shape (stride 8, offset 0) when
// left unset.
type ObjectArray struct {
	ChunkPointers []uintptr
	ChunkSize     int
	Count         int
	Method        DiscoveryMethod
	ItemStride    int
	ItemOffset    int
}

// DiscoveryMethod records which of the three discovery strategies located
// the object array, since downstream schema emission reports it for
// reproducibility across game patch versions.
type DiscoveryMethod int

const (
	MethodPatternAnchor DiscoveryMethod = iota
	MethodDataScan
	MethodStrideProbe
)

func (m DiscoveryMethod) String() string {
	switch m {
	case MethodPatternAnchor:
		return "pattern-anchor"
	case MethodDataScan:
		return "data-scan"
	case MethodStrideProbe:
		return "stride-probe"
	default:
		return "unknown"
	}
}

// StrideCandidate is one (item stride, object-pointer offset within the
// item) pair tried during empirical layout probing.
type StrideCandidate struct {
	Stride int
	Offset int
}

// ObjectArrayOptions bounds the discovery fallbacks.
type ObjectArrayOptions struct {
	// AnchorPattern, if set, is tried first: a byte signature found near
	// the array's initialization code, one field past which lies a
	// pointer to the chunk array struct.
	AnchorPattern       Pattern
	AnchorPointerOffset int

	// ChunkSize is the known (or assumed) objects-per-chunk constant.
	ChunkSize int

	// StrideCandidates lists (stride, offset) pairs to probe during the
	// empirical fallback, in preference order.
	StrideCandidates []StrideCandidate
}

func (o ObjectArrayOptions) withDefaults() ObjectArrayOptions {
	if o.ChunkSize == 0 {
		o.ChunkSize = 0x10000
	}
	if len(o.StrideCandidates) == 0 {
		o.StrideCandidates = []StrideCandidate{
			{Stride: 16, Offset: 8},
			{Stride: 16, Offset: 0},
			{Stride: 24, Offset: 8},
			{Stride: 24, Offset: 0},
		}
	}
	return o
}

// DiscoverObjectArray tries pattern-anchored discovery, then a data-section
// scan for a plausible chunk-pointer table, then empirical stride probing,
// returning the first one that succeeds.
func DiscoverObjectArray(ctx context.Context, src Source, layout *Layout, opts ObjectArrayOptions) (*ObjectArray, error) {
	opts = opts.withDefaults()

	if len(opts.AnchorPattern.Bytes) > 0 {
		if arr, err := discoverByAnchor(ctx, src, layout, opts); err == nil {
			return arr, nil
		}
	}

	if arr, err := discoverByDataScan(ctx, src, layout, opts); err == nil {
		return arr, nil
	}

	arr, err := discoverByStrideProbe(src, layout, opts)
	if err != nil {
		return nil, errkind.NewError(errkind.KindDiscoveryFailed, err)
	}
	return arr, nil
}

func discoverByAnchor(ctx context.Context, src Source, layout *Layout, opts ObjectArrayOptions) (*ObjectArray, error) {
	start, end := layout.CodeBounds()
	hits, err := Scan(ctx, src, start, end, opts.AnchorPattern, ScanOptions{})
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, fmt.Errorf("memory: anchor pattern not found")
	}

	addr := hits[0] + uintptr(opts.AnchorPointerOffset)
	ptrBuf := make([]byte, 8)
	if err := ReadFull(src, addr, ptrBuf); err != nil {
		return nil, err
	}
	structAddr := uintptr(binary.LittleEndian.Uint64(ptrBuf))

	return readChunkedArray(src, structAddr, opts.ChunkSize, MethodPatternAnchor)
}

// objectArrayDescriptorSize is the byte size of the global object array's
// control block: { chunksPtr uint64; preallocatedPtr uint64; max int32;
// num int32; _pad int32; numChunks int32 }.
const objectArrayDescriptorSize = 32

type objectArrayDescriptor struct {
	chunksPtr       uintptr
	preallocatedPtr uintptr
	max             int32
	num             int32
	numChunks       int32
}

func readObjectArrayDescriptor(src Source, addr uintptr) (objectArrayDescriptor, error) {
	raw := make([]byte, objectArrayDescriptorSize)
	if err := ReadFull(src, addr, raw); err != nil {
		return objectArrayDescriptor{}, err
	}
	return objectArrayDescriptor{
		chunksPtr:       uintptr(binary.LittleEndian.Uint64(raw[0:8])),
		preallocatedPtr: uintptr(binary.LittleEndian.Uint64(raw[8:16])),
		max:             int32(binary.LittleEndian.Uint32(raw[16:20])),
		num:             int32(binary.LittleEndian.Uint32(raw[20:24])),
		numChunks:       int32(binary.LittleEndian.Uint32(raw[28:32])),
	}, nil
}

const (
	objectArrayMinMax       = 100_000
	objectArrayMaxMax       = 10_000_000
	objectArrayMinNum       = 10_000
	objectArrayChunkDivisor = 65536
)

// plausibleObjectArrayDescriptor applies the bounds a genuine descriptor
// satisfies: a capacity and live count in the range real object tables
// grow to, and a chunk count consistent with that count at
// objectArrayChunkDivisor objects per chunk (allowing slack for a chunk
// freed back after shrinking).
func plausibleObjectArrayDescriptor(d objectArrayDescriptor) bool {
	if d.chunksPtr == 0 {
		return false
	}
	if d.max < objectArrayMinMax || d.max > objectArrayMaxMax {
		return false
	}
	if d.num < objectArrayMinNum || d.num > d.max {
		return false
	}
	expectedChunks := (int64(d.num) + objectArrayChunkDivisor - 1) / objectArrayChunkDivisor
	diff := int64(d.numChunks) - expectedChunks
	if diff < -2 || diff > 2 {
		return false
	}
	return true
}

// discoverByDataScan looks for a plausible object-array descriptor by
// scanning readable data regions (skipping executable ones, since the
// descriptor is a data structure) for the 32-byte layout, validating
// each candidate's bounds and confirming chunk 0 actually looks like it
// holds UObjects (a majority of its first few entries resolve to an
// address whose vtable falls inside the image's code section).
func discoverByDataScan(ctx context.Context, src Source, layout *Layout, opts ObjectArrayOptions) (*ObjectArray, error) {
	overlap := uintptr(objectArrayDescriptorSize - 1)
	const windowSize = 1 << 20

	chunk := bufpool.GetScanChunk()
	defer bufpool.PutScanChunk(chunk)

	for _, region := range prioritizeRegions(src, layout) {
		if region.Executable() {
			continue
		}
		for lo := region.Start; lo < region.End; lo += windowSize {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			hi := lo + windowSize + overlap
			if hi > region.End {
				hi = region.End
			}

			chunk.Grow(int(hi - lo))
			chunk.SetLength(int(hi - lo))
			n, err := src.ReadAt(lo, chunk.Bytes())
			if err != nil && n == 0 {
				continue
			}
			window := chunk.Bytes()[:n]

			for off := 0; off+objectArrayDescriptorSize <= len(window); off += 8 {
				desc, err := readObjectArrayDescriptor(src, lo+uintptr(off))
				if err != nil || !plausibleObjectArrayDescriptor(desc) {
					continue
				}

				arr, err := readChunkedArray(src, lo+uintptr(off), opts.ChunkSize, MethodDataScan)
				if err != nil {
					continue
				}
				if chunkZeroLooksLikeObjects(src, layout, arr) {
					return arr, nil
				}
			}
		}
	}
	return nil, fmt.Errorf("memory: no plausible object-array descriptor found by data scan")
}

// chunkZeroLooksLikeObjects samples the first few entries of chunk 0 and
// requires a majority to resolve to an address whose first 8 bytes (the
// vtable pointer) land inside the image's code section.
func chunkZeroLooksLikeObjects(src Source, layout *Layout, arr *ObjectArray) bool {
	if layout == nil || len(arr.ChunkPointers) == 0 {
		return false
	}
	codeStart, codeEnd := layout.CodeBounds()

	const sampleCount = 5
	good := 0
	for i := 0; i < sampleCount; i++ {
		addr, err := arr.ObjectAddr(src, i)
		if err != nil || addr == 0 {
			continue
		}
		var header [16]byte
		if err := ReadFull(src, addr, header[:]); err != nil {
			continue
		}
		vtable := uintptr(binary.LittleEndian.Uint64(header[0:8]))
		classPtr := uintptr(binary.LittleEndian.Uint64(header[8:16]))
		if classPtr != 0 && vtable >= codeStart && vtable < codeEnd {
			good++
		}
	}
	return good >= 3
}

// discoverByStrideProbe samples a window of candidate object slots for
// each (stride, offset) pair in opts.StrideCandidates, scoring each pair
// by how many samples resolve to an address whose first 8 bytes look
// like a vtable pointer inside the image's code section, and returns the
// array built from whichever pair scores highest.
func discoverByStrideProbe(src Source, layout *Layout, opts ObjectArrayOptions) (*ObjectArray, error) {
	const sampleCount = 16
	probeBase := layout.ImageBase
	codeStart, codeEnd := layout.CodeBounds()

	best := -1
	var bestCandidate StrideCandidate

	for _, cand := range opts.StrideCandidates {
		score := 0
		for i := 0; i < sampleCount; i++ {
			itemAddr := probeBase + uintptr(i*cand.Stride)
			var ptrBuf [8]byte
			if err := ReadFull(src, itemAddr+uintptr(cand.Offset), ptrBuf[:]); err != nil {
				continue
			}
			objAddr := uintptr(binary.LittleEndian.Uint64(ptrBuf[:]))
			if objAddr == 0 {
				continue
			}
			var vtableBuf [8]byte
			if err := ReadFull(src, objAddr, vtableBuf[:]); err != nil {
				continue
			}
			vtable := uintptr(binary.LittleEndian.Uint64(vtableBuf[:]))
			if vtable >= codeStart && vtable < codeEnd {
				score++
			}
		}
		if score > best {
			best = score
			bestCandidate = cand
		}
	}

	if best <= 0 {
		return nil, fmt.Errorf("memory: no candidate stride produced a consistent object layout")
	}

	return &ObjectArray{
		ChunkPointers: []uintptr{probeBase},
		ChunkSize:     opts.ChunkSize,
		Count:         sampleCount,
		Method:        MethodStrideProbe,
		ItemStride:    bestCandidate.Stride,
		ItemOffset:    bestCandidate.Offset,
	}, nil
}

func readChunkedArray(src Source, structAddr uintptr, chunkSize int, method DiscoveryMethod) (*ObjectArray, error) {
	desc, err := readObjectArrayDescriptor(src, structAddr)
	if err != nil {
		return nil, err
	}

	if desc.numChunks <= 0 || desc.numChunks > 1<<16 {
		return nil, fmt.Errorf("memory: implausible chunk count %d", desc.numChunks)
	}

	ptrBuf := make([]byte, int(desc.numChunks)*8)
	if err := ReadFull(src, desc.chunksPtr, ptrBuf); err != nil {
		return nil, err
	}
	chunks := make([]uintptr, desc.numChunks)
	for i := range chunks {
		chunks[i] = uintptr(binary.LittleEndian.Uint64(ptrBuf[i*8 : i*8+8]))
	}

	return &ObjectArray{
		ChunkPointers: chunks,
		ChunkSize:     chunkSize,
		Count:         int(desc.num),
		Method:        method,
	}, nil
}

// ObjectAddr resolves an object index to its absolute address. within a
// chunk, the item at the resolved slot lives at base + within*stride +
// itemOffset: the classic pointer-table layout (stride 8, offset 0, each
// slot itself the object's address) is just the default case of that
// same formula.
func (a *ObjectArray) ObjectAddr(src Source, index int) (uintptr, error) {
	if a.ChunkSize == 0 {
		return 0, fmt.Errorf("memory: chunk size is zero")
	}
	chunkIdx := index / a.ChunkSize
	within := index % a.ChunkSize
	if chunkIdx < 0 || chunkIdx >= len(a.ChunkPointers) {
		return 0, fmt.Errorf("memory: object index %d out of range", index)
	}
	base := a.ChunkPointers[chunkIdx]
	if base == 0 {
		return 0, fmt.Errorf("memory: chunk %d unmapped", chunkIdx)
	}

	stride := a.ItemStride
	if stride == 0 {
		stride = 8
	}

	ptrBuf := make([]byte, 8)
	addr := base + uintptr(within*stride) + uintptr(a.ItemOffset)
	if err := ReadFull(src, addr, ptrBuf); err != nil {
		return 0, err
	}
	return uintptr(binary.LittleEndian.Uint64(ptrBuf)), nil
}
