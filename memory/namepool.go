package memory

import (
	"container/list"
	"context"
	"encoding/binary"
	"fmt"
	"sync"
	"unicode/utf16"

	"github.com/cespare/xxhash/v2"

	"github.com/monokrome/bl4-sub003/internal/bufpool"
	"github.com/monokrome/bl4-sub003/internal/errkind"
)

// namePoolChunkCapacity is the number of name slots per chunk. The global
// name table is allocated in fixed-size chunks rather than one contiguous
// array so it can grow without moving already-resolved entries.
const namePoolChunkCapacity = 0x4000

// wideNameFlag marks an FName entry's header as UTF-16 rather than ASCII.
const wideNameFlag = 0x1

// NamePool resolves FName indices to their decoded string, backed by the
// chunked entry arrays discovered in the target image.
type NamePool struct {
	chunks [][]byte // raw bytes of each discovered chunk, as read from the source

	cacheMu  sync.Mutex
	cache    map[uint64]*list.Element
	lru      *list.List
	cacheCap int
}

type namePoolCacheItem struct {
	key   uint64
	value string
}

// NamePoolOptions configures the decode cache. CacheSize <= 0 disables
// caching.
type NamePoolOptions struct {
	CacheSize int
}

// Name-pool header layout: { lock uint64; currentBlock uint32; cursor
// uint32; block0Addr uint64 }, 24 bytes, immediately followed in memory
// by currentBlock+1 chunk pointers.
const (
	namePoolHeaderSize = 24
	namePoolMaxLock    = 100
	namePoolMaxBlocks  = 1000
	namePoolMaxCursor  = 0x100000
)

// namePoolSentinel is the first entry ever allocated in block 0: a
// 2-byte length-prefixed header followed by the literal ASCII "None".
var namePoolSentinel = [4]byte{'N', 'o', 'n', 'e'}

// DiscoverNamePool searches src's regions for the name pool's 24-byte
// header: a lock counter, current block index, write cursor, and the
// address of block 0, validated by sanity bounds on each field and by
// confirming block 0's first entry decodes to the "None" sentinel every
// build allocates first. Regions near the main image are searched first.
func DiscoverNamePool(ctx context.Context, src Source, layout *Layout, opts NamePoolOptions) (*NamePool, error) {
	for _, region := range prioritizeRegions(src, layout) {
		if region.Executable() {
			continue
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		pool, err := scanRegionForNamePool(ctx, src, region, opts)
		if err == nil {
			return pool, nil
		}
	}
	return nil, errkind.NewError(errkind.KindDiscoveryFailed, fmt.Errorf("memory: name pool header not found"))
}

func scanRegionForNamePool(ctx context.Context, src Source, region Region, opts NamePoolOptions) (*NamePool, error) {
	const windowSize = 1 << 20
	overlap := uintptr(namePoolHeaderSize - 1)

	chunk := bufpool.GetScanChunk()
	defer bufpool.PutScanChunk(chunk)

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

		for off := 0; off+namePoolHeaderSize <= len(window); off += 8 {
			headerAddr := lo + uintptr(off)
			if pool, ok := tryNamePoolHeader(src, headerAddr, window[off:off+namePoolHeaderSize], opts); ok {
				return pool, nil
			}
		}
	}
	return nil, fmt.Errorf("memory: no candidate name pool header in region [%#x,%#x)", region.Start, region.End)
}

// tryNamePoolHeader validates a candidate 24-byte header and, if every
// sanity check and the block-0 sentinel check pass, loads the chunk
// array that follows it.
func tryNamePoolHeader(src Source, headerAddr uintptr, header []byte, opts NamePoolOptions) (*NamePool, bool) {
	lock := binary.LittleEndian.Uint64(header[0:8])
	currentBlock := binary.LittleEndian.Uint32(header[8:12])
	cursor := binary.LittleEndian.Uint32(header[12:16])
	block0Addr := uintptr(binary.LittleEndian.Uint64(header[16:24]))

	if lock >= namePoolMaxLock {
		return nil, false
	}
	if currentBlock == 0 || currentBlock >= namePoolMaxBlocks {
		return nil, false
	}
	if cursor == 0 || cursor >= namePoolMaxCursor {
		return nil, false
	}
	if block0Addr == 0 || block0Addr%8 != 0 {
		return nil, false
	}

	var sentinel [6]byte
	if err := ReadFull(src, block0Addr, sentinel[:]); err != nil {
		return nil, false
	}
	length := binary.LittleEndian.Uint16(sentinel[0:2]) >> 6
	if int(length) != len(namePoolSentinel) {
		return nil, false
	}
	if sentinel[2] != namePoolSentinel[0] || sentinel[3] != namePoolSentinel[1] ||
		sentinel[4] != namePoolSentinel[2] || sentinel[5] != namePoolSentinel[3] {
		return nil, false
	}

	pool, err := loadChunkArray(src, headerAddr+namePoolHeaderSize, int(currentBlock)+1, opts)
	if err != nil {
		return nil, false
	}
	return pool, true
}

// loadChunkArray reads chunkCount chunk pointers starting at
// chunkArrayAddr, then reads each chunk (namePoolChunkCapacity entries'
// worth of bytes, sized generously and trimmed during resolution).
func loadChunkArray(src Source, chunkArrayAddr uintptr, chunkCount int, opts NamePoolOptions) (*NamePool, error) {
	ptrs := make([]byte, chunkCount*8)
	if err := ReadFull(src, chunkArrayAddr, ptrs); err != nil {
		return nil, fmt.Errorf("memory: read name pool chunk array: %w", err)
	}

	pool := &NamePool{}
	if opts.CacheSize > 0 {
		pool.cache = make(map[uint64]*list.Element)
		pool.lru = list.New()
		pool.cacheCap = opts.CacheSize
	}

	const maxChunkBytes = namePoolChunkCapacity * 16 // generous upper bound per chunk
	for i := 0; i < chunkCount; i++ {
		addr := uintptr(binary.LittleEndian.Uint64(ptrs[i*8 : i*8+8]))
		if addr == 0 {
			pool.chunks = append(pool.chunks, nil)
			continue
		}
		buf := make([]byte, maxChunkBytes)
		n, err := src.ReadAt(addr, buf)
		if err != nil && n == 0 {
			return nil, fmt.Errorf("memory: read name pool chunk %d: %w", i, err)
		}
		pool.chunks = append(pool.chunks, buf[:n])
	}

	return pool, nil
}

// Resolve decodes the FName at the given (chunk, offset) pair, where
// offset is the byte offset of the entry's header within the chunk.
func (p *NamePool) Resolve(chunk, offset int) (string, error) {
	if chunk < 0 || chunk >= len(p.chunks) {
		return "", fmt.Errorf("memory: name pool chunk %d out of range", chunk)
	}
	data := p.chunks[chunk]
	if offset < 0 || offset+2 > len(data) {
		return "", fmt.Errorf("memory: name pool offset %d out of range in chunk %d", offset, chunk)
	}

	header := binary.LittleEndian.Uint16(data[offset : offset+2])
	length := int(header >> 6)
	wide := header&wideNameFlag != 0

	byteLen := length
	if wide {
		byteLen *= 2
	}
	start := offset + 2
	if start+byteLen > len(data) {
		return "", fmt.Errorf("memory: name pool entry at chunk %d offset %d truncated", chunk, offset)
	}
	raw := data[start : start+byteLen]

	if p.cache != nil {
		key := xxhash.Sum64(raw)
		if s, ok := p.cacheGet(key); ok {
			return s, nil
		}
		decoded := decodeNameEntry(raw, wide)
		p.cachePut(key, decoded)
		return decoded, nil
	}

	return decodeNameEntry(raw, wide), nil
}

func decodeNameEntry(raw []byte, wide bool) string {
	if !wide {
		return string(raw)
	}
	u16 := make([]uint16, len(raw)/2)
	for i := range u16 {
		u16[i] = binary.LittleEndian.Uint16(raw[i*2 : i*2+2])
	}
	return string(utf16.Decode(u16))
}

func (p *NamePool) cacheGet(key uint64) (string, bool) {
	p.cacheMu.Lock()
	defer p.cacheMu.Unlock()
	el, ok := p.cache[key]
	if !ok {
		return "", false
	}
	p.lru.MoveToFront(el)
	return el.Value.(*namePoolCacheItem).value, true
}

func (p *NamePool) cachePut(key uint64, value string) {
	p.cacheMu.Lock()
	defer p.cacheMu.Unlock()

	if el, ok := p.cache[key]; ok {
		el.Value.(*namePoolCacheItem).value = value
		p.lru.MoveToFront(el)
		return
	}

	el := p.lru.PushFront(&namePoolCacheItem{key: key, value: value})
	p.cache[key] = el

	for p.lru.Len() > p.cacheCap {
		oldest := p.lru.Back()
		if oldest == nil {
			break
		}
		p.lru.Remove(oldest)
		delete(p.cache, oldest.Value.(*namePoolCacheItem).key)
	}
}
