package bufpool

import "sync"

// sizedPool is a sync.Pool of Buffers with a size ceiling: buffers grown
// past maxThreshold during use are discarded rather than retained, so one
// unusually large archive body or scan chunk doesn't pin oversized
// allocations in the pool indefinitely.
type sizedPool struct {
	pool         sync.Pool
	maxThreshold int
}

func newSizedPool(defaultSize, maxThreshold int) *sizedPool {
	return &sizedPool{
		pool: sync.Pool{
			New: func() any { return NewBuffer(defaultSize) },
		},
		maxThreshold: maxThreshold,
	}
}

func (p *sizedPool) Get() *Buffer {
	buf, _ := p.pool.Get().(*Buffer)
	return buf
}

func (p *sizedPool) Put(buf *Buffer) {
	if buf == nil {
		return
	}
	if p.maxThreshold > 0 && buf.Cap() > p.maxThreshold {
		return
	}
	buf.Reset()
	p.pool.Put(buf)
}

const (
	// DecompressDefaultSize sizes buffers used to hold an NCS document's
	// decompressed body. Archive bodies are usually small relative to a
	// memory scan chunk.
	DecompressDefaultSize  = 64 * 1024       // 64KiB
	decompressMaxThreshold = 4 * 1024 * 1024 // 4MiB

	// ScanChunkDefaultSize matches the scanner's default chunk size so
	// the common case never grows the buffer after acquiring it.
	ScanChunkDefaultSize  = 1 << 20       // 1MiB, matches memory.ScanOptions default
	scanChunkMaxThreshold = 16 * (1 << 20) // 16MiB
)

var (
	decompressPool = newSizedPool(DecompressDefaultSize, decompressMaxThreshold)
	scanChunkPool  = newSizedPool(ScanChunkDefaultSize, scanChunkMaxThreshold)
)

// GetDecompressBuffer retrieves a Buffer sized for an NCS decompression
// output.
func GetDecompressBuffer() *Buffer { return decompressPool.Get() }

// PutDecompressBuffer returns buf to the decompression pool.
func PutDecompressBuffer(buf *Buffer) { decompressPool.Put(buf) }

// GetScanChunk retrieves a Buffer sized for one memory-scan chunk.
func GetScanChunk() *Buffer { return scanChunkPool.Get() }

// PutScanChunk returns buf to the scan-chunk pool.
func PutScanChunk(buf *Buffer) { scanChunkPool.Put(buf) }
