package memory

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/monokrome/bl4-sub003/internal/bufpool"
)

// Pattern is a byte signature with wildcard support: Mask[i] == 0 means
// Bytes[i] matches any byte. Patterns name a known code sequence (an
// instruction prologue, a constant load) used as an anchor for locating a
// runtime structure whose address isn't otherwise discoverable.
type Pattern struct {
	Bytes []byte
	Mask  []byte
}

// Match reports whether window (len(window) == len(p.Bytes)) satisfies the
// pattern.
func (p Pattern) Match(window []byte) bool {
	for i, b := range p.Bytes {
		if p.Mask[i] != 0 && window[i] != b {
			return false
		}
	}
	return true
}

// ScanOptions configures Scan's region splitting and concurrency.
type ScanOptions struct {
	// ChunkSize bounds how much of the address range a single goroutine
	// scans before reporting back; smaller chunks give finer-grained
	// cancellation at the cost of more read calls.
	ChunkSize uintptr
	// Workers bounds how many chunks are scanned concurrently. 0 selects
	// a small fixed default.
	Workers int
}

func (o ScanOptions) withDefaults() ScanOptions {
	if o.ChunkSize == 0 {
		o.ChunkSize = 1 << 20 // 1 MiB
	}
	if o.Workers == 0 {
		o.Workers = 4
	}
	return o
}

// Scan searches [start, end) in src for every occurrence of pattern,
// overlapping occurrences included, splitting the range into chunks scanned concurrently via
// errgroup. Results are returned sorted by address regardless of which
// worker found them.
func Scan(ctx context.Context, src Source, start, end uintptr, pattern Pattern, opts ScanOptions) ([]uintptr, error) {
	opts = opts.withDefaults()
	patLen := uintptr(len(pattern.Bytes))
	if patLen == 0 || end <= start {
		return nil, nil
	}

	type chunkResult struct {
		order int
		hits  []uintptr
	}

	var chunks []struct{ lo, hi uintptr }
	for lo := start; lo < end; lo += opts.ChunkSize {
		hi := lo + opts.ChunkSize + patLen - 1 // overlap so a match isn't split across a chunk boundary
		if hi > end {
			hi = end
		}
		chunks = append(chunks, struct{ lo, hi uintptr }{lo, hi})
	}

	results := make([]chunkResult, len(chunks))
	sem := make(chan struct{}, opts.Workers)
	eg, egCtx := errgroup.WithContext(ctx)

	for i, ch := range chunks {
		i, ch := i, ch
		eg.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-egCtx.Done():
				return egCtx.Err()
			}
			defer func() { <-sem }()

			hits, err := scanChunk(egCtx, src, ch.lo, ch.hi, pattern)
			if err != nil {
				return err
			}
			results[i] = chunkResult{order: i, hits: hits}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var all []uintptr
	for _, r := range results {
		all = append(all, r.hits...)
	}
	sort.Slice(all, func(i, j int) bool { return all[i] < all[j] })
	return all, nil
}

func scanChunk(ctx context.Context, src Source, lo, hi uintptr, pattern Pattern) ([]uintptr, error) {
	chunk := bufpool.GetScanChunk()
	defer bufpool.PutScanChunk(chunk)
	chunk.Grow(int(hi - lo))
	chunk.SetLength(int(hi - lo))

	n, err := src.ReadAt(lo, chunk.Bytes())
	if err != nil && n == 0 {
		return nil, err
	}
	buf := chunk.Bytes()[:n]

	patLen := len(pattern.Bytes)
	var hits []uintptr
	for i := 0; i+patLen <= len(buf); i++ {
		if ctx.Err() != nil {
			return hits, ctx.Err()
		}
		if pattern.Match(buf[i : i+patLen]) {
			hits = append(hits, lo+uintptr(i))
		}
	}
	return hits, nil
}
