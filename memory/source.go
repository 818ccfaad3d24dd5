// Package memory implements the introspection engine: reading a running
// process's (or a captured dump's) address space, locating its PE image,
// scanning for byte patterns, and walking its object graph to recover a
// schema of the game's runtime types.
package memory

import (
	"errors"
	"io"
	"sort"
	"strings"
)

// ErrOutOfRange is returned when a read falls entirely outside a Source's
// addressable range.
var ErrOutOfRange = errors.New("memory: address out of range")

// Region describes one mapped span of a Source's address space: a live
// process's VMA or a dump file's memory-list/maps-file entry. Discovery
// walks these rather than assuming a single flat range, since a captured
// process can have its image, heap, and stacks scattered across
// non-contiguous mappings.
type Region struct {
	Start      uintptr
	End        uintptr
	Perms      string // e.g. "r--", "rwx", "r-x"
	FileOffset uint64 // offset into the backing dump file, or 0 for a live read
	Path       string // backing module/file path, if known
}

// Readable reports whether the region's permissions allow reads.
func (r Region) Readable() bool { return strings.Contains(r.Perms, "r") }

// Executable reports whether the region's permissions allow execution.
func (r Region) Executable() bool { return strings.Contains(r.Perms, "x") }

// Size returns the region's length in bytes.
func (r Region) Size() uintptr { return r.End - r.Start }

// Source abstracts a byte-addressable memory image, whether it is a live
// process or a captured dump file. Every other component in this package
// works against this interface so the same scanner, walker, and schema
// code exercise both backends identically.
type Source interface {
	// ReadAt fills buf from addr, returning however many bytes were
	// actually read (which may be less than len(buf) at the end of a
	// mapped region) and an error only on a hard failure.
	ReadAt(addr uintptr, buf []byte) (int, error)
	// Base returns the image's load address.
	Base() uintptr
	// Size returns the number of bytes addressable from Base.
	Size() uintptr
	// Regions lists every mapped span backing this source, ordered by
	// Start. Discovery walks this list rather than assuming [Base,
	// Base+Size) is one contiguous readable range.
	Regions() []Region
	// IsLive reports whether this source is a running process (its
	// regions can change between calls) as opposed to a static dump.
	IsLive() bool
	io.Closer
}

// ReadFull reads exactly len(buf) bytes from src at addr, returning
// ErrOutOfRange if fewer bytes were available.
func ReadFull(src Source, addr uintptr, buf []byte) error {
	n, err := src.ReadAt(addr, buf)
	if err != nil {
		return err
	}
	if n < len(buf) {
		return ErrOutOfRange
	}
	return nil
}

// prioritizeRegions orders src's regions for a discovery search: the main
// image's own regions (those overlapping layout's code bounds, when
// layout is known) first, since the structures discovery looks for almost
// always live near the module that owns them, then every other readable
// region in address order.
func prioritizeRegions(src Source, layout *Layout) []Region {
	all := src.Regions()
	readable := make([]Region, 0, len(all))
	for _, r := range all {
		if r.Readable() {
			readable = append(readable, r)
		}
	}
	sort.Slice(readable, func(i, j int) bool { return readable[i].Start < readable[j].Start })

	if layout == nil {
		return readable
	}
	codeStart, codeEnd := layout.CodeBounds()

	near := make([]Region, 0, len(readable))
	far := make([]Region, 0, len(readable))
	for _, r := range readable {
		if r.End > codeStart && r.Start < codeEnd+layoutProximityWindow {
			near = append(near, r)
		} else {
			far = append(far, r)
		}
	}
	return append(near, far...)
}

// layoutProximityWindow widens the "near the image" band past the code
// section's own end, since the data this package searches for (name
// pools, object-array descriptors) typically lives in static data right
// after code, not inside it.
const layoutProximityWindow = 64 << 20

// regionFor returns the region containing addr from a Start-sorted slice,
// or ok=false if none does.
func regionFor(regions []Region, addr uintptr) (Region, bool) {
	i := sort.Search(len(regions), func(i int) bool { return regions[i].End > addr })
	if i >= len(regions) || addr < regions[i].Start {
		return Region{}, false
	}
	return regions[i], true
}
