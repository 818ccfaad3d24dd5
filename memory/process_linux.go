//go:build linux

package memory

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ProcessSource reads a live process's address space through
// /proc/<pid>/mem, the standard Linux mechanism for cross-process memory
// access (requires PTRACE_ATTACH rights or running as the process owner).
type ProcessSource struct {
	pid  int
	file *os.File
	base uintptr
	size uintptr
}

// OpenProcess attaches to pid's memory, treating [base, base+size) as the
// addressable image range (typically the module's PE mapping).
func OpenProcess(pid int, base, size uintptr) (*ProcessSource, error) {
	f, err := os.OpenFile(fmt.Sprintf("/proc/%d/mem", pid), os.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("memory: open process %d: %w", pid, err)
	}
	return &ProcessSource{pid: pid, file: f, base: base, size: size}, nil
}

func (p *ProcessSource) Base() uintptr { return p.base }
func (p *ProcessSource) Size() uintptr { return p.size }
func (p *ProcessSource) Close() error  { return p.file.Close() }
func (p *ProcessSource) IsLive() bool  { return true }

func (p *ProcessSource) ReadAt(addr uintptr, buf []byte) (int, error) {
	if addr < p.base || addr >= p.base+p.size {
		return 0, ErrOutOfRange
	}
	n, err := p.file.ReadAt(buf, int64(addr))
	if n > 0 {
		return n, nil
	}
	return n, err
}

// Regions parses /proc/<pid>/maps, the kernel's line-oriented listing of
// every mapped region in the process's address space, into this
// package's Region shape. A read failure (the process exited, or access
// was denied) is reported as no regions rather than an error, matching
// this file's existing best-effort style.
func (p *ProcessSource) Regions() []Region {
	data, err := os.ReadFile(fmt.Sprintf("/proc/%d/maps", p.pid))
	if err != nil {
		return nil
	}

	var regions []Region
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		bounds := strings.SplitN(fields[0], "-", 2)
		if len(bounds) != 2 {
			continue
		}
		start, err := strconv.ParseUint(bounds[0], 16, 64)
		if err != nil {
			continue
		}
		end, err := strconv.ParseUint(bounds[1], 16, 64)
		if err != nil {
			continue
		}
		var offset uint64
		if len(fields) >= 3 {
			offset, _ = strconv.ParseUint(fields[2], 16, 64)
		}
		r := Region{Start: uintptr(start), End: uintptr(end), Perms: fields[1], FileOffset: offset}
		if len(fields) >= 6 {
			r.Path = fields[5]
		}
		regions = append(regions, r)
	}
	return regions
}
