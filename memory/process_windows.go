//go:build windows

package memory

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// ProcessSource reads a live process's address space via ReadProcessMemory,
// the target OS's native cross-process memory access API. This is the
// platform the format's host game actually ships on; process_linux.go
// provides the same type over /proc/<pid>/mem, and DumpSource serves
// captured dumps on any platform.
type ProcessSource struct {
	handle windows.Handle
	base   uintptr
	size   uintptr
}

// OpenProcess attaches to pid's memory with read access, treating
// [base, base+size) as the addressable image range.
func OpenProcess(pid int, base, size uintptr) (*ProcessSource, error) {
	handle, err := windows.OpenProcess(windows.PROCESS_VM_READ|windows.PROCESS_QUERY_INFORMATION, false, uint32(pid))
	if err != nil {
		return nil, fmt.Errorf("memory: open process %d: %w", pid, err)
	}
	return &ProcessSource{handle: handle, base: base, size: size}, nil
}

func (p *ProcessSource) Base() uintptr { return p.base }
func (p *ProcessSource) Size() uintptr { return p.size }
func (p *ProcessSource) Close() error  { return windows.CloseHandle(p.handle) }
func (p *ProcessSource) IsLive() bool  { return true }

func (p *ProcessSource) ReadAt(addr uintptr, buf []byte) (int, error) {
	if addr < p.base || addr >= p.base+p.size {
		return 0, ErrOutOfRange
	}
	var read uintptr
	err := windows.ReadProcessMemory(p.handle, addr, &buf[0], uintptr(len(buf)), &read)
	if err != nil {
		return int(read), err
	}
	return int(read), nil
}

// Regions walks the process's committed memory with VirtualQueryEx, the
// native enumeration primitive, translating each region's protection
// flags into this package's "rwx"-style permission string.
func (p *ProcessSource) Regions() []Region {
	var regions []Region
	addr := uintptr(0)
	for {
		var mbi windows.MemoryBasicInformation
		if err := windows.VirtualQueryEx(p.handle, addr, &mbi); err != nil {
			break
		}
		if mbi.RegionSize == 0 {
			break
		}
		if mbi.State == windows.MEM_COMMIT {
			regions = append(regions, Region{
				Start: mbi.BaseAddress,
				End:   mbi.BaseAddress + mbi.RegionSize,
				Perms: permsFromProtect(mbi.Protect),
			})
		}
		next := mbi.BaseAddress + mbi.RegionSize
		if next <= addr {
			break
		}
		addr = next
	}
	return regions
}

// permsFromProtect maps a Windows page-protection constant to this
// package's "rwx"-style permission string, ignoring the guard/no-cache/
// write-combine modifier bits that don't affect read/execute access.
func permsFromProtect(protect uint32) string {
	const modifierMask = windows.PAGE_GUARD | windows.PAGE_NOCACHE | windows.PAGE_WRITECOMBINE
	switch protect &^ modifierMask {
	case windows.PAGE_NOACCESS:
		return "---"
	case windows.PAGE_READONLY:
		return "r--"
	case windows.PAGE_READWRITE, windows.PAGE_WRITECOPY:
		return "rw-"
	case windows.PAGE_EXECUTE:
		return "--x"
	case windows.PAGE_EXECUTE_READ:
		return "r-x"
	case windows.PAGE_EXECUTE_READWRITE, windows.PAGE_EXECUTE_WRITECOPY:
		return "rwx"
	default:
		return "---"
	}
}
