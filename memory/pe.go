package memory

import (
	"encoding/binary"
	"errors"
	"fmt"
	"regexp"

	"github.com/monokrome/bl4-sub003/internal/errkind"
)

// codeSectionNamePattern matches the section names that actually hold
// executable game code ".text"/".code"/"ecode"-style segments, as
// opposed to sections the linker also flags executable for unrelated
// reasons (".pdata" exception tables, ".reloc" relocation fixups).
var codeSectionNamePattern = regexp.MustCompile(`(?i)text|code|ecode`)

// ErrNotPE is returned when a candidate base address does not carry a
// valid MZ/PE signature pair.
var ErrNotPE = errors.New("memory: no MZ/PE signature found")

// Section describes one PE section header relevant to scanning: its
// virtual address range within the loaded image and whether it is marked
// executable (the ".text"-equivalent sections the pattern scanner should
// search).
type Section struct {
	Name       string
	VirtualAddr uint32
	VirtualSize uint32
	Executable  bool
}

// Layout is the subset of a PE image's header data this package needs:
// enough to bound a pattern scan to code sections and to resolve RVAs to
// absolute addresses.
type Layout struct {
	ImageBase  uintptr
	SizeOfCode uint32
	Sections   []Section
}

// CodeBounds returns the smallest span covering every executable section
// whose name matches codeSectionNamePattern, in absolute addresses within
// src's address space. With no such section it returns (ImageBase, 0).
func (l *Layout) CodeBounds() (start, end uintptr) {
	start = ^uintptr(0)
	for _, s := range l.Sections {
		if !s.Executable || !codeSectionNamePattern.MatchString(s.Name) {
			continue
		}
		secStart := l.ImageBase + uintptr(s.VirtualAddr)
		secEnd := secStart + uintptr(s.VirtualSize)
		if secStart < start {
			start = secStart
		}
		if secEnd > end {
			end = secEnd
		}
	}
	if start == ^uintptr(0) {
		start = l.ImageBase
	}
	return start, end
}

const (
	peSectionCharExecute = 0x20000000
	mzSignature          = 0x5A4D // "MZ"
	peSignature          = 0x00004550
)

// DiscoverLayout locates and parses the PE header at base within src. base
// is the module's load address, normally obtained from the host process's
// module list; for a dump file it is simply the dump's mapped base.
func DiscoverLayout(src Source, base uintptr) (*Layout, error) {
	dosHeader := make([]byte, 0x40)
	if err := ReadFull(src, base, dosHeader); err != nil {
		return nil, fmt.Errorf("memory: read DOS header: %w", err)
	}
	if binary.LittleEndian.Uint16(dosHeader[0:2]) != mzSignature {
		return nil, errkind.NewError(errkind.KindMemoryUnreadable, ErrNotPE)
	}
	peOffset := binary.LittleEndian.Uint32(dosHeader[0x3C:0x40])

	peHeader := make([]byte, 24)
	if err := ReadFull(src, base+uintptr(peOffset), peHeader); err != nil {
		return nil, fmt.Errorf("memory: read PE signature: %w", err)
	}
	if binary.LittleEndian.Uint32(peHeader[0:4]) != peSignature {
		return nil, errkind.NewError(errkind.KindMemoryUnreadable, ErrNotPE)
	}
	numSections := binary.LittleEndian.Uint16(peHeader[6:8])
	sizeOfOptionalHeader := binary.LittleEndian.Uint16(peHeader[20:22])

	optHeaderAddr := base + uintptr(peOffset) + 24
	optHeader := make([]byte, sizeOfOptionalHeader)
	if err := ReadFull(src, optHeaderAddr, optHeader); err != nil {
		return nil, fmt.Errorf("memory: read optional header: %w", err)
	}
	var sizeOfCode uint32
	if len(optHeader) >= 8 {
		sizeOfCode = binary.LittleEndian.Uint32(optHeader[4:8])
	}

	sectionTableAddr := optHeaderAddr + uintptr(sizeOfOptionalHeader)
	sections := make([]Section, 0, numSections)
	for i := 0; i < int(numSections); i++ {
		raw := make([]byte, 40)
		if err := ReadFull(src, sectionTableAddr+uintptr(i*40), raw); err != nil {
			return nil, fmt.Errorf("memory: read section header %d: %w", i, err)
		}
		name := sectionName(raw[0:8])
		virtualSize := binary.LittleEndian.Uint32(raw[8:12])
		virtualAddr := binary.LittleEndian.Uint32(raw[12:16])
		characteristics := binary.LittleEndian.Uint32(raw[36:40])

		sections = append(sections, Section{
			Name:        name,
			VirtualAddr: virtualAddr,
			VirtualSize: virtualSize,
			Executable:  characteristics&peSectionCharExecute != 0,
		})
	}

	return &Layout{ImageBase: base, SizeOfCode: sizeOfCode, Sections: sections}, nil
}

// DiscoverImage walks src's regions looking for the main executable
// image, trying DiscoverLayout at the start of every readable region
// until one parses as a valid MZ/PE pair. Regions are tried in address
// order; the first successful parse wins.
func DiscoverImage(src Source) (*Layout, error) {
	for _, r := range src.Regions() {
		if !r.Readable() {
			continue
		}
		layout, err := DiscoverLayout(src, r.Start)
		if err == nil {
			return layout, nil
		}
	}
	return nil, errkind.NewError(errkind.KindMemoryUnreadable, ErrNotPE)
}

func sectionName(raw []byte) string {
	n := 0
	for n < len(raw) && raw[n] != 0 {
		n++
	}
	return string(raw[:n])
}
