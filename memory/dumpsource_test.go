package memory

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildMinidump assembles a minimal MDMP file: header, a one-entry stream
// directory pointing at a MemoryListStream, and that stream's payload
// describing two memory ranges backed by payload bytes appended after it.
func buildMinidump(ranges []struct {
	addr uint64
	data []byte
}) []byte {
	const headerSize = 32
	const streamDirEntrySize = 12
	const memDescSize = 16

	streamDirRva := uint32(headerSize)
	memoryListRva := streamDirRva + streamDirEntrySize

	payloadStart := memoryListRva + 4 + uint32(len(ranges))*memDescSize
	buf := make([]byte, payloadStart)

	copy(buf[0:4], minidumpSignature)
	binary.LittleEndian.PutUint32(buf[8:12], 1) // numberOfStreams
	binary.LittleEndian.PutUint32(buf[12:16], streamDirRva)

	binary.LittleEndian.PutUint32(buf[streamDirRva:streamDirRva+4], memoryListStreamType)
	binary.LittleEndian.PutUint32(buf[streamDirRva+8:streamDirRva+12], memoryListRva)

	binary.LittleEndian.PutUint32(buf[memoryListRva:memoryListRva+4], uint32(len(ranges)))

	for i, r := range ranges {
		off := memoryListRva + 4 + uint32(i)*memDescSize
		binary.LittleEndian.PutUint64(buf[off:off+8], r.addr)
		binary.LittleEndian.PutUint32(buf[off+8:off+12], uint32(len(r.data)))
		binary.LittleEndian.PutUint32(buf[off+12:off+16], uint32(len(buf)))
		buf = append(buf, r.data...)
	}

	return buf
}

func TestLoadMinidumpReadsMemoryListStream(t *testing.T) {
	dump := buildMinidump([]struct {
		addr uint64
		data []byte
	}{
		{addr: 0x10000, data: []byte("first region bytes")},
		{addr: 0x20000, data: []byte("second region bytes")},
	})

	src, err := LoadMinidump(dump)
	require.NoError(t, err)
	require.Len(t, src.Regions(), 2)

	got := make([]byte, len("first region bytes"))
	n, err := src.ReadAt(0x10000, got)
	require.NoError(t, err)
	assert.Equal(t, "first region bytes", string(got[:n]))

	got2 := make([]byte, len("second region bytes"))
	n, err = src.ReadAt(0x20000, got2)
	require.NoError(t, err)
	assert.Equal(t, "second region bytes", string(got2[:n]))
}

func TestLoadMinidumpRejectsMissingSignature(t *testing.T) {
	_, err := LoadMinidump([]byte("not a minidump at all, just filler"))
	assert.Error(t, err)
}

func TestLoadMappedDumpParsesMapsLines(t *testing.T) {
	raw := []byte("AAAABBBBCCCCDDDD")
	mapsText := "1000-1008 r-- 0 /fake/module\n1008-1010 rw- 8\n"

	src, err := LoadMappedDump(raw, mapsText)
	require.NoError(t, err)
	require.Len(t, src.Regions(), 2)

	got := make([]byte, 4)
	n, err := src.ReadAt(0x1000, got)
	require.NoError(t, err)
	assert.Equal(t, "AAAA", string(got[:n]))

	n, err = src.ReadAt(0x1008, got)
	require.NoError(t, err)
	assert.Equal(t, "CCCC", string(got[:n]))
}

func TestLoadMappedDumpRejectsMalformedLine(t *testing.T) {
	_, err := LoadMappedDump([]byte("data"), "not-a-valid-maps-line\n")
	assert.Error(t, err)
}

func TestOpenDumpFileDetectsMinidumpSignature(t *testing.T) {
	dir := t.TempDir()
	dump := buildMinidump([]struct {
		addr uint64
		data []byte
	}{{addr: 0x10000, data: []byte("payload")}})

	path := filepath.Join(dir, "core.dmp")
	require.NoError(t, os.WriteFile(path, dump, 0o644))

	src, err := OpenDumpFile(path)
	require.NoError(t, err)
	require.Len(t, src.Regions(), 1)
}

func TestOpenDumpFileFallsBackToSiblingMaps(t *testing.T) {
	dir := t.TempDir()
	raw := []byte("XXXXYYYY")
	path := filepath.Join(dir, "core.raw")
	require.NoError(t, os.WriteFile(path, raw, 0o644))
	require.NoError(t, os.WriteFile(path+".maps", []byte("2000-2008 rw- 0\n"), 0o644))

	src, err := OpenDumpFile(path)
	require.NoError(t, err)
	require.Len(t, src.Regions(), 1)

	got := make([]byte, 4)
	n, err := src.ReadAt(0x2000, got)
	require.NoError(t, err)
	assert.Equal(t, "XXXX", string(got[:n]))
}
