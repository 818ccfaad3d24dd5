package memory

import (
	"container/list"
	"context"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildFakePE writes a minimal but structurally valid PE image: DOS
// header with e_lfanew, PE signature, a COFF header naming one section,
// an optional header with SizeOfCode, and one executable section.
func buildFakePE() []byte {
	img := make([]byte, 0x2000)

	binary.LittleEndian.PutUint16(img[0:2], mzSignature)
	const peOffset = 0x80
	binary.LittleEndian.PutUint32(img[0x3C:0x40], peOffset)

	binary.LittleEndian.PutUint32(img[peOffset:peOffset+4], peSignature)
	binary.LittleEndian.PutUint16(img[peOffset+6:peOffset+8], 1) // numSections
	const sizeOfOptionalHeader = 24
	binary.LittleEndian.PutUint16(img[peOffset+20:peOffset+22], sizeOfOptionalHeader)

	optHeaderAddr := peOffset + 24
	binary.LittleEndian.PutUint32(img[optHeaderAddr+4:optHeaderAddr+8], 0x1000) // SizeOfCode

	sectionAddr := optHeaderAddr + sizeOfOptionalHeader
	copy(img[sectionAddr:sectionAddr+8], []byte(".text\x00\x00\x00"))
	binary.LittleEndian.PutUint32(img[sectionAddr+8:sectionAddr+12], 0x500)  // VirtualSize
	binary.LittleEndian.PutUint32(img[sectionAddr+12:sectionAddr+16], 0x1000) // VirtualAddr
	binary.LittleEndian.PutUint32(img[sectionAddr+36:sectionAddr+40], peSectionCharExecute)

	return img
}

func TestDiscoverLayout(t *testing.T) {
	img := buildFakePE()
	src := NewDumpSource(0x400000, img)

	layout, err := DiscoverLayout(src, 0x400000)
	require.NoError(t, err)
	require.Len(t, layout.Sections, 1)
	assert.Equal(t, ".text", layout.Sections[0].Name)
	assert.True(t, layout.Sections[0].Executable)

	start, end := layout.CodeBounds()
	assert.Equal(t, uintptr(0x401000), start)
	assert.Equal(t, uintptr(0x401500), end)
}

func TestDiscoverLayoutRejectsNonPE(t *testing.T) {
	src := NewDumpSource(0, make([]byte, 64))
	_, err := DiscoverLayout(src, 0)
	assert.ErrorIs(t, err, ErrNotPE)
}

func TestScanFindsPattern(t *testing.T) {
	data := make([]byte, 4096)
	needle := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	copy(data[100:], needle)
	copy(data[3000:], needle)

	src := NewDumpSource(0x1000, data)
	pattern := Pattern{Bytes: needle, Mask: []byte{1, 1, 1, 1}}

	hits, err := Scan(context.Background(), src, 0x1000, 0x1000+uintptr(len(data)), pattern, ScanOptions{ChunkSize: 1000, Workers: 2})
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, uintptr(0x1000+100), hits[0])
	assert.Equal(t, uintptr(0x1000+3000), hits[1])
}

func TestScanWithWildcard(t *testing.T) {
	data := make([]byte, 256)
	data[10] = 0x48
	data[11] = 0x99 // wildcard
	data[12] = 0xC3

	src := NewDumpSource(0, data)
	pattern := Pattern{Bytes: []byte{0x48, 0x00, 0xC3}, Mask: []byte{1, 0, 1}}

	hits, err := Scan(context.Background(), src, 0, uintptr(len(data)), pattern, ScanOptions{})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, uintptr(10), hits[0])
}

func TestNamePoolResolveASCII(t *testing.T) {
	chunk := make([]byte, 64)
	name := "Pistol_Jakobs"
	header := uint16(len(name)) << 6
	binary.LittleEndian.PutUint16(chunk[0:2], header)
	copy(chunk[2:], name)

	pool := &NamePool{chunks: [][]byte{chunk}}

	got, err := pool.Resolve(0, 0)
	require.NoError(t, err)
	assert.Equal(t, name, got)
}

func TestNamePoolCaching(t *testing.T) {
	chunk := make([]byte, 64)
	name := "Shield_Torgue"
	header := uint16(len(name)) << 6
	binary.LittleEndian.PutUint16(chunk[0:2], header)
	copy(chunk[2:], name)

	pool := &NamePool{chunks: [][]byte{chunk}}
	pool.cache = make(map[uint64]*list.Element)
	pool.lru = list.New()
	pool.cacheCap = 4

	got1, err := pool.Resolve(0, 0)
	require.NoError(t, err)
	got2, err := pool.Resolve(0, 0)
	require.NoError(t, err)
	assert.Equal(t, name, got1)
	assert.Equal(t, got1, got2)
}

func TestWalkObjectsTwoPass(t *testing.T) {
	base := uintptr(0x20000)
	img := make([]byte, 0x2000)

	// Pointer table at the base: two object addresses.
	obj0Addr := base + 0x1000
	obj1Addr := base + 0x1000 + 32
	binary.LittleEndian.PutUint64(img[0:8], uint64(obj0Addr))
	binary.LittleEndian.PutUint64(img[8:16], uint64(obj1Addr))

	// Object 0 is its own class (the root metaclass): ClassIndex == 0.
	// Object 1's class is object 0: ClassIndex == 0 too (index 0 in the array).
	binary.LittleEndian.PutUint32(img[0x1000+8:0x1000+12], 0)
	binary.LittleEndian.PutUint32(img[0x1000+32+8:0x1000+32+12], 0)

	src := NewDumpSource(base, img)
	arr := &ObjectArray{
		ChunkPointers: []uintptr{base},
		ChunkSize:     1000,
		Count:         2,
	}

	shadows, err := WalkObjects(context.Background(), src, arr, nil)
	require.NoError(t, err)
	require.Len(t, shadows, 2)
	require.NotNil(t, shadows[0])
	require.NotNil(t, shadows[1])

	assert.True(t, IsSelfClass(shadows[0]))
	assert.Same(t, shadows[0], shadows[1].Class)
}

func TestSchemaRoundTrip(t *testing.T) {
	schema := &Schema{
		DiscoveryMethod: MethodDataScan,
		Classes: []ClassSchema{
			{
				Name:      "Weapon",
				ParentIdx: -1,
				Properties: []PropertyDescriptor{
					{Name: "Damage", Offset: 0x10, Type: PropertyFloat32, Tier: 3},
					{Name: "Owner", Offset: 0x18, Type: PropertyObjectRef, Tier: 1},
				},
			},
		},
	}

	raw, err := WriteSchema(schema)
	require.NoError(t, err)

	got, err := ReadSchema(raw)
	require.NoError(t, err)
	require.Len(t, got.Classes, 1)
	assert.Equal(t, "Weapon", got.Classes[0].Name)
	require.Len(t, got.Classes[0].Properties, 2)
	assert.Equal(t, PropertyFloat32, got.Classes[0].Properties[0].Type)
}

func TestInferPropertyBool(t *testing.T) {
	pt, tier := InferProperty(nil, 0, []byte{1, 0, 0, 0})
	assert.Equal(t, PropertyBool, pt)
	assert.Equal(t, 2, tier)
}
