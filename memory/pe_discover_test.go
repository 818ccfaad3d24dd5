package memory

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverImageSkipsNonImageRegions(t *testing.T) {
	garbage := []byte("not a pe image, just filler bytes before the real one")
	img := buildFakePE()

	raw := append(append([]byte{}, garbage...), img...)

	garbageBase := uintptr(0x10000)
	imageBase := uintptr(0x400000)
	mapsText := fmt.Sprintf(
		"%x-%x rw- 0\n%x-%x r-x %x\n",
		garbageBase, garbageBase+uintptr(len(garbage)),
		imageBase, imageBase+uintptr(len(img)), len(garbage),
	)

	src, err := LoadMappedDump(raw, mapsText)
	require.NoError(t, err)

	layout, err := DiscoverImage(src)
	require.NoError(t, err)
	assert.Equal(t, imageBase, layout.ImageBase)
	require.Len(t, layout.Sections, 1)
	assert.Equal(t, ".text", layout.Sections[0].Name)
}

func TestDiscoverImageNoCandidateRegion(t *testing.T) {
	src, err := LoadMappedDump([]byte("nothing here"), "1000-1010 rw- 0\n")
	require.NoError(t, err)

	_, err = DiscoverImage(src)
	assert.ErrorIs(t, err, ErrNotPE)
}
