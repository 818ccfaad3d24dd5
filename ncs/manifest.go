package ncs

import (
	"errors"

	"github.com/monokrome/bl4-sub003/internal/errkind"
)

// ManifestEntry names one archive member and where to find it. Index is
// the entry's position in the manifest body, kept even after any
// filtering a caller applies, since downstream tooling addresses archive
// members by this integer rather than by name.
type ManifestEntry struct {
	Index  int
	Name   string
	Offset int
	Length int
}

// Manifest is a parsed DialectManifest document: an index of named,
// offset-addressed members in a companion data file.
type Manifest struct {
	doc     *Document
	entries []ManifestEntry
}

// ParseManifest parses raw as a manifest-dialect document.
func ParseManifest(raw []byte) (*Manifest, error) {
	doc, err := ParseDocument(raw)
	if doc == nil {
		if errors.Is(err, ErrUnknownMagic) {
			return nil, errkind.NewError(errkind.KindManifestMagic, errors.Unwrap(err))
		}
		return nil, err
	}
	if doc.Dialect != DialectManifest {
		return nil, errkind.NewError(errkind.KindManifestMagic, ErrUnknownMagic)
	}
	// A manifest's body layout is handled entirely below; a partial
	// decompression is the only ParseDocument error worth surfacing here.
	partial, _ := err.(*PartialDecompressionError)

	c := NewCursor(doc.body)
	count, verr := c.ReadVarInt()
	if verr != nil {
		return nil, verr
	}

	entries := make([]ManifestEntry, 0, count)
	for i := uint64(0); i < count; i++ {
		nameIdx, verr := c.ReadVarInt()
		if verr != nil {
			return nil, verr
		}
		offset, verr := c.ReadVarInt()
		if verr != nil {
			return nil, verr
		}
		length, verr := c.ReadVarInt()
		if verr != nil {
			return nil, verr
		}

		name, _ := doc.Strings.Get(int(nameIdx))
		entries = append(entries, ManifestEntry{
			Index:  int(i),
			Name:   name,
			Offset: int(offset),
			Length: int(length),
		})
	}

	if partial != nil {
		return &Manifest{doc: doc, entries: entries}, partial
	}
	return &Manifest{doc: doc, entries: entries}, nil
}

// Entries returns every manifest entry in on-disk order, indices intact.
func (m *Manifest) Entries() []ManifestEntry {
	return m.entries
}

// ByName returns the first entry named name, and false if none match.
func (m *Manifest) ByName(name string) (ManifestEntry, bool) {
	for _, e := range m.entries {
		if e.Name == name {
			return e, true
		}
	}
	return ManifestEntry{}, false
}
