package memory

import (
	"context"
	"encoding/binary"
	"fmt"
)

// ObjectShadow is a lightweight mirror of one discovered UObject: just
// enough fields to place it in the graph and describe its shape, not a
// full copy of its game-specific properties.
type ObjectShadow struct {
	Index      int
	Address    uintptr
	ClassIndex int
	NameChunk  int
	NameOffset int
	Name       string
	Class      *ObjectShadow // resolved in the second pass; nil until then
}

// objectHeaderSize is the fixed prefix every object in the array shares:
// vtable pointer, class index, name chunk index, name offset. Property
// data for the object's concrete type follows and is not read by the
// walker itself.
const objectHeaderSize = 24

// WalkObjects performs the two-pass object-graph walk: pass one reads
// every object's raw header (cheap, no cross-references resolved) from
// the object array; pass two resolves each object's Class pointer back
// into the same slice and its Name through pool. The two passes exist
// because class objects can reference classes discovered later in the
// array — including the root "Class" class, whose own Class field points
// to itself — so no single linear pass can resolve every reference as it
// goes.
func WalkObjects(ctx context.Context, src Source, arr *ObjectArray, pool *NamePool) ([]*ObjectShadow, error) {
	shadows := make([]*ObjectShadow, arr.Count)

	// Pass 1: raw headers.
	for i := 0; i < arr.Count; i++ {
		if i%50000 == 0 && ctx.Err() != nil {
			return nil, ctx.Err()
		}

		addr, err := arr.ObjectAddr(src, i)
		if err != nil || addr == 0 {
			continue
		}

		header := make([]byte, objectHeaderSize)
		if err := ReadFull(src, addr, header); err != nil {
			continue
		}

		shadows[i] = &ObjectShadow{
			Index:      i,
			Address:    addr,
			ClassIndex: int(binary.LittleEndian.Uint32(header[8:12])),
			NameChunk:  int(binary.LittleEndian.Uint32(header[12:16])),
			NameOffset: int(binary.LittleEndian.Uint32(header[16:20])),
		}
	}

	// Pass 2: resolve class links and names now that every index is
	// populated.
	for _, s := range shadows {
		if s == nil {
			continue
		}
		if s.ClassIndex >= 0 && s.ClassIndex < len(shadows) {
			s.Class = shadows[s.ClassIndex] // nil-safe: may self-reference or be nil if unresolved
		}
		if pool != nil {
			name, err := pool.Resolve(s.NameChunk, s.NameOffset)
			if err == nil {
				s.Name = name
			}
		}
	}

	return shadows, nil
}

// IsSelfClass reports whether shadow is the root metaclass: an object
// whose own Class field resolves back to itself, the graph's single
// fixed point.
func IsSelfClass(shadow *ObjectShadow) bool {
	return shadow != nil && shadow.Class == shadow
}

// ClassChildren returns every shadow whose Class is exactly class.
func ClassChildren(shadows []*ObjectShadow, class *ObjectShadow) []*ObjectShadow {
	var out []*ObjectShadow
	for _, s := range shadows {
		if s != nil && s.Class == class {
			out = append(out, s)
		}
	}
	return out
}

// ErrObjectNotFound is returned by lookups against a walked graph.
var ErrObjectNotFound = fmt.Errorf("memory: object not found")
