package ncs

import (
	"github.com/RoaringBitmap/roaring/v2"
)

// TypeMatrix tracks, for each record type code seen in a document, which
// record indices carry it. Record bodies can carry dozens of sparse type
// codes over thousands of records; a compressed bitmap per code keeps this
// cheap to build and query compared to a dense []byte per record.
type TypeMatrix struct {
	rows map[byte]*roaring.Bitmap
}

func NewTypeMatrix() *TypeMatrix {
	return &TypeMatrix{rows: make(map[byte]*roaring.Bitmap)}
}

// Mark records that recordIndex carries type code.
func (m *TypeMatrix) Mark(code byte, recordIndex uint32) {
	row, ok := m.rows[code]
	if !ok {
		row = roaring.New()
		m.rows[code] = row
	}
	row.Add(recordIndex)
}

// Has reports whether recordIndex carries type code.
func (m *TypeMatrix) Has(code byte, recordIndex uint32) bool {
	row, ok := m.rows[code]
	if !ok {
		return false
	}
	return row.Contains(recordIndex)
}

// Count returns how many records carry type code.
func (m *TypeMatrix) Count(code byte) uint64 {
	row, ok := m.rows[code]
	if !ok {
		return 0
	}
	return row.GetCardinality()
}

// Codes returns every type code observed, sorted ascending.
func (m *TypeMatrix) Codes() []byte {
	codes := make([]byte, 0, len(m.rows))
	for c := range m.rows {
		codes = append(codes, c)
	}
	for i := 1; i < len(codes); i++ {
		for j := i; j > 0 && codes[j-1] > codes[j]; j-- {
			codes[j-1], codes[j] = codes[j], codes[j-1]
		}
	}
	return codes
}

// Records returns the sorted record indices carrying type code.
func (m *TypeMatrix) Records(code byte) []uint32 {
	row, ok := m.rows[code]
	if !ok {
		return nil
	}
	out := make([]uint32, 0, row.GetCardinality())
	it := row.Iterator()
	for it.HasNext() {
		out = append(out, it.Next())
	}
	return out
}
