package ncs

import "fmt"

// Record is one parsed body entry: for "item" documents, a fixed-schema
// entry naming a gear item's pool slot; for "tmpl"/"tble" documents, a
// tag-value bag of fields.
type Record struct {
	NameIndex  int
	Name       string
	CategoryID int
	Flags      uint32
	Fields     map[byte][]byte // tag-value records only
}

// RecordSet is a document's fully decoded body.
type RecordSet struct {
	FormatCode string
	Records    []Record
	Types      *TypeMatrix
}

// DecodeRecords parses doc.body according to doc.FormatCode. Callers must
// check doc's format code is in knownFormatCodes (ParseDocument already
// returns ErrBinaryBodyNotDecoded otherwise) before calling this.
func DecodeRecords(doc *Document) (*RecordSet, error) {
	switch doc.FormatCode {
	case "item":
		return decodeFixedSchema(doc)
	case "tmpl", "tble":
		return decodeTagValue(doc)
	default:
		return nil, fmt.Errorf("%w: format code %q", ErrBinaryBodyNotDecoded, doc.FormatCode)
	}
}

// decodeFixedSchema parses the "item" body: a VarInt record count followed
// by that many (nameIndex VarInt, categoryID VarInt, flags uint32)
// entries.
func decodeFixedSchema(doc *Document) (*RecordSet, error) {
	c := NewCursor(doc.body)
	count, err := c.ReadVarInt()
	if err != nil {
		return nil, err
	}

	set := &RecordSet{FormatCode: doc.FormatCode, Types: NewTypeMatrix()}
	for i := uint64(0); i < count; i++ {
		nameIdx, err := c.ReadVarInt()
		if err != nil {
			return nil, err
		}
		categoryID, err := c.ReadVarInt()
		if err != nil {
			return nil, err
		}
		flags, err := c.ReadUint32()
		if err != nil {
			return nil, err
		}

		name, _ := doc.Strings.Get(int(nameIdx))
		rec := Record{NameIndex: int(nameIdx), Name: name, CategoryID: int(categoryID), Flags: flags}
		set.Records = append(set.Records, rec)
		set.Types.Mark(byte(categoryID&0xFF), uint32(i))
	}
	return set, nil
}

// tagValueEnd is the terminator tag closing a record's field run.
const tagValueEnd = 0x00

// decodeTagValue parses a repeated (tag byte, VarInt length, payload)
// stream grouped into records by a 0x00 terminator tag. Each tag seen is
// marked into the type matrix against the record index it appeared in.
func decodeTagValue(doc *Document) (*RecordSet, error) {
	c := NewCursor(doc.body)
	set := &RecordSet{FormatCode: doc.FormatCode, Types: NewTypeMatrix()}

	recordIndex := uint32(0)
	fields := map[byte][]byte{}

	for c.Remaining() > 0 {
		tag, err := c.ReadByte()
		if err != nil {
			return nil, err
		}
		if tag == tagValueEnd {
			if len(fields) > 0 {
				set.Records = append(set.Records, Record{Fields: fields})
				recordIndex++
				fields = map[byte][]byte{}
			}
			continue
		}

		length, err := c.ReadVarInt()
		if err != nil {
			return nil, err
		}
		payload, err := c.ReadBytes(int(length))
		if err != nil {
			return nil, err
		}

		fields[tag] = payload
		set.Types.Mark(tag, recordIndex)
	}

	if len(fields) > 0 {
		set.Records = append(set.Records, Record{Fields: fields})
	}

	return set, nil
}
