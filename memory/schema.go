package memory

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/monokrome/bl4-sub003/internal/errkind"
)

// schemaMagic tags the binary artifact so a reader can distinguish it from
// any other file before parsing further.
var schemaMagic = [4]byte{'B', 'S', 'C', 'H'}

const schemaVersion uint32 = 1

// ClassSchema is one discovered class's recovered shape: its name, its
// parent (by index into the emitted class list, -1 if none), and its
// inferred properties.
type ClassSchema struct {
	Name       string
	ParentIdx  int
	Properties []PropertyDescriptor
}

// Schema is the complete artifact produced by a discovery run: every class
// recovered from the object graph walk, plus the discovery method used to
// locate the object array it was built from (so a later run against a
// patched game build can tell whether the same strategy is still viable).
type Schema struct {
	DiscoveryMethod DiscoveryMethod
	Classes         []ClassSchema
}

// WriteSchema serializes schema to its binary artifact form: a fixed
// magic and version header, then a flat length-prefixed encoding of each
// class and its properties.
func WriteSchema(schema *Schema) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(schemaMagic[:])
	writeUint32(&buf, schemaVersion)
	writeUint32(&buf, uint32(schema.DiscoveryMethod))
	writeUint32(&buf, uint32(len(schema.Classes)))

	for _, class := range schema.Classes {
		writeString(&buf, class.Name)
		writeInt32(&buf, int32(class.ParentIdx))
		writeUint32(&buf, uint32(len(class.Properties)))
		for _, prop := range class.Properties {
			writeString(&buf, prop.Name)
			writeInt32(&buf, int32(prop.Offset))
			writeUint32(&buf, uint32(prop.Type))
			writeUint32(&buf, uint32(prop.Tier))
		}
	}

	return buf.Bytes(), nil
}

// ReadSchema parses a binary artifact produced by WriteSchema.
func ReadSchema(raw []byte) (*Schema, error) {
	if len(raw) < 12 || !bytes.Equal(raw[:4], schemaMagic[:]) {
		return nil, fmt.Errorf("memory: not a schema artifact")
	}
	r := bytes.NewReader(raw[4:])

	version, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	if version != schemaVersion {
		return nil, errkind.NewError(errkind.KindSchemaMismatch,
			fmt.Errorf("memory: unsupported schema version %d", version))
	}

	methodVal, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	classCount, err := readUint32(r)
	if err != nil {
		return nil, err
	}

	schema := &Schema{DiscoveryMethod: DiscoveryMethod(methodVal)}
	for i := uint32(0); i < classCount; i++ {
		name, err := readString(r)
		if err != nil {
			return nil, err
		}
		parentIdx, err := readInt32(r)
		if err != nil {
			return nil, err
		}
		propCount, err := readUint32(r)
		if err != nil {
			return nil, err
		}

		props := make([]PropertyDescriptor, 0, propCount)
		for j := uint32(0); j < propCount; j++ {
			pname, err := readString(r)
			if err != nil {
				return nil, err
			}
			offset, err := readInt32(r)
			if err != nil {
				return nil, err
			}
			ptype, err := readUint32(r)
			if err != nil {
				return nil, err
			}
			tier, err := readUint32(r)
			if err != nil {
				return nil, err
			}
			props = append(props, PropertyDescriptor{
				Name:   pname,
				Offset: int(offset),
				Type:   PropertyType(ptype),
				Tier:   int(tier),
			})
		}

		schema.Classes = append(schema.Classes, ClassSchema{
			Name:       name,
			ParentIdx:  int(parentIdx),
			Properties: props,
		})
	}

	return schema, nil
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeInt32(buf *bytes.Buffer, v int32) {
	writeUint32(buf, uint32(v))
}

func writeString(buf *bytes.Buffer, s string) {
	writeUint32(buf, uint32(len(s)))
	buf.WriteString(s)
}

func readUint32(r *bytes.Reader) (uint32, error) {
	var b [4]byte
	if _, err := r.Read(b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func readInt32(r *bytes.Reader) (int32, error) {
	v, err := readUint32(r)
	return int32(v), err
}

func readString(r *bytes.Reader) (string, error) {
	n, err := readUint32(r)
	if err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := r.Read(b); err != nil {
		return "", err
	}
	return string(b), nil
}
