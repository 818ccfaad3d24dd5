package ncs

import (
	"fmt"

	"github.com/monokrome/bl4-sub003/internal/errkind"
)

// Dialect distinguishes the container's two top-level shapes: a manifest
// (an index of named entries) and a data document (a single payload with
// a typed body).
type Dialect int

const (
	DialectManifest Dialect = iota
	DialectData
)

func (d Dialect) String() string {
	if d == DialectManifest {
		return "manifest"
	}
	return "data"
}

var (
	manifestMagic = [4]byte{'N', 'C', 'S', 'M'}
	dataMagic     = [4]byte{'N', 'C', 'S', 'D'}
)

// knownFormatCodes lists the four-character body-schema tags this package
// knows how to parse beyond the string table. abjm and abhX are
// deliberately absent: those schemas are not reverse engineered past their
// string table, and callers hit ErrBinaryBodyNotDecoded for them.
var knownFormatCodes = map[string]bool{
	"item": true,
	"tmpl": true,
	"tble": true,
}

// Document is a parsed container body, common to both dialects up through
// the string table.
type Document struct {
	Dialect     Dialect
	FormatCode  string
	CodecKind   CodecKind
	Strings     *StringTable
	body        []byte // decompressed bytes following the string table
}

// detectDialect reads and validates the document's leading magic.
func detectDialect(c *Cursor) (Dialect, error) {
	magic, err := c.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	switch {
	case bytesEqual(magic, manifestMagic[:]):
		return DialectManifest, nil
	case bytesEqual(magic, dataMagic[:]):
		return DialectData, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMagic, magic)
	}
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ParseDocument decodes a full container body: dialect magic, format code,
// codec selection, decompression, and the string table. The typed record
// body beyond the string table is left in Document.body for
// DecodeRecords/ParseManifest to interpret once the format code is
// known to have a parser.
func ParseDocument(raw []byte) (*Document, error) {
	c := NewCursor(raw)

	dialect, err := detectDialect(c)
	if err != nil {
		// The dialect is unknown at this point, so this generically reads
		// as a data-document magic failure; ParseManifest re-tags it
		// KindManifestMagic for callers that specifically expected one.
		return nil, errkind.NewError(errkind.KindDataMagic, err)
	}

	formatCodeBytes, err := c.ReadBytes(4)
	if err != nil {
		return nil, err
	}
	formatCode := string(formatCodeBytes)

	codecByte, err := c.ReadByte()
	if err != nil {
		return nil, err
	}
	codecKind := CodecKind(codecByte)

	compressedLen, err := c.ReadUint32()
	if err != nil {
		return nil, err
	}
	compressed, err := c.ReadBytes(int(compressedLen))
	if err != nil {
		return nil, err
	}

	codec, err := GetCodec(codecKind)
	if err != nil {
		return nil, err
	}
	decompressed, err := codec.Decompress(compressed)
	partialErr := asPartialError(err)
	if err != nil && partialErr == nil {
		return nil, errkind.NewError(errkind.KindDecompression, err)
	}

	bc := NewCursor(decompressed)
	table, err := parseStringTable(bc)
	if err != nil {
		return nil, err
	}

	doc := &Document{
		Dialect:    dialect,
		FormatCode: formatCode,
		CodecKind:  codecKind,
		Strings:    table,
		body:       decompressed[bc.Pos:],
	}

	if partialErr != nil {
		return doc, partialErr
	}
	if dialect == DialectData && !knownFormatCodes[formatCode] {
		return doc, fmt.Errorf("%w: format code %q", ErrBinaryBodyNotDecoded, formatCode)
	}
	return doc, nil
}

func asPartialError(err error) *PartialDecompressionError {
	pe, ok := err.(*PartialDecompressionError)
	if !ok {
		return nil
	}
	return pe
}
