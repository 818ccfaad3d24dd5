// Package ncs implements the archive family shared by the container's
// manifest and data dialects: a common framed body, a string table, and a
// pluggable body decompressor.
package ncs

import "fmt"

// Compressor compresses a decoded body back into its on-disk form.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor expands an on-disk body into its decoded form.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both directions of a single compression scheme.
type Codec interface {
	Compressor
	Decompressor
	// Name identifies the scheme for diagnostics and schema emission.
	Name() string
}

// CodecKind selects one of the registered body codecs by the byte tag
// stored in a document's header.
type CodecKind byte

const (
	CodecStored CodecKind = iota
	CodecFlate
	CodecLZ4
	CodecExternalProcess
)

var builtinCodecs = map[CodecKind]Codec{
	CodecStored: NewStoredCodec(),
	CodecFlate:  NewFlateCodec(),
	CodecLZ4:    NewLZ4Codec(),
}

// RegisterCodec installs or replaces the codec used for kind. It exists so
// callers can wire CodecExternalProcess to a real external decompressor
// binary (for example a ProcessCodec); no codec is registered for that
// kind by default.
func RegisterCodec(kind CodecKind, codec Codec) {
	builtinCodecs[kind] = codec
}

// GetCodec resolves kind to its registered Codec.
func GetCodec(kind CodecKind) (Codec, error) {
	codec, ok := builtinCodecs[kind]
	if !ok {
		return nil, fmt.Errorf("ncs: no codec registered for kind %d", kind)
	}
	return codec, nil
}
