package ncs

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/flate"

	"github.com/monokrome/bl4-sub003/internal/bufpool"
)

// FlateCodec stands in for the archive's primary proprietary compressor: it
// is not bit-compatible with the original format, but it is wired to the
// same seam (a Codec swapped in by CodecKind) so documents compressed with
// an open implementation round-trip through the rest of this package
// unchanged.
type FlateCodec struct{}

func NewFlateCodec() FlateCodec { return FlateCodec{} }

func (FlateCodec) Name() string { return "flate" }

func (FlateCodec) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (FlateCodec) Decompress(data []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()

	buf := bufpool.GetDecompressBuffer()
	defer bufpool.PutDecompressBuffer(buf)

	_, err := io.Copy(buf, r)
	out := append([]byte(nil), buf.Bytes()...)
	if err != nil {
		return partialResultOrErr(out, err)
	}
	return out, nil
}

// partialResultOrErr surfaces whatever bytes were decoded before a stream
// error as a PartialDecompressionError rather than discarding them: a
// truncated archive body is common enough (interrupted writes, partial
// downloads) that callers should be able to inspect what did decode.
func partialResultOrErr(partial []byte, cause error) ([]byte, error) {
	if len(partial) == 0 {
		return nil, cause
	}
	return partial, &PartialDecompressionError{Decoded: len(partial), Cause: cause}
}
