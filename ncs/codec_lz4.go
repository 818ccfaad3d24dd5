package ncs

import (
	"bytes"
	"io"

	"github.com/pierrec/lz4/v4"

	"github.com/monokrome/bl4-sub003/internal/bufpool"
)

// LZ4Codec is an alternate block codec for documents that used the
// archive's faster, lower-ratio compression mode.
type LZ4Codec struct{}

func NewLZ4Codec() LZ4Codec { return LZ4Codec{} }

func (LZ4Codec) Name() string { return "lz4" }

func (LZ4Codec) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (LZ4Codec) Decompress(data []byte) ([]byte, error) {
	r := lz4.NewReader(bytes.NewReader(data))

	buf := bufpool.GetDecompressBuffer()
	defer bufpool.PutDecompressBuffer(buf)

	_, err := io.Copy(buf, r)
	out := append([]byte(nil), buf.Bytes()...)
	if err != nil {
		return partialResultOrErr(out, err)
	}
	return out, nil
}
