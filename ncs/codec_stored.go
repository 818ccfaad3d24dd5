package ncs

// StoredCodec is the identity codec: the body is already plaintext. It
// grounds CodecStored so every CodecKind resolves to a real Codec even
// when no compression was applied.
type StoredCodec struct{}

func NewStoredCodec() StoredCodec { return StoredCodec{} }

func (StoredCodec) Name() string { return "stored" }

func (StoredCodec) Compress(data []byte) ([]byte, error) {
	return data, nil
}

func (StoredCodec) Decompress(data []byte) ([]byte, error) {
	return data, nil
}
