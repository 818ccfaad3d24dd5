package serial

// Encode renders a decoded item back into its textual serial form.
func Encode(item *DecodedItem) (string, error) {
	w := newBitWriter()
	writeFormat(w, item.Format)

	switch item.Format {
	case FormatVarIntFirst:
		w.writeVarInt(item.WeaponCode)
	case FormatVarBitFirst:
		w.writeBits(item.ManufacturerCode, manufacturerFieldBits)
		w.writeBits(item.WeaponTypeCode, weaponTypeFieldBits)
	}

	code, ok := levelToCode(item.Level)
	if !ok {
		return "", ErrSerialMalformed
	}
	w.writeBits(uint64(code), 8)

	w.writeVarInt(uint64(item.CategoryID))
	w.writeBits(uint64(item.RarityTier), 3)
	w.writeVarInt(uint64(len(item.Parts)))
	for _, p := range item.Parts {
		w.writeVarInt(p.Value)
	}

	raw := w.bytes()
	textLen := textLengthForBytes(len(raw))
	return bytesToText(raw, textLen), nil
}

// textLengthForBytes returns the smallest character count whose alphabet
// bit budget (see bitsForLength) covers numBytes bytes.
func textLengthForBytes(numBytes int) int {
	needed := numBytes * 8
	n := 1
	for bitsForLength(n) < needed {
		n++
	}
	return n
}
