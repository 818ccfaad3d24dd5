package serial

// detectFormat reads the single leading format bit that distinguishes a
// VarInt-first weapon-code serial from a VarBit-first fixed-field serial.
func detectFormat(r *bitReader) (Format, error) {
	bit, err := r.readBool()
	if err != nil {
		return 0, err
	}
	if bit {
		return FormatVarIntFirst, nil
	}
	return FormatVarBitFirst, nil
}

func writeFormat(w *bitWriter, f Format) {
	w.writeBool(f == FormatVarIntFirst)
}
