// Package serial implements the item-serial codec: a textual, base-90
// encoding of a bit-packed token stream that names a gear item.
package serial

import (
	"errors"
	"fmt"
	"math/big"
)

// ErrSerialMalformed is returned when a serial's textual or bit-stream
// layer cannot be decoded.
var ErrSerialMalformed = errors.New("serial: malformed item serial")

// alphabet is the fixed 90-character permutation of printable ASCII used
// by the textual layer. Order matters: it defines the base-90 digit
// values, and must match exactly across encode/decode.
const alphabet = "0123456789" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
	"abcdefghijklmnopqrstuvwxyz" +
	"!#$%&()*+,-./:;<=>?@[]^_{|}~"

var (
	alphabetBase    = big.NewInt(int64(len(alphabet)))
	alphabetIndex   = buildAlphabetIndex()
	errBadAlphaChar = fmt.Errorf("%w: character outside the serial alphabet", ErrSerialMalformed)
)

func buildAlphabetIndex() map[byte]int64 {
	idx := make(map[byte]int64, len(alphabet))
	for i := 0; i < len(alphabet); i++ {
		idx[alphabet[i]] = int64(i)
	}
	return idx
}

// textToBytes converts a base-90 text payload to its big-endian bit string,
// returned as a byte slice (MSB-first, padded with trailing zero bits to a
// byte boundary). Leading alphabet-zero characters are significant: they
// contribute high-order zero digits to the big integer, which textToBytes
// preserves by left-padding the output to the size implied by len(text).
func textToBytes(text string) ([]byte, error) {
	value := new(big.Int)
	digit := new(big.Int)
	for i := 0; i < len(text); i++ {
		v, ok := alphabetIndex[text[i]]
		if !ok {
			return nil, errBadAlphaChar
		}
		digit.SetInt64(v)
		value.Mul(value, alphabetBase)
		value.Add(value, digit)
	}

	// Usable bit count per spec: floor(N * log2(90)).
	// Encode picks the shortest text whose bit budget covers its byte
	// count, so that budget exceeds a whole number of bytes by fewer than
	// 8 bits; rounding down recovers the encoded byte count.
	usableBits := bitsForLength(len(text))
	byteLen := usableBits / 8

	raw := value.Bytes()
	if len(raw) > byteLen {
		// The big integer grew past the byte budget only if input had
		// more significant digits than the alphabet's bit budget allows;
		// that is a malformed serial.
		return nil, ErrSerialMalformed
	}

	out := make([]byte, byteLen)
	copy(out[byteLen-len(raw):], raw)
	return out, nil
}

// bytesToText is the inverse of textToBytes for a given text length: it
// renders b (MSB-first) as exactly textLen base-90 characters, left-padding
// with the alphabet's zero character as needed.
func bytesToText(b []byte, textLen int) string {
	value := new(big.Int).SetBytes(b)

	digits := make([]byte, textLen)
	base := alphabetBase
	rem := new(big.Int)
	for i := textLen - 1; i >= 0; i-- {
		value.DivMod(value, base, rem)
		digits[i] = alphabet[rem.Int64()]
	}
	return string(digits)
}

// bitsForLength returns floor(n * log2(90)) using integer arithmetic
// scaled to avoid floating point drift across platforms.
func bitsForLength(n int) int {
	// log2(90) ~= 6.491853096329675; scale by 2^32 for integer math.
	const log2_90_scaled = 27882296739 // round(log2(90) * 2^32)
	return int((uint64(n) * log2_90_scaled) >> 32)
}
