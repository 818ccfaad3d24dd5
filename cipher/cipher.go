// Package cipher implements the save blob cipher: a keystream-based XOR
// encryption over a seed derived from a player identifier, used to move
// between on-disk save bytes and the plaintext structured document they
// contain.
package cipher

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"unicode/utf8"

	"github.com/monokrome/bl4-sub003/internal/errkind"
)

// ErrInvalidKey is returned by Decrypt when the identifier does not produce
// a plaintext that passes the integrity check.
var ErrInvalidKey = errors.New("cipher: invalid key")

// gameSalt is combined with the identifier when deriving the keystream
// seed. It is fixed for this save format; changing it invalidates every
// previously encrypted blob.
const gameSalt = "bl4-sub003/save-cipher/v1"

// Option configures a Decrypt call.
type Option func(*options)

type options struct {
	integrityCheck func([]byte) bool
}

// WithIntegrityCheck overrides the default plaintext validity check used by
// Decrypt to detect a wrong identifier.
func WithIntegrityCheck(check func([]byte) bool) Option {
	return func(o *options) { o.integrityCheck = check }
}

func newOptions(opts []Option) *options {
	o := &options{integrityCheck: looksLikeDocument}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Decrypt converts on-disk ciphertext to the plaintext structured document
// it encodes, using a keystream derived from identifier. It returns
// ErrInvalidKey if the result fails the configured integrity check.
func Decrypt(ciphertext []byte, identifier uint64, opts ...Option) ([]byte, error) {
	o := newOptions(opts)
	plaintext := xorBytes(newKeystream(identifier), ciphertext)
	if !o.integrityCheck(plaintext) {
		return nil, errkind.NewError(errkind.KindInvalidKey, ErrInvalidKey)
	}
	return plaintext, nil
}

// Encrypt converts a plaintext structured document to on-disk ciphertext
// using a keystream derived from identifier. It never fails: XOR encryption
// is total over any byte sequence.
func Encrypt(plaintext []byte, identifier uint64) []byte {
	return xorBytes(newKeystream(identifier), plaintext)
}

// newKeystream derives the two LCG seeds and the warm-up round count from
// identifier and the fixed game salt, then returns a generator ready to
// produce keystream words.
func newKeystream(identifier uint64) *dualLCG {
	index1, index2, rounds := deriveSeedIndices(identifier)
	return newDualLCG(seedTable[index1], seedTable[index2], rounds)
}

// deriveSeedIndices turns identifier into two indices into seedTable plus
// a warm-up round count, via a digest of the identifier and gameSalt. This
// stands in for the format's "salt" field, which in the original format is
// supplied directly; here it is derived so that a single identifier is
// sufficient to reproduce the keystream.
func deriveSeedIndices(identifier uint64) (index1, index2, rounds int) {
	h := sha256.New()
	var idBuf [8]byte
	binary.LittleEndian.PutUint64(idBuf[:], identifier)
	h.Write(idBuf[:])
	h.Write([]byte(gameSalt))
	digest := h.Sum(nil)

	salt := int(binary.LittleEndian.Uint16(digest[0:2]) & 0x7FF)
	index1 = salt & 0x1F
	index2 = (salt >> 5) & 0x1F
	if salt>>10 == 1 {
		index1 += 32
	} else {
		index2 += 32
	}

	rounds = int(digest[2]) % 65
	return
}

// looksLikeDocument is the default integrity check: the first 64 decrypted
// bytes must be valid UTF-8 and printable text (tab, CR and LF allowed),
// since save plaintext is always a text-serialized structured document.
// Bytes past the first 64 are not inspected.
func looksLikeDocument(b []byte) bool {
	if len(b) == 0 {
		return true
	}
	n := len(b)
	if n > 64 {
		n = 64
	}
	prefix := b[:n]
	if !utf8.Valid(prefix) {
		return false
	}
	for len(prefix) > 0 {
		r, size := utf8.DecodeRune(prefix)
		if r == utf8.RuneError && size <= 1 {
			return false
		}
		if r < 0x20 && r != '\n' && r != '\r' && r != '\t' {
			return false
		}
		prefix = prefix[size:]
	}
	return true
}
