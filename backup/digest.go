// Package backup implements the content-addressed backup ledger: a record
// of which save snapshot was last written, keyed on fast and strong
// digests so repeated unchanged saves never produce a new backup file.
package backup

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/cespare/xxhash/v2"
)

// Digest is a two-tier content fingerprint: xxhash for a cheap first
// comparison, and SHA-256 to confirm a match. NewDigest computes both
// hashes on every call; Equal compares the SHA-256 sums only when the
// xxhash values agree.
type Digest struct {
	Fast   uint64
	Strong [32]byte
}

// NewDigest hashes data under both functions.
func NewDigest(data []byte) Digest {
	return Digest{
		Fast:   xxhash.Sum64(data),
		Strong: sha256.Sum256(data),
	}
}

// Equal reports whether two digests describe identical content. Fast is
// checked first since it is the common rejection path.
func (d Digest) Equal(other Digest) bool {
	if d.Fast != other.Fast {
		return false
	}
	return d.Strong == other.Strong
}

// String renders the strong digest as hex, truncated to 16 characters for
// log lines.
func (d Digest) String() string {
	return hex.EncodeToString(d.Strong[:8])
}
