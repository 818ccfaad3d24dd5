// Package errkind gives every subsystem's sentinel errors one common
// currency: a Kind a caller can switch on via errors.As without needing
// to know which subpackage raised the error. It lives under internal/
// because it is plumbing for the root facade's Kind/Error re-export, not
// a type callers are expected to import directly.
package errkind

import "fmt"

// Kind classifies the error family a wrapped error belongs to, spanning
// every subsystem: the save cipher, the item-serial codec, the NCS
// archive family, the backup ledger, and the memory-introspection
// engine.
type Kind string

const (
	KindInvalidKey        Kind = "invalid_key"
	KindSerialMalformed   Kind = "serial_malformed"
	KindManifestMagic     Kind = "manifest_magic"
	KindDataMagic         Kind = "data_magic"
	KindDecompression     Kind = "decompression"
	KindSchemaMismatch    Kind = "schema_mismatch"
	KindBackupStale       Kind = "backup_stale"
	KindMemoryUnreadable  Kind = "memory_unreadable"
	KindDiscoveryFailed   Kind = "discovery_failed"
)

// Error tags cause with Kind so errors.As(err, &Error{}) lets a caller
// branch on the failure family regardless of which subsystem produced
// it. Unwrap returns cause, so errors.Is against a subsystem's own
// sentinel still works through the wrapper.
type Error struct {
	Kind  Kind
	Cause error
}

// NewError wraps cause, tagging it with kind.
func NewError(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Cause: cause}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }
