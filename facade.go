// facade.go re-exports the most commonly used names from the
// sub-packages so a caller touching one format doesn't need five import
// lines. Prefer importing the subpackage directly (cipher, serial, ncs,
// backup, memory) when using more than a couple of its names.
package bl4

import (
	"github.com/monokrome/bl4-sub003/backup"
	"github.com/monokrome/bl4-sub003/cipher"
	"github.com/monokrome/bl4-sub003/internal/errkind"
	"github.com/monokrome/bl4-sub003/memory"
	"github.com/monokrome/bl4-sub003/ncs"
	"github.com/monokrome/bl4-sub003/serial"
)

// Kind classifies which error family a failure belongs to, regardless of
// which subsystem raised it.
type Kind = errkind.Kind

// Error tags a subsystem's underlying error with a Kind; errors.As(err,
// &bl4.Error{}) recovers it from any wrapped error, and errors.Is still
// matches the originating sentinel through Unwrap.
type Error = errkind.Error

// NewError wraps cause, tagging it with kind.
var NewError = errkind.NewError

const (
	KindInvalidKey       = errkind.KindInvalidKey
	KindSerialMalformed  = errkind.KindSerialMalformed
	KindManifestMagic    = errkind.KindManifestMagic
	KindDataMagic        = errkind.KindDataMagic
	KindDecompression    = errkind.KindDecompression
	KindSchemaMismatch   = errkind.KindSchemaMismatch
	KindBackupStale      = errkind.KindBackupStale
	KindMemoryUnreadable = errkind.KindMemoryUnreadable
	KindDiscoveryFailed  = errkind.KindDiscoveryFailed
)

// Save cipher.
var (
	Decrypt            = cipher.Decrypt
	Encrypt            = cipher.Encrypt
	WithIntegrityCheck = cipher.WithIntegrityCheck
)

type CipherOption = cipher.Option

// Item-serial codec.
var (
	DecodeItem = serial.Decode
	EncodeItem = serial.Encode
	Validate   = serial.Validate
)

type (
	DecodedItem      = serial.DecodedItem
	Token            = serial.Token
	TokenKind        = serial.TokenKind
	Format           = serial.Format
	Legality         = serial.Legality
	ValidationResult = serial.ValidationResult
	ValidationCheck  = serial.ValidationCheck
	RarityEstimate   = serial.RarityEstimate
)

const (
	FormatVarIntFirst = serial.FormatVarIntFirst
	FormatVarBitFirst = serial.FormatVarBitFirst
)

const (
	Legal   = serial.Legal
	Unknown = serial.Unknown
	Illegal = serial.Illegal
)

// NCS archive family.
var (
	ParseDocument = ncs.ParseDocument
	ParseManifest = ncs.ParseManifest
	DecodeRecords = ncs.DecodeRecords
)

type (
	Document    = ncs.Document
	Manifest    = ncs.Manifest
	Dialect     = ncs.Dialect
	RecordSet   = ncs.RecordSet
	StringTable = ncs.StringTable
	CodecKind   = ncs.CodecKind
)

// Backup ledger.
type (
	Ledger          = backup.Ledger
	VersionedLedger = backup.VersionedLedger
	Digest          = backup.Digest
)

var (
	NewLedger          = backup.NewLedger
	NewVersionedLedger = backup.NewVersionedLedger
	NewDigest          = backup.NewDigest
)

// Memory introspection.
type (
	Source          = memory.Source
	Region          = memory.Region
	Layout          = memory.Layout
	Pattern         = memory.Pattern
	ObjectArray     = memory.ObjectArray
	ObjectShadow    = memory.ObjectShadow
	NamePool        = memory.NamePool
	NamePoolOptions = memory.NamePoolOptions
	Schema          = memory.Schema
)

var (
	NewDumpSource       = memory.NewDumpSource
	LoadMinidump        = memory.LoadMinidump
	LoadMappedDump      = memory.LoadMappedDump
	OpenDumpFile        = memory.OpenDumpFile
	DiscoverLayout      = memory.DiscoverLayout
	DiscoverImage       = memory.DiscoverImage
	Scan                = memory.Scan
	DiscoverObjectArray = memory.DiscoverObjectArray
	DiscoverNamePool    = memory.DiscoverNamePool
	WalkObjects         = memory.WalkObjects
	WriteSchema         = memory.WriteSchema
	ReadSchema          = memory.ReadSchema
)
