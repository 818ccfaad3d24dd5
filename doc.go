// Package bl4 is a reverse-engineering and round-trip toolkit for a
// commercial game's on-disk and in-memory binary formats: the save-file
// cipher, the item-serial codec, the NCS archive family, a backup
// ledger, and a memory-introspection engine for reading the engine's
// live object graph out of a running process or a captured dump.
package bl4
