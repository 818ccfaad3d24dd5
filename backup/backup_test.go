package backup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigestEqual(t *testing.T) {
	a := NewDigest([]byte("save contents v1"))
	b := NewDigest([]byte("save contents v1"))
	c := NewDigest([]byte("save contents v2"))

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestLedgerFirstObservationCommitsImmediately(t *testing.T) {
	l := NewLedger(2)
	entry, rotated := l.Consider([]byte("slot1"), "slot1.sav")
	assert.True(t, rotated)
	assert.Equal(t, uint64(1), entry.Sequence)
}

func TestLedgerUnchangedDataNeverRotates(t *testing.T) {
	l := NewLedger(2)
	l.Consider([]byte("slot1"), "slot1.sav")
	_, rotated := l.Consider([]byte("slot1"), "slot1.sav")
	assert.False(t, rotated)
}

func TestLedgerRequiresHysteresisBeforeRotating(t *testing.T) {
	l := NewLedger(2)
	l.Consider([]byte("v1"), "slot1.sav")

	// First observation of new content: not yet committed.
	_, rotated := l.Consider([]byte("v2"), "slot1.sav")
	assert.False(t, rotated)
	current, _ := l.Current()
	assert.True(t, current.Digest.Equal(NewDigest([]byte("v1"))))

	// Second consecutive observation of the same new content: commits.
	entry, rotated := l.Consider([]byte("v2"), "slot1.sav")
	assert.True(t, rotated)
	assert.True(t, entry.Digest.Equal(NewDigest([]byte("v2"))))
}

func TestLedgerFlakyObservationResetsHysteresis(t *testing.T) {
	l := NewLedger(2)
	l.Consider([]byte("v1"), "slot1.sav")
	l.Consider([]byte("v2"), "slot1.sav") // pending hit 1 for v2

	// A different candidate interrupts the run; v2's hysteresis resets.
	l.Consider([]byte("v3"), "slot1.sav") // pending hit 1 for v3

	_, rotated := l.Consider([]byte("v2"), "slot1.sav") // back to v2, hit 1 again
	assert.False(t, rotated, "v2's hysteresis count should have reset when v3 interrupted it")
}

func TestVersionedLedgerDeduplicatesByContent(t *testing.T) {
	v := NewVersionedLedger()

	e1, dup1 := v.Record([]byte("payload A"), "backup-1.sav")
	require.False(t, dup1)
	assert.Equal(t, 1, e1.Version)

	e2, dup2 := v.Record([]byte("payload B"), "backup-2.sav")
	require.False(t, dup2)
	assert.Equal(t, 2, e2.Version)

	e3, dup3 := v.Record([]byte("payload A"), "backup-3.sav")
	assert.True(t, dup3)
	assert.Equal(t, e1.Version, e3.Version)

	assert.Len(t, v.Entries(), 2)
}

func TestLedgerRequireCurrentBeforeFirstCommit(t *testing.T) {
	l := NewLedger(1)
	_, err := l.RequireCurrent()
	assert.ErrorIs(t, err, ErrNoBackupCommitted)
}

func TestLedgerRequireCurrentAfterCommit(t *testing.T) {
	l := NewLedger(1)
	l.Consider([]byte("slot1"), "slot1.sav")
	entry, err := l.RequireCurrent()
	require.NoError(t, err)
	assert.Equal(t, "slot1.sav", entry.Path)
}

func TestVersionedLedgerLatest(t *testing.T) {
	v := NewVersionedLedger()
	_, ok := v.Latest()
	assert.False(t, ok)

	v.Record([]byte("a"), "a.sav")
	v.Record([]byte("b"), "b.sav")

	latest, ok := v.Latest()
	require.True(t, ok)
	assert.Equal(t, "b.sav", latest.Path)
}
