package backup

import (
	"errors"
	"sync"

	"github.com/monokrome/bl4-sub003/internal/errkind"
)

// ErrNoBackupCommitted is returned by RequireCurrent when the ledger has
// never cleared its hysteresis bar: a caller that needs a fresh backup to
// already exist has nothing to work with yet.
var ErrNoBackupCommitted = errors.New("backup: no backup has been committed yet")

// Entry is the ledger's record of the most recently committed backup.
type Entry struct {
	Digest   Digest
	Path     string
	Sequence uint64
}

// Ledger tracks a single backup slot with digest-based hysteresis: a
// content change must be observed hysteresis times in a row, with the same
// digest each time, before the ledger accepts it as the new committed
// entry. This absorbs saves written mid-transaction (a partial write
// followed immediately by the real one) without backing up the partial
// state.
type Ledger struct {
	mu         sync.Mutex
	hysteresis int

	current     *Entry
	pending     *Digest
	pendingHits int
	seq         uint64
}

// NewLedger creates a Ledger requiring hysteresis consecutive matching
// observations of a new digest before committing it. hysteresis < 1 is
// treated as 1 (commit on first observation, no debounce).
func NewLedger(hysteresis int) *Ledger {
	if hysteresis < 1 {
		hysteresis = 1
	}
	return &Ledger{hysteresis: hysteresis}
}

// Consider hashes data and decides whether it represents a new committed
// backup. It returns the committed Entry (the prior one, if this
// observation didn't yet clear the hysteresis bar) and whether this call
// caused a rotation.
func (l *Ledger) Consider(data []byte, path string) (Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	digest := NewDigest(data)

	if l.current == nil {
		l.current = &Entry{Digest: digest, Path: path, Sequence: l.nextSeq()}
		l.pending = nil
		l.pendingHits = 0
		return *l.current, true
	}

	if digest.Equal(l.current.Digest) {
		l.pending = nil
		l.pendingHits = 0
		return *l.current, false
	}

	if l.pending != nil && digest.Equal(*l.pending) {
		l.pendingHits++
	} else {
		pending := digest
		l.pending = &pending
		l.pendingHits = 1
	}

	if l.pendingHits >= l.hysteresis {
		l.current = &Entry{Digest: digest, Path: path, Sequence: l.nextSeq()}
		l.pending = nil
		l.pendingHits = 0
		return *l.current, true
	}

	return *l.current, false
}

// Current returns the presently committed entry, or false if nothing has
// ever been committed.
func (l *Ledger) Current() (Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.current == nil {
		return Entry{}, false
	}
	return *l.current, true
}

// RequireCurrent is Current for callers that treat an empty ledger as a
// staleness error rather than a normal startup state.
func (l *Ledger) RequireCurrent() (Entry, error) {
	entry, ok := l.Current()
	if !ok {
		return Entry{}, errkind.NewError(errkind.KindBackupStale, ErrNoBackupCommitted)
	}
	return entry, nil
}

func (l *Ledger) nextSeq() uint64 {
	l.seq++
	return l.seq
}
