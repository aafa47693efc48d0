package authcore

import (
	"sync"
	"time"
)

// LedgerState is the lockout state of one origin.
type LedgerState uint8

const (
	// StateClear means the origin has never failed (no record allocated).
	StateClear LedgerState = iota
	// StateWarned means the origin has failed fewer times than the threshold.
	StateWarned
	// StateBanned means the origin is inside an active ban window.
	StateBanned
)

type attemptRecord struct {
	failures int
	banUntil time.Time
}

// AttemptLedger tracks per-origin consecutive login failures and ban windows.
// It is in-process and unpersisted; hosts construct one per engine and inject
// it by handle, so tests get isolated instances instead of process-wide
// state.
//
// A ban lapses lazily: nothing is swept by a timer, the window is only
// re-evaluated when the origin is next touched. A well-behaved origin never
// allocates a record.
type AttemptLedger struct {
	mu      sync.Mutex
	cfg     LockoutConfig
	records map[string]*attemptRecord

	// now is swappable for tests.
	now func() time.Time
}

// NewAttemptLedger returns an empty ledger with the given policy.
func NewAttemptLedger(cfg LockoutConfig) *AttemptLedger {
	return &AttemptLedger{
		cfg:     cfg,
		records: make(map[string]*attemptRecord),
		now:     time.Now,
	}
}

// Allowed reports whether the origin may attempt a login. False only inside
// an active ban window; a lapsed but untouched ban is already allowed.
func (l *AttemptLedger) Allowed(origin string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	record, ok := l.records[origin]
	if !ok {
		return true
	}
	return !l.banActive(record)
}

// RecordFailure counts one failed attempt and reports whether the origin is
// now banned. Increment and threshold check happen under one lock, so
// simultaneous failures from the same origin cannot lose counts.
//
// A failure against a lapsed ban restarts the origin at one failure rather
// than re-banning it.
func (l *AttemptLedger) RecordFailure(origin string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	record, ok := l.records[origin]
	if !ok {
		record = &attemptRecord{}
		l.records[origin] = record
	}

	if l.banActive(record) {
		return true
	}
	if !record.banUntil.IsZero() {
		// Lapsed ban: first failure of a fresh warning cycle.
		record.failures = 1
		record.banUntil = time.Time{}
		return false
	}

	record.failures++
	if record.failures >= l.cfg.FailureThreshold {
		record.banUntil = l.now().Add(l.cfg.BanDuration)
		return true
	}
	return false
}

// State reports the origin's current state and its consecutive failure
// count. The count for a lapsed ban still reads as the pre-ban value until
// the next failure resets it.
func (l *AttemptLedger) State(origin string) (LedgerState, int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	record, ok := l.records[origin]
	if !ok {
		return StateClear, 0
	}
	if l.banActive(record) {
		return StateBanned, record.failures
	}
	return StateWarned, record.failures
}

func (l *AttemptLedger) banActive(record *attemptRecord) bool {
	return !record.banUntil.IsZero() && l.now().Before(record.banUntil)
}
