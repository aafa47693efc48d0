package authcore

import "sync/atomic"

// MetricID indexes one engine counter.
type MetricID uint16

const (
	// MetricLoginSuccess counts authenticated logins.
	MetricLoginSuccess MetricID = iota
	// MetricLoginFailure counts bad-credential outcomes, decryption failures
	// included.
	MetricLoginFailure
	// MetricLoginForbidden counts attempts rejected by an active ban.
	MetricLoginForbidden
	// MetricBanOpened counts ban windows opened by reaching the threshold.
	MetricBanOpened
	// MetricAccountProvisioned counts federated auto-provisioned accounts.
	MetricAccountProvisioned
	// MetricAccountExpired counts stale accounts deleted on resolution.
	MetricAccountExpired
	// MetricRecoveryMinted counts issued recovery grants.
	MetricRecoveryMinted
	// MetricRecoveryConsumed counts successful new-password generations.
	MetricRecoveryConsumed
	// MetricRecoveryExpired counts grants consumed past their window.
	MetricRecoveryExpired
	// MetricRememberMeIssued counts remember-me rows written on login.
	MetricRememberMeIssued
	// MetricRememberMeReplayed counts successful auto-login replays.
	MetricRememberMeReplayed
	// MetricCsrfIssued counts persisted CSRF tokens.
	MetricCsrfIssued
	// MetricLogout counts logouts.
	MetricLogout
	metricIDCount
)

type paddedCounter struct {
	value uint64
	_     [56]byte // pad to a cache line
}

// Metrics is a fixed set of atomic counters. Increment costs one atomic add;
// disabled metrics cost a nil check.
type Metrics struct {
	counters [metricIDCount]paddedCounter
}

// MetricsSnapshot is a point-in-time copy of every counter.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

// NewMetrics returns a zeroed counter set.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// Inc bumps one counter. Nil-safe.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Get reads one counter.
func (m *Metrics) Get(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies every counter.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{Counters: make(map[MetricID]uint64, metricIDCount)}
	if m == nil {
		return snap
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		snap.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}
	return snap
}
