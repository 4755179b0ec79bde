package authcore

import (
	"sync/atomic"
	"time"
)

// MetricID identifies one of the manager's counters.
type MetricID uint16

const (
	MetricLoginSuccess MetricID = iota
	MetricLoginFailure
	MetricLoginRateLimited
	MetricIssueSuccess
	MetricIssueFailure
	MetricVerifySuccess
	MetricVerifyRejected
	MetricVerifyUnavailable
	MetricRotateSuccess
	MetricRotateFailure
	MetricRotateReuseDetected
	MetricRotateRateLimited
	MetricLogout
	MetricRevokeAll

	metricCount
)

// MetricDefinition names a counter for export surfaces.
type MetricDefinition struct {
	ID   MetricID
	Name string
	Help string
}

var metricDefs = [metricCount]MetricDefinition{
	{MetricLoginSuccess, "authcore_login_success_total", "Successful logins."},
	{MetricLoginFailure, "authcore_login_failure_total", "Failed logins (unknown identifier or wrong password)."},
	{MetricLoginRateLimited, "authcore_login_rate_limited_total", "Logins rejected by the attempt throttle."},
	{MetricIssueSuccess, "authcore_issue_success_total", "Token pairs minted."},
	{MetricIssueFailure, "authcore_issue_failure_total", "Issuance refused (version read failed or signing error)."},
	{MetricVerifySuccess, "authcore_verify_success_total", "Tokens verified successfully."},
	{MetricVerifyRejected, "authcore_verify_rejected_total", "Tokens rejected (signature, expiry, kind, or revocation)."},
	{MetricVerifyUnavailable, "authcore_verify_unavailable_total", "Verifications refused because revocation state was unreachable."},
	{MetricRotateSuccess, "authcore_rotate_success_total", "Refresh rotations completed."},
	{MetricRotateFailure, "authcore_rotate_failure_total", "Refresh rotations rejected."},
	{MetricRotateReuseDetected, "authcore_rotate_reuse_detected_total", "Rotations of an already-consumed refresh token."},
	{MetricRotateRateLimited, "authcore_rotate_rate_limited_total", "Rotations rejected by the throttle."},
	{MetricLogout, "authcore_logout_total", "Single-token logouts."},
	{MetricRevokeAll, "authcore_revoke_all_total", "Subject-wide revocations."},
}

// MetricDefinitions returns the exportable counter catalog.
func MetricDefinitions() []MetricDefinition {
	defs := make([]MetricDefinition, len(metricDefs))
	copy(defs, metricDefs[:])
	return defs
}

// Metrics is a fixed set of lock-free counters.
type Metrics struct {
	counters [metricCount]atomic.Uint64
}

func newMetrics() *Metrics {
	return &Metrics{}
}

// Inc increments a counter. Unknown IDs are ignored.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || id >= metricCount {
		return
	}
	m.counters[id].Add(1)
}

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	At       time.Time
	Counters map[MetricID]uint64
}

// Snapshot copies the current counter values.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{
		At:       time.Now(),
		Counters: make(map[MetricID]uint64, metricCount),
	}
	if m == nil {
		return snap
	}
	for id := MetricID(0); id < metricCount; id++ {
		snap.Counters[id] = m.counters[id].Load()
	}
	return snap
}
