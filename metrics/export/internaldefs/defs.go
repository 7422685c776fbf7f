package internaldefs

import (
	goShield "github.com/MrEthical07/goShield"
)

// CounterDef maps one engine counter to its exported name.
type CounterDef struct {
	ID   goShield.MetricID
	Name string
	Help string
}

// HistogramDef maps one engine histogram to its exported name.
type HistogramDef struct {
	ID   goShield.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in a stable order.
var CounterDefs = []CounterDef{
	{ID: goShield.MetricSessionCreated, Name: "goshield_session_created_total", Help: "Sessions issued."},
	{ID: goShield.MetricRefreshSuccess, Name: "goshield_refresh_success_total", Help: "Successful refresh rotations."},
	{ID: goShield.MetricRefreshFailure, Name: "goshield_refresh_failure_total", Help: "Refresh attempts with an unknown, reused or expired token."},
	{ID: goShield.MetricSessionRevoked, Name: "goshield_session_revoked_total", Help: "Sessions revoked on logout."},
	{ID: goShield.MetricSessionSwept, Name: "goshield_session_swept_total", Help: "Expired sessions removed by the sweeper."},
	{ID: goShield.MetricLoginSuccess, Name: "goshield_login_success_total", Help: "Successful login attempts."},
	{ID: goShield.MetricLoginFailure, Name: "goshield_login_failure_total", Help: "Login attempts rejected for bad credentials."},
	{ID: goShield.MetricLoginRateLimited, Name: "goshield_login_rate_limited_total", Help: "Login attempts rejected by the attempt window."},
	{ID: goShield.MetricPasswordUpgraded, Name: "goshield_password_upgraded_total", Help: "Stored password hashes upgraded on login."},
	{ID: goShield.MetricAdmissionAllowed, Name: "goshield_admission_allowed_total", Help: "Requests admitted by the edge limiter."},
	{ID: goShield.MetricAdmissionRejected, Name: "goshield_admission_rejected_total", Help: "Requests rejected by the edge limiter."},
	{ID: goShield.MetricLimiterUnavailable, Name: "goshield_limiter_unavailable_total", Help: "Admissions that failed because the limiter backend was unavailable."},
	{ID: goShield.MetricCSRFIssued, Name: "goshield_csrf_issued_total", Help: "CSRF tokens issued."},
	{ID: goShield.MetricAccessValid, Name: "goshield_access_valid_total", Help: "Access tokens accepted."},
	{ID: goShield.MetricAccessRejected, Name: "goshield_access_rejected_total", Help: "Access tokens rejected."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: goShield.MetricValidateLatency, Name: "goshield_validate_latency_seconds", Help: "Access token validation latency."},
}

// HistogramUpperBounds are the finite bucket bounds in seconds. The eighth bucket is +Inf.
var HistogramUpperBounds = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5}

// HistogramBoundSuffix names each bucket, +Inf included, for exporters without native
// histogram bucket labels.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// Counter for audit events lost to backpressure.
const (
	AuditDroppedName = "goshield_audit_dropped_total"
	AuditDroppedHelp = "Dropped audit events due to dispatcher backpressure."
)

// NormalizeBuckets copies raw into a fixed eight-bucket array, zero-filling.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets does not mutate shared global state and can be used concurrently.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
