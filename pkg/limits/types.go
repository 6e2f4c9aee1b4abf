package limits

import "time"

// CheckResult contains the decision and metadata from an admission check.
type CheckResult struct {
	// Allowed indicates if the request is permitted.
	Allowed bool

	// Reason explains the rejection (if Allowed=false).
	Reason string

	// Category is the rate-limit category the check was dispatched to,
	// or the quota operation name for quota checks.
	Category string

	// Remaining is the number of admissions left in the current window,
	// or the daily units left for quota checks (-1 when unlimited).
	Remaining int

	// RetryAfter specifies how long to wait before retrying (rate-limit
	// denials only; zero for quota denials, which clear on reset).
	RetryAfter time.Duration
}
