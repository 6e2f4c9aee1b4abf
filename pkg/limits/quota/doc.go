// Package quota tracks per-user daily and monthly usage ceilings for
// scarce operations.
//
// Quotas are a longer-horizon complement to short-horizon rate limiting:
// the rate limiter smooths bursts, the quota tracker caps total
// consumption of expensive operations (image analysis, barcode scans,
// searches) per day and per month.
//
// The tracker has no wall-clock awareness of period boundaries. Counters
// grow monotonically until an external scheduler calls ResetDaily or
// ResetMonthly; detecting midnight and month rollover is entirely the
// caller's responsibility.
//
// Callers must charge quota only after the gated operation actually ran,
// so denied or failed attempts never consume it:
//
//	if allowed, reason := tracker.Check(user, "image_analysis"); !allowed {
//	    return reason
//	}
//	result, err := analyze(ctx, image)
//	if err != nil {
//	    return err
//	}
//	tracker.Use(user, "image_analysis")
package quota
