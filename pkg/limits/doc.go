// Package limits coordinates rate limiting and quota tracking for the
// request pipeline.
//
// # Overview
//
// The package combines two admission mechanisms with different horizons:
//
//   - ratelimit: per-user sliding windows, one per operation category,
//     smoothing bursts over seconds to minutes
//   - quota: per-user daily and monthly ceilings on scarce operations
//
// The Manager is the primary interface. It is constructed explicitly by
// the application root and handed to whatever needs it; there is no
// package-level singleton, so tests get fresh isolated instances.
//
// # Usage
//
//	manager := limits.NewManager(limits.Config{
//	    Categories: ratelimit.DefaultCategories(),
//	    Quotas:     quota.DefaultLimits(),
//	})
//
//	if result := manager.CheckRequest(userID, "search"); !result.Allowed {
//	    // surface result.RetryAfter to the caller
//	}
//	if result := manager.CheckQuota(userID, quota.OpSearches); !result.Allowed {
//	    // surface result.Reason
//	}
//	// ... perform the operation ...
//	manager.RecordUsage(userID, quota.OpSearches)
//
// Expected, frequent conditions (limit reached, quota exhausted) are
// communicated through CheckResult values, never through errors; callers
// are not forced into error handling for routine flow control.
package limits
