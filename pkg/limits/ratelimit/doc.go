// Package ratelimit provides per-user sliding-window rate limiting with
// independent budgets per operation category.
//
// # Overview
//
// A Window tracks request timestamps per user and admits at most capacity
// requests inside any trailing window interval. This is a strict sliding
// window recomputed on every check, not a fixed-bucket approximation: the
// (capacity+1)-th request inside the interval is always denied until the
// oldest admitted request ages out.
//
// A Limiter routes checks to one independently configured Window per
// operation category (general, search, image_analysis, barcode), so a
// burst of expensive image analyses cannot starve cheap text searches and
// vice versa. Unrecognized categories fall back to the general window.
//
// # Usage
//
//	limiter := ratelimit.NewLimiter(ratelimit.DefaultCategories())
//
//	allowed, retryAfter := limiter.Allow(userID, "search")
//	if !allowed {
//	    // tell the user to retry after retryAfter
//	}
//
// Denials are ordinary return values with a concrete wait time, never
// errors.
//
// # Cleanup
//
// Per-user state is created lazily on first use and dropped by Cleanup
// once a user has no timestamps left inside the window. Cleanup must be
// invoked periodically by an external scheduler; it is not self-triggering.
package ratelimit
