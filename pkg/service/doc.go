// Package service composes the resilience layers into user-facing
// operations.
//
// # Overview
//
// Every operation runs the same pipeline: a request ID is minted, the
// rate limiter and quota tracker are consulted, and only then does the
// memoized, retry-wrapped backend call run. Denials are ordinary
// results, not errors; an operation returns a non-nil Denial when the
// caller should back off and a non-nil error only when the backend
// genuinely failed.
//
// # Usage
//
//	svc, err := service.New(service.Config{
//		Limits: limits.NewManager(limits.Config{}),
//		Finder: client,
//	})
//	if err != nil {
//		return err
//	}
//
//	products, denial, err := svc.SearchProducts(ctx, userID, "greek yogurt")
//	if denial != nil {
//		// tell the user to retry after denial.RetryAfter
//	}
package service
