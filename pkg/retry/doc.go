// Package retry provides a uniform retry wrapper with exponential backoff
// for fallible remote operations.
//
// # Overview
//
// Every remote call in the system (persistence, nutrition lookup, image
// analysis) goes through the same Executor so that each call site gets an
// identical "succeeds or fails after N attempts with growing backoff"
// contract instead of bespoke retry code per call site.
//
// # Usage
//
//	ex := retry.New(3, time.Second)
//
//	product, err := retry.Do(ctx, ex, "lookup.barcode", func(ctx context.Context) (*Product, error) {
//	    return client.ProductByBarcode(ctx, code)
//	})
//
// The executor does not discriminate between transient and permanent
// errors: any failure triggers the same backoff sequence. After the final
// attempt the last error is returned to the caller unchanged.
package retry
