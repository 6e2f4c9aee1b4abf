// Package lookup implements the product database client.
//
// It speaks the Open Food Facts HTTP API: free-text search plus direct
// barcode lookups. Callers are expected to wrap the client with the
// cache and retry layers; the client itself performs exactly one
// request per call.
package lookup
