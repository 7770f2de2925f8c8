// Package datura is a Go client for the Datura search/aggregation API.
// It is a thin binding: requests are forwarded over HTTPS and the service's
// JSON payloads are returned opaquely as Result values.
//
// The streaming AI search returns a Stream, a pull-based iterator over the
// chunks the service emits; everything else is a single request/response
// round trip. The client performs no retries and keeps no state beyond its
// immutable configuration.
package datura
