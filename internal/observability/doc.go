// Package observability holds the Prometheus metrics and gin middleware used
// by the bridge server.
package observability
