// Package http implements the RPC transport over HTTP.
//
// The server accepts POST /{namespace} with a serialized request as body and answers
// with the serialized response. GET /metrics exposes the process metrics in Prometheus
// text format (VictoriaMetrics/metrics), including request counters, request durations
// and the per namespace gauges registered by the RPC server.
//
// The client distributes requests round-robin over all configured endpoints. A failed
// request is retried on the next endpoint up to the configured retry count.
//
// Thread Safety:
//
//	The client transport is safe for concurrent use after Connect. The server
//	transport calls the registered handler from many goroutines at once.
package http
