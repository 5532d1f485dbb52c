// Package metrics collects Prometheus metrics for upstream fetches, store
// writes, background tasks and the HTTP API.
package metrics

import "time"

// Metrics defines the interface for collecting application metrics.
// Components depend on this rather than on Prometheus directly.
type Metrics interface {
	// ObserveUpstream records one upstream request. outcome is "ok",
	// "http_error", "transport_error" or "decode_error".
	ObserveUpstream(endpoint, outcome string, duration time.Duration)
	IncUpstreamRetries(endpoint string)
	// AddStoreWrites records upserts by collection and result ("created",
	// "updated", "failed").
	AddStoreWrites(collection, result string, n int)
	ObserveTask(name, state string, duration time.Duration)
	ObserveHTTP(route, method string, status int, duration time.Duration)
}

// Nop discards every observation.
type Nop struct{}

func (Nop) ObserveUpstream(string, string, time.Duration)  {}
func (Nop) IncUpstreamRetries(string)                      {}
func (Nop) AddStoreWrites(string, string, int)             {}
func (Nop) ObserveTask(string, string, time.Duration)      {}
func (Nop) ObserveHTTP(string, string, int, time.Duration) {}
