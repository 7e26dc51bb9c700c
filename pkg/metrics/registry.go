// Package metrics provides a nil-safe indirection between blockcache's
// CacheMetrics interface and its Prometheus implementation, so
// pkg/blockcache never imports prometheus directly.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	mu       sync.Mutex
	enabled  bool
	registry *prometheus.Registry
)

// Enable turns metrics collection on, creating a fresh registry. Call
// this once at startup before constructing any metrics-backed
// component.
func Enable() *prometheus.Registry {
	mu.Lock()
	defer mu.Unlock()

	enabled = true
	registry = prometheus.NewRegistry()
	return registry
}

// IsEnabled reports whether Enable has been called.
func IsEnabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// GetRegistry returns the active registry, or nil if metrics are disabled.
func GetRegistry() *prometheus.Registry {
	mu.Lock()
	defer mu.Unlock()
	return registry
}
