package metrics

import (
	"time"

	"github.com/marmos91/blkcache/pkg/blockcache"
)

// NewCacheMetrics returns a Prometheus-backed blockcache.CacheMetrics,
// or nil when metrics are disabled (Enable was never called). A nil
// CacheMetrics is safe to pass straight into blockcache.Open — every
// helper below, and blockcache itself, treats it as zero overhead.
func NewCacheMetrics() blockcache.CacheMetrics {
	if !IsEnabled() {
		return nil
	}

	// Import prometheus package to access implementation
	// This breaks the import cycle by using interface return type
	return newPrometheusCacheMetrics()
}

// newPrometheusCacheMetrics is implemented in pkg/metrics/prometheus/cache.go
// This indirection avoids import cycles while keeping the API clean
var newPrometheusCacheMetrics func() blockcache.CacheMetrics

// RegisterCacheMetricsConstructor registers the Prometheus cache metrics constructor.
// Called by pkg/metrics/prometheus/cache.go during package initialization.
func RegisterCacheMetricsConstructor(constructor func() blockcache.CacheMetrics) {
	newPrometheusCacheMetrics = constructor
}

// ObserveReadBlock records one ReadBlock call: whether it was served
// from the cache file and how long it took.
func ObserveReadBlock(m blockcache.CacheMetrics, hit bool, duration time.Duration) {
	if m != nil {
		m.ObserveReadBlock(hit, duration)
	}
}

// ObserveDeviceError records a failed device read.
func ObserveDeviceError(m blockcache.CacheMetrics) {
	if m != nil {
		m.ObserveDeviceError()
	}
}

// RecordCachedBytes records the current count of cached bytes.
func RecordCachedBytes(m blockcache.CacheMetrics, bytes int64) {
	if m != nil {
		m.RecordCachedBytes(bytes)
	}
}
