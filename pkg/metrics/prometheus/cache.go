package prometheus

import (
	"time"

	"github.com/marmos91/blkcache/pkg/blockcache"
	"github.com/marmos91/blkcache/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func init() {
	metrics.RegisterCacheMetricsConstructor(NewCacheMetrics)
}

// cacheMetrics is the Prometheus implementation of blockcache.CacheMetrics.
type cacheMetrics struct {
	readOperations *prometheus.CounterVec
	readDuration   *prometheus.HistogramVec
	deviceErrors   prometheus.Counter
	cachedBytes    prometheus.Gauge
}

// NewCacheMetrics creates a new Prometheus-backed CacheMetrics instance.
//
// Returns nil if metrics are not enabled (metrics.Enable was never called).
func NewCacheMetrics() blockcache.CacheMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &cacheMetrics{
		readOperations: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "blkcache_read_block_operations_total",
				Help: "Total number of ReadBlock calls by outcome",
			},
			[]string{"result"}, // "hit", "miss"
		),
		readDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "blkcache_read_block_duration_milliseconds",
				Help: "Duration of ReadBlock calls in milliseconds, by outcome",
				Buckets: []float64{
					0.1,   // 100us - cache hit
					0.5,   // 500us
					1,     // 1ms
					5,     // 5ms
					20,    // 20ms - typical SSD seek
					100,   // 100ms - typical spinning-disk seek
					500,   // 500ms
					2000,  // 2s - optical media
					10000, // 10s - failing/retrying media
				},
			},
			[]string{"result"},
		),
		deviceErrors: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "blkcache_device_errors_total",
				Help: "Total number of failed device reads",
			},
		),
		cachedBytes: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "blkcache_cached_bytes",
				Help: "Bytes of the device currently covered by a cached (non-untried, non-errored) region",
			},
		),
	}
}

func (m *cacheMetrics) ObserveReadBlock(hit bool, duration time.Duration) {
	if m == nil {
		return
	}

	result := "miss"
	if hit {
		result = "hit"
	}
	m.readOperations.WithLabelValues(result).Inc()
	m.readDuration.WithLabelValues(result).Observe(duration.Seconds() * 1000)
}

func (m *cacheMetrics) ObserveDeviceError() {
	if m == nil {
		return
	}
	m.deviceErrors.Inc()
}

func (m *cacheMetrics) RecordCachedBytes(bytes int64) {
	if m == nil {
		return
	}
	m.cachedBytes.Set(float64(bytes))
}
