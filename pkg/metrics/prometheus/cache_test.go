package prometheus

import (
	"testing"
	"time"

	"github.com/marmos91/blkcache/pkg/metrics"
)

func TestNewCacheMetricsRecordsObservations(t *testing.T) {
	metrics.Enable()
	defer func() {
		// leave the package-level registry clean for other tests.
		metrics.Enable()
	}()

	m := NewCacheMetrics()
	if m == nil {
		t.Fatal("expected non-nil CacheMetrics once enabled")
	}

	m.ObserveReadBlock(true, 5*time.Millisecond)
	m.ObserveReadBlock(false, 50*time.Millisecond)
	m.ObserveDeviceError()
	m.RecordCachedBytes(4096)
}

func TestMetricsConstructorIsRegisteredThroughPackageInit(t *testing.T) {
	metrics.Enable()
	if got := metrics.NewCacheMetrics(); got == nil {
		t.Fatal("pkg/metrics.NewCacheMetrics returned nil; init() registration did not run")
	}
}
