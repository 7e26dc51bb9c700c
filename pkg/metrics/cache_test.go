package metrics

import "testing"

func TestNewCacheMetricsNilWhenDisabled(t *testing.T) {
	mu.Lock()
	enabled = false
	registry = nil
	mu.Unlock()

	if m := NewCacheMetrics(); m != nil {
		t.Fatalf("expected nil CacheMetrics when disabled, got %v", m)
	}
}

func TestObserveHelpersAreNilSafe(t *testing.T) {
	// None of these should panic against a nil CacheMetrics, the
	// state every blockcache.Open call is in when metrics are off.
	ObserveReadBlock(nil, true, 0)
	ObserveDeviceError(nil)
	RecordCachedBytes(nil, 0)
}
