package blockcache

import "time"

// CacheMetrics provides observability for block-cache operations.
// Optional: Open works fine with a nil CacheMetrics, skipping every
// recording call below at zero cost.
type CacheMetrics interface {
	// ObserveReadBlock records one read_block call, whether it was a
	// cache hit or required a device read.
	ObserveReadBlock(hit bool, duration time.Duration)

	// ObserveDeviceError records a read_block call that failed against
	// the device.
	ObserveDeviceError()

	// RecordCachedBytes records the current count of bytes the
	// RegionMap considers CACHED.
	RecordCachedBytes(bytes int64)
}
