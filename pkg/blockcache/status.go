package blockcache

import "github.com/marmos91/blkcache/pkg/regionmap"

// CacheStatus is a read-only snapshot of the engine's state, used by
// the CLI "status" subcommand and by the Prometheus gauges in
// pkg/metrics.
type CacheStatus struct {
	DeviceSize      int64
	BlockSize       int64
	BlockSizeSource string
	CachedBytes     int64
	WorstStatus     regionmap.Status
	FirstUntried    int64
}

// Status returns a snapshot of the cache's current region coverage.
func (c *Cache) Status() (CacheStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	worst, err := c.regions.WorstStatus()
	if err != nil {
		return CacheStatus{}, err
	}
	firstUntried, err := c.regions.FirstUntried()
	if err != nil {
		return CacheStatus{}, err
	}

	var cached int64
	for _, r := range c.regions.Ranges() {
		if regionmap.Cached(r.Status) {
			cached += r.Length
		}
	}
	if c.metrics != nil {
		c.metrics.RecordCachedBytes(cached)
	}

	return CacheStatus{
		DeviceSize:      c.deviceSize,
		BlockSize:       c.blockSize,
		BlockSizeSource: c.blockSizeSource,
		CachedBytes:     cached,
		WorstStatus:     worst,
		FirstUntried:    firstUntried,
	}, nil
}
