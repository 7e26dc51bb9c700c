package blockcache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"syscall"
	"time"

	"github.com/marmos91/blkcache/internal/logger"
	"github.com/marmos91/blkcache/pkg/blkerr"
	"github.com/marmos91/blkcache/pkg/blockio"
	"github.com/marmos91/blkcache/pkg/regionmap"
)

// ReadBlock returns the contents of block n, probing the cache file
// first and falling through to the device on a miss. A successful
// device read is written back to the cache and the block's range is
// marked OK in the region map; a device failure marks it ERROR and
// propagates the error — it never substitutes zero bytes for a block
// that failed to read.
func (c *Cache) ReadBlock(ctx context.Context, n int64) ([]byte, error) {
	start := time.Now()
	off := n * c.blockSize
	length := c.blockSize
	if off+length > c.deviceSize {
		length = c.deviceSize - off
	}
	if length <= 0 {
		return nil, fmt.Errorf("%w: block %d is past device size %d", blkerr.ErrOutOfRange, n, c.deviceSize)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if hit, data := c.probeCache(off, length); hit {
		c.observeReadBlock(true, start)
		return data, nil
	}

	data := make([]byte, length)
	read, err := c.device.ReadAt(data, off)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, c.fail(ctx, off, off+length, blkerr.NewIOError(int(syscall.EIO), err.Error()))
	}
	if read == 0 {
		return nil, c.fail(ctx, off, off+length, blkerr.NewIOError(int(syscall.EIO), "short read"))
	}
	if int64(read) < length && off+int64(read) < c.deviceSize {
		return nil, c.fail(ctx, off, off+length, blkerr.NewIOError(int(syscall.EIO), fmt.Sprintf("short read (%d < %d)", read, length)))
	}
	data = data[:read]

	if _, err := c.cacheFile.WriteAt(data, off); err != nil {
		return nil, c.fail(ctx, off, off+int64(read), blkerr.NewIOError(int(syscall.EIO), fmt.Sprintf("cache write: %v", err)))
	}

	if err := c.regions.Set(off, off+int64(read), regionmap.StatusOK); err != nil {
		logger.WarnCtx(ctx, "failed to update region map after successful read", logger.Err(err))
	}

	c.observeReadBlock(false, start)
	return data, nil
}

// probeCache returns (true, data) if the cache file already holds
// this block, using the configured zero-check strategy to tell a
// genuine hit from an unwritten hole.
func (c *Cache) probeCache(off, length int64) (bool, []byte) {
	data := make([]byte, length)
	read, err := c.cacheFile.ReadAt(data, off)
	if err != nil || read == 0 {
		return false, nil
	}
	data = data[:read]

	switch c.zeroMode {
	case ZeroCheckRegionMap:
		if regionmap.Cached(c.regions.At(off)) {
			return true, data
		}
		return false, nil
	default:
		if blockio.IsAllZero(data) {
			return false, nil
		}
		return true, data
	}
}

// fail marks [start, end) ERROR in the region map and returns err,
// recording the device-error metric. The RegionMap update is
// best-effort: a failure there is logged, not propagated, since the
// I/O error is already the operative failure to report.
func (c *Cache) fail(ctx context.Context, start, end int64, err error) error {
	if setErr := c.regions.Set(start, end, regionmap.StatusError); setErr != nil {
		logger.WarnCtx(ctx, "failed to mark region map after device error", logger.Err(setErr))
	}
	if c.metrics != nil {
		c.metrics.ObserveDeviceError()
	}
	logger.WarnCtx(ctx, "device read failed", logger.Offset(start), logger.Err(err))
	return err
}

func (c *Cache) observeReadBlock(hit bool, start time.Time) {
	if c.metrics != nil {
		c.metrics.ObserveReadBlock(hit, time.Since(start))
	}
}

// Pread reads count bytes starting at offset, assembling them from
// every block in [first, last]. If any block fails, the whole read
// fails with that error — it deliberately does not substitute zero
// bytes for a failed block, which would silently and permanently
// corrupt recovered data.
func (c *Cache) Pread(ctx context.Context, p []byte, offset int64) (int, error) {
	count := int64(len(p))
	if count == 0 {
		return 0, nil
	}
	if offset < 0 || offset >= c.deviceSize {
		return 0, fmt.Errorf("%w: offset %d out of [0,%d)", blkerr.ErrOutOfRange, offset, c.deviceSize)
	}
	if offset+count > c.deviceSize {
		count = c.deviceSize - offset
	}

	first := offset / c.blockSize
	last := (offset + count - 1) / c.blockSize

	assembled := make([]byte, 0, (last-first+1)*c.blockSize)
	for n := first; n <= last; n++ {
		block, err := c.ReadBlock(ctx, n)
		if err != nil {
			return 0, err
		}
		assembled = append(assembled, block...)
	}

	start := offset - first*c.blockSize
	end := start + count
	return copy(p, assembled[start:end]), nil
}
