// Package blockcache implements the read-through block cache engine:
// positioned reads against a source device, backed by a sparse cache
// file and a persisted, ddrescue-compatible region status map.
package blockcache

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/marmos91/blkcache/internal/bytesize"
	"github.com/marmos91/blkcache/internal/logger"
	"github.com/marmos91/blkcache/pkg/blkerr"
	"github.com/marmos91/blkcache/pkg/blockio"
	"github.com/marmos91/blkcache/pkg/mapfile"
	"github.com/marmos91/blkcache/pkg/regionmap"
)

// DefaultBlockSize is used when no explicit size, device probe, or
// saved mapfile config supplies one — chosen for optical media, per
// the original engine's default.
const DefaultBlockSize = 2048

// FormatVersion is recorded in every mapfile this engine writes.
const FormatVersion = "1.0"

// Block-size source tags recorded in the mapfile config, matching
// determine_block_size's three outcomes.
const (
	BlockSizeManual  = "manual"
	BlockSizeAuto    = "auto"
	BlockSizeDefault = "default"
)

// ZeroCheckMode selects how ReadBlock decides whether a cache-file
// read was a genuine hit or an unwritten hole.
type ZeroCheckMode int

const (
	// ZeroHeuristic treats an all-zero cache read as a miss, exactly
	// as spec §4.3 describes: the sparse file can't distinguish a
	// hole from genuinely zero data.
	ZeroHeuristic ZeroCheckMode = iota

	// ZeroCheckRegionMap instead asks whether the RegionMap already
	// considers the block CACHED, the alternative spec §9 invites
	// implementers to adopt in place of the heuristic.
	ZeroCheckRegionMap
)

// OpenOptions configures Open.
type OpenOptions struct {
	// DevicePath is the source device or disk image to read through.
	DevicePath string

	// CachePath is the sparse backing file. Its mapfile lives at
	// CachePath + ".log".
	CachePath string

	// BlockSize, if non-zero, takes precedence over every other block
	// size source (spec §9: block_size > block > probe > default).
	BlockSize int64

	// Prober supplies device size and, when BlockSize is unset, the
	// device's native sector size for auto block-size detection. Must
	// not be nil.
	Prober blockio.Prober

	// Device overrides the positioned reader used for device reads.
	// Tests supply an in-memory fake here; production callers leave
	// this nil and Open builds a blockio.Device from DevicePath.
	Device io.ReaderAt

	// Metrics is optional; a nil Metrics disables all recording.
	Metrics CacheMetrics

	// ZeroMode selects the cache-hit detection strategy for
	// ReadBlock. Defaults to ZeroHeuristic (the zero value).
	ZeroMode ZeroCheckMode
}

// Cache is the read-through block cache engine.
type Cache struct {
	device    io.ReaderAt
	cacheFile *blockio.CacheFile
	mapPath   string

	blockSize       int64
	blockSizeSource string
	deviceSize      int64
	rotational      bool
	zeroMode        ZeroCheckMode

	mu      sync.Mutex
	regions *regionmap.Map
	doc     *mapfile.Document
	metrics CacheMetrics
}

// Open constructs or resumes a Cache: probes the device, creates or
// extends the sparse cache file, resolves the block size, and loads
// (or initializes) the region status map.
func Open(ctx context.Context, opts OpenOptions) (*Cache, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts.DevicePath == "" || opts.CachePath == "" {
		return nil, fmt.Errorf("%w: device and cache paths are required", blkerr.ErrConfig)
	}
	if opts.Prober == nil {
		return nil, fmt.Errorf("%w: a device prober is required", blkerr.ErrConfig)
	}

	size, sectorSize, rotational, err := opts.Prober.Probe(opts.DevicePath)
	if err != nil {
		return nil, blkerr.NewIOError(0, fmt.Sprintf("probe %s: %v", opts.DevicePath, err))
	}

	device := opts.Device
	if device == nil {
		device = blockio.NewDevice(opts.DevicePath)
	}

	c := &Cache{
		device:    device,
		cacheFile: blockio.NewCacheFile(opts.CachePath),
		mapPath:   opts.CachePath + ".log",
		zeroMode:  opts.ZeroMode,
		metrics:   opts.Metrics,

		deviceSize: size,
		rotational: rotational,
	}

	if err := c.cacheFile.EnsureSize(size); err != nil {
		return nil, fmt.Errorf("create cache file: %w", err)
	}

	doc, err := loadOrInitMapfile(c.mapPath, size)
	if err != nil {
		return nil, err
	}
	c.doc = doc
	c.regions = doc.Regions

	c.resolveBlockSize(opts.BlockSize, sectorSize)

	doc.Config["block_size"] = fmt.Sprintf("%d", c.blockSize)
	doc.Config["block_size_source"] = c.blockSizeSource
	doc.Config["device_size"] = fmt.Sprintf("%d", size)
	doc.Config["block_count"] = fmt.Sprintf("%d", bytesize.ByteSize(c.blockSize).BlockCount(size))
	if _, ok := doc.Config["format_version"]; !ok {
		doc.Config["format_version"] = FormatVersion
	}

	logger.InfoCtx(ctx, "blockcache opened",
		logger.Device(opts.DevicePath),
		logger.CachePath(opts.CachePath),
		logger.BlockSize(c.blockSize),
	)

	return c, nil
}

func loadOrInitMapfile(path string, size int64) (*mapfile.Document, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return &mapfile.Document{
			Config:      make(map[string]string),
			Regions:     regionmap.New(size),
			CurrentPass: 1,
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open mapfile: %w", err)
	}
	defer f.Close()
	return mapfile.Load(f, size)
}

// resolveBlockSize applies the precedence explicit > probed sector
// size > saved mapfile config > default, recording which source won.
func (c *Cache) resolveBlockSize(explicit int64, probedSectorSize int64) {
	switch {
	case explicit > 0:
		c.blockSize = explicit
		c.blockSizeSource = BlockSizeManual
	case probedSectorSize > 0:
		c.blockSize = probedSectorSize
		c.blockSizeSource = BlockSizeAuto
	case c.doc.Config["block_size"] != "":
		// a previously saved block size persists when this run's probe
		// returned nothing usable
		if n, ok := parsePositiveInt(c.doc.Config["block_size"]); ok {
			c.blockSize = n
			c.blockSizeSource = c.doc.Config["block_size_source"]
			if c.blockSizeSource == "" {
				c.blockSizeSource = BlockSizeManual
			}
			return
		}
		c.blockSize = DefaultBlockSize
		c.blockSizeSource = BlockSizeDefault
	default:
		c.blockSize = DefaultBlockSize
		c.blockSizeSource = BlockSizeDefault
	}
}

func parsePositiveInt(s string) (int64, bool) {
	var n int64
	_, err := fmt.Sscanf(s, "%d", &n)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// BlockSize returns the resolved block size in bytes.
func (c *Cache) BlockSize() int64 { return c.blockSize }

// DeviceSize returns the probed device size in bytes.
func (c *Cache) DeviceSize() int64 { return c.deviceSize }

// IsRotational reports whether the probed device spins.
func (c *Cache) IsRotational() bool { return c.rotational }

// Close persists the region map to the mapfile and fsyncs both the
// cache file and the mapfile.
func (c *Cache) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.doc.SyncFromRegions(); err != nil {
		return err
	}

	f, err := os.Create(c.mapPath)
	if err != nil {
		return fmt.Errorf("create mapfile: %w", err)
	}
	saveErr := mapfile.Save(f, c.doc)
	syncErr := f.Sync()
	closeErr := f.Close()
	if saveErr != nil {
		return fmt.Errorf("save mapfile: %w", saveErr)
	}
	if syncErr != nil {
		return fmt.Errorf("sync mapfile: %w", syncErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close mapfile: %w", closeErr)
	}

	if err := c.cacheFile.Sync(); err != nil {
		return fmt.Errorf("sync cache file: %w", err)
	}

	logger.InfoCtx(ctx, "blockcache closed", logger.MapPath(c.mapPath))
	return nil
}
