// Package plugin adapts blockcache.Cache to the config/open/pread/
// close/capability-query shape an NBD host expects, independent of
// any particular host's C ABI (that binding lives in pkg/nbdkit).
package plugin

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/marmos91/blkcache/internal/logger"
	"github.com/marmos91/blkcache/pkg/blkerr"
	"github.com/marmos91/blkcache/pkg/blockcache"
	"github.com/marmos91/blkcache/pkg/blockio"
	"github.com/marmos91/blkcache/pkg/handle"
)

// Adapter accumulates config(key, value) calls, builds a blockcache.Cache
// on ConfigComplete, and dispatches the host's open/get_size/pread/
// close/capability calls against it through a handle.Table.
type Adapter struct {
	devicePath string
	cachePath  string
	metadata   map[string]string

	// blockSizeByKey holds a parsed value per config key that can
	// supply a block size, keyed by the key name itself, so that
	// precedence is resolved once in ConfigComplete regardless of the
	// order the host happened to call Config in.
	blockSizeByKey map[string]int64

	prober  blockio.Prober
	metrics blockcache.CacheMetrics

	engine *blockcache.Cache
	table  *handle.Table
}

// NewAdapter returns an Adapter ready to receive Config calls. prober
// is injected so callers (and tests) can control device probing;
// production wiring passes blockio.DefaultProber().
func NewAdapter(prober blockio.Prober) *Adapter {
	return &Adapter{
		metadata:       make(map[string]string),
		blockSizeByKey: make(map[string]int64),
		prober:         prober,
		table:          handle.NewTable(),
	}
}

// WithMetrics attaches CacheMetrics to the engine ConfigComplete will
// construct. Optional; a nil value disables metrics.
func (a *Adapter) WithMetrics(m blockcache.CacheMetrics) *Adapter {
	a.metrics = m
	return a
}

// Config stores one key=value pair from the host's option parsing.
// Unknown keys are recorded into metadata rather than rejected, per
// spec §4.4.
func (a *Adapter) Config(key, value string) error {
	switch key {
	case "device":
		a.devicePath = value
	case "cache":
		a.cachePath = value
	case "block_size", "block", "sector":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: invalid block size %q: %v", blkerr.ErrConfig, value, err)
		}
		a.blockSizeByKey[key] = n
	case "metadata":
		for _, pair := range strings.Split(value, ",") {
			k, v, ok := strings.Cut(pair, "=")
			if ok {
				a.metadata[strings.TrimSpace(k)] = strings.TrimSpace(v)
			}
		}
	default:
		a.metadata[key] = value
	}
	return nil
}

// blockSizeKeyPrecedence lists the config keys that can supply an
// explicit block size, in order of precedence (spec §9: block_size >
// block > probe > default — "sector" is the lowest-priority alias of
// the two). Resolved once here rather than by overwrite-in-call-order,
// so the result never depends on the order the host called Config in.
var blockSizeKeyPrecedence = []string{"block_size", "block", "sector"}

// resolvedBlockSize returns the explicit block size implied by every
// Config call seen so far, applying blockSizeKeyPrecedence.
func (a *Adapter) resolvedBlockSize() int64 {
	for _, key := range blockSizeKeyPrecedence {
		if n, ok := a.blockSizeByKey[key]; ok {
			return n
		}
	}
	return 0
}

// ConfigComplete validates that device and cache were supplied and
// opens the underlying blockcache.Cache.
func (a *Adapter) ConfigComplete(ctx context.Context) error {
	if a.devicePath == "" || a.cachePath == "" {
		return fmt.Errorf("%w: device= and cache= are required", blkerr.ErrConfig)
	}

	engine, err := blockcache.Open(ctx, blockcache.OpenOptions{
		DevicePath: a.devicePath,
		CachePath:  a.cachePath,
		BlockSize:  a.resolvedBlockSize(),
		Prober:     a.prober,
		Metrics:    a.metrics,
	})
	if err != nil {
		return err
	}
	a.engine = engine
	return nil
}

// Open registers a new handle against the configured engine. readonly
// is accepted for interface symmetry with a writable cache but is
// otherwise ignored: this engine is always read-only.
func (a *Adapter) Open(readonly bool) (int64, error) {
	if a.engine == nil {
		return 0, fmt.Errorf("%w: config_complete was not called", blkerr.ErrConfig)
	}
	return a.table.Open(a.engine), nil
}

// GetSize returns the device's total capacity for handle h.
func (a *Adapter) GetSize(h int64) (int64, error) {
	engine, err := a.table.Get(h)
	if err != nil {
		return 0, err
	}
	return engine.DeviceSize(), nil
}

// Pread reads count bytes at offset through handle h.
func (a *Adapter) Pread(ctx context.Context, h int64, count int, offset int64) ([]byte, error) {
	engine, err := a.table.Get(h)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, count)
	n, err := engine.Pread(ctx, buf, offset)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

// Close releases handle h.
func (a *Adapter) Close(ctx context.Context, h int64) {
	a.table.Close(ctx, h)
}

// IsRotational reports whether the configured device spins, per
// handle h's engine.
func (a *Adapter) IsRotational(h int64) bool {
	engine, err := a.table.Get(h)
	if err != nil {
		logger.Warn("is_rotational queried for unknown handle", "handle", h)
		return false
	}
	return engine.IsRotational()
}

// Fixed capability answers for this read-only, single-reader engine
// (spec §4.4). Every write-capable or multi-connection capability is
// false; only is_rotational reflects the probed device.
func (a *Adapter) CanWrite(int64) bool     { return false }
func (a *Adapter) CanFlush(int64) bool     { return false }
func (a *Adapter) CanTrim(int64) bool      { return false }
func (a *Adapter) CanZero(int64) bool      { return false }
func (a *Adapter) CanFastZero(int64) bool  { return false }
func (a *Adapter) CanExtents(int64) bool   { return false }
func (a *Adapter) CanMultiConn(int64) bool { return false }
