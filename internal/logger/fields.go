package logger

import "log/slog"

// Standard field keys for structured logging across the engine, codec,
// and plugin adapter layers. Use these consistently so log aggregation
// and querying works across the whole module.
const (
	KeyTraceID = "trace_id" // correlation ID, if tracing is wired in

	KeyDevice    = "device"     // device path
	KeyCachePath = "cache_path" // backing cache file path
	KeyMapPath   = "map_path"   // ddrescue mapfile path
	KeyHandle    = "handle"     // plugin handle ID
	KeyBlockNum  = "block"      // block index
	KeyBlockSize = "block_size" // block size in bytes
	KeyOffset    = "offset"     // byte offset into the device
	KeyCount     = "count"      // byte count requested

	KeyStatus   = "status"    // ddrescue status code for a range
	KeyPass     = "pass"      // ddrescue current_pass counter
	KeyErrno    = "errno"     // syscall errno, for IoError
	KeyCacheHit = "cache_hit" // whether read_block was served from the cache file

	KeyDurationMs = "duration_ms"
	KeyError      = "error"
	KeyOperation  = "operation" // config, open, pread, close, ...
)

// TraceID returns a slog.Attr for a correlation ID.
func TraceID(id string) slog.Attr {
	return slog.String(KeyTraceID, id)
}

// Device returns a slog.Attr for a device path.
func Device(path string) slog.Attr {
	return slog.String(KeyDevice, path)
}

// CachePath returns a slog.Attr for a cache file path.
func CachePath(path string) slog.Attr {
	return slog.String(KeyCachePath, path)
}

// MapPath returns a slog.Attr for a mapfile path.
func MapPath(path string) slog.Attr {
	return slog.String(KeyMapPath, path)
}

// Handle returns a slog.Attr for a plugin handle ID.
func Handle(id int64) slog.Attr {
	return slog.Int64(KeyHandle, id)
}

// BlockNum returns a slog.Attr for a block index.
func BlockNum(n int64) slog.Attr {
	return slog.Int64(KeyBlockNum, n)
}

// BlockSize returns a slog.Attr for a block size in bytes.
func BlockSize(n int64) slog.Attr {
	return slog.Int64(KeyBlockSize, n)
}

// Offset returns a slog.Attr for a byte offset.
func Offset(off int64) slog.Attr {
	return slog.Int64(KeyOffset, off)
}

// Count returns a slog.Attr for a byte count.
func Count(n int) slog.Attr {
	return slog.Int(KeyCount, n)
}

// Status returns a slog.Attr for a ddrescue status code.
func Status(code byte) slog.Attr {
	return slog.String(KeyStatus, string(code))
}

// Pass returns a slog.Attr for the ddrescue current_pass counter.
func Pass(n int) slog.Attr {
	return slog.Int(KeyPass, n)
}

// Errno returns a slog.Attr for a syscall errno.
func Errno(n int) slog.Attr {
	return slog.Int(KeyErrno, n)
}

// CacheHit returns a slog.Attr indicating whether a read was served
// from the backing cache file.
func CacheHit(hit bool) slog.Attr {
	return slog.Bool(KeyCacheHit, hit)
}

// DurationMs returns a slog.Attr for a duration in milliseconds.
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error, or a zero Attr if err is nil.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Operation returns a slog.Attr for the plugin operation name.
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}
