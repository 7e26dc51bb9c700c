//go:build cgo

// Package nbdkit is the cgo shim loading this engine as an nbdkit
// plugin: nbdkit dlopen()s the shared object this package builds
// into, looks up nbdkit_plugin_init, and calls the C-ABI callbacks
// nbdkit-plugin.h declares. Every callback here is a thin trampoline
// into pkg/plugin.Adapter — this file owns nothing but the C/Go
// boundary.
package nbdkit

/*
#cgo pkg-config: nbdkit
#include <stdlib.h>
#include <string.h>
#include <nbdkit-plugin.h>

extern void *blkcacheOpen(int readonly);
extern int64_t blkcacheGetSize(void *handle);
extern int blkcachePread(void *handle, char *buf, uint32_t count, uint64_t offset);
extern void blkcacheClose(void *handle);
extern int blkcacheConfig(const char *key, const char *value);
extern int blkcacheConfigComplete(void);
extern int blkcacheCanWrite(void *handle);
extern int blkcacheCanFlush(void *handle);
extern int blkcacheCanTrim(void *handle);
extern int blkcacheCanZero(void *handle);
extern int blkcacheCanFastZero(void *handle);
extern int blkcacheCanExtents(void *handle);
extern int blkcacheCanMultiConn(void *handle);
extern int blkcacheIsRotational(void *handle);

static void *c_open(int readonly) { return blkcacheOpen(readonly); }
static int64_t c_get_size(void *h) { return blkcacheGetSize(h); }
static int c_pread(void *h, void *buf, uint32_t count, uint64_t offset, uint32_t flags) {
	return blkcachePread(h, (char *)buf, count, offset);
}
static void c_close(void *h) { blkcacheClose(h); }
static int c_config(const char *key, const char *value) { return blkcacheConfig(key, value); }
static int c_config_complete(void) { return blkcacheConfigComplete(); }
static int c_can_write(void *h) { return blkcacheCanWrite(h); }
static int c_can_flush(void *h) { return blkcacheCanFlush(h); }
static int c_can_trim(void *h) { return blkcacheCanTrim(h); }
static int c_can_zero(void *h) { return blkcacheCanZero(h); }
static int c_can_fast_zero(void *h) { return blkcacheCanFastZero(h); }
static int c_can_extents(void *h) { return blkcacheCanExtents(h); }
static int c_can_multi_conn(void *h) { return blkcacheCanMultiConn(h); }
static int c_is_rotational(void *h) { return blkcacheIsRotational(h); }

static struct nbdkit_plugin the_plugin = {
	._struct_size = sizeof(struct nbdkit_plugin),
	._api_version = NBDKIT_API_VERSION,
	.name = "blkcache",
	.version = "1.0",

	.config = c_config,
	.config_complete = c_config_complete,

	.open = c_open,
	.get_size = c_get_size,
	.pread = c_pread,
	.close = c_close,

	.can_write = c_can_write,
	.can_flush = c_can_flush,
	.can_trim = c_can_trim,
	.can_zero = c_can_zero,
	.can_fast_zero = c_can_fast_zero,
	.can_extents = c_can_extents,
	.can_multi_conn = c_can_multi_conn,
	.is_rotational = c_is_rotational,
};

struct nbdkit_plugin *nbdkit_plugin_init(void) {
	return &the_plugin;
}
*/
import "C"
