//go:build cgo

package nbdkit

/*
#include <stdint.h>
#include <string.h>
*/
import "C"

import (
	"context"
	"unsafe"

	"github.com/marmos91/blkcache/internal/logger"
	"github.com/marmos91/blkcache/pkg/blockio"
	"github.com/marmos91/blkcache/pkg/plugin"
)

// adapter is process-wide: nbdkit loads one plugin instance per
// process, same as the original plugin.py's module-level globals.
var adapter = plugin.NewAdapter(blockio.DefaultProber())

//export blkcacheConfig
func blkcacheConfig(key, value *C.char) C.int {
	if err := adapter.Config(C.GoString(key), C.GoString(value)); err != nil {
		logger.Error("nbdkit config failed", logger.Err(err))
		return -1
	}
	return 0
}

//export blkcacheConfigComplete
func blkcacheConfigComplete() C.int {
	if err := adapter.ConfigComplete(context.Background()); err != nil {
		logger.Error("nbdkit config_complete failed", logger.Err(err))
		return -1
	}
	return 0
}

//export blkcacheOpen
func blkcacheOpen(readonly C.int) unsafe.Pointer {
	h, err := adapter.Open(readonly != 0)
	if err != nil {
		logger.Error("nbdkit open failed", logger.Err(err))
		return nil
	}
	return unsafe.Pointer(uintptr(h))
}

//export blkcacheGetSize
func blkcacheGetSize(handle unsafe.Pointer) C.int64_t {
	size, err := adapter.GetSize(handleID(handle))
	if err != nil {
		logger.Error("nbdkit get_size failed", logger.Err(err))
		return -1
	}
	return C.int64_t(size)
}

//export blkcachePread
func blkcachePread(handle unsafe.Pointer, buf *C.char, count C.uint32_t, offset C.uint64_t) C.int {
	data, err := adapter.Pread(context.Background(), handleID(handle), int(count), int64(offset))
	if err != nil {
		logger.Error("nbdkit pread failed", logger.Offset(int64(offset)), logger.Count(int(count)), logger.Err(err))
		return -1
	}
	C.memcpy(unsafe.Pointer(buf), unsafe.Pointer(&data[0]), C.size_t(len(data)))
	return 0
}

//export blkcacheClose
func blkcacheClose(handle unsafe.Pointer) {
	adapter.Close(context.Background(), handleID(handle))
}

//export blkcacheCanWrite
func blkcacheCanWrite(handle unsafe.Pointer) C.int { return boolToC(adapter.CanWrite(handleID(handle))) }

//export blkcacheCanFlush
func blkcacheCanFlush(handle unsafe.Pointer) C.int { return boolToC(adapter.CanFlush(handleID(handle))) }

//export blkcacheCanTrim
func blkcacheCanTrim(handle unsafe.Pointer) C.int { return boolToC(adapter.CanTrim(handleID(handle))) }

//export blkcacheCanZero
func blkcacheCanZero(handle unsafe.Pointer) C.int { return boolToC(adapter.CanZero(handleID(handle))) }

//export blkcacheCanFastZero
func blkcacheCanFastZero(handle unsafe.Pointer) C.int {
	return boolToC(adapter.CanFastZero(handleID(handle)))
}

//export blkcacheCanExtents
func blkcacheCanExtents(handle unsafe.Pointer) C.int {
	return boolToC(adapter.CanExtents(handleID(handle)))
}

//export blkcacheCanMultiConn
func blkcacheCanMultiConn(handle unsafe.Pointer) C.int {
	return boolToC(adapter.CanMultiConn(handleID(handle)))
}

//export blkcacheIsRotational
func blkcacheIsRotational(handle unsafe.Pointer) C.int {
	return boolToC(adapter.IsRotational(handleID(handle)))
}

func handleID(h unsafe.Pointer) int64 {
	return int64(uintptr(h))
}

func boolToC(b bool) C.int {
	if b {
		return 1
	}
	return 0
}
