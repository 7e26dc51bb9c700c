// Package blockio provides positioned I/O against the source device and
// the sparse cache file, plus the zero-hole heuristic blockcache uses to
// tell an unwritten cache region from a genuinely zero block.
package blockio

import (
	"os"
)

// Device is a read-only positioned-read handle on the source block
// device or disk image. Per spec, the underlying file descriptor is
// opened per operation rather than held open for the device's
// lifetime — this mirrors original_source's file/safe.py, which never
// trusts a long-lived fd across a device that may be removable media.
type Device struct {
	path string
}

// NewDevice returns a Device over path. No file is opened until ReadAt
// is called.
func NewDevice(path string) *Device {
	return &Device{path: path}
}

// Path returns the underlying device path.
func (d *Device) Path() string {
	return d.path
}

// ReadAt implements io.ReaderAt, opening and closing the device file
// for the duration of this single read.
func (d *Device) ReadAt(p []byte, off int64) (int, error) {
	f, err := os.OpenFile(d.path, os.O_RDONLY, 0)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return f.ReadAt(p, off)
}
