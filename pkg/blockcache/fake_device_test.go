package blockcache

import (
	"fmt"
	"sync"
)

// fakeDevice is an in-memory io.ReaderAt over a fixed byte slice.
// failRanges marks [start,end) byte ranges that must fail with EIO
// instead of returning data, and reads counts every ReadAt call so
// tests can assert the device was (or wasn't) touched.
type fakeDevice struct {
	mu         sync.Mutex
	data       []byte
	failRanges [][2]int64
	reads      int
}

func newFakeDevice(data []byte) *fakeDevice {
	return &fakeDevice{data: data}
}

func (f *fakeDevice) failRange(start, end int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failRanges = append(f.failRanges, [2]int64{start, end})
}

func (f *fakeDevice) ReadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads
}

func (f *fakeDevice) ReadAt(p []byte, off int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++

	for _, r := range f.failRanges {
		if off >= r[0] && off < r[1] {
			return 0, fmt.Errorf("fake device: injected EIO at offset %d", off)
		}
	}

	if off >= int64(len(f.data)) {
		return 0, nil
	}
	n := copy(p, f.data[off:])
	return n, nil
}

// fakeProber reports a fixed size and sector size without touching
// the filesystem.
type fakeProber struct {
	size       int64
	sectorSize int64
}

func (p fakeProber) Probe(string) (int64, int64, bool, error) {
	return p.size, p.sectorSize, false, nil
}
