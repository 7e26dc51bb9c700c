package blockio

import "os"

// CacheFile is a sparse, positioned-read/write handle on the cache
// backing file. Like Device, the fd is opened per operation: the
// engine has no long-lived descriptor to leak or to invalidate across
// a filesystem remount.
type CacheFile struct {
	path string
}

// NewCacheFile returns a CacheFile over path. The file is created if
// it does not already exist the first time EnsureSize or WriteAt is
// called.
func NewCacheFile(path string) *CacheFile {
	return &CacheFile{path: path}
}

// Path returns the underlying cache file path.
func (c *CacheFile) Path() string {
	return c.path
}

// EnsureSize makes the cache file at least size bytes long, creating
// it if necessary. The grown region is a hole: reading it returns
// zeros without consuming disk space, matching backend.py's
// f.truncate(get_device_size(...)) sparse-extend on cache creation.
func (c *CacheFile) EnsureSize(size int64) error {
	f, err := os.OpenFile(c.path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	if info.Size() >= size {
		return nil
	}
	return f.Truncate(size)
}

// ReadAt implements io.ReaderAt against the cache file.
func (c *CacheFile) ReadAt(p []byte, off int64) (int, error) {
	f, err := os.OpenFile(c.path, os.O_RDONLY, 0)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return f.ReadAt(p, off)
}

// WriteAt implements io.WriterAt against the cache file.
func (c *CacheFile) WriteAt(p []byte, off int64) (int, error) {
	f, err := os.OpenFile(c.path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return f.WriteAt(p, off)
}

// Sync opens the cache file and fsyncs it, matching the "fsync both
// files" requirement on BlockCache.Close.
func (c *CacheFile) Sync() error {
	f, err := os.OpenFile(c.path, os.O_RDWR, 0)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
