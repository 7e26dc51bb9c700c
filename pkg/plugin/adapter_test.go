package plugin

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/marmos91/blkcache/pkg/blkerr"
)

type fakeProber struct{}

func (fakeProber) Probe(path string) (int64, int64, bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, 0, false, err
	}
	return info.Size(), 512, false, nil
}

func newTestAdapter(t *testing.T) (*Adapter, string, string) {
	t.Helper()
	dir := t.TempDir()
	devicePath := filepath.Join(dir, "disk.img")
	if err := os.WriteFile(devicePath, []byte("hello world, this is a test disk"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cachePath := filepath.Join(dir, "cache.bin")
	return NewAdapter(fakeProber{}), devicePath, cachePath
}

func TestConfigCompleteRequiresDeviceAndCache(t *testing.T) {
	a := NewAdapter(fakeProber{})
	err := a.ConfigComplete(context.Background())
	if !errors.Is(err, blkerr.ErrConfig) {
		t.Errorf("ConfigComplete with no config = %v, want ErrConfig", err)
	}
}

func TestConfigUnknownKeysGoToMetadata(t *testing.T) {
	a := NewAdapter(fakeProber{})
	if err := a.Config("weird-key", "weird-value"); err != nil {
		t.Fatalf("Config: %v", err)
	}
	if a.metadata["weird-key"] != "weird-value" {
		t.Errorf("unknown key not recorded in metadata: %v", a.metadata)
	}
}

func TestConfigMetadataKeyParsesCommaSeparatedPairs(t *testing.T) {
	a := NewAdapter(fakeProber{})
	if err := a.Config("metadata", "a=1,b=2"); err != nil {
		t.Fatalf("Config: %v", err)
	}
	if a.metadata["a"] != "1" || a.metadata["b"] != "2" {
		t.Errorf("metadata pairs not parsed: %v", a.metadata)
	}
}

func TestOpenReadGetSizeClose(t *testing.T) {
	a, devicePath, cachePath := newTestAdapter(t)
	_ = a.Config("device", devicePath)
	_ = a.Config("cache", cachePath)
	if err := a.ConfigComplete(context.Background()); err != nil {
		t.Fatalf("ConfigComplete: %v", err)
	}

	h, err := a.Open(true)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	size, err := a.GetSize(h)
	if err != nil {
		t.Fatalf("GetSize: %v", err)
	}
	if size != int64(len("hello world, this is a test disk")) {
		t.Errorf("GetSize = %d, want device size", size)
	}

	data, err := a.Pread(context.Background(), h, 5, 0)
	if err != nil {
		t.Fatalf("Pread: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("Pread = %q, want \"hello\"", data)
	}

	a.Close(context.Background(), h)
	if _, err := a.GetSize(h); err == nil {
		t.Errorf("GetSize after Close should fail")
	}
}

func TestCapabilitiesAllFalseExceptRotational(t *testing.T) {
	a, devicePath, cachePath := newTestAdapter(t)
	_ = a.Config("device", devicePath)
	_ = a.Config("cache", cachePath)
	if err := a.ConfigComplete(context.Background()); err != nil {
		t.Fatalf("ConfigComplete: %v", err)
	}
	h, _ := a.Open(true)

	if a.CanWrite(h) || a.CanFlush(h) || a.CanTrim(h) || a.CanZero(h) ||
		a.CanFastZero(h) || a.CanExtents(h) || a.CanMultiConn(h) {
		t.Errorf("all write/flush/trim/zero/extents/multi-conn capabilities must be false")
	}
	if a.IsRotational(h) {
		t.Errorf("fake disk image should not report rotational")
	}
}

func TestOpenBeforeConfigCompleteFails(t *testing.T) {
	a := NewAdapter(fakeProber{})
	if _, err := a.Open(true); err == nil {
		t.Errorf("Open before config_complete should fail")
	}
}

func TestConfigRejectsMalformedBlockSize(t *testing.T) {
	a := NewAdapter(fakeProber{})
	err := a.Config("block_size", "not-a-number")
	if !errors.Is(err, blkerr.ErrConfig) {
		t.Errorf("Config with malformed block size = %v, want ErrConfig", err)
	}
}

func TestResolvedBlockSizePrecedenceIsOrderIndependent(t *testing.T) {
	a := NewAdapter(fakeProber{})
	_ = a.Config("block_size", "4096")
	_ = a.Config("block", "512")
	if got := a.resolvedBlockSize(); got != 4096 {
		t.Errorf("resolvedBlockSize() = %d, want 4096 (block_size beats a later block)", got)
	}

	b := NewAdapter(fakeProber{})
	_ = b.Config("block", "512")
	_ = b.Config("block_size", "4096")
	if got := b.resolvedBlockSize(); got != 4096 {
		t.Errorf("resolvedBlockSize() = %d, want 4096 regardless of call order", got)
	}

	c := NewAdapter(fakeProber{})
	_ = c.Config("sector", "128")
	_ = c.Config("block", "512")
	if got := c.resolvedBlockSize(); got != 512 {
		t.Errorf("resolvedBlockSize() = %d, want 512 (block beats sector)", got)
	}
}
