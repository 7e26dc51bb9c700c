package fileprobe

import (
	"os"
	"path/filepath"
	"testing"
)

func TestProbeReportsSizeAndFixedSector(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "image.bin")
	if err := os.WriteFile(path, make([]byte, 8192), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	var p Prober
	size, sector, rotational, err := p.Probe(path)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if size != 8192 {
		t.Errorf("size = %d, want 8192", size)
	}
	if sector != 512 {
		t.Errorf("sector = %d, want 512", sector)
	}
	if rotational {
		t.Errorf("rotational = true, want false")
	}
}

func TestProbeMissingFile(t *testing.T) {
	var p Prober
	_, _, _, err := p.Probe(filepath.Join(t.TempDir(), "nope"))
	if err == nil {
		t.Errorf("Probe on missing file should fail")
	}
}
