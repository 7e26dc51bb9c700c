package mapfile

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTempMapfile(t *testing.T, rangeLine string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.map")
	body := "0x00000000    ?  1\n" + rangeLine
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestRunShowPrintsRangesAsTable(t *testing.T) {
	path := writeTempMapfile(t, "0x00000000  0x00000010  +\n")

	var buf bytes.Buffer
	Cmd.SetOut(&buf)
	Cmd.SetArgs([]string{"show", path, "--size", "16"})
	if err := Cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "START") || !strings.Contains(out, "STATUS") {
		t.Fatalf("output missing table headers: %q", out)
	}
	if !strings.Contains(out, "0x0000000000") {
		t.Fatalf("output missing range start: %q", out)
	}
}

func TestRunVerifyAcceptsFullyCoveredMapfile(t *testing.T) {
	path := writeTempMapfile(t, "0x00000000  0x00000010  +\n")

	Cmd.SetOut(&bytes.Buffer{})
	Cmd.SetArgs([]string{"verify", path, "--size", "16"})
	if err := Cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
}

func TestRunVerifyRejectsInvalidStatusChar(t *testing.T) {
	path := writeTempMapfile(t, "0x00000000  0x00000010  Z\n")

	Cmd.SetOut(&bytes.Buffer{})
	Cmd.SetArgs([]string{"verify", path, "--size", "16"})
	if err := Cmd.Execute(); err == nil {
		t.Fatal("expected error for an invalid status character")
	}
}
