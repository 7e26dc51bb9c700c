package handle

import (
	"context"
	"testing"
)

func TestOpenAssignsDistinctIncreasingIDs(t *testing.T) {
	tbl := NewTable()
	a := tbl.Open(nil)
	b := tbl.Open(nil)
	if a == b {
		t.Fatalf("Open returned duplicate IDs: %d", a)
	}
	if b <= a {
		t.Errorf("IDs not increasing: %d then %d", a, b)
	}
}

func TestGetUnknownHandleFails(t *testing.T) {
	tbl := NewTable()
	if _, err := tbl.Get(999); err == nil {
		t.Errorf("Get on unopened handle should fail")
	}
}

func TestGetReturnsOpenedEngine(t *testing.T) {
	tbl := NewTable()
	id := tbl.Open(nil)
	got, err := tbl.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Errorf("expected the nil placeholder engine back, got %v", got)
	}
}

func TestCloseRemovesHandle(t *testing.T) {
	tbl := NewTable()
	id := tbl.Open(nil)
	if tbl.Len() != 1 {
		t.Fatalf("Len = %d, want 1", tbl.Len())
	}
	tbl.Close(context.Background(), id)
	if tbl.Len() != 0 {
		t.Errorf("Len after Close = %d, want 0", tbl.Len())
	}
	if _, err := tbl.Get(id); err == nil {
		t.Errorf("Get after Close should fail")
	}
}

func TestCloseUnknownHandleIsNoop(t *testing.T) {
	tbl := NewTable()
	tbl.Close(context.Background(), 12345) // must not panic
}
