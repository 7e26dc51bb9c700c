package regionmap

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/marmos91/blkcache/pkg/blkerr"
)

func checkInvariants(t *testing.T, m *Map, size int64) {
	t.Helper()

	if len(m.transitions) == 0 {
		t.Fatalf("transitions is empty")
	}
	if m.transitions[0].position != 0 {
		t.Errorf("transitions[0].position = %d, want 0", m.transitions[0].position)
	}
	last := m.transitions[len(m.transitions)-1]
	if last.position != size {
		t.Errorf("last transition position = %d, want %d", last.position, size)
	}
	for i := 1; i < len(m.transitions); i++ {
		if m.transitions[i].position <= m.transitions[i-1].position {
			t.Fatalf("positions not strictly increasing at %d: %d <= %d", i, m.transitions[i].position, m.transitions[i-1].position)
		}
	}
	for i := 1; i < len(m.transitions)-1; i++ {
		if m.transitions[i].status == m.transitions[i-1].status {
			t.Errorf("adjacent duplicate status %c at index %d", m.transitions[i].status, i)
		}
	}

	pos, err := m.FirstUntried()
	if err != nil {
		t.Errorf("FirstUntried: %v", err)
	}
	if pos < 0 || pos > size {
		t.Errorf("FirstUntried = %d out of [0,%d]", pos, size)
	}

	status := m.At(0)
	if !status.Valid() {
		t.Errorf("At(0) returned invalid status %c", status)
	}
}

func TestNewCoversWholeDevice(t *testing.T) {
	m := New(1000)
	checkInvariants(t, m, 1000)
	if got := m.At(0); got != StatusUntried {
		t.Errorf("At(0) = %c, want UNTRIED", got)
	}
	if got := m.At(999); got != StatusUntried {
		t.Errorf("At(999) = %c, want UNTRIED", got)
	}
}

func TestSetBasicRange(t *testing.T) {
	m := New(1000)
	if err := m.Set(100, 200, StatusOK); err != nil {
		t.Fatalf("Set: %v", err)
	}
	checkInvariants(t, m, 1000)

	if got := m.At(99); got != StatusUntried {
		t.Errorf("At(99) = %c, want UNTRIED", got)
	}
	if got := m.At(100); got != StatusOK {
		t.Errorf("At(100) = %c, want OK", got)
	}
	if got := m.At(199); got != StatusOK {
		t.Errorf("At(199) = %c, want OK", got)
	}
	if got := m.At(200); got != StatusUntried {
		t.Errorf("At(200) = %c, want UNTRIED", got)
	}
}

func TestSetWholeDeviceCollapsesToTwoTransitions(t *testing.T) {
	m := New(1000)
	if err := m.Set(0, 1000, StatusOK); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if len(m.transitions) != 2 {
		t.Fatalf("transitions = %d, want 2", len(m.transitions))
	}
	if m.transitions[0].position != 0 || m.transitions[0].status != StatusOK {
		t.Errorf("first transition = %+v", m.transitions[0])
	}
	if m.transitions[1].position != 1000 {
		t.Errorf("terminal position = %d, want 1000", m.transitions[1].position)
	}
}

func TestSetEmptyRangeIsNoOp(t *testing.T) {
	m := New(1000)
	before := len(m.transitions)
	if err := m.Set(500, 500, StatusOK); err != nil {
		t.Fatalf("Set(start==end): %v", err)
	}
	if len(m.transitions) != before {
		t.Errorf("Set with start==end mutated transitions")
	}
	if m.At(500) != StatusUntried {
		t.Errorf("At(500) changed after no-op Set")
	}
}

func TestSetOutOfRange(t *testing.T) {
	m := New(1000)
	cases := [][2]int64{{-1, 100}, {100, 1001}, {500, 100}}
	for _, c := range cases {
		err := m.Set(c[0], c[1], StatusOK)
		if !errors.Is(err, blkerr.ErrOutOfRange) {
			t.Errorf("Set(%d,%d) = %v, want ErrOutOfRange", c[0], c[1], err)
		}
	}
}

func TestSetOverlappingRangesCompact(t *testing.T) {
	m := New(1000)
	_ = m.Set(0, 1000, StatusError)
	_ = m.Set(200, 400, StatusOK)
	_ = m.Set(350, 600, StatusOK)
	checkInvariants(t, m, 1000)

	if m.At(250) != StatusOK {
		t.Errorf("At(250) = %c, want OK", m.At(250))
	}
	if m.At(500) != StatusOK {
		t.Errorf("At(500) = %c, want OK", m.At(500))
	}
	if m.At(700) != StatusError {
		t.Errorf("At(700) = %c, want ERROR", m.At(700))
	}

	// 200..600 should now be one contiguous OK run, not two.
	ranges := m.Ranges()
	count := 0
	for _, r := range ranges {
		if r.Status == StatusOK {
			count++
			if r.Position != 200 || r.Length != 400 {
				t.Errorf("OK range = %+v, want position=200 length=400", r)
			}
		}
	}
	if count != 1 {
		t.Errorf("found %d OK ranges, want 1 (should have merged)", count)
	}
}

func TestAtTerminalPosition(t *testing.T) {
	m := New(1000)
	_ = m.Set(0, 1000, StatusOK)
	if got := m.At(1000); got != StatusUntried {
		t.Errorf("At(size) = %c, want conventional terminal UNTRIED", got)
	}
}

func TestSlice(t *testing.T) {
	m := New(1000)
	_ = m.Set(100, 200, StatusOK)
	_ = m.Set(200, 300, StatusError)

	got := m.Slice(50, 250)
	if len(got) == 0 {
		t.Fatalf("Slice returned nothing")
	}
	if got[0].Position != 50 || got[0].Status != StatusUntried {
		t.Errorf("first entry = %+v", got[0])
	}
	last := got[len(got)-1]
	if last.Position != 249 || last.Status != StatusError {
		t.Errorf("last entry = %+v, want position=249 status=ERROR", last)
	}
}

func TestSliceEmptyWhenStartEqualsEnd(t *testing.T) {
	m := New(1000)
	if got := m.Slice(10, 10); got != nil {
		t.Errorf("Slice(start,start) = %v, want nil/empty", got)
	}
}

func TestWorstStatus(t *testing.T) {
	m := New(1000)
	_ = m.Set(0, 1000, StatusOK)
	_ = m.Set(100, 200, StatusSlow)
	_ = m.Set(300, 400, StatusError)

	worst, err := m.WorstStatus()
	if err != nil {
		t.Fatalf("WorstStatus: %v", err)
	}
	if worst != StatusError {
		t.Errorf("WorstStatus = %c, want ERROR", worst)
	}
}

func TestFirstUntried(t *testing.T) {
	m := New(1000)
	_ = m.Set(0, 500, StatusOK)

	pos, err := m.FirstUntried()
	if err != nil {
		t.Fatalf("FirstUntried: %v", err)
	}
	if pos != 500 {
		t.Errorf("FirstUntried = %d, want 500", pos)
	}

	_ = m.Set(500, 1000, StatusOK)
	pos, err = m.FirstUntried()
	if err != nil {
		t.Fatalf("FirstUntried: %v", err)
	}
	if pos != 1000 {
		t.Errorf("FirstUntried after full coverage = %d, want size (1000)", pos)
	}
}

func TestRangesEmptyTransitionsYieldsEmpty(t *testing.T) {
	m := &Map{}
	if got := m.Ranges(); len(got) != 0 {
		t.Errorf("Ranges on empty map = %v, want empty", got)
	}
}

func TestRandomizedSetSequencePreservesInvariants(t *testing.T) {
	const size = int64(4096)
	statuses := []Status{StatusUntried, StatusOK, StatusError, StatusSlow, StatusScraped, StatusTrimmed}
	rng := rand.New(rand.NewSource(42))

	m := New(size)
	for i := 0; i < 500; i++ {
		start := rng.Int63n(size)
		end := start + 1 + rng.Int63n(size-start)
		status := statuses[rng.Intn(len(statuses))]
		if err := m.Set(start, end, status); err != nil {
			t.Fatalf("Set(%d,%d,%c) failed: %v", start, end, status, err)
		}
		checkInvariants(t, m, size)
	}
}
