package regionmap

import (
	"sort"

	"github.com/marmos91/blkcache/pkg/blkerr"
)

// transition marks a position at which the region's status changes.
// Transitions compare by position alone — no tie-breaker sentinel is
// needed in Go the way the Python original used a NaN float to defeat
// tuple comparison on later fields; a position-only key is sufficient.
type transition struct {
	position int64
	status   Status
}

// RangeStatus is a single point returned by Slice: the status that
// begins (or continues) at Position.
type RangeStatus struct {
	Position int64
	Status   Status
}

// Range is one contiguous run of a single status, as returned by Ranges.
type Range struct {
	Position int64
	Length   int64
	Status   Status
}

// Map is an interval map over [0, size) where every byte has a
// well-defined Status: the status of the greatest transition with
// position <= that byte. A terminal sentinel transition always sits
// at position == size and is never removed by compaction, even when
// its status happens to match its predecessor's.
type Map struct {
	size        int64
	transitions []transition
}

// New creates a RegionMap covering [0, size) as a single UNTRIED run.
func New(size int64) *Map {
	return &Map{
		size: size,
		transitions: []transition{
			{position: 0, status: StatusUntried},
			{position: size, status: StatusUntried},
		},
	}
}

// Size returns the device size the map was constructed with.
func (m *Map) Size() int64 {
	return m.size
}

// floorIndex returns the index of the greatest transition whose
// position is <= pos.
func (m *Map) floorIndex(pos int64) int {
	idx := sort.Search(len(m.transitions), func(i int) bool {
		return m.transitions[i].position > pos
	})
	return idx - 1
}

// At returns the status in effect at position. Position == Size()
// returns the terminal sentinel's status.
func (m *Map) At(position int64) Status {
	return m.transitions[m.floorIndex(position)].status
}

// ensureBoundary guarantees a transition exists at exactly pos,
// inserting one that carries the status already in effect there if
// none exists, and returns its index.
func (m *Map) ensureBoundary(pos int64) int {
	idx := sort.Search(len(m.transitions), func(i int) bool {
		return m.transitions[i].position >= pos
	})
	if idx < len(m.transitions) && m.transitions[idx].position == pos {
		return idx
	}
	carry := m.transitions[idx-1].status
	m.transitions = append(m.transitions, transition{})
	copy(m.transitions[idx+1:], m.transitions[idx:])
	m.transitions[idx] = transition{position: pos, status: carry}
	return idx
}

// compact removes adjacent transitions that carry the same status,
// except it never drops the terminal sentinel.
func (m *Map) compact() {
	if len(m.transitions) <= 1 {
		return
	}
	out := m.transitions[:1]
	last := len(m.transitions) - 1
	for i := 1; i < last; i++ {
		if m.transitions[i].status == out[len(out)-1].status {
			continue
		}
		out = append(out, m.transitions[i])
	}
	out = append(out, m.transitions[last])
	m.transitions = out
}

// Set assigns status to every position in [start, end). start == end
// is a no-op. Returns blkerr.ErrOutOfRange if the range falls outside
// [0, size).
func (m *Map) Set(start, end int64, status Status) error {
	if start == end {
		return nil
	}
	if start < 0 || end > m.size || start > end {
		return blkerr.ErrOutOfRange
	}

	startIdx := m.ensureBoundary(start)
	endIdx := m.ensureBoundary(end)

	for i := startIdx; i < endIdx; i++ {
		m.transitions[i].status = status
	}
	m.compact()
	return nil
}

// Slice returns the status at start, every transition strictly
// between start and end, and a synthetic terminator at end-1. Empty
// when start == end.
func (m *Map) Slice(start, end int64) []RangeStatus {
	if start == end {
		return nil
	}
	out := []RangeStatus{{Position: start, Status: m.At(start)}}
	for _, t := range m.transitions {
		if t.position > start && t.position < end {
			out = append(out, RangeStatus{Position: t.position, Status: t.status})
		}
	}
	out = append(out, RangeStatus{Position: end - 1, Status: m.At(end - 1)})
	return out
}

// FirstUntried returns the position of the first UNTRIED transition,
// or size if none exists before the terminal sentinel (which is
// UNTRIED by construction and is never modified by Set, so this
// always succeeds unless the map's invariants have been violated).
func (m *Map) FirstUntried() (int64, error) {
	for _, t := range m.transitions {
		if t.status == StatusUntried {
			return t.position, nil
		}
	}
	return 0, blkerr.ErrCorrupted
}

// WorstStatus returns the highest-priority (worst outcome) status
// present anywhere on the device, ignoring the terminal sentinel.
func (m *Map) WorstStatus() (Status, error) {
	var (
		best  Status
		found bool
	)
	for i := 0; i < len(m.transitions)-1; i++ {
		s := m.transitions[i].status
		if !s.Valid() {
			continue
		}
		if !found || s.Priority() < best.Priority() {
			best = s
			found = true
		}
	}
	if !found {
		return 0, blkerr.ErrCorrupted
	}
	return best, nil
}

// Ranges emits one (position, length, status) triple per adjacent
// pair of transitions. The terminal sentinel does not itself produce
// an entry.
func (m *Map) Ranges() []Range {
	if len(m.transitions) == 0 {
		return nil
	}
	out := make([]Range, 0, len(m.transitions)-1)
	for i := 0; i < len(m.transitions)-1; i++ {
		start := m.transitions[i].position
		length := m.transitions[i+1].position - start
		out = append(out, Range{Position: start, Length: length, Status: m.transitions[i].status})
	}
	return out
}
