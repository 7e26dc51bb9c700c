// Package regionmap implements an in-memory interval map over a
// device's byte range, tagging every position with a ddrescue-style
// read-outcome status. It supports range assignment, point/range
// query, and the aggregate queries the block cache engine and mapfile
// codec need (first untried position, worst status of the device).
package regionmap

// Status is one of the six ddrescue-compatible single-character region
// statuses.
type Status byte

const (
	StatusUntried Status = '?' // not attempted
	StatusSlow    Status = '*' // slow read, not yet scraped
	StatusScraped Status = '#' // slow read completed
	StatusTrimmed Status = '/' // skipped following a read error
	StatusError   Status = '-' // hard read failure
	StatusOK      Status = '+' // successfully read
)

// priority gives the total order used only by WorstStatus: lower
// number means higher priority (worse outcome).
var priority = map[Status]int{
	StatusError:   1,
	StatusTrimmed: 2,
	StatusUntried: 3,
	StatusSlow:    4,
	StatusScraped: 5,
	StatusOK:      6,
}

// Priority returns the status's position in the worst-status ordering.
// Lower is worse. Unrecognized statuses return 0; WorstStatus skips
// them and only ever reports one of the six recognized statuses.
func (s Status) Priority() int {
	if p, ok := priority[s]; ok {
		return p
	}
	return 0
}

// Valid reports whether s is one of the six recognized status codes.
func (s Status) Valid() bool {
	_, ok := priority[s]
	return ok
}

func (s Status) String() string {
	return string(s)
}

// Cached reports whether data for this status is present in the
// backing cache file.
func Cached(s Status) bool {
	return s == StatusOK || s == StatusSlow || s == StatusScraped
}

// Uncached reports whether this status means the block must still be
// fetched from the device.
func Uncached(s Status) bool {
	return s == StatusUntried
}

// Errored reports whether this status means the range must be skipped
// rather than served — never return zeroed bytes for an errored range.
func Errored(s Status) bool {
	return s == StatusError || s == StatusTrimmed
}
