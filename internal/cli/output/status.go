package output

import "github.com/marmos91/blkcache/pkg/regionmap"

// StatusLabel renders a region status byte the same way across every
// command that surfaces one: a short name plus, when color is
// requested, the ANSI color a human operator scans a ddrescue-style
// report for (green good, red bad, yellow in-progress/unknown).
func StatusLabel(s regionmap.Status, color bool) string {
	name := statusName(s)
	if !color {
		return name
	}
	switch s {
	case regionmap.StatusOK:
		return "\033[32m" + name + "\033[0m"
	case regionmap.StatusError, regionmap.StatusTrimmed:
		return "\033[31m" + name + "\033[0m"
	case regionmap.StatusSlow, regionmap.StatusUntried:
		return "\033[33m" + name + "\033[0m"
	default:
		return name
	}
}

func statusName(s regionmap.Status) string {
	switch s {
	case regionmap.StatusOK:
		return "+ OK"
	case regionmap.StatusUntried:
		return "? UNTRIED"
	case regionmap.StatusError:
		return "- ERROR"
	case regionmap.StatusSlow:
		return "* SLOW"
	case regionmap.StatusScraped:
		return "# SCRAPED"
	case regionmap.StatusTrimmed:
		return "/ TRIMMED"
	default:
		return string(byte(s))
	}
}
