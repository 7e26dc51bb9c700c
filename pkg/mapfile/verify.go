package mapfile

import "fmt"

// Verify reports whether doc's region map covers exactly [0, size)
// with no gaps — a standalone diagnostic for the CLI's "mapfile
// verify" subcommand, not something the engine itself needs at
// runtime (the region map's own invariants already guarantee full
// coverage by construction; this exists to catch a hand-edited or
// foreign mapfile that was loaded against the wrong device size).
func Verify(doc *Document, size int64) error {
	if doc.Regions.Size() != size {
		return fmt.Errorf("mapfile covers size %d, expected %d", doc.Regions.Size(), size)
	}

	ranges := doc.Regions.Ranges()
	if len(ranges) == 0 {
		return fmt.Errorf("mapfile has no ranges for a non-empty device")
	}

	if ranges[0].Position != 0 {
		return fmt.Errorf("mapfile coverage starts at %d, not 0", ranges[0].Position)
	}

	var end int64
	for _, r := range ranges {
		if r.Position != end {
			return fmt.Errorf("gap in mapfile coverage at %d (expected %d)", r.Position, end)
		}
		end = r.Position + r.Length
	}
	if end != size {
		return fmt.Errorf("mapfile coverage ends at %d, expected %d", end, size)
	}
	return nil
}
