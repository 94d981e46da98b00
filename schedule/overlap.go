package schedule

import (
	"sort"
	"time"
)

// Overlap is a pair of occurrences whose time intervals intersect under
// half-open semantics: a.Start < b.End && b.Start < a.End. Touching
// boundaries (one ends exactly when the other starts) are adjacency, not
// overlap. A always starts at or before B.
type Overlap struct {
	A        Occurrence
	B        Occurrence
	Duration time.Duration // length of the intersection
}

// DetectOverlaps finds every overlapping pair of timed occurrences using a
// sort + sweep over the start-ordered list, O(n log n + k) for k reported
// pairs. All-day occurrences never participate: a birthday spanning the
// whole day is not a conflict with a meeting. Occurrences of the same
// recurring event are not compared against each other.
func DetectOverlaps(occs []Occurrence) []Overlap {
	timed := make([]Occurrence, 0, len(occs))
	for _, o := range occs {
		if o.AllDay {
			continue
		}
		timed = append(timed, o)
	}
	sort.SliceStable(timed, func(i, j int) bool {
		if !timed[i].Start.Equal(timed[j].Start) {
			return timed[i].Start.Before(timed[j].Start)
		}
		return timed[i].EventID < timed[j].EventID
	})

	var overlaps []Overlap
	// active holds occurrences whose interval may still intersect the next
	// one in start order. Anything that ended at or before cur.Start can
	// never overlap again and is evicted.
	var active []Occurrence
	for _, cur := range timed {
		kept := active[:0]
		for _, a := range active {
			if a.End.After(cur.Start) {
				kept = append(kept, a)
			}
		}
		active = kept

		for _, a := range active {
			if a.EventID == cur.EventID {
				continue
			}
			// a.Start <= cur.Start and a.End > cur.Start here, so the pair
			// overlaps unless cur is zero-length at the shared boundary.
			if !a.Start.Before(cur.End) {
				continue
			}
			overlaps = append(overlaps, Overlap{
				A:        a,
				B:        cur,
				Duration: minTime(a.End, cur.End).Sub(cur.Start),
			})
		}
		active = append(active, cur)
	}

	sort.SliceStable(overlaps, func(i, j int) bool {
		if !overlaps[i].A.Start.Equal(overlaps[j].A.Start) {
			return overlaps[i].A.Start.Before(overlaps[j].A.Start)
		}
		return overlaps[i].B.Start.Before(overlaps[j].B.Start)
	})
	return overlaps
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
