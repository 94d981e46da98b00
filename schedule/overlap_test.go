package schedule

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mkOcc builds a timed occurrence with default priority.
func mkOcc(id uint, title string, start time.Time, d time.Duration) Occurrence {
	return Occurrence{EventID: id, Title: title, Priority: 2, Start: start, End: start.Add(d)}
}

func TestDetectOverlaps_BasicPair(t *testing.T) {
	a := mkOcc(1, "Meeting", at(baseDay, 9, 0), time.Hour)
	b := mkOcc(2, "Review", at(baseDay, 9, 30), time.Hour)

	overlaps := DetectOverlaps([]Occurrence{b, a})
	require.Len(t, overlaps, 1)
	assert.Equal(t, uint(1), overlaps[0].A.EventID, "A starts first")
	assert.Equal(t, uint(2), overlaps[0].B.EventID)
	assert.Equal(t, 30*time.Minute, overlaps[0].Duration)
}

func TestDetectOverlaps_AdjacencyIsNotOverlap(t *testing.T) {
	a := mkOcc(1, "First", at(baseDay, 9, 0), time.Hour)
	b := mkOcc(2, "Second", at(baseDay, 10, 0), time.Hour)

	assert.Empty(t, DetectOverlaps([]Occurrence{a, b}))
}

func TestDetectOverlaps_ContainedInterval(t *testing.T) {
	outer := mkOcc(1, "Workshop", at(baseDay, 9, 0), 3*time.Hour)
	inner := mkOcc(2, "Call", at(baseDay, 10, 0), time.Hour)

	overlaps := DetectOverlaps([]Occurrence{outer, inner})
	require.Len(t, overlaps, 1)
	assert.Equal(t, time.Hour, overlaps[0].Duration, "contained interval overlaps for its full length")
}

func TestDetectOverlaps_AllDayNeverConflicts(t *testing.T) {
	allDay := Occurrence{EventID: 1, Title: "Holiday", AllDay: true, Start: baseDay, End: baseDay.Add(24 * time.Hour)}
	timed := mkOcc(2, "Meeting", at(baseDay, 9, 0), time.Hour)

	assert.Empty(t, DetectOverlaps([]Occurrence{allDay, timed}))
}

func TestDetectOverlaps_SameEventInstancesSkipped(t *testing.T) {
	// Two instances of one recurring event placed onto the same slot by a
	// pathological rule should not be reported against themselves.
	a := mkOcc(1, "Series", at(baseDay, 9, 0), time.Hour)
	b := mkOcc(1, "Series", at(baseDay, 9, 30), time.Hour)

	assert.Empty(t, DetectOverlaps([]Occurrence{a, b}))
}

func TestDetectOverlaps_ZeroLengthAtBoundary(t *testing.T) {
	full := mkOcc(1, "Meeting", at(baseDay, 10, 0), time.Hour)
	marker := mkOcc(2, "Marker", at(baseDay, 10, 0), 0)

	assert.Empty(t, DetectOverlaps([]Occurrence{full, marker}),
		"a zero-length occurrence at the shared start does not intersect under half-open semantics")
}

func TestDetectOverlaps_OutputOrdered(t *testing.T) {
	occs := []Occurrence{
		mkOcc(1, "a", at(baseDay, 9, 0), 2*time.Hour),
		mkOcc(2, "b", at(baseDay, 9, 30), 2*time.Hour),
		mkOcc(3, "c", at(baseDay, 10, 0), 2*time.Hour),
	}

	overlaps := DetectOverlaps(occs)
	require.Len(t, overlaps, 3)
	for i := 1; i < len(overlaps); i++ {
		prev, cur := overlaps[i-1], overlaps[i]
		ok := prev.A.Start.Before(cur.A.Start) ||
			(prev.A.Start.Equal(cur.A.Start) && !cur.B.Start.Before(prev.B.Start))
		assert.True(t, ok, "overlap %d out of order", i)
	}
}

func TestDetectOverlaps_MatchesNaiveScan(t *testing.T) {
	// A messy but fixed day: containments, chains, gaps, duplicates of a
	// series, and an all-day entry.
	occs := []Occurrence{
		mkOcc(1, "a", at(baseDay, 8, 0), 90*time.Minute),
		mkOcc(2, "b", at(baseDay, 8, 30), 30*time.Minute),
		mkOcc(3, "c", at(baseDay, 9, 0), 2*time.Hour),
		mkOcc(4, "d", at(baseDay, 10, 30), time.Hour),
		mkOcc(5, "e", at(baseDay, 13, 0), time.Hour),
		mkOcc(6, "f", at(baseDay, 13, 0), 30*time.Minute),
		mkOcc(7, "g", at(baseDay, 13, 45), time.Hour),
		mkOcc(7, "g", at(baseDay, 16, 0), time.Hour),
		{EventID: 8, Title: "h", AllDay: true, Start: baseDay, End: baseDay.Add(24 * time.Hour)},
	}

	want := make(map[string]bool)
	for i := 0; i < len(occs); i++ {
		for j := i + 1; j < len(occs); j++ {
			a, b := occs[i], occs[j]
			if a.AllDay || b.AllDay || a.EventID == b.EventID {
				continue
			}
			if a.Start.Before(b.End) && b.Start.Before(a.End) {
				lo, hi := a.EventID, b.EventID
				if lo > hi {
					lo, hi = hi, lo
				}
				want[fmt.Sprintf("%d-%d", lo, hi)] = true
			}
		}
	}

	got := DetectOverlaps(occs)
	require.Len(t, got, len(want), "sweep must agree with the quadratic scan")
	for _, ov := range got {
		lo, hi := ov.A.EventID, ov.B.EventID
		if lo > hi {
			lo, hi = hi, lo
		}
		assert.True(t, want[fmt.Sprintf("%d-%d", lo, hi)], "unexpected pair %d-%d", lo, hi)
		assert.True(t, ov.Duration > 0)
		assert.False(t, ov.B.Start.Before(ov.A.Start))
	}
}

func TestDetectOverlaps_RandomizedAgainstNaiveScan(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for trial := 0; trial < 20; trial++ {
		n := 30 + rng.Intn(50)
		occs := make([]Occurrence, 0, n)
		for i := 0; i < n; i++ {
			day := baseDay.AddDate(0, 0, rng.Intn(7))
			start := at(day, 6+rng.Intn(14), 5*rng.Intn(12))
			d := time.Duration(15+rng.Intn(150)) * time.Minute
			occs = append(occs, mkOcc(uint(i+1), fmt.Sprintf("e%d", i+1), start, d))
		}

		want := 0
		for i := 0; i < len(occs); i++ {
			for j := i + 1; j < len(occs); j++ {
				a, b := occs[i], occs[j]
				if a.Start.Before(b.End) && b.Start.Before(a.End) {
					want++
				}
			}
		}

		assert.Len(t, DetectOverlaps(occs), want, "trial %d", trial)
	}
}

func TestDetectOverlaps_Empty(t *testing.T) {
	assert.Empty(t, DetectOverlaps(nil))
}
