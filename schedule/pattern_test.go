package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ratedOcc(id uint, cat uint, rating int, start time.Time) Occurrence {
	o := mkOcc(id, "x", start, time.Hour)
	o.CategoryID = &cat
	o.MoodRating = &rating
	return o
}

func TestCategoryMoodStats_Aggregates(t *testing.T) {
	unrated := mkOcc(4, "unrated", at(baseDay, 14, 0), time.Hour)
	work := uint(1)
	unrated.CategoryID = &work

	occs := []Occurrence{
		ratedOcc(1, 1, 2, at(baseDay, 9, 0)),
		ratedOcc(2, 1, 4, at(baseDay, 11, 0)),
		ratedOcc(3, 2, 1, at(baseDay, 13, 0)),
		unrated,
		mkOcc(5, "uncategorized", at(baseDay, 16, 0), time.Hour),
	}

	stats := CategoryMoodStats(occs)
	require.Len(t, stats, 2, "uncategorized occurrences have no bucket")

	assert.Equal(t, uint(1), stats[0].CategoryID)
	assert.Equal(t, 3, stats[0].Count)
	assert.Equal(t, 2, stats[0].RatedCount)
	assert.InDelta(t, 3.0, stats[0].AvgRating, 0.001)
	assert.Equal(t, 1, stats[0].LowCount)

	assert.Equal(t, uint(2), stats[1].CategoryID)
	assert.Equal(t, 1, stats[1].LowCount)
}

func TestCategoryMoodStats_LowBoundary(t *testing.T) {
	// A rating equal to the threshold is not low.
	occs := []Occurrence{
		ratedOcc(1, 1, LowMoodThreshold, at(baseDay, 9, 0)),
		ratedOcc(2, 1, LowMoodThreshold-1, at(baseDay, 11, 0)),
	}

	stats := CategoryMoodStats(occs)
	require.Len(t, stats, 1)
	assert.Equal(t, 1, stats[0].LowCount)
}

func TestDailyLoad_BucketsAndDurations(t *testing.T) {
	tuesday := baseDay.AddDate(0, 0, 1)
	occs := []Occurrence{
		mkOcc(1, "a", at(baseDay, 9, 0), time.Hour),
		mkOcc(2, "b", at(baseDay, 14, 0), 90*time.Minute),
		mkOcc(3, "c", at(tuesday, 10, 0), time.Hour),
		{EventID: 4, Title: "offsite", AllDay: true, Start: baseDay, End: baseDay.Add(24 * time.Hour)},
	}

	loads := DailyLoad(occs)
	require.Len(t, loads, 2)

	assert.True(t, loads[0].Day.Equal(baseDay))
	assert.Equal(t, 2, loads[0].Count)
	assert.Equal(t, 1, loads[0].AllDay)
	assert.Equal(t, 150*time.Minute, loads[0].Scheduled, "all-day entries add no scheduled time")

	assert.True(t, loads[1].Day.Equal(tuesday))
	assert.Equal(t, 1, loads[1].Count)
	assert.Equal(t, 0, loads[1].AllDay)
}

func TestDailyLoad_Empty(t *testing.T) {
	assert.Empty(t, DailyLoad(nil))
}
