package schedule

import (
	"sort"
	"time"
)

// LowMoodThreshold is the rating below which an occurrence counts as a bad
// experience for pattern analysis.
const LowMoodThreshold = 3

// CategoryMood aggregates mood ratings for one category across a window.
type CategoryMood struct {
	CategoryID uint    `json:"category_id"`
	Count      int     `json:"count"`
	RatedCount int     `json:"rated_count"`
	AvgRating  float64 `json:"avg_rating"`
	LowCount   int     `json:"low_count"`
}

// CategoryMoodStats groups occurrences by category and summarizes their
// mood ratings. Uncategorized occurrences are skipped; they have no bucket
// to accumulate a pattern in.
func CategoryMoodStats(occs []Occurrence) []CategoryMood {
	byCat := make(map[uint]*CategoryMood)
	for _, o := range occs {
		if o.CategoryID == nil {
			continue
		}
		cm, ok := byCat[*o.CategoryID]
		if !ok {
			cm = &CategoryMood{CategoryID: *o.CategoryID}
			byCat[*o.CategoryID] = cm
		}
		cm.Count++
		if o.MoodRating == nil {
			continue
		}
		cm.RatedCount++
		cm.AvgRating += float64(*o.MoodRating)
		if *o.MoodRating < LowMoodThreshold {
			cm.LowCount++
		}
	}

	out := make([]CategoryMood, 0, len(byCat))
	for _, cm := range byCat {
		if cm.RatedCount > 0 {
			cm.AvgRating /= float64(cm.RatedCount)
		}
		out = append(out, *cm)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CategoryID < out[j].CategoryID })
	return out
}

// DayLoad describes how full one calendar day is.
type DayLoad struct {
	Day       time.Time     `json:"day"` // midnight, occurrence location
	Count     int           `json:"count"`
	AllDay    int           `json:"all_day"`
	Scheduled time.Duration `json:"scheduled"`
}

// DailyLoad buckets occurrences per calendar day. Timed occurrences
// contribute their duration; all-day occurrences are counted separately and
// add no scheduled time.
func DailyLoad(occs []Occurrence) []DayLoad {
	byDay := make(map[time.Time]*DayLoad)
	for _, o := range occs {
		day := o.dayOf()
		dl, ok := byDay[day]
		if !ok {
			dl = &DayLoad{Day: day}
			byDay[day] = dl
		}
		if o.AllDay {
			dl.AllDay++
			continue
		}
		dl.Count++
		dl.Scheduled += o.duration()
	}

	out := make([]DayLoad, 0, len(byDay))
	for _, dl := range byDay {
		out = append(out, *dl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out
}
