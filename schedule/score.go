package schedule

import (
	"fmt"
	"sort"
	"time"

	"aurora/models"
)

const (
	// MaxSuggestions caps one scoring pass at a page of results.
	MaxSuggestions = 20

	tightGap          = 15 * time.Minute
	denseDayCount     = 4
	patternMinLow     = 3
	reorgMinConflicts = 3
)

// Score turns detected overlaps and day-pattern observations into a ranked,
// deduplicated list of suggestion drafts for the window [from, to).
// UserID and Status are left for the caller to fill before persisting.
// An empty window produces an empty list, never an error.
//
// Ranking: priority descending (resolve_conflict 5, move_event and
// pattern_alert 4, suggest_break 3, optimize_distribution 2,
// general_reorganization 1), confidence descending, reason ascending.
func Score(occs []Occurrence, overlaps []Overlap, from, to time.Time, categoryNames map[uint]string) []models.ScheduleSuggestion {
	var drafts []models.ScheduleSuggestion
	seen := make(map[string]bool)

	add := func(key string, s models.ScheduleSuggestion) {
		if seen[key] {
			return
		}
		seen[key] = true
		drafts = append(drafts, s)
	}

	conflicts := 0
	for _, ov := range overlaps {
		key := pairKey(models.SuggestionResolveConflict, ov.A.EventID, ov.B.EventID)
		if !seen[key] {
			conflicts++
		}
		add(key, conflictSuggestion(ov))

		if mv, ok := moveSuggestion(ov); ok {
			add(pairKey(models.SuggestionMoveEvent, ov.A.EventID, ov.B.EventID), mv)
		}
	}

	for _, br := range breakSuggestions(occs) {
		add(pairKey(models.SuggestionSuggestBreak, *br.RelatedEventID, *br.EventID), br)
	}

	for _, pa := range patternSuggestions(occs, categoryNames) {
		add(fmt.Sprintf("%s:%s", pa.Type, pa.Reason), pa)
	}

	if od, ok := distributionSuggestion(occs, from, to); ok {
		add(string(od.Type), od)
	}

	if conflicts >= reorgMinConflicts {
		add(string(models.SuggestionGeneralReorganization), models.ScheduleSuggestion{
			Type:       models.SuggestionGeneralReorganization,
			Priority:   1,
			Confidence: 40,
			Reason:     fmt.Sprintf("%d scheduling conflicts in this window; consider a broader reorganization", conflicts),
		})
	}

	sort.SliceStable(drafts, func(i, j int) bool {
		if drafts[i].Priority != drafts[j].Priority {
			return drafts[i].Priority > drafts[j].Priority
		}
		if drafts[i].Confidence != drafts[j].Confidence {
			return drafts[i].Confidence > drafts[j].Confidence
		}
		return drafts[i].Reason < drafts[j].Reason
	})
	if len(drafts) > MaxSuggestions {
		drafts = drafts[:MaxSuggestions]
	}
	return drafts
}

// conflictSuggestion proposes resolving one overlapping pair. The target is
// the occurrence that should give way: the lower-priority one, or the
// later-starting one when priorities tie. Confidence is a deterministic
// read of how much the intervals actually collide: a brush across less
// than a quarter of the shorter occurrence is plausibly intentional, while
// covering half of it or more almost never is.
func conflictSuggestion(ov Overlap) models.ScheduleSuggestion {
	move, other := moveTarget(ov)

	confidence := 80
	if shorter := minDuration(ov.A.duration(), ov.B.duration()); shorter > 0 {
		ratio := float64(ov.Duration) / float64(shorter)
		switch {
		case ratio >= 0.5:
			confidence = 90
		case ratio < 0.25:
			confidence = 70
		}
	}

	return models.ScheduleSuggestion{
		Type:           models.SuggestionResolveConflict,
		Priority:       5,
		Confidence:     confidence,
		Reason:         fmt.Sprintf("%q and %q overlap by %s", ov.A.Title, ov.B.Title, fmtDuration(ov.Duration)),
		EventID:        uptr(move.EventID),
		RelatedEventID: uptr(other.EventID),
	}
}

// moveSuggestion proposes a concrete new start for the conflict's move
// target: right after the other occurrence ends, provided the moved event
// still finishes on the same calendar day.
func moveSuggestion(ov Overlap) (models.ScheduleSuggestion, bool) {
	move, other := moveTarget(ov)

	newStart := other.End
	newEnd := newStart.Add(move.duration())
	endOfDay := other.dayOf().Add(24 * time.Hour)
	if newEnd.After(endOfDay) {
		return models.ScheduleSuggestion{}, false
	}

	return models.ScheduleSuggestion{
		Type:           models.SuggestionMoveEvent,
		Priority:       4,
		Confidence:     65,
		Reason:         fmt.Sprintf("Move %q to %s to clear the overlap with %q", move.Title, newStart.Format("15:04"), other.Title),
		EventID:        uptr(move.EventID),
		RelatedEventID: uptr(other.EventID),
		SuggestedTime:  &newStart,
	}, true
}

func moveTarget(ov Overlap) (move, other Occurrence) {
	if ov.A.Priority < ov.B.Priority {
		return ov.A, ov.B
	}
	if ov.B.Priority < ov.A.Priority {
		return ov.B, ov.A
	}
	return ov.B, ov.A // tie: the later-starting occurrence gives way
}

// breakSuggestions finds same-day consecutive timed occurrences separated
// by less than fifteen minutes and proposes a pause at the gap midpoint.
// Back-to-back (zero gap) counts; overlapping pairs are conflicts, not
// break candidates.
func breakSuggestions(occs []Occurrence) []models.ScheduleSuggestion {
	timed := make([]Occurrence, 0, len(occs))
	for _, o := range occs {
		if !o.AllDay {
			timed = append(timed, o)
		}
	}
	sort.SliceStable(timed, func(i, j int) bool { return timed[i].Start.Before(timed[j].Start) })

	var out []models.ScheduleSuggestion
	for i := 0; i+1 < len(timed); i++ {
		cur, next := timed[i], timed[i+1]
		if cur.EventID == next.EventID || !cur.dayOf().Equal(next.dayOf()) {
			continue
		}
		gap := next.Start.Sub(cur.End)
		if gap < 0 || gap >= tightGap {
			continue
		}
		mid := cur.End.Add(gap / 2)
		reason := fmt.Sprintf("Only %s between %q and %q; schedule a breather", fmtDuration(gap), cur.Title, next.Title)
		if gap == 0 {
			reason = fmt.Sprintf("%q starts immediately after %q; schedule a breather", next.Title, cur.Title)
		}
		out = append(out, models.ScheduleSuggestion{
			Type:           models.SuggestionSuggestBreak,
			Priority:       3,
			Confidence:     60,
			Reason:         reason,
			EventID:        uptr(next.EventID),
			RelatedEventID: uptr(cur.EventID),
			SuggestedTime:  &mid,
		})
	}
	return out
}

// patternSuggestions raises an alert for every category that accumulated
// three or more low mood ratings in the window.
func patternSuggestions(occs []Occurrence, categoryNames map[uint]string) []models.ScheduleSuggestion {
	var out []models.ScheduleSuggestion
	for _, cm := range CategoryMoodStats(occs) {
		if cm.LowCount < patternMinLow {
			continue
		}
		confidence := 60 + 10*cm.LowCount
		if confidence > 95 {
			confidence = 95
		}
		name := categoryNames[cm.CategoryID]
		if name == "" {
			name = fmt.Sprintf("category %d", cm.CategoryID)
		}
		out = append(out, models.ScheduleSuggestion{
			Type:       models.SuggestionPatternAlert,
			Priority:   4,
			Confidence: confidence,
			Reason:     fmt.Sprintf("%d low mood ratings for %q in this window; consider rebalancing that time", cm.LowCount, name),
		})
	}
	return out
}

// distributionSuggestion fires when the busiest day carries four or more
// timed occurrences while some other day of the window carries none. It
// proposes moving the busiest day's least important occurrence to the first
// free day, keeping its start clock time.
func distributionSuggestion(occs []Occurrence, from, to time.Time) (models.ScheduleSuggestion, bool) {
	loads := DailyLoad(occs)
	countByDate := make(map[string]int, len(loads))
	var busiest *DayLoad
	for i := range loads {
		countByDate[loads[i].Day.Format("2006-01-02")] = loads[i].Count
		if loads[i].Count > 0 && (busiest == nil || loads[i].Count > busiest.Count) {
			busiest = &loads[i]
		}
	}
	if busiest == nil || busiest.Count < denseDayCount {
		return models.ScheduleSuggestion{}, false
	}

	freeDay, ok := firstFreeDay(countByDate, from, to)
	if !ok {
		return models.ScheduleSuggestion{}, false
	}

	mover, ok := lightestOn(occs, busiest.Day)
	if !ok {
		return models.ScheduleSuggestion{}, false
	}

	suggested := time.Date(freeDay.Year(), freeDay.Month(), freeDay.Day(),
		mover.Start.Hour(), mover.Start.Minute(), 0, 0, mover.Start.Location())
	return models.ScheduleSuggestion{
		Type:       models.SuggestionOptimizeDistribution,
		Priority:   2,
		Confidence: 50,
		Reason: fmt.Sprintf("%s holds %d events while %s is free; move %q there",
			busiest.Day.Weekday(), busiest.Count, freeDay.Weekday(), mover.Title),
		EventID:       uptr(mover.EventID),
		SuggestedTime: &suggested,
	}, true
}

func firstFreeDay(countByDate map[string]int, from, to time.Time) (time.Time, bool) {
	day := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	for ; day.Before(to); day = day.AddDate(0, 0, 1) {
		if countByDate[day.Format("2006-01-02")] == 0 {
			return day, true
		}
	}
	return time.Time{}, false
}

// lightestOn picks the lowest-priority timed occurrence of the given day,
// preferring the latest start among equals.
func lightestOn(occs []Occurrence, day time.Time) (Occurrence, bool) {
	var best Occurrence
	found := false
	for _, o := range occs {
		if o.AllDay || !o.dayOf().Equal(day) {
			continue
		}
		if !found || o.Priority < best.Priority ||
			(o.Priority == best.Priority && o.Start.After(best.Start)) {
			best = o
			found = true
		}
	}
	return best, found
}

func pairKey(t models.SuggestionType, a, b uint) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%s:%d:%d", t, a, b)
}

func fmtDuration(d time.Duration) string {
	d = d.Round(time.Minute)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh%02dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dm", m)
	}
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}

func uptr(v uint) *uint {
	return &v
}
