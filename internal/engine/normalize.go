package engine

import (
	"sort"
	"time"

	"github.com/zeroslashagency/epsilon-attendance-api/internal/models"
)

// normalize sorts the day's events ascending by timestamp and removes exact
// duplicates (same direction, timestamp and device). Events outside the
// target date are a caller bug and fail the precondition; the caller owns day
// partitioning. Empty input yields an empty sequence.
//
// Tie-break at equal timestamps: closing directions (out/break) are processed
// before openers (in), preferring closing an interval over opening one.
func normalize(events []models.PunchEvent, day time.Time) ([]models.PunchEvent, error) {
	if len(events) == 0 {
		return nil, nil
	}

	out := make([]models.PunchEvent, 0, len(events))
	seen := make(map[dedupeKey]struct{}, len(events))
	for _, ev := range events {
		if !sameDay(ev.Time, day) {
			return nil, errOutsideDay(ev, day)
		}
		key := dedupeKey{unix: ev.Time.Unix(), direction: ev.Direction, device: ev.DeviceID}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, ev)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Time.Equal(out[j].Time) {
			return out[i].Time.Before(out[j].Time)
		}
		return out[i].Direction.Closes() && !out[j].Direction.Closes()
	})
	return out, nil
}

type dedupeKey struct {
	unix      int64
	direction models.PunchDirection
	device    string
}
