package engine

import (
	"time"

	"github.com/zeroslashagency/epsilon-attendance-api/internal/models"
)

// punchState records the pairing outcome per normalized event.
type punchState int

const (
	statePaired punchState = iota
	stateDiscarded
	stateUnmatched
	stateAdjacent // cleanly scanned but adjacent to an inference
)

// intervalResult carries the Interval Builder outputs into classification.
type intervalResult struct {
	spans       []models.WorkInterval
	states      []punchState
	synthesized []models.AnnotatedPunch
	inferred    bool
}

// buildIntervals pairs the sorted punch sequence into work and break spans.
//
// Scan semantics: an `in` opens a work span and the next `out` closes it. A
// `break` closes whatever span is open and toggles: work -> break, break ->
// work. Consecutive same-direction events are a conflict resolved by policy
// (default: the earlier one is discarded as a probable duplicate). A trailing
// open span on a past day gets an inferred end at the day's last known event
// time; on the reference day it stays open with no checkout.
func buildIntervals(events []models.PunchEvent, day time.Time, isToday bool, policy ConflictPolicy) (intervalResult, []models.PunchEvent) {
	res := intervalResult{states: make([]punchState, len(events))}
	if len(events) == 0 {
		return res, nil
	}

	const (
		idle = iota
		openWork
		openBreak
	)
	mode := idle
	var openStart time.Time
	openIdx := -1

	openAs := func(m int, ev models.PunchEvent, idx int) {
		mode = m
		openStart = ev.Time
		openIdx = idx
	}
	closeSpan := func(kind models.IntervalKind, end time.Time) {
		res.spans = append(res.spans, models.WorkInterval{Start: openStart, End: end, Kind: kind})
		mode = idle
		openIdx = -1
	}

	for i, ev := range events {
		switch ev.Direction {
		case models.PunchIn:
			switch mode {
			case idle:
				openAs(openWork, ev, i)
			case openWork:
				// Two ins in a row with no intervening out.
				if policy == ConflictDiscardLater {
					res.states[i] = stateDiscarded
					continue
				}
				res.states[openIdx] = stateDiscarded
				openAs(openWork, ev, i)
			case openBreak:
				closeSpan(models.IntervalBreak, ev.Time)
				openAs(openWork, ev, i)
			}
		case models.PunchOut:
			switch mode {
			case idle:
				res.states[i] = stateUnmatched
			case openWork:
				closeSpan(models.IntervalWork, ev.Time)
			case openBreak:
				closeSpan(models.IntervalBreak, ev.Time)
			}
		case models.PunchBreak:
			switch mode {
			case idle:
				openAs(openBreak, ev, i)
			case openWork:
				closeSpan(models.IntervalWork, ev.Time)
				openAs(openBreak, ev, i)
			case openBreak:
				// Second break ends the pause; work resumes.
				closeSpan(models.IntervalBreak, ev.Time)
				openAs(openWork, ev, i)
			}
		}
	}

	if mode != idle {
		kind := models.IntervalWork
		if mode == openBreak {
			kind = models.IntervalBreak
		}
		if isToday {
			// Day still in progress: partial span without a checkout.
			res.spans = append(res.spans, models.WorkInterval{Start: openStart, Kind: kind, Open: true})
		} else {
			// Past day: infer the end from the day's last known event.
			end := events[len(events)-1].Time
			res.spans = append(res.spans, models.WorkInterval{Start: openStart, End: end, Kind: kind})
			res.states[openIdx] = stateAdjacent
			res.synthesized = append(res.synthesized, models.AnnotatedPunch{
				Time:       end,
				Direction:  models.PunchOut,
				DeviceID:   events[openIdx].DeviceID,
				Confidence: models.ConfidenceLow,
				Inferred:   true,
			})
			res.inferred = true
		}
	}

	var leftovers []models.PunchEvent
	for i, st := range res.states {
		if st == stateDiscarded || st == stateUnmatched {
			leftovers = append(leftovers, events[i])
		}
	}
	return res, leftovers
}
