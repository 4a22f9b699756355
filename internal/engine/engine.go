// Package engine reconstructs canonical attendance day records from raw,
// unordered device punch streams. The pipeline is pure and deterministic:
// normalize -> pair intervals -> classify ambiguity -> resolve status ->
// assemble. Messy data (duplicates, missing punches) is the expected case and
// never an error; only events outside the target date are rejected.
package engine

import (
	"fmt"
	"time"

	"github.com/zeroslashagency/epsilon-attendance-api/internal/models"
	appErrors "github.com/zeroslashagency/epsilon-attendance-api/pkg/errors"
)

// ConflictPolicy decides which of two consecutive same-direction punches
// survives. The product intent behind this rule was never verified upstream,
// so the policy stays pluggable instead of hard-coded.
type ConflictPolicy string

const (
	// ConflictDiscardEarlier treats the earlier punch as a probable
	// duplicate and keeps the later one.
	ConflictDiscardEarlier ConflictPolicy = "discard_earlier"
	// ConflictDiscardLater keeps the earlier punch.
	ConflictDiscardLater ConflictPolicy = "discard_later"
)

// Config tunes reconstruction behaviour.
type Config struct {
	DefaultGraceMinutes int
	ConflictPolicy      ConflictPolicy
}

// Engine is the attendance reconstruction engine. It holds no mutable state
// between calls; concurrent reconstruction across employees and days is safe.
type Engine struct {
	cfg Config
	now func() time.Time
}

// New constructs an engine. Zero grace is a legitimate setting; only a
// negative value is treated as unset.
func New(cfg Config) *Engine {
	if cfg.DefaultGraceMinutes < 0 {
		cfg.DefaultGraceMinutes = 0
	}
	if cfg.ConflictPolicy == "" {
		cfg.ConflictPolicy = ConflictDiscardEarlier
	}
	return &Engine{cfg: cfg, now: time.Now}
}

// WithClock overrides the wall clock, pinning "today" for tests.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	if now != nil {
		e.now = now
	}
	return e
}

// ReconstructDay derives the canonical DayRecord for one employee and one
// calendar date from that day's raw punch events and resolved shift context.
// It either fully succeeds (possibly with low confidence) or fails the
// precondition check; it never raises for messy-but-valid punch data.
func (e *Engine) ReconstructDay(employeeCode string, date time.Time, events []models.PunchEvent, shift models.ShiftInfo) (*models.DayRecord, error) {
	day := truncateToDay(date)
	// "is today" is pinned once per reconstruction so every stage agrees.
	isToday := truncateToDay(e.now().In(day.Location())).Equal(day)

	normalized, err := normalize(events, day)
	if err != nil {
		return nil, err
	}

	intervals, leftovers := buildIntervals(normalized, day, isToday, e.cfg.ConflictPolicy)
	punches, confidence, ambiguous := classify(normalized, intervals, leftovers)

	// Negative means the window carries no explicit grace; zero stands.
	grace := shift.Window.GraceMinutes
	if grace < 0 {
		grace = e.cfg.DefaultGraceMinutes
	}
	window := shift.Window
	window.GraceMinutes = grace
	status := resolveStatus(intervals.spans, window, shift)

	return assemble(employeeCode, day, status, intervals.spans, punches, confidence, ambiguous), nil
}

// assemble composes the immutable DayRecord from the stage outputs. Pure
// field mapping: check-in/out from the earliest/latest work interval, total
// hours from work intervals only.
func assemble(employeeCode string, day time.Time, status models.AttendanceStatus, spans []models.WorkInterval, punches []models.AnnotatedPunch, confidence models.Confidence, ambiguous bool) *models.DayRecord {
	record := &models.DayRecord{
		EmployeeCode:        employeeCode,
		Date:                day,
		Status:              status,
		Intervals:           spans,
		PunchLogs:           punches,
		Confidence:          confidence,
		HasAmbiguousPunches: ambiguous,
	}

	var worked time.Duration
	for _, span := range spans {
		if span.Kind != models.IntervalWork {
			continue
		}
		worked += span.Duration()
		if record.CheckIn == nil || span.Start.Before(*record.CheckIn) {
			start := span.Start
			record.CheckIn = &start
		}
		if !span.Open && (record.CheckOut == nil || span.End.After(*record.CheckOut)) {
			end := span.End
			record.CheckOut = &end
		}
	}
	record.WorkedMinutes = int(worked / time.Minute)
	record.TotalHours = FormatDuration(worked)
	return record
}

// FormatDuration renders a duration as H:MM (e.g. "8:07").
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	minutes := int(d / time.Minute)
	return fmt.Sprintf("%d:%02d", minutes/60, minutes%60)
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func sameDay(t, day time.Time) bool {
	return truncateToDay(t.In(day.Location())).Equal(day)
}

func errOutsideDay(ev models.PunchEvent, day time.Time) error {
	return appErrors.Clone(appErrors.ErrValidation,
		fmt.Sprintf("punch at %s outside target date %s", ev.Time.Format(time.RFC3339), day.Format("2006-01-02")))
}
