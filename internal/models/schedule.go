package models

import (
	"fmt"
	"time"
)

// LeaveType enumerates approved leave categories.
type LeaveType string

const (
	LeaveSick     LeaveType = "sick"
	LeaveVacation LeaveType = "vacation"
)

// Status maps the leave category onto the day status it short-circuits to.
func (l LeaveType) Status() AttendanceStatus {
	if l == LeaveVacation {
		return StatusVacation
	}
	return StatusSick
}

// ShiftWindow is the expected working window for an employee on a day.
// Start and End are minutes since midnight so the window stays independent of
// the concrete date being reconstructed.
type ShiftWindow struct {
	StartMinutes int `db:"start_minutes" json:"start_minutes"`
	EndMinutes   int `db:"end_minutes" json:"end_minutes"`
	GraceMinutes int `db:"grace_minutes" json:"grace_minutes"`
}

// StartOn anchors the shift start on the given calendar date.
func (w ShiftWindow) StartOn(date time.Time) time.Time {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	return day.Add(time.Duration(w.StartMinutes) * time.Minute)
}

// LateCutoff returns the last on-time instant: shift start plus grace.
func (w ShiftWindow) LateCutoff(date time.Time) time.Time {
	return w.StartOn(date).Add(time.Duration(w.GraceMinutes) * time.Minute)
}

func (w ShiftWindow) String() string {
	return fmt.Sprintf("%02d:%02d-%02d:%02d+%dm",
		w.StartMinutes/60, w.StartMinutes%60, w.EndMinutes/60, w.EndMinutes%60, w.GraceMinutes)
}

// ShiftInfo is the resolved scheduling context for one employee-day: either
// an expected shift window or an approved leave. Fallback marks windows
// substituted by the default-shift fallback when no assignment was found.
type ShiftInfo struct {
	Window   ShiftWindow `json:"window"`
	OnLeave  bool        `json:"on_leave"`
	Leave    LeaveType   `json:"leave,omitempty"`
	Fallback bool        `json:"fallback,omitempty"`
}

// ShiftAssignment is a persisted employee shift row. ShiftWindow is embedded
// so sqlx flattens the window columns onto the row.
type ShiftAssignment struct {
	ID           string `db:"id" json:"id"`
	EmployeeCode string `db:"employee_code" json:"employee_code"`
	ShiftWindow
	EffectiveAt time.Time `db:"effective_at" json:"effective_at"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// LeaveRecord is a persisted approved leave row spanning inclusive dates.
type LeaveRecord struct {
	ID           string    `db:"id" json:"id"`
	EmployeeCode string    `db:"employee_code" json:"employee_code"`
	Type         LeaveType `db:"leave_type" json:"type"`
	StartDate    time.Time `db:"start_date" json:"start_date"`
	EndDate      time.Time `db:"end_date" json:"end_date"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
