package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// AttendanceStatus is the closed set of reconstructed day statuses. Ambiguity
// is not a status: it travels alongside as DayRecord.HasAmbiguousPunches.
type AttendanceStatus string

const (
	StatusPresent  AttendanceStatus = "present"
	StatusLate     AttendanceStatus = "late"
	StatusAbsent   AttendanceStatus = "absent"
	StatusSick     AttendanceStatus = "sick"
	StatusVacation AttendanceStatus = "vacation"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case StatusPresent, StatusLate, StatusAbsent, StatusSick, StatusVacation:
		return true
	default:
		return false
	}
}

// IsLeave reports whether the status comes from an approved leave record
// rather than from punch data.
func (s AttendanceStatus) IsLeave() bool {
	return s == StatusSick || s == StatusVacation
}

// IntervalKind distinguishes worked spans from breaks.
type IntervalKind string

const (
	IntervalWork  IntervalKind = "work"
	IntervalBreak IntervalKind = "break"
)

// WorkInterval is a contiguous span of work or break time derived from paired
// punches. End is zero while the interval is still open (reference day with
// no checkout yet).
type WorkInterval struct {
	Start time.Time    `json:"start"`
	End   time.Time    `json:"end,omitempty"`
	Kind  IntervalKind `json:"kind"`
	Open  bool         `json:"open,omitempty"`
}

// Duration returns the interval length. Open intervals contribute zero.
func (w WorkInterval) Duration() time.Duration {
	if w.Open || w.End.Before(w.Start) {
		return 0
	}
	return w.End.Sub(w.Start)
}

// DayRecord is the reconstructed attendance record for one employee on one
// calendar date. The engine assembles it once per reconstruction; when new
// raw events arrive the caller re-runs the pipeline and replaces the record.
type DayRecord struct {
	EmployeeCode        string           `json:"employee_code"`
	Date                time.Time        `json:"date"`
	Status              AttendanceStatus `json:"status"`
	CheckIn             *time.Time       `json:"check_in,omitempty"`
	CheckOut            *time.Time       `json:"check_out,omitempty"`
	TotalHours          string           `json:"total_hours"`
	WorkedMinutes       int              `json:"worked_minutes"`
	Intervals           []WorkInterval   `json:"intervals"`
	PunchLogs           []AnnotatedPunch `json:"punch_logs"`
	Confidence          Confidence       `json:"confidence"`
	HasAmbiguousPunches bool             `json:"has_ambiguous_punches"`
}

// DayRecordRow is the persisted shape: the reconstructed record stored as a
// JSONB payload keyed by employee and date.
type DayRecordRow struct {
	ID           string           `db:"id" json:"id"`
	EmployeeCode string           `db:"employee_code" json:"employee_code"`
	Date         time.Time        `db:"date" json:"date"`
	Status       AttendanceStatus `db:"status" json:"status"`
	Payload      DayRecordPayload `db:"payload" json:"payload"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time        `db:"updated_at" json:"updated_at"`
}

// DayRecordPayload wraps DayRecord for JSONB persistence.
type DayRecordPayload struct {
	DayRecord
}

// Value marshals the payload to JSON for persistence.
func (p DayRecordPayload) Value() (driver.Value, error) {
	data, err := json.Marshal(p.DayRecord)
	if err != nil {
		return nil, fmt.Errorf("marshal day record payload: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSON payloads into the day record.
func (p *DayRecordPayload) Scan(value interface{}) error {
	if value == nil {
		*p = DayRecordPayload{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for DayRecordPayload", value)
	}
	if len(data) == 0 {
		*p = DayRecordPayload{}
		return nil
	}
	if err := json.Unmarshal(data, &p.DayRecord); err != nil {
		return fmt.Errorf("unmarshal day record payload: %w", err)
	}
	return nil
}

// PeriodSummary aggregates a set of DayRecords over a date range. It is
// always recomputable from the records and never persisted on its own.
type PeriodSummary struct {
	From            time.Time `json:"from"`
	To              time.Time `json:"to"`
	TotalDays       int       `json:"total_days"`
	WorkingDays     int       `json:"working_days"`
	PresentDays     int       `json:"present_days"`
	LateDays        int       `json:"late_days"`
	AbsentDays      int       `json:"absent_days"`
	SickDays        int       `json:"sick_days"`
	VacationDays    int       `json:"vacation_days"`
	AmbiguousDays   int       `json:"ambiguous_days"`
	TotalHours      string    `json:"total_hours"`
	TotalMinutes    int       `json:"total_minutes"`
	AverageHours    string    `json:"average_hours"`
	AttendanceRate  int       `json:"attendance_rate"`
	AverageCheckIn  string    `json:"avg_check_in,omitempty"`
	AverageCheckOut string    `json:"avg_check_out,omitempty"`
}
