package models

import "time"

// PunchDirection enumerates raw device scan directions.
type PunchDirection string

const (
	PunchIn    PunchDirection = "in"
	PunchOut   PunchDirection = "out"
	PunchBreak PunchDirection = "break"
)

// Valid returns true when the direction is a supported value.
func (d PunchDirection) Valid() bool {
	switch d {
	case PunchIn, PunchOut, PunchBreak:
		return true
	default:
		return false
	}
}

// Closes reports whether the direction terminates an open span. The
// normalizer tie-break relies on this: closers sort before openers at equal
// timestamps.
func (d PunchDirection) Closes() bool {
	return d == PunchOut || d == PunchBreak
}

// PunchEvent is one raw device scan as delivered by the ingestion sync.
// Events are read-only input to the reconstruction engine and never mutated.
type PunchEvent struct {
	ID           int64          `db:"id" json:"id"`
	EmployeeCode string         `db:"employee_code" json:"employee_code"`
	Time         time.Time      `db:"log_date" json:"time"`
	Direction    PunchDirection `db:"punch_direction" json:"direction"`
	DeviceID     string         `db:"serial_number" json:"device_id"`
	Temperature  *float64       `db:"temperature" json:"temperature,omitempty"`
	SyncedAt     time.Time      `db:"synced_at" json:"synced_at"`
}

// PunchEventFilter scopes raw log listing queries.
type PunchEventFilter struct {
	EmployeeCode string
	DateFrom     *time.Time
	DateTo       *time.Time
	Direction    *PunchDirection
	Page         int
	PageSize     int
}

// Confidence grades how certain the engine is about a derived value.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

func (c Confidence) rank() int {
	switch c {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	default:
		return 1
	}
}

// Min returns the lower of the two confidence levels.
func (c Confidence) Min(other Confidence) Confidence {
	if other.rank() < c.rank() {
		return other
	}
	return c
}

// AnnotatedPunch is a source punch event decorated by the classifier with a
// per-event confidence and an inferred flag for synthesized checkouts.
type AnnotatedPunch struct {
	Time       time.Time      `json:"time"`
	Direction  PunchDirection `json:"direction"`
	DeviceID   string         `json:"device_id"`
	Confidence Confidence     `json:"confidence"`
	Inferred   bool           `json:"inferred,omitempty"`
	Discarded  bool           `json:"discarded,omitempty"`
}
