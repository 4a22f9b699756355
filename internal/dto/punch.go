package dto

import "time"

// PunchIngestEvent is one raw scan in a device sync batch.
type PunchIngestEvent struct {
	EmployeeCode string    `json:"employee_code" validate:"required"`
	Time         time.Time `json:"time" validate:"required"`
	Direction    string    `json:"direction" validate:"required,oneof=in out break"`
	DeviceID     string    `json:"device_id" validate:"required"`
	Temperature  *float64  `json:"temperature"`
}

// PunchIngestRequest captures POST /punch-logs payload.
type PunchIngestRequest struct {
	Events []PunchIngestEvent `json:"events" validate:"required,dive"`
}

// PunchIngestResponse reports how a sync batch was absorbed.
type PunchIngestResponse struct {
	Received       int `json:"received"`
	Inserted       int `json:"inserted"`
	Duplicates     int `json:"duplicates"`
	RebuildsQueued int `json:"rebuilds_queued"`
}
