package dto

import "github.com/zeroslashagency/epsilon-attendance-api/internal/models"

// DayQuery captures GET /attendance/{employeeCode}/day parameters.
type DayQuery struct {
	Date string `form:"date" validate:"required,datetime=2006-01-02"`
}

// RangeQuery captures GET /attendance/{employeeCode} parameters.
type RangeQuery struct {
	From string `form:"from" validate:"required,datetime=2006-01-02"`
	To   string `form:"to" validate:"required,datetime=2006-01-02"`
}

// RebuildRequest captures POST /attendance/{employeeCode}/rebuild payload.
type RebuildRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
}

// DayResponse wraps a reconstructed day record.
type DayResponse struct {
	Record models.DayRecord `json:"record"`
}

// RangeResponse wraps per-day records plus the period summary.
type RangeResponse struct {
	Records []models.DayRecord   `json:"records"`
	Summary models.PeriodSummary `json:"summary"`
}

// StatsResponse wraps the period summary without the per-day records.
type StatsResponse struct {
	Summary models.PeriodSummary `json:"summary"`
}
