package dto

import "github.com/zeroslashagency/epsilon-attendance-api/internal/models"

// DashboardOverviewResponse captures the aggregated team dashboard payload
// for one date.
type DashboardOverviewResponse struct {
	Date            string                 `json:"date"`
	TotalEmployees  int                    `json:"totalEmployees"`
	PresentCount    int                    `json:"presentCount"`
	LateCount       int                    `json:"lateCount"`
	AbsentCount     int                    `json:"absentCount"`
	SickCount       int                    `json:"sickCount"`
	VacationCount   int                    `json:"vacationCount"`
	AmbiguousCount  int                    `json:"ambiguousCount"`
	AttendanceRate  float64                `json:"attendanceRate"`
	Records         []DashboardEmployeeRow `json:"records"`
	StatusBreakdown map[string]int         `json:"statusBreakdown"`
}

// DashboardEmployeeRow is one employee line on the team dashboard.
type DashboardEmployeeRow struct {
	EmployeeCode        string                  `json:"employeeCode"`
	FullName            string                  `json:"fullName"`
	Status              models.AttendanceStatus `json:"status"`
	CheckIn             string                  `json:"checkIn,omitempty"`
	CheckOut            string                  `json:"checkOut,omitempty"`
	TotalHours          string                  `json:"totalHours"`
	Confidence          models.Confidence       `json:"confidence"`
	HasAmbiguousPunches bool                    `json:"hasAmbiguousPunches"`
}
