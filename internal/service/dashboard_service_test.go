package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zeroslashagency/epsilon-attendance-api/internal/models"
)

type mockDayRecordLister struct {
	rows   []models.DayRecordRow
	counts map[models.AttendanceStatus]int
}

func (m *mockDayRecordLister) ListByDate(ctx context.Context, date time.Time) ([]models.DayRecordRow, error) {
	return m.rows, nil
}

func (m *mockDayRecordLister) CountByStatus(ctx context.Context, date time.Time) (map[models.AttendanceStatus]int, error) {
	return m.counts, nil
}

type mockEmployeeReader struct {
	codes     []string
	employees map[string]*models.Employee
}

func (m *mockEmployeeReader) GetByCode(ctx context.Context, employeeCode string) (*models.Employee, error) {
	if e, ok := m.employees[employeeCode]; ok {
		return e, nil
	}
	return nil, context.Canceled
}

func (m *mockEmployeeReader) ActiveCodes(ctx context.Context) ([]string, error) {
	return m.codes, nil
}

func dashboardRow(code string, status models.AttendanceStatus, ambiguous bool) models.DayRecordRow {
	checkIn := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	return models.DayRecordRow{
		EmployeeCode: code,
		Status:       status,
		Payload: models.DayRecordPayload{DayRecord: models.DayRecord{
			EmployeeCode:        code,
			Status:              status,
			CheckIn:             &checkIn,
			TotalHours:          "8:00",
			Confidence:          models.ConfidenceHigh,
			HasAmbiguousPunches: ambiguous,
		}},
	}
}

func TestDashboardOverview(t *testing.T) {
	records := &mockDayRecordLister{
		rows: []models.DayRecordRow{
			dashboardRow("EMP-001", models.StatusPresent, false),
			dashboardRow("EMP-002", models.StatusLate, true),
		},
		counts: map[models.AttendanceStatus]int{
			models.StatusPresent:  1,
			models.StatusLate:     1,
			models.StatusAbsent:   1,
			models.StatusVacation: 1,
		},
	}
	employees := &mockEmployeeReader{
		codes: []string{"EMP-001", "EMP-002", "EMP-003", "EMP-004"},
		employees: map[string]*models.Employee{
			"EMP-001": {EmployeeCode: "EMP-001", FullName: "Ada Example"},
		},
	}
	svc := NewDashboardService(records, employees, nil, zap.NewNop(), time.Minute)

	overview, cached, err := svc.Overview(context.Background(), time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, cached)

	assert.Equal(t, "2026-03-10", overview.Date)
	assert.Equal(t, 4, overview.TotalEmployees)
	assert.Equal(t, 1, overview.PresentCount)
	assert.Equal(t, 1, overview.LateCount)
	assert.Equal(t, 1, overview.AbsentCount)
	assert.Equal(t, 1, overview.VacationCount)
	assert.Equal(t, 1, overview.AmbiguousCount)

	// 2 attended of 3 working (vacation excluded from headcount).
	assert.InDelta(t, 66.67, overview.AttendanceRate, 0.01)

	require.Len(t, overview.Records, 2)
	assert.Equal(t, "Ada Example", overview.Records[0].FullName)
	assert.Equal(t, "09:00", overview.Records[0].CheckIn)
	assert.Empty(t, overview.Records[1].FullName)
}

func TestDashboardOverviewEmptyDay(t *testing.T) {
	records := &mockDayRecordLister{counts: map[models.AttendanceStatus]int{}}
	employees := &mockEmployeeReader{codes: []string{"EMP-001"}}
	svc := NewDashboardService(records, employees, nil, zap.NewNop(), time.Minute)

	overview, _, err := svc.Overview(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, overview.AttendanceRate)
	assert.Empty(t, overview.Records)
}
