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

type mockScheduleRepo struct {
	assignment *models.ShiftAssignment
	leave      *models.LeaveRecord
}

func (m *mockScheduleRepo) AssignmentFor(ctx context.Context, employeeCode string, date time.Time) (*models.ShiftAssignment, error) {
	return m.assignment, nil
}

func (m *mockScheduleRepo) LeaveFor(ctx context.Context, employeeCode string, date time.Time) (*models.LeaveRecord, error) {
	return m.leave, nil
}

func (m *mockScheduleRepo) ListLeaveRange(ctx context.Context, employeeCode string, from, to time.Time) ([]models.LeaveRecord, error) {
	return nil, nil
}

func TestScheduleServiceFallbackWindow(t *testing.T) {
	svc, err := NewScheduleService(&mockScheduleRepo{}, "09:00", "18:00", 10, zap.NewNop())
	require.NoError(t, err)

	info, err := svc.ResolveDay(context.Background(), "EMP-001", time.Now())
	require.NoError(t, err)

	assert.True(t, info.Fallback)
	assert.False(t, info.OnLeave)
	assert.Equal(t, 9*60, info.Window.StartMinutes)
	assert.Equal(t, 18*60, info.Window.EndMinutes)
	assert.Equal(t, 10, info.Window.GraceMinutes)
}

func TestScheduleServiceAssignmentWins(t *testing.T) {
	repo := &mockScheduleRepo{assignment: &models.ShiftAssignment{
		EmployeeCode: "EMP-001",
		ShiftWindow:  models.ShiftWindow{StartMinutes: 7 * 60, EndMinutes: 15 * 60, GraceMinutes: 5},
	}}
	svc, err := NewScheduleService(repo, "09:00", "18:00", 10, zap.NewNop())
	require.NoError(t, err)

	info, err := svc.ResolveDay(context.Background(), "EMP-001", time.Now())
	require.NoError(t, err)
	assert.False(t, info.Fallback)
	assert.Equal(t, 7*60, info.Window.StartMinutes)
	assert.Equal(t, 5, info.Window.GraceMinutes)
}

func TestScheduleServiceLeaveShortCircuits(t *testing.T) {
	repo := &mockScheduleRepo{
		assignment: &models.ShiftAssignment{ShiftWindow: models.ShiftWindow{StartMinutes: 7 * 60, EndMinutes: 15 * 60}},
		leave:      &models.LeaveRecord{Type: models.LeaveSick},
	}
	svc, err := NewScheduleService(repo, "09:00", "18:00", 10, zap.NewNop())
	require.NoError(t, err)

	info, err := svc.ResolveDay(context.Background(), "EMP-001", time.Now())
	require.NoError(t, err)
	assert.True(t, info.OnLeave)
	assert.Equal(t, models.LeaveSick, info.Leave)
}

func TestNewScheduleServiceRejectsBadDefaults(t *testing.T) {
	_, err := NewScheduleService(&mockScheduleRepo{}, "junk", "18:00", 10, zap.NewNop())
	require.Error(t, err)

	_, err = NewScheduleService(&mockScheduleRepo{}, "18:00", "09:00", 10, zap.NewNop())
	require.Error(t, err)

	_, err = NewScheduleService(&mockScheduleRepo{}, "09:00", "18:00", -1, zap.NewNop())
	require.Error(t, err)
}

func TestNewScheduleServiceKeepsZeroGrace(t *testing.T) {
	svc, err := NewScheduleService(&mockScheduleRepo{}, "09:00", "18:00", 0, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 0, svc.DefaultWindow().GraceMinutes)
}

func TestParseClock(t *testing.T) {
	minutes, err := parseClock("09:30")
	require.NoError(t, err)
	assert.Equal(t, 570, minutes)

	_, err = parseClock("24:00")
	require.Error(t, err)
	_, err = parseClock("09:61")
	require.Error(t, err)
	_, err = parseClock("0930")
	require.Error(t, err)
}
