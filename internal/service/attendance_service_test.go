package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zeroslashagency/epsilon-attendance-api/internal/engine"
	"github.com/zeroslashagency/epsilon-attendance-api/internal/models"
	appErrors "github.com/zeroslashagency/epsilon-attendance-api/pkg/errors"
)

type mockPunchReader struct {
	events map[string][]models.PunchEvent
	calls  int
}

func (m *mockPunchReader) ListByEmployeeDay(ctx context.Context, employeeCode string, date time.Time) ([]models.PunchEvent, error) {
	m.calls++
	return m.events[date.Format("2006-01-02")], nil
}

type mockAttendanceStore struct {
	upserted []models.DayRecord
	stored   map[string]models.DayRecordRow
	getErr   error
}

func (m *mockAttendanceStore) UpsertDayRecord(ctx context.Context, record models.DayRecord) (*models.DayRecordRow, error) {
	m.upserted = append(m.upserted, record)
	row := models.DayRecordRow{
		EmployeeCode: record.EmployeeCode,
		Date:         record.Date,
		Status:       record.Status,
		Payload:      models.DayRecordPayload{DayRecord: record},
	}
	if m.stored == nil {
		m.stored = make(map[string]models.DayRecordRow)
	}
	m.stored[record.Date.Format("2006-01-02")] = row
	return &row, nil
}

func (m *mockAttendanceStore) GetDayRecord(ctx context.Context, employeeCode string, date time.Time) (*models.DayRecordRow, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	row, ok := m.stored[date.Format("2006-01-02")]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no record")
	}
	return &row, nil
}

func (m *mockAttendanceStore) ListRange(ctx context.Context, employeeCode string, from, to time.Time) ([]models.DayRecordRow, error) {
	var rows []models.DayRecordRow
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		if row, ok := m.stored[day.Format("2006-01-02")]; ok {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

type mockShiftResolver struct {
	info models.ShiftInfo
}

func (m *mockShiftResolver) ResolveDay(ctx context.Context, employeeCode string, date time.Time) (models.ShiftInfo, error) {
	return m.info, nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestAttendanceService(punches *mockPunchReader, store *mockAttendanceStore, now time.Time) *AttendanceService {
	eng := engine.New(engine.Config{}).WithClock(fixedClock(now))
	shifts := &mockShiftResolver{info: models.ShiftInfo{
		Window: models.ShiftWindow{StartMinutes: 9 * 60, EndMinutes: 18 * 60, GraceMinutes: 10},
	}}
	return NewAttendanceService(punches, store, shifts, eng, nil, nil, zap.NewNop(), time.Minute).WithClock(fixedClock(now))
}

func TestAttendanceServiceRebuildDayPersists(t *testing.T) {
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	punches := &mockPunchReader{events: map[string][]models.PunchEvent{
		"2026-03-10": {
			{EmployeeCode: "EMP-001", Time: date.Add(9 * time.Hour), Direction: models.PunchIn, DeviceID: "d1"},
			{EmployeeCode: "EMP-001", Time: date.Add(17 * time.Hour), Direction: models.PunchOut, DeviceID: "d1"},
		},
	}}
	store := &mockAttendanceStore{}
	svc := newTestAttendanceService(punches, store, date.AddDate(0, 0, 1))

	record, err := svc.RebuildDay(context.Background(), "EMP-001", date)
	require.NoError(t, err)

	assert.Equal(t, models.StatusPresent, record.Status)
	assert.Equal(t, "8:00", record.TotalHours)
	require.Len(t, store.upserted, 1)
	assert.Equal(t, record.Status, store.upserted[0].Status)
}

func TestAttendanceServiceGetDayRebuildsWhenMissing(t *testing.T) {
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	punches := &mockPunchReader{}
	store := &mockAttendanceStore{}
	svc := newTestAttendanceService(punches, store, date.AddDate(0, 0, 1))

	record, err := svc.GetDay(context.Background(), "EMP-001", date)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAbsent, record.Status)
	assert.Len(t, store.upserted, 1)
}

func TestAttendanceServiceGetDayUsesStored(t *testing.T) {
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	punches := &mockPunchReader{}
	store := &mockAttendanceStore{stored: map[string]models.DayRecordRow{
		"2026-03-10": {
			EmployeeCode: "EMP-001",
			Date:         date,
			Status:       models.StatusLate,
			Payload: models.DayRecordPayload{DayRecord: models.DayRecord{
				EmployeeCode: "EMP-001",
				Date:         date,
				Status:       models.StatusLate,
			}},
		},
	}}
	svc := newTestAttendanceService(punches, store, date.AddDate(0, 0, 1))

	record, err := svc.GetDay(context.Background(), "EMP-001", date)
	require.NoError(t, err)
	assert.Equal(t, models.StatusLate, record.Status)
	assert.Zero(t, punches.calls)
}

func TestAttendanceServiceGetRangeRebuildsMissingAndSkipsFuture(t *testing.T) {
	from := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

	punches := &mockPunchReader{events: map[string][]models.PunchEvent{
		"2026-03-09": {
			{EmployeeCode: "EMP-001", Time: time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC), Direction: models.PunchIn, DeviceID: "d1"},
			{EmployeeCode: "EMP-001", Time: time.Date(2026, 3, 9, 17, 0, 0, 0, time.UTC), Direction: models.PunchOut, DeviceID: "d1"},
		},
	}}
	store := &mockAttendanceStore{}
	svc := newTestAttendanceService(punches, store, now)

	result, err := svc.GetRange(context.Background(), "EMP-001", from, to)
	require.NoError(t, err)

	// 9th and 10th only; the 11th and 12th are in the future.
	require.Len(t, result.Records, 2)
	assert.Equal(t, models.StatusPresent, result.Records[0].Status)
	assert.Equal(t, 2, result.Summary.TotalDays)
	assert.Equal(t, "8:00", result.Summary.TotalHours)
}

func TestAttendanceServiceGetRangeRejectsInvertedRange(t *testing.T) {
	svc := newTestAttendanceService(&mockPunchReader{}, &mockAttendanceStore{}, time.Now())

	_, err := svc.GetRange(context.Background(),
		"EMP-001",
		time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
