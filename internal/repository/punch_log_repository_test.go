package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeroslashagency/epsilon-attendance-api/internal/models"
)

func punchColumns() []string {
	return []string{"id", "employee_code", "log_date", "punch_direction", "serial_number", "temperature", "synced_at"}
}

func TestPunchLogRepositoryInsertBatch(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPunchLogRepository(db)

	date := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	events := []models.PunchEvent{
		{EmployeeCode: "EMP-001", Time: date, Direction: models.PunchIn, DeviceID: "device-1"},
		{EmployeeCode: "EMP-001", Time: date.Add(8 * time.Hour), Direction: models.PunchOut, DeviceID: "device-1"},
	}

	// One row already present; ON CONFLICT skips it.
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO punch_logs")).
		WithArgs("EMP-001", date, models.PunchIn, "device-1", nil,
			"EMP-001", date.Add(8*time.Hour), models.PunchOut, "device-1", nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	inserted, err := repo.InsertBatch(context.Background(), events)
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPunchLogRepositoryInsertBatchEmpty(t *testing.T) {
	db, _, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPunchLogRepository(db)

	inserted, err := repo.InsertBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, inserted)
}

func TestPunchLogRepositoryListByEmployeeDay(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPunchLogRepository(db)

	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(punchColumns()).
		AddRow(1, "EMP-001", date.Add(9*time.Hour), "in", "device-1", nil, time.Now()).
		AddRow(2, "EMP-001", date.Add(17*time.Hour), "out", "device-1", nil, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("WHERE employee_code = $1 AND log_date >= $2 AND log_date < $3")).
		WithArgs("EMP-001", date, date.AddDate(0, 0, 1)).
		WillReturnRows(rows)

	events, err := repo.ListByEmployeeDay(context.Background(), "EMP-001", date)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, models.PunchIn, events[0].Direction)
	assert.Equal(t, models.PunchOut, events[1].Direction)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPunchLogRepositoryListWithFilter(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPunchLogRepository(db)

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	direction := models.PunchIn

	rows := sqlmock.NewRows(punchColumns()).
		AddRow(1, "EMP-001", from.Add(9*time.Hour), "in", "device-1", nil, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("employee_code = $1 AND log_date >= $2 AND punch_direction = $3")).
		WithArgs("EMP-001", from, direction).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM punch_logs")).
		WithArgs("EMP-001", from, direction).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	events, total, err := repo.List(context.Background(), models.PunchEventFilter{
		EmployeeCode: "EMP-001",
		DateFrom:     &from,
		Direction:    &direction,
		Page:         1,
		PageSize:     50,
	})
	require.NoError(t, err)
	assert.Len(t, events, 1)
	assert.Equal(t, 1, total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPunchLogRepositoryDistinctEmployeeCodes(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPunchLogRepository(db)

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"employee_code"}).AddRow("EMP-001").AddRow("EMP-002")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT employee_code FROM punch_logs")).
		WithArgs(from, to.AddDate(0, 0, 1)).
		WillReturnRows(rows)

	codes, err := repo.DistinctEmployeeCodes(context.Background(), from, to)
	require.NoError(t, err)
	assert.Equal(t, []string{"EMP-001", "EMP-002"}, codes)
	require.NoError(t, mock.ExpectationsWereMet())
}
