package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/zeroslashagency/epsilon-attendance-api/internal/models"
	appErrors "github.com/zeroslashagency/epsilon-attendance-api/pkg/errors"
)

// AttendanceRepository persists reconstructed day records as JSONB payloads
// keyed by employee and date.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// UpsertDayRecord replaces the stored record for the employee-day. Records are
// fully rebuilt by the engine, so the whole payload is overwritten.
func (r *AttendanceRepository) UpsertDayRecord(ctx context.Context, record models.DayRecord) (*models.DayRecordRow, error) {
	now := time.Now().UTC()
	row := models.DayRecordRow{
		ID:           uuid.NewString(),
		EmployeeCode: record.EmployeeCode,
		Date:         record.Date,
		Status:       record.Status,
		Payload:      models.DayRecordPayload{DayRecord: record},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	query := `INSERT INTO attendance_days (id, employee_code, date, status, payload, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (employee_code, date)
DO UPDATE SET status = EXCLUDED.status, payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at
RETURNING id, employee_code, date, status, payload, created_at, updated_at`

	var stored models.DayRecordRow
	if err := r.db.GetContext(ctx, &stored, query,
		row.ID, row.EmployeeCode, row.Date, row.Status, row.Payload, row.CreatedAt, row.UpdatedAt); err != nil {
		return nil, fmt.Errorf("upsert attendance day: %w", err)
	}
	return &stored, nil
}

// GetDayRecord returns the stored record for the employee-day.
func (r *AttendanceRepository) GetDayRecord(ctx context.Context, employeeCode string, date time.Time) (*models.DayRecordRow, error) {
	query := `SELECT id, employee_code, date, status, payload, created_at, updated_at
FROM attendance_days
WHERE employee_code = $1 AND date = $2`

	var row models.DayRecordRow
	if err := r.db.GetContext(ctx, &row, query, employeeCode, date); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "attendance record not found")
		}
		return nil, fmt.Errorf("get attendance day: %w", err)
	}
	return &row, nil
}

// ListRange returns stored records for the employee within the inclusive date
// range ordered by date ascending.
func (r *AttendanceRepository) ListRange(ctx context.Context, employeeCode string, from, to time.Time) ([]models.DayRecordRow, error) {
	query := `SELECT id, employee_code, date, status, payload, created_at, updated_at
FROM attendance_days
WHERE employee_code = $1 AND date >= $2 AND date <= $3
ORDER BY date ASC`

	var rows []models.DayRecordRow
	if err := r.db.SelectContext(ctx, &rows, query, employeeCode, from, to); err != nil {
		return nil, fmt.Errorf("list attendance range: %w", err)
	}
	return rows, nil
}

// ListByDate returns every stored record for the given date.
func (r *AttendanceRepository) ListByDate(ctx context.Context, date time.Time) ([]models.DayRecordRow, error) {
	query := `SELECT id, employee_code, date, status, payload, created_at, updated_at
FROM attendance_days
WHERE date = $1
ORDER BY employee_code ASC`

	var rows []models.DayRecordRow
	if err := r.db.SelectContext(ctx, &rows, query, date); err != nil {
		return nil, fmt.Errorf("list attendance by date: %w", err)
	}
	return rows, nil
}

// CountByStatus aggregates stored records by status for the given date.
func (r *AttendanceRepository) CountByStatus(ctx context.Context, date time.Time) (map[models.AttendanceStatus]int, error) {
	query := `SELECT status, COUNT(*) AS cnt FROM attendance_days WHERE date = $1 GROUP BY status`
	rows := []struct {
		Status models.AttendanceStatus `db:"status"`
		Count  int                     `db:"cnt"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query, date); err != nil {
		return nil, fmt.Errorf("count attendance by status: %w", err)
	}
	counts := make(map[models.AttendanceStatus]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
