package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/zeroslashagency/epsilon-attendance-api/internal/models"
)

// PunchLogRepository stores raw device punch logs. Logs are append-only input
// synced from the scan devices; rows are inserted once and never updated or
// deleted.
type PunchLogRepository struct {
	db *sqlx.DB
}

// NewPunchLogRepository constructs the repository.
func NewPunchLogRepository(db *sqlx.DB) *PunchLogRepository {
	return &PunchLogRepository{db: db}
}

// ListByEmployeeDay returns all punch events for one employee on one calendar
// date, ordered by time ascending.
func (r *PunchLogRepository) ListByEmployeeDay(ctx context.Context, employeeCode string, date time.Time) ([]models.PunchEvent, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	query := `SELECT id, employee_code, log_date, punch_direction, serial_number, temperature, synced_at
FROM punch_logs
WHERE employee_code = $1 AND log_date >= $2 AND log_date < $3
ORDER BY log_date ASC, id ASC`

	var events []models.PunchEvent
	if err := r.db.SelectContext(ctx, &events, query, employeeCode, dayStart, dayEnd); err != nil {
		return nil, fmt.Errorf("list punch logs for %s on %s: %w", employeeCode, date.Format("2006-01-02"), err)
	}
	return events, nil
}

// InsertBatch stores a batch of synced punch events. Devices re-deliver scans
// on reconnect, so rows already present are skipped; the returned count covers
// newly inserted rows only.
func (r *PunchLogRepository) InsertBatch(ctx context.Context, events []models.PunchEvent) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	values := make([]string, 0, len(events))
	args := make([]interface{}, 0, len(events)*5)
	for i, ev := range events {
		base := i * 5
		values = append(values, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d)", base+1, base+2, base+3, base+4, base+5))
		args = append(args, ev.EmployeeCode, ev.Time, ev.Direction, ev.DeviceID, ev.Temperature)
	}

	query := fmt.Sprintf(`INSERT INTO punch_logs (employee_code, log_date, punch_direction, serial_number, temperature)
VALUES %s
ON CONFLICT (employee_code, log_date, punch_direction, serial_number) DO NOTHING`, strings.Join(values, ", "))

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("insert punch logs: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count inserted punch logs: %w", err)
	}
	return int(inserted), nil
}

// List returns punch events matching the provided filter with pagination.
func (r *PunchLogRepository) List(ctx context.Context, filter models.PunchEventFilter) ([]models.PunchEvent, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.EmployeeCode != "" {
		where = append(where, fmt.Sprintf("employee_code = $%d", len(args)+1))
		args = append(args, filter.EmployeeCode)
	}
	if filter.DateFrom != nil {
		where = append(where, fmt.Sprintf("log_date >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		where = append(where, fmt.Sprintf("log_date <= $%d", len(args)+1))
		args = append(args, *filter.DateTo)
	}
	if filter.Direction != nil && filter.Direction.Valid() {
		where = append(where, fmt.Sprintf("punch_direction = $%d", len(args)+1))
		args = append(args, *filter.Direction)
	}
	whereClause := strings.Join(where, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 500 {
		size = 100
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT id, employee_code, log_date, punch_direction, serial_number, temperature, synced_at
FROM punch_logs
WHERE %s
ORDER BY log_date DESC, id DESC
LIMIT %d OFFSET %d`, whereClause, size, offset)

	var events []models.PunchEvent
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list punch logs: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM punch_logs WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count punch logs: %w", err)
	}
	return events, total, nil
}

// DistinctEmployeeCodes returns the employee codes that logged at least one
// punch in the inclusive date range. Used by team rollups and report jobs.
func (r *PunchLogRepository) DistinctEmployeeCodes(ctx context.Context, from, to time.Time) ([]string, error) {
	query := `SELECT DISTINCT employee_code FROM punch_logs
WHERE log_date >= $1 AND log_date < $2
ORDER BY employee_code ASC`
	end := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, to.Location()).AddDate(0, 0, 1)

	var codes []string
	if err := r.db.SelectContext(ctx, &codes, query, from, end); err != nil {
		return nil, fmt.Errorf("distinct punch employee codes: %w", err)
	}
	return codes, nil
}
