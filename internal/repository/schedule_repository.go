package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/zeroslashagency/epsilon-attendance-api/internal/models"
)

// ScheduleRepository reads shift assignments and approved leave records.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository constructs the repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// AssignmentFor returns the shift assignment effective for the employee on the
// given date, or nil when none exists.
func (r *ScheduleRepository) AssignmentFor(ctx context.Context, employeeCode string, date time.Time) (*models.ShiftAssignment, error) {
	query := `SELECT id, employee_code, start_minutes, end_minutes, grace_minutes, effective_at, created_at
FROM shift_assignments
WHERE employee_code = $1 AND effective_at <= $2
ORDER BY effective_at DESC
LIMIT 1`

	var assignment models.ShiftAssignment
	if err := r.db.GetContext(ctx, &assignment, query, employeeCode, date); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("shift assignment for %s: %w", employeeCode, err)
	}
	return &assignment, nil
}

// LeaveFor returns the approved leave covering the employee-day, or nil.
func (r *ScheduleRepository) LeaveFor(ctx context.Context, employeeCode string, date time.Time) (*models.LeaveRecord, error) {
	query := `SELECT id, employee_code, leave_type, start_date, end_date, created_at
FROM leave_records
WHERE employee_code = $1 AND start_date <= $2 AND end_date >= $2
ORDER BY created_at DESC
LIMIT 1`

	var leave models.LeaveRecord
	if err := r.db.GetContext(ctx, &leave, query, employeeCode, date); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("leave record for %s: %w", employeeCode, err)
	}
	return &leave, nil
}

// ListLeaveRange returns approved leave overlapping the inclusive range.
func (r *ScheduleRepository) ListLeaveRange(ctx context.Context, employeeCode string, from, to time.Time) ([]models.LeaveRecord, error) {
	query := `SELECT id, employee_code, leave_type, start_date, end_date, created_at
FROM leave_records
WHERE employee_code = $1 AND start_date <= $2 AND end_date >= $3
ORDER BY start_date ASC`

	var records []models.LeaveRecord
	if err := r.db.SelectContext(ctx, &records, query, employeeCode, to, from); err != nil {
		return nil, fmt.Errorf("list leave records: %w", err)
	}
	return records, nil
}
