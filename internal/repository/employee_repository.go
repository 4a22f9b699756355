package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/zeroslashagency/epsilon-attendance-api/internal/models"
	appErrors "github.com/zeroslashagency/epsilon-attendance-api/pkg/errors"
)

// EmployeeRepository reads employee profiles.
type EmployeeRepository struct {
	db *sqlx.DB
}

// NewEmployeeRepository constructs the repository.
func NewEmployeeRepository(db *sqlx.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// GetByCode returns the employee identified by its badge code.
func (r *EmployeeRepository) GetByCode(ctx context.Context, employeeCode string) (*models.Employee, error) {
	query := `SELECT id, employee_code, full_name, email, role, location, join_date, active, created_at, updated_at
FROM employees WHERE employee_code = $1`

	var employee models.Employee
	if err := r.db.GetContext(ctx, &employee, query, employeeCode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return nil, fmt.Errorf("get employee %s: %w", employeeCode, err)
	}
	return &employee, nil
}

// List returns employees matching the filter with pagination.
func (r *EmployeeRepository) List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.Search != "" {
		where = append(where, fmt.Sprintf("(full_name ILIKE $%d OR employee_code ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.Active != nil {
		where = append(where, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	whereClause := strings.Join(where, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT id, employee_code, full_name, email, role, location, join_date, active, created_at, updated_at
FROM employees WHERE %s
ORDER BY full_name ASC
LIMIT %d OFFSET %d`, whereClause, size, offset)

	var employees []models.Employee
	if err := r.db.SelectContext(ctx, &employees, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list employees: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM employees WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count employees: %w", err)
	}
	return employees, total, nil
}

// ActiveCodes returns the badge codes of all active employees.
func (r *EmployeeRepository) ActiveCodes(ctx context.Context) ([]string, error) {
	var codes []string
	if err := r.db.SelectContext(ctx, &codes, `SELECT employee_code FROM employees WHERE active = true ORDER BY employee_code ASC`); err != nil {
		return nil, fmt.Errorf("list active employee codes: %w", err)
	}
	return codes, nil
}
