package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/zeroslashagency/epsilon-attendance-api/internal/dto"
	"github.com/zeroslashagency/epsilon-attendance-api/internal/models"
)

// DayRecordLister reads stored day records for dashboard rollups.
type DayRecordLister interface {
	ListByDate(ctx context.Context, date time.Time) ([]models.DayRecordRow, error)
	CountByStatus(ctx context.Context, date time.Time) (map[models.AttendanceStatus]int, error)
}

// EmployeeReader looks up employee profiles for dashboard rows.
type EmployeeReader interface {
	GetByCode(ctx context.Context, employeeCode string) (*models.Employee, error)
	ActiveCodes(ctx context.Context) ([]string, error)
}

// DashboardService aggregates reconstructed records into the team overview.
type DashboardService struct {
	records   DayRecordLister
	employees EmployeeReader
	cache     *CacheService
	logger    *zap.Logger
	cacheTTL  time.Duration
}

// NewDashboardService constructs the service.
func NewDashboardService(records DayRecordLister, employees EmployeeReader, cache *CacheService, logger *zap.Logger, cacheTTL time.Duration) *DashboardService {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &DashboardService{records: records, employees: employees, cache: cache, logger: logger, cacheTTL: cacheTTL}
}

// Overview builds the team dashboard for the given date. The attendance rate
// counts present and late against active headcount minus approved leave. The
// second return value reports whether the overview was served from cache.
func (s *DashboardService) Overview(ctx context.Context, date time.Time) (*dto.DashboardOverviewResponse, bool, error) {
	cacheKey := fmt.Sprintf("dashboard:overview:%s", date.Format("2006-01-02"))
	if s.cache != nil {
		var cached dto.DashboardOverviewResponse
		if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
			return &cached, true, nil
		}
	}

	codes, err := s.employees.ActiveCodes(ctx)
	if err != nil {
		return nil, false, err
	}
	rows, err := s.records.ListByDate(ctx, date)
	if err != nil {
		return nil, false, err
	}
	counts, err := s.records.CountByStatus(ctx, date)
	if err != nil {
		return nil, false, err
	}

	overview := &dto.DashboardOverviewResponse{
		Date:            date.Format("2006-01-02"),
		TotalEmployees:  len(codes),
		PresentCount:    counts[models.StatusPresent],
		LateCount:       counts[models.StatusLate],
		AbsentCount:     counts[models.StatusAbsent],
		SickCount:       counts[models.StatusSick],
		VacationCount:   counts[models.StatusVacation],
		StatusBreakdown: make(map[string]int, len(counts)),
		Records:         make([]dto.DashboardEmployeeRow, 0, len(rows)),
	}
	for status, count := range counts {
		overview.StatusBreakdown[string(status)] = count
	}

	for _, row := range rows {
		rec := row.Payload.DayRecord
		if rec.HasAmbiguousPunches {
			overview.AmbiguousCount++
		}
		line := dto.DashboardEmployeeRow{
			EmployeeCode:        row.EmployeeCode,
			Status:              rec.Status,
			TotalHours:          rec.TotalHours,
			Confidence:          rec.Confidence,
			HasAmbiguousPunches: rec.HasAmbiguousPunches,
		}
		if rec.CheckIn != nil {
			line.CheckIn = rec.CheckIn.Format("15:04")
		}
		if rec.CheckOut != nil {
			line.CheckOut = rec.CheckOut.Format("15:04")
		}
		if employee, err := s.employees.GetByCode(ctx, row.EmployeeCode); err == nil {
			line.FullName = employee.FullName
		}
		overview.Records = append(overview.Records, line)
	}

	workingHeadcount := len(codes) - counts[models.StatusSick] - counts[models.StatusVacation]
	if workingHeadcount > 0 {
		overview.AttendanceRate = float64(counts[models.StatusPresent]+counts[models.StatusLate]) / float64(workingHeadcount) * 100
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, cacheKey, overview, s.cacheTTL)
	}
	return overview, false, nil
}
