package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/zeroslashagency/epsilon-attendance-api/internal/models"
)

// ScheduleRepository abstracts shift assignment and leave lookups.
type ScheduleRepository interface {
	AssignmentFor(ctx context.Context, employeeCode string, date time.Time) (*models.ShiftAssignment, error)
	LeaveFor(ctx context.Context, employeeCode string, date time.Time) (*models.LeaveRecord, error)
	ListLeaveRange(ctx context.Context, employeeCode string, from, to time.Time) ([]models.LeaveRecord, error)
}

// ScheduleService resolves the scheduling context for an employee-day. When no
// shift assignment exists the configured default window is substituted and the
// result is flagged as a fallback.
type ScheduleService struct {
	repo          ScheduleRepository
	defaultWindow models.ShiftWindow
	logger        *zap.Logger
}

// NewScheduleService constructs the service. Start and end are "HH:MM" company
// defaults applied when an employee has no explicit assignment.
func NewScheduleService(repo ScheduleRepository, defaultStart, defaultEnd string, graceMinutes int, logger *zap.Logger) (*ScheduleService, error) {
	start, err := parseClock(defaultStart)
	if err != nil {
		return nil, fmt.Errorf("default shift start: %w", err)
	}
	end, err := parseClock(defaultEnd)
	if err != nil {
		return nil, fmt.Errorf("default shift end: %w", err)
	}
	if end <= start {
		return nil, fmt.Errorf("default shift end %q not after start %q", defaultEnd, defaultStart)
	}
	if graceMinutes < 0 {
		return nil, fmt.Errorf("negative grace minutes %d", graceMinutes)
	}
	return &ScheduleService{
		repo: repo,
		defaultWindow: models.ShiftWindow{
			StartMinutes: start,
			EndMinutes:   end,
			GraceMinutes: graceMinutes,
		},
		logger: logger,
	}, nil
}

// ResolveDay returns the shift context for the employee-day. Approved leave
// wins over any shift window.
func (s *ScheduleService) ResolveDay(ctx context.Context, employeeCode string, date time.Time) (models.ShiftInfo, error) {
	leave, err := s.repo.LeaveFor(ctx, employeeCode, date)
	if err != nil {
		return models.ShiftInfo{}, err
	}
	if leave != nil {
		return models.ShiftInfo{OnLeave: true, Leave: leave.Type, Window: s.defaultWindow}, nil
	}

	assignment, err := s.repo.AssignmentFor(ctx, employeeCode, date)
	if err != nil {
		return models.ShiftInfo{}, err
	}
	if assignment == nil {
		if s.logger != nil {
			s.logger.Debug("no shift assignment, using default window",
				zap.String("employee_code", employeeCode),
				zap.String("date", date.Format("2006-01-02")))
		}
		return models.ShiftInfo{Window: s.defaultWindow, Fallback: true}, nil
	}
	return models.ShiftInfo{Window: assignment.ShiftWindow}, nil
}

// DefaultWindow exposes the configured fallback window.
func (s *ScheduleService) DefaultWindow() models.ShiftWindow {
	return s.defaultWindow
}

// parseClock converts "HH:MM" into minutes since midnight.
func parseClock(raw string) (int, error) {
	parts := strings.SplitN(raw, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock value %q", raw)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("invalid hour in %q", raw)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("invalid minute in %q", raw)
	}
	return hours*60 + minutes, nil
}
