package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/zeroslashagency/epsilon-attendance-api/internal/engine"
	"github.com/zeroslashagency/epsilon-attendance-api/internal/models"
	appErrors "github.com/zeroslashagency/epsilon-attendance-api/pkg/errors"
)

// PunchLogReader abstracts raw punch access for reconstruction.
type PunchLogReader interface {
	ListByEmployeeDay(ctx context.Context, employeeCode string, date time.Time) ([]models.PunchEvent, error)
}

// AttendanceStore abstracts day record persistence.
type AttendanceStore interface {
	UpsertDayRecord(ctx context.Context, record models.DayRecord) (*models.DayRecordRow, error)
	GetDayRecord(ctx context.Context, employeeCode string, date time.Time) (*models.DayRecordRow, error)
	ListRange(ctx context.Context, employeeCode string, from, to time.Time) ([]models.DayRecordRow, error)
}

// ShiftResolver resolves the scheduling context for an employee-day.
type ShiftResolver interface {
	ResolveDay(ctx context.Context, employeeCode string, date time.Time) (models.ShiftInfo, error)
}

// AttendanceService orchestrates day reconstruction: it pulls raw punches and
// shift context, runs the engine, persists the result, and serves period
// queries with summaries.
type AttendanceService struct {
	punches  PunchLogReader
	store    AttendanceStore
	shifts   ShiftResolver
	engine   *engine.Engine
	cache    *CacheService
	metrics  *MetricsService
	logger   *zap.Logger
	cacheTTL time.Duration
	now      func() time.Time
}

// NewAttendanceService constructs the service.
func NewAttendanceService(punches PunchLogReader, store AttendanceStore, shifts ShiftResolver, eng *engine.Engine, cache *CacheService, metrics *MetricsService, logger *zap.Logger, cacheTTL time.Duration) *AttendanceService {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &AttendanceService{
		punches:  punches,
		store:    store,
		shifts:   shifts,
		engine:   eng,
		cache:    cache,
		metrics:  metrics,
		logger:   logger,
		cacheTTL: cacheTTL,
		now:      time.Now,
	}
}

// WithClock overrides the wall clock for tests.
func (s *AttendanceService) WithClock(now func() time.Time) *AttendanceService {
	if now != nil {
		s.now = now
	}
	return s
}

// RebuildDay reconstructs the employee-day from raw punches and replaces the
// stored record. Called on demand and by the realtime rebuild queue.
func (s *AttendanceService) RebuildDay(ctx context.Context, employeeCode string, date time.Time) (*models.DayRecord, error) {
	start := time.Now()

	events, err := s.punches.ListByEmployeeDay(ctx, employeeCode, date)
	if err != nil {
		return nil, err
	}
	shift, err := s.shifts.ResolveDay(ctx, employeeCode, date)
	if err != nil {
		return nil, err
	}

	record, err := s.engine.ReconstructDay(employeeCode, date, events, shift)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.UpsertDayRecord(ctx, *record); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.ObserveReconstruction(record.Status, time.Since(start))
	}
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, fmt.Sprintf("attendance:%s:*", employeeCode))
		_ = s.cache.Invalidate(ctx, "dashboard:*")
	}
	if s.logger != nil {
		s.logger.Info("day reconstructed",
			zap.String("employee_code", employeeCode),
			zap.String("date", date.Format("2006-01-02")),
			zap.String("status", string(record.Status)),
			zap.String("confidence", string(record.Confidence)),
			zap.Bool("ambiguous", record.HasAmbiguousPunches))
	}
	return record, nil
}

// GetDay returns the reconstructed record for the employee-day, rebuilding it
// when nothing is stored yet.
func (s *AttendanceService) GetDay(ctx context.Context, employeeCode string, date time.Time) (*models.DayRecord, error) {
	row, err := s.store.GetDayRecord(ctx, employeeCode, date)
	if err != nil {
		appErr := appErrors.FromError(err)
		if appErr.Code == appErrors.ErrNotFound.Code {
			return s.RebuildDay(ctx, employeeCode, date)
		}
		return nil, err
	}
	record := row.Payload.DayRecord
	return &record, nil
}

// PeriodResult bundles the per-day records with their aggregate summary.
type PeriodResult struct {
	Records []models.DayRecord   `json:"records"`
	Summary models.PeriodSummary `json:"summary"`
}

// GetRange returns records for every date in the inclusive range, rebuilding
// days that have no stored record, plus a period summary. Future dates are
// skipped.
func (s *AttendanceService) GetRange(ctx context.Context, employeeCode string, from, to time.Time) (*PeriodResult, error) {
	if to.Before(from) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date range end before start")
	}

	cacheKey := fmt.Sprintf("attendance:%s:%s:%s", employeeCode, from.Format("2006-01-02"), to.Format("2006-01-02"))
	if s.cache != nil {
		var cached PeriodResult
		if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
			return &cached, nil
		}
	}

	rows, err := s.store.ListRange(ctx, employeeCode, from, to)
	if err != nil {
		return nil, err
	}
	stored := make(map[string]models.DayRecord, len(rows))
	for _, row := range rows {
		stored[row.Date.Format("2006-01-02")] = row.Payload.DayRecord
	}

	today := truncate(s.now())
	records := make([]models.DayRecord, 0, len(stored))
	for day := truncate(from); !day.After(truncate(to)); day = day.AddDate(0, 0, 1) {
		if day.After(today) {
			continue
		}
		if rec, ok := stored[day.Format("2006-01-02")]; ok {
			records = append(records, rec)
			continue
		}
		rebuilt, err := s.RebuildDay(ctx, employeeCode, day)
		if err != nil {
			return nil, err
		}
		records = append(records, *rebuilt)
	}

	result := &PeriodResult{Records: records, Summary: engine.Summarize(records)}
	if s.cache != nil {
		_ = s.cache.Set(ctx, cacheKey, result, s.cacheTTL)
	}
	return result, nil
}

func truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
