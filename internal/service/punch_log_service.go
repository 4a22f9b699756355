package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/zeroslashagency/epsilon-attendance-api/internal/dto"
	"github.com/zeroslashagency/epsilon-attendance-api/internal/models"
	appErrors "github.com/zeroslashagency/epsilon-attendance-api/pkg/errors"
)

// maxIngestBatch caps one device sync payload.
const maxIngestBatch = 1000

// PunchLogStore abstracts raw log access for the listing and ingest paths.
type PunchLogStore interface {
	List(ctx context.Context, filter models.PunchEventFilter) ([]models.PunchEvent, int, error)
	InsertBatch(ctx context.Context, events []models.PunchEvent) (int, error)
}

// PunchChangeNotifier is told about employee-days that received new punches
// so the stored records get rebuilt.
type PunchChangeNotifier interface {
	NotifyPunchChange(ctx context.Context, event PunchChangeEvent) error
}

// PunchChangeNotifierFunc adapts a plain function to PunchChangeNotifier.
type PunchChangeNotifierFunc func(ctx context.Context, event PunchChangeEvent) error

// NotifyPunchChange implements PunchChangeNotifier.
func (f PunchChangeNotifierFunc) NotifyPunchChange(ctx context.Context, event PunchChangeEvent) error {
	return f(ctx, event)
}

// PunchLogService serves the raw log surface: batch ingestion from the device
// sync and the read-only listing. Raw punches are never edited through the
// API; corrections happen by re-syncing devices and rebuilding the affected
// days.
type PunchLogService struct {
	repo     PunchLogStore
	notifier PunchChangeNotifier
	logger   *zap.Logger
}

// NewPunchLogService constructs the service. A nil notifier disables the
// rebuild trigger; ingested days are then rebuilt lazily on first read.
func NewPunchLogService(repo PunchLogStore, notifier PunchChangeNotifier, logger *zap.Logger) *PunchLogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PunchLogService{repo: repo, notifier: notifier, logger: logger}
}

// Ingest validates and stores one device sync batch, then notifies the
// rebuild pipeline once per affected employee-day. Devices re-deliver scans
// on reconnect, so duplicates are counted rather than rejected. Notification
// failures are logged but do not fail the ingest; the punches are already
// stored.
func (s *PunchLogService) Ingest(ctx context.Context, events []models.PunchEvent) (*dto.PunchIngestResponse, error) {
	if len(events) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "empty punch batch")
	}
	if len(events) > maxIngestBatch {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("batch exceeds %d events", maxIngestBatch))
	}
	for i, ev := range events {
		switch {
		case ev.EmployeeCode == "":
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("event %d: employee code required", i))
		case ev.Time.IsZero():
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("event %d: time required", i))
		case !ev.Direction.Valid():
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("event %d: invalid direction %q", i, ev.Direction))
		case ev.DeviceID == "":
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("event %d: device id required", i))
		}
	}

	inserted, err := s.repo.InsertBatch(ctx, events)
	if err != nil {
		return nil, err
	}

	notified := 0
	if s.notifier != nil {
		for _, change := range changedDays(events) {
			if err := s.notifier.NotifyPunchChange(ctx, change); err != nil {
				s.logger.Warn("punch change notification failed",
					zap.String("employee_code", change.EmployeeCode),
					zap.String("date", change.Date),
					zap.Error(err))
				continue
			}
			notified++
		}
	}

	return &dto.PunchIngestResponse{
		Received:       len(events),
		Inserted:       inserted,
		Duplicates:     len(events) - inserted,
		RebuildsQueued: notified,
	}, nil
}

// List returns raw punch events matching the filter.
func (s *PunchLogService) List(ctx context.Context, filter models.PunchEventFilter) ([]models.PunchEvent, *models.Pagination, error) {
	if filter.Direction != nil && !filter.Direction.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "invalid punch direction filter")
	}
	if filter.DateFrom != nil && filter.DateTo != nil && filter.DateTo.Before(*filter.DateFrom) {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "date range end before start")
	}

	events, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 500 {
		size = 100
	}
	return events, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// changedDays collapses a batch into its distinct employee-day pairs,
// preserving first-seen order.
func changedDays(events []models.PunchEvent) []PunchChangeEvent {
	seen := make(map[PunchChangeEvent]struct{}, len(events))
	changes := make([]PunchChangeEvent, 0, len(events))
	for _, ev := range events {
		change := PunchChangeEvent{EmployeeCode: ev.EmployeeCode, Date: ev.Time.Format("2006-01-02")}
		if _, ok := seen[change]; ok {
			continue
		}
		seen[change] = struct{}{}
		changes = append(changes, change)
	}
	return changes
}
