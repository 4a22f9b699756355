package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zeroslashagency/epsilon-attendance-api/internal/dto"
	"github.com/zeroslashagency/epsilon-attendance-api/internal/models"
	"github.com/zeroslashagency/epsilon-attendance-api/internal/repository"
	appErrors "github.com/zeroslashagency/epsilon-attendance-api/pkg/errors"
	"github.com/zeroslashagency/epsilon-attendance-api/pkg/jobs"
)

type mockReportStore struct {
	jobs      map[string]*models.ReportJob
	createErr error
	updates   []repository.UpdateReportJobParams
}

func (m *mockReportStore) Create(ctx context.Context, job *models.ReportJob) error {
	if m.createErr != nil {
		return m.createErr
	}
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if m.jobs == nil {
		m.jobs = make(map[string]*models.ReportJob)
	}
	m.jobs[job.ID] = job
	return nil
}

func (m *mockReportStore) GetByID(ctx context.Context, id string) (*models.ReportJob, error) {
	job, ok := m.jobs[id]
	if !ok {
		return nil, errors.New("missing job")
	}
	return job, nil
}

func (m *mockReportStore) Update(ctx context.Context, id string, params repository.UpdateReportJobParams) error {
	m.updates = append(m.updates, params)
	job, ok := m.jobs[id]
	if !ok {
		return errors.New("missing job")
	}
	if params.Status != nil {
		job.Status = *params.Status
	}
	if params.Progress != nil {
		job.Progress = *params.Progress
	}
	if params.ResultURL != nil {
		job.ResultURL = params.ResultURL
	}
	if params.ErrorMessage != nil {
		job.ErrorMessage = params.ErrorMessage
	}
	return nil
}

func (m *mockReportStore) ListQueued(ctx context.Context, limit int) ([]models.ReportJob, error) {
	var queued []models.ReportJob
	for _, job := range m.jobs {
		if job.Status == models.ReportStatusQueued {
			queued = append(queued, *job)
		}
	}
	return queued, nil
}

func (m *mockReportStore) ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ReportJob, error) {
	return nil, nil
}

type mockDispatcher struct {
	enqueued []jobs.Job
	err      error
}

func (m *mockDispatcher) Enqueue(job jobs.Job) error {
	if m.err != nil {
		return m.err
	}
	m.enqueued = append(m.enqueued, job)
	return nil
}

type mockExporter struct {
	result *ExportResult
	err    error
	calls  int
}

func (m *mockExporter) Generate(ctx context.Context, job *models.ReportJob) (*ExportResult, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func newTestReportService(store *mockReportStore, queue *mockDispatcher) *ReportService {
	return NewReportService(store, queue, nil, zap.NewNop(), ReportServiceConfig{ResultTTL: time.Hour, MaxRetries: 3})
}

func TestReportServiceCreateJob(t *testing.T) {
	store := &mockReportStore{}
	queue := &mockDispatcher{}
	svc := newTestReportService(store, queue)

	res, err := svc.CreateJob(context.Background(), dto.ReportRequest{
		Type:         models.ReportTypeEmployeePeriod,
		EmployeeCode: "EMP-001",
		DateFrom:     "2026-03-01",
		DateTo:       "2026-03-31",
		Format:       models.ReportFormatCSV,
	}, "user-1", models.RoleAdmin, "")

	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusQueued, res.Status)
	require.Len(t, queue.enqueued, 1)
	assert.Equal(t, res.ID, queue.enqueued[0].ID)
}

func TestReportServiceCreateJobValidation(t *testing.T) {
	svc := newTestReportService(&mockReportStore{}, &mockDispatcher{})

	cases := []dto.ReportRequest{
		{Type: "unknown", DateFrom: "2026-03-01", Format: models.ReportFormatCSV},
		{Type: models.ReportTypeTeamDaily, DateFrom: "2026-03-01", Format: "xlsx"},
		{Type: models.ReportTypeTeamDaily, Format: models.ReportFormatCSV},
		{Type: models.ReportTypeTeamDaily, DateFrom: "bad-date", Format: models.ReportFormatCSV},
		{Type: models.ReportTypeEmployeePeriod, DateFrom: "2026-03-01", DateTo: "2026-03-31", Format: models.ReportFormatCSV},
		{Type: models.ReportTypeEmployeePeriod, EmployeeCode: "EMP-001", DateFrom: "2026-03-01", Format: models.ReportFormatCSV},
	}
	for _, req := range cases {
		_, err := svc.CreateJob(context.Background(), req, "user-1", models.RoleAdmin, "")
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	}
}

func TestReportServiceEmployeeScope(t *testing.T) {
	svc := newTestReportService(&mockReportStore{}, &mockDispatcher{})

	// Employees may only request their own period report.
	_, err := svc.CreateJob(context.Background(), dto.ReportRequest{
		Type:         models.ReportTypeEmployeePeriod,
		EmployeeCode: "EMP-002",
		DateFrom:     "2026-03-01",
		DateTo:       "2026-03-31",
		Format:       models.ReportFormatCSV,
	}, "user-1", models.RoleEmployee, "EMP-001")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	// Team reports are off limits entirely.
	_, err = svc.CreateJob(context.Background(), dto.ReportRequest{
		Type:     models.ReportTypeTeamDaily,
		DateFrom: "2026-03-10",
		Format:   models.ReportFormatPDF,
	}, "user-1", models.RoleEmployee, "EMP-001")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	// Own code is fine.
	_, err = svc.CreateJob(context.Background(), dto.ReportRequest{
		Type:         models.ReportTypeEmployeePeriod,
		EmployeeCode: "EMP-001",
		DateFrom:     "2026-03-01",
		DateTo:       "2026-03-31",
		Format:       models.ReportFormatCSV,
	}, "user-1", models.RoleEmployee, "EMP-001")
	require.NoError(t, err)
}

func TestReportServiceGetStatusOwnership(t *testing.T) {
	store := &mockReportStore{jobs: map[string]*models.ReportJob{
		"job-1": {ID: "job-1", Status: models.ReportStatusFinished, Progress: 100, CreatedBy: "user-1"},
	}}
	svc := newTestReportService(store, &mockDispatcher{})

	_, err := svc.GetStatus(context.Background(), "job-1", "user-2", models.RoleEmployee)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	res, err := svc.GetStatus(context.Background(), "job-1", "user-1", models.RoleEmployee)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusFinished, res.Status)

	res, err = svc.GetStatus(context.Background(), "job-1", "user-2", models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, 100, res.Progress)
}

func TestReportWorkerFinishesJob(t *testing.T) {
	store := &mockReportStore{jobs: map[string]*models.ReportJob{
		"job-1": {ID: "job-1", Type: models.ReportTypeTeamDaily, Status: models.ReportStatusQueued},
	}}
	exporter := &mockExporter{result: &ExportResult{URL: "/api/v1/reports/download/tok", Format: models.ReportFormatCSV}}
	worker := NewReportWorker(store, exporter, 3, zap.NewNop())

	err := worker.Handle(context.Background(), jobs.Job{ID: "job-1", Attempt: 0})
	require.NoError(t, err)

	job := store.jobs["job-1"]
	assert.Equal(t, models.ReportStatusFinished, job.Status)
	assert.Equal(t, 100, job.Progress)
	require.NotNil(t, job.ResultURL)
	assert.Equal(t, "/api/v1/reports/download/tok", *job.ResultURL)
}

func TestReportWorkerRequeuesOnFailure(t *testing.T) {
	store := &mockReportStore{jobs: map[string]*models.ReportJob{
		"job-1": {ID: "job-1", Type: models.ReportTypeTeamDaily, Status: models.ReportStatusQueued},
	}}
	exporter := &mockExporter{err: errors.New("boom")}
	worker := NewReportWorker(store, exporter, 3, zap.NewNop())

	err := worker.Handle(context.Background(), jobs.Job{ID: "job-1", Attempt: 1})
	require.Error(t, err)
	assert.Equal(t, models.ReportStatusQueued, store.jobs["job-1"].Status)

	// Final attempt marks the job failed.
	err = worker.Handle(context.Background(), jobs.Job{ID: "job-1", Attempt: 3})
	require.Error(t, err)
	assert.Equal(t, models.ReportStatusFailed, store.jobs["job-1"].Status)
}

func TestReportServiceRecoverPendingJobs(t *testing.T) {
	store := &mockReportStore{jobs: map[string]*models.ReportJob{
		"job-1": {ID: "job-1", Status: models.ReportStatusQueued},
		"job-2": {ID: "job-2", Status: models.ReportStatusFinished},
	}}
	queue := &mockDispatcher{}
	svc := newTestReportService(store, queue)

	svc.RecoverPendingJobs(context.Background())
	require.Len(t, queue.enqueued, 1)
	assert.Equal(t, "job-1", queue.enqueued[0].ID)
}
