package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/zeroslashagency/epsilon-attendance-api/internal/models"
	"github.com/zeroslashagency/epsilon-attendance-api/pkg/export"
	"github.com/zeroslashagency/epsilon-attendance-api/pkg/storage"
)

type periodProvider interface {
	GetRange(ctx context.Context, employeeCode string, from, to time.Time) (*PeriodResult, error)
}

type teamDayLister interface {
	ListByDate(ctx context.Context, date time.Time) ([]models.DayRecordRow, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ReportFormat
	ExpiresAt    time.Time
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportService builds report datasets from reconstructed attendance and
// persists rendered files.
type ExportService struct {
	periods periodProvider
	team    teamDayLister
	storage fileStorage
	csv     csvRenderer
	pdf     pdfRenderer
	signer  *storage.SignedURLSigner
	logger  *zap.Logger
	cfg     ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(periods periodProvider, team teamDayLister, store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		periods: periods,
		team:    team,
		storage: store,
		csv:     csv,
		pdf:     pdf,
		signer:  signer,
		logger:  logger,
		cfg:     cfg,
	}
}

// Generate builds a dataset according to the job definition and stores the
// rendered export.
func (s *ExportService) Generate(ctx context.Context, job *models.ReportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	dataset, title, err := s.buildDataset(ctx, job)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch job.Params.Format {
	case models.ReportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ReportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported format %s", job.Params.Format)
	}
	if err != nil {
		return nil, err
	}

	filename := s.buildFilename(job)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	signedURL := strings.TrimRight(s.cfg.APIPrefix, "/")
	if signedURL == "" {
		signedURL = "/api/v1"
	}
	signedURL = fmt.Sprintf("%s/reports/download/%s", signedURL, token)

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          signedURL,
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) buildFilename(job *models.ReportJob) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	scope := sanitizeFilename(job.Params.EmployeeCode)
	if scope == "na" {
		scope = "team"
	}
	return fmt.Sprintf("%s_%s_%s.%s", strings.ToLower(string(job.Type)), scope, timestamp, job.Params.Format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func (s *ExportService) buildDataset(ctx context.Context, job *models.ReportJob) (export.Dataset, string, error) {
	switch job.Type {
	case models.ReportTypeEmployeePeriod:
		return s.buildEmployeePeriodDataset(ctx, job.Params)
	case models.ReportTypeTeamDaily:
		return s.buildTeamDailyDataset(ctx, job.Params)
	default:
		return export.Dataset{}, "", fmt.Errorf("unsupported report type %s", job.Type)
	}
}

func (s *ExportService) buildEmployeePeriodDataset(ctx context.Context, params models.ReportJobParams) (export.Dataset, string, error) {
	from, err := time.Parse("2006-01-02", params.DateFrom)
	if err != nil {
		return export.Dataset{}, "", fmt.Errorf("invalid dateFrom %q", params.DateFrom)
	}
	to, err := time.Parse("2006-01-02", params.DateTo)
	if err != nil {
		return export.Dataset{}, "", fmt.Errorf("invalid dateTo %q", params.DateTo)
	}

	period, err := s.periods.GetRange(ctx, params.EmployeeCode, from, to)
	if err != nil {
		return export.Dataset{}, "", err
	}

	dataRows := make([]map[string]string, 0, len(period.Records))
	for _, rec := range period.Records {
		dataRows = append(dataRows, map[string]string{
			"Date":        rec.Date.Format("2006-01-02"),
			"Status":      string(rec.Status),
			"Check In":    formatClock(rec.CheckIn),
			"Check Out":   formatClock(rec.CheckOut),
			"Total Hours": rec.TotalHours,
			"Confidence":  string(rec.Confidence),
			"Ambiguous":   fmt.Sprintf("%t", rec.HasAmbiguousPunches),
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Date", "Status", "Check In", "Check Out", "Total Hours", "Confidence", "Ambiguous"},
		Rows:    dataRows,
	}
	title := fmt.Sprintf("Attendance %s %s to %s", params.EmployeeCode, params.DateFrom, params.DateTo)
	return dataset, title, nil
}

func (s *ExportService) buildTeamDailyDataset(ctx context.Context, params models.ReportJobParams) (export.Dataset, string, error) {
	date, err := time.Parse("2006-01-02", params.DateFrom)
	if err != nil {
		return export.Dataset{}, "", fmt.Errorf("invalid dateFrom %q", params.DateFrom)
	}

	rows, err := s.team.ListByDate(ctx, date)
	if err != nil {
		return export.Dataset{}, "", err
	}

	dataRows := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		rec := row.Payload.DayRecord
		dataRows = append(dataRows, map[string]string{
			"Employee":    row.EmployeeCode,
			"Status":      string(rec.Status),
			"Check In":    formatClock(rec.CheckIn),
			"Check Out":   formatClock(rec.CheckOut),
			"Total Hours": rec.TotalHours,
			"Confidence":  string(rec.Confidence),
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Employee", "Status", "Check In", "Check Out", "Total Hours", "Confidence"},
		Rows:    dataRows,
	}
	title := fmt.Sprintf("Team Attendance %s", params.DateFrom)
	return dataset, title, nil
}

func formatClock(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("15:04")
}
