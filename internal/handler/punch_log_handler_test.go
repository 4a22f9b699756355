package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zeroslashagency/epsilon-attendance-api/internal/dto"
	"github.com/zeroslashagency/epsilon-attendance-api/internal/models"
	"github.com/zeroslashagency/epsilon-attendance-api/internal/service"
)

type stubPunchStore struct {
	inserted []models.PunchEvent
	insertN  int
}

func (s *stubPunchStore) List(ctx context.Context, filter models.PunchEventFilter) ([]models.PunchEvent, int, error) {
	return nil, 0, nil
}

func (s *stubPunchStore) InsertBatch(ctx context.Context, events []models.PunchEvent) (int, error) {
	s.inserted = events
	return s.insertN, nil
}

func newPunchLogTestRouter(store *stubPunchStore, notified *[]service.PunchChangeEvent) *gin.Engine {
	gin.SetMode(gin.TestMode)

	notifier := service.PunchChangeNotifierFunc(func(ctx context.Context, event service.PunchChangeEvent) error {
		*notified = append(*notified, event)
		return nil
	})
	h := NewPunchLogHandler(service.NewPunchLogService(store, notifier, zap.NewNop()))

	r := gin.New()
	r.POST("/punch-logs", h.Ingest)
	r.GET("/punch-logs", h.List)
	return r
}

func TestPunchLogHandlerIngest(t *testing.T) {
	store := &stubPunchStore{insertN: 2}
	var notified []service.PunchChangeEvent
	r := newPunchLogTestRouter(store, &notified)

	payload := strings.NewReader(`{"events":[
		{"employee_code":"EMP-001","time":"2026-03-10T09:00:00Z","direction":"in","device_id":"device-1"},
		{"employee_code":"EMP-001","time":"2026-03-10T17:00:00Z","direction":"out","device_id":"device-1"}
	]}`)
	req := httptest.NewRequest(http.MethodPost, "/punch-logs", payload)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	var body dto.PunchIngestResponse
	require.NoError(t, json.Unmarshal(env.Data, &body))

	assert.Equal(t, 2, body.Received)
	assert.Equal(t, 2, body.Inserted)
	assert.Zero(t, body.Duplicates)
	assert.Equal(t, 1, body.RebuildsQueued)
	require.Len(t, store.inserted, 2)
	assert.Equal(t, models.PunchIn, store.inserted[0].Direction)
	require.Len(t, notified, 1)
	assert.Equal(t, service.PunchChangeEvent{EmployeeCode: "EMP-001", Date: "2026-03-10"}, notified[0])
}

func TestPunchLogHandlerIngestRejectsBadPayload(t *testing.T) {
	var notified []service.PunchChangeEvent
	r := newPunchLogTestRouter(&stubPunchStore{}, &notified)

	for _, payload := range []string{
		`{`,
		`{"events":[]}`,
		`{"events":[{"employee_code":"EMP-001","time":"2026-03-10T09:00:00Z","direction":"sideways","device_id":"device-1"}]}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/punch-logs", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, payload)
	}
	assert.Empty(t, notified)
}
