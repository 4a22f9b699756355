package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/zeroslashagency/epsilon-attendance-api/internal/dto"
	"github.com/zeroslashagency/epsilon-attendance-api/internal/models"
	"github.com/zeroslashagency/epsilon-attendance-api/internal/service"
	appErrors "github.com/zeroslashagency/epsilon-attendance-api/pkg/errors"
	"github.com/zeroslashagency/epsilon-attendance-api/pkg/response"
)

// PunchLogHandler exposes raw punch log ingestion and listing.
type PunchLogHandler struct {
	service *service.PunchLogService
}

// NewPunchLogHandler constructs the handler.
func NewPunchLogHandler(svc *service.PunchLogService) *PunchLogHandler {
	return &PunchLogHandler{service: svc}
}

// Ingest godoc
// @Summary Ingest a device sync batch
// @Description Store raw scans from the punch devices and queue rebuilds for the affected days
// @Tags PunchLogs
// @Accept json
// @Produce json
// @Param payload body dto.PunchIngestRequest true "Sync batch"
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /punch-logs [post]
func (h *PunchLogHandler) Ingest(c *gin.Context) {
	var req dto.PunchIngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid punch batch payload"))
		return
	}

	events := make([]models.PunchEvent, len(req.Events))
	for i, ev := range req.Events {
		events[i] = models.PunchEvent{
			EmployeeCode: ev.EmployeeCode,
			Time:         ev.Time,
			Direction:    models.PunchDirection(ev.Direction),
			DeviceID:     ev.DeviceID,
			Temperature:  ev.Temperature,
		}
	}

	result, err := h.service.Ingest(c.Request.Context(), events)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, result, nil)
}

// List godoc
// @Summary List raw punch logs
// @Description Raw device scans as synced; read-only
// @Tags PunchLogs
// @Produce json
// @Param employeeCode query string false "Employee code"
// @Param from query string false "Range start (YYYY-MM-DD)"
// @Param to query string false "Range end (YYYY-MM-DD)"
// @Param direction query string false "Punch direction (in/out/break)"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /punch-logs [get]
func (h *PunchLogHandler) List(c *gin.Context) {
	filter := models.PunchEventFilter{
		EmployeeCode: c.Query("employeeCode"),
	}
	if raw := c.Query("from"); raw != "" {
		from, err := parseDate(raw)
		if err != nil {
			response.Error(c, err)
			return
		}
		filter.DateFrom = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := parseDate(raw)
		if err != nil {
			response.Error(c, err)
			return
		}
		filter.DateTo = &to
	}
	if raw := c.Query("direction"); raw != "" {
		direction := models.PunchDirection(raw)
		filter.Direction = &direction
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("pageSize", "100"))

	events, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events, pagination)
}
