package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/zeroslashagency/epsilon-attendance-api/internal/dto"
	"github.com/zeroslashagency/epsilon-attendance-api/internal/service"
	appErrors "github.com/zeroslashagency/epsilon-attendance-api/pkg/errors"
	"github.com/zeroslashagency/epsilon-attendance-api/pkg/response"
)

// AttendanceHandler exposes reconstructed attendance endpoints.
type AttendanceHandler struct {
	service *service.AttendanceService
}

// NewAttendanceHandler constructs the handler.
func NewAttendanceHandler(svc *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: svc}
}

// GetDay godoc
// @Summary Reconstructed day record
// @Description Return the attendance record for one employee on one date
// @Tags Attendance
// @Produce json
// @Param employeeCode path string true "Employee code"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /attendance/{employeeCode}/day [get]
func (h *AttendanceHandler) GetDay(c *gin.Context) {
	employeeCode := c.Param("employeeCode")
	date, err := parseDate(c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}

	record, err := h.service.GetDay(c.Request.Context(), employeeCode, date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.DayResponse{Record: *record}, nil)
}

// GetRange godoc
// @Summary Attendance records for a period
// @Description Return per-day records plus a summary for the inclusive range
// @Tags Attendance
// @Produce json
// @Param employeeCode path string true "Employee code"
// @Param from query string true "Range start (YYYY-MM-DD)"
// @Param to query string true "Range end (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /attendance/{employeeCode} [get]
func (h *AttendanceHandler) GetRange(c *gin.Context) {
	employeeCode := c.Param("employeeCode")
	from, err := parseDate(c.Query("from"))
	if err != nil {
		response.Error(c, err)
		return
	}
	to, err := parseDate(c.Query("to"))
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.service.GetRange(c.Request.Context(), employeeCode, from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.RangeResponse{Records: result.Records, Summary: result.Summary}, nil)
}

// Stats godoc
// @Summary Period attendance statistics
// @Description Return the aggregated summary for the inclusive range without per-day records
// @Tags Attendance
// @Produce json
// @Param employeeCode path string true "Employee code"
// @Param from query string true "Range start (YYYY-MM-DD)"
// @Param to query string true "Range end (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /attendance/{employeeCode}/stats [get]
func (h *AttendanceHandler) Stats(c *gin.Context) {
	employeeCode := c.Param("employeeCode")
	from, err := parseDate(c.Query("from"))
	if err != nil {
		response.Error(c, err)
		return
	}
	to, err := parseDate(c.Query("to"))
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.service.GetRange(c.Request.Context(), employeeCode, from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.StatsResponse{Summary: result.Summary}, nil)
}

// Rebuild godoc
// @Summary Force day reconstruction
// @Description Re-run reconstruction for one employee-day and replace the stored record
// @Tags Attendance
// @Accept json
// @Produce json
// @Param employeeCode path string true "Employee code"
// @Param payload body dto.RebuildRequest true "Rebuild payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /attendance/{employeeCode}/rebuild [post]
func (h *AttendanceHandler) Rebuild(c *gin.Context) {
	employeeCode := c.Param("employeeCode")

	var req dto.RebuildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid rebuild payload"))
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		response.Error(c, err)
		return
	}

	record, err := h.service.RebuildDay(c.Request.Context(), employeeCode, date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.DayResponse{Record: *record}, nil)
}

func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "date required (YYYY-MM-DD)")
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "invalid date, expected YYYY-MM-DD")
	}
	return date, nil
}
