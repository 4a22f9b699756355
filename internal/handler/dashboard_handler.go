package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/zeroslashagency/epsilon-attendance-api/internal/middleware"
	"github.com/zeroslashagency/epsilon-attendance-api/internal/service"
	"github.com/zeroslashagency/epsilon-attendance-api/pkg/response"
)

// DashboardHandler exposes the team dashboard endpoint.
type DashboardHandler struct {
	service *service.DashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(svc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: svc}
}

// Overview godoc
// @Summary Team dashboard overview
// @Description Aggregated reconstructed attendance for one date, defaults to today
// @Tags Dashboard
// @Produce json
// @Param date query string false "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /dashboard/overview [get]
func (h *DashboardHandler) Overview(c *gin.Context) {
	date := time.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			response.Error(c, err)
			return
		}
		date = parsed
	}

	overview, cached, err := h.service.Overview(c.Request.Context(), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cached)
	response.JSON(c, http.StatusOK, overview, nil, middleware.ExtractMeta(c))
}
