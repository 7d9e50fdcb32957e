package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/udhaarbook/udhaarbook-backend/internal/service"
)

// DashboardHandler handles dashboard-related HTTP requests
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetStats handles GET /api/v1/dashboard/stats
func (h *DashboardHandler) GetStats(c echo.Context) error {
	stats, err := h.dashboardService.GetStats()
	if err != nil {
		log.Error().Err(err).Msg("Failed to get dashboard stats")
		return NewInternalError(c, "Failed to get dashboard stats")
	}
	return c.JSON(http.StatusOK, stats)
}

// GetMonthlyCollections handles GET /api/v1/dashboard/monthly-collections?year=
func (h *DashboardHandler) GetMonthlyCollections(c echo.Context) error {
	year := 0
	if raw := c.QueryParam("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return NewValidationError(c, "Invalid year", nil)
		}
		year = parsed
	}

	collections, err := h.dashboardService.GetMonthlyCollections(year)
	if err != nil {
		log.Error().Err(err).Msg("Failed to get monthly collections")
		return NewInternalError(c, "Failed to get monthly collections")
	}
	return c.JSON(http.StatusOK, collections)
}

// GetDailyCollection handles GET /api/v1/dashboard/daily-collection
func (h *DashboardHandler) GetDailyCollection(c echo.Context) error {
	entries, err := h.dashboardService.GetDailyCollection()
	if err != nil {
		log.Error().Err(err).Msg("Failed to get daily collection")
		return NewInternalError(c, "Failed to get daily collection")
	}
	return c.JSON(http.StatusOK, entries)
}

// GetTopBorrowers handles GET /api/v1/dashboard/top-borrowers
func (h *DashboardHandler) GetTopBorrowers(c echo.Context) error {
	top, err := h.dashboardService.GetTopBorrowers()
	if err != nil {
		log.Error().Err(err).Msg("Failed to get top borrowers")
		return NewInternalError(c, "Failed to get top borrowers")
	}
	return c.JSON(http.StatusOK, top)
}
