package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/udhaarbook/udhaarbook-backend/internal/service"
)

// ReportHandler handles report-related HTTP requests
type ReportHandler struct {
	reportService *service.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// GetLoanSummary handles GET /api/v1/reports/loan-summary
func (h *ReportHandler) GetLoanSummary(c echo.Context) error {
	rows, err := h.reportService.GetLoanSummary()
	if err != nil {
		log.Error().Err(err).Msg("Failed to get loan summary report")
		return NewInternalError(c, "Failed to get loan summary report")
	}
	return c.JSON(http.StatusOK, rows)
}

// GetPaymentCollection handles GET /api/v1/reports/payment-collection?from=&to=
func (h *ReportHandler) GetPaymentCollection(c echo.Context) error {
	var from, to *time.Time
	if raw := c.QueryParam("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return NewValidationError(c, "Invalid from date", []ValidationError{
				{Field: "from", Message: "Must be in YYYY-MM-DD format"},
			})
		}
		from = &parsed
	}
	if raw := c.QueryParam("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return NewValidationError(c, "Invalid to date", []ValidationError{
				{Field: "to", Message: "Must be in YYYY-MM-DD format"},
			})
		}
		to = &parsed
	}

	rows, err := h.reportService.GetPaymentCollection(from, to)
	if err != nil {
		log.Error().Err(err).Msg("Failed to get payment collection report")
		return NewInternalError(c, "Failed to get payment collection report")
	}
	return c.JSON(http.StatusOK, rows)
}

// GetOverdueInstallments handles GET /api/v1/reports/overdue-installments
func (h *ReportHandler) GetOverdueInstallments(c echo.Context) error {
	report, err := h.reportService.GetOverdueInstallments()
	if err != nil {
		log.Error().Err(err).Msg("Failed to get overdue report")
		return NewInternalError(c, "Failed to get overdue report")
	}
	return c.JSON(http.StatusOK, report)
}

// GetSummary handles GET /api/v1/reports/summary
func (h *ReportHandler) GetSummary(c echo.Context) error {
	summary, err := h.reportService.GetSummary()
	if err != nil {
		log.Error().Err(err).Msg("Failed to get summary report")
		return NewInternalError(c, "Failed to get summary report")
	}
	return c.JSON(http.StatusOK, summary)
}
