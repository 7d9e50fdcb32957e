package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/udhaarbook/udhaarbook-backend/internal/domain"
	"github.com/udhaarbook/udhaarbook-backend/internal/service"
)

// PaymentHandler handles payment-related HTTP requests
type PaymentHandler struct {
	paymentService *service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// CreatePaymentRequest represents the create payment request body
type CreatePaymentRequest struct {
	InstallmentID int64  `json:"installmentId"`
	PaymentDate   string `json:"paymentDate,omitempty"`
	PaymentMode   string `json:"paymentMode"`
	IsLenderDelay bool   `json:"isLenderDelay,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

// CreatePayment handles POST /api/v1/payments
func (h *PaymentHandler) CreatePayment(c echo.Context) error {
	var req CreatePaymentRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if req.InstallmentID <= 0 {
		return NewValidationError(c, "Invalid installment ID", []ValidationError{
			{Field: "installmentId", Message: "Must be a positive integer"},
		})
	}

	return recordPayment(c, h.paymentService, req.InstallmentID, RecordPaymentRequest{
		PaymentDate:   req.PaymentDate,
		PaymentMode:   req.PaymentMode,
		IsLenderDelay: req.IsLenderDelay,
		Notes:         req.Notes,
	})
}

// GetPayments handles GET /api/v1/payments
func (h *PaymentHandler) GetPayments(c echo.Context) error {
	payments, err := h.paymentService.GetPayments()
	if err != nil {
		log.Error().Err(err).Msg("Failed to get payments")
		return NewInternalError(c, "Failed to get payments")
	}
	return c.JSON(http.StatusOK, payments)
}

// GetDueToday handles GET /api/v1/payments/due-today
func (h *PaymentHandler) GetDueToday(c echo.Context) error {
	due, err := h.paymentService.GetDueToday()
	if err != nil {
		log.Error().Err(err).Msg("Failed to get due payments")
		return NewInternalError(c, "Failed to get due payments")
	}
	return c.JSON(http.StatusOK, due)
}

// MarkMissed handles PATCH /api/v1/payments/:installmentId/mark-missed
func (h *PaymentHandler) MarkMissed(c echo.Context) error {
	id, err := parseIDParam(c, "installmentId")
	if err != nil {
		return NewValidationError(c, "Invalid installment ID", nil)
	}

	borrower, err := h.paymentService.MarkMissed(id)
	if err != nil {
		if errors.Is(err, domain.ErrInstallmentNotFound) {
			return NewNotFoundError(c, "Installment not found")
		}
		if errors.Is(err, domain.ErrInstallmentNotUnpaid) {
			return NewConflictError(c, "Only unpaid installments can be marked as missed")
		}
		log.Error().Err(err).Int64("installment_id", id).Msg("Failed to mark installment missed")
		return NewInternalError(c, "Failed to mark installment missed")
	}

	log.Info().
		Int64("installment_id", id).
		Int32("cibil_score", borrower.CibilScore).
		Msg("Installment marked missed")
	return c.JSON(http.StatusOK, borrower)
}
