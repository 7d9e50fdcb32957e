package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/udhaarbook/udhaarbook-backend/internal/domain"
	"github.com/udhaarbook/udhaarbook-backend/internal/service"
)

// InstallmentHandler handles installment-related HTTP requests
type InstallmentHandler struct {
	installmentService *service.InstallmentService
	paymentService     *service.PaymentService
}

// NewInstallmentHandler creates a new InstallmentHandler
func NewInstallmentHandler(installmentService *service.InstallmentService, paymentService *service.PaymentService) *InstallmentHandler {
	return &InstallmentHandler{
		installmentService: installmentService,
		paymentService:     paymentService,
	}
}

// UpdateInstallmentRequest represents the partial update request body
type UpdateInstallmentRequest struct {
	Status      *string `json:"status,omitempty"`
	PaidAmount  *string `json:"paidAmount,omitempty"`
	PaidDate    *string `json:"paidDate,omitempty"`
	PaymentMode *string `json:"paymentMode,omitempty"`
}

// RecordPaymentRequest represents the payment request body
type RecordPaymentRequest struct {
	PaymentDate   string `json:"paymentDate,omitempty"`
	PaymentMode   string `json:"paymentMode"`
	IsLenderDelay bool   `json:"isLenderDelay,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

// GetInstallments handles GET /api/v1/installments?status=&limit=
func (h *InstallmentHandler) GetInstallments(c echo.Context) error {
	filter := domain.InstallmentListFilter{
		Status: domain.InstallmentStatus(c.QueryParam("status")),
	}
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return NewValidationError(c, "Invalid limit", nil)
		}
		filter.Limit = limit
	}

	installments, err := h.installmentService.GetInstallments(filter)
	if err != nil {
		if errors.Is(err, domain.ErrInstallmentStatusInvalid) {
			return NewValidationError(c, "Invalid installment status filter", nil)
		}
		log.Error().Err(err).Msg("Failed to get installments")
		return NewInternalError(c, "Failed to get installments")
	}
	return c.JSON(http.StatusOK, installments)
}

// GetInstallment handles GET /api/v1/installments/:id
func (h *InstallmentHandler) GetInstallment(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid installment ID", nil)
	}

	installment, err := h.installmentService.GetInstallment(id)
	if err != nil {
		if errors.Is(err, domain.ErrInstallmentNotFound) {
			return NewNotFoundError(c, "Installment not found")
		}
		log.Error().Err(err).Int64("installment_id", id).Msg("Failed to get installment")
		return NewInternalError(c, "Failed to get installment")
	}
	return c.JSON(http.StatusOK, installment)
}

// GetInstallmentsByLoan handles GET /api/v1/installments/loan/:loanId
func (h *InstallmentHandler) GetInstallmentsByLoan(c echo.Context) error {
	loanID, err := parseIDParam(c, "loanId")
	if err != nil {
		return NewValidationError(c, "Invalid loan ID", nil)
	}

	installments, err := h.installmentService.GetInstallmentsByLoan(loanID)
	if err != nil {
		if errors.Is(err, domain.ErrLoanNotFound) {
			return NewNotFoundError(c, "Loan not found")
		}
		log.Error().Err(err).Int64("loan_id", loanID).Msg("Failed to get loan installments")
		return NewInternalError(c, "Failed to get loan installments")
	}
	return c.JSON(http.StatusOK, installments)
}

// UpdateInstallment handles PATCH /api/v1/installments/:id
func (h *InstallmentHandler) UpdateInstallment(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid installment ID", nil)
	}

	var req UpdateInstallmentRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	var update domain.InstallmentUpdate
	if req.Status != nil {
		status := domain.InstallmentStatus(*req.Status)
		update.Status = &status
	}
	if req.PaidAmount != nil {
		amount, err := decimal.NewFromString(*req.PaidAmount)
		if err != nil {
			return NewValidationError(c, "Invalid paid amount", []ValidationError{
				{Field: "paidAmount", Message: "Must be a valid decimal number"},
			})
		}
		update.PaidAmount = &amount
	}
	if req.PaidDate != nil {
		paidDate, err := time.Parse("2006-01-02", *req.PaidDate)
		if err != nil {
			return NewValidationError(c, "Invalid paid date", []ValidationError{
				{Field: "paidDate", Message: "Must be in YYYY-MM-DD format"},
			})
		}
		update.PaidDate = &paidDate
	}
	if req.PaymentMode != nil {
		mode := domain.PaymentMode(*req.PaymentMode)
		update.PaymentMode = &mode
	}

	updated, err := h.installmentService.UpdateInstallment(id, update)
	if err != nil {
		if errors.Is(err, domain.ErrInstallmentNotFound) {
			return NewNotFoundError(c, "Installment not found")
		}
		if errors.Is(err, domain.ErrInstallmentAlreadyPaid) {
			return NewConflictError(c, "Installment has already been paid")
		}
		if errors.Is(err, domain.ErrInstallmentStatusInvalid) || errors.Is(err, domain.ErrPaymentModeInvalid) {
			return NewValidationError(c, err.Error(), nil)
		}
		log.Error().Err(err).Int64("installment_id", id).Msg("Failed to update installment")
		return NewInternalError(c, "Failed to update installment")
	}
	return c.JSON(http.StatusOK, updated)
}

// PayInstallment handles POST /api/v1/installments/:id/payment. It delegates
// to the same payment engine as POST /api/v1/payments.
func (h *InstallmentHandler) PayInstallment(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid installment ID", nil)
	}

	var req RecordPaymentRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	return recordPayment(c, h.paymentService, id, req)
}

// recordPayment runs the shared payment flow and maps its errors. Both
// payment routes funnel through here.
func recordPayment(c echo.Context, paymentService *service.PaymentService, installmentID int64, req RecordPaymentRequest) error {
	input := service.RecordPaymentInput{
		PaymentMode:   domain.PaymentMode(req.PaymentMode),
		IsLenderDelay: req.IsLenderDelay,
		Notes:         req.Notes,
	}
	if req.PaymentDate != "" {
		paymentDate, err := time.Parse("2006-01-02", req.PaymentDate)
		if err != nil {
			return NewValidationError(c, "Invalid payment date", []ValidationError{
				{Field: "paymentDate", Message: "Must be in YYYY-MM-DD format"},
			})
		}
		input.PaymentDate = paymentDate
	}

	result, err := paymentService.RecordPayment(c.Request().Context(), installmentID, input)
	if err != nil {
		if errors.Is(err, domain.ErrInstallmentNotFound) {
			return NewNotFoundError(c, "Installment not found")
		}
		if errors.Is(err, domain.ErrLoanNotFound) {
			return NewNotFoundError(c, "Loan not found")
		}
		if errors.Is(err, domain.ErrBorrowerNotFound) {
			return NewNotFoundError(c, "Borrower not found")
		}
		if errors.Is(err, domain.ErrInstallmentAlreadyPaid) {
			return NewConflictError(c, "Installment has already been paid")
		}
		if errors.Is(err, domain.ErrPaymentModeInvalid) {
			return NewValidationError(c, "Payment mode must be cash, online, or advance", []ValidationError{
				{Field: "paymentMode", Message: "Must be cash, online, or advance"},
			})
		}
		log.Error().Err(err).Int64("installment_id", installmentID).Msg("Failed to record payment")
		return NewInternalError(c, "Failed to record payment")
	}

	log.Info().
		Int64("installment_id", installmentID).
		Str("status", string(result.Installment.Status)).
		Str("receipt_id", result.Payment.ReceiptID.String()).
		Msg("Payment recorded")
	return c.JSON(http.StatusOK, result)
}
