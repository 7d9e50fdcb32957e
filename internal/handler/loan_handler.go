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

// LoanHandler handles loan-related HTTP requests
type LoanHandler struct {
	loanService *service.LoanService
}

// NewLoanHandler creates a new LoanHandler
func NewLoanHandler(loanService *service.LoanService) *LoanHandler {
	return &LoanHandler{loanService: loanService}
}

// CreateLoanRequest represents the create loan request body. Repayable and
// per-installment amounts are always recomputed server side.
type CreateLoanRequest struct {
	BorrowerID           int64  `json:"borrowerId"`
	LoanDate             string `json:"loanDate"`
	Principal            string `json:"principal"`
	InterestRate         string `json:"interestRate"`
	TotalInstallments    int32  `json:"totalInstallments"`
	CycleDays            int32  `json:"cycleDays"`
	FirstInstallmentDate string `json:"firstInstallmentDate"`
	Purpose              string `json:"purpose,omitempty"`
}

// UpdateLoanStatusRequest represents the status change request body
type UpdateLoanStatusRequest struct {
	Status string `json:"status"`
}

// CreateLoan handles POST /api/v1/loans
func (h *LoanHandler) CreateLoan(c echo.Context) error {
	var req CreateLoanRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	principal, err := decimal.NewFromString(req.Principal)
	if err != nil {
		return NewValidationError(c, "Invalid principal", []ValidationError{
			{Field: "principal", Message: "Must be a valid decimal number"},
		})
	}

	interestRate := decimal.Zero
	if req.InterestRate != "" {
		interestRate, err = decimal.NewFromString(req.InterestRate)
		if err != nil {
			return NewValidationError(c, "Invalid interest rate", []ValidationError{
				{Field: "interestRate", Message: "Must be a valid decimal number"},
			})
		}
	}

	loanDate, err := time.Parse("2006-01-02", req.LoanDate)
	if err != nil {
		return NewValidationError(c, "Invalid loan date", []ValidationError{
			{Field: "loanDate", Message: "Must be in YYYY-MM-DD format"},
		})
	}

	firstInstallmentDate, err := time.Parse("2006-01-02", req.FirstInstallmentDate)
	if err != nil {
		return NewValidationError(c, "Invalid first installment date", []ValidationError{
			{Field: "firstInstallmentDate", Message: "Must be in YYYY-MM-DD format"},
		})
	}

	loan := &domain.Loan{
		BorrowerID:           req.BorrowerID,
		LoanDate:             loanDate,
		Principal:            principal,
		InterestRate:         interestRate,
		TotalInstallments:    req.TotalInstallments,
		CycleDays:            req.CycleDays,
		FirstInstallmentDate: firstInstallmentDate,
		Purpose:              req.Purpose,
	}

	detail, err := h.loanService.CreateLoan(c.Request().Context(), loan)
	if err != nil {
		if errors.Is(err, domain.ErrBorrowerNotFound) {
			return NewNotFoundError(c, "Borrower not found")
		}
		if errors.Is(err, domain.ErrLoanPrincipalInvalid) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "principal", Message: "Principal must be positive"},
			})
		}
		if errors.Is(err, domain.ErrLoanInterestRateInvalid) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "interestRate", Message: "Interest rate must not be negative"},
			})
		}
		if errors.Is(err, domain.ErrLoanInstallmentsInvalid) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "totalInstallments", Message: "Number of installments must be at least 1"},
			})
		}
		if errors.Is(err, domain.ErrLoanCycleDaysInvalid) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "cycleDays", Message: "Cycle days must be at least 1"},
			})
		}
		log.Error().Err(err).Msg("Failed to create loan")
		return NewInternalError(c, "Failed to create loan")
	}

	log.Info().
		Int64("loan_id", detail.Loan.ID).
		Int64("borrower_id", detail.Loan.BorrowerID).
		Str("principal", detail.Loan.Principal.StringFixed(2)).
		Msg("Loan created")
	return c.JSON(http.StatusCreated, detail)
}

// GetLoans handles GET /api/v1/loans?status=&borrowerId=
func (h *LoanHandler) GetLoans(c echo.Context) error {
	filter := domain.LoanFilter{
		Status: domain.LoanStatus(c.QueryParam("status")),
	}
	if raw := c.QueryParam("borrowerId"); raw != "" {
		borrowerID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || borrowerID <= 0 {
			return NewValidationError(c, "Invalid borrower ID", nil)
		}
		filter.BorrowerID = borrowerID
	}

	loans, err := h.loanService.GetLoans(filter)
	if err != nil {
		if errors.Is(err, domain.ErrLoanStatusInvalid) {
			return NewValidationError(c, "Status must be Active or Closed", nil)
		}
		log.Error().Err(err).Msg("Failed to get loans")
		return NewInternalError(c, "Failed to get loans")
	}
	return c.JSON(http.StatusOK, loans)
}

// GetLoan handles GET /api/v1/loans/:id
func (h *LoanHandler) GetLoan(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid loan ID", nil)
	}

	detail, err := h.loanService.GetLoan(id)
	if err != nil {
		if errors.Is(err, domain.ErrLoanNotFound) {
			return NewNotFoundError(c, "Loan not found")
		}
		if errors.Is(err, domain.ErrBorrowerNotFound) {
			return NewNotFoundError(c, "Borrower not found")
		}
		log.Error().Err(err).Int64("loan_id", id).Msg("Failed to get loan")
		return NewInternalError(c, "Failed to get loan")
	}
	return c.JSON(http.StatusOK, detail)
}

// GetLoansByBorrower handles GET /api/v1/borrowers/:id/loans
func (h *LoanHandler) GetLoansByBorrower(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid borrower ID", nil)
	}

	loans, err := h.loanService.GetLoansByBorrower(id)
	if err != nil {
		if errors.Is(err, domain.ErrBorrowerNotFound) {
			return NewNotFoundError(c, "Borrower not found")
		}
		log.Error().Err(err).Int64("borrower_id", id).Msg("Failed to get borrower loans")
		return NewInternalError(c, "Failed to get borrower loans")
	}
	return c.JSON(http.StatusOK, loans)
}

// UpdateLoanStatus handles PATCH /api/v1/loans/:id/status
func (h *LoanHandler) UpdateLoanStatus(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid loan ID", nil)
	}

	var req UpdateLoanStatusRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	loan, err := h.loanService.UpdateLoanStatus(id, domain.LoanStatus(req.Status))
	if err != nil {
		if errors.Is(err, domain.ErrLoanStatusInvalid) {
			return NewValidationError(c, "Status must be Active or Closed", []ValidationError{
				{Field: "status", Message: "Must be Active or Closed"},
			})
		}
		if errors.Is(err, domain.ErrLoanNotFound) {
			return NewNotFoundError(c, "Loan not found")
		}
		log.Error().Err(err).Int64("loan_id", id).Msg("Failed to update loan status")
		return NewInternalError(c, "Failed to update loan status")
	}

	log.Info().Int64("loan_id", id).Str("status", string(loan.Status)).Msg("Loan status updated")
	return c.JSON(http.StatusOK, loan)
}
