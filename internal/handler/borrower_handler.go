package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/udhaarbook/udhaarbook-backend/internal/domain"
	"github.com/udhaarbook/udhaarbook-backend/internal/service"
)

// BorrowerHandler handles borrower-related HTTP requests
type BorrowerHandler struct {
	borrowerService *service.BorrowerService
}

// NewBorrowerHandler creates a new BorrowerHandler
func NewBorrowerHandler(borrowerService *service.BorrowerService) *BorrowerHandler {
	return &BorrowerHandler{borrowerService: borrowerService}
}

// CreateBorrowerRequest represents the create borrower request body
type CreateBorrowerRequest struct {
	FullName    string `json:"fullName"`
	PhoneNumber string `json:"phoneNumber"`
	Address     string `json:"address"`
	Notes       string `json:"notes,omitempty"`
	IsLoyal     bool   `json:"isLoyal,omitempty"`
}

// UpdateBorrowerRequest represents the update borrower request body.
// All fields are optional; absent fields are left unchanged.
type UpdateBorrowerRequest struct {
	FullName    *string `json:"fullName,omitempty"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
	Address     *string `json:"address,omitempty"`
	Notes       *string `json:"notes,omitempty"`
	IsLoyal     *bool   `json:"isLoyal,omitempty"`
}

// UpdateCibilScoreRequest represents the manual score override body
type UpdateCibilScoreRequest struct {
	CibilScore int32 `json:"cibilScore"`
}

// CreateBorrower handles POST /api/v1/borrowers
func (h *BorrowerHandler) CreateBorrower(c echo.Context) error {
	var req CreateBorrowerRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	borrower := &domain.Borrower{
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
		Notes:       req.Notes,
		IsLoyal:     req.IsLoyal,
	}

	created, err := h.borrowerService.CreateBorrower(borrower)
	if err != nil {
		if errors.Is(err, domain.ErrBorrowerNameEmpty) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "fullName", Message: "Full name is required"},
			})
		}
		if errors.Is(err, domain.ErrBorrowerPhoneEmpty) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "phoneNumber", Message: "Phone number is required"},
			})
		}
		if errors.Is(err, domain.ErrBorrowerAddressEmpty) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "address", Message: "Address is required"},
			})
		}
		if errors.Is(err, domain.ErrPhoneNumberExists) {
			return NewConflictError(c, "A borrower with this phone number already exists")
		}
		log.Error().Err(err).Msg("Failed to create borrower")
		return NewInternalError(c, "Failed to create borrower")
	}

	log.Info().Int64("borrower_id", created.ID).Msg("Borrower created")
	return c.JSON(http.StatusCreated, created)
}

// GetBorrowers handles GET /api/v1/borrowers
func (h *BorrowerHandler) GetBorrowers(c echo.Context) error {
	borrowers, err := h.borrowerService.GetBorrowers()
	if err != nil {
		log.Error().Err(err).Msg("Failed to get borrowers")
		return NewInternalError(c, "Failed to get borrowers")
	}
	return c.JSON(http.StatusOK, borrowers)
}

// SearchBorrowers handles GET /api/v1/borrowers/search?q=
func (h *BorrowerHandler) SearchBorrowers(c echo.Context) error {
	borrowers, err := h.borrowerService.SearchBorrowers(c.QueryParam("q"))
	if err != nil {
		log.Error().Err(err).Msg("Failed to search borrowers")
		return NewInternalError(c, "Failed to search borrowers")
	}
	return c.JSON(http.StatusOK, borrowers)
}

// GetBorrower handles GET /api/v1/borrowers/:id
func (h *BorrowerHandler) GetBorrower(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid borrower ID", nil)
	}

	detail, err := h.borrowerService.GetBorrower(id)
	if err != nil {
		if errors.Is(err, domain.ErrBorrowerNotFound) {
			return NewNotFoundError(c, "Borrower not found")
		}
		log.Error().Err(err).Int64("borrower_id", id).Msg("Failed to get borrower")
		return NewInternalError(c, "Failed to get borrower")
	}
	return c.JSON(http.StatusOK, detail)
}

// UpdateBorrower handles PUT /api/v1/borrowers/:id
func (h *BorrowerHandler) UpdateBorrower(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid borrower ID", nil)
	}

	var req UpdateBorrowerRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	updated, err := h.borrowerService.UpdateBorrower(id, service.BorrowerUpdate{
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
		Notes:       req.Notes,
		IsLoyal:     req.IsLoyal,
	})
	if err != nil {
		if errors.Is(err, domain.ErrBorrowerNotFound) {
			return NewNotFoundError(c, "Borrower not found")
		}
		if errors.Is(err, domain.ErrPhoneNumberExists) {
			return NewConflictError(c, "A borrower with this phone number already exists")
		}
		if errors.Is(err, domain.ErrBorrowerNameEmpty) || errors.Is(err, domain.ErrBorrowerPhoneEmpty) || errors.Is(err, domain.ErrBorrowerAddressEmpty) {
			return NewValidationError(c, err.Error(), nil)
		}
		log.Error().Err(err).Int64("borrower_id", id).Msg("Failed to update borrower")
		return NewInternalError(c, "Failed to update borrower")
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteBorrower handles DELETE /api/v1/borrowers/:id
func (h *BorrowerHandler) DeleteBorrower(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid borrower ID", nil)
	}

	if err := h.borrowerService.DeleteBorrower(id); err != nil {
		if errors.Is(err, domain.ErrBorrowerNotFound) {
			return NewNotFoundError(c, "Borrower not found")
		}
		if errors.Is(err, domain.ErrBorrowerHasLoans) {
			return NewConflictError(c, "Borrower has loans and cannot be deleted")
		}
		log.Error().Err(err).Int64("borrower_id", id).Msg("Failed to delete borrower")
		return NewInternalError(c, "Failed to delete borrower")
	}

	log.Info().Int64("borrower_id", id).Msg("Borrower deleted")
	return c.NoContent(http.StatusNoContent)
}

// UpdateCibilScore handles PATCH /api/v1/borrowers/:id/cibil-score
func (h *BorrowerHandler) UpdateCibilScore(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid borrower ID", nil)
	}

	var req UpdateCibilScoreRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	updated, err := h.borrowerService.SetCibilScore(id, req.CibilScore)
	if err != nil {
		if errors.Is(err, domain.ErrBorrowerNotFound) {
			return NewNotFoundError(c, "Borrower not found")
		}
		log.Error().Err(err).Int64("borrower_id", id).Msg("Failed to update cibil score")
		return NewInternalError(c, "Failed to update cibil score")
	}
	return c.JSON(http.StatusOK, updated)
}

// parseIDParam parses a positive int64 path parameter
func parseIDParam(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}
