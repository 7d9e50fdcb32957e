package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/udhaarbook/udhaarbook-backend/internal/domain"
	"github.com/udhaarbook/udhaarbook-backend/internal/service"
	"github.com/udhaarbook/udhaarbook-backend/internal/testutil"
)

func newPaymentHandler() (*PaymentHandler, *testutil.MockBorrowerRepository, *testutil.MockLoanRepository, *testutil.MockInstallmentRepository) {
	borrowerRepo := testutil.NewMockBorrowerRepository()
	loanRepo := testutil.NewMockLoanRepository(borrowerRepo)
	installmentRepo := testutil.NewMockInstallmentRepository(loanRepo, borrowerRepo)
	paymentService := service.NewPaymentService(&testutil.MockTxRunner{}, installmentRepo, loanRepo, borrowerRepo)
	return NewPaymentHandler(paymentService), borrowerRepo, loanRepo, installmentRepo
}

func TestCreatePayment_Success(t *testing.T) {
	e := echo.New()
	handler, borrowerRepo, loanRepo, installmentRepo := newPaymentHandler()
	addInstallmentFixture(borrowerRepo, loanRepo, installmentRepo)

	reqBody := `{
		"installmentId": 1,
		"paymentDate": "2025-03-10",
		"paymentMode": "online"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.CreatePayment(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var response domain.PaymentResult
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	// Paid two days after the due date
	if response.Installment.Status != domain.StatusPaidLate {
		t.Errorf("Expected status 'Paid late', got %s", response.Installment.Status)
	}

	if response.BorrowerScore != 649 {
		t.Errorf("Expected borrower score 649, got %d", response.BorrowerScore)
	}
}

func TestCreatePayment_MissingInstallmentID(t *testing.T) {
	e := echo.New()
	handler, _, _, _ := newPaymentHandler()

	reqBody := `{"paymentMode": "cash"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.CreatePayment(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestCreatePayment_InstallmentNotFound(t *testing.T) {
	e := echo.New()
	handler, _, _, _ := newPaymentHandler()

	reqBody := `{"installmentId": 99, "paymentMode": "cash"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.CreatePayment(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

func TestMarkMissed_Success(t *testing.T) {
	e := echo.New()
	handler, borrowerRepo, loanRepo, installmentRepo := newPaymentHandler()
	addInstallmentFixture(borrowerRepo, loanRepo, installmentRepo)

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/payments/1/mark-missed", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("installmentId")
	c.SetParamValues("1")

	if err := handler.MarkMissed(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var response domain.Borrower
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if response.CibilScore != 648 {
		t.Errorf("Expected score 648, got %d", response.CibilScore)
	}

	// The installment itself stays unpaid
	if installmentRepo.Installments[1].Status != domain.StatusUnpaid {
		t.Errorf("Expected installment to stay Unpaid, got %s", installmentRepo.Installments[1].Status)
	}
}

func TestMarkMissed_RejectsPaid(t *testing.T) {
	e := echo.New()
	handler, borrowerRepo, loanRepo, installmentRepo := newPaymentHandler()
	addInstallmentFixture(borrowerRepo, loanRepo, installmentRepo)

	paidDate := time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC)
	installmentRepo.Installments[1].Status = domain.StatusPaidOnTime
	installmentRepo.Installments[1].PaidDate = &paidDate

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/payments/1/mark-missed", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("installmentId")
	c.SetParamValues("1")

	if err := handler.MarkMissed(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", rec.Code)
	}
}

func TestGetPayments_Empty(t *testing.T) {
	e := echo.New()
	handler, _, _, _ := newPaymentHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.GetPayments(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var response service.PaymentList
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if response.Count != 0 {
		t.Errorf("Expected 0 payments, got %d", response.Count)
	}

	if !response.TotalAmount.Equal(decimal.Zero) {
		t.Errorf("Expected zero total, got %s", response.TotalAmount)
	}
}

func TestGetPayments_WithHistory(t *testing.T) {
	e := echo.New()
	handler, borrowerRepo, loanRepo, installmentRepo := newPaymentHandler()
	addInstallmentFixture(borrowerRepo, loanRepo, installmentRepo)

	paidDate := time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC)
	installmentRepo.Installments[1].Status = domain.StatusPaidOnTime
	installmentRepo.Installments[1].PaidAmount = decimal.NewFromInt(1100)
	installmentRepo.Installments[1].PaidDate = &paidDate
	installmentRepo.Installments[1].PaymentMode = domain.PaymentModeCash

	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.GetPayments(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var response service.PaymentList
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if response.Count != 1 {
		t.Fatalf("Expected 1 payment, got %d", response.Count)
	}

	if !response.TotalAmount.Equal(decimal.NewFromInt(1100)) {
		t.Errorf("Expected total 1100, got %s", response.TotalAmount)
	}

	if response.Payments[0].BorrowerName != "Ramesh Kumar" {
		t.Errorf("Expected borrower name 'Ramesh Kumar', got %s", response.Payments[0].BorrowerName)
	}
}
