package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/udhaarbook/udhaarbook-backend/internal/domain"
	"github.com/udhaarbook/udhaarbook-backend/internal/testutil"
)

func newInstallmentServiceFixture(today time.Time) (*InstallmentService, *testutil.MockInstallmentRepository, *testutil.MockLoanRepository) {
	borrowers := testutil.NewMockBorrowerRepository()
	loans := testutil.NewMockLoanRepository(borrowers)
	installments := testutil.NewMockInstallmentRepository(loans, borrowers)
	svc := NewInstallmentService(installments, loans)
	svc.now = func() time.Time { return today }
	return svc, installments, loans
}

func TestInstallmentService_GetInstallments_SplitsUnpaidAndUpcoming(t *testing.T) {
	today := time.Date(2025, 3, 5, 14, 0, 0, 0, time.UTC)
	svc, installments, _ := newInstallmentServiceFixture(today)

	// overdue, due today, future: all persisted Unpaid
	installments.AddInstallment(&domain.Installment{
		LoanID: 1, Number: 1, Status: domain.StatusUnpaid,
		DueDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Amount:  decimal.RequireFromString("100"),
	})
	installments.AddInstallment(&domain.Installment{
		LoanID: 1, Number: 2, Status: domain.StatusUnpaid,
		DueDate: time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC),
		Amount:  decimal.RequireFromString("100"),
	})
	installments.AddInstallment(&domain.Installment{
		LoanID: 1, Number: 3, Status: domain.StatusUnpaid,
		DueDate: time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC),
		Amount:  decimal.RequireFromString("100"),
	})

	unpaid, err := svc.GetInstallments(domain.InstallmentListFilter{Status: domain.StatusUnpaid})
	require.NoError(t, err)
	require.Len(t, unpaid, 2)
	for _, inst := range unpaid {
		assert.Equal(t, domain.StatusUnpaid, inst.Status)
	}

	upcoming, err := svc.GetInstallments(domain.InstallmentListFilter{Status: domain.StatusUpcoming})
	require.NoError(t, err)
	require.Len(t, upcoming, 1)
	assert.Equal(t, domain.StatusUpcoming, upcoming[0].Status)
	assert.Equal(t, int32(3), upcoming[0].Number)
}

func TestInstallmentService_GetInstallments_InvalidStatus(t *testing.T) {
	svc, _, _ := newInstallmentServiceFixture(time.Now())

	_, err := svc.GetInstallments(domain.InstallmentListFilter{Status: "Pending"})
	assert.ErrorIs(t, err, domain.ErrInstallmentStatusInvalid)
}

func TestInstallmentService_GetInstallments_Limit(t *testing.T) {
	today := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
	svc, installments, _ := newInstallmentServiceFixture(today)

	for n := 1; n <= 5; n++ {
		installments.AddInstallment(&domain.Installment{
			LoanID: 1, Number: int32(n), Status: domain.StatusUnpaid,
			DueDate: time.Date(2025, 3, 5+n, 0, 0, 0, 0, time.UTC),
			Amount:  decimal.RequireFromString("100"),
		})
	}

	result, err := svc.GetInstallments(domain.InstallmentListFilter{Status: domain.StatusUpcoming, Limit: 3})
	require.NoError(t, err)
	assert.Len(t, result, 3)
}

func TestInstallmentService_GetInstallmentsByLoan_DisplayStatus(t *testing.T) {
	today := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
	svc, installments, loans := newInstallmentServiceFixture(today)

	loans.AddLoan(&domain.Loan{ID: 1, BorrowerID: 1, Status: domain.LoanStatusActive})
	installments.AddInstallment(&domain.Installment{
		LoanID: 1, Number: 1, Status: domain.StatusUnpaid,
		DueDate: time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC),
		Amount:  decimal.RequireFromString("100"),
	})

	result, err := svc.GetInstallmentsByLoan(1)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, domain.StatusUpcoming, result[0].Status)
}

func TestInstallmentService_GetInstallmentsByLoan_LoanMissing(t *testing.T) {
	svc, _, _ := newInstallmentServiceFixture(time.Now())

	_, err := svc.GetInstallmentsByLoan(42)
	assert.ErrorIs(t, err, domain.ErrLoanNotFound)
}

func TestInstallmentService_UpdateInstallment_RejectsPaid(t *testing.T) {
	svc, installments, _ := newInstallmentServiceFixture(time.Now())

	installments.AddInstallment(&domain.Installment{
		LoanID: 1, Number: 1, Status: domain.StatusPaidOnTime,
		DueDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Amount:  decimal.RequireFromString("100"),
	})

	status := domain.StatusUnpaid
	_, err := svc.UpdateInstallment(1, domain.InstallmentUpdate{Status: &status})
	assert.ErrorIs(t, err, domain.ErrInstallmentAlreadyPaid)
}

func TestInstallmentService_UpdateInstallment_RejectsUpcomingStatus(t *testing.T) {
	svc, installments, _ := newInstallmentServiceFixture(time.Now())

	installments.AddInstallment(&domain.Installment{
		LoanID: 1, Number: 1, Status: domain.StatusUnpaid,
		DueDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Amount:  decimal.RequireFromString("100"),
	})

	// Upcoming is a display label, never writable
	status := domain.StatusUpcoming
	_, err := svc.UpdateInstallment(1, domain.InstallmentUpdate{Status: &status})
	assert.ErrorIs(t, err, domain.ErrInstallmentStatusInvalid)
}

func TestInstallmentService_UpdateInstallment(t *testing.T) {
	svc, installments, _ := newInstallmentServiceFixture(time.Now())

	installments.AddInstallment(&domain.Installment{
		LoanID: 1, Number: 1, Status: domain.StatusUnpaid,
		DueDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Amount:  decimal.RequireFromString("100"),
	})

	mode := domain.PaymentModeOnline
	amount := decimal.RequireFromString("100")
	updated, err := svc.UpdateInstallment(1, domain.InstallmentUpdate{
		PaymentMode: &mode,
		PaidAmount:  &amount,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.PaymentModeOnline, updated.PaymentMode)
	assert.True(t, updated.PaidAmount.Equal(amount))
}
