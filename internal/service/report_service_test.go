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

func newReportServiceFixture() (*ReportService, *testutil.MockBorrowerRepository, *testutil.MockLoanRepository, *testutil.MockInstallmentRepository) {
	borrowers := testutil.NewMockBorrowerRepository()
	loans := testutil.NewMockLoanRepository(borrowers)
	installments := testutil.NewMockInstallmentRepository(loans, borrowers)
	dashboard := testutil.NewMockDashboardRepository(borrowers, loans, installments)

	svc := NewReportService(dashboard, borrowers, installments)
	svc.now = func() time.Time {
		return time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC)
	}
	return svc, borrowers, loans, installments
}

func TestReportService_GetLoanSummary(t *testing.T) {
	svc, _, loans, _ := newReportServiceFixture()
	loans.AddLoan(&domain.Loan{ID: 1, Status: domain.LoanStatusActive, Principal: decimal.RequireFromString("10000")})
	loans.AddLoan(&domain.Loan{ID: 2, Status: domain.LoanStatusActive, Principal: decimal.RequireFromString("4000")})
	loans.AddLoan(&domain.Loan{ID: 3, Status: domain.LoanStatusClosed, Principal: decimal.RequireFromString("5000")})

	rows, err := svc.GetLoanSummary()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, domain.LoanStatusActive, rows[0].Status)
	assert.Equal(t, int64(2), rows[0].Count)
	assert.True(t, rows[0].TotalAmount.Equal(decimal.RequireFromString("14000")))
	assert.Equal(t, domain.LoanStatusClosed, rows[1].Status)
	assert.Equal(t, int64(1), rows[1].Count)
}

func TestReportService_GetPaymentCollection_Range(t *testing.T) {
	svc, _, _, installments := newReportServiceFixture()

	day1 := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	day1b := time.Date(2025, 3, 1, 17, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)

	installments.AddInstallment(&domain.Installment{
		LoanID: 1, Number: 1, Status: domain.StatusPaidOnTime,
		DueDate:    time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		PaidAmount: decimal.RequireFromString("100"), PaidDate: &day1,
	})
	installments.AddInstallment(&domain.Installment{
		LoanID: 1, Number: 2, Status: domain.StatusPaidLate,
		DueDate:    time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		PaidAmount: decimal.RequireFromString("150"), PaidDate: &day1b,
	})
	installments.AddInstallment(&domain.Installment{
		LoanID: 1, Number: 3, Status: domain.StatusPaidOnTime,
		DueDate:    time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC),
		PaidAmount: decimal.RequireFromString("200"), PaidDate: &day2,
	})

	rows, err := svc.GetPaymentCollection(nil, nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Newest day first
	assert.Equal(t, "2025-03-02", rows[0].Day)
	assert.Equal(t, "2025-03-01", rows[1].Day)
	assert.True(t, rows[1].TotalAmount.Equal(decimal.RequireFromString("250")))
	assert.Equal(t, int64(2), rows[1].Count)

	// Bounded range excludes day 2
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	bounded, err := svc.GetPaymentCollection(&from, &to)
	require.NoError(t, err)
	require.Len(t, bounded, 1)
	assert.Equal(t, "2025-03-01", bounded[0].Day)
}

func TestReportService_GetOverdueInstallments(t *testing.T) {
	svc, borrowers, loans, installments := newReportServiceFixture()
	borrowers.AddBorrower(&domain.Borrower{FullName: "Asha Patel", PhoneNumber: "9000000001", Address: "Pune"})
	loans.AddLoan(&domain.Loan{ID: 1, BorrowerID: 1, Status: domain.LoanStatusActive})

	installments.AddInstallment(&domain.Installment{
		LoanID: 1, Number: 1, Status: domain.StatusUnpaid,
		DueDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Amount:  decimal.RequireFromString("1100"),
	})
	installments.AddInstallment(&domain.Installment{
		LoanID: 1, Number: 2, Status: domain.StatusUnpaid,
		DueDate: time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC),
		Amount:  decimal.RequireFromString("1100"),
	})

	report, err := svc.GetOverdueInstallments()
	require.NoError(t, err)

	require.Equal(t, 1, report.Count)
	assert.True(t, report.TotalAmount.Equal(decimal.RequireFromString("1100")))
	assert.Equal(t, "Asha Patel", report.Installments[0].BorrowerName)
	assert.Equal(t, "Pune", report.Installments[0].BorrowerAddress)
}

func TestReportService_GetSummary(t *testing.T) {
	svc, borrowers, loans, installments := newReportServiceFixture()
	borrowers.AddBorrower(&domain.Borrower{FullName: "Asha Patel", PhoneNumber: "9000000001", Address: "Pune"})

	loans.AddLoan(&domain.Loan{
		ID: 1, BorrowerID: 1, Status: domain.LoanStatusActive,
		Principal:      decimal.RequireFromString("10000"),
		TotalRepayable: decimal.RequireFromString("11000"),
	})

	thisMonth := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	lastMonth := time.Date(2025, 2, 20, 0, 0, 0, 0, time.UTC)
	installments.AddInstallment(&domain.Installment{
		LoanID: 1, Number: 1, Status: domain.StatusPaidOnTime,
		DueDate:    thisMonth,
		PaidAmount: decimal.RequireFromString("1100"), PaidDate: &thisMonth,
	})
	installments.AddInstallment(&domain.Installment{
		LoanID: 1, Number: 2, Status: domain.StatusPaidLate,
		DueDate:    lastMonth,
		PaidAmount: decimal.RequireFromString("1100"), PaidDate: &lastMonth,
	})
	installments.AddInstallment(&domain.Installment{
		LoanID: 1, Number: 3, Status: domain.StatusUnpaid,
		DueDate: time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC),
		Amount:  decimal.RequireFromString("8800"),
	})

	summary, err := svc.GetSummary()
	require.NoError(t, err)

	assert.Equal(t, int64(1), summary.TotalBorrowers)
	assert.Equal(t, int64(1), summary.ActiveLoans)
	assert.Equal(t, int64(0), summary.CompletedLoans)
	assert.True(t, summary.TotalPrincipal.Equal(decimal.RequireFromString("10000")))
	assert.True(t, summary.TotalCollected.Equal(decimal.RequireFromString("2200")))
	assert.True(t, summary.OutstandingAmount.Equal(decimal.RequireFromString("8800")))
	assert.True(t, summary.TotalInterestEarned.Equal(decimal.RequireFromString("1000")))
	assert.True(t, summary.ThisMonthCollections.Equal(decimal.RequireFromString("1100")))
	assert.True(t, summary.LastMonthCollections.Equal(decimal.RequireFromString("1100")))
	assert.True(t, summary.CollectionRate.Equal(decimal.RequireFromString("20")))
}
