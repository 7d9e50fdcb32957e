package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/udhaarbook/udhaarbook-backend/internal/domain"
	"github.com/udhaarbook/udhaarbook-backend/internal/testutil"
)

func TestComputeTerms(t *testing.T) {
	tests := []struct {
		name              string
		principal         string
		rate              string
		installments      int32
		wantRepayable     string
		wantPerInstalment string
		wantErr           error
	}{
		{
			name:              "ten percent over ten installments",
			principal:         "10000",
			rate:              "10",
			installments:      10,
			wantRepayable:     "11000",
			wantPerInstalment: "1100",
		},
		{
			name:              "zero interest",
			principal:         "5000",
			rate:              "0",
			installments:      5,
			wantRepayable:     "5000",
			wantPerInstalment: "1000",
		},
		{
			name:         "zero principal",
			principal:    "0",
			rate:         "10",
			installments: 10,
			wantErr:      domain.ErrLoanPrincipalInvalid,
		},
		{
			name:         "negative rate",
			principal:    "1000",
			rate:         "-1",
			installments: 10,
			wantErr:      domain.ErrLoanInterestRateInvalid,
		},
		{
			name:         "zero installments",
			principal:    "1000",
			rate:         "10",
			installments: 0,
			wantErr:      domain.ErrLoanInstallmentsInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			principal, _ := decimal.NewFromString(tt.principal)
			rate, _ := decimal.NewFromString(tt.rate)

			repayable, perInstallment, err := ComputeTerms(principal, rate, tt.installments)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			wantRepayable, _ := decimal.NewFromString(tt.wantRepayable)
			wantPer, _ := decimal.NewFromString(tt.wantPerInstalment)
			assert.True(t, repayable.Equal(wantRepayable), "repayable = %s, want %s", repayable, wantRepayable)
			assert.True(t, perInstallment.Equal(wantPer), "per installment = %s, want %s", perInstallment, wantPer)
		})
	}
}

func TestGenerateSchedule(t *testing.T) {
	loan := &domain.Loan{
		ID:                   7,
		TotalInstallments:    4,
		CycleDays:            7,
		FirstInstallmentDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		InstallmentAmount:    decimal.RequireFromString("2750"),
	}

	schedule := GenerateSchedule(loan)
	require.Len(t, schedule, 4)

	for idx, inst := range schedule {
		assert.Equal(t, int64(7), inst.LoanID)
		assert.Equal(t, int32(idx+1), inst.Number)
		assert.Equal(t, domain.StatusUnpaid, inst.Status)
		assert.True(t, inst.Amount.Equal(loan.InstallmentAmount))

		wantDue := time.Date(2025, 3, 1+idx*7, 0, 0, 0, 0, time.UTC)
		assert.True(t, inst.DueDate.Equal(wantDue), "installment %d due %v, want %v", idx+1, inst.DueDate, wantDue)
	}
}

func newLoanServiceFixture() (*LoanService, *testutil.MockBorrowerRepository, *testutil.MockLoanRepository, *testutil.MockInstallmentRepository) {
	borrowers := testutil.NewMockBorrowerRepository()
	loans := testutil.NewMockLoanRepository(borrowers)
	installments := testutil.NewMockInstallmentRepository(loans, borrowers)
	svc := NewLoanService(&testutil.MockTxRunner{}, loans, installments, borrowers)
	return svc, borrowers, loans, installments
}

func TestLoanService_CreateLoan(t *testing.T) {
	svc, borrowers, _, installments := newLoanServiceFixture()
	borrowers.AddBorrower(&domain.Borrower{FullName: "Asha Patel", PhoneNumber: "9000000001", Address: "Pune", CibilScore: 650})

	loan := &domain.Loan{
		BorrowerID:           1,
		LoanDate:             time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		Principal:            decimal.RequireFromString("10000"),
		InterestRate:         decimal.RequireFromString("10"),
		TotalInstallments:    10,
		CycleDays:            7,
		FirstInstallmentDate: time.Date(2025, 2, 8, 0, 0, 0, 0, time.UTC),
	}

	detail, err := svc.CreateLoan(context.Background(), loan)
	require.NoError(t, err)

	assert.Equal(t, domain.LoanStatusActive, detail.Loan.Status)
	assert.True(t, detail.Loan.TotalRepayable.Equal(decimal.RequireFromString("11000")))
	assert.True(t, detail.Loan.InstallmentAmount.Equal(decimal.RequireFromString("1100")))
	assert.Len(t, detail.Installments, 10)
	assert.Equal(t, 10, detail.Stats.RemainingInstallments)

	// Schedule must be persisted, all Unpaid
	stored, err := installments.GetByLoan(detail.Loan.ID)
	require.NoError(t, err)
	require.Len(t, stored, 10)
	for _, inst := range stored {
		assert.Equal(t, domain.StatusUnpaid, inst.Status)
	}
}

func TestLoanService_CreateLoan_BorrowerMissing(t *testing.T) {
	svc, _, _, _ := newLoanServiceFixture()

	loan := &domain.Loan{
		BorrowerID:           42,
		LoanDate:             time.Now(),
		Principal:            decimal.RequireFromString("10000"),
		InterestRate:         decimal.RequireFromString("10"),
		TotalInstallments:    10,
		CycleDays:            7,
		FirstInstallmentDate: time.Now(),
	}

	_, err := svc.CreateLoan(context.Background(), loan)
	assert.ErrorIs(t, err, domain.ErrBorrowerNotFound)
}

func TestLoanService_GetLoan_Stats(t *testing.T) {
	svc, borrowers, loans, installments := newLoanServiceFixture()
	borrowers.AddBorrower(&domain.Borrower{FullName: "Asha Patel", PhoneNumber: "9000000001", Address: "Pune"})
	loans.AddLoan(&domain.Loan{
		ID:             1,
		BorrowerID:     1,
		Status:         domain.LoanStatusActive,
		TotalRepayable: decimal.RequireFromString("3000"),
	})

	paidDate := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	installments.AddInstallment(&domain.Installment{
		LoanID: 1, Number: 1, Status: domain.StatusPaidOnTime,
		DueDate:    time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Amount:     decimal.RequireFromString("1000"),
		PaidAmount: decimal.RequireFromString("1000"),
		PaidDate:   &paidDate,
	})
	installments.AddInstallment(&domain.Installment{
		LoanID: 1, Number: 2, Status: domain.StatusUnpaid,
		DueDate: time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC),
		Amount:  decimal.RequireFromString("1000"),
	})
	installments.AddInstallment(&domain.Installment{
		LoanID: 1, Number: 3, Status: domain.StatusUnpaid,
		DueDate: time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		Amount:  decimal.RequireFromString("1000"),
	})

	detail, err := svc.GetLoan(1)
	require.NoError(t, err)

	assert.Equal(t, 1, detail.Stats.PaidInstallments)
	assert.Equal(t, 2, detail.Stats.RemainingInstallments)
	assert.True(t, detail.Stats.TotalPaid.Equal(decimal.RequireFromString("1000")))
	assert.True(t, detail.Stats.RemainingAmount.Equal(decimal.RequireFromString("2000")))
	assert.Equal(t, "Asha Patel", detail.Borrower.FullName)
}

func TestLoanService_UpdateLoanStatus_Invalid(t *testing.T) {
	svc, _, _, _ := newLoanServiceFixture()

	_, err := svc.UpdateLoanStatus(1, "Defaulted")
	assert.ErrorIs(t, err, domain.ErrLoanStatusInvalid)
}

func TestLoanService_GetLoans_FilterByStatus(t *testing.T) {
	svc, borrowers, loans, _ := newLoanServiceFixture()
	borrowers.AddBorrower(&domain.Borrower{FullName: "Asha Patel", PhoneNumber: "9000000001", Address: "Pune"})
	loans.AddLoan(&domain.Loan{ID: 1, BorrowerID: 1, Status: domain.LoanStatusActive})
	loans.AddLoan(&domain.Loan{ID: 2, BorrowerID: 1, Status: domain.LoanStatusClosed})

	active, err := svc.GetLoans(domain.LoanFilter{Status: domain.LoanStatusActive})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, int64(1), active[0].ID)
	assert.Equal(t, "Asha Patel", active[0].BorrowerName)
}
