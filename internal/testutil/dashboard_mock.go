package testutil

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/udhaarbook/udhaarbook-backend/internal/domain"
)

// MockDashboardRepository computes the aggregate queries in memory over the
// other mocks' data, standing in for the SQL GROUP BY/SUM queries.
type MockDashboardRepository struct {
	Borrowers    *MockBorrowerRepository
	Loans        *MockLoanRepository
	Installments *MockInstallmentRepository
}

// NewMockDashboardRepository creates a new MockDashboardRepository over the
// given mocks.
func NewMockDashboardRepository(borrowers *MockBorrowerRepository, loans *MockLoanRepository, installments *MockInstallmentRepository) *MockDashboardRepository {
	return &MockDashboardRepository{
		Borrowers:    borrowers,
		Loans:        loans,
		Installments: installments,
	}
}

// SumPrincipalByStatus sums the principal of loans in a status
func (m *MockDashboardRepository) SumPrincipalByStatus(status domain.LoanStatus) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, l := range m.Loans.Loans {
		if l.Status == status {
			sum = sum.Add(l.Principal)
		}
	}
	return sum, nil
}

// SumPrincipal sums the principal across all loans
func (m *MockDashboardRepository) SumPrincipal() (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, l := range m.Loans.Loans {
		sum = sum.Add(l.Principal)
	}
	return sum, nil
}

// SumTotalRepayable sums the repayable amount across all loans
func (m *MockDashboardRepository) SumTotalRepayable() (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, l := range m.Loans.Loans {
		sum = sum.Add(l.TotalRepayable)
	}
	return sum, nil
}

// CountLoansByStatus counts loans in a status
func (m *MockDashboardRepository) CountLoansByStatus(status domain.LoanStatus) (int64, error) {
	var count int64
	for _, l := range m.Loans.Loans {
		if l.Status == status {
			count++
		}
	}
	return count, nil
}

// CountInstallments counts all installments
func (m *MockDashboardRepository) CountInstallments() (int64, error) {
	return int64(len(m.Installments.Installments)), nil
}

// CountInstallmentsByStatus counts installments in a status
func (m *MockDashboardRepository) CountInstallmentsByStatus(status domain.InstallmentStatus) (int64, error) {
	var count int64
	for _, i := range m.Installments.Installments {
		if i.Status == status {
			count++
		}
	}
	return count, nil
}

// SumPaidAmountByStatuses sums paid amounts over the given statuses
func (m *MockDashboardRepository) SumPaidAmountByStatuses(statuses []domain.InstallmentStatus) (decimal.Decimal, error) {
	wanted := make(map[domain.InstallmentStatus]bool, len(statuses))
	for _, s := range statuses {
		wanted[s] = true
	}
	sum := decimal.Zero
	for _, i := range m.Installments.Installments {
		if wanted[i.Status] {
			sum = sum.Add(i.PaidAmount)
		}
	}
	return sum, nil
}

// SumAmountUnpaid sums unpaid installment amounts
func (m *MockDashboardRepository) SumAmountUnpaid() (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, i := range m.Installments.Installments {
		if i.Status == domain.StatusUnpaid {
			sum = sum.Add(i.Amount)
		}
	}
	return sum, nil
}

// SumAmountUnpaidDueBefore sums unpaid amounts due before the day
func (m *MockDashboardRepository) SumAmountUnpaidDueBefore(day time.Time) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, i := range m.Installments.Installments {
		if i.Status == domain.StatusUnpaid && i.DueDate.Before(day) {
			sum = sum.Add(i.Amount)
		}
	}
	return sum, nil
}

// CountUnpaidDueBefore counts unpaid installments due before the day
func (m *MockDashboardRepository) CountUnpaidDueBefore(day time.Time) (int64, error) {
	var count int64
	for _, i := range m.Installments.Installments {
		if i.Status == domain.StatusUnpaid && i.DueDate.Before(day) {
			count++
		}
	}
	return count, nil
}

// CountUnpaidDueAfter counts unpaid installments due after the day
func (m *MockDashboardRepository) CountUnpaidDueAfter(day time.Time) (int64, error) {
	var count int64
	for _, i := range m.Installments.Installments {
		if i.Status == domain.StatusUnpaid && i.DueDate.After(day) {
			count++
		}
	}
	return count, nil
}

// SumUnpaidDueOn sums and counts unpaid installments due exactly on the day
func (m *MockDashboardRepository) SumUnpaidDueOn(day time.Time) (decimal.Decimal, int64, error) {
	sum := decimal.Zero
	var count int64
	for _, i := range m.Installments.Installments {
		if i.Status == domain.StatusUnpaid && i.DueDate.Equal(day) {
			sum = sum.Add(i.Amount)
			count++
		}
	}
	return sum, count, nil
}

// MonthlyCollections buckets paid amounts per month for a year
func (m *MockDashboardRepository) MonthlyCollections(year int) ([]decimal.Decimal, error) {
	buckets := make([]decimal.Decimal, 12)
	for i := range buckets {
		buckets[i] = decimal.Zero
	}
	for _, inst := range m.Installments.Installments {
		if inst.PaidDate == nil || inst.PaidDate.Year() != year {
			continue
		}
		month := int(inst.PaidDate.Month()) - 1
		buckets[month] = buckets[month].Add(inst.PaidAmount)
	}
	return buckets, nil
}

// TopBorrowersByActivePrincipal ranks borrowers by active principal
func (m *MockDashboardRepository) TopBorrowersByActivePrincipal(limit int) ([]*domain.TopBorrower, error) {
	byBorrower := make(map[int64]*domain.TopBorrower)
	for _, l := range m.Loans.Loans {
		if l.Status != domain.LoanStatusActive {
			continue
		}
		tb, ok := byBorrower[l.BorrowerID]
		if !ok {
			b, err := m.Borrowers.GetByID(l.BorrowerID)
			if err != nil {
				continue
			}
			tb = &domain.TopBorrower{
				BorrowerID:     b.ID,
				FullName:       b.FullName,
				PhoneNumber:    b.PhoneNumber,
				CibilScore:     b.CibilScore,
				IsLoyal:        b.IsLoyal,
				TotalPrincipal: decimal.Zero,
			}
			byBorrower[l.BorrowerID] = tb
		}
		tb.ActiveLoanCount++
		tb.TotalPrincipal = tb.TotalPrincipal.Add(l.Principal)
	}

	result := make([]*domain.TopBorrower, 0, len(byBorrower))
	for _, tb := range byBorrower {
		result = append(result, tb)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].TotalPrincipal.GreaterThan(result[j].TotalPrincipal)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// SumCollectedBetween sums paid amounts with payment dates in [from, to)
func (m *MockDashboardRepository) SumCollectedBetween(from, to time.Time) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, i := range m.Installments.Installments {
		if i.PaidDate == nil {
			continue
		}
		if !i.PaidDate.Before(from) && i.PaidDate.Before(to) {
			sum = sum.Add(i.PaidAmount)
		}
	}
	return sum, nil
}

// CollectionsByDay groups paid amounts by calendar day, newest first
func (m *MockDashboardRepository) CollectionsByDay(from, to *time.Time) ([]*domain.CollectionByDay, error) {
	byDay := make(map[string]*domain.CollectionByDay)
	for _, i := range m.Installments.Installments {
		if i.PaidDate == nil {
			continue
		}
		if from != nil && i.PaidDate.Before(*from) {
			continue
		}
		if to != nil && !i.PaidDate.Before(*to) {
			continue
		}
		day := i.PaidDate.Format("2006-01-02")
		row, ok := byDay[day]
		if !ok {
			row = &domain.CollectionByDay{Day: day, TotalAmount: decimal.Zero}
			byDay[day] = row
		}
		row.TotalAmount = row.TotalAmount.Add(i.PaidAmount)
		row.Count++
	}

	result := make([]*domain.CollectionByDay, 0, len(byDay))
	for _, row := range byDay {
		result = append(result, row)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Day > result[j].Day })
	return result, nil
}

// LoanSummaryByStatus groups loans by status
func (m *MockDashboardRepository) LoanSummaryByStatus() ([]*domain.LoanSummaryRow, error) {
	byStatus := make(map[domain.LoanStatus]*domain.LoanSummaryRow)
	for _, l := range m.Loans.Loans {
		row, ok := byStatus[l.Status]
		if !ok {
			row = &domain.LoanSummaryRow{Status: l.Status, TotalAmount: decimal.Zero}
			byStatus[l.Status] = row
		}
		row.Count++
		row.TotalAmount = row.TotalAmount.Add(l.Principal)
	}

	result := make([]*domain.LoanSummaryRow, 0, len(byStatus))
	for _, row := range byStatus {
		result = append(result, row)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Status < result[j].Status })
	return result, nil
}
