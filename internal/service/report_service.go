package service

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/udhaarbook/udhaarbook-backend/internal/domain"
	"github.com/udhaarbook/udhaarbook-backend/internal/util"
)

// ReportService builds the reporting views
type ReportService struct {
	dashboardRepo   domain.DashboardRepository
	borrowerRepo    domain.BorrowerRepository
	installmentRepo domain.InstallmentRepository

	// now is swappable in tests
	now func() time.Time
}

// NewReportService creates a new ReportService
func NewReportService(dashboardRepo domain.DashboardRepository, borrowerRepo domain.BorrowerRepository, installmentRepo domain.InstallmentRepository) *ReportService {
	return &ReportService{
		dashboardRepo:   dashboardRepo,
		borrowerRepo:    borrowerRepo,
		installmentRepo: installmentRepo,
		now:             time.Now,
	}
}

// GetLoanSummary groups the loan book by status
func (s *ReportService) GetLoanSummary() ([]*domain.LoanSummaryRow, error) {
	return s.dashboardRepo.LoanSummaryByStatus()
}

// GetPaymentCollection groups collected payments by calendar day over an
// optional date range.
func (s *ReportService) GetPaymentCollection(from, to *time.Time) ([]*domain.CollectionByDay, error) {
	return s.dashboardRepo.CollectionsByDay(from, to)
}

// OverdueReport is the overdue worklist with its rolled-up total.
type OverdueReport struct {
	Installments []*domain.InstallmentWithBorrower `json:"installments"`
	TotalAmount  decimal.Decimal                   `json:"totalAmount"`
	Count        int                               `json:"count"`
}

// GetOverdueInstallments lists unpaid installments past their due date with
// borrower contact detail.
func (s *ReportService) GetOverdueInstallments() (*OverdueReport, error) {
	today := util.StartOfDay(s.now())
	overdue, err := s.installmentRepo.GetOverdue(today)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, o := range overdue {
		total = total.Add(o.Amount)
	}
	return &OverdueReport{
		Installments: overdue,
		TotalAmount:  total,
		Count:        len(overdue),
	}, nil
}

// GetSummary rolls the whole book up with a month-over-month collection
// comparison and the overall collection rate.
func (s *ReportService) GetSummary() (*domain.ReportSummary, error) {
	totalBorrowers, err := s.borrowerRepo.Count()
	if err != nil {
		return nil, err
	}
	activeLoans, err := s.dashboardRepo.CountLoansByStatus(domain.LoanStatusActive)
	if err != nil {
		return nil, err
	}
	closedLoans, err := s.dashboardRepo.CountLoansByStatus(domain.LoanStatusClosed)
	if err != nil {
		return nil, err
	}
	totalPrincipal, err := s.dashboardRepo.SumPrincipal()
	if err != nil {
		return nil, err
	}
	totalRepayable, err := s.dashboardRepo.SumTotalRepayable()
	if err != nil {
		return nil, err
	}
	totalCollected, err := s.dashboardRepo.SumPaidAmountByStatuses([]domain.InstallmentStatus{
		domain.StatusPaidOnTime, domain.StatusPaidLate, domain.StatusAdvancePaid,
	})
	if err != nil {
		return nil, err
	}
	outstanding, err := s.dashboardRepo.SumAmountUnpaid()
	if err != nil {
		return nil, err
	}

	now := s.now()
	thisStart, thisEnd := util.MonthBounds(now.Year(), now.Month())
	lastStart, lastEnd := util.MonthBounds(thisStart.AddDate(0, -1, 0).Year(), thisStart.AddDate(0, -1, 0).Month())

	thisMonth, err := s.dashboardRepo.SumCollectedBetween(thisStart, thisEnd)
	if err != nil {
		return nil, err
	}
	lastMonth, err := s.dashboardRepo.SumCollectedBetween(lastStart, lastEnd)
	if err != nil {
		return nil, err
	}

	collectionRate := decimal.Zero
	if totalRepayable.IsPositive() {
		collectionRate = totalCollected.Div(totalRepayable).Mul(decimal.NewFromInt(100))
	}

	return &domain.ReportSummary{
		TotalBorrowers:       totalBorrowers,
		ActiveLoans:          activeLoans,
		CompletedLoans:       closedLoans,
		TotalPrincipal:       totalPrincipal,
		TotalCollected:       totalCollected,
		OutstandingAmount:    outstanding,
		TotalInterestEarned:  totalRepayable.Sub(totalPrincipal),
		CollectionRate:       collectionRate,
		ThisMonthCollections: thisMonth,
		LastMonthCollections: lastMonth,
	}, nil
}
