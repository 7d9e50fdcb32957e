package service

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/udhaarbook/udhaarbook-backend/internal/domain"
	"github.com/udhaarbook/udhaarbook-backend/internal/util"
)

const topBorrowersLimit = 10

const dailyCollectionUpcomingLimit = 10

// DashboardService assembles the aggregate views over the loan book
type DashboardService struct {
	dashboardRepo   domain.DashboardRepository
	borrowerRepo    domain.BorrowerRepository
	installmentRepo domain.InstallmentRepository

	// now is swappable in tests
	now func() time.Time
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(dashboardRepo domain.DashboardRepository, borrowerRepo domain.BorrowerRepository, installmentRepo domain.InstallmentRepository) *DashboardService {
	return &DashboardService{
		dashboardRepo:   dashboardRepo,
		borrowerRepo:    borrowerRepo,
		installmentRepo: installmentRepo,
		now:             time.Now,
	}
}

// GetStats assembles the full dashboard aggregate
func (s *DashboardService) GetStats() (*domain.DashboardStats, error) {
	today := util.StartOfDay(s.now())

	invested, err := s.dashboardRepo.SumPrincipalByStatus(domain.LoanStatusActive)
	if err != nil {
		return nil, err
	}
	totalPrincipal, err := s.dashboardRepo.SumPrincipal()
	if err != nil {
		return nil, err
	}
	recovered, err := s.dashboardRepo.SumPaidAmountByStatuses([]domain.InstallmentStatus{
		domain.StatusPaidOnTime, domain.StatusPaidLate,
	})
	if err != nil {
		return nil, err
	}
	advance, err := s.dashboardRepo.SumPaidAmountByStatuses([]domain.InstallmentStatus{
		domain.StatusAdvancePaid,
	})
	if err != nil {
		return nil, err
	}
	pending, err := s.dashboardRepo.SumAmountUnpaid()
	if err != nil {
		return nil, err
	}
	overdueAmount, err := s.dashboardRepo.SumAmountUnpaidDueBefore(today)
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
	borrowerCount, err := s.borrowerRepo.Count()
	if err != nil {
		return nil, err
	}

	totalInstallments, err := s.dashboardRepo.CountInstallments()
	if err != nil {
		return nil, err
	}
	paidOnTime, err := s.dashboardRepo.CountInstallmentsByStatus(domain.StatusPaidOnTime)
	if err != nil {
		return nil, err
	}
	paidLate, err := s.dashboardRepo.CountInstallmentsByStatus(domain.StatusPaidLate)
	if err != nil {
		return nil, err
	}
	advancePaid, err := s.dashboardRepo.CountInstallmentsByStatus(domain.StatusAdvancePaid)
	if err != nil {
		return nil, err
	}
	unpaidTotal, err := s.dashboardRepo.CountInstallmentsByStatus(domain.StatusUnpaid)
	if err != nil {
		return nil, err
	}
	upcoming, err := s.dashboardRepo.CountUnpaidDueAfter(today)
	if err != nil {
		return nil, err
	}
	overdueCount, err := s.dashboardRepo.CountUnpaidDueBefore(today)
	if err != nil {
		return nil, err
	}
	todayDueAmount, todayDueCount, err := s.dashboardRepo.SumUnpaidDueOn(today)
	if err != nil {
		return nil, err
	}

	totalCollected := recovered.Add(advance)

	return &domain.DashboardStats{
		TotalInvestedAmount:  invested,
		TotalRecoveredAmount: recovered,
		AdvanceCollected:     advance,
		TotalProfit:          totalCollected.Sub(totalPrincipal),
		PendingAmount:        pending,
		OverdueAmount:        overdueAmount,
		ActiveLoanCount:      activeLoans,
		TotalBorrowerCount:   borrowerCount,
		LoanStats: domain.LoanBookStats{
			ActiveLoans: activeLoans,
			ClosedLoans: closedLoans,
			TotalLoans:  activeLoans + closedLoans,
		},
		InstallmentStats: domain.InstallmentBookStats{
			TodayDue:       todayDueCount,
			TodayDueAmount: todayDueAmount,
			Overdue:        overdueCount,
			Total:          totalInstallments,
			Paid:           paidOnTime + paidLate,
			AdvancePaid:    advancePaid,
			Unpaid:         unpaidTotal - upcoming,
			Upcoming:       upcoming,
		},
		CollectionStats: domain.CollectionStats{
			TotalRecovered:   recovered,
			AdvanceCollected: advance,
			TotalCollected:   totalCollected,
		},
	}, nil
}

// GetMonthlyCollections returns the 12-bucket collection histogram for a year
func (s *DashboardService) GetMonthlyCollections(year int) (*domain.MonthlyCollections, error) {
	if year == 0 {
		year = s.now().Year()
	}

	buckets, err := s.dashboardRepo.MonthlyCollections(year)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, b := range buckets {
		total = total.Add(b)
	}
	return &domain.MonthlyCollections{
		Year:            year,
		Collections:     buckets,
		TotalCollection: total,
	}, nil
}

// GetTopBorrowers ranks borrowers by the principal of their active loans
func (s *DashboardService) GetTopBorrowers() ([]*domain.TopBorrower, error) {
	return s.dashboardRepo.TopBorrowersByActivePrincipal(topBorrowersLimit)
}

// GetDailyCollection builds the collection worklist: everything due today
// plus the next few upcoming unpaid installments.
func (s *DashboardService) GetDailyCollection() ([]*domain.DailyCollectionEntry, error) {
	today := util.StartOfDay(s.now())

	due, err := s.installmentRepo.GetDueOn(today)
	if err != nil {
		return nil, err
	}
	upcoming, err := s.installmentRepo.GetUpcoming(today, dailyCollectionUpcomingLimit)
	if err != nil {
		return nil, err
	}

	entries := make([]*domain.DailyCollectionEntry, 0, len(due)+len(upcoming))
	for _, d := range due {
		entries = append(entries, dailyEntry(d, domain.StatusUnpaid))
	}
	for _, u := range upcoming {
		entries = append(entries, dailyEntry(u, domain.StatusUpcoming))
	}
	return entries, nil
}

func dailyEntry(i *domain.InstallmentWithBorrower, status domain.InstallmentStatus) *domain.DailyCollectionEntry {
	inst := i.Installment
	inst.Status = status
	return &domain.DailyCollectionEntry{
		Installment:   inst,
		BorrowerID:    i.BorrowerID,
		BorrowerName:  i.BorrowerName,
		BorrowerPhone: i.BorrowerPhone,
		DueDate:       i.DueDate,
		Amount:        i.Amount,
		Status:        status,
	}
}
