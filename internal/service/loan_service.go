package service

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/udhaarbook/udhaarbook-backend/internal/domain"
	"github.com/udhaarbook/udhaarbook-backend/internal/util"
	"github.com/udhaarbook/udhaarbook-backend/internal/websocket"
)

// LoanService handles loan business logic
type LoanService struct {
	txRunner        domain.TxRunner
	loanRepo        domain.LoanRepository
	installmentRepo domain.InstallmentRepository
	borrowerRepo    domain.BorrowerRepository
	eventPublisher  websocket.EventPublisher
}

// NewLoanService creates a new LoanService
func NewLoanService(txRunner domain.TxRunner, loanRepo domain.LoanRepository, installmentRepo domain.InstallmentRepository, borrowerRepo domain.BorrowerRepository) *LoanService {
	return &LoanService{
		txRunner:        txRunner,
		loanRepo:        loanRepo,
		installmentRepo: installmentRepo,
		borrowerRepo:    borrowerRepo,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *LoanService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *LoanService) publishEvent(event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(event)
	}
}

// ComputeTerms derives the repayable total and the flat per-installment amount
// from the loan terms. The amounts are always recomputed here, never accepted
// from callers.
func ComputeTerms(principal, ratePercent decimal.Decimal, totalInstallments int32) (decimal.Decimal, decimal.Decimal, error) {
	if principal.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, decimal.Zero, domain.ErrLoanPrincipalInvalid
	}
	if ratePercent.IsNegative() {
		return decimal.Zero, decimal.Zero, domain.ErrLoanInterestRateInvalid
	}
	if totalInstallments < 1 {
		return decimal.Zero, decimal.Zero, domain.ErrLoanInstallmentsInvalid
	}

	interest := principal.Mul(ratePercent).Div(decimal.NewFromInt(100))
	totalRepayable := principal.Add(interest)
	installmentAmount := totalRepayable.Div(decimal.NewFromInt(int64(totalInstallments)))
	return totalRepayable, installmentAmount, nil
}

// GenerateSchedule builds the full installment schedule for a loan. Due dates
// advance by CycleDays per installment starting at FirstInstallmentDate, and
// every installment is persisted Unpaid; "Upcoming" is derived at read time.
func GenerateSchedule(loan *domain.Loan) []*domain.Installment {
	installments := make([]*domain.Installment, 0, loan.TotalInstallments)
	first := util.StartOfDay(loan.FirstInstallmentDate)
	for i := int32(0); i < loan.TotalInstallments; i++ {
		installments = append(installments, &domain.Installment{
			LoanID:     loan.ID,
			Number:     i + 1,
			DueDate:    util.AddDays(first, int(i*loan.CycleDays)),
			Amount:     loan.InstallmentAmount,
			Status:     domain.StatusUnpaid,
			PaidAmount: decimal.Zero,
		})
	}
	return installments
}

// LoanDetail is a loan with its schedule and collection progress.
type LoanDetail struct {
	Loan         *domain.Loan          `json:"loan"`
	Borrower     *domain.Borrower      `json:"borrower"`
	Installments []*domain.Installment `json:"installments"`
	Stats        *domain.LoanStats     `json:"stats"`
}

// CreateLoan validates the terms, recomputes the repayable amounts, and writes
// the loan together with its full installment schedule in one transaction.
func (s *LoanService) CreateLoan(ctx context.Context, loan *domain.Loan) (*LoanDetail, error) {
	if _, err := s.borrowerRepo.GetByID(loan.BorrowerID); err != nil {
		return nil, err
	}

	totalRepayable, installmentAmount, err := ComputeTerms(loan.Principal, loan.InterestRate, loan.TotalInstallments)
	if err != nil {
		return nil, err
	}
	loan.TotalRepayable = totalRepayable
	loan.InstallmentAmount = installmentAmount
	loan.Status = domain.LoanStatusActive
	loan.AmountPaid = decimal.Zero

	if err := loan.Validate(); err != nil {
		return nil, err
	}

	var created *domain.Loan
	var schedule []*domain.Installment
	err = s.txRunner.WithinTx(ctx, func(tx any) error {
		created, err = s.loanRepo.CreateTx(tx, loan)
		if err != nil {
			return err
		}
		schedule = GenerateSchedule(created)
		return s.installmentRepo.CreateBatchTx(tx, schedule)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(websocket.LoanCreated(created))

	return &LoanDetail{
		Loan:         created,
		Installments: schedule,
		Stats: &domain.LoanStats{
			TotalPaid:             decimal.Zero,
			RemainingAmount:       created.TotalRepayable,
			PaidInstallments:      0,
			RemainingInstallments: len(schedule),
		},
	}, nil
}

// GetLoan retrieves a loan with its borrower, schedule and progress totals
func (s *LoanService) GetLoan(id int64) (*LoanDetail, error) {
	loan, err := s.loanRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	borrower, err := s.borrowerRepo.GetByID(loan.BorrowerID)
	if err != nil {
		return nil, err
	}

	installments, err := s.installmentRepo.GetByLoan(id)
	if err != nil {
		return nil, err
	}

	return &LoanDetail{
		Loan:         loan,
		Borrower:     borrower,
		Installments: installments,
		Stats:        loanStats(loan, installments),
	}, nil
}

// GetLoans retrieves loans with borrower summaries, newest first
func (s *LoanService) GetLoans(filter domain.LoanFilter) ([]*domain.LoanWithBorrower, error) {
	if filter.Status != "" && !domain.ValidLoanStatus(filter.Status) {
		return nil, domain.ErrLoanStatusInvalid
	}
	return s.loanRepo.GetAll(filter)
}

// GetLoansByBorrower retrieves all loans of one borrower
func (s *LoanService) GetLoansByBorrower(borrowerID int64) ([]*domain.Loan, error) {
	if _, err := s.borrowerRepo.GetByID(borrowerID); err != nil {
		return nil, err
	}
	return s.loanRepo.GetByBorrower(borrowerID)
}

// UpdateLoanStatus sets the loan status to Active or Closed
func (s *LoanService) UpdateLoanStatus(id int64, status domain.LoanStatus) (*domain.Loan, error) {
	if !domain.ValidLoanStatus(status) {
		return nil, domain.ErrLoanStatusInvalid
	}

	loan, err := s.loanRepo.UpdateStatus(id, status)
	if err != nil {
		return nil, err
	}

	if status == domain.LoanStatusClosed {
		s.publishEvent(websocket.LoanClosed(loan))
	}
	return loan, nil
}

func loanStats(loan *domain.Loan, installments []*domain.Installment) *domain.LoanStats {
	stats := &domain.LoanStats{
		TotalPaid:       decimal.Zero,
		RemainingAmount: decimal.Zero,
	}
	for _, inst := range installments {
		if inst.IsPaid() {
			stats.PaidInstallments++
			stats.TotalPaid = stats.TotalPaid.Add(inst.PaidAmount)
		} else {
			stats.RemainingInstallments++
			stats.RemainingAmount = stats.RemainingAmount.Add(inst.Amount)
		}
	}
	return stats
}
