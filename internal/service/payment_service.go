package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/udhaarbook/udhaarbook-backend/internal/domain"
	"github.com/udhaarbook/udhaarbook-backend/internal/util"
	"github.com/udhaarbook/udhaarbook-backend/internal/websocket"
)

// PaymentService is the single payment engine. Every payment entry point goes
// through RecordPayment, so the on-time rule and the score deltas are applied
// in exactly one place.
type PaymentService struct {
	txRunner        domain.TxRunner
	installmentRepo domain.InstallmentRepository
	loanRepo        domain.LoanRepository
	borrowerRepo    domain.BorrowerRepository
	eventPublisher  websocket.EventPublisher

	// now is swappable in tests
	now func() time.Time
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(txRunner domain.TxRunner, installmentRepo domain.InstallmentRepository, loanRepo domain.LoanRepository, borrowerRepo domain.BorrowerRepository) *PaymentService {
	return &PaymentService{
		txRunner:        txRunner,
		installmentRepo: installmentRepo,
		loanRepo:        loanRepo,
		borrowerRepo:    borrowerRepo,
		now:             time.Now,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *PaymentService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *PaymentService) publishEvent(event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(event)
	}
}

// RecordPaymentInput carries what the caller controls about a payment. The
// resulting status and score delta are derived, never supplied.
type RecordPaymentInput struct {
	PaymentDate   time.Time
	PaymentMode   domain.PaymentMode
	IsLenderDelay bool
	Notes         string
}

// resolveStatus applies the canonical outcome rule: advance mode wins, then
// the date-only on-time comparison. A lender-delay override records on time
// regardless of the dates.
func resolveStatus(mode domain.PaymentMode, paymentDate, dueDate time.Time, isLenderDelay bool) domain.InstallmentStatus {
	if mode == domain.PaymentModeAdvance {
		return domain.StatusAdvancePaid
	}
	if isLenderDelay || util.OnOrBefore(paymentDate, dueDate) {
		return domain.StatusPaidOnTime
	}
	return domain.StatusPaidLate
}

// RecordPayment settles one installment. The installment, the loan's running
// paid total, the borrower's score, and (when the schedule completes) the
// loan status all change in a single transaction; none of it applies if any
// step fails.
func (s *PaymentService) RecordPayment(ctx context.Context, installmentID int64, input RecordPaymentInput) (*domain.PaymentResult, error) {
	if !domain.ValidPaymentMode(input.PaymentMode) {
		return nil, domain.ErrPaymentModeInvalid
	}

	installment, err := s.installmentRepo.GetByID(installmentID)
	if err != nil {
		return nil, err
	}
	if installment.IsPaid() {
		return nil, domain.ErrInstallmentAlreadyPaid
	}

	loan, err := s.loanRepo.GetByID(installment.LoanID)
	if err != nil {
		return nil, err
	}
	borrower, err := s.borrowerRepo.GetByID(loan.BorrowerID)
	if err != nil {
		return nil, err
	}

	paymentDate := input.PaymentDate
	if paymentDate.IsZero() {
		paymentDate = s.now()
	}

	status := resolveStatus(input.PaymentMode, paymentDate, installment.DueDate, input.IsLenderDelay)
	delta := domain.ScoreDeltaFor(status, input.IsLenderDelay)

	installment.Status = status
	installment.PaidAmount = installment.Amount
	installment.PaidDate = &paymentDate
	installment.PaymentMode = input.PaymentMode
	if input.Notes != "" {
		installment.Notes = input.Notes
	}

	var paid *domain.Installment
	var newScore int32
	loanStatus := loan.Status
	loanClosed := false

	err = s.txRunner.WithinTx(ctx, func(tx any) error {
		paid, err = s.installmentRepo.MarkPaidTx(tx, installment)
		if err != nil {
			return err
		}

		if err := s.loanRepo.AddAmountPaidTx(tx, loan.ID, paid.PaidAmount); err != nil {
			return err
		}

		updated, err := s.borrowerRepo.UpdateScoreTx(tx, borrower.ID, borrower.CibilScore+delta)
		if err != nil {
			return err
		}
		newScore = updated.CibilScore

		// Re-scan the whole schedule inside the transaction so the check
		// sees the update above.
		schedule, err := s.installmentRepo.GetByLoanTx(tx, loan.ID)
		if err != nil {
			return err
		}
		allPaid := true
		for _, inst := range schedule {
			if !inst.IsPaid() {
				allPaid = false
				break
			}
		}
		if allPaid && loan.Status == domain.LoanStatusActive {
			if _, err := s.loanRepo.UpdateStatusTx(tx, loan.ID, domain.LoanStatusClosed); err != nil {
				return err
			}
			loanStatus = domain.LoanStatusClosed
			loanClosed = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	record := &domain.PaymentRecord{
		ReceiptID:     uuid.New(),
		InstallmentID: paid.ID,
		LoanID:        loan.ID,
		BorrowerName:  borrower.FullName,
		Amount:        paid.PaidAmount,
		PaymentDate:   paymentDate,
		PaymentMode:   input.PaymentMode,
		Status:        status,
		IsLenderDelay: input.IsLenderDelay,
		Notes:         input.Notes,
	}

	s.publishEvent(websocket.InstallmentPaid(paid))
	if loanClosed {
		s.publishEvent(websocket.LoanClosed(map[string]interface{}{
			"id":     loan.ID,
			"status": string(domain.LoanStatusClosed),
		}))
	}

	return &domain.PaymentResult{
		Installment:   paid,
		LoanStatus:    loanStatus,
		BorrowerScore: newScore,
		Payment:       record,
	}, nil
}

// MarkMissed penalizes the borrower's score for an unpaid installment. The
// installment itself stays Unpaid so it can still be collected later.
func (s *PaymentService) MarkMissed(installmentID int64) (*domain.Borrower, error) {
	installment, err := s.installmentRepo.GetByID(installmentID)
	if err != nil {
		return nil, err
	}
	if installment.Status != domain.StatusUnpaid {
		return nil, domain.ErrInstallmentNotUnpaid
	}

	loan, err := s.loanRepo.GetByID(installment.LoanID)
	if err != nil {
		return nil, err
	}
	borrower, err := s.borrowerRepo.GetByID(loan.BorrowerID)
	if err != nil {
		return nil, err
	}

	updated, err := s.borrowerRepo.UpdateScore(borrower.ID, borrower.CibilScore+domain.ScoreDeltaMissed)
	if err != nil {
		return nil, err
	}

	s.publishEvent(websocket.InstallmentMissed(installment))
	return updated, nil
}

// PaymentList is the collected-payments view with its rolled-up total.
type PaymentList struct {
	Payments    []*domain.InstallmentWithBorrower `json:"payments"`
	TotalAmount decimal.Decimal                   `json:"totalAmount"`
	Count       int                               `json:"count"`
}

// GetPayments retrieves all settled installments, most recent payment first
func (s *PaymentService) GetPayments() (*PaymentList, error) {
	payments, err := s.installmentRepo.GetPaid()
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.PaidAmount)
	}
	return &PaymentList{
		Payments:    payments,
		TotalAmount: total,
		Count:       len(payments),
	}, nil
}

// GetDueToday retrieves the unpaid installments due on the current day
func (s *PaymentService) GetDueToday() (*PaymentList, error) {
	today := util.StartOfDay(s.now())
	due, err := s.installmentRepo.GetDueOn(today)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, d := range due {
		total = total.Add(d.Amount)
	}
	return &PaymentList{
		Payments:    due,
		TotalAmount: total,
		Count:       len(due),
	}, nil
}
