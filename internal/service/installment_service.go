package service

import (
	"time"

	"github.com/udhaarbook/udhaarbook-backend/internal/domain"
	"github.com/udhaarbook/udhaarbook-backend/internal/util"
)

// InstallmentService handles installment read and patch operations. Payment
// recording lives in PaymentService; this service never transitions an
// installment into a paid state on its own.
type InstallmentService struct {
	installmentRepo domain.InstallmentRepository
	loanRepo        domain.LoanRepository

	// now is swappable in tests
	now func() time.Time
}

// NewInstallmentService creates a new InstallmentService
func NewInstallmentService(installmentRepo domain.InstallmentRepository, loanRepo domain.LoanRepository) *InstallmentService {
	return &InstallmentService{
		installmentRepo: installmentRepo,
		loanRepo:        loanRepo,
		now:             time.Now,
	}
}

// GetInstallments lists installments by due date, optionally filtered by
// status. Upcoming and Unpaid are both backed by the persisted Unpaid status
// and split on the due date relative to today.
func (s *InstallmentService) GetInstallments(filter domain.InstallmentListFilter) ([]*domain.Installment, error) {
	today := util.StartOfDay(s.now())

	switch filter.Status {
	case domain.StatusUpcoming, domain.StatusUnpaid:
		installments, err := s.installmentRepo.List(domain.InstallmentListFilter{Status: domain.StatusUnpaid})
		if err != nil {
			return nil, err
		}
		wantUpcoming := filter.Status == domain.StatusUpcoming
		filtered := make([]*domain.Installment, 0, len(installments))
		for _, inst := range installments {
			isUpcoming := inst.DueDate.After(today)
			if isUpcoming != wantUpcoming {
				continue
			}
			inst.Status = inst.DisplayStatus(today)
			filtered = append(filtered, inst)
			if filter.Limit > 0 && len(filtered) == filter.Limit {
				break
			}
		}
		return filtered, nil
	case "", domain.StatusPaidOnTime, domain.StatusPaidLate, domain.StatusAdvancePaid:
		installments, err := s.installmentRepo.List(filter)
		if err != nil {
			return nil, err
		}
		for _, inst := range installments {
			inst.Status = inst.DisplayStatus(today)
		}
		return installments, nil
	default:
		return nil, domain.ErrInstallmentStatusInvalid
	}
}

// GetInstallment retrieves one installment with its display status
func (s *InstallmentService) GetInstallment(id int64) (*domain.Installment, error) {
	installment, err := s.installmentRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	installment.Status = installment.DisplayStatus(util.StartOfDay(s.now()))
	return installment, nil
}

// GetInstallmentsByLoan retrieves a loan's schedule with display statuses
func (s *InstallmentService) GetInstallmentsByLoan(loanID int64) ([]*domain.Installment, error) {
	if _, err := s.loanRepo.GetByID(loanID); err != nil {
		return nil, err
	}

	installments, err := s.installmentRepo.GetByLoan(loanID)
	if err != nil {
		return nil, err
	}

	today := util.StartOfDay(s.now())
	for _, inst := range installments {
		inst.Status = inst.DisplayStatus(today)
	}
	return installments, nil
}

// UpdateInstallment applies a partial update. Installments in a terminal paid
// state cannot be patched, and Upcoming can never be written.
func (s *InstallmentService) UpdateInstallment(id int64, update domain.InstallmentUpdate) (*domain.Installment, error) {
	installment, err := s.installmentRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if installment.IsPaid() {
		return nil, domain.ErrInstallmentAlreadyPaid
	}

	if update.Status != nil {
		switch *update.Status {
		case domain.StatusUnpaid, domain.StatusPaidOnTime, domain.StatusPaidLate, domain.StatusAdvancePaid:
			installment.Status = *update.Status
		default:
			return nil, domain.ErrInstallmentStatusInvalid
		}
	}
	if update.PaidAmount != nil {
		installment.PaidAmount = *update.PaidAmount
	}
	if update.PaidDate != nil {
		installment.PaidDate = update.PaidDate
	}
	if update.PaymentMode != nil {
		if *update.PaymentMode != domain.PaymentModeNone && !domain.ValidPaymentMode(*update.PaymentMode) {
			return nil, domain.ErrPaymentModeInvalid
		}
		installment.PaymentMode = *update.PaymentMode
	}

	return s.installmentRepo.Update(installment)
}
