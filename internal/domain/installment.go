package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInstallmentNotFound      = errors.New("installment not found")
	ErrInstallmentAlreadyPaid   = errors.New("installment has already been paid")
	ErrInstallmentNotUnpaid     = errors.New("only unpaid installments can be marked as missed")
	ErrInstallmentStatusInvalid = errors.New("invalid installment status")
	ErrPaymentModeInvalid       = errors.New("payment mode must be cash, online, or advance")
)

// InstallmentStatus is the state of a single installment.
//
// Unpaid is the only persisted non-terminal status. Upcoming is a display
// label derived from Unpaid plus a future due date; it is never written to
// the store.
type InstallmentStatus string

const (
	StatusUnpaid      InstallmentStatus = "Unpaid"
	StatusUpcoming    InstallmentStatus = "Upcoming"
	StatusPaidOnTime  InstallmentStatus = "Paid on time"
	StatusPaidLate    InstallmentStatus = "Paid late"
	StatusAdvancePaid InstallmentStatus = "Advance paid"
)

// PaymentMode is how an installment was settled.
type PaymentMode string

const (
	PaymentModeCash    PaymentMode = "cash"
	PaymentModeOnline  PaymentMode = "online"
	PaymentModeAdvance PaymentMode = "advance"
	PaymentModeNone    PaymentMode = ""
)

// ValidPaymentMode reports whether m is accepted by the payment engine.
func ValidPaymentMode(m PaymentMode) bool {
	return m == PaymentModeCash || m == PaymentModeOnline || m == PaymentModeAdvance
}

type Installment struct {
	ID          int64             `json:"id"`
	LoanID      int64             `json:"loanId"`
	Number      int32             `json:"number"`
	DueDate     time.Time         `json:"dueDate"`
	Amount      decimal.Decimal   `json:"amount"`
	Status      InstallmentStatus `json:"status"`
	PaidAmount  decimal.Decimal   `json:"paidAmount"`
	PaidDate    *time.Time        `json:"paidDate,omitempty"`
	PaymentMode PaymentMode       `json:"paymentMode"`
	Notes       string            `json:"notes,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
}

// IsPaid reports whether the installment has reached a terminal paid status.
func (i *Installment) IsPaid() bool {
	return i.Status == StatusPaidOnTime || i.Status == StatusPaidLate || i.Status == StatusAdvancePaid
}

// DisplayStatus returns the status for presentation: an Unpaid installment
// due strictly after today shows as Upcoming. today must be midnight-normalized.
func (i *Installment) DisplayStatus(today time.Time) InstallmentStatus {
	if i.Status == StatusUnpaid && i.DueDate.After(today) {
		return StatusUpcoming
	}
	return i.Status
}

// InstallmentWithBorrower carries the joined borrower/loan context used by
// due-today and overdue listings.
type InstallmentWithBorrower struct {
	Installment
	BorrowerID      int64  `json:"borrowerId"`
	BorrowerName    string `json:"borrowerName"`
	BorrowerPhone   string `json:"borrowerPhone"`
	BorrowerAddress string `json:"borrowerAddress,omitempty"`
}

// InstallmentUpdate is the patchable subset of installment fields.
type InstallmentUpdate struct {
	Status      *InstallmentStatus
	PaidAmount  *decimal.Decimal
	PaidDate    *time.Time
	PaymentMode *PaymentMode
}

// InstallmentListFilter narrows installment list queries.
type InstallmentListFilter struct {
	Status InstallmentStatus
	Limit  int
}

type InstallmentRepository interface {
	CreateBatchTx(tx any, installments []*Installment) error
	GetByID(id int64) (*Installment, error)
	GetByLoan(loanID int64) ([]*Installment, error)
	GetByLoanTx(tx any, loanID int64) ([]*Installment, error)
	List(filter InstallmentListFilter) ([]*Installment, error)
	GetDueOn(day time.Time) ([]*InstallmentWithBorrower, error)
	GetUpcoming(after time.Time, limit int) ([]*InstallmentWithBorrower, error)
	GetOverdue(before time.Time) ([]*InstallmentWithBorrower, error)
	GetPaid() ([]*InstallmentWithBorrower, error)
	Update(installment *Installment) (*Installment, error)
	MarkPaidTx(tx any, installment *Installment) (*Installment, error)
}
