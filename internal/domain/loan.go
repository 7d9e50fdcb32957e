package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrLoanNotFound            = errors.New("loan not found")
	ErrLoanPrincipalInvalid    = errors.New("loan principal must be positive")
	ErrLoanInterestRateInvalid = errors.New("loan interest rate must not be negative")
	ErrLoanInstallmentsInvalid = errors.New("number of installments must be at least 1")
	ErrLoanCycleDaysInvalid    = errors.New("installment cycle days must be at least 1")
	ErrLoanFirstDateRequired   = errors.New("first installment date is required")
	ErrLoanDateRequired        = errors.New("loan date is required")
	ErrLoanStatusInvalid       = errors.New("loan status must be Active or Closed")
	ErrLoanBorrowerRequired    = errors.New("loan borrower is required")
)

// LoanStatus is the lifecycle state of a loan.
type LoanStatus string

const (
	LoanStatusActive LoanStatus = "Active"
	LoanStatusClosed LoanStatus = "Closed"
)

// ValidLoanStatus reports whether s is a recognised loan status.
func ValidLoanStatus(s LoanStatus) bool {
	return s == LoanStatusActive || s == LoanStatusClosed
}

type Loan struct {
	ID                   int64           `json:"id"`
	BorrowerID           int64           `json:"borrowerId"`
	LoanDate             time.Time       `json:"loanDate"`
	Principal            decimal.Decimal `json:"principal"`
	InterestRate         decimal.Decimal `json:"interestRate"`
	TotalInstallments    int32           `json:"totalInstallments"`
	CycleDays            int32           `json:"cycleDays"`
	FirstInstallmentDate time.Time       `json:"firstInstallmentDate"`
	TotalRepayable       decimal.Decimal `json:"totalRepayable"`
	InstallmentAmount    decimal.Decimal `json:"installmentAmount"`
	Purpose              string          `json:"purpose,omitempty"`
	Status               LoanStatus      `json:"status"`
	AmountPaid           decimal.Decimal `json:"amountPaid"`
	CreatedAt            time.Time       `json:"createdAt"`
}

func (l *Loan) Validate() error {
	if l.BorrowerID <= 0 {
		return ErrLoanBorrowerRequired
	}
	if l.Principal.LessThanOrEqual(decimal.Zero) {
		return ErrLoanPrincipalInvalid
	}
	if l.InterestRate.IsNegative() {
		return ErrLoanInterestRateInvalid
	}
	if l.TotalInstallments < 1 {
		return ErrLoanInstallmentsInvalid
	}
	if l.CycleDays < 1 {
		return ErrLoanCycleDaysInvalid
	}
	if l.FirstInstallmentDate.IsZero() {
		return ErrLoanFirstDateRequired
	}
	if l.LoanDate.IsZero() {
		return ErrLoanDateRequired
	}
	return nil
}

// LoanWithBorrower pairs a loan with the borrower summary used by list views.
type LoanWithBorrower struct {
	Loan
	BorrowerName  string `json:"borrowerName"`
	BorrowerPhone string `json:"borrowerPhone"`
}

// LoanStats summarizes collection progress for a single loan.
type LoanStats struct {
	TotalPaid             decimal.Decimal `json:"totalPaid"`
	RemainingAmount       decimal.Decimal `json:"remainingAmount"`
	PaidInstallments      int             `json:"paidInstallments"`
	RemainingInstallments int             `json:"remainingInstallments"`
}

// LoanFilter narrows loan list queries.
type LoanFilter struct {
	Status     LoanStatus
	BorrowerID int64
}

type LoanRepository interface {
	CreateTx(tx any, loan *Loan) (*Loan, error)
	GetByID(id int64) (*Loan, error)
	GetAll(filter LoanFilter) ([]*LoanWithBorrower, error)
	GetByBorrower(borrowerID int64) ([]*Loan, error)
	CountByBorrower(borrowerID int64) (int64, error)
	UpdateStatus(id int64, status LoanStatus) (*Loan, error)
	UpdateStatusTx(tx any, id int64, status LoanStatus) (*Loan, error)
	AddAmountPaidTx(tx any, id int64, amount decimal.Decimal) error
}
