package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cibil score deltas applied by the payment engine. The score is unbounded:
// the source system never clamped it and neither do we.
const (
	ScoreDeltaAdvancePaid = 2
	ScoreDeltaPaidOnTime  = 1
	ScoreDeltaLenderDelay = 0
	ScoreDeltaPaidLate    = -1
	ScoreDeltaMissed      = -2
)

// ScoreDeltaFor returns the score adjustment for a payment outcome.
// A lender-delay override records an on-time status without rewarding it.
func ScoreDeltaFor(status InstallmentStatus, isLenderDelay bool) int32 {
	switch {
	case status == StatusAdvancePaid:
		return ScoreDeltaAdvancePaid
	case isLenderDelay:
		return ScoreDeltaLenderDelay
	case status == StatusPaidOnTime:
		return ScoreDeltaPaidOnTime
	case status == StatusPaidLate:
		return ScoreDeltaPaidLate
	default:
		return 0
	}
}

// PaymentRecord is the receipt produced by a successful payment.
type PaymentRecord struct {
	ReceiptID     uuid.UUID         `json:"receiptId"`
	InstallmentID int64             `json:"installmentId"`
	LoanID        int64             `json:"loanId"`
	BorrowerName  string            `json:"borrowerName"`
	Amount        decimal.Decimal   `json:"amount"`
	PaymentDate   time.Time         `json:"paymentDate"`
	PaymentMode   PaymentMode       `json:"paymentMode"`
	Status        InstallmentStatus `json:"status"`
	IsLenderDelay bool              `json:"isLenderDelay"`
	Notes         string            `json:"notes,omitempty"`
}

// PaymentResult is everything the payment engine changed in one unit of work.
type PaymentResult struct {
	Installment   *Installment   `json:"installment"`
	LoanStatus    LoanStatus     `json:"loanStatus"`
	BorrowerScore int32          `json:"borrowerScore"`
	Payment       *PaymentRecord `json:"payment"`
}
