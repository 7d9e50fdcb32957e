package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/udhaarbook/udhaarbook-backend/internal/domain"
	"github.com/udhaarbook/udhaarbook-backend/internal/testutil"
	"github.com/udhaarbook/udhaarbook-backend/internal/websocket"
)

// capturePublisher records published events for assertions
type capturePublisher struct {
	events []websocket.Event
}

func (c *capturePublisher) Publish(event websocket.Event) {
	c.events = append(c.events, event)
}

type paymentFixture struct {
	svc          *PaymentService
	borrowers    *testutil.MockBorrowerRepository
	loans        *testutil.MockLoanRepository
	installments *testutil.MockInstallmentRepository
	publisher    *capturePublisher
}

// newPaymentFixture seeds one borrower (score 650) with one active two-
// installment loan due 2025-03-01 and 2025-03-08.
func newPaymentFixture() *paymentFixture {
	borrowers := testutil.NewMockBorrowerRepository()
	loans := testutil.NewMockLoanRepository(borrowers)
	installments := testutil.NewMockInstallmentRepository(loans, borrowers)

	borrowers.AddBorrower(&domain.Borrower{
		FullName: "Asha Patel", PhoneNumber: "9000000001", Address: "Pune", CibilScore: 650,
	})
	loans.AddLoan(&domain.Loan{
		ID:         1,
		BorrowerID: 1,
		Status:     domain.LoanStatusActive,
		AmountPaid: decimal.Zero,
	})
	installments.AddInstallment(&domain.Installment{
		LoanID: 1, Number: 1, Status: domain.StatusUnpaid,
		DueDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Amount:  decimal.RequireFromString("1100"),
	})
	installments.AddInstallment(&domain.Installment{
		LoanID: 1, Number: 2, Status: domain.StatusUnpaid,
		DueDate: time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC),
		Amount:  decimal.RequireFromString("1100"),
	})

	svc := NewPaymentService(&testutil.MockTxRunner{}, installments, loans, borrowers)
	publisher := &capturePublisher{}
	svc.SetEventPublisher(publisher)

	return &paymentFixture{
		svc:          svc,
		borrowers:    borrowers,
		loans:        loans,
		installments: installments,
		publisher:    publisher,
	}
}

func TestRecordPayment_OnTime(t *testing.T) {
	f := newPaymentFixture()

	result, err := f.svc.RecordPayment(context.Background(), 1, RecordPaymentInput{
		PaymentDate: time.Date(2025, 3, 1, 18, 30, 0, 0, time.UTC),
		PaymentMode: domain.PaymentModeCash,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPaidOnTime, result.Installment.Status)
	assert.Equal(t, int32(651), result.BorrowerScore)
	assert.Equal(t, domain.LoanStatusActive, result.LoanStatus)
	assert.True(t, result.Installment.PaidAmount.Equal(decimal.RequireFromString("1100")))
	assert.NotEqual(t, uuid.Nil, result.Payment.ReceiptID)

	// Loan running total updated
	loan, _ := f.loans.GetByID(1)
	assert.True(t, loan.AmountPaid.Equal(decimal.RequireFromString("1100")))

	// Event published
	require.NotEmpty(t, f.publisher.events)
	assert.Equal(t, "installment.paid", f.publisher.events[0].Type)
}

func TestRecordPayment_Late(t *testing.T) {
	f := newPaymentFixture()

	result, err := f.svc.RecordPayment(context.Background(), 1, RecordPaymentInput{
		PaymentDate: time.Date(2025, 3, 2, 0, 30, 0, 0, time.UTC),
		PaymentMode: domain.PaymentModeOnline,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPaidLate, result.Installment.Status)
	assert.Equal(t, int32(649), result.BorrowerScore)
}

func TestRecordPayment_Advance(t *testing.T) {
	f := newPaymentFixture()

	// Advance mode wins regardless of the dates
	result, err := f.svc.RecordPayment(context.Background(), 2, RecordPaymentInput{
		PaymentDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		PaymentMode: domain.PaymentModeAdvance,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusAdvancePaid, result.Installment.Status)
	assert.Equal(t, int32(652), result.BorrowerScore)
}

func TestRecordPayment_LenderDelay(t *testing.T) {
	f := newPaymentFixture()

	// Late payment recorded as on time with no score change
	result, err := f.svc.RecordPayment(context.Background(), 1, RecordPaymentInput{
		PaymentDate:   time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		PaymentMode:   domain.PaymentModeCash,
		IsLenderDelay: true,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPaidOnTime, result.Installment.Status)
	assert.Equal(t, int32(650), result.BorrowerScore)
	assert.True(t, result.Payment.IsLenderDelay)
}

func TestRecordPayment_AlreadyPaid(t *testing.T) {
	f := newPaymentFixture()

	_, err := f.svc.RecordPayment(context.Background(), 1, RecordPaymentInput{
		PaymentDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		PaymentMode: domain.PaymentModeCash,
	})
	require.NoError(t, err)

	_, err = f.svc.RecordPayment(context.Background(), 1, RecordPaymentInput{
		PaymentDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		PaymentMode: domain.PaymentModeCash,
	})
	assert.ErrorIs(t, err, domain.ErrInstallmentAlreadyPaid)
}

func TestRecordPayment_InvalidMode(t *testing.T) {
	f := newPaymentFixture()

	_, err := f.svc.RecordPayment(context.Background(), 1, RecordPaymentInput{
		PaymentDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		PaymentMode: "cheque",
	})
	assert.ErrorIs(t, err, domain.ErrPaymentModeInvalid)
}

func TestRecordPayment_ClosesLoanWhenScheduleCompletes(t *testing.T) {
	f := newPaymentFixture()

	_, err := f.svc.RecordPayment(context.Background(), 1, RecordPaymentInput{
		PaymentDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		PaymentMode: domain.PaymentModeCash,
	})
	require.NoError(t, err)

	loan, _ := f.loans.GetByID(1)
	assert.Equal(t, domain.LoanStatusActive, loan.Status)

	result, err := f.svc.RecordPayment(context.Background(), 2, RecordPaymentInput{
		PaymentDate: time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC),
		PaymentMode: domain.PaymentModeCash,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.LoanStatusClosed, result.LoanStatus)
	loan, _ = f.loans.GetByID(1)
	assert.Equal(t, domain.LoanStatusClosed, loan.Status)

	// Last event should be the closure
	last := f.publisher.events[len(f.publisher.events)-1]
	assert.Equal(t, "loan.closed", last.Type)
}

func TestRecordPayment_NotFound(t *testing.T) {
	f := newPaymentFixture()

	_, err := f.svc.RecordPayment(context.Background(), 99, RecordPaymentInput{
		PaymentDate: time.Now(),
		PaymentMode: domain.PaymentModeCash,
	})
	assert.ErrorIs(t, err, domain.ErrInstallmentNotFound)
}

func TestMarkMissed(t *testing.T) {
	f := newPaymentFixture()

	borrower, err := f.svc.MarkMissed(1)
	require.NoError(t, err)
	assert.Equal(t, int32(648), borrower.CibilScore)

	// Installment stays Unpaid
	inst, _ := f.installments.GetByID(1)
	assert.Equal(t, domain.StatusUnpaid, inst.Status)

	require.NotEmpty(t, f.publisher.events)
	assert.Equal(t, "installment.missed", f.publisher.events[0].Type)
}

func TestMarkMissed_RejectsPaid(t *testing.T) {
	f := newPaymentFixture()

	_, err := f.svc.RecordPayment(context.Background(), 1, RecordPaymentInput{
		PaymentDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		PaymentMode: domain.PaymentModeCash,
	})
	require.NoError(t, err)

	_, err = f.svc.MarkMissed(1)
	assert.ErrorIs(t, err, domain.ErrInstallmentNotUnpaid)
}

func TestGetDueToday(t *testing.T) {
	f := newPaymentFixture()
	f.svc.now = func() time.Time {
		return time.Date(2025, 3, 1, 11, 0, 0, 0, time.UTC)
	}

	due, err := f.svc.GetDueToday()
	require.NoError(t, err)

	assert.Equal(t, 1, due.Count)
	assert.True(t, due.TotalAmount.Equal(decimal.RequireFromString("1100")))
	assert.Equal(t, "Asha Patel", due.Payments[0].BorrowerName)
}

func TestGetPayments(t *testing.T) {
	f := newPaymentFixture()

	_, err := f.svc.RecordPayment(context.Background(), 1, RecordPaymentInput{
		PaymentDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		PaymentMode: domain.PaymentModeCash,
	})
	require.NoError(t, err)

	payments, err := f.svc.GetPayments()
	require.NoError(t, err)

	assert.Equal(t, 1, payments.Count)
	assert.True(t, payments.TotalAmount.Equal(decimal.RequireFromString("1100")))
}

func TestResolveStatus(t *testing.T) {
	due := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		mode        domain.PaymentMode
		paymentDate time.Time
		lenderDelay bool
		want        domain.InstallmentStatus
	}{
		{"on due date", domain.PaymentModeCash, time.Date(2025, 3, 1, 23, 0, 0, 0, time.UTC), false, domain.StatusPaidOnTime},
		{"day before", domain.PaymentModeOnline, time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC), false, domain.StatusPaidOnTime},
		{"day after", domain.PaymentModeCash, time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC), false, domain.StatusPaidLate},
		{"late but lender delay", domain.PaymentModeCash, time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC), true, domain.StatusPaidOnTime},
		{"advance wins over late date", domain.PaymentModeAdvance, time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC), false, domain.StatusAdvancePaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveStatus(tt.mode, tt.paymentDate, due, tt.lenderDelay)
			assert.Equal(t, tt.want, got)
		})
	}
}
