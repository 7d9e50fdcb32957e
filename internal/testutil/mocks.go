package testutil

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/udhaarbook/udhaarbook-backend/internal/domain"
)

// MockTxRunner is a mock implementation of domain.TxRunner. It runs the
// function with a nil transaction handle; the mock repositories ignore it.
type MockTxRunner struct {
	Calls int
	Err   error
}

// WithinTx runs fn immediately
func (m *MockTxRunner) WithinTx(ctx context.Context, fn func(tx any) error) error {
	m.Calls++
	if m.Err != nil {
		return m.Err
	}
	return fn(nil)
}

// MockBorrowerRepository is a mock implementation of domain.BorrowerRepository
type MockBorrowerRepository struct {
	Borrowers map[int64]*domain.Borrower
	NextID    int64
}

// NewMockBorrowerRepository creates a new MockBorrowerRepository
func NewMockBorrowerRepository() *MockBorrowerRepository {
	return &MockBorrowerRepository{
		Borrowers: make(map[int64]*domain.Borrower),
		NextID:    1,
	}
}

// AddBorrower adds a borrower to the mock repository (helper for tests)
func (m *MockBorrowerRepository) AddBorrower(b *domain.Borrower) {
	if b.ID == 0 {
		b.ID = m.NextID
	}
	if b.ID >= m.NextID {
		m.NextID = b.ID + 1
	}
	m.Borrowers[b.ID] = b
}

// Create creates a new borrower
func (m *MockBorrowerRepository) Create(borrower *domain.Borrower) (*domain.Borrower, error) {
	for _, existing := range m.Borrowers {
		if existing.PhoneNumber == borrower.PhoneNumber {
			return nil, domain.ErrPhoneNumberExists
		}
	}
	borrower.ID = m.NextID
	m.NextID++
	borrower.CreatedAt = time.Now()
	m.Borrowers[borrower.ID] = borrower
	return borrower, nil
}

// GetByID retrieves a borrower by ID
func (m *MockBorrowerRepository) GetByID(id int64) (*domain.Borrower, error) {
	if b, ok := m.Borrowers[id]; ok {
		return b, nil
	}
	return nil, domain.ErrBorrowerNotFound
}

// GetByPhoneNumber retrieves a borrower by phone number
func (m *MockBorrowerRepository) GetByPhoneNumber(phoneNumber string) (*domain.Borrower, error) {
	for _, b := range m.Borrowers {
		if b.PhoneNumber == phoneNumber {
			return b, nil
		}
	}
	return nil, domain.ErrBorrowerNotFound
}

// GetAll retrieves all borrowers sorted by name
func (m *MockBorrowerRepository) GetAll() ([]*domain.Borrower, error) {
	result := make([]*domain.Borrower, 0, len(m.Borrowers))
	for _, b := range m.Borrowers {
		result = append(result, b)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].FullName < result[j].FullName })
	return result, nil
}

// Search retrieves borrowers whose name or phone contains the query
func (m *MockBorrowerRepository) Search(query string) ([]*domain.Borrower, error) {
	q := strings.ToLower(query)
	var result []*domain.Borrower
	for _, b := range m.Borrowers {
		if strings.Contains(strings.ToLower(b.FullName), q) || strings.Contains(b.PhoneNumber, query) {
			result = append(result, b)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].FullName < result[j].FullName })
	return result, nil
}

// Update updates an existing borrower
func (m *MockBorrowerRepository) Update(borrower *domain.Borrower) (*domain.Borrower, error) {
	if _, ok := m.Borrowers[borrower.ID]; !ok {
		return nil, domain.ErrBorrowerNotFound
	}
	m.Borrowers[borrower.ID] = borrower
	return borrower, nil
}

// UpdateScore sets the borrower's cibil score
func (m *MockBorrowerRepository) UpdateScore(id int64, score int32) (*domain.Borrower, error) {
	b, ok := m.Borrowers[id]
	if !ok {
		return nil, domain.ErrBorrowerNotFound
	}
	b.CibilScore = score
	return b, nil
}

// UpdateScoreTx sets the borrower's cibil score, ignoring the tx handle
func (m *MockBorrowerRepository) UpdateScoreTx(tx any, id int64, score int32) (*domain.Borrower, error) {
	return m.UpdateScore(id, score)
}

// Delete removes a borrower
func (m *MockBorrowerRepository) Delete(id int64) error {
	if _, ok := m.Borrowers[id]; !ok {
		return domain.ErrBorrowerNotFound
	}
	delete(m.Borrowers, id)
	return nil
}

// Count returns the number of borrowers
func (m *MockBorrowerRepository) Count() (int64, error) {
	return int64(len(m.Borrowers)), nil
}

// MockLoanRepository is a mock implementation of domain.LoanRepository
type MockLoanRepository struct {
	Loans     map[int64]*domain.Loan
	Borrowers *MockBorrowerRepository
	NextID    int64
}

// NewMockLoanRepository creates a new MockLoanRepository. The borrower mock
// is used to fill borrower names in joined list views.
func NewMockLoanRepository(borrowers *MockBorrowerRepository) *MockLoanRepository {
	return &MockLoanRepository{
		Loans:     make(map[int64]*domain.Loan),
		Borrowers: borrowers,
		NextID:    1,
	}
}

// AddLoan adds a loan to the mock repository (helper for tests)
func (m *MockLoanRepository) AddLoan(l *domain.Loan) {
	if l.ID == 0 {
		l.ID = m.NextID
	}
	if l.ID >= m.NextID {
		m.NextID = l.ID + 1
	}
	m.Loans[l.ID] = l
}

// CreateTx creates a new loan, ignoring the tx handle
func (m *MockLoanRepository) CreateTx(tx any, loan *domain.Loan) (*domain.Loan, error) {
	loan.ID = m.NextID
	m.NextID++
	loan.CreatedAt = time.Now()
	m.Loans[loan.ID] = loan
	return loan, nil
}

// GetByID retrieves a loan by ID
func (m *MockLoanRepository) GetByID(id int64) (*domain.Loan, error) {
	if l, ok := m.Loans[id]; ok {
		return l, nil
	}
	return nil, domain.ErrLoanNotFound
}

// GetAll retrieves loans with borrower summaries, newest first
func (m *MockLoanRepository) GetAll(filter domain.LoanFilter) ([]*domain.LoanWithBorrower, error) {
	var result []*domain.LoanWithBorrower
	for _, l := range m.Loans {
		if filter.Status != "" && l.Status != filter.Status {
			continue
		}
		if filter.BorrowerID > 0 && l.BorrowerID != filter.BorrowerID {
			continue
		}
		lwb := &domain.LoanWithBorrower{Loan: *l}
		if m.Borrowers != nil {
			if b, err := m.Borrowers.GetByID(l.BorrowerID); err == nil {
				lwb.BorrowerName = b.FullName
				lwb.BorrowerPhone = b.PhoneNumber
			}
		}
		result = append(result, lwb)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

// GetByBorrower retrieves all loans owned by a borrower
func (m *MockLoanRepository) GetByBorrower(borrowerID int64) ([]*domain.Loan, error) {
	var result []*domain.Loan
	for _, l := range m.Loans {
		if l.BorrowerID == borrowerID {
			result = append(result, l)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// CountByBorrower returns how many loans a borrower owns
func (m *MockLoanRepository) CountByBorrower(borrowerID int64) (int64, error) {
	var count int64
	for _, l := range m.Loans {
		if l.BorrowerID == borrowerID {
			count++
		}
	}
	return count, nil
}

// UpdateStatus sets the loan status
func (m *MockLoanRepository) UpdateStatus(id int64, status domain.LoanStatus) (*domain.Loan, error) {
	l, ok := m.Loans[id]
	if !ok {
		return nil, domain.ErrLoanNotFound
	}
	l.Status = status
	return l, nil
}

// UpdateStatusTx sets the loan status, ignoring the tx handle
func (m *MockLoanRepository) UpdateStatusTx(tx any, id int64, status domain.LoanStatus) (*domain.Loan, error) {
	return m.UpdateStatus(id, status)
}

// AddAmountPaidTx adds to the loan's paid accumulator, ignoring the tx handle
func (m *MockLoanRepository) AddAmountPaidTx(tx any, id int64, amount decimal.Decimal) error {
	l, ok := m.Loans[id]
	if !ok {
		return domain.ErrLoanNotFound
	}
	l.AmountPaid = l.AmountPaid.Add(amount)
	return nil
}

// MockInstallmentRepository is a mock implementation of domain.InstallmentRepository
type MockInstallmentRepository struct {
	Installments map[int64]*domain.Installment
	Borrowers    *MockBorrowerRepository
	Loans        *MockLoanRepository
	NextID       int64
}

// NewMockInstallmentRepository creates a new MockInstallmentRepository
func NewMockInstallmentRepository(loans *MockLoanRepository, borrowers *MockBorrowerRepository) *MockInstallmentRepository {
	return &MockInstallmentRepository{
		Installments: make(map[int64]*domain.Installment),
		Borrowers:    borrowers,
		Loans:        loans,
		NextID:       1,
	}
}

// AddInstallment adds an installment to the mock repository (helper for tests)
func (m *MockInstallmentRepository) AddInstallment(i *domain.Installment) {
	if i.ID == 0 {
		i.ID = m.NextID
	}
	if i.ID >= m.NextID {
		m.NextID = i.ID + 1
	}
	m.Installments[i.ID] = i
}

// CreateBatchTx inserts a schedule, ignoring the tx handle
func (m *MockInstallmentRepository) CreateBatchTx(tx any, installments []*domain.Installment) error {
	for _, inst := range installments {
		inst.ID = m.NextID
		m.NextID++
		inst.CreatedAt = time.Now()
		m.Installments[inst.ID] = inst
	}
	return nil
}

// GetByID retrieves an installment by ID
func (m *MockInstallmentRepository) GetByID(id int64) (*domain.Installment, error) {
	if i, ok := m.Installments[id]; ok {
		return i, nil
	}
	return nil, domain.ErrInstallmentNotFound
}

// GetByLoan retrieves a loan's installments ordered by due date
func (m *MockInstallmentRepository) GetByLoan(loanID int64) ([]*domain.Installment, error) {
	var result []*domain.Installment
	for _, i := range m.Installments {
		if i.LoanID == loanID {
			result = append(result, i)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].DueDate.Before(result[j].DueDate) })
	return result, nil
}

// GetByLoanTx retrieves a loan's installments, ignoring the tx handle
func (m *MockInstallmentRepository) GetByLoanTx(tx any, loanID int64) ([]*domain.Installment, error) {
	return m.GetByLoan(loanID)
}

// List retrieves installments ordered by due date
func (m *MockInstallmentRepository) List(filter domain.InstallmentListFilter) ([]*domain.Installment, error) {
	var result []*domain.Installment
	for _, i := range m.Installments {
		if filter.Status != "" && i.Status != filter.Status {
			continue
		}
		result = append(result, i)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].DueDate.Before(result[j].DueDate) })
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (m *MockInstallmentRepository) withBorrower(i *domain.Installment) *domain.InstallmentWithBorrower {
	iwb := &domain.InstallmentWithBorrower{Installment: *i}
	if m.Loans == nil || m.Borrowers == nil {
		return iwb
	}
	loan, err := m.Loans.GetByID(i.LoanID)
	if err != nil {
		return iwb
	}
	b, err := m.Borrowers.GetByID(loan.BorrowerID)
	if err != nil {
		return iwb
	}
	iwb.BorrowerID = b.ID
	iwb.BorrowerName = b.FullName
	iwb.BorrowerPhone = b.PhoneNumber
	iwb.BorrowerAddress = b.Address
	return iwb
}

// GetDueOn retrieves unpaid installments due on the given day
func (m *MockInstallmentRepository) GetDueOn(day time.Time) ([]*domain.InstallmentWithBorrower, error) {
	var result []*domain.InstallmentWithBorrower
	for _, i := range m.Installments {
		if i.Status == domain.StatusUnpaid && i.DueDate.Equal(day) {
			result = append(result, m.withBorrower(i))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// GetUpcoming retrieves unpaid installments due after the given day
func (m *MockInstallmentRepository) GetUpcoming(after time.Time, limit int) ([]*domain.InstallmentWithBorrower, error) {
	var result []*domain.InstallmentWithBorrower
	for _, i := range m.Installments {
		if i.Status == domain.StatusUnpaid && i.DueDate.After(after) {
			result = append(result, m.withBorrower(i))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].DueDate.Before(result[j].DueDate) })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// GetOverdue retrieves unpaid installments due before the given day
func (m *MockInstallmentRepository) GetOverdue(before time.Time) ([]*domain.InstallmentWithBorrower, error) {
	var result []*domain.InstallmentWithBorrower
	for _, i := range m.Installments {
		if i.Status == domain.StatusUnpaid && i.DueDate.Before(before) {
			result = append(result, m.withBorrower(i))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].DueDate.Before(result[j].DueDate) })
	return result, nil
}

// GetPaid retrieves settled installments, most recent payment first
func (m *MockInstallmentRepository) GetPaid() ([]*domain.InstallmentWithBorrower, error) {
	var result []*domain.InstallmentWithBorrower
	for _, i := range m.Installments {
		if i.IsPaid() {
			result = append(result, m.withBorrower(i))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i].PaidDate, result[j].PaidDate
		if a == nil || b == nil {
			return result[i].ID > result[j].ID
		}
		return a.After(*b)
	})
	return result, nil
}

// Update updates an installment
func (m *MockInstallmentRepository) Update(installment *domain.Installment) (*domain.Installment, error) {
	if _, ok := m.Installments[installment.ID]; !ok {
		return nil, domain.ErrInstallmentNotFound
	}
	m.Installments[installment.ID] = installment
	return installment, nil
}

// MarkPaidTx persists a payment outcome, ignoring the tx handle
func (m *MockInstallmentRepository) MarkPaidTx(tx any, installment *domain.Installment) (*domain.Installment, error) {
	return m.Update(installment)
}
