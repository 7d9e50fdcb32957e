package service

import (
	"github.com/shopspring/decimal"
	"github.com/udhaarbook/udhaarbook-backend/internal/domain"
	"github.com/udhaarbook/udhaarbook-backend/internal/websocket"
)

// BorrowerService handles borrower business logic
type BorrowerService struct {
	borrowerRepo    domain.BorrowerRepository
	loanRepo        domain.LoanRepository
	installmentRepo domain.InstallmentRepository
	eventPublisher  websocket.EventPublisher
}

// NewBorrowerService creates a new BorrowerService
func NewBorrowerService(borrowerRepo domain.BorrowerRepository, loanRepo domain.LoanRepository, installmentRepo domain.InstallmentRepository) *BorrowerService {
	return &BorrowerService{
		borrowerRepo:    borrowerRepo,
		loanRepo:        loanRepo,
		installmentRepo: installmentRepo,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *BorrowerService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *BorrowerService) publishEvent(event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(event)
	}
}

// BorrowerUpdate is the patchable subset of borrower fields.
type BorrowerUpdate struct {
	FullName    *string
	PhoneNumber *string
	Address     *string
	Notes       *string
	IsLoyal     *bool
}

// BorrowerDetail is a borrower with their loan book rolled up.
type BorrowerDetail struct {
	Borrower *domain.Borrower      `json:"borrower"`
	Loans    []*domain.Loan        `json:"loans"`
	Stats    *domain.BorrowerStats `json:"stats"`
}

// CreateBorrower validates and creates a borrower with the neutral starting
// score. A duplicate phone number surfaces as ErrPhoneNumberExists.
func (s *BorrowerService) CreateBorrower(borrower *domain.Borrower) (*domain.Borrower, error) {
	if err := borrower.Validate(); err != nil {
		return nil, err
	}
	if borrower.CibilScore == 0 {
		borrower.CibilScore = domain.DefaultCibilScore
	}

	created, err := s.borrowerRepo.Create(borrower)
	if err != nil {
		return nil, err
	}

	s.publishEvent(websocket.BorrowerCreated(created))
	return created, nil
}

// GetBorrower retrieves a borrower with their loans and rolled-up stats.
// TotalOutstanding sums the unpaid installment amounts of active loans.
func (s *BorrowerService) GetBorrower(id int64) (*BorrowerDetail, error) {
	borrower, err := s.borrowerRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	loans, err := s.loanRepo.GetByBorrower(id)
	if err != nil {
		return nil, err
	}

	stats := &domain.BorrowerStats{
		TotalLoans:       len(loans),
		TotalOutstanding: decimal.Zero,
	}
	for _, loan := range loans {
		if loan.Status != domain.LoanStatusActive {
			continue
		}
		stats.ActiveLoans++

		installments, err := s.installmentRepo.GetByLoan(loan.ID)
		if err != nil {
			return nil, err
		}
		for _, inst := range installments {
			if !inst.IsPaid() {
				stats.TotalOutstanding = stats.TotalOutstanding.Add(inst.Amount)
			}
		}
	}

	return &BorrowerDetail{
		Borrower: borrower,
		Loans:    loans,
		Stats:    stats,
	}, nil
}

// GetBorrowers retrieves all borrowers sorted by name
func (s *BorrowerService) GetBorrowers() ([]*domain.Borrower, error) {
	return s.borrowerRepo.GetAll()
}

// SearchBorrowers retrieves borrowers matching a name or phone substring
func (s *BorrowerService) SearchBorrowers(query string) ([]*domain.Borrower, error) {
	if query == "" {
		return s.borrowerRepo.GetAll()
	}
	return s.borrowerRepo.Search(query)
}

// UpdateBorrower applies a partial update to a borrower
func (s *BorrowerService) UpdateBorrower(id int64, update BorrowerUpdate) (*domain.Borrower, error) {
	borrower, err := s.borrowerRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if update.FullName != nil {
		borrower.FullName = *update.FullName
	}
	if update.PhoneNumber != nil {
		borrower.PhoneNumber = *update.PhoneNumber
	}
	if update.Address != nil {
		borrower.Address = *update.Address
	}
	if update.Notes != nil {
		borrower.Notes = *update.Notes
	}
	if update.IsLoyal != nil {
		borrower.IsLoyal = *update.IsLoyal
	}

	if err := borrower.Validate(); err != nil {
		return nil, err
	}

	if update.PhoneNumber != nil {
		existing, err := s.borrowerRepo.GetByPhoneNumber(borrower.PhoneNumber)
		if err == nil && existing.ID != id {
			return nil, domain.ErrPhoneNumberExists
		}
	}

	return s.borrowerRepo.Update(borrower)
}

// DeleteBorrower removes a borrower that has no loans
func (s *BorrowerService) DeleteBorrower(id int64) error {
	if _, err := s.borrowerRepo.GetByID(id); err != nil {
		return err
	}

	count, err := s.loanRepo.CountByBorrower(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return domain.ErrBorrowerHasLoans
	}

	return s.borrowerRepo.Delete(id)
}

// SetCibilScore manually overrides a borrower's score
func (s *BorrowerService) SetCibilScore(id int64, score int32) (*domain.Borrower, error) {
	return s.borrowerRepo.UpdateScore(id, score)
}
