package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrBorrowerNotFound     = errors.New("borrower not found")
	ErrBorrowerNameEmpty    = errors.New("borrower full name is required")
	ErrBorrowerPhoneEmpty   = errors.New("borrower phone number is required")
	ErrBorrowerAddressEmpty = errors.New("borrower address is required")
	ErrPhoneNumberExists    = errors.New("borrower with this phone number already exists")
	ErrBorrowerHasLoans     = errors.New("borrower still has loans")
)

// DefaultCibilScore is the neutral starting score for a new borrower.
const DefaultCibilScore = 650

type Borrower struct {
	ID          int64     `json:"id"`
	FullName    string    `json:"fullName"`
	PhoneNumber string    `json:"phoneNumber"`
	Address     string    `json:"address"`
	Notes       string    `json:"notes,omitempty"`
	CibilScore  int32     `json:"cibilScore"`
	IsLoyal     bool      `json:"isLoyal"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (b *Borrower) Validate() error {
	if b.FullName == "" {
		return ErrBorrowerNameEmpty
	}
	if b.PhoneNumber == "" {
		return ErrBorrowerPhoneEmpty
	}
	if b.Address == "" {
		return ErrBorrowerAddressEmpty
	}
	return nil
}

// BorrowerStats summarizes a borrower's loan book for the detail view.
type BorrowerStats struct {
	TotalLoans       int             `json:"totalLoans"`
	ActiveLoans      int             `json:"activeLoans"`
	TotalOutstanding decimal.Decimal `json:"totalOutstanding"`
}

type BorrowerRepository interface {
	Create(borrower *Borrower) (*Borrower, error)
	GetByID(id int64) (*Borrower, error)
	GetByPhoneNumber(phoneNumber string) (*Borrower, error)
	GetAll() ([]*Borrower, error)
	Search(query string) ([]*Borrower, error)
	Update(borrower *Borrower) (*Borrower, error)
	UpdateScore(id int64, score int32) (*Borrower, error)
	UpdateScoreTx(tx any, id int64, score int32) (*Borrower, error)
	Delete(id int64) error
	Count() (int64, error)
}
