package postgres

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/udhaarbook/udhaarbook-backend/internal/domain"
)

// LoanRepository implements domain.LoanRepository using PostgreSQL
type LoanRepository struct {
	pool *pgxpool.Pool
}

// NewLoanRepository creates a new LoanRepository
func NewLoanRepository(pool *pgxpool.Pool) *LoanRepository {
	return &LoanRepository{pool: pool}
}

const loanColumns = `id, borrower_id, loan_date, principal, interest_rate, total_installments,
	cycle_days, first_installment_date, total_repayable, installment_amount, purpose, status,
	amount_paid, created_at`

func scanLoan(row pgx.Row) (*domain.Loan, error) {
	var l domain.Loan
	var principal, interestRate, totalRepayable, installmentAmount, amountPaid pgtype.Numeric
	var loanDate, firstDate pgtype.Date

	err := row.Scan(&l.ID, &l.BorrowerID, &loanDate, &principal, &interestRate,
		&l.TotalInstallments, &l.CycleDays, &firstDate, &totalRepayable,
		&installmentAmount, &l.Purpose, &l.Status, &amountPaid, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLoanNotFound
		}
		return nil, err
	}

	l.LoanDate = loanDate.Time
	l.FirstInstallmentDate = firstDate.Time
	l.Principal = pgNumericToDecimal(principal)
	l.InterestRate = pgNumericToDecimal(interestRate)
	l.TotalRepayable = pgNumericToDecimal(totalRepayable)
	l.InstallmentAmount = pgNumericToDecimal(installmentAmount)
	l.AmountPaid = pgNumericToDecimal(amountPaid)
	return &l, nil
}

// CreateTx inserts a loan within a transaction. Loan creation is never done
// outside one: the installment schedule is written in the same unit of work.
func (r *LoanRepository) CreateTx(tx any, loan *domain.Loan) (*domain.Loan, error) {
	pgxTx, err := asTx(tx)
	if err != nil {
		return nil, err
	}

	principal, err := decimalToPgNumeric(loan.Principal)
	if err != nil {
		return nil, err
	}
	interestRate, err := decimalToPgNumeric(loan.InterestRate)
	if err != nil {
		return nil, err
	}
	totalRepayable, err := decimalToPgNumeric(loan.TotalRepayable)
	if err != nil {
		return nil, err
	}
	installmentAmount, err := decimalToPgNumeric(loan.InstallmentAmount)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	row := pgxTx.QueryRow(ctx, `
		INSERT INTO loans (borrower_id, loan_date, principal, interest_rate, total_installments,
			cycle_days, first_installment_date, total_repayable, installment_amount, purpose, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+loanColumns,
		loan.BorrowerID,
		pgtype.Date{Time: loan.LoanDate, Valid: true},
		principal, interestRate,
		loan.TotalInstallments, loan.CycleDays,
		pgtype.Date{Time: loan.FirstInstallmentDate, Valid: true},
		totalRepayable, installmentAmount,
		loan.Purpose, loan.Status)
	return scanLoan(row)
}

// GetByID retrieves a loan by ID
func (r *LoanRepository) GetByID(id int64) (*domain.Loan, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `SELECT `+loanColumns+` FROM loans WHERE id = $1`, id)
	return scanLoan(row)
}

// GetAll retrieves loans joined with borrower name/phone, newest first,
// optionally filtered by status and borrower.
func (r *LoanRepository) GetAll(filter domain.LoanFilter) ([]*domain.LoanWithBorrower, error) {
	ctx := context.Background()

	query := `
		SELECT l.id, l.borrower_id, l.loan_date, l.principal, l.interest_rate, l.total_installments,
			l.cycle_days, l.first_installment_date, l.total_repayable, l.installment_amount,
			l.purpose, l.status, l.amount_paid, l.created_at, b.full_name, b.phone_number
		FROM loans l
		JOIN borrowers b ON b.id = l.borrower_id`

	var args []any
	var where []string
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, "l.status = $"+strconv.Itoa(len(args)))
	}
	if filter.BorrowerID > 0 {
		args = append(args, filter.BorrowerID)
		where = append(where, "l.borrower_id = $"+strconv.Itoa(len(args)))
	}
	for i, cond := range where {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY l.created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.LoanWithBorrower
	for rows.Next() {
		var l domain.LoanWithBorrower
		var principal, interestRate, totalRepayable, installmentAmount, amountPaid pgtype.Numeric
		var loanDate, firstDate pgtype.Date

		if err := rows.Scan(&l.ID, &l.BorrowerID, &loanDate, &principal, &interestRate,
			&l.TotalInstallments, &l.CycleDays, &firstDate, &totalRepayable, &installmentAmount,
			&l.Purpose, &l.Status, &amountPaid, &l.CreatedAt,
			&l.BorrowerName, &l.BorrowerPhone); err != nil {
			return nil, err
		}

		l.LoanDate = loanDate.Time
		l.FirstInstallmentDate = firstDate.Time
		l.Principal = pgNumericToDecimal(principal)
		l.InterestRate = pgNumericToDecimal(interestRate)
		l.TotalRepayable = pgNumericToDecimal(totalRepayable)
		l.InstallmentAmount = pgNumericToDecimal(installmentAmount)
		l.AmountPaid = pgNumericToDecimal(amountPaid)
		result = append(result, &l)
	}
	return result, rows.Err()
}

// GetByBorrower retrieves all loans owned by a borrower
func (r *LoanRepository) GetByBorrower(borrowerID int64) ([]*domain.Loan, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT `+loanColumns+` FROM loans WHERE borrower_id = $1 ORDER BY created_at DESC`, borrowerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.Loan
	for rows.Next() {
		loan, err := scanLoanFromRows(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, loan)
	}
	return result, rows.Err()
}

// CountByBorrower returns how many loans a borrower owns
func (r *LoanRepository) CountByBorrower(borrowerID int64) (int64, error) {
	ctx := context.Background()
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM loans WHERE borrower_id = $1`, borrowerID).Scan(&count)
	return count, err
}

// UpdateStatus sets the loan status
func (r *LoanRepository) UpdateStatus(id int64, status domain.LoanStatus) (*domain.Loan, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		UPDATE loans SET status = $2 WHERE id = $1 RETURNING `+loanColumns, id, status)
	return scanLoan(row)
}

// UpdateStatusTx sets the loan status within a transaction
func (r *LoanRepository) UpdateStatusTx(tx any, id int64, status domain.LoanStatus) (*domain.Loan, error) {
	pgxTx, err := asTx(tx)
	if err != nil {
		return nil, err
	}
	ctx := context.Background()
	row := pgxTx.QueryRow(ctx, `
		UPDATE loans SET status = $2 WHERE id = $1 RETURNING `+loanColumns, id, status)
	return scanLoan(row)
}

// AddAmountPaidTx adds amount to the loan's running paid accumulator within
// a transaction.
func (r *LoanRepository) AddAmountPaidTx(tx any, id int64, amount decimal.Decimal) error {
	pgxTx, err := asTx(tx)
	if err != nil {
		return err
	}
	n, err := decimalToPgNumeric(amount)
	if err != nil {
		return err
	}
	ctx := context.Background()
	tag, err := pgxTx.Exec(ctx, `UPDATE loans SET amount_paid = amount_paid + $2 WHERE id = $1`, id, n)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLoanNotFound
	}
	return nil
}

func scanLoanFromRows(rows pgx.Rows) (*domain.Loan, error) {
	var l domain.Loan
	var principal, interestRate, totalRepayable, installmentAmount, amountPaid pgtype.Numeric
	var loanDate, firstDate pgtype.Date

	if err := rows.Scan(&l.ID, &l.BorrowerID, &loanDate, &principal, &interestRate,
		&l.TotalInstallments, &l.CycleDays, &firstDate, &totalRepayable,
		&installmentAmount, &l.Purpose, &l.Status, &amountPaid, &l.CreatedAt); err != nil {
		return nil, err
	}

	l.LoanDate = loanDate.Time
	l.FirstInstallmentDate = firstDate.Time
	l.Principal = pgNumericToDecimal(principal)
	l.InterestRate = pgNumericToDecimal(interestRate)
	l.TotalRepayable = pgNumericToDecimal(totalRepayable)
	l.InstallmentAmount = pgNumericToDecimal(installmentAmount)
	l.AmountPaid = pgNumericToDecimal(amountPaid)
	return &l, nil
}
