package postgres

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/udhaarbook/udhaarbook-backend/internal/domain"
)

// InstallmentRepository implements domain.InstallmentRepository using PostgreSQL
type InstallmentRepository struct {
	pool *pgxpool.Pool
}

// NewInstallmentRepository creates a new InstallmentRepository
func NewInstallmentRepository(pool *pgxpool.Pool) *InstallmentRepository {
	return &InstallmentRepository{pool: pool}
}

const installmentColumns = `id, loan_id, number, due_date, amount, status, paid_amount,
	paid_date, payment_mode, notes, created_at`

func scanInstallment(row pgx.Row) (*domain.Installment, error) {
	var i domain.Installment
	var amount, paidAmount pgtype.Numeric
	var dueDate pgtype.Date
	var paidDate pgtype.Timestamptz

	err := row.Scan(&i.ID, &i.LoanID, &i.Number, &dueDate, &amount, &i.Status,
		&paidAmount, &paidDate, &i.PaymentMode, &i.Notes, &i.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInstallmentNotFound
		}
		return nil, err
	}

	i.DueDate = dueDate.Time
	i.Amount = pgNumericToDecimal(amount)
	i.PaidAmount = pgNumericToDecimal(paidAmount)
	if paidDate.Valid {
		i.PaidDate = &paidDate.Time
	}
	return &i, nil
}

// CreateBatchTx inserts a full installment schedule within a transaction.
// Either the whole schedule lands or none of it does.
func (r *InstallmentRepository) CreateBatchTx(tx any, installments []*domain.Installment) error {
	pgxTx, err := asTx(tx)
	if err != nil {
		return err
	}

	ctx := context.Background()
	for _, inst := range installments {
		amount, err := decimalToPgNumeric(inst.Amount)
		if err != nil {
			return err
		}
		err = pgxTx.QueryRow(ctx, `
			INSERT INTO installments (loan_id, number, due_date, amount, status)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at`,
			inst.LoanID, inst.Number,
			pgtype.Date{Time: inst.DueDate, Valid: true},
			amount, inst.Status).Scan(&inst.ID, &inst.CreatedAt)
		if err != nil {
			return err
		}
	}
	return nil
}

// GetByID retrieves an installment by ID
func (r *InstallmentRepository) GetByID(id int64) (*domain.Installment, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `SELECT `+installmentColumns+` FROM installments WHERE id = $1`, id)
	return scanInstallment(row)
}

// GetByLoan retrieves all installments of a loan ordered by due date
func (r *InstallmentRepository) GetByLoan(loanID int64) ([]*domain.Installment, error) {
	return r.getByLoan(r.pool, loanID)
}

// GetByLoanTx retrieves all installments of a loan within a transaction.
// The payment engine uses this for the closure re-scan so it sees its own
// uncommitted update.
func (r *InstallmentRepository) GetByLoanTx(tx any, loanID int64) ([]*domain.Installment, error) {
	pgxTx, err := asTx(tx)
	if err != nil {
		return nil, err
	}
	return r.getByLoan(pgxTx, loanID)
}

func (r *InstallmentRepository) getByLoan(q queryer, loanID int64) ([]*domain.Installment, error) {
	ctx := context.Background()
	rows, err := q.Query(ctx, `
		SELECT `+installmentColumns+` FROM installments WHERE loan_id = $1 ORDER BY due_date ASC`, loanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectInstallments(rows)
}

// List retrieves installments ordered by due date, optionally filtered by
// status and capped by a limit.
func (r *InstallmentRepository) List(filter domain.InstallmentListFilter) ([]*domain.Installment, error) {
	ctx := context.Background()

	query := `SELECT ` + installmentColumns + ` FROM installments`
	var args []any
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += ` WHERE status = $1`
	}
	query += ` ORDER BY due_date ASC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectInstallments(rows)
}

const installmentJoinColumns = `i.id, i.loan_id, i.number, i.due_date, i.amount, i.status,
	i.paid_amount, i.paid_date, i.payment_mode, i.notes, i.created_at,
	b.id, b.full_name, b.phone_number, b.address`

const installmentJoin = `
	FROM installments i
	JOIN loans l ON l.id = i.loan_id
	JOIN borrowers b ON b.id = l.borrower_id`

// GetDueOn retrieves unpaid installments due on the given calendar day
func (r *InstallmentRepository) GetDueOn(day time.Time) ([]*domain.InstallmentWithBorrower, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT `+installmentJoinColumns+installmentJoin+`
		WHERE i.status = $1 AND i.due_date = $2
		ORDER BY i.due_date ASC`,
		domain.StatusUnpaid, pgtype.Date{Time: day, Valid: true})
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectInstallmentsWithBorrower(rows)
}

// GetUpcoming retrieves the next unpaid installments due strictly after the
// given day, nearest first.
func (r *InstallmentRepository) GetUpcoming(after time.Time, limit int) ([]*domain.InstallmentWithBorrower, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT `+installmentJoinColumns+installmentJoin+`
		WHERE i.status = $1 AND i.due_date > $2
		ORDER BY i.due_date ASC
		LIMIT $3`,
		domain.StatusUnpaid, pgtype.Date{Time: after, Valid: true}, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectInstallmentsWithBorrower(rows)
}

// GetOverdue retrieves unpaid installments due strictly before the given day
func (r *InstallmentRepository) GetOverdue(before time.Time) ([]*domain.InstallmentWithBorrower, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT `+installmentJoinColumns+installmentJoin+`
		WHERE i.status = $1 AND i.due_date < $2
		ORDER BY i.due_date ASC`,
		domain.StatusUnpaid, pgtype.Date{Time: before, Valid: true})
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectInstallmentsWithBorrower(rows)
}

// GetPaid retrieves all installments in a terminal paid status, most recent
// payment first.
func (r *InstallmentRepository) GetPaid() ([]*domain.InstallmentWithBorrower, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT `+installmentJoinColumns+installmentJoin+`
		WHERE i.status = ANY($1)
		ORDER BY i.paid_date DESC`,
		[]string{string(domain.StatusPaidOnTime), string(domain.StatusPaidLate), string(domain.StatusAdvancePaid)})
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectInstallmentsWithBorrower(rows)
}

// Update persists the patchable installment fields
func (r *InstallmentRepository) Update(installment *domain.Installment) (*domain.Installment, error) {
	ctx := context.Background()

	paidAmount, err := decimalToPgNumeric(installment.PaidAmount)
	if err != nil {
		return nil, err
	}

	paidDate := pgtype.Timestamptz{}
	if installment.PaidDate != nil {
		paidDate = pgtype.Timestamptz{Time: *installment.PaidDate, Valid: true}
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE installments
		SET status = $2, paid_amount = $3, paid_date = $4, payment_mode = $5, notes = $6
		WHERE id = $1
		RETURNING `+installmentColumns,
		installment.ID, installment.Status, paidAmount, paidDate,
		installment.PaymentMode, installment.Notes)
	return scanInstallment(row)
}

// MarkPaidTx persists a payment outcome within a transaction
func (r *InstallmentRepository) MarkPaidTx(tx any, installment *domain.Installment) (*domain.Installment, error) {
	pgxTx, err := asTx(tx)
	if err != nil {
		return nil, err
	}

	paidAmount, err := decimalToPgNumeric(installment.PaidAmount)
	if err != nil {
		return nil, err
	}

	paidDate := pgtype.Timestamptz{}
	if installment.PaidDate != nil {
		paidDate = pgtype.Timestamptz{Time: *installment.PaidDate, Valid: true}
	}

	ctx := context.Background()
	row := pgxTx.QueryRow(ctx, `
		UPDATE installments
		SET status = $2, paid_amount = $3, paid_date = $4, payment_mode = $5, notes = $6
		WHERE id = $1
		RETURNING `+installmentColumns,
		installment.ID, installment.Status, paidAmount, paidDate,
		installment.PaymentMode, installment.Notes)
	return scanInstallment(row)
}

func collectInstallments(rows pgx.Rows) ([]*domain.Installment, error) {
	var result []*domain.Installment
	for rows.Next() {
		var i domain.Installment
		var amount, paidAmount pgtype.Numeric
		var dueDate pgtype.Date
		var paidDate pgtype.Timestamptz

		if err := rows.Scan(&i.ID, &i.LoanID, &i.Number, &dueDate, &amount, &i.Status,
			&paidAmount, &paidDate, &i.PaymentMode, &i.Notes, &i.CreatedAt); err != nil {
			return nil, err
		}

		i.DueDate = dueDate.Time
		i.Amount = pgNumericToDecimal(amount)
		i.PaidAmount = pgNumericToDecimal(paidAmount)
		if paidDate.Valid {
			i.PaidDate = &paidDate.Time
		}
		result = append(result, &i)
	}
	return result, rows.Err()
}

func collectInstallmentsWithBorrower(rows pgx.Rows) ([]*domain.InstallmentWithBorrower, error) {
	var result []*domain.InstallmentWithBorrower
	for rows.Next() {
		var i domain.InstallmentWithBorrower
		var amount, paidAmount pgtype.Numeric
		var dueDate pgtype.Date
		var paidDate pgtype.Timestamptz

		if err := rows.Scan(&i.ID, &i.LoanID, &i.Number, &dueDate, &amount, &i.Status,
			&paidAmount, &paidDate, &i.PaymentMode, &i.Notes, &i.CreatedAt,
			&i.BorrowerID, &i.BorrowerName, &i.BorrowerPhone, &i.BorrowerAddress); err != nil {
			return nil, err
		}

		i.DueDate = dueDate.Time
		i.Amount = pgNumericToDecimal(amount)
		i.PaidAmount = pgNumericToDecimal(paidAmount)
		if paidDate.Valid {
			i.PaidDate = &paidDate.Time
		}
		result = append(result, &i)
	}
	return result, rows.Err()
}
