package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/udhaarbook/udhaarbook-backend/internal/domain"
)

// BorrowerRepository implements domain.BorrowerRepository using PostgreSQL
type BorrowerRepository struct {
	pool *pgxpool.Pool
}

// NewBorrowerRepository creates a new BorrowerRepository
func NewBorrowerRepository(pool *pgxpool.Pool) *BorrowerRepository {
	return &BorrowerRepository{pool: pool}
}

const borrowerColumns = `id, full_name, phone_number, address, notes, cibil_score, is_loyal, created_at`

func scanBorrower(row pgx.Row) (*domain.Borrower, error) {
	var b domain.Borrower
	err := row.Scan(&b.ID, &b.FullName, &b.PhoneNumber, &b.Address, &b.Notes, &b.CibilScore, &b.IsLoyal, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBorrowerNotFound
		}
		return nil, err
	}
	return &b, nil
}

// Create inserts a new borrower. A duplicate phone number maps to
// domain.ErrPhoneNumberExists via the unique constraint.
func (r *BorrowerRepository) Create(borrower *domain.Borrower) (*domain.Borrower, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO borrowers (full_name, phone_number, address, notes, cibil_score, is_loyal)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+borrowerColumns,
		borrower.FullName, borrower.PhoneNumber, borrower.Address, borrower.Notes,
		borrower.CibilScore, borrower.IsLoyal)

	created, err := scanBorrower(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrPhoneNumberExists
		}
		return nil, err
	}
	return created, nil
}

// GetByID retrieves a borrower by ID
func (r *BorrowerRepository) GetByID(id int64) (*domain.Borrower, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `SELECT `+borrowerColumns+` FROM borrowers WHERE id = $1`, id)
	return scanBorrower(row)
}

// GetByPhoneNumber retrieves a borrower by exact phone number
func (r *BorrowerRepository) GetByPhoneNumber(phoneNumber string) (*domain.Borrower, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `SELECT `+borrowerColumns+` FROM borrowers WHERE phone_number = $1`, phoneNumber)
	return scanBorrower(row)
}

// GetAll retrieves all borrowers sorted by name
func (r *BorrowerRepository) GetAll() ([]*domain.Borrower, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `SELECT `+borrowerColumns+` FROM borrowers ORDER BY full_name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBorrowers(rows)
}

// Search retrieves borrowers whose name or phone number contains the query,
// case-insensitively.
func (r *BorrowerRepository) Search(query string) ([]*domain.Borrower, error) {
	ctx := context.Background()
	pattern := "%" + query + "%"
	rows, err := r.pool.Query(ctx, `
		SELECT `+borrowerColumns+`
		FROM borrowers
		WHERE full_name ILIKE $1 OR phone_number ILIKE $1
		ORDER BY full_name ASC`, pattern)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBorrowers(rows)
}

// Update updates all mutable borrower fields
func (r *BorrowerRepository) Update(borrower *domain.Borrower) (*domain.Borrower, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		UPDATE borrowers
		SET full_name = $2, phone_number = $3, address = $4, notes = $5, is_loyal = $6
		WHERE id = $1
		RETURNING `+borrowerColumns,
		borrower.ID, borrower.FullName, borrower.PhoneNumber, borrower.Address,
		borrower.Notes, borrower.IsLoyal)
	return scanBorrower(row)
}

// UpdateScore sets the borrower's cibil score
func (r *BorrowerRepository) UpdateScore(id int64, score int32) (*domain.Borrower, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		UPDATE borrowers SET cibil_score = $2 WHERE id = $1
		RETURNING `+borrowerColumns, id, score)
	return scanBorrower(row)
}

// UpdateScoreTx sets the borrower's cibil score within a transaction
func (r *BorrowerRepository) UpdateScoreTx(tx any, id int64, score int32) (*domain.Borrower, error) {
	pgxTx, err := asTx(tx)
	if err != nil {
		return nil, err
	}
	ctx := context.Background()
	row := pgxTx.QueryRow(ctx, `
		UPDATE borrowers SET cibil_score = $2 WHERE id = $1
		RETURNING `+borrowerColumns, id, score)
	return scanBorrower(row)
}

// Delete removes a borrower. The loan guard lives in the service layer.
func (r *BorrowerRepository) Delete(id int64) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx, `DELETE FROM borrowers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBorrowerNotFound
	}
	return nil
}

// Count returns the number of borrowers
func (r *BorrowerRepository) Count() (int64, error) {
	ctx := context.Background()
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM borrowers`).Scan(&count)
	return count, err
}

func collectBorrowers(rows pgx.Rows) ([]*domain.Borrower, error) {
	var result []*domain.Borrower
	for rows.Next() {
		var b domain.Borrower
		if err := rows.Scan(&b.ID, &b.FullName, &b.PhoneNumber, &b.Address, &b.Notes, &b.CibilScore, &b.IsLoyal, &b.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &b)
	}
	return result, rows.Err()
}
