package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/udhaarbook/udhaarbook-backend/internal/domain"
)

// DashboardRepository implements domain.DashboardRepository using PostgreSQL.
// Everything here is read-only aggregation; the grouping happens in SQL, not
// in Go.
type DashboardRepository struct {
	pool *pgxpool.Pool
}

// NewDashboardRepository creates a new DashboardRepository
func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepository {
	return &DashboardRepository{pool: pool}
}

func (r *DashboardRepository) sumQuery(query string, args ...any) (decimal.Decimal, error) {
	ctx := context.Background()
	var sum pgtype.Numeric
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&sum); err != nil {
		return decimal.Zero, err
	}
	return pgNumericToDecimal(sum), nil
}

func (r *DashboardRepository) countQuery(query string, args ...any) (int64, error) {
	ctx := context.Background()
	var count int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// SumPrincipalByStatus returns the summed principal of loans in a status
func (r *DashboardRepository) SumPrincipalByStatus(status domain.LoanStatus) (decimal.Decimal, error) {
	return r.sumQuery(`SELECT COALESCE(SUM(principal), 0) FROM loans WHERE status = $1`, status)
}

// SumPrincipal returns the summed principal across all loans
func (r *DashboardRepository) SumPrincipal() (decimal.Decimal, error) {
	return r.sumQuery(`SELECT COALESCE(SUM(principal), 0) FROM loans`)
}

// SumTotalRepayable returns the summed repayable amount across all loans
func (r *DashboardRepository) SumTotalRepayable() (decimal.Decimal, error) {
	return r.sumQuery(`SELECT COALESCE(SUM(total_repayable), 0) FROM loans`)
}

// CountLoansByStatus returns how many loans are in a status
func (r *DashboardRepository) CountLoansByStatus(status domain.LoanStatus) (int64, error) {
	return r.countQuery(`SELECT COUNT(*) FROM loans WHERE status = $1`, status)
}

// CountInstallments returns the total number of installments
func (r *DashboardRepository) CountInstallments() (int64, error) {
	return r.countQuery(`SELECT COUNT(*) FROM installments`)
}

// CountInstallmentsByStatus returns how many installments are in a status
func (r *DashboardRepository) CountInstallmentsByStatus(status domain.InstallmentStatus) (int64, error) {
	return r.countQuery(`SELECT COUNT(*) FROM installments WHERE status = $1`, status)
}

// SumPaidAmountByStatuses sums paid_amount over installments in any of the
// given statuses.
func (r *DashboardRepository) SumPaidAmountByStatuses(statuses []domain.InstallmentStatus) (decimal.Decimal, error) {
	strs := make([]string, len(statuses))
	for i, s := range statuses {
		strs[i] = string(s)
	}
	return r.sumQuery(`SELECT COALESCE(SUM(paid_amount), 0) FROM installments WHERE status = ANY($1)`, strs)
}

// SumAmountUnpaid sums the scheduled amount of all unpaid installments
func (r *DashboardRepository) SumAmountUnpaid() (decimal.Decimal, error) {
	return r.sumQuery(`SELECT COALESCE(SUM(amount), 0) FROM installments WHERE status = $1`, domain.StatusUnpaid)
}

// SumAmountUnpaidDueBefore sums unpaid installment amounts due strictly
// before the given day.
func (r *DashboardRepository) SumAmountUnpaidDueBefore(day time.Time) (decimal.Decimal, error) {
	return r.sumQuery(`SELECT COALESCE(SUM(amount), 0) FROM installments WHERE status = $1 AND due_date < $2`,
		domain.StatusUnpaid, pgtype.Date{Time: day, Valid: true})
}

// CountUnpaidDueBefore counts unpaid installments due strictly before the
// given day.
func (r *DashboardRepository) CountUnpaidDueBefore(day time.Time) (int64, error) {
	return r.countQuery(`SELECT COUNT(*) FROM installments WHERE status = $1 AND due_date < $2`,
		domain.StatusUnpaid, pgtype.Date{Time: day, Valid: true})
}

// CountUnpaidDueAfter counts unpaid installments due strictly after the
// given day.
func (r *DashboardRepository) CountUnpaidDueAfter(day time.Time) (int64, error) {
	return r.countQuery(`SELECT COUNT(*) FROM installments WHERE status = $1 AND due_date > $2`,
		domain.StatusUnpaid, pgtype.Date{Time: day, Valid: true})
}

// SumUnpaidDueOn returns the summed amount and count of unpaid installments
// due on exactly the given day.
func (r *DashboardRepository) SumUnpaidDueOn(day time.Time) (decimal.Decimal, int64, error) {
	ctx := context.Background()
	var sum pgtype.Numeric
	var count int64
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0), COUNT(*)
		FROM installments
		WHERE status = $1 AND due_date = $2`,
		domain.StatusUnpaid, pgtype.Date{Time: day, Valid: true}).Scan(&sum, &count)
	if err != nil {
		return decimal.Zero, 0, err
	}
	return pgNumericToDecimal(sum), count, nil
}

// MonthlyCollections returns twelve buckets of collected amounts, one per
// month of the given year. Months with no payments stay at zero.
func (r *DashboardRepository) MonthlyCollections(year int) ([]decimal.Decimal, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT EXTRACT(MONTH FROM paid_date)::int, COALESCE(SUM(paid_amount), 0)
		FROM installments
		WHERE paid_date IS NOT NULL AND EXTRACT(YEAR FROM paid_date) = $1
		GROUP BY 1`, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	buckets := make([]decimal.Decimal, 12)
	for i := range buckets {
		buckets[i] = decimal.Zero
	}
	for rows.Next() {
		var month int
		var sum pgtype.Numeric
		if err := rows.Scan(&month, &sum); err != nil {
			return nil, err
		}
		if month >= 1 && month <= 12 {
			buckets[month-1] = pgNumericToDecimal(sum)
		}
	}
	return buckets, rows.Err()
}

// TopBorrowersByActivePrincipal ranks borrowers by the summed principal of
// their active loans.
func (r *DashboardRepository) TopBorrowersByActivePrincipal(limit int) ([]*domain.TopBorrower, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT b.id, b.full_name, b.phone_number, b.cibil_score, b.is_loyal,
			COUNT(l.id), COALESCE(SUM(l.principal), 0)
		FROM borrowers b
		JOIN loans l ON l.borrower_id = b.id AND l.status = $1
		GROUP BY b.id, b.full_name, b.phone_number, b.cibil_score, b.is_loyal
		ORDER BY COALESCE(SUM(l.principal), 0) DESC
		LIMIT $2`,
		domain.LoanStatusActive, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.TopBorrower
	for rows.Next() {
		var tb domain.TopBorrower
		var principal pgtype.Numeric
		if err := rows.Scan(&tb.BorrowerID, &tb.FullName, &tb.PhoneNumber, &tb.CibilScore,
			&tb.IsLoyal, &tb.ActiveLoanCount, &principal); err != nil {
			return nil, err
		}
		tb.TotalPrincipal = pgNumericToDecimal(principal)
		result = append(result, &tb)
	}
	return result, rows.Err()
}

// SumCollectedBetween sums paid amounts whose payment landed in [from, to)
func (r *DashboardRepository) SumCollectedBetween(from, to time.Time) (decimal.Decimal, error) {
	return r.sumQuery(`
		SELECT COALESCE(SUM(paid_amount), 0)
		FROM installments
		WHERE paid_date >= $1 AND paid_date < $2`, from, to)
}

// CollectionsByDay groups collected payments by calendar day, newest first.
// Nil bounds leave that side of the range open.
func (r *DashboardRepository) CollectionsByDay(from, to *time.Time) ([]*domain.CollectionByDay, error) {
	ctx := context.Background()

	query := `
		SELECT TO_CHAR(paid_date, 'YYYY-MM-DD'), COALESCE(SUM(paid_amount), 0), COUNT(*)
		FROM installments
		WHERE paid_date IS NOT NULL`
	var args []any
	if from != nil {
		args = append(args, *from)
		query += ` AND paid_date >= $1`
	}
	if to != nil {
		args = append(args, *to)
		if from != nil {
			query += ` AND paid_date < $2`
		} else {
			query += ` AND paid_date < $1`
		}
	}
	query += `
		GROUP BY 1
		ORDER BY 1 DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.CollectionByDay
	for rows.Next() {
		var c domain.CollectionByDay
		var sum pgtype.Numeric
		if err := rows.Scan(&c.Day, &sum, &c.Count); err != nil {
			return nil, err
		}
		c.TotalAmount = pgNumericToDecimal(sum)
		result = append(result, &c)
	}
	return result, rows.Err()
}

// LoanSummaryByStatus groups loans by status with count and summed principal
func (r *DashboardRepository) LoanSummaryByStatus() ([]*domain.LoanSummaryRow, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT status, COUNT(*), COALESCE(SUM(principal), 0)
		FROM loans
		GROUP BY status
		ORDER BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.LoanSummaryRow
	for rows.Next() {
		var row domain.LoanSummaryRow
		var sum pgtype.Numeric
		if err := rows.Scan(&row.Status, &row.Count, &sum); err != nil {
			return nil, err
		}
		row.TotalAmount = pgNumericToDecimal(sum)
		result = append(result, &row)
	}
	return result, rows.Err()
}
