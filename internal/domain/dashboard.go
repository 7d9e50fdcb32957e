package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanBookStats are the loan-status counts shown on the dashboard.
type LoanBookStats struct {
	ActiveLoans int64 `json:"activeLoans"`
	ClosedLoans int64 `json:"closedLoans"`
	TotalLoans  int64 `json:"totalLoans"`
}

// InstallmentBookStats are the installment counts shown on the dashboard.
type InstallmentBookStats struct {
	TodayDue       int64           `json:"todayDue"`
	TodayDueAmount decimal.Decimal `json:"todayDueAmount"`
	Overdue        int64           `json:"overdue"`
	Total          int64           `json:"total"`
	Paid           int64           `json:"paid"`
	AdvancePaid    int64           `json:"advancePaid"`
	Unpaid         int64           `json:"unpaid"`
	Upcoming       int64           `json:"upcoming"`
}

// CollectionStats break collected money down by how it arrived.
type CollectionStats struct {
	TotalRecovered   decimal.Decimal `json:"totalRecovered"`
	AdvanceCollected decimal.Decimal `json:"advanceCollected"`
	TotalCollected   decimal.Decimal `json:"totalCollected"`
}

// DashboardStats is the aggregate view over the whole loan book.
type DashboardStats struct {
	TotalInvestedAmount  decimal.Decimal      `json:"totalInvestedAmount"`
	TotalRecoveredAmount decimal.Decimal      `json:"totalRecoveredAmount"`
	AdvanceCollected     decimal.Decimal      `json:"advanceCollectedAmount"`
	TotalProfit          decimal.Decimal      `json:"totalProfit"`
	PendingAmount        decimal.Decimal      `json:"pendingAmount"`
	OverdueAmount        decimal.Decimal      `json:"overdueAmount"`
	ActiveLoanCount      int64                `json:"activeLoanCount"`
	TotalBorrowerCount   int64                `json:"totalBorrowerCount"`
	LoanStats            LoanBookStats        `json:"loanStats"`
	InstallmentStats     InstallmentBookStats `json:"emiStats"`
	CollectionStats      CollectionStats      `json:"collectionStats"`
}

// MonthlyCollections is a 12-bucket histogram of collected amounts per month.
type MonthlyCollections struct {
	Year            int               `json:"year"`
	Collections     []decimal.Decimal `json:"collections"`
	TotalCollection decimal.Decimal   `json:"totalCollection"`
}

// TopBorrower ranks a borrower by active principal.
type TopBorrower struct {
	BorrowerID      int64           `json:"borrowerId"`
	FullName        string          `json:"fullName"`
	PhoneNumber     string          `json:"phoneNumber"`
	CibilScore      int32           `json:"cibilScore"`
	IsLoyal         bool            `json:"isLoyal"`
	ActiveLoanCount int64           `json:"activeLoansCount"`
	TotalPrincipal  decimal.Decimal `json:"totalLoanAmount"`
}

// DailyCollectionEntry is one row of the collection worklist: an unpaid
// installment due today or coming up, with its borrower context.
type DailyCollectionEntry struct {
	Installment   Installment       `json:"emi"`
	BorrowerID    int64             `json:"borrowerId"`
	BorrowerName  string            `json:"borrowerName"`
	BorrowerPhone string            `json:"borrowerPhone"`
	DueDate       time.Time         `json:"dueDate"`
	Amount        decimal.Decimal   `json:"amount"`
	Status        InstallmentStatus `json:"status"`
}

// DashboardRepository covers the grouped/summed read-only queries the
// dashboard and reports are built from.
type DashboardRepository interface {
	SumPrincipalByStatus(status LoanStatus) (decimal.Decimal, error)
	SumPrincipal() (decimal.Decimal, error)
	SumTotalRepayable() (decimal.Decimal, error)
	CountLoansByStatus(status LoanStatus) (int64, error)
	CountInstallments() (int64, error)
	CountInstallmentsByStatus(status InstallmentStatus) (int64, error)
	SumPaidAmountByStatuses(statuses []InstallmentStatus) (decimal.Decimal, error)
	SumAmountUnpaid() (decimal.Decimal, error)
	SumAmountUnpaidDueBefore(day time.Time) (decimal.Decimal, error)
	CountUnpaidDueBefore(day time.Time) (int64, error)
	CountUnpaidDueAfter(day time.Time) (int64, error)
	SumUnpaidDueOn(day time.Time) (decimal.Decimal, int64, error)
	MonthlyCollections(year int) ([]decimal.Decimal, error)
	TopBorrowersByActivePrincipal(limit int) ([]*TopBorrower, error)
	SumCollectedBetween(from, to time.Time) (decimal.Decimal, error)
	CollectionsByDay(from, to *time.Time) ([]*CollectionByDay, error)
	LoanSummaryByStatus() ([]*LoanSummaryRow, error)
}
