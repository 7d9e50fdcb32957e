package domain

import "github.com/shopspring/decimal"

// LoanSummaryRow is one bucket of the loans-by-status report.
type LoanSummaryRow struct {
	Status      LoanStatus      `json:"status"`
	Count       int64           `json:"count"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// CollectionByDay is one bucket of the payment-collection report.
type CollectionByDay struct {
	Day         string          `json:"day"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Count       int64           `json:"count"`
}

// ReportSummary is the rolled-up report with month-over-month comparison.
type ReportSummary struct {
	TotalBorrowers       int64           `json:"totalBorrowers"`
	ActiveLoans          int64           `json:"activeLoans"`
	CompletedLoans       int64           `json:"completedLoans"`
	TotalPrincipal       decimal.Decimal `json:"totalPrincipal"`
	TotalCollected       decimal.Decimal `json:"totalCollected"`
	OutstandingAmount    decimal.Decimal `json:"outstandingAmount"`
	TotalInterestEarned  decimal.Decimal `json:"totalInterestEarned"`
	CollectionRate       decimal.Decimal `json:"collectionRate"`
	ThisMonthCollections decimal.Decimal `json:"thisMonthCollections"`
	LastMonthCollections decimal.Decimal `json:"lastMonthCollections"`
}
