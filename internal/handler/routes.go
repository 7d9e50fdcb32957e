package handler

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, borrowerHandler *BorrowerHandler, loanHandler *LoanHandler, installmentHandler *InstallmentHandler, paymentHandler *PaymentHandler, dashboardHandler *DashboardHandler, reportHandler *ReportHandler, wsHandler *WebSocketHandler) {
	// API version 1
	api := e.Group("/api/v1")

	// Borrower routes
	borrowers := api.Group("/borrowers")
	borrowers.POST("", borrowerHandler.CreateBorrower)
	borrowers.GET("", borrowerHandler.GetBorrowers)
	borrowers.GET("/search", borrowerHandler.SearchBorrowers)
	borrowers.GET("/:id", borrowerHandler.GetBorrower)
	borrowers.PATCH("/:id", borrowerHandler.UpdateBorrower)
	borrowers.DELETE("/:id", borrowerHandler.DeleteBorrower)
	borrowers.PATCH("/:id/cibil-score", borrowerHandler.UpdateCibilScore)
	borrowers.GET("/:id/loans", loanHandler.GetLoansByBorrower)

	// Loan routes
	loans := api.Group("/loans")
	loans.POST("", loanHandler.CreateLoan)
	loans.GET("", loanHandler.GetLoans)
	loans.GET("/:id", loanHandler.GetLoan)
	loans.PATCH("/:id/status", loanHandler.UpdateLoanStatus)

	// Installment routes
	installments := api.Group("/installments")
	installments.GET("", installmentHandler.GetInstallments)
	installments.GET("/:id", installmentHandler.GetInstallment)
	installments.PATCH("/:id", installmentHandler.UpdateInstallment)
	installments.POST("/:id/payment", installmentHandler.PayInstallment)
	installments.GET("/loan/:loanId", installmentHandler.GetInstallmentsByLoan)

	// Payment routes
	payments := api.Group("/payments")
	payments.POST("", paymentHandler.CreatePayment)
	payments.GET("", paymentHandler.GetPayments)
	payments.GET("/due-today", paymentHandler.GetDueToday)
	payments.PATCH("/:installmentId/mark-missed", paymentHandler.MarkMissed)

	// Dashboard routes
	dashboard := api.Group("/dashboard")
	dashboard.GET("/stats", dashboardHandler.GetStats)
	dashboard.GET("/monthly-collections", dashboardHandler.GetMonthlyCollections)
	dashboard.GET("/daily-collection", dashboardHandler.GetDailyCollection)
	dashboard.GET("/top-borrowers", dashboardHandler.GetTopBorrowers)

	// Report routes
	reports := api.Group("/reports")
	reports.GET("/loan-summary", reportHandler.GetLoanSummary)
	reports.GET("/payment-collection", reportHandler.GetPaymentCollection)
	reports.GET("/overdue-installments", reportHandler.GetOverdueInstallments)
	reports.GET("/summary", reportHandler.GetSummary)

	// WebSocket endpoint for live events
	e.GET("/ws", wsHandler.HandleWS)
}
