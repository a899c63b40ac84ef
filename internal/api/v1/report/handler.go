package report

import (
	"fmt"
	"net/http"

	"bank-backend/internal/api/v1/transaction"
	"bank-backend/internal/middleware"
	"bank-backend/internal/services"
	"bank-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

const formatPDF = "pdf"

// GetReceipt returns the text receipt of a transaction, or a PDF with ?format=pdf.
func GetReceipt(c *gin.Context) {
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		return
	}

	record, err := services.GetTransactionByID(c.Request.Context(), id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	allowed, err := services.CanAccessTransaction(c.Request.Context(), middleware.CurrentUser(c), record)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if !allowed {
		utils.RespondError(c, services.ErrTransactionAccessDenied)
		return
	}

	switch c.Query("format") {
	case "", "text":
		utils.RespondOK(c, "Receipt generated successfully", ReceiptResponse{
			Reference:   services.ReceiptReference(record),
			Receipt:     services.GenerateTransactionReceipt(record),
			Transaction: transaction.NewTransactionResponse(record),
		})
	case formatPDF:
		pdf, err := services.RenderReceiptPDF(record)
		if err != nil {
			utils.RespondError(c, utils.NewInternalError("failed to render receipt", err))
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=receipt_%d.pdf", record.ID))
		c.Data(http.StatusOK, "application/pdf", pdf)
	default:
		utils.RespondError(c, services.ErrUnsupportedFormat)
	}
}

// GetAccountBalance returns the stored balance, or the balance replayed over
// start_date and end_date when either is given.
func GetAccountBalance(c *gin.Context) {
	accountID, ok := accessibleAccount(c)
	if !ok {
		return
	}
	start, end, ok := utils.ParseDateRange(c)
	if !ok {
		return
	}

	balance, err := services.CalculateAccountBalance(c.Request.Context(), accountID, start, end)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondOK(c, "Balance calculated successfully", BalanceResponse{
		AccountID:        accountID,
		Balance:          balance,
		FormattedBalance: services.FormatCurrency(balance),
		Period:           PeriodResponse{StartDate: start, EndDate: end},
	})
}

func GetTransactionSummary(c *gin.Context) {
	accountID, ok := accessibleAccount(c)
	if !ok {
		return
	}
	start, end, ok := utils.ParseDateRange(c)
	if !ok {
		return
	}

	summary, err := services.GetTransactionSummary(c.Request.Context(), accountID, start, end)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, "Summary generated successfully", NewSummaryResponse(summary))
}

// ExportStatement downloads the account statement as CSV (default) or XLSX.
func ExportStatement(c *gin.Context) {
	accountID, ok := accessibleAccount(c)
	if !ok {
		return
	}
	start, end, ok := utils.ParseDateRange(c)
	if !ok {
		return
	}

	statement, err := services.ExportStatement(c.Request.Context(), accountID, start, end, c.Query("format"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", statement.Filename))
	c.Data(http.StatusOK, statement.ContentType, statement.Content)
}

func accessibleAccount(c *gin.Context) (uint, bool) {
	accountID, ok := utils.ParseIDParam(c, "accountId")
	if !ok {
		return 0, false
	}
	if _, err := services.CheckAccountAccess(c.Request.Context(), middleware.CurrentUser(c), accountID); err != nil {
		utils.RespondError(c, err)
		return 0, false
	}
	return accountID, true
}
