package transaction

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"bank-backend/internal/middleware"
	"bank-backend/internal/models"
	"bank-backend/internal/repositories"
	"bank-backend/internal/services"
	"bank-backend/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const exportLimit = 10000

// ListTransactions returns a paginated list of transactions with filtering. Admin only.
func ListTransactions(c *gin.Context) {
	page, limit, ok := utils.ParsePagination(c)
	if !ok {
		return
	}

	filter, ok := parseFilter(c)
	if !ok {
		return
	}
	filter.Page = repositories.Page{Page: page, Limit: limit}

	transactions, total, err := services.FindTransactions(c.Request.Context(), filter)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondOK(c, "Transactions retrieved successfully", TransactionListResponse{
		Transactions: newTransactionResponses(transactions),
		Total:        total,
		Page:         page,
		Limit:        limit,
	})
}

// ExportTransactions writes the filtered transactions as CSV. Admin only.
func ExportTransactions(c *gin.Context) {
	filter, ok := parseFilter(c)
	if !ok {
		return
	}
	filter.Page = repositories.Page{Page: 1, Limit: exportLimit}

	transactions, _, err := services.FindTransactions(c.Request.Context(), filter)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	csvContent, err := services.GenerateTransactionCSV(transactions)
	if err != nil {
		utils.RespondError(c, utils.NewInternalError("failed to generate CSV", err))
		return
	}

	filename := fmt.Sprintf("transactions_%s.csv", time.Now().Format("20060102150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "text/csv", csvContent)
}

func parseFilter(c *gin.Context) (repositories.TransactionFilter, bool) {
	var filter repositories.TransactionFilter

	if accountIDStr, exists := c.GetQuery("account_id"); exists {
		accountID, err := strconv.ParseUint(accountIDStr, 10, 64)
		if err != nil {
			utils.RespondError(c, utils.NewBadRequestError("invalid account_id"))
			return filter, false
		}
		id := uint(accountID)
		filter.AccountID = &id
	}

	if typeStr, exists := c.GetQuery("type"); exists {
		t := models.TransactionType(typeStr)
		filter.Type = &t
	}

	if statusStr, exists := c.GetQuery("status"); exists {
		s := models.TransactionStatus(statusStr)
		filter.Status = &s
	}

	start, end, ok := utils.ParseDateRange(c)
	if !ok {
		return filter, false
	}
	filter.StartTime, filter.EndTime = start, end

	if filter.MinAmount, ok = parseAmountQuery(c, "min_amount"); !ok {
		return filter, false
	}
	if filter.MaxAmount, ok = parseAmountQuery(c, "max_amount"); !ok {
		return filter, false
	}

	return filter, true
}

func parseAmountQuery(c *gin.Context, name string) (*decimal.Decimal, bool) {
	raw, exists := c.GetQuery(name)
	if !exists {
		return nil, true
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		utils.RespondError(c, utils.NewBadRequestError("invalid "+name))
		return nil, false
	}
	return &amount, true
}

func GetTransaction(c *gin.Context) {
	record, ok := accessibleTransaction(c)
	if !ok {
		return
	}
	utils.RespondOK(c, "Transaction retrieved successfully", NewTransactionResponse(record))
}

// GetAccountTransactions lists the transactions touching an account, newest first.
func GetAccountTransactions(c *gin.Context) {
	accountID, ok := utils.ParseIDParam(c, "accountId")
	if !ok {
		return
	}
	if _, err := services.CheckAccountAccess(c.Request.Context(), middleware.CurrentUser(c), accountID); err != nil {
		utils.RespondError(c, err)
		return
	}

	transactions, err := services.GetAccountTransactions(c.Request.Context(), accountID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, "Transactions retrieved successfully", newTransactionResponses(transactions))
}

func Deposit(c *gin.Context) {
	var req DepositRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	record, err := services.Deposit(c.Request.Context(), req.DestinationAccountID, req.Amount, req.Description)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	respondMovement(c, "Deposit", record)
}

func Withdraw(c *gin.Context) {
	var req WithdrawRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	if _, err := services.CheckAccountAccess(c.Request.Context(), middleware.CurrentUser(c), req.SourceAccountID); err != nil {
		utils.RespondError(c, err)
		return
	}

	record, err := services.Withdraw(c.Request.Context(), req.SourceAccountID, req.Amount, req.Description)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	respondMovement(c, "Withdrawal", record)
}

func Transfer(c *gin.Context) {
	var req TransferRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	if req.SourceAccountID == req.DestinationAccountID {
		utils.RespondError(c, services.ErrSameAccountTransfer)
		return
	}
	if _, err := services.CheckAccountAccess(c.Request.Context(), middleware.CurrentUser(c), req.SourceAccountID); err != nil {
		utils.RespondError(c, err)
		return
	}

	record, err := services.Transfer(c.Request.Context(), req.SourceAccountID, req.DestinationAccountID, req.Amount, req.Description)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	respondMovement(c, "Transfer", record)
}

// respondMovement answers from the status the movement ended in: 201 when
// completed, 202 while the settlement worker still owns it, and 409 when a
// cancel reached the record before settlement did.
func respondMovement(c *gin.Context, kind string, record *models.Transaction) {
	data := NewTransactionResponse(record)
	switch record.Status {
	case models.TransactionStatusCompleted:
		utils.RespondCreated(c, kind+" completed successfully", data)
	case models.TransactionStatusPending:
		c.JSON(http.StatusAccepted, utils.NewSuccessResponse(kind+" accepted for settlement", data))
	default:
		resp := utils.NewErrorResponse(fmt.Sprintf("%s did not settle: transaction is %s", kind, record.Status))
		resp.Data = data
		c.JSON(http.StatusConflict, resp)
	}
}

func CancelTransaction(c *gin.Context) {
	record, ok := accessibleTransaction(c)
	if !ok {
		return
	}

	cancelled, err := services.CancelTransaction(c.Request.Context(), record.ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, "Transaction cancelled successfully", NewTransactionResponse(cancelled))
}

// accessibleTransaction loads :id and checks the caller may see it.
func accessibleTransaction(c *gin.Context) (*models.Transaction, bool) {
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		return nil, false
	}

	record, err := services.GetTransactionByID(c.Request.Context(), id)
	if err != nil {
		utils.RespondError(c, err)
		return nil, false
	}

	allowed, err := services.CanAccessTransaction(c.Request.Context(), middleware.CurrentUser(c), record)
	if err != nil {
		utils.RespondError(c, err)
		return nil, false
	}
	if !allowed {
		utils.RespondError(c, services.ErrTransactionAccessDenied)
		return nil, false
	}
	return record, true
}
