package account

import (
	"net/http"
	"strconv"

	"bank-backend/internal/middleware"
	"bank-backend/internal/models"
	"bank-backend/internal/repositories"
	"bank-backend/internal/services"
	"bank-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

// ListAccounts returns a paginated, filtered list of accounts. Admin only.
func ListAccounts(c *gin.Context) {
	page, limit, ok := utils.ParsePagination(c)
	if !ok {
		return
	}

	filter := repositories.AccountFilter{Page: repositories.Page{Page: page, Limit: limit}}

	if userIDStr, exists := c.GetQuery("user_id"); exists {
		userID, err := strconv.ParseUint(userIDStr, 10, 64)
		if err != nil {
			utils.RespondError(c, utils.NewBadRequestError("invalid user_id"))
			return
		}
		uid := uint(userID)
		filter.UserID = &uid
	}

	if typeStr, exists := c.GetQuery("type"); exists {
		t := models.AccountType(typeStr)
		if !t.Valid() {
			utils.RespondError(c, services.ErrInvalidAccountType)
			return
		}
		filter.Type = &t
	}

	if activeStr, exists := c.GetQuery("is_active"); exists {
		active, err := strconv.ParseBool(activeStr)
		if err != nil {
			utils.RespondError(c, utils.NewBadRequestError("invalid is_active"))
			return
		}
		filter.IsActive = &active
	}

	accounts, total, err := services.FindAccounts(c.Request.Context(), filter)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondOK(c, "Accounts retrieved successfully", AccountListResponse{
		Accounts: newAccountResponses(accounts),
		Total:    total,
		Page:     page,
		Limit:    limit,
	})
}

// CreateAccount opens an account. Clients may only open a zero balance
// account for themselves.
func CreateAccount(c *gin.Context) {
	var req CreateAccountRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	caller := middleware.CurrentUser(c)
	input := services.CreateAccountInput{
		UserID:        req.UserID,
		AccountNumber: req.AccountNumber,
		Type:          req.Type,
		Balance:       req.Balance,
	}

	if caller.IsAdmin() {
		if input.UserID == 0 {
			utils.RespondError(c, utils.NewValidationError(map[string][]string{"user_id": {"is required"}}))
			return
		}
	} else {
		if input.UserID != 0 && input.UserID != caller.ID {
			utils.RespondError(c, utils.NewForbiddenError("you can only open accounts for yourself"))
			return
		}
		if !input.Balance.IsZero() || input.AccountNumber != "" {
			utils.RespondError(c, utils.NewForbiddenError("only admins can set the account number or an initial balance"))
			return
		}
		input.UserID = caller.ID
	}

	a, err := services.CreateAccount(c.Request.Context(), input)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondCreated(c, "Account created successfully", NewAccountResponse(a))
}

func GetAccount(c *gin.Context) {
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		return
	}

	a, err := services.CheckAccountAccess(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, "Account retrieved successfully", NewAccountResponse(a))
}

func GetAccountByNumber(c *gin.Context) {
	a, err := services.GetAccountByNumber(c.Request.Context(), c.Param("accountNumber"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if !services.CanAccessAccount(middleware.CurrentUser(c), a) {
		utils.RespondError(c, services.ErrAccountAccessDenied)
		return
	}
	utils.RespondOK(c, "Account retrieved successfully", NewAccountResponse(a))
}

// GetUserAccounts lists the accounts of a user. Admin or the user themself.
func GetUserAccounts(c *gin.Context) {
	userID, ok := utils.ParseIDParam(c, "userId")
	if !ok {
		return
	}

	caller := middleware.CurrentUser(c)
	if !caller.IsAdmin() && caller.ID != userID {
		utils.RespondError(c, services.ErrAccountAccessDenied)
		return
	}

	accounts, err := services.GetUserAccounts(c.Request.Context(), userID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, "Accounts retrieved successfully", newAccountResponses(accounts))
}

// UpdateAccount changes type or status. Number and owner are immutable.
func UpdateAccount(c *gin.Context) {
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateAccountRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	a, err := services.UpdateAccount(c.Request.Context(), id, services.UpdateAccountInput{
		AccountNumber: req.AccountNumber,
		UserID:        req.UserID,
		Type:          req.Type,
		IsActive:      req.IsActive,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, "Account updated successfully", NewAccountResponse(a))
}

func DeactivateAccount(c *gin.Context) {
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		return
	}

	a, err := services.DeactivateAccount(c.Request.Context(), id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, "Account deactivated successfully", NewAccountResponse(a))
}

func DeleteAccount(c *gin.Context) {
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := services.DeleteAccount(c.Request.Context(), id); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
