package account

import (
	"time"

	"bank-backend/internal/models"

	"github.com/shopspring/decimal"
)

type AccountResponse struct {
	ID            uint               `json:"id"`
	AccountNumber string             `json:"account_number"`
	Type          models.AccountType `json:"type"`
	Balance       decimal.Decimal    `json:"balance"`
	UserID        uint               `json:"user_id"`
	IsActive      bool               `json:"is_active"`
	Version       int                `json:"version"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

func NewAccountResponse(a *models.Account) AccountResponse {
	return AccountResponse{
		ID:            a.ID,
		AccountNumber: a.AccountNumber,
		Type:          a.Type,
		Balance:       a.Balance,
		UserID:        a.UserID,
		IsActive:      a.IsActive,
		Version:       a.Version,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

func newAccountResponses(accounts []models.Account) []AccountResponse {
	items := make([]AccountResponse, 0, len(accounts))
	for i := range accounts {
		items = append(items, NewAccountResponse(&accounts[i]))
	}
	return items
}

type AccountListResponse struct {
	Accounts []AccountResponse `json:"accounts"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	Limit    int               `json:"limit"`
}

// CreateAccountRequest opens an account. UserID, AccountNumber and Balance
// are honoured for admins only.
type CreateAccountRequest struct {
	UserID        uint               `json:"user_id"`
	AccountNumber string             `json:"account_number" binding:"omitempty,numeric,len=10"`
	Type          models.AccountType `json:"type" binding:"omitempty,oneof=checking savings investment"`
	Balance       decimal.Decimal    `json:"balance" binding:"nonnegative,money"`
}

type UpdateAccountRequest struct {
	AccountNumber *string             `json:"account_number"`
	UserID        *uint               `json:"user_id"`
	Type          *models.AccountType `json:"type" binding:"omitempty,oneof=checking savings investment"`
	IsActive      *bool               `json:"is_active"`
}
