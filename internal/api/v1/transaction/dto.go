package transaction

import (
	"time"

	"bank-backend/internal/models"

	"github.com/shopspring/decimal"
)

type TransactionResponse struct {
	ID                   uint                     `json:"id"`
	Type                 models.TransactionType   `json:"type"`
	Amount               decimal.Decimal          `json:"amount"`
	SourceAccountID      *uint                    `json:"source_account_id"`
	DestinationAccountID *uint                    `json:"destination_account_id"`
	Description          string                   `json:"description"`
	Status               models.TransactionStatus `json:"status"`
	FailureReason        string                   `json:"failure_reason,omitempty"`
	Hash                 string                   `json:"hash"`
	CreatedAt            time.Time                `json:"created_at"`
	UpdatedAt            time.Time                `json:"updated_at"`
}

func NewTransactionResponse(t *models.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:                   t.ID,
		Type:                 t.Type,
		Amount:               t.Amount,
		SourceAccountID:      t.SourceAccountID,
		DestinationAccountID: t.DestinationAccountID,
		Description:          t.Description,
		Status:               t.Status,
		FailureReason:        t.FailureReason,
		Hash:                 t.Hash,
		CreatedAt:            t.CreatedAt,
		UpdatedAt:            t.UpdatedAt,
	}
}

func newTransactionResponses(transactions []models.Transaction) []TransactionResponse {
	items := make([]TransactionResponse, 0, len(transactions))
	for i := range transactions {
		items = append(items, NewTransactionResponse(&transactions[i]))
	}
	return items
}

type TransactionListResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Total        int64                 `json:"total"`
	Page         int                   `json:"page"`
	Limit        int                   `json:"limit"`
}

type DepositRequest struct {
	DestinationAccountID uint            `json:"destination_account_id" binding:"required"`
	Amount               decimal.Decimal `json:"amount" binding:"positive,money"`
	Description          string          `json:"description" binding:"max=200"`
}

type WithdrawRequest struct {
	SourceAccountID uint            `json:"source_account_id" binding:"required"`
	Amount          decimal.Decimal `json:"amount" binding:"positive,money"`
	Description     string          `json:"description" binding:"max=200"`
}

type TransferRequest struct {
	SourceAccountID      uint            `json:"source_account_id" binding:"required"`
	DestinationAccountID uint            `json:"destination_account_id" binding:"required"`
	Amount               decimal.Decimal `json:"amount" binding:"positive,money"`
	Description          string          `json:"description" binding:"max=200"`
}
