package report

import (
	"time"

	"bank-backend/internal/api/v1/transaction"
	"bank-backend/internal/models"
	"bank-backend/internal/services"

	"github.com/shopspring/decimal"
)

type ReceiptResponse struct {
	Reference   string                          `json:"reference"`
	Receipt     string                          `json:"receipt"`
	Transaction transaction.TransactionResponse `json:"transaction"`
}

// PeriodResponse echoes the requested window. Missing bounds stay null.
type PeriodResponse struct {
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
}

type BalanceResponse struct {
	AccountID        uint            `json:"account_id"`
	Balance          decimal.Decimal `json:"balance"`
	FormattedBalance string          `json:"formatted_balance"`
	Period           PeriodResponse  `json:"period"`
}

type SummaryLineResponse struct {
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

func newSummaryLine(l services.SummaryLine) SummaryLineResponse {
	return SummaryLineResponse{Count: l.Count, Total: l.Total}
}

type SummaryResponse struct {
	AccountID         uint                `json:"account_id"`
	AccountNumber     string              `json:"account_number"`
	AccountType       models.AccountType  `json:"account_type"`
	StartDate         time.Time           `json:"start_date"`
	EndDate           time.Time           `json:"end_date"`
	TotalTransactions int                 `json:"total_transactions"`
	Deposits          SummaryLineResponse `json:"deposits"`
	Withdrawals       SummaryLineResponse `json:"withdrawals"`
	TransfersIn       SummaryLineResponse `json:"transfers_in"`
	TransfersOut      SummaryLineResponse `json:"transfers_out"`
	Balance           decimal.Decimal     `json:"balance"`
	FormattedBalance  string              `json:"formatted_balance"`
}

func NewSummaryResponse(s *services.TransactionSummary) SummaryResponse {
	return SummaryResponse{
		AccountID:         s.AccountID,
		AccountNumber:     s.AccountNumber,
		AccountType:       s.AccountType,
		StartDate:         s.Period.StartDate,
		EndDate:           s.Period.EndDate,
		TotalTransactions: s.TotalTransactions,
		Deposits:          newSummaryLine(s.Deposits),
		Withdrawals:       newSummaryLine(s.Withdrawals),
		TransfersIn:       newSummaryLine(s.TransfersIn),
		TransfersOut:      newSummaryLine(s.TransfersOut),
		Balance:           s.Balance,
		FormattedBalance:  services.FormatCurrency(s.Balance),
	}
}
