package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bank-backend/internal/database"
	"bank-backend/internal/models"
	"bank-backend/internal/repositories"
	"bank-backend/internal/utils"

	"github.com/shopspring/decimal"
)

// CalculateAccountBalance returns the stored balance when no window is given.
// With a window it replays completed transactions inside it starting from
// zero, which is the net effect of the window rather than a historical balance.
func CalculateAccountBalance(ctx context.Context, accountID uint, start, end *time.Time) (decimal.Decimal, error) {
	account, err := GetAccountByID(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	if start == nil && end == nil {
		return account.Balance, nil
	}
	if start != nil && end != nil && start.After(*end) {
		return decimal.Zero, ErrInvalidDateRange
	}

	transactions, err := completedTransactions(ctx, accountID, start, end)
	if err != nil {
		return decimal.Zero, err
	}
	return replayBalance(accountID, transactions), nil
}

func completedTransactions(ctx context.Context, accountID uint, start, end *time.Time) ([]models.Transaction, error) {
	transactions, err := repositories.NewTransactionRepository(database.DB.WithContext(ctx)).
		FindByAccountID(accountID, models.TransactionStatusCompleted, start, end)
	if err != nil {
		return nil, utils.NewInternalError("failed to load transactions", err)
	}
	return transactions, nil
}

func replayBalance(accountID uint, transactions []models.Transaction) decimal.Decimal {
	balance := decimal.Zero
	for _, t := range transactions {
		if t.DestinationAccountID != nil && *t.DestinationAccountID == accountID {
			balance = balance.Add(t.Amount)
		}
		if t.SourceAccountID != nil && *t.SourceAccountID == accountID {
			balance = balance.Sub(t.Amount)
		}
	}
	return balance
}

type SummaryLine struct {
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

func (l *SummaryLine) add(amount decimal.Decimal) {
	l.Count++
	l.Total = l.Total.Add(amount)
}

type SummaryPeriod struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// TransactionSummary aggregates completed transactions of one account.
type TransactionSummary struct {
	AccountID         uint               `json:"account_id"`
	AccountNumber     string             `json:"account_number"`
	AccountType       models.AccountType `json:"account_type"`
	Period            SummaryPeriod      `json:"period"`
	TotalTransactions int                `json:"total_transactions"`
	Deposits          SummaryLine        `json:"deposits"`
	Withdrawals       SummaryLine        `json:"withdrawals"`
	TransfersIn       SummaryLine        `json:"transfers_in"`
	TransfersOut      SummaryLine        `json:"transfers_out"`
	Balance           decimal.Decimal    `json:"balance"`
}

func GetTransactionSummary(ctx context.Context, accountID uint, start, end *time.Time) (*TransactionSummary, error) {
	account, err := GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if start != nil && end != nil && start.After(*end) {
		return nil, ErrInvalidDateRange
	}

	transactions, err := completedTransactions(ctx, accountID, start, end)
	if err != nil {
		return nil, err
	}

	summary := &TransactionSummary{
		AccountID:         account.ID,
		AccountNumber:     account.AccountNumber,
		AccountType:       account.Type,
		Period:            SummaryPeriod{StartDate: account.CreatedAt, EndDate: time.Now()},
		TotalTransactions: len(transactions),
	}
	if start != nil {
		summary.Period.StartDate = *start
	}
	if end != nil {
		summary.Period.EndDate = *end
	}

	for _, t := range transactions {
		switch t.Type {
		case models.TransactionTypeDeposit:
			summary.Deposits.add(t.Amount)
		case models.TransactionTypeWithdrawal:
			summary.Withdrawals.add(t.Amount)
		case models.TransactionTypeTransfer:
			if t.SourceAccountID != nil && *t.SourceAccountID == accountID {
				summary.TransfersOut.add(t.Amount)
			}
			if t.DestinationAccountID != nil && *t.DestinationAccountID == accountID {
				summary.TransfersIn.add(t.Amount)
			}
		}
	}

	if start == nil && end == nil {
		summary.Balance = account.Balance
	} else {
		summary.Balance = replayBalance(accountID, transactions)
	}
	return summary, nil
}

// ReceiptReference is derived from the transaction so receipts are reproducible.
func ReceiptReference(t *models.Transaction) string {
	return fmt.Sprintf("REF-%d-%06d", t.CreatedAt.UnixMilli(), t.ID)
}

// FormatCurrency renders amount as "<code> 1,234.56".
func FormatCurrency(amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}

	fixed := amount.StringFixed(2)
	intPart, frac := fixed[:len(fixed)-3], fixed[len(fixed)-2:]

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return fmt.Sprintf("%s %s%s.%s", current.currencyCode, sign, b.String(), frac)
}

const receiptRule = "================================================="

func transactionTypeText(t models.TransactionType) string {
	switch t {
	case models.TransactionTypeDeposit:
		return "Deposit"
	case models.TransactionTypeWithdrawal:
		return "Withdrawal"
	case models.TransactionTypeTransfer:
		return "Transfer"
	}
	return string(t)
}

func transactionStatusText(s models.TransactionStatus) string {
	switch s {
	case models.TransactionStatusPending:
		return "Pending"
	case models.TransactionStatusCompleted:
		return "Completed"
	case models.TransactionStatusFailed:
		return "Failed"
	case models.TransactionStatusCancelled:
		return "Cancelled"
	}
	return string(s)
}

type receiptLine struct {
	label string
	value string
}

func receiptLines(t *models.Transaction) []receiptLine {
	lines := []receiptLine{
		{"Reference", ReceiptReference(t)},
		{"Date/Time", t.CreatedAt.UTC().Format("2006-01-02 15:04:05 MST")},
		{"Type", transactionTypeText(t.Type)},
		{"Amount", FormatCurrency(t.Amount)},
		{"Status", transactionStatusText(t.Status)},
	}
	if t.SourceAccountID != nil {
		lines = append(lines, receiptLine{"Source Account", fmt.Sprint(*t.SourceAccountID)})
	}
	if t.DestinationAccountID != nil {
		lines = append(lines, receiptLine{"Destination Account", fmt.Sprint(*t.DestinationAccountID)})
	}
	if t.Description != "" {
		lines = append(lines, receiptLine{"Description", t.Description})
	}
	return lines
}

// GenerateTransactionReceipt formats a plain text receipt. It performs no I/O.
func GenerateTransactionReceipt(t *models.Transaction) string {
	var b strings.Builder
	b.WriteString(receiptRule + "\n")
	b.WriteString("               TRANSACTION RECEIPT\n")
	b.WriteString(receiptRule + "\n")
	for _, l := range receiptLines(t) {
		fmt.Fprintf(&b, "%s: %s\n", l.label, l.value)
	}
	b.WriteString(receiptRule + "\n")
	return b.String()
}
