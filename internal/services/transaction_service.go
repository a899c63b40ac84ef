package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"time"

	"bank-backend/internal/database"
	"bank-backend/internal/metrics"
	"bank-backend/internal/models"
	"bank-backend/internal/repositories"
	"bank-backend/internal/utils"
	"bank-backend/pkg/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var errNotPending = errors.New("transaction is no longer pending")

// Deposit credits destinationID with amount.
func Deposit(ctx context.Context, destinationID uint, amount decimal.Decimal, description string) (*models.Transaction, error) {
	if err := validateMovement(amount, description); err != nil {
		return nil, err
	}

	accounts := repositories.NewAccountRepository(database.DB.WithContext(ctx))
	if _, err := activeAccount(accounts, destinationID); err != nil {
		return nil, err
	}

	return createAndSettle(ctx, &models.Transaction{
		Type:                 models.TransactionTypeDeposit,
		Amount:               amount,
		DestinationAccountID: &destinationID,
		Description:          defaultDescription(description, "Deposit"),
	})
}

// Withdraw debits sourceID by amount. Insufficient funds is reported before
// any transaction record is created.
func Withdraw(ctx context.Context, sourceID uint, amount decimal.Decimal, description string) (*models.Transaction, error) {
	if err := validateMovement(amount, description); err != nil {
		return nil, err
	}

	accounts := repositories.NewAccountRepository(database.DB.WithContext(ctx))
	source, err := activeAccount(accounts, sourceID)
	if err != nil {
		return nil, err
	}
	if source.Balance.LessThan(amount) {
		return nil, ErrInsufficientFunds
	}

	return createAndSettle(ctx, &models.Transaction{
		Type:            models.TransactionTypeWithdrawal,
		Amount:          amount,
		SourceAccountID: &sourceID,
		Description:     defaultDescription(description, "Withdrawal"),
	})
}

// Transfer moves amount from sourceID to destinationID. Both balance changes
// are applied in one database transaction, debit first.
func Transfer(ctx context.Context, sourceID, destinationID uint, amount decimal.Decimal, description string) (*models.Transaction, error) {
	if err := validateMovement(amount, description); err != nil {
		return nil, err
	}
	if sourceID == destinationID {
		return nil, ErrSameAccountTransfer
	}

	accounts := repositories.NewAccountRepository(database.DB.WithContext(ctx))
	source, err := activeAccount(accounts, sourceID)
	if err != nil {
		return nil, err
	}
	if _, err := activeAccount(accounts, destinationID); err != nil {
		return nil, err
	}
	if source.Balance.LessThan(amount) {
		return nil, ErrInsufficientFunds
	}

	return createAndSettle(ctx, &models.Transaction{
		Type:                 models.TransactionTypeTransfer,
		Amount:               amount,
		SourceAccountID:      &sourceID,
		DestinationAccountID: &destinationID,
		Description:          defaultDescription(description, "Transfer"),
	})
}

func validateMovement(amount decimal.Decimal, description string) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !utils.HasMoneyScale(amount) {
		return ErrAmountPrecision
	}
	if len([]rune(description)) > models.MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	return nil
}

func defaultDescription(description, fallback string) string {
	if description == "" {
		return fallback
	}
	return description
}

func activeAccount(accounts *repositories.AccountRepository, id uint) (*models.Account, error) {
	account, err := findAccount(accounts, id)
	if err != nil {
		return nil, err
	}
	if !account.IsActive {
		return nil, ErrAccountInactive
	}
	return account, nil
}

// createAndSettle persists record as pending, then either settles it in
// place or hands it to the settlement queue.
func createAndSettle(ctx context.Context, record *models.Transaction) (*models.Transaction, error) {
	record.Status = models.TransactionStatusPending
	record.CreatedAt = time.Now()
	record.Metadata = metadataJSON(ctx)
	record.Hash = record.GenerateHash(current.hashSecret)

	if err := repositories.NewTransactionRepository(database.DB.WithContext(ctx)).Create(record); err != nil {
		return nil, utils.NewInternalError("failed to create transaction", err)
	}

	if QueuedSettlement() {
		if err := EnqueueSettlement(ctx, record.ID); err != nil {
			// left pending; the sweeper enqueues it again
			logger.Log.Warn("Failed to enqueue settlement",
				zap.Uint("transaction_id", record.ID), zap.Error(err))
		}
		return record, nil
	}

	settled, err := SettleTransaction(ctx, record.ID)
	if errors.Is(err, errNotPending) {
		return settled, nil
	}
	return settled, err
}

// SettleTransaction applies the balance effect of a pending transaction and
// moves it to completed. On failure every balance change is rolled back, the
// record is marked failed and an internal error is returned.
func SettleTransaction(ctx context.Context, id uint) (*models.Transaction, error) {
	start := time.Now()
	var record *models.Transaction

	err := database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		transactions := repositories.NewTransactionRepository(tx)

		var err error
		record, err = transactions.FindByID(id)
		if err != nil {
			return err
		}

		claimed, err := transactions.TransitionStatus(id, models.TransactionStatusPending, models.TransactionStatusCompleted, "")
		if err != nil {
			return err
		}
		if !claimed {
			return errNotPending
		}

		if err := applyBalanceChanges(repositories.NewAccountRepository(tx), record); err != nil {
			return err
		}
		record.Status = models.TransactionStatusCompleted
		return nil
	})

	switch {
	case err == nil:
		metrics.RecordSettlement(string(record.Type), time.Since(start))
		metrics.RecordTransaction(string(record.Type), string(models.TransactionStatusCompleted))
		return GetTransactionByID(ctx, id)
	case errors.Is(err, errNotPending):
		latest, lookupErr := GetTransactionByID(ctx, id)
		if lookupErr != nil {
			return nil, lookupErr
		}
		return latest, errNotPending
	case errors.Is(err, repositories.ErrNotFound) && record == nil:
		return nil, ErrTransactionNotFound
	}

	return nil, failTransaction(ctx, id, record, err)
}

func applyBalanceChanges(accounts *repositories.AccountRepository, record *models.Transaction) error {
	if record.SourceAccountID != nil {
		if _, err := activeAccount(accounts, *record.SourceAccountID); err != nil {
			return fmt.Errorf("source account %d: %w", *record.SourceAccountID, err)
		}
		if _, err := accounts.AdjustBalance(*record.SourceAccountID, record.Amount.Neg()); err != nil {
			return fmt.Errorf("debit account %d: %w", *record.SourceAccountID, err)
		}
	}
	if record.DestinationAccountID != nil {
		if _, err := activeAccount(accounts, *record.DestinationAccountID); err != nil {
			return fmt.Errorf("destination account %d: %w", *record.DestinationAccountID, err)
		}
		if _, err := accounts.AdjustBalance(*record.DestinationAccountID, record.Amount); err != nil {
			return fmt.Errorf("credit account %d: %w", *record.DestinationAccountID, err)
		}
	}
	return nil
}

func failTransaction(ctx context.Context, id uint, record *models.Transaction, cause error) error {
	// the failure must be recorded even if the caller has gone away
	transactions := repositories.NewTransactionRepository(database.DB.WithContext(context.WithoutCancel(ctx)))
	if _, err := transactions.TransitionStatus(id, models.TransactionStatusPending, models.TransactionStatusFailed, cause.Error()); err != nil {
		logger.Log.Error("Failed to mark transaction as failed",
			zap.Uint("transaction_id", id), zap.Error(err))
	}

	txType := ""
	if record != nil {
		txType = string(record.Type)
	}
	metrics.RecordTransaction(txType, string(models.TransactionStatusFailed))
	logger.Log.Error("Transaction settlement failed",
		zap.Uint("transaction_id", id),
		zap.String("type", txType),
		zap.Error(cause))

	return utils.NewInternalError("transaction processing failed", cause)
}

// CancelTransaction moves a pending transaction to cancelled. No balance is
// touched because pending transactions have not been settled.
func CancelTransaction(ctx context.Context, id uint) (*models.Transaction, error) {
	transactions := repositories.NewTransactionRepository(database.DB.WithContext(ctx))

	cancelled, err := transactions.TransitionStatus(id, models.TransactionStatusPending, models.TransactionStatusCancelled, "")
	if err != nil {
		return nil, utils.NewInternalError("failed to cancel transaction", err)
	}
	if !cancelled {
		if _, err := GetTransactionByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrTransactionNotPending
	}

	record, err := GetTransactionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	metrics.RecordTransaction(string(record.Type), string(models.TransactionStatusCancelled))
	logger.Log.Info("Transaction cancelled", zap.Uint("transaction_id", id))
	return record, nil
}

func GetTransactionByID(ctx context.Context, id uint) (*models.Transaction, error) {
	record, err := repositories.NewTransactionRepository(database.DB.WithContext(ctx)).FindByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, utils.NewInternalError("failed to load transaction", err)
	}
	return record, nil
}

// FindTransactions retrieves a paginated list of transactions with filtering
func FindTransactions(ctx context.Context, filter repositories.TransactionFilter) ([]models.Transaction, int64, error) {
	transactions, total, err := repositories.NewTransactionRepository(database.DB.WithContext(ctx)).FindAll(filter)
	if err != nil {
		return nil, 0, utils.NewInternalError("failed to list transactions", err)
	}
	return transactions, total, nil
}

// GetAccountTransactions lists every transaction touching accountID, newest first.
func GetAccountTransactions(ctx context.Context, accountID uint) ([]models.Transaction, error) {
	if _, err := GetAccountByID(ctx, accountID); err != nil {
		return nil, err
	}
	transactions, _, err := FindTransactions(ctx, repositories.TransactionFilter{AccountID: &accountID})
	return transactions, err
}

// CanAccessTransaction allows admins and owners of either account involved.
func CanAccessTransaction(ctx context.Context, user *models.User, record *models.Transaction) (bool, error) {
	if user == nil {
		return false, nil
	}
	if user.IsAdmin() {
		return true, nil
	}

	accounts := repositories.NewAccountRepository(database.DB.WithContext(ctx))
	for _, id := range []*uint{record.SourceAccountID, record.DestinationAccountID} {
		if id == nil {
			continue
		}
		account, err := accounts.FindByID(*id)
		if errors.Is(err, repositories.ErrNotFound) {
			continue
		}
		if err != nil {
			return false, utils.NewInternalError("failed to load account", err)
		}
		if account.UserID == user.ID {
			return true, nil
		}
	}
	return false, nil
}

// VerifyTransactionHash reports whether the stored hash still matches the record.
func VerifyTransactionHash(record *models.Transaction) bool {
	return record.Hash == record.GenerateHash(current.hashSecret)
}

// GenerateTransactionCSV generates a CSV file content for transactions
func GenerateTransactionCSV(transactions []models.Transaction) ([]byte, error) {
	b := &bytes.Buffer{}
	w := csv.NewWriter(b)

	header := []string{
		"ID", "Time", "Type", "Amount", "Source Account", "Destination Account",
		"Description", "Status", "Hash",
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, t := range transactions {
		record := []string{
			strconv.FormatUint(uint64(t.ID), 10),
			t.CreatedAt.Format(time.RFC3339Nano),
			string(t.Type),
			t.Amount.StringFixed(2),
			optionalID(t.SourceAccountID),
			optionalID(t.DestinationAccountID),
			t.Description,
			string(t.Status),
			t.Hash,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

func optionalID(id *uint) string {
	if id == nil {
		return ""
	}
	return strconv.FormatUint(uint64(*id), 10)
}
