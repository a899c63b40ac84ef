package repositories

import (
	"time"

	"bank-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// TransactionFilter defines criteria for filtering transactions
type TransactionFilter struct {
	AccountID *uint
	Type      *models.TransactionType
	Status    *models.TransactionStatus
	StartTime *time.Time
	EndTime   *time.Time
	MinAmount *decimal.Decimal
	MaxAmount *decimal.Decimal
	Page
}

func (r *TransactionRepository) Create(tx *models.Transaction) error {
	return translate(r.db.Create(tx).Error)
}

func (r *TransactionRepository) Save(tx *models.Transaction) error {
	return r.db.Save(tx).Error
}

func (r *TransactionRepository) FindByID(id uint) (*models.Transaction, error) {
	var tx models.Transaction
	if err := r.db.First(&tx, id).Error; err != nil {
		return nil, translate(err)
	}
	return &tx, nil
}

// FindAll retrieves a paginated list of transactions with filtering, newest first.
func (r *TransactionRepository) FindAll(filter TransactionFilter) ([]models.Transaction, int64, error) {
	var transactions []models.Transaction
	var total int64

	query := r.db.Model(&models.Transaction{})

	if filter.AccountID != nil {
		query = query.Where("source_account_id = ? OR destination_account_id = ?", *filter.AccountID, *filter.AccountID)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.StartTime != nil {
		query = query.Where("created_at >= ?", *filter.StartTime)
	}
	if filter.EndTime != nil {
		query = query.Where("created_at <= ?", *filter.EndTime)
	}
	if filter.MinAmount != nil {
		query = query.Where("amount >= ?", *filter.MinAmount)
	}
	if filter.MaxAmount != nil {
		query = query.Where("amount <= ?", *filter.MaxAmount)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := filter.Page.apply(query.Order("created_at desc").Order("id desc")).Find(&transactions).Error; err != nil {
		return nil, 0, err
	}

	return transactions, total, nil
}

// FindByAccountID returns the transactions touching accountID, oldest first.
// A status of "" matches every status.
func (r *TransactionRepository) FindByAccountID(accountID uint, status models.TransactionStatus, start, end *time.Time) ([]models.Transaction, error) {
	var transactions []models.Transaction

	query := r.db.Where("(source_account_id = ? OR destination_account_id = ?)", accountID, accountID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if start != nil {
		query = query.Where("created_at >= ?", *start)
	}
	if end != nil {
		query = query.Where("created_at <= ?", *end)
	}

	if err := query.Order("created_at asc").Order("id asc").Find(&transactions).Error; err != nil {
		return nil, err
	}
	return transactions, nil
}

// TransitionStatus moves a transaction from one status to another.
// It reports false when the transaction was not in the from status.
func (r *TransactionRepository) TransitionStatus(id uint, from, to models.TransactionStatus, reason string) (bool, error) {
	updates := map[string]interface{}{"status": to}
	if reason != "" {
		updates["failure_reason"] = reason
	}

	result := r.db.Model(&models.Transaction{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// FindStalePending returns pending transactions created before cutoff.
func (r *TransactionRepository) FindStalePending(cutoff time.Time, limit int) ([]models.Transaction, error) {
	var transactions []models.Transaction
	err := r.db.
		Where("status = ? AND created_at < ?", models.TransactionStatusPending, cutoff).
		Order("created_at asc").
		Limit(limit).
		Find(&transactions).Error
	return transactions, err
}
