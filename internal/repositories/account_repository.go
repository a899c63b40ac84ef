package repositories

import (
	"bank-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// AccountFilter narrows FindAll. Nil fields are ignored.
type AccountFilter struct {
	UserID   *uint
	Type     *models.AccountType
	IsActive *bool
	Page
}

func (r *AccountRepository) FindAll(filter AccountFilter) ([]models.Account, int64, error) {
	var accounts []models.Account
	var total int64

	query := r.db.Model(&models.Account{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := filter.Page.apply(query.Order("id asc")).Find(&accounts).Error; err != nil {
		return nil, 0, err
	}
	return accounts, total, nil
}

func (r *AccountRepository) FindByID(id uint) (*models.Account, error) {
	var account models.Account
	if err := r.db.First(&account, id).Error; err != nil {
		return nil, translate(err)
	}
	return &account, nil
}

func (r *AccountRepository) FindByAccountNumber(number string) (*models.Account, error) {
	var account models.Account
	if err := r.db.Where("account_number = ?", number).First(&account).Error; err != nil {
		return nil, translate(err)
	}
	return &account, nil
}

func (r *AccountRepository) FindByUserID(userID uint) ([]models.Account, error) {
	var accounts []models.Account
	if err := r.db.Where("user_id = ?", userID).Order("id asc").Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *AccountRepository) ExistsByAccountNumber(number string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Account{}).Where("account_number = ?", number).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *AccountRepository) CountByUserID(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Account{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *AccountRepository) Create(account *models.Account) error {
	return translate(r.db.Create(account).Error)
}

// UpdateWithVersion applies updates only if the stored version still matches.
func (r *AccountRepository) UpdateWithVersion(account *models.Account, updates map[string]interface{}) error {
	current := account.Version
	updates["version"] = current + 1

	result := r.db.Model(account).Where("version = ?", current).Updates(updates)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrVersionConflict
	}
	return nil
}

func (r *AccountRepository) Delete(id uint) error {
	result := r.db.Delete(&models.Account{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AdjustBalance adds delta to the stored balance in a single statement.
// A debit only applies while the balance covers it, so the balance never
// goes negative even under concurrent updates.
func (r *AccountRepository) AdjustBalance(id uint, delta decimal.Decimal) (*models.Account, error) {
	query := r.db.Model(&models.Account{}).Where("id = ?", id)
	if delta.IsNegative() {
		query = query.Where("balance >= ?", delta.Neg())
	}

	result := query.Updates(map[string]interface{}{
		"balance": gorm.Expr("balance + ?", delta),
		"version": gorm.Expr("version + 1"),
	})
	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		if _, err := r.FindByID(id); err != nil {
			return nil, err
		}
		return nil, ErrInsufficientFunds
	}

	return r.FindByID(id)
}
