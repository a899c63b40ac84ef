package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"bank-backend/internal/database"
	"bank-backend/internal/models"
	"bank-backend/internal/repositories"
	"bank-backend/internal/utils"
	"bank-backend/pkg/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	accountNumberDigits   = 10
	maxAccountNumberTries = 10
)

var accountNumberSpace = new(big.Int).Exp(big.NewInt(10), big.NewInt(accountNumberDigits), nil)

// CreateAccountInput describes a new account. Zero values take the defaults.
type CreateAccountInput struct {
	UserID        uint
	AccountNumber string
	Type          models.AccountType
	Balance       decimal.Decimal
}

// CreateAccount opens an account for an existing user.
func CreateAccount(ctx context.Context, in CreateAccountInput) (*models.Account, error) {
	db := database.DB.WithContext(ctx)
	accounts := repositories.NewAccountRepository(db)

	if in.Type == "" {
		in.Type = models.AccountTypeChecking
	}
	if !in.Type.Valid() {
		return nil, ErrInvalidAccountType
	}
	if in.Balance.IsNegative() {
		return nil, ErrNegativeBalance
	}
	if !utils.HasMoneyScale(in.Balance) {
		return nil, ErrBalancePrecision
	}

	if _, err := repositories.NewUserRepository(db).FindByID(in.UserID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, utils.NewInternalError("failed to load user", err)
	}

	number := in.AccountNumber
	if number == "" {
		generated, err := generateAccountNumber(accounts)
		if err != nil {
			return nil, err
		}
		number = generated
	} else if exists, err := accounts.ExistsByAccountNumber(number); err != nil {
		return nil, utils.NewInternalError("failed to check account number", err)
	} else if exists {
		return nil, ErrAccountNumberTaken
	}

	account := &models.Account{
		AccountNumber: number,
		Type:          in.Type,
		Balance:       in.Balance,
		UserID:        in.UserID,
		IsActive:      true,
		Version:       1,
	}
	if err := accounts.Create(account); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrAccountNumberTaken
		}
		return nil, utils.NewInternalError("failed to create account", err)
	}

	logger.Log.Info("Account created",
		zap.Uint("account_id", account.ID),
		zap.Uint("user_id", account.UserID),
		zap.String("type", string(account.Type)))
	return account, nil
}

// randomAccountNumber draws a zero-padded number of accountNumberDigits digits.
var randomAccountNumber = func() (string, error) {
	n, err := rand.Int(rand.Reader, accountNumberSpace)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", accountNumberDigits, n), nil
}

func generateAccountNumber(accounts *repositories.AccountRepository) (string, error) {
	for i := 0; i < maxAccountNumberTries; i++ {
		candidate, err := randomAccountNumber()
		if err != nil {
			return "", utils.NewInternalError("failed to generate account number", err)
		}

		exists, err := accounts.ExistsByAccountNumber(candidate)
		if err != nil {
			return "", utils.NewInternalError("failed to check account number", err)
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", utils.NewInternalError("failed to generate account number",
		fmt.Errorf("no unique account number after %d attempts", maxAccountNumberTries))
}

func FindAccounts(ctx context.Context, filter repositories.AccountFilter) ([]models.Account, int64, error) {
	accounts, total, err := repositories.NewAccountRepository(database.DB.WithContext(ctx)).FindAll(filter)
	if err != nil {
		return nil, 0, utils.NewInternalError("failed to list accounts", err)
	}
	return accounts, total, nil
}

func GetAccountByID(ctx context.Context, id uint) (*models.Account, error) {
	return findAccount(repositories.NewAccountRepository(database.DB.WithContext(ctx)), id)
}

func GetAccountByNumber(ctx context.Context, number string) (*models.Account, error) {
	account, err := repositories.NewAccountRepository(database.DB.WithContext(ctx)).FindByAccountNumber(number)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, utils.NewInternalError("failed to load account", err)
	}
	return account, nil
}

func GetUserAccounts(ctx context.Context, userID uint) ([]models.Account, error) {
	db := database.DB.WithContext(ctx)
	if _, err := repositories.NewUserRepository(db).FindByID(userID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, utils.NewInternalError("failed to load user", err)
	}

	accounts, err := repositories.NewAccountRepository(db).FindByUserID(userID)
	if err != nil {
		return nil, utils.NewInternalError("failed to list accounts", err)
	}
	return accounts, nil
}

func findAccount(accounts *repositories.AccountRepository, id uint) (*models.Account, error) {
	account, err := accounts.FindByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, utils.NewInternalError("failed to load account", err)
	}
	return account, nil
}

// UpdateAccountInput lists requested changes. AccountNumber and UserID are
// accepted only to be rejected.
type UpdateAccountInput struct {
	AccountNumber *string
	UserID        *uint
	Type          *models.AccountType
	IsActive      *bool
}

func UpdateAccount(ctx context.Context, id uint, in UpdateAccountInput) (*models.Account, error) {
	accounts := repositories.NewAccountRepository(database.DB.WithContext(ctx))

	account, err := findAccount(accounts, id)
	if err != nil {
		return nil, err
	}

	if (in.AccountNumber != nil && *in.AccountNumber != account.AccountNumber) ||
		(in.UserID != nil && *in.UserID != account.UserID) {
		return nil, ErrImmutableAccountField
	}

	updates := map[string]interface{}{}
	if in.Type != nil {
		if !in.Type.Valid() {
			return nil, ErrInvalidAccountType
		}
		updates["type"] = *in.Type
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}
	if len(updates) == 0 {
		return account, nil
	}

	if err := accounts.UpdateWithVersion(account, updates); err != nil {
		if errors.Is(err, repositories.ErrVersionConflict) {
			return nil, ErrOptimisticLock
		}
		return nil, utils.NewInternalError("failed to update account", err)
	}

	return findAccount(accounts, id)
}

func DeactivateAccount(ctx context.Context, id uint) (*models.Account, error) {
	accounts := repositories.NewAccountRepository(database.DB.WithContext(ctx))

	account, err := findAccount(accounts, id)
	if err != nil {
		return nil, err
	}
	if !account.IsActive {
		return nil, ErrAccountAlreadyClosed
	}

	if err := accounts.UpdateWithVersion(account, map[string]interface{}{"is_active": false}); err != nil {
		if errors.Is(err, repositories.ErrVersionConflict) {
			return nil, ErrOptimisticLock
		}
		return nil, utils.NewInternalError("failed to deactivate account", err)
	}

	logger.Log.Info("Account deactivated", zap.Uint("account_id", id))
	return findAccount(accounts, id)
}

// DeleteAccount removes an account whose balance is exactly zero.
func DeleteAccount(ctx context.Context, id uint) error {
	accounts := repositories.NewAccountRepository(database.DB.WithContext(ctx))

	account, err := findAccount(accounts, id)
	if err != nil {
		return err
	}
	if !account.Balance.IsZero() {
		return ErrAccountHasBalance
	}

	if err := accounts.Delete(id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrAccountNotFound
		}
		return utils.NewInternalError("failed to delete account", err)
	}

	logger.Log.Info("Account deleted", zap.Uint("account_id", id))
	return nil
}

// CheckAccountAccess allows admins and the account owner.
func CheckAccountAccess(ctx context.Context, user *models.User, accountID uint) (*models.Account, error) {
	account, err := GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !CanAccessAccount(user, account) {
		return nil, ErrAccountAccessDenied
	}
	return account, nil
}

func CanAccessAccount(user *models.User, account *models.Account) bool {
	return user != nil && (user.IsAdmin() || account.UserID == user.ID)
}
