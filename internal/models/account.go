package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type AccountType string

const (
	AccountTypeChecking   AccountType = "checking"
	AccountTypeSavings    AccountType = "savings"
	AccountTypeInvestment AccountType = "investment"
)

func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeChecking, AccountTypeSavings, AccountTypeInvestment:
		return true
	}
	return false
}

var (
	ErrInvalidAccountType = errors.New("account type must be checking, savings or investment")
	ErrNegativeBalance    = errors.New("account balance cannot be negative")
)

type Account struct {
	ID            uint            `gorm:"primarykey"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	AccountNumber string          `gorm:"size:20;uniqueIndex;not null"`
	Type          AccountType     `gorm:"type:varchar(20);not null;default:'checking'"`
	Balance       decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0"`
	UserID        uint            `gorm:"index;not null"`
	IsActive      bool            `gorm:"not null"`
	Version       int             `gorm:"default:1"`
}

// BeforeCreate rejects rows that break the account schema.
func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if !a.Type.Valid() {
		return ErrInvalidAccountType
	}
	if a.Balance.IsNegative() {
		return ErrNegativeBalance
	}
	if a.Version == 0 {
		a.Version = 1
	}
	return nil
}
