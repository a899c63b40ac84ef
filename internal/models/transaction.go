package models

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "deposit"
	TransactionTypeWithdrawal TransactionType = "withdrawal"
	TransactionTypeTransfer   TransactionType = "transfer"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
	TransactionStatusCancelled TransactionStatus = "cancelled"
)

// Terminal reports whether no further transition is allowed from s.
func (s TransactionStatus) Terminal() bool {
	return s == TransactionStatusCompleted || s == TransactionStatusFailed || s == TransactionStatusCancelled
}

const MaxDescriptionLength = 200

var (
	ErrInvalidTransactionType = errors.New("transaction type must be deposit, withdrawal or transfer")
	ErrNonPositiveAmount      = errors.New("transaction amount must be greater than zero")
	ErrDescriptionTooLong     = fmt.Errorf("description cannot exceed %d characters", MaxDescriptionLength)
	ErrDepositAccounts        = errors.New("deposit requires a destination account and no source account")
	ErrWithdrawalAccounts     = errors.New("withdrawal requires a source account and no destination account")
	ErrTransferAccounts       = errors.New("transfer requires distinct source and destination accounts")
)

type Transaction struct {
	ID                   uint              `gorm:"primarykey"`
	CreatedAt            time.Time         `gorm:"precision:3"`
	UpdatedAt            time.Time         `gorm:"precision:3"`
	Type                 TransactionType   `gorm:"type:varchar(20);not null"`
	Amount               decimal.Decimal   `gorm:"type:decimal(20,2);not null"`
	SourceAccountID      *uint             `gorm:"index"`
	DestinationAccountID *uint             `gorm:"index"`
	Description          string            `gorm:"size:200"`
	Status               TransactionStatus `gorm:"type:varchar(20);index;not null;default:'pending'"`
	FailureReason        string            `gorm:"type:text"`
	Metadata             datatypes.JSON
	Hash                 string `gorm:"type:varchar(64);default:''"` // HMAC SHA256
}

// Validate checks the amount, description and account shape of the transaction.
func (t *Transaction) Validate() error {
	if !t.Amount.IsPositive() {
		return ErrNonPositiveAmount
	}
	if len([]rune(t.Description)) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}

	switch t.Type {
	case TransactionTypeDeposit:
		if t.DestinationAccountID == nil || t.SourceAccountID != nil {
			return ErrDepositAccounts
		}
	case TransactionTypeWithdrawal:
		if t.SourceAccountID == nil || t.DestinationAccountID != nil {
			return ErrWithdrawalAccounts
		}
	case TransactionTypeTransfer:
		if t.SourceAccountID == nil || t.DestinationAccountID == nil || *t.SourceAccountID == *t.DestinationAccountID {
			return ErrTransferAccounts
		}
	default:
		return ErrInvalidTransactionType
	}
	return nil
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	return t.Validate()
}

// Involves reports whether accountID is the source or destination of the transaction.
func (t *Transaction) Involves(accountID uint) bool {
	return (t.SourceAccountID != nil && *t.SourceAccountID == accountID) ||
		(t.DestinationAccountID != nil && *t.DestinationAccountID == accountID)
}

// GenerateHash generates a tamper-proof hash over the immutable fields of the transaction.
func (t *Transaction) GenerateHash(secret string) string {
	data := fmt.Sprintf("%s|%s|%d|%d|%s|%d",
		t.Type, t.Amount.StringFixed(2), derefID(t.SourceAccountID), derefID(t.DestinationAccountID),
		t.Description, t.CreatedAt.UnixMilli())

	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}

func derefID(id *uint) uint {
	if id == nil {
		return 0
	}
	return *id
}
