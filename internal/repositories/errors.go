package repositories

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicate         = errors.New("record already exists")
	ErrVersionConflict   = errors.New("record was modified concurrently")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// translate maps gorm errors onto the repository sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}

// Page holds 1-based pagination parameters.
type Page struct {
	Page  int
	Limit int
}

func (p Page) apply(db *gorm.DB) *gorm.DB {
	if p.Limit <= 0 {
		return db
	}
	page := p.Page
	if page < 1 {
		page = 1
	}
	return db.Limit(p.Limit).Offset((page - 1) * p.Limit)
}
