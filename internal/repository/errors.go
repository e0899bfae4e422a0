package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrStockConflict means the conditional decrement matched no row: the
	// product is gone or has less stock than the sale needs.
	ErrStockConflict = errors.New("stock changed, not enough left for this sale")
)

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
