package repository

import (
	"context"

	"go-pos-ws/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SalesStore is the storage side of a checkout: record the sale, then move
// stock and sales counters for each line.
type SalesStore interface {
	InsertTransaction(ctx context.Context, tx *model.Transaction) error
	// DecrementStock lowers stock by amount only when at least amount is on hand,
	// and returns the stock left.
	DecrementStock(ctx context.Context, shopID, productID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error)
	IncrementSales(ctx context.Context, shopID, productID uuid.UUID, amount decimal.Decimal) error
	// RunInTx runs fn against a store bound to one database transaction.
	// fn returning an error rolls everything back.
	RunInTx(ctx context.Context, fn func(SalesStore) error) error
}

type salesStore struct {
	db *gorm.DB
}

func NewSalesStore(db *gorm.DB) SalesStore {
	return &salesStore{db}
}

func (s *salesStore) InsertTransaction(ctx context.Context, tx *model.Transaction) error {
	return s.db.WithContext(ctx).Create(tx).Error
}

func (s *salesStore) DecrementStock(ctx context.Context, shopID, productID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error) {
	var product model.Product
	res := s.db.WithContext(ctx).Model(&product).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "stock"}}}).
		Where("id = ? AND shop_id = ? AND stock >= ?", productID, shopID, amount).
		Update("stock", gorm.Expr("stock - ?", amount))
	if res.Error != nil {
		return decimal.Zero, res.Error
	}
	if res.RowsAffected == 0 {
		return decimal.Zero, ErrStockConflict
	}
	return product.Stock, nil
}

func (s *salesStore) IncrementSales(ctx context.Context, shopID, productID uuid.UUID, amount decimal.Decimal) error {
	res := s.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ? AND shop_id = ?", productID, shopID).
		Update("sales_count", gorm.Expr("sales_count + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *salesStore) RunInTx(ctx context.Context, fn func(SalesStore) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&salesStore{tx})
	})
}
