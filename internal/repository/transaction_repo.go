package repository

import (
	"context"
	"time"

	"go-pos-ws/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionQuery selects sales of one shop. CashierID limits the result
// to one cashier's sales.
type TransactionQuery struct {
	From      time.Time
	To        time.Time
	CashierID *uuid.UUID
	Method    string
	Limit     int
}

type TransactionRepository interface {
	FindByID(ctx context.Context, shopID, id uuid.UUID) (*model.Transaction, error)
	FindByTransactionID(ctx context.Context, shopID uuid.UUID, transactionID string) (*model.Transaction, error)
	FindByShopAndRange(ctx context.Context, shopID uuid.UUID, q TransactionQuery) ([]model.Transaction, error)
	GetSalesSummary(ctx context.Context, shopID uuid.UUID, q TransactionQuery) (*SalesSummary, error)
	GetDailySales(ctx context.Context, shopID uuid.UUID, q TransactionQuery) ([]DailySales, error)
	GetInventoryStats(ctx context.Context, shopID uuid.UUID, lowStock decimal.Decimal) (*InventoryStats, error)
}

// DailySales is one bar of the sales chart.
type DailySales struct {
	Date  string          `json:"date"`
	Count int64           `json:"count"`
	Total decimal.Decimal `json:"total"`
	Cash  decimal.Decimal `json:"cash"`
	Card  decimal.Decimal `json:"card"`
	UPI   decimal.Decimal `json:"upi"`
}

type SalesSummary struct {
	Count   int64           `json:"count"`
	Total   decimal.Decimal `json:"total"`
	Average decimal.Decimal `json:"average"`
}

type InventoryStats struct {
	TotalProducts  int64           `json:"total_products"`
	LowStockCount  int64           `json:"low_stock_count"`
	OutOfStock     int64           `json:"out_of_stock_count"`
	TotalValuation decimal.Decimal `json:"total_valuation"`
}

type transactionRepo struct {
	db *gorm.DB
}

func NewTransactionRepo(db *gorm.DB) TransactionRepository {
	return &transactionRepo{db}
}

func (r *transactionRepo) scoped(ctx context.Context, shopID uuid.UUID, q TransactionQuery) *gorm.DB {
	tx := r.db.WithContext(ctx).Model(&model.Transaction{}).Where("shop_id = ?", shopID)
	if !q.From.IsZero() {
		tx = tx.Where("created_at >= ?", q.From)
	}
	if !q.To.IsZero() {
		tx = tx.Where("created_at <= ?", q.To)
	}
	if q.CashierID != nil {
		tx = tx.Where("cashier_id = ?", *q.CashierID)
	}
	if q.Method != "" {
		tx = tx.Where("payment_method = ?", q.Method)
	}
	return tx
}

func (r *transactionRepo) FindByID(ctx context.Context, shopID, id uuid.UUID) (*model.Transaction, error) {
	var transaction model.Transaction
	err := r.db.WithContext(ctx).First(&transaction, "id = ? AND shop_id = ?", id, shopID).Error
	if err != nil {
		return nil, translate(err)
	}
	return &transaction, nil
}

func (r *transactionRepo) FindByTransactionID(ctx context.Context, shopID uuid.UUID, transactionID string) (*model.Transaction, error) {
	var transaction model.Transaction
	err := r.db.WithContext(ctx).First(&transaction, "transaction_id = ? AND shop_id = ?", transactionID, shopID).Error
	if err != nil {
		return nil, translate(err)
	}
	return &transaction, nil
}

func (r *transactionRepo) FindByShopAndRange(ctx context.Context, shopID uuid.UUID, q TransactionQuery) ([]model.Transaction, error) {
	var transactions []model.Transaction
	tx := r.scoped(ctx, shopID, q).Order("created_at DESC")
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	err := tx.Find(&transactions).Error
	return transactions, err
}

func (r *transactionRepo) GetSalesSummary(ctx context.Context, shopID uuid.UUID, q TransactionQuery) (*SalesSummary, error) {
	var row struct {
		Count int64
		Total decimal.Decimal
	}
	err := r.scoped(ctx, shopID, q).
		Select("COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total").
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	summary := &SalesSummary{Count: row.Count, Total: row.Total, Average: decimal.Zero}
	if row.Count > 0 {
		summary.Average = row.Total.DivRound(decimal.NewFromInt(row.Count), 2)
	}
	return summary, nil
}

func (r *transactionRepo) GetDailySales(ctx context.Context, shopID uuid.UUID, q TransactionQuery) ([]DailySales, error) {
	rows, err := r.scoped(ctx, shopID, q).
		Select(`
			TO_CHAR(DATE(created_at), 'YYYY-MM-DD') AS date,
			COUNT(*) AS count,
			COALESCE(SUM(amount), 0) AS total,
			COALESCE(SUM(CASE WHEN payment_method = 'cash' THEN amount ELSE 0 END), 0) AS cash,
			COALESCE(SUM(CASE WHEN payment_method = 'card' THEN amount ELSE 0 END), 0) AS card,
			COALESCE(SUM(CASE WHEN payment_method = 'upi' THEN amount ELSE 0 END), 0) AS upi
		`).
		Group("DATE(created_at)").
		Order("date ASC").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []DailySales
	for rows.Next() {
		var d DailySales
		if err := rows.Scan(&d.Date, &d.Count, &d.Total, &d.Cash, &d.Card, &d.UPI); err != nil {
			return nil, err
		}
		results = append(results, d)
	}
	return results, rows.Err()
}

func (r *transactionRepo) GetInventoryStats(ctx context.Context, shopID uuid.UUID, lowStock decimal.Decimal) (*InventoryStats, error) {
	var stats InventoryStats
	products := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&model.Product{}).Where("shop_id = ?", shopID)
	}

	if err := products().Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}
	if err := products().Where("stock > 0 AND stock <= ?", lowStock).Count(&stats.LowStockCount).Error; err != nil {
		return nil, err
	}
	if err := products().Where("stock <= 0").Count(&stats.OutOfStock).Error; err != nil {
		return nil, err
	}
	if err := products().Select("COALESCE(SUM(stock * price), 0)").Scan(&stats.TotalValuation).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}
