package service

import (
	"context"
	"time"

	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
	"go-pos-ws/internal/session"

	"github.com/shopspring/decimal"
)

type DashboardService interface {
	GetStats(ctx context.Context, sess session.Context) (*DashboardStats, error)
	GetDailySales(ctx context.Context, sess session.Context, days int) ([]repository.DailySales, error)
	GetTopProducts(ctx context.Context, sess session.Context, limit int) ([]ProductView, error)
}

// DashboardStats mixes today's sales with the inventory picture. Inventory
// is left out for callers who only see their own sales.
type DashboardStats struct {
	Today     repository.SalesSummary    `json:"today"`
	Inventory *repository.InventoryStats `json:"inventory,omitempty"`
	OwnSales  bool                       `json:"own_sales_only"`
}

type dashboardService struct {
	txRepo      repository.TransactionRepository
	productRepo repository.ProductRepository
	lowStock    decimal.Decimal
	now         func() time.Time
}

func NewDashboardService(txRepo repository.TransactionRepository, productRepo repository.ProductRepository, lowStock int64) DashboardService {
	return &dashboardService{
		txRepo:      txRepo,
		productRepo: productRepo,
		lowStock:    decimal.NewFromInt(lowStock),
		now:         time.Now,
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func (s *dashboardService) GetStats(ctx context.Context, sess session.Context) (*DashboardStats, error) {
	if err := sess.Validate(); err != nil {
		return nil, err
	}
	now := s.now()
	q := repository.TransactionQuery{From: startOfDay(now), To: now}
	ownOnly(sess, &q)

	summary, err := s.txRepo.GetSalesSummary(ctx, sess.ShopID, q)
	if err != nil {
		return nil, err
	}
	stats := &DashboardStats{Today: *summary, OwnSales: q.CashierID != nil}
	if sess.Can(model.PermProductView) && !stats.OwnSales {
		inv, err := s.txRepo.GetInventoryStats(ctx, sess.ShopID, s.lowStock)
		if err != nil {
			return nil, err
		}
		stats.Inventory = inv
	}
	return stats, nil
}

func (s *dashboardService) GetDailySales(ctx context.Context, sess session.Context, days int) ([]repository.DailySales, error) {
	if err := sess.Validate(); err != nil {
		return nil, err
	}
	if days <= 0 || days > 366 {
		days = 7
	}
	now := s.now()
	q := repository.TransactionQuery{From: startOfDay(now).AddDate(0, 0, -(days - 1)), To: now}
	ownOnly(sess, &q)
	return s.txRepo.GetDailySales(ctx, sess.ShopID, q)
}

func (s *dashboardService) GetTopProducts(ctx context.Context, sess session.Context, limit int) ([]ProductView, error) {
	if err := sess.Validate(); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 50 {
		limit = 5
	}
	products, err := s.productRepo.TopSelling(ctx, sess.ShopID, limit)
	if err != nil {
		return nil, err
	}
	views := make([]ProductView, len(products))
	for i, p := range products {
		views[i] = toView(p)
	}
	return views, nil
}
