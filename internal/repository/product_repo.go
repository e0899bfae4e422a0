package repository

import (
	"context"
	"errors"
	"strings"

	"go-pos-ws/internal/barcode"
	"go-pos-ws/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductFilter narrows a product listing. Zero values mean no filter.
type ProductFilter struct {
	Search   string
	Category string
	LowStock *decimal.Decimal
}

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	Update(ctx context.Context, product *model.Product) error
	FindByID(ctx context.Context, shopID, id uuid.UUID) (*model.Product, error)
	FindByShop(ctx context.Context, shopID uuid.UUID, f ProductFilter) ([]model.Product, error)
	FindBySKU(ctx context.Context, shopID uuid.UUID, sku string) (*model.Product, error)
	FindByCode(ctx context.Context, shopID uuid.UUID, code string) (*model.Product, error)
	TopSelling(ctx context.Context, shopID uuid.UUID, limit int) ([]model.Product, error)
	// Restock adds qty to the stock and returns the updated product.
	Restock(ctx context.Context, shopID, id uuid.UUID, qty decimal.Decimal, updatedBy string) (*model.Product, error)
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// Update saves the editable columns. Stock and sales are left alone.
func (r *productRepo) Update(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Model(product).
		Select("name", "category", "sku", "barcode", "price", "unit", "updated_by").
		Updates(product).Error
}

func (r *productRepo) FindByID(ctx context.Context, shopID, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).First(&product, "id = ? AND shop_id = ?", id, shopID).Error
	if err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

func (r *productRepo) FindByShop(ctx context.Context, shopID uuid.UUID, f ProductFilter) ([]model.Product, error) {
	q := r.db.WithContext(ctx).Where("shop_id = ?", shopID)
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(sku) LIKE ? OR barcode = ?", like, like, s)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.LowStock != nil {
		q = q.Where("stock <= ?", *f.LowStock)
	}
	var products []model.Product
	err := q.Order("name ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) FindBySKU(ctx context.Context, shopID uuid.UUID, sku string) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).First(&product, "shop_id = ? AND LOWER(sku) = LOWER(?)", shopID, sku).Error
	if err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

// FindByCode resolves a scanned code: explicit barcode, then SKU, then the
// code derived from the product id.
func (r *productRepo) FindByCode(ctx context.Context, shopID uuid.UUID, code string) (*model.Product, error) {
	code = strings.TrimSpace(code)
	var product model.Product
	err := r.db.WithContext(ctx).
		Where("shop_id = ? AND (barcode = ? OR LOWER(sku) = LOWER(?))", shopID, code, code).
		Order(clause.OrderBy{Expression: clause.Expr{
			SQL:                "CASE WHEN barcode = ? THEN 0 ELSE 1 END",
			Vars:               []interface{}{code},
			WithoutParentheses: true,
		}}).
		First(&product).Error
	if err == nil {
		return &product, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) || !barcode.IsDerived(strings.ToUpper(code)) {
		return nil, translate(err)
	}

	// Derived codes carry the first ten hex digits of the id.
	hex := strings.ToLower(strings.TrimPrefix(strings.ToUpper(code), barcode.DerivedPrefix))
	var candidates []model.Product
	if err := r.db.WithContext(ctx).
		Where("shop_id = ? AND REPLACE(CAST(id AS TEXT), '-', '') LIKE ?", shopID, hex+"%").
		Find(&candidates).Error; err != nil {
		return nil, err
	}
	for _, p := range candidates {
		if barcode.Match(p, code) {
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

func (r *productRepo) TopSelling(ctx context.Context, shopID uuid.UUID, limit int) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Where("shop_id = ? AND sales_count > 0", shopID).
		Order("sales_count DESC").
		Limit(limit).
		Find(&products).Error
	return products, err
}

func (r *productRepo) Restock(ctx context.Context, shopID, id uuid.UUID, qty decimal.Decimal, updatedBy string) (*model.Product, error) {
	var product model.Product
	res := r.db.WithContext(ctx).Model(&product).
		Clauses(clause.Returning{}).
		Where("id = ? AND shop_id = ?", id, shopID).
		Updates(map[string]interface{}{
			"stock":      gorm.Expr("stock + ?", qty),
			"updated_by": updatedBy,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return &product, nil
}
