package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-pos-ws/internal/barcode"
	"go-pos-ws/internal/events"
	"go-pos-ws/internal/format"
	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
	"go-pos-ws/internal/session"
	"go-pos-ws/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type InventoryService interface {
	CreateProduct(ctx context.Context, sess session.Context, req *ProductRequest) (*model.Product, error)
	UpdateProduct(ctx context.Context, sess session.Context, id uuid.UUID, req *ProductRequest) (*model.Product, error)
	Restock(ctx context.Context, sess session.Context, id uuid.UUID, qty decimal.Decimal) (*model.Product, error)
	GetProduct(ctx context.Context, sess session.Context, id uuid.UUID) (*ProductView, error)
	LookupByCode(ctx context.Context, sess session.Context, code string) (*ProductView, error)
	ListProducts(ctx context.Context, sess session.Context, f repository.ProductFilter) ([]ProductView, error)
}

type ProductRequest struct {
	Name     string          `json:"name" validate:"required,max=255"`
	Category string          `json:"category" validate:"max=100"`
	SKU      string          `json:"sku" validate:"max=50"`
	Barcode  string          `json:"barcode" validate:"max=64"`
	Price    decimal.Decimal `json:"price"`
	Stock    decimal.Decimal `json:"stock"` // opening stock, ignored on update
	Unit     string          `json:"unit" validate:"omitempty,unit_type"`
}

// ProductView is a product with the code the scanner and labels use.
type ProductView struct {
	model.Product
	Code      string `json:"code"`
	StockText string `json:"stock_text"`
}

type inventoryService struct {
	productRepo repository.ProductRepository
	bus         events.Publisher
}

func NewInventoryService(productRepo repository.ProductRepository, bus events.Publisher) InventoryService {
	return &inventoryService{productRepo: productRepo, bus: bus}
}

func toView(p model.Product) ProductView {
	return ProductView{Product: p, Code: barcode.Resolve(p), StockText: format.Quantity(p.Stock, p.Unit)}
}

func (r *ProductRequest) normalize() (model.UnitType, error) {
	r.Name = strings.TrimSpace(r.Name)
	r.SKU = strings.TrimSpace(r.SKU)
	r.Barcode = strings.TrimSpace(r.Barcode)
	r.Category = strings.TrimSpace(r.Category)
	if err := validator.Check(r); err != nil {
		return "", err
	}
	if r.Price.IsNegative() {
		return "", fmt.Errorf("%w: price must not be negative", validator.ErrValidation)
	}
	if !r.Price.Equal(model.RoundMoney(r.Price)) {
		return "", fmt.Errorf("%w: price allows at most 2 decimal places", validator.ErrValidation)
	}
	return model.ParseUnitType(r.Unit)
}

func (s *inventoryService) skuTaken(ctx context.Context, shopID uuid.UUID, sku string, self uuid.UUID) (bool, error) {
	if sku == "" {
		return false, nil
	}
	existing, err := s.productRepo.FindBySKU(ctx, shopID, sku)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return existing.ID != self, nil
}

func (s *inventoryService) CreateProduct(ctx context.Context, sess session.Context, req *ProductRequest) (*model.Product, error) {
	if err := sess.Validate(); err != nil {
		return nil, err
	}
	unit, err := req.normalize()
	if err != nil {
		return nil, err
	}
	if req.Stock.IsNegative() {
		return nil, ErrInvalidQuantity
	}
	if !unit.Fractional() && !req.Stock.IsInteger() {
		return nil, fmt.Errorf("%w: opening stock of a %s product must be whole", validator.ErrValidation, unit)
	}
	if !model.QuantityFits(req.Stock) {
		return nil, fmt.Errorf("%w: stock allows at most 3 decimal places", validator.ErrValidation)
	}
	taken, err := s.skuTaken(ctx, sess.ShopID, req.SKU, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrDuplicateSKU
	}

	product := &model.Product{
		ShopID:     sess.ShopID,
		Name:       req.Name,
		Category:   req.Category,
		SKU:        req.SKU,
		Barcode:    req.Barcode,
		Price:      req.Price,
		Stock:      req.Stock,
		Unit:       unit,
		SalesCount: decimal.Zero,
	}
	product.Audit(sess.Actor())
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	publish(ctx, s.bus, events.TypeProductCreated, sess.ShopID,
		fmt.Sprintf("%s created product '%s'", sess.Name, product.Name),
		map[string]interface{}{"product": toView(*product), "user": actorInfo{sess.UserID, sess.Name, sess.Email}})
	return product, nil
}

// UpdateProduct edits the catalog fields. Stock only moves through sales and restocks.
func (s *inventoryService) UpdateProduct(ctx context.Context, sess session.Context, id uuid.UUID, req *ProductRequest) (*model.Product, error) {
	if err := sess.Validate(); err != nil {
		return nil, err
	}
	unit, err := req.normalize()
	if err != nil {
		return nil, err
	}
	product, err := s.productRepo.FindByID(ctx, sess.ShopID, id)
	if err != nil {
		return nil, productErr(err)
	}
	taken, err := s.skuTaken(ctx, sess.ShopID, req.SKU, product.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrDuplicateSKU
	}

	product.Name = req.Name
	product.Category = req.Category
	product.SKU = req.SKU
	product.Barcode = req.Barcode
	product.Price = req.Price
	product.Unit = unit
	product.Audit(sess.Actor())
	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	publish(ctx, s.bus, events.TypeProductUpdated, sess.ShopID,
		fmt.Sprintf("%s updated product '%s'", sess.Name, product.Name),
		map[string]interface{}{"product": toView(*product), "user": actorInfo{sess.UserID, sess.Name, sess.Email}})
	return product, nil
}

func (s *inventoryService) Restock(ctx context.Context, sess session.Context, id uuid.UUID, qty decimal.Decimal) (*model.Product, error) {
	if err := sess.Validate(); err != nil {
		return nil, err
	}
	if !qty.IsPositive() {
		return nil, ErrInvalidQuantity
	}
	current, err := s.productRepo.FindByID(ctx, sess.ShopID, id)
	if err != nil {
		return nil, productErr(err)
	}
	if !current.Unit.Fractional() && !qty.IsInteger() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidQuantity, "whole quantities only for this product")
	}
	if !model.QuantityFits(qty) {
		return nil, fmt.Errorf("%w: at most 3 decimal places", ErrInvalidQuantity)
	}
	product, err := s.productRepo.Restock(ctx, sess.ShopID, id, qty, sess.Actor())
	if err != nil {
		return nil, productErr(err)
	}

	publish(ctx, s.bus, events.TypeStockChanged, sess.ShopID,
		fmt.Sprintf("%s restocked %s of '%s'", sess.Name, format.Quantity(qty, product.Unit), product.Name),
		map[string]interface{}{
			"product": map[string]interface{}{
				"product_id": product.ID,
				"name":       product.Name,
				"added":      qty,
				"old_stock":  current.Stock,
				"new_stock":  product.Stock,
				"unit":       product.Unit,
			},
			"user": actorInfo{sess.UserID, sess.Name, sess.Email},
		})
	return product, nil
}

func (s *inventoryService) GetProduct(ctx context.Context, sess session.Context, id uuid.UUID) (*ProductView, error) {
	if err := sess.Validate(); err != nil {
		return nil, err
	}
	product, err := s.productRepo.FindByID(ctx, sess.ShopID, id)
	if err != nil {
		return nil, productErr(err)
	}
	v := toView(*product)
	return &v, nil
}

func (s *inventoryService) LookupByCode(ctx context.Context, sess session.Context, code string) (*ProductView, error) {
	if err := sess.Validate(); err != nil {
		return nil, err
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrProductNotFound
	}
	product, err := s.productRepo.FindByCode(ctx, sess.ShopID, code)
	if err != nil {
		return nil, productErr(err)
	}
	v := toView(*product)
	return &v, nil
}

func (s *inventoryService) ListProducts(ctx context.Context, sess session.Context, f repository.ProductFilter) ([]ProductView, error) {
	if err := sess.Validate(); err != nil {
		return nil, err
	}
	products, err := s.productRepo.FindByShop(ctx, sess.ShopID, f)
	if err != nil {
		return nil, err
	}
	views := make([]ProductView, len(products))
	for i, p := range products {
		views[i] = toView(p)
	}
	return views, nil
}
