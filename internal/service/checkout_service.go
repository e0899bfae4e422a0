package service

import (
	"context"
	"errors"

	"go-pos-ws/internal/cart"
	"go-pos-ws/internal/format"
	"go-pos-ws/internal/model"
	"go-pos-ws/internal/payment"
	"go-pos-ws/internal/receipt"
	"go-pos-ws/internal/repository"
	"go-pos-ws/internal/session"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CheckoutService owns the cashier's bill from the first scan to the receipt.
type CheckoutService interface {
	View(sess session.Context) (*CartView, error)
	AddItem(ctx context.Context, sess session.Context, productID uuid.UUID) (*CartView, error)
	AddByCode(ctx context.Context, sess session.Context, code string) (*CartView, error)
	UpdateQuantity(ctx context.Context, sess session.Context, index int, qty decimal.Decimal) (*CartView, error)
	RemoveItem(sess session.Context, index int) (*CartView, error)
	Clear(sess session.Context) (*CartView, error)
	Checkout(ctx context.Context, sess session.Context, req CheckoutRequest) (*CheckoutResult, error)
}

type CheckoutRequest struct {
	PaymentMethod string `json:"payment_method" validate:"required,oneof=cash card upi"`
	AmountPaid    string `json:"amount_paid"`
	Reference     string `json:"reference"`
}

type CartLineView struct {
	cart.Line
	LineTotal    decimal.Decimal `json:"line_total"`
	QuantityText string          `json:"quantity_text"`
	TotalText    string          `json:"line_total_text"`
}

type CartView struct {
	Lines      []CartLineView  `json:"lines"`
	Total      decimal.Decimal `json:"total"`
	TotalText  string          `json:"total_text"`
	Processing bool            `json:"processing"`
}

type CheckoutResult struct {
	Transaction *model.Transaction `json:"transaction"`
	Receipt     receipt.Receipt    `json:"receipt"`
	Warning     string             `json:"warning,omitempty"`
}

type checkoutService struct {
	carts     *cart.Registry
	products  repository.ProductRepository
	shops     repository.ShopRepository
	committer *Committer
	symbol    string
}

func NewCheckoutService(carts *cart.Registry, products repository.ProductRepository, shops repository.ShopRepository, committer *Committer, symbol string) CheckoutService {
	if symbol == "" {
		symbol = format.DefaultSymbol
	}
	return &checkoutService{
		carts:     carts,
		products:  products,
		shops:     shops,
		committer: committer,
		symbol:    symbol,
	}
}

func (s *checkoutService) cartFor(sess session.Context) (*cart.Cart, error) {
	if err := sess.Validate(); err != nil {
		return nil, err
	}
	return s.carts.Get(sess.ShopID, sess.UserID), nil
}

func (s *checkoutService) View(sess session.Context) (*CartView, error) {
	c, err := s.cartFor(sess)
	if err != nil {
		return nil, err
	}
	return s.view(c), nil
}

func (s *checkoutService) AddItem(ctx context.Context, sess session.Context, productID uuid.UUID) (*CartView, error) {
	c, err := s.cartFor(sess)
	if err != nil {
		return nil, err
	}
	product, err := s.products.FindByID(ctx, sess.ShopID, productID)
	if err != nil {
		return nil, productErr(err)
	}
	if err := c.Add(*product); err != nil {
		return nil, err
	}
	return s.view(c), nil
}

// AddByCode resolves a scanned barcode, SKU or derived code and adds the product.
func (s *checkoutService) AddByCode(ctx context.Context, sess session.Context, code string) (*CartView, error) {
	c, err := s.cartFor(sess)
	if err != nil {
		return nil, err
	}
	product, err := s.products.FindByCode(ctx, sess.ShopID, code)
	if err != nil {
		return nil, productErr(err)
	}
	if err := c.Add(*product); err != nil {
		return nil, err
	}
	return s.view(c), nil
}

// UpdateQuantity reloads the product so the stock check uses the current level.
func (s *checkoutService) UpdateQuantity(ctx context.Context, sess session.Context, index int, qty decimal.Decimal) (*CartView, error) {
	c, err := s.cartFor(sess)
	if err != nil {
		return nil, err
	}
	line, err := c.Line(index)
	if err != nil {
		return nil, err
	}
	if !qty.IsPositive() {
		if err := c.Remove(index); err != nil {
			return nil, err
		}
		return s.view(c), nil
	}
	product, err := s.products.FindByID(ctx, sess.ShopID, line.ProductID)
	if err != nil {
		return nil, productErr(err)
	}
	if err := c.UpdateQuantity(index, qty, *product); err != nil {
		return nil, err
	}
	return s.view(c), nil
}

func (s *checkoutService) RemoveItem(sess session.Context, index int) (*CartView, error) {
	c, err := s.cartFor(sess)
	if err != nil {
		return nil, err
	}
	if err := c.Remove(index); err != nil {
		return nil, err
	}
	return s.view(c), nil
}

func (s *checkoutService) Clear(sess session.Context) (*CartView, error) {
	c, err := s.cartFor(sess)
	if err != nil {
		return nil, err
	}
	if c.Processing() {
		return nil, cart.ErrCheckoutInProgress
	}
	c.Clear()
	return s.view(c), nil
}

// Checkout validates the payment, commits the sale and empties the bill.
// On any failure before the sale is stored the bill is left as it was so the
// cashier can correct the input and try again.
func (s *checkoutService) Checkout(ctx context.Context, sess session.Context, req CheckoutRequest) (*CheckoutResult, error) {
	c, err := s.cartFor(sess)
	if err != nil {
		return nil, err
	}
	if c.Len() == 0 {
		return nil, ErrEmptyBill
	}
	method, err := payment.ParseMethod(req.PaymentMethod)
	if err != nil {
		return nil, err
	}

	if err := c.BeginCheckout(); err != nil {
		return nil, err
	}
	paid := false
	defer func() { c.EndCheckout(paid) }()

	items, total := c.Snapshot()
	if len(items) == 0 {
		return nil, ErrEmptyBill
	}
	details, err := payment.Build(method, payment.Input{AmountPaid: req.AmountPaid, Reference: req.Reference}, total)
	if err != nil {
		return nil, err
	}

	tx, err := s.committer.Commit(ctx, sess, Sale{Items: items, Total: total, Payment: details})
	if err != nil && !(errors.Is(err, ErrPartialCommit) && tx != nil) {
		return nil, err
	}
	// A partial commit still stored the sale; keeping the bill would invite a
	// second sale for the same goods.
	paid = true

	result := &CheckoutResult{Transaction: tx, Receipt: s.receiptFor(ctx, tx)}
	if err != nil {
		result.Warning = err.Error()
		return result, err
	}
	return result, nil
}

func (s *checkoutService) receiptFor(ctx context.Context, tx *model.Transaction) receipt.Receipt {
	shop, err := s.shops.FindByID(ctx, tx.ShopID)
	if err != nil {
		shop = nil
	}
	return receipt.Build(tx, shop, s.symbol)
}

func (s *checkoutService) view(c *cart.Cart) *CartView {
	lines := c.Lines()
	v := &CartView{Lines: make([]CartLineView, len(lines)), Processing: c.Processing()}
	total := decimal.Zero
	for i, l := range lines {
		lt := l.Total()
		total = total.Add(lt)
		v.Lines[i] = CartLineView{
			Line:         l,
			LineTotal:    lt,
			QuantityText: format.Quantity(l.Quantity, l.Unit),
			TotalText:    format.Currency(lt, s.symbol),
		}
	}
	v.Total = total
	v.TotalText = format.Currency(total, s.symbol)
	return v
}

func productErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrProductNotFound
	}
	return err
}
