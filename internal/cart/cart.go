// Package cart holds the in-progress bill of a cashier session.
package cart

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"go-pos-ws/internal/model"
)

var (
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrLineNotFound       = errors.New("bill line not found")
	ErrFractionalQuantity = errors.New("quantity must be a whole number for this product")
	ErrProductMismatch    = errors.New("product does not match bill line")
	ErrCheckoutInProgress = errors.New("checkout already in progress")
	ErrQuantityPrecision  = errors.New("quantity has more than 3 decimal places")
)

// Line is one product on the bill. Price is the product price when the line was added.
type Line struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku,omitempty"`
	Unit      model.UnitType  `json:"unit"`
	Price     decimal.Decimal `json:"price"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// Total is price times quantity, rounded to the currency. The bill total is
// the sum of these, so every printed line adds up to the grand total.
func (l Line) Total() decimal.Decimal {
	return model.RoundMoney(l.Price.Mul(l.Quantity))
}

// Cart is an ordered list of lines, unique by product. It is safe for concurrent use.
type Cart struct {
	mu         sync.Mutex
	lines      []Line
	processing bool
}

func New() *Cart {
	return &Cart{}
}

// Add puts one step of p on the bill, or bumps the existing line by one step.
// The cart is unchanged when the result would exceed p.Stock.
func (c *Cart) Add(p model.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.processing {
		return ErrCheckoutInProgress
	}

	step := p.Unit.Step()
	for i := range c.lines {
		if c.lines[i].ProductID != p.ID {
			continue
		}
		next := c.lines[i].Quantity.Add(step)
		if next.GreaterThan(p.Stock) {
			return insufficient(p)
		}
		c.lines[i].Quantity = next
		return nil
	}

	if step.GreaterThan(p.Stock) {
		return insufficient(p)
	}
	unit := p.Unit
	if unit == "" {
		unit = model.UnitPiece
	}
	c.lines = append(c.lines, Line{
		ProductID: p.ID,
		Name:      p.Name,
		SKU:       p.SKU,
		Unit:      unit,
		Price:     p.Price,
		Quantity:  step,
	})
	return nil
}

// UpdateQuantity sets the quantity of line index, checked against current,
// the freshly loaded product. A quantity <= 0 removes the line.
func (c *Cart) UpdateQuantity(index int, qty decimal.Decimal, current model.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.processing {
		return ErrCheckoutInProgress
	}
	if index < 0 || index >= len(c.lines) {
		return ErrLineNotFound
	}
	if !qty.IsPositive() {
		c.removeLocked(index)
		return nil
	}

	line := &c.lines[index]
	if line.ProductID != current.ID {
		return ErrProductMismatch
	}
	if !line.Unit.Fractional() && !qty.IsInteger() {
		return ErrFractionalQuantity
	}
	if !model.QuantityFits(qty) {
		return ErrQuantityPrecision
	}
	if qty.GreaterThan(current.Stock) {
		return insufficient(current)
	}
	line.Quantity = qty
	return nil
}

// Remove deletes line index.
func (c *Cart) Remove(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.processing {
		return ErrCheckoutInProgress
	}
	if index < 0 || index >= len(c.lines) {
		return ErrLineNotFound
	}
	c.removeLocked(index)
	return nil
}

func (c *Cart) removeLocked(index int) {
	c.lines = append(c.lines[:index], c.lines[index+1:]...)
}

// Clear empties the cart. Clearing an empty cart does nothing.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.lines) == 0 {
		return
	}
	c.lines = nil
}

// Line returns a copy of line index.
func (c *Cart) Line(index int) (Line, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.lines) {
		return Line{}, ErrLineNotFound
	}
	return c.lines[index], nil
}

// Lines returns a copy of the current lines.
func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines)
}

// Total is recomputed from the lines on every call.
func (c *Cart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return totalOf(c.lines)
}

func totalOf(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Total())
	}
	return total
}

// Snapshot freezes the lines into the form stored on a transaction.
func (c *Cart) Snapshot() ([]model.LineItem, decimal.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	items := make([]model.LineItem, len(c.lines))
	for i, l := range c.lines {
		items[i] = model.LineItem{
			ProductID: l.ProductID,
			Name:      l.Name,
			SKU:       l.SKU,
			Unit:      l.Unit,
			Quantity:  l.Quantity,
			Price:     l.Price,
		}
	}
	return items, totalOf(c.lines)
}

// BeginCheckout marks the cart as being paid. It fails if a checkout is
// already running. Mutations are refused until EndCheckout.
func (c *Cart) BeginCheckout() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.processing {
		return ErrCheckoutInProgress
	}
	c.processing = true
	return nil
}

// EndCheckout releases the processing flag and clears the lines when paid is true.
func (c *Cart) EndCheckout(paid bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.processing = false
	if paid {
		c.lines = nil
	}
}

func (c *Cart) Processing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.processing
}

func insufficient(p model.Product) error {
	return fmt.Errorf("%w: only %s of %s available", ErrInsufficientStock, p.Stock.String(), p.Name)
}
