package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"go-pos-ws/internal/config"
	"go-pos-ws/internal/events"
	"go-pos-ws/internal/format"
	"go-pos-ws/internal/model"
	"go-pos-ws/internal/payment"
	"go-pos-ws/internal/repository"
	"go-pos-ws/internal/session"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale is a validated, frozen bill ready to be written.
type Sale struct {
	Items   []model.LineItem
	Total   decimal.Decimal
	Payment payment.Details
}

// Committer turns a Sale into a stored transaction plus the matching stock
// and sales counter updates.
type Committer struct {
	store    repository.SalesStore
	mode     config.CommitMode
	ids      *TxIDGenerator
	notifier NotificationService
	bus      events.Publisher
	lowStock decimal.Decimal
}

func NewCommitter(store repository.SalesStore, mode config.CommitMode, lowStock int64, notifier NotificationService, bus events.Publisher) *Committer {
	if mode == "" {
		mode = config.CommitAtomic
	}
	return &Committer{
		store:    store,
		mode:     mode,
		ids:      NewTxIDGenerator(),
		notifier: notifier,
		bus:      bus,
		lowStock: decimal.NewFromInt(lowStock),
	}
}

type stockLevel struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Sold      decimal.Decimal `json:"sold"`
	Stock     decimal.Decimal `json:"new_stock"`
	Unit      model.UnitType  `json:"unit"`
}

// Commit writes the sale. In atomic mode nothing is stored unless every step
// succeeds. In sequential mode each step is issued on its own, and a failure
// after the transaction row exists is returned as ErrPartialCommit together
// with the stored transaction.
func (c *Committer) Commit(ctx context.Context, sess session.Context, sale Sale) (*model.Transaction, error) {
	if err := sess.Validate(); err != nil {
		return nil, err
	}
	if len(sale.Items) == 0 {
		return nil, ErrEmptyBill
	}
	if err := sale.Payment.Validate(); err != nil {
		return nil, err
	}

	txid, err := c.ids.Next()
	if err != nil {
		return nil, fmt.Errorf("generate transaction id: %w", err)
	}
	tx := &model.Transaction{
		TransactionID:  txid,
		ShopID:         sess.ShopID,
		CashierID:      sess.UserID,
		CashierName:    sess.Name,
		Amount:         sale.Total,
		Items:          sale.Items,
		PaymentMethod:  sale.Payment.Method,
		PaymentDetails: sale.Payment,
	}
	tx.Audit(sess.Actor())

	var levels []stockLevel
	switch c.mode {
	case config.CommitSequential:
		var inserted bool
		levels, inserted, err = c.apply(ctx, c.store, tx)
		if err != nil && inserted {
			c.reportPartial(ctx, sess, tx, err)
			// Lines decremented before the failure really moved.
			c.announceStock(ctx, sess, tx.ShopID, levels)
			return tx, fmt.Errorf("%w: %s: %v", ErrPartialCommit, tx.TransactionID, err)
		}
	default:
		err = c.store.RunInTx(ctx, func(store repository.SalesStore) error {
			var applyErr error
			levels, _, applyErr = c.apply(ctx, store, tx)
			return applyErr
		})
	}
	if err != nil {
		log.Printf("checkout: commit %s for shop %s failed: %v", tx.TransactionID, tx.ShopID, err)
		return nil, err
	}

	c.announce(ctx, sess, tx, levels)
	return tx, nil
}

// apply runs insert, then every stock decrement, then every sales increment.
// inserted reports whether the transaction row was written before a failure.
func (c *Committer) apply(ctx context.Context, store repository.SalesStore, tx *model.Transaction) (levels []stockLevel, inserted bool, err error) {
	if err := store.InsertTransaction(ctx, tx); err != nil {
		return nil, false, fmt.Errorf("insert transaction: %w", err)
	}

	levels = make([]stockLevel, 0, len(tx.Items))
	for _, item := range tx.Items {
		left, err := store.DecrementStock(ctx, tx.ShopID, item.ProductID, item.Quantity)
		if err != nil {
			return levels, true, fmt.Errorf("decrement stock of %s: %w", item.Name, err)
		}
		levels = append(levels, stockLevel{
			ProductID: item.ProductID,
			Name:      item.Name,
			Sold:      item.Quantity,
			Stock:     left,
			Unit:      item.Unit,
		})
	}
	for _, item := range tx.Items {
		if err := store.IncrementSales(ctx, tx.ShopID, item.ProductID, item.Quantity); err != nil {
			return levels, true, fmt.Errorf("increment sales of %s: %w", item.Name, err)
		}
	}
	return levels, true, nil
}

func (c *Committer) reportPartial(ctx context.Context, sess session.Context, tx *model.Transaction, cause error) {
	log.Printf("checkout: PARTIAL COMMIT %s shop=%s cashier=%s: %v", tx.TransactionID, tx.ShopID, tx.CashierID, cause)
	if c.notifier == nil {
		return
	}
	n := &model.Notification{
		ShopID:  sess.ShopID,
		Kind:    model.NotifyPartialCommit,
		Title:   "Inventory out of sync",
		Message: fmt.Sprintf("Sale %s was recorded but inventory was not fully updated: %v", tx.TransactionID, cause),
	}
	if err := c.notifier.Notify(ctx, n); err != nil {
		log.Printf("checkout: partial commit notification for %s: %v", tx.TransactionID, err)
	}
}

func (c *Committer) announce(ctx context.Context, sess session.Context, tx *model.Transaction, levels []stockLevel) {
	actor := actorInfo{ID: sess.UserID, Name: sess.Name, Email: sess.Email}
	publish(ctx, c.bus, events.TypeTransaction, tx.ShopID,
		fmt.Sprintf("%s completed sale %s", sess.Name, tx.TransactionID),
		map[string]interface{}{"transaction": tx, "user": actor})
	c.announceStock(ctx, sess, tx.ShopID, levels)
}

func (c *Committer) announceStock(ctx context.Context, sess session.Context, shopID uuid.UUID, levels []stockLevel) {
	actor := actorInfo{ID: sess.UserID, Name: sess.Name, Email: sess.Email}
	for _, lvl := range levels {
		publish(ctx, c.bus, events.TypeStockChanged, shopID,
			fmt.Sprintf("%s sold %s of '%s'", sess.Name, format.Quantity(lvl.Sold, lvl.Unit), lvl.Name),
			map[string]interface{}{"product": lvl, "user": actor})
		c.checkLowStock(ctx, shopID, lvl)
	}
}

func (c *Committer) checkLowStock(ctx context.Context, shopID uuid.UUID, lvl stockLevel) {
	if c.notifier == nil || lvl.Stock.GreaterThan(c.lowStock) {
		return
	}
	n := &model.Notification{ShopID: shopID, Kind: model.NotifyLowStock}
	if lvl.Stock.IsPositive() {
		n.Title = "Low stock: " + lvl.Name
		n.Message = fmt.Sprintf("Only %s of '%s' left", format.Quantity(lvl.Stock, lvl.Unit), lvl.Name)
	} else {
		n.Kind = model.NotifyOutOfStock
		n.Title = "Out of stock: " + lvl.Name
		n.Message = fmt.Sprintf("'%s' is sold out", lvl.Name)
	}
	if err := c.notifier.Notify(ctx, n); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("checkout: low stock notification for %s: %v", lvl.ProductID, err)
	}
}
