package service

import (
	"context"
	"testing"

	"go-pos-ws/internal/barcode"
	"go-pos-ws/internal/cart"
	"go-pos-ws/internal/config"
	"go-pos-ws/internal/events"
	"go-pos-ws/internal/model"
	"go-pos-ws/internal/payment"
	"go-pos-ws/internal/session"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type checkoutFixture struct {
	svc   CheckoutService
	store *memStore
	carts *cart.Registry
	sess  session.Context
	a, b  model.Product
	log   *eventLog
}

func newCheckoutFixture(t *testing.T, mode config.CommitMode) *checkoutFixture {
	t.Helper()
	shop := model.Shop{Name: "Corner Store", Address: "12 MG Road", CurrencySymbol: "₹"}
	shop.ID = uuid.New()
	a := product(shop.ID, "Product A", "10.00", "10", model.UnitPiece)
	a.SKU = "A-100"
	b := product(shop.ID, "Product B", "5.00", "4", model.UnitPiece)
	store := newMemStore(a, b)
	bus := events.NewLocalBus()
	carts := cart.NewRegistry()
	committer := NewCommitter(store, mode, 0, &recordingNotifier{}, bus)
	return &checkoutFixture{
		svc:   NewCheckoutService(carts, store, newMemShops(shop), committer, "₹"),
		store: store,
		carts: carts,
		sess:  cashier(shop.ID),
		a:     a,
		b:     b,
		log:   watch(bus, shop.ID),
	}
}

func (f *checkoutFixture) fill(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	_, err := f.svc.AddItem(ctx, f.sess, f.a.ID)
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, f.sess, f.a.ID)
	require.NoError(t, err)
	view, err := f.svc.AddItem(ctx, f.sess, f.b.ID)
	require.NoError(t, err)
	require.Equal(t, "25.00", view.Total.StringFixed(2))
}

func TestCheckout_CashScenario(t *testing.T) {
	f := newCheckoutFixture(t, config.CommitAtomic)
	f.fill(t)

	res, err := f.svc.Checkout(context.Background(), f.sess, CheckoutRequest{PaymentMethod: "cash", AmountPaid: "30.00"})
	require.NoError(t, err)

	tx := res.Transaction
	assert.Equal(t, "25.00", tx.Amount.StringFixed(2))
	assert.Len(t, tx.Items, 2)
	assert.Equal(t, payment.Cash, tx.PaymentMethod)
	require.NotNil(t, tx.PaymentDetails.Cash)
	assert.Equal(t, "5.00", tx.PaymentDetails.Cash.ChangeAmount.StringFixed(2))

	assert.Equal(t, "Corner Store", res.Receipt.Header.ShopName)
	assert.Equal(t, "₹25.00", res.Receipt.GrandTotal)
	assert.Empty(t, res.Warning)

	view, err := f.svc.View(f.sess)
	require.NoError(t, err)
	assert.Empty(t, view.Lines)
	assert.False(t, view.Processing)

	assert.Equal(t, "8", f.store.product(f.a.ID).Stock.String())
	assert.Equal(t, "3", f.store.product(f.b.ID).Stock.String())
	assert.Contains(t, f.log.seen(), events.TypeTransaction)
}

func TestCheckout_InsufficientCashKeepsBill(t *testing.T) {
	f := newCheckoutFixture(t, config.CommitAtomic)
	f.fill(t)

	_, err := f.svc.Checkout(context.Background(), f.sess, CheckoutRequest{PaymentMethod: "cash", AmountPaid: "20"})
	assert.ErrorIs(t, err, payment.ErrInsufficientPayment)

	view, err := f.svc.View(f.sess)
	require.NoError(t, err)
	assert.Len(t, view.Lines, 2)
	assert.False(t, view.Processing)
	assert.Empty(t, f.store.transactions)
	assert.Equal(t, "10", f.store.product(f.a.ID).Stock.String())
}

func TestCheckout_CardAndUPIReferences(t *testing.T) {
	cases := []struct {
		name    string
		req     CheckoutRequest
		wantErr error
	}{
		{"card too short", CheckoutRequest{PaymentMethod: "card", Reference: "12"}, payment.ErrInvalidCardReference},
		{"card ok", CheckoutRequest{PaymentMethod: "card", Reference: "1234"}, nil},
		{"upi without at", CheckoutRequest{PaymentMethod: "upi", Reference: "aliceshop"}, payment.ErrInvalidUPIID},
		{"upi ok", CheckoutRequest{PaymentMethod: "upi", Reference: "alice@bank"}, nil},
		{"unknown method", CheckoutRequest{PaymentMethod: "cheque"}, payment.ErrUnknownMethod},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newCheckoutFixture(t, config.CommitAtomic)
			f.fill(t)
			res, err := f.svc.Checkout(context.Background(), f.sess, tc.req)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Equal(t, 2, f.carts.Get(f.sess.ShopID, f.sess.UserID).Len())
				return
			}
			require.NoError(t, err)
			assert.NoError(t, res.Transaction.PaymentDetails.Validate())
			assert.Equal(t, 0, f.carts.Get(f.sess.ShopID, f.sess.UserID).Len())
		})
	}
}

func TestCheckout_Preconditions(t *testing.T) {
	f := newCheckoutFixture(t, config.CommitAtomic)
	ctx := context.Background()

	_, err := f.svc.Checkout(ctx, f.sess, CheckoutRequest{PaymentMethod: "cash", AmountPaid: "10"})
	assert.ErrorIs(t, err, ErrEmptyBill)

	_, err = f.svc.Checkout(ctx, session.Context{}, CheckoutRequest{PaymentMethod: "cash", AmountPaid: "10"})
	assert.ErrorIs(t, err, session.ErrMissingShopContext)

	_, err = f.svc.AddItem(ctx, session.Context{ShopID: f.sess.ShopID}, f.a.ID)
	assert.ErrorIs(t, err, session.ErrMissingShopContext)
}

func TestCheckout_CommitFailureKeepsBill(t *testing.T) {
	f := newCheckoutFixture(t, config.CommitAtomic)
	f.fill(t)
	f.store.failInsert = true

	_, err := f.svc.Checkout(context.Background(), f.sess, CheckoutRequest{PaymentMethod: "upi", Reference: "a@b"})
	assert.ErrorIs(t, err, errBoom)

	c := f.carts.Get(f.sess.ShopID, f.sess.UserID)
	assert.Equal(t, 2, c.Len())
	assert.False(t, c.Processing())

	f.store.failInsert = false
	_, err = f.svc.Checkout(context.Background(), f.sess, CheckoutRequest{PaymentMethod: "upi", Reference: "a@b"})
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
}

func TestCheckout_PartialCommitClearsBill(t *testing.T) {
	f := newCheckoutFixture(t, config.CommitSequential)
	f.fill(t)
	f.store.failSales = f.b.ID

	res, err := f.svc.Checkout(context.Background(), f.sess, CheckoutRequest{PaymentMethod: "card", Reference: "4242"})
	assert.ErrorIs(t, err, ErrPartialCommit)
	require.NotNil(t, res)
	assert.NotEmpty(t, res.Warning)
	assert.Equal(t, "25.00", res.Transaction.Amount.StringFixed(2))
	assert.Equal(t, 0, f.carts.Get(f.sess.ShopID, f.sess.UserID).Len())
}

func TestCheckout_ScanAndEditBill(t *testing.T) {
	f := newCheckoutFixture(t, config.CommitAtomic)
	ctx := context.Background()

	view, err := f.svc.AddByCode(ctx, f.sess, "a-100")
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, "1 pc", view.Lines[0].QuantityText)

	view, err = f.svc.AddByCode(ctx, f.sess, barcode.Derive(f.b.ID))
	require.NoError(t, err)
	require.Len(t, view.Lines, 2)

	_, err = f.svc.AddByCode(ctx, f.sess, "NOPE")
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, err = f.svc.UpdateQuantity(ctx, f.sess, 1, decimal.NewFromInt(5))
	assert.ErrorIs(t, err, cart.ErrInsufficientStock)

	view, err = f.svc.UpdateQuantity(ctx, f.sess, 1, decimal.NewFromInt(4))
	require.NoError(t, err)
	assert.Equal(t, "₹30.00", view.TotalText)

	_, err = f.svc.UpdateQuantity(ctx, f.sess, 0, decimal.RequireFromString("1.5"))
	assert.ErrorIs(t, err, cart.ErrFractionalQuantity)

	view, err = f.svc.UpdateQuantity(ctx, f.sess, 0, decimal.Zero)
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, f.b.ID, view.Lines[0].ProductID)

	_, err = f.svc.RemoveItem(f.sess, 3)
	assert.ErrorIs(t, err, cart.ErrLineNotFound)

	view, err = f.svc.Clear(f.sess)
	require.NoError(t, err)
	assert.Empty(t, view.Lines)

	view, err = f.svc.Clear(f.sess)
	require.NoError(t, err)
	assert.Empty(t, view.Lines)
}

func TestCheckout_FractionalWeightLine(t *testing.T) {
	shop := model.Shop{Name: "Corner Store", CurrencySymbol: "₹"}
	shop.ID = uuid.New()
	dal := product(shop.ID, "Toor Dal", "10.01", "5", model.UnitKilogram)
	store := newMemStore(dal)
	committer := NewCommitter(store, config.CommitAtomic, 0, &recordingNotifier{}, events.NewLocalBus())
	svc := NewCheckoutService(cart.NewRegistry(), store, newMemShops(shop), committer, "₹")
	sess := cashier(shop.ID)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, sess, dal.ID)
	require.NoError(t, err)
	_, err = svc.UpdateQuantity(ctx, sess, 0, decimal.RequireFromString("0.3333"))
	assert.ErrorIs(t, err, cart.ErrQuantityPrecision)

	view, err := svc.UpdateQuantity(ctx, sess, 0, decimal.RequireFromString("0.333"))
	require.NoError(t, err)
	assert.Equal(t, "₹3.33", view.TotalText)

	res, err := svc.Checkout(ctx, sess, CheckoutRequest{PaymentMethod: "cash", AmountPaid: "3.40"})
	require.NoError(t, err)
	assert.Equal(t, "3.33", res.Transaction.Amount.String())
	assert.Equal(t, "0.07", res.Transaction.PaymentDetails.Cash.ChangeAmount.String())
	assert.Equal(t, "₹3.33", res.Receipt.GrandTotal)
	require.Len(t, res.Receipt.Footer, 2)
	assert.Equal(t, []string{"₹3.40", "₹0.07"}, []string{res.Receipt.Footer[0].Value, res.Receipt.Footer[1].Value})
	assert.Equal(t, "4.667", store.product(dal.ID).Stock.String())
}
