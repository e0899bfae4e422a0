package receipt

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-pos-ws/internal/model"
	"go-pos-ws/internal/payment"
)

func sampleTx(details payment.Details) *model.Transaction {
	tx := &model.Transaction{
		TransactionID: "TXN-20240501101500-ABC123",
		CashierName:   "Asha",
		Amount:        decimal.RequireFromString("85.00"),
		Items: []model.LineItem{
			{ProductID: uuid.New(), Name: "Soap", Unit: model.UnitPiece, Quantity: decimal.NewFromInt(2), Price: decimal.RequireFromString("10.00")},
			{ProductID: uuid.New(), Name: "Rice", Unit: model.UnitKilogram, Quantity: decimal.RequireFromString("1.5"), Price: decimal.RequireFromString("43.33")},
		},
		PaymentMethod:  details.Method,
		PaymentDetails: details,
	}
	tx.CreatedAt = time.Date(2024, 5, 1, 10, 15, 0, 0, time.UTC)
	return tx
}

func TestBuild_Cash(t *testing.T) {
	tx := sampleTx(payment.Details{Method: payment.Cash, Cash: &payment.CashDetails{
		AmountPaid:   decimal.RequireFromString("100"),
		ChangeAmount: decimal.RequireFromString("15"),
	}})
	shop := &model.Shop{Name: "Corner Store", Address: "1 Main Rd", CurrencySymbol: "₹"}

	r := Build(tx, shop, "$")

	assert.Equal(t, "Corner Store", r.Header.ShopName)
	assert.Equal(t, "₹85.00", r.GrandTotal)
	require.Len(t, r.Lines, 2)
	assert.Equal(t, "2 pcs", r.Lines[0].Quantity)
	assert.Equal(t, "₹20.00", r.Lines[0].Total)
	assert.Equal(t, "1.500 kg", r.Lines[1].Quantity)
	assert.Equal(t, []FooterRow{{"Cash", "₹100.00"}, {"Change", "₹15.00"}}, r.Footer)
}

func TestBuild_CashExactHasNoChangeRow(t *testing.T) {
	tx := sampleTx(payment.Details{Method: payment.Cash, Cash: &payment.CashDetails{
		AmountPaid:   decimal.RequireFromString("85"),
		ChangeAmount: decimal.Zero,
	}})
	r := Build(tx, nil, "₹")
	assert.Len(t, r.Footer, 1)
}

func TestBuild_CardAndUPI(t *testing.T) {
	card := Build(sampleTx(payment.Details{Method: payment.Card, Card: &payment.CardDetails{Last4: "4242"}}), nil, "₹")
	assert.Equal(t, []FooterRow{{"Card", "**** **** **** 4242"}}, card.Footer)

	upi := Build(sampleTx(payment.Details{Method: payment.UPI, UPI: &payment.UPIDetails{Reference: "alice@bank"}}), nil, "₹")
	assert.Equal(t, []FooterRow{{"UPI", "alice@bank"}}, upi.Footer)
}

func TestBuild_DoesNotMutate(t *testing.T) {
	tx := sampleTx(payment.Details{Method: payment.UPI, UPI: &payment.UPIDetails{Reference: "a@b"}})
	before := *tx
	_ = Build(tx, nil, "₹")
	assert.Equal(t, before.Amount, tx.Amount)
	assert.Equal(t, before.Items, tx.Items)
}

func TestRender(t *testing.T) {
	tx := sampleTx(payment.Details{Method: payment.Card, Card: &payment.CardDetails{Last4: "4242"}})
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, Build(tx, &model.Shop{Name: "Corner Store"}, "₹")))

	out := buf.String()
	assert.Contains(t, out, "Corner Store")
	assert.Contains(t, out, "TXN-20240501101500-ABC123")
	assert.Contains(t, out, "01 May 2024 10:15")
	assert.Contains(t, out, "**** **** **** 4242")
	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		assert.LessOrEqual(t, len([]rune(line)), Width, line)
	}
}
