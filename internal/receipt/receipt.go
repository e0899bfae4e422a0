// Package receipt lays out a stored transaction for printing or download.
package receipt

import (
	"time"

	"go-pos-ws/internal/format"
	"go-pos-ws/internal/model"
	"go-pos-ws/internal/payment"
)

type Header struct {
	ShopName      string    `json:"shop_name"`
	Address       string    `json:"address,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	TransactionID string    `json:"transaction_id"`
	Timestamp     time.Time `json:"timestamp"`
	Cashier       string    `json:"cashier,omitempty"`
}

type Line struct {
	Name      string `json:"name"`
	Quantity  string `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Total     string `json:"total"`
}

// FooterRow is a label/value pair under the grand total.
type FooterRow struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Receipt is composed at print time; it is never stored.
type Receipt struct {
	Header     Header         `json:"header"`
	Lines      []Line         `json:"lines"`
	GrandTotal string         `json:"grand_total"`
	Method     payment.Method `json:"payment_method"`
	Footer     []FooterRow    `json:"footer"`
}

// Build formats tx for shop. The transaction is only read.
func Build(tx *model.Transaction, shop *model.Shop, symbol string) Receipt {
	if shop != nil && shop.CurrencySymbol != "" {
		symbol = shop.CurrencySymbol
	}
	r := Receipt{
		Header: Header{
			TransactionID: tx.TransactionID,
			Timestamp:     tx.CreatedAt,
			Cashier:       tx.CashierName,
		},
		GrandTotal: format.Currency(tx.Amount, symbol),
		Method:     tx.PaymentMethod,
	}
	if shop != nil {
		r.Header.ShopName = shop.Name
		r.Header.Address = shop.Address
		r.Header.Phone = shop.Phone
	}

	r.Lines = make([]Line, len(tx.Items))
	for i, item := range tx.Items {
		r.Lines[i] = Line{
			Name:      item.Name,
			Quantity:  format.Quantity(item.Quantity, item.Unit),
			UnitPrice: format.Currency(item.Price, symbol),
			Total:     format.Currency(item.LineTotal(), symbol),
		}
	}
	r.Footer = footer(tx.PaymentDetails, symbol)
	return r
}

func footer(d payment.Details, symbol string) []FooterRow {
	switch {
	case d.Method == payment.Cash && d.Cash != nil:
		rows := []FooterRow{{Label: "Cash", Value: format.Currency(d.Cash.AmountPaid, symbol)}}
		if d.Cash.ChangeAmount.Round(2).IsPositive() {
			rows = append(rows, FooterRow{Label: "Change", Value: format.Currency(d.Cash.ChangeAmount, symbol)})
		}
		return rows
	case d.Method == payment.Card && d.Card != nil:
		return []FooterRow{{Label: "Card", Value: MaskCard(d.Card.Last4)}}
	case d.Method == payment.UPI && d.UPI != nil:
		return []FooterRow{{Label: "UPI", Value: d.UPI.Reference}}
	}
	return []FooterRow{{Label: "Paid", Value: string(d.Method)}}
}

// MaskCard shows only the last four digits.
func MaskCard(last4 string) string {
	return "**** **** **** " + last4
}
