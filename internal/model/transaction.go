package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"go-pos-ws/internal/payment"
)

// LineItem is a frozen copy of a cart line stored with the sale.
type LineItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku,omitempty"`
	Unit      UnitType        `json:"unit"`
	Quantity  decimal.Decimal `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// LineTotal is price times quantity, rounded to the currency.
func (l LineItem) LineTotal() decimal.Decimal {
	return RoundMoney(l.Price.Mul(l.Quantity))
}

// Transaction is a completed sale. There is no update path once it is inserted.
type Transaction struct {
	BaseModel
	TransactionID  string          `gorm:"type:varchar(40);uniqueIndex;not null" json:"transaction_id"`
	ShopID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"shop_id"`
	CashierID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"cashier_id"`
	CashierName    string          `gorm:"type:varchar(255)" json:"cashier_name"`
	Amount         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Items          []LineItem      `gorm:"type:jsonb;serializer:json;not null" json:"items"`
	PaymentMethod  payment.Method  `gorm:"type:varchar(10);not null;index" json:"payment_method"`
	PaymentDetails payment.Details `gorm:"type:jsonb;serializer:json;not null" json:"payment_details"`
}
