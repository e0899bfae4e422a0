package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a sellable item of a shop. Stock and SalesCount only change through
// the checkout commit sequence and explicit restocks.
type Product struct {
	BaseModel
	ShopID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"shop_id"`
	Name       string          `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Category   string          `gorm:"type:varchar(100);index" json:"category"`
	SKU        string          `gorm:"type:varchar(50);index" json:"sku,omitempty"`
	Barcode    string          `gorm:"type:varchar(64);index" json:"barcode,omitempty"`
	Price      decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"price"`
	Stock      decimal.Decimal `gorm:"type:numeric(12,3);not null;default:0" json:"stock"`
	Unit       UnitType        `gorm:"type:varchar(20);not null;default:'piece'" json:"unit" validate:"omitempty,unit_type"`
	SalesCount decimal.Decimal `gorm:"type:numeric(14,3);not null;default:0" json:"sales_count"`
}
