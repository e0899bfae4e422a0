package model

// Shop is a tenant. Every product, sale, user and notification belongs to exactly one shop.
type Shop struct {
	BaseModel
	Name           string `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Address        string `gorm:"type:text" json:"address"`
	Phone          string `gorm:"type:varchar(30)" json:"phone"`
	CurrencySymbol string `gorm:"type:varchar(8);default:'₹'" json:"currency_symbol"`
}
