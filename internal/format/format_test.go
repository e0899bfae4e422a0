package format

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"go-pos-ws/internal/model"
)

func TestCurrency(t *testing.T) {
	tests := []struct {
		in     string
		symbol string
		want   string
	}{
		{"0", "", "₹0.00"},
		{"5", "$", "$5.00"},
		{"1234.5", "₹", "₹1,234.50"},
		{"1234567.891", "₹", "₹1,234,567.89"},
		{"-42.1", "₹", "-₹42.10"},
		{"999", "Rs ", "Rs 999.00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Currency(decimal.RequireFromString(tt.in), tt.symbol), tt.in)
	}
}

func TestQuantity(t *testing.T) {
	tests := []struct {
		qty  string
		unit model.UnitType
		want string
	}{
		{"1", model.UnitPiece, "1 pc"},
		{"3", model.UnitPiece, "3 pcs"},
		{"1.25", model.UnitKilogram, "1.250 kg"},
		{"0.5", model.UnitLiter, "0.500 L"},
		{"2", model.UnitPack, "2 pack"},
		{"2.500", model.UnitPack, "2.5 pack"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Quantity(decimal.RequireFromString(tt.qty), tt.unit))
	}
}
