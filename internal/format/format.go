// Package format turns prices and quantities into display strings.
package format

import (
	"strings"

	"github.com/shopspring/decimal"

	"go-pos-ws/internal/model"
)

// DefaultSymbol is used when a shop has no currency symbol configured.
const DefaultSymbol = "₹"

// Currency renders amount with two decimals and comma thousands separators.
func Currency(amount decimal.Decimal, symbol string) string {
	if symbol == "" {
		symbol = DefaultSymbol
	}
	s := amount.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString(symbol)
	b.WriteString(group(intPart))
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}

func group(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// Quantity renders qty with the unit's suffix. Weight and volume always show
// three decimals so scale readings line up on a receipt.
func Quantity(qty decimal.Decimal, unit model.UnitType) string {
	switch unit {
	case model.UnitKilogram:
		return qty.StringFixed(3) + " kg"
	case model.UnitLiter:
		return qty.StringFixed(3) + " L"
	case model.UnitPack:
		return qty.String() + " pack"
	default:
		if qty.Equal(decimal.NewFromInt(1)) {
			return "1 pc"
		}
		return qty.String() + " pcs"
	}
}
