package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// UnitType is how a product is sold.
type UnitType string

const (
	UnitPiece    UnitType = "piece"
	UnitKilogram UnitType = "kilogram"
	UnitLiter    UnitType = "liter"
	UnitPack     UnitType = "pack"
)

var unitAliases = map[string]UnitType{
	"piece": UnitPiece, "pc": UnitPiece, "pcs": UnitPiece,
	"kilogram": UnitKilogram, "kg": UnitKilogram,
	"liter": UnitLiter, "litre": UnitLiter, "l": UnitLiter,
	"pack": UnitPack,
}

// ParseUnitType accepts the canonical names and the short forms used on shelf labels.
// An empty string means piece.
func ParseUnitType(s string) (UnitType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return UnitPiece, nil
	}
	if u, ok := unitAliases[s]; ok {
		return u, nil
	}
	return "", fmt.Errorf("unknown unit type %q", s)
}

// Valid reports whether u is one of the known unit types.
func (u UnitType) Valid() bool {
	switch u {
	case UnitPiece, UnitKilogram, UnitLiter, UnitPack:
		return true
	}
	return false
}

// Fractional reports whether quantities of this unit may have a fractional part.
func (u UnitType) Fractional() bool {
	return u != UnitPiece && u != ""
}

// Step is the quantity a fresh cart line starts with and the increment
// applied when the same product is scanned again.
func (u UnitType) Step() decimal.Decimal {
	switch u {
	case UnitKilogram, UnitLiter:
		return decimal.New(1, -1)
	default:
		return decimal.NewFromInt(1)
	}
}

// Scales of the numeric columns quantities and money are stored in.
const (
	QuantityPlaces int32 = 3
	MoneyPlaces    int32 = 2
)

// QuantityFits reports whether q can be stored without losing digits.
func QuantityFits(q decimal.Decimal) bool {
	return q.Equal(q.Truncate(QuantityPlaces))
}

// RoundMoney rounds an amount half away from zero to the currency's 2 places.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}
