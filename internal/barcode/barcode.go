// Package barcode derives the scan code of a product.
package barcode

import (
	"strings"

	"github.com/google/uuid"

	"go-pos-ws/internal/model"
)

// DerivedPrefix marks codes generated from a product id.
const DerivedPrefix = "PRD"

// Resolve returns the explicit barcode, else the SKU, else a code derived from the id.
func Resolve(p model.Product) string {
	if b := strings.TrimSpace(p.Barcode); b != "" {
		return b
	}
	if s := strings.TrimSpace(p.SKU); s != "" {
		return s
	}
	return Derive(p.ID)
}

// Derive builds the fallback code: the prefix followed by the first ten hex
// digits of the id, upper-cased.
func Derive(id uuid.UUID) string {
	hex := strings.ReplaceAll(id.String(), "-", "")
	return DerivedPrefix + strings.ToUpper(hex[:10])
}

// IsDerived reports whether code has the shape Derive produces.
func IsDerived(code string) bool {
	if len(code) != len(DerivedPrefix)+10 || !strings.HasPrefix(code, DerivedPrefix) {
		return false
	}
	for _, r := range code[len(DerivedPrefix):] {
		if !(r >= '0' && r <= '9' || r >= 'A' && r <= 'F') {
			return false
		}
	}
	return true
}

// Match reports whether code scans to p.
func Match(p model.Product, code string) bool {
	code = strings.TrimSpace(code)
	if code == "" {
		return false
	}
	if p.Barcode != "" && p.Barcode == code {
		return true
	}
	if p.SKU != "" && strings.EqualFold(p.SKU, code) {
		return true
	}
	return strings.EqualFold(Derive(p.ID), code)
}
