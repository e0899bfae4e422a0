package barcode

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"go-pos-ws/internal/model"
)

func TestResolve(t *testing.T) {
	id := uuid.MustParse("0a1b2c3d-4e5f-6071-8293-a4b5c6d7e8f9")

	p := model.Product{Barcode: "8901234567890", SKU: "RICE-5KG"}
	p.ID = id
	assert.Equal(t, "8901234567890", Resolve(p))

	p.Barcode = ""
	assert.Equal(t, "RICE-5KG", Resolve(p))

	p.SKU = "  "
	assert.Equal(t, "PRD0A1B2C3D4E", Resolve(p))
}

func TestDerive_Deterministic(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, Derive(id), Derive(id))
	assert.True(t, IsDerived(Derive(id)))
	assert.False(t, IsDerived("RICE-5KG"))
	assert.False(t, IsDerived("PRD0A1B2C3D4Z"))
}

func TestMatch(t *testing.T) {
	p := model.Product{SKU: "Milk-1L"}
	p.ID = uuid.New()

	assert.True(t, Match(p, "milk-1l"))
	assert.True(t, Match(p, Derive(p.ID)))
	assert.False(t, Match(p, ""))
	assert.False(t, Match(p, "bread"))
}
