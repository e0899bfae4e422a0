package validator

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type sample struct {
	ShopID uuid.UUID `validate:"uuid_required"`
	Role   string    `validate:"required,pos_role"`
	Unit   string    `validate:"omitempty,unit_type"`
}

func TestCheck(t *testing.T) {
	assert.NoError(t, Check(&sample{ShopID: uuid.New(), Role: "cashier", Unit: "kg"}))

	err := Check(&sample{ShopID: uuid.Nil, Role: "cashier"})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "uuid_required")

	assert.ErrorIs(t, Check(&sample{ShopID: uuid.New(), Role: "janitor"}), ErrValidation)
	assert.ErrorIs(t, Check(&sample{ShopID: uuid.New(), Role: "owner", Unit: "dozen"}), ErrValidation)
}
