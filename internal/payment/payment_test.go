package payment

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_Cash(t *testing.T) {
	total := decimal.RequireFromString("100.00")

	d, err := Build(Cash, Input{AmountPaid: "150.00"}, total)
	require.NoError(t, err)
	require.NotNil(t, d.Cash)
	assert.Equal(t, Cash, d.Method)
	assert.True(t, d.Cash.ChangeAmount.Equal(decimal.RequireFromString("50.00")), d.Cash.ChangeAmount.String())
	assert.NoError(t, d.Validate())

	_, err = Build(Cash, Input{AmountPaid: "80.00"}, total)
	assert.ErrorIs(t, err, ErrInsufficientPayment)

	d, err = Build(Cash, Input{AmountPaid: "100"}, total)
	require.NoError(t, err)
	assert.True(t, d.Cash.ChangeAmount.IsZero())

	_, err = Build(Cash, Input{AmountPaid: "abc"}, total)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = Build(Cash, Input{AmountPaid: "-5"}, total)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestBuild_CashUsesCurrencyPrecision(t *testing.T) {
	total := decimal.RequireFromString("3.33333")

	d, err := Build(Cash, Input{AmountPaid: "3.33"}, total)
	require.NoError(t, err)
	assert.True(t, d.Cash.ChangeAmount.IsZero(), d.Cash.ChangeAmount.String())

	_, err = Build(Cash, Input{AmountPaid: "3.335"}, total)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestBuild_Card(t *testing.T) {
	total := decimal.NewFromInt(10)
	tests := []struct {
		ref string
		ok  bool
	}{
		{"1234", true},
		{" 0042 ", true},
		{"12", false},
		{"12345", false},
		{"12a4", false},
		{"", false},
	}
	for _, tt := range tests {
		d, err := Build(Card, Input{Reference: tt.ref}, total)
		if tt.ok {
			require.NoError(t, err, tt.ref)
			assert.Len(t, d.Card.Last4, 4)
		} else {
			assert.ErrorIs(t, err, ErrInvalidCardReference, tt.ref)
		}
	}
}

func TestBuild_UPI(t *testing.T) {
	total := decimal.NewFromInt(10)

	_, err := Build(UPI, Input{Reference: "aliceshop"}, total)
	assert.ErrorIs(t, err, ErrInvalidUPIID)

	d, err := Build(UPI, Input{Reference: "alice@bank"}, total)
	require.NoError(t, err)
	assert.Equal(t, "alice@bank", d.UPI.Reference)
	assert.Nil(t, d.Cash)
	assert.Nil(t, d.Card)
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod(" CASH ")
	require.NoError(t, err)
	assert.Equal(t, Cash, m)

	_, err = ParseMethod("cheque")
	assert.ErrorIs(t, err, ErrUnknownMethod)
}

func TestDetails_Validate(t *testing.T) {
	assert.ErrorIs(t, Details{Method: Cash}.Validate(), ErrMalformedDetails)
	assert.ErrorIs(t, Details{Method: Card, UPI: &UPIDetails{Reference: "a@b"}}.Validate(), ErrMalformedDetails)
	assert.ErrorIs(t, Details{
		Method: Card,
		Card:   &CardDetails{Last4: "1234"},
		UPI:    &UPIDetails{Reference: "a@b"},
	}.Validate(), ErrMalformedDetails)
	assert.NoError(t, Details{Method: UPI, UPI: &UPIDetails{Reference: "a@b"}}.Validate())
}
