// Package payment validates the method-specific input of a checkout and
// produces the PaymentDetails stored with a transaction.
package payment

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type Method string

const (
	Cash Method = "cash"
	Card Method = "card"
	UPI  Method = "upi"
)

var (
	ErrUnknownMethod        = errors.New("unknown payment method")
	ErrInsufficientPayment  = errors.New("insufficient payment")
	ErrInvalidAmount        = errors.New("invalid amount paid")
	ErrInvalidCardReference = errors.New("invalid card reference, enter the last 4 digits")
	ErrInvalidUPIID         = errors.New("invalid UPI id")
	ErrMalformedDetails     = errors.New("payment details do not match payment method")
)

// ParseMethod normalizes a method name from a request.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case Cash, Card, UPI:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

type CashDetails struct {
	AmountPaid   decimal.Decimal `json:"amount_paid"`
	ChangeAmount decimal.Decimal `json:"change_amount"`
}

type CardDetails struct {
	Last4 string `json:"last4"`
}

type UPIDetails struct {
	Reference string `json:"reference"`
}

// Details is a tagged variant: exactly the field selected by Method is set.
type Details struct {
	Method Method       `json:"method"`
	Cash   *CashDetails `json:"cash,omitempty"`
	Card   *CardDetails `json:"card,omitempty"`
	UPI    *UPIDetails  `json:"upi,omitempty"`
}

// Validate checks the variant invariant.
func (d Details) Validate() error {
	set := 0
	for _, present := range []bool{d.Cash != nil, d.Card != nil, d.UPI != nil} {
		if present {
			set++
		}
	}
	if set != 1 {
		return ErrMalformedDetails
	}
	switch d.Method {
	case Cash:
		if d.Cash == nil {
			return ErrMalformedDetails
		}
	case Card:
		if d.Card == nil {
			return ErrMalformedDetails
		}
	case UPI:
		if d.UPI == nil {
			return ErrMalformedDetails
		}
	default:
		return ErrUnknownMethod
	}
	return nil
}

// Input is the raw text the cashier typed for the chosen method.
type Input struct {
	AmountPaid string `json:"amount_paid"`
	Reference  string `json:"reference"`
}

// Build validates in against total and returns the details to persist.
func Build(method Method, in Input, total decimal.Decimal) (Details, error) {
	switch method {
	case Cash:
		paid, err := decimal.NewFromString(strings.TrimSpace(in.AmountPaid))
		if err != nil || paid.IsNegative() || !paid.Equal(paid.Round(2)) {
			return Details{}, ErrInvalidAmount
		}
		total = total.Round(2)
		if paid.LessThan(total) {
			return Details{}, fmt.Errorf("%w: paid %s of %s", ErrInsufficientPayment, paid.StringFixed(2), total.StringFixed(2))
		}
		return Details{Method: Cash, Cash: &CashDetails{
			AmountPaid:   paid,
			ChangeAmount: paid.Sub(total),
		}}, nil

	case Card:
		ref := strings.TrimSpace(in.Reference)
		if !isLast4(ref) {
			return Details{}, ErrInvalidCardReference
		}
		return Details{Method: Card, Card: &CardDetails{Last4: ref}}, nil

	case UPI:
		ref := strings.TrimSpace(in.Reference)
		if !strings.Contains(ref, "@") {
			return Details{}, ErrInvalidUPIID
		}
		return Details{Method: UPI, UPI: &UPIDetails{Reference: ref}}, nil
	}
	return Details{}, ErrUnknownMethod
}

func isLast4(s string) bool {
	if len(s) != 4 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
