package handler

import (
	"errors"
	"fmt"
	"log"
	"strconv"

	"go-pos-ws/internal/cart"
	"go-pos-ws/internal/payment"
	"go-pos-ws/internal/repository"
	"go-pos-ws/internal/service"
	"go-pos-ws/internal/session"
	"go-pos-ws/pkg/jwt"
	"go-pos-ws/pkg/validator"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var statusByError = []struct {
	err    error
	status int
}{
	{errBadParam, 400},
	{validator.ErrValidation, 400},
	{payment.ErrUnknownMethod, 400},
	{payment.ErrInsufficientPayment, 400},
	{payment.ErrInvalidAmount, 400},
	{payment.ErrInvalidCardReference, 400},
	{payment.ErrInvalidUPIID, 400},
	{payment.ErrMalformedDetails, 400},
	{service.ErrEmptyBill, 400},
	{service.ErrInvalidQuantity, 400},
	{service.ErrUnknownPermission, 400},
	{service.ErrWrongPassword, 400},
	{cart.ErrFractionalQuantity, 400},
	{cart.ErrQuantityPrecision, 400},
	{cart.ErrProductMismatch, 400},

	{session.ErrMissingShopContext, 401},
	{service.ErrInvalidCredentials, 401},
	{service.ErrUserInactive, 401},
	{service.ErrSessionTimeout, 401},
	{service.ErrSessionReplaced, 401},
	{jwt.ErrInvalidToken, 401},
	{jwt.ErrMissingToken, 401},

	{session.ErrForbidden, 403},
	{service.ErrCannotManageRole, 403},
	{service.ErrCannotChangeSelf, 403},

	{service.ErrProductNotFound, 404},
	{service.ErrTransactionNotFound, 404},
	{service.ErrUserNotFound, 404},
	{service.ErrShopNotFound, 404},
	{service.ErrNotificationNotFound, 404},
	{cart.ErrLineNotFound, 404},
	{repository.ErrNotFound, 404},

	{service.ErrDuplicateSKU, 409},
	{service.ErrEmailExists, 409},
	{cart.ErrInsufficientStock, 409},
	{cart.ErrCheckoutInProgress, 409},
	{repository.ErrStockConflict, 409},
}

// fail writes err with the status its kind maps to. Unknown errors are
// logged and hidden behind a 500.
func fail(c *fiber.Ctx, err error) error {
	for _, m := range statusByError {
		if errors.Is(err, m.err) {
			return c.Status(m.status).JSON(fiber.Map{"error": err.Error()})
		}
	}
	log.Printf("%s %s: %v", c.Method(), c.Path(), err)
	return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
}

var errBadParam = errors.New("invalid parameter")

func paramUUID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s", errBadParam, name)
	}
	return id, nil
}

func queryInt(c *fiber.Ctx, name string, def int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return def
	}
	return v
}
