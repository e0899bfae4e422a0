package handler

import (
	"errors"
	"strconv"

	"go-pos-ws/internal/middleware"
	"go-pos-ws/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CheckoutHandler struct {
	service service.CheckoutService
}

func NewCheckoutHandler(s service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{service: s}
}

// AddItemRequest names the product by id or by a scanned code.
type AddItemRequest struct {
	ProductID *uuid.UUID `json:"product_id"`
	Code      string     `json:"code"`
}

type UpdateLineRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
}

func lineIndex(c *fiber.Ctx) (int, error) {
	i, err := strconv.Atoi(c.Params("index"))
	if err != nil {
		return 0, errBadParam
	}
	return i, nil
}

// GET /api/v1/cart
func (h *CheckoutHandler) GetCart(c *fiber.Ctx) error {
	view, err := h.service.View(middleware.Session(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(view)
}

// POST /api/v1/cart/items
func (h *CheckoutHandler) AddItem(c *fiber.Ctx) error {
	var req AddItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	var (
		view *service.CartView
		err  error
	)
	sess := middleware.Session(c)
	switch {
	case req.ProductID != nil:
		view, err = h.service.AddItem(c.UserContext(), sess, *req.ProductID)
	case req.Code != "":
		view, err = h.service.AddByCode(c.UserContext(), sess, req.Code)
	default:
		return c.Status(400).JSON(fiber.Map{"error": "product_id or code is required"})
	}
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(view)
}

// PUT /api/v1/cart/items/:index
func (h *CheckoutHandler) UpdateLine(c *fiber.Ctx) error {
	index, err := lineIndex(c)
	if err != nil {
		return fail(c, err)
	}
	var req UpdateLineRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	view, err := h.service.UpdateQuantity(c.UserContext(), middleware.Session(c), index, req.Quantity)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(view)
}

// DELETE /api/v1/cart/items/:index
func (h *CheckoutHandler) RemoveLine(c *fiber.Ctx) error {
	index, err := lineIndex(c)
	if err != nil {
		return fail(c, err)
	}
	view, err := h.service.RemoveItem(middleware.Session(c), index)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(view)
}

// DELETE /api/v1/cart
func (h *CheckoutHandler) ClearCart(c *fiber.Ctx) error {
	view, err := h.service.Clear(middleware.Session(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(view)
}

// Checkout pays the current bill.
// POST /api/v1/checkout
func (h *CheckoutHandler) Checkout(c *fiber.Ctx) error {
	var req service.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	result, err := h.service.Checkout(c.UserContext(), middleware.Session(c), req)
	if err != nil {
		// The sale exists; the cashier gets the receipt and a warning.
		if errors.Is(err, service.ErrPartialCommit) && result != nil {
			return c.Status(201).JSON(result)
		}
		return fail(c, err)
	}
	return c.Status(201).JSON(result)
}
