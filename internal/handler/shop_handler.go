package handler

import (
	"go-pos-ws/internal/middleware"
	"go-pos-ws/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ShopHandler struct {
	service service.ShopService
}

func NewShopHandler(s service.ShopService) *ShopHandler {
	return &ShopHandler{service: s}
}

// GET /api/v1/shop
func (h *ShopHandler) GetShop(c *fiber.Ctx) error {
	shop, err := h.service.Get(c.UserContext(), middleware.Session(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(shop)
}

// PUT /api/v1/shop
func (h *ShopHandler) UpdateShop(c *fiber.Ctx) error {
	var req service.ShopRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	shop, err := h.service.Update(c.UserContext(), middleware.Session(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Shop updated", "data": shop})
}
