package handler

import (
	"go-pos-ws/internal/middleware"
	"go-pos-ws/internal/service"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	service service.DashboardService
}

func NewDashboardHandler(s service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: s}
}

// GetSales returns daily totals per payment method for charts
// Query params: days (default 7)
func (h *DashboardHandler) GetSales(c *fiber.Ctx) error {
	days := queryInt(c, "days", 7)
	if days <= 0 {
		days = 7
	}

	data, err := h.service.GetDailySales(c.UserContext(), middleware.Session(c), days)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"period": days,
		"data":   data,
	})
}

// GetDashboardStats returns overview statistics
func (h *DashboardHandler) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := h.service.GetStats(c.UserContext(), middleware.Session(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(stats)
}

func (h *DashboardHandler) GetTopProducts(c *fiber.Ctx) error {
	products, err := h.service.GetTopProducts(c.UserContext(), middleware.Session(c), queryInt(c, "limit", 5))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(products)
}
