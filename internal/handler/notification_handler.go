package handler

import (
	"go-pos-ws/internal/middleware"
	"go-pos-ws/internal/service"

	"github.com/gofiber/fiber/v2"
)

type NotificationHandler struct {
	service service.NotificationService
}

func NewNotificationHandler(s service.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: s}
}

// GET /api/v1/notifications?unread=true&limit=50
func (h *NotificationHandler) GetNotifications(c *fiber.Ctx) error {
	list, err := h.service.List(c.UserContext(), middleware.Session(c), c.QueryBool("unread"), queryInt(c, "limit", 50))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(list)
}

// GET /api/v1/notifications/unread-count
func (h *NotificationHandler) UnreadCount(c *fiber.Ctx) error {
	n, err := h.service.CountUnread(c.UserContext(), middleware.Session(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"unread": n})
}

// POST /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.service.MarkRead(c.UserContext(), middleware.Session(c), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Notification marked as read"})
}

// POST /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	if err := h.service.MarkAllRead(c.UserContext(), middleware.Session(c)); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "All notifications marked as read"})
}
