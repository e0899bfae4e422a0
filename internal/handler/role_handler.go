package handler

import (
	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"

	"github.com/gofiber/fiber/v2"
)

type RoleHandler struct {
	privilegeRepo repository.PrivilegeRepository
}

func NewRoleHandler(privilegeRepo repository.PrivilegeRepository) *RoleHandler {
	return &RoleHandler{privilegeRepo: privilegeRepo}
}

// GetRoles returns the fixed roles with their default grants
// GET /api/v1/roles
func (h *RoleHandler) GetRoles(c *fiber.Ctx) error {
	return c.JSON(model.RoleInfos())
}

// GetPrivileges lists every stored permission
// GET /api/v1/privileges
func (h *RoleHandler) GetPrivileges(c *fiber.Ctx) error {
	privileges, err := h.privilegeRepo.FindAll(c.UserContext())
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch privileges"})
	}
	return c.JSON(privileges)
}
