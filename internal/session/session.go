// Package session carries the identity of the caller explicitly through
// the service layer.
package session

import (
	"errors"

	"github.com/google/uuid"

	"go-pos-ws/internal/model"
)

var (
	ErrMissingShopContext = errors.New("missing shop context")
	ErrForbidden          = errors.New("forbidden")
)

// Context is who is acting and for which shop.
type Context struct {
	UserID      uuid.UUID
	ShopID      uuid.UUID
	Role        model.Role
	Name        string
	Email       string
	Permissions []string
}

// Validate fails when the caller or the shop is unknown.
func (c Context) Validate() error {
	if c.UserID == uuid.Nil || c.ShopID == uuid.Nil {
		return ErrMissingShopContext
	}
	return nil
}

func (c Context) Can(code string) bool {
	for _, p := range c.Permissions {
		if p == code {
			return true
		}
	}
	return false
}

// Actor is the value written to audit columns.
func (c Context) Actor() string {
	if c.UserID == uuid.Nil {
		return "system"
	}
	return c.UserID.String()
}

// System is used by seeding and maintenance commands.
func System(shopID uuid.UUID) Context {
	return Context{ShopID: shopID, Role: model.RoleOwner, Name: "system"}
}
