package model

import (
	"fmt"
	"strings"
)

// Role is the closed set of staff roles.
type Role string

const (
	RoleOwner   Role = "owner"
	RoleManager Role = "manager"
	RoleCashier Role = "cashier"
	RoleStaff   Role = "staff"
)

// Roles in descending order of authority.
var Roles = []Role{RoleOwner, RoleManager, RoleCashier, RoleStaff}

var roleLabels = map[Role]string{
	RoleOwner:   "Owner",
	RoleManager: "Manager",
	RoleCashier: "Cashier",
	RoleStaff:   "Staff",
}

// ParseRole validates a role string coming from a request or a token.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := roleLabels[r]; !ok {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

func (r Role) Valid() bool {
	_, ok := roleLabels[r]
	return ok
}

func (r Role) Label() string {
	return roleLabels[r]
}

// rank is lower for more senior roles.
func (r Role) rank() int {
	for i, role := range Roles {
		if role == r {
			return i
		}
	}
	return len(Roles)
}

// CanManage reports whether r may create or edit a user holding other.
// Owners manage everyone; managers manage cashiers and staff.
func (r Role) CanManage(other Role) bool {
	if r == RoleOwner {
		return true
	}
	if r == RoleManager {
		return other.rank() > r.rank()
	}
	return false
}

// DefaultGrants are the permissions a user receives when created with a role.
func (r Role) DefaultGrants() []string {
	switch r {
	case RoleOwner:
		all := Permissions()
		codes := make([]string, len(all))
		for i, p := range all {
			codes[i] = p.Code
		}
		return codes
	case RoleManager:
		return []string{
			PermUserView, PermUserCreate, PermUserUpdate,
			PermProductView, PermProductCreate, PermProductUpdate, PermProductRestock,
			PermBillingCheckout, PermTransactionView, PermTransactionViewAll,
			PermDashboardView, PermNotificationView,
		}
	case RoleCashier:
		return []string{
			PermProductView, PermBillingCheckout, PermTransactionView,
			PermDashboardView, PermNotificationView,
		}
	case RoleStaff:
		return []string{PermProductView, PermNotificationView}
	}
	return nil
}

// RoleInfo describes a role for the admin screens.
type RoleInfo struct {
	Code        Role     `json:"code"`
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

func RoleInfos() []RoleInfo {
	infos := make([]RoleInfo, len(Roles))
	for i, r := range Roles {
		infos[i] = RoleInfo{Code: r, Name: r.Label(), Permissions: r.DefaultGrants()}
	}
	return infos
}
