package model

import (
	"fmt"
	"sort"
	"sync"
)

// Privilege is the persisted form of a permission code.
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g. "product:create"
	Name string `gorm:"type:varchar(100)" json:"name"`                     // e.g. "Create Product"
}

// Built-in permission codes.
const (
	PermUserView            = "user:view"
	PermUserCreate          = "user:create"
	PermUserUpdate          = "user:update"
	PermUserDelete          = "user:delete"
	PermUserUpdatePrivilege = "user:update_privilege"

	PermProductView    = "product:view"
	PermProductCreate  = "product:create"
	PermProductUpdate  = "product:update"
	PermProductRestock = "product:restock"

	PermBillingCheckout = "billing:checkout"

	PermTransactionView    = "transaction:view"
	PermTransactionViewAll = "transaction:view_all"

	PermDashboardView = "dashboard:view"
	PermShopUpdate    = "shop:update"

	PermNotificationView = "notification:view"
)

var (
	permMu      sync.RWMutex
	permissions = map[string]string{
		PermUserView:            "View Staff",
		PermUserCreate:          "Create Staff",
		PermUserUpdate:          "Update Staff",
		PermUserDelete:          "Delete Staff",
		PermUserUpdatePrivilege: "Update Staff Privileges",
		PermProductView:         "View Product",
		PermProductCreate:       "Create Product",
		PermProductUpdate:       "Update Product",
		PermProductRestock:      "Restock Product",
		PermBillingCheckout:     "Run Billing",
		PermTransactionView:     "View Own Sales",
		PermTransactionViewAll:  "View All Sales",
		PermDashboardView:       "View Dashboard",
		PermShopUpdate:          "Update Shop Profile",
		PermNotificationView:    "View Notifications",
	}
)

// RegisterPermission adds a permission code to the registry. Re-registering a
// code with a different label is an error.
func RegisterPermission(code, label string) error {
	if code == "" {
		return fmt.Errorf("permission code is empty")
	}
	permMu.Lock()
	defer permMu.Unlock()
	if existing, ok := permissions[code]; ok && existing != label {
		return fmt.Errorf("permission %q already registered as %q", code, existing)
	}
	permissions[code] = label
	return nil
}

// LookupPermission returns the label of a registered code.
func LookupPermission(code string) (string, bool) {
	permMu.RLock()
	defer permMu.RUnlock()
	label, ok := permissions[code]
	return label, ok
}

// Permissions returns every registered permission sorted by code.
func Permissions() []Privilege {
	permMu.RLock()
	defer permMu.RUnlock()
	out := make([]Privilege, 0, len(permissions))
	for code, label := range permissions {
		out = append(out, Privilege{Code: code, Name: label})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// UnknownPermissions returns the codes that are not in the registry.
func UnknownPermissions(codes []string) []string {
	permMu.RLock()
	defer permMu.RUnlock()
	var unknown []string
	for _, c := range codes {
		if _, ok := permissions[c]; !ok {
			unknown = append(unknown, c)
		}
	}
	return unknown
}
