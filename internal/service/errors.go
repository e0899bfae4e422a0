package service

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrSessionTimeout     = errors.New("session expired due to inactivity")
	ErrSessionReplaced    = errors.New("session expired (logged in on another device)")
	ErrEmailExists        = errors.New("email already exists")
	ErrCannotManageRole   = errors.New("not allowed to manage users with this role")
	ErrCannotChangeSelf   = errors.New("cannot change your own role, status or privileges")
	ErrUnknownPermission  = errors.New("unknown permission code")

	ErrProductNotFound     = errors.New("product not found")
	ErrDuplicateSKU        = errors.New("SKU already exists")
	ErrInvalidQuantity     = errors.New("quantity must be greater than zero")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrShopNotFound        = errors.New("shop not found")

	ErrNotificationNotFound = errors.New("notification not found")

	ErrEmptyBill = errors.New("bill is empty")
	// ErrPartialCommit means the sale was recorded but at least one stock or
	// sales update after it failed. The transaction is not rolled back.
	ErrPartialCommit = errors.New("sale recorded but inventory update failed")
)
