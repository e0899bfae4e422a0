package service

import (
	"context"
	"testing"
	"time"

	"go-pos-ws/internal/cart"
	"go-pos-ws/internal/model"
	"go-pos-ws/pkg/jwt"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuth_LoginAuthenticateLogout(t *testing.T) {
	users := newMemUsers()
	shopID := uuid.New()
	u := seedUser(t, users, shopID, model.RoleCashier, "cashier@shop.test")
	carts := cart.NewRegistry()
	svc := NewAuthService(users, jwt.NewManager("test-secret", time.Hour), nil, carts, 5*time.Minute)
	ctx := context.Background()

	_, err := svc.Login(ctx, "cashier@shop.test", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	resp, err := svc.Login(ctx, " Cashier@Shop.test ", "secret123")
	require.NoError(t, err)
	assert.Equal(t, model.RoleCashier, resp.Role.Code)
	assert.ElementsMatch(t, model.RoleCashier.DefaultGrants(), resp.Privileges)

	sess, err := svc.Authenticate(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, sess.UserID)
	assert.Equal(t, shopID, sess.ShopID)
	assert.True(t, sess.Can(model.PermBillingCheckout))

	_, err = svc.ValidateToken(ctx, resp.Token)
	require.NoError(t, err)

	first := carts.Get(shopID, u.ID)
	require.NoError(t, svc.Logout(ctx, sess))
	assert.NotSame(t, first, carts.Get(shopID, u.ID))

	_, err = svc.Authenticate(ctx, resp.Token)
	assert.ErrorIs(t, err, ErrSessionReplaced)
}

func TestAuth_SecondLoginReplacesFirst(t *testing.T) {
	users := newMemUsers()
	seedUser(t, users, uuid.New(), model.RoleManager, "m@shop.test")
	svc := NewAuthService(users, jwt.NewManager("test-secret", time.Hour), nil, nil, 5*time.Minute)
	ctx := context.Background()

	first, err := svc.Login(ctx, "m@shop.test", "secret123")
	require.NoError(t, err)
	second, err := svc.Login(ctx, "m@shop.test", "secret123")
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, first.Token)
	assert.ErrorIs(t, err, ErrSessionReplaced)
	_, err = svc.Authenticate(ctx, second.Token)
	assert.NoError(t, err)
}

func TestAuth_InactiveAndIdle(t *testing.T) {
	users := newMemUsers()
	u := seedUser(t, users, uuid.New(), model.RoleStaff, "s@shop.test")
	svc := NewAuthService(users, jwt.NewManager("test-secret", time.Hour), nil, nil, 5*time.Minute).(*authService)
	ctx := context.Background()

	resp, err := svc.Login(ctx, "s@shop.test", "secret123")
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(10 * time.Minute) }
	_, err = svc.ValidateToken(ctx, resp.Token)
	assert.ErrorIs(t, err, ErrSessionTimeout)

	users.users[u.ID].IsActive = false
	_, err = svc.Login(ctx, "s@shop.test", "secret123")
	assert.ErrorIs(t, err, ErrUserInactive)
}

func TestAuth_ResetPassword(t *testing.T) {
	users := newMemUsers()
	seedUser(t, users, uuid.New(), model.RoleStaff, "s@shop.test")
	svc := NewAuthService(users, jwt.NewManager("test-secret", time.Hour), nil, nil, 5*time.Minute)
	ctx := context.Background()

	assert.ErrorIs(t, svc.ResetPassword(ctx, "s@shop.test", "nope", "newpass1"), ErrWrongPassword)
	require.NoError(t, svc.ResetPassword(ctx, "s@shop.test", "secret123", "newpass1"))

	_, err := svc.Login(ctx, "s@shop.test", "newpass1")
	assert.NoError(t, err)
}
