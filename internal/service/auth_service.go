package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"go-pos-ws/internal/cart"
	"go-pos-ws/internal/events"
	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
	"go-pos-ws/internal/session"
	"go-pos-ws/pkg/jwt"
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResponse, error)
	Logout(ctx context.Context, sess session.Context) error
	ResetPassword(ctx context.Context, email, oldPassword, newPassword string) error
	ValidateToken(ctx context.Context, tokenString string) (*TokenValidationResponse, error)
	// Authenticate turns a bearer token into the caller's session.
	Authenticate(ctx context.Context, tokenString string) (session.Context, error)
	Heartbeat(ctx context.Context, sess session.Context) error
}

type LoginResponse struct {
	Token      string             `json:"token"`
	User       model.UserResponse `json:"user"`
	Role       model.RoleInfo     `json:"role"`
	Privileges []string           `json:"privileges"`
}

type TokenValidationResponse struct {
	User       model.UserResponse `json:"user"`
	Role       model.RoleInfo     `json:"role"`
	Privileges []string           `json:"privileges"`
}

type authService struct {
	userRepo    repository.UserRepository
	tokens      *jwt.Manager
	bus         events.Publisher
	carts       *cart.Registry
	idleTimeout time.Duration
	now         func() time.Time
}

func NewAuthService(userRepo repository.UserRepository, tokens *jwt.Manager, bus events.Publisher, carts *cart.Registry, idleTimeout time.Duration) AuthService {
	return &authService{
		userRepo:    userRepo,
		tokens:      tokens,
		bus:         bus,
		carts:       carts,
		idleTimeout: idleTimeout,
		now:         time.Now,
	}
}

func roleInfo(r model.Role) model.RoleInfo {
	return model.RoleInfo{Code: r, Name: r.Label(), Permissions: r.DefaultGrants()}
}

func (s *authService) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	// One session per user: a new version invalidates older tokens.
	now := s.now()
	user.TokenVersion = uuid.New().String()
	user.LastSeenAt = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, errors.New("failed to update session")
	}

	privileges := user.GetPrivilegeCodes()
	token, err := s.tokens.GenerateToken(jwt.Claims{
		UserID:       user.ID,
		ShopID:       user.ShopID,
		Email:        user.Email,
		Name:         user.FullName,
		Role:         string(user.Role),
		Privileges:   privileges,
		TokenVersion: user.TokenVersion,
	})
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	publish(ctx, s.bus, events.TypeUserStatus, user.ShopID, user.FullName+" signed in",
		map[string]interface{}{"user_id": user.ID, "status": "online", "last_seen_at": now})

	return &LoginResponse{
		Token:      token,
		User:       user.ToResponse(),
		Role:       roleInfo(user.Role),
		Privileges: privileges,
	}, nil
}

// Logout rotates the token version and forgets the cashier's open bill.
func (s *authService) Logout(ctx context.Context, sess session.Context) error {
	if err := sess.Validate(); err != nil {
		return err
	}
	if err := s.userRepo.UpdateTokenVersion(ctx, sess.UserID, uuid.New().String()); err != nil {
		return err
	}
	if s.carts != nil {
		s.carts.Drop(sess.ShopID, sess.UserID)
	}
	publish(ctx, s.bus, events.TypeUserStatus, sess.ShopID, sess.Name+" signed out",
		map[string]interface{}{"user_id": sess.UserID, "status": "offline"})
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, email, oldPassword, newPassword string) error {
	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return ErrUserNotFound
	}
	if !user.CheckPassword(oldPassword) {
		return ErrWrongPassword
	}
	if err := user.SetPassword(newPassword); err != nil {
		return errors.New("failed to hash new password")
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, user.Password); err != nil {
		return err
	}
	return s.userRepo.UpdateTokenVersion(ctx, user.ID, uuid.New().String())
}

// load checks the token against the stored user.
func (s *authService) load(ctx context.Context, tokenString string) (*model.User, error) {
	claims, err := s.tokens.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	if user.TokenVersion != claims.TokenVersion || user.ShopID != claims.ShopID {
		return nil, ErrSessionReplaced
	}
	return user, nil
}

func (s *authService) ValidateToken(ctx context.Context, tokenString string) (*TokenValidationResponse, error) {
	user, err := s.load(ctx, tokenString)
	if err != nil {
		return nil, err
	}
	if user.LastSeenAt == nil || s.now().Sub(*user.LastSeenAt) > s.idleTimeout {
		return nil, ErrSessionTimeout
	}
	return &TokenValidationResponse{
		User:       user.ToResponse(),
		Role:       roleInfo(user.Role),
		Privileges: user.GetPrivilegeCodes(),
	}, nil
}

// Authenticate uses the stored privileges, so a grant change applies on the
// next request without a new login.
func (s *authService) Authenticate(ctx context.Context, tokenString string) (session.Context, error) {
	user, err := s.load(ctx, tokenString)
	if err != nil {
		return session.Context{}, err
	}
	return session.Context{
		UserID:      user.ID,
		ShopID:      user.ShopID,
		Role:        user.Role,
		Name:        user.FullName,
		Email:       user.Email,
		Permissions: user.GetPrivilegeCodes(),
	}, nil
}

func (s *authService) Heartbeat(ctx context.Context, sess session.Context) error {
	if err := sess.Validate(); err != nil {
		return err
	}
	if err := s.userRepo.UpdateLastSeen(ctx, sess.UserID); err != nil {
		return err
	}
	publish(ctx, s.bus, events.TypeUserStatus, sess.ShopID, "",
		map[string]interface{}{"user_id": sess.UserID, "status": "online", "last_seen_at": s.now()})
	return nil
}
