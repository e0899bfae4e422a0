package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-pos-ws/internal/events"
	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
	"go-pos-ws/internal/session"
	"go-pos-ws/pkg/validator"

	"github.com/google/uuid"
)

type UserService interface {
	CreateUser(ctx context.Context, sess session.Context, req *CreateUserRequest) (*model.UserResponse, error)
	UpdateUser(ctx context.Context, sess session.Context, userID uuid.UUID, req *UpdateUserRequest) (*model.UserResponse, error)
	DeleteUser(ctx context.Context, sess session.Context, userID uuid.UUID) error
	UpdateUserPrivileges(ctx context.Context, sess session.Context, userID uuid.UUID, codes []string) (*model.UserResponse, error)
	GetAllUsers(ctx context.Context, sess session.Context) ([]model.UserResponse, error)
	GetUserByID(ctx context.Context, sess session.Context, id uuid.UUID) (*model.UserResponse, error)
}

type CreateUserRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	FullName    string `json:"full_name" validate:"required"`
	PhoneNumber string `json:"phone_number" validate:"max=20"`
	Role        string `json:"role" validate:"required,pos_role"`
}

type UpdateUserRequest struct {
	Email       string  `json:"email" validate:"required,email"`
	Password    *string `json:"password,omitempty" validate:"omitempty,min=6"`
	FullName    string  `json:"full_name" validate:"required"`
	PhoneNumber string  `json:"phone_number" validate:"max=20"`
	Role        string  `json:"role" validate:"required,pos_role"`
	IsActive    *bool   `json:"is_active"`
}

type userService struct {
	userRepo      repository.UserRepository
	privilegeRepo repository.PrivilegeRepository
	bus           events.Publisher
}

func NewUserService(userRepo repository.UserRepository, privilegeRepo repository.PrivilegeRepository, bus events.Publisher) UserService {
	return &userService{
		userRepo:      userRepo,
		privilegeRepo: privilegeRepo,
		bus:           bus,
	}
}

func (s *userService) emailTaken(ctx context.Context, email string) (bool, error) {
	_, err := s.userRepo.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *userService) CreateUser(ctx context.Context, sess session.Context, req *CreateUserRequest) (*model.UserResponse, error) {
	if err := sess.Validate(); err != nil {
		return nil, err
	}
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	role, err := model.ParseRole(req.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", validator.ErrValidation, err)
	}
	if !sess.Role.CanManage(role) {
		return nil, ErrCannotManageRole
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	taken, err := s.emailTaken(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailExists
	}

	privileges, err := s.privilegeRepo.FindByCodes(ctx, role.DefaultGrants())
	if err != nil {
		return nil, errors.New("failed to find privileges")
	}

	user := &model.User{
		ShopID:      sess.ShopID,
		Email:       email,
		FullName:    strings.TrimSpace(req.FullName),
		PhoneNumber: req.PhoneNumber,
		Role:        role,
		IsActive:    true,
		Privileges:  privileges,
	}
	user.Audit(sess.Actor())
	if err := user.SetPassword(req.Password); err != nil {
		return nil, errors.New("failed to hash password")
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	resp := user.ToResponse()
	s.changed(ctx, sess, "created", resp)
	return &resp, nil
}

// managed loads a user of the caller's shop that the caller may edit.
func (s *userService) managed(ctx context.Context, sess session.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.FindInShop(ctx, sess.ShopID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	if user.ID != sess.UserID && !sess.Role.CanManage(user.Role) {
		return nil, ErrCannotManageRole
	}
	return user, nil
}

func (s *userService) UpdateUser(ctx context.Context, sess session.Context, userID uuid.UUID, req *UpdateUserRequest) (*model.UserResponse, error) {
	if err := sess.Validate(); err != nil {
		return nil, err
	}
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	role, err := model.ParseRole(req.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", validator.ErrValidation, err)
	}
	user, err := s.managed(ctx, sess, userID)
	if err != nil {
		return nil, err
	}
	self := user.ID == sess.UserID
	if self && (role != user.Role || (req.IsActive != nil && !*req.IsActive)) {
		return nil, ErrCannotChangeSelf
	}
	if !self && !sess.Role.CanManage(role) {
		return nil, ErrCannotManageRole
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email != user.Email {
		taken, err := s.emailTaken(ctx, email)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrEmailExists
		}
	}

	roleChanged := role != user.Role
	user.Email = email
	user.FullName = strings.TrimSpace(req.FullName)
	user.PhoneNumber = req.PhoneNumber
	user.Role = role
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	user.Audit(sess.Actor())
	if req.Password != nil && *req.Password != "" {
		if err := user.SetPassword(*req.Password); err != nil {
			return nil, errors.New("failed to hash password")
		}
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	// A new role starts from that role's default grants.
	if roleChanged {
		privileges, err := s.privilegeRepo.FindByCodes(ctx, role.DefaultGrants())
		if err != nil {
			return nil, errors.New("failed to find privileges")
		}
		if err := s.userRepo.UpdatePrivileges(ctx, user, privileges); err != nil {
			return nil, err
		}
	}
	return s.reload(ctx, sess, userID, "updated")
}

func (s *userService) DeleteUser(ctx context.Context, sess session.Context, userID uuid.UUID) error {
	if err := sess.Validate(); err != nil {
		return err
	}
	if userID == sess.UserID {
		return ErrCannotChangeSelf
	}
	user, err := s.managed(ctx, sess, userID)
	if err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, sess.ShopID, user.ID, sess.Actor()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	s.changed(ctx, sess, "deleted", user.ToResponse())
	return nil
}

// UpdateUserPrivileges replaces the grants of a user. Every code must be
// registered, and callers other than owners can only hand out what they hold.
func (s *userService) UpdateUserPrivileges(ctx context.Context, sess session.Context, userID uuid.UUID, codes []string) (*model.UserResponse, error) {
	if err := sess.Validate(); err != nil {
		return nil, err
	}
	if unknown := model.UnknownPermissions(codes); len(unknown) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPermission, strings.Join(unknown, ", "))
	}
	if userID == sess.UserID {
		return nil, ErrCannotChangeSelf
	}
	user, err := s.managed(ctx, sess, userID)
	if err != nil {
		return nil, err
	}
	if sess.Role != model.RoleOwner {
		for _, code := range codes {
			if !sess.Can(code) {
				return nil, fmt.Errorf("%w: cannot grant %s", session.ErrForbidden, code)
			}
		}
	}

	privileges, err := s.privilegeRepo.FindByCodes(ctx, codes)
	if err != nil {
		return nil, errors.New("failed to find privileges")
	}
	if err := s.userRepo.UpdatePrivileges(ctx, user, privileges); err != nil {
		return nil, err
	}
	user.Audit(sess.Actor())
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return s.reload(ctx, sess, userID, "privileges_updated")
}

func (s *userService) reload(ctx context.Context, sess session.Context, userID uuid.UUID, action string) (*model.UserResponse, error) {
	user, err := s.userRepo.FindInShop(ctx, sess.ShopID, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	resp := user.ToResponse()
	s.changed(ctx, sess, action, resp)
	return &resp, nil
}

func (s *userService) changed(ctx context.Context, sess session.Context, action string, user model.UserResponse) {
	publish(ctx, s.bus, events.TypeUserChanged, sess.ShopID,
		fmt.Sprintf("%s %s user '%s'", sess.Name, strings.ReplaceAll(action, "_", " "), user.FullName),
		map[string]interface{}{"action": action, "user": user})
}

func (s *userService) GetAllUsers(ctx context.Context, sess session.Context) ([]model.UserResponse, error) {
	if err := sess.Validate(); err != nil {
		return nil, err
	}
	users, err := s.userRepo.FindByShop(ctx, sess.ShopID)
	if err != nil {
		return nil, err
	}
	responses := make([]model.UserResponse, len(users))
	for i := range users {
		responses[i] = users[i].ToResponse()
	}
	return responses, nil
}

func (s *userService) GetUserByID(ctx context.Context, sess session.Context, id uuid.UUID) (*model.UserResponse, error) {
	if err := sess.Validate(); err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindInShop(ctx, sess.ShopID, id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	resp := user.ToResponse()
	return &resp, nil
}
