package service

import (
	"context"
	"errors"
	"log"

	"go-pos-ws/internal/events"
	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
	"go-pos-ws/internal/session"

	"github.com/google/uuid"
)

type NotificationService interface {
	Notify(ctx context.Context, n *model.Notification) error
	List(ctx context.Context, sess session.Context, unreadOnly bool, limit int) ([]model.Notification, error)
	CountUnread(ctx context.Context, sess session.Context) (int64, error)
	MarkRead(ctx context.Context, sess session.Context, id uuid.UUID) error
	MarkAllRead(ctx context.Context, sess session.Context) error
}

type notificationService struct {
	repo repository.NotificationRepository
	bus  events.Publisher
}

func NewNotificationService(repo repository.NotificationRepository, bus events.Publisher) NotificationService {
	return &notificationService{repo: repo, bus: bus}
}

// Notify stores n and pushes it to the shop feed.
func (s *notificationService) Notify(ctx context.Context, n *model.Notification) error {
	if n.ShopID == uuid.Nil {
		return session.ErrMissingShopContext
	}
	if n.Kind == "" {
		n.Kind = model.NotifyGeneral
	}
	n.Audit("system")
	if err := s.repo.Create(ctx, n); err != nil {
		return err
	}
	if s.bus == nil {
		return nil
	}
	ev, err := events.New(events.TypeNotification, n.ShopID, n.Title, n)
	if err != nil {
		log.Printf("notifications: %v", err)
		return nil
	}
	ev.UserID = n.UserID
	if err := s.bus.Publish(ctx, ev); err != nil {
		log.Printf("notifications: publish %s: %v", n.ID, err)
	}
	return nil
}

func (s *notificationService) List(ctx context.Context, sess session.Context, unreadOnly bool, limit int) ([]model.Notification, error) {
	if err := sess.Validate(); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.FindForUser(ctx, sess.ShopID, sess.UserID, unreadOnly, limit)
}

func (s *notificationService) CountUnread(ctx context.Context, sess session.Context) (int64, error) {
	if err := sess.Validate(); err != nil {
		return 0, err
	}
	return s.repo.CountUnread(ctx, sess.ShopID, sess.UserID)
}

func (s *notificationService) MarkRead(ctx context.Context, sess session.Context, id uuid.UUID) error {
	if err := sess.Validate(); err != nil {
		return err
	}
	err := s.repo.MarkRead(ctx, sess.ShopID, sess.UserID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotificationNotFound
	}
	return err
}

func (s *notificationService) MarkAllRead(ctx context.Context, sess session.Context) error {
	if err := sess.Validate(); err != nil {
		return err
	}
	return s.repo.MarkAllRead(ctx, sess.ShopID, sess.UserID)
}
