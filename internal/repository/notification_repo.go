package repository

import (
	"context"

	"go-pos-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	FindForUser(ctx context.Context, shopID, userID uuid.UUID, unreadOnly bool, limit int) ([]model.Notification, error)
	CountUnread(ctx context.Context, shopID, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, shopID, userID, id uuid.UUID) error
	MarkAllRead(ctx context.Context, shopID, userID uuid.UUID) error
}

type notificationRepo struct {
	db *gorm.DB
}

func NewNotificationRepo(db *gorm.DB) NotificationRepository {
	return &notificationRepo{db}
}

// visible matches shop-wide notifications and those addressed to the user.
func (r *notificationRepo) visible(ctx context.Context, shopID, userID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("shop_id = ? AND (user_id IS NULL OR user_id = ?)", shopID, userID)
}

func (r *notificationRepo) Create(ctx context.Context, n *model.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *notificationRepo) FindForUser(ctx context.Context, shopID, userID uuid.UUID, unreadOnly bool, limit int) ([]model.Notification, error) {
	var list []model.Notification
	tx := r.visible(ctx, shopID, userID).Order("created_at DESC")
	if unreadOnly {
		tx = tx.Where("read_at IS NULL")
	}
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	err := tx.Find(&list).Error
	return list, err
}

func (r *notificationRepo) CountUnread(ctx context.Context, shopID, userID uuid.UUID) (int64, error) {
	var n int64
	err := r.visible(ctx, shopID, userID).Where("read_at IS NULL").Count(&n).Error
	return n, err
}

func (r *notificationRepo) MarkRead(ctx context.Context, shopID, userID, id uuid.UUID) error {
	res := r.visible(ctx, shopID, userID).
		Where("id = ?", id).
		Update("read_at", gorm.Expr("COALESCE(read_at, NOW())"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *notificationRepo) MarkAllRead(ctx context.Context, shopID, userID uuid.UUID) error {
	return r.visible(ctx, shopID, userID).
		Where("read_at IS NULL").
		Update("read_at", gorm.Expr("NOW()")).Error
}
