package model

import (
	"time"

	"github.com/google/uuid"
)

type NotificationKind string

const (
	NotifyLowStock      NotificationKind = "low_stock"
	NotifyOutOfStock    NotificationKind = "out_of_stock"
	NotifyPartialCommit NotificationKind = "partial_commit"
	NotifyGeneral       NotificationKind = "general"
)

// Notification is a message for a shop, or for one user of it when UserID is set.
type Notification struct {
	BaseModel
	ShopID  uuid.UUID        `gorm:"type:uuid;not null;index" json:"shop_id"`
	UserID  *uuid.UUID       `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Kind    NotificationKind `gorm:"type:varchar(30);not null" json:"kind"`
	Title   string           `gorm:"type:varchar(255);not null" json:"title"`
	Message string           `gorm:"type:text" json:"message"`
	ReadAt  *time.Time       `json:"read_at,omitempty"`
}
