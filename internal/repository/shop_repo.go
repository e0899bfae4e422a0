package repository

import (
	"context"

	"go-pos-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ShopRepository interface {
	Create(ctx context.Context, shop *model.Shop) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Shop, error)
	FindFirst(ctx context.Context) (*model.Shop, error)
	Update(ctx context.Context, shop *model.Shop) error
}

type shopRepo struct {
	db *gorm.DB
}

func NewShopRepo(db *gorm.DB) ShopRepository {
	return &shopRepo{db}
}

func (r *shopRepo) Create(ctx context.Context, shop *model.Shop) error {
	return r.db.WithContext(ctx).Create(shop).Error
}

func (r *shopRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Shop, error) {
	var shop model.Shop
	if err := r.db.WithContext(ctx).First(&shop, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &shop, nil
}

// FindFirst returns the oldest shop, used when seeding a fresh database.
func (r *shopRepo) FindFirst(ctx context.Context) (*model.Shop, error) {
	var shop model.Shop
	if err := r.db.WithContext(ctx).Order("created_at ASC").First(&shop).Error; err != nil {
		return nil, translate(err)
	}
	return &shop, nil
}

func (r *shopRepo) Update(ctx context.Context, shop *model.Shop) error {
	return r.db.WithContext(ctx).Model(shop).
		Select("name", "address", "phone", "currency_symbol", "updated_by").
		Updates(shop).Error
}
