package service

import (
	"context"
	"errors"
	"strings"

	"go-pos-ws/internal/events"
	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
	"go-pos-ws/internal/session"
	"go-pos-ws/pkg/validator"
)

type ShopService interface {
	Get(ctx context.Context, sess session.Context) (*model.Shop, error)
	Update(ctx context.Context, sess session.Context, req *ShopRequest) (*model.Shop, error)
}

type ShopRequest struct {
	Name           string `json:"name" validate:"required,max=255"`
	Address        string `json:"address"`
	Phone          string `json:"phone" validate:"max=30"`
	CurrencySymbol string `json:"currency_symbol" validate:"max=8"`
}

type shopService struct {
	shopRepo repository.ShopRepository
	bus      events.Publisher
}

func NewShopService(shopRepo repository.ShopRepository, bus events.Publisher) ShopService {
	return &shopService{shopRepo: shopRepo, bus: bus}
}

func (s *shopService) Get(ctx context.Context, sess session.Context) (*model.Shop, error) {
	if err := sess.Validate(); err != nil {
		return nil, err
	}
	shop, err := s.shopRepo.FindByID(ctx, sess.ShopID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrShopNotFound
	}
	return shop, err
}

func (s *shopService) Update(ctx context.Context, sess session.Context, req *ShopRequest) (*model.Shop, error) {
	shop, err := s.Get(ctx, sess)
	if err != nil {
		return nil, err
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := validator.Check(req); err != nil {
		return nil, err
	}

	shop.Name = req.Name
	shop.Address = strings.TrimSpace(req.Address)
	shop.Phone = strings.TrimSpace(req.Phone)
	if sym := strings.TrimSpace(req.CurrencySymbol); sym != "" {
		shop.CurrencySymbol = sym
	}
	shop.Audit(sess.Actor())
	if err := s.shopRepo.Update(ctx, shop); err != nil {
		return nil, err
	}
	publish(ctx, s.bus, events.TypeShopUpdated, shop.ID, sess.Name+" updated the shop profile", shop)
	return shop, nil
}
