package service

import (
	"context"
	"errors"

	"go-pos-ws/internal/model"
	"go-pos-ws/internal/receipt"
	"go-pos-ws/internal/repository"
	"go-pos-ws/internal/session"

	"github.com/google/uuid"
)

type TransactionService interface {
	List(ctx context.Context, sess session.Context, q repository.TransactionQuery) ([]model.Transaction, error)
	// Get accepts either the row id or the printed transaction id.
	Get(ctx context.Context, sess session.Context, ref string) (*model.Transaction, error)
	Receipt(ctx context.Context, sess session.Context, ref string) (*receipt.Receipt, error)
}

type transactionService struct {
	txRepo   repository.TransactionRepository
	shopRepo repository.ShopRepository
	symbol   string
}

func NewTransactionService(txRepo repository.TransactionRepository, shopRepo repository.ShopRepository, symbol string) TransactionService {
	return &transactionService{txRepo: txRepo, shopRepo: shopRepo, symbol: symbol}
}

// ownOnly limits callers without transaction:view_all to their own sales.
func ownOnly(sess session.Context, q *repository.TransactionQuery) {
	if sess.Can(model.PermTransactionViewAll) {
		return
	}
	id := sess.UserID
	q.CashierID = &id
}

func (s *transactionService) List(ctx context.Context, sess session.Context, q repository.TransactionQuery) ([]model.Transaction, error) {
	if err := sess.Validate(); err != nil {
		return nil, err
	}
	ownOnly(sess, &q)
	if q.Limit <= 0 || q.Limit > 1000 {
		q.Limit = 500
	}
	return s.txRepo.FindByShopAndRange(ctx, sess.ShopID, q)
}

func (s *transactionService) Get(ctx context.Context, sess session.Context, ref string) (*model.Transaction, error) {
	if err := sess.Validate(); err != nil {
		return nil, err
	}
	var (
		tx  *model.Transaction
		err error
	)
	if id, parseErr := uuid.Parse(ref); parseErr == nil {
		tx, err = s.txRepo.FindByID(ctx, sess.ShopID, id)
	} else {
		tx, err = s.txRepo.FindByTransactionID(ctx, sess.ShopID, ref)
	}
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}
	if !sess.Can(model.PermTransactionViewAll) && tx.CashierID != sess.UserID {
		return nil, ErrTransactionNotFound
	}
	return tx, nil
}

func (s *transactionService) Receipt(ctx context.Context, sess session.Context, ref string) (*receipt.Receipt, error) {
	tx, err := s.Get(ctx, sess, ref)
	if err != nil {
		return nil, err
	}
	shop, err := s.shopRepo.FindByID(ctx, sess.ShopID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	r := receipt.Build(tx, shop, s.symbol)
	return &r, nil
}
