package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go-pos-ws/internal/barcode"
	"go-pos-ws/internal/events"
	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
	"go-pos-ws/internal/session"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var errBoom = errors.New("storage unavailable")

// memStore is an in-memory stand-in for the product, sales and transaction tables.
type memStore struct {
	mu           sync.Mutex
	products     map[uuid.UUID]*model.Product
	transactions []*model.Transaction

	failInsert    bool
	failDecrement uuid.UUID
	failSales     uuid.UUID
}

func newMemStore(products ...model.Product) *memStore {
	m := &memStore{products: make(map[uuid.UUID]*model.Product)}
	for i := range products {
		p := products[i]
		m.products[p.ID] = &p
	}
	return m
}

func (m *memStore) product(id uuid.UUID) model.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.products[id]
}

// SalesStore

func (m *memStore) InsertTransaction(ctx context.Context, tx *model.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failInsert {
		return errBoom
	}
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	tx.CreatedAt = time.Now()
	m.transactions = append(m.transactions, tx)
	return nil
}

func (m *memStore) DecrementStock(ctx context.Context, shopID, productID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if productID == m.failDecrement {
		return decimal.Zero, errBoom
	}
	p, ok := m.products[productID]
	if !ok || p.ShopID != shopID || p.Stock.LessThan(amount) {
		return decimal.Zero, repository.ErrStockConflict
	}
	p.Stock = p.Stock.Sub(amount)
	return p.Stock, nil
}

func (m *memStore) IncrementSales(ctx context.Context, shopID, productID uuid.UUID, amount decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if productID == m.failSales {
		return errBoom
	}
	p, ok := m.products[productID]
	if !ok || p.ShopID != shopID {
		return repository.ErrNotFound
	}
	p.SalesCount = p.SalesCount.Add(amount)
	return nil
}

// RunInTx restores the previous state when fn fails.
func (m *memStore) RunInTx(ctx context.Context, fn func(repository.SalesStore) error) error {
	m.mu.Lock()
	saved := make(map[uuid.UUID]model.Product, len(m.products))
	for id, p := range m.products {
		saved[id] = *p
	}
	n := len(m.transactions)
	m.mu.Unlock()

	if err := fn(m); err != nil {
		m.mu.Lock()
		for id, p := range saved {
			p := p
			m.products[id] = &p
		}
		m.transactions = m.transactions[:n]
		m.mu.Unlock()
		return err
	}
	return nil
}

// ProductRepository

func (m *memStore) Create(ctx context.Context, p *model.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *memStore) Update(ctx context.Context, p *model.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.products[p.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stock, sales := existing.Stock, existing.SalesCount
	cp := *p
	cp.Stock, cp.SalesCount = stock, sales
	m.products[p.ID] = &cp
	return nil
}

func (m *memStore) FindByID(ctx context.Context, shopID, id uuid.UUID) (*model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok || p.ShopID != shopID {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) FindByShop(ctx context.Context, shopID uuid.UUID, f repository.ProductFilter) ([]model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Product
	for _, p := range m.products {
		if p.ShopID == shopID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memStore) FindBySKU(ctx context.Context, shopID uuid.UUID, sku string) (*model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.products {
		if p.ShopID == shopID && strings.EqualFold(p.SKU, sku) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memStore) FindByCode(ctx context.Context, shopID uuid.UUID, code string) (*model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.products {
		if p.ShopID == shopID && barcode.Match(*p, code) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memStore) TopSelling(ctx context.Context, shopID uuid.UUID, limit int) ([]model.Product, error) {
	return nil, nil
}

func (m *memStore) Restock(ctx context.Context, shopID, id uuid.UUID, qty decimal.Decimal, updatedBy string) (*model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok || p.ShopID != shopID {
		return nil, repository.ErrNotFound
	}
	p.Stock = p.Stock.Add(qty)
	p.UpdatedBy = updatedBy
	cp := *p
	return &cp, nil
}

type memShops struct {
	shops map[uuid.UUID]*model.Shop
}

func newMemShops(shops ...model.Shop) *memShops {
	m := &memShops{shops: make(map[uuid.UUID]*model.Shop)}
	for i := range shops {
		s := shops[i]
		m.shops[s.ID] = &s
	}
	return m
}

func (m *memShops) Create(ctx context.Context, s *model.Shop) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	cp := *s
	m.shops[s.ID] = &cp
	return nil
}

func (m *memShops) FindByID(ctx context.Context, id uuid.UUID) (*model.Shop, error) {
	s, ok := m.shops[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memShops) FindFirst(ctx context.Context) (*model.Shop, error) {
	for _, s := range m.shops {
		cp := *s
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (m *memShops) Update(ctx context.Context, s *model.Shop) error {
	if _, ok := m.shops[s.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *s
	m.shops[s.ID] = &cp
	return nil
}

// recordingNotifier keeps every notification instead of storing it.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []model.Notification
}

func (r *recordingNotifier) Notify(ctx context.Context, n *model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, *n)
	return nil
}

func (r *recordingNotifier) List(ctx context.Context, sess session.Context, unreadOnly bool, limit int) ([]model.Notification, error) {
	return r.sent, nil
}

func (r *recordingNotifier) CountUnread(ctx context.Context, sess session.Context) (int64, error) {
	return int64(len(r.sent)), nil
}

func (r *recordingNotifier) MarkRead(ctx context.Context, sess session.Context, id uuid.UUID) error {
	return nil
}

func (r *recordingNotifier) MarkAllRead(ctx context.Context, sess session.Context) error {
	return nil
}

func (r *recordingNotifier) kinds() []model.NotificationKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.NotificationKind, len(r.sent))
	for i, n := range r.sent {
		out[i] = n.Kind
	}
	return out
}

// eventLog subscribes to a shop topic on a LocalBus and records event types.
type eventLog struct {
	mu    sync.Mutex
	types []string
}

func watch(bus *events.LocalBus, shopID uuid.UUID) *eventLog {
	l := &eventLog{}
	_, _ = bus.Subscribe(events.Topic(shopID), func(ev events.Event) {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.types = append(l.types, ev.Type)
	})
	return l
}

func (l *eventLog) seen() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.types...)
}

func cashier(shopID uuid.UUID) session.Context {
	return session.Context{
		UserID:      uuid.New(),
		ShopID:      shopID,
		Role:        model.RoleCashier,
		Name:        "Asha",
		Email:       "asha@example.com",
		Permissions: model.RoleCashier.DefaultGrants(),
	}
}

func product(shopID uuid.UUID, name string, price, stock string, unit model.UnitType) model.Product {
	p := model.Product{
		ShopID:     shopID,
		Name:       name,
		Price:      decimal.RequireFromString(price),
		Stock:      decimal.RequireFromString(stock),
		Unit:       unit,
		SalesCount: decimal.Zero,
	}
	p.ID = uuid.New()
	return p
}
