package cart

import (
	"sync"

	"github.com/google/uuid"
)

type key struct {
	shop    uuid.UUID
	cashier uuid.UUID
}

// Registry keeps one cart per cashier of a shop for the lifetime of the process.
type Registry struct {
	mu    sync.Mutex
	carts map[key]*Cart
}

func NewRegistry() *Registry {
	return &Registry{carts: make(map[key]*Cart)}
}

// Get returns the cashier's cart, creating an empty one on first use.
func (r *Registry) Get(shopID, cashierID uuid.UUID) *Cart {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key{shopID, cashierID}
	c, ok := r.carts[k]
	if !ok {
		c = New()
		r.carts[k] = c
	}
	return c
}

// Drop forgets the cashier's cart, e.g. on logout.
func (r *Registry) Drop(shopID, cashierID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, key{shopID, cashierID})
}
