// Package logic provides the cart engine: line-item edits applied to a
// loaded cart snapshot. Persistence is the caller's job.
package logic

import (
	"context"
	"time"

	"github.com/istore/storefront/domain"
)

// CartLogic applies line-item edits to a cart snapshot.
//
// Every operation returns a new cart and leaves its input untouched, so a
// rejected edit never changes the caller's copy.
type CartLogic interface {
	HandleCreateCart(cartID string) (*domain.Cart, error)
	HandleAddItem(ctx context.Context, cart *domain.Cart, productID string, quantity int, override *int) (*domain.Cart, error)
	HandleRemoveQuantity(cart *domain.Cart, productID string, quantity int, override *int) (*domain.Cart, error)
	HandleDeleteItem(cart *domain.Cart, productID string) (*domain.Cart, error)
	HandleUpdateQuantity(cart *domain.Cart, productID string, newQuantity int) (*domain.Cart, error)
	HandleReplaceItems(cart *domain.Cart, items []domain.LineItem) (*domain.Cart, error)
	HandleClearCart(cart *domain.Cart) (*domain.Cart, error)
}

// DefaultCartLogic is the default implementation of CartLogic.
type DefaultCartLogic struct {
	catalog domain.ProductLookup
	now     domain.Clock
}

// Option configures DefaultCartLogic.
type Option func(*DefaultCartLogic)

// WithClock overrides the clock used for cart timestamps.
func WithClock(clock domain.Clock) Option {
	return func(l *DefaultCartLogic) { l.now = clock }
}

// NewCartLogic creates a cart engine that checks product existence against catalog.
func NewCartLogic(catalog domain.ProductLookup, opts ...Option) CartLogic {
	l := &DefaultCartLogic{catalog: catalog, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *DefaultCartLogic) touch(cart *domain.Cart) *domain.Cart {
	cart.UpdatedAt = l.now().UTC()
	return cart
}
