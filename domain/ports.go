package domain

import (
	"context"
	"time"
)

// ProductLookup resolves a product reference against the live catalog.
type ProductLookup interface {
	Get(ctx context.Context, id string) (*Product, error)
}

// Catalog is what settlement needs from product storage.
//
// DecrementStock must be conditional and atomic: stock is reduced by n only
// when stock >= n, otherwise it fails with INSUFFICIENT_STOCK and leaves the
// product untouched. Unknown ids fail with PRODUCT_NOT_FOUND.
type Catalog interface {
	ProductLookup
	DecrementStock(ctx context.Context, id string, n int) (*Product, error)
}

// ProductStore is the catalog write side.
//
// Update applies the patch to the stored record in one atomic write. Fields
// the patch leaves nil are not written, so a concurrent DecrementStock is
// never undone by an edit that does not set Stock.
type ProductStore interface {
	Catalog
	Create(ctx context.Context, p *Product) (*Product, error)
	Update(ctx context.Context, id string, patch ProductPatch) (*Product, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ProductFilter) (*ProductPage, error)
}

// CartStore persists carts keyed by ID.
type CartStore interface {
	Get(ctx context.Context, id string) (*Cart, error)
	Save(ctx context.Context, cart *Cart) (*Cart, error)
}

// TicketStore appends purchase records. Records are never updated or removed.
type TicketStore interface {
	Append(ctx context.Context, t *Ticket) (*Ticket, error)
	GetByCode(ctx context.Context, code string) (*Ticket, error)
	ListByPurchaser(ctx context.Context, purchaser string) ([]*Ticket, error)
}

// Notifier receives completed purchases. Implementations must not block the
// caller and must not report failures back to it.
type Notifier interface {
	NotifyPurchase(ctx context.Context, purchase Purchase)
}

// Clock returns the current time.
type Clock func() time.Time
