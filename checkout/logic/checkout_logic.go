// Package logic settles carts into purchase records: stock is decremented
// for every line the catalog can cover, a ticket is appended for the
// fulfilled lines, and the cart keeps only what could not be fulfilled.
package logic

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/istore/storefront/common"
	"github.com/istore/storefront/domain"
)

// CheckoutLogic settles a stored cart.
type CheckoutLogic interface {
	Settle(ctx context.Context, cartID string, purchaser domain.Purchaser) (*Settlement, error)
}

// Settlement is the outcome of one successful Settle call.
type Settlement struct {
	Ticket      *domain.Ticket
	Cart        *domain.Cart
	Fulfilled   []domain.TicketLine
	Unfulfilled []Unfulfilled
}

// Unfulfilled is a line the catalog could not cover at settlement time.
type Unfulfilled struct {
	Item   domain.LineItem
	Reason common.Reason // INSUFFICIENT_STOCK or PRODUCT_NOT_FOUND
}

// CodeGenerator produces purchase codes.
type CodeGenerator func() string

// Settler is the default CheckoutLogic.
type Settler struct {
	catalog  domain.Catalog
	carts    domain.CartStore
	tickets  domain.TicketStore
	notifier domain.Notifier
	now      domain.Clock
	newCode  CodeGenerator
	newID    func() string
}

// Option configures a Settler.
type Option func(*Settler)

// WithClock overrides the settlement clock.
func WithClock(clock domain.Clock) Option {
	return func(s *Settler) { s.now = clock }
}

// WithCodeGenerator overrides the purchase code generator.
func WithCodeGenerator(gen CodeGenerator) Option {
	return func(s *Settler) { s.newCode = gen }
}

// NewSettler wires settlement to its collaborators. A nil notifier disables
// purchase notifications.
func NewSettler(catalog domain.Catalog, carts domain.CartStore, tickets domain.TicketStore, notifier domain.Notifier, opts ...Option) *Settler {
	s := &Settler{
		catalog:  catalog,
		carts:    carts,
		tickets:  tickets,
		notifier: notifier,
		now:      time.Now,
		newCode:  common.NewTicketCode,
		newID:    common.NewID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Total sums price × quantity over lines.
func Total(lines []domain.TicketLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Subtotal())
	}
	return total
}
