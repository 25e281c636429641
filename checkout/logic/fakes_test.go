package logic

import (
	"context"
	"sync"

	"github.com/istore/storefront/common"
	"github.com/istore/storefront/domain"
)

type fakeCatalog struct {
	mu        sync.Mutex
	products  map[string]*domain.Product
	failOn    string
	failErr   error
	decrCalls int
}

func newFakeCatalog(products ...*domain.Product) *fakeCatalog {
	c := &fakeCatalog{products: make(map[string]*domain.Product)}
	for _, p := range products {
		c.products[p.ID] = p.Clone()
	}
	return c
}

func (c *fakeCatalog) Get(_ context.Context, id string) (*domain.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.products[id]
	if !ok {
		return nil, common.NewNotFound(common.ReasonProductNotFound, common.ErrMsgProductNotFound)
	}
	return p.Clone(), nil
}

func (c *fakeCatalog) DecrementStock(_ context.Context, id string, n int) (*domain.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.decrCalls++
	if id == c.failOn {
		return nil, c.failErr
	}
	p, ok := c.products[id]
	if !ok {
		return nil, common.NewNotFound(common.ReasonProductNotFound, common.ErrMsgProductNotFound)
	}
	if p.Stock < n {
		return nil, common.NewFailedPrecondition(common.ReasonInsufficientStock, common.ErrMsgInsufficientStock)
	}
	p.Stock -= n
	return p.Clone(), nil
}

func (c *fakeCatalog) stock(id string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.products[id].Stock
}

func (c *fakeCatalog) setPrice(id string, p *domain.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products[id].Price = p.Price
}

type fakeCarts struct {
	mu      sync.Mutex
	carts   map[string]*domain.Cart
	saveErr error
	saves   int
}

func newFakeCarts(carts ...*domain.Cart) *fakeCarts {
	s := &fakeCarts{carts: make(map[string]*domain.Cart)}
	for _, c := range carts {
		s.carts[c.ID] = c.Clone()
	}
	return s
}

func (s *fakeCarts) Get(_ context.Context, id string) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[id]
	if !ok {
		return nil, common.NewNotFound(common.ReasonCartNotFound, common.ErrMsgCartNotFound)
	}
	return c.Clone(), nil
}

func (s *fakeCarts) Save(_ context.Context, cart *domain.Cart) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.saveErr != nil {
		return nil, s.saveErr
	}
	s.carts[cart.ID] = cart.Clone()
	return cart.Clone(), nil
}

type fakeTickets struct {
	mu        sync.Mutex
	tickets   []*domain.Ticket
	appendErr error
}

func (s *fakeTickets) Append(_ context.Context, t *domain.Ticket) (*domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.appendErr != nil {
		return nil, s.appendErr
	}
	s.tickets = append(s.tickets, t.Clone())
	return t.Clone(), nil
}

func (s *fakeTickets) GetByCode(_ context.Context, code string) (*domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tickets {
		if t.Code == code {
			return t.Clone(), nil
		}
	}
	return nil, common.NewNotFound(common.ReasonTicketNotFound, common.ErrMsgTicketNotFound)
}

func (s *fakeTickets) ListByPurchaser(_ context.Context, purchaser string) ([]*domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Ticket
	for _, t := range s.tickets {
		if t.Purchaser == purchaser {
			out = append(out, t.Clone())
		}
	}
	return out, nil
}

func (s *fakeTickets) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tickets)
}

type recordingNotifier struct {
	mu        sync.Mutex
	purchases []domain.Purchase
}

func (n *recordingNotifier) NotifyPurchase(_ context.Context, p domain.Purchase) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.purchases = append(n.purchases, p)
}
