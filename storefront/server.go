package storefront

import (
	"context"

	cartlogic "github.com/istore/storefront/cart/logic"
	cataloglogic "github.com/istore/storefront/catalog/logic"
	checkoutlogic "github.com/istore/storefront/checkout/logic"
	"github.com/istore/storefront/common"
	"github.com/istore/storefront/domain"
	"github.com/istore/storefront/metrics"
)

// Deps are the collaborators a Server is built from. Notifier, Removals and
// Metrics may be nil.
type Deps struct {
	Products domain.ProductStore
	Carts    domain.CartStore
	Tickets  domain.TicketStore
	Notifier domain.Notifier
	Removals domain.RemovalNotifier
	Metrics  *metrics.Metrics
	Clock    domain.Clock
}

// Server implements StorefrontServer.
//
// Cart reads and writes are load-modify-save against the CartStore. They are
// serialized per cart inside one process; separate processes sharing a store
// may still interleave edits to the same cart.
type Server struct {
	products domain.ProductStore
	carts    domain.CartStore
	tickets  domain.TicketStore
	removals domain.RemovalNotifier
	metrics  *metrics.Metrics
	cart     cartlogic.CartLogic
	checkout checkoutlogic.CheckoutLogic
	cartLock *keyedMutex
}

var _ StorefrontServer = (*Server)(nil)

// NewServer wires the cart engine and settlement to d.
func NewServer(d Deps) *Server {
	var cartOpts []cartlogic.Option
	var settleOpts []checkoutlogic.Option
	if d.Clock != nil {
		cartOpts = append(cartOpts, cartlogic.WithClock(d.Clock))
		settleOpts = append(settleOpts, checkoutlogic.WithClock(d.Clock))
	}
	return &Server{
		products: d.Products,
		carts:    d.Carts,
		tickets:  d.Tickets,
		removals: d.Removals,
		metrics:  d.Metrics,
		cart:     cartlogic.NewCartLogic(d.Products, cartOpts...),
		checkout: checkoutlogic.NewSettler(d.Products, d.Carts, d.Tickets, d.Notifier, settleOpts...),
		cartLock: newKeyedMutex(),
	}
}

// editCart runs edit against the stored cart and saves the result.
func (s *Server) editCart(ctx context.Context, cartID string, edit func(*domain.Cart) (*domain.Cart, error)) (*CartResponse, error) {
	if cartID == "" {
		return nil, common.MapCommandError(common.NewNotFound(common.ReasonCartNotFound, common.ErrMsgCartIDRequired))
	}
	unlock := s.cartLock.Lock(cartID)
	defer unlock()

	current, err := s.carts.Get(ctx, cartID)
	if err != nil {
		return nil, common.MapCommandError(err)
	}
	updated, err := edit(current)
	if err != nil {
		return nil, common.MapCommandError(err)
	}
	saved, err := s.carts.Save(ctx, updated)
	if err != nil {
		return nil, common.MapCommandError(err)
	}
	return &CartResponse{Cart: saved}, nil
}

// CreateCart creates an empty cart. Creating a cart under an ID that already
// exists returns the existing cart unchanged.
func (s *Server) CreateCart(ctx context.Context, req *CreateCartRequest) (*CartResponse, error) {
	cartID := req.CartID
	if cartID == "" && req.Owner != "" {
		cartID = common.CartRoot(req.Owner)
	}
	if cartID != "" {
		unlock := s.cartLock.Lock(cartID)
		defer unlock()
		existing, err := s.carts.Get(ctx, cartID)
		if err == nil {
			return &CartResponse{Cart: existing}, nil
		}
		if !common.HasReason(err, common.ReasonCartNotFound) {
			return nil, common.MapCommandError(err)
		}
	}
	cart, err := s.cart.HandleCreateCart(cartID)
	if err != nil {
		return nil, common.MapCommandError(err)
	}
	saved, err := s.carts.Save(ctx, cart)
	if err != nil {
		return nil, common.MapCommandError(err)
	}
	return &CartResponse{Cart: saved}, nil
}

func (s *Server) GetCart(ctx context.Context, req *CartRequest) (*CartResponse, error) {
	cart, err := s.carts.Get(ctx, req.CartID)
	if err != nil {
		return nil, common.MapCommandError(err)
	}
	return &CartResponse{Cart: cart}, nil
}

func (s *Server) AddItem(ctx context.Context, req *AddItemRequest) (*CartResponse, error) {
	return s.editCart(ctx, req.CartID, func(c *domain.Cart) (*domain.Cart, error) {
		return s.cart.HandleAddItem(ctx, c, req.ProductID, req.Quantity, req.Override)
	})
}

func (s *Server) RemoveItem(ctx context.Context, req *RemoveItemRequest) (*CartResponse, error) {
	return s.editCart(ctx, req.CartID, func(c *domain.Cart) (*domain.Cart, error) {
		return s.cart.HandleRemoveQuantity(c, req.ProductID, req.Quantity, req.Override)
	})
}

func (s *Server) DeleteItem(ctx context.Context, req *DeleteItemRequest) (*CartResponse, error) {
	return s.editCart(ctx, req.CartID, func(c *domain.Cart) (*domain.Cart, error) {
		return s.cart.HandleDeleteItem(c, req.ProductID)
	})
}

func (s *Server) UpdateQuantity(ctx context.Context, req *UpdateQuantityRequest) (*CartResponse, error) {
	return s.editCart(ctx, req.CartID, func(c *domain.Cart) (*domain.Cart, error) {
		return s.cart.HandleUpdateQuantity(c, req.ProductID, req.Quantity)
	})
}

func (s *Server) ReplaceItems(ctx context.Context, req *ReplaceItemsRequest) (*CartResponse, error) {
	return s.editCart(ctx, req.CartID, func(c *domain.Cart) (*domain.Cart, error) {
		return s.cart.HandleReplaceItems(c, req.Items)
	})
}

func (s *Server) ClearCart(ctx context.Context, req *CartRequest) (*CartResponse, error) {
	return s.editCart(ctx, req.CartID, s.cart.HandleClearCart)
}

// Checkout settles the cart. The cart lock is held for the whole settlement
// so edits cannot slip in between reading and rewriting the cart.
func (s *Server) Checkout(ctx context.Context, req *CheckoutRequest) (*CheckoutResponse, error) {
	if req.CartID != "" {
		unlock := s.cartLock.Lock(req.CartID)
		defer unlock()
	}

	result, err := s.checkout.Settle(ctx, req.CartID, req.Purchaser)
	s.recordSettlement(result, err)
	if err != nil {
		return nil, common.MapCommandError(err)
	}

	resp := &CheckoutResponse{
		Ticket:      result.Ticket,
		Cart:        result.Cart,
		Unfulfilled: make([]UnfulfilledLine, 0, len(result.Unfulfilled)),
	}
	for _, u := range result.Unfulfilled {
		resp.Unfulfilled = append(resp.Unfulfilled, UnfulfilledLine{
			ProductID: u.Item.ProductID,
			Quantity:  u.Item.Quantity,
			Reason:    string(u.Reason),
		})
	}
	return resp, nil
}

func (s *Server) recordSettlement(result *checkoutlogic.Settlement, err error) {
	if s.metrics == nil {
		return
	}
	switch {
	case err == nil:
		s.metrics.Settlements.WithLabelValues("ok").Inc()
	case common.ReasonOf(err) != "":
		s.metrics.Settlements.WithLabelValues(string(common.ReasonOf(err))).Inc()
	default:
		s.metrics.Settlements.WithLabelValues("error").Inc()
	}
	if result == nil {
		return
	}
	s.metrics.SettlementLines.WithLabelValues("fulfilled").Add(float64(len(result.Fulfilled)))
	for _, u := range result.Unfulfilled {
		s.metrics.SettlementLines.WithLabelValues(string(u.Reason)).Inc()
	}
}

func (s *Server) CreateProduct(ctx context.Context, req *CreateProductRequest) (*ProductResponse, error) {
	if !cataloglogic.CanCreate(req.Actor) {
		return nil, common.MapCommandError(common.NewPermissionDenied(common.ErrMsgCreateNotPermitted))
	}
	product, err := cataloglogic.ValidateNewProduct(&req.Product, req.Actor)
	if err != nil {
		return nil, common.MapCommandError(err)
	}
	created, err := s.products.Create(ctx, product)
	if err != nil {
		return nil, common.MapCommandError(err)
	}
	return &ProductResponse{Product: created}, nil
}

func (s *Server) GetProduct(ctx context.Context, req *ProductRequest) (*ProductResponse, error) {
	product, err := s.products.Get(ctx, req.ProductID)
	if err != nil {
		return nil, common.MapCommandError(err)
	}
	return &ProductResponse{Product: product}, nil
}

func (s *Server) ListProducts(ctx context.Context, req *ListProductsRequest) (*ListProductsResponse, error) {
	page, err := s.products.List(ctx, req.Filter)
	if err != nil {
		return nil, common.MapCommandError(err)
	}
	return &ListProductsResponse{Page: page}, nil
}

// UpdateProduct checks the patch against the current record, then lets the
// store apply it atomically.
func (s *Server) UpdateProduct(ctx context.Context, req *UpdateProductRequest) (*ProductResponse, error) {
	current, err := s.products.Get(ctx, req.ProductID)
	if err != nil {
		return nil, common.MapCommandError(err)
	}
	if !cataloglogic.CanDelete(current, req.Actor) {
		return nil, common.MapCommandError(common.NewPermissionDenied(common.ErrMsgEditNotPermitted))
	}
	if _, err := cataloglogic.ApplyUpdate(current, req.Patch); err != nil {
		return nil, common.MapCommandError(err)
	}
	saved, err := s.products.Update(ctx, req.ProductID, req.Patch)
	if err != nil {
		return nil, common.MapCommandError(err)
	}
	return &ProductResponse{Product: saved}, nil
}

// DeleteProduct removes a product and tells its owner when someone else
// removed it. Carts that reference the product keep their lines.
func (s *Server) DeleteProduct(ctx context.Context, req *DeleteProductRequest) (*DeleteProductResponse, error) {
	current, err := s.products.Get(ctx, req.ProductID)
	if err != nil {
		return nil, common.MapCommandError(err)
	}
	if !cataloglogic.CanDelete(current, req.Actor) {
		return nil, common.MapCommandError(common.NewPermissionDenied(common.ErrMsgDeleteNotPermitted))
	}
	if err := s.products.Delete(ctx, req.ProductID); err != nil {
		return nil, common.MapCommandError(err)
	}

	resp := &DeleteProductResponse{}
	if removal, ok := cataloglogic.RemovalFor(current, req.Actor); ok && s.removals != nil {
		s.removals.NotifyProductRemoved(ctx, removal)
		resp.Notified = true
	}
	return resp, nil
}

func (s *Server) GetTicket(ctx context.Context, req *GetTicketRequest) (*TicketResponse, error) {
	ticket, err := s.tickets.GetByCode(ctx, req.Code)
	if err != nil {
		return nil, common.MapCommandError(err)
	}
	return &TicketResponse{Ticket: ticket}, nil
}

func (s *Server) ListTickets(ctx context.Context, req *ListTicketsRequest) (*ListTicketsResponse, error) {
	tickets, err := s.tickets.ListByPurchaser(ctx, req.Purchaser)
	if err != nil {
		return nil, common.MapCommandError(err)
	}
	return &ListTicketsResponse{Tickets: tickets}, nil
}
