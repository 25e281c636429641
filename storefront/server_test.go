package storefront

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/istore/storefront/common"
	"github.com/istore/storefront/domain"
	"github.com/istore/storefront/metrics"
	"github.com/istore/storefront/store/memory"
)

var (
	admin   = domain.Actor{ID: "admin-1", Role: domain.RoleAdmin}
	premium = domain.Actor{ID: "seller-1", Role: domain.RolePremium}
	buyer   = domain.Purchaser{ID: "user-1", Email: "user@example.com", Username: "user"}
)

type recordingNotifier struct {
	mu        sync.Mutex
	purchases []domain.Purchase
	removals  []domain.ProductRemoval
}

func (n *recordingNotifier) NotifyPurchase(_ context.Context, p domain.Purchase) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.purchases = append(n.purchases, p)
}

func (n *recordingNotifier) NotifyProductRemoved(_ context.Context, r domain.ProductRemoval) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.removals = append(n.removals, r)
}

type harness struct {
	client   *Client
	store    *memory.Store
	notifier *recordingNotifier
	metrics  *metrics.Metrics
	logs     *observer.ObservedLogs
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWith(t, nil)
}

// newHarnessWith lets a test wrap the product store the server uses.
func newHarnessWith(t *testing.T, wrap func(domain.ProductStore) domain.ProductStore) *harness {
	t.Helper()
	store, err := memory.New()
	require.NoError(t, err)
	var products domain.ProductStore = store.Products()
	if wrap != nil {
		products = wrap(products)
	}

	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)
	m := metrics.New(nil)
	notifier := &recordingNotifier{}
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	srv := NewServer(Deps{
		Products: products,
		Carts:    store.Carts(),
		Tickets:  store.Tickets(),
		Notifier: notifier,
		Removals: notifier,
		Metrics:  m,
		Clock:    func() time.Time { return fixed },
	})

	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = common.Serve(ctx, logger, lis, common.ServerConfig{
			Name:         "storefront-test",
			Interceptors: Interceptors(logger, m),
		}, func(s *grpc.Server) { RegisterStorefrontServer(s, srv) })
	}()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		conn.Close()
		cancel()
		<-done
	})
	return &harness{
		client:   ClientFromConn(conn),
		store:    store,
		notifier: notifier,
		metrics:  m,
		logs:     logs,
	}
}

func (h *harness) product(t *testing.T, id, price string, stock int) *domain.Product {
	t.Helper()
	resp, err := h.client.CreateProduct(context.Background(), &CreateProductRequest{
		Actor: admin,
		Product: domain.Product{
			ID:          id,
			Title:       "Product " + id,
			Description: "A product",
			Category:    "general",
			Code:        "CODE-" + id,
			Price:       decimal.RequireFromString(price),
			Stock:       stock,
			Status:      true,
		},
	})
	require.NoError(t, err)
	return resp.Product
}

func (h *harness) cart(t *testing.T, id string) *domain.Cart {
	t.Helper()
	resp, err := h.client.CreateCart(context.Background(), &CreateCartRequest{CartID: id})
	require.NoError(t, err)
	return resp.Cart
}

func requireStatus(t *testing.T, err error, code codes.Code, reason common.Reason) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, status.Code(err), "status: %v", err)
	assert.Equal(t, reason, common.StatusReason(err))
}

func intPtr(n int) *int { return &n }

func TestServer_healthCheck(t *testing.T) {
	h := newHarness(t)
	resp, err := grpc_health_v1.NewHealthClient(h.client.conn).Check(context.Background(), &grpc_health_v1.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, resp.Status)
}

func TestServer_createCartIsIdempotent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.product(t, "p1", "10", 5)
	h.cart(t, "c1")

	_, err := h.client.AddItem(ctx, &AddItemRequest{CartID: "c1", ProductID: "p1", Quantity: 2})
	require.NoError(t, err)

	again := h.cart(t, "c1")
	assert.Equal(t, []domain.LineItem{{ProductID: "p1", Quantity: 2}}, again.Items)
}

func TestServer_createCartGeneratesID(t *testing.T) {
	h := newHarness(t)
	cart := h.cart(t, "")
	assert.NotEmpty(t, cart.ID)
	assert.Empty(t, cart.Items)
}

func TestServer_createCartForOwnerIsStable(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	first, err := h.client.CreateCart(ctx, &CreateCartRequest{Owner: buyer.ID})
	require.NoError(t, err)
	second, err := h.client.CreateCart(ctx, &CreateCartRequest{Owner: buyer.ID})
	require.NoError(t, err)
	other, err := h.client.CreateCart(ctx, &CreateCartRequest{Owner: "user-2"})
	require.NoError(t, err)

	assert.Equal(t, common.CartRoot(buyer.ID), first.Cart.ID)
	assert.Equal(t, first.Cart.ID, second.Cart.ID)
	assert.NotEqual(t, first.Cart.ID, other.Cart.ID)
}

func TestServer_cartEditingFlow(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.product(t, "p1", "10", 5)
	h.product(t, "p2", "3.50", 5)
	h.cart(t, "c1")

	_, err := h.client.AddItem(ctx, &AddItemRequest{CartID: "c1", ProductID: "p1", Quantity: 2})
	require.NoError(t, err)
	_, err = h.client.AddItem(ctx, &AddItemRequest{CartID: "c1", ProductID: "p1", Quantity: 3})
	require.NoError(t, err)
	resp, err := h.client.AddItem(ctx, &AddItemRequest{CartID: "c1", ProductID: "p2", Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, []domain.LineItem{{ProductID: "p1", Quantity: 5}, {ProductID: "p2", Quantity: 1}}, resp.Cart.Items)

	resp, err = h.client.AddItem(ctx, &AddItemRequest{CartID: "c1", ProductID: "p1", Quantity: 1, Override: intPtr(7)})
	require.NoError(t, err)
	assert.Equal(t, 7, resp.Cart.Quantity("p1"))

	resp, err = h.client.RemoveItem(ctx, &RemoveItemRequest{CartID: "c1", ProductID: "p1", Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, resp.Cart.Quantity("p1"))

	resp, err = h.client.UpdateQuantity(ctx, &UpdateQuantityRequest{CartID: "c1", ProductID: "p2", Quantity: 4})
	require.NoError(t, err)
	assert.Equal(t, 4, resp.Cart.Quantity("p2"))

	resp, err = h.client.DeleteItem(ctx, &DeleteItemRequest{CartID: "c1", ProductID: "p1"})
	require.NoError(t, err)
	assert.Equal(t, []domain.LineItem{{ProductID: "p2", Quantity: 4}}, resp.Cart.Items)

	resp, err = h.client.ReplaceItems(ctx, &ReplaceItemsRequest{CartID: "c1", Items: []domain.LineItem{{ProductID: "ghost", Quantity: 9}}})
	require.NoError(t, err)
	assert.Equal(t, []domain.LineItem{{ProductID: "ghost", Quantity: 9}}, resp.Cart.Items)

	resp, err = h.client.ClearCart(ctx, &CartRequest{CartID: "c1"})
	require.NoError(t, err)
	assert.Empty(t, resp.Cart.Items)

	stored, err := h.client.GetCart(ctx, &CartRequest{CartID: "c1"})
	require.NoError(t, err)
	assert.Empty(t, stored.Cart.Items)
}

func TestServer_cartErrors(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.product(t, "p1", "10", 5)
	h.cart(t, "c1")

	_, err := h.client.GetCart(ctx, &CartRequest{CartID: "nope"})
	requireStatus(t, err, codes.NotFound, common.ReasonCartNotFound)

	_, err = h.client.AddItem(ctx, &AddItemRequest{CartID: "c1", ProductID: "missing", Quantity: 1})
	requireStatus(t, err, codes.NotFound, common.ReasonProductNotFound)

	_, err = h.client.AddItem(ctx, &AddItemRequest{CartID: "c1", ProductID: "p1", Quantity: 0})
	requireStatus(t, err, codes.InvalidArgument, common.ReasonInvalidQuantity)

	_, err = h.client.UpdateQuantity(ctx, &UpdateQuantityRequest{CartID: "c1", ProductID: "p1", Quantity: 1})
	requireStatus(t, err, codes.NotFound, common.ReasonLineNotFound)

	_, err = h.client.DeleteItem(ctx, &DeleteItemRequest{CartID: "c1", ProductID: "p1"})
	requireStatus(t, err, codes.NotFound, common.ReasonProductNotFound)

	_, err = h.client.AddItem(ctx, &AddItemRequest{CartID: "", ProductID: "p1", Quantity: 1})
	requireStatus(t, err, codes.NotFound, common.ReasonCartNotFound)
}

func TestServer_updateQuantityRejectsNonPositiveAndLeavesCart(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.product(t, "p1", "10", 5)
	h.cart(t, "c1")
	_, err := h.client.AddItem(ctx, &AddItemRequest{CartID: "c1", ProductID: "p1", Quantity: 2})
	require.NoError(t, err)

	_, err = h.client.UpdateQuantity(ctx, &UpdateQuantityRequest{CartID: "c1", ProductID: "p1", Quantity: 0})
	requireStatus(t, err, codes.InvalidArgument, common.ReasonInvalidQuantity)

	resp, err := h.client.GetCart(ctx, &CartRequest{CartID: "c1"})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Cart.Quantity("p1"))
}

func TestServer_checkoutFulfilsAndKeepsShortLines(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.product(t, "p1", "10.00", 5)
	h.product(t, "p2", "4.25", 1)
	h.cart(t, "c1")
	_, err := h.client.ReplaceItems(ctx, &ReplaceItemsRequest{CartID: "c1", Items: []domain.LineItem{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 3},
	}})
	require.NoError(t, err)

	resp, err := h.client.Checkout(ctx, &CheckoutRequest{CartID: "c1", Purchaser: buyer})
	require.NoError(t, err)

	assert.True(t, decimal.RequireFromString("20").Equal(resp.Ticket.Amount), "amount %s", resp.Ticket.Amount)
	assert.Equal(t, buyer.ID, resp.Ticket.Purchaser)
	require.Len(t, resp.Ticket.Lines, 1)
	assert.Equal(t, "p1", resp.Ticket.Lines[0].ProductID)
	assert.Equal(t, []domain.LineItem{{ProductID: "p2", Quantity: 3}}, resp.Cart.Items)
	assert.Equal(t, []UnfulfilledLine{{ProductID: "p2", Quantity: 3, Reason: string(common.ReasonInsufficientStock)}}, resp.Unfulfilled)

	p1, err := h.client.GetProduct(ctx, &ProductRequest{ProductID: "p1"})
	require.NoError(t, err)
	assert.Equal(t, 3, p1.Product.Stock)
	p2, err := h.client.GetProduct(ctx, &ProductRequest{ProductID: "p2"})
	require.NoError(t, err)
	assert.Equal(t, 1, p2.Product.Stock)

	ticket, err := h.client.GetTicket(ctx, &GetTicketRequest{Code: resp.Ticket.Code})
	require.NoError(t, err)
	assert.Equal(t, resp.Ticket.ID, ticket.Ticket.ID)

	list, err := h.client.ListTickets(ctx, &ListTicketsRequest{Purchaser: buyer.ID})
	require.NoError(t, err)
	require.Len(t, list.Tickets, 1)

	h.notifier.mu.Lock()
	defer h.notifier.mu.Unlock()
	require.Len(t, h.notifier.purchases, 1)
	assert.Equal(t, resp.Ticket.Code, h.notifier.purchases[0].Ticket.Code)
}

func TestServer_checkoutErrors(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.cart(t, "empty")

	_, err := h.client.Checkout(ctx, &CheckoutRequest{CartID: "empty", Purchaser: buyer})
	requireStatus(t, err, codes.FailedPrecondition, common.ReasonEmptyCart)

	_, err = h.client.Checkout(ctx, &CheckoutRequest{CartID: "nope", Purchaser: buyer})
	requireStatus(t, err, codes.NotFound, common.ReasonCartNotFound)

	_, err = h.client.Checkout(ctx, &CheckoutRequest{CartID: "empty"})
	requireStatus(t, err, codes.InvalidArgument, common.ReasonMissingPurchaser)

	_, err = h.client.GetTicket(ctx, &GetTicketRequest{Code: "T-NONE"})
	requireStatus(t, err, codes.NotFound, common.ReasonTicketNotFound)
}

func TestServer_concurrentCheckoutsDoNotOversell(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.product(t, "p1", "1", 3)
	for _, id := range []string{"a", "b"} {
		h.cart(t, id)
		_, err := h.client.AddItem(ctx, &AddItemRequest{CartID: id, ProductID: "p1", Quantity: 3})
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	results := make([]*CheckoutResponse, 2)
	for i, id := range []string{"a", "b"} {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			resp, err := h.client.Checkout(ctx, &CheckoutRequest{CartID: id, Purchaser: buyer})
			assert.NoError(t, err)
			results[i] = resp
		}(i, id)
	}
	wg.Wait()

	fulfilled := 0
	for _, r := range results {
		require.NotNil(t, r)
		fulfilled += len(r.Ticket.Lines)
	}
	assert.Equal(t, 1, fulfilled)

	p, err := h.client.GetProduct(ctx, &ProductRequest{ProductID: "p1"})
	require.NoError(t, err)
	assert.Equal(t, 0, p.Product.Stock)
}

func TestServer_concurrentCheckoutsOfSameCartSettleOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.product(t, "p1", "1", 3)
	h.cart(t, "c1")
	_, err := h.client.AddItem(ctx, &AddItemRequest{CartID: "c1", ProductID: "p1", Quantity: 3})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = h.client.Checkout(ctx, &CheckoutRequest{CartID: "c1", Purchaser: buyer})
		}(i)
	}
	wg.Wait()

	failures := 0
	for _, err := range errs {
		if err != nil {
			failures++
			assert.Equal(t, common.ReasonEmptyCart, common.StatusReason(err))
		}
	}
	assert.Equal(t, 1, failures)

	list, err := h.client.ListTickets(ctx, &ListTicketsRequest{Purchaser: buyer.ID})
	require.NoError(t, err)
	assert.Len(t, list.Tickets, 1)
}

func TestServer_concurrentEditsToSameCartAreSerialized(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.product(t, "p1", "1", 100)
	h.cart(t, "c1")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.client.AddItem(ctx, &AddItemRequest{CartID: "c1", ProductID: "p1", Quantity: 1})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	resp, err := h.client.GetCart(ctx, &CartRequest{CartID: "c1"})
	require.NoError(t, err)
	assert.Equal(t, 20, resp.Cart.Quantity("p1"))
}

func TestServer_productPermissions(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := domain.Actor{ID: "user-9", Role: domain.RoleUser}
	newProduct := domain.Product{
		Title: "Lamp", Description: "Desk lamp", Category: "home", Code: "LAMP-1",
		Price: decimal.RequireFromString("25"), Stock: 2,
	}

	_, err := h.client.CreateProduct(ctx, &CreateProductRequest{Actor: user, Product: newProduct})
	requireStatus(t, err, codes.PermissionDenied, common.ReasonForbidden)

	created, err := h.client.CreateProduct(ctx, &CreateProductRequest{Actor: premium, Product: newProduct})
	require.NoError(t, err)
	assert.Equal(t, premium.ID, created.Product.Owner)
	id := created.Product.ID

	other := domain.Actor{ID: "seller-2", Role: domain.RolePremium}
	title := "Other lamp"
	_, err = h.client.UpdateProduct(ctx, &UpdateProductRequest{Actor: other, ProductID: id, Patch: domain.ProductPatch{Title: &title}})
	requireStatus(t, err, codes.PermissionDenied, common.ReasonForbidden)

	updated, err := h.client.UpdateProduct(ctx, &UpdateProductRequest{Actor: premium, ProductID: id, Patch: domain.ProductPatch{Title: &title}})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Product.Title)

	_, err = h.client.DeleteProduct(ctx, &DeleteProductRequest{Actor: other, ProductID: id})
	requireStatus(t, err, codes.PermissionDenied, common.ReasonForbidden)

	_, err = h.client.CreateProduct(ctx, &CreateProductRequest{Actor: admin, Product: newProduct})
	requireStatus(t, err, codes.FailedPrecondition, common.ReasonDuplicateCode)
}

// hookedProducts runs onRead once, right after the next Get returns.
type hookedProducts struct {
	domain.ProductStore
	armed  atomic.Bool
	onRead func()
}

func (p *hookedProducts) Get(ctx context.Context, id string) (*domain.Product, error) {
	got, err := p.ProductStore.Get(ctx, id)
	if p.armed.CompareAndSwap(true, false) {
		p.onRead()
	}
	return got, err
}

func TestServer_updateProductKeepsStockSoldDuringEdit(t *testing.T) {
	hooked := &hookedProducts{}
	h := newHarnessWith(t, func(inner domain.ProductStore) domain.ProductStore {
		hooked.ProductStore = inner
		return hooked
	})
	ctx := context.Background()
	h.product(t, "p1", "2", 3)
	h.cart(t, "c1")
	_, err := h.client.AddItem(ctx, &AddItemRequest{CartID: "c1", ProductID: "p1", Quantity: 3})
	require.NoError(t, err)

	var sold *CheckoutResponse
	hooked.onRead = func() {
		resp, err := h.client.Checkout(ctx, &CheckoutRequest{CartID: "c1", Purchaser: buyer})
		assert.NoError(t, err)
		sold = resp
	}
	hooked.armed.Store(true)

	title := "Renamed"
	updated, err := h.client.UpdateProduct(ctx, &UpdateProductRequest{Actor: admin, ProductID: "p1", Patch: domain.ProductPatch{Title: &title}})
	require.NoError(t, err)
	require.NotNil(t, sold)
	require.Len(t, sold.Ticket.Lines, 1)
	assert.Equal(t, "Renamed", updated.Product.Title)
	assert.Equal(t, 0, updated.Product.Stock)

	got, err := h.client.GetProduct(ctx, &ProductRequest{ProductID: "p1"})
	require.NoError(t, err)
	assert.Equal(t, 0, got.Product.Stock)

	// The sold-out product cannot be bought again.
	h.cart(t, "c2")
	_, err = h.client.AddItem(ctx, &AddItemRequest{CartID: "c2", ProductID: "p1", Quantity: 1})
	require.NoError(t, err)
	again, err := h.client.Checkout(ctx, &CheckoutRequest{CartID: "c2", Purchaser: buyer})
	require.NoError(t, err)
	assert.Empty(t, again.Ticket.Lines)
}

func TestServer_concurrentUpdatesAndCheckoutsKeepEverySale(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.product(t, "p1", "1", 10)
	carts := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	for _, id := range carts {
		h.cart(t, id)
		_, err := h.client.AddItem(ctx, &AddItemRequest{CartID: id, ProductID: "p1", Quantity: 1})
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	var sold atomic.Int32
	for i, id := range carts {
		wg.Add(2)
		go func(id string) {
			defer wg.Done()
			resp, err := h.client.Checkout(ctx, &CheckoutRequest{CartID: id, Purchaser: buyer})
			if assert.NoError(t, err) {
				sold.Add(int32(len(resp.Ticket.Lines)))
			}
		}(id)
		go func(i int) {
			defer wg.Done()
			price := decimal.NewFromInt(int64(i + 1))
			_, err := h.client.UpdateProduct(ctx, &UpdateProductRequest{Actor: admin, ProductID: "p1", Patch: domain.ProductPatch{Price: &price}})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := h.client.GetProduct(ctx, &ProductRequest{ProductID: "p1"})
	require.NoError(t, err)
	assert.Equal(t, int32(len(carts)), sold.Load())
	assert.Equal(t, 10-len(carts), got.Product.Stock)
}

func TestServer_deleteByAdminNotifiesOwner(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	created, err := h.client.CreateProduct(ctx, &CreateProductRequest{Actor: premium, Product: domain.Product{
		Title: "Mug", Description: "Coffee mug", Category: "kitchen", Code: "MUG-1",
		Price: decimal.RequireFromString("8"), Stock: 10,
	}})
	require.NoError(t, err)

	resp, err := h.client.DeleteProduct(ctx, &DeleteProductRequest{Actor: admin, ProductID: created.Product.ID})
	require.NoError(t, err)
	assert.True(t, resp.Notified)

	_, err = h.client.GetProduct(ctx, &ProductRequest{ProductID: created.Product.ID})
	requireStatus(t, err, codes.NotFound, common.ReasonProductNotFound)

	h.notifier.mu.Lock()
	defer h.notifier.mu.Unlock()
	require.Len(t, h.notifier.removals, 1)
	assert.Equal(t, premium.ID, h.notifier.removals[0].Owner)
	assert.Equal(t, admin.ID, h.notifier.removals[0].By)
}

func TestServer_ownerDeletingOwnProductIsNotNotified(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	created, err := h.client.CreateProduct(ctx, &CreateProductRequest{Actor: premium, Product: domain.Product{
		Title: "Mug", Description: "Coffee mug", Category: "kitchen", Code: "MUG-2",
		Price: decimal.RequireFromString("8"), Stock: 10,
	}})
	require.NoError(t, err)

	resp, err := h.client.DeleteProduct(ctx, &DeleteProductRequest{Actor: premium, ProductID: created.Product.ID})
	require.NoError(t, err)
	assert.False(t, resp.Notified)
}

func TestServer_listProductsPaginates(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	for i, price := range []string{"5", "1", "3"} {
		h.product(t, string(rune('a'+i)), price, 1)
	}

	resp, err := h.client.ListProducts(ctx, &ListProductsRequest{Filter: domain.ProductFilter{Limit: 2, SortPrice: "asc"}})
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Page.Total)
	assert.Equal(t, 2, resp.Page.TotalPages)
	require.Len(t, resp.Page.Products, 2)
	assert.Equal(t, "b", resp.Page.Products[0].ID)
	assert.Equal(t, "c", resp.Page.Products[1].ID)
	assert.True(t, resp.Page.HasNext())
}

func TestServer_recordsMetricsAndLogs(t *testing.T) {
	h := newHarness(t)
	_, err := h.client.GetCart(context.Background(), &CartRequest{CartID: "nope"})
	require.Error(t, err)

	rejected := h.logs.FilterMessage("rpc rejected").All()
	require.Len(t, rejected, 1)
	assert.Equal(t, "GetCart", rejected[0].ContextMap()["method"])
	assert.Equal(t, "NotFound", rejected[0].ContextMap()["code"])
}

func TestKeyedMutex_releasesEntries(t *testing.T) {
	k := newKeyedMutex()
	unlock := k.Lock("a")
	unlock()
	assert.Empty(t, k.locks)
}
