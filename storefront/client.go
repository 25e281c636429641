package storefront

import (
	"context"
	"os"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/istore/storefront/common"
)

// formatEndpoint converts an endpoint to gRPC target format. Paths become
// unix:// targets.
func formatEndpoint(endpoint string) string {
	if strings.HasPrefix(endpoint, "/") || strings.HasPrefix(endpoint, "./") {
		return "unix://" + endpoint
	}
	return endpoint
}

// Client is a typed client for the storefront service.
type Client struct {
	conn *grpc.ClientConn
}

// NewClient connects to a storefront server without transport security.
func NewClient(endpoint string) (*Client, error) {
	conn, err := grpc.NewClient(formatEndpoint(endpoint), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn}, nil
}

// ClientFromEnv connects using an environment variable with fallback.
func ClientFromEnv(envVar, defaultEndpoint string) (*Client, error) {
	endpoint := os.Getenv(envVar)
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	return NewClient(endpoint)
}

// ClientFromConn wraps an existing connection. Close on the returned client
// closes conn.
func ClientFromConn(conn *grpc.ClientConn) *Client {
	return &Client{conn: conn}
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func invoke[Resp any](ctx context.Context, c *Client, method string, req any) (*Resp, error) {
	out := new(Resp)
	if err := c.conn.Invoke(ctx, FullMethod(method), req, out, grpc.CallContentSubtype(common.CodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateCart(ctx context.Context, req *CreateCartRequest) (*CartResponse, error) {
	return invoke[CartResponse](ctx, c, "CreateCart", req)
}

func (c *Client) GetCart(ctx context.Context, req *CartRequest) (*CartResponse, error) {
	return invoke[CartResponse](ctx, c, "GetCart", req)
}

func (c *Client) AddItem(ctx context.Context, req *AddItemRequest) (*CartResponse, error) {
	return invoke[CartResponse](ctx, c, "AddItem", req)
}

func (c *Client) RemoveItem(ctx context.Context, req *RemoveItemRequest) (*CartResponse, error) {
	return invoke[CartResponse](ctx, c, "RemoveItem", req)
}

func (c *Client) DeleteItem(ctx context.Context, req *DeleteItemRequest) (*CartResponse, error) {
	return invoke[CartResponse](ctx, c, "DeleteItem", req)
}

func (c *Client) UpdateQuantity(ctx context.Context, req *UpdateQuantityRequest) (*CartResponse, error) {
	return invoke[CartResponse](ctx, c, "UpdateQuantity", req)
}

func (c *Client) ReplaceItems(ctx context.Context, req *ReplaceItemsRequest) (*CartResponse, error) {
	return invoke[CartResponse](ctx, c, "ReplaceItems", req)
}

func (c *Client) ClearCart(ctx context.Context, req *CartRequest) (*CartResponse, error) {
	return invoke[CartResponse](ctx, c, "ClearCart", req)
}

func (c *Client) Checkout(ctx context.Context, req *CheckoutRequest) (*CheckoutResponse, error) {
	return invoke[CheckoutResponse](ctx, c, "Checkout", req)
}

func (c *Client) CreateProduct(ctx context.Context, req *CreateProductRequest) (*ProductResponse, error) {
	return invoke[ProductResponse](ctx, c, "CreateProduct", req)
}

func (c *Client) GetProduct(ctx context.Context, req *ProductRequest) (*ProductResponse, error) {
	return invoke[ProductResponse](ctx, c, "GetProduct", req)
}

func (c *Client) ListProducts(ctx context.Context, req *ListProductsRequest) (*ListProductsResponse, error) {
	return invoke[ListProductsResponse](ctx, c, "ListProducts", req)
}

func (c *Client) UpdateProduct(ctx context.Context, req *UpdateProductRequest) (*ProductResponse, error) {
	return invoke[ProductResponse](ctx, c, "UpdateProduct", req)
}

func (c *Client) DeleteProduct(ctx context.Context, req *DeleteProductRequest) (*DeleteProductResponse, error) {
	return invoke[DeleteProductResponse](ctx, c, "DeleteProduct", req)
}

func (c *Client) GetTicket(ctx context.Context, req *GetTicketRequest) (*TicketResponse, error) {
	return invoke[TicketResponse](ctx, c, "GetTicket", req)
}

func (c *Client) ListTickets(ctx context.Context, req *ListTicketsRequest) (*ListTicketsResponse, error) {
	return invoke[ListTicketsResponse](ctx, c, "ListTickets", req)
}

var _ StorefrontServer = (*Client)(nil)
