package storefront

import "github.com/istore/storefront/domain"

// CreateCartRequest names the cart to create. Without a CartID, a cart
// derived from Owner is used, so each purchaser gets one stable cart; with
// neither a fresh ID is generated.
type CreateCartRequest struct {
	CartID string `json:"cart_id,omitempty"`
	Owner  string `json:"owner,omitempty"`
}

type CartRequest struct {
	CartID string `json:"cart_id"`
}

type AddItemRequest struct {
	CartID    string `json:"cart_id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Override  *int   `json:"override,omitempty"`
}

type RemoveItemRequest struct {
	CartID    string `json:"cart_id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Override  *int   `json:"override,omitempty"`
}

type DeleteItemRequest struct {
	CartID    string `json:"cart_id"`
	ProductID string `json:"product_id"`
}

type UpdateQuantityRequest struct {
	CartID    string `json:"cart_id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type ReplaceItemsRequest struct {
	CartID string            `json:"cart_id"`
	Items  []domain.LineItem `json:"items"`
}

type CartResponse struct {
	Cart *domain.Cart `json:"cart"`
}

type CheckoutRequest struct {
	CartID    string           `json:"cart_id"`
	Purchaser domain.Purchaser `json:"purchaser"`
}

// UnfulfilledLine is a cart line left behind by checkout.
type UnfulfilledLine struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Reason    string `json:"reason"`
}

type CheckoutResponse struct {
	Ticket      *domain.Ticket    `json:"ticket"`
	Cart        *domain.Cart      `json:"cart"`
	Unfulfilled []UnfulfilledLine `json:"unfulfilled"`
}

type CreateProductRequest struct {
	Actor   domain.Actor   `json:"actor"`
	Product domain.Product `json:"product"`
}

type ProductRequest struct {
	ProductID string `json:"product_id"`
}

type ProductResponse struct {
	Product *domain.Product `json:"product"`
}

type ListProductsRequest struct {
	Filter domain.ProductFilter `json:"filter"`
}

type ListProductsResponse struct {
	Page *domain.ProductPage `json:"page"`
}

type UpdateProductRequest struct {
	Actor     domain.Actor        `json:"actor"`
	ProductID string              `json:"product_id"`
	Patch     domain.ProductPatch `json:"patch"`
}

type DeleteProductRequest struct {
	Actor     domain.Actor `json:"actor"`
	ProductID string       `json:"product_id"`
}

type DeleteProductResponse struct {
	Notified bool `json:"notified"`
}

type GetTicketRequest struct {
	Code string `json:"code"`
}

type TicketResponse struct {
	Ticket *domain.Ticket `json:"ticket"`
}

type ListTicketsRequest struct {
	Purchaser string `json:"purchaser"`
}

type ListTicketsResponse struct {
	Tickets []*domain.Ticket `json:"tickets"`
}
