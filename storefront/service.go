// Package storefront exposes the cart engine, checkout and catalog over
// gRPC. Messages are plain Go structs carried by the JSON codec registered
// in package common, so clients must call with the "json" content-subtype.
package storefront

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "storefront.Storefront"

// StorefrontServer is the server API for the Storefront service.
type StorefrontServer interface {
	CreateCart(context.Context, *CreateCartRequest) (*CartResponse, error)
	GetCart(context.Context, *CartRequest) (*CartResponse, error)
	AddItem(context.Context, *AddItemRequest) (*CartResponse, error)
	RemoveItem(context.Context, *RemoveItemRequest) (*CartResponse, error)
	DeleteItem(context.Context, *DeleteItemRequest) (*CartResponse, error)
	UpdateQuantity(context.Context, *UpdateQuantityRequest) (*CartResponse, error)
	ReplaceItems(context.Context, *ReplaceItemsRequest) (*CartResponse, error)
	ClearCart(context.Context, *CartRequest) (*CartResponse, error)
	Checkout(context.Context, *CheckoutRequest) (*CheckoutResponse, error)
	CreateProduct(context.Context, *CreateProductRequest) (*ProductResponse, error)
	GetProduct(context.Context, *ProductRequest) (*ProductResponse, error)
	ListProducts(context.Context, *ListProductsRequest) (*ListProductsResponse, error)
	UpdateProduct(context.Context, *UpdateProductRequest) (*ProductResponse, error)
	DeleteProduct(context.Context, *DeleteProductRequest) (*DeleteProductResponse, error)
	GetTicket(context.Context, *GetTicketRequest) (*TicketResponse, error)
	ListTickets(context.Context, *ListTicketsRequest) (*ListTicketsResponse, error)
}

// ServiceDesc describes the Storefront service for grpc.Server.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*StorefrontServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("CreateCart", StorefrontServer.CreateCart),
		unary("GetCart", StorefrontServer.GetCart),
		unary("AddItem", StorefrontServer.AddItem),
		unary("RemoveItem", StorefrontServer.RemoveItem),
		unary("DeleteItem", StorefrontServer.DeleteItem),
		unary("UpdateQuantity", StorefrontServer.UpdateQuantity),
		unary("ReplaceItems", StorefrontServer.ReplaceItems),
		unary("ClearCart", StorefrontServer.ClearCart),
		unary("Checkout", StorefrontServer.Checkout),
		unary("CreateProduct", StorefrontServer.CreateProduct),
		unary("GetProduct", StorefrontServer.GetProduct),
		unary("ListProducts", StorefrontServer.ListProducts),
		unary("UpdateProduct", StorefrontServer.UpdateProduct),
		unary("DeleteProduct", StorefrontServer.DeleteProduct),
		unary("GetTicket", StorefrontServer.GetTicket),
		unary("ListTickets", StorefrontServer.ListTickets),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "storefront",
}

// RegisterStorefrontServer registers srv on s.
func RegisterStorefrontServer(s grpc.ServiceRegistrar, srv StorefrontServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// FullMethod returns the gRPC path of a Storefront method.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

func unary[Req, Resp any](method string, call func(StorefrontServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(StorefrontServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(StorefrontServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
