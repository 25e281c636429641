package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/istore/storefront/common"
	"github.com/istore/storefront/domain"
)

// Carts is a domain.CartStore backed by the carts collection.
type Carts struct {
	coll *mongo.Collection
}

var _ domain.CartStore = (*Carts)(nil)

// Get returns the cart with the given id.
func (r *Carts) Get(ctx context.Context, id string) (*domain.Cart, error) {
	var doc cartDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, common.NewNotFound(common.ReasonCartNotFound, common.ErrMsgCartNotFound)
	}
	if err != nil {
		return nil, storageErr("find cart", err)
	}
	return doc.toDomain(), nil
}

// Save upserts the whole cart document.
func (r *Carts) Save(ctx context.Context, cart *domain.Cart) (*domain.Cart, error) {
	if cart == nil || cart.ID == "" {
		return nil, common.NewInvalidArgument(common.ReasonCartNotFound, common.ErrMsgCartIDRequired)
	}
	doc := newCartDoc(cart)
	opts := options.Replace().SetUpsert(true)
	if _, err := r.coll.ReplaceOne(ctx, bson.M{"_id": cart.ID}, doc, opts); err != nil {
		return nil, storageErr("save cart", err)
	}
	return doc.toDomain(), nil
}
