package memory

import (
	"context"

	memdb "github.com/hashicorp/go-memdb"

	"github.com/istore/storefront/common"
	"github.com/istore/storefront/domain"
)

// Carts is a domain.CartStore.
type Carts struct {
	db *memdb.MemDB
}

var _ domain.CartStore = (*Carts)(nil)

// Get returns the cart with the given id.
func (r *Carts) Get(_ context.Context, id string) (*domain.Cart, error) {
	txn := r.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(tableCarts, indexID, id)
	if err != nil {
		return nil, storageErr("find cart", err)
	}
	if raw == nil {
		return nil, common.NewNotFound(common.ReasonCartNotFound, common.ErrMsgCartNotFound)
	}
	return raw.(*domain.Cart).Clone(), nil
}

// Save inserts or replaces the cart.
func (r *Carts) Save(_ context.Context, cart *domain.Cart) (*domain.Cart, error) {
	if cart == nil || cart.ID == "" {
		return nil, common.NewInvalidArgument(common.ReasonCartNotFound, common.ErrMsgCartIDRequired)
	}
	saved := cart.Clone()

	txn := r.db.Txn(true)
	defer txn.Abort()
	if err := txn.Insert(tableCarts, saved); err != nil {
		return nil, storageErr("save cart", err)
	}
	txn.Commit()
	return saved.Clone(), nil
}
