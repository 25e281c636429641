package memory

import (
	"context"
	"sort"

	memdb "github.com/hashicorp/go-memdb"

	"github.com/istore/storefront/common"
	"github.com/istore/storefront/domain"
)

// Tickets is an append-only domain.TicketStore.
type Tickets struct {
	db *memdb.MemDB
}

var _ domain.TicketStore = (*Tickets)(nil)

// Append records a ticket. Codes are unique.
func (r *Tickets) Append(_ context.Context, t *domain.Ticket) (*domain.Ticket, error) {
	stored := t.Clone()
	if stored.ID == "" {
		stored.ID = common.NewID()
	}

	txn := r.db.Txn(true)
	defer txn.Abort()

	existing, err := txn.First(tableTickets, indexCode, stored.Code)
	if err != nil {
		return nil, storageErr("find ticket", err)
	}
	if existing != nil {
		return nil, common.NewFailedPrecondition(common.ReasonDuplicateCode, common.ErrMsgDuplicateTicketCode)
	}
	if err := txn.Insert(tableTickets, stored); err != nil {
		return nil, storageErr("append ticket", err)
	}
	txn.Commit()
	return stored.Clone(), nil
}

// GetByCode returns the ticket with the given purchase code.
func (r *Tickets) GetByCode(_ context.Context, code string) (*domain.Ticket, error) {
	txn := r.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(tableTickets, indexCode, code)
	if err != nil {
		return nil, storageErr("find ticket", err)
	}
	if raw == nil {
		return nil, common.NewNotFound(common.ReasonTicketNotFound, common.ErrMsgTicketNotFound)
	}
	return raw.(*domain.Ticket).Clone(), nil
}

// ListByPurchaser returns a purchaser's tickets, oldest first.
func (r *Tickets) ListByPurchaser(_ context.Context, purchaser string) ([]*domain.Ticket, error) {
	txn := r.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(tableTickets, indexPurchaser, purchaser)
	if err != nil {
		return nil, storageErr("list tickets", err)
	}
	out := []*domain.Ticket{}
	for raw := it.Next(); raw != nil; raw = it.Next() {
		out = append(out, raw.(*domain.Ticket).Clone())
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].PurchasedAt.Before(out[j].PurchasedAt) })
	return out, nil
}
