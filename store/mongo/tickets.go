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

// Tickets is an append-only domain.TicketStore.
type Tickets struct {
	coll *mongo.Collection
}

var _ domain.TicketStore = (*Tickets)(nil)

// Append inserts a ticket document.
func (r *Tickets) Append(ctx context.Context, t *domain.Ticket) (*domain.Ticket, error) {
	stored := t.Clone()
	if stored.ID == "" {
		stored.ID = common.NewID()
	}
	doc, err := newTicketDoc(stored)
	if err != nil {
		return nil, storageErr("encode ticket", err)
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, common.NewFailedPrecondition(common.ReasonDuplicateCode, common.ErrMsgDuplicateTicketCode)
		}
		return nil, storageErr("append ticket", err)
	}
	return stored, nil
}

// GetByCode returns the ticket with the given purchase code.
func (r *Tickets) GetByCode(ctx context.Context, code string) (*domain.Ticket, error) {
	var doc ticketDoc
	err := r.coll.FindOne(ctx, bson.M{"code": code}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, common.NewNotFound(common.ReasonTicketNotFound, common.ErrMsgTicketNotFound)
	}
	if err != nil {
		return nil, storageErr("find ticket", err)
	}
	return doc.toDomain()
}

// ListByPurchaser returns a purchaser's tickets, oldest first.
func (r *Tickets) ListByPurchaser(ctx context.Context, purchaser string) ([]*domain.Ticket, error) {
	opts := options.Find().SetSort(bson.D{{Key: "purchased_at", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"purchaser": purchaser}, opts)
	if err != nil {
		return nil, storageErr("list tickets", err)
	}
	var docs []ticketDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, storageErr("list tickets", err)
	}
	out := make([]*domain.Ticket, 0, len(docs))
	for i := range docs {
		t, err := docs[i].toDomain()
		if err != nil {
			return nil, storageErr("decode ticket", err)
		}
		out = append(out, t)
	}
	return out, nil
}
